package llm

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestIsRateLimitError(t *testing.T) {
	err := NewRateLimitError("rate limit exceeded", nil, nil)
	if !IsRateLimitError(err) {
		t.Error("Expected IsRateLimitError to return true for rate limit error")
	}

	regularErr := NewProviderError("some error", nil)
	if IsRateLimitError(regularErr) {
		t.Error("Expected IsRateLimitError to return false for non-rate-limit error")
	}
}

func TestIsTimeoutError(t *testing.T) {
	err := NewTimeoutError("deadline exceeded", nil)
	if !IsTimeoutError(err) {
		t.Error("Expected IsTimeoutError to return true for timeout error")
	}

	if IsTimeoutError(NewNetworkError("conn refused", nil)) {
		t.Error("Expected IsTimeoutError to return false for network error")
	}
}

func TestIsRetryableError(t *testing.T) {
	retryable := []error{
		NewRateLimitError("rate limit", nil, nil),
		NewNetworkError("connection reset", nil),
		NewTimeoutError("deadline", nil),
	}
	for _, err := range retryable {
		if !IsRetryableError(err) {
			t.Errorf("Expected %v to be retryable", err)
		}
	}

	nonRetryable := []error{
		NewProviderError("some error", nil),
		NewInvalidRequestError("bad prompt", nil),
		NewAuthError("bad key", nil),
	}
	for _, err := range nonRetryable {
		if IsRetryableError(err) {
			t.Errorf("Expected %v to be non-retryable", err)
		}
	}
}

func TestExtractRetryAfter(t *testing.T) {
	retryAfter := 5 * time.Minute
	err := NewRateLimitError("rate limit", &retryAfter, nil)
	extracted := ExtractRetryAfter(err)
	if extracted == nil {
		t.Fatal("Expected non-nil retry after")
	}
	if *extracted != retryAfter {
		t.Errorf("Expected retry after %v, got %v", retryAfter, *extracted)
	}

	regularErr := NewProviderError("some error", nil)
	if ExtractRetryAfter(regularErr) != nil {
		t.Error("Expected nil retry after for non-rate-limit error")
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("socket closed")
	err := NewNetworkError("network failure", inner)

	wrapped := fmt.Errorf("completion failed: %w", err)
	var llmErr *Error
	if !errors.As(wrapped, &llmErr) {
		t.Fatal("Expected errors.As to find *Error through wrapping")
	}
	if !errors.Is(wrapped, inner) {
		t.Error("Expected errors.Is to reach the provider error")
	}
}
