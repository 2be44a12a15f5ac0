package llm

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

const (
	// DefaultCallTimeout bounds a single provider call.
	DefaultCallTimeout = 30 * time.Second
	// DefaultMaxRetries is the default maximum number of retries per completion.
	DefaultMaxRetries = 2
	// DefaultInitialInterval is the default initial delay for exponential backoff.
	DefaultInitialInterval = 1 * time.Second
	// DefaultMaxElapsedTime is the default maximum elapsed time across retries.
	DefaultMaxElapsedTime = 2 * time.Minute
)

// RetryPolicy configures the RetryingClient.
type RetryPolicy struct {
	CallTimeout     time.Duration
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		CallTimeout:     DefaultCallTimeout,
		MaxRetries:      DefaultMaxRetries,
		InitialInterval: DefaultInitialInterval,
		MaxElapsedTime:  DefaultMaxElapsedTime,
	}
}

// RetryingClient wraps a Client with per-call deadlines and bounded
// exponential-backoff retries. Only errors marked retryable (rate limits,
// network failures, timeouts, 5xx provider errors) are retried; everything
// else fails immediately.
type RetryingClient struct {
	inner  Client
	policy RetryPolicy
	logger zerolog.Logger
}

// WithRetry wraps client with the given policy. Zero-valued policy fields
// fall back to defaults.
func WithRetry(client Client, policy RetryPolicy, logger zerolog.Logger) *RetryingClient {
	def := DefaultRetryPolicy()
	if policy.CallTimeout <= 0 {
		policy.CallTimeout = def.CallTimeout
	}
	if policy.InitialInterval <= 0 {
		policy.InitialInterval = def.InitialInterval
	}
	if policy.MaxElapsedTime <= 0 {
		policy.MaxElapsedTime = def.MaxElapsedTime
	}
	return &RetryingClient{
		inner:  client,
		policy: policy,
		logger: logger.With().Str("component", "llmRetry").Logger(),
	}
}

// hintedBackOff raises the next delay to a provider-supplied retry-after
// hint. The hint applies to exactly one delay and is then cleared.
type hintedBackOff struct {
	inner backoff.BackOff
	hint  time.Duration
}

func (b *hintedBackOff) NextBackOff() time.Duration {
	next := b.inner.NextBackOff()
	if next == backoff.Stop {
		return next
	}
	if b.hint > next {
		next = b.hint
	}
	b.hint = 0
	return next
}

func (b *hintedBackOff) Reset() {
	b.hint = 0
	b.inner.Reset()
}

// Complete implements Client. Each attempt gets its own deadline derived
// from the policy's CallTimeout, so a hanging provider call cannot block
// the calling request past the budget.
func (c *RetryingClient) Complete(ctx context.Context, req *Request) (*Response, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.policy.InitialInterval
	eb.Multiplier = 2.0
	eb.RandomizationFactor = 0.2
	eb.MaxElapsedTime = c.policy.MaxElapsedTime
	eb.Reset()
	hb := &hintedBackOff{inner: eb}
	b := backoff.WithMaxRetries(hb, c.policy.MaxRetries)

	var resp *Response
	attempt := 0
	operation := func() error {
		attempt++
		callCtx, cancel := context.WithTimeout(ctx, c.policy.CallTimeout)
		defer cancel()

		r, err := c.inner.Complete(callCtx, req)
		if err == nil {
			resp = r
			return nil
		}

		if errors.Is(err, context.DeadlineExceeded) {
			err = NewTimeoutError("completion timed out", err)
		}
		if !IsRetryableError(err) {
			return backoff.Permanent(err)
		}

		// Honor a provider-supplied retry-after hint on the next delay.
		if retryAfter := ExtractRetryAfter(err); retryAfter != nil {
			hb.hint = *retryAfter
		}

		c.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Uint64("max_retries", c.policy.MaxRetries).
			Msg("Retryable completion error, backing off")
		return err
	}

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, err
	}
	return resp, nil
}

// Ensure RetryingClient implements Client
var _ Client = (*RetryingClient)(nil)
