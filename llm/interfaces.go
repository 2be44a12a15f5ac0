package llm

import (
	"context"
)

// Client provides a provider-neutral interface for making LLM API calls.
// Implementations should handle provider-specific details internally.
//
// The analysis pipeline only ever needs a single blocking completion call;
// streaming is deliberately out of scope for this service.
type Client interface {
	// Complete sends a request and returns the complete response.
	Complete(ctx context.Context, req *Request) (*Response, error)
}

// ClientFunc adapts a function to the Client interface.
// Useful for tests and small decorators.
type ClientFunc func(ctx context.Context, req *Request) (*Response, error)

// Complete implements Client.
func (f ClientFunc) Complete(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}
