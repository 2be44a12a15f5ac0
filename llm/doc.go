// Package llm provides a provider-neutral abstraction for language model
// completions.
//
// The package defines the Client interface along with shared types for
// requests, responses, and errors. Provider-specific implementations live in
// subpackages (anthropic, openai, ollama). A RetryingClient decorator bounds
// every call with a deadline and a small retry budget so a slow or flaky
// provider can never hang a caller indefinitely.
package llm
