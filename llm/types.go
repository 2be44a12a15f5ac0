package llm

// Request represents a complete LLM API request.
// The pipeline sends a single user prompt plus an optional system prompt;
// multi-turn conversation state is not modeled here.
type Request struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int64
	Temperature *float64 // Optional temperature override
}

// Response represents a complete LLM API response.
// Text carries the raw model output with no structural guarantee: it may be
// JSON, fenced JSON, prose, or empty. Parsing is the caller's problem.
type Response struct {
	Text       string
	Usage      *Usage
	StopReason string
}

// Usage represents token usage information from an LLM response.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
	// Provider-specific usage fields can be added here
	CacheCreationInputTokens int64
	CacheReadInputTokens     int64
}
