package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/psharda/insight/llm"
	llmanthropic "github.com/psharda/insight/llm/anthropic"
	llmollama "github.com/psharda/insight/llm/ollama"
	llmopenai "github.com/psharda/insight/llm/openai"
)

// ProviderConfig builds the registry view of the provider sections, applying
// environment variable overrides on top of file values.
func (c *ServerConfig) ProviderConfig() *llm.ProviderConfig {
	pc := &llm.ProviderConfig{
		AnthropicAPIKey: c.Anthropic.APIKey,
		AnthropicModel:  c.Anthropic.Model,
		OllamaHost:      c.Ollama.Host,
		OllamaModel:     c.Ollama.Model,
		OpenAIAPIKey:    c.OpenAI.APIKey,
		OpenAIBaseURL:   c.OpenAI.BaseURL,
		OpenAIModel:     c.OpenAI.Model,
		OpenAIOrg:       c.OpenAI.Organization,
	}

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		pc.AnthropicAPIKey = key
	}
	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		pc.OllamaHost = host
	}
	if model := os.Getenv("OLLAMA_MODEL"); model != "" {
		pc.OllamaModel = model
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		pc.OpenAIAPIKey = key
	}

	return pc
}

// NewGatewayClient resolves the preferred provider and constructs its client.
// Construction lives here rather than in the registry so the llm package does
// not import its own provider subpackages.
func NewGatewayClient(cfg *ServerConfig, logger zerolog.Logger) (llm.Client, *llm.ClientKey, error) {
	registry := llm.NewProviderRegistry(cfg.ProviderConfig(), cfg.LLMProviders)

	key, err := registry.Resolve(cfg.Analysis.Model)
	if err != nil {
		return nil, nil, fmt.Errorf("no usable LLM provider: %w", err)
	}

	var client llm.Client
	switch key.Provider {
	case llm.ProviderAnthropic:
		client, err = llmanthropic.NewAnthropicClient(key.APIKey, key.Model, logger)
	case llm.ProviderOllama:
		client, err = llmollama.NewOllamaClient(key.Host, key.Model)
	case llm.ProviderOpenAI:
		client, err = llmopenai.NewOpenAIClient(key.APIKey, key.BaseURL, key.Model, key.Organization)
	default:
		return nil, nil, fmt.Errorf("unknown provider %q", key.Provider)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s client: %w", key.Provider, err)
	}

	logger.Info().
		Str("provider", key.Provider).
		Str("model", key.Model).
		Msg("LLM gateway configured")

	return client, key, nil
}

// RetryPolicy converts the retry section to the llm package policy.
func (c *ServerConfig) RetryPolicy() llm.RetryPolicy {
	policy := llm.DefaultRetryPolicy()
	if c.Retry.CallTimeoutSeconds > 0 {
		policy.CallTimeout = time.Duration(c.Retry.CallTimeoutSeconds) * time.Second
	}
	if c.Retry.MaxRetries > 0 {
		policy.MaxRetries = uint64(c.Retry.MaxRetries)
	}
	if c.Retry.InitialIntervalMillis > 0 {
		policy.InitialInterval = time.Duration(c.Retry.InitialIntervalMillis) * time.Millisecond
	}
	if c.Retry.MaxElapsedSeconds > 0 {
		policy.MaxElapsedTime = time.Duration(c.Retry.MaxElapsedSeconds) * time.Second
	}
	return policy
}
