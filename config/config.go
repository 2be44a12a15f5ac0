package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/psharda/insight/analysis"
)

// AnthropicConfig represents configuration for the Anthropic LLM provider.
type AnthropicConfig struct {
	APIKey string `yaml:"api_key,omitempty"`
	Model  string `yaml:"model,omitempty"`
}

// OllamaConfig represents configuration for the Ollama LLM provider.
type OllamaConfig struct {
	Host  string `yaml:"host,omitempty"` // default: "http://localhost:11434"
	Model string `yaml:"model,omitempty"`
}

// OpenAIConfig represents configuration for the OpenAI LLM provider.
type OpenAIConfig struct {
	APIKey       string `yaml:"api_key,omitempty"`
	BaseURL      string `yaml:"base_url,omitempty"` // default: official API
	Model        string `yaml:"model,omitempty"`
	Organization string `yaml:"organization,omitempty"`
}

// AnalysisConfig tunes the semantic analysis pipeline.
type AnalysisConfig struct {
	Model                   string           `yaml:"model,omitempty"` // override the provider default
	MaxTokens               int64            `yaml:"max_tokens,omitempty"`
	MaxMemoryContexts       int              `yaml:"max_memory_contexts,omitempty"`
	HistorySize             int              `yaml:"history_size,omitempty"`
	FlushCacheOnModelChange bool             `yaml:"flush_cache_on_model_change,omitempty"`
	Weights                 analysis.Weights `yaml:"weights,omitempty"`
}

// CacheConfig bounds the question-analysis cache. MaxEntries of 0 keeps the
// default; set a negative value to disable caching.
type CacheConfig struct {
	MaxEntries int `yaml:"max_entries,omitempty"`
	TTLSeconds int `yaml:"ttl_seconds,omitempty"`
}

// RetryConfig bounds gateway calls.
type RetryConfig struct {
	CallTimeoutSeconds    int `yaml:"call_timeout_seconds,omitempty"`
	MaxRetries            int `yaml:"max_retries,omitempty"`
	InitialIntervalMillis int `yaml:"initial_interval_millis,omitempty"`
	MaxElapsedSeconds     int `yaml:"max_elapsed_seconds,omitempty"`
}

// MaintenanceConfig controls the background janitor. Schedule accepts a cron
// expression or a Go duration string.
type MaintenanceConfig struct {
	Disabled      bool   `yaml:"disabled,omitempty"`
	Schedule      string `yaml:"schedule,omitempty"`       // e.g. "10m" or "0 */10 * * * *"
	RetentionDays int    `yaml:"retention_days,omitempty"` // 0: keep memories forever
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	File   string `yaml:"file,omitempty"` // empty: stdout
	Pretty bool   `yaml:"pretty,omitempty"`
}

// ServerConfig is the daemon configuration.
type ServerConfig struct {
	Server struct {
		Addr string `yaml:"addr,omitempty"` // HTTP listen address (default: localhost:8085)
	} `yaml:"server,omitempty"`

	Database struct {
		Path           string `yaml:"path,omitempty"`
		MigrationsPath string `yaml:"migrations_path,omitempty"`
	} `yaml:"database,omitempty"`

	// Ordered provider preference; the first configured provider wins.
	LLMProviders []string `yaml:"llm_providers,omitempty"`

	Anthropic AnthropicConfig `yaml:"anthropic,omitempty"`
	Ollama    OllamaConfig    `yaml:"ollama,omitempty"`
	OpenAI    OpenAIConfig    `yaml:"openai,omitempty"`

	Analysis    AnalysisConfig    `yaml:"analysis,omitempty"`
	Cache       CacheConfig       `yaml:"cache,omitempty"`
	Retry       RetryConfig       `yaml:"retry,omitempty"`
	Maintenance MaintenanceConfig `yaml:"maintenance,omitempty"`
	Logging     LoggingConfig     `yaml:"logging,omitempty"`
}

// CachePolicy converts the cache section to the analysis package policy.
func (c *ServerConfig) CachePolicy() analysis.CachePolicy {
	policy := analysis.DefaultCachePolicy()
	if c.Cache.MaxEntries < 0 {
		policy.MaxEntries = 0
	} else if c.Cache.MaxEntries > 0 {
		policy.MaxEntries = c.Cache.MaxEntries
	}
	if c.Cache.TTLSeconds > 0 {
		policy.TTL = time.Duration(c.Cache.TTLSeconds) * time.Second
	}
	return policy
}

// GetServerConfigPath returns the default config file path.
// Can be overridden via the INSIGHT_CONFIG_PATH environment variable.
func GetServerConfigPath() string {
	if envPath := os.Getenv("INSIGHT_CONFIG_PATH"); envPath != "" {
		return expandPath(envPath)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./.insightd/config.yaml"
	}
	return filepath.Join(homeDir, ".insightd", "config.yaml")
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[2:])
	}
	return path
}

// LoadServerConfig loads the daemon configuration, merging the file at path
// (if it exists) onto the built-in defaults.
func LoadServerConfig(path string) (*ServerConfig, error) {
	defaults := ServerConfig{
		LLMProviders: []string{"anthropic", "ollama", "openai"},
		Ollama: OllamaConfig{
			Host: "http://localhost:11434",
		},
		OpenAI: OpenAIConfig{
			BaseURL: "https://api.openai.com/v1",
		},
		Analysis: AnalysisConfig{
			MaxTokens:         2048,
			MaxMemoryContexts: 5,
			HistorySize:       256,
			Weights:           analysis.DefaultWeights(),
		},
		Retry: RetryConfig{
			CallTimeoutSeconds:    30,
			MaxRetries:            2,
			InitialIntervalMillis: 1000,
			MaxElapsedSeconds:     120,
		},
		Maintenance: MaintenanceConfig{
			Schedule: "10m",
		},
	}
	defaults.Server.Addr = "localhost:8085"
	defaults.Database.Path = "insight.db"
	defaults.Database.MigrationsPath = "migrations"

	expandedPath := expandPath(path)
	if _, err := os.Stat(expandedPath); err != nil {
		// No config file; defaults are a complete configuration.
		return &defaults, nil
	}

	configYAML, err := os.ReadFile(expandedPath) //#nosec 304 -- intentional file read for config
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", expandedPath, err)
	}

	var fileConfig ServerConfig
	if err := yaml.Unmarshal(configYAML, &fileConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := mergo.Merge(&defaults, fileConfig, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}

	return &defaults, nil
}

// SaveServerConfig saves the configuration to the specified path.
func SaveServerConfig(cfg *ServerConfig, path string) error {
	expandedPath := expandPath(path)

	dir := filepath.Dir(expandedPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(expandedPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
