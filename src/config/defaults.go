package config

import (
	"time"
)

// Default values used by DefaultConfig
const (
	DefaultModel         = "openai/gpt-3.5-turbo"
	DefaultLLMBaseURL    = "https://openrouter.ai/api/v1"
	DefaultTMDBBaseURL   = "https://api.themoviedb.org/3"
	DefaultMaxSteps      = 75
	DefaultMaxTokens     = 200
	DefaultTemperature   = 0.7
	DefaultPort          = 8080
	DefaultStorageDriver = StorageMemory
)

// Storage drivers
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
)

// DefaultConfig returns a default configuration with sensible defaults
func DefaultConfig() *Config {
	temperature := DefaultTemperature
	return &Config{
		LLM: LLMConfig{
			BaseURL:    DefaultLLMBaseURL,
			Model:      DefaultModel,
			Timeout:    Duration(30 * time.Second),
			MaxRetries: 3,
			RetryDelay: Duration(1 * time.Second),
		},
		Provider: ProviderConfig{
			BaseURL: DefaultTMDBBaseURL,
			Timeout: Duration(10 * time.Second),
		},
		Agent: AgentConfig{
			MaxSteps:    DefaultMaxSteps,
			MaxTokens:   DefaultMaxTokens,
			Temperature: &temperature,
		},
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           DefaultPort,
			RequestTimeout: Duration(2 * time.Minute),
		},
		Storage: StorageConfig{
			Driver: DefaultStorageDriver,
			Path:   DefaultDatabasePath(),
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}
