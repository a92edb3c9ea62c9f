package config

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for moviefinder
type Config struct {
	// LLM configures the reasoning engine
	LLM LLMConfig `json:"llm" yaml:"llm"`

	// Provider configures the movie data provider
	Provider ProviderConfig `json:"provider" yaml:"provider"`

	// Agent configures the agent loop
	Agent AgentConfig `json:"agent" yaml:"agent"`

	// Server configures the HTTP surface
	Server ServerConfig `json:"server" yaml:"server"`

	// Storage selects the conversation memory backend
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Logging configuration
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Tools adjusts individual tools, keyed by tool name
	Tools map[string]ToolConfig `json:"tools,omitempty" yaml:"tools,omitempty"`
}

// LLMConfig holds reasoning engine settings
type LLMConfig struct {
	// APIKey for the OpenRouter compatible endpoint
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL of the chat completion API
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`

	// Model name, e.g. openai/gpt-3.5-turbo
	Model string `json:"model" yaml:"model" validate:"required"`

	Timeout    Duration `json:"timeout,omitempty" yaml:"timeout,omitempty" validate:"min=0"`
	MaxRetries int      `json:"max_retries" yaml:"max_retries" validate:"min=0,max=10"`
	RetryDelay Duration `json:"retry_delay,omitempty" yaml:"retry_delay,omitempty" validate:"min=0"`

	// SiteURL and SiteName are sent as OpenRouter attribution headers
	SiteURL  string `json:"site_url,omitempty" yaml:"site_url,omitempty" validate:"omitempty,url"`
	SiteName string `json:"site_name,omitempty" yaml:"site_name,omitempty"`
}

// ProviderConfig holds movie provider settings
type ProviderConfig struct {
	APIKey  string   `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL string   `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty" validate:"min=0"`
}

// AgentConfig holds agent loop settings
type AgentConfig struct {
	// MaxSteps bounds reasoning steps per utterance
	MaxSteps int `json:"max_steps" yaml:"max_steps" validate:"min=1"`

	// MaxTokens caps each completion
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" validate:"min=0"`

	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty" validate:"omitempty,min=0,max=2"`

	// SystemPrompt replaces the built in instructions when set
	SystemPrompt string `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`

	// HistoryWindow limits the turns shown to the model; 0 means all
	HistoryWindow int `json:"history_window" yaml:"history_window" validate:"min=0"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host           string   `json:"host" yaml:"host"`
	Port           int      `json:"port" yaml:"port" validate:"min=1,max=65535"`
	RequestTimeout Duration `json:"request_timeout,omitempty" yaml:"request_timeout,omitempty" validate:"min=0"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig selects where conversation memory lives
type StorageConfig struct {
	// Driver is "memory" or "sqlite"
	Driver string `json:"driver" yaml:"driver" validate:"storage_driver"`

	// Path of the sqlite database
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error)
	Level string `json:"level,omitempty" yaml:"level,omitempty" validate:"log_level"`

	// Format is the output format (text, json)
	Format string `json:"format,omitempty" yaml:"format,omitempty" validate:"log_format"`
}

// ToolConfig adjusts one tool
type ToolConfig struct {
	// Disabled removes the tool from the set offered to the model
	Disabled bool `json:"disabled,omitempty" yaml:"disabled,omitempty"`

	// Description overrides the description shown to the model
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Message)
}

// Duration is a time.Duration that reads "30s" style strings from JSON
// and YAML. Plain numbers are taken as seconds.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	return d.set(v)
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var v interface{}
	if err := node.Decode(&v); err != nil {
		return err
	}
	return d.set(v)
}

func (d *Duration) set(v interface{}) error {
	switch val := v.(type) {
	case string:
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", val, err)
		}
		*d = Duration(parsed)
	case float64:
		*d = Duration(val * float64(time.Second))
	case int:
		*d = Duration(time.Duration(val) * time.Second)
	case nil:
		*d = 0
	default:
		return fmt.Errorf("invalid duration %v", v)
	}
	return nil
}
