package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// EnvironmentPrefix prefixes the moviefinder specific environment variables.
const EnvironmentPrefix = "MOVIEFINDER"

// Loader handles loading and merging configurations from multiple sources
type Loader struct {
	fs         afero.Fs
	getenv     func(string) string
	candidates []string
	validator  *Validator
}

// NewLoader creates a new configuration loader reading from fsys.
func NewLoader(fsys afero.Fs) *Loader {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Loader{
		fs:         fsys,
		getenv:     os.Getenv,
		candidates: UserConfigCandidates(),
		validator:  NewValidator(),
	}
}

// WithEnv replaces the environment lookup.
func (l *Loader) WithEnv(getenv func(string) string) *Loader {
	l.getenv = getenv
	return l
}

// WithCandidates replaces the files probed when no explicit path is given.
func (l *Loader) WithCandidates(paths ...string) *Loader {
	l.candidates = paths
	return l
}

// Load builds the configuration from defaults, then the config file, then
// the environment. An explicit path must exist; the default locations are
// optional. Credentials are not checked here, see Validator.Validate.
func (l *Loader) Load(path string) (*Config, error) {
	// Start with default configuration
	config := DefaultConfig()

	if path != "" {
		if err := l.loadFile(path, config); err != nil {
			return nil, fmt.Errorf("failed to load configuration from %s: %w", path, err)
		}
	} else {
		for _, candidate := range l.candidates {
			err := l.loadFile(candidate, config)
			if err == nil {
				break
			}
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to load configuration from %s: %w", candidate, err)
		}
	}

	// Apply environment variable overrides
	if err := l.applyEnvironmentOverrides(config); err != nil {
		return nil, err
	}

	// Validate the final configuration
	if err := l.validator.ValidateSettings(config); err != nil {
		return nil, err
	}

	return config, nil
}

// loadFile decodes path over config, so absent keys keep their defaults.
func (l *Loader) loadFile(path string, config *Config) error {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("configuration: failed to parse YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("configuration: failed to parse JSON: %w", err)
		}
	}
	return nil
}

// SaveFile writes config to path in the format implied by its extension.
func (l *Loader) SaveFile(config *Config, path string) error {
	if err := l.validator.ValidateSettings(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if err := l.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	default:
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// keys may be inside
	if err := afero.WriteFile(l.fs, path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// applyEnvironmentOverrides applies environment variable overrides to config
func (l *Loader) applyEnvironmentOverrides(config *Config) error {
	env := func(name string) string {
		return strings.TrimSpace(l.getenv(name))
	}

	if apiKey := env("OPENROUTER_API_KEY"); apiKey != "" {
		config.LLM.APIKey = apiKey
	} else if apiKey := env("OPENAI_API_KEY"); apiKey != "" && config.LLM.APIKey == "" {
		config.LLM.APIKey = apiKey
	}
	if apiKey := env("TMDB_API_KEY"); apiKey != "" {
		config.Provider.APIKey = apiKey
	}

	prefix := EnvironmentPrefix + "_"
	if model := env(prefix + "MODEL"); model != "" {
		config.LLM.Model = model
	}
	if baseURL := env(prefix + "BASE_URL"); baseURL != "" {
		config.LLM.BaseURL = baseURL
	}
	if path := env(prefix + "DB_PATH"); path != "" {
		config.Storage.Path = path
	}
	if driver := env(prefix + "STORAGE"); driver != "" {
		config.Storage.Driver = driver
	}
	if level := env(prefix + "LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if v := env(prefix + "MAX_STEPS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return ValidationError{Field: prefix + "MAX_STEPS", Message: "must be an integer", Value: v}
		}
		config.Agent.MaxSteps = n
	}
	if v := env(prefix + "MAX_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return ValidationError{Field: prefix + "MAX_TOKENS", Message: "must be an integer", Value: v}
		}
		config.Agent.MaxTokens = n
	}
	if v := env(prefix + "TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return ValidationError{Field: prefix + "TEMPERATURE", Message: "must be a number", Value: v}
		}
		config.Agent.Temperature = &f
	}
	return nil
}

// MaskKey shows only the first and last four characters of a secret.
func MaskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

// Redacted returns a copy of config with keys masked.
func (c Config) Redacted() Config {
	c.LLM.APIKey = MaskKey(c.LLM.APIKey)
	c.Provider.APIKey = MaskKey(c.Provider.APIKey)
	return c
}
