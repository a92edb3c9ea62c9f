package config

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func newTestLoader(fsys afero.Fs, env map[string]string) *Loader {
	return NewLoader(fsys).WithEnv(envMap(env)).WithCandidates("/home/u/.config/moviefinder/config.json", "/home/u/.config/moviefinder/config.yaml")
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, DefaultModel, config.LLM.Model)
	assert.Equal(t, DefaultLLMBaseURL, config.LLM.BaseURL)
	assert.Equal(t, 75, config.Agent.MaxSteps)
	assert.Equal(t, 200, config.Agent.MaxTokens)
	require.NotNil(t, config.Agent.Temperature)
	assert.InDelta(t, 0.7, *config.Agent.Temperature, 1e-9)
	assert.Equal(t, 10*time.Second, config.Provider.Timeout.Std())
	assert.Equal(t, 30*time.Second, config.LLM.Timeout.Std())
	assert.Equal(t, StorageMemory, config.Storage.Driver)
	assert.Equal(t, "0.0.0.0:8080", config.Server.Addr())

	assert.NoError(t, NewValidator().ValidateSettings(config))
}

func TestConfigValidation(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"invalid temperature", func(c *Config) { f := 3.0; c.Agent.Temperature = &f }, "Temperature"},
		{"negative max tokens", func(c *Config) { c.Agent.MaxTokens = -1 }, "MaxTokens"},
		{"zero max steps", func(c *Config) { c.Agent.MaxSteps = 0 }, "MaxSteps"},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }, "Level"},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }, "Format"},
		{"unknown storage driver", func(c *Config) { c.Storage.Driver = "postgres" }, "Driver"},
		{"bad base url", func(c *Config) { c.LLM.BaseURL = "not a url" }, "BaseURL"},
		{"empty model", func(c *Config) { c.LLM.Model = "" }, "Model"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "Port"},
		{"sqlite without path", func(c *Config) { c.Storage.Driver = StorageSQLite; c.Storage.Path = "" }, "Path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			err := validator.ValidateSettings(c)
			require.Error(t, err)
			var verr ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Field, tt.field)
			assert.Contains(t, err.Error(), "configuration")
		})
	}
}

func TestValidateRequiresKeys(t *testing.T) {
	validator := NewValidator()

	c := DefaultConfig()
	assert.ErrorIs(t, validator.Validate(c), ErrMissingLLMKey)

	c.LLM.APIKey = "sk-or"
	assert.ErrorIs(t, validator.Validate(c), ErrMissingProviderKey)

	c.Provider.APIKey = "tmdb"
	assert.NoError(t, validator.Validate(c))
}

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	config, err := newTestLoader(afero.NewMemMapFs(), nil).Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().LLM, config.LLM)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := newTestLoader(afero.NewMemMapFs(), nil).Load("/nope.json")
	assert.Error(t, err)
}

func TestLoadJSON(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/etc/mf.json", []byte(`{
		"llm": {"model": "anthropic/claude-3-haiku", "timeout": "45s"},
		"agent": {"max_steps": 10},
		"tools": {"movie_details": {"disabled": true}}
	}`), 0o644))

	config, err := newTestLoader(fsys, nil).Load("/etc/mf.json")
	require.NoError(t, err)

	assert.Equal(t, "anthropic/claude-3-haiku", config.LLM.Model)
	assert.Equal(t, 45*time.Second, config.LLM.Timeout.Std())
	assert.Equal(t, 10, config.Agent.MaxSteps)
	// untouched keys keep defaults
	assert.Equal(t, DefaultMaxTokens, config.Agent.MaxTokens)
	assert.Equal(t, DefaultLLMBaseURL, config.LLM.BaseURL)
	assert.True(t, config.Tools["movie_details"].Disabled)
}

func TestLoadYAMLCandidate(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/home/u/.config/moviefinder/config.yaml", []byte(`
provider:
  timeout: 5s
storage:
  driver: sqlite
  path: /tmp/mf.db
tools:
  search_movies:
    description: Look up films by title.
`), 0o644))

	config, err := newTestLoader(fsys, nil).Load("")
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, config.Provider.Timeout.Std())
	assert.Equal(t, StorageSQLite, config.Storage.Driver)
	assert.Equal(t, "/tmp/mf.db", config.Storage.Path)
	assert.Equal(t, "Look up films by title.", config.Tools["search_movies"].Description)
}

func TestLoadMalformedFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/bad.json", []byte(`{"llm":`), 0o644))

	_, err := newTestLoader(fsys, nil).Load("/bad.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration")
}

func TestEnvironmentOverrides(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/c.json", []byte(`{"llm":{"api_key":"from-file","model":"file/model"}}`), 0o644))

	config, err := newTestLoader(fsys, map[string]string{
		"OPENROUTER_API_KEY":      "sk-env",
		"TMDB_API_KEY":            "tmdb-env",
		"MOVIEFINDER_MODEL":       "env/model",
		"MOVIEFINDER_MAX_STEPS":   "5",
		"MOVIEFINDER_MAX_TOKENS":  "512",
		"MOVIEFINDER_TEMPERATURE": "0.2",
		"MOVIEFINDER_DB_PATH":     "/var/lib/mf.db",
	}).Load("/c.json")
	require.NoError(t, err)

	assert.Equal(t, "sk-env", config.LLM.APIKey)
	assert.Equal(t, "tmdb-env", config.Provider.APIKey)
	assert.Equal(t, "env/model", config.LLM.Model)
	assert.Equal(t, 5, config.Agent.MaxSteps)
	assert.Equal(t, 512, config.Agent.MaxTokens)
	assert.InDelta(t, 0.2, *config.Agent.Temperature, 1e-9)
	assert.Equal(t, "/var/lib/mf.db", config.Storage.Path)
}

func TestOpenAIKeyFallback(t *testing.T) {
	config, err := newTestLoader(afero.NewMemMapFs(), map[string]string{
		"OPENAI_API_KEY": "sk-openai",
	}).Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-openai", config.LLM.APIKey)

	config, err = newTestLoader(afero.NewMemMapFs(), map[string]string{
		"OPENAI_API_KEY":     "sk-openai",
		"OPENROUTER_API_KEY": "sk-or",
	}).Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-or", config.LLM.APIKey)
}

func TestEnvironmentOverrideInvalidNumber(t *testing.T) {
	_, err := newTestLoader(afero.NewMemMapFs(), map[string]string{
		"MOVIEFINDER_MAX_STEPS": "lots",
	}).Load("")
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "MOVIEFINDER_MAX_STEPS", verr.Field)
}

func TestSaveFileRoundTrip(t *testing.T) {
	fsys := afero.NewMemMapFs()
	loader := newTestLoader(fsys, nil)

	c := DefaultConfig()
	c.LLM.Model = "saved/model"
	require.NoError(t, loader.SaveFile(c, "/out/config.yaml"))

	loaded, err := loader.Load("/out/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "saved/model", loaded.LLM.Model)
	assert.Equal(t, c.LLM.Timeout, loaded.LLM.Timeout)
}

func TestDurationJSON(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"1m30s"`), &d))
	assert.Equal(t, 90*time.Second, d.Std())

	require.NoError(t, json.Unmarshal([]byte(`12`), &d))
	assert.Equal(t, 12*time.Second, d.Std())

	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &d))
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "(not set)", MaskKey(""))
	assert.Equal(t, "*****", MaskKey("short"))
	assert.Equal(t, "sk-o********cdef", MaskKey("sk-o12345678cdef"))

	c := DefaultConfig()
	c.LLM.APIKey = "sk-or-1234567890"
	r := c.Redacted()
	assert.NotContains(t, r.LLM.APIKey, "34567")
	assert.Equal(t, "sk-or-1234567890", c.LLM.APIKey)
}
