package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrMissingLLMKey is returned when no reasoning engine key is configured.
	ErrMissingLLMKey = errors.New("missing API key for the reasoning engine (set OPENROUTER_API_KEY)")
	// ErrMissingProviderKey is returned when no movie provider key is configured.
	ErrMissingProviderKey = errors.New("missing API key for the movie provider (set TMDB_API_KEY)")
)

// Validator validates configuration values using go-playground/validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	v := validator.New()

	// Register custom validation functions
	_ = v.RegisterValidation("log_level", validateLogLevel)
	_ = v.RegisterValidation("log_format", validateLogFormat)
	_ = v.RegisterValidation("storage_driver", validateStorageDriver)

	return &Validator{
		validate: v,
	}
}

// ValidateSettings checks every field except credentials.
func (v *Validator) ValidateSettings(config *Config) error {
	if err := v.validate.Struct(config); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			// Report the first failure, like the rest of the CLI does
			for _, e := range validationErrors {
				return ValidationError{
					Field:   e.Namespace(),
					Message: fmt.Sprintf("validation failed on tag '%s' with value '%v'", e.Tag(), e.Value()),
					Value:   e.Value(),
				}
			}
		}
		return err
	}
	if config.Storage.Driver == StorageSQLite && strings.TrimSpace(config.Storage.Path) == "" {
		return ValidationError{Field: "Config.Storage.Path", Message: "required for the sqlite driver"}
	}
	return nil
}

// Validate validates a complete configuration, credentials included.
func (v *Validator) Validate(config *Config) error {
	if err := v.ValidateSettings(config); err != nil {
		return err
	}
	if strings.TrimSpace(config.LLM.APIKey) == "" {
		return ErrMissingLLMKey
	}
	if strings.TrimSpace(config.Provider.APIKey) == "" {
		return ErrMissingProviderKey
	}
	return nil
}

// validateLogLevel validates log level values
func validateLogLevel(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return contains([]string{"debug", "info", "warn", "warning", "error"}, strings.ToLower(value))
}

// validateLogFormat validates log format values
func validateLogFormat(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return contains([]string{"json", "text"}, value)
}

func validateStorageDriver(fl validator.FieldLevel) bool {
	return contains([]string{StorageMemory, StorageSQLite}, fl.Field().String())
}

// contains checks if a string is in a slice
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
