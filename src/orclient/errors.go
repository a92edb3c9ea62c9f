package orclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoAPIKey indicates the API key is missing
	ErrNoAPIKey = errors.New("API key is required")

	// ErrInvalidModel indicates an empty model name
	ErrInvalidModel = errors.New("invalid model specified")

	// ErrEmptyResponse indicates the API returned no choices
	ErrEmptyResponse = errors.New("empty response from API")
)

// ErrorResponse represents a standard error response from the API
// This matches the OpenRouter error format: {"error":{"message":"...","code":"..."}}
type ErrorResponse struct {
	Error struct {
		Message string                 `json:"message"`
		Type    string                 `json:"type"`
		Code    any                    `json:"code,omitempty"`
		Param   string                 `json:"param,omitempty"`
		Details map[string]interface{} `json:"metadata,omitempty"`
	} `json:"error"`
}

// APIError represents an error response from the OpenRouter API.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
	Code       string
	Param      string
	Details    map[string]interface{}
	RequestID  string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the error is retryable.
func (e *APIError) IsRetryable() bool {
	if e.StatusCode >= 500 && e.StatusCode < 600 {
		return true
	}
	if e.StatusCode == http.StatusTooManyRequests {
		return true
	}
	switch e.Code {
	case "timeout", "connection_error", "server_error":
		return true
	}
	return false
}

// IsRateLimit returns true if this is a rate limit error.
func (e *APIError) IsRateLimit() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.Code == "rate_limit_exceeded"
}

// IsAuthError returns true if this is an authentication error.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.Code == "invalid_api_key"
}

// IsRetryable checks if an error returned by the client is worth retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsRetryable()
	}
	return false
}
