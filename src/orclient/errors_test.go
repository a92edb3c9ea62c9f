package orclient

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIError(t *testing.T) {
	tests := []struct {
		name        string
		err         *APIError
		expectedMsg string
		isRetryable bool
		isRateLimit bool
		isAuthError bool
	}{
		{
			name:        "basic error",
			err:         &APIError{StatusCode: 400, Message: "Bad request"},
			expectedMsg: "API error 400: Bad request",
		},
		{
			name: "error with code",
			err: &APIError{
				StatusCode: 403,
				Message:    "Forbidden",
				Code:       "insufficient_permissions",
			},
			expectedMsg: "API error 403 (insufficient_permissions): Forbidden",
		},
		{
			name:        "server error",
			err:         &APIError{StatusCode: 500, Message: "Internal server error"},
			expectedMsg: "API error 500: Internal server error",
			isRetryable: true,
		},
		{
			name: "rate limit error",
			err: &APIError{
				StatusCode: 429,
				Message:    "Too many requests",
				Code:       "rate_limit_exceeded",
			},
			expectedMsg: "API error 429 (rate_limit_exceeded): Too many requests",
			isRetryable: true,
			isRateLimit: true,
		},
		{
			name: "auth error",
			err: &APIError{
				StatusCode: 401,
				Message:    "Invalid API key",
				Code:       "invalid_api_key",
			},
			expectedMsg: "API error 401 (invalid_api_key): Invalid API key",
			isAuthError: true,
		},
		{
			name: "timeout error",
			err: &APIError{
				StatusCode: 504,
				Message:    "Gateway timeout",
				Code:       "timeout",
			},
			expectedMsg: "API error 504 (timeout): Gateway timeout",
			isRetryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedMsg, tt.err.Error())
			assert.Equal(t, tt.isRetryable, tt.err.IsRetryable())
			assert.Equal(t, tt.isRateLimit, tt.err.IsRateLimit())
			assert.Equal(t, tt.isAuthError, tt.err.IsAuthError())
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "retryable API error", err: &APIError{StatusCode: 500}, want: true},
		{name: "non-retryable API error", err: &APIError{StatusCode: 400}, want: false},
		{name: "wrapped API error", err: fmt.Errorf("call: %w", &APIError{StatusCode: 503}), want: true},
		{name: "plain error", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}
