package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/elee1766/moviefinder/src/config"
	"github.com/elee1766/moviefinder/src/orclient"
	"github.com/elee1766/moviefinder/src/tmdb"
)

// Exit codes following standard conventions
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error
	ExitUsage       = 2 // Usage error
	ExitConfig      = 3 // Configuration error
	ExitAuth        = 4 // Authentication error
	ExitNetwork     = 6 // Network error
	ExitTimeout     = 7 // Timeout error
	ExitInterrupted = 8 // Interrupted by user
)

var errUsage = errors.New("usage")

// exitCode determines the appropriate exit code for an error
func exitCode(err error) int {
	var (
		verr   config.ValidationError
		apiErr *orclient.APIError
	)
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, config.ErrMissingLLMKey),
		errors.Is(err, config.ErrMissingProviderKey),
		errors.Is(err, orclient.ErrNoAPIKey),
		errors.Is(err, tmdb.ErrNoAPIKey):
		return ExitAuth
	case errors.As(err, &apiErr) && apiErr.IsAuthError():
		return ExitAuth
	case errors.As(err, &verr):
		return ExitConfig
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, context.DeadlineExceeded):
		return ExitTimeout
	case errors.Is(err, errUsage):
		return ExitUsage
	case isConfigError(err):
		return ExitConfig
	default:
		return ExitError
	}
}

// isConfigError matches configuration failures that are not
// ValidationErrors, e.g. unreadable or malformed files.
func isConfigError(err error) bool {
	return strings.Contains(err.Error(), "configuration")
}

// reportError prints err and returns the exit code for it
func reportError(w io.Writer, err error) int {
	code := exitCode(err)
	if code == ExitInterrupted {
		return code
	}
	fmt.Fprintf(w, "Error: %s\n", err.Error())
	return code
}
