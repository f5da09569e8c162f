// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types, display and exit codes for medchat commands.
//
// Commands always return errors; Main decides how to display them.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/medchat-tui/internal/apiclient"
	"github.com/jeranaias/medchat-tui/internal/config"
	"github.com/jeranaias/medchat-tui/internal/media"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitAuthError indicates a missing or rejected session
	ExitAuthError = 4
	// ExitNetworkError indicates the gateway could not be reached
	ExitNetworkError = 5
	// ExitNotFoundError indicates a resource was not found
	ExitNotFoundError = 7
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
)

// ErrNotLoggedIn is returned by commands that need a session when none is
// stored or the stored one was rejected.
var ErrNotLoggedIn = errors.New("not logged in; run 'medchat login' first")

// =============================================================================
// ERROR TYPES
// =============================================================================

// ValidationError represents a validation failure for user input.
type ValidationError struct {
	Field   string // Field that failed validation
	Reason  string // Why validation failed
	Example string // Example of valid usage (optional)
}

func (e *ValidationError) Error() string {
	msg := e.Reason
	if e.Field != "" {
		msg = fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nUsage: %s", e.Example)
	}
	return msg
}

// ErrMissingArgument creates an error for missing required arguments.
func ErrMissingArgument(argName, usage string) error {
	return &ValidationError{Field: argName, Reason: "required argument missing", Example: usage}
}

// =============================================================================
// DISPLAY
// =============================================================================

// errorMessage is the text shown for err. Gateway errors already carry a
// user-facing message.
func errorMessage(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return apiclient.MsgRequestFailed
}

// DisplayError prints err to w. In JSON mode the error envelope is printed
// instead. Errors already reported through OutputJSON are skipped.
func DisplayError(w io.Writer, err error, jsonMode bool, command string) {
	if err == nil {
		return
	}
	var reported *reportedError
	if errors.As(err, &reported) {
		return
	}
	if jsonMode {
		_ = NewJSONErrorResponse(command, err).Print(w)
		return
	}
	fmt.Fprintf(w, "%s %s\n", RenderStatus("error"), ErrorStyle.Render(errorMessage(err)))
}

// GetExitCode determines the appropriate exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return ExitUsageError
	}
	var configErr config.ValidateErrors
	if errors.As(err, &configErr) {
		return ExitConfigError
	}
	if errors.Is(err, ErrNotLoggedIn) || apiclient.IsUnauthorized(err) {
		return ExitAuthError
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ExitTimeoutError
	}
	if errors.Is(err, media.ErrNotImage) || errors.Is(err, media.ErrTooLarge) || errors.Is(err, media.ErrEmptyRecording) {
		return ExitUsageError
	}

	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Status == 0:
			if strings.Contains(strings.ToLower(apiErr.Message), "timeout") {
				return ExitTimeoutError
			}
			return ExitNetworkError
		case apiErr.Status == 404:
			return ExitNotFoundError
		case apiErr.Status == 403:
			return ExitAuthError
		}
	}

	return ExitGeneralError
}

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
