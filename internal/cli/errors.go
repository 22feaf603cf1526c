// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/shopassist/internal/config"
	"github.com/jeranaias/shopassist/internal/conversation"
	"github.com/jeranaias/shopassist/internal/gateway"
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
	// ExitAuthError indicates the gateway rejected the bearer token
	ExitAuthError = 4
	// ExitNetworkError indicates the gateway could not be reached
	ExitNetworkError = 5
	// ExitNotFoundError indicates a product, order or persona was not found
	ExitNotFoundError = 7
	// ExitTimeoutError indicates a gateway call timed out
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "ask", "order")
	Action  string // Action being performed
	Reason  string // Human-readable reason
	Err     error  // Underlying error (if any)
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ValidationError represents a validation failure for user input.
type ValidationError struct {
	Field   string
	Value   string
	Reason  string
	Example string // optional
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{Command: command, Action: action, Reason: reason, Err: err}
}

// NewValidationErrorWithExample creates a validation error with a usage hint.
func NewValidationErrorWithExample(field, value, reason, example string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason, Example: example}
}

// ErrMissingArgument reports a required argument that was not given.
func ErrMissingArgument(argName, usage string) error {
	return &ValidationError{Field: argName, Reason: "required", Example: usage}
}

// ErrUnsupportedFormat reports an export or output format that is not known.
func ErrUnsupportedFormat(format string, supported []string) error {
	return &ValidationError{
		Field:   "format",
		Value:   format,
		Reason:  "unsupported format",
		Example: "one of " + strings.Join(supported, ", "),
	}
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError prints err to stderr.
func DisplayError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
	if hint := errorHint(err); hint != "" {
		fmt.Fprintln(os.Stderr, DimStyle.Render(hint))
	}
}

func errorHint(err error) string {
	switch {
	case gateway.IsUnauthorized(err):
		return "Your session may have expired. Sign in again and pass the new token with --token."
	case gateway.TypeOf(err) == gateway.ErrTypeUnavailable:
		return "Check --base-url, or try --offline to use the built-in assistants."
	case errors.Is(err, conversation.ErrInvalidPersona):
		return "Run 'shopassist personas' to see the available assistants."
	}
	var verr config.ValidateErrors
	if errors.As(err, &verr) {
		return "Fix the settings above with 'shopassist config set <key> <value>'."
	}
	return ""
}

// GetExitCode maps an error to an exit status.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return ExitUsageError
	}
	var cfgErr config.ValidateErrors
	if errors.As(err, &cfgErr) {
		return ExitConfigError
	}
	var cfgFieldErr config.ValidationError
	if errors.As(err, &cfgFieldErr) {
		return ExitConfigError
	}
	if errors.Is(err, conversation.ErrInvalidPersona) || errors.Is(err, conversation.ErrEmptyInput) {
		return ExitUsageError
	}

	switch gateway.TypeOf(err) {
	case gateway.ErrTypeUnauthorized:
		return ExitAuthError
	case gateway.ErrTypeUnavailable:
		return ExitNetworkError
	case gateway.ErrTypeTimeout:
		return ExitTimeoutError
	case gateway.ErrTypeNotFound, gateway.ErrTypeInvalidPersona:
		return ExitNotFoundError
	}

	if strings.Contains(strings.ToLower(err.Error()), "config") {
		return ExitConfigError
	}
	return ExitGeneralError
}
