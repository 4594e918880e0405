// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types, exit codes and error display for advith commands.
//
// Handlers always return errors; main displays them once and exits with
// GetExitCode.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/advith-tui/internal/api"
	"github.com/jeranaias/advith-tui/internal/auth"
	"github.com/jeranaias/advith-tui/internal/config"
	"github.com/jeranaias/advith-tui/internal/validate"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitAuthError indicates the user is signed out or the token was refused
	ExitAuthError = 4
	// ExitNetworkError indicates the backend could not be reached
	ExitNetworkError = 5
	// ExitServerError indicates the backend answered with an error
	ExitServerError = 6
	// ExitNotFoundError indicates a resource was not found
	ExitNotFoundError = 7
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "qa", "transcripts")
	Action  string // Action being performed (e.g., "search", "delete")
	Reason  string
	Err     error
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

// ValidationError represents invalid user input.
type ValidationError struct {
	Field   string
	Value   string
	Reason  string
	Example string
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

// NotFoundError represents a resource not found error.
type NotFoundError struct {
	Resource string // e.g. "conversation", "transcript"
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrNotSignedIn is returned by commands that need a session.
var ErrNotSignedIn = fmt.Errorf("%w: run 'advith login' first", auth.ErrNoSession)

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{Command: command, Action: action, Reason: reason, Err: err}
}

// ErrMissingArgument creates an error for a missing required argument.
func ErrMissingArgument(argName, usage string) error {
	return &ValidationError{Field: argName, Reason: "required argument missing", Example: usage}
}

// ErrInvalidFormat creates an error for a malformed argument.
func ErrInvalidFormat(field, value, expected string) error {
	return &ValidationError{Field: field, Value: value, Reason: "invalid format", Example: expected}
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// =============================================================================
// DISPLAY
// =============================================================================

// errorPayload is the --json shape of a failed command.
type errorPayload struct {
	Type   string            `json:"error_type"`
	Field  string            `json:"field,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
	Status int               `json:"status_code,omitempty"`
}

// DisplayError writes err to w. In JSON mode a JSONResponse with
// Success=false is written instead.
func DisplayError(w io.Writer, command string, err error, jsonMode bool) {
	if err == nil {
		return
	}

	if jsonMode {
		resp := NewJSONErrorResponse(command, err)
		resp.Data = describeError(err)
		_ = resp.Write(w, false)
		return
	}

	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())

	var fe validate.FieldErrors
	if errors.As(err, &fe) {
		for _, f := range fe.Fields() {
			fmt.Fprintf(w, "  %s %s\n", LabelStyle.Render(string(f)+":"), fe.Get(f))
		}
	}
}

func describeError(err error) errorPayload {
	p := errorPayload{Type: "generic_error"}

	var ve *ValidationError
	var nf *NotFoundError
	var fe validate.FieldErrors
	var ce *api.ClientError
	switch {
	case errors.As(err, &ve):
		p.Type = "validation_error"
		p.Field = ve.Field
	case errors.As(err, &nf):
		p.Type = "not_found_error"
	case errors.As(err, &fe):
		p.Type = "validation_error"
		p.Fields = make(map[string]string)
		for _, f := range fe.Fields() {
			p.Fields[string(f)] = fe.Get(f)
		}
	case errors.As(err, &ce):
		p.Type = ce.Type.String() + "_error"
		p.Status = ce.StatusCode
	case errors.Is(err, auth.ErrNoSession):
		p.Type = "unauthorized_error"
	}
	return p
}

// GetExitCode maps an error to a process exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var ve *ValidationError
	var fe validate.FieldErrors
	if errors.As(err, &ve) || errors.As(err, &fe) {
		return ExitUsageError
	}

	var nf *NotFoundError
	if errors.As(err, &nf) {
		return ExitNotFoundError
	}

	var cfgErr config.ValidateErrors
	if errors.As(err, &cfgErr) {
		return ExitConfigError
	}

	if errors.Is(err, auth.ErrNoSession) {
		return ExitAuthError
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ExitTimeoutError
	}

	switch api.TypeOf(err) {
	case api.ErrTypeUnauthorized:
		return ExitAuthError
	case api.ErrTypeNetwork:
		return ExitNetworkError
	case api.ErrTypeValidation:
		return ExitUsageError
	case api.ErrTypeServer, api.ErrTypeInvalidResponse:
		var ce *api.ClientError
		if errors.As(err, &ce) && ce.StatusCode == 404 {
			return ExitNotFoundError
		}
		return ExitServerError
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
