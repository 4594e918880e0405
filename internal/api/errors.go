// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeValidation
	ErrTypeNetwork
	ErrTypeServer
	ErrTypeUnauthorized
	ErrTypeInvalidResponse
)

// String returns a short name for the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeValidation:
		return "validation"
	case ErrTypeNetwork:
		return "network"
	case ErrTypeServer:
		return "server"
	case ErrTypeUnauthorized:
		return "unauthorized"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// ClientError is the error returned by every Client method. Message is the
// text suitable for showing to the user; Cause holds the underlying error.
type ClientError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Cause      error
}

func (e *ClientError) Error() string {
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches sentinel ClientErrors by type and message.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return t.Type == e.Type && (t.Message == "" || t.Message == e.Message)
}

// Detail returns the message with the underlying cause, for logs.
func (e *ClientError) Detail() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

const (
	// MsgNoResponse is reported when the server could not be reached.
	MsgNoResponse = "No response received from server. Please check your internet connection."
	// MsgInvalidResponse is reported when a reply lacks required fields.
	MsgInvalidResponse = "Invalid response from server"
)

// Sentinel errors for easy checking with errors.Is.
var (
	ErrNoResponse      = &ClientError{Type: ErrTypeNetwork, Message: MsgNoResponse}
	ErrInvalidResponse = &ClientError{Type: ErrTypeInvalidResponse, Message: MsgInvalidResponse}
	ErrUnauthorized    = &ClientError{Type: ErrTypeUnauthorized}
)

func validationError(msg string) *ClientError {
	return &ClientError{Type: ErrTypeValidation, Message: msg}
}

func networkError(cause error) *ClientError {
	return &ClientError{Type: ErrTypeNetwork, Message: MsgNoResponse, Cause: cause}
}

// TypeOf returns the ErrorType of err, or ErrTypeUnknown.
func TypeOf(err error) ErrorType {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Type
	}
	return ErrTypeUnknown
}

// IsNetwork reports whether err means no response was received.
func IsNetwork(err error) bool {
	return TypeOf(err) == ErrTypeNetwork
}

// IsUnauthorized reports whether the server rejected the credentials.
func IsUnauthorized(err error) bool {
	return TypeOf(err) == ErrTypeUnauthorized
}

// =============================================================================
// SERVER ERROR PAYLOADS
// =============================================================================

// errorPayload covers the shapes the backend uses for failures: FastAPI's
// {"detail": "..."} or {"detail": [{"msg": "..."}]}, and {"error": "..."}.
type errorPayload struct {
	Detail  json.RawMessage `json:"detail"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

type validationDetail struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// serverMessage extracts the human-readable message from an error body.
func serverMessage(body []byte) string {
	var p errorPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return ""
	}

	if len(p.Detail) > 0 {
		var s string
		if err := json.Unmarshal(p.Detail, &s); err == nil && s != "" {
			return s
		}
		var details []validationDetail
		if err := json.Unmarshal(p.Detail, &details); err == nil && len(details) > 0 {
			msgs := make([]string, 0, len(details))
			for _, d := range details {
				if d.Msg != "" {
					msgs = append(msgs, d.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}
	if p.Error != "" {
		return p.Error
	}
	return p.Message
}

// serverError builds the ClientError for a non-2xx response. fallback names
// the failed operation for bodies without a usable message.
func serverError(status int, body []byte, fallback string) *ClientError {
	msg := serverMessage(body)
	if msg == "" {
		msg = fmt.Sprintf("%s (status %d)", fallback, status)
	}
	typ := ErrTypeServer
	if status == 401 {
		typ = ErrTypeUnauthorized
	}
	return &ClientError{Type: typ, Message: msg, StatusCode: status}
}
