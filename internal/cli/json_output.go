// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - JSON output for --json.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jeranaias/advith-tui/internal/ui/components"
)

// JSONResponse is the envelope every --json command prints.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the RFC 3339 time the response was generated
	Timestamp string `json:"timestamp"`

	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Write encodes the response to w, indented. highlight colours it with
// chroma for a terminal.
func (r *JSONResponse) Write(w io.Writer, highlight bool) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	out := string(data)
	if highlight {
		out = components.HighlightJSON(out)
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

// String returns the JSON response as a string.
func (r *JSONResponse) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":"failed to marshal response: %s","timestamp":"%s"}`,
			err.Error(), time.Now().UTC().Format(time.RFC3339))
	}
	return string(data)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// ProfileData is the payload of whoami.
type ProfileData struct {
	Email            string `json:"email"`
	Name             string `json:"name"`
	Phone            string `json:"phone,omitempty"`
	Country          string `json:"country,omitempty"`
	State            string `json:"state,omitempty"`
	CreatedAt        string `json:"created_at,omitempty"`
	LastActive       string `json:"last_active,omitempty"`
	TotalChats       int    `json:"total_chats"`
	HelpfulResponses int    `json:"helpful_responses"`
	TokenExpires     string `json:"token_expires,omitempty"`
}

// ConversationData is one row of history.
type ConversationData struct {
	Index        int    `json:"index"`
	ID           string `json:"id"`
	Title        string `json:"title"`
	Messages     int    `json:"messages"`
	LastMessage  string `json:"last_message,omitempty"`
	LastActivity string `json:"last_activity"`
	EmailSent    bool   `json:"email_sent"`
}

// ConfigValueData is the payload of config get/set.
type ConfigValueData struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}
