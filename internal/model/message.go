// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/advith-tui/internal/util"
)

// TimeLayout is the display format for message timestamps.
const TimeLayout = "15:04"

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser   Role = "user"
	RoleSystem Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns the sender label shown next to a message.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleSystem:
		return "Chatbot"
	default:
		return string(r)
	}
}

// =============================================================================
// DELIVERY STATE
// =============================================================================

// Delivery tracks whether a message has been reconciled with the server.
type Delivery string

const (
	// DeliveryPending marks a user message inserted before the reply arrived.
	DeliveryPending Delivery = "pending"
	// DeliveryConfirmed marks a message the server has acknowledged.
	DeliveryConfirmed Delivery = "confirmed"
	// DeliveryFailed marks a user message whose send failed.
	DeliveryFailed Delivery = "failed"
)

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single message in a conversation.
type Message struct {
	// LocalID is assigned on creation and never changes.
	LocalID string `json:"local_id"`

	// ServerID is the backend's message id, used to correlate feedback.
	ServerID string `json:"server_id,omitempty"`

	Role      Role      `json:"role"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
	Content   string    `json:"content"`

	Delivery Delivery `json:"delivery"`

	// IsError marks a system message that reports a failed request.
	IsError bool `json:"is_error,omitempty"`
}

// NewMessage creates a confirmed message stamped with the current time.
func NewMessage(role Role, content string) *Message {
	return &Message{
		LocalID:   uuid.NewString(),
		Role:      role,
		Sender:    role.DisplayName(),
		Timestamp: time.Now(),
		Content:   content,
		Delivery:  DeliveryConfirmed,
	}
}

// NewUserMessage creates a user message awaiting server confirmation.
func NewUserMessage(content string) *Message {
	msg := NewMessage(RoleUser, content)
	msg.Delivery = DeliveryPending
	return msg
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) *Message {
	return NewMessage(RoleSystem, content)
}

// NewErrorMessage creates a system message carrying a request failure.
func NewErrorMessage(content string) *Message {
	msg := NewSystemMessage(content)
	msg.IsError = true
	return msg
}

// DisplayTime returns the timestamp as HH:MM.
func (m *Message) DisplayTime() string {
	if m.Timestamp.IsZero() {
		return ""
	}
	return m.Timestamp.Format(TimeLayout)
}

// IsPending reports whether the message is still awaiting confirmation.
func (m *Message) IsPending() bool {
	return m.Delivery == DeliveryPending
}

// Preview returns the first line of the content truncated to maxWidth columns.
func (m *Message) Preview(maxWidth int) string {
	return util.TruncateWidth(util.FirstLine(m.Content), maxWidth)
}

// Clone returns a copy of the message.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}
