// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultTitle names a conversation the server has not titled yet.
	DefaultTitle = "New Conversation"

	// Greeting seeds every new conversation.
	Greeting = "How can we help you today?"

	// PreviewWidth is the width of the last-message preview in lists.
	PreviewWidth = 48
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds a support conversation and its message history.
type Conversation struct {
	// ID is the server-assigned session id. Empty until the first reply
	// persists the conversation on the backend.
	ID string `json:"id,omitempty"`

	// LocalID identifies the conversation on this client for its lifetime.
	LocalID string `json:"local_id"`

	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`

	Messages []*Message `json:"messages"`

	// EmailSent is set once a transcript has been emailed to the user.
	EmailSent bool `json:"email_sent,omitempty"`

	LastMessage  string    `json:"last_message,omitempty"`
	LastActivity time.Time `json:"last_activity"`
}

// NewConversation creates an empty conversation with a fresh LocalID.
func NewConversation(title string) *Conversation {
	now := time.Now()
	return &Conversation{
		LocalID:      uuid.NewString(),
		Title:        title,
		CreatedAt:    now,
		LastActivity: now,
		Messages:     make([]*Message, 0, 8),
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddMessage appends msg and refreshes the list preview.
func (c *Conversation) AddMessage(msg *Message) {
	c.Messages = append(c.Messages, msg)
	c.LastMessage = msg.Preview(PreviewWidth)
	if msg.Timestamp.After(c.LastActivity) {
		c.LastActivity = msg.Timestamp
	}
}

// SetDelivery updates the delivery tag of the message with the given
// LocalID. It reports whether the message was found.
func (c *Conversation) SetDelivery(localID string, d Delivery) bool {
	for _, m := range c.Messages {
		if m.LocalID == localID {
			m.Delivery = d
			return true
		}
	}
	return false
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// GetLastMessage returns the most recent message, or nil if empty.
func (c *Conversation) GetLastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// GetLastSystemMessage returns the most recent system message, or nil.
func (c *Conversation) GetLastSystemMessage() *Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleSystem {
			return c.Messages[i]
		}
	}
	return nil
}

// HasPending reports whether any message is still awaiting confirmation.
func (c *Conversation) HasPending() bool {
	for _, m := range c.Messages {
		if m.IsPending() {
			return true
		}
	}
	return false
}

// IsPersisted reports whether the server has assigned an id.
func (c *Conversation) IsPersisted() bool {
	return c.ID != ""
}

// GetTitle returns the title or the default for untitled conversations.
func (c *Conversation) GetTitle() string {
	if c.Title == "" {
		return DefaultTitle
	}
	return c.Title
}

// Clone returns a deep copy suitable for rendering outside the owner's lock.
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Messages = make([]*Message, len(c.Messages))
	for i, m := range c.Messages {
		cp.Messages[i] = m.Clone()
	}
	return &cp
}
