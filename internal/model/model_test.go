// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
	"time"
)

func TestRole_DisplayName(t *testing.T) {
	if got := RoleUser.DisplayName(); got != "You" {
		t.Errorf("RoleUser.DisplayName() = %q", got)
	}
	if got := RoleSystem.DisplayName(); got != "Chatbot" {
		t.Errorf("RoleSystem.DisplayName() = %q", got)
	}
}

func TestNewUserMessage_IsPending(t *testing.T) {
	msg := NewUserMessage("hello")
	if !msg.IsPending() {
		t.Errorf("user message should start pending, got %q", msg.Delivery)
	}
	if msg.LocalID == "" {
		t.Error("LocalID should be set")
	}
	if msg.Sender != "You" {
		t.Errorf("Sender = %q", msg.Sender)
	}
}

func TestMessage_DisplayTime(t *testing.T) {
	msg := NewSystemMessage("hi")
	msg.Timestamp = time.Date(2024, 3, 1, 9, 5, 0, 0, time.UTC)
	if got := msg.DisplayTime(); got != "09:05" {
		t.Errorf("DisplayTime() = %q", got)
	}

	msg.Timestamp = time.Time{}
	if got := msg.DisplayTime(); got != "" {
		t.Errorf("zero DisplayTime() = %q", got)
	}
}

func TestConversation_AddMessageUpdatesPreview(t *testing.T) {
	conv := NewConversation("")
	conv.AddMessage(NewSystemMessage(Greeting))
	conv.AddMessage(NewUserMessage(strings.Repeat("x", 100) + "\nsecond line"))

	if conv.MessageCount() != 2 {
		t.Fatalf("MessageCount() = %d", conv.MessageCount())
	}
	if len(conv.LastMessage) > PreviewWidth {
		t.Errorf("preview too wide: %d", len(conv.LastMessage))
	}
	if !strings.HasSuffix(conv.LastMessage, "...") {
		t.Errorf("preview should be truncated: %q", conv.LastMessage)
	}
	if conv.GetTitle() != DefaultTitle {
		t.Errorf("GetTitle() = %q", conv.GetTitle())
	}
}

func TestConversation_SetDelivery(t *testing.T) {
	conv := NewConversation(DefaultTitle)
	msg := NewUserMessage("question")
	conv.AddMessage(msg)

	if !conv.HasPending() {
		t.Fatal("expected pending message")
	}
	if !conv.SetDelivery(msg.LocalID, DeliveryConfirmed) {
		t.Fatal("SetDelivery did not find message")
	}
	if conv.HasPending() {
		t.Error("message should be confirmed")
	}
	if conv.SetDelivery("missing", DeliveryFailed) {
		t.Error("SetDelivery should report unknown ids")
	}
}

func TestConversation_GetLastSystemMessage(t *testing.T) {
	conv := NewConversation(DefaultTitle)
	if conv.GetLastSystemMessage() != nil {
		t.Fatal("empty conversation has no system message")
	}
	first := NewSystemMessage("one")
	conv.AddMessage(first)
	conv.AddMessage(NewUserMessage("two"))

	if got := conv.GetLastSystemMessage(); got != first {
		t.Errorf("GetLastSystemMessage() = %v", got)
	}
}

func TestConversation_CloneIsDeep(t *testing.T) {
	conv := NewConversation(DefaultTitle)
	msg := NewUserMessage("q")
	conv.AddMessage(msg)

	cp := conv.Clone()
	cp.Messages[0].Content = "changed"
	cp.AddMessage(NewSystemMessage("a"))

	if msg.Content != "q" {
		t.Error("clone shares message pointers")
	}
	if conv.MessageCount() != 1 {
		t.Error("clone shares message slice")
	}
}
