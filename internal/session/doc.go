// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session drives the client-side view of a user's support
// conversations.
//
// # Key Types
//
//   - Machine: owns the conversation list, the active conversation, the
//     in-flight send per conversation, and the feedback prompt
//   - Pending: ticket for one send cycle, returned by BeginSend
//   - Outcome: result of a completed send cycle
//   - Snapshot: a copy of the state for rendering
//
// # Send Cycle
//
// Each send moves one conversation through Idle, Sending, AwaitingReply and
// then Replied or Failed. The user message is appended immediately tagged
// pending; the reply (or an error message) is appended when the request
// completes, and the user message is tagged confirmed or failed. A second
// send on the same conversation is ignored until the first completes.
//
// Completions are applied by conversation LocalID, so a reply that arrives
// after the user switched conversations lands in the right place.
//
// # Usage
//
//	m := session.NewMachine(client, authSession, session.DefaultConfig())
//	if _, err := m.StartNewConversation(); err != nil {
//	    return err
//	}
//	out := m.SendMessage(ctx, "How do I file GST returns?")
//	if out.State == session.StateFailed {
//	    // the error is already in the conversation
//	}
package session
