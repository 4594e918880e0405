// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for support conversations and
// their messages.
//
// # Key Types
//
//   - Conversation: a titled, ordered sequence of messages tied to one user.
//     It carries a client-side LocalID from creation and a server ID once
//     the backend has persisted it.
//   - Message: one exchanged message, tagged with a Delivery state so an
//     optimistic insert can be told apart from a confirmed one.
//   - Role: the sender, either the user or the support system.
//
// # Usage
//
//	conv := model.NewConversation(model.DefaultTitle)
//	conv.AddMessage(model.NewSystemMessage(model.Greeting))
//	msg := model.NewUserMessage("Where is my invoice?")
//	conv.AddMessage(msg)
//	conv.SetDelivery(msg.LocalID, model.DeliveryConfirmed)
package model
