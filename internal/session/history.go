// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"github.com/jeranaias/advith-tui/internal/api"
	"github.com/jeranaias/advith-tui/internal/model"
)

// FromHistory converts a server conversation into the local model. Every
// exchange becomes a user message followed by a system message carrying the
// exchange id, so any past reply can be rated.
func FromHistory(h api.HistoryConversation) *model.Conversation {
	conv := model.NewConversation(h.Title)
	conv.ID = h.ID.String()
	conv.EmailSent = h.EmailSent
	if created := api.ParseTime(h.CreatedAt); !created.IsZero() {
		conv.CreatedAt = created
		conv.LastActivity = created
	}

	for _, e := range h.Messages {
		at := e.Time()

		user := model.NewMessage(model.RoleUser, e.UserMessage)
		user.Timestamp = at
		conv.AddMessage(user)

		bot := model.NewMessage(model.RoleSystem, e.BotResponse)
		bot.Timestamp = at
		bot.ServerID = e.ID.String()
		conv.AddMessage(bot)
	}
	return conv
}
