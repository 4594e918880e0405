// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history_cmd.go - history, delete and feedback.
//
// Examples:
//   advith history                 List conversations, newest first
//   advith history 2               Print conversation 2
//   advith delete 2 --yes          Delete conversation 2
//   advith feedback 70 5 "Clear and quick"

package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/advith-tui/internal/api"
	"github.com/jeranaias/advith-tui/internal/model"
	"github.com/jeranaias/advith-tui/internal/util"
)

// HandleHistory lists the user's conversations, or prints one when an
// index or id is given.
func HandleHistory(ctx context.Context, app *App, args Args) error {
	convs, err := loadConversations(ctx, app)
	if err != nil {
		return err
	}

	p := args.Parser()
	if ref := p.Positional(0); ref != "" {
		conv, err := resolveConversation(convs, ref)
		if err != nil {
			return err
		}
		if app.JSON {
			return app.PrintJSON("history", conv)
		}
		printConversation(app, conv)
		return nil
	}

	if app.JSON {
		rows := make([]ConversationData, 0, len(convs))
		for i, c := range convs {
			rows = append(rows, conversationData(i+1, c))
		}
		return app.PrintJSON("history", rows)
	}

	if len(convs) == 0 {
		app.Printf("No conversations yet. Start one with 'advith chat'.\n")
		return nil
	}
	fmt.Fprintln(app.Out, formatConversations(convs))
	return nil
}

// HandleDelete deletes a conversation by list index or server id.
func HandleDelete(ctx context.Context, app *App, args Args) error {
	p := args.Parser("yes", "y")
	ref := p.Positional(0)
	if ref == "" {
		return ErrMissingArgument("conversation", "advith delete 2")
	}

	convs, err := loadConversations(ctx, app)
	if err != nil {
		return err
	}
	conv, err := resolveConversation(convs, ref)
	if err != nil {
		return err
	}

	if !p.BoolFlag("yes") && !p.BoolFlag("y") && !app.JSON {
		ok, err := NewPrompter(app.In, app.Err).Confirm(fmt.Sprintf("Delete %q?", conv.GetTitle()))
		if err != nil {
			return err
		}
		if !ok {
			app.Printf("Cancelled.\n")
			return nil
		}
	}

	if err := app.Machine.DeleteConversation(ctx, conv.LocalID); err != nil {
		return err
	}
	if app.JSON {
		return app.PrintJSON("delete", map[string]string{"id": conv.ID, "title": conv.GetTitle()})
	}
	app.Success("Deleted %q", conv.GetTitle())
	return nil
}

// HandleFeedback rates a bot reply by its message id.
func HandleFeedback(ctx context.Context, app *App, args Args) error {
	if err := app.RequireSession(); err != nil {
		return err
	}
	p := args.Parser()
	messageID := p.Positional(0)
	if messageID == "" {
		return ErrMissingArgument("message-id", "advith feedback 70 5 \"Very helpful\"")
	}
	ratingArg := p.Positional(1)
	if ratingArg == "" {
		return ErrMissingArgument("rating", "advith feedback 70 5")
	}
	rating, err := parseRating(ratingArg)
	if err != nil {
		return err
	}
	suggestion := strings.TrimSpace(JoinPositionalArgs(p, 2))
	if s := p.Flag("suggestion"); s != "" {
		suggestion = s
	}

	req := api.FeedbackRequest{Rating: rating, Suggestion: util.Normalize(suggestion)}
	if err := app.Client.SubmitFeedback(ctx, api.ID(messageID), req); err != nil {
		return err
	}
	if app.JSON {
		return app.PrintJSON("feedback", map[string]any{"message_id": messageID, "rating": rating})
	}
	app.Success("Thank you for your feedback!")
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func loadConversations(ctx context.Context, app *App) ([]*model.Conversation, error) {
	if err := app.RequireSession(); err != nil {
		return nil, err
	}
	if err := app.Machine.LoadConversations(ctx, app.Session.Email()); err != nil {
		return nil, err
	}
	return app.Machine.Snapshot().Conversations, nil
}

// resolveConversation finds a conversation by 1-based index, then by id.
func resolveConversation(convs []*model.Conversation, ref string) (*model.Conversation, error) {
	for _, c := range convs {
		if c.ID == ref {
			return c, nil
		}
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(convs) {
		return convs[n-1], nil
	}
	return nil, ErrNotFound("conversation", ref)
}

func parseRating(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < api.MinRating || n > api.MaxRating {
		return 0, &ValidationError{
			Field:   "rating",
			Value:   s,
			Reason:  fmt.Sprintf("must be between %d and %d", api.MinRating, api.MaxRating),
			Example: "5",
		}
	}
	return n, nil
}

func conversationData(index int, c *model.Conversation) ConversationData {
	return ConversationData{
		Index:        index,
		ID:           c.ID,
		Title:        c.GetTitle(),
		Messages:     c.MessageCount(),
		LastMessage:  c.LastMessage,
		LastActivity: c.LastActivity.Format(time.RFC3339),
		EmailSent:    c.EmailSent,
	}
}

func formatConversations(convs []*model.Conversation) string {
	var sb strings.Builder
	sb.WriteString(util.PadRight("#", 4) + util.PadRight("ID", 8) + util.PadRight("Last activity", 18) +
		util.PadRight("Msgs", 6) + "Title\n")
	sb.WriteString(RenderSeparator(72) + "\n")
	for i, c := range convs {
		sb.WriteString(util.PadRight(strconv.Itoa(i+1), 4))
		sb.WriteString(util.PadRight(c.ID, 8))
		sb.WriteString(util.PadRight(c.LastActivity.Format("Jan 2 15:04"), 18))
		sb.WriteString(util.PadRight(strconv.Itoa(c.MessageCount()), 6))
		title := truncate(c.GetTitle(), 34)
		if c.EmailSent {
			title += DimStyle.Render(" (emailed)")
		}
		sb.WriteString(title)
		if c.LastMessage != "" {
			sb.WriteString("\n" + strings.Repeat(" ", 36) + DimStyle.Render(truncate(c.LastMessage, 40)))
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func printConversation(app *App, conv *model.Conversation) {
	fmt.Fprintln(app.Out, TitleStyle.Render(conv.GetTitle()))
	fmt.Fprintln(app.Out, RenderSeparator(60))
	for _, m := range conv.Messages {
		printMessage(app, m)
	}
}

func printMessage(app *App, m *model.Message) {
	label := m.Sender
	if label == "" {
		label = m.Role.DisplayName()
	}
	head := PromptStyle.Render(label)
	if app.Config.UI.ShowTimestamps && m.DisplayTime() != "" {
		head += " " + DimStyle.Render(m.DisplayTime())
	}
	if m.ServerID != "" && m.Role == model.RoleSystem {
		head += " " + DimStyle.Render("#"+m.ServerID)
	}
	body := m.Content
	switch {
	case m.IsError:
		body = ErrorStyle.Render(body)
	case m.Delivery == model.DeliveryFailed:
		body += " " + ErrorStyle.Render("(not delivered)")
	}
	fmt.Fprintf(app.Out, "%s\n%s\n\n", head, body)
}
