// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/advith-tui/internal/api"
	"github.com/jeranaias/advith-tui/internal/auth"
	"github.com/jeranaias/advith-tui/internal/config"
	"github.com/jeranaias/advith-tui/internal/session"
	"github.com/jeranaias/advith-tui/internal/validate"
)

// requestTimeout bounds every command issued from the widget.
const requestTimeout = 45 * time.Second

// =============================================================================
// MESSAGES
// =============================================================================

// authDoneMsg completes a login or signup.
type authDoneMsg struct {
	profile auth.Profile
	err     error
}

// logoutDoneMsg completes a logout.
type logoutDoneMsg struct {
	err error
}

// conversationsLoadedMsg completes a history load.
type conversationsLoadedMsg struct {
	err error
}

// sendDoneMsg completes a chat send. The ticket carries the conversation
// LocalID the reply belongs to.
type sendDoneMsg struct {
	pending *session.Pending
	resp    *api.ChatResponse
	err     error
}

// deleteDoneMsg completes a conversation delete.
type deleteDoneMsg struct {
	title string
	err   error
}

// feedbackDoneMsg completes a feedback submission.
type feedbackDoneMsg struct {
	err error
}

// emailDoneMsg completes an email transcript request.
type emailDoneMsg struct {
	status *api.StatusResponse
	err    error
}

// feedbackRevealMsg is sent when the feedback timer fires.
type feedbackRevealMsg struct {
	feedback session.Feedback
}

// configReloadMsg carries a hot-reloaded config.
type configReloadMsg struct {
	reload config.Reload
}

// =============================================================================
// COMMAND CREATORS
// =============================================================================

func withTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

func loginCmd(acct Account, form validate.Login) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		profile, err := acct.Login(ctx, form)
		return authDoneMsg{profile: profile, err: err}
	}
}

func signupCmd(acct Account, form validate.Signup) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		profile, err := acct.Signup(ctx, form)
		return authDoneMsg{profile: profile, err: err}
	}
}

func logoutCmd(acct Account) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		return logoutDoneMsg{err: acct.Logout(ctx)}
	}
}

func loadConversationsCmd(m *session.Machine, email string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		return conversationsLoadedMsg{err: m.LoadConversations(ctx, email)}
	}
}

func sendCmd(m *session.Machine, p *session.Pending) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		resp, err := m.Execute(ctx, p)
		return sendDoneMsg{pending: p, resp: resp, err: err}
	}
}

func deleteCmd(m *session.Machine, localID, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		return deleteDoneMsg{title: title, err: m.DeleteConversation(ctx, localID)}
	}
}

func feedbackCmd(m *session.Machine, rating int, suggestion string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		return feedbackDoneMsg{err: m.SubmitFeedback(ctx, rating, suggestion)}
	}
}

func emailCmd(m *session.Machine) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		status, err := m.EmailTranscript(ctx)
		return emailDoneMsg{status: status, err: err}
	}
}

// waitForFeedback blocks until the machine reveals the feedback prompt.
func waitForFeedback(ch <-chan session.Feedback) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		fb, ok := <-ch
		if !ok {
			return nil
		}
		return feedbackRevealMsg{feedback: fb}
	}
}

// waitForReload blocks until the config watcher publishes a reload.
func waitForReload(ch <-chan config.Reload) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return configReloadMsg{reload: r}
	}
}
