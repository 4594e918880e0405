// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-mode support chat for terminals without the widget.
//
// Command: chat
//
// Interactive commands:
//   /new                 Start a new conversation
//   /list                List conversations
//   /open N              Open conversation N from /list
//   /delete [N]          Delete conversation N, or the open one
//   /feedback R [text]   Rate the last reply 1-5 with an optional suggestion
//   /email               Email the open conversation to yourself
//   /save                Save the open conversation as a local transcript
//   /help                Show these commands
//   /quit                Exit (Ctrl+D also exits)
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/jeranaias/advith-tui/internal/config"
	"github.com/jeranaias/advith-tui/internal/model"
	"github.com/jeranaias/advith-tui/internal/session"
	"github.com/jeranaias/advith-tui/internal/storage"
)

const chatPrompt = "you> "

// =============================================================================
// INPUT
// =============================================================================

// LineReader supplies REPL input. ReadLine returns io.EOF when input ends.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// ChatCLI is a LineReader with line editing and persistent history.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI and loads earlier history.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	if f, err := os.Open(c.historyFile); err == nil {
		_, _ = c.line.ReadHistory(f)
		f.Close()
	}
	return c
}

// ReadLine reads one line. Ctrl+C and Ctrl+D both end the session.
func (c *ChatCLI) ReadLine(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history with 0600 permissions and restores the terminal.
func (c *ChatCLI) Close() error {
	if err := config.EnsureConfigDir(); err == nil {
		if f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			_, _ = c.line.WriteHistory(f)
			f.Close()
		}
	}
	return c.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

// HandleChat runs the line-mode chat on the terminal.
func HandleChat(ctx context.Context, app *App, args Args) error {
	if err := app.RequireSession(); err != nil {
		return err
	}
	in := NewChatCLI()
	defer in.Close()
	return RunChat(ctx, app, in)
}

// RunChat runs the chat loop until /quit or end of input.
func RunChat(ctx context.Context, app *App, in LineReader) error {
	if err := app.RequireSession(); err != nil {
		return err
	}
	r := &repl{app: app, m: app.Machine, email: app.Session.Email()}

	if profile, ok := app.Session.Profile(); ok {
		fmt.Fprintln(app.Out, TitleStyle.Render("Advith iTec Support"))
		fmt.Fprintln(app.Out, DimStyle.Render(fmt.Sprintf("Signed in as %s. Type /help for commands.", profile.DisplayName())))
	}

	if app.Config.Chat.LoadHistoryOnStart {
		if err := r.m.LoadConversations(ctx, r.email); err != nil {
			r.warn(err)
		}
	}
	if active := r.m.Active(); active != nil {
		printConversation(app, active)
		r.info("Continuing your latest conversation. Type /new to start another.")
	} else {
		r.startNew()
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := in.ReadLine(chatPrompt)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(app.Out)
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := r.command(ctx, line); quit {
				return nil
			}
			continue
		}
		r.send(ctx, line)
	}
}

type repl struct {
	app   *App
	m     *session.Machine
	email string
}

func (r *repl) out() io.Writer { return r.app.Out }

func (r *repl) warn(err error) {
	fmt.Fprintf(r.app.Out, "%s %v\n", ErrorStyle.Render("!"), err)
}

func (r *repl) info(format string, args ...any) {
	fmt.Fprintln(r.app.Out, DimStyle.Render(fmt.Sprintf(format, args...)))
}

func (r *repl) startNew() {
	conv, err := r.m.StartNewConversation()
	if err != nil {
		r.warn(err)
		return
	}
	for _, msg := range conv.Messages {
		printMessage(r.app, msg)
	}
}

func (r *repl) send(ctx context.Context, text string) {
	if r.m.Active() == nil {
		r.startNew()
	}
	if !r.app.Quiet {
		r.info("Chatbot is typing...")
	}
	outcome := r.m.SendMessage(ctx, text)
	if outcome.Reply == nil {
		if outcome.Err != nil {
			r.warn(outcome.Err)
		}
		return
	}
	printMessage(r.app, outcome.Reply)
	if outcome.State == session.StateReplied && outcome.Reply.ServerID != "" && !r.app.Quiet {
		r.info("Was this helpful? Rate it with /feedback 1-5 [suggestion]")
	}
}

// command runs a slash command and reports whether to quit.
func (r *repl) command(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	name := strings.ToLower(fields[0])
	rest := fields[1:]

	switch name {
	case "/quit", "/q", "/exit":
		return true

	case "/help", "/h", "/?":
		fmt.Fprint(r.out(), replHelp)

	case "/new":
		r.startNew()

	case "/list", "/ls":
		convs := r.m.Snapshot().Conversations
		if len(convs) == 0 {
			r.info("No conversations yet.")
			return false
		}
		fmt.Fprintln(r.out(), formatConversations(convs))

	case "/open":
		conv, err := r.pick(rest)
		if err != nil {
			r.warn(err)
			return false
		}
		if err := r.m.SelectConversation(conv.LocalID); err != nil {
			r.warn(err)
			return false
		}
		printConversation(r.app, conv)

	case "/delete", "/rm":
		conv := r.m.Active()
		if len(rest) > 0 {
			var err error
			if conv, err = r.pick(rest); err != nil {
				r.warn(err)
				return false
			}
		}
		if conv == nil {
			r.warn(session.ErrNoActiveConversation)
			return false
		}
		if err := r.m.DeleteConversation(ctx, conv.LocalID); err != nil {
			r.warn(err)
			return false
		}
		r.info("Deleted %q", conv.GetTitle())

	case "/feedback", "/rate":
		r.feedback(ctx, rest)

	case "/email":
		status, err := r.m.EmailTranscript(ctx)
		if err != nil {
			r.warn(err)
			return false
		}
		msg := status.Message
		if msg == "" {
			msg = "Chat history sent to your email"
		}
		fmt.Fprintln(r.out(), SuccessStyle.Render(msg))

	case "/save":
		conv := r.m.Active()
		if conv == nil {
			r.warn(session.ErrNoActiveConversation)
			return false
		}
		id, err := r.app.Transcripts.Save(storage.FromConversation(conv, r.email))
		if err != nil {
			r.warn(err)
			return false
		}
		fmt.Fprintln(r.out(), SuccessStyle.Render("Saved transcript "+id))

	default:
		r.warn(fmt.Errorf("unknown command %s (try /help)", name))
	}
	return false
}

func (r *repl) feedback(ctx context.Context, rest []string) {
	if len(rest) == 0 {
		r.warn(ErrMissingArgument("rating", "/feedback 5 Very clear"))
		return
	}
	rating, err := parseRating(rest[0])
	if err != nil {
		r.warn(err)
		return
	}
	if !r.m.ShowFeedback() {
		r.warn(session.ErrNoFeedbackTarget)
		return
	}
	suggestion := strings.Join(rest[1:], " ")
	if err := r.m.SubmitFeedback(ctx, rating, suggestion); err != nil {
		r.app.log.Info("feedback failed", zap.Error(err))
		r.warn(err)
		return
	}
	fmt.Fprintln(r.out(), SuccessStyle.Render("Thank you for your feedback!"))
}

// pick resolves a 1-based /list index.
func (r *repl) pick(args []string) (*model.Conversation, error) {
	if len(args) == 0 {
		return nil, ErrMissingArgument("conversation number", "/open 2")
	}
	convs := r.m.Snapshot().Conversations
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(convs) {
		return nil, ErrNotFound("conversation", args[0])
	}
	return convs[n-1], nil
}

const replHelp = `Commands:
  /new                 Start a new conversation
  /list                List conversations
  /open N              Open conversation N from /list
  /delete [N]          Delete conversation N, or the open one
  /feedback R [text]   Rate the last reply 1-5 with an optional suggestion
  /email               Email the open conversation to yourself
  /save                Save the open conversation as a local transcript
  /quit                Exit (Ctrl+D also exits)
`
