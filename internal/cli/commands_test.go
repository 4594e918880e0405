// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/advith-tui/internal/auth"
	"github.com/jeranaias/advith-tui/internal/config"
	"github.com/jeranaias/advith-tui/internal/devserver"
	"github.com/jeranaias/advith-tui/internal/model"
)

const (
	testEmail    = "asha@example.com"
	testPassword = "Secret@123"
)

// harness runs commands against an in-process devserver. The session store
// is shared between runs, like the SQLite file is between invocations.
type harness struct {
	t     *testing.T
	url   string
	store *auth.MemoryStore
	dir   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("ADVITH_HOME", t.TempDir())
	config.ResetGlobalForTesting()
	t.Cleanup(config.ResetGlobalForTesting)

	dev := devserver.New(devserver.Options{Secret: []byte("test-secret")})
	require.NoError(t, dev.Seed(testEmail, "Asha Rao", testPassword))
	srv := httptest.NewServer(dev.Handler())
	t.Cleanup(srv.Close)

	return &harness{t: t, url: srv.URL, store: auth.NewMemoryStore(), dir: t.TempDir()}
}

func (h *harness) config() *config.Config {
	cfg := config.Default()
	cfg.API.BaseURL = h.url
	cfg.API.MaxRetries = 0
	cfg.Chat.FeedbackDelaySecs = 3600
	cfg.UI.ShowTimestamps = false
	return cfg
}

func (h *harness) options(stdin string, out, errOut io.Writer) AppOptions {
	return AppOptions{
		Config:        h.config(),
		Store:         h.store,
		TranscriptDir: h.dir,
		NoLogFile:     true,
		In:            strings.NewReader(stdin),
		Out:           out,
		Err:           errOut,
	}
}

// run executes argv and returns the exit code, stdout and stderr.
func (h *harness) run(stdin string, argv ...string) (int, string, string) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	cmd, args := ParseArgs(argv)
	code := Run(context.Background(), cmd, args, h.options(stdin, &out, &errOut))
	return code, out.String(), errOut.String()
}

func (h *harness) login() {
	h.t.Helper()
	code, _, stderr := h.run(testPassword+"\n", "login", testEmail)
	require.Equal(h.t, ExitSuccess, code, stderr)
}

// app builds an App for direct handler calls.
func (h *harness) app(cmd Command) (*App, *bytes.Buffer) {
	h.t.Helper()
	var out bytes.Buffer
	app, err := NewApp(context.Background(), cmd, Args{}, h.options("", &out, io.Discard))
	require.NoError(h.t, err)
	h.t.Cleanup(func() { _ = app.Close() })
	return app, &out
}

func decodeData(t *testing.T, raw string, v any) {
	t.Helper()
	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &resp), raw)
	require.True(t, resp.Success, raw)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

// =============================================================================
// ACCOUNT
// =============================================================================

func TestLoginWhoamiLogout(t *testing.T) {
	h := newHarness(t)

	code, stdout, stderr := h.run(testPassword+"\n", "login", testEmail)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "Signed in as Asha Rao")
	assert.Contains(t, stderr, "Password: ")

	code, stdout, _ = h.run("", "--json", "whoami")
	require.Equal(t, ExitSuccess, code)
	var profile ProfileData
	decodeData(t, stdout, &profile)
	assert.Equal(t, testEmail, profile.Email)
	assert.Equal(t, "Asha Rao", profile.Name)
	assert.NotEmpty(t, profile.TokenExpires)

	code, stdout, _ = h.run("", "logout")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "Signed out "+testEmail)

	code, _, stderr = h.run("", "whoami")
	assert.Equal(t, ExitAuthError, code)
	assert.Contains(t, stderr, "advith login")
}

func TestLogin_WrongPassword(t *testing.T) {
	h := newHarness(t)

	code, _, stderr := h.run("Wrong@1234\n", "login", testEmail)
	assert.Equal(t, ExitAuthError, code)
	assert.Contains(t, stderr, "Invalid email or password")
}

func TestLogin_InvalidEmailIsUsageError(t *testing.T) {
	h := newHarness(t)

	code, _, stderr := h.run("x\n", "login", "not-an-email")
	assert.Equal(t, ExitUsageError, code)
	assert.Contains(t, stderr, "email")
}

func TestSignup_Prompts(t *testing.T) {
	h := newHarness(t)

	stdin := strings.Join([]string{
		"Ravi Kumar",
		"ravi@example.com",
		"in",
		"Kerala",
		"9876543210",
		"Strong@123",
		"Strong@123",
	}, "\n") + "\n"
	code, stdout, stderr := h.run(stdin, "--json", "signup")
	require.Equal(t, ExitSuccess, code, stderr)

	var profile ProfileData
	decodeData(t, stdout, &profile)
	assert.Equal(t, "ravi@example.com", profile.Email)
	assert.Equal(t, "India", profile.Country)
	assert.Equal(t, "+91 9876543210", profile.Phone)
	assert.Contains(t, stderr, "Phone (+91)")
}

func TestSignup_PasswordPromptAtEOF(t *testing.T) {
	h := newHarness(t)

	code, _, stderr := h.run("", "signup",
		"--name", "Ravi", "--email", "ravi@example.com", "--country", "India",
		"--state", "Kerala", "--phone", "9876543210")
	// stdin is empty, so the password prompt hits EOF
	assert.NotEqual(t, ExitSuccess, code)
	assert.NotEmpty(t, stderr)
}

// =============================================================================
// CONVERSATIONS
// =============================================================================

func TestChatHistoryFeedbackDelete(t *testing.T) {
	h := newHarness(t)
	h.login()

	app, out := h.app(CmdChat)
	in := &scriptedInput{lines: []string{
		"When is GSTR-1 due?",
		"/feedback 5 Very clear",
		"/save",
		"/list",
		"/quit",
	}}
	require.NoError(t, RunChat(context.Background(), app, in))

	transcript := out.String()
	assert.Contains(t, transcript, "How can we help you today?")
	assert.Contains(t, transcript, devserver.CannedReply)
	assert.Contains(t, transcript, "Thank you for your feedback!")
	assert.Contains(t, transcript, "Saved transcript")
	assert.Contains(t, transcript, model.DefaultTitle)
	assert.False(t, in.closed)

	code, stdout, _ := h.run("", "--json", "history")
	require.Equal(t, ExitSuccess, code)
	var rows []ConversationData
	decodeData(t, stdout, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Index)
	assert.Equal(t, "When is GSTR-1 due?", rows[0].Title)
	assert.Equal(t, 2, rows[0].Messages)

	code, stdout, _ = h.run("", "history", "1")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "When is GSTR-1 due?")

	code, stdout, _ = h.run("", "transcripts", "show", "1")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "When is GSTR-1 due?")

	code, _, stderr := h.run("", "delete", "7")
	assert.Equal(t, ExitNotFoundError, code, stderr)

	code, stdout, stderr = h.run("", "delete", "1", "--yes")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "Deleted")

	code, stdout, _ = h.run("", "history")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "No conversations yet")
}

func TestDelete_ConfirmDeclined(t *testing.T) {
	h := newHarness(t)
	h.login()

	app, _ := h.app(CmdChat)
	require.NoError(t, RunChat(context.Background(), app, &scriptedInput{lines: []string{"Hello"}}))

	code, stdout, _ := h.run("n\n", "delete", "1")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "Cancelled")

	code, stdout, _ = h.run("", "--json", "history")
	require.Equal(t, ExitSuccess, code)
	var rows []ConversationData
	decodeData(t, stdout, &rows)
	assert.Len(t, rows, 1)
}

func TestChat_ContinuesLatestConversation(t *testing.T) {
	h := newHarness(t)
	h.login()

	app, _ := h.app(CmdChat)
	require.NoError(t, RunChat(context.Background(), app, &scriptedInput{lines: []string{"When is GSTR-3B due?"}}))

	app, out := h.app(CmdChat)
	require.NoError(t, RunChat(context.Background(), app, &scriptedInput{lines: []string{"/quit"}}))

	text := out.String()
	assert.Contains(t, text, "When is GSTR-3B due?")
	assert.Contains(t, text, "Continuing your latest conversation")
	assert.NotContains(t, text, "How can we help you today?")
	assert.Equal(t, 1, app.Machine.Len())
}

func TestChat_CommandsWithoutTarget(t *testing.T) {
	h := newHarness(t)
	h.login()

	app, out := h.app(CmdChat)
	in := &scriptedInput{lines: []string{
		"/feedback 4",
		"/feedback 9",
		"/email",
		"/open 5",
		"/bogus",
		"/help",
	}}
	require.NoError(t, RunChat(context.Background(), app, in))

	text := out.String()
	assert.Contains(t, text, "no response to rate")
	assert.Contains(t, text, "must be between 1 and 5")
	assert.Contains(t, text, "send a message before emailing")
	assert.Contains(t, text, "conversation not found: 5")
	assert.Contains(t, text, "unknown command /bogus")
	assert.Contains(t, text, "/feedback R [text]")
}

func TestChat_Email(t *testing.T) {
	h := newHarness(t)
	h.login()

	app, out := h.app(CmdChat)
	in := &scriptedInput{lines: []string{"Need help with TDS", "/email"}}
	require.NoError(t, RunChat(context.Background(), app, in))

	assert.Contains(t, out.String(), testEmail)
	assert.True(t, app.Machine.Active().EmailSent)
}

func TestFeedbackCommand_Validation(t *testing.T) {
	h := newHarness(t)
	h.login()

	code, _, _ := h.run("", "feedback", "70")
	assert.Equal(t, ExitUsageError, code)

	code, _, _ = h.run("", "feedback", "70", "8")
	assert.Equal(t, ExitUsageError, code)
}

// =============================================================================
// QA
// =============================================================================

func TestQAStatsAndSearch(t *testing.T) {
	h := newHarness(t)
	h.login()

	app, _ := h.app(CmdChat)
	require.NoError(t, RunChat(context.Background(), app, &scriptedInput{lines: []string{"What is the GST rate on software?"}}))

	code, stdout, stderr := h.run("", "--json", "qa", "stats")
	require.Equal(t, ExitSuccess, code, stderr)
	var stats struct {
		Total int `json:"total_qa_pairs"`
	}
	decodeData(t, stdout, &stats)
	assert.Equal(t, 1, stats.Total)

	code, stdout, stderr = h.run("", "qa", "search", "software", "--page", "1")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "What is the GST rate on software?")

	code, stdout, _ = h.run("", "qa", "search", "payroll")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "No matching questions")

	code, _, _ = h.run("", "qa", "search", "--helpful=perhaps")
	assert.Equal(t, ExitUsageError, code)

	code, _, _ = h.run("", "qa", "bogus")
	assert.Equal(t, ExitUsageError, code)
}

// =============================================================================
// LOCAL COMMANDS
// =============================================================================

func TestConfigCommands(t *testing.T) {
	h := newHarness(t)

	code, stdout, _ := h.run("", "config", "get", "chat.feedback_delay_secs")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "3600\n", stdout)

	code, stdout, stderr := h.run("", "config", "set", "ui.theme", "light")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "ui.theme = light")

	path, err := config.ConfigPathTOML()
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `theme = "light"`)
	// the harness base URL is an override, not a saved value
	assert.NotContains(t, string(data), h.url)

	code, _, _ = h.run("", "config", "set", "ui.theme", "purple")
	assert.Equal(t, ExitConfigError, code)

	code, _, _ = h.run("", "config", "get", "nope.key")
	assert.Equal(t, ExitUsageError, code)

	code, stdout, _ = h.run("", "config", "path")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, filepath.Join(os.Getenv("ADVITH_HOME"), "config.toml")+"\n", stdout)

	code, stdout, _ = h.run("", "config", "keys")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "api.base_url")
}

func TestTranscripts_NotFound(t *testing.T) {
	h := newHarness(t)

	code, stdout, _ := h.run("", "transcripts", "list")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "No saved transcripts.")

	code, _, _ = h.run("", "transcripts", "show", "3")
	assert.Equal(t, ExitNotFoundError, code)

	code, _, _ = h.run("", "transcripts", "show")
	assert.Equal(t, ExitUsageError, code)
}

func TestVersionAndUnknown(t *testing.T) {
	h := newHarness(t)

	code, stdout, _ := h.run("", "--json", "version")
	require.Equal(t, ExitSuccess, code)
	var v VersionData
	decodeData(t, stdout, &v)
	assert.Equal(t, Version, v.Version)

	code, _, stderr := h.run("", "frobnicate")
	assert.Equal(t, ExitUsageError, code)
	assert.Contains(t, stderr, "unknown command")

	code, stdout, _ = h.run("", "help")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "advith qa search")
}

// =============================================================================
// HELPERS
// =============================================================================

// scriptedInput feeds fixed lines to the REPL and then reports EOF.
type scriptedInput struct {
	lines  []string
	closed bool
}

func (s *scriptedInput) ReadLine(string) (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *scriptedInput) Close() error {
	s.closed = true
	return nil
}
