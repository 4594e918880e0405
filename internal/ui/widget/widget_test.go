// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/advith-tui/internal/api"
	"github.com/jeranaias/advith-tui/internal/auth"
	"github.com/jeranaias/advith-tui/internal/config"
	"github.com/jeranaias/advith-tui/internal/session"
	"github.com/jeranaias/advith-tui/internal/storage"
	"github.com/jeranaias/advith-tui/internal/ui/components"
	"github.com/jeranaias/advith-tui/internal/ui/styles"
	"github.com/jeranaias/advith-tui/internal/validate"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeAccount struct {
	mu       sync.Mutex
	profile  auth.Profile
	authed   bool
	loginErr error
	logins   int
}

func (a *fakeAccount) Login(_ context.Context, form validate.Login) (auth.Profile, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logins++
	if a.loginErr != nil {
		return auth.Profile{}, a.loginErr
	}
	a.authed = true
	a.profile = auth.Profile{Email: form.Email, Name: "Asha Rao"}
	return a.profile, nil
}

func (a *fakeAccount) Signup(_ context.Context, form validate.Signup) (auth.Profile, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.authed = true
	a.profile = auth.Profile{Email: form.Email, Name: form.Name}
	return a.profile, nil
}

func (a *fakeAccount) Logout(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.authed = false
	a.profile = auth.Profile{}
	return nil
}

func (a *fakeAccount) Profile() (auth.Profile, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.profile, a.authed
}

func (a *fakeAccount) Email() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.authed {
		return ""
	}
	return a.profile.Email
}

func (a *fakeAccount) IsAuthenticated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.authed
}

type fakeChat struct {
	mu       sync.Mutex
	sends    []api.ChatRequest
	loads    int
	history  []api.HistoryConversation
	feedback []api.FeedbackRequest
	deleted  []api.ID
}

func (c *fakeChat) SendMessage(_ context.Context, req api.ChatRequest) (*api.ChatResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sends = append(c.sends, req)
	return &api.ChatResponse{Response: "File GSTR-1 by the 11th.", SessionID: "7", MessageID: "70"}, nil
}

func (c *fakeChat) GetConversations(context.Context, string) ([]api.HistoryConversation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loads++
	return c.history, nil
}

func (c *fakeChat) DeleteConversation(_ context.Context, id api.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, id)
	return nil
}

func (c *fakeChat) SubmitFeedback(_ context.Context, _ api.ID, req api.FeedbackRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.feedback = append(c.feedback, req)
	return nil
}

func (c *fakeChat) EmailTranscript(context.Context, api.ID) (*api.StatusResponse, error) {
	return &api.StatusResponse{Status: "success", Message: "Chat history sent to asha@example.com"}, nil
}

// =============================================================================
// HARNESS
// =============================================================================

type harness struct {
	account *fakeAccount
	chat    *fakeChat
	machine *session.Machine
	model   Model
}

// newHarness builds the widget and delivers everything Init starts, so a
// signed-in harness begins with its history loaded.
func newHarness(t *testing.T, loggedIn bool, history ...api.HistoryConversation) *harness {
	t.Helper()
	h := buildHarness(t, loggedIn, history...)
	h.settle(h.model.Init(), 0)
	return h
}

func buildHarness(t *testing.T, loggedIn bool, history ...api.HistoryConversation) *harness {
	t.Helper()
	h := &harness{
		account: &fakeAccount{},
		chat:    &fakeChat{history: history},
	}
	if loggedIn {
		h.account.authed = true
		h.account.profile = auth.Profile{Email: "asha@example.com", Name: "Asha Rao"}
	}

	mcfg := session.DefaultConfig()
	mcfg.FeedbackDelay = time.Hour
	h.machine = session.NewMachine(h.chat, h.account, mcfg)

	cfg := config.Default()
	cfg.UI.RenderMarkdown = false

	store, err := storage.NewTranscriptStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("transcript store: %v", err)
	}

	h.model = New(Options{
		Config:      cfg,
		Account:     h.account,
		Machine:     h.machine,
		Transcripts: store,
		Theme:       styles.NewTheme(styles.ModeDark),
	})
	h.send(tea.WindowSizeMsg{Width: 100, Height: 40})
	return h
}

// send delivers msg and runs the resulting commands until the model settles.
func (h *harness) send(msg tea.Msg) {
	next, cmd := h.model.Update(msg)
	h.model = next.(Model)
	h.settle(cmd, 0)
}

func (h *harness) settle(cmd tea.Cmd, depth int) {
	if depth > 8 {
		return
	}
	for _, msg := range run(cmd) {
		switch msg.(type) {
		case authDoneMsg, logoutDoneMsg, conversationsLoadedMsg, sendDoneMsg,
			deleteDoneMsg, feedbackDoneMsg, emailDoneMsg:
			next, c := h.model.Update(msg)
			h.model = next.(Model)
			h.settle(c, depth+1)
		}
	}
}

func (h *harness) press(keys ...string) {
	for _, k := range keys {
		h.send(keyMsg(k))
	}
}

func (h *harness) typeText(s string) {
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// run executes cmd, expanding batches. Commands that block (timers, channel
// waits) are abandoned.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, run(c)...)
			}
			return out
		}
		return []tea.Msg{msg}
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "f1":
		return tea.KeyMsg{Type: tea.KeyF1}
	case "f2":
		return tea.KeyMsg{Type: tea.KeyF2}
	case "f3":
		return tea.KeyMsg{Type: tea.KeyF3}
	case "ctrl+l":
		return tea.KeyMsg{Type: tea.KeyCtrlL}
	case "ctrl+w":
		return tea.KeyMsg{Type: tea.KeyCtrlW}
	case "ctrl+x":
		return tea.KeyMsg{Type: tea.KeyCtrlX}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func hasToast(m Model, substr string) bool {
	for _, t := range m.toasts.Toasts() {
		if strings.Contains(t.Message, substr) {
			return true
		}
	}
	return false
}

// =============================================================================
// TESTS
// =============================================================================

func TestLauncher_OpensAndClosesModal(t *testing.T) {
	h := newHarness(t, false)

	if h.model.open {
		t.Fatal("modal should start closed")
	}
	if !strings.Contains(h.model.View(), "Advith iTec Support") {
		t.Error("launcher should show the brand")
	}

	h.press("enter")
	if !h.model.open {
		t.Fatal("enter should open the modal")
	}
	if view := h.model.View(); !strings.Contains(view, "Welcome to Advith iTec Support") {
		t.Errorf("home tab should show the welcome text, got:\n%s", view)
	}

	h.press("ctrl+w")
	if h.model.open {
		t.Error("ctrl+w should close the modal")
	}
}

func TestMessages_RedirectsToAuthWhenLoggedOut(t *testing.T) {
	h := newHarness(t, false)
	h.press("enter", "f2")

	if h.model.tab != TabAuth {
		t.Fatalf("tab = %v, want auth", h.model.tab)
	}
	if h.model.requested != TabMessages {
		t.Errorf("requested = %v, want messages", h.model.requested)
	}
	view := h.model.View()
	if !strings.Contains(view, "Welcome Back") {
		t.Error("auth tab should show the login form")
	}
	if !strings.Contains(view, "Messages (login required)") {
		t.Error("nav should mark messages as restricted")
	}
}

func TestLogin_ReturnsToMessages(t *testing.T) {
	h := newHarness(t, false)
	h.press("enter", "f2")

	h.typeText("asha@example.com")
	h.press("tab")
	h.typeText("Secret#1")
	h.press("enter")

	if h.account.logins != 1 {
		t.Fatalf("logins = %d, want 1", h.account.logins)
	}
	if h.model.tab != TabMessages {
		t.Errorf("tab after login = %v, want messages", h.model.tab)
	}
	if !h.model.loaded {
		t.Error("conversations should load after login")
	}
	if !hasToast(h.model, "Welcome, Asha Rao") {
		t.Error("expected a welcome toast")
	}
}

func TestLogin_ValidationBlocksSubmit(t *testing.T) {
	h := newHarness(t, false)
	h.press("enter", "ctrl+l")

	h.typeText("not-an-email")
	h.press("tab", "enter")

	if h.account.logins != 0 {
		t.Error("invalid form must not reach the server")
	}
	if h.model.form.errors.Get(validate.FieldEmail) == "" {
		t.Error("expected an email error")
	}
	if h.model.form.errors.Get(validate.FieldPassword) == "" {
		t.Error("expected a password error")
	}
}

func TestLogin_ServerErrorShownOnForm(t *testing.T) {
	h := newHarness(t, false)
	h.account.loginErr = errors.New("Invalid email or password")
	h.press("enter", "ctrl+l")

	h.typeText("asha@example.com")
	h.press("tab")
	h.typeText("wrong")
	h.press("enter")

	if h.model.tab != TabAuth {
		t.Errorf("tab = %v, want auth", h.model.tab)
	}
	if got := h.model.form.errors.Get(validate.FieldForm); got != "Invalid email or password" {
		t.Errorf("form error = %q", got)
	}
	if h.model.form.busy {
		t.Error("form should not stay busy after a failure")
	}
}

func TestAuthForm_TogglesToSignup(t *testing.T) {
	h := newHarness(t, false)
	h.press("enter", "ctrl+l")

	// email, password, submit, toggle
	h.press("tab", "tab", "tab", "enter")
	if h.model.form.kind != signupForm {
		t.Fatal("toggle should switch to the signup form")
	}
	if !strings.Contains(h.model.View(), "Create Account") {
		t.Error("signup form should render")
	}
}

func TestSend_ReplyAppearsInTranscript(t *testing.T) {
	h := newHarness(t, true)
	h.press("enter", "f2")

	if h.model.currentView() != viewList {
		t.Fatalf("view = %v, want list", h.model.currentView())
	}

	h.press("n")
	if h.model.currentView() != viewConversation {
		t.Fatalf("view = %v, want conversation", h.model.currentView())
	}

	h.typeText("How do I file GST?")
	h.press("enter")

	if len(h.chat.sends) != 1 {
		t.Fatalf("sends = %d, want 1", len(h.chat.sends))
	}
	if got := h.chat.sends[0].UserQuery; got != "How do I file GST?" {
		t.Errorf("query = %q", got)
	}

	conv := h.machine.Active()
	if conv == nil {
		t.Fatal("conversation should stay active")
	}
	if len(conv.Messages) != 3 {
		t.Fatalf("messages = %d, want greeting, question, reply", len(conv.Messages))
	}
	if conv.ID != "7" {
		t.Errorf("conversation id = %q, want 7", conv.ID)
	}
	if h.model.input.Value() != "" {
		t.Error("input should be cleared after sending")
	}
	if !strings.Contains(h.model.View(), "File GSTR-1") {
		t.Error("reply should be visible")
	}
}

func TestSend_BlankInputIgnored(t *testing.T) {
	h := newHarness(t, true)
	h.press("enter", "f2", "n")
	h.typeText("   ")
	h.press("enter")

	if len(h.chat.sends) != 0 {
		t.Error("blank messages must not be sent")
	}
}

func TestFeedback_RateFromTranscript(t *testing.T) {
	h := newHarness(t, true)
	h.press("enter", "f2", "n")
	h.typeText("Hello")
	h.press("enter")

	h.press("tab")
	if h.model.currentView() != viewTranscript {
		t.Fatalf("view = %v, want transcript", h.model.currentView())
	}

	h.press("f")
	if h.model.currentView() != viewFeedback {
		t.Fatalf("view = %v, want feedback", h.model.currentView())
	}
	if !strings.Contains(h.model.View(), "How helpful was this response?") {
		t.Error("feedback prompt should render")
	}

	h.press("4", "enter")

	if len(h.chat.feedback) != 1 {
		t.Fatalf("feedback calls = %d, want 1", len(h.chat.feedback))
	}
	if h.chat.feedback[0].Rating != 4 {
		t.Errorf("rating = %d, want 4", h.chat.feedback[0].Rating)
	}
	if h.model.currentView() != viewConversation {
		t.Errorf("view after submit = %v, want conversation", h.model.currentView())
	}
	if !hasToast(h.model, "Thank you") {
		t.Error("expected a thank-you toast")
	}
}

func TestFeedback_RequiresRating(t *testing.T) {
	h := newHarness(t, true)
	h.press("enter", "f2", "n")
	h.typeText("Hello")
	h.press("enter", "tab", "f", "enter")

	if len(h.chat.feedback) != 0 {
		t.Error("feedback without a rating must not be sent")
	}
	if h.model.currentView() != viewFeedback {
		t.Error("prompt should stay open")
	}

	h.press("esc")
	if h.machine.Feedback().HasTarget() {
		t.Error("esc should dismiss the prompt")
	}
}

func TestTranscript_SaveAndEmail(t *testing.T) {
	h := newHarness(t, true)
	h.press("enter", "f2", "n")
	h.typeText("Hello")
	h.press("enter", "tab", "s")

	metas, err := h.model.transcripts.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(metas) != 1 {
		t.Fatalf("saved transcripts = %d, want 1", len(metas))
	}

	h.press("e")
	if !hasToast(h.model, "Chat history sent to asha@example.com") {
		t.Error("expected the server's email confirmation")
	}
	if conv := h.machine.Active(); conv == nil || !conv.EmailSent {
		t.Error("conversation should be marked as emailed")
	}
}

func twoConversations() []api.HistoryConversation {
	return []api.HistoryConversation{
		{ID: "1", Title: "GST returns"},
		{ID: "2", Title: "Payroll"},
	}
}

func TestStartupLoad_OpensFirstConversation(t *testing.T) {
	h := newHarness(t, true, twoConversations()...)
	h.press("enter", "f2")

	if h.chat.loads != 1 {
		t.Errorf("history loads = %d, want 1", h.chat.loads)
	}
	if h.model.currentView() != viewConversation {
		t.Fatalf("view = %v, want conversation", h.model.currentView())
	}
	if conv := h.machine.Active(); conv == nil || conv.ID != "1" {
		t.Errorf("active = %+v, want conversation 1", conv)
	}
}

func TestStartupLoad_MessagesTabDoesNotReload(t *testing.T) {
	h := buildHarness(t, true, twoConversations()...)
	initCmd := h.model.Init()
	if !h.model.loading {
		t.Fatal("startup load should be marked before Init runs")
	}

	h.press("enter", "f2")
	if h.chat.loads != 0 {
		t.Fatalf("entering messages started another load (loads = %d)", h.chat.loads)
	}

	h.settle(initCmd, 0)
	if h.chat.loads != 1 {
		t.Errorf("history loads = %d, want 1", h.chat.loads)
	}
	if h.model.loading || !h.model.loaded {
		t.Error("startup load should have landed")
	}
	if h.machine.Len() != 2 {
		t.Errorf("conversations = %d, want 2", h.machine.Len())
	}
}

func TestList_DeleteConversation(t *testing.T) {
	h := newHarness(t, true, twoConversations()...)
	h.press("enter", "f2", "esc")

	if h.machine.Len() != 2 {
		t.Fatalf("conversations = %d, want 2", h.machine.Len())
	}
	if h.model.currentView() != viewList {
		t.Fatalf("view = %v, want list", h.model.currentView())
	}

	h.press("down", "d")
	if h.machine.Len() != 1 {
		t.Fatalf("conversations after delete = %d, want 1", h.machine.Len())
	}
	if len(h.chat.deleted) != 1 || h.chat.deleted[0] != "2" {
		t.Errorf("deleted = %v, want [2]", h.chat.deleted)
	}
	if h.model.listSel != 0 {
		t.Errorf("selection = %d, want 0", h.model.listSel)
	}
}

func TestLogout_ClearsConversations(t *testing.T) {
	h := newHarness(t, true)
	h.press("enter", "f2", "n")
	h.press("ctrl+l")

	if h.account.IsAuthenticated() {
		t.Fatal("account should be signed out")
	}
	if h.model.tab != TabAuth {
		t.Errorf("tab = %v, want auth", h.model.tab)
	}
	if h.machine.Len() != 0 {
		t.Error("logout should forget conversations")
	}
	if !strings.Contains(h.model.View(), "[Login]") {
		t.Error("header should offer login")
	}
}

func TestHome_AccordionTogglesOneAnswer(t *testing.T) {
	h := newHarness(t, false)
	h.press("enter", "down", "enter")

	if h.model.faqOpen != 1 {
		t.Fatalf("faqOpen = %d, want 1", h.model.faqOpen)
	}
	if !strings.Contains(h.model.View(), "Bookkeeping") {
		t.Error("expanded answer should render")
	}

	h.press("enter")
	if h.model.faqOpen != -1 {
		t.Errorf("faqOpen = %d, want collapsed", h.model.faqOpen)
	}
}

func TestHelp_CategoryDropdown(t *testing.T) {
	h := newHarness(t, false)
	h.press("enter", "f3", "enter")

	if h.model.helpOpen != 0 {
		t.Fatalf("helpOpen = %d, want 0", h.model.helpOpen)
	}
	if !strings.Contains(h.model.View(), "GST Registration Process") {
		t.Error("category articles should render")
	}
}

func TestConfigReload(t *testing.T) {
	h := newHarness(t, false)

	cfg := config.Default()
	cfg.UI.Theme = styles.ModeLight
	cfg.Chat.FeedbackDelaySecs = 5
	h.send(configReloadMsg{reload: config.Reload{Config: cfg}})

	if h.model.cfg != cfg {
		t.Error("reloaded config should replace the current one")
	}
	if h.model.theme.Mode != styles.ModeLight {
		t.Errorf("theme mode = %q, want light", h.model.theme.Mode)
	}
	if !hasToast(h.model, "Configuration reloaded") {
		t.Error("expected a reload toast")
	}

	h.send(configReloadMsg{reload: config.Reload{Err: errors.New("bad toml")}})
	if !hasToast(h.model, "bad toml") {
		t.Error("expected a reload failure toast")
	}
	if h.model.cfg != cfg {
		t.Error("a failed reload must keep the previous config")
	}
}

func TestToasts_Dismiss(t *testing.T) {
	h := newHarness(t, false)
	h.model.toasts.Add(components.ToastKindStatus, "hello")
	h.press("enter", "ctrl+x")
	if len(h.model.toasts.Toasts()) != 0 {
		t.Error("ctrl+x should dismiss toasts")
	}
}

func TestClipAround(t *testing.T) {
	lines := make([]string, 20)
	for i := range lines {
		lines[i] = string(rune('a' + i))
	}
	s := strings.Join(lines, "\n")

	if got := clipAround(s, 0, 30); got != s {
		t.Error("short content should be unchanged")
	}
	got := strings.Split(clipAround(s, 15, 6), "\n")
	if len(got) != 6 {
		t.Fatalf("clipped lines = %d, want 6", len(got))
	}
	if got[0] != "n" {
		t.Errorf("first line = %q, want n", got[0])
	}
	got = strings.Split(clipAround(s, 19, 6), "\n")
	if got[len(got)-1] != "t" {
		t.Errorf("last line = %q, want t", got[len(got)-1])
	}
}
