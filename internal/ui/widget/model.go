// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/advith-tui/internal/auth"
	"github.com/jeranaias/advith-tui/internal/config"
	"github.com/jeranaias/advith-tui/internal/content"
	"github.com/jeranaias/advith-tui/internal/logging"
	"github.com/jeranaias/advith-tui/internal/session"
	"github.com/jeranaias/advith-tui/internal/storage"
	"github.com/jeranaias/advith-tui/internal/ui/components"
	"github.com/jeranaias/advith-tui/internal/ui/styles"
	"github.com/jeranaias/advith-tui/internal/validate"
)

// =============================================================================
// VIEWS
// =============================================================================

// view is what the modal body shows and which keys it takes.
type view int

const (
	viewHome view = iota
	viewHelp
	viewList
	viewConversation
	viewTranscript
	viewFeedback
	viewLogin
	viewSignup
)

// Account is the signed-in user as the widget sees it. *auth.Session
// implements it.
type Account interface {
	Login(ctx context.Context, form validate.Login) (auth.Profile, error)
	Signup(ctx context.Context, form validate.Signup) (auth.Profile, error)
	Logout(ctx context.Context) error
	Profile() (auth.Profile, bool)
	Email() string
	IsAuthenticated() bool
}

// Options wires a Model. Transcripts and Watcher are optional.
type Options struct {
	Config      *config.Config
	Account     Account
	Machine     *session.Machine
	Transcripts *storage.TranscriptStore
	Watcher     *config.Watcher
	Theme       *styles.Theme
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the support widget.
type Model struct {
	cfg   *config.Config
	theme *styles.Theme
	keys  KeyMap
	help  help.Model
	md    *components.Markdown
	log   *zap.Logger

	account     Account
	machine     *session.Machine
	transcripts *storage.TranscriptStore
	nav         Navigator

	width  int
	height int

	open      bool
	tab       Tab
	requested Tab
	fullHelp  bool

	// Home and Help accordions. -1 means collapsed.
	faqs     []content.FAQ
	faqSel   int
	faqOpen  int
	helpCats []content.HelpCategory
	helpSel  int
	helpOpen int

	form *form

	// Messages
	listSel       int
	loading       bool
	loaded        bool
	listErr       string
	input         textinput.Model
	transcript    viewport.Model
	spinner       spinner.Model
	spinning      bool
	focusLog      bool
	feedbackFocus bool
	rating        int
	suggestion    textinput.Model
	onSuggestion  bool
	feedbackBusy  bool
	emailBusy     bool

	toasts       *components.ToastManager
	toastTicking bool

	feedbackCh chan session.Feedback
	reloadCh   <-chan config.Reload
}

// New creates the widget model.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(cfg.UI.Theme)
	}

	input := textinput.New()
	input.Placeholder = "Type your message..."
	input.CharLimit = 2000
	input.Prompt = "> "

	suggestion := textinput.New()
	suggestion.Placeholder = "Any suggestions? (optional)"
	suggestion.CharLimit = 500
	suggestion.Prompt = ""

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.TypingText

	m := Model{
		cfg:         cfg,
		theme:       theme,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		md:          components.NewMarkdown(cfg.UI.Theme),
		log:         logging.Named("widget"),
		account:     opts.Account,
		machine:     opts.Machine,
		transcripts: opts.Transcripts,
		open:        cfg.UI.OpenOnStart,
		tab:         TabHome,
		requested:   TabHome,
		faqs:        content.FAQs(),
		faqOpen:     -1,
		helpCats:    content.Help(),
		helpOpen:    -1,
		form:        newLoginForm(),
		input:       input,
		transcript:  viewport.New(0, 0),
		spinner:     sp,
		suggestion:  suggestion,
		toasts:      components.NewToastManager(),
	}
	account := opts.Account
	m.nav = Navigator{LoggedIn: func() bool {
		return account != nil && account.IsAuthenticated()
	}}

	m.help.Styles.ShortKey = theme.HelpKey
	m.help.Styles.ShortDesc = theme.HelpDesc
	m.help.Styles.FullKey = theme.HelpKey
	m.help.Styles.FullDesc = theme.HelpDesc

	if m.machine != nil {
		ch := make(chan session.Feedback, 1)
		m.machine.SetFeedbackListener(func(fb session.Feedback) {
			select {
			case ch <- fb:
			default:
			}
		})
		m.feedbackCh = ch
	}
	if opts.Watcher != nil {
		m.reloadCh = opts.Watcher.Changes()
	}
	// Init issues this load. enterTab must not start another until it lands.
	m.loading = m.machine != nil && m.loggedIn() && cfg.Chat.LoadHistoryOnStart
	return m
}

// Init starts the background listeners.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		waitForFeedback(m.feedbackCh),
		waitForReload(m.reloadCh),
	}
	if m.loading {
		cmds = append(cmds, loadConversationsCmd(m.machine, m.account.Email()))
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case authDoneMsg:
		return m.handleAuthDone(msg)

	case logoutDoneMsg:
		return m.handleLogoutDone(msg)

	case conversationsLoadedMsg:
		return m.handleConversationsLoaded(msg)

	case sendDoneMsg:
		return m.handleSendDone(msg)

	case deleteDoneMsg:
		return m.handleDeleteDone(msg)

	case feedbackDoneMsg:
		return m.handleFeedbackDone(msg)

	case emailDoneMsg:
		return m.handleEmailDone(msg)

	case feedbackRevealMsg:
		return m.handleFeedbackReveal(msg)

	case configReloadMsg:
		return m.handleConfigReload(msg)

	case spinner.TickMsg:
		if !m.spinning {
			return m, nil
		}
		if !m.machine.Snapshot().Typing && !m.loading {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case components.ToastTickMsg:
		if m.toasts.Tick() || len(m.toasts.Toasts()) > 0 {
			return m, components.ToastTickCmd()
		}
		m.toastTicking = false
		return m, nil
	}

	return m.forwardToInput(msg)
}

// View renders the launcher or the open modal.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if !m.open {
		return m.renderLauncher()
	}
	return m.renderModal()
}

// =============================================================================
// STATE HELPERS
// =============================================================================

// currentView derives the view from the tab and the machine state.
func (m Model) currentView() view {
	switch m.tab {
	case TabHelp:
		return viewHelp
	case TabAuth:
		if m.form.kind == signupForm {
			return viewSignup
		}
		return viewLogin
	case TabMessages:
		if m.machine.Active() == nil {
			return viewList
		}
		if m.feedbackFocus && m.machine.Feedback().Visible {
			return viewFeedback
		}
		if m.focusLog {
			return viewTranscript
		}
		return viewConversation
	}
	return viewHome
}

func (m Model) loggedIn() bool {
	return m.account != nil && m.account.IsAuthenticated()
}

// notify shows a toast and starts the expiry ticker when it is idle.
func (m *Model) notify(kind components.ToastKind, text string) tea.Cmd {
	m.toasts.Add(kind, text)
	if m.toastTicking {
		return nil
	}
	m.toastTicking = true
	return components.ToastTickCmd()
}

// startSpinner starts the typing spinner when it is idle.
func (m *Model) startSpinner() tea.Cmd {
	if m.spinning {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

// bodySize is the space inside the modal between header and navigation.
func (m Model) bodySize() (width, height int) {
	w, h := m.theme.ModalSize()
	// border (2) + padding (2)
	width = w - 4
	// border (2) + header (2) + nav (2) + help (1)
	height = h - 7
	if m.fullHelp {
		height -= 3
	}
	if height < 3 {
		height = 3
	}
	return width, height
}

// feedbackDelay is the configured delay as a duration.
func feedbackDelay(cfg *config.Config) time.Duration {
	return cfg.Chat.FeedbackDelay()
}
