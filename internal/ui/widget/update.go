// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/advith-tui/internal/api"
	"github.com/jeranaias/advith-tui/internal/session"
	"github.com/jeranaias/advith-tui/internal/storage"
	"github.com/jeranaias/advith-tui/internal/ui/components"
	"github.com/jeranaias/advith-tui/internal/ui/styles"
)

// =============================================================================
// RESIZE
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)
	m.layout()
	return m, nil
}

// layout sizes the transcript and inputs to the modal body.
func (m *Model) layout() {
	w, h := m.bodySize()
	m.help.Width = w
	m.input.Width = w - 4
	m.suggestion.Width = w - 6

	// title (2) + typing (1) + input box (3)
	vh := h - 6
	if m.machine != nil && m.machine.Feedback().Visible {
		vh -= feedbackHeight
	}
	if vh < 1 {
		vh = 1
	}
	m.transcript.Width = w
	m.transcript.Height = vh
	m.refreshTranscript(false)
}

// refreshTranscript re-renders the active conversation into the viewport.
// It follows the bottom when the user was already there or follow is set.
func (m *Model) refreshTranscript(follow bool) {
	if m.machine == nil {
		return
	}
	atBottom := m.transcript.AtBottom()
	conv := m.machine.Active()
	if conv == nil {
		m.transcript.SetContent("")
		return
	}
	m.transcript.SetContent(m.renderMessages(conv, m.transcript.Width))
	if follow || atBottom {
		m.transcript.GotoBottom()
	}
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if !m.open {
		if key.Matches(msg, m.keys.Open) {
			m.open = true
			return m.enterTab(m.tab)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Close):
		m.open = false
		m.input.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Dismiss):
		m.toasts.DismissAll()
		return m, nil
	case key.Matches(msg, m.keys.ShowKey):
		m.fullHelp = !m.fullHelp
		m.help.ShowAll = m.fullHelp
		m.layout()
		return m, nil
	case key.Matches(msg, m.keys.Home):
		return m.enterTab(TabHome)
	case key.Matches(msg, m.keys.Chat):
		return m.enterTab(TabMessages)
	case key.Matches(msg, m.keys.Help):
		return m.enterTab(TabHelp)
	case key.Matches(msg, m.keys.Account):
		if m.loggedIn() {
			return m, logoutCmd(m.account)
		}
		return m.enterTab(TabAuth)
	}

	switch m.currentView() {
	case viewHome:
		return m.handleAccordionKey(msg, &m.faqSel, &m.faqOpen, len(m.faqs))
	case viewHelp:
		return m.handleAccordionKey(msg, &m.helpSel, &m.helpOpen, len(m.helpCats))
	case viewList:
		return m.handleListKey(msg)
	case viewConversation:
		return m.handleConversationKey(msg)
	case viewTranscript:
		return m.handleTranscriptKey(msg)
	case viewFeedback:
		return m.handleFeedbackKey(msg)
	case viewLogin, viewSignup:
		return m.handleFormKey(msg)
	}
	return m, nil
}

// enterTab runs the navigation guards and prepares the tab shown.
func (m Model) enterTab(to Tab) (tea.Model, tea.Cmd) {
	target := m.nav.Transition(to)
	if target == TabAuth {
		if to == TabMessages {
			m.requested = TabMessages
		} else if m.tab != TabAuth {
			m.requested = TabHome
		}
	}
	m.tab = target
	m.log.Debug("tab", zap.Stringer("requested", to), zap.Stringer("shown", target))

	switch target {
	case TabMessages:
		cmds := []tea.Cmd{m.focusInput()}
		if !m.loaded && !m.loading {
			m.loading = true
			cmds = append(cmds, loadConversationsCmd(m.machine, m.account.Email()), m.startSpinner())
		}
		m.layout()
		return m, tea.Batch(cmds...)
	case TabAuth:
		m.input.Blur()
		return m, m.form.setFocus(m.form.focus)
	default:
		m.input.Blur()
	}
	return m, nil
}

// focusInput gives the message input focus when a conversation is open.
func (m *Model) focusInput() tea.Cmd {
	m.focusLog = false
	if m.machine == nil || m.machine.Active() == nil || m.feedbackFocus {
		m.input.Blur()
		return nil
	}
	return m.input.Focus()
}

// forwardToInput passes non-key messages such as cursor blinks to the
// focused text input.
func (m Model) forwardToInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentView() {
	case viewConversation:
		m.input, cmd = m.input.Update(msg)
	case viewFeedback:
		m.suggestion, cmd = m.suggestion.Update(msg)
	case viewLogin, viewSignup:
		if fld := m.form.focused(); fld.isInput() {
			fld.input, cmd = fld.input.Update(msg)
		}
	}
	return m, cmd
}

// handleAccordionKey drives the FAQ and Help lists. One entry is expanded
// at a time.
func (m Model) handleAccordionKey(msg tea.KeyMsg, sel, open *int, n int) (tea.Model, tea.Cmd) {
	if n == 0 {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Up):
		*sel = (*sel - 1 + n) % n
	case key.Matches(msg, m.keys.Down):
		*sel = (*sel + 1) % n
	case key.Matches(msg, m.keys.Select), msg.String() == " ":
		if *open == *sel {
			*open = -1
		} else {
			*open = *sel
		}
	case key.Matches(msg, m.keys.Back):
		*open = -1
	}
	return m, nil
}

// =============================================================================
// MESSAGES TAB
// =============================================================================

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	convs := m.machine.Snapshot().Conversations
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.listSel > 0 {
			m.listSel--
		}
	case key.Matches(msg, m.keys.Down):
		if m.listSel < len(convs)-1 {
			m.listSel++
		}
	case key.Matches(msg, m.keys.Select):
		if m.listSel < len(convs) {
			if err := m.machine.SelectConversation(convs[m.listSel].LocalID); err != nil {
				return m, m.notify(components.ToastKindError, err.Error())
			}
			m.layout()
			m.refreshTranscript(true)
			return m, m.focusInput()
		}
	case key.Matches(msg, m.keys.NewChat):
		if _, err := m.machine.StartNewConversation(); err != nil {
			return m, m.notify(components.ToastKindError, err.Error())
		}
		m.listSel = 0
		m.layout()
		m.refreshTranscript(true)
		return m, m.focusInput()
	case key.Matches(msg, m.keys.Delete):
		if m.listSel < len(convs) {
			c := convs[m.listSel]
			return m, deleteCmd(m.machine, c.LocalID, c.GetTitle())
		}
	case key.Matches(msg, m.keys.Refresh):
		if !m.loading {
			m.loading = true
			return m, tea.Batch(loadConversationsCmd(m.machine, m.account.Email()), m.startSpinner())
		}
	}
	return m, nil
}

func (m Model) handleConversationKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Send):
		p := m.machine.BeginSend(m.input.Value())
		if p == nil {
			if m.machine.Snapshot().Typing {
				return m, m.notify(components.ToastKindStatus, "Please wait for the reply")
			}
			return m, nil
		}
		m.input.Reset()
		m.layout()
		m.refreshTranscript(true)
		return m, tea.Batch(sendCmd(m.machine, p), m.startSpinner())
	case key.Matches(msg, m.keys.Focus):
		m.focusLog = true
		m.input.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Back):
		return m.backToList()
	case key.Matches(msg, m.keys.PageUp):
		m.transcript.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.transcript.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.machine.SetInput(m.input.Value())
	return m, cmd
}

func (m Model) handleTranscriptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	conv := m.machine.Active()
	switch {
	case key.Matches(msg, m.keys.Focus):
		return m, m.focusInput()
	case key.Matches(msg, m.keys.Back):
		return m.backToList()
	case key.Matches(msg, m.keys.Up):
		m.transcript.LineUp(1)
	case key.Matches(msg, m.keys.Down):
		m.transcript.LineDown(1)
	case key.Matches(msg, m.keys.PageUp):
		m.transcript.HalfViewUp()
	case key.Matches(msg, m.keys.PageDown):
		m.transcript.HalfViewDown()
	case key.Matches(msg, m.keys.Email):
		if m.emailBusy {
			return m, nil
		}
		m.emailBusy = true
		return m, tea.Batch(emailCmd(m.machine), m.notify(components.ToastKindStatus, "Sending transcript..."))
	case key.Matches(msg, m.keys.Save):
		return m.saveTranscript()
	case key.Matches(msg, m.keys.Rate):
		if !m.machine.ShowFeedback() {
			return m, m.notify(components.ToastKindStatus, "There is no reply to rate yet")
		}
		m.openFeedback()
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if conv != nil {
			return m, deleteCmd(m.machine, conv.LocalID, conv.GetTitle())
		}
	}
	return m, nil
}

// backToList closes the conversation and selects it in the list.
func (m Model) backToList() (tea.Model, tea.Cmd) {
	var localID string
	if conv := m.machine.Active(); conv != nil {
		localID = conv.LocalID
	}
	m.machine.ShowList()
	m.focusLog = false
	m.feedbackFocus = false
	m.input.Blur()
	m.input.Reset()
	for i, c := range m.machine.Snapshot().Conversations {
		if c.LocalID == localID {
			m.listSel = i
			break
		}
	}
	m.layout()
	return m, nil
}

func (m Model) saveTranscript() (tea.Model, tea.Cmd) {
	if m.transcripts == nil {
		return m, m.notify(components.ToastKindWarning, "Transcript storage is not available")
	}
	conv := m.machine.Active()
	if conv == nil {
		return m, nil
	}
	id, err := m.transcripts.Save(storage.FromConversation(conv, m.account.Email()))
	if err != nil {
		m.log.Warn("saving transcript", zap.Error(err))
		return m, m.notify(components.ToastKindError, "Could not save transcript: "+err.Error())
	}
	return m, m.notify(components.ToastKindSuccess, "Transcript saved as "+id)
}

// =============================================================================
// FEEDBACK PROMPT
// =============================================================================

// feedbackHeight is the rows taken by the rating prompt.
const feedbackHeight = 7

func (m *Model) openFeedback() {
	m.feedbackFocus = true
	m.focusLog = false
	m.rating = 0
	m.onSuggestion = false
	m.suggestion.Reset()
	m.suggestion.Blur()
	m.input.Blur()
	m.layout()
}

func (m *Model) closeFeedback() tea.Cmd {
	m.feedbackFocus = false
	m.feedbackBusy = false
	m.suggestion.Blur()
	m.layout()
	return m.focusInput()
}

func (m Model) handleFeedbackKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.feedbackBusy {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		m.machine.CancelFeedback()
		return m, m.closeFeedback()
	case key.Matches(msg, m.keys.Focus):
		m.onSuggestion = !m.onSuggestion
		if m.onSuggestion {
			return m, m.suggestion.Focus()
		}
		m.suggestion.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Select):
		if m.rating == 0 {
			return m, m.notify(components.ToastKindWarning, "Please choose a rating from 1 to 5")
		}
		m.feedbackBusy = true
		m.machine.SetFeedbackDraft(m.rating, m.suggestion.Value())
		return m, feedbackCmd(m.machine, m.rating, m.suggestion.Value())
	}

	if m.onSuggestion {
		var cmd tea.Cmd
		m.suggestion, cmd = m.suggestion.Update(msg)
		m.machine.SetFeedbackDraft(m.rating, m.suggestion.Value())
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Left):
		m.rating = components.ClampRating(m.rating - 1)
	case key.Matches(msg, m.keys.Right):
		m.rating = components.ClampRating(m.rating + 1)
	case msg.Type == tea.KeyRunes && len(msg.Runes) == 1:
		r := msg.Runes[0]
		if r >= '0'+api.MinRating && r <= '0'+api.MaxRating {
			m.rating = int(r - '0')
		}
	}
	m.machine.SetFeedbackDraft(m.rating, m.suggestion.Value())
	return m, nil
}

// =============================================================================
// AUTH FORMS
// =============================================================================

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, cmd := m.form.update(msg, m.keys)
	switch action {
	case formToggle:
		if m.form.kind == loginForm {
			m.form = newSignupForm()
		} else {
			m.form = newLoginForm()
		}
		return m, m.form.setFocus(0)
	case formSubmit:
		if !m.form.validateAll() {
			return m, nil
		}
		m.form.busy = true
		if m.form.kind == loginForm {
			return m, loginCmd(m.account, m.form.login())
		}
		return m, signupCmd(m.account, m.form.signup())
	}
	return m, cmd
}

// =============================================================================
// RESULTS
// =============================================================================

func (m Model) handleAuthDone(msg authDoneMsg) (tea.Model, tea.Cmd) {
	m.form.busy = false
	if msg.err != nil {
		m.form.applyErrors(msg.err)
		return m, nil
	}

	welcome := "Welcome, " + msg.profile.DisplayName()
	m.form = newLoginForm()
	m.loaded = false
	m.listSel = 0
	next := m.nav.AfterAuth(m.requested)
	m.requested = TabHome

	model, cmd := m.enterTab(next)
	mm := model.(Model)
	return mm, tea.Batch(cmd, mm.notify(components.ToastKindSuccess, welcome))
}

func (m Model) handleLogoutDone(msg logoutDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.log.Warn("logout", zap.Error(msg.err))
		return m, m.notify(components.ToastKindWarning, msg.err.Error())
	}

	m.machine.Reset()
	m.loaded = false
	m.loading = false
	m.listErr = ""
	m.listSel = 0
	m.feedbackFocus = false
	m.focusLog = false
	m.input.Reset()
	m.input.Blur()
	m.form = newLoginForm()
	m.requested = TabHome
	m.tab = m.nav.AfterLogout()
	m.layout()

	return m, tea.Batch(m.form.setFocus(0), m.notify(components.ToastKindStatus, "You have been signed out"))
}

func (m Model) handleConversationsLoaded(msg conversationsLoadedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	m.feedbackFocus = false
	m.listSel = 0
	if msg.err != nil {
		m.listErr = "Couldn't load your conversations: " + msg.err.Error()
		m.layout()
		if api.IsUnauthorized(msg.err) {
			return m, tea.Batch(logoutCmd(m.account), m.notify(components.ToastKindError, "Your session has expired, please sign in again"))
		}
		return m, nil
	}
	m.listErr = ""
	m.loaded = true
	m.layout()
	m.refreshTranscript(true)
	if m.tab == TabMessages {
		return m, m.focusInput()
	}
	return m, nil
}

func (m Model) handleSendDone(msg sendDoneMsg) (tea.Model, tea.Cmd) {
	out := m.machine.CompleteSend(msg.pending, msg.resp, msg.err)
	m.layout()
	m.refreshTranscript(true)

	if out.State == session.StateFailed && api.IsUnauthorized(out.Err) {
		return m, m.notify(components.ToastKindError, "Your session has expired, please sign in again")
	}
	return m, nil
}

func (m Model) handleDeleteDone(msg deleteDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.notify(components.ToastKindError, "Couldn't delete conversation: "+msg.err.Error())
	}
	if n := m.machine.Len(); m.listSel >= n {
		m.listSel = max(n-1, 0)
	}
	if m.machine.Active() == nil {
		m.focusLog = false
		m.feedbackFocus = false
		m.input.Blur()
	}
	m.layout()
	return m, m.notify(components.ToastKindSuccess, fmt.Sprintf("Deleted %q", msg.title))
}

func (m Model) handleFeedbackDone(msg feedbackDoneMsg) (tea.Model, tea.Cmd) {
	m.feedbackBusy = false
	if msg.err != nil {
		if errors.Is(msg.err, session.ErrNoFeedbackTarget) {
			return m, tea.Batch(m.closeFeedback(), m.notify(components.ToastKindWarning, msg.err.Error()))
		}
		return m, m.notify(components.ToastKindError, "Couldn't send feedback: "+msg.err.Error())
	}
	return m, tea.Batch(m.closeFeedback(), m.notify(components.ToastKindSuccess, "Thank you for your feedback!"))
}

func (m Model) handleEmailDone(msg emailDoneMsg) (tea.Model, tea.Cmd) {
	m.emailBusy = false
	if msg.err != nil {
		return m, m.notify(components.ToastKindError, "Couldn't email transcript: "+msg.err.Error())
	}
	text := "Transcript sent to " + m.account.Email()
	if msg.status != nil && msg.status.Message != "" {
		text = msg.status.Message
	}
	m.refreshTranscript(false)
	return m, m.notify(components.ToastKindSuccess, text)
}

func (m Model) handleFeedbackReveal(msg feedbackRevealMsg) (tea.Model, tea.Cmd) {
	next := waitForFeedback(m.feedbackCh)
	if !msg.feedback.Visible || m.tab != TabMessages || m.feedbackFocus {
		m.layout()
		return m, next
	}
	m.openFeedback()
	return m, next
}

func (m Model) handleConfigReload(msg configReloadMsg) (tea.Model, tea.Cmd) {
	next := waitForReload(m.reloadCh)
	if msg.reload.Err != nil {
		return m, tea.Batch(next, m.notify(components.ToastKindWarning, "Config reload failed: "+msg.reload.Err.Error()))
	}
	cfg := msg.reload.Config
	if cfg == nil {
		return m, next
	}

	if cfg.UI.Theme != m.cfg.UI.Theme {
		theme := styles.NewTheme(cfg.UI.Theme)
		theme.SetSize(m.width, m.height)
		m.theme = theme
		m.md = components.NewMarkdown(cfg.UI.Theme)
		m.spinner.Style = theme.TypingText
		m.help.Styles.ShortKey = theme.HelpKey
		m.help.Styles.ShortDesc = theme.HelpDesc
		m.help.Styles.FullKey = theme.HelpKey
		m.help.Styles.FullDesc = theme.HelpDesc
	}
	m.machine.SetFeedbackDelay(feedbackDelay(cfg))
	m.cfg = cfg
	m.layout()
	m.log.Info("config reloaded")
	return m, tea.Batch(next, m.notify(components.ToastKindStatus, "Configuration reloaded"))
}
