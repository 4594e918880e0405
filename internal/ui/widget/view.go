// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/advith-tui/internal/content"
	"github.com/jeranaias/advith-tui/internal/model"
	"github.com/jeranaias/advith-tui/internal/ui/components"
	"github.com/jeranaias/advith-tui/internal/util"
)

// =============================================================================
// LAUNCHER AND MODAL
// =============================================================================

func (m Model) renderLauncher() string {
	button := m.theme.Launcher.Render("? " + content.Brand)
	hint := m.theme.LauncherHint.Render(m.help.View(m.keys.launcherHelp()))

	parts := []string{}
	if toasts := m.renderToasts(); toasts != "" {
		parts = append(parts, toasts)
	}
	parts = append(parts, button, hint)

	return lipgloss.Place(m.width, m.height, lipgloss.Right, lipgloss.Bottom,
		lipgloss.JoinVertical(lipgloss.Right, parts...))
}

func (m Model) renderModal() string {
	w, _ := m.theme.ModalSize()
	bw, bh := m.bodySize()
	v := m.currentView()

	body := lipgloss.NewStyle().
		Width(bw).
		Height(bh).
		MaxHeight(bh).
		Render(m.renderBody(v, bw, bh))

	inner := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(bw),
		body,
		m.renderNav(bw),
		m.help.View(m.keys.tabHelp(v)),
	)
	modal := m.theme.Modal.Width(w - 2).Render(inner)

	parts := []string{}
	if toasts := m.renderToasts(); toasts != "" {
		parts = append(parts, toasts)
	}
	parts = append(parts, modal)

	return lipgloss.Place(m.width, m.height, lipgloss.Right, lipgloss.Bottom,
		lipgloss.JoinVertical(lipgloss.Right, parts...))
}

func (m Model) renderToasts() string {
	return components.RenderToastStack(m.toasts.Toasts(), m.width, time.Now())
}

// renderHeader shows the tab title with the account controls on the right.
func (m Model) renderHeader(width int) string {
	title := m.theme.ModalTitle.Render(m.tab.Title())

	var right string
	if m.loggedIn() {
		name := ""
		if p, ok := m.account.Profile(); ok {
			name = p.DisplayName()
		}
		right = m.theme.HeaderAccount.Render(util.TruncateWidth(name, width/3)) + " " +
			m.theme.HeaderButton.Render("[Logout]")
	} else {
		right = m.theme.HeaderButton.Render("[Login]")
	}
	right += " " + m.theme.Muted.Render("[x]")

	gap := width - lipgloss.Width(title) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return m.theme.ModalHeader.Width(width).Render(title + strings.Repeat(" ", gap) + right)
}

// renderNav shows the bottom navigation bar.
func (m Model) renderNav(width int) string {
	loggedIn := m.loggedIn()
	items := make([]string, 0, len(NavTabs))
	for i, t := range NavTabs {
		label := fmt.Sprintf("F%d %s", i+1, t.Label(loggedIn))
		style := m.theme.NavItem
		switch {
		case m.tab == t:
			style = m.theme.NavItemActive
		case t == TabMessages && !loggedIn:
			style = m.theme.NavRestricted
		}
		items = append(items, style.Render(label))
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, items...)
	return m.theme.NavBar.Width(width).Render(lipgloss.PlaceHorizontal(width, lipgloss.Center, row))
}

func (m Model) renderBody(v view, width, height int) string {
	switch v {
	case viewHome:
		return m.renderHome(width, height)
	case viewHelp:
		return m.renderHelp(width, height)
	case viewList:
		return m.renderList(width, height)
	case viewConversation, viewTranscript, viewFeedback:
		return m.renderConversation(width)
	case viewLogin, viewSignup:
		return m.renderForm(width, height)
	}
	return ""
}

// =============================================================================
// HOME AND HELP
// =============================================================================

func (m Model) renderHome(width, height int) string {
	var sb strings.Builder
	sb.WriteString(m.theme.Heading.Render(content.WelcomeTitle) + "\n")
	sb.WriteString(m.theme.Body.Width(width).Render(content.WelcomeText) + "\n\n")
	sb.WriteString(m.theme.Subheading.Render(content.FAQHeading) + "\n\n")

	focus := 0
	for i, faq := range m.faqs {
		if i == m.faqSel {
			focus = strings.Count(sb.String(), "\n")
		}
		sb.WriteString(m.accordionRow(faq.Question, i == m.faqSel, i == m.faqOpen, width) + "\n")
		if i == m.faqOpen {
			sb.WriteString(m.renderMarkdown(faq.Answer, width-2) + "\n")
		}
	}
	return clipAround(sb.String(), focus, height)
}

func (m Model) renderHelp(width, height int) string {
	var sb strings.Builder
	sb.WriteString(m.theme.Heading.Render(content.HelpHeading) + "\n")
	sb.WriteString(m.theme.Muted.Render("Browse articles by category") + "\n\n")

	focus := 0
	for i, cat := range m.helpCats {
		if i == m.helpSel {
			focus = strings.Count(sb.String(), "\n")
		}
		label := fmt.Sprintf("%s (%d)", cat.Category, len(cat.Articles))
		sb.WriteString(m.accordionRow(label, i == m.helpSel, i == m.helpOpen, width) + "\n")
		if i == m.helpOpen {
			for _, a := range cat.Articles {
				sb.WriteString("    " + m.theme.ListTitle.Render(a.Title) + "\n")
				sb.WriteString("    " + m.theme.ListPreview.Width(width-4).Render(a.Excerpt) + "\n")
			}
			sb.WriteString("\n")
		}
	}
	return clipAround(sb.String(), focus, height)
}

func (m Model) accordionRow(label string, selected, open bool, width int) string {
	marker := "+ "
	if open {
		marker = "- "
	}
	style := m.theme.Question
	if selected {
		style = m.theme.QuestionSel
	}
	return style.Render(marker + util.TruncateWidth(label, width-2))
}

func (m Model) renderMarkdown(md string, width int) string {
	if !m.cfg.UI.RenderMarkdown {
		return m.theme.Body.Width(width).Render(md)
	}
	return strings.TrimRight(m.md.Render(md, width), "\n")
}

// =============================================================================
// MESSAGES
// =============================================================================

func (m Model) renderList(width, height int) string {
	snap := m.machine.Snapshot()

	var sb strings.Builder
	sb.WriteString(m.theme.Heading.Render("Your Conversations") + "\n")

	switch {
	case m.loading:
		sb.WriteString("\n" + m.spinner.View() + " " + m.theme.Muted.Render("Loading conversations..."))
		return sb.String()
	case m.listErr != "":
		sb.WriteString("\n" + m.theme.ErrorStyle.Width(width).Render(m.listErr) + "\n")
		sb.WriteString(m.theme.Muted.Render("Press r to retry or n to start a new conversation."))
		return sb.String()
	case len(snap.Conversations) == 0:
		sb.WriteString("\n" + m.theme.Muted.Render("No conversations yet. Press n to start one."))
		return sb.String()
	}
	sb.WriteString(m.theme.Muted.Render(fmt.Sprintf("%d conversation(s)", len(snap.Conversations))) + "\n\n")

	focus := 0
	for i, c := range snap.Conversations {
		if i == m.listSel {
			focus = strings.Count(sb.String(), "\n")
		}
		sb.WriteString(m.renderListItem(c, i == m.listSel, width) + "\n")
	}
	return clipAround(sb.String(), focus, height)
}

func (m Model) renderListItem(c *model.Conversation, selected bool, width int) string {
	inner := width - 2

	title := c.GetTitle()
	if c.EmailSent {
		title += " (emailed)"
	}
	meta := ""
	if !c.LastActivity.IsZero() {
		meta = c.LastActivity.Format("Jan 2 15:04")
	}
	gap := inner - util.StringWidth(meta) - 1
	titleLine := m.theme.ListTitle.Render(util.PadRight(util.TruncateWidth(title, gap), gap)) +
		" " + m.theme.ListMeta.Render(meta)

	preview := c.LastMessage
	if preview == "" {
		preview = "No messages yet"
	}
	previewLine := m.theme.ListPreview.Render(util.TruncateWidth(preview, inner))

	style := m.theme.ListItem
	if selected {
		style = m.theme.ListItemSelected
	}
	return style.Width(width).Render(titleLine + "\n" + previewLine)
}

func (m Model) renderConversation(width int) string {
	snap := m.machine.Snapshot()
	conv := snap.Active
	if conv == nil {
		return ""
	}

	title := m.theme.Subheading.Render(util.TruncateWidth(conv.GetTitle(), width-12))
	if conv.EmailSent {
		title += " " + m.theme.Muted.Render("(emailed)")
	}

	typing := ""
	if snap.Typing {
		typing = m.spinner.View() + " " + m.theme.TypingText.Render("Chatbot is typing...")
	}

	parts := []string{title, "", m.transcript.View(), typing}
	if snap.Feedback.Visible {
		parts = append(parts, m.renderFeedback(width))
	}

	box := m.theme.InputBox
	if !m.focusLog && !m.feedbackFocus {
		box = m.theme.InputBoxFocus
	}
	parts = append(parts, box.Width(width-2).Render(m.input.View()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderMessages renders the transcript for the viewport.
func (m Model) renderMessages(conv *model.Conversation, width int) string {
	if width <= 0 {
		return ""
	}
	bubbleWidth := width * 3 / 4
	if bubbleWidth < 20 {
		bubbleWidth = width
	}

	blocks := make([]string, 0, len(conv.Messages))
	for _, msg := range conv.Messages {
		blocks = append(blocks, m.renderMessage(msg, width, bubbleWidth))
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) renderMessage(msg *model.Message, width, bubbleWidth int) string {
	label := m.theme.SenderLabel.Render(msg.Sender)
	if m.cfg.UI.ShowTimestamps {
		if ts := msg.DisplayTime(); ts != "" {
			label += " " + m.theme.Timestamp.Render(ts)
		}
	}
	switch msg.Delivery {
	case model.DeliveryPending:
		label += " " + m.theme.PendingMark.Render("sending...")
	case model.DeliveryFailed:
		label += " " + m.theme.FailedMark.Render("not delivered")
	}

	var bubble string
	switch {
	case msg.Role == model.RoleUser:
		bubble = m.theme.UserBubble.Width(bubbleWidth).Render(msg.Content)
	case msg.IsError:
		bubble = m.theme.ErrorBubble.Width(bubbleWidth).Render(msg.Content)
	case m.cfg.UI.RenderMarkdown:
		bubble = m.theme.SystemBubble.Render(m.renderMarkdown(msg.Content, bubbleWidth-2))
	default:
		bubble = m.theme.SystemBubble.Width(bubbleWidth).Render(msg.Content)
	}

	block := lipgloss.JoinVertical(lipgloss.Left, label, bubble)
	if msg.Role == model.RoleUser {
		block = lipgloss.JoinVertical(lipgloss.Right, label, bubble)
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, block)
	}
	return block
}

// renderFeedback shows the rating prompt under the transcript.
func (m Model) renderFeedback(width int) string {
	var sb strings.Builder
	sb.WriteString(m.theme.Heading.Render("How helpful was this response?") + "\n")

	stars := components.RenderStars(m.theme, m.rating)
	if m.rating > 0 {
		stars += m.theme.Muted.Render(fmt.Sprintf("  %d/5", m.rating))
	}
	sb.WriteString(stars + "\n")

	marker := "  "
	if m.onSuggestion {
		marker = m.theme.LabelFocus.Render("> ")
	}
	sb.WriteString(marker + m.suggestion.View() + "\n")

	hint := "1-5 rate  tab suggestion  enter submit  esc skip"
	switch {
	case m.feedbackBusy:
		hint = "Submitting..."
	case !m.feedbackFocus:
		hint = "press tab then f to rate this reply"
	}
	sb.WriteString(m.theme.FeedbackHint.Render(hint))

	return m.theme.FeedbackBox.Width(width - 2).Render(sb.String())
}

// =============================================================================
// AUTH
// =============================================================================

func (m Model) renderForm(width, height int) string {
	formWidth := width
	if formWidth > 56 {
		formWidth = 56
	}
	out := renderCentered(m.form.view(m.theme, formWidth), width)

	focus := 0
	if n := len(m.form.fields); n > 0 {
		focus = strings.Count(out, "\n") * m.form.focus / n
	}
	return clipAround(out, focus, height)
}

// clipAround keeps height lines of s with focusLine in view.
func clipAround(s string, focusLine, height int) string {
	lines := strings.Split(s, "\n")
	if height <= 0 || len(lines) <= height {
		return s
	}
	start := focusLine - height/3
	if start > len(lines)-height {
		start = len(lines) - height
	}
	if start < 0 {
		start = 0
	}
	return strings.Join(lines[start:start+height], "\n")
}
