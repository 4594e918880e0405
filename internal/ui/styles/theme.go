// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme modes accepted by NewTheme.
const (
	ModeAuto  = "auto"
	ModeDark  = "dark"
	ModeLight = "light"
)

// Theme holds all the styled components for the widget.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	Mode         string
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// LAUNCHER AND MODAL
	// ==========================================================================

	Launcher      lipgloss.Style
	LauncherHint  lipgloss.Style
	Modal         lipgloss.Style
	ModalHeader   lipgloss.Style
	ModalTitle    lipgloss.Style
	HeaderButton  lipgloss.Style
	HeaderAccount lipgloss.Style

	// ==========================================================================
	// NAVIGATION
	// ==========================================================================

	NavBar        lipgloss.Style
	NavItem       lipgloss.Style
	NavItemActive lipgloss.Style
	NavRestricted lipgloss.Style

	// ==========================================================================
	// CONTENT
	// ==========================================================================

	Heading     lipgloss.Style
	Subheading  lipgloss.Style
	Body        lipgloss.Style
	Muted       lipgloss.Style
	Question    lipgloss.Style
	QuestionSel lipgloss.Style

	// ==========================================================================
	// CONVERSATIONS
	// ==========================================================================

	ListItem         lipgloss.Style
	ListItemSelected lipgloss.Style
	ListTitle        lipgloss.Style
	ListPreview      lipgloss.Style
	ListMeta         lipgloss.Style

	UserBubble    lipgloss.Style
	SystemBubble  lipgloss.Style
	ErrorBubble   lipgloss.Style
	SenderLabel   lipgloss.Style
	Timestamp     lipgloss.Style
	PendingMark   lipgloss.Style
	FailedMark    lipgloss.Style
	TypingText    lipgloss.Style
	InputBox      lipgloss.Style
	InputBoxFocus lipgloss.Style

	FeedbackBox  lipgloss.Style
	StarOn       lipgloss.Style
	StarOff      lipgloss.Style
	FeedbackHint lipgloss.Style

	// ==========================================================================
	// FORMS
	// ==========================================================================

	FormTitle     lipgloss.Style
	FormSubtitle  lipgloss.Style
	Label         lipgloss.Style
	LabelFocus    lipgloss.Style
	FieldError    lipgloss.Style
	FormError     lipgloss.Style
	Button        lipgloss.Style
	ButtonFocus   lipgloss.Style
	ButtonBusy    lipgloss.Style
	Select        lipgloss.Style
	SelectFocus   lipgloss.Style
	ToggleLink    lipgloss.Style
	HelpBar       lipgloss.Style
	HelpKey       lipgloss.Style
	HelpDesc      lipgloss.Style

	// ==========================================================================
	// STATUS
	// ==========================================================================

	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	InfoStyle    lipgloss.Style
}

// NewTheme creates a theme for mode ("auto", "dark" or "light"). Unknown
// modes behave like "auto".
func NewTheme(mode string) *Theme {
	colorProfile := termenv.ColorProfile()

	var isDark bool
	switch mode {
	case ModeDark:
		isDark = true
		lipgloss.SetHasDarkBackground(true)
	case ModeLight:
		isDark = false
		lipgloss.SetHasDarkBackground(false)
	default:
		mode = ModeAuto
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		Mode:         mode,
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// Launcher and modal
	t.Launcher = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Brand).
		Padding(0, 2)

	t.LauncherHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.Modal = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Brand).
		Padding(0, 1)

	t.ModalHeader = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay)

	t.ModalTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Brand)

	t.HeaderButton = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)

	t.HeaderAccount = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Navigation
	t.NavBar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay)

	t.NavItem = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 2)

	t.NavItemActive = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Brand).
		Bold(true).
		Padding(0, 2)

	t.NavRestricted = lipgloss.NewStyle().
		Foreground(TextMuted).
		Strikethrough(true).
		Padding(0, 2)

	// Content
	t.Heading = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.Subheading = lipgloss.NewStyle().
		Bold(true).
		Foreground(Brand)

	t.Body = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.Muted = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Question = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.QuestionSel = lipgloss.NewStyle().
		Foreground(Brand).
		Bold(true)

	// Conversation list
	t.ListItem = lipgloss.NewStyle().
		Padding(0, 1)

	t.ListItemSelected = lipgloss.NewStyle().
		Background(SelectionBg).
		Padding(0, 1)

	t.ListTitle = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true)

	t.ListPreview = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.ListMeta = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Message bubbles
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		Background(UserBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1)

	t.SystemBubble = lipgloss.NewStyle().
		Foreground(SystemBubbleFg).
		Background(SystemBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(SystemBubbleBorder).
		Padding(0, 1)

	t.ErrorBubble = lipgloss.NewStyle().
		Foreground(ErrorBubbleFg).
		Background(ErrorBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(0, 1)

	t.SenderLabel = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.PendingMark = lipgloss.NewStyle().
		Foreground(Amber)

	t.FailedMark = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.TypingText = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.InputBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputBoxFocus = t.InputBox.
		BorderForeground(Accent)

	// Feedback prompt
	t.FeedbackBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Amber).
		Padding(0, 1)

	t.StarOn = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.StarOff = lipgloss.NewStyle().
		Foreground(OverlayDim)

	t.FeedbackHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Forms
	t.FormTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.FormSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.Label = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.LabelFocus = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)

	t.FieldError = lipgloss.NewStyle().
		Foreground(Rose)

	t.FormError = lipgloss.NewStyle().
		Foreground(ErrorBubbleFg).
		Background(ErrorBubbleBg).
		Padding(0, 1)

	t.Button = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(BrandDeep).
		Padding(0, 3)

	t.ButtonFocus = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Brand).
		Bold(true).
		Padding(0, 3)

	t.ButtonBusy = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(Overlay).
		Padding(0, 3)

	t.Select = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.SelectFocus = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)

	t.ToggleLink = lipgloss.NewStyle().
		Foreground(Accent).
		Underline(true)

	t.HelpBar = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.HelpKey = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)

	t.HelpDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Status
	t.SuccessStyle = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.ErrorStyle = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.WarningStyle = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.InfoStyle = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// ModalSize returns the modal dimensions for the current terminal. The
// modal keeps a widget-like width on large terminals and fills small ones.
func (t *Theme) ModalSize() (width, height int) {
	width, height = t.Width, t.Height
	if width > MaxModalWidth {
		width = MaxModalWidth
	}
	if height > MaxModalHeight {
		height = MaxModalHeight
	}
	if width < MinModalWidth {
		width = MinModalWidth
	}
	if height < MinModalHeight {
		height = MinModalHeight
	}
	return width, height
}

// Modal bounds.
const (
	MaxModalWidth  = 72
	MaxModalHeight = 40
	MinModalWidth  = 40
	MinModalHeight = 16
)

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
