// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// THEME CREATION TESTS
// =============================================================================

func TestNewTheme_Modes(t *testing.T) {
	defer lipgloss.SetHasDarkBackground(true)

	tests := []struct {
		mode     string
		wantMode string
		wantDark bool
		pinned   bool
	}{
		{"dark", ModeDark, true, true},
		{"light", ModeLight, false, true},
		{"auto", ModeAuto, false, false},
		{"neon", ModeAuto, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			theme := NewTheme(tt.mode)
			if theme.Mode != tt.wantMode {
				t.Errorf("Mode = %q, want %q", theme.Mode, tt.wantMode)
			}
			if tt.pinned && theme.IsDark != tt.wantDark {
				t.Errorf("IsDark = %v, want %v", theme.IsDark, tt.wantDark)
			}
		})
	}
}

func TestThemeInitStyles(t *testing.T) {
	theme := NewTheme(ModeDark)

	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Launcher", theme.Launcher},
		{"Modal", theme.Modal},
		{"NavItemActive", theme.NavItemActive},
		{"UserBubble", theme.UserBubble},
		{"SystemBubble", theme.SystemBubble},
		{"ErrorBubble", theme.ErrorBubble},
		{"FeedbackBox", theme.FeedbackBox},
		{"FieldError", theme.FieldError},
		{"ButtonFocus", theme.ButtonFocus},
	}

	for _, s := range styles {
		rendered := s.style.Render("test")
		if !strings.Contains(rendered, "test") {
			t.Errorf("%s style lost its content: %q", s.name, rendered)
		}
	}
}

// =============================================================================
// LAYOUT TESTS
// =============================================================================

func TestModalSize(t *testing.T) {
	theme := NewTheme(ModeDark)

	tests := []struct {
		name          string
		width, height int
		wantW, wantH  int
	}{
		{"large terminal", 200, 60, MaxModalWidth, MaxModalHeight},
		{"fits", 60, 30, 60, 30},
		{"tiny terminal", 20, 5, MinModalWidth, MinModalHeight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			theme.SetSize(tt.width, tt.height)
			w, h := theme.ModalSize()
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("ModalSize() = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestGetLayoutMode(t *testing.T) {
	theme := NewTheme(ModeDark)

	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{80, LayoutMedium},
		{120, LayoutWide},
	}

	for _, tt := range tests {
		theme.SetSize(tt.width, 24)
		if got := theme.GetLayoutMode(); got != tt.want {
			t.Errorf("width %d: GetLayoutMode() = %v, want %v", tt.width, got, tt.want)
		}
	}
}
