// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/jeranaias/advith-tui/internal/ui/styles"
)

func TestMarkdown_Render(t *testing.T) {
	md := NewMarkdown("dark")
	out := md.Render("### What are your business hours?\n\nWe are available 24/7.", 40)
	if !strings.Contains(out, "business") {
		t.Errorf("Rendered markdown lost the heading: %q", out)
	}
	if !strings.Contains(out, "24/7") {
		t.Errorf("Rendered markdown lost the body: %q", out)
	}

	// Same width reuses the cached renderer.
	_ = md.Render("again", 40)
	if len(md.renderers) != 1 {
		t.Errorf("Expected one cached renderer, got %d", len(md.renderers))
	}
}

func TestRenderStars(t *testing.T) {
	theme := styles.NewTheme(styles.ModeDark)
	out := RenderStars(theme, 3)
	if got := strings.Count(out, starOn); got != 3 {
		t.Errorf("Expected 3 lit stars, got %d", got)
	}
	if got := strings.Count(out, starOff); got != 2 {
		t.Errorf("Expected 2 unlit stars, got %d", got)
	}
}

func TestClampRating(t *testing.T) {
	tests := []struct{ in, want int }{
		{-1, 0}, {0, 0}, {3, 3}, {5, 5}, {9, 5},
	}
	for _, tt := range tests {
		if got := ClampRating(tt.in); got != tt.want {
			t.Errorf("ClampRating(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestHighlightJSON(t *testing.T) {
	in := `{"status": "success"}`
	out := HighlightJSON(in)
	if !strings.Contains(out, "success") {
		t.Errorf("Highlighted output lost content: %q", out)
	}
	if out == in {
		t.Error("Expected escape sequences in highlighted output")
	}
}
