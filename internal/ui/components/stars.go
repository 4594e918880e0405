// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/advith-tui/internal/api"
	"github.com/jeranaias/advith-tui/internal/ui/styles"
)

const (
	starOn  = "★"
	starOff = "☆"
)

// RenderStars draws the rating row. Stars up to rating are lit.
func RenderStars(theme *styles.Theme, rating int) string {
	var sb strings.Builder
	for i := api.MinRating; i <= api.MaxRating; i++ {
		if i > api.MinRating {
			sb.WriteString(" ")
		}
		if i <= rating {
			sb.WriteString(theme.StarOn.Render(starOn))
		} else {
			sb.WriteString(theme.StarOff.Render(starOff))
		}
	}
	return sb.String()
}

// ClampRating keeps a keyboard-adjusted rating inside the accepted range.
// Zero stays zero so "no rating yet" is representable.
func ClampRating(r int) int {
	switch {
	case r <= 0:
		return 0
	case r > api.MaxRating:
		return api.MaxRating
	}
	return r
}
