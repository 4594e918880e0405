// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the support widget.

All colors use Lip Gloss AdaptiveColor so the palette follows the terminal
background. The theme mode from config can pin it:

	theme := styles.NewTheme(cfg.UI.Theme) // "auto", "dark" or "light"

# Colors (colors.go)

  - Brand - Advith blue, launcher and active tab
  - Accent - links, focused inputs
  - Emerald - success, confirmed delivery
  - Amber - warnings, pending delivery, rating stars
  - Rose - errors, failed delivery

# Status Indicators

ASCII shape indicators accompany every colored status so it reads without
color:

	StatusIndicators.Success - [OK]
	StatusIndicators.Error   - [X]
	StatusIndicators.Pending - [ ]
*/
package styles
