// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI pieces for the support widget.

  - Toasts (toast.go) - non-blocking notifications that auto-dismiss.
  - Markdown (markdown.go) - glamour rendering of FAQ answers and help articles.
  - Stars (stars.go) - the 1 to 5 rating row of the feedback prompt.
  - Highlight (highlight.go) - chroma highlighting of JSON output.

Components are plain values rendered by the widget model; none of them own a
Bubble Tea program.
*/
package components
