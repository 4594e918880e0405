// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package widget is the Bubble Tea program for the support widget: a
// launcher that opens a tabbed modal with Home, Messages, Help and the
// authentication forms.
//
// Network work runs in tea.Cmd goroutines and returns as messages. The
// conversation state lives in a session.Machine; the model only renders its
// snapshots. Feedback reveals and config reloads arrive over channels that
// the model re-arms after every delivery.
package widget
