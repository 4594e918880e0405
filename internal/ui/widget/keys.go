// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import "github.com/charmbracelet/bubbles/key"

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the widget.
type KeyMap struct {
	// Global
	Open    key.Binding
	Close   key.Binding
	Quit    key.Binding
	Home    key.Binding
	Chat    key.Binding
	Help    key.Binding
	Account key.Binding
	ShowKey key.Binding

	// Lists and forms
	Up     key.Binding
	Down   key.Binding
	Next   key.Binding
	Prev   key.Binding
	Left   key.Binding
	Right  key.Binding
	Select key.Binding

	// Messages
	NewChat  key.Binding
	Delete   key.Binding
	Refresh  key.Binding
	Back     key.Binding
	Send     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Email    key.Binding
	Save     key.Binding
	Rate     key.Binding
	Focus    key.Binding

	// Dismiss toasts
	Dismiss key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Open: key.NewBinding(
			key.WithKeys("enter", " ", "o"),
			key.WithHelp("enter", "open support"),
		),
		Close: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("C-w", "close"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
		Home: key.NewBinding(
			key.WithKeys("f1", "alt+1"),
			key.WithHelp("F1", "home"),
		),
		Chat: key.NewBinding(
			key.WithKeys("f2", "alt+2"),
			key.WithHelp("F2", "messages"),
		),
		Help: key.NewBinding(
			key.WithKeys("f3", "alt+3"),
			key.WithHelp("F3", "help"),
		),
		Account: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "login/logout"),
		),
		ShowKey: key.NewBinding(
			key.WithKeys("f12"),
			key.WithHelp("F12", "keys"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "down"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("S-tab", "previous field"),
		),
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("left", "previous option"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("right", "next option"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		NewChat: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new chat"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "scroll down"),
		),
		Email: key.NewBinding(
			key.WithKeys("e", "ctrl+e"),
			key.WithHelp("e", "email transcript"),
		),
		Save: key.NewBinding(
			key.WithKeys("s", "ctrl+s"),
			key.WithHelp("s", "save transcript"),
		),
		Rate: key.NewBinding(
			key.WithKeys("f", "ctrl+f"),
			key.WithHelp("f", "rate reply"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "input/transcript"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("C-x", "dismiss toasts"),
		),
	}
}

// =============================================================================
// CONTEXT HELP
// =============================================================================

// contextKeys adapts a binding list to help.KeyMap.
type contextKeys struct {
	short []key.Binding
	full  [][]key.Binding
}

func (c contextKeys) ShortHelp() []key.Binding  { return c.short }
func (c contextKeys) FullHelp() [][]key.Binding { return c.full }

// launcherHelp is shown while the modal is closed.
func (k KeyMap) launcherHelp() contextKeys {
	return contextKeys{short: []key.Binding{k.Open, k.Quit}}
}

// tabHelp returns the bindings relevant to the visible view.
func (k KeyMap) tabHelp(v view) contextKeys {
	global := []key.Binding{k.Home, k.Chat, k.Help, k.Account, k.Close, k.Quit}

	var local []key.Binding
	switch v {
	case viewHome, viewHelp:
		local = []key.Binding{k.Up, k.Down, k.Select}
	case viewList:
		local = []key.Binding{k.Up, k.Down, k.Select, k.NewChat, k.Delete, k.Refresh}
	case viewConversation:
		local = []key.Binding{k.Send, k.Focus, k.Back, k.PageUp, k.PageDown}
	case viewTranscript:
		local = []key.Binding{k.Focus, k.Email, k.Save, k.Rate, k.Delete, k.Back}
	case viewFeedback:
		local = []key.Binding{k.Left, k.Right, k.Next, k.Select, k.Back}
	case viewLogin, viewSignup:
		local = []key.Binding{k.Next, k.Prev, k.Left, k.Right, k.Select}
	}

	return contextKeys{
		short: append(local[:len(local):len(local)], k.ShowKey),
		full:  [][]key.Binding{local, global},
	}
}
