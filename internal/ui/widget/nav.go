// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

// Tab is a modal section.
type Tab int

const (
	TabHome Tab = iota
	TabMessages
	TabHelp
	TabAuth
)

// NavTabs are the tabs shown in the bottom navigation bar.
var NavTabs = []Tab{TabHome, TabMessages, TabHelp}

func (t Tab) String() string {
	switch t {
	case TabHome:
		return "home"
	case TabMessages:
		return "messages"
	case TabHelp:
		return "help"
	case TabAuth:
		return "auth"
	default:
		return "unknown"
	}
}

// Title is the modal header for the tab.
func (t Tab) Title() string {
	switch t {
	case TabHome:
		return "Home"
	case TabMessages:
		return "Messages"
	case TabHelp:
		return "Help"
	case TabAuth:
		return "Authentication"
	default:
		return ""
	}
}

// Label is the navigation bar text for the tab.
func (t Tab) Label(loggedIn bool) string {
	if t == TabMessages && !loggedIn {
		return "Messages (login required)"
	}
	return t.Title()
}

// Navigator decides which tab is entered. Guards run before a tab is shown,
// so a restricted tab is never rendered for the wrong user.
type Navigator struct {
	LoggedIn func() bool
}

func (n Navigator) loggedIn() bool {
	return n.LoggedIn != nil && n.LoggedIn()
}

// Transition returns the tab actually entered when to is requested.
// Messages requires a login and redirects to Auth; Auth while logged in
// redirects to Home.
func (n Navigator) Transition(to Tab) Tab {
	switch {
	case to == TabMessages && !n.loggedIn():
		return TabAuth
	case to == TabAuth && n.loggedIn():
		return TabHome
	case to < TabHome || to > TabAuth:
		return TabHome
	}
	return to
}

// AfterAuth is the tab shown after a successful login or signup. A user who
// was sent to Auth from Messages lands back on Messages.
func (n Navigator) AfterAuth(requested Tab) Tab {
	if requested == TabMessages {
		return n.Transition(TabMessages)
	}
	return n.Transition(TabHome)
}

// AfterLogout is the tab shown after logging out.
func (n Navigator) AfterLogout() Tab {
	return n.Transition(TabAuth)
}
