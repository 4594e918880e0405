// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import "testing"

func TestNavigator_Transition(t *testing.T) {
	tests := []struct {
		name     string
		loggedIn bool
		to       Tab
		want     Tab
	}{
		{"home open to all", false, TabHome, TabHome},
		{"help open to all", false, TabHelp, TabHelp},
		{"messages needs login", false, TabMessages, TabAuth},
		{"messages when logged in", true, TabMessages, TabMessages},
		{"auth when logged out", false, TabAuth, TabAuth},
		{"auth when logged in goes home", true, TabAuth, TabHome},
		{"unknown tab", true, Tab(42), TabHome},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Navigator{LoggedIn: func() bool { return tt.loggedIn }}
			if got := n.Transition(tt.to); got != tt.want {
				t.Errorf("Transition(%v) = %v, want %v", tt.to, got, tt.want)
			}
		})
	}
}

func TestNavigator_AfterAuthAndLogout(t *testing.T) {
	loggedIn := true
	n := Navigator{LoggedIn: func() bool { return loggedIn }}

	if got := n.AfterAuth(TabMessages); got != TabMessages {
		t.Errorf("AfterAuth(messages) = %v, want messages", got)
	}
	if got := n.AfterAuth(TabAuth); got != TabHome {
		t.Errorf("AfterAuth(auth) = %v, want home", got)
	}

	loggedIn = false
	if got := n.AfterLogout(); got != TabAuth {
		t.Errorf("AfterLogout() = %v, want auth", got)
	}
}

func TestNavigator_NilLoggedIn(t *testing.T) {
	var n Navigator
	if got := n.Transition(TabMessages); got != TabAuth {
		t.Errorf("zero Navigator should treat the user as logged out, got %v", got)
	}
}

func TestTab_Label(t *testing.T) {
	if got := TabMessages.Label(false); got != "Messages (login required)" {
		t.Errorf("Label(false) = %q", got)
	}
	if got := TabAuth.Title(); got != "Authentication" {
		t.Errorf("Title() = %q", got)
	}
}
