// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-TUI commands for
// advith.
//
// # Key Types
//
//   - Command: Enumeration of all available CLI commands
//   - Args: Parsed command-line arguments with global and command-specific flags
//   - App: The wired client stack (config, session, API client, machine)
//   - JSONResponse: Machine-readable output for --json
//
// # Usage
//
//	cmd, args := cli.Parse(os.Args[1:])
//	switch cmd {
//	case cli.CmdLogin:
//	    err = cli.HandleLogin(ctx, app, args)
//	// ... other commands
//	}
//
// # Commands Overview
//
// Account: login, signup, logout, whoami.
// Conversations: chat (line-mode REPL), history, delete, feedback.
// Support data: qa stats|search, transcripts list|show|delete.
// Local: config show|get|set|path, devserver, version, help.
//
// All data commands support --json.
package cli
