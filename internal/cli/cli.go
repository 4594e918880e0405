// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command parsing, usage text and version output for advith.
package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdLogin
	CmdSignup
	CmdLogout
	CmdWhoami
	CmdHistory
	CmdDelete
	CmdFeedback
	CmdQA
	CmdTranscripts
	CmdConfig
	CmdDevserver
	CmdVersion
	CmdHelp
	CmdUnknown
)

var commandNames = map[Command]string{
	CmdTUI:         "tui",
	CmdChat:        "chat",
	CmdLogin:       "login",
	CmdSignup:      "signup",
	CmdLogout:      "logout",
	CmdWhoami:      "whoami",
	CmdHistory:     "history",
	CmdDelete:      "delete",
	CmdFeedback:    "feedback",
	CmdQA:          "qa",
	CmdTranscripts: "transcripts",
	CmdConfig:      "config",
	CmdDevserver:   "devserver",
	CmdVersion:     "version",
	CmdHelp:        "help",
}

// String returns the command name as typed on the command line.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// NeedsBackend reports whether the command talks to the support API.
func (c Command) NeedsBackend() bool {
	switch c {
	case CmdConfig, CmdDevserver, CmdVersion, CmdHelp, CmdTranscripts, CmdUnknown:
		return false
	}
	return true
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	API     string // --api overrides api.base_url for this run
	JSON    bool   // Output in JSON format
	Quiet   bool
	Verbose bool

	// Name is the command word as typed; kept for error messages.
	Name string

	// Subcommand is the first argument after the command (e.g. "stats").
	Subcommand string

	// Raw holds the arguments after the command word.
	Raw []string
}

// Parser returns an ArgParser over the command's arguments.
func (a Args) Parser(boolNames ...string) *ArgParser {
	return NewArgParser(a.Raw, boolNames...)
}

const usageText = `advith - Advith iTec customer support in your terminal

Chat with Advith iTec support about GST, income tax, corporate tax and
bookkeeping. Without a command the full-screen support widget starts.

Usage:
  advith                          Start the support widget (default)
  advith chat                     Line-mode chat with history
  advith login [email]            Sign in
  advith signup                   Create an account
  advith logout                   Sign out and forget the stored session
  advith whoami                   Show your profile and chat statistics
  advith history                  List your conversations
  advith delete <n|id>            Delete a conversation
  advith feedback <message-id> <rating 1-5> [suggestion]
                                  Rate a support reply
  advith qa stats                 Question/answer statistics
  advith qa search [query]        Search answered questions
        [--category C] [--helpful=true|false] [--page N] [--page-size N]
  advith transcripts [list|show|delete] [n|id]
                                  Manage saved transcripts
  advith config [show|get|set|path]
                                  Inspect or change configuration
  advith devserver [--addr HOST:PORT]
                                  Run an in-memory support backend
  advith version                  Show version information
  advith help                     Show this help

Global flags:
  --api URL       Use a different backend for this run
  --json          Print machine-readable JSON
  -q, --quiet     Only print results
  -v, --verbose   Log debug detail to the log file

Configuration lives in ~/.advith/config.toml (ADVITH_HOME overrides the
directory). Values can also be set with ADVITH_* environment variables or a
.env file.

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "advith version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
}

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses command-line arguments (without the program name) and
// returns the command and args.
func ParseArgs(argv []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	parsedArgs.Name = cmd
	parsedArgs.Raw = remaining[1:]
	if len(parsedArgs.Raw) > 0 && !strings.HasPrefix(parsedArgs.Raw[0], "-") {
		parsedArgs.Subcommand = strings.ToLower(parsedArgs.Raw[0])
	}

	switch cmd {
	case "tui", "widget":
		return CmdTUI, parsedArgs
	case "chat":
		return CmdChat, parsedArgs
	case "login", "signin":
		return CmdLogin, parsedArgs
	case "signup", "register":
		return CmdSignup, parsedArgs
	case "logout", "signout":
		return CmdLogout, parsedArgs
	case "whoami", "profile":
		return CmdWhoami, parsedArgs
	case "history", "conversations", "ls":
		return CmdHistory, parsedArgs
	case "delete", "rm":
		return CmdDelete, parsedArgs
	case "feedback", "rate":
		return CmdFeedback, parsedArgs
	case "qa":
		return CmdQA, parsedArgs
	case "transcripts", "transcript":
		return CmdTranscripts, parsedArgs
	case "config":
		return CmdConfig, parsedArgs
	case "devserver", "serve":
		return CmdDevserver, parsedArgs
	case "version", "--version":
		return CmdVersion, parsedArgs
	case "help", "-h", "--help":
		return CmdHelp, parsedArgs
	default:
		return CmdUnknown, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
// Global flags may appear anywhere on the command line.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--api":
			if i+1 < len(args) {
				i++
				parsedArgs.API = args[i]
			}
		default:
			if strings.HasPrefix(arg, "--api=") {
				parsedArgs.API = strings.TrimPrefix(arg, "--api=")
			} else {
				remaining = append(remaining, arg)
			}
		}
	}

	return remaining, parsedArgs
}

// =============================================================================
// VERSION AND HELP
// =============================================================================

// VersionData is the --json payload of the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// HandleVersion handles the "version" command.
func HandleVersion(app *App, args Args) error {
	if args.JSON {
		return app.PrintJSON("version", VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		})
	}
	PrintVersion(app.Out)
	return nil
}

// HandleHelp handles the "help" command.
func HandleHelp(app *App) error {
	PrintUsage(app.Out)
	return nil
}
