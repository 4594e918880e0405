// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"os"

	"go.uber.org/zap"
)

// Run builds the App for cmd, runs the handler and returns the exit code.
// Errors are displayed here, once.
func Run(ctx context.Context, cmd Command, args Args, opts AppOptions) int {
	app, err := NewApp(ctx, cmd, args, opts)
	if err != nil {
		errOut := opts.Err
		if errOut == nil {
			errOut = os.Stderr
		}
		DisplayError(errOut, cmd.String(), err, false)
		return GetExitCode(err)
	}
	defer app.Close()

	err = dispatch(ctx, app, cmd, args)
	if err == nil {
		return ExitSuccess
	}

	app.log.Debug("command failed", zap.Stringer("command", cmd), zap.Error(err))
	if app.JSON {
		DisplayError(app.Out, cmd.String(), err, true)
	} else {
		DisplayError(app.Err, cmd.String(), err, false)
	}
	return GetExitCode(err)
}

func dispatch(ctx context.Context, app *App, cmd Command, args Args) error {
	switch cmd {
	case CmdTUI:
		return HandleTUI(ctx, app, args)
	case CmdChat:
		return HandleChat(ctx, app, args)
	case CmdLogin:
		return HandleLogin(ctx, app, args)
	case CmdSignup:
		return HandleSignup(ctx, app, args)
	case CmdLogout:
		return HandleLogout(ctx, app, args)
	case CmdWhoami:
		return HandleWhoami(ctx, app, args)
	case CmdHistory:
		return HandleHistory(ctx, app, args)
	case CmdDelete:
		return HandleDelete(ctx, app, args)
	case CmdFeedback:
		return HandleFeedback(ctx, app, args)
	case CmdQA:
		return HandleQA(ctx, app, args)
	case CmdTranscripts:
		return HandleTranscripts(app, args)
	case CmdConfig:
		return HandleConfig(app, args)
	case CmdDevserver:
		return HandleDevserver(ctx, app, args)
	case CmdVersion:
		return HandleVersion(app, args)
	case CmdHelp:
		return HandleHelp(app)
	}
	return &ValidationError{
		Field:   "command",
		Value:   args.Name,
		Reason:  "unknown command",
		Example: "advith help",
	}
}

