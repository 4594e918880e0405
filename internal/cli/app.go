// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Wiring of config, logging, session store and API client shared
// by every command.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/jeranaias/advith-tui/internal/api"
	"github.com/jeranaias/advith-tui/internal/auth"
	"github.com/jeranaias/advith-tui/internal/config"
	"github.com/jeranaias/advith-tui/internal/logging"
	"github.com/jeranaias/advith-tui/internal/session"
	"github.com/jeranaias/advith-tui/internal/storage"
)

// App is the client stack a command runs against.
type App struct {
	Config      *config.Config
	Client      *api.Client
	Session     *auth.Session
	Machine     *session.Machine
	Transcripts *storage.TranscriptStore

	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Color enables highlighted JSON and styled output.
	Color bool
	Quiet bool
	JSON  bool

	log     *zap.Logger
	closers []func() error
}

// AppOptions overrides parts of the stack. Zero values load from disk.
type AppOptions struct {
	// Config is used as-is instead of loading the config file.
	Config *config.Config

	// Store replaces the SQLite session store.
	Store auth.Store

	// TranscriptDir replaces <config dir>/transcripts.
	TranscriptDir string

	// NoLogFile keeps the no-op logger.
	NoLogFile bool

	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// NewApp builds the stack for a command. A stored session is rehydrated
// when the command needs the backend.
func NewApp(ctx context.Context, cmd Command, args Args, opts AppOptions) (*App, error) {
	app := &App{
		In:    opts.In,
		Out:   opts.Out,
		Err:   opts.Err,
		Quiet: args.Quiet,
		JSON:  args.JSON,
	}
	if app.In == nil {
		app.In = os.Stdin
	}
	if app.Out == nil {
		app.Out = os.Stdout
		app.Color = ColorsEnabled()
	}
	if app.Err == nil {
		app.Err = os.Stderr
	}

	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load()
		if loaded == nil {
			return nil, err
		}
		if err != nil {
			app.warn("%v (using defaults)", err)
		}
		cfg = loaded
	}
	if args.API != "" {
		cfg.API.BaseURL = args.API
	}
	if args.Verbose {
		cfg.Logging.Level = "debug"
	}
	config.SetGlobal(cfg)
	app.Config = cfg

	if !opts.NoLogFile {
		app.initLogging()
	}
	app.log = logging.Named("cli")

	if !cmd.NeedsBackend() && cmd != CmdTranscripts {
		return app, nil
	}

	dir := opts.TranscriptDir
	if dir == "" {
		base, err := config.ConfigDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "transcripts")
	}
	transcripts, err := storage.NewTranscriptStoreWithDir(dir)
	if err != nil {
		return nil, err
	}
	app.Transcripts = transcripts

	if !cmd.NeedsBackend() {
		return app, nil
	}

	if err := app.initSession(ctx, opts.Store); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) initLogging() {
	path, err := a.Config.LogFilePath()
	if err != nil {
		a.warn("logging disabled: %v", err)
		return
	}
	closeFn, err := logging.Init(logging.Options{
		File:       path,
		Level:      a.Config.Logging.Level,
		MaxSizeMB:  a.Config.Logging.MaxSizeMB,
		MaxBackups: a.Config.Logging.MaxBackups,
		MaxAgeDays: a.Config.Logging.MaxAgeDays,
		Compress:   a.Config.Logging.Compress,
	})
	if err != nil {
		a.warn("logging disabled: %v", err)
		return
	}
	a.closers = append(a.closers, closeFn)
}

func (a *App) initSession(ctx context.Context, store auth.Store) error {
	cfg := a.Config

	a.Client = api.NewClientWithConfig(&api.ClientConfig{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.API.Timeout(),
		MaxRetries:        cfg.API.MaxRetries,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Burst:             cfg.API.Burst,
		UserAgent:         "advith-tui/" + Version,
		Logger:            logging.L(),
	})

	storePath, err := cfg.SessionStorePath()
	if err != nil {
		return err
	}
	if store == nil {
		sqlite, err := auth.OpenSQLiteStore(storePath)
		if err != nil {
			return fmt.Errorf("failed to open session store: %w", err)
		}
		store = sqlite
	}
	a.closers = append(a.closers, store.Close)

	var sealer *auth.Sealer
	if cfg.Auth.EncryptTokens {
		keyPath := filepath.Join(filepath.Dir(storePath), "session.key")
		sealer, err = auth.NewFileSealer(keyPath, 0)
		if err != nil {
			return fmt.Errorf("failed to load session key: %w", err)
		}
	}

	a.Session = auth.NewSession(store, a.Client, auth.Options{Sealer: sealer})
	a.Client.SetTokenSource(a.Session)
	if err := a.Session.Load(ctx); err != nil {
		a.log.Warn("session load failed", zap.Error(err))
	}

	if a.Session.IsAuthenticated() && cfg.Auth.ValidateOnStart {
		a.validateSession(ctx)
	}

	a.Machine = session.NewMachine(a.Client, a.Session, session.Config{
		FeedbackDelay: cfg.Chat.FeedbackDelay(),
		Greeting:      cfg.Chat.Greeting,
	})
	return nil
}

// validateSession signs out when the server no longer accepts the token.
// Network failures keep the session.
func (a *App) validateSession(ctx context.Context) {
	v, err := a.Client.ValidateToken(ctx, a.Session.AccessToken())
	switch {
	case err == nil && v.Valid:
		return
	case err != nil && !api.IsUnauthorized(err):
		a.log.Warn("token validation skipped", zap.Error(err))
		return
	}
	a.log.Info("stored session rejected by server")
	if err := a.Session.Logout(ctx); err != nil {
		a.log.Warn("logout failed", zap.Error(err))
	}
}

// Close releases the store and flushes the log.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// RequireSession returns ErrNotSignedIn when nobody is signed in.
func (a *App) RequireSession() error {
	if a.Session == nil || !a.Session.IsAuthenticated() {
		return ErrNotSignedIn
	}
	return nil
}

// =============================================================================
// OUTPUT
// =============================================================================

// PrintJSON writes a successful JSONResponse.
func (a *App) PrintJSON(command string, data any) error {
	return NewJSONResponse(command, data).Write(a.Out, a.Color)
}

// Printf writes human output unless --quiet.
func (a *App) Printf(format string, args ...any) {
	if a.Quiet {
		return
	}
	fmt.Fprintf(a.Out, format, args...)
}

// Success prints a green confirmation line unless --quiet.
func (a *App) Success(format string, args ...any) {
	if a.Quiet {
		return
	}
	fmt.Fprintln(a.Out, SuccessStyle.Render(fmt.Sprintf(format, args...)))
}

func (a *App) warn(format string, args ...any) {
	fmt.Fprintf(a.Err, "%s %s\n", WarningStyle.Render("[WARN]"), fmt.Sprintf(format, args...))
}
