// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// tui.go - Starts the full-screen support widget.

package cli

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/advith-tui/internal/config"
	"github.com/jeranaias/advith-tui/internal/ui/widget"
)

// configDebounce coalesces the burst of events an editor save produces.
const configDebounce = 300 * time.Millisecond

// HandleTUI runs the widget until the user quits.
func HandleTUI(ctx context.Context, app *App, args Args) error {
	opts := widget.Options{
		Config:      app.Config,
		Account:     app.Session,
		Machine:     app.Machine,
		Transcripts: app.Transcripts,
	}

	if watcher := startConfigWatcher(app); watcher != nil {
		defer watcher.Close()
		opts.Watcher = watcher
	}

	p := tea.NewProgram(
		widget.New(opts),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("error running advith: %w", err)
	}
	return nil
}

// startConfigWatcher watches config.toml so theme and feedback changes apply
// without a restart. Failure only disables hot reload.
func startConfigWatcher(app *App) *config.Watcher {
	if err := config.EnsureConfigDir(); err != nil {
		app.log.Warn("config watch disabled", zap.Error(err))
		return nil
	}
	path, err := config.ConfigPathTOML()
	if err != nil {
		app.log.Warn("config watch disabled", zap.Error(err))
		return nil
	}
	w, err := config.NewWatcher(path, configDebounce)
	if err != nil {
		app.log.Warn("config watch disabled", zap.Error(err))
		return nil
	}
	if err := w.Start(); err != nil {
		_ = w.Close()
		app.log.Warn("config watch disabled", zap.Error(err))
		return nil
	}
	return w
}
