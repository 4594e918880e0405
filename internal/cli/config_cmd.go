// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Inspect and change ~/.advith/config.toml.
//
// Examples:
//   advith config                          Show the effective configuration
//   advith config get api.base_url
//   advith config set chat.feedback_delay_secs 10
//   advith config keys
//   advith config path

package cli

import (
	"fmt"
	"os"

	"github.com/jeranaias/advith-tui/internal/config"
)

// HandleConfig dispatches the config subcommands.
func HandleConfig(app *App, args Args) error {
	p := args.Parser()

	switch args.Subcommand {
	case "", "show":
		if app.JSON {
			return app.PrintJSON("config show", app.Config)
		}
		fmt.Fprint(app.Out, app.Config.String())
		return nil

	case "get":
		key := p.Positional(1)
		if key == "" {
			return ErrMissingArgument("key", "advith config get api.base_url")
		}
		value, err := app.Config.Get(key)
		if err != nil {
			return &ValidationError{Field: "key", Value: key, Reason: err.Error()}
		}
		if app.JSON {
			return app.PrintJSON("config get", ConfigValueData{Key: key, Value: value})
		}
		fmt.Fprintln(app.Out, value)
		return nil

	case "set":
		key, value := p.Positional(1), JoinPositionalArgs(p, 2)
		if key == "" || p.PositionalCount() < 3 {
			return ErrMissingArgument("key and value", "advith config set ui.theme dark")
		}
		return setConfigValue(app, key, value)

	case "keys":
		keys := config.AllKeys()
		if app.JSON {
			return app.PrintJSON("config keys", keys)
		}
		for _, k := range keys {
			fmt.Fprintln(app.Out, k)
		}
		return nil

	case "path":
		path, err := config.ConfigPathTOML()
		if err != nil {
			return err
		}
		if app.JSON {
			return app.PrintJSON("config path", map[string]string{"path": path})
		}
		fmt.Fprintln(app.Out, path)
		return nil
	}

	return &ValidationError{
		Field:   "config subcommand",
		Value:   args.Subcommand,
		Reason:  "expected show, get, set, keys or path",
		Example: "advith config get ui.theme",
	}
}

// setConfigValue edits the file on disk, not the effective configuration,
// so --api and environment overrides are not persisted.
func setConfigValue(app *App, key, value string) error {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return err
	}

	cfg := config.Default()
	if _, statErr := os.Stat(path); statErr == nil {
		if cfg, err = config.LoadFromPath(path); err != nil {
			return err
		}
	}

	if err := cfg.Set(key, value); err != nil {
		return &ValidationError{Field: key, Value: value, Reason: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := config.EnsureConfigDir(); err != nil {
		return err
	}
	if err := config.SaveTOML(cfg, path); err != nil {
		return err
	}

	stored, _ := cfg.Get(key)
	if app.JSON {
		return app.PrintJSON("config set", ConfigValueData{Key: key, Value: stored})
	}
	app.Success("%s = %v", key, stored)
	return nil
}
