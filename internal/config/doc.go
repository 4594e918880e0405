// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for advith.
//
// Supports both TOML and JSON configuration formats, with defaults, .env
// files, environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: main configuration structure
//   - APIConfig: backend address, timeouts, retry and rate limits
//   - ChatConfig: feedback prompt timing and conversation defaults
//   - AuthConfig: where the signed-in session is persisted
//   - UIConfig: theme and rendering options
//   - LoggingConfig: rotating log file settings
//   - Watcher: reloads the config file when it changes on disk
//
// # Configuration Precedence
//
//   - Environment variables (ADVITH_*), including those from .env files
//   - ~/.advith/config.toml
//   - ~/.advith/config.json
//   - Built-in defaults
//
// The directory can be moved with ADVITH_HOME.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := api.NewClientWithConfig(&api.ClientConfig{
//	    BaseURL: cfg.API.BaseURL,
//	    Timeout: cfg.API.Timeout(),
//	})
package config
