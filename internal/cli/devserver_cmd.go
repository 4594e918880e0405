// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// devserver_cmd.go - In-memory support backend for demos and local work.
//
// Examples:
//   advith devserver
//   advith devserver --addr 127.0.0.1:9000 --seed demo@example.com:Demo@1234
//   advith --api http://127.0.0.1:9000 chat

package cli

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/jeranaias/advith-tui/internal/devserver"
)

// HandleDevserver serves the API until ctx is cancelled.
func HandleDevserver(ctx context.Context, app *App, args Args) error {
	p := args.Parser()
	addr := p.FlagOrDefault("addr", devserver.DefaultAddr)

	opts := devserver.Options{}
	if secret := p.Flag("secret"); secret != "" {
		opts.Secret = []byte(secret)
	}
	if ttl := p.Flag("token-ttl"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil || d <= 0 {
			return ErrInvalidFormat("token-ttl", ttl, "--token-ttl 2h")
		}
		opts.TokenTTL = d
	}
	srv := devserver.New(opts)

	if seed := p.Flag("seed"); seed != "" {
		email, password, ok := strings.Cut(seed, ":")
		if !ok || email == "" || password == "" {
			return ErrInvalidFormat("seed", seed, "--seed demo@example.com:Demo@1234")
		}
		if err := srv.Seed(email, "Demo User", password); err != nil {
			return err
		}
		app.Printf("Seeded user %s\n", email)
	}

	return srv.ListenAndServe(ctx, addr, func(a net.Addr) {
		if app.JSON {
			_ = app.PrintJSON("devserver", map[string]string{"addr": a.String()})
			return
		}
		app.Printf("%s http://%s\n", SuccessStyle.Render("Support backend listening on"), a)
		app.Printf("%s\n", DimStyle.Render(fmt.Sprintf("Point the client at it with: advith --api http://%s", a)))
	})
}
