// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// account_cmd.go - login, signup, logout and whoami.
//
// Examples:
//   advith login asha@example.com
//   advith signup --country India --state Karnataka
//   advith whoami --json
//   advith logout

package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/advith-tui/internal/auth"
	"github.com/jeranaias/advith-tui/internal/content"
	"github.com/jeranaias/advith-tui/internal/validate"
)

// HandleLogin signs in. The email may be given as an argument; the
// password is always prompted unless --password is passed.
func HandleLogin(ctx context.Context, app *App, args Args) error {
	p := args.Parser()
	prompt := NewPrompter(app.In, app.Err)

	email := p.FlagOrDefault("email", p.Positional(0))
	var err error
	if email == "" {
		if email, err = prompt.Line("Email", ""); err != nil {
			return err
		}
	}
	password := p.Flag("password")
	if password == "" {
		if password, err = prompt.Password("Password"); err != nil {
			return err
		}
	}

	profile, err := app.Session.Login(ctx, validate.Login{Email: email, Password: password})
	if err != nil {
		return err
	}

	if app.JSON {
		return app.PrintJSON("login", profileData(profile, app.Session.Credentials()))
	}
	app.Success("Signed in as %s", profile.DisplayName())
	return nil
}

// HandleSignup creates an account, prompting for every field not given as
// a flag.
func HandleSignup(ctx context.Context, app *App, args Args) error {
	p := args.Parser()
	prompt := NewPrompter(app.In, app.Err)

	ask := func(flag, label string) (string, error) {
		if v := p.Flag(flag); v != "" {
			return v, nil
		}
		return prompt.Line(label, "")
	}

	var form validate.Signup
	var err error
	if form.Name, err = ask("name", "Full name"); err != nil {
		return err
	}
	if form.Email, err = ask("email", "Email"); err != nil {
		return err
	}

	if p.Flag("country") == "" && !app.Quiet {
		names := make([]string, 0, len(content.Countries()))
		for _, c := range content.Countries() {
			names = append(names, c.Name)
		}
		fmt.Fprintln(app.Err, DimStyle.Render("Countries: "+strings.Join(names, ", ")))
	}
	if form.Country, err = ask("country", "Country"); err != nil {
		return err
	}
	country, known := content.LookupCountry(form.Country)
	if known {
		form.Country = country.Name
		if p.Flag("state") == "" && !app.Quiet {
			fmt.Fprintln(app.Err, DimStyle.Render("States: "+strings.Join(country.States, ", ")))
		}
	}
	if form.State, err = ask("state", "State"); err != nil {
		return err
	}

	phoneLabel := "Phone"
	if known {
		phoneLabel = fmt.Sprintf("Phone (%s)", country.DialCode)
	}
	if form.Phone, err = ask("phone", phoneLabel); err != nil {
		return err
	}
	if known {
		form.Phone = country.FormatPhone(form.Phone)
	}

	form.Password = p.Flag("password")
	if form.Password == "" {
		if form.Password, err = prompt.Password("Password"); err != nil {
			return err
		}
		if form.Confirm, err = prompt.Password("Confirm password"); err != nil {
			return err
		}
	} else {
		form.Confirm = form.Password
	}

	profile, err := app.Session.Signup(ctx, form)
	if err != nil {
		return err
	}

	if app.JSON {
		return app.PrintJSON("signup", profileData(profile, app.Session.Credentials()))
	}
	app.Success("Welcome, %s! Your account is ready.", profile.DisplayName())
	return nil
}

// HandleLogout signs out. Signing out when already signed out succeeds.
func HandleLogout(ctx context.Context, app *App, args Args) error {
	email := app.Session.Email()
	if err := app.Session.Logout(ctx); err != nil {
		return err
	}
	if app.JSON {
		return app.PrintJSON("logout", map[string]string{"email": email})
	}
	if email == "" {
		app.Printf("Not signed in.\n")
		return nil
	}
	app.Success("Signed out %s", email)
	return nil
}

// HandleWhoami fetches the profile and chat statistics of the signed-in
// user.
func HandleWhoami(ctx context.Context, app *App, args Args) error {
	if err := app.RequireSession(); err != nil {
		return err
	}
	email := app.Session.Email()

	user, err := app.Client.GetProfile(ctx, email)
	if err != nil {
		return err
	}
	profile := auth.ProfileFromUser(user)
	data := profileData(profile, app.Session.Credentials())

	stats, err := app.Client.GetChatStats(ctx, email)
	if err != nil {
		app.log.Sugar().Debugw("chat stats unavailable", "error", err)
	} else {
		data.TotalChats = stats.TotalChats
		data.HelpfulResponses = stats.HelpfulResponses
	}

	if app.JSON {
		return app.PrintJSON("whoami", data)
	}

	w := app.Out
	fmt.Fprintln(w, TitleStyle.Render(profile.DisplayName()))
	fmt.Fprintln(w, RenderSeparator(40))
	printField(w, "Email", data.Email)
	printField(w, "Phone", data.Phone)
	printField(w, "Location", joinNonEmpty(", ", data.State, data.Country))
	printField(w, "Member since", data.CreatedAt)
	printField(w, "Last active", data.LastActive)
	if stats != nil {
		printField(w, "Conversations", fmt.Sprint(data.TotalChats))
		printField(w, "Helpful replies", fmt.Sprint(data.HelpfulResponses))
	}
	printField(w, "Session expires", data.TokenExpires)
	return nil
}

func profileData(p auth.Profile, creds auth.Credentials) ProfileData {
	d := ProfileData{
		Email:      p.Email,
		Name:       p.Name,
		Phone:      p.Phone,
		Country:    p.Country,
		State:      p.State,
		CreatedAt:  p.CreatedAt,
		LastActive: p.LastActive,
	}
	if !creds.ExpiresAt.IsZero() {
		d.TokenExpires = creds.ExpiresAt.Local().Format(time.RFC3339)
	}
	return d
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, sep)
}
