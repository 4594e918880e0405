// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// qa_cmd.go - Question/answer statistics and search.
//
// Examples:
//   advith qa stats
//   advith qa search gst return --category gst --helpful=true --page 2

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/jeranaias/advith-tui/internal/api"
)

// HandleQA dispatches "qa stats" and "qa search".
func HandleQA(ctx context.Context, app *App, args Args) error {
	if err := app.RequireSession(); err != nil {
		return err
	}
	switch args.Subcommand {
	case "", "stats":
		return handleQAStats(ctx, app)
	case "search", "find":
		return handleQASearch(ctx, app, args)
	default:
		return &ValidationError{
			Field:   "qa subcommand",
			Value:   args.Subcommand,
			Reason:  "expected stats or search",
			Example: "advith qa search gst",
		}
	}
}

func handleQAStats(ctx context.Context, app *App) error {
	stats, err := app.Client.GetQAStats(ctx)
	if err != nil {
		return err
	}
	if app.JSON {
		return app.PrintJSON("qa stats", stats)
	}

	w := app.Out
	fmt.Fprintln(w, TitleStyle.Render("Question & Answer Statistics"))
	fmt.Fprintln(w, RenderSeparator(40))
	printField(w, "Total answered", fmt.Sprint(stats.TotalQAPairs))
	printField(w, "Helpful", fmt.Sprintf("%d (%.1f%%)", stats.HelpfulResponses, stats.HelpfulPercentage))

	if len(stats.Categories) > 0 {
		fmt.Fprintln(w, SectionStyle.Render("By category"))
		for _, c := range stats.Categories {
			printField(w, c.Category, fmt.Sprint(c.Count))
		}
	}
	if len(stats.DailyActivity) > 0 {
		fmt.Fprintln(w, SectionStyle.Render("Recent activity"))
		for _, d := range stats.DailyActivity {
			printField(w, d.Date, fmt.Sprintf("%d (GST %d, income tax %d, corporate tax %d)",
				d.Count, d.GSTQueries, d.IncomeTaxQueries, d.CorporateTaxQueries))
		}
	}
	return nil
}

func handleQASearch(ctx context.Context, app *App, args Args) error {
	p := args.Parser()
	params := api.QASearchParams{
		Query:    strings.TrimSpace(p.FlagOrDefault("query", JoinPositionalArgs(p, 1))),
		Category: p.Flag("category"),
	}
	if v := p.Flag("helpful"); v != "" {
		b, err := ParseBoolString(v)
		if err != nil {
			return ErrInvalidFormat("helpful", v, "--helpful=true")
		}
		params.Helpful = &b
	}
	var err error
	if params.Page, err = p.FlagInt("page"); err != nil {
		return err
	}
	if params.PageSize, err = p.FlagInt("page-size"); err != nil {
		return err
	}

	result, err := app.Client.SearchQA(ctx, params)
	if err != nil {
		return err
	}
	if app.JSON {
		return app.PrintJSON("qa search", result)
	}

	w := app.Out
	if len(result.Results) == 0 {
		app.Printf("No matching questions.\n")
		return nil
	}
	fmt.Fprintf(w, "%s %s\n", TitleStyle.Render("Results"),
		DimStyle.Render(fmt.Sprintf("page %d of %d, %d total", result.Page, result.TotalPages, result.Total)))
	for _, qa := range result.Results {
		fmt.Fprintln(w, RenderSeparator(60))
		head := PromptStyle.Render("Q: ") + qa.Question
		if qa.Category != "" {
			head += " " + DimStyle.Render("["+qa.Category+"]")
		}
		fmt.Fprintln(w, head)
		fmt.Fprintln(w, "A: "+qa.Answer)
		meta := []string{"#" + qa.ID.String()}
		if qa.CreatedAt != "" {
			meta = append(meta, qa.CreatedAt)
		}
		if qa.IsHelpful != nil {
			if *qa.IsHelpful {
				meta = append(meta, "helpful")
			} else {
				meta = append(meta, "not helpful")
			}
		}
		fmt.Fprintln(w, DimStyle.Render(strings.Join(meta, "  ")))
	}
	return nil
}
