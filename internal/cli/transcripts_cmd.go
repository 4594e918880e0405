// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// transcripts_cmd.go - Locally saved conversation transcripts.
//
// Examples:
//   advith transcripts                  List saved transcripts
//   advith transcripts show 1           Print transcript 1 as markdown
//   advith transcripts search gst       Find transcripts mentioning "gst"
//   advith transcripts delete 1

package cli

import (
	"errors"
	"fmt"

	"github.com/jeranaias/advith-tui/internal/storage"
)

// HandleTranscripts dispatches the transcripts subcommands.
func HandleTranscripts(app *App, args Args) error {
	p := args.Parser()
	store := app.Transcripts

	switch args.Subcommand {
	case "", "list", "ls":
		metas, err := store.List()
		if err != nil {
			return err
		}
		if app.JSON {
			return app.PrintJSON("transcripts list", metas)
		}
		fmt.Fprint(app.Out, storage.FormatList(metas))
		return nil

	case "search", "find":
		query := JoinPositionalArgs(p, 1)
		if query == "" {
			return ErrMissingArgument("query", "advith transcripts search gst")
		}
		metas, err := store.Search(query)
		if err != nil {
			return err
		}
		if app.JSON {
			return app.PrintJSON("transcripts search", metas)
		}
		fmt.Fprint(app.Out, storage.FormatList(metas))
		return nil

	case "show", "cat":
		t, err := resolveTranscript(store, p.Positional(1))
		if err != nil {
			return err
		}
		if app.JSON {
			return app.PrintJSON("transcripts show", t)
		}
		fmt.Fprint(app.Out, t.ExportMarkdown())
		return nil

	case "delete", "rm":
		t, err := resolveTranscript(store, p.Positional(1))
		if err != nil {
			return err
		}
		if err := store.Delete(t.ID); err != nil {
			return err
		}
		if app.JSON {
			return app.PrintJSON("transcripts delete", map[string]string{"id": t.ID})
		}
		app.Success("Deleted transcript %s", t.ID)
		return nil
	}

	return &ValidationError{
		Field:   "transcripts subcommand",
		Value:   args.Subcommand,
		Reason:  "expected list, search, show or delete",
		Example: "advith transcripts show 1",
	}
}

func resolveTranscript(store *storage.TranscriptStore, ref string) (*storage.Transcript, error) {
	if ref == "" {
		return nil, ErrMissingArgument("transcript", "advith transcripts show 1")
	}
	t, err := store.Resolve(ref)
	if errors.Is(err, storage.ErrTranscriptNotFound) {
		return nil, ErrNotFound("transcript", ref)
	}
	return t, err
}
