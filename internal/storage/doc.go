// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage saves conversation transcripts as local files.
//
// Transcripts are an export: the server remains the source of truth for
// conversation history. Each transcript is a JSON file written atomically
// under ~/.advith/transcripts/.
//
// # Usage
//
//	store, err := storage.NewTranscriptStoreWithDir(dir)
//	t := storage.FromConversation(conv, "a@b.co")
//	id, err := store.Save(t)
//	metas, err := store.List()
package storage
