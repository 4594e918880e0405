// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package devserver is an in-memory stand-in for the support backend.
//
// It serves the same routes the client calls, issues HS256 JWTs, and
// answers every chat message with a canned reply. It is used for demos
// (advith devserver) and as an end-to-end fixture in tests. Nothing is
// persisted.
//
// # Usage
//
//	srv := devserver.New(devserver.Options{})
//	ts := httptest.NewServer(srv.Handler())
//	defer ts.Close()
package devserver
