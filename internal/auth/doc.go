// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth holds the process-wide signed-in session.
//
// A Session separates Credentials (tokens and their expiry) from the
// displayable Profile. It is created by Login or Signup, rehydrated from a
// Store by Load, and cleared by Logout. The Session implements
// api.TokenSource so the API client reads the current bearer token from it.
//
// # Persistence
//
// Sessions are kept in a small SQLite key/value table under the keys
// "token", "refreshToken", and "user". Logout removes all three in a single
// transaction. Tokens can be sealed at rest with AES-256-GCM using a key
// derived by PBKDF2 from a local key file.
package auth
