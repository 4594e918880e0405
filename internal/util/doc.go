// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared by the support client.
//
// # Key Functions
//
// Text:
//   - Normalize: NFC-normalises and trims user input
//   - TruncateWidth: display-width aware truncation for previews and titles
//   - FirstLine: first line of a multi-line message
//
// Files:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	preview := util.TruncateWidth(util.FirstLine(msg.Content), 40)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
