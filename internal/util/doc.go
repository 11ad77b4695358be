// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across sasage packages.
//
// # Key Functions
//
//   - AtomicWriteFile: crash-safe file writing with fsync + rename
//   - TruncateRunes: rune-based truncation with a trailing ellipsis
//   - TruncateWidth, PadWidth: terminal-cell aware layout helpers
//
// # Usage
//
//	title := util.TruncateRunes(text, 30)
//	row := util.PadWidth(util.TruncateWidth(title, 24), 24)
//	err := util.AtomicWriteFile(path, data, 0644)
package util
