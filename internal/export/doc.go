// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes conversations to files for sharing or archiving.
//
// # Supported Formats
//
//   - JSON: the stored history record, re-importable
//   - Markdown: human-readable with optional frontmatter
//   - HTML: standalone page with syntax-highlighted code blocks
//
// # Usage
//
//	opts := export.DefaultOptions()
//	opts.OutputDir = "exports"
//	path, err := export.Export(&conv, "markdown", opts)
package export
