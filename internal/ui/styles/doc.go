// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the sasage TUI.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection.

# Color System (colors.go)

  - Primary - Brand blue for the header, selection and user messages
  - Success, Error, Warning, Info - Semantic states
  - Surface, SurfaceSidebar, SurfaceChat - Layered backgrounds
  - TextPrimary, TextSecondary, TextMuted - Text hierarchy

# Theme System (theme.go)

	theme := styles.NewTheme(cfg.UI.Theme)
	theme.SetSize(width, height)
	if theme.GetLayoutMode() == styles.LayoutNarrow {
		// hide the sidebar
	}
*/
package styles
