// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.

// =============================================================================
// BRAND COLORS
// =============================================================================

// Primary - Brand blue: header, selection, user bubbles
var Primary = lipgloss.AdaptiveColor{Light: "#1976D2", Dark: "#42A5F5"}

// PrimaryLight - Version chip and hover backgrounds
var PrimaryLight = lipgloss.AdaptiveColor{Light: "#E3F2FD", Dark: "#1565C0"}

// PrimaryDark - Borders on focused elements
var PrimaryDark = lipgloss.AdaptiveColor{Light: "#1565C0", Dark: "#90CAF9"}

// Secondary - Neutral grey for secondary chrome
var Secondary = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#9E9E9E"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Success - Enabled feature chips
var Success = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#66BB6A"}

// Error - Failed sends, validation errors
var Error = lipgloss.AdaptiveColor{Light: "#D32F2F", Dark: "#EF5350"}

// Warning - Loading indicator
var Warning = lipgloss.AdaptiveColor{Light: "#EF6C00", Dark: "#FFA726"}

// Info - Hints and suggestions
var Info = lipgloss.AdaptiveColor{Light: "#0288D1", Dark: "#29B6F6"}

// =============================================================================
// SURFACE COLORS
// =============================================================================

// Surface - Main background
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E1E"}

// SurfaceSidebar - Sidebar background
var SurfaceSidebar = lipgloss.AdaptiveColor{Light: "#F8F9FA", Dark: "#181818"}

// SurfaceChat - Message pane background
var SurfaceChat = lipgloss.AdaptiveColor{Light: "#FAFAFA", Dark: "#202020"}

// Divider - Borders and separators
var Divider = lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#3A3A3A"}

// =============================================================================
// TEXT COLORS
// =============================================================================

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#E0E0E0"}

// TextSecondary - Labels, dates
var TextSecondary = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#A0A0A0"}

// TextMuted - Timestamps, placeholders
var TextMuted = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#6E6E6E"}

// TextInverse - Text on colored backgrounds
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#0D1B2A"}

// =============================================================================
// MESSAGE BUBBLE COLORS
// =============================================================================

// User message bubble - Brand blue
var UserBubbleBg = lipgloss.AdaptiveColor{Light: "#1976D2", Dark: "#1565C0"}
var UserBubbleFg = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#E3F2FD"}

// Assistant message bubble - Paper
var AssistantBubbleBorder = lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#424242"}
var AssistantBubbleFg = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#E0E0E0"}

// Selection highlight in the sidebar
var SelectionBg = lipgloss.AdaptiveColor{Light: "#E3F2FD", Dark: "#0D3A66"}

// =============================================================================
// STATUS INDICATORS
// =============================================================================

// StatusIndicatorSet contains ASCII indicators shown alongside colors.
type StatusIndicatorSet struct {
	Success string
	Error   string
	Info    string
	Pending string
}

// StatusIndicators provides shape indicators so state is readable without color.
var StatusIndicators = StatusIndicatorSet{
	Success: "[OK]",
	Error:   "[X]",
	Info:    "[i]",
	Pending: "[ ]",
}

// RenderSuccess renders a success line for CLI output.
func RenderSuccess(message string) string {
	return lipgloss.NewStyle().Foreground(Success).Bold(true).
		Render(StatusIndicators.Success + " " + message)
}

// RenderError renders an error line for CLI output.
func RenderError(message string) string {
	return lipgloss.NewStyle().Foreground(Error).Bold(true).
		Render(StatusIndicators.Error + " " + message)
}

// RenderInfo renders an info line for CLI output.
func RenderInfo(message string) string {
	return lipgloss.NewStyle().Foreground(Info).
		Render(StatusIndicators.Info + " " + message)
}
