// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header       lipgloss.Style
	HeaderTitle  lipgloss.Style
	VersionChip  lipgloss.Style
	CompanyLabel lipgloss.Style

	// ==========================================================================
	// SIDEBAR STYLES
	// ==========================================================================

	Sidebar         lipgloss.Style
	SidebarFocused  lipgloss.Style
	SidebarTitle    lipgloss.Style
	SidebarEmpty    lipgloss.Style
	NewChatButton   lipgloss.Style
	ItemTitle       lipgloss.Style
	ItemTitleActive lipgloss.Style
	ItemDate        lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	MessageTime     lipgloss.Style
	SenderLabel     lipgloss.Style
	Thinking        lipgloss.Style

	// ==========================================================================
	// WELCOME / SUGGESTION STYLES
	// ==========================================================================

	WelcomeTitle       lipgloss.Style
	WelcomeSubtitle    lipgloss.Style
	SuggestionTitle    lipgloss.Style
	Suggestion         lipgloss.Style
	SuggestionSelected lipgloss.Style
	HelperText         lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer        lipgloss.Style
	InputContainerFocused lipgloss.Style
	FeatureChip           lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	Notice       lipgloss.Style
}

// NewTheme creates a theme. mode is "auto", "dark" or "light"; auto asks the
// terminal.
func NewTheme(mode string) *Theme {
	colorProfile := termenv.ColorProfile()

	var isDark bool
	switch mode {
	case "dark":
		isDark = true
		lipgloss.SetHasDarkBackground(true)
	case "light":
		isDark = false
		lipgloss.SetHasDarkBackground(false)
	default:
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// Header
	t.Header = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Divider).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.VersionChip = lipgloss.NewStyle().
		Foreground(Primary).
		Background(PrimaryLight).
		Padding(0, 1).
		MarginLeft(1)

	t.CompanyLabel = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Divider).
		Padding(0, 1)

	t.SidebarFocused = t.Sidebar.
		BorderForeground(Primary)

	t.SidebarTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary).
		MarginBottom(1)

	t.SidebarEmpty = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.NewChatButton = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	t.ItemTitle = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.ItemTitleActive = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	t.ItemDate = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Messages
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		Background(UserBubbleBg).
		Padding(0, 1)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1)

	t.MessageTime = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.SenderLabel = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	t.Thinking = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Welcome and suggestions
	t.WelcomeTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	t.WelcomeSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.SuggestionTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary).
		MarginTop(1)

	t.Suggestion = lipgloss.NewStyle().
		Foreground(TextPrimary).
		PaddingLeft(2)

	t.SuggestionSelected = lipgloss.NewStyle().
		Foreground(Primary).
		Background(SelectionBg).
		PaddingLeft(1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Primary)

	t.HelperText = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		MarginTop(1)

	// Input
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Divider).
		Padding(0, 1)

	t.InputContainerFocused = t.InputContainer.
		BorderForeground(Primary)

	t.FeatureChip = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceSidebar).
		Padding(0, 1).
		MarginRight(1)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Notice = lipgloss.NewStyle().
		Foreground(Warning)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// GlamourStyle returns the glamour standard style matching the theme.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns, sidebar hidden
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
