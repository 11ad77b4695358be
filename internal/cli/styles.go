// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/sasage-tui/internal/ui/styles"
)

// ApplyColorProfile sets the lipgloss profile from ColorsEnabled. Call it
// after flags that change color handling have been parsed.
func ApplyColorProfile() {
	lipgloss.SetColorProfile(GetColorProfile())
}

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	// TitleStyle is used for command titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Primary)

	// SectionStyle is used for section headers within commands.
	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.TextPrimary).
			MarginTop(1)

	// LabelStyle is used for field labels.
	LabelStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary).
			Width(14)

	// ValueStyle is used for field values.
	ValueStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimary)

	// UserStyle labels the user's lines in transcripts.
	UserStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Primary)

	// AssistantStyle labels the assistant's lines in transcripts.
	AssistantStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Success)

	// PromptStyle is the REPL prompt.
	PromptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Primary)

	SuccessStyle = lipgloss.NewStyle().Foreground(styles.Success)
	ErrorStyle   = lipgloss.NewStyle().Foreground(styles.Error).Bold(true)
	DimStyle     = lipgloss.NewStyle().Foreground(styles.TextMuted)

	SeparatorStyle = lipgloss.NewStyle().Foreground(styles.Divider)
)

// RenderSeparator returns a horizontal rule, 40 cells unless width is given.
func RenderSeparator(width ...int) string {
	w := 40
	if len(width) > 0 && width[0] > 0 {
		w = width[0]
	}
	return SeparatorStyle.Render(strings.Repeat("-", w))
}

// RenderLabel renders a "label: value" row.
func RenderLabel(label, value string) string {
	return LabelStyle.Render(label+":") + " " + ValueStyle.Render(value)
}
