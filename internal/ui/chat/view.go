// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/sasage-tui/internal/util"
)

// View renders the whole screen.
func (m Model) View() string {
	if !m.ready {
		return "Đang khởi động..."
	}

	l := m.layout()
	main := m.renderMain(l)
	if l.sidebarWidth > 0 {
		main = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(l), main)
	}
	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader(width int) string {
	left := m.theme.HeaderTitle.Render(m.cfg.DisplayName()) +
		m.theme.VersionChip.Render(m.cfg.App.Version)
	right := m.theme.CompanyLabel.Render(m.cfg.App.Company)

	inner := width - 2
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	line := left
	if gap >= 1 {
		line = left + strings.Repeat(" ", gap) + right
	}
	return m.theme.Header.Width(width).MaxHeight(headerHeight).Render(line)
}

// =============================================================================
// SIDEBAR
// =============================================================================

func (m Model) renderSidebar(l layout) string {
	var body string
	if len(m.list.Items()) == 0 {
		body = m.theme.SidebarEmpty.Render(historyEmpty)
	} else {
		body = m.list.View()
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.NewChatButton.Render(newChatLabel),
		"",
		m.theme.SidebarTitle.Render(historyTitle),
		body,
	)

	style := m.theme.Sidebar
	if m.focus == focusSidebar {
		style = m.theme.SidebarFocused
	}
	return style.
		Width(l.sidebarWidth - 1).
		Height(l.sidebarHeight).
		MaxHeight(l.sidebarHeight).
		Render(content)
}

// =============================================================================
// MAIN PANE
// =============================================================================

func (m Model) renderMain(l layout) string {
	var body string
	if m.showSuggestions() {
		body = m.renderWelcome(l.paneWidth, l.bodyHeight)
	} else {
		body = m.viewport.View()
	}

	thinking := ""
	if m.ctrl.IsLoading() {
		thinking = m.spinner.View() + " " + m.theme.Thinking.Render(thinkingLabel)
	}

	inputStyle := m.theme.InputContainer
	if m.focus == focusInput {
		inputStyle = m.theme.InputContainerFocused
	}
	input := inputStyle.Width(l.paneWidth - 2).Render(m.input.View())

	parts := []string{
		m.renderHeader(l.paneWidth),
		body,
		lipgloss.NewStyle().Width(l.paneWidth).Render(thinking),
		input,
	}
	if chips := m.renderFeatureChips(l.paneWidth); chips != "" {
		parts = append(parts, chips)
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderWelcome renders the greeting and suggested questions shown in an
// empty conversation.
func (m Model) renderWelcome(width, height int) string {
	lines := []string{
		m.theme.WelcomeTitle.Render(welcomeTitle),
		m.theme.WelcomeSubtitle.Render(fmt.Sprintf("%s cho %s", m.cfg.App.Name, m.cfg.App.Company)),
		m.theme.SuggestionTitle.Render(suggestionsTitle),
	}
	for i, q := range SuggestedQuestions {
		q = util.TruncateWidth(q, width-4)
		if i == m.suggestion && m.focus == focusInput {
			lines = append(lines, m.theme.SuggestionSelected.Render(q))
		} else {
			lines = append(lines, m.theme.Suggestion.Render(q))
		}
	}
	lines = append(lines, m.theme.HelperText.Render(suggestionsHint))

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		MaxHeight(height).
		PaddingLeft(1).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) renderFeatureChips(width int) string {
	var chips []string
	for _, f := range featureLabels {
		if m.cfg.Features.Enabled(f.flag) {
			chips = append(chips, m.theme.FeatureChip.Render(f.label))
		}
	}
	if len(chips) == 0 {
		return ""
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(strings.Join(chips, ""))
}

// =============================================================================
// STATUS BAR
// =============================================================================

func (m Model) renderStatusBar() string {
	style := m.theme.StatusBar.MaxWidth(m.width)
	if m.notice != "" {
		return style.Render(m.theme.Notice.Render(m.notice))
	}

	bindings := m.keys.ShortHelp()
	if m.focus == focusSidebar {
		bindings = m.keys.SidebarHelp()
	}
	return style.Render(renderBindings(m, bindings))
}

func renderBindings(m Model, bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}
