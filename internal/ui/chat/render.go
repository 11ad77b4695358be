// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/sasage-tui/internal/model"
	"github.com/jeranaias/sasage-tui/internal/ui/styles"
)

// FormatTime renders a message time as HH:MM in local time.
func FormatTime(t time.Time) string {
	return t.Local().Format("15:04")
}

// messageRenderer renders conversations for the message pane.
type messageRenderer struct {
	theme    *styles.Theme
	width    int
	markdown *glamour.TermRenderer
}

// newMessageRenderer creates a renderer for the given pane width. Markdown
// rendering is skipped if glamour cannot be initialised.
func newMessageRenderer(theme *styles.Theme, width int) *messageRenderer {
	r := &messageRenderer{theme: theme, width: width}
	if md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(theme.GlamourStyle()),
		glamour.WithWordWrap(r.bubbleWidth()-4),
	); err == nil {
		r.markdown = md
	}
	return r
}

// bubbleWidth is the maximum width of a message bubble.
func (r *messageRenderer) bubbleWidth() int {
	w := r.width * 4 / 5
	if w < 20 {
		w = r.width
	}
	if w < 10 {
		w = 10
	}
	return w
}

// Render renders all messages, oldest first.
func (r *messageRenderer) Render(messages []model.Message) string {
	blocks := make([]string, 0, len(messages))
	for _, msg := range messages {
		blocks = append(blocks, r.renderMessage(msg))
	}
	return strings.Join(blocks, "\n\n")
}

func (r *messageRenderer) renderMessage(msg model.Message) string {
	meta := r.theme.SenderLabel.Render(msg.Sender.DisplayName()) + " " +
		r.theme.MessageTime.Render(FormatTime(msg.Time()))

	if msg.IsUser() {
		body := r.theme.UserBubble.Render(wrap(msg.Content, r.bubbleWidth()-2))
		block := lipgloss.JoinVertical(lipgloss.Right, meta, body)
		return lipgloss.PlaceHorizontal(r.width, lipgloss.Right, block)
	}

	content := msg.Content
	if r.markdown != nil {
		if out, err := r.markdown.Render(content); err == nil {
			content = strings.Trim(out, "\n")
		}
	} else {
		content = wrap(content, r.bubbleWidth()-4)
	}
	body := r.theme.AssistantBubble.Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, meta, body)
}

// wrap word-wraps s to width cells, or returns s unchanged when it fits.
func wrap(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}
