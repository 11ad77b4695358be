// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"

	"github.com/jeranaias/sasage-tui/internal/model"
	"github.com/jeranaias/sasage-tui/internal/ui/styles"
	"github.com/jeranaias/sasage-tui/internal/util"
)

// =============================================================================
// CONVERSATION LIST ITEMS
// =============================================================================

// conversationItem adapts a conversation for the sidebar list.
type conversationItem struct {
	conv    model.Conversation
	current bool
	now     time.Time
}

func (i conversationItem) Title() string {
	title := util.SingleLine(i.conv.DisplayTitle())
	if i.current {
		return "● " + title
	}
	return title
}

func (i conversationItem) Description() string {
	return FormatRelativeDate(i.conv.CreatedAt(), i.now)
}

func (i conversationItem) FilterValue() string {
	return i.conv.DisplayTitle()
}

// conversationItems builds list items for the history, marking currentID.
func conversationItems(history []model.Conversation, currentID string, now time.Time) []list.Item {
	items := make([]list.Item, len(history))
	for i, c := range history {
		items[i] = conversationItem{conv: c, current: c.ConversationID == currentID, now: now}
	}
	return items
}

// newConversationList creates the sidebar list with the theme applied.
func newConversationList(theme *styles.Theme, width, height int) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.Foreground(styles.TextPrimary)
	delegate.Styles.NormalDesc = delegate.Styles.NormalDesc.Foreground(styles.TextMuted)
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(styles.Primary).
		BorderForeground(styles.Primary)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(styles.TextSecondary).
		BorderForeground(styles.Primary)

	l := list.New(nil, delegate, width, height)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()
	l.Styles.NoItems = theme.SidebarEmpty
	l.SetStatusBarItemName("cuộc trò chuyện", "cuộc trò chuyện")
	return l
}

// =============================================================================
// DATE FORMATTING
// =============================================================================

// FormatRelativeDate labels ts by the elapsed time to now in whole days,
// rounded up: "Hôm nay" within 24 hours, "Hôm qua" within 48, "N ngày trước"
// within a week, otherwise the date as d/m/yyyy without zero padding.
func FormatRelativeDate(ts, now time.Time) string {
	diff := now.Sub(ts)
	if diff < 0 {
		diff = -diff
	}
	const day = 24 * time.Hour
	days := int((diff + day - 1) / day)

	switch {
	case days <= 1:
		return "Hôm nay"
	case days == 2:
		return "Hôm qua"
	case days <= 7:
		return fmt.Sprintf("%d ngày trước", days-1)
	default:
		return ts.Format("2/1/2006")
	}
}
