// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/sasage-tui/internal/controller"
)

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// sendCmd performs the network call for p off the update loop. There is no
// cancellation; the transport timeout bounds the call.
func sendCmd(ctrl *controller.Controller, p controller.PendingSend) tea.Cmd {
	return func() tea.Msg {
		resp, err := ctrl.Send(context.Background(), p)
		return replyMsg{pending: p, resp: resp, err: err}
	}
}

// waitForHistoryChange blocks until the watcher reports a change.
func waitForHistoryChange(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return historyChangedMsg{}
	}
}

// copyCmd writes text to the system clipboard.
func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{err: clipboard.WriteAll(text)}
	}
}

// expireNoticeCmd clears the notice after d unless a newer one replaced it.
func expireNoticeCmd(seq int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}
