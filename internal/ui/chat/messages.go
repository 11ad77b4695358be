// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/sasage-tui/internal/chatapi"
	"github.com/jeranaias/sasage-tui/internal/controller"
)

// replyMsg carries the outcome of a send back to the update loop.
type replyMsg struct {
	pending controller.PendingSend
	resp    *chatapi.ChatResponse
	err     error
}

// historyChangedMsg signals that another process rewrote the history.
type historyChangedMsg struct{}

// copiedMsg reports the result of a clipboard write.
type copiedMsg struct {
	err error
}

// noticeExpiredMsg clears the status notice with the given sequence number.
type noticeExpiredMsg struct {
	seq int
}
