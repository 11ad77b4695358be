// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller holds the in-session chat state: the current
// conversation, the loading flag and the visible history. It mediates
// between the UI, the conversation store and the chat endpoint.
//
// A Controller is not safe for concurrent use. The TUI drives it from the
// Bubble Tea update loop only; the network call runs in a tea.Cmd between
// BeginSend and CompleteSend.
package controller

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/sasage-tui/internal/chatapi"
	"github.com/jeranaias/sasage-tui/internal/model"
	"github.com/jeranaias/sasage-tui/internal/storage"
)

// Canned assistant replies.
const (
	// FallbackReply is used when a successful response has no reply text.
	FallbackReply = "Xin lỗi, tôi không thể xử lý yêu cầu của bạn."

	// ErrorReply is shown when the send fails. It is never persisted.
	ErrorReply = "Xin lỗi, có lỗi xảy ra khi gửi tin nhắn. Vui lòng thử lại."
)

// Options configures a Controller.
type Options struct {
	// Now returns the current time. Default: time.Now
	Now func() time.Time
}

// Controller owns the current conversation and loading state.
type Controller struct {
	store  *storage.ConversationStore
	sender chatapi.Sender
	logger *zap.Logger
	now    func() time.Time

	current *model.Conversation
	loading bool
	history []model.Conversation
}

// PendingSend is a user message that has been appended locally and is
// waiting for the endpoint's reply.
type PendingSend struct {
	// Conversation is the conversation including the new user message.
	Conversation model.Conversation
	// Text is the message sent to the endpoint.
	Text string
}

// ConversationID returns the id the message is sent under.
func (p PendingSend) ConversationID() string {
	return p.Conversation.ConversationID
}

// New creates a controller and loads the stored history.
func New(store *storage.ConversationStore, sender chatapi.Sender, logger *zap.Logger, opts Options) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	c := &Controller{
		store:  store,
		sender: sender,
		logger: logger.Named("controller"),
		now:    now,
	}
	c.history = store.Load()
	return c
}

// =============================================================================
// STATE
// =============================================================================

// History returns the visible history, most recent first.
func (c *Controller) History() []model.Conversation {
	out := make([]model.Conversation, len(c.history))
	copy(out, c.history)
	return out
}

// Current returns the current conversation, if any.
func (c *Controller) Current() (model.Conversation, bool) {
	if c.current == nil {
		return model.Conversation{}, false
	}
	return c.current.Clone(), true
}

// CurrentID returns the current conversation id, or "".
func (c *Controller) CurrentID() string {
	if c.current == nil {
		return ""
	}
	return c.current.ConversationID
}

// IsLoading reports whether a send is in flight.
func (c *Controller) IsLoading() bool {
	return c.loading
}

// Reload refreshes the history from the store. The current conversation is
// left as is.
func (c *Controller) Reload() {
	c.history = c.store.Load()
}

// =============================================================================
// CONVERSATIONS
// =============================================================================

// StartNewConversation creates an empty conversation, stores it at the head
// of the history and makes it current.
func (c *Controller) StartNewConversation() model.Conversation {
	conv := model.NewConversation(c.now())
	c.history = c.store.Insert(conv)
	c.setCurrent(conv)
	c.logger.Debug("started conversation", zap.String("id", conv.ConversationID))
	return conv.Clone()
}

// SelectConversation makes conv current without touching storage.
func (c *Controller) SelectConversation(conv model.Conversation) {
	c.setCurrent(conv)
}

// SelectByID makes the history entry with id current.
func (c *Controller) SelectByID(id string) bool {
	i := model.IndexOf(c.history, id)
	if i < 0 {
		return false
	}
	c.setCurrent(c.history[i])
	return true
}

// DeleteConversation removes the conversation from storage. If it was
// current, there is no current conversation afterwards.
func (c *Controller) DeleteConversation(id string) {
	c.history = c.store.DeleteByID(id)
	if c.current != nil && c.current.ConversationID == id {
		c.current = nil
	}
	c.logger.Debug("deleted conversation", zap.String("id", id))
}

func (c *Controller) setCurrent(conv model.Conversation) {
	clone := conv.Clone()
	c.current = &clone
}

// =============================================================================
// SENDING
// =============================================================================

// BeginSend appends text as a user message to the current conversation and
// sets the loading flag. It reports false when nothing should be sent:
// blank text, or no current conversation. In the latter case a new
// conversation is started and the text is dropped.
func (c *Controller) BeginSend(text string) (PendingSend, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return PendingSend{}, false
	}
	if c.current == nil {
		c.StartNewConversation()
		return PendingSend{}, false
	}

	updated := c.current.Clone()
	updated.AppendUserMessage(text, c.now())
	c.current = &updated
	c.loading = true

	return PendingSend{Conversation: updated.Clone(), Text: text}, true
}

// CompleteSend records the outcome of a send started by BeginSend.
//
// On success the reply (or FallbackReply) is appended and the conversation
// is written through to the store. On failure ErrorReply is appended to the
// in-memory conversation only. The current conversation is replaced only if
// it is still the one the message was sent from.
func (c *Controller) CompleteSend(p PendingSend, resp *chatapi.ChatResponse, err error) model.Message {
	defer func() { c.loading = false }()

	final := p.Conversation.Clone()
	var reply model.Message

	if err != nil {
		c.logger.Warn("send failed",
			zap.String("conversation_id", p.ConversationID()),
			zap.Error(err))
		reply = model.NewAssistantMessage(ErrorReply, c.now())
		final.Append(reply)
	} else {
		text, ok := resp.Reply()
		if !ok {
			c.logger.Warn("response missing reply text", zap.String("conversation_id", p.ConversationID()))
			text = FallbackReply
		}
		reply = model.NewAssistantMessage(text, c.now())
		final.Append(reply)

		c.store.UpdateByID(final.ConversationID, final)
		c.history = c.store.Load()
	}

	if c.current != nil && c.current.ConversationID == final.ConversationID {
		c.current = &final
	}
	return reply
}

// SendMessage runs a whole send synchronously. It reports false when
// BeginSend declined to send. Failures never surface as errors; they end up
// as ErrorReply in the conversation.
func (c *Controller) SendMessage(ctx context.Context, text string) (model.Message, bool) {
	p, ok := c.BeginSend(text)
	if !ok {
		return model.Message{}, false
	}
	resp, err := c.Send(ctx, p)
	return c.CompleteSend(p, resp, err), true
}

// Send performs the network call for p. It touches no controller state and
// may run off the UI goroutine.
func (c *Controller) Send(ctx context.Context, p PendingSend) (*chatapi.ChatResponse, error) {
	return c.sender.Send(ctx, p.Text, p.ConversationID())
}
