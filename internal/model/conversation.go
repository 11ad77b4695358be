// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"crypto/rand"
	"encoding/json"
	"strconv"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/sasage-tui/internal/util"
)

const (
	// PlaceholderTitle is shown until the first user message names the chat.
	PlaceholderTitle = "Chat mới"

	// TitleMaxRunes is the longest title kept before truncation.
	TitleMaxRunes = 30

	// idPrefix starts every generated conversation ID.
	idPrefix = "conversation_"

	// idSuffixLen is the number of random base36 characters in an ID.
	idSuffixLen = 9
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is one chat thread. The JSON layout matches the history blob
// written by the browser client, so existing histories load unchanged.
type Conversation struct {
	ConversationID string    `json:"conversationId"`
	Title          string    `json:"title"`
	Timestamp      int64     `json:"timestamp"` // creation, epoch milliseconds
	Messages       []Message `json:"messages"`
}

// NewConversation creates an empty conversation with a fresh ID and the
// placeholder title.
func NewConversation(now time.Time) Conversation {
	return Conversation{
		ConversationID: NewConversationID(now),
		Title:          PlaceholderTitle,
		Timestamp:      now.UnixMilli(),
		Messages:       []Message{},
	}
}

// NewConversationID combines the creation time with a random suffix, e.g.
// "conversation_1718000000000_k3j9x0a1b".
func NewConversationID(now time.Time) string {
	buf := make([]byte, idSuffixLen)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; fall back to the clock
		for i := range buf {
			buf[i] = byte(now.UnixNano() >> (i * 7))
		}
	}
	suffix := make([]byte, idSuffixLen)
	for i, b := range buf {
		suffix[i] = base36[int(b)%len(base36)]
	}
	return idPrefix + strconv.FormatInt(now.UnixMilli(), 10) + "_" + string(suffix)
}

// DeriveTitle turns the first user message into a conversation title: the
// message itself when it fits in TitleMaxRunes characters, otherwise the first
// TitleMaxRunes characters followed by an ellipsis. Text is NFC-normalized
// before counting so decomposed diacritics are never split.
func DeriveTitle(text string) string {
	normalized := norm.NFC.String(text)
	if utf8.RuneCountInString(normalized) <= TitleMaxRunes {
		return text
	}
	return util.TruncateRunes(normalized, TitleMaxRunes)
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Append adds msg to the end of the conversation. The three-index slice forces
// a fresh backing array so copies held elsewhere (history snapshots) are
// never mutated through a shared array.
func (c *Conversation) Append(msg Message) {
	c.Messages = append(c.Messages[:len(c.Messages):len(c.Messages)], msg)
}

// AppendUserMessage appends a user message and, when it is the first message
// of a conversation still carrying the placeholder title, derives the title
// from it.
func (c *Conversation) AppendUserMessage(content string, now time.Time) Message {
	first := len(c.Messages) == 0
	msg := NewUserMessage(content, now)
	c.Append(msg)
	if first && c.Title == PlaceholderTitle {
		c.Title = DeriveTitle(content)
	}
	return msg
}

// AppendAssistantMessage appends an assistant message.
func (c *Conversation) AppendAssistantMessage(content string, now time.Time) Message {
	msg := NewAssistantMessage(content, now)
	c.Append(msg)
	return msg
}

// LastMessage returns the most recent message and false when empty.
func (c *Conversation) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// LastAssistantMessage returns the most recent assistant message.
func (c *Conversation) LastAssistantMessage() (Message, bool) {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Sender == SenderAssistant {
			return c.Messages[i], true
		}
	}
	return Message{}, false
}

// IsEmpty reports whether no message has been sent yet.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// DisplayTitle returns the title, or the placeholder for records saved with
// an empty title.
func (c *Conversation) DisplayTitle() string {
	if c.Title == "" {
		return PlaceholderTitle
	}
	return c.Title
}

// CreatedAt returns the creation time.
func (c *Conversation) CreatedAt() time.Time {
	return time.UnixMilli(c.Timestamp)
}

// Preview returns a one-line preview of the first user message.
func (c *Conversation) Preview(maxRunes int) string {
	for _, msg := range c.Messages {
		if msg.IsUser() && msg.Content != "" {
			return util.TruncateRunes(util.SingleLine(msg.Content), maxRunes)
		}
	}
	return ""
}

// Clone returns a deep copy.
func (c Conversation) Clone() Conversation {
	clone := c
	clone.Messages = make([]Message, len(c.Messages))
	copy(clone.Messages, c.Messages)
	return clone
}

// =============================================================================
// SERIALIZATION
// =============================================================================

// MarshalJSON always writes "messages" as an array, never null.
func (c Conversation) MarshalJSON() ([]byte, error) {
	type alias Conversation
	a := alias(c)
	if a.Messages == nil {
		a.Messages = []Message{}
	}
	return json.Marshal(a)
}

// IndexOf returns the position of the conversation with id, or -1.
func IndexOf(convs []Conversation, id string) int {
	for i := range convs {
		if convs[i].ConversationID == id {
			return i
		}
	}
	return -1
}
