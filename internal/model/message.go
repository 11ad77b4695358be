// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// String returns the wire representation of the sender.
func (s Sender) String() string {
	return string(s)
}

// DisplayName returns the label shown above a message bubble.
func (s Sender) DisplayName() string {
	switch s {
	case SenderUser:
		return "Bạn"
	case SenderAssistant:
		return "Trợ lý"
	default:
		return string(s)
	}
}

// Valid reports whether s is one of the known senders.
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderAssistant
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is one turn in a conversation. Messages are values and are never
// edited after they are appended.
type Message struct {
	Content   string `json:"content"`
	Sender    Sender `json:"sender"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds
}

// NewMessage creates a message stamped with now.
func NewMessage(sender Sender, content string, now time.Time) Message {
	return Message{
		Content:   content,
		Sender:    sender,
		Timestamp: now.UnixMilli(),
	}
}

// NewUserMessage creates a user message stamped with now.
func NewUserMessage(content string, now time.Time) Message {
	return NewMessage(SenderUser, content, now)
}

// NewAssistantMessage creates an assistant message stamped with now.
func NewAssistantMessage(content string, now time.Time) Message {
	return NewMessage(SenderAssistant, content, now)
}

// Time returns the message timestamp as a local time.Time.
func (m Message) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// IsUser reports whether the user authored the message.
func (m Message) IsUser() bool {
	return m.Sender == SenderUser
}
