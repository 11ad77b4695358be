// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.UnixMilli(1718000000000)

// =============================================================================
// ID TESTS
// =============================================================================

func TestNewConversationID_Format(t *testing.T) {
	id := NewConversationID(fixedNow)

	pattern := regexp.MustCompile(`^conversation_1718000000000_[0-9a-z]{9}$`)
	if !pattern.MatchString(id) {
		t.Errorf("ID %q does not match %s", id, pattern)
	}
}

func TestNewConversationID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewConversationID(fixedNow)
		if seen[id] {
			t.Fatalf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

// =============================================================================
// TITLE TESTS
// =============================================================================

func TestDeriveTitle(t *testing.T) {
	thirty := strings.Repeat("a", 30)
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"short", "Hello", "Hello"},
		{"exactly 30", thirty, thirty},
		{"31 chars", thirty + "b", thirty + "..."},
		{"long vietnamese", "Làm thế nào để tối ưu hóa hiệu suất website?", "Làm thế nào để tối ưu hóa hiệu..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveTitle(tt.input); got != tt.want {
				t.Errorf("DeriveTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDeriveTitle_DecomposedDiacritics(t *testing.T) {
	// "ệ" written as e + combining dot below + combining circumflex
	decomposed := strings.Repeat("a", 29) + "e\u0323\u0302" + "xyz"
	got := DeriveTitle(decomposed)

	want := strings.Repeat("a", 29) + "\u1ec7" + "..."
	if got != want {
		t.Errorf("DeriveTitle = %q, want %q", got, want)
	}
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestNewConversation(t *testing.T) {
	conv := NewConversation(fixedNow)

	require.Equal(t, PlaceholderTitle, conv.Title)
	require.Equal(t, fixedNow.UnixMilli(), conv.Timestamp)
	require.NotNil(t, conv.Messages)
	require.Empty(t, conv.Messages)
	require.True(t, strings.HasPrefix(conv.ConversationID, "conversation_"))
}

func TestAppendUserMessage_TitleDerivedOnce(t *testing.T) {
	conv := NewConversation(fixedNow)

	conv.AppendUserMessage("Hello", fixedNow)
	require.Equal(t, "Hello", conv.Title)

	conv.AppendAssistantMessage("Hi there", fixedNow)
	conv.AppendUserMessage("A much longer follow-up that must not rename the chat", fixedNow)
	require.Equal(t, "Hello", conv.Title)
	require.Len(t, conv.Messages, 3)
	require.Equal(t, SenderUser, conv.Messages[0].Sender)
	require.Equal(t, SenderAssistant, conv.Messages[1].Sender)
}

func TestAppendUserMessage_KeepsExistingTitle(t *testing.T) {
	conv := NewConversation(fixedNow)
	conv.Title = "Công thức phở"

	conv.AppendUserMessage("Công thức phở?", fixedNow)

	require.Equal(t, "Công thức phở", conv.Title)
	require.Len(t, conv.Messages, 1)
}

func TestAppend_DoesNotMutateSharedSnapshot(t *testing.T) {
	conv := NewConversation(fixedNow)
	conv.AppendUserMessage("one", fixedNow)

	snapshot := conv // shares the Messages backing array
	conv.AppendAssistantMessage("two", fixedNow)

	require.Len(t, snapshot.Messages, 1)
	require.Len(t, conv.Messages, 2)
}

func TestLastAssistantMessage(t *testing.T) {
	conv := NewConversation(fixedNow)
	if _, ok := conv.LastAssistantMessage(); ok {
		t.Fatal("expected no assistant message in empty conversation")
	}

	conv.AppendUserMessage("q", fixedNow)
	conv.AppendAssistantMessage("a1", fixedNow)
	conv.AppendUserMessage("q2", fixedNow)

	msg, ok := conv.LastAssistantMessage()
	require.True(t, ok)
	require.Equal(t, "a1", msg.Content)
}

func TestConversation_MarshalJSON(t *testing.T) {
	conv := Conversation{ConversationID: "c1", Title: "t", Timestamp: 5}

	data, err := json.Marshal(conv)
	require.NoError(t, err)
	require.JSONEq(t, `{"conversationId":"c1","title":"t","timestamp":5,"messages":[]}`, string(data))
}

func TestConversation_DecodesBrowserBlob(t *testing.T) {
	blob := `[{"conversationId":"conversation_1_abc","title":"Hello","timestamp":1,
		"messages":[{"content":"Hello","sender":"user","timestamp":2},
		{"content":"Hi","sender":"assistant","timestamp":3}]}]`

	var convs []Conversation
	require.NoError(t, json.Unmarshal([]byte(blob), &convs))
	require.Len(t, convs, 1)
	require.Equal(t, "conversation_1_abc", convs[0].ConversationID)
	require.Equal(t, SenderAssistant, convs[0].Messages[1].Sender)
	require.Equal(t, int64(3), convs[0].Messages[1].Timestamp)
}

func TestClone_IsDeep(t *testing.T) {
	conv := NewConversation(fixedNow)
	conv.AppendUserMessage("hello", fixedNow)

	clone := conv.Clone()
	clone.Messages[0].Content = "changed"

	require.Equal(t, "hello", conv.Messages[0].Content)
}

func TestIndexOf(t *testing.T) {
	convs := []Conversation{{ConversationID: "a"}, {ConversationID: "b"}}
	require.Equal(t, 1, IndexOf(convs, "b"))
	require.Equal(t, -1, IndexOf(convs, "missing"))
}

func TestPreview(t *testing.T) {
	conv := NewConversation(fixedNow)
	require.Equal(t, "", conv.Preview(10))

	conv.AppendUserMessage("line one\nline two", fixedNow)
	require.Equal(t, "line one l...", conv.Preview(10))
}
