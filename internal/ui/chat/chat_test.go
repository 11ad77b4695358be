// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/sasage-tui/internal/chatapi"
	"github.com/jeranaias/sasage-tui/internal/config"
	"github.com/jeranaias/sasage-tui/internal/controller"
	"github.com/jeranaias/sasage-tui/internal/storage"
	"github.com/jeranaias/sasage-tui/internal/ui/styles"
)

type stubSender struct {
	reply string
	err   error
	calls int
}

func (s *stubSender) Send(ctx context.Context, message, conversationID string) (*chatapi.ChatResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &chatapi.ChatResponse{Response: s.reply}, nil
}

func clock() func() time.Time {
	t := time.UnixMilli(1718000000000)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Environment = config.EnvDevelopment
	cfg.UI.Theme = "dark"
	return cfg
}

func newTestModel(t *testing.T, store *storage.ConversationStore, sender chatapi.Sender, width, height int) Model {
	t.Helper()
	now := clock()
	ctrl := controller.New(store, sender, nil, controller.Options{Now: now})
	m := New(Options{
		Controller: ctrl,
		Config:     testConfig(),
		Theme:      styles.NewTheme("dark"),
		Now:        now,
	})
	m, _ = update(m, tea.WindowSizeMsg{Width: width, Height: height})
	return m
}

func memoryStore() *storage.ConversationStore {
	return storage.NewConversationStore(storage.NewMemoryBackend(), "", nil)
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func typeText(m Model, text string) Model {
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

func press(m Model, k tea.KeyType) (Model, tea.Cmd) {
	return update(m, tea.KeyMsg{Type: k})
}

// findReply runs cmd, expanding batches, until it yields a replyMsg.
func findReply(t *testing.T, cmd tea.Cmd) replyMsg {
	t.Helper()
	require.NotNil(t, cmd)
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case replyMsg:
			return msg
		}
	}
	t.Fatal("command produced no reply")
	return replyMsg{}
}

// =============================================================================
// FORMATTING
// =============================================================================

func TestFormatRelativeDate(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		ts   time.Time
		want string
	}{
		{"same instant", now, "Hôm nay"},
		{"an hour ago", now.Add(-time.Hour), "Hôm nay"},
		{"previous evening within a day", now.Add(-13 * time.Hour), "Hôm nay"},
		{"exactly one day", now.Add(-24 * time.Hour), "Hôm nay"},
		{"just over a day", now.Add(-25 * time.Hour), "Hôm qua"},
		{"two days", now.Add(-49 * time.Hour), "2 ngày trước"},
		{"seven days", now.Add(-7 * 24 * time.Hour), "6 ngày trước"},
		{"older", now.Add(-8 * 24 * time.Hour), "2/6/2024"},
		{"month not padded", now.Add(-30 * 24 * time.Hour), "11/5/2024"},
		{"future", now.Add(time.Hour), "Hôm nay"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatRelativeDate(tt.ts, now); got != tt.want {
				t.Errorf("FormatRelativeDate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWaitForHistoryChange(t *testing.T) {
	if waitForHistoryChange(nil) != nil {
		t.Fatal("nil channel should yield no command")
	}

	changes := make(chan struct{}, 1)
	changes <- struct{}{}
	if _, ok := waitForHistoryChange(changes)().(historyChangedMsg); !ok {
		t.Fatal("expected historyChangedMsg")
	}

	close(changes)
	if msg := waitForHistoryChange(changes)(); msg != nil {
		t.Fatalf("closed channel should end the wait, got %T", msg)
	}
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2024, 1, 1, 9, 5, 30, 0, time.Local)
	if got := FormatTime(ts); got != "09:05" {
		t.Errorf("FormatTime() = %q, want 09:05", got)
	}
}

// =============================================================================
// SENDING
// =============================================================================

func TestSubmitWithoutConversationStartsOne(t *testing.T) {
	sender := &stubSender{reply: "unused"}
	m := newTestModel(t, memoryStore(), sender, 120, 40)

	m = typeText(m, "Hello")
	m, _ = press(m, tea.KeyEnter)

	require.Len(t, m.ctrl.History(), 1)
	require.False(t, m.ctrl.IsLoading())
	require.Zero(t, sender.calls)
	require.Empty(t, m.Input())
	require.Equal(t, noticeNewChat, m.Notice())
}

func TestSubmitSendsAndCompletes(t *testing.T) {
	store := memoryStore()
	sender := &stubSender{reply: "Hi there"}
	m := newTestModel(t, store, sender, 120, 40)

	m, _ = press(m, tea.KeyCtrlN)
	m = typeText(m, "Hello")
	m, cmd := press(m, tea.KeyEnter)

	require.True(t, m.ctrl.IsLoading())
	require.Empty(t, m.Input())
	require.Contains(t, m.View(), thinkingLabel)

	reply := findReply(t, cmd)
	require.NoError(t, reply.err)
	require.Equal(t, 1, sender.calls)

	m, _ = update(m, reply)
	require.False(t, m.ctrl.IsLoading())

	current, ok := m.ctrl.Current()
	require.True(t, ok)
	require.Len(t, current.Messages, 2)
	require.Equal(t, "Hello", current.Messages[0].Content)
	require.Equal(t, "Hi there", current.Messages[1].Content)
	require.Equal(t, "Hello", current.Title)

	stored := store.Load()
	require.Len(t, stored, 1)
	require.Len(t, stored[0].Messages, 2)

	view := m.View()
	require.Contains(t, view, "Hello")
	require.NotContains(t, view, welcomeTitle)
}

func TestSubmitFailureShowsApology(t *testing.T) {
	store := memoryStore()
	sender := &stubSender{err: errors.New("connection refused")}
	m := newTestModel(t, store, sender, 120, 40)

	m, _ = press(m, tea.KeyCtrlN)
	m = typeText(m, "Hello")
	m, cmd := press(m, tea.KeyEnter)
	m, _ = update(m, findReply(t, cmd))

	current, _ := m.ctrl.Current()
	require.Len(t, current.Messages, 2)
	require.Equal(t, controller.ErrorReply, current.Messages[1].Content)

	// Nothing but the empty conversation reached storage
	stored := store.Load()
	require.Len(t, stored, 1)
	require.Empty(t, stored[0].Messages)
}

func TestSubmitDisabledWhileLoading(t *testing.T) {
	m := newTestModel(t, memoryStore(), &stubSender{reply: "ok"}, 120, 40)

	m, _ = press(m, tea.KeyCtrlN)
	m = typeText(m, "first")
	m, _ = press(m, tea.KeyEnter)
	require.True(t, m.ctrl.IsLoading())

	m = typeText(m, "second")
	m, cmd := press(m, tea.KeyEnter)
	require.Nil(t, cmd)
	require.Equal(t, "second", m.Input())
}

func TestBlankInputIgnored(t *testing.T) {
	sender := &stubSender{reply: "ok"}
	m := newTestModel(t, memoryStore(), sender, 120, 40)
	m.cfg.UI.ShowSuggestions = false

	m, _ = press(m, tea.KeyCtrlN)
	m = typeText(m, "   ")
	m, cmd := press(m, tea.KeyEnter)

	require.Nil(t, cmd)
	require.False(t, m.ctrl.IsLoading())
	require.Zero(t, sender.calls)
}

// =============================================================================
// SUGGESTIONS
// =============================================================================

func TestSuggestionFillsInput(t *testing.T) {
	m := newTestModel(t, memoryStore(), &stubSender{}, 120, 40)

	m, _ = press(m, tea.KeyCtrlN)
	m, _ = press(m, tea.KeyDown)
	m, _ = press(m, tea.KeyDown)
	m, _ = press(m, tea.KeyUp)
	m, _ = press(m, tea.KeyEnter)

	require.Equal(t, SuggestedQuestions[1], m.Input())
	require.False(t, m.ctrl.IsLoading())
}

func TestViewShowsHeaderAndWelcome(t *testing.T) {
	m := newTestModel(t, memoryStore(), &stubSender{}, 120, 40)

	view := m.View()
	for _, want := range []string{
		"Sasage Agent (Dev)",
		"2.5 Pro",
		"Caster Company",
		welcomeTitle,
		"Sasage Agent cho Caster Company",
		SuggestedQuestions[0],
		historyTitle,
		historyEmpty,
	} {
		require.Contains(t, view, want)
	}
}

// =============================================================================
// SIDEBAR
// =============================================================================

func TestSidebarSelectAndDelete(t *testing.T) {
	store := memoryStore()
	m := newTestModel(t, store, &stubSender{}, 120, 40)

	m, _ = press(m, tea.KeyCtrlN)
	older, _ := m.ctrl.Current()
	m, _ = press(m, tea.KeyCtrlN)
	newer, _ := m.ctrl.Current()
	require.Len(t, m.ctrl.History(), 2)

	m, _ = press(m, tea.KeyTab)
	require.Equal(t, focusSidebar, m.focus)

	m, _ = press(m, tea.KeyDown)
	m, _ = press(m, tea.KeyEnter)
	require.Equal(t, focusInput, m.focus)
	require.Equal(t, older.ConversationID, m.ctrl.CurrentID())

	m, _ = press(m, tea.KeyTab)
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})

	history := m.ctrl.History()
	require.Len(t, history, 1)
	require.Equal(t, newer.ConversationID, history[0].ConversationID)
	require.Empty(t, m.ctrl.CurrentID())
	require.Equal(t, noticeDeleted, m.Notice())
	require.Len(t, store.Load(), 1)
}

func TestEscReturnsToInput(t *testing.T) {
	m := newTestModel(t, memoryStore(), &stubSender{}, 120, 40)

	m, _ = press(m, tea.KeyTab)
	require.Equal(t, focusSidebar, m.focus)
	m, _ = press(m, tea.KeyEsc)
	require.Equal(t, focusInput, m.focus)
}

func TestSidebarHiddenWhenNarrowOrToggled(t *testing.T) {
	narrow := newTestModel(t, memoryStore(), &stubSender{}, 50, 30)
	require.NotContains(t, narrow.View(), historyTitle)

	// Tab has nowhere to go without a sidebar
	narrow, _ = press(narrow, tea.KeyTab)
	require.Equal(t, focusInput, narrow.focus)

	wide := newTestModel(t, memoryStore(), &stubSender{}, 120, 40)
	require.Contains(t, wide.View(), historyTitle)
	wide, _ = press(wide, tea.KeyCtrlB)
	require.NotContains(t, wide.View(), historyTitle)
}

func TestHistoryChangedReloads(t *testing.T) {
	store := memoryStore()
	m := newTestModel(t, store, &stubSender{}, 120, 40)

	other := controller.New(store, &stubSender{}, nil, controller.Options{})
	other.StartNewConversation()

	m, cmd := update(m, historyChangedMsg{})
	require.NotNil(t, cmd)
	require.Len(t, m.ctrl.History(), 1)
	require.Equal(t, noticeReloaded, m.Notice())
	require.False(t, strings.Contains(m.View(), historyEmpty))
}

func TestCopyWithoutReply(t *testing.T) {
	m := newTestModel(t, memoryStore(), &stubSender{}, 120, 40)

	m, _ = press(m, tea.KeyCtrlY)
	require.Equal(t, noticeNothing, m.Notice())
}

func TestNoticeExpires(t *testing.T) {
	m := newTestModel(t, memoryStore(), &stubSender{}, 120, 40)
	m, _ = press(m, tea.KeyCtrlY)
	seq := m.noticeSeq

	// A stale expiry leaves a newer notice in place
	m, _ = update(m, noticeExpiredMsg{seq: seq - 1})
	require.NotEmpty(t, m.Notice())

	m, _ = update(m, noticeExpiredMsg{seq: seq})
	require.Empty(t, m.Notice())
}
