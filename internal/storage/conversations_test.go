// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/sasage-tui/internal/config"
	"github.com/jeranaias/sasage-tui/internal/model"
)

var baseTime = time.UnixMilli(1718000000000)

func newConv(id string, msgs ...string) model.Conversation {
	c := model.Conversation{
		ConversationID: id,
		Title:          model.PlaceholderTitle,
		Timestamp:      baseTime.UnixMilli(),
		Messages:       []model.Message{},
	}
	for i, m := range msgs {
		c.AppendUserMessage(m, baseTime.Add(time.Duration(i)*time.Second))
	}
	return c
}

func ids(convs []model.Conversation) []string {
	out := make([]string, len(convs))
	for i, c := range convs {
		out[i] = c.ConversationID
	}
	return out
}

// backends returns a fresh instance of each backend.
func backends(t *testing.T) map[string]Backend {
	t.Helper()
	file, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}
	sqlite, err := NewSQLiteBackend(t.TempDir() + "/sasage.db")
	if err != nil {
		t.Fatalf("NewSQLiteBackend: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })
	return map[string]Backend{
		"file":   file,
		"sqlite": sqlite,
		"memory": NewMemoryBackend(),
	}
}

// =============================================================================
// BACKEND TESTS
// =============================================================================

func TestBackends_GetSetDelete(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := b.Get("missing"); !errors.Is(err, ErrKeyNotFound) {
				t.Fatalf("Get(missing) error = %v, want ErrKeyNotFound", err)
			}

			if err := b.Set("k", []byte("one")); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := b.Set("k", []byte("two")); err != nil {
				t.Fatalf("Set overwrite: %v", err)
			}
			got, err := b.Get("k")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if string(got) != "two" {
				t.Errorf("Get = %q, want %q", got, "two")
			}

			if err := b.Delete("k"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if err := b.Delete("k"); err != nil {
				t.Fatalf("Delete of missing key should succeed: %v", err)
			}
			if _, err := b.Get("k"); !errors.Is(err, ErrKeyNotFound) {
				t.Errorf("Get after delete error = %v, want ErrKeyNotFound", err)
			}
		})
	}
}

func TestOpen_SelectsBackend(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		backend string
		want    string
	}{
		{config.BackendFile, "*storage.FileBackend"},
		{config.BackendSQLite, "*storage.SQLiteBackend"},
		{config.BackendMemory, "*storage.MemoryBackend"},
	}
	for _, tt := range tests {
		b, err := Open(config.StorageConfig{Backend: tt.backend, Dir: dir})
		if err != nil {
			t.Fatalf("Open(%s): %v", tt.backend, err)
		}
		if got := fmt.Sprintf("%T", b); got != tt.want {
			t.Errorf("Open(%s) = %s, want %s", tt.backend, got, tt.want)
		}
		b.Close()
	}

	if _, err := Open(config.StorageConfig{Backend: "redis", Dir: dir}); err == nil {
		t.Error("Open(redis) should fail")
	}
}

func TestFileBackend_UsesKeyAsFileName(t *testing.T) {
	b, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	store := NewConversationStore(b, "", nil)
	store.Insert(newConv("conversation_1"))

	if _, err := os.Stat(b.Path(config.DefaultStorageKey)); err != nil {
		t.Fatalf("expected history file at %s: %v", b.Path(config.DefaultStorageKey), err)
	}
	if !strings.HasSuffix(b.Path(config.DefaultStorageKey), "sasage_chat_history.json") {
		t.Errorf("unexpected path %s", b.Path(config.DefaultStorageKey))
	}
}

// =============================================================================
// CONVERSATION STORE TESTS
// =============================================================================

func TestConversationStore_LoadEmpty(t *testing.T) {
	store := NewConversationStore(NewMemoryBackend(), "", nil)

	convs := store.Load()
	if convs == nil {
		t.Fatal("Load should return an empty slice, not nil")
	}
	if len(convs) != 0 {
		t.Errorf("Load() len = %d, want 0", len(convs))
	}
}

func TestConversationStore_LoadCorruptBlob(t *testing.T) {
	for _, blob := range []string{"{not json", `{"conversationId":"x"}`, "null", ""} {
		b := NewMemoryBackend()
		b.Set(config.DefaultStorageKey, []byte(blob))
		store := NewConversationStore(b, "", nil)

		convs := store.Load()
		if convs == nil || len(convs) != 0 {
			t.Errorf("Load() with blob %q = %v, want empty", blob, convs)
		}
	}
}

func TestConversationStore_InsertPrepends(t *testing.T) {
	store := NewConversationStore(NewMemoryBackend(), "", nil)

	store.Insert(newConv("a"))
	store.Insert(newConv("b"))
	got := store.Insert(newConv("c"))

	want := []string{"c", "b", "a"}
	if strings.Join(ids(got), ",") != strings.Join(want, ",") {
		t.Errorf("Insert result = %v, want %v", ids(got), want)
	}
	if strings.Join(ids(store.Load()), ",") != strings.Join(want, ",") {
		t.Errorf("Load after Insert = %v, want %v", ids(store.Load()), want)
	}
}

func TestConversationStore_UpdateByID(t *testing.T) {
	store := NewConversationStore(NewMemoryBackend(), "", nil)
	store.Insert(newConv("a"))
	store.Insert(newConv("b"))

	updated := newConv("a", "Hello")
	got := store.UpdateByID("a", updated)

	if strings.Join(ids(got), ",") != "b,a" {
		t.Fatalf("order changed: %v", ids(got))
	}
	loaded, ok := store.Get("a")
	if !ok {
		t.Fatal("conversation a missing after update")
	}
	if len(loaded.Messages) != 1 || loaded.Title != "Hello" {
		t.Errorf("update not persisted: %+v", loaded)
	}
	if other, _ := store.Get("b"); len(other.Messages) != 0 {
		t.Errorf("unrelated entry modified: %+v", other)
	}
}

func TestConversationStore_UpdateMissingIDLeavesIDs(t *testing.T) {
	store := NewConversationStore(NewMemoryBackend(), "", nil)
	store.Insert(newConv("a"))
	store.Insert(newConv("b"))

	got := store.UpdateByID("zzz", newConv("zzz", "ignored"))

	if strings.Join(ids(got), ",") != "b,a" {
		t.Errorf("ids = %v, want [b a]", ids(got))
	}
	if strings.Join(ids(store.Load()), ",") != "b,a" {
		t.Errorf("stored ids = %v, want [b a]", ids(store.Load()))
	}
}

func TestConversationStore_DeleteByIDExact(t *testing.T) {
	store := NewConversationStore(NewMemoryBackend(), "", nil)
	for _, id := range []string{"a", "ab", "b", "c"} {
		store.Insert(newConv(id))
	}

	got := store.DeleteByID("a")
	if strings.Join(ids(got), ",") != "c,b,ab" {
		t.Errorf("after delete = %v, want [c b ab]", ids(got))
	}

	got = store.DeleteByID("missing")
	if len(got) != 3 {
		t.Errorf("delete of missing id changed history: %v", ids(got))
	}
}

func TestConversationStore_ReplayProperty(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := NewConversationStore(b, "", nil)
			rng := rand.New(rand.NewSource(42))

			var expected []model.Conversation
			next := 0
			for step := 0; step < 200; step++ {
				switch op := rng.Intn(3); {
				case op == 0 || len(expected) == 0:
					c := newConv(fmt.Sprintf("conversation_%d", next))
					next++
					expected = append([]model.Conversation{c}, expected...)
					store.Insert(c)
				case op == 1:
					i := rng.Intn(len(expected) + 1)
					var id string
					if i == len(expected) {
						id = "does_not_exist"
					} else {
						id = expected[i].ConversationID
					}
					c := newConv(id, fmt.Sprintf("message %d", step))
					if i < len(expected) {
						expected[i] = c
					}
					store.UpdateByID(id, c)
				default:
					i := rng.Intn(len(expected))
					id := expected[i].ConversationID
					expected = append(expected[:i:i], expected[i+1:]...)
					store.DeleteByID(id)
				}
			}

			got := store.Load()
			if len(got) != len(expected) {
				t.Fatalf("len = %d, want %d", len(got), len(expected))
			}
			for i := range expected {
				if got[i].ConversationID != expected[i].ConversationID ||
					len(got[i].Messages) != len(expected[i].Messages) ||
					got[i].Title != expected[i].Title {
					t.Fatalf("entry %d = %+v, want %+v", i, got[i], expected[i])
				}
			}
		})
	}
}

func TestConversationStore_SaveLoadByteIdentical(t *testing.T) {
	b := NewMemoryBackend()
	store := NewConversationStore(b, "", nil)

	c := newConv("conversation_1718000000000_abc123xyz", "Xin chào, bạn có khỏe không?")
	c.AppendAssistantMessage("Tôi khỏe, cảm ơn! <b>&</b>", baseTime.Add(time.Minute))
	store.Insert(c)
	store.Insert(newConv("conversation_empty"))

	before, _ := b.Get(config.DefaultStorageKey)
	store.Save(store.Load())
	after, _ := b.Get(config.DefaultStorageKey)

	if !bytes.Equal(before, after) {
		t.Errorf("save(load()) changed bytes:\nbefore: %s\nafter:  %s", before, after)
	}
	if !bytes.Contains(before, []byte(`"messages":[]`)) {
		t.Errorf("empty conversation should serialize messages as []: %s", before)
	}
}

func TestConversationStore_ReadsBrowserBlob(t *testing.T) {
	blob := `[{"conversationId":"conversation_1718000000000_k3j2h1g0f","title":"Hello","timestamp":1718000000000,` +
		`"messages":[{"content":"Hello","sender":"user","timestamp":1718000001000},` +
		`{"content":"Hi there","sender":"assistant","timestamp":1718000002000}]}]`

	b := NewMemoryBackend()
	b.Set(config.DefaultStorageKey, []byte(blob))
	store := NewConversationStore(b, "", nil)

	convs := store.Load()
	if len(convs) != 1 {
		t.Fatalf("len = %d, want 1", len(convs))
	}
	if convs[0].Messages[1].Sender != model.SenderAssistant {
		t.Errorf("sender = %q, want assistant", convs[0].Messages[1].Sender)
	}

	store.Save(convs)
	out, _ := b.Get(config.DefaultStorageKey)
	if string(out) != blob {
		t.Errorf("re-encoded blob differs:\n got: %s\nwant: %s", out, blob)
	}
}

func TestConversationStore_DropsUnknownSenders(t *testing.T) {
	blob := `[{"conversationId":"c1","title":"Hello","timestamp":1718000000000,` +
		`"messages":[{"content":"Hello","sender":"user","timestamp":1718000001000},` +
		`{"content":"injected","sender":"system","timestamp":1718000001500},` +
		`{"content":"Hi there","sender":"assistant","timestamp":1718000002000}]}]`

	b := NewMemoryBackend()
	b.Set(config.DefaultStorageKey, []byte(blob))
	store := NewConversationStore(b, "", nil)

	convs := store.Load()
	if len(convs) != 1 {
		t.Fatalf("len = %d, want 1", len(convs))
	}
	msgs := convs[0].Messages
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	if msgs[0].Content != "Hello" || msgs[1].Content != "Hi there" {
		t.Errorf("kept %q, %q", msgs[0].Content, msgs[1].Content)
	}
}

func TestConversationStore_Clear(t *testing.T) {
	store := NewConversationStore(NewMemoryBackend(), "", nil)
	store.Insert(newConv("a"))
	store.Clear()

	if n := len(store.Load()); n != 0 {
		t.Errorf("Load after Clear len = %d, want 0", n)
	}
}

func TestConversationStore_Resolve(t *testing.T) {
	store := NewConversationStore(NewMemoryBackend(), "", nil)
	store.Insert(newConv("conversation_1_aaa"))
	store.Insert(newConv("conversation_2_bbb"))

	tests := []struct {
		ref    string
		wantID string
		wantOK bool
	}{
		{"conversation_1_aaa", "conversation_1_aaa", true},
		{"1", "conversation_2_bbb", true},
		{"2", "conversation_1_aaa", true},
		{"3", "", false},
		{"conversation_2", "conversation_2_bbb", true},
		{"conversation_", "", false}, // ambiguous
		{"nope", "", false},
	}
	for _, tt := range tests {
		got, ok := store.Resolve(tt.ref)
		if ok != tt.wantOK || got.ConversationID != tt.wantID {
			t.Errorf("Resolve(%q) = (%q, %v), want (%q, %v)", tt.ref, got.ConversationID, ok, tt.wantID, tt.wantOK)
		}
	}
}

// failingBackend fails every write.
type failingBackend struct {
	*MemoryBackend
}

func (failingBackend) Set(string, []byte) error { return errors.New("quota exceeded") }

func TestConversationStore_WriteFailureIsSwallowed(t *testing.T) {
	b := failingBackend{NewMemoryBackend()}
	store := NewConversationStore(b, "", nil)

	got := store.Insert(newConv("a"))
	if len(got) != 1 {
		t.Errorf("Insert should still return the updated history, got %v", ids(got))
	}
	if n := len(store.Load()); n != 0 {
		t.Errorf("nothing should have been stored, got %d", n)
	}
}

func TestFormatHistoryTable(t *testing.T) {
	if got := FormatHistoryTable(nil); got != "No conversations found." {
		t.Errorf("empty table = %q", got)
	}

	out := FormatHistoryTable([]model.Conversation{newConv("conversation_1", "Hello\nworld")})
	if !strings.Contains(out, "conversation_1") || !strings.Contains(out, "Hello") {
		t.Errorf("table missing row data:\n%s", out)
	}
	if strings.Count(out, "\n") != 4 {
		t.Errorf("expected header, rules and one row:\n%s", out)
	}
}
