// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/sasage-tui/internal/config"
	"github.com/jeranaias/sasage-tui/internal/model"
	"github.com/jeranaias/sasage-tui/internal/util"
)

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// ConversationStore persists the whole conversation history as one JSON
// array under a single key. Every mutation is a full load-modify-save cycle.
//
// Failures are logged and swallowed: a read failure yields an empty history
// and a write failure leaves whatever the backend kept.
type ConversationStore struct {
	backend Backend
	key     string
	logger  *zap.Logger

	// mu serializes load-modify-save cycles within this process.
	mu sync.Mutex
}

// NewConversationStore creates a store over backend. An empty key uses
// config.DefaultStorageKey; a nil logger discards output.
func NewConversationStore(backend Backend, key string, logger *zap.Logger) *ConversationStore {
	if key == "" {
		key = config.DefaultStorageKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversationStore{
		backend: backend,
		key:     key,
		logger:  logger.Named("storage"),
	}
}

// Key returns the key the history blob is stored under.
func (s *ConversationStore) Key() string {
	return s.key
}

// Backend returns the underlying backend.
func (s *ConversationStore) Backend() Backend {
	return s.backend
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load returns the stored history, most recent first. It never returns nil.
func (s *ConversationStore) Load() []model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *ConversationStore) load() []model.Conversation {
	data, err := s.backend.Get(s.key)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			s.logger.Error("failed to read chat history", zap.String("key", s.key), zap.Error(err))
		}
		return []model.Conversation{}
	}

	var convs []model.Conversation
	if err := json.Unmarshal(data, &convs); err != nil {
		s.logger.Error("failed to decode chat history",
			zap.String("key", s.key),
			zap.Int("bytes", len(data)),
			zap.Error(err))
		return []model.Conversation{}
	}
	if convs == nil {
		convs = []model.Conversation{}
	}
	for i := range convs {
		convs[i].Messages = s.knownSenders(convs[i])
	}
	return convs
}

// knownSenders drops messages whose sender is neither user nor assistant.
func (s *ConversationStore) knownSenders(conv model.Conversation) []model.Message {
	kept := conv.Messages[:0]
	for _, m := range conv.Messages {
		if !m.Sender.Valid() {
			s.logger.Warn("dropping message with unknown sender",
				zap.String("conversation_id", conv.ConversationID),
				zap.String("sender", m.Sender.String()))
			continue
		}
		kept = append(kept, m)
	}
	return kept
}

// Save overwrites the stored history with convs.
func (s *ConversationStore) Save(convs []model.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.save(convs)
}

func (s *ConversationStore) save(convs []model.Conversation) {
	if convs == nil {
		convs = []model.Conversation{}
	}
	data, err := json.Marshal(convs)
	if err != nil {
		s.logger.Error("failed to encode chat history", zap.Error(err))
		return
	}
	if err := s.backend.Set(s.key, data); err != nil {
		s.logger.Error("failed to write chat history",
			zap.String("key", s.key),
			zap.Int("conversations", len(convs)),
			zap.Error(err))
		return
	}
	s.logger.Debug("saved chat history", zap.Int("conversations", len(convs)), zap.Int("bytes", len(data)))
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Insert prepends conv to the history and returns the updated history.
func (s *ConversationStore) Insert(conv model.Conversation) []model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	convs := s.load()
	updated := make([]model.Conversation, 0, len(convs)+1)
	updated = append(updated, conv)
	updated = append(updated, convs...)
	s.save(updated)
	return updated
}

// UpdateByID replaces the entry whose id matches and returns the updated
// history. When nothing matches the history is unchanged but still rewritten.
func (s *ConversationStore) UpdateByID(id string, conv model.Conversation) []model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	convs := s.load()
	if i := model.IndexOf(convs, id); i >= 0 {
		convs[i] = conv
	} else {
		s.logger.Debug("update of unknown conversation", zap.String("id", id))
	}
	s.save(convs)
	return convs
}

// DeleteByID removes the entry whose id matches and returns the updated history.
func (s *ConversationStore) DeleteByID(id string) []model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	convs := s.load()
	kept := convs[:0]
	for _, c := range convs {
		if c.ConversationID != id {
			kept = append(kept, c)
		}
	}
	s.save(kept)
	return kept
}

// Clear removes the stored history entirely.
func (s *ConversationStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(s.key); err != nil {
		s.logger.Error("failed to clear chat history", zap.String("key", s.key), zap.Error(err))
	}
}

// =============================================================================
// LOOKUPS
// =============================================================================

// Get returns the conversation with id.
func (s *ConversationStore) Get(id string) (model.Conversation, bool) {
	convs := s.Load()
	if i := model.IndexOf(convs, id); i >= 0 {
		return convs[i], true
	}
	return model.Conversation{}, false
}

// Resolve finds a conversation by exact id, by 1-based position in the
// history, or by unique id prefix.
func (s *ConversationStore) Resolve(ref string) (model.Conversation, bool) {
	convs := s.Load()
	if i := model.IndexOf(convs, ref); i >= 0 {
		return convs[i], true
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(convs) {
		return convs[n-1], true
	}

	var match *model.Conversation
	for i := range convs {
		if ref != "" && strings.HasPrefix(convs[i].ConversationID, ref) {
			if match != nil {
				return model.Conversation{}, false
			}
			match = &convs[i]
		}
	}
	if match == nil {
		return model.Conversation{}, false
	}
	return *match, true
}

// =============================================================================
// HISTORY LIST FORMATTING
// =============================================================================

// FormatHistoryTable formats the history for terminal output, one row per
// conversation with its position, id, creation time, message count and title.
func FormatHistoryTable(convs []model.Conversation) string {
	if len(convs) == 0 {
		return "No conversations found."
	}

	const rule = "--------------------------------------------------------------------------------\n"

	var sb strings.Builder
	sb.WriteString(rule)
	sb.WriteString(util.PadWidth("#", 4) + " " +
		util.PadWidth("ID", 24) + " " +
		util.PadWidth("Created", 17) + " " +
		util.PadWidth("Msgs", 5) + " Title\n")
	sb.WriteString(rule)

	for i, c := range convs {
		sb.WriteString(util.PadWidth(strconv.Itoa(i+1), 4) + " " +
			util.PadWidth(util.TruncateWidth(c.ConversationID, 24), 24) + " " +
			util.PadWidth(c.CreatedAt().Format("2006-01-02 15:04"), 17) + " " +
			util.PadWidth(strconv.Itoa(len(c.Messages)), 5) + " " +
			util.TruncateWidth(util.SingleLine(c.DisplayTitle()), 32) + "\n")
	}
	return sb.String()
}
