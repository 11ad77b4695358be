// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides conversation history persistence for sasage.
//
// The whole history is one JSON array stored under a single key, in the
// same layout the web client keeps in browser local storage. Backends
// only need whole-value reads and writes.
//
// # Key Types
//
//   - Backend: Key/value storage (FileBackend, SQLiteBackend, MemoryBackend)
//   - ConversationStore: Load, Save, Insert, UpdateByID, DeleteByID
//   - Watcher: Notifies when another process rewrites the history file
//
// # Usage
//
//	backend, err := storage.Open(cfg.Storage)
//	store := storage.NewConversationStore(backend, cfg.Storage.Key, logger)
//	history := store.Insert(model.NewConversation(time.Now()))
//
// # Storage Location
//
// The file backend writes ~/.sasage/sasage_chat_history.json; the SQLite
// backend uses ~/.sasage/sasage.db.
package storage
