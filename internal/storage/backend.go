// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jeranaias/sasage-tui/internal/config"
	"github.com/jeranaias/sasage-tui/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrKeyNotFound is returned by Backend.Get when the key has never been set.
// Use errors.Is(err, ErrKeyNotFound) to check for this error.
var ErrKeyNotFound = errors.New("key not found")

// =============================================================================
// BACKEND INTERFACE
// =============================================================================

// Backend is a synchronous whole-value key/value store. Values are opaque
// blobs; every Set replaces the previous value entirely.
type Backend interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(key string) ([]byte, error)

	// Set replaces the value stored under key.
	Set(key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// Close releases any resources held by the backend.
	Close() error
}

// Open returns the backend selected by cfg.
func Open(cfg config.StorageConfig) (Backend, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		return NewFileBackend(cfg.Dir)
	case config.BackendSQLite:
		return NewSQLiteBackend(filepath.Join(cfg.Dir, "sasage.db"))
	case config.BackendMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// =============================================================================
// FILE BACKEND
// =============================================================================

// FileBackend keeps one JSON file per key in Dir.
type FileBackend struct {
	// Dir is the directory holding the files.
	// Default: ~/.sasage/
	Dir string
}

// NewFileBackend creates a file backend rooted at dir, creating it if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileBackend{Dir: dir}, nil
}

// Path returns the file the value for key is written to.
func (b *FileBackend) Path(key string) string {
	return filepath.Join(b.Dir, key+".json")
}

func (b *FileBackend) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(b.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return data, nil
}

// Set writes atomically so a crash mid-write leaves the previous value.
func (b *FileBackend) Set(key string, value []byte) error {
	return util.AtomicWriteFile(b.Path(key), value, 0o600)
}

func (b *FileBackend) Delete(key string) error {
	if err := os.Remove(b.Path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (b *FileBackend) Close() error { return nil }

// =============================================================================
// MEMORY BACKEND
// =============================================================================

// MemoryBackend keeps values in process memory. Nothing survives a restart.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryBackend creates an empty memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string][]byte)}
}

func (b *MemoryBackend) Get(key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.values[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (b *MemoryBackend) Set(key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[key] = append([]byte(nil), value...)
	return nil
}

func (b *MemoryBackend) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.values, key)
	return nil
}

func (b *MemoryBackend) Close() error { return nil }
