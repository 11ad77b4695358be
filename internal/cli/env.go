// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/sasage-tui/internal/chatapi"
	"github.com/jeranaias/sasage-tui/internal/config"
	"github.com/jeranaias/sasage-tui/internal/controller"
	"github.com/jeranaias/sasage-tui/internal/logging"
	"github.com/jeranaias/sasage-tui/internal/storage"
)

// Env carries what command handlers share. Store and Sender may be nil for
// commands that do not touch history.
type Env struct {
	Config config.Config
	Logger *zap.Logger
	Store  *storage.ConversationStore
	Sender chatapi.Sender

	// Out receives command output, Err receives diagnostics.
	Out io.Writer
	Err io.Writer

	// Now defaults to time.Now.
	Now func() time.Time
}

func (e *Env) out() io.Writer {
	if e.Out == nil {
		return os.Stdout
	}
	return e.Out
}

func (e *Env) errOut() io.Writer {
	if e.Err == nil {
		return os.Stderr
	}
	return e.Err
}

func (e *Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// NewController builds a controller over the env's store and sender.
func (e *Env) NewController() *controller.Controller {
	return controller.New(e.Store, e.Sender, logging.OrNop(e.Logger), controller.Options{Now: e.Now})
}

func (e *Env) requireStore(command string) error {
	if e.Store == nil {
		return NewCommandError(command, "open", "conversation history is not available", nil)
	}
	return nil
}
