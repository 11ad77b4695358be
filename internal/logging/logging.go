// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zap logger used across sasage.
//
// The TUI owns the terminal, so log output always goes to a file rather
// than stderr.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jeranaias/sasage-tui/internal/config"
)

// New returns a logger writing to cfg.Log.File at cfg.Log.Level. Debug
// configurations get a human-readable console encoding; everything else
// logs JSON.
func New(cfg config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}

	if cfg.Log.File == "" {
		return nil, fmt.Errorf("log file not configured")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	zc := zap.NewProductionConfig()
	if cfg.Debug {
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		zc.Sampling = nil
	}
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{cfg.Log.File}
	zc.ErrorOutputPaths = []string{cfg.Log.File}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger.With(zap.String("env", cfg.Environment)), nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// EnvironmentInfo logs the resolved environment when debug output is on.
func EnvironmentInfo(logger *zap.Logger, cfg config.Config) {
	if !cfg.Debug {
		return
	}
	logger.Info("environment configuration",
		zap.String("environment", cfg.Environment),
		zap.String("app", cfg.DisplayName()),
		zap.String("version", cfg.App.Version),
		zap.String("api_base_url", cfg.API.BaseURL),
		zap.String("storage_backend", cfg.Storage.Backend),
		zap.String("storage_dir", cfg.Storage.Dir),
		zap.String("log_level", cfg.Log.Level),
		zap.Strings("features", cfg.Features.Names()),
	)
}
