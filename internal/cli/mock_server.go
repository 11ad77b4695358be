// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jeranaias/sasage-tui/internal/logging"
	"github.com/jeranaias/sasage-tui/internal/server"
)

const shutdownTimeout = 5 * time.Second

// MockServerConfig builds the server config from command flags.
func MockServerConfig(args Args) (server.Config, error) {
	cfg := server.DefaultConfig()
	p := args.Parser

	cfg.Addr = p.FlagOrDefault("addr", cfg.Addr)

	var err error
	if cfg.Delay, err = p.FlagDuration("delay", cfg.Delay); err != nil {
		return cfg, err
	}
	if cfg.RequestsPerSecond, err = p.FlagFloat("rps", cfg.RequestsPerSecond); err != nil {
		return cfg, err
	}
	if cfg.Burst, err = p.FlagInt("burst", cfg.Burst); err != nil {
		return cfg, err
	}
	if origins := p.Flag("origins"); origins != "" {
		cfg.AllowedOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}
	return cfg, nil
}

// HandleMockServer runs the local echo endpoint until interrupted.
func HandleMockServer(ctx context.Context, env *Env, args Args) error {
	cfg, err := MockServerConfig(args)
	if err != nil {
		return err
	}

	srv := server.New(cfg, logging.OrNop(env.Logger))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	if !args.Quiet {
		fmt.Fprintf(env.out(), "%s mock chat endpoint on http://%s/api/v1/chat\n",
			SuccessStyle.Render("[Listening]"), cfg.Addr)
		fmt.Fprintln(env.out(), DimStyle.Render("Send \"/error\" or \"/empty\" to simulate failures. Ctrl+C to stop."))
	}

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return NewCommandError("mock-server", "start", "server stopped", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return NewCommandError("mock-server", "shutdown", "graceful shutdown failed", err)
	}
	if !args.Quiet {
		stats := srv.Stats()
		fmt.Fprintf(env.out(), "\nServed %d chat request(s), %d failure(s) in %s\n",
			stats.ChatRequests.Load(), stats.Failures.Load(), stats.Uptime().Round(time.Second))
	}
	return nil
}
