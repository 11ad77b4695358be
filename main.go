// sasage - terminal client for the Sasage Agent chat service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/sasage-tui/internal/chatapi"
	"github.com/jeranaias/sasage-tui/internal/cli"
	"github.com/jeranaias/sasage-tui/internal/config"
	"github.com/jeranaias/sasage-tui/internal/logging"
	"github.com/jeranaias/sasage-tui/internal/storage"
	"github.com/jeranaias/sasage-tui/internal/ui/chat"
	"github.com/jeranaias/sasage-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// watchDebounce coalesces the bursts of events an atomic rename produces.
const watchDebounce = 150 * time.Millisecond

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	cmd, args := cli.Parse(argv)
	if args.NoColor {
		cli.ForceColorsEnabled(false)
	}
	cli.ApplyColorProfile()

	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage(os.Stdout)
		return cli.ExitSuccess
	case cli.CmdVersion:
		return finish(cli.PrintVersion(os.Stdout, args), args)
	case cli.CmdUnknown:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args.Name)
		cli.PrintUsage(os.Stderr)
		return cli.ExitUsageError
	}

	env, cleanup, err := setup(cmd, args)
	if err != nil {
		return finish(err, args)
	}
	defer cleanup()

	ctx := context.Background()
	switch cmd {
	case cli.CmdTUI:
		err = runTUI(env)
	case cli.CmdChat:
		err = cli.HandleChat(ctx, env, args)
	case cli.CmdAsk:
		err = cli.HandleAsk(ctx, env, args)
	case cli.CmdHistory:
		err = cli.HandleHistory(env, args)
	case cli.CmdConfig:
		err = cli.HandleConfig(env, args)
	case cli.CmdMockServer:
		err = cli.HandleMockServer(ctx, env, args)
	}
	return finish(err, args)
}

// finish reports err and returns the exit code.
func finish(err error, args cli.Args) int {
	if err == nil {
		return cli.ExitSuccess
	}
	cli.DisplayError(os.Stderr, err, args.Name, args.JSON)
	return cli.GetExitCode(err)
}

// setup loads configuration and builds what cmd needs. Storage and the chat
// client are only opened for commands that use history.
func setup(cmd cli.Command, args cli.Args) (*cli.Env, func(), error) {
	cfg, err := config.LoadWithOptions(config.Options{ConfigPath: args.ConfigPath})
	if err != nil {
		return nil, nil, &cli.ConfigError{Err: err}
	}

	logger, err := logging.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		logger = logging.Nop()
	}
	logging.EnvironmentInfo(logger, cfg)

	env := &cli.Env{
		Config: cfg,
		Logger: logger,
		Out:    os.Stdout,
		Err:    os.Stderr,
	}
	closers := []func(){func() { _ = logger.Sync() }}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if !cmd.NeedsStore() {
		return env, cleanup, nil
	}

	backend, err := storage.Open(cfg.Storage)
	if err != nil {
		cleanup()
		return nil, nil, cli.NewCommandError(cmd.String(), "open", "could not open conversation history", err)
	}
	closers = append(closers, func() {
		if err := backend.Close(); err != nil {
			logger.Warn("closing storage", zap.Error(err))
		}
	})

	env.Store = storage.NewConversationStore(backend, cfg.Storage.Key, logger)
	env.Sender = chatapi.NewClient(cfg.API.BaseURL,
		chatapi.WithTimeout(time.Duration(cfg.API.TimeoutSecs)*time.Second),
		chatapi.WithRateLimit(cfg.API.RequestsPerSecond, cfg.API.Burst),
		chatapi.WithUserAgent("sasage/"+Version),
		chatapi.WithLogger(logger),
	)
	return env, cleanup, nil
}

// runTUI starts the full-screen interface.
func runTUI(env *cli.Env) error {
	if err := cli.RequiresTTY("the TUI"); err != nil {
		return err
	}

	opts := chat.Options{
		Controller: env.NewController(),
		Config:     env.Config,
		Theme:      styles.NewTheme(env.Config.UI.Theme),
		Logger:     env.Logger,
	}

	// Another sasage process writing the history file shows up in the sidebar.
	if fb, ok := env.Store.Backend().(*storage.FileBackend); ok {
		w, err := storage.NewWatcher(fb.Path(env.Store.Key()), watchDebounce, env.Logger)
		if err != nil {
			env.Logger.Warn("history watcher unavailable", zap.Error(err))
		} else {
			defer w.Close()
			opts.HistoryChanges = w.Changes()
		}
	}

	p := tea.NewProgram(chat.New(opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
