// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-TUI commands of
// sasage.
//
// # Key Types
//
//   - Command: the subcommand to run
//   - Args: global flags plus the command's ArgParser
//   - Env: config, logger, store and sender shared by handlers
//   - ChatSession: the line-mode REPL
//
// # Usage
//
//	cmd, args := cli.Parse(os.Args[1:])
//	switch cmd {
//	case cli.CmdAsk:
//	    err = cli.HandleAsk(ctx, env, args)
//	case cli.CmdHistory:
//	    err = cli.HandleHistory(env, args)
//	}
//	cli.DisplayError(os.Stderr, err, args.Name, args.JSON)
//	os.Exit(cli.GetExitCode(err))
//
// All listing commands accept --json and print a JSONResponse envelope.
package cli
