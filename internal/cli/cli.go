// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - command line parsing for sasage.
package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdAsk
	CmdHistory
	CmdConfig
	CmdMockServer
	CmdVersion
	CmdHelp
	CmdUnknown
)

// String returns the command name as typed.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdChat:
		return "chat"
	case CmdAsk:
		return "ask"
	case CmdHistory:
		return "history"
	case CmdConfig:
		return "config"
	case CmdMockServer:
		return "mock-server"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// NeedsStore reports whether the command reads or writes conversation
// history.
func (c Command) NeedsStore() bool {
	switch c {
	case CmdTUI, CmdChat, CmdAsk, CmdHistory:
		return true
	}
	return false
}

// Args holds parsed global flags and the command's own arguments.
type Args struct {
	// Global flags
	Quiet      bool
	Verbose    bool
	JSON       bool
	NoColor    bool
	ConfigPath string

	// Name is the command word as typed (for error messages).
	Name string

	// Subcommand is the first positional after the command.
	Subcommand string

	// Raw args remaining after global flag parsing.
	Raw []string

	// Parser holds the command's flags and positionals.
	Parser *ArgParser
}

// valueFlags lists every command flag that takes a separate value.
var valueFlags = []string{"format", "output", "o", "theme", "addr", "delay", "rps", "burst", "origins", "resume"}

const usageText = `sasage - terminal client for the Sasage Agent chat service

Usage:
  sasage                          Start the TUI (default)
  sasage chat [--resume <ref>]    Line-mode chat
  sasage ask "message"            Send one message in a new conversation
  sasage history [subcommand]     Manage saved conversations
  sasage config [show|path]       Show configuration
  sasage mock-server              Run a local echo endpoint
  sasage version                  Show version
  sasage help                     Show this help

History Commands:
  sasage history list                       List conversations, newest first
  sasage history show <ref>                 Print a conversation
  sasage history delete <ref>               Delete a conversation
  sasage history clear --confirm            Delete every conversation
  sasage history export <ref>               Export a conversation to a file
    --format md|json|html                   Export format (default: md)
    --output DIR                            Output directory (default: .)
    --theme light|dark                      HTML theme (default: light)
    --open                                  Open the file after export

  <ref> is a conversation id, a unique id prefix, or the position shown by
  'history list'.

Mock Server:
  sasage mock-server
    --addr HOST:PORT                        Listen address (default: 127.0.0.1:8000)
    --delay DURATION                        Delay before each reply (e.g. 1s)
    --rps N --burst N                       Per-client rate limit
    --origins URL,URL                       CORS origins

Global Flags:
  --config PATH                   Use a specific config.toml
  --json                          JSON output (list, show, ask, config, version)
  --no-color                      Disable colors
  -q, --quiet                     Less output
  -v, --verbose                   More output
  -h, --help                      Show help
  -V, --version                   Show version

Environment:
  SASAGE_ENV / NODE_ENV           development, staging or production
  SASAGE_API_BASE_URL             Override the chat endpoint base URL
  SASAGE_DATA_DIR                 History and log directory (default: ~/.sasage)
  SASAGE_STORAGE_BACKEND          file, sqlite or memory
  NO_COLOR                        Disable colors
`

// PrintUsage writes the help text.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// PrintVersion writes version information.
func PrintVersion(w io.Writer, args Args) error {
	if args.JSON {
		return NewJSONResponse("version", VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
			Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		}).Fprint(w)
	}
	fmt.Fprintf(w, "sasage version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "  Go:         %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return nil
}

// Parse parses argv (without the program name) into a command and its
// arguments.
func Parse(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)
	if args.Name == "help" {
		return CmdHelp, args
	}
	if args.Name == "version" {
		return CmdVersion, args
	}

	if len(remaining) == 0 {
		args.Name = "tui"
		args.Parser = NewArgParser(nil)
		return CmdTUI, args
	}

	args.Name = strings.ToLower(remaining[0])
	args.Raw = remaining[1:]
	args.Parser = NewArgParser(args.Raw, valueFlags...)
	args.Subcommand = args.Parser.Subcommand()

	switch args.Name {
	case "tui":
		return CmdTUI, args
	case "chat", "repl":
		return CmdChat, args
	case "ask":
		return CmdAsk, args
	case "history", "hist", "h":
		return CmdHistory, args
	case "config":
		return CmdConfig, args
	case "mock-server", "mock":
		return CmdMockServer, args
	case "version":
		return CmdVersion, args
	case "help":
		return CmdHelp, args
	default:
		return CmdUnknown, args
	}
}

// parseGlobalFlags removes global flags from argv. Everything after "--"
// is left alone.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var remaining []string
	var args Args

	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case arg == "--":
			remaining = append(remaining, argv[i:]...)
			return remaining, args
		case arg == "-q" || arg == "--quiet":
			args.Quiet = true
		case arg == "-v" || arg == "--verbose":
			args.Verbose = true
		case arg == "--json":
			args.JSON = true
		case arg == "--no-color":
			args.NoColor = true
		case arg == "-h" || arg == "--help":
			args.Name = "help"
		case arg == "-V" || arg == "--version":
			args.Name = "version"
		case arg == "--config":
			if i+1 < len(argv) {
				i++
				args.ConfigPath = argv[i]
			}
		case strings.HasPrefix(arg, "--config="):
			args.ConfigPath = strings.TrimPrefix(arg, "--config=")
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, args
}
