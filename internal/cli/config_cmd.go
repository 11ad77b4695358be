// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/sasage-tui/internal/config"
)

// HandleConfig runs `sasage config [show|path]`.
func HandleConfig(env *Env, args Args) error {
	switch args.Subcommand {
	case "", "show":
		return configShow(env, args)
	case "path":
		return configPath(env, args)
	default:
		return ErrUnknownSubcommand("config", args.Subcommand, []string{"show", "path"})
	}
}

func configShow(env *Env, args Args) error {
	cfg := env.Config
	if args.JSON {
		return NewJSONResponse("config show", cfg).Fprint(env.out())
	}

	w := env.out()
	fmt.Fprintln(w, TitleStyle.Render(cfg.DisplayName()))
	fmt.Fprintln(w, RenderLabel("Environment", cfg.Environment))
	fmt.Fprintln(w, RenderLabel("Chat URL", cfg.ChatURL()))
	fmt.Fprintln(w, RenderLabel("Storage", cfg.Storage.Backend+" in "+cfg.Storage.Dir))
	fmt.Fprintln(w, RenderLabel("Log", cfg.Log.Level+" to "+cfg.Log.File))
	features := cfg.Features.Names()
	if len(features) == 0 {
		features = []string{"(none)"}
	}
	fmt.Fprintln(w, RenderLabel("Features", strings.Join(features, ", ")))
	fmt.Fprintln(w, RenderSeparator())
	fmt.Fprint(w, cfg.String())
	return nil
}

// configPath prints the config file location and whether it exists.
func configPath(env *Env, args Args) error {
	path := ResolveConfigPath(args.ConfigPath)
	if path == "" {
		return &ConfigError{Err: fmt.Errorf("could not determine the config location")}
	}
	status := "not found, using defaults"
	if _, err := os.Stat(path); err == nil {
		status = "exists"
	}
	if args.JSON {
		return NewJSONResponse("config path", map[string]string{"path": path, "status": status}).Fprint(env.out())
	}
	fmt.Fprintf(env.out(), "%s (%s)\n", path, status)
	return nil
}

// ResolveConfigPath returns the config file Load reads: explicit, then
// SASAGE_CONFIG, then ~/.sasage/config.toml.
func ResolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if v := os.Getenv("SASAGE_CONFIG"); v != "" {
		return v
	}
	dir, err := config.DefaultDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "config.toml")
}
