// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for sasage.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - APIConfig: Chat endpoint, timeout and throttling
//   - StorageConfig: History backend selection
//   - FeatureFlags: Optional UI features
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (SASAGE_*, NODE_ENV), including a local .env
//   - ~/.sasage/config.toml (or SASAGE_CONFIG)
//   - Built-in defaults
//
// The environment profile (development, staging, production) then fills the
// API base URL, debug flag and log level when they were not set explicitly.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := chatapi.NewClient(cfg.API.BaseURL)
package config
