// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Configuration is resolved once at startup and passed by value to the
// components that need it. There is no package-level instance.

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment names.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// DefaultStorageKey is the key the conversation history blob lives under.
const DefaultStorageKey = "sasage_chat_history"

// Per-environment API defaults.
const (
	defaultDevelopmentURL = "http://127.0.0.1:8000/api/v1"
	defaultStagingURL     = "http://staging-api.caster.com/api/v1"
	defaultProductionURL  = "https://api.caster.com/api/v1"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete sasage configuration.
type Config struct {
	// Environment is development, staging or production.
	Environment string `toml:"environment"`

	// Debug enables verbose startup output. Derived from the environment.
	Debug bool `toml:"-"`

	App      AppConfig     `toml:"app"`
	API      APIConfig     `toml:"api"`
	Features FeatureFlags  `toml:"features"`
	Storage  StorageConfig `toml:"storage"`
	Log      LogConfig     `toml:"log"`
	UI       UIConfig      `toml:"ui"`
}

// AppConfig holds branding strings shown in the header.
type AppConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Company string `toml:"company"`
}

// APIConfig configures the remote chat endpoint.
type APIConfig struct {
	// BaseURL is the endpoint root; requests go to BaseURL + "/chat".
	BaseURL string `toml:"base_url"`
	// TimeoutSecs bounds a single request at the transport level.
	TimeoutSecs int `toml:"timeout_secs"`
	// RequestsPerSecond throttles sends (0 = unlimited).
	RequestsPerSecond float64 `toml:"requests_per_second"`
	// Burst is the number of sends allowed back to back.
	Burst int `toml:"burst"`
}

// FeatureFlags toggles optional UI features. None of them affect the
// conversation core.
type FeatureFlags struct {
	VoiceInput  bool `toml:"voice_input"`
	FileUpload  bool `toml:"file_upload"`
	VideoCall   bool `toml:"video_call"`
	DeepSearch  bool `toml:"deep_search"`
	Canvas      bool `toml:"canvas"`
	ImageUpload bool `toml:"image_upload"`
}

// StorageConfig selects where conversation history is kept.
type StorageConfig struct {
	// Backend is file, sqlite or memory.
	Backend string `toml:"backend"`
	// Dir holds the history file or database. Default: ~/.sasage
	Dir string `toml:"dir"`
	// Key is the key the history blob is stored under.
	Key string `toml:"key"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is debug, info, warn or error. Derived from the environment when empty.
	Level string `toml:"level"`
	// File receives log output. Default: <storage dir>/sasage.log
	File string `toml:"file"`
}

// UIConfig configures the terminal interface.
type UIConfig struct {
	// Theme is auto, dark or light.
	Theme string `toml:"theme"`
	// SidebarWidth is the conversation list width in cells.
	SidebarWidth int `toml:"sidebar_width"`
	// ShowSuggestions shows canned questions in empty conversations.
	ShowSuggestions bool `toml:"show_suggestions"`
}

// Options controls where Load looks for its inputs. Zero values use the
// process environment and the default paths.
type Options struct {
	// ConfigPath overrides ~/.sasage/config.toml (and SASAGE_CONFIG).
	ConfigPath string
	// EnvFile is the dotenv file to load. Default: ".env"
	EnvFile string
	// SkipEnvFile disables dotenv loading.
	SkipEnvFile bool
	// Getenv replaces os.Getenv, mainly for tests.
	Getenv func(string) string
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the environment-independent defaults. Base URL, debug and
// log level are filled in by the environment profile during Load.
func Default() Config {
	return Config{
		App: AppConfig{
			Name:    "Sasage Agent",
			Version: "2.5 Pro",
			Company: "Caster Company",
		},
		API: APIConfig{
			TimeoutSecs:       60,
			RequestsPerSecond: 1,
			Burst:             3,
		},
		Storage: StorageConfig{
			Backend: BackendFile,
			Key:     DefaultStorageKey,
		},
		UI: UIConfig{
			Theme:           "auto",
			SidebarWidth:    32,
			ShowSuggestions: true,
		},
	}
}

// DefaultDir returns ~/.sasage.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".sasage"), nil
}

// =============================================================================
// LOAD
// =============================================================================

// Load resolves configuration from defaults, the TOML file, .env and the
// process environment.
func Load() (Config, error) {
	return LoadWithOptions(Options{})
}

// LoadWithOptions resolves configuration. Precedence, lowest first:
// defaults, config file, environment variables (including .env, which never
// overrides variables already set), environment profile.
func LoadWithOptions(opts Options) (Config, error) {
	getenv := opts.Getenv
	if getenv == nil {
		if !opts.SkipEnvFile {
			envFile := opts.EnvFile
			if envFile == "" {
				envFile = ".env"
			}
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
		getenv = os.Getenv
	}

	cfg := Default()

	path := opts.ConfigPath
	if path == "" {
		path = getenv("SASAGE_CONFIG")
	}
	if path == "" {
		if dir, err := DefaultDir(); err == nil {
			path = filepath.Join(dir, "config.toml")
		}
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to decode TOML file %s: %w", path, err)
			}
		} else if opts.ConfigPath != "" {
			return Config{}, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides(getenv)
	cfg.applyProfile(getenv)

	if cfg.Storage.Dir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return Config{}, err
		}
		cfg.Storage.Dir = dir
	}
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(cfg.Storage.Dir, "sasage.log")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies SASAGE_* variables.
//
// Supported:
//   - SASAGE_ENV, then NODE_ENV: environment name
//   - SASAGE_APP_NAME, SASAGE_APP_VERSION, SASAGE_COMPANY_NAME
//   - SASAGE_ENABLE_VOICE_INPUT, _FILE_UPLOAD, _VIDEO_CALL, _DEEP_SEARCH,
//     _CANVAS, _IMAGE_UPLOAD ("true" enables)
//   - SASAGE_STORAGE_BACKEND, SASAGE_DATA_DIR, SASAGE_STORAGE_KEY
//   - SASAGE_API_TIMEOUT_SECS, SASAGE_API_RPS
//   - SASAGE_LOG_LEVEL, SASAGE_LOG_FILE, SASAGE_THEME
func (c *Config) applyEnvOverrides(getenv func(string) string) {
	if env := getenv("SASAGE_ENV"); env != "" {
		c.Environment = env
	} else if env := getenv("NODE_ENV"); env != "" {
		c.Environment = env
	}
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))

	if v := getenv("SASAGE_APP_NAME"); v != "" {
		c.App.Name = v
	}
	if v := getenv("SASAGE_APP_VERSION"); v != "" {
		c.App.Version = v
	}
	if v := getenv("SASAGE_COMPANY_NAME"); v != "" {
		c.App.Company = v
	}

	flags := map[string]*bool{
		"VOICE_INPUT":  &c.Features.VoiceInput,
		"FILE_UPLOAD":  &c.Features.FileUpload,
		"VIDEO_CALL":   &c.Features.VideoCall,
		"DEEP_SEARCH":  &c.Features.DeepSearch,
		"CANVAS":       &c.Features.Canvas,
		"IMAGE_UPLOAD": &c.Features.ImageUpload,
	}
	for name, flag := range flags {
		if v := getenv("SASAGE_ENABLE_" + name); v != "" {
			*flag = v == "true"
		}
	}

	if v := getenv("SASAGE_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = strings.ToLower(v)
	}
	if v := getenv("SASAGE_DATA_DIR"); v != "" {
		c.Storage.Dir = v
	}
	if v := getenv("SASAGE_STORAGE_KEY"); v != "" {
		c.Storage.Key = v
	}

	if v := getenv("SASAGE_API_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.API.TimeoutSecs = n
		}
	}
	if v := getenv("SASAGE_API_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.API.RequestsPerSecond = f
		}
	}

	if v := getenv("SASAGE_LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := getenv("SASAGE_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := getenv("SASAGE_THEME"); v != "" {
		c.UI.Theme = strings.ToLower(v)
	}
}

// applyProfile fills the environment-dependent settings. An explicit
// per-environment URL variable always wins; the generic SASAGE_API_BASE_URL
// is only honoured in development.
func (c *Config) applyProfile(getenv func(string) string) {
	if c.Environment == "" {
		c.Environment = EnvDevelopment
	}

	var envURL, fallbackURL, level string
	switch c.Environment {
	case EnvDevelopment:
		envURL = getenv("SASAGE_API_BASE_URL_DEVELOPMENT")
		if envURL == "" {
			envURL = getenv("SASAGE_API_BASE_URL")
		}
		fallbackURL = defaultDevelopmentURL
		c.Debug = true
		level = "debug"
	case EnvStaging:
		envURL = getenv("SASAGE_API_BASE_URL_STAGING")
		fallbackURL = defaultStagingURL
		c.Debug = true
		level = "info"
	case EnvProduction:
		envURL = getenv("SASAGE_API_BASE_URL_PRODUCTION")
		fallbackURL = defaultProductionURL
		c.Debug = false
		level = "error"
	default:
		// Unknown environments are rejected by Validate
		return
	}

	switch {
	case envURL != "":
		c.API.BaseURL = envURL
	case c.API.BaseURL == "":
		c.API.BaseURL = fallbackURL
	}
	c.API.BaseURL = strings.TrimSuffix(strings.TrimSpace(c.API.BaseURL), "/")

	if c.Log.Level == "" {
		c.Log.Level = level
	}
	if v := getenv("SASAGE_DEBUG"); v != "" {
		c.Debug = v == "1" || strings.ToLower(v) == "true"
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// DisplayName returns the app name with the environment suffix used in the
// header, e.g. "Sasage Agent (Dev)".
func (c Config) DisplayName() string {
	switch c.Environment {
	case EnvDevelopment:
		return c.App.Name + " (Dev)"
	case EnvStaging:
		return c.App.Name + " (Staging)"
	default:
		return c.App.Name
	}
}

// ChatURL returns the full URL of the chat endpoint.
func (c Config) ChatURL() string {
	return c.API.BaseURL + "/chat"
}

// Enabled reports whether the named feature is on. Both camelCase
// ("voiceInput") and snake_case ("voice_input") names are accepted; unknown
// names are off.
func (f FeatureFlags) Enabled(name string) bool {
	switch normalizeFlagName(name) {
	case "voiceinput":
		return f.VoiceInput
	case "fileupload":
		return f.FileUpload
	case "videocall":
		return f.VideoCall
	case "deepsearch":
		return f.DeepSearch
	case "canvas":
		return f.Canvas
	case "imageupload":
		return f.ImageUpload
	default:
		return false
	}
}

// Names returns the enabled feature names in snake_case.
func (f FeatureFlags) Names() []string {
	var names []string
	for _, entry := range []struct {
		name string
		on   bool
	}{
		{"voice_input", f.VoiceInput},
		{"file_upload", f.FileUpload},
		{"video_call", f.VideoCall},
		{"deep_search", f.DeepSearch},
		{"canvas", f.Canvas},
		{"image_upload", f.ImageUpload},
	} {
		if entry.on {
			names = append(names, entry.name)
		}
	}
	return names
}

func normalizeFlagName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "_", "")
	return strings.ReplaceAll(name, "-", "")
}

// String renders the configuration as TOML.
func (c Config) String() string {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return sb.String()
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns ValidateErrors on failure.
func (c Config) Validate() error {
	var errs ValidateErrors

	switch c.Environment {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		errs = append(errs, ValidationError{
			Field:   "environment",
			Message: fmt.Sprintf("invalid environment '%s', must be one of: development, staging, production", c.Environment),
		})
	}

	if c.API.BaseURL == "" {
		errs = append(errs, ValidationError{Field: "api.base_url", Message: "must not be empty"})
	} else if u, err := url.Parse(c.API.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Message: fmt.Sprintf("invalid URL '%s', must be an absolute http(s) URL", c.API.BaseURL),
		})
	}
	if c.API.TimeoutSecs <= 0 {
		errs = append(errs, ValidationError{Field: "api.timeout_secs", Message: "must be positive"})
	}
	if c.API.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{Field: "api.requests_per_second", Message: "must not be negative"})
	}
	if c.API.RequestsPerSecond > 0 && c.API.Burst < 1 {
		errs = append(errs, ValidationError{Field: "api.burst", Message: "must be at least 1 when throttling"})
	}

	switch c.Storage.Backend {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		errs = append(errs, ValidationError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("invalid backend '%s', must be one of: file, sqlite, memory", c.Storage.Backend),
		})
	}
	if c.Storage.Key == "" {
		errs = append(errs, ValidationError{Field: "storage.key", Message: "must not be empty"})
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	switch c.UI.Theme {
	case "auto", "dark", "light":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}
	if c.UI.SidebarWidth < 16 || c.UI.SidebarWidth > 80 {
		errs = append(errs, ValidationError{Field: "ui.sidebar_width", Message: "must be between 16 and 80"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
