// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for medchat.
//
// Configuration is read from a TOML file with sensible defaults, then
// environment variable overrides are applied and the result is validated.
//
// Configuration file location (in order of precedence):
//   - the path given with --config
//   - ~/.medchat/config.toml
//   - Built-in defaults
package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/medchat-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete medchat configuration.
type Config struct {
	// Gateway is the API gateway the client talks to.
	Gateway GatewayConfig `toml:"gateway" json:"gateway"`

	// Storage holds the local key/value database settings.
	Storage StorageConfig `toml:"storage" json:"storage"`

	// Media holds microphone capture and upload settings.
	Media MediaConfig `toml:"media" json:"media"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// Log configuration
	Log LogConfig `toml:"log" json:"log"`
}

// GatewayConfig contains the API gateway settings.
type GatewayConfig struct {
	// BaseURL is prefixed to every request path.
	BaseURL string `toml:"base_url" json:"base_url"`
	// RequestTimeoutSecs bounds a single request. 0 means no timeout.
	RequestTimeoutSecs int `toml:"request_timeout_secs" json:"request_timeout_secs"`
	// RateLimitPerSec throttles outgoing requests. 0 disables throttling.
	RateLimitPerSec float64 `toml:"rate_limit_per_sec" json:"rate_limit_per_sec"`
	// UserAgent is sent with every request.
	UserAgent string `toml:"user_agent" json:"user_agent"`
}

// StorageConfig contains local persistence settings.
type StorageConfig struct {
	// DBPath is the SQLite database holding the session credential.
	// Empty means ~/.medchat/medchat.db.
	DBPath string `toml:"db_path" json:"db_path"`
	// EncryptCredential seals the stored credential with a passphrase
	// taken from MEDCHAT_PASSPHRASE.
	EncryptCredential bool `toml:"encrypt_credential" json:"encrypt_credential"`
}

// MediaConfig contains capture and upload settings.
type MediaConfig struct {
	// RecordCommand is the program that captures microphone audio as webm on
	// stdout until interrupted, e.g. "ffmpeg -f pulse -i default -f webm -".
	RecordCommand string `toml:"record_command" json:"record_command"`
	// MaxUploadMB rejects larger images before they are uploaded.
	MaxUploadMB int `toml:"max_upload_mb" json:"max_upload_mb"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// Markdown renders bot answers as markdown.
	Markdown bool `toml:"markdown" json:"markdown"`
	// ShowSidebar shows the navigation sidebar on wide terminals.
	ShowSidebar bool `toml:"show_sidebar" json:"show_sidebar"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// Path of the rotating JSON log file. Empty means ~/.medchat/logs/medchat.log.
	Path string `toml:"path" json:"path"`
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" json:"level"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// DefaultBaseURL matches the gateway's development port.
const DefaultBaseURL = "http://localhost:8000"

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Gateway: GatewayConfig{
			BaseURL:            DefaultBaseURL,
			RequestTimeoutSecs: 0,
			RateLimitPerSec:    0,
			UserAgent:          "medchat/0.1",
		},
		Storage: StorageConfig{
			DBPath:            "",
			EncryptCredential: false,
		},
		Media: MediaConfig{
			RecordCommand: "ffmpeg -hide_banner -loglevel error -f pulse -i default -f webm -",
			MaxUploadMB:   10,
		},
		UI: UIConfig{
			Theme:       "auto",
			Markdown:    true,
			ShowSidebar: true,
		},
		Log: LogConfig{
			Path:  "",
			Level: "info",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the medchat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".medchat"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// DBPath resolves the database path, falling back to the config directory.
func (c *Config) DBPath() (string, error) {
	if c.Storage.DBPath != "" {
		return c.Storage.DBPath, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "medchat.db"), nil
}

// LogPath resolves the log file path, falling back to the config directory.
func (c *Config) LogPath() (string, error) {
	if c.Log.Path != "" {
		return c.Log.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs", "medchat.log"), nil
}

// ensureSecurePermissions checks and fixes permissions on config files.
// SECURITY: Config files should be 0600 (owner read/write only).
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default config file.
// A missing file is not an error: defaults (with env overrides) are returned.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file path with full validation.
// A path that does not exist yields the defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, statErr := os.Stat(path); statErr == nil {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	} else if !errors.Is(statErr, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, statErr)
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file on top of cfg.
// SECURITY: Checks and fixes file permissions on load.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to path as TOML with 0600 permissions.
func Save(cfg *Config, path string) error {
	err := util.WriteAtomic(path, 0600, func(w io.Writer) error {
		if _, err := io.WriteString(w, "# medchat configuration file\n\n"); err != nil {
			return err
		}
		if err := toml.NewEncoder(w).Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// DEFAULTS & VALIDATION
// =============================================================================

// SetDefaults fills any zero-valued fields that must not be empty.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Gateway.BaseURL == "" {
		c.Gateway.BaseURL = defaults.Gateway.BaseURL
	}
	c.Gateway.BaseURL = strings.TrimSuffix(c.Gateway.BaseURL, "/")
	if c.Gateway.UserAgent == "" {
		c.Gateway.UserAgent = defaults.Gateway.UserAgent
	}
	if c.Media.MaxUploadMB == 0 {
		c.Media.MaxUploadMB = defaults.Media.MaxUploadMB
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
}

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

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.Gateway.BaseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, ValidationError{
			Field:   "gateway.base_url",
			Message: fmt.Sprintf("invalid URL '%s', must be an absolute http(s) URL", c.Gateway.BaseURL),
		})
	}
	if c.Gateway.RequestTimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "gateway.request_timeout_secs",
			Message: "must be 0 (no timeout) or positive",
		})
	}
	if c.Gateway.RateLimitPerSec < 0 {
		errs = append(errs, ValidationError{
			Field:   "gateway.rate_limit_per_sec",
			Message: "must be 0 (unlimited) or positive",
		})
	}
	if c.Media.MaxUploadMB < 0 || c.Media.MaxUploadMB > 100 {
		errs = append(errs, ValidationError{
			Field:   "media.max_upload_mb",
			Message: fmt.Sprintf("%d is out of range (1-100)", c.Media.MaxUploadMB),
		})
	}

	validThemes := map[string]bool{"auto": true, "dark": true, "light": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - MEDCHAT_API_BASE_URL: overrides gateway.base_url
//   - VITE_API_BASE_URL: same, honoured for deployments shared with the web client
//   - MEDCHAT_REQUEST_TIMEOUT: overrides gateway.request_timeout_secs
//   - MEDCHAT_DB_PATH: overrides storage.db_path
//   - MEDCHAT_ENCRYPT_CREDENTIAL: "1"/"true" enables credential sealing
//   - MEDCHAT_RECORD_COMMAND: overrides media.record_command
//   - MEDCHAT_THEME: overrides ui.theme
//   - MEDCHAT_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnvOverrides() {
	if base := os.Getenv("VITE_API_BASE_URL"); base != "" {
		c.Gateway.BaseURL = base
	}
	if base := os.Getenv("MEDCHAT_API_BASE_URL"); base != "" {
		c.Gateway.BaseURL = base
	}

	if timeout := os.Getenv("MEDCHAT_REQUEST_TIMEOUT"); timeout != "" {
		if secs, err := strconv.Atoi(timeout); err == nil {
			c.Gateway.RequestTimeoutSecs = secs
		}
	}

	if path := os.Getenv("MEDCHAT_DB_PATH"); path != "" {
		c.Storage.DBPath = path
	}

	if enc := os.Getenv("MEDCHAT_ENCRYPT_CREDENTIAL"); enc != "" {
		c.Storage.EncryptCredential = enc == "1" || strings.EqualFold(enc, "true")
	}

	if cmd := os.Getenv("MEDCHAT_RECORD_COMMAND"); cmd != "" {
		c.Media.RecordCommand = cmd
	}

	if theme := os.Getenv("MEDCHAT_THEME"); theme != "" {
		c.UI.Theme = theme
	}

	if level := os.Getenv("MEDCHAT_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
}

// =============================================================================
// GET HELPER (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "gateway.base_url").
func (c *Config) Get(key string) (interface{}, error) {
	parts := strings.Split(key, ".")
	if key == "" || len(parts) == 0 {
		return nil, errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		field, ok := fieldByTag(v, part)
		if !ok {
			return nil, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field.Interface(), nil
		}
		if field.Kind() != reflect.Struct {
			return nil, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}

	return nil, fmt.Errorf("invalid key: %s", key)
}

// fieldByTag finds a struct field by its toml tag.
func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("toml") == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}
