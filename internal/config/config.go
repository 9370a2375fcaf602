// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/tutor/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete tutor configuration.
type Config struct {
	Inference InferenceConfig `toml:"inference"`
	UI        UIConfig        `toml:"ui"`
	Server    ServerConfig    `toml:"server"`
	Log       LogConfig       `toml:"log"`

	// undecoded holds keys present in the file that map to no field.
	undecoded []string
}

// InferenceConfig points at the Ollama generate endpoint.
type InferenceConfig struct {
	// Endpoint is the full generate URL
	Endpoint string `toml:"endpoint"`
	// Model is the Ollama model name
	Model string `toml:"model"`
	// TimeoutSecs bounds each request
	TimeoutSecs int `toml:"timeout_secs"`
}

// Timeout returns TimeoutSecs as a duration.
func (c InferenceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// UIConfig controls the presentation front-end.
type UIConfig struct {
	// Mode is the front-end started without a subcommand: "tui", "repl" or "web"
	Mode string `toml:"mode"`
	// Markdown renders assistant replies with glamour
	Markdown bool `toml:"markdown"`
	// HelpExpanded opens the instructions panel at startup
	HelpExpanded bool `toml:"help_expanded"`
}

// ServerConfig configures `tutor serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// LogConfig configures the slog logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `toml:"level"`
	// Format is "text" or "json"
	Format string `toml:"format"`
	// File is a path, "-" for stderr, or "off"
	File string `toml:"file"`
}

// UI modes.
const (
	ModeTUI  = "tui"
	ModeREPL = "repl"
	ModeWeb  = "web"
)

const defaultOllamaPort = "11434"

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Inference: InferenceConfig{
			Endpoint:    "http://localhost:11434/api/generate",
			Model:       "llama3.2",
			TimeoutSecs: 60,
		},
		UI: UIConfig{
			Mode:         ModeTUI,
			Markdown:     true,
			HelpExpanded: false,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8501",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			File:   "~/.tutor/tutor.log",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the tutor configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".tutor"), nil
}

// ConfigPath returns the path to the default TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// LoadDotEnv loads KEY=VALUE pairs from path into the environment.
// Variables that are already set keep their value. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads the config file at path, or the default path when path is
// empty, then applies environment overrides and validates the result.
// A missing default file yields the defaults. A missing explicit path is
// an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file without applying
// environment overrides.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes path over cfg. Keys absent from the file keep their
// current value.
func LoadTOML(cfg *Config, path string) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	for _, key := range meta.Undecoded() {
		cfg.undecoded = append(cfg.undecoded, key.String())
	}
	fillDefaults(cfg)
	return nil
}

// fillDefaults replaces values a file set to empty with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Inference.Endpoint == "" {
		cfg.Inference.Endpoint = defaults.Inference.Endpoint
	}
	if cfg.Inference.Model == "" {
		cfg.Inference.Model = defaults.Inference.Model
	}
	if cfg.Inference.TimeoutSecs == 0 {
		cfg.Inference.TimeoutSecs = defaults.Inference.TimeoutSecs
	}
	if cfg.UI.Mode == "" {
		cfg.UI.Mode = defaults.UI.Mode
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaults.Server.Addr
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = defaults.Log.Format
	}
	if cfg.Log.File == "" {
		cfg.Log.File = defaults.Log.File
	}
}

// UndecodedKeys returns keys in the loaded file that matched no setting.
func (c *Config) UndecodedKeys() []string {
	return c.undecoded
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// SaveTOML writes the configuration to path atomically.
func SaveTOML(cfg *Config, path string) error {
	data, err := cfg.Encode()
	if err != nil {
		return err
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Encode renders the configuration as TOML with a header comment.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# tutor configuration file\n")
	buf.WriteString("# Precedence: defaults < this file < environment < flags\n\n")

	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
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

// Validate checks every field and returns ValidateErrors, or nil.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.Inference.Endpoint); err != nil {
		errs = append(errs, ValidationError{
			Field:   "inference.endpoint",
			Message: fmt.Sprintf("invalid URL: %v", err),
		})
	} else if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "inference.endpoint",
			Message: fmt.Sprintf("'%s' must be an absolute http(s) URL", c.Inference.Endpoint),
		})
	}

	if strings.TrimSpace(c.Inference.Model) == "" {
		errs = append(errs, ValidationError{Field: "inference.model", Message: "must not be empty"})
	}

	if c.Inference.TimeoutSecs < 1 || c.Inference.TimeoutSecs > 3600 {
		errs = append(errs, ValidationError{
			Field:   "inference.timeout_secs",
			Message: fmt.Sprintf("%d out of range, must be between 1 and 3600", c.Inference.TimeoutSecs),
		})
	}

	switch strings.ToLower(c.UI.Mode) {
	case ModeTUI, ModeREPL, ModeWeb:
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.mode",
			Message: fmt.Sprintf("invalid mode '%s', must be one of: tui, repl, web", c.UI.Mode),
		})
	}

	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		errs = append(errs, ValidationError{
			Field:   "server.addr",
			Message: fmt.Sprintf("invalid listen address '%s': %v", c.Server.Addr, err),
		})
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, ValidationError{
			Field:   "log.format",
			Message: fmt.Sprintf("invalid format '%s', must be text or json", c.Log.Format),
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

// ApplyEnvOverrides applies TUTOR_* and OLLAMA_HOST variables.
// TUTOR_ENDPOINT wins over OLLAMA_HOST when both are set.
func (c *Config) ApplyEnvOverrides() {
	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		if endpoint, err := rewriteHost(c.Inference.Endpoint, host); err == nil {
			c.Inference.Endpoint = endpoint
		}
	}
	if endpoint := os.Getenv("TUTOR_ENDPOINT"); endpoint != "" {
		c.Inference.Endpoint = endpoint
	}
	if model := os.Getenv("TUTOR_MODEL"); model != "" {
		c.Inference.Model = model
	}
	if secs := os.Getenv("TUTOR_TIMEOUT_SECS"); secs != "" {
		if n, err := strconv.Atoi(secs); err == nil {
			c.Inference.TimeoutSecs = n
		}
	}
	if mode := os.Getenv("TUTOR_MODE"); mode != "" {
		c.UI.Mode = strings.ToLower(mode)
	}
	if addr := os.Getenv("TUTOR_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if level := os.Getenv("TUTOR_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if file := os.Getenv("TUTOR_LOG_FILE"); file != "" {
		c.Log.File = file
	}
}

// rewriteHost replaces scheme and host of endpoint with those in host.
// host follows the OLLAMA_HOST forms: "host", "host:port" or "scheme://host:port".
func rewriteHost(endpoint, host string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}

	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	h, err := url.Parse(host)
	if err != nil {
		return "", err
	}
	if h.Host == "" {
		return "", fmt.Errorf("no host in %q", host)
	}

	u.Scheme = h.Scheme
	u.Host = h.Host
	if h.Port() == "" {
		u.Host = net.JoinHostPort(h.Hostname(), defaultOllamaPort)
	}
	return u.String(), nil
}
