// Package config handles user configuration for optchat.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/diogo/optchat/internal/errors"
)

// Config represents the user configuration
type Config struct {
	// ResponseDelayMs is the simulated latency before a canned response
	// replaces the placeholder.
	ResponseDelayMs int `json:"response_delay_ms"`
	// OverlapPolicy decides what happens to input sent while a response is
	// pending: "reject" or "queue".
	OverlapPolicy   string `json:"overlap_policy"`
	TUITheme        string `json:"tui_theme,omitempty"`
	MarkdownStyle   string `json:"markdown_style,omitempty"`
	ScriptPath      string `json:"script_path,omitempty"` // Response script; empty uses the built-in table
	CopyToClipboard bool   `json:"copy_to_clipboard"`
	LogLevel        string `json:"log_level,omitempty"`
	LogFile         string `json:"log_file,omitempty"`
	LogFormat       string `json:"log_format,omitempty"` // "json" or "text"
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		ResponseDelayMs: 1000,
		OverlapPolicy:   "reject",
		TUITheme:        "tokyonight",
		MarkdownStyle:   "dark",
		CopyToClipboard: true,
		LogLevel:        "info",
		LogFormat:       "json",
	}
}

// ResponseDelay returns the response delay as a duration
func (c Config) ResponseDelay() time.Duration {
	return time.Duration(c.ResponseDelayMs) * time.Millisecond
}

// Validate checks value ranges and enumerations
func (c Config) Validate() error {
	if c.ResponseDelayMs < 0 {
		return apperrors.NewConfigError("response_delay_ms", "must not be negative")
	}
	switch strings.ToLower(c.OverlapPolicy) {
	case "", "reject", "queue":
	default:
		return apperrors.NewConfigError("overlap_policy", fmt.Sprintf("unknown policy %q", c.OverlapPolicy))
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "json", "text":
	default:
		return apperrors.NewConfigError("log_format", fmt.Sprintf("unknown format %q", c.LogFormat))
	}
	return nil
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".optchat"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetLogPath returns the log file path from config, or the default under the config dir
func GetLogPath(cfg Config) (string, error) {
	if strings.TrimSpace(cfg.LogFile) != "" {
		return cfg.LogFile, nil
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "logs", "optchat.log"), nil
}

// LoadConfig loads the configuration from disk
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if config doesn't exist
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), err
	}

	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setters maps config keys to functions that parse and apply a value
var setters = map[string]func(*Config, string) error{
	"response_delay_ms": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return apperrors.NewConfigError("response_delay_ms", "must be an integer")
		}
		c.ResponseDelayMs = n
		return nil
	},
	"overlap_policy": func(c *Config, v string) error { c.OverlapPolicy = strings.ToLower(v); return nil },
	"tui_theme":      func(c *Config, v string) error { c.TUITheme = v; return nil },
	"markdown_style": func(c *Config, v string) error { c.MarkdownStyle = v; return nil },
	"script_path":    func(c *Config, v string) error { c.ScriptPath = v; return nil },
	"copy_to_clipboard": func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return apperrors.NewConfigError("copy_to_clipboard", "must be true or false")
		}
		c.CopyToClipboard = b
		return nil
	},
	"log_level":  func(c *Config, v string) error { c.LogLevel = v; return nil },
	"log_file":   func(c *Config, v string) error { c.LogFile = v; return nil },
	"log_format": func(c *Config, v string) error { c.LogFormat = strings.ToLower(v); return nil },
}

// Set applies a string value to the named key and validates the result
func (c *Config) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return apperrors.NewConfigError(key, "unknown key")
	}
	next := *c
	if err := set(&next, value); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// Keys returns the settable configuration keys in sorted order
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
