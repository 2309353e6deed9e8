package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/diogo/optchat/internal/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ResponseDelayMs != 1000 {
		t.Errorf("Expected delay 1000ms, got %d", cfg.ResponseDelayMs)
	}
	if cfg.ResponseDelay() != time.Second {
		t.Errorf("Expected 1s, got %v", cfg.ResponseDelay())
	}
	if cfg.OverlapPolicy != "reject" {
		t.Errorf("Expected reject policy, got %s", cfg.OverlapPolicy)
	}
	if cfg.TUITheme != "tokyonight" {
		t.Errorf("Expected tokyonight theme, got %s", cfg.TUITheme)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"zero delay", func(c *Config) { c.ResponseDelayMs = 0 }, false},
		{"negative delay", func(c *Config) { c.ResponseDelayMs = -1 }, true},
		{"queue policy", func(c *Config) { c.OverlapPolicy = "queue" }, false},
		{"empty policy", func(c *Config) { c.OverlapPolicy = "" }, false},
		{"unknown policy", func(c *Config) { c.OverlapPolicy = "overlap" }, true},
		{"text logs", func(c *Config) { c.LogFormat = "text" }, false},
		{"unknown log format", func(c *Config) { c.LogFormat = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !apperrors.IsConfigError(err) {
				t.Errorf("expected config error, got %v", err)
			}
		})
	}
}

func TestGetConfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() returned error: %v", err)
	}
	want := filepath.Join(home, ".optchat", "config.json")
	if path != want {
		t.Errorf("GetConfigPath() = %s, want %s", path, want)
	}
}

func TestGetLogPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := GetLogPath(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(home, ".optchat", "logs", "optchat.log") {
		t.Errorf("unexpected default log path %s", path)
	}

	cfg := DefaultConfig()
	cfg.LogFile = "/tmp/custom.log"
	path, _ = GetLogPath(cfg)
	if path != "/tmp/custom.log" {
		t.Errorf("expected custom path, got %s", path)
	}
}

func TestLoadConfig_FileNotExists(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := DefaultConfig()
	cfg.ResponseDelayMs = 250
	cfg.OverlapPolicy = "queue"
	cfg.ScriptPath = "/tmp/script.json"

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	info, err := os.Stat(filepath.Join(home, ".optchat", "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected 0600 permissions, got %o", info.Mode().Perm())
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded != cfg {
		t.Errorf("loaded %+v, want %+v", loaded, cfg)
	}
}

func TestSaveConfig_RejectsInvalid(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.ResponseDelayMs = -5
	if err := SaveConfig(cfg); err == nil {
		t.Error("expected error for invalid config")
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".optchat")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	data, _ := json.Marshal(map[string]any{"tui_theme": "nord"})
	if err := os.WriteFile(filepath.Join(dir, "config.json"), data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.TUITheme != "nord" {
		t.Errorf("expected nord, got %s", cfg.TUITheme)
	}
	if cfg.ResponseDelayMs != 1000 {
		t.Errorf("expected default delay, got %d", cfg.ResponseDelayMs)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed json", "{not json"},
		{"invalid value", `{"overlap_policy": "sometimes"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			t.Setenv("HOME", home)
			dir := filepath.Join(home, ".optchat")
			os.MkdirAll(dir, 0o700)
			os.WriteFile(filepath.Join(dir, "config.json"), []byte(tt.content), 0o600)

			cfg, err := LoadConfig()
			if err == nil {
				t.Error("expected error")
			}
			if cfg != DefaultConfig() {
				t.Error("expected defaults on error")
			}
		})
	}
}

func TestConfigSet(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		wantErr bool
		check   func(Config) bool
	}{
		{"response_delay_ms", "500", false, func(c Config) bool { return c.ResponseDelayMs == 500 }},
		{"response_delay_ms", "soon", true, nil},
		{"response_delay_ms", "-1", true, nil},
		{"overlap_policy", "QUEUE", false, func(c Config) bool { return c.OverlapPolicy == "queue" }},
		{"overlap_policy", "maybe", true, nil},
		{"copy_to_clipboard", "false", false, func(c Config) bool { return !c.CopyToClipboard }},
		{"copy_to_clipboard", "nah", true, nil},
		{"tui_theme", "nord", false, func(c Config) bool { return c.TUITheme == "nord" }},
		{"script_path", "/x.json", false, func(c Config) bool { return c.ScriptPath == "/x.json" }},
		{"log_format", "TEXT", false, func(c Config) bool { return c.LogFormat == "text" }},
		{"nope", "x", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := DefaultConfig()
			err := cfg.Set(tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if cfg != DefaultConfig() {
					t.Error("failed Set should leave config unchanged")
				}
				return
			}
			if !tt.check(cfg) {
				t.Errorf("value not applied: %+v", cfg)
			}
		})
	}
}

func TestKeys(t *testing.T) {
	keys := Keys()
	if len(keys) != len(setters) {
		t.Errorf("expected %d keys, got %d", len(setters), len(keys))
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			t.Errorf("keys not sorted: %v", keys)
		}
	}
}
