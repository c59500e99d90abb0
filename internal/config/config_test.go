package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Storage.Backend != BackendSQLite {
		t.Errorf("expected default backend %q, got %q", BackendSQLite, cfg.Storage.Backend)
	}
	if cfg.Engine.AutoSaveInterval != 5*time.Second {
		t.Errorf("expected default auto_save_interval 5s, got %v", cfg.Engine.AutoSaveInterval)
	}
	if cfg.Engine.FreshnessWindow != time.Hour {
		t.Errorf("expected default freshness_window 1h, got %v", cfg.Engine.FreshnessWindow)
	}
	if cfg.Engine.SwipeThreshold != 50 {
		t.Errorf("expected default swipe_threshold 50, got %v", cfg.Engine.SwipeThreshold)
	}
	if !cfg.Engine.EnableKeyboard || !cfg.Engine.EnableTouch || !cfg.Engine.EnableSearch || !cfg.Engine.EnableProgress {
		t.Error("expected engine features enabled by default")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.slidekit.yml")

	original := DefaultConfig()
	original.Engine.DataURL = "https://example.com/m1/l2/slides.json"
	original.Engine.EnableSearch = false
	original.Engine.AutoSaveInterval = 30 * time.Second
	original.Storage.Backend = BackendMemory
	original.Storage.Prefix = "course_"
	original.Server.Port = 9090

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Engine.DataURL != original.Engine.DataURL {
		t.Errorf("data_url: got %q, want %q", loaded.Engine.DataURL, original.Engine.DataURL)
	}
	if loaded.Engine.EnableSearch {
		t.Error("enable_search: got true, want false")
	}
	if loaded.Engine.AutoSaveInterval != original.Engine.AutoSaveInterval {
		t.Errorf("auto_save_interval: got %v, want %v", loaded.Engine.AutoSaveInterval, original.Engine.AutoSaveInterval)
	}
	if loaded.Storage.Backend != BackendMemory {
		t.Errorf("backend: got %q, want %q", loaded.Storage.Backend, BackendMemory)
	}
	if loaded.Storage.Prefix != "course_" {
		t.Errorf("prefix: got %q, want %q", loaded.Storage.Prefix, "course_")
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("port: got %d, want 9090", loaded.Server.Port)
	}
}

func TestLoadDurationString(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slidekit.yml")
	data := "engine:\n  auto_save_interval: 10s\n  freshness_window: 30m\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Engine.AutoSaveInterval != 10*time.Second {
		t.Errorf("auto_save_interval = %v, want 10s", cfg.Engine.AutoSaveInterval)
	}
	if cfg.Engine.FreshnessWindow != 30*time.Minute {
		t.Errorf("freshness_window = %v, want 30m", cfg.Engine.FreshnessWindow)
	}
	// Keys absent from the file keep their defaults.
	if !cfg.Engine.EnableKeyboard {
		t.Error("enable_keyboard default lost")
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Storage.Backend != BackendSQLite {
		t.Errorf("expected default backend, got %q", cfg.Storage.Backend)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	if err := DefaultConfig().Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("SLIDEKIT_STORAGE__BACKEND", "memory")
	t.Setenv("SLIDEKIT_ENGINE__ENABLE_TOUCH", "false")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Storage.Backend != BackendMemory {
		t.Errorf("env override failed: got %q, want %q", loaded.Storage.Backend, BackendMemory)
	}
	if loaded.Engine.EnableTouch {
		t.Error("env override for enable_touch failed")
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"SLIDEKIT_ENGINE__DATA_URL", "engine.data_url"},
		{"SLIDEKIT_LOG__MODE", "log.mode"},
		{"SLIDEKIT_STORAGE__PREFIX", "storage.prefix"},
	}
	for _, tt := range tests {
		if got := envKey(tt.input); got != tt.want {
			t.Errorf("envKey(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidateValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty container", func(c *Config) { c.Engine.ContainerID = "" }},
		{"zero auto-save interval", func(c *Config) { c.Engine.AutoSaveInterval = 0 }},
		{"negative freshness", func(c *Config) { c.Engine.FreshnessWindow = -time.Second }},
		{"zero swipe threshold", func(c *Config) { c.Engine.SwipeThreshold = 0 }},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "redis" }},
		{"sqlite without path", func(c *Config) { c.Storage.Path = "" }},
		{"empty prefix", func(c *Config) { c.Storage.Prefix = "" }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"empty pattern", func(c *Config) { c.Catalog.Pattern = "" }},
		{"unknown log mode", func(c *Config) { c.Log.Mode = "verbose" }},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestValidateAutoSaveOff(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.AutoSave = false
	cfg.Engine.AutoSaveInterval = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("interval should not matter with auto_save off: %v", err)
	}
}

func TestValidatePositiveInt(t *testing.T) {
	if err := validatePositiveInt("5"); err != nil {
		t.Errorf("5: unexpected error %v", err)
	}
	for _, in := range []string{"0", "-1", "abc", ""} {
		if err := validatePositiveInt(in); err == nil {
			t.Errorf("%q: expected error", in)
		}
	}
}
