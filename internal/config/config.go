package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment overrides. Nested keys are
// separated by a double underscore: SLIDEKIT_ENGINE__ENABLE_SEARCH.
const EnvPrefix = "SLIDEKIT_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (SLIDEKIT_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: SLIDEKIT_STORAGE__BACKEND -> storage.backend, etc.
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validBackends = map[StorageBackend]bool{
	BackendSQLite: true,
	BackendMemory: true,
	BackendNone:   true,
}

var validLogModes = map[LogMode]bool{
	LogDevelopment: true,
	LogProduction:  true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Engine.ContainerID == "" {
		return fmt.Errorf("engine.container_id is required")
	}
	if c.Engine.AutoSave && c.Engine.AutoSaveInterval <= 0 {
		return fmt.Errorf("engine.auto_save_interval must be positive when auto_save is on")
	}
	if c.Engine.FreshnessWindow < 0 {
		return fmt.Errorf("engine.freshness_window must be non-negative")
	}
	if c.Engine.SwipeThreshold <= 0 {
		return fmt.Errorf("engine.swipe_threshold must be positive")
	}
	if !validBackends[c.Storage.Backend] {
		return fmt.Errorf("invalid storage.backend %q: must be one of sqlite, memory, none", c.Storage.Backend)
	}
	if c.Storage.Backend == BackendSQLite && c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required for the sqlite backend")
	}
	if c.Storage.Prefix == "" {
		return fmt.Errorf("storage.prefix is required")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Catalog.Pattern == "" {
		return fmt.Errorf("catalog.pattern is required")
	}
	if c.Log.Mode != "" && !validLogModes[c.Log.Mode] {
		return fmt.Errorf("invalid log.mode %q: must be development or production", c.Log.Mode)
	}
	return nil
}
