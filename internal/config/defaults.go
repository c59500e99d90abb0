package config

import "time"

const (
	// DefaultAutoSaveInterval matches the cadence of the periodic progress save.
	DefaultAutoSaveInterval = 5 * time.Second
	// DefaultFreshnessWindow is the maximum age of a record still offered for resume.
	DefaultFreshnessWindow = time.Hour
	// DefaultSwipeThreshold is the minimum horizontal travel of a swipe, in CSS pixels.
	DefaultSwipeThreshold = 50
	// DefaultPrefix namespaces every Progress Store key.
	DefaultPrefix = "slidekit_"
	// DefaultDeckPattern matches per-lecture deck files under the catalog root.
	DefaultDeckPattern = "modules/*/lecture*/slides.{json,yaml,yml,md}"
)

// DefaultConfig returns a Config with sensible defaults. Every engine
// feature is on unless switched off explicitly.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			ContainerID:      "slideContainer",
			DataURL:          "./slides.json",
			EnableKeyboard:   true,
			EnableTouch:      true,
			EnableSearch:     true,
			EnableProgress:   true,
			EnableQuiz:       true,
			EnablePrint:      true,
			AutoSave:         true,
			AutoSaveInterval: DefaultAutoSaveInterval,
			FreshnessWindow:  DefaultFreshnessWindow,
			SwipeThreshold:   DefaultSwipeThreshold,
		},
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Path:    ".slidekit/progress.db",
			Prefix:  DefaultPrefix,
		},
		Server: ServerConfig{
			Port: 8080,
			Root: ".",
		},
		Catalog: CatalogConfig{
			Root:    ".",
			Pattern: DefaultDeckPattern,
		},
		Log: LogConfig{
			Mode: LogDevelopment,
		},
	}
}
