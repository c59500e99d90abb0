package config

import "time"

// StorageBackend selects where the Progress Store keeps its entries.
type StorageBackend string

const (
	BackendSQLite StorageBackend = "sqlite"
	BackendMemory StorageBackend = "memory"
	BackendNone   StorageBackend = "none"
)

// LogMode selects the zap configuration.
type LogMode string

const (
	LogDevelopment LogMode = "development"
	LogProduction  LogMode = "production"
)

// Config is the top-level slidekit configuration, corresponding to .slidekit.yml.
type Config struct {
	Engine  EngineConfig  `yaml:"engine" koanf:"engine"`
	Storage StorageConfig `yaml:"storage" koanf:"storage"`
	Server  ServerConfig  `yaml:"server" koanf:"server"`
	Catalog CatalogConfig `yaml:"catalog" koanf:"catalog"`
	Log     LogConfig     `yaml:"log" koanf:"log"`
}

// EngineConfig enumerates the options recognized by the slide engine.
type EngineConfig struct {
	ContainerID      string        `yaml:"container_id" koanf:"container_id"`
	DataURL          string        `yaml:"data_url" koanf:"data_url"`
	LectureKey       string        `yaml:"lecture_key" koanf:"lecture_key"`
	EnableKeyboard   bool          `yaml:"enable_keyboard" koanf:"enable_keyboard"`
	EnableTouch      bool          `yaml:"enable_touch" koanf:"enable_touch"`
	EnableSearch     bool          `yaml:"enable_search" koanf:"enable_search"`
	EnableProgress   bool          `yaml:"enable_progress" koanf:"enable_progress"`
	EnableQuiz       bool          `yaml:"enable_quiz" koanf:"enable_quiz"`
	EnablePrint      bool          `yaml:"enable_print" koanf:"enable_print"`
	AutoSave         bool          `yaml:"auto_save" koanf:"auto_save"`
	AutoSaveInterval time.Duration `yaml:"auto_save_interval" koanf:"auto_save_interval"`
	FreshnessWindow  time.Duration `yaml:"freshness_window" koanf:"freshness_window"`
	SwipeThreshold   float64       `yaml:"swipe_threshold" koanf:"swipe_threshold"`
}

// StorageConfig controls the Progress Store backend.
type StorageConfig struct {
	Backend StorageBackend `yaml:"backend" koanf:"backend"`
	Path    string         `yaml:"path" koanf:"path"`
	Prefix  string         `yaml:"prefix" koanf:"prefix"`
}

// ServerConfig holds settings for the HTTP host.
type ServerConfig struct {
	Port            int    `yaml:"port" koanf:"port"`
	Root            string `yaml:"root" koanf:"root"`
	AllowAllOrigins bool   `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// CatalogConfig controls deck discovery under a course root.
type CatalogConfig struct {
	Root    string `yaml:"root" koanf:"root"`
	Pattern string `yaml:"pattern" koanf:"pattern"`
}

// LogConfig holds logger settings. File is optional; when set, JSON logs
// are also written there with rotation.
type LogConfig struct {
	Mode LogMode `yaml:"mode" koanf:"mode"`
	File string  `yaml:"file" koanf:"file"`
}
