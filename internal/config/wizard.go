package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to slidekit! Let's configure your course.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Storage backend.
	backendPrompt := promptui.Select{
		Label: "Where should viewing progress be kept",
		Items: []string{
			"sqlite — persisted across sessions",
			"memory — forgotten on exit",
			"none   — progress disabled",
		},
	}
	backendIdx, _, err := backendPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("backend selection: %w", err)
	}
	cfg.Storage.Backend = []StorageBackend{BackendSQLite, BackendMemory, BackendNone}[backendIdx]

	if cfg.Storage.Backend == BackendSQLite {
		pathPrompt := promptui.Prompt{
			Label:   "Progress database path",
			Default: cfg.Storage.Path,
		}
		if cfg.Storage.Path, err = pathPrompt.Run(); err != nil {
			return nil, fmt.Errorf("database path: %w", err)
		}
	}

	// 2. Course root.
	rootPrompt := promptui.Prompt{
		Label:   "Course root directory",
		Default: cfg.Catalog.Root,
	}
	if cfg.Catalog.Root, err = rootPrompt.Run(); err != nil {
		return nil, fmt.Errorf("course root: %w", err)
	}
	cfg.Server.Root = cfg.Catalog.Root

	// 3. Auto-save interval.
	intervalPrompt := promptui.Prompt{
		Label:    "Auto-save interval in seconds",
		Default:  strconv.Itoa(int(cfg.Engine.AutoSaveInterval / time.Second)),
		Validate: validatePositiveInt,
	}
	secs, err := intervalPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("auto-save interval: %w", err)
	}
	n, _ := strconv.Atoi(secs)
	cfg.Engine.AutoSaveInterval = time.Duration(n) * time.Second

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("\nConfiguration saved to %s\n", path)

	return cfg, nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("not a number")
	}
	if n <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}
