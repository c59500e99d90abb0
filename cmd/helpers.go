package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/coursekit/slidekit/internal/catalog"
	"github.com/coursekit/slidekit/internal/config"
	"github.com/coursekit/slidekit/internal/db"
	"github.com/coursekit/slidekit/internal/deck"
	"github.com/coursekit/slidekit/internal/logging"
	"github.com/coursekit/slidekit/internal/storage"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `slidekit init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.Log, verbose)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return logger, nil
}

// openStore builds the Progress Store for the configured backend. The
// returned close function is never nil.
func openStore(cfg *config.Config, logger *zap.Logger) (*storage.Store, func(), error) {
	var (
		backend storage.Backend
		closeFn = func() {}
	)
	switch cfg.Storage.Backend {
	case config.BackendSQLite, "":
		database, err := db.Open(cfg.Storage.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening progress database: %w", err)
		}
		backend = storage.NewSQLiteBackend(database)
		closeFn = func() { database.Close() }
	case config.BackendMemory:
		backend = storage.NewMemoryBackend()
	case config.BackendNone:
		backend = storage.Unsupported()
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	store := storage.NewStore(backend,
		storage.WithPrefix(cfg.Storage.Prefix),
		storage.WithLogger(logger),
	)
	store.Init()
	return store, closeFn, nil
}

// deckSource resolves the deck to open. With module and lecture arguments
// the deck is looked up in the catalog; otherwise the configured data_url
// (or the --deck flag) is used as is.
func deckSource(cfg *config.Config, args []string, locator string) (*deck.Loader, string, error) {
	switch {
	case len(args) == 2:
		entries, err := catalog.Discover(cfg.Catalog.Root, cfg.Catalog.Pattern)
		if err != nil {
			return nil, "", err
		}
		entry, ok := catalog.Find(entries, args[0], args[1])
		if !ok {
			return nil, "", fmt.Errorf("no deck for module %s lecture %s under %s", args[0], args[1], cfg.Catalog.Root)
		}
		return deck.NewLoader(cfg.Catalog.Root, nil), entry.Path, nil
	case len(args) != 0:
		return nil, "", fmt.Errorf("expected <module> <lecture>, got %d arguments", len(args))
	case locator != "":
		return deck.NewLoader("", nil), locator, nil
	default:
		return deck.NewLoader("", nil), cfg.Engine.DataURL, nil
	}
}
