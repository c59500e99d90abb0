package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/coursekit/slidekit/internal/server"
)

var (
	servePort int
	serveDev  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the course site with the deck and progress API",
	Long: `Starts an HTTP server that serves the course root statically and exposes
the deck catalog, deck search and lecture progress as a JSON API for
browser viewers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		store, closeStore, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}
		srv := server.New(server.Config{
			Port:        port,
			Root:        cfg.Server.Root,
			CatalogRoot: cfg.Catalog.Root,
			DeckPattern: cfg.Catalog.Pattern,
			AllowAll:    cfg.Server.AllowAllOrigins || serveDev,
			Viewer:      cfg.Engine,
		}, store, logger)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("shutdown", zap.Error(err))
			}
		}()

		fmt.Fprintf(os.Stderr, "slidekit server %s starting on port %d\n", Version, port)
		fmt.Fprintf(os.Stderr, "  Root: %s\n", cfg.Server.Root)
		fmt.Fprintf(os.Stderr, "  Decks: %s\n", cfg.Catalog.Root)
		fmt.Fprintf(os.Stderr, "  Progress: %s (%s)\n", cfg.Storage.Backend, cfg.Storage.Path)

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on (overrides server.port)")
	serveCmd.Flags().BoolVar(&serveDev, "dev", false, "allow all CORS origins")
	rootCmd.AddCommand(serveCmd)
}
