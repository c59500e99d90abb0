// Package server is the HTTP host: it serves the course site statically
// and exposes decks, search and progress persistence as a JSON API for
// browser viewers. It does no slide rendering.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/coursekit/slidekit/internal/config"
	"github.com/coursekit/slidekit/internal/deck"
	"github.com/coursekit/slidekit/internal/logging"
	"github.com/coursekit/slidekit/internal/storage"
)

// Config holds server configuration.
type Config struct {
	Port        int
	Root        string // course site root, served statically
	CatalogRoot string // where decks are discovered; defaults to Root
	DeckPattern string // doublestar pattern locating decks under CatalogRoot
	AllowAll    bool   // allow all CORS origins (dev mode)
	// Viewer holds the engine options published to browser viewers.
	Viewer config.EngineConfig
}

// Server hosts the course site and its API.
type Server struct {
	cfg        Config
	store      *storage.Store
	loader     *deck.Loader
	log        *zap.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server. Decks are loaded from cfg.CatalogRoot.
func New(cfg Config, store *storage.Store, logger *zap.Logger) *Server {
	if cfg.CatalogRoot == "" {
		cfg.CatalogRoot = cfg.Root
	}
	s := &Server{
		cfg:    cfg,
		store:  store,
		loader: deck.NewLoader(cfg.CatalogRoot, nil),
		log:    logging.OrNop(logger),
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/config", handleViewerConfig(s.cfg.Viewer))
	registerDeckRoutes(r, s.cfg.CatalogRoot, s.cfg.DeckPattern, s.loader)
	registerProgressRoutes(r, s.store)

	if s.cfg.Root != "" {
		r.Handle("/*", hideDotFiles(http.FileServer(http.Dir(s.cfg.Root))))
	}
	return r
}

// hideDotFiles answers 404 for any path with a dot-prefixed segment.
func hideDotFiles(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, seg := range strings.Split(r.URL.Path, "/") {
			if strings.HasPrefix(seg, ".") {
				http.NotFound(w, r)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("elapsed", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.log.Info("slidekit server listening", zap.String("addr", addr), zap.String("root", s.cfg.Root))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
