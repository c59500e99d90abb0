package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coursekit/slidekit/internal/catalog"
	"github.com/coursekit/slidekit/internal/config"
	"github.com/coursekit/slidekit/internal/deck"
	"github.com/coursekit/slidekit/internal/search"
	"github.com/coursekit/slidekit/internal/storage"
)

// viewerConfig is the subset of engine options a browser viewer applies.
type viewerConfig struct {
	ContainerID        string  `json:"containerId"`
	EnableKeyboard     bool    `json:"enableKeyboard"`
	EnableTouch        bool    `json:"enableTouch"`
	EnableSearch       bool    `json:"enableSearch"`
	EnableProgress     bool    `json:"enableProgress"`
	EnableQuiz         bool    `json:"enableQuiz"`
	EnablePrint        bool    `json:"enablePrint"`
	AutoSave           bool    `json:"autoSave"`
	AutoSaveIntervalMs int64   `json:"autoSaveIntervalMs"`
	FreshnessWindowMs  int64   `json:"freshnessWindowMs"`
	SwipeThreshold     float64 `json:"swipeThreshold"`
}

func handleViewerConfig(cfg config.EngineConfig) http.HandlerFunc {
	vc := viewerConfig{
		ContainerID:        cfg.ContainerID,
		EnableKeyboard:     cfg.EnableKeyboard,
		EnableTouch:        cfg.EnableTouch,
		EnableSearch:       cfg.EnableSearch,
		EnableProgress:     cfg.EnableProgress,
		EnableQuiz:         cfg.EnableQuiz,
		EnablePrint:        cfg.EnablePrint,
		AutoSave:           cfg.AutoSave,
		AutoSaveIntervalMs: cfg.AutoSaveInterval.Milliseconds(),
		FreshnessWindowMs:  cfg.FreshnessWindow.Milliseconds(),
		SwipeThreshold:     cfg.SwipeThreshold,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, vc)
	}
}

func registerDeckRoutes(r chi.Router, root, pattern string, loader *deck.Loader) {
	r.Route("/api/decks", func(r chi.Router) {
		r.Get("/", handleListDecks(root, pattern))
		r.Get("/{module}/{lecture}", handleGetDeck(root, pattern, loader))
		r.Get("/{module}/{lecture}/search", handleSearchDeck(root, pattern, loader))
	})
}

func registerProgressRoutes(r chi.Router, store *storage.Store) {
	r.Route("/api/progress", func(r chi.Router) {
		r.Get("/", handleCourseProgress(store))
		r.Get("/modules/{module}", handleModuleProgress(store))
		r.Get("/{module}/{lecture}", handleGetProgress(store))
		r.Put("/{module}/{lecture}", handlePutProgress(store))
		r.Delete("/{module}/{lecture}", handleDeleteProgress(store))
	})
}

func handleListDecks(root, pattern string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := catalog.Discover(root, pattern)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if entries == nil {
			entries = []catalog.Entry{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

// loadDeck resolves a lecture through the catalog and loads it, writing
// the error response itself on failure.
func loadDeck(w http.ResponseWriter, r *http.Request, root, pattern string, loader *deck.Loader) (*deck.Deck, bool) {
	entries, err := catalog.Discover(root, pattern)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	entry, ok := catalog.Find(entries, chi.URLParam(r, "module"), chi.URLParam(r, "lecture"))
	if !ok {
		http.Error(w, "deck not found", http.StatusNotFound)
		return nil, false
	}

	d, err := loader.Load(r.Context(), entry.Path)
	if err != nil {
		var de *deck.DataError
		status := http.StatusInternalServerError
		if errors.As(err, &de) {
			switch de.Reason {
			case deck.ReasonNotFound:
				status = http.StatusNotFound
			case deck.ReasonMalformed:
				status = http.StatusUnprocessableEntity
			case deck.ReasonBadStatus:
				status = http.StatusBadGateway
			}
		}
		http.Error(w, err.Error(), status)
		return nil, false
	}
	return d, true
}

func handleGetDeck(root, pattern string, loader *deck.Loader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := loadDeck(w, r, root, pattern, loader)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}

func handleSearchDeck(root, pattern string, loader *deck.Loader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := loadDeck(w, r, root, pattern, loader)
		if !ok {
			return
		}
		results := search.Build(d).Query(r.URL.Query().Get("q"))
		if results == nil {
			results = []search.Result{}
		}
		writeJSON(w, http.StatusOK, results)
	}
}

func handleCourseProgress(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"course": store.GetCourseProgress(),
			"stats":  store.Stats(),
		})
	}
}

func handleModuleProgress(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records := store.GetModuleProgress(chi.URLParam(r, "module"))
		if records == nil {
			records = []storage.ProgressRecord{}
		}
		writeJSON(w, http.StatusOK, records)
	}
}

func handleGetProgress(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, store.GetLectureProgress(chi.URLParam(r, "module"), chi.URLParam(r, "lecture")))
	}
}

type progressUpdate struct {
	CurrentSlide int `json:"currentSlide"`
	TotalSlides  int `json:"totalSlides"`
}

func handlePutProgress(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req progressUpdate
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		if req.TotalSlides <= 0 || req.CurrentSlide < 0 || req.CurrentSlide >= req.TotalSlides {
			http.Error(w, "currentSlide must be within [0, totalSlides)", http.StatusBadRequest)
			return
		}

		moduleID, lectureID := chi.URLParam(r, "module"), chi.URLParam(r, "lecture")
		if !store.SaveLectureProgress(moduleID, lectureID, req.CurrentSlide, req.TotalSlides) {
			http.Error(w, "progress storage unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, store.GetLectureProgress(moduleID, lectureID))
	}
}

func handleDeleteProgress(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !store.RemoveItem(storage.LectureKey(chi.URLParam(r, "module"), chi.URLParam(r, "lecture"))) {
			http.Error(w, "progress storage unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
