package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/coursekit/slidekit/internal/config"
	"github.com/coursekit/slidekit/internal/db"
	"github.com/coursekit/slidekit/internal/search"
	"github.com/coursekit/slidekit/internal/storage"
)

func newTestServer(t *testing.T, allowAll bool) *Server {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	root := t.TempDir()
	write := func(rel, content string) {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("index.html", "<h1>Course</h1>")
	write("modules/module1/lecture1/slides.json", `{"metadata":{"module":1,"lecture":1,"title":"Intro"},"slides":[
		{"id":1,"type":"title","title":"Intro"},
		{"id":2,"type":"content","title":"Pixels","content":"<p>LSB hides bits</p>"}]}`)
	write("modules/module1/lecture2/slides.json", `{"slides": "broken"}`)

	store := storage.NewStore(storage.NewSQLiteBackend(database))
	return New(Config{Root: root, DeckPattern: config.DefaultDeckPattern, AllowAll: allowAll}, store, nil)
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t, false)
	w := do(t, srv, "GET", "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := newTestServer(t, true)

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestStaticFiles(t *testing.T) {
	srv := newTestServer(t, false)
	w := do(t, srv, "GET", "/index.html", "")
	if w.Code != http.StatusOK && w.Code != http.StatusMovedPermanently {
		t.Fatalf("expected index to be served, got %d", w.Code)
	}
	w = do(t, srv, "GET", "/modules/module1/lecture1/slides.json", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Pixels") {
		t.Errorf("deck file not served: %d %s", w.Code, w.Body.String())
	}
}

func TestListDecks(t *testing.T) {
	srv := newTestServer(t, false)
	w := do(t, srv, "GET", "/api/decks", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var entries []map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &entries); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(entries) != 2 || entries[0]["lecture"] != "1" || entries[1]["lecture"] != "2" {
		t.Errorf("entries = %v", entries)
	}
}

func TestGetDeck(t *testing.T) {
	srv := newTestServer(t, false)

	w := do(t, srv, "GET", "/api/decks/1/1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Metadata struct {
			Module string `json:"module"`
			Title  string `json:"title"`
		} `json:"metadata"`
		Slides []map[string]any `json:"slides"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Metadata.Module != "1" || len(body.Slides) != 2 || body.Slides[1]["type"] != "content" {
		t.Errorf("deck = %+v", body)
	}

	if w := do(t, srv, "GET", "/api/decks/1/2", ""); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("malformed deck status = %d", w.Code)
	}
	if w := do(t, srv, "GET", "/api/decks/9/9", ""); w.Code != http.StatusNotFound {
		t.Errorf("missing deck status = %d", w.Code)
	}
}

func TestSearchDeck(t *testing.T) {
	srv := newTestServer(t, false)
	w := do(t, srv, "GET", "/api/decks/1/1/search?q=BITS", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var results []search.Result
	if err := json.Unmarshal(w.Body.Bytes(), &results); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(results) != 1 || results[0].Index != 1 || !strings.Contains(results[0].Excerpt, "<mark>bits</mark>") {
		t.Errorf("results = %+v", results)
	}

	w = do(t, srv, "GET", "/api/decks/1/1/search?q=", "")
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("empty query body = %q", w.Body.String())
	}
}

func TestProgressLifecycle(t *testing.T) {
	srv := newTestServer(t, false)

	w := do(t, srv, "GET", "/api/progress/1/1", "")
	var rec storage.ProgressRecord
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.ModuleID != "1" || rec.LastAccessed != 0 {
		t.Errorf("initial record = %+v", rec)
	}

	w = do(t, srv, "PUT", "/api/progress/1/1", `{"currentSlide":1,"totalSlides":2}`)
	if w.Code != http.StatusOK {
		t.Fatalf("PUT status = %d: %s", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.CurrentSlide != 1 || rec.Percentage != 50 || !rec.Completed {
		t.Errorf("saved record = %+v", rec)
	}

	for _, bad := range []string{`{`, `{"currentSlide":2,"totalSlides":2}`, `{"currentSlide":0,"totalSlides":0}`} {
		if w := do(t, srv, "PUT", "/api/progress/1/1", bad); w.Code != http.StatusBadRequest {
			t.Errorf("PUT %s status = %d, want 400", bad, w.Code)
		}
	}

	do(t, srv, "PUT", "/api/progress/1/2", `{"currentSlide":0,"totalSlides":4}`)
	w = do(t, srv, "GET", "/api/progress/modules/1", "")
	var records []storage.ProgressRecord
	if err := json.Unmarshal(w.Body.Bytes(), &records); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(records) != 2 || records[0].LectureID != "1" {
		t.Errorf("module records = %+v", records)
	}

	w = do(t, srv, "GET", "/api/progress", "")
	var course struct {
		Course storage.CourseProgress `json:"course"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &course); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if course.Course.Total != 2 || course.Course.Completed != 1 {
		t.Errorf("course = %+v", course.Course)
	}

	if w := do(t, srv, "DELETE", "/api/progress/1/1", ""); w.Code != http.StatusNoContent {
		t.Errorf("DELETE status = %d", w.Code)
	}
	w = do(t, srv, "GET", "/api/progress/1/1", "")
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.LastAccessed != 0 {
		t.Errorf("record after delete = %+v", rec)
	}
}

func TestDotFilesHidden(t *testing.T) {
	srv := newTestServer(t, false)
	root := srv.cfg.Root
	if err := os.MkdirAll(filepath.Join(root, ".slidekit"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ".slidekit", "progress.db"), []byte("SQLite format 3"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ".slidekit.yml"), []byte("storage:\n  backend: sqlite\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{"/.slidekit/progress.db", "/.slidekit.yml", "/modules/.hidden", "/.slidekit/"} {
		w := do(t, srv, "GET", path, "")
		if w.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, w.Code)
		}
		if strings.Contains(w.Body.String(), "SQLite") || strings.Contains(w.Body.String(), "backend") {
			t.Errorf("GET %s leaked %q", path, w.Body.String())
		}
	}
}

func TestViewerConfig(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	viewer := config.DefaultConfig().Engine
	viewer.ContainerID = "deck"
	viewer.EnableTouch = false
	viewer.SwipeThreshold = 80
	srv := New(Config{Root: t.TempDir(), DeckPattern: config.DefaultDeckPattern, Viewer: viewer},
		storage.NewStore(storage.NewSQLiteBackend(database)), nil)

	w := do(t, srv, "GET", "/api/config", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["containerId"] != "deck" {
		t.Errorf("containerId = %v", body["containerId"])
	}
	if body["enableTouch"] != false || body["enableKeyboard"] != true {
		t.Errorf("flags = %v", body)
	}
	if body["swipeThreshold"] != float64(80) {
		t.Errorf("swipeThreshold = %v", body["swipeThreshold"])
	}
	if body["autoSaveIntervalMs"] != float64(5000) {
		t.Errorf("autoSaveIntervalMs = %v", body["autoSaveIntervalMs"])
	}
}

func TestCatalogRootSeparateFromSiteRoot(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	site := t.TempDir()
	course := t.TempDir()
	p := filepath.Join(course, "modules", "module3", "lecture1", "slides.json")
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(`{"slides":[{"id":1,"type":"title","title":"Keys"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	srv := New(Config{Root: site, CatalogRoot: course, DeckPattern: config.DefaultDeckPattern},
		storage.NewStore(storage.NewSQLiteBackend(database)), nil)

	w := do(t, srv, "GET", "/api/decks/3/1", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Keys") {
		t.Errorf("deck from catalog root: %d %s", w.Code, w.Body.String())
	}
}
