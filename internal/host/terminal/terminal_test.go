package terminal

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/coursekit/slidekit/internal/config"
	"github.com/coursekit/slidekit/internal/deck"
	"github.com/coursekit/slidekit/internal/engine"
	"github.com/coursekit/slidekit/internal/input"
	"github.com/coursekit/slidekit/internal/progress"
	"github.com/coursekit/slidekit/internal/render"
	"github.com/coursekit/slidekit/internal/storage"
)

const testDeck = `{
  "metadata": {"module": 1, "lecture": 2, "title": "Hidden data"},
  "slides": [
    {"id": "a", "type": "title", "title": "Intro", "subtitle": "Welcome"},
    {"id": "b", "type": "content", "title": "Pixels", "content": "<p>LSB hides bits</p>"},
    {"id": "c", "type": "list", "title": "Check", "items": ["one"], "quiz": {"question": "2+2?", "options": ["3", "4"], "correctIndex": 1}}
  ]
}`

type deckLoader struct{ d *deck.Deck }

func (l deckLoader) Load(context.Context, string) (*deck.Deck, error) { return l.d, nil }

func setup(t *testing.T, confirm Confirmer) (*Host, *engine.Engine, *bytes.Buffer, *bytes.Buffer, *storage.Store) {
	t.Helper()
	return setupWith(t, confirm, nil)
}

func setupWith(t *testing.T, confirm Confirmer, adjust func(*config.EngineConfig)) (*Host, *engine.Engine, *bytes.Buffer, *bytes.Buffer, *storage.Store) {
	t.Helper()
	d, err := deck.DecodeJSON([]byte(testDeck))
	if err != nil {
		t.Fatal(err)
	}

	var out, bar bytes.Buffer
	cfg := config.DefaultConfig().Engine
	cfg.AutoSave = false
	if adjust != nil {
		adjust(&cfg)
	}

	h := New(Options{
		Out:      &out,
		Reporter: progress.NewPlainReporter(&bar),
		Confirm:  confirm,
		PrintDir: t.TempDir(),
		Keys:     input.NewKeyboard(cfg),
	})
	store := storage.NewStore(storage.NewMemoryBackend())
	e, err := engine.New(engine.Options{Config: cfg, Loader: deckLoader{d}, Store: store, Host: h})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(e.Unload)
	if err := e.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	h.Attach(e, "Hidden data")
	return h, e, &out, &bar, store
}

func never(string) (bool, error) { return false, nil }

func TestRunSession(t *testing.T) {
	h, e, out, bar, store := setup(t, never)
	if err := e.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	script := strings.Join([]string{
		"n",    // Pixels
		"/",    // open search
		"BITS", // query
		"1",    // select result, closes panel
		"",     // next: Check, quiz pending
		"2",    // correct answer
		"b",    // back to Pixels
		"f",    // fullscreen on
		"esc",  // fullscreen off
		"p",    // print
		"zzz",  // unknown
		"q",
		"n", // never read
	}, "\n")
	if err := h.Run(context.Background(), e, strings.NewReader(script)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"Intro\n=====",
		"Welcome",
		"Pixels\n------",
		"1) slide 2, Pixels: LSB hides *bits*",
		"Quick check: 2+2?",
		"Correct!",
		"[fullscreen on]",
		"[fullscreen off]",
		"Print view written to",
		`Unknown command "zzz"`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "Previous") || strings.Contains(text, "Progress:") {
		t.Errorf("frame controls leaked into text:\n%s", text)
	}

	if got := e.State().CurrentIndex; got != 1 {
		t.Errorf("CurrentIndex = %d, want 1", got)
	}
	if rec := store.GetLectureProgress("1", "2"); rec.CurrentSlide != 1 || rec.TotalSlides != 3 {
		t.Errorf("record = %+v", rec)
	}
	if _, err := os.Stat(h.Printed()); err != nil {
		t.Errorf("print file: %v", err)
	}
	if filepath.Ext(h.Printed()) != ".html" {
		t.Errorf("print path = %q", h.Printed())
	}

	if !strings.HasPrefix(bar.String(), "Hidden data (3 slides)\n[1/3] Intro\n[2/3] Pixels\n") {
		t.Errorf("progress output = %q", bar.String())
	}
	if !strings.HasSuffix(bar.String(), "Presentation closed\n") {
		t.Errorf("reporter not finished: %q", bar.String())
	}
}

func TestKeyboardDisabled(t *testing.T) {
	h, e, out, _, _ := setupWith(t, never, func(c *config.EngineConfig) { c.EnableKeyboard = false })
	if err := e.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := h.Run(context.Background(), e, strings.NewReader("n\nend\n")); err != nil {
		t.Fatal(err)
	}
	if got := e.State().CurrentIndex; got != 0 {
		t.Errorf("CurrentIndex = %d, want 0", got)
	}
	if !strings.Contains(out.String(), "Keyboard navigation is off") {
		t.Errorf("output = %q", out.String())
	}

	if err := h.Run(context.Background(), e, strings.NewReader("g 2\n")); err != nil {
		t.Fatal(err)
	}
	if got := e.State().CurrentIndex; got != 1 {
		t.Errorf("CurrentIndex after g 2 = %d, want 1", got)
	}
}

func TestQuizSkippedByNavigation(t *testing.T) {
	h, e, out, _, _ := setup(t, never)
	if err := e.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := h.Run(context.Background(), e, strings.NewReader("g 3\nb\n")); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out.String(), "Correct!") || strings.Contains(out.String(), "Not quite.") {
		t.Error("navigation was treated as an answer")
	}
	if got := e.State().CurrentIndex; got != 1 {
		t.Errorf("CurrentIndex = %d, want 1", got)
	}
}

func TestResumePrompt(t *testing.T) {
	var asked string
	yes := func(label string) (bool, error) {
		asked = label
		return true, nil
	}
	d, _ := deck.DecodeJSON([]byte(testDeck))
	store := storage.NewStore(storage.NewMemoryBackend())
	store.SaveLectureProgress("1", "2", 2, 3)

	h := New(Options{Out: &bytes.Buffer{}, Confirm: yes})
	cfg := config.DefaultConfig().Engine
	cfg.AutoSave = false
	e, err := engine.New(engine.Options{Config: cfg, Loader: deckLoader{d}, Store: store, Host: h})
	if err != nil {
		t.Fatal(err)
	}
	defer e.Unload()
	if err := e.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := e.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if asked != "Continue from slide 3 of 3" {
		t.Errorf("label = %q", asked)
	}
	if got := e.State().CurrentIndex; got != 2 {
		t.Errorf("CurrentIndex = %d, want 2", got)
	}
}

func TestRunCancelled(t *testing.T) {
	h, e, _, _, _ := setup(t, never)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := h.Run(ctx, e, strings.NewReader("n\n")); err != context.Canceled {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}

func TestText(t *testing.T) {
	s := &deck.StatisticsSlide{Base: deck.Base{Title: "Numbers"}, Stats: []deck.Stat{{Value: "42", Label: "tools"}}}
	got := Text(render.Frame(render.View{Slide: s, Index: 0, Total: 2, Progress: true, Search: true}))
	want := "Numbers\n-------\n42 tools"
	if got != want {
		t.Errorf("Text = %q, want %q", got, want)
	}

	if got := Text(render.Error("Deck missing")); got != "Error\n-----\nDeck missing" {
		t.Errorf("Text(error) = %q", got)
	}
}
