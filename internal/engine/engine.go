// Package engine owns the navigation state of a loaded deck. It renders
// through a Host, persists progress through a ProgressStore and receives
// commands from the input adapters.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coursekit/slidekit/internal/config"
	"github.com/coursekit/slidekit/internal/deck"
	"github.com/coursekit/slidekit/internal/logging"
	"github.com/coursekit/slidekit/internal/render"
	"github.com/coursekit/slidekit/internal/search"
	"github.com/coursekit/slidekit/internal/storage"
)

// ErrNotLoaded is returned by Start before a deck has been loaded.
var ErrNotLoaded = errors.New("engine: deck not loaded")

// emptyDeckMessage is shown when a deck loads but has no slides.
const emptyDeckMessage = "There are no slides to display."

// DeckLoader fetches a deck by locator.
type DeckLoader interface {
	Load(ctx context.Context, locator string) (*deck.Deck, error)
}

// ProgressStore persists the viewing position of a lecture.
type ProgressStore interface {
	SaveLectureProgress(moduleID, lectureID string, current, total int) bool
	GetLectureProgress(moduleID, lectureID string) storage.ProgressRecord
}

// Options configures an Engine. Loader and Host are required; a nil Store
// disables persistence.
type Options struct {
	Config config.EngineConfig
	Loader DeckLoader
	Store  ProgressStore
	Host   Host
	Logger *zap.Logger
	Clock  func() time.Time
}

// NavigationState is the position within the loaded deck.
type NavigationState struct {
	CurrentIndex int `json:"currentIndex"`
	Total        int `json:"total"`
}

// SlideChange is emitted after every successful transition.
type SlideChange struct {
	Current int
	Total   int
	Slide   deck.Slide
}

// Engine is a slide viewer for one lecture. Its methods are safe to call
// from several goroutines; they run one at a time in call order.
type Engine struct {
	mu sync.Mutex

	cfg    config.EngineConfig
	loader DeckLoader
	store  ProgressStore
	host   Host
	log    *zap.Logger
	now    func() time.Time
	id     string

	deck      *deck.Deck
	index     *search.Index
	state     NavigationState
	moduleID  string
	lectureID string
	viewed    map[int]bool
	listeners []func(SlideChange)

	searchOpen bool
	fullscreen bool

	started  bool
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// New creates an engine. Nothing is loaded until Load is called.
func New(opts Options) (*Engine, error) {
	if opts.Loader == nil {
		return nil, errors.New("engine: loader is required")
	}
	if opts.Host == nil {
		return nil, errors.New("engine: host is required")
	}
	if strings.TrimSpace(opts.Config.DataURL) == "" {
		return nil, errors.New("engine: data_url is required")
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	e := &Engine{
		cfg:    opts.Config,
		loader: opts.Loader,
		store:  opts.Store,
		host:   opts.Host,
		now:    opts.Clock,
		id:     uuid.New().String(),
		viewed: make(map[int]bool),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	e.log = logging.OrNop(opts.Logger).With(zap.String("session", e.id))
	return e, nil
}

// ID identifies this viewing session in logs.
func (e *Engine) ID() string { return e.id }

// Load fetches the deck. On failure the error panel is mounted and the
// *deck.DataError is returned; the engine stays unloaded.
func (e *Engine) Load(ctx context.Context) error {
	d, err := e.loader.Load(ctx, e.cfg.DataURL)
	if err == nil && d == nil {
		err = &deck.DataError{Reason: deck.ReasonMalformed, Source: e.cfg.DataURL, Err: errors.New("loader returned no deck")}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		e.log.Error("loading deck failed", zap.String("source", e.cfg.DataURL), zap.Error(err))
		e.host.Mount(render.Error(fmt.Sprintf("Could not load slides: %v", err)))
		return err
	}

	e.deck = d
	e.state = NavigationState{Total: d.Len()}
	e.moduleID, e.lectureID = d.Metadata.ModuleID, d.Metadata.LectureID
	if m, l, ok := ParseLectureKey(e.cfg.LectureKey); ok {
		e.moduleID, e.lectureID = m, l
	}
	if e.cfg.EnableSearch {
		e.index = search.Build(d)
	}
	for _, w := range d.Warnings {
		e.log.Warn("deck warning", zap.String("detail", w))
	}

	e.log = e.log.With(zap.String("module", e.moduleID), zap.String("lecture", e.lectureID))
	e.log.Info("deck loaded", zap.Int("slides", d.Len()))
	return nil
}

// ParseLectureKey splits a "module/lecture" key.
func ParseLectureKey(key string) (moduleID, lectureID string, ok bool) {
	m, l, found := strings.Cut(strings.TrimSpace(key), "/")
	if !found || m == "" || l == "" {
		return "", "", false
	}
	return m, l, true
}

// Start performs the one-time restoration check, shows the first slide and
// starts auto-save. An empty deck mounts an error panel instead.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.deck == nil {
		return ErrNotLoaded
	}
	if e.started {
		return nil
	}
	e.started = true

	if e.state.Total == 0 {
		e.host.Mount(render.Error(emptyDeckMessage))
		close(e.done)
		return nil
	}

	start := 0
	if rec, ok := e.restoreDecisionLocked(e.now()); ok && e.host.ConfirmResume(rec) {
		start = rec.CurrentSlide
		e.log.Info("resuming", zap.Int("slide", start))
	}
	e.showLocked(start)

	if e.cfg.AutoSave && e.cfg.AutoSaveInterval > 0 && e.persists() {
		go e.autoSave(e.cfg.AutoSaveInterval, e.log)
	} else {
		close(e.done)
	}
	return nil
}

// RestoreDecision reports the stored record and whether it qualifies for a
// resume prompt at time now: it must be younger than the freshness window
// and point inside the current deck.
func (e *Engine) RestoreDecision(now time.Time) (storage.ProgressRecord, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.restoreDecisionLocked(now)
}

func (e *Engine) restoreDecisionLocked(now time.Time) (storage.ProgressRecord, bool) {
	if !e.persists() || e.deck == nil {
		return storage.ProgressRecord{}, false
	}
	rec := e.store.GetLectureProgress(e.moduleID, e.lectureID)
	accessed, ok := rec.Accessed()
	if !ok {
		return rec, false
	}
	if now.Sub(accessed) >= e.cfg.FreshnessWindow {
		return rec, false
	}
	if rec.CurrentSlide < 0 || rec.CurrentSlide >= e.state.Total {
		return rec, false
	}
	return rec, true
}

func (e *Engine) persists() bool {
	return e.cfg.EnableProgress && e.store != nil && e.moduleID != "" && e.lectureID != ""
}

// Next advances one slide. It reports false at the last slide.
func (e *Engine) Next() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gotoLocked(e.state.CurrentIndex + 1)
}

// Previous goes back one slide. It reports false at the first slide.
func (e *Engine) Previous() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gotoLocked(e.state.CurrentIndex - 1)
}

// Goto jumps to index. Indices outside the deck are ignored.
func (e *Engine) Goto(index int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gotoLocked(index)
}

// First jumps to the first slide.
func (e *Engine) First() bool { return e.Goto(0) }

// Last jumps to the last slide.
func (e *Engine) Last() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gotoLocked(e.state.Total - 1)
}

func (e *Engine) gotoLocked(index int) bool {
	if !e.started || index < 0 || index >= e.state.Total {
		return false
	}
	e.showLocked(index)
	return true
}

// showLocked is one transition: update the index, render, then persist.
func (e *Engine) showLocked(index int) {
	e.state.CurrentIndex = index
	e.viewed[index] = true
	slide := e.deck.Slides[index]
	if slide == nil {
		slide = &deck.UnknownSlide{}
	}

	e.host.Mount(render.Frame(render.View{
		Slide:    slide,
		Index:    index,
		Total:    e.state.Total,
		Search:   e.cfg.EnableSearch,
		Print:    e.cfg.EnablePrint,
		Progress: e.cfg.EnableProgress,
	}))
	e.persistLocked()

	if e.cfg.EnableQuiz {
		if h := slide.Header(); h != nil && h.Quiz != nil {
			e.host.ShowQuiz(*h.Quiz, index)
		}
	}

	ev := SlideChange{Current: index, Total: e.state.Total, Slide: slide}
	for _, fn := range e.listeners {
		fn(ev)
	}
}

// SaveProgress writes the current position. It reports false when
// persistence is off or the store failed.
func (e *Engine) SaveProgress() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.persistLocked()
}

func (e *Engine) persistLocked() bool {
	if !e.persists() || e.state.Total == 0 {
		return false
	}
	return e.store.SaveLectureProgress(e.moduleID, e.lectureID, e.state.CurrentIndex, e.state.Total)
}

func (e *Engine) autoSave(interval time.Duration, log *zap.Logger) {
	defer close(e.done)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-e.stop:
			return
		case <-t.C:
			if !e.SaveProgress() {
				log.Debug("auto-save skipped")
			}
		}
	}
}

// Unload stops auto-save and makes a final best-effort save. It is safe to
// call more than once.
func (e *Engine) Unload() {
	first := false
	e.stopOnce.Do(func() {
		first = true
		close(e.stop)
	})
	if !first {
		return
	}

	e.mu.Lock()
	started := e.started
	e.mu.Unlock()
	if started {
		<-e.done
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started && e.state.Total > 0 {
		e.persistLocked()
	}
	e.log.Debug("unloaded", zap.Ints("viewed", e.viewedLocked()))
}

// OnSlideChange registers fn to run after every transition, including the
// first slide shown by Start.
func (e *Engine) OnSlideChange(fn func(SlideChange)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// State returns the current position.
func (e *Engine) State() NavigationState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// CurrentSlide returns the slide being shown, or nil before Start.
func (e *Engine) CurrentSlide() deck.Slide {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started || e.state.Total == 0 {
		return nil
	}
	return e.deck.Slides[e.state.CurrentIndex]
}

// Deck returns the loaded deck.
func (e *Engine) Deck() *deck.Deck {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deck
}

// Lecture returns the ids progress is stored under.
func (e *Engine) Lecture() (moduleID, lectureID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.moduleID, e.lectureID
}

// Viewed returns the indices shown so far in this session, ascending.
func (e *Engine) Viewed() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewedLocked()
}

func (e *Engine) viewedLocked() []int {
	out := make([]int, 0, len(e.viewed))
	for i := range e.viewed {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
