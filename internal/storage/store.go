// Package storage is the namespaced key-value Progress Store. Values are
// kept as JSON inside a {value, timestamp} envelope; every failure of the
// underlying backend is logged and degrades to a no-op.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Version is written under the "version" key on first Init.
const Version = "1.0"

const (
	defaultPrefix  = "slidekit_"
	defaultTimeout = 5 * time.Second
	probeKey       = "__storage_test__"
)

// Store persists namespaced values and per-lecture progress records.
type Store struct {
	backend Backend
	prefix  string
	log     *zap.Logger
	now     func() time.Time
	timeout time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets the namespace prepended to every key.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// WithLogger sets the logger used for storage warnings.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a Store over backend. A nil backend behaves as an
// unsupported one.
func NewStore(backend Backend, opts ...Option) *Store {
	if backend == nil {
		backend = Unsupported()
	}
	s := &Store{
		backend: backend,
		prefix:  defaultPrefix,
		log:     zap.NewNop(),
		now:     time.Now,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Prefix returns the namespace of this store.
func (s *Store) Prefix() string { return s.prefix }

func (s *Store) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *Store) fullKey(key string) string { return s.prefix + key }

func (s *Store) warn(op, key string, err error) {
	serr := &StorageError{Op: op, Key: key, Err: err}
	s.log.Warn("storage operation failed", zap.String("op", op), zap.String("key", key), zap.Error(serr))
}

// IsSupported reports whether the backend accepts writes.
func (s *Store) IsSupported() bool {
	ctx, cancel := s.ctx()
	defer cancel()
	if err := s.backend.Set(ctx, probeKey, "test"); err != nil {
		return false
	}
	return s.backend.Remove(ctx, probeKey) == nil
}

// Init writes the initialized and version markers the first time the
// namespace is used.
func (s *Store) Init() {
	if !s.IsSupported() {
		s.log.Warn("progress storage is not supported by this backend")
		return
	}
	var initialized bool
	if s.GetItem("initialized", &initialized) && initialized {
		return
	}
	s.SetItem("initialized", true)
	s.SetItem("version", Version)
	s.log.Debug("progress storage initialized", zap.String("prefix", s.prefix))
}

// SetItem stores value under key. It returns false when the value could
// not be encoded or written.
func (s *Store) SetItem(key string, value any) bool {
	data, err := json.Marshal(envelope{Value: value, Timestamp: s.now().UnixMilli()})
	if err != nil {
		s.warn("encode", key, err)
		return false
	}

	ctx, cancel := s.ctx()
	defer cancel()
	if err := s.backend.Set(ctx, s.fullKey(key), string(data)); err != nil {
		s.warn("set", key, err)
		return false
	}
	return true
}

// GetItem decodes the value stored under key into dst. It returns false,
// leaving dst untouched, when nothing usable is stored.
func (s *Store) GetItem(key string, dst any) bool {
	ctx, cancel := s.ctx()
	defer cancel()

	raw, ok, err := s.backend.Get(ctx, s.fullKey(key))
	if err != nil {
		s.warn("get", key, err)
		return false
	}
	if !ok || raw == "" {
		return false
	}

	value, _, err := decodeEnvelope(raw)
	if err != nil {
		s.warn("decode", key, err)
		return false
	}
	if value == nil {
		return false
	}
	if err := json.Unmarshal(value, dst); err != nil {
		s.warn("decode", key, err)
		return false
	}
	return true
}

// RemoveItem deletes key.
func (s *Store) RemoveItem(key string) bool {
	ctx, cancel := s.ctx()
	defer cancel()
	if err := s.backend.Remove(ctx, s.fullKey(key)); err != nil {
		s.warn("remove", key, err)
		return false
	}
	return true
}

func decodeEnvelope(raw string) (json.RawMessage, int64, error) {
	var env struct {
		Value     json.RawMessage `json:"value"`
		Timestamp int64           `json:"timestamp"`
	}
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, 0, err
	}
	if string(env.Value) == "null" {
		env.Value = nil
	}
	return env.Value, env.Timestamp, nil
}

// LectureKey returns the key of the progress record for one lecture.
func LectureKey(moduleID, lectureID string) string {
	return fmt.Sprintf("progress_m%s_l%s", moduleID, lectureID)
}

// NewProgressRecord derives a record for position current of total,
// accessed at now.
func NewProgressRecord(moduleID, lectureID string, current, total int, now time.Time) ProgressRecord {
	pct := 0
	if total > 0 {
		pct = int(math.Round(float64(current) / float64(total) * 100))
	}
	return ProgressRecord{
		ModuleID:     moduleID,
		LectureID:    lectureID,
		CurrentSlide: current,
		TotalSlides:  total,
		Percentage:   pct,
		LastAccessed: now.UnixMilli(),
		Completed:    current >= total-1,
	}
}

// SaveLectureProgress overwrites the progress record of a lecture.
func (s *Store) SaveLectureProgress(moduleID, lectureID string, current, total int) bool {
	rec := NewProgressRecord(moduleID, lectureID, current, total, s.now())
	return s.SetItem(LectureKey(moduleID, lectureID), rec)
}

// GetLectureProgress returns the stored record, or a zero-value record
// carrying the ids when none exists.
func (s *Store) GetLectureProgress(moduleID, lectureID string) ProgressRecord {
	rec := ProgressRecord{ModuleID: moduleID, LectureID: lectureID}
	var stored ProgressRecord
	if s.GetItem(LectureKey(moduleID, lectureID), &stored) {
		rec = stored
	}
	return rec
}

// GetModuleProgress returns every stored record of a module ordered by lecture.
func (s *Store) GetModuleProgress(moduleID string) []ProgressRecord {
	records := s.scanProgress("progress_m" + moduleID + "_l")
	sort.SliceStable(records, func(i, j int) bool {
		return lessID(records[i].LectureID, records[j].LectureID)
	})
	return records
}

// GetCourseProgress counts completed lectures across every module.
func (s *Store) GetCourseProgress() CourseProgress {
	var cp CourseProgress
	for _, rec := range s.scanProgress("progress_") {
		cp.Total++
		if rec.Completed {
			cp.Completed++
		}
	}
	if cp.Total > 0 {
		cp.Percentage = int(math.Round(float64(cp.Completed) / float64(cp.Total) * 100))
	}
	return cp
}

func (s *Store) scanProgress(keyPrefix string) []ProgressRecord {
	ctx, cancel := s.ctx()
	defer cancel()

	keys, err := s.backend.Keys(ctx, s.fullKey(keyPrefix))
	if err != nil {
		s.warn("keys", keyPrefix, err)
		return nil
	}

	var records []ProgressRecord
	for _, k := range keys {
		var rec ProgressRecord
		if s.GetItem(strings.TrimPrefix(k, s.prefix), &rec) {
			records = append(records, rec)
		}
	}
	return records
}

// CleanupOldData removes entries written more than maxAge ago and
// returns how many were removed.
func (s *Store) CleanupOldData(maxAge time.Duration) int {
	ctx, cancel := s.ctx()
	defer cancel()

	keys, err := s.backend.Keys(ctx, s.prefix)
	if err != nil {
		s.warn("keys", "", err)
		return 0
	}

	cutoff := s.now().Add(-maxAge).UnixMilli()
	removed := 0
	for _, k := range keys {
		raw, ok, err := s.backend.Get(ctx, k)
		if err != nil || !ok {
			continue
		}
		_, ts, err := decodeEnvelope(raw)
		if err != nil || ts == 0 || ts >= cutoff {
			continue
		}
		if err := s.backend.Remove(ctx, k); err != nil {
			s.warn("remove", k, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		s.log.Info("removed stale progress entries", zap.Int("count", removed))
	}
	return removed
}

// Stats reports key count and byte size of this namespace.
func (s *Store) Stats() Stats {
	ctx, cancel := s.ctx()
	defer cancel()

	keys, err := s.backend.Keys(ctx, s.prefix)
	if errors.Is(err, ErrUnsupported) {
		return Stats{}
	}
	st := Stats{Supported: true}
	if err != nil {
		s.warn("keys", "", err)
		return st
	}
	for _, k := range keys {
		st.TotalKeys++
		if raw, ok, err := s.backend.Get(ctx, k); err == nil && ok {
			st.TotalBytes += len(k) + len(raw)
		}
	}
	return st
}

// ClearAll removes every key of this namespace.
func (s *Store) ClearAll() bool {
	ctx, cancel := s.ctx()
	defer cancel()

	keys, err := s.backend.Keys(ctx, s.prefix)
	if err != nil {
		s.warn("keys", "", err)
		return false
	}
	for _, k := range keys {
		if err := s.backend.Remove(ctx, k); err != nil {
			s.warn("remove", k, err)
			return false
		}
	}
	s.log.Info("cleared progress storage", zap.Int("count", len(keys)))
	return true
}

// lessID orders numeric ids numerically and everything else lexically.
func lessID(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return ai < bi
	}
	return a < b
}
