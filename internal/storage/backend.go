package storage

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/coursekit/slidekit/internal/db"
)

// Backend is the raw key-value layer underneath a Store.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// SQLiteBackend keeps entries in the kv_entries table.
type SQLiteBackend struct {
	db *db.DB
}

// NewSQLiteBackend creates a backend over an open database.
func NewSQLiteBackend(database *db.DB) *SQLiteBackend {
	return &SQLiteBackend{db: database}
}

func (b *SQLiteBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := b.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (b *SQLiteBackend) Set(ctx context.Context, key, value string) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value)
	return err
}

func (b *SQLiteBackend) Remove(ctx context.Context, key string) error {
	_, err := b.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key)
	return err
}

func (b *SQLiteBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT key FROM kv_entries WHERE substr(key, 1, length(?1)) = ?1 ORDER BY key`,
		prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// MemoryBackend is a process-local backend. A positive MaxBytes caps the
// total size of keys plus values.
type MemoryBackend struct {
	mu       sync.Mutex
	entries  map[string]string
	MaxBytes int
}

// NewMemoryBackend creates an empty in-memory backend without a quota.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]string)}
}

func (b *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.entries[key]
	return v, ok, nil
}

func (b *MemoryBackend) Set(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.MaxBytes > 0 {
		size := len(key) + len(value)
		for k, v := range b.entries {
			if k != key {
				size += len(k) + len(v)
			}
		}
		if size > b.MaxBytes {
			return ErrQuotaExceeded
		}
	}
	b.entries[key] = value
	return nil
}

func (b *MemoryBackend) Remove(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries, key)
	return nil
}

func (b *MemoryBackend) Keys(_ context.Context, prefix string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var keys []string
	for k := range b.entries {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// unsupportedBackend fails every call, standing in for a host without storage.
type unsupportedBackend struct{}

func (unsupportedBackend) Get(context.Context, string) (string, bool, error) {
	return "", false, ErrUnsupported
}
func (unsupportedBackend) Set(context.Context, string, string) error  { return ErrUnsupported }
func (unsupportedBackend) Remove(context.Context, string) error       { return ErrUnsupported }
func (unsupportedBackend) Keys(context.Context, string) ([]string, error) {
	return nil, ErrUnsupported
}

// Unsupported returns a backend on which every operation fails with ErrUnsupported.
func Unsupported() Backend { return unsupportedBackend{} }
