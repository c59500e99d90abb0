package storage

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnsupported is returned by a backend that cannot persist anything.
var ErrUnsupported = errors.New("storage backend unsupported")

// ErrQuotaExceeded is returned when a write would exceed the backend quota.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// StorageError describes a failed backend operation.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ProgressRecord is the persisted viewing position for one lecture.
// LastAccessed is Unix milliseconds; zero means the lecture was never opened.
type ProgressRecord struct {
	ModuleID     string `json:"moduleId"`
	LectureID    string `json:"lectureId"`
	CurrentSlide int    `json:"currentSlide"`
	TotalSlides  int    `json:"totalSlides"`
	Percentage   int    `json:"percentage"`
	LastAccessed int64  `json:"lastAccessed"`
	Completed    bool   `json:"completed"`
}

// Accessed returns the last access time and whether there was one.
func (r ProgressRecord) Accessed() (time.Time, bool) {
	if r.LastAccessed == 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(r.LastAccessed), true
}

// CourseProgress summarizes completion over every stored lecture.
type CourseProgress struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// Stats reports how much of the backend this store occupies.
type Stats struct {
	Supported  bool `json:"supported"`
	TotalKeys  int  `json:"totalKeys"`
	TotalBytes int  `json:"totalBytes"`
}

// envelope wraps every stored value with the time it was written.
type envelope struct {
	Value     any   `json:"value"`
	Timestamp int64 `json:"timestamp"`
}
