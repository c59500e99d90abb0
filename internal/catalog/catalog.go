// Package catalog discovers lecture decks under a course root.
package catalog

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/coursekit/slidekit/internal/deck"
)

// Entry is one deck found on disk.
type Entry struct {
	ModuleID  string      `json:"module"`
	LectureID string      `json:"lecture"`
	Path      string      `json:"path"`
	Format    deck.Format `json:"format"`
}

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	".slidekit":    true,
	"vendor":       true,
}

// Discover returns the decks under root whose slash-separated relative
// path matches pattern, ordered by module then lecture. When a lecture has
// decks in several formats, the first path in lexical order wins.
func Discover(root, pattern string) ([]Entry, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid deck pattern %q", pattern)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("course root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("course root %s is not a directory", root)
	}

	var entries []Entry
	seen := make(map[string]bool)
	err = doublestar.GlobWalk(os.DirFS(root), pattern, func(p string, d fs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		for _, part := range strings.Split(path.Dir(p), "/") {
			if skipDirs[part] {
				return nil
			}
		}
		m, l := deck.LocatorIDs(p)
		if m == "" || l == "" {
			return nil
		}
		key := m + "/" + l
		if seen[key] {
			return nil
		}
		seen[key] = true
		entries = append(entries, Entry{ModuleID: m, LectureID: l, Path: p, Format: deck.FormatOf(p)})
		return nil
	}, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("discovering decks: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ModuleID != entries[j].ModuleID {
			return lessNumeric(entries[i].ModuleID, entries[j].ModuleID)
		}
		return lessNumeric(entries[i].LectureID, entries[j].LectureID)
	})
	return entries, nil
}

// Find returns the entry for one lecture.
func Find(entries []Entry, moduleID, lectureID string) (Entry, bool) {
	for _, e := range entries {
		if e.ModuleID == moduleID && e.LectureID == lectureID {
			return e, true
		}
	}
	return Entry{}, false
}

func lessNumeric(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return ai < bi
	}
	return a < b
}
