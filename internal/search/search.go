// Package search indexes slide text and answers case-insensitive substring
// queries with highlighted excerpts.
package search

import (
	"html"
	"strings"
	"unicode"

	"github.com/coursekit/slidekit/internal/deck"
)

const (
	// excerptContext is how many runes are kept on each side of a match.
	excerptContext = 50
	// fallbackLength bounds the excerpt when the match is not in content.
	fallbackLength = 100
)

// Entry is the searchable text of one slide.
type Entry struct {
	Index   int    `json:"index"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Notes   string `json:"notes"`

	haystack []rune
}

// Result is one matching slide.
type Result struct {
	Index   int    `json:"index"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
}

// Index holds one entry per slide, in slide order.
type Index struct {
	Entries []Entry
}

// Build creates an index over every slide of d.
func Build(d *deck.Deck) *Index {
	idx := &Index{}
	if d == nil {
		return idx
	}
	for i, s := range d.Slides {
		e := Entry{Index: i}
		if s != nil {
			if h := s.Header(); h != nil {
				e.Title = h.Title
				e.Content = StripHTML(h.Content)
				e.Notes = StripHTML(h.Notes)
			}
		}
		e.haystack = lowerRunes(e.Title + " " + e.Content + " " + e.Notes)
		idx.Entries = append(idx.Entries, e)
	}
	return idx
}

// Len returns the number of indexed slides.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.Entries)
}

// Query returns the slides whose title, content or notes contain q,
// ignoring case, in ascending slide order. A blank query matches nothing.
func (idx *Index) Query(q string) []Result {
	if idx == nil || strings.TrimSpace(q) == "" {
		return nil
	}
	needle := lowerRunes(q)

	var results []Result
	for _, e := range idx.Entries {
		if indexRunes(e.haystack, needle, 0) < 0 {
			continue
		}
		results = append(results, Result{
			Index:   e.Index,
			Title:   e.Title,
			Excerpt: Excerpt(e.Content, q),
		})
	}
	return results
}

// Excerpt returns escaped HTML around the first occurrence of q in text,
// with every occurrence inside the window wrapped in <mark>. When q does
// not occur, it returns the start of text instead.
func Excerpt(text, q string) string {
	runes := []rune(text)
	lower := lowerRunes(text)
	needle := lowerRunes(q)

	first := -1
	if len(needle) > 0 {
		first = indexRunes(lower, needle, 0)
	}
	if first < 0 {
		if len(runes) <= fallbackLength {
			return html.EscapeString(text)
		}
		return html.EscapeString(string(runes[:fallbackLength])) + "..."
	}

	start := max(0, first-excerptContext)
	end := min(len(runes), first+len(needle)+excerptContext)

	var b strings.Builder
	if start > 0 {
		b.WriteString("...")
	}
	pos := start
	for pos < end {
		m := indexRunes(lower[:end], needle, pos)
		if m < 0 {
			break
		}
		b.WriteString(html.EscapeString(string(runes[pos:m])))
		b.WriteString("<mark>")
		b.WriteString(html.EscapeString(string(runes[m : m+len(needle)])))
		b.WriteString("</mark>")
		pos = m + len(needle)
	}
	b.WriteString(html.EscapeString(string(runes[pos:end])))
	if end < len(runes) {
		b.WriteString("...")
	}
	return b.String()
}

// lowerRunes folds case rune by rune so positions line up with the source.
func lowerRunes(s string) []rune {
	r := []rune(s)
	for i, c := range r {
		r[i] = unicode.ToLower(c)
	}
	return r
}

func indexRunes(haystack, needle []rune, from int) int {
	if len(needle) == 0 {
		return -1
	}
	for i := from; i+len(needle) <= len(haystack); i++ {
		match := true
		for j, c := range needle {
			if haystack[i+j] != c {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
