// Package deck loads lecture slide decks and models slides as a closed set
// of typed variants.
package deck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"
)

// MaxDeckSize bounds how much of a deck resource is read.
const MaxDeckSize = 10 << 20

// Format is the encoding of a deck resource.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// FormatOf picks the format from the locator's extension. Anything
// unrecognized is treated as JSON.
func FormatOf(locator string) Format {
	p := locator
	if u, err := url.Parse(locator); err == nil && u.Scheme != "" && u.Path != "" {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".md", ".markdown":
		return FormatMarkdown
	default:
		return FormatJSON
	}
}

// Loader fetches deck resources from the filesystem or over HTTP.
type Loader struct {
	// BaseDir resolves relative filesystem locators, normally the
	// current lecture's directory.
	BaseDir string
	Client  *http.Client

	md goldmark.Markdown
}

// NewLoader creates a Loader. A nil client gets a client with a 30s timeout.
func NewLoader(baseDir string, client *http.Client) *Loader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Loader{BaseDir: baseDir, Client: client, md: newMarkdown()}
}

// Load reads and parses the deck at locator. Failures are *DataError.
func (l *Loader) Load(ctx context.Context, locator string) (*Deck, error) {
	data, err := l.fetch(ctx, locator)
	if err != nil {
		return nil, err
	}

	d, err := l.Parse(data, FormatOf(locator))
	if err != nil {
		return nil, &DataError{Reason: ReasonMalformed, Source: locator, Err: err}
	}
	fillMetadata(&d.Metadata, locator)
	return d, nil
}

// Parse decodes a deck document in the given format.
func (l *Loader) Parse(data []byte, format Format) (*Deck, error) {
	switch format {
	case FormatYAML:
		return decodeYAML(data)
	case FormatMarkdown:
		md := l.md
		if md == nil {
			md = newMarkdown()
		}
		return parseMarkdown(md, data)
	default:
		return DecodeJSON(data)
	}
}

func isURL(locator string) bool {
	return strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://")
}

func (l *Loader) fetch(ctx context.Context, locator string) ([]byte, error) {
	if isURL(locator) {
		return l.fetchHTTP(ctx, locator)
	}

	p := locator
	if !filepath.IsAbs(p) && l.BaseDir != "" {
		p = filepath.Join(l.BaseDir, filepath.FromSlash(p))
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &DataError{Reason: ReasonNotFound, Source: locator, Err: err}
		}
		return nil, &DataError{Reason: ReasonBadStatus, Source: locator, Err: err}
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxDeckSize))
	if err != nil {
		return nil, &DataError{Reason: ReasonBadStatus, Source: locator, Err: err}
	}
	return data, nil
}

func (l *Loader) fetchHTTP(ctx context.Context, locator string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, &DataError{Reason: ReasonNotFound, Source: locator, Err: err}
	}
	req.Header.Set("Accept", "application/json, application/yaml, text/markdown;q=0.9, */*;q=0.5")

	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, &DataError{Reason: ReasonNotFound, Source: locator, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, &DataError{Reason: ReasonNotFound, Source: locator, Status: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &DataError{Reason: ReasonBadStatus, Source: locator, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDeckSize))
	if err != nil {
		return nil, &DataError{Reason: ReasonBadStatus, Source: locator, Status: resp.StatusCode, Err: err}
	}
	return data, nil
}

// decodeYAML converts a YAML deck to JSON and decodes that, so both
// formats share one set of rules.
func decodeYAML(data []byte) (*Deck, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if _, ok := doc.(map[string]any); !ok {
		return nil, fmt.Errorf("top level is not a mapping")
	}
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return DecodeJSON(asJSON)
}

var (
	moduleRe  = regexp.MustCompile(`module(\d+)`)
	lectureRe = regexp.MustCompile(`lecture(\d+)`)
)

// LocatorIDs extracts the module and lecture ids embedded in a path such
// as "modules/module3/lecture2/slides.json". Missing parts are empty.
func LocatorIDs(locator string) (moduleID, lectureID string) {
	if m := moduleRe.FindStringSubmatch(locator); m != nil {
		moduleID = m[1]
	}
	if m := lectureRe.FindStringSubmatch(locator); m != nil {
		lectureID = m[1]
	}
	return moduleID, lectureID
}

// fillMetadata derives missing ids from the locator path, falling back to "1".
func fillMetadata(m *Metadata, locator string) {
	moduleID, lectureID := LocatorIDs(locator)
	if m.ModuleID == "" {
		m.ModuleID = firstNonEmpty(moduleID, "1")
	}
	if m.LectureID == "" {
		m.LectureID = firstNonEmpty(lectureID, "1")
	}
}
