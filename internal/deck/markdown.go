package deck

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
}

// parseMarkdown builds a deck from slides separated by "---" lines. The
// first heading of a slide is its title, anything after a "Note:" line
// is speaker notes, and the first slide becomes a title slide.
func parseMarkdown(md goldmark.Markdown, data []byte) (*Deck, error) {
	chunks := splitSlides(string(data))

	d := &Deck{Slides: make([]Slide, 0, len(chunks))}
	for _, chunk := range chunks {
		title, body, notes := splitChunk(chunk)

		base := Base{ID: strconv.Itoa(len(d.Slides) + 1), Title: title}
		var err error
		if base.Content, err = convert(md, body); err != nil {
			return nil, err
		}
		if base.Notes, err = convert(md, notes); err != nil {
			return nil, err
		}

		if len(d.Slides) == 0 {
			base.Type = TypeTitle
			d.Slides = append(d.Slides, &TitleSlide{Base: base})
			d.Metadata.Title = title
			continue
		}
		base.Type = TypeContent
		d.Slides = append(d.Slides, &ContentSlide{Base: base})
	}
	return d, nil
}

// splitSlides cuts on separator lines outside fenced code blocks and drops
// blank chunks.
func splitSlides(src string) []string {
	var (
		chunks  []string
		current strings.Builder
		fenced  bool
	)
	flush := func() {
		if strings.TrimSpace(current.String()) != "" {
			chunks = append(chunks, current.String())
		}
		current.Reset()
	}

	sc := bufio.NewScanner(strings.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), MaxDeckSize)
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if isFence(trimmed) {
			fenced = !fenced
		}
		if !fenced && trimmed == "---" {
			flush()
			continue
		}
		current.WriteString(line)
		current.WriteByte('\n')
	}
	flush()
	return chunks
}

func splitChunk(chunk string) (title, body, notes string) {
	var bodyLines, noteLines []string
	inNotes, fenced := false, false
	for _, line := range strings.Split(chunk, "\n") {
		trimmed := strings.TrimSpace(line)
		if isFence(trimmed) {
			fenced = !fenced
		}
		switch {
		case inNotes:
			noteLines = append(noteLines, line)
		case fenced || isFence(trimmed):
			bodyLines = append(bodyLines, line)
		case title == "" && (strings.HasPrefix(trimmed, "# ") || strings.HasPrefix(trimmed, "## ")):
			title = strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		case isNoteMarker(trimmed):
			inNotes = true
			if rest := noteRest(trimmed); rest != "" {
				noteLines = append(noteLines, rest)
			}
		default:
			bodyLines = append(bodyLines, line)
		}
	}
	return title, strings.Join(bodyLines, "\n"), strings.Join(noteLines, "\n")
}

func isFence(line string) bool {
	return strings.HasPrefix(line, "```") || strings.HasPrefix(line, "~~~")
}

func isNoteMarker(line string) bool {
	lower := strings.ToLower(line)
	return strings.HasPrefix(lower, "note:") || strings.HasPrefix(lower, "notes:")
}

func noteRest(line string) string {
	_, rest, _ := strings.Cut(line, ":")
	return strings.TrimSpace(rest)
}

func convert(md goldmark.Markdown, src string) (string, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
