// Package render turns slides into HTML markup. Every function here is pure.
package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/coursekit/slidekit/internal/deck"
)

// Render returns the markup for one slide. It accepts every slide variant,
// including nil ones, and never panics on absent fields. Unrecognized type
// tags arrive as *deck.UnknownSlide and use the content layout.
func Render(s deck.Slide) string {
	var b strings.Builder
	switch v := s.(type) {
	case *deck.TitleSlide:
		if v != nil {
			renderTitle(&b, v)
		}
	case *deck.ContentSlide:
		if v != nil {
			renderContent(&b, &v.Base, v.Image)
		}
	case *deck.ListSlide:
		if v != nil {
			renderList(&b, v)
		}
	case *deck.StatisticsSlide:
		if v != nil {
			renderStatistics(&b, v)
		}
	case *deck.ExampleSlide:
		if v != nil {
			renderExample(&b, v)
		}
	case *deck.ThreatsSlide:
		if v != nil {
			renderThreats(&b, v)
		}
	case *deck.UnknownSlide:
		if v != nil {
			renderContent(&b, &v.Base, v.Image)
		}
	}
	return b.String()
}

// esc escapes plain-text fields. Content, notes and list items are author
// markup and are written as-is.
func esc(s string) string {
	return html.EscapeString(s)
}

func renderTitle(b *strings.Builder, s *deck.TitleSlide) {
	b.WriteString(`<div class="slide-title">` + "\n")
	fmt.Fprintf(b, "<h1>%s</h1>\n", esc(s.Title))
	if s.Subtitle != "" {
		fmt.Fprintf(b, `<div class="subtitle">%s</div>`+"\n", esc(s.Subtitle))
	}
	writeBody(b, s.Content)
	b.WriteString("</div>\n")
}

func renderContent(b *strings.Builder, s *deck.Base, image string) {
	writeHeading(b, s.Title, "")
	writeBody(b, s.Content)
	if image != "" {
		fmt.Fprintf(b, `<img src="%s" alt="%s" class="slide-image">`+"\n", esc(image), esc(s.Title))
	}
}

func renderList(b *strings.Builder, s *deck.ListSlide) {
	writeHeading(b, s.Title, "")
	if len(s.Items) > 0 {
		b.WriteString(`<ul class="slide-list">` + "\n")
		for _, item := range s.Items {
			fmt.Fprintf(b, "<li>%s</li>\n", item)
		}
		b.WriteString("</ul>\n")
	}
	writeBody(b, s.Content)
}

func renderStatistics(b *strings.Builder, s *deck.StatisticsSlide) {
	writeHeading(b, s.Title, "")
	writeStats(b, s.Stats)
	writeBody(b, s.Content)
}

func renderExample(b *strings.Builder, s *deck.ExampleSlide) {
	fmt.Fprintf(b, `<div class="slide-example slide-%s">`+"\n", esc(exampleKind(s.Type)))
	if s.Icon != "" {
		fmt.Fprintf(b, `<div class="example-icon">%s</div>`+"\n", esc(s.Icon))
	}
	writeHeading(b, s.Title, "example-title")
	if ex := s.Example; ex != nil {
		b.WriteString(`<div class="example-case">` + "\n")
		if ex.Title != "" {
			fmt.Fprintf(b, "<h3>%s</h3>\n", esc(ex.Title))
		}
		if ex.Description != "" {
			fmt.Fprintf(b, "<p>%s</p>\n", ex.Description)
		}
		if len(ex.Details) > 0 {
			b.WriteString(`<ul class="details-list">` + "\n")
			for _, d := range ex.Details {
				fmt.Fprintf(b, "<li>%s</li>\n", d)
			}
			b.WriteString("</ul>\n")
		}
		writeStats(b, ex.Stats)
		b.WriteString("</div>\n")
	}
	writeBody(b, s.Content)
	b.WriteString("</div>\n")
}

func renderThreats(b *strings.Builder, s *deck.ThreatsSlide) {
	writeHeading(b, s.Title, "")
	if len(s.Threats) > 0 {
		b.WriteString(`<div class="threat-list">` + "\n")
		for _, t := range s.Threats {
			level := t.Level
			if !level.Valid() {
				level = deck.LevelMedium
			}
			fmt.Fprintf(b, `<div class="threat-item threat-%s">`+"\n", level)
			fmt.Fprintf(b, `<span class="threat-name">%s</span>`+"\n", esc(t.Name))
			fmt.Fprintf(b, `<span class="threat-level">%s</span>`+"\n", level)
			if t.Description != "" {
				fmt.Fprintf(b, `<p class="threat-description">%s</p>`+"\n", t.Description)
			}
			b.WriteString("</div>\n")
		}
		b.WriteString("</div>\n")
	}
	writeBody(b, s.Content)
}

// writeHeading emits an h2 when the title is non-empty.
func writeHeading(b *strings.Builder, title, class string) {
	if title == "" {
		return
	}
	if class != "" {
		fmt.Fprintf(b, `<h2 class="%s">%s</h2>`+"\n", class, esc(title))
		return
	}
	fmt.Fprintf(b, "<h2>%s</h2>\n", esc(title))
}

func writeBody(b *strings.Builder, content string) {
	if content == "" {
		return
	}
	fmt.Fprintf(b, `<div class="content">%s</div>`+"\n", content)
}

func writeStats(b *strings.Builder, stats []deck.Stat) {
	if len(stats) == 0 {
		return
	}
	b.WriteString(`<div class="slide-statistics">` + "\n")
	for _, st := range stats {
		b.WriteString(`<div class="stat-item">`)
		fmt.Fprintf(b, `<span class="stat-value">%s</span>`, esc(st.Value))
		fmt.Fprintf(b, `<span class="stat-label">%s</span>`, esc(st.Label))
		b.WriteString("</div>\n")
	}
	b.WriteString("</div>\n")
}

func exampleKind(t string) string {
	switch t {
	case deck.TypeStegoExample:
		return "stego"
	case deck.TypeBankingExample:
		return "banking"
	default:
		return "generic"
	}
}
