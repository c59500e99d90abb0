package render

import (
	"html/template"
	"math"
	"strings"

	"github.com/coursekit/slidekit/internal/deck"
)

var (
	frameTmpl = template.Must(template.New("frame").Parse(frameTemplate))
	errorTmpl = template.Must(template.New("error").Parse(errorTemplate))
	printTmpl = template.Must(template.New("print").Parse(printTemplate))
)

// View is everything the frame needs to draw the current slide.
type View struct {
	Slide deck.Slide
	Index int
	Total int

	Search   bool
	Print    bool
	Progress bool
}

// BarPercent is the on-screen progress, counting the current slide as seen.
func BarPercent(index, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(index+1) / float64(total) * 100))
}

type indicator struct {
	Index  int
	Number int
	Active bool
}

type frameData struct {
	ID         string
	Body       template.HTML
	Notes      template.HTML
	Number     int
	Total      int
	First      bool
	Last       bool
	Search     bool
	Print      bool
	Progress   bool
	Percent    int
	Indicators []indicator
}

// Frame renders the slide together with navigation, counter, progress bar
// and indicators.
func Frame(v View) string {
	data := frameData{
		Body:     template.HTML(Render(v.Slide)),
		Number:   v.Index + 1,
		Total:    v.Total,
		First:    v.Index <= 0,
		Last:     v.Index >= v.Total-1,
		Search:   v.Search,
		Print:    v.Print,
		Progress: v.Progress,
		Percent:  BarPercent(v.Index, v.Total),
	}
	if h := header(v.Slide); h != nil {
		data.ID = h.ID
		data.Notes = template.HTML(h.Notes)
	}
	for i := 0; i < v.Total; i++ {
		data.Indicators = append(data.Indicators, indicator{Index: i, Number: i + 1, Active: i == v.Index})
	}

	var b strings.Builder
	if err := frameTmpl.Execute(&b, data); err != nil {
		return Error(err.Error())
	}
	return b.String()
}

// Error renders the panel that replaces the container when a deck cannot be
// shown. The message is escaped.
func Error(message string) string {
	var b strings.Builder
	if err := errorTmpl.Execute(&b, message); err != nil {
		return `<div class="error-message"><h2>Error</h2></div>`
	}
	return b.String()
}

type printPage struct {
	ID     string
	Number int
	Title  string
	Body   template.HTML
	Notes  template.HTML
}

// Print renders every slide of the deck into one printable document.
func Print(d *deck.Deck) (string, error) {
	title := "Slides"
	var pages []printPage
	if d != nil {
		if d.Metadata.Title != "" {
			title = d.Metadata.Title
		}
		for i, s := range d.Slides {
			p := printPage{Number: i + 1, Body: template.HTML(Render(s))}
			if h := header(s); h != nil {
				p.ID = h.ID
				p.Title = h.Title
				p.Notes = template.HTML(h.Notes)
			}
			pages = append(pages, p)
		}
	}

	var b strings.Builder
	err := printTmpl.Execute(&b, struct {
		Title string
		Pages []printPage
	}{title, pages})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

// header returns the common fields, or nil for a nil slide.
func header(s deck.Slide) *deck.Base {
	switch v := s.(type) {
	case *deck.TitleSlide:
		if v != nil {
			return &v.Base
		}
	case *deck.ContentSlide:
		if v != nil {
			return &v.Base
		}
	case *deck.ListSlide:
		if v != nil {
			return &v.Base
		}
	case *deck.StatisticsSlide:
		if v != nil {
			return &v.Base
		}
	case *deck.ExampleSlide:
		if v != nil {
			return &v.Base
		}
	case *deck.ThreatsSlide:
		if v != nil {
			return &v.Base
		}
	case *deck.UnknownSlide:
		if v != nil {
			return &v.Base
		}
	}
	return nil
}
