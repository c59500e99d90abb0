package deck

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	errMissingSlides = errors.New(`"slides" field is missing`)
	errSlidesNotList = errors.New(`"slides" field is not a sequence`)
)

// DecodeJSON parses a deck document. The top level must be an object with
// a "slides" sequence; individual slides are decoded leniently and any
// field that cannot be read is dropped with a warning.
func DecodeJSON(data []byte) (*Deck, error) {
	var raw struct {
		Metadata json.RawMessage `json:"metadata"`
		Slides   json.RawMessage `json:"slides"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	slidesJSON := bytes.TrimSpace(raw.Slides)
	if len(slidesJSON) == 0 || bytes.Equal(slidesJSON, []byte("null")) {
		return nil, errMissingSlides
	}
	if slidesJSON[0] != '[' {
		return nil, errSlidesNotList
	}
	var items []json.RawMessage
	if err := json.Unmarshal(slidesJSON, &items); err != nil {
		return nil, err
	}

	d := &Deck{Slides: make([]Slide, 0, len(items))}
	if meta := bytes.TrimSpace(raw.Metadata); len(meta) > 0 && !bytes.Equal(meta, []byte("null")) {
		if err := json.Unmarshal(meta, &d.Metadata); err != nil {
			return nil, fmt.Errorf("metadata: %w", err)
		}
	}

	for i, item := range items {
		s, warnings := decodeSlide(item, i)
		d.Slides = append(d.Slides, s)
		d.Warnings = append(d.Warnings, warnings...)
	}
	return d, nil
}

type rawStat struct {
	Value Text `json:"value"`
	Label Text `json:"label"`
}

type rawExample struct {
	Title       Text      `json:"title"`
	Description Text      `json:"description"`
	Details     []Text    `json:"details"`
	Stats       []rawStat `json:"stats"`
}

type rawThreat struct {
	Name        Text `json:"name"`
	Level       Text `json:"level"`
	Description Text `json:"description"`
}

func decodeSlide(data json.RawMessage, index int) (Slide, []string) {
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf("slide %d: ", index+1)+fmt.Sprintf(format, args...))
	}

	base, err := decodeBase(data)
	if err != nil {
		warn("partially unreadable: %v", err)
	}
	if base.ID == "" {
		base.ID = strconv.Itoa(index + 1)
		if err == nil {
			warn("missing id, using %q", base.ID)
		}
	}

	var slide Slide
	var variantErr error
	switch base.Type {
	case TypeTitle:
		var v struct {
			Subtitle Text `json:"subtitle"`
		}
		variantErr = json.Unmarshal(data, &v)
		slide = &TitleSlide{Base: base, Subtitle: string(v.Subtitle)}

	case TypeContent:
		var v struct {
			Image Text `json:"image"`
		}
		variantErr = json.Unmarshal(data, &v)
		slide = &ContentSlide{Base: base, Image: string(v.Image)}

	case TypeList:
		var v struct {
			Items []Text `json:"items"`
		}
		variantErr = json.Unmarshal(data, &v)
		slide = &ListSlide{Base: base, Items: texts(v.Items)}

	case TypeStatistics:
		var v struct {
			Stats []rawStat `json:"stats"`
		}
		variantErr = json.Unmarshal(data, &v)
		slide = &StatisticsSlide{Base: base, Stats: stats(v.Stats)}

	case TypeExample, TypeStegoExample, TypeBankingExample:
		var v struct {
			Icon    Text        `json:"icon"`
			Logo    Text        `json:"logo"`
			Example *rawExample `json:"example"`
			Case    *rawExample `json:"case"`
		}
		variantErr = json.Unmarshal(data, &v)
		ex := v.Example
		if ex == nil {
			ex = v.Case
		}
		s := &ExampleSlide{Base: base, Icon: firstNonEmpty(string(v.Icon), string(v.Logo))}
		if ex != nil {
			s.Example = &Example{
				Title:       string(ex.Title),
				Description: string(ex.Description),
				Details:     texts(ex.Details),
				Stats:       stats(ex.Stats),
			}
		}
		slide = s

	case TypeSecurity, TypeThreats:
		var v struct {
			Threats []rawThreat `json:"threats"`
		}
		variantErr = json.Unmarshal(data, &v)
		s := &ThreatsSlide{Base: base}
		for _, t := range v.Threats {
			s.Threats = append(s.Threats, Threat{
				Name:        string(t.Name),
				Level:       ThreatLevel(strings.ToLower(strings.TrimSpace(string(t.Level)))),
				Description: string(t.Description),
			})
		}
		slide = s

	default:
		var v struct {
			Image Text `json:"image"`
		}
		variantErr = json.Unmarshal(data, &v)
		slide = &UnknownSlide{Base: base, Image: string(v.Image)}
	}

	if variantErr != nil && err == nil {
		warn("%s fields dropped: %v", typeLabel(base.Type), variantErr)
	}
	return slide, warnings
}

// decodeBase reads the common fields. On failure it still returns whatever
// id and type could be recovered.
func decodeBase(data json.RawMessage) (Base, error) {
	var h struct {
		ID      Text            `json:"id"`
		Type    Text            `json:"type"`
		Title   Text            `json:"title"`
		Content Text            `json:"content"`
		Notes   Text            `json:"notes"`
		Quiz    json.RawMessage `json:"quiz"`
	}
	if err := json.Unmarshal(data, &h); err != nil {
		var idOnly struct {
			ID   Text `json:"id"`
			Type Text `json:"type"`
		}
		_ = json.Unmarshal(data, &idOnly)
		return Base{ID: string(idOnly.ID), Type: string(idOnly.Type)}, err
	}

	b := Base{
		ID:      strings.TrimSpace(string(h.ID)),
		Type:    strings.TrimSpace(string(h.Type)),
		Title:   string(h.Title),
		Content: string(h.Content),
		Notes:   string(h.Notes),
	}
	if q := bytes.TrimSpace(h.Quiz); len(q) > 0 && !bytes.Equal(q, []byte("null")) {
		var quiz Quiz
		if err := json.Unmarshal(q, &quiz); err != nil {
			return b, fmt.Errorf("quiz: %w", err)
		}
		b.Quiz = &quiz
	}
	return b, nil
}

func stats(in []rawStat) []Stat {
	if in == nil {
		return nil
	}
	out := make([]Stat, len(in))
	for i, s := range in {
		out[i] = Stat{Value: string(s.Value), Label: string(s.Label)}
	}
	return out
}

func typeLabel(t string) string {
	if t == "" {
		return "untyped"
	}
	return t
}
