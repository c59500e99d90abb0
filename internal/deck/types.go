package deck

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Slide type tags as they appear in deck files.
const (
	TypeTitle          = "title"
	TypeContent        = "content"
	TypeList           = "list"
	TypeStatistics     = "statistics"
	TypeExample        = "example"
	TypeStegoExample   = "stego-example"
	TypeBankingExample = "banking-example"
	TypeSecurity       = "security"
	TypeThreats        = "threats"
)

// Deck is the ordered set of slides for one lecture.
type Deck struct {
	Metadata Metadata `json:"metadata"`
	Slides   []Slide  `json:"slides"`
	// Warnings lists slides that were only partially decoded.
	Warnings []string `json:"-"`
}

// Len returns the number of slides.
func (d *Deck) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Slides)
}

// Metadata identifies the lecture a deck belongs to.
type Metadata struct {
	ModuleID  string `json:"module"`
	LectureID string `json:"lecture"`
	Title     string `json:"title,omitempty"`
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw struct {
		Module    Text `json:"module"`
		ModuleID  Text `json:"moduleId"`
		Lecture   Text `json:"lecture"`
		LectureID Text `json:"lectureId"`
		Title     Text `json:"title"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.ModuleID = firstNonEmpty(string(raw.Module), string(raw.ModuleID))
	m.LectureID = firstNonEmpty(string(raw.Lecture), string(raw.LectureID))
	m.Title = string(raw.Title)
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// Text is a string that also accepts JSON numbers and booleans, since deck
// authors write ids and statistic values both ways.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*t = Text(n.String())
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		return err
	}
	*t = Text(strconv.FormatBool(b))
	return nil
}

// Slide is one renderable unit. The set of implementations is closed:
// TitleSlide, ContentSlide, ListSlide, StatisticsSlide, ExampleSlide,
// ThreatsSlide and UnknownSlide.
type Slide interface {
	Header() *Base
	isSlide()
}

// Base holds the fields every slide shares.
type Base struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
	Notes   string `json:"notes,omitempty"`
	Quiz    *Quiz  `json:"quiz,omitempty"`
}

// Header returns the common fields.
func (b *Base) Header() *Base { return b }

// Quiz is an optional check attached to a slide.
type Quiz struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
}

func (q *Quiz) UnmarshalJSON(data []byte) error {
	var raw struct {
		Question     Text   `json:"question"`
		Options      []Text `json:"options"`
		CorrectIndex *int   `json:"correctIndex"`
		Correct      *int   `json:"correct"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	q.Question = string(raw.Question)
	q.Options = texts(raw.Options)
	switch {
	case raw.CorrectIndex != nil:
		q.CorrectIndex = *raw.CorrectIndex
	case raw.Correct != nil:
		q.CorrectIndex = *raw.Correct
	default:
		q.CorrectIndex = -1
	}
	return nil
}

// TitleSlide opens a lecture or a section.
type TitleSlide struct {
	Base
	Subtitle string `json:"subtitle,omitempty"`
}

// ContentSlide is free-form markup with an optional image.
type ContentSlide struct {
	Base
	Image string `json:"image,omitempty"`
}

// ListSlide shows an ordered sequence of items.
type ListSlide struct {
	Base
	Items []string `json:"items,omitempty"`
}

// StatisticsSlide shows value/label pairs.
type StatisticsSlide struct {
	Base
	Stats []Stat `json:"stats,omitempty"`
}

// Stat is one figure on a statistics slide.
type Stat struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ExampleSlide presents a worked case from the course domain.
type ExampleSlide struct {
	Base
	Icon    string   `json:"icon,omitempty"`
	Example *Example `json:"example,omitempty"`
}

// Example is the case study shown on an ExampleSlide.
type Example struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Details     []string `json:"details,omitempty"`
	Stats       []Stat   `json:"stats,omitempty"`
}

// ThreatsSlide lists threats with a severity level.
type ThreatsSlide struct {
	Base
	Threats []Threat `json:"threats,omitempty"`
}

// ThreatLevel is the severity of a threat.
type ThreatLevel string

const (
	LevelLow    ThreatLevel = "low"
	LevelMedium ThreatLevel = "medium"
	LevelHigh   ThreatLevel = "high"
)

// Valid reports whether l is one of the known levels.
func (l ThreatLevel) Valid() bool {
	return l == LevelLow || l == LevelMedium || l == LevelHigh
}

// Threat is one entry of a ThreatsSlide.
type Threat struct {
	Name        string      `json:"name"`
	Level       ThreatLevel `json:"level"`
	Description string      `json:"description,omitempty"`
}

// UnknownSlide carries a slide whose type tag is not recognized. It is
// rendered like a content slide.
type UnknownSlide struct {
	Base
	Image string `json:"image,omitempty"`
}

func (*TitleSlide) isSlide()      {}
func (*ContentSlide) isSlide()    {}
func (*ListSlide) isSlide()       {}
func (*StatisticsSlide) isSlide() {}
func (*ExampleSlide) isSlide()    {}
func (*ThreatsSlide) isSlide()    {}
func (*UnknownSlide) isSlide()    {}

func texts(in []Text) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, t := range in {
		out[i] = string(t)
	}
	return out
}
