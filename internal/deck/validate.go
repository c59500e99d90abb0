package deck

import "fmt"

// Issue is a lint finding. Issues never block loading.
type Issue struct {
	SlideIndex int    `json:"slideIndex"`
	SlideID    string `json:"slideId,omitempty"`
	Message    string `json:"message"`
}

func (i Issue) String() string {
	if i.SlideIndex < 0 {
		return i.Message
	}
	if i.SlideID != "" {
		return fmt.Sprintf("slide %d (%s): %s", i.SlideIndex+1, i.SlideID, i.Message)
	}
	return fmt.Sprintf("slide %d: %s", i.SlideIndex+1, i.Message)
}

var knownTypes = map[string]bool{
	TypeTitle: true, TypeContent: true, TypeList: true, TypeStatistics: true,
	TypeExample: true, TypeStegoExample: true, TypeBankingExample: true,
	TypeSecurity: true, TypeThreats: true,
}

// Validate lints a decoded deck. Decode warnings are reported with a
// SlideIndex of -1.
func Validate(d *Deck) []Issue {
	if d == nil {
		return nil
	}

	var issues []Issue
	for _, w := range d.Warnings {
		issues = append(issues, Issue{SlideIndex: -1, Message: w})
	}

	seen := make(map[string]int, len(d.Slides))
	for i, s := range d.Slides {
		b := s.Header()
		add := func(format string, args ...any) {
			issues = append(issues, Issue{SlideIndex: i, SlideID: b.ID, Message: fmt.Sprintf(format, args...)})
		}

		if b.ID == "" {
			add("empty id")
		} else if first, dup := seen[b.ID]; dup {
			add("duplicate id, first used by slide %d", first+1)
		} else {
			seen[b.ID] = i
		}

		if !knownTypes[b.Type] {
			add("unknown type %q, rendered as content", b.Type)
		}

		if q := b.Quiz; q != nil {
			if len(q.Options) == 0 {
				add("quiz has no options")
			} else if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
				add("quiz correctIndex %d out of range [0,%d)", q.CorrectIndex, len(q.Options))
			}
		}

		if t, ok := s.(*ThreatsSlide); ok {
			for _, th := range t.Threats {
				if !th.Level.Valid() {
					add("threat %q has unknown level %q", th.Name, th.Level)
				}
			}
		}
	}
	return issues
}
