// Package input translates raw keyboard and touch events into navigation
// commands. It holds no engine state; hosts feed it events and hand the
// resulting commands to Dispatch.
package input

import (
	"math"

	"github.com/coursekit/slidekit/internal/config"
)

// Action is what an input event asks the presentation to do.
type Action int

const (
	None Action = iota
	Next
	Previous
	First
	Last
	Goto
	ToggleSearch
	ToggleFullscreen
	ExitFullscreen
	Print
)

var actionNames = [...]string{
	None:             "none",
	Next:             "next",
	Previous:         "previous",
	First:            "first",
	Last:             "last",
	Goto:             "goto",
	ToggleSearch:     "toggle-search",
	ToggleFullscreen: "toggle-fullscreen",
	ExitFullscreen:   "exit-fullscreen",
	Print:            "print",
}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "unknown"
	}
	return actionNames[a]
}

// Command is an action with its argument. Index is only used by Goto.
type Command struct {
	Action Action
	Index  int
}

// KeyEvent is a key press as reported by the host. Key uses DOM key names
// ("ArrowRight", " ", "Home", "f").
type KeyEvent struct {
	Key         string
	Ctrl        bool
	Meta        bool
	InTextField bool
}

// Keyboard maps key presses to commands. A Disabled keyboard maps nothing.
type Keyboard struct {
	Search   bool
	Print    bool
	Disabled bool
}

// NewKeyboard returns the key map for the given engine options.
func NewKeyboard(cfg config.EngineConfig) Keyboard {
	return Keyboard{
		Search:   cfg.EnableSearch,
		Print:    cfg.EnablePrint,
		Disabled: !cfg.EnableKeyboard,
	}
}

// Map returns the command for ev, or a None command when the key is unbound,
// the keyboard is disabled or the event came from a text field.
func (k Keyboard) Map(ev KeyEvent) Command {
	if k.Disabled || ev.InTextField {
		return Command{}
	}
	modified := ev.Ctrl || ev.Meta

	switch ev.Key {
	case "ArrowRight", " ", "Space", "Spacebar", "PageDown":
		return Command{Action: Next}
	case "ArrowLeft", "PageUp":
		return Command{Action: Previous}
	case "Home":
		return Command{Action: First}
	case "End":
		return Command{Action: Last}
	case "/":
		if k.Search {
			return Command{Action: ToggleSearch}
		}
	case "f", "F", "F11":
		if !modified {
			return Command{Action: ToggleFullscreen}
		}
	case "Escape", "Esc":
		return Command{Action: ExitFullscreen}
	case "p", "P":
		if k.Print && !modified {
			return Command{Action: Print}
		}
	default:
		if len(ev.Key) == 1 && ev.Key[0] >= '1' && ev.Key[0] <= '9' && !modified {
			return Command{Action: Goto, Index: int(ev.Key[0] - '1')}
		}
	}
	return Command{}
}

// Swipe detects horizontal swipes between a touch start and end.
type Swipe struct {
	Threshold float64

	started bool
	x, y    float64
}

// NewSwipe creates a detector that fires once movement exceeds threshold.
func NewSwipe(threshold float64) *Swipe {
	return &Swipe{Threshold: threshold}
}

// Start records where a touch began.
func (s *Swipe) Start(x, y float64) {
	s.started = true
	s.x, s.y = x, y
}

// End completes the gesture. Moving left means next, moving right means
// previous. Short or mostly vertical moves and an end without a start yield
// a None command.
func (s *Swipe) End(x, y float64) Command {
	if !s.started {
		return Command{}
	}
	s.started = false

	dx := s.x - x
	dy := s.y - y
	if math.Abs(dx) <= s.Threshold || math.Abs(dx) <= math.Abs(dy) {
		return Command{}
	}
	if dx > 0 {
		return Command{Action: Next}
	}
	return Command{Action: Previous}
}

// Cancel forgets a touch in progress.
func (s *Swipe) Cancel() {
	s.started = false
}

// Target is what commands act on.
type Target interface {
	Next() bool
	Previous() bool
	First() bool
	Last() bool
	Goto(index int) bool
	ToggleSearch() bool
	ToggleFullscreen() bool
	ExitFullscreen() bool
	Print() bool
}

// Dispatch applies cmd to t and reports whether anything changed.
func Dispatch(cmd Command, t Target) bool {
	switch cmd.Action {
	case Next:
		return t.Next()
	case Previous:
		return t.Previous()
	case First:
		return t.First()
	case Last:
		return t.Last()
	case Goto:
		return t.Goto(cmd.Index)
	case ToggleSearch:
		return t.ToggleSearch()
	case ToggleFullscreen:
		return t.ToggleFullscreen()
	case ExitFullscreen:
		return t.ExitFullscreen()
	case Print:
		return t.Print()
	default:
		return false
	}
}
