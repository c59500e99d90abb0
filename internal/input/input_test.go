package input

import (
	"reflect"
	"testing"

	"github.com/coursekit/slidekit/internal/config"
)

func TestKeyboardMap(t *testing.T) {
	k := Keyboard{Search: true, Print: true}
	tests := []struct {
		ev   KeyEvent
		want Command
	}{
		{KeyEvent{Key: "ArrowRight"}, Command{Action: Next}},
		{KeyEvent{Key: " "}, Command{Action: Next}},
		{KeyEvent{Key: "PageDown"}, Command{Action: Next}},
		{KeyEvent{Key: "ArrowLeft"}, Command{Action: Previous}},
		{KeyEvent{Key: "PageUp"}, Command{Action: Previous}},
		{KeyEvent{Key: "Home"}, Command{Action: First}},
		{KeyEvent{Key: "End"}, Command{Action: Last}},
		{KeyEvent{Key: "/"}, Command{Action: ToggleSearch}},
		{KeyEvent{Key: "f"}, Command{Action: ToggleFullscreen}},
		{KeyEvent{Key: "F11"}, Command{Action: ToggleFullscreen}},
		{KeyEvent{Key: "f", Ctrl: true}, Command{}},
		{KeyEvent{Key: "F", Meta: true}, Command{}},
		{KeyEvent{Key: "Escape"}, Command{Action: ExitFullscreen}},
		{KeyEvent{Key: "p"}, Command{Action: Print}},
		{KeyEvent{Key: "p", Ctrl: true}, Command{}},
		{KeyEvent{Key: "1"}, Command{Action: Goto, Index: 0}},
		{KeyEvent{Key: "9"}, Command{Action: Goto, Index: 8}},
		{KeyEvent{Key: "0"}, Command{}},
		{KeyEvent{Key: "x"}, Command{}},
		{KeyEvent{Key: "ArrowRight", InTextField: true}, Command{}},
	}
	for _, tt := range tests {
		if got := k.Map(tt.ev); got != tt.want {
			t.Errorf("Map(%+v) = %+v, want %+v", tt.ev, got, tt.want)
		}
	}
}

func TestKeyboardDisabledFeatures(t *testing.T) {
	var k Keyboard
	if got := k.Map(KeyEvent{Key: "/"}); got.Action != None {
		t.Errorf("search key with search disabled = %v", got.Action)
	}
	if got := k.Map(KeyEvent{Key: "p"}); got.Action != None {
		t.Errorf("print key with print disabled = %v", got.Action)
	}
}

func TestNewKeyboard(t *testing.T) {
	cfg := config.DefaultConfig().Engine
	cfg.EnablePrint = false
	k := NewKeyboard(cfg)
	if got := k.Map(KeyEvent{Key: "ArrowRight"}); got.Action != Next {
		t.Errorf("ArrowRight = %v, want next", got.Action)
	}
	if got := k.Map(KeyEvent{Key: "p"}); got.Action != None {
		t.Errorf("print key with print disabled = %v", got.Action)
	}

	cfg.EnableKeyboard = false
	k = NewKeyboard(cfg)
	for _, key := range []string{"ArrowRight", "ArrowLeft", "Home", "/", "f", "3"} {
		if got := k.Map(KeyEvent{Key: key}); got.Action != None {
			t.Errorf("Map(%q) with keyboard disabled = %v", key, got.Action)
		}
	}
}

func TestSwipe(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 float64
		want           Action
	}{
		{"left", 300, 100, 200, 110, Next},
		{"right", 100, 100, 200, 90, Previous},
		{"at threshold", 100, 100, 50, 100, None},
		{"short", 100, 100, 80, 100, None},
		{"vertical", 100, 100, 20, 300, None},
		{"diagonal tie", 100, 100, 0, 0, None},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSwipe(50)
			s.Start(tt.x0, tt.y0)
			if got := s.End(tt.x1, tt.y1).Action; got != tt.want {
				t.Errorf("End = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSwipeEndWithoutStart(t *testing.T) {
	s := NewSwipe(50)
	if got := s.End(0, 0).Action; got != None {
		t.Errorf("End without Start = %v", got)
	}

	s.Start(300, 0)
	s.End(100, 0)
	if got := s.End(0, 0).Action; got != None {
		t.Errorf("second End = %v, want none", got)
	}

	s.Start(300, 0)
	s.Cancel()
	if got := s.End(100, 0).Action; got != None {
		t.Errorf("End after Cancel = %v", got)
	}
}

type recorder struct {
	calls []string
}

func (r *recorder) rec(name string) bool { r.calls = append(r.calls, name); return true }

func (r *recorder) Next() bool             { return r.rec("next") }
func (r *recorder) Previous() bool         { return r.rec("previous") }
func (r *recorder) First() bool            { return r.rec("first") }
func (r *recorder) Last() bool             { return r.rec("last") }
func (r *recorder) Goto(i int) bool        { return r.rec("goto" + string(rune('0'+i))) }
func (r *recorder) ToggleSearch() bool     { return r.rec("search") }
func (r *recorder) ToggleFullscreen() bool { return r.rec("fullscreen") }
func (r *recorder) ExitFullscreen() bool   { return r.rec("exit") }
func (r *recorder) Print() bool            { return r.rec("print") }

func TestDispatch(t *testing.T) {
	r := &recorder{}
	cmds := []Command{
		{Action: Next}, {Action: Previous}, {Action: First}, {Action: Last},
		{Action: Goto, Index: 3}, {Action: ToggleSearch}, {Action: ToggleFullscreen},
		{Action: ExitFullscreen}, {Action: Print}, {},
	}
	for _, c := range cmds {
		Dispatch(c, r)
	}
	want := []string{"next", "previous", "first", "last", "goto3", "search", "fullscreen", "exit", "print"}
	if !reflect.DeepEqual(r.calls, want) {
		t.Errorf("calls = %v, want %v", r.calls, want)
	}
	if Dispatch(Command{}, r) {
		t.Error("None command reported a change")
	}
}

func TestActionString(t *testing.T) {
	if Next.String() != "next" || Action(99).String() != "unknown" {
		t.Errorf("String() = %q, %q", Next.String(), Action(99).String())
	}
}
