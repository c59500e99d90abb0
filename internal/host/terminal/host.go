// Package terminal presents a deck on a text terminal. It reads commands
// line by line, maps them to key events and prints each slide as text.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/manifoldco/promptui"
	"go.uber.org/zap"

	"github.com/coursekit/slidekit/internal/deck"
	"github.com/coursekit/slidekit/internal/engine"
	"github.com/coursekit/slidekit/internal/input"
	"github.com/coursekit/slidekit/internal/logging"
	"github.com/coursekit/slidekit/internal/progress"
	"github.com/coursekit/slidekit/internal/search"
	"github.com/coursekit/slidekit/internal/storage"
)

const helpText = `Commands:
  Enter, n        next slide
  b               previous slide
  home, end       first or last slide
  1-9, g <n>      go to slide
  /               search
  f, esc          toggle or leave fullscreen
  p               print to an HTML file
  q               quit`

// Confirmer asks a yes/no question.
type Confirmer func(label string) (bool, error)

// PromptConfirm asks on the terminal with promptui.
func PromptConfirm(label string) (bool, error) {
	p := promptui.Prompt{Label: label, IsConfirm: true}
	_, err := p.Run()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, promptui.ErrAbort) {
		return false, nil
	}
	return false, err
}

// Options configures a Host.
type Options struct {
	Out      io.Writer
	Reporter progress.Reporter
	Confirm  Confirmer
	// PrintDir receives printable documents; defaults to the temp dir.
	PrintDir string
	Keys     input.Keyboard
	Logger   *zap.Logger
}

// Host implements engine.Host for a terminal.
type Host struct {
	out      io.Writer
	reporter progress.Reporter
	confirm  Confirmer
	printDir string
	keys     input.Keyboard
	log      *zap.Logger

	mu         sync.Mutex
	quiz       *deck.Quiz
	searchOpen bool
	results    []search.Result
	fullscreen bool
	printed    string
}

// New creates a terminal host.
func New(opts Options) *Host {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Reporter == nil {
		opts.Reporter = progress.NewPlainReporter(io.Discard)
	}
	if opts.Confirm == nil {
		opts.Confirm = PromptConfirm
	}
	if opts.PrintDir == "" {
		opts.PrintDir = os.TempDir()
	}
	return &Host{
		out:      opts.Out,
		reporter: opts.Reporter,
		confirm:  opts.Confirm,
		printDir: opts.PrintDir,
		keys:     opts.Keys,
		log:      logging.OrNop(opts.Logger),
	}
}

func (h *Host) Mount(markup string) {
	fmt.Fprintf(h.out, "\n%s\n\n", Text(markup))
}

func (h *Host) ConfirmResume(rec storage.ProgressRecord) bool {
	ok, err := h.confirm(fmt.Sprintf("Continue from slide %d of %d", rec.CurrentSlide+1, rec.TotalSlides))
	if err != nil {
		h.log.Warn("resume prompt failed", zap.Error(err))
		return false
	}
	return ok
}

func (h *Host) ShowQuiz(q deck.Quiz, _ int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(q.Options) == 0 {
		return
	}
	h.quiz = &q
	fmt.Fprintf(h.out, "Quick check: %s\n", search.StripHTML(q.Question))
	for i, opt := range q.Options {
		fmt.Fprintf(h.out, "  %d) %s\n", i+1, search.StripHTML(opt))
	}
	fmt.Fprintf(h.out, "Answer 1-%d, anything else skips.\n", len(q.Options))
}

func (h *Host) ShowSearch(open bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.searchOpen = open
	h.results = nil
	if open {
		fmt.Fprintln(h.out, "Search: type a query, pick a result by number, empty line closes.")
	}
}

func (h *Host) SetFullscreen(on bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fullscreen = on
	state := "off"
	if on {
		state = "on"
	}
	fmt.Fprintf(h.out, "[fullscreen %s]\n", state)
}

func (h *Host) Print(document string) {
	path := filepath.Join(h.printDir, "slidekit-print.html")
	if err := os.WriteFile(path, []byte(document), 0o644); err != nil {
		h.log.Warn("writing print view failed", zap.String("path", path), zap.Error(err))
		fmt.Fprintf(h.out, "Could not write print view: %v\n", err)
		return
	}
	h.mu.Lock()
	h.printed = path
	h.mu.Unlock()
	fmt.Fprintf(h.out, "Print view written to %s\n", path)
}

// Printed returns the path of the last printable document written.
func (h *Host) Printed() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.printed
}

// Attach starts the progress display for e and keeps it in sync with
// navigation. Call it after Load and before Start.
func (h *Host) Attach(e *engine.Engine, description string) {
	h.reporter.Start(e.State().Total, description)
	e.OnSlideChange(func(c engine.SlideChange) {
		title := ""
		if c.Slide != nil {
			title = c.Slide.Header().Title
		}
		h.reporter.Update(c.Current+1, title)
	})
}

// Run reads commands from in until it is exhausted, the user quits or ctx
// is cancelled.
func (h *Host) Run(ctx context.Context, e *engine.Engine, in io.Reader) error {
	defer h.reporter.Finish()

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(sc.Text())
		switch strings.ToLower(line) {
		case "q", "quit", "exit":
			return nil
		case "?", "help":
			fmt.Fprintln(h.out, helpText)
			continue
		}

		if h.answerQuiz(line) {
			continue
		}
		if h.inSearch() {
			h.searchLine(e, line)
			continue
		}

		cmd, ok := h.command(line)
		if !ok {
			if h.keys.Disabled {
				fmt.Fprintln(h.out, "Keyboard navigation is off. Use g <n> to jump or q to quit.")
				continue
			}
			fmt.Fprintf(h.out, "Unknown command %q. Type ? for help.\n", line)
			continue
		}
		input.Dispatch(cmd, e)
	}
	return sc.Err()
}

// answerQuiz consumes line when it answers the pending quiz. Any other
// line dismisses the quiz and is handled normally.
func (h *Host) answerQuiz(line string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.quiz == nil {
		return false
	}
	q := h.quiz
	h.quiz = nil

	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(q.Options) {
		return false
	}
	if n-1 == q.CorrectIndex {
		fmt.Fprintln(h.out, "Correct!")
	} else {
		fmt.Fprintln(h.out, "Not quite.")
	}
	return true
}

func (h *Host) inSearch() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.searchOpen
}

func (h *Host) searchLine(e *engine.Engine, line string) {
	if line == "" {
		e.ToggleSearch()
		return
	}

	h.mu.Lock()
	results := h.results
	h.mu.Unlock()
	if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(results) {
		e.SelectResult(results[n-1].Index)
		return
	}

	results = e.Search(line)
	h.mu.Lock()
	h.results = results
	h.mu.Unlock()

	if len(results) == 0 {
		fmt.Fprintln(h.out, "Nothing found.")
		return
	}
	for i, r := range results {
		fmt.Fprintf(h.out, "  %d) slide %d, %s: %s\n", i+1, r.Index+1, r.Title, Text(r.Excerpt))
	}
}

// command turns a line into a navigation command through the key map.
func (h *Host) command(line string) (input.Command, bool) {
	lower := strings.ToLower(line)
	if rest, ok := strings.CutPrefix(lower, "g "); ok {
		n, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return input.Command{}, false
		}
		return input.Command{Action: input.Goto, Index: n - 1}, true
	}

	key, ok := lineKeys[lower]
	if !ok {
		if len(line) == 1 && line[0] >= '1' && line[0] <= '9' {
			key = line
		} else {
			return input.Command{}, false
		}
	}
	cmd := h.keys.Map(input.KeyEvent{Key: key})
	return cmd, cmd.Action != input.None
}

var lineKeys = map[string]string{
	"":           "ArrowRight",
	"n":          "ArrowRight",
	"next":       "ArrowRight",
	"b":          "ArrowLeft",
	"prev":       "ArrowLeft",
	"previous":   "ArrowLeft",
	"home":       "Home",
	"first":      "Home",
	"end":        "End",
	"last":       "End",
	"/":          "/",
	"search":     "/",
	"f":          "f",
	"fullscreen": "f",
	"esc":        "Escape",
	"p":          "p",
	"print":      "p",
}
