package engine

import (
	"go.uber.org/zap"

	"github.com/coursekit/slidekit/internal/render"
	"github.com/coursekit/slidekit/internal/search"
)

// ToggleSearch opens or closes the search panel.
func (e *Engine) ToggleSearch() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.cfg.EnableSearch || e.index == nil {
		return false
	}
	e.searchOpen = !e.searchOpen
	e.host.ShowSearch(e.searchOpen)
	return true
}

// SearchOpen reports whether the search panel is shown.
func (e *Engine) SearchOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.searchOpen
}

// Search queries the deck index.
func (e *Engine) Search(q string) []search.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.cfg.EnableSearch {
		return nil
	}
	return e.index.Query(q)
}

// SelectResult jumps to a result's slide and closes the search panel.
func (e *Engine) SelectResult(index int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	moved := e.gotoLocked(index)
	if e.searchOpen {
		e.searchOpen = false
		e.host.ShowSearch(false)
	}
	return moved
}

// ToggleFullscreen flips fullscreen mode.
func (e *Engine) ToggleFullscreen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fullscreen = !e.fullscreen
	e.host.SetFullscreen(e.fullscreen)
	return true
}

// ExitFullscreen leaves fullscreen mode if it is active.
func (e *Engine) ExitFullscreen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.fullscreen {
		return false
	}
	e.fullscreen = false
	e.host.SetFullscreen(false)
	return true
}

// Fullscreen reports whether fullscreen mode is active.
func (e *Engine) Fullscreen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fullscreen
}

// Print hands a printable document of the whole deck to the host.
func (e *Engine) Print() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.cfg.EnablePrint || e.deck == nil {
		return false
	}
	doc, err := render.Print(e.deck)
	if err != nil {
		e.log.Warn("building print view failed", zap.Error(err))
		return false
	}
	e.host.Print(doc)
	return true
}

// PrintView returns the printable document without involving the host.
func (e *Engine) PrintView() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deck == nil {
		return "", ErrNotLoaded
	}
	return render.Print(e.deck)
}
