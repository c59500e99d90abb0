package engine

import (
	"github.com/coursekit/slidekit/internal/deck"
	"github.com/coursekit/slidekit/internal/storage"
)

// Host is the environment the engine draws into. All calls are made while
// the engine holds its lock, so implementations must not call back into
// the engine synchronously.
type Host interface {
	// Mount replaces the container content with markup.
	Mount(markup string)
	// ConfirmResume asks whether to continue from a recent record.
	ConfirmResume(rec storage.ProgressRecord) bool
	// ShowQuiz receives the quiz attached to the slide just shown.
	ShowQuiz(q deck.Quiz, slideIndex int)
	ShowSearch(open bool)
	SetFullscreen(on bool)
	// Print receives a complete printable document.
	Print(document string)
}

// NopHost ignores everything and declines to resume. Hosts embed it to
// implement only the calls they care about.
type NopHost struct{}

func (NopHost) Mount(string)                               {}
func (NopHost) ConfirmResume(storage.ProgressRecord) bool { return false }
func (NopHost) ShowQuiz(deck.Quiz, int)                    {}
func (NopHost) ShowSearch(bool)                            {}
func (NopHost) SetFullscreen(bool)                         {}
func (NopHost) Print(string)                               {}
