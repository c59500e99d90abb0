package deck

import "fmt"

// Reason classifies why a deck could not be loaded.
type Reason string

const (
	ReasonNotFound  Reason = "not-found"
	ReasonBadStatus Reason = "bad-status"
	ReasonMalformed Reason = "malformed"
)

// DataError reports a deck that is missing, unreachable or malformed. It is
// fatal to engine initialization and never retried.
type DataError struct {
	Reason Reason
	Source string
	Status int
	Err    error
}

func (e *DataError) Error() string {
	msg := fmt.Sprintf("loading deck %s: %s", e.Source, e.Reason)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DataError) Unwrap() error { return e.Err }
