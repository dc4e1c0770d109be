package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned when a stage transition is not allowed
	ErrInvalidTransition = errors.New("invalid stage transition")

	// ErrNoGratuitySource is returned when a request has no GratuitySource
	ErrNoGratuitySource = errors.New("no gratuity source")
)

// Kind classifies a failed run.
type Kind string

const (
	// KindInput covers unreadable files, rejected records under the strict
	// record policy, a missing Total column and malformed cells under the
	// strict cell policy.
	KindInput Kind = "input"

	// KindValidation covers an invalid gratuity percentage.
	KindValidation Kind = "validation"

	// KindOutput covers failures to build or write the report.
	KindOutput Kind = "output"

	// KindAborted covers a gratuity source that gave up (no input, or the
	// context was cancelled).
	KindAborted Kind = "aborted"
)

// Error is returned by Run when a run ends in StageError.
type Error struct {
	Kind Kind

	// Stage is the last stage the run reached before failing.
	Stage Stage

	// Message is the operator-facing description.
	Message string

	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a pipeline *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var pErr *Error
	return errors.As(err, &pErr) && pErr.Kind == kind
}
