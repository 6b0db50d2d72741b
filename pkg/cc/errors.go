package cc

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-components/pkg/edgestore"
	"github.com/dd0wney/cluso-components/pkg/tabio"
)

// Internal inconsistencies. Either of these firing means a driver invariant
// was violated; the run aborts with a distinct failure instead of writing a
// labeling that cannot be trusted.
var (
	ErrNoMembers  = errors.New("merge source label has no members in the reverse index")
	ErrNoProgress = errors.New("no labels updated despite pending merges")
)

// Kind classifies a failure for exit codes and log fields.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfig
	KindResource
	KindInput
	KindInconsistency
)

// String returns the kind's log representation.
func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindResource:
		return "resource"
	case KindInput:
		return "input"
	case KindInconsistency:
		return "inconsistency"
	default:
		return "unknown"
	}
}

// Error wraps a failure with the operation that produced it and its kind.
type Error struct {
	Op    string
	Kind  Kind
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target matches this error's cause.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Cause, target)
}

// Classify maps any error produced by the components pipeline to its kind.
func Classify(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) && ce.Kind != KindUnknown {
		return ce.Kind
	}
	switch {
	case errors.Is(err, edgestore.ErrZeroCapacity):
		return KindConfig
	case errors.Is(err, edgestore.ErrBackingExists):
		return KindResource
	case errors.Is(err, ErrNoMembers), errors.Is(err, ErrNoProgress):
		return KindInconsistency
	}
	var pe *tabio.ParseError
	if errors.As(err, &pe) {
		return KindInput
	}
	return KindUnknown
}

func wrap(op string, kind Kind, cause error) error {
	return &Error{Op: op, Kind: kind, Cause: cause}
}
