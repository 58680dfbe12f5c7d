package match

import (
	"errors"
	"fmt"
)

var (
	// ErrUnmatchable is matched by every cohort failure.
	ErrUnmatchable = errors.New("match: cohort cannot be matched")
	// ErrUnsatisfiable marks a cohort rejected by the pre-check; no attempt
	// budget was spent on it.
	ErrUnsatisfiable = errors.New("match: cohort is unsatisfiable")
	// ErrExhausted marks a cohort that passed the pre-check but failed every
	// attempt. A larger budget may still succeed.
	ErrExhausted = errors.New("match: attempt budget exhausted")
	// ErrInvalidAssignment is returned by Verify.
	ErrInvalidAssignment = errors.New("match: invalid assignment")
)

// Kind classifies a cohort failure.
type Kind string

const (
	KindUnsatisfiable Kind = "unsatisfiable"
	KindExhausted     Kind = "exhausted"
)

// CohortError reports why one category could not be matched.
type CohortError struct {
	Category string
	Kind     Kind
	Reason   string
	// Family is the exclusion group holding a majority, when that is the cause.
	Family string
	// Blocked is the sender that stranded the last attempt.
	Blocked  string
	Attempts int
}

func (e *CohortError) Error() string {
	switch e.Kind {
	case KindExhausted:
		msg := fmt.Sprintf("match: category %q: no valid assignment after %d attempts", e.Category, e.Attempts)
		if e.Blocked != "" {
			msg += fmt.Sprintf(" (last blocked sender %s)", e.Blocked)
		}
		return msg
	default:
		return fmt.Sprintf("match: category %q: %s", e.Category, e.Reason)
	}
}

// Is lets errors.Is match the sentinel for the error's kind as well as
// ErrUnmatchable.
func (e *CohortError) Is(target error) bool {
	switch target {
	case ErrUnmatchable:
		return true
	case ErrUnsatisfiable:
		return e.Kind == KindUnsatisfiable
	case ErrExhausted:
		return e.Kind == KindExhausted
	}
	return false
}

// CohortErrors flattens err (including errors.Join trees) into the cohort
// failures it contains.
func CohortErrors(err error) []*CohortError {
	if err == nil {
		return nil
	}
	var out []*CohortError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, inner := range joined.Unwrap() {
			out = append(out, CohortErrors(inner)...)
		}
		return out
	}
	var ce *CohortError
	if errors.As(err, &ce) {
		out = append(out, ce)
	}
	return out
}
