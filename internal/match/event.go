package match

import (
	"fmt"
	"time"
)

// Outcome is the result of one attempt or of a whole cohort.
type Outcome string

const (
	OutcomeSuccess       Outcome = "success"
	OutcomeBlocked       Outcome = "blocked-sender"
	OutcomeExhausted     Outcome = "exhausted"
	OutcomeUnsatisfiable Outcome = "unsatisfiable"
)

// Attempt describes one greedy pass over a cohort.
type Attempt struct {
	Index    int
	Strategy Strategy
	Outcome  Outcome
	Blocked  string
	Seed     int64
}

// Severity mirrors the diagnostics sink's levels.
type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// Event is a diagnostics record emitted while matching.
type Event struct {
	Time     time.Time
	Severity Severity
	Category string
	Attempt  *Attempt
	Message  string
}

// Recorder receives diagnostics events. Cohorts run concurrently, so
// implementations must be safe for concurrent use. Record has no error
// return: a failing sink never fails matching.
type Recorder interface {
	Record(Event)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(Event)

// Record calls f(e).
func (f RecorderFunc) Record(e Event) {
	f(e)
}

func attemptEvent(category string, total int, a Attempt) Event {
	sev := SeverityInfo
	msg := fmt.Sprintf("category %s: attempt %d/%d strategy=%s outcome=%s", category, a.Index+1, total, a.Strategy, a.Outcome)
	if a.Outcome == OutcomeBlocked {
		sev = SeverityWarn
		msg += " blocked=" + a.Blocked
	}
	return Event{Severity: sev, Category: category, Attempt: &a, Message: msg}
}
