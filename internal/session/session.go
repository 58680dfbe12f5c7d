// Package session runs one end-to-end exchange: load the roster, match it
// while a progress indicator spins, ask for confirmation (regenerating on
// rejection), and write the accepted result next to a per-run debug log.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/VDandavate/Secret-Santa-Generator/internal/config"
	"github.com/VDandavate/Secret-Santa-Generator/internal/logbook"
	"github.com/VDandavate/Secret-Santa-Generator/internal/match"
	"github.com/VDandavate/Secret-Santa-Generator/internal/output"
	"github.com/VDandavate/Secret-Santa-Generator/internal/participant"
	"github.com/VDandavate/Secret-Santa-Generator/internal/roster"
)

// ProgressLabel is shown next to the spinner while matching.
const ProgressLabel = "Generating matches, please wait..."

// Decision is the operator's answer to a proposed result.
type Decision int

const (
	// Accept writes the proposal.
	Accept Decision = iota + 1
	// Reject discards the proposal and matches again with fresh randomness.
	Reject
	// Abort discards the proposal and ends the run without writing.
	Abort
)

func (d Decision) String() string {
	switch d {
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	case Abort:
		return "abort"
	default:
		return "undecided"
	}
}

// Proposal is a verified result awaiting confirmation.
type Proposal struct {
	Round int
	Seed  int64
	Pairs []output.Pair
}

// Confirmer asks whether a proposal should be kept.
type Confirmer interface {
	Confirm(ctx context.Context, p Proposal) (Decision, error)
}

// AutoConfirm accepts every proposal.
type AutoConfirm struct{}

// Confirm returns Accept.
func (AutoConfirm) Confirm(context.Context, Proposal) (Decision, error) {
	return Accept, nil
}

// Indicator shows activity while matching runs.
type Indicator interface {
	Start(ctx context.Context, label string) Stopper
}

// Stopper ends a running indicator and waits (bounded) for it to exit.
type Stopper interface {
	Stop()
}

// Status describes how a run ended.
type Status string

const (
	StatusAccepted Status = "accepted"
	StatusAborted  Status = "aborted"
	StatusFailed   Status = "failed"
)

// Request describes one run.
type Request struct {
	RosterPath string
	// OutputDir overrides where artifacts go; empty means beside the roster.
	OutputDir string
	// Format is config.FormatText or config.FormatJSON.
	Format string
	// Debug enables the per-run debug log.
	Debug bool
}

// Outcome reports what a run produced.
type Outcome struct {
	RunID      string
	Status     Status
	Rounds     int
	Seed       int64
	Pairs      []output.Pair
	ResultPath string
	DebugPath  string
	// DebugTail holds the last debug lines when the run failed.
	DebugTail []string
}

// Runner executes runs. It is safe to reuse across runs.
type Runner struct {
	confirmer Confirmer
	indicator Indicator
	logger    *zap.Logger
	matchOpts []match.Option
	now       func() time.Time
	newRunID  func() string
	verify    func(participant.Directory, match.Assignment) error
	tailLines int
}

// RunnerOption customizes Runner construction.
type RunnerOption func(*Runner)

// WithConfirmer sets who approves proposals. Without one every proposal is
// accepted.
func WithConfirmer(c Confirmer) RunnerOption {
	return func(r *Runner) {
		r.confirmer = c
	}
}

// WithIndicator sets the progress indicator shown while matching.
func WithIndicator(i Indicator) RunnerOption {
	return func(r *Runner) {
		r.indicator = i
	}
}

// WithLogger sets the operator logger.
func WithLogger(l *zap.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMatchOptions configures the matcher built for each run.
func WithMatchOptions(opts ...match.Option) RunnerOption {
	return func(r *Runner) {
		r.matchOpts = append(r.matchOpts, opts...)
	}
}

// WithClock overrides the time source used for artifact names.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRunner builds a Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		logger:    zap.NewNop(),
		now:       time.Now,
		newRunID:  uuid.NewString,
		verify:    match.Verify,
		tailLines: 10,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// MatchOptions translates the matching section of the settings file.
func MatchOptions(cfg *config.Config) []match.Option {
	return []match.Option{
		match.WithMaxAttempts(cfg.Matching.MaxAttempts),
		match.WithPrecheck(cfg.Matching.Precheck),
		match.WithParallel(cfg.Matching.Parallel),
		match.WithSeed(cfg.Matching.Seed),
	}
}

// Run performs one exchange. Roster problems fail before anything is
// written. When matching fails the returned Outcome is still populated with
// the debug log location and tail alongside the error.
func (r *Runner) Run(ctx context.Context, req Request) (*Outcome, error) {
	dir, err := roster.Load(req.RosterPath)
	if err != nil {
		return nil, err
	}
	started := r.now()
	namer := output.NewNamer(req.RosterPath, req.OutputDir, started)
	outcome := &Outcome{RunID: r.newRunID()}

	var book *logbook.Logbook
	if req.Debug {
		path, err := namer.Debug()
		if err != nil {
			return nil, err
		}
		book, err = logbook.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := book.Close(); err != nil {
				r.logger.Warn("debug log incomplete", zap.String("path", path), zap.Error(err))
			}
		}()
		outcome.DebugPath = path
	}
	cohorts := participant.Partition(dir)
	book.Info("run %s: roster %s, %d participants in %d categories", outcome.RunID, req.RosterPath, len(dir), len(cohorts))
	for _, cat := range cohorts.Categories() {
		book.Info("category %s: %d participants, families %v", cat, cohorts[cat].Len(), cohorts[cat].FamilySizes())
	}

	opts := append([]match.Option{}, r.matchOpts...)
	opts = append(opts, match.WithRecorder(bookRecorder{book: book}), match.WithLogger(r.logger))
	matcher := match.New(opts...)

	for round := 1; ; round++ {
		outcome.Rounds = round
		res, err := r.match(ctx, matcher, dir)
		if err != nil {
			outcome.Status = StatusFailed
			book.Error("round %d failed: %v", round, err)
			for _, ce := range match.CohortErrors(err) {
				r.logger.Warn("category could not be matched",
					zap.String("category", ce.Category),
					zap.String("kind", string(ce.Kind)),
					zap.String("family", ce.Family),
					zap.String("blocked", ce.Blocked))
			}
			outcome.DebugTail, _ = book.Tail(r.tailLines)
			return outcome, err
		}
		if err := r.verify(dir, res.Assignment); err != nil {
			outcome.Status = StatusFailed
			book.Error("round %d produced an invalid assignment: %v", round, err)
			outcome.DebugTail, _ = book.Tail(r.tailLines)
			return outcome, err
		}
		pairs, err := output.Pairs(dir, res.Assignment)
		if err != nil {
			outcome.Status = StatusFailed
			return outcome, err
		}
		outcome.Seed, outcome.Pairs = res.Seed, pairs
		book.Info("round %d: matched %d participants (seed %d)", round, len(pairs), res.Seed)

		decision, err := r.confirm(ctx, Proposal{Round: round, Seed: res.Seed, Pairs: pairs})
		if err != nil {
			outcome.Status = StatusFailed
			return outcome, fmt.Errorf("session: confirm: %w", err)
		}
		book.Info("round %d: operator decision %s", round, decision)
		switch decision {
		case Accept:
			path, err := r.write(namer, req.Format, outcome, started)
			if err != nil {
				outcome.Status = StatusFailed
				book.Error("write result: %v", err)
				return outcome, err
			}
			outcome.Status, outcome.ResultPath = StatusAccepted, path
			book.Info("result written to %s", path)
			r.logger.Info("result written", zap.String("path", path), zap.Int("rounds", round))
			return outcome, nil
		case Reject:
			continue
		default:
			outcome.Status = StatusAborted
			return outcome, nil
		}
	}
}

// match runs the matcher with the indicator shown; the indicator is stopped
// on every return path.
func (r *Runner) match(ctx context.Context, m *match.Matcher, dir participant.Directory) (*match.Result, error) {
	if r.indicator != nil {
		task := r.indicator.Start(ctx, ProgressLabel)
		defer task.Stop()
	}
	return m.Match(ctx, dir)
}

func (r *Runner) confirm(ctx context.Context, p Proposal) (Decision, error) {
	if r.confirmer == nil {
		return Accept, nil
	}
	d, err := r.confirmer.Confirm(ctx, p)
	if err != nil {
		return 0, err
	}
	switch d {
	case Accept, Reject, Abort:
		return d, nil
	default:
		return 0, errors.New("no decision")
	}
}

func (r *Runner) write(namer output.Namer, format string, outcome *Outcome, at time.Time) (string, error) {
	if format == config.FormatJSON {
		path, err := namer.Result(".json")
		if err != nil {
			return "", err
		}
		doc := output.Document{RunID: outcome.RunID, GeneratedAt: at, Seed: outcome.Seed, Pairs: outcome.Pairs}
		return path, output.WriteJSON(path, doc)
	}
	path, err := namer.Result(".txt")
	if err != nil {
		return "", err
	}
	return path, output.WriteText(path, outcome.Pairs)
}

// bookRecorder forwards matcher diagnostics to the debug log. A nil book
// drops them.
type bookRecorder struct {
	book *logbook.Logbook
}

func (b bookRecorder) Record(e match.Event) {
	level := logbook.LevelInfo
	switch e.Severity {
	case match.SeverityWarn:
		level = logbook.LevelWarn
	case match.SeverityError:
		level = logbook.LevelError
	}
	b.book.AppendAt(e.Time, level, e.Message)
}
