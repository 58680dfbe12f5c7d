package match

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/VDandavate/Secret-Santa-Generator/internal/participant"
)

// DefaultMaxAttempts is the per-cohort attempt budget.
const DefaultMaxAttempts = 100

// Matcher runs the cohort matching engine. A Matcher may be reused; every
// Match call draws a fresh run seed so a rejected result is never repeated
// from the same randomness.
type Matcher struct {
	maxAttempts int
	precheck    bool
	parallel    int
	recorder    Recorder
	logger      *zap.Logger
	now         func() time.Time

	mu   sync.Mutex
	base *rand.Rand
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithMaxAttempts sets the per-cohort attempt budget. Values below 1 keep the
// default.
func WithMaxAttempts(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.maxAttempts = n
		}
	}
}

// WithSeed makes the sequence of runs reproducible. Zero keeps a
// time-seeded source.
func WithSeed(seed int64) Option {
	return func(m *Matcher) {
		if seed != 0 {
			m.base = rand.New(rand.NewSource(seed))
		}
	}
}

// WithPrecheck toggles the unsatisfiable-cohort guard (on by default).
func WithPrecheck(enabled bool) Option {
	return func(m *Matcher) {
		m.precheck = enabled
	}
}

// WithParallel caps how many cohorts are matched at once. Zero or less runs
// every cohort concurrently.
func WithParallel(n int) Option {
	return func(m *Matcher) {
		m.parallel = n
	}
}

// WithRecorder sends attempt-level diagnostics to r.
func WithRecorder(r Recorder) Option {
	return func(m *Matcher) {
		m.recorder = r
	}
}

// WithLogger sets the operator logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Matcher) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New builds a Matcher.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		maxAttempts: DefaultMaxAttempts,
		precheck:    true,
		logger:      zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	if m.base == nil {
		m.base = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return m
}

// MaxAttempts returns the per-cohort attempt budget.
func (m *Matcher) MaxAttempts() int {
	return m.maxAttempts
}

// CohortResult summarises how one category was matched.
type CohortResult struct {
	Category string
	Size     int
	Attempts []Attempt
}

// Result is a successful run over a whole directory.
type Result struct {
	Seed       int64
	Assignment Assignment
	Cohorts    []CohortResult
}

// Match partitions dir by category and matches every cohort. It succeeds
// only if every cohort succeeds; otherwise no assignment is returned. An
// empty directory is a successful run with an empty assignment.
//
// With the pre-check enabled every cohort is checked before any attempt is
// made and all unsatisfiable cohorts are reported together. Matching itself
// is fail-fast: the first exhausted cohort cancels the rest.
func (m *Matcher) Match(ctx context.Context, dir participant.Directory) (*Result, error) {
	seed := m.nextSeed()
	cohorts := participant.Partition(dir)
	categories := cohorts.Categories()
	result := &Result{Seed: seed, Assignment: make(Assignment, len(dir))}
	if len(categories) == 0 {
		return result, nil
	}

	if m.precheck {
		var errs []error
		for _, cat := range categories {
			if err := m.checkCohort(cohorts[cat]); err != nil {
				errs = append(errs, err)
			}
		}
		switch len(errs) {
		case 0:
		case 1:
			return nil, errs[0]
		default:
			return nil, errors.Join(errs...)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	if m.parallel > 0 {
		g.SetLimit(m.parallel)
	}
	assignments := make([]Assignment, len(categories))
	summaries := make([]CohortResult, len(categories))
	for i, cat := range categories {
		cohort := cohorts[cat]
		cohortSeed := deriveSeed(seed, categoryStream(cat))
		g.Go(func() error {
			a, attempts, err := m.run(gctx, cohort, cohortSeed)
			summaries[i] = CohortResult{Category: cat, Size: cohort.Len(), Attempts: attempts}
			if err != nil {
				return err
			}
			assignments[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i := range categories {
		result.Assignment.merge(assignments[i])
	}
	result.Cohorts = summaries
	return result, nil
}

// MatchCohort matches a single cohort with a fresh seed, applying the
// pre-check when enabled.
func (m *Matcher) MatchCohort(ctx context.Context, cohort participant.Cohort) (Assignment, []Attempt, error) {
	if m.precheck {
		if err := m.checkCohort(cohort); err != nil {
			return nil, nil, err
		}
	}
	return m.run(ctx, cohort, m.nextSeed())
}

func (m *Matcher) checkCohort(cohort participant.Cohort) error {
	err := Precheck(cohort)
	if err == nil {
		return nil
	}
	m.emit(Event{
		Severity: SeverityError,
		Category: cohort.Category,
		Attempt:  &Attempt{Outcome: OutcomeUnsatisfiable},
		Message:  err.Error(),
	})
	m.logger.Warn("cohort rejected by pre-check",
		zap.String("category", cohort.Category),
		zap.Int("size", cohort.Len()),
		zap.Error(err))
	return err
}

// run performs up to maxAttempts greedy attempts over cohort. Cancellation
// is observed between attempts.
func (m *Matcher) run(ctx context.Context, cohort participant.Cohort, seed int64) (Assignment, []Attempt, error) {
	ids := cohort.IDs()
	families := make(map[string]string, len(cohort.Members))
	for _, p := range cohort.Members {
		families[p.ID] = p.Family
	}
	m.emit(Event{
		Severity: SeverityInfo,
		Category: cohort.Category,
		Message:  fmt.Sprintf("category %s: matching %d participants (budget %d attempts)", cohort.Category, len(ids), m.maxAttempts),
	})

	attempts := make([]Attempt, 0, m.maxAttempts)
	for i := 0; i < m.maxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return nil, attempts, fmt.Errorf("match: category %q: %w", cohort.Category, err)
		}
		attemptSeed := deriveSeed(seed, uint64(i))
		rng := rand.New(rand.NewSource(attemptSeed))
		strategy := StrategyFor(i)
		a, blocked := assign(strategy.order(ids, i, rng), ids, families, rng)

		rec := Attempt{Index: i, Strategy: strategy, Outcome: OutcomeSuccess, Blocked: blocked, Seed: attemptSeed}
		if blocked != "" {
			rec.Outcome = OutcomeBlocked
		}
		attempts = append(attempts, rec)
		m.emit(attemptEvent(cohort.Category, m.maxAttempts, rec))
		if blocked == "" {
			m.logger.Debug("cohort matched",
				zap.String("category", cohort.Category),
				zap.Int("size", len(ids)),
				zap.Int("attempts", i+1),
				zap.Stringer("strategy", strategy))
			return a, attempts, nil
		}
	}

	err := &CohortError{
		Category: cohort.Category,
		Kind:     KindExhausted,
		Attempts: m.maxAttempts,
	}
	if n := len(attempts); n > 0 {
		err.Blocked = attempts[n-1].Blocked
	}
	m.emit(Event{
		Severity: SeverityError,
		Category: cohort.Category,
		Attempt:  &Attempt{Index: m.maxAttempts - 1, Outcome: OutcomeExhausted, Blocked: err.Blocked},
		Message:  "FAILED: " + err.Error(),
	})
	m.logger.Warn("cohort exhausted attempt budget",
		zap.String("category", cohort.Category),
		zap.Int("size", len(ids)),
		zap.Int("attempts", m.maxAttempts),
		zap.String("blocked", err.Blocked))
	return nil, attempts, err
}

// assign walks senders in order, giving each a random receiver from the
// remaining pool that is neither the sender nor in the sender's family. It
// never backtracks: the first sender left without a candidate ends the
// attempt and is returned as blocked.
func assign(order, pool []string, families map[string]string, rng *rand.Rand) (Assignment, string) {
	available := append([]string(nil), pool...)
	out := make(Assignment, len(order))
	candidates := make([]int, 0, len(pool))
	for _, sender := range order {
		candidates = candidates[:0]
		for idx, receiver := range available {
			if receiver != sender && families[receiver] != families[sender] {
				candidates = append(candidates, idx)
			}
		}
		if len(candidates) == 0 {
			return nil, sender
		}
		pick := candidates[rng.Intn(len(candidates))]
		out[sender] = available[pick]
		available[pick] = available[len(available)-1]
		available = available[:len(available)-1]
	}
	return out, ""
}

func (m *Matcher) nextSeed() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.base.Int63()
}

func (m *Matcher) emit(e Event) {
	if m.recorder == nil {
		return
	}
	if e.Time.IsZero() {
		e.Time = m.now()
	}
	m.recorder.Record(e)
}
