package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/VDandavate/Secret-Santa-Generator/internal/config"
	"github.com/VDandavate/Secret-Santa-Generator/internal/match"
	"github.com/VDandavate/Secret-Santa-Generator/internal/output"
	"github.com/VDandavate/Secret-Santa-Generator/internal/participant"
	"github.com/VDandavate/Secret-Santa-Generator/internal/roster"
)

const familyRoster = `
alice@example.com;Alice;Anders;F1;adults
bob@example.com;Bob;Baker;F2;adults
carol@example.com;Carol;Cole;F3;adults
dave@example.com;Dave;Anders;F1;adults
erin@example.com;Erin;Eld;F4;adults
kid1@example.com;Kim;Anders;F1;kids
kid2@example.com;Lee;Baker;F2;kids
kid3@example.com;Max;Cole;F3;kids
`

func writeRoster(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "family.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.TrimSpace(body)+"\n"), 0o644))
	return path
}

func fixedClock() time.Time {
	return time.Date(2025, 12, 1, 9, 30, 0, 0, time.UTC)
}

// scripted answers proposals in order and remembers what it saw.
type scripted struct {
	decisions []Decision
	seen      []Proposal
}

func (s *scripted) Confirm(_ context.Context, p Proposal) (Decision, error) {
	s.seen = append(s.seen, p)
	d := s.decisions[0]
	s.decisions = s.decisions[1:]
	return d, nil
}

type countingIndicator struct {
	mu             sync.Mutex
	started, ended int
	labels         []string
}

func (c *countingIndicator) Start(_ context.Context, label string) Stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started++
	c.labels = append(c.labels, label)
	return stopFunc(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.ended++
	})
}

type stopFunc func()

func (f stopFunc) Stop() { f() }

func TestRunAcceptsAndWritesText(t *testing.T) {
	path := writeRoster(t, familyRoster)
	ind := &countingIndicator{}
	r := NewRunner(WithIndicator(ind), WithClock(fixedClock), WithMatchOptions(match.WithSeed(3)))

	out, err := r.Run(context.Background(), Request{RosterPath: path, Format: config.FormatText, Debug: true})
	require.NoError(t, err)
	require.Equal(t, StatusAccepted, out.Status)
	require.Equal(t, 1, out.Rounds)
	require.Len(t, out.Pairs, 8)
	require.NotEmpty(t, out.RunID)

	require.Equal(t, filepath.Join(filepath.Dir(path), "family-Matched-20251201093000.txt"), out.ResultPath)
	data, err := os.ReadFile(out.ResultPath)
	require.NoError(t, err)
	require.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 8)

	debug, err := os.ReadFile(out.DebugPath)
	require.NoError(t, err)
	require.Contains(t, string(debug), out.RunID)
	require.Contains(t, string(debug), "category kids")
	require.Contains(t, string(debug), "result written to")

	require.Equal(t, 1, ind.started)
	require.Equal(t, 1, ind.ended)
	require.Equal(t, []string{ProgressLabel}, ind.labels)
}

func TestRejectRegeneratesWithFreshRandomness(t *testing.T) {
	path := writeRoster(t, familyRoster)
	conf := &scripted{decisions: []Decision{Reject, Reject, Accept}}
	ind := &countingIndicator{}
	r := NewRunner(WithConfirmer(conf), WithIndicator(ind), WithMatchOptions(match.WithSeed(8)))

	out, err := r.Run(context.Background(), Request{RosterPath: path, Format: config.FormatText})
	require.NoError(t, err)
	require.Equal(t, StatusAccepted, out.Status)
	require.Equal(t, 3, out.Rounds)
	require.Len(t, conf.seen, 3)
	require.Equal(t, 3, ind.started)
	require.Equal(t, 3, ind.ended)

	seeds := map[int64]bool{}
	for i, p := range conf.seen {
		require.Equal(t, i+1, p.Round)
		seeds[p.Seed] = true
	}
	require.Len(t, seeds, 3, "each round should draw a new seed")
	require.Equal(t, conf.seen[2].Pairs, out.Pairs)
	require.Empty(t, out.DebugPath)
}

func TestAbortWritesNothing(t *testing.T) {
	path := writeRoster(t, familyRoster)
	r := NewRunner(WithConfirmer(&scripted{decisions: []Decision{Abort}}))

	out, err := r.Run(context.Background(), Request{RosterPath: path, Format: config.FormatText, Debug: true})
	require.NoError(t, err)
	require.Equal(t, StatusAborted, out.Status)
	require.Empty(t, out.ResultPath)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, e := range entries {
		require.NotContains(t, e.Name(), "-Matched-", "abort must not write a result")
	}
}

func TestUnmatchableRosterReportsDebugTail(t *testing.T) {
	path := writeRoster(t, `
a@example.com;Ann;One;F1;adults
b@example.com;Ben;One;F1;adults
c@example.com;Cat;Two;F2;adults
`)
	ind := &countingIndicator{}
	r := NewRunner(WithIndicator(ind), WithMatchOptions(match.WithPrecheck(false), match.WithMaxAttempts(6)))

	out, err := r.Run(context.Background(), Request{RosterPath: path, Format: config.FormatText, Debug: true})
	require.ErrorIs(t, err, match.ErrUnmatchable)
	require.ErrorIs(t, err, match.ErrExhausted)
	require.Equal(t, StatusFailed, out.Status)
	require.Empty(t, out.ResultPath)
	require.NotEmpty(t, out.DebugPath)
	require.NotEmpty(t, out.DebugTail)
	require.Contains(t, strings.Join(out.DebugTail, "\n"), "round 1 failed")
	require.Equal(t, ind.started, ind.ended)
}

func TestInvalidAssignmentReportsDebugTail(t *testing.T) {
	path := writeRoster(t, familyRoster)
	r := NewRunner(WithMatchOptions(match.WithSeed(4)))
	r.verify = func(participant.Directory, match.Assignment) error {
		return fmt.Errorf("%w: kid1@example.com receives twice", match.ErrInvalidAssignment)
	}

	out, err := r.Run(context.Background(), Request{RosterPath: path, Format: config.FormatText, Debug: true})
	require.ErrorIs(t, err, match.ErrInvalidAssignment)
	require.Equal(t, StatusFailed, out.Status)
	require.Empty(t, out.ResultPath)
	require.NotEmpty(t, out.DebugTail)
	require.Contains(t, strings.Join(out.DebugTail, "\n"), "invalid assignment")
}

func TestInvalidRosterFailsBeforeMatching(t *testing.T) {
	path := writeRoster(t, "not-an-email;Ann;One;F1;adults\n")
	ind := &countingIndicator{}
	out, err := NewRunner(WithIndicator(ind)).Run(context.Background(), Request{RosterPath: path, Debug: true})
	require.Nil(t, out)
	require.ErrorIs(t, err, roster.ErrInput)
	require.Zero(t, ind.started)
}

func TestJSONFormat(t *testing.T) {
	path := writeRoster(t, familyRoster)
	outDir := filepath.Join(t.TempDir(), "results")
	r := NewRunner(WithClock(fixedClock), WithMatchOptions(match.WithSeed(21)))

	out, err := r.Run(context.Background(), Request{RosterPath: path, OutputDir: outDir, Format: config.FormatJSON})
	require.NoError(t, err)
	require.Equal(t, outDir, filepath.Dir(out.ResultPath))
	require.True(t, strings.HasSuffix(out.ResultPath, ".json"))

	doc, err := output.ReadJSON(out.ResultPath)
	require.NoError(t, err)
	require.Equal(t, out.RunID, doc.RunID)
	require.Equal(t, out.Seed, doc.Seed)
	require.Equal(t, out.Pairs, doc.Pairs)
	require.True(t, fixedClock().Equal(doc.GeneratedAt))
}

func TestConfirmerErrorStopsRun(t *testing.T) {
	path := writeRoster(t, familyRoster)
	boom := errors.New("terminal went away")
	r := NewRunner(WithConfirmer(confirmFunc(func(context.Context, Proposal) (Decision, error) {
		return 0, boom
	})))
	out, err := r.Run(context.Background(), Request{RosterPath: path})
	require.ErrorIs(t, err, boom)
	require.Equal(t, StatusFailed, out.Status)
}

func TestMatchOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Matching.MaxAttempts = 7
	m := match.New(MatchOptions(cfg)...)
	require.Equal(t, 7, m.MaxAttempts())
}

type confirmFunc func(context.Context, Proposal) (Decision, error)

func (f confirmFunc) Confirm(ctx context.Context, p Proposal) (Decision, error) { return f(ctx, p) }
