package match

import (
	"fmt"
	"sort"

	"github.com/VDandavate/Secret-Santa-Generator/internal/participant"
)

// Precheck rejects cohorts that no strategy can match: fewer than two
// members, or one family holding more than half of the members. Passing the
// check does not guarantee a matching exists.
func Precheck(cohort participant.Cohort) error {
	n := cohort.Len()
	if n < 2 {
		return &CohortError{
			Category: cohort.Category,
			Kind:     KindUnsatisfiable,
			Reason:   fmt.Sprintf("needs at least 2 participants, has %d", n),
		}
	}
	family, size := largestFamily(cohort)
	if 2*size > n {
		return &CohortError{
			Category: cohort.Category,
			Kind:     KindUnsatisfiable,
			Family:   family,
			Reason:   fmt.Sprintf("family %q holds %d of %d participants (more than half)", family, size, n),
		}
	}
	return nil
}

// largestFamily returns the biggest family, breaking ties by name.
func largestFamily(cohort participant.Cohort) (string, int) {
	sizes := cohort.FamilySizes()
	names := make([]string, 0, len(sizes))
	for name := range sizes {
		names = append(names, name)
	}
	sort.Strings(names)
	best, bestSize := "", 0
	for _, name := range names {
		if sizes[name] > bestSize {
			best, bestSize = name, sizes[name]
		}
	}
	return best, bestSize
}

// Verify checks that a sends every participant in dir to exactly one other
// participant of the same category and a different family, and that every
// participant receives exactly once.
func Verify(dir participant.Directory, a Assignment) error {
	if len(a) != len(dir) {
		return fmt.Errorf("%w: %d senders for %d participants", ErrInvalidAssignment, len(a), len(dir))
	}
	received := make(map[string]string, len(a))
	for _, sender := range a.Senders() {
		receiver := a[sender]
		s, ok := dir[sender]
		if !ok {
			return fmt.Errorf("%w: unknown sender %s", ErrInvalidAssignment, sender)
		}
		r, ok := dir[receiver]
		if !ok {
			return fmt.Errorf("%w: unknown receiver %s", ErrInvalidAssignment, receiver)
		}
		if sender == receiver {
			return fmt.Errorf("%w: %s is assigned to themselves", ErrInvalidAssignment, sender)
		}
		if s.Family == r.Family {
			return fmt.Errorf("%w: %s and %s share family %q", ErrInvalidAssignment, sender, receiver, s.Family)
		}
		if s.Category != r.Category {
			return fmt.Errorf("%w: %s (%s) crosses into category %s", ErrInvalidAssignment, sender, s.Category, r.Category)
		}
		if prev, dup := received[receiver]; dup {
			return fmt.Errorf("%w: %s receives from both %s and %s", ErrInvalidAssignment, receiver, prev, sender)
		}
		received[receiver] = sender
	}
	return nil
}
