package match

import (
	"math/rand"
	"sort"
)

// Strategy selects the order in which senders are processed during an
// attempt. It never influences which receiver a sender gets.
type Strategy int

const (
	// StrategyShuffle processes senders in a uniformly random order.
	StrategyShuffle Strategy = iota
	// StrategyRotated processes senders in sorted order rotated left by a
	// per-attempt offset, sweeping every offset before repeating.
	StrategyRotated
	// StrategyReversed processes senders in reverse sorted order.
	StrategyReversed

	strategyCount = 3
)

// StrategyFor returns the strategy used by the given 0-based attempt index.
func StrategyFor(attempt int) Strategy {
	return Strategy(attempt % strategyCount)
}

func (s Strategy) String() string {
	switch s {
	case StrategyShuffle:
		return "shuffle"
	case StrategyRotated:
		return "rotated"
	case StrategyReversed:
		return "reversed"
	default:
		return "unknown"
	}
}

// order returns a new slice holding ids in this strategy's sender order.
func (s Strategy) order(ids []string, attempt int, rng *rand.Rand) []string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	n := len(sorted)
	if n < 2 {
		return sorted
	}
	switch s {
	case StrategyShuffle:
		rng.Shuffle(n, func(i, j int) { sorted[i], sorted[j] = sorted[j], sorted[i] })
		return sorted
	case StrategyRotated:
		offset := (attempt / strategyCount) % n
		rotated := make([]string, 0, n)
		rotated = append(rotated, sorted[offset:]...)
		return append(rotated, sorted[:offset]...)
	case StrategyReversed:
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			sorted[i], sorted[j] = sorted[j], sorted[i]
		}
		return sorted
	default:
		return sorted
	}
}
