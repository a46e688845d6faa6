package domain

import (
	"slices"
	"time"
)

// FillResult is the outcome of a successful fill.
type FillResult struct {
	// Observations is the filled set in its final sort order.
	Observations []Observation
	// Synthesized lists the inserted timestamps, ascending.
	Synthesized []string
	// Passes counts sort-and-scan passes, including the final clean one.
	Passes   int
	FilledAt time.Time
}

// Fill closes every one-hour gap in set under the derived pass budget.
func Fill(set []Observation) (FillResult, error) {
	return FillWithLimit(set, 0)
}

// FillWithLimit closes every one-hour gap in set, running at most maxPasses
// passes including the final clean one. maxPasses <= 0 derives the budget
// with PassBudget. set itself is not modified.
func FillWithLimit(set []Observation, maxPasses int) (FillResult, error) {
	if maxPasses <= 0 {
		maxPasses = PassBudget(set)
	}

	work := make([]Observation, len(set))
	for i := range set {
		work[i] = set[i].Clone()
	}

	var synthesized []string
	passes := 0
	for {
		passes++
		sortByObserved(work)
		prev, cur, found := firstMismatch(work)
		if !found {
			break
		}
		// The clean pass that would follow this insertion must fit the budget.
		if passes >= maxPasses {
			return FillResult{}, &ConvergenceError{
				Passes: passes,
				Prev:   FormatTimestamp(work[prev].Observed),
				Cur:    FormatTimestamp(work[cur].Observed),
			}
		}

		expected := work[prev].Observed.Add(Cadence)
		synthesized = append(synthesized, FormatTimestamp(expected))

		filler := work[prev].Clone()
		filler.Observed = expected
		work = append(work, filler)
	}

	slices.Sort(synthesized)
	if synthesized == nil {
		synthesized = []string{}
	}

	return FillResult{
		Observations: work,
		Synthesized:  synthesized,
		Passes:       passes,
		FilledAt:     clock.Now(),
	}, nil
}

// PassBudget returns the number of passes a grid-aligned set without
// duplicates needs: one per missing hour plus the final clean pass.
func PassBudget(set []Observation) int {
	if len(set) < 2 {
		return 1
	}
	first, last := set[0].Observed, set[0].Observed
	for _, o := range set[1:] {
		if o.Observed.Before(first) {
			first = o.Observed
		}
		if o.Observed.After(last) {
			last = o.Observed
		}
	}
	span := int(last.Sub(first) / Cadence)
	return max(span+2-len(set), 1)
}

// CheckContiguity reports the first adjacent pair of the sorted set that is
// not exactly one hour apart. set must already be sorted.
func CheckContiguity(set []Observation) error {
	prev, cur, found := firstMismatch(set)
	if !found {
		return nil
	}
	return &ContiguityError{
		Index: cur,
		Prev:  FormatTimestamp(set[prev].Observed),
		Cur:   FormatTimestamp(set[cur].Observed),
	}
}

// SortByObserved orders set ascending by time, keeping the relative order of
// equal timestamps.
func SortByObserved(set []Observation) {
	sortByObserved(set)
}

func sortByObserved(set []Observation) {
	slices.SortStableFunc(set, func(a, b Observation) int {
		return a.Observed.Compare(b.Observed)
	})
}

// firstMismatch returns the indexes of the first adjacent pair whose step is
// not exactly one Cadence.
func firstMismatch(set []Observation) (prev, cur int, found bool) {
	for i := 1; i < len(set); i++ {
		if !set[i].Observed.Equal(set[i-1].Observed.Add(Cadence)) {
			return i - 1, i, true
		}
	}
	return 0, 0, false
}
