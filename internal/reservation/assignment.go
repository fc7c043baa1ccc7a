package reservation

import (
	"sort"

	"github.com/seatflow/reservation-engine/internal/table"
)

// DefaultKMax bounds the table-combination search: C(n, 5) stays
// tractable for realistic sector sizes (<= ~30 tables).
const DefaultKMax = 5

// OverlapCheck reports whether any CONFIRMED/PENDING reservation already
// occupies one of tableIDs during the interval the caller has in mind.
// Assign is a pure function over []*table.Table plus this injected
// callback, so the algorithm is unit-testable without a database.
type OverlapCheck func(tableIDs []string) (bool, error)

// Assign tries single-table Best-Fit first, falling back to a bounded
// k-table combination search. It returns the chosen table ids, or (nil,
// nil) if no feasible assignment exists.
func Assign(tables []*table.Table, partySize, kMax int, overlaps OverlapCheck) ([]string, error) {
	if kMax <= 0 {
		kMax = DefaultKMax
	}

	if ids, err := assignSingle(tables, partySize, overlaps); err != nil {
		return nil, err
	} else if ids != nil {
		return ids, nil
	}

	return assignCombination(tables, partySize, kMax, overlaps)
}

// assignSingle is Step 1: Best-Fit among eligible single tables, smallest
// waste (maxSize - partySize) first, ties broken by table id.
func assignSingle(tables []*table.Table, partySize int, overlaps OverlapCheck) ([]string, error) {
	eligible := make([]*table.Table, 0, len(tables))
	for _, t := range tables {
		if t.Eligible(partySize) {
			eligible = append(eligible, t)
		}
	}
	sort.Slice(eligible, func(i, j int) bool {
		wi, wj := eligible[i].MaxSize-partySize, eligible[j].MaxSize-partySize
		if wi != wj {
			return wi < wj
		}
		return eligible[i].ID < eligible[j].ID
	})

	for _, t := range eligible {
		busy, err := overlaps([]string{t.ID})
		if err != nil {
			return nil, err
		}
		if !busy {
			return []string{t.ID}, nil
		}
	}
	return nil, nil
}

// assignCombination is Step 2: the bounded k-table fallback. Candidates
// are every table that alone could hold at least part of the party
// (minSize <= partySize), sorted descending by maxSize then id. For
// k = 2..kMax, k-subsets are enumerated in lexicographic order and the
// first one whose capacity brackets partySize and whose tables are all
// free is accepted.
func assignCombination(tables []*table.Table, partySize, kMax int, overlaps OverlapCheck) ([]string, error) {
	candidates := make([]*table.Table, 0, len(tables))
	for _, t := range tables {
		if t.MinSize <= partySize {
			candidates = append(candidates, t)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].MaxSize != candidates[j].MaxSize {
			return candidates[i].MaxSize > candidates[j].MaxSize
		}
		return candidates[i].ID < candidates[j].ID
	})

	n := len(candidates)
	for k := 2; k <= kMax && k <= n; k++ {
		ids, err := tryCombinations(candidates, k, partySize, overlaps)
		if err != nil {
			return nil, err
		}
		if ids != nil {
			return ids, nil
		}
	}
	return nil, nil
}

// tryCombinations enumerates every k-subset of candidates, in the index
// order combinations() produces (which is lexicographic over the already-
// sorted candidate slice), returning the first subset whose min/max
// capacity brackets partySize and which has no overlap.
func tryCombinations(candidates []*table.Table, k, partySize int, overlaps OverlapCheck) ([]string, error) {
	var result []string
	var err error

	combinations(len(candidates), k, func(idx []int) bool {
		minSum, maxSum := 0, 0
		for _, i := range idx {
			minSum += candidates[i].MinSize
			maxSum += candidates[i].MaxSize
		}
		if minSum > partySize || partySize > maxSum {
			return true // keep searching
		}

		ids := make([]string, len(idx))
		for j, i := range idx {
			ids[j] = candidates[i].ID
		}
		sort.Strings(ids)

		var busy bool
		busy, err = overlaps(ids)
		if err != nil {
			return false // stop: propagate error
		}
		if !busy {
			result = ids
			return false // stop: found it
		}
		return true // keep searching
	})

	return result, err
}

// combinations calls visit with every k-subset of {0, ..., n-1}, expressed
// as an ascending index slice, in lexicographic order. Iteration stops
// early if visit returns false.
func combinations(n, k int, visit func(idx []int) bool) {
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}

	for {
		if !visit(idx) {
			return
		}

		// Advance to the next combination, or stop if none remains.
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
