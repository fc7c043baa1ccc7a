package reservation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatflow/reservation-engine/internal/table"
)

func noOverlap([]string) (bool, error) { return false, nil }

func TestAssign_BestFitPrefersTightestFit(t *testing.T) {
	// B3: party 3, tables {(2-4), (4-6)}; the (2-4) table wins.
	tables := []*table.Table{
		{ID: "big", MinSize: 4, MaxSize: 6},
		{ID: "small", MinSize: 2, MaxSize: 4},
	}

	ids, err := Assign(tables, 3, 0, noOverlap)
	require.NoError(t, err)
	assert.Equal(t, []string{"small"}, ids)
}

func TestAssign_SkipsBusyTableForNextEligible(t *testing.T) {
	tables := []*table.Table{
		{ID: "t1", MinSize: 2, MaxSize: 4},
		{ID: "t2", MinSize: 2, MaxSize: 4},
	}
	busy := map[string]bool{"t1": true}
	overlaps := func(ids []string) (bool, error) {
		for _, id := range ids {
			if busy[id] {
				return true, nil
			}
		}
		return false, nil
	}

	ids, err := Assign(tables, 2, 0, overlaps)
	require.NoError(t, err)
	assert.Equal(t, []string{"t2"}, ids)
}

func TestAssign_FallsBackToCombination(t *testing.T) {
	// S7: two 4-seat tables, party of 8.
	tables := []*table.Table{
		{ID: "t1", MinSize: 2, MaxSize: 4},
		{ID: "t2", MinSize: 2, MaxSize: 4},
	}

	ids, err := Assign(tables, 8, 0, noOverlap)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, ids)
}

func TestAssign_CombinationReturnsNoneWhenCapacityInsufficient(t *testing.T) {
	// B4: sum(maxSize) < partySize across all eligible subsets.
	tables := []*table.Table{
		{ID: "t1", MinSize: 2, MaxSize: 4},
		{ID: "t2", MinSize: 2, MaxSize: 4},
	}

	ids, err := Assign(tables, 20, 0, noOverlap)
	require.NoError(t, err)
	assert.Nil(t, ids)
}

func TestAssign_CombinationSkipsBusySubset(t *testing.T) {
	tables := []*table.Table{
		{ID: "t1", MinSize: 2, MaxSize: 4},
		{ID: "t2", MinSize: 2, MaxSize: 4},
		{ID: "t3", MinSize: 2, MaxSize: 4},
		{ID: "t4", MinSize: 2, MaxSize: 4},
	}
	overlaps := func(ids []string) (bool, error) {
		// t1+t2 is busy; t1+t3 (or any other pair) is free.
		has := map[string]bool{}
		for _, id := range ids {
			has[id] = true
		}
		return has["t1"] && has["t2"], nil
	}

	ids, err := Assign(tables, 8, 0, overlaps)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.NotEqual(t, []string{"t1", "t2"}, ids)
}

func TestAssign_NoneWhenNoTablesEligible(t *testing.T) {
	tables := []*table.Table{
		{ID: "t1", MinSize: 6, MaxSize: 8},
	}
	ids, err := Assign(tables, 2, 0, noOverlap)
	require.NoError(t, err)
	assert.Nil(t, ids)
}

func TestAssign_PropagatesOverlapError(t *testing.T) {
	tables := []*table.Table{{ID: "t1", MinSize: 2, MaxSize: 4}}
	boom := assert.AnError
	_, err := Assign(tables, 2, 0, func([]string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}

func TestCombinations_EnumeratesLexicographicOrder(t *testing.T) {
	var got [][]int
	combinations(4, 2, func(idx []int) bool {
		cp := append([]int(nil), idx...)
		got = append(got, cp)
		return true
	})
	want := [][]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}
	assert.Equal(t, want, got)
}
