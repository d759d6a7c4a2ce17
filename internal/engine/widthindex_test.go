package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWidthIndex_FindFeasiblePrefersLowestIndex(t *testing.T) {
	idx := newWidthIndex([]int{7, 3, 5, 3, 1}, 10)

	assert.Equal(t, 0, idx.findFeasible(10))
	assert.Equal(t, 1, idx.findFeasible(6))
	assert.Equal(t, 4, idx.findFeasible(2))
	assert.Equal(t, none, idx.findFeasible(0))
}

func TestWidthIndex_Remove(t *testing.T) {
	idx := newWidthIndex([]int{4, 2, 2}, 5)

	idx.remove(1)
	assert.Equal(t, 2, idx.findFeasible(3))
	idx.remove(2)
	assert.Equal(t, none, idx.findFeasible(3))
	assert.Equal(t, 0, idx.findFeasible(4))
	idx.remove(0)
	assert.Equal(t, none, idx.findFeasible(5))
}

func TestWidthIndex_PaddingLeavesAreInfeasible(t *testing.T) {
	// Three items round up to four leaves; the padding leaf must never be
	// returned even for the full strip width.
	idx := newWidthIndex([]int{5, 5, 5}, 5)
	require.Len(t, idx.tree, 8)
	for i := 0; i < 3; i++ {
		id := idx.findFeasible(5)
		require.Equal(t, i, id)
		idx.remove(id)
	}
	assert.Equal(t, none, idx.findFeasible(5))
}

func TestWidthIndex_SingleItem(t *testing.T) {
	idx := newWidthIndex([]int{3}, 3)
	assert.Equal(t, 0, idx.findFeasible(3))
	idx.remove(0)
	assert.Equal(t, none, idx.findFeasible(3))
}

func TestWidthIndex_MatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const stripWidth = 50
	widths := make([]int, 37)
	for i := range widths {
		widths[i] = rng.Intn(stripWidth) + 1
	}
	idx := newWidthIndex(widths, stripWidth)
	removed := make([]bool, len(widths))

	for step := 0; step < 200; step++ {
		maxWidth := rng.Intn(stripWidth + 1)
		want := none
		for i, w := range widths {
			if !removed[i] && w <= maxWidth {
				want = i
				break
			}
		}
		got := idx.findFeasible(maxWidth)
		require.Equal(t, want, got, "maxWidth=%d", maxWidth)
		if got != none && rng.Intn(2) == 0 {
			idx.remove(got)
			removed[got] = true
		}
	}
}
