package potential

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/clustermc/internal/cell"
	"github.com/san-kum/clustermc/internal/particle"
)

// chainField builds a 3D square-well field with particles placed on a
// line, spacing apart, starting at x0.
func chainField(t *testing.T, n int, x0, spacing float64, maxInteractions int) *Field {
	t.Helper()

	box := box3D(t, 20)
	pair := NewSquareWell(box, 1.0, 1.5)
	cells, err := cell.New(3, box.Size, pair.Cutoff())
	require.NoError(t, err)

	store := particle.NewStore(n, 3)
	for i := range store {
		store[i].Position[0] = x0 + float64(i)*spacing
		store[i].Position[1] = 10
		store[i].Position[2] = 10
		require.NoError(t, cells.Insert(&store[i]))
	}

	f := NewField(box, cells, store, pair, maxInteractions)
	f.RefreshCounts()
	return f
}

func TestEnergyOfAndTotalEnergy(t *testing.T) {
	// Three particles spaced 1.2 apart: neighbours bond (-1 each),
	// ends are 2.4 apart, outside the 1.5 range.
	f := chainField(t, 3, 8, 1.2, 36)

	assert.Equal(t, -1.0, f.EnergyOf(0, f.Position(0), f.Orientation(0)))
	assert.Equal(t, -2.0, f.EnergyOf(1, f.Position(1), f.Orientation(1)))
	assert.Equal(t, -2.0, f.TotalEnergy())
	assert.InDelta(t, -2.0/3.0, f.EnergyPerParticle(), 1e-12)
}

func TestEnergyOfOverlap(t *testing.T) {
	f := chainField(t, 2, 8, 0.8, 36)
	e := f.EnergyOf(0, f.Position(0), f.Orientation(0))
	assert.True(t, math.IsInf(e, 1))
	assert.True(t, math.IsInf(f.TotalEnergy(), 1))
}

func TestInteractionsAndCounts(t *testing.T) {
	f := chainField(t, 3, 8, 1.2, 36)

	partners := f.Interactions(1, f.Position(1), f.Orientation(1))
	assert.ElementsMatch(t, []int{0, 2}, append([]int(nil), partners...))

	assert.Equal(t, 1, f.Count(0))
	assert.Equal(t, 2, f.Count(1))
	assert.Equal(t, 1, f.Count(2))
}

func TestInteractionCapTruncates(t *testing.T) {
	// Five particles packed within range of particle 2, cap of 2.
	box := box3D(t, 20)
	pair := NewSquareWell(box, 1.0, 1.5)
	cells, err := cell.New(3, box.Size, pair.Cutoff())
	require.NoError(t, err)

	store := particle.NewStore(5, 3)
	positions := [][]float64{
		{10, 10, 10},
		{11.05, 10, 10},
		{8.95, 10, 10},
		{10, 11.05, 10},
		{10, 8.95, 10},
	}
	for i := range store {
		copy(store[i].Position, positions[i])
		require.NoError(t, cells.Insert(&store[i]))
	}

	f := NewField(box, cells, store, pair, 2)
	f.RefreshCounts()

	// Partners beyond the cap are silently dropped.
	assert.Len(t, f.Interactions(0, f.Position(0), f.Orientation(0)), 2)
	assert.Equal(t, 2, f.Count(0))

	// Capped energy counts only the retained partners.
	assert.Equal(t, -2.0, f.EnergyOf(0, f.Position(0), f.Orientation(0)))
}

func TestCountsNeverExceedCap(t *testing.T) {
	f := chainField(t, 10, 5, 1.1, 1)
	for i := 0; i < 10; i++ {
		assert.LessOrEqual(t, f.Count(i), 1)
	}
}

func TestCommitUpdatesStateAndCounts(t *testing.T) {
	f := chainField(t, 3, 8, 1.2, 36)

	// Move particle 2 far away: it unbonds from particle 1.
	newPos := [][]float64{{2, 2, 2}}
	require.NoError(t, f.Commit([]int{2}, newPos, nil))

	assert.Equal(t, []float64{2, 2, 2}, f.Position(2))
	assert.Equal(t, 1, f.Count(0))
	assert.Equal(t, 1, f.Count(1))
	assert.Equal(t, 0, f.Count(2))
	assert.Equal(t, -1.0, f.TotalEnergy())

	// Cell membership follows the committed position.
	home := f.Cells().Index([]float64{2, 2, 2})
	assert.Contains(t, f.Cells().Members(home), 2)
}

func TestCommitOrientationOnly(t *testing.T) {
	box := box2D(t, 20, 20)
	pair := NewPatchyDisc(box, 5.0, 3, 0.1)
	cells, err := cell.New(2, box.Size, pair.Cutoff())
	require.NoError(t, err)

	store := particle.NewStore(2, 2)
	copy(store[0].Position, []float64{5, 5})
	copy(store[1].Position, []float64{6.05, 5})
	copy(store[1].Orientation, []float64{-1, 0})
	for i := range store {
		require.NoError(t, cells.Insert(&store[i]))
	}

	f := NewField(box, cells, store, pair, 3)
	f.RefreshCounts()
	assert.Equal(t, 1, f.Count(0))

	// Rotating disc 1 away breaks the bond without moving anyone.
	require.NoError(t, f.Commit([]int{1}, [][]float64{{6.05, 5}}, [][]float64{{0, 1}}))
	assert.Equal(t, 0, f.Count(0))
	assert.Equal(t, 0.0, f.TotalEnergy())
}
