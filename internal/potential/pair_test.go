package potential

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/clustermc/internal/geom"
)

func box2D(t *testing.T, lx, ly float64) *geom.Box {
	t.Helper()
	box, err := geom.NewBox([]float64{lx, ly})
	require.NoError(t, err)
	return box
}

func box3D(t *testing.T, l float64) *geom.Box {
	t.Helper()
	box, err := geom.NewBox([]float64{l, l, l})
	require.NoError(t, err)
	return box
}

func TestSquareWellRegimes(t *testing.T) {
	box := box3D(t, 20)
	sw := NewSquareWell(box, 2.0, 1.2)

	u := []float64{1, 0, 0}
	origin := []float64{5, 5, 5}

	at := func(d float64) float64 {
		return sw.Energy(origin, u, []float64{5 + d, 5, 5}, u)
	}

	// Overlapping cores are infinite.
	assert.True(t, math.IsInf(at(0.9), 1))

	// Inside the well: depth -epsilon. A pair at 1.1 diameters with
	// range 1.2 sits inside.
	assert.Equal(t, -2.0, at(1.1))
	assert.True(t, sw.Interacting(origin, u, []float64{6.1, 5, 5}, u))

	// Beyond the well: no interaction. 1.3 diameters is outside a 1.2
	// range.
	assert.Equal(t, 0.0, at(1.3))
	assert.False(t, sw.Interacting(origin, u, []float64{6.3, 5, 5}, u))

	assert.Equal(t, 1.2, sw.Cutoff())
	assert.False(t, sw.Repulsive())
	assert.False(t, sw.Anisotropic())
}

func TestSquareWellAcrossBoundary(t *testing.T) {
	box := box3D(t, 20)
	sw := NewSquareWell(box, 1.0, 1.5)
	u := []float64{1, 0, 0}

	// 1.1 diameters apart through the periodic wall.
	e := sw.Energy([]float64{0.5, 5, 5}, u, []float64{19.4, 5, 5}, u)
	assert.Equal(t, -1.0, e)
}

func TestLennardJonesShape(t *testing.T) {
	box := box3D(t, 20)
	lj := NewLennardJones(box, 1.0, 2.5)
	u := []float64{1, 0, 0}
	origin := []float64{5, 5, 5}

	at := func(d float64) float64 {
		return lj.Energy(origin, u, []float64{5 + d, 5, 5}, u)
	}

	// Minimum at 2^(1/6), depth close to -epsilon (small shift offset).
	rMin := math.Pow(2, 1.0/6.0)
	assert.InDelta(t, -1.0, at(rMin), 0.02)
	assert.Less(t, at(rMin), at(rMin*0.95))
	assert.Less(t, at(rMin), at(rMin*1.05))

	// Finite and strongly repulsive just above contact.
	assert.Greater(t, at(0.9), 1.0)
	assert.False(t, math.IsInf(at(0.9), 1))

	// Zero at and beyond the cutoff (truncated and shifted).
	assert.Equal(t, 0.0, at(2.5))
	assert.InDelta(t, 0.0, at(2.4999), 1e-3)

	assert.True(t, lj.Repulsive())
	assert.False(t, lj.Anisotropic())
}

func TestPatchyDiscAlignment(t *testing.T) {
	box := box2D(t, 20, 20)
	pd := NewPatchyDisc(box, 5.0, 3, 0.1)

	ri := []float64{5, 5}
	rj := []float64{6.05, 5} // surfaces 0.05 apart

	// Patch 0 of i points along +x; aligning patch 0 of j along -x
	// puts the two patches 0.05 apart: one bonded patch pair.
	ui := []float64{1, 0}
	uj := []float64{-1, 0}
	assert.Equal(t, -5.0, pd.Energy(ri, ui, rj, uj))
	assert.True(t, pd.Interacting(ri, ui, rj, uj))

	// Rotating j's patches away breaks the bond even at the same
	// centre separation.
	ujMis := []float64{0, 1}
	assert.Equal(t, 0.0, pd.Energy(ri, ui, rj, ujMis))
	assert.False(t, pd.Interacting(ri, ui, rj, ujMis))
}

func TestPatchyDiscOverlapAndCutoff(t *testing.T) {
	box := box2D(t, 20, 20)
	pd := NewPatchyDisc(box, 5.0, 3, 0.1)
	u := []float64{1, 0}

	// Core overlap is infinite regardless of orientation.
	e := pd.Energy([]float64{5, 5}, u, []float64{5.9, 5}, u)
	assert.True(t, math.IsInf(e, 1))
	// But overlapping discs do not count as interacting.
	assert.False(t, pd.Interacting([]float64{5, 5}, u, []float64{5.9, 5}, u))

	// Centres beyond 1+patchRange cannot bond.
	assert.Equal(t, 0.0, pd.Energy([]float64{5, 5}, u, []float64{6.2, 5}, []float64{-1, 0}))

	assert.Equal(t, 1.1, pd.Cutoff())
	assert.True(t, pd.Anisotropic())
	assert.False(t, pd.Repulsive())
}
