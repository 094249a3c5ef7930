package mc

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/clustermc/internal/cell"
	"github.com/san-kum/clustermc/internal/geom"
	"github.com/san-kum/clustermc/internal/particle"
	"github.com/san-kum/clustermc/internal/potential"
)

// patchyField builds a 2D patchy-disc field with discs on a square
// lattice, patches initially pointing along +x.
func patchyField(t *testing.T, nPerAxis int, spacing float64) *potential.Field {
	t.Helper()

	length := float64(nPerAxis) * spacing
	box, err := geom.NewBox([]float64{length, length})
	require.NoError(t, err)

	pair := potential.NewPatchyDisc(box, 4.0, 3, 0.1)
	cells, err := cell.New(2, box.Size, pair.Cutoff())
	require.NoError(t, err)

	n := nPerAxis * nPerAxis
	store := particle.NewStore(n, 2)
	i := 0
	for x := 0; x < nPerAxis; x++ {
		for y := 0; y < nPerAxis; y++ {
			store[i].Position[0] = (float64(x) + 0.5) * spacing
			store[i].Position[1] = (float64(y) + 0.5) * spacing
			require.NoError(t, cells.Insert(&store[i]))
			i++
		}
	}

	f := potential.NewField(box, cells, store, pair, 3)
	f.RefreshCounts()
	return f
}

func TestNewSingleValidation(t *testing.T) {
	f := latticeField(t, 3, 2.0, 2.0, 1.5, 36)

	_, err := NewSingle(f, rand.New(rand.NewSource(1)), Config{MaxTranslation: 0})
	assert.Error(t, err)

	s, err := NewSingle(f, rand.New(rand.NewSource(1)), defaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.Energy())
}

func TestNewSingleRejectsOverlaps(t *testing.T) {
	box, err := geom.NewBox([]float64{10, 10, 10})
	require.NoError(t, err)
	pair := potential.NewSquareWell(box, 1.0, 1.5)
	cells, err := cell.New(3, box.Size, pair.Cutoff())
	require.NoError(t, err)

	store := particle.NewStore(2, 3)
	copy(store[0].Position, []float64{5, 5, 5})
	copy(store[1].Position, []float64{5.5, 5, 5})
	for i := range store {
		require.NoError(t, cells.Insert(&store[i]))
	}
	f := potential.NewField(box, cells, store, pair, 36)
	f.RefreshCounts()

	_, err = NewSingle(f, rand.New(rand.NewSource(1)), defaultConfig())
	assert.Error(t, err)
}

func TestSingleIsotropicNeverRotates(t *testing.T) {
	f := latticeField(t, 3, 2.0, 2.0, 1.5, 36)

	// Even with every attempt nominally a rotation, an isotropic model
	// forces pure translations.
	cfg := defaultConfig()
	cfg.ProbTranslate = 0
	s, err := NewSingle(f, rand.New(rand.NewSource(2)), cfg)
	require.NoError(t, err)

	s.Step(500)
	assert.Equal(t, uint64(0), s.Rotations())
	assert.Greater(t, s.Accepts(), uint64(0))
}

func TestSingleEnergyBookkeeping(t *testing.T) {
	f := latticeField(t, 5, 2.0, 2.0, 1.5, 36)
	s, err := NewSingle(f, rand.New(rand.NewSource(3)), defaultConfig())
	require.NoError(t, err)

	for block := 0; block < 10; block++ {
		s.Step(200)
		assert.InDelta(t, f.TotalEnergy(), s.Energy(), 1e-9)
	}
	assert.Less(t, s.Energy(), 0.0)
}

func TestSingleFreeParticleAlwaysAccepts(t *testing.T) {
	box, err := geom.NewBox([]float64{10, 10, 10})
	require.NoError(t, err)
	pair := potential.NewSquareWell(box, 1.0, 1.5)
	cells, err := cell.New(3, box.Size, pair.Cutoff())
	require.NoError(t, err)

	store := particle.NewStore(1, 3)
	copy(store[0].Position, []float64{5, 5, 5})
	require.NoError(t, cells.Insert(&store[0]))
	f := potential.NewField(box, cells, store, pair, 36)
	f.RefreshCounts()

	s, err := NewSingle(f, rand.New(rand.NewSource(4)), defaultConfig())
	require.NoError(t, err)

	s.Step(100)
	assert.Equal(t, uint64(100), s.Attempts())
	assert.Equal(t, uint64(100), s.Accepts())
}

func TestSingleAnisotropicRotations(t *testing.T) {
	f := patchyField(t, 4, 2.0)

	cfg := defaultConfig()
	cfg.ProbTranslate = 0.5
	s, err := NewSingle(f, rand.New(rand.NewSource(5)), cfg)
	require.NoError(t, err)

	for block := 0; block < 5; block++ {
		s.Step(400)
		assert.InDelta(t, f.TotalEnergy(), s.Energy(), 1e-9)
	}
	assert.Greater(t, s.Rotations(), uint64(0))

	// Orientations must stay on the unit circle through the delta
	// updates.
	for i := 0; i < f.N(); i++ {
		assert.InDelta(t, 1.0, geom.Norm(f.Orientation(i)), 1e-6)
	}
}

func TestSingleDeterminism(t *testing.T) {
	build := func() (*potential.Field, *Single) {
		f := latticeField(t, 4, 2.0, 2.0, 1.5, 36)
		s, err := NewSingle(f, rand.New(rand.NewSource(6)), defaultConfig())
		require.NoError(t, err)
		return f, s
	}

	f1, s1 := build()
	f2, s2 := build()

	s1.Step(500)
	s2.Step(500)

	assert.Equal(t, s1.Accepts(), s2.Accepts())
	assert.Equal(t, s1.Energy(), s2.Energy())
	for i := 0; i < f1.N(); i++ {
		assert.Equal(t, f1.Position(i), f2.Position(i))
	}
}

func TestSingleResetStats(t *testing.T) {
	f := latticeField(t, 3, 2.0, 2.0, 1.5, 36)
	s, err := NewSingle(f, rand.New(rand.NewSource(7)), defaultConfig())
	require.NoError(t, err)

	s.Step(50)
	require.Greater(t, s.Attempts(), uint64(0))

	s.ResetStats()
	assert.Zero(t, s.Attempts())
	assert.Zero(t, s.Accepts())
	assert.Zero(t, s.Rotations())
}
