package mc

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/clustermc/internal/cell"
	"github.com/san-kum/clustermc/internal/geom"
	"github.com/san-kum/clustermc/internal/particle"
	"github.com/san-kum/clustermc/internal/potential"
)

var (
	_ Mover = (*VMMC)(nil)
	_ Mover = (*Single)(nil)
)

// latticeField places nPerAxis^3 square-well particles on a cubic
// lattice, spaced so no pair starts bonded, and returns the initialised
// field.
func latticeField(t *testing.T, nPerAxis int, spacing, epsilon, interactionRange float64, maxInteractions int) *potential.Field {
	t.Helper()

	length := float64(nPerAxis) * spacing
	box, err := geom.NewBox([]float64{length, length, length})
	require.NoError(t, err)

	pair := potential.NewSquareWell(box, epsilon, interactionRange)
	cells, err := cell.New(3, box.Size, pair.Cutoff())
	require.NoError(t, err)

	n := nPerAxis * nPerAxis * nPerAxis
	store := particle.NewStore(n, 3)
	i := 0
	for x := 0; x < nPerAxis; x++ {
		for y := 0; y < nPerAxis; y++ {
			for z := 0; z < nPerAxis; z++ {
				store[i].Position[0] = (float64(x) + 0.5) * spacing
				store[i].Position[1] = (float64(y) + 0.5) * spacing
				store[i].Position[2] = (float64(z) + 0.5) * spacing
				require.NoError(t, cells.Insert(&store[i]))
				i++
			}
		}
	}

	f := potential.NewField(box, cells, store, pair, maxInteractions)
	f.RefreshCounts()
	return f
}

func defaultConfig() Config {
	return Config{
		MaxTranslation: 0.5,
		MaxRotation:    0.3,
		ProbTranslate:  0.5,
	}
}

func TestNewVMMCValidation(t *testing.T) {
	f := latticeField(t, 3, 2.0, 2.0, 1.5, 36)
	rng := rand.New(rand.NewSource(1))

	_, err := NewVMMC(f, rng, Config{MaxTranslation: 0})
	assert.Error(t, err)

	_, err = NewVMMC(f, rng, Config{MaxTranslation: 0.1, ProbTranslate: 1.5})
	assert.Error(t, err)

	// Rotations enabled but no rotation step.
	_, err = NewVMMC(f, rng, Config{MaxTranslation: 0.1, ProbTranslate: 0.5})
	assert.Error(t, err)

	v, err := NewVMMC(f, rng, defaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 0.0, v.Energy())
}

func TestNewVMMCRejectsOverlaps(t *testing.T) {
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

	_, err = NewVMMC(f, rand.New(rand.NewSource(1)), defaultConfig())
	assert.Error(t, err)
}

func TestVMMCSingleFreeParticleAlwaysAccepts(t *testing.T) {
	// One particle, no interactions: every translation is accepted.
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

	cfg := defaultConfig()
	cfg.ProbTranslate = 1
	v, err := NewVMMC(f, rand.New(rand.NewSource(2)), cfg)
	require.NoError(t, err)

	v.Step(100)
	assert.Equal(t, uint64(100), v.Attempts())
	assert.Equal(t, uint64(100), v.Accepts())
	assert.Equal(t, 0.0, v.Energy())
}

func TestVMMCEnergyBookkeeping(t *testing.T) {
	// The incremental energy must track a full recomputation: any
	// mutation by a rejected move, or a wrong delta on acceptance,
	// shows up as drift.
	f := latticeField(t, 5, 2.0, 2.0, 1.5, 36)
	v, err := NewVMMC(f, rand.New(rand.NewSource(3)), defaultConfig())
	require.NoError(t, err)

	for block := 0; block < 10; block++ {
		v.Step(200)
		assert.InDelta(t, f.TotalEnergy(), v.Energy(), 1e-9)
	}

	// Something must have happened in 2000 attempts.
	assert.Greater(t, v.Accepts(), uint64(0))
	assert.Less(t, v.Energy(), 0.0)
}

func TestVMMCNeverCreatesOverlaps(t *testing.T) {
	f := latticeField(t, 4, 1.6, 3.0, 1.4, 36)
	v, err := NewVMMC(f, rand.New(rand.NewSource(4)), defaultConfig())
	require.NoError(t, err)

	v.Step(2000)
	assert.False(t, math.IsInf(f.TotalEnergy(), 1))
}

func TestVMMCDeterminism(t *testing.T) {
	build := func() (*potential.Field, *VMMC) {
		f := latticeField(t, 4, 2.0, 2.0, 1.5, 36)
		v, err := NewVMMC(f, rand.New(rand.NewSource(5)), defaultConfig())
		require.NoError(t, err)
		return f, v
	}

	f1, v1 := build()
	f2, v2 := build()

	v1.Step(500)
	v2.Step(500)

	assert.Equal(t, v1.Accepts(), v2.Accepts())
	assert.Equal(t, v1.Energy(), v2.Energy())
	for i := 0; i < f1.N(); i++ {
		assert.Equal(t, f1.Position(i), f2.Position(i), "particle %d diverged", i)
	}
}

func TestVMMCClusterHistograms(t *testing.T) {
	f := latticeField(t, 4, 1.6, 4.0, 1.5, 36)
	v, err := NewVMMC(f, rand.New(rand.NewSource(6)), defaultConfig())
	require.NoError(t, err)

	v.Step(3000)

	var translated, rotated uint64
	for _, c := range v.ClusterTranslations() {
		translated += c
	}
	for _, c := range v.ClusterRotations() {
		rotated += c
	}
	assert.Equal(t, v.Accepts(), translated+rotated)
	assert.Equal(t, v.Rotations(), rotated)

	// Strong bonds at this density should produce some multi-particle
	// cluster moves.
	multi := uint64(0)
	for size := 1; size < len(v.ClusterTranslations()); size++ {
		multi += v.ClusterTranslations()[size] + v.ClusterRotations()[size]
	}
	assert.Greater(t, multi, uint64(0))
}

func TestVMMCMaxClusterSize(t *testing.T) {
	f := latticeField(t, 4, 1.6, 4.0, 1.5, 36)
	cfg := defaultConfig()
	cfg.MaxClusterSize = 1
	v, err := NewVMMC(f, rand.New(rand.NewSource(7)), cfg)
	require.NoError(t, err)

	v.Step(2000)

	// No accepted move may exceed the cap.
	for size := 1; size < len(v.ClusterTranslations()); size++ {
		assert.Zero(t, v.ClusterTranslations()[size])
		assert.Zero(t, v.ClusterRotations()[size])
	}
	assert.InDelta(t, f.TotalEnergy(), v.Energy(), 1e-9)
}

// dimerBondedFraction samples a two-particle square-well system and
// returns the fraction of attempts that end with the pair bonded.
func dimerBondedFraction(t *testing.T, epsilon float64, seed int64) float64 {
	t.Helper()

	box, err := geom.NewBox([]float64{5, 5, 5})
	require.NoError(t, err)
	pair := potential.NewSquareWell(box, epsilon, 1.5)
	cells, err := cell.New(3, box.Size, pair.Cutoff())
	require.NoError(t, err)

	store := particle.NewStore(2, 3)
	copy(store[0].Position, []float64{1, 1, 1})
	copy(store[1].Position, []float64{3.5, 3.5, 3.5})
	for i := range store {
		require.NoError(t, cells.Insert(&store[i]))
	}
	f := potential.NewField(box, cells, store, pair, 36)
	f.RefreshCounts()

	cfg := Config{MaxTranslation: 1.0, ProbTranslate: 1}
	v, err := NewVMMC(f, rand.New(rand.NewSource(seed)), cfg)
	require.NoError(t, err)

	v.Step(10000) // equilibrate

	const samples = 300000
	bonded := 0
	for i := 0; i < samples; i++ {
		v.Step(1)
		if v.Energy() < 0 {
			bonded++
		}
	}
	return float64(bonded) / float64(samples)
}

func TestVMMCDimerBoltzmannOccupancy(t *testing.T) {
	// Detailed balance fixes the bonded/unbonded occupancy odds at an
	// entropic volume factor times exp(epsilon). The volume factor
	// cancels between two well depths, so the log odds ratio must equal
	// the depth difference.
	if testing.Short() {
		t.Skip("statistical sampling test")
	}

	fLow := dimerBondedFraction(t, 1.0, 21)
	fHigh := dimerBondedFraction(t, 2.0, 22)

	odds := func(f float64) float64 { return f / (1 - f) }
	assert.InDelta(t, 1.0, math.Log(odds(fHigh)/odds(fLow)), 0.25)
}

func TestVMMCResetStats(t *testing.T) {
	f := latticeField(t, 3, 2.0, 2.0, 1.5, 36)
	v, err := NewVMMC(f, rand.New(rand.NewSource(8)), defaultConfig())
	require.NoError(t, err)

	v.Sweep()
	require.Greater(t, v.Attempts(), uint64(0))

	v.ResetStats()
	assert.Zero(t, v.Attempts())
	assert.Zero(t, v.Accepts())
	assert.Zero(t, v.Rotations())
}
