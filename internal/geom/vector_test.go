package geom

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormDot(t *testing.T) {
	assert.InDelta(t, 5.0, Norm([]float64{3, 4}), 1e-12)
	assert.InDelta(t, 25.0, NormSq([]float64{3, 4}), 1e-12)
	assert.InDelta(t, 11.0, Dot([]float64{1, 2}, []float64{3, 4}), 1e-12)
}

func TestRandomUnitVector(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for _, dim := range []int{2, 3} {
		v := make([]float64, dim)
		mean := make([]float64, dim)
		for i := 0; i < 1000; i++ {
			RandomUnitVector(rng, v)
			assert.InDelta(t, 1.0, Norm(v), 1e-12)
			for k := range v {
				mean[k] += v[k]
			}
		}
		// Isotropy: the mean direction vanishes.
		for k := range mean {
			assert.InDelta(t, 0.0, mean[k]/1000, 0.05)
		}
	}
}

func TestRotate2D(t *testing.T) {
	v := []float64{1, 0}
	delta := make([]float64, 2)

	Rotate2D(v, delta, math.Pi/2)
	assert.InDelta(t, -1.0, delta[0], 1e-12)
	assert.InDelta(t, 1.0, delta[1], 1e-12)

	// Applying the delta lands on the rotated vector with unit norm.
	rotated := []float64{v[0] + delta[0], v[1] + delta[1]}
	assert.InDelta(t, 1.0, Norm(rotated), 1e-12)
}

func TestRotate3DPreservesNorm(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	v := make([]float64, 3)
	axis := make([]float64, 3)
	delta := make([]float64, 3)

	for i := 0; i < 100; i++ {
		RandomUnitVector(rng, v)
		RandomUnitVector(rng, axis)
		angle := (2*rng.Float64() - 1) * math.Pi

		Rotate3D(v, axis, delta, angle)
		rotated := []float64{v[0] + delta[0], v[1] + delta[1], v[2] + delta[2]}

		assert.InDelta(t, 1.0, Norm(rotated), 1e-9)
		// The component along the axis is unchanged.
		assert.InDelta(t, Dot(v, axis), Dot(rotated, axis), 1e-9)
	}
}

func TestRotate3DZeroAngle(t *testing.T) {
	v := []float64{0, 1, 0}
	axis := []float64{0, 0, 1}
	delta := make([]float64, 3)

	Rotate3D(v, axis, delta, 0)
	for k := range delta {
		assert.InDelta(t, 0.0, delta[k], 1e-12)
	}
}
