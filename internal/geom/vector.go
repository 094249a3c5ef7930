package geom

import (
	"math"
	"math/rand"
)

func Norm(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func NormSq(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return sum
}

func Dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// RandomUnitVector fills v with a uniformly distributed point on the
// unit sphere (or circle), via normalised Gaussian draws.
func RandomUnitVector(rng *rand.Rand, v []float64) {
	for {
		for i := range v {
			v[i] = rng.NormFloat64()
		}
		norm := Norm(v)
		if norm > 1e-12 {
			for i := range v {
				v[i] /= norm
			}
			return
		}
	}
}

// Rotate3D computes the change in v1 under rotation by angle about the
// unit axis, writing the delta into out (Beard & Schlick, BJ 85 2973).
func Rotate3D(v1, axis, out []float64, angle float64) {
	c := math.Cos(angle)
	s := math.Sin(angle)

	d := v1[0]*axis[0] + v1[1]*axis[1] + v1[2]*axis[2]

	out[0] = (v1[0]-axis[0]*d)*(c-1) + (axis[2]*v1[1]-axis[1]*v1[2])*s
	out[1] = (v1[1]-axis[1]*d)*(c-1) + (axis[0]*v1[2]-axis[2]*v1[0])*s
	out[2] = (v1[2]-axis[2]*d)*(c-1) + (axis[1]*v1[0]-axis[0]*v1[1])*s
}

// Rotate2D computes the change in v1 under an in-plane rotation by
// angle, writing the delta into out.
func Rotate2D(v1, out []float64, angle float64) {
	c := math.Cos(angle)
	s := math.Sin(angle)

	out[0] = (v1[0]*c - v1[1]*s) - v1[0]
	out[1] = (v1[0]*s + v1[1]*c) - v1[1]
}
