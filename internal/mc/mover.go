// Package mc implements the Monte Carlo move engines: the virtual-move
// cluster algorithm (VMMC) and a single-particle Metropolis baseline.
// Both advance the same particle store through the potential Field and
// expose identical statistics, so they are interchangeable behind the
// Mover interface.
//
// One engine owns one logical stream of moves: an attempt is fully
// grown, resolved and (on acceptance) committed before the next begins.
// Shared state mutates only on acceptance, so a rejected attempt leaves
// the system bit-identical.
package mc

import (
	"math"
	"math/rand"
)

// Mover advances the simulation by attempted Monte Carlo moves.
type Mover interface {
	// Step executes n move attempts.
	Step(n int)

	// Attempts is the number of attempted moves since the last reset.
	Attempts() uint64

	// Accepts is the number of accepted moves since the last reset.
	Accepts() uint64

	// Energy is the running total system energy, maintained
	// incrementally from accepted-move deltas.
	Energy() float64

	// ResetStats zeroes the acceptance counters.
	ResetStats()
}

// Config holds the tunable step parameters shared by the movers.
type Config struct {
	// MaxTranslation is the maximum trial displacement, in units of
	// the particle diameter.
	MaxTranslation float64

	// MaxRotation is the maximum trial rotation angle, in radians.
	MaxRotation float64

	// ProbTranslate is the probability of attempting a translation
	// rather than a rotation.
	ProbTranslate float64

	// ReferenceRadius scales the Stokes-drag damping of cluster moves
	// (VMMC only). Defaults to half a diameter.
	ReferenceRadius float64

	// MaxClusterSize rejects any move whose cluster grows beyond this
	// many particles (VMMC only). Zero means no cap below N.
	MaxClusterSize int
}

func (c *Config) withDefaults(n int) Config {
	out := *c
	if out.ReferenceRadius == 0 {
		out.ReferenceRadius = 0.5
	}
	if out.MaxClusterSize <= 0 || out.MaxClusterSize > n {
		out.MaxClusterSize = n
	}
	return out
}

// drawStepSize samples a trial translation magnitude so that the
// displacement is uniform over the ball of radius max.
func drawStepSize(rng *rand.Rand, max float64, dimension int) float64 {
	u := rng.Float64()
	if dimension == 3 {
		return max * math.Cbrt(u)
	}
	return max * math.Sqrt(u)
}
