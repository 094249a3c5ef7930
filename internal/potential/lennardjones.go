package potential

import (
	"math"

	"github.com/san-kum/clustermc/internal/geom"
)

// LennardJones is the truncated-and-shifted 12-6 potential. Unlike the
// square well it has a finite repulsive core above contact, so movers
// must treat it as repulsive in their acceptance tests.
type LennardJones struct {
	box     *geom.Box
	epsilon float64
	rangeSq float64
	cutoff  float64
	shift   float64

	sep []float64
}

func NewLennardJones(box *geom.Box, epsilon, interactionRange float64) *LennardJones {
	return &LennardJones{
		box:     box,
		epsilon: epsilon,
		rangeSq: interactionRange * interactionRange,
		cutoff:  interactionRange,
		shift:   math.Pow(1/interactionRange, 12) - math.Pow(1/interactionRange, 6),
		sep:     make([]float64, box.Dimension()),
	}
}

func (l *LennardJones) Energy(ri, ui, rj, uj []float64) float64 {
	l.box.Separation(ri, rj, l.sep)
	normSq := geom.NormSq(l.sep)

	if normSq >= l.rangeSq {
		return 0
	}

	r2Inv := 1.0 / normSq
	r6Inv := r2Inv * r2Inv * r2Inv
	return 4 * l.epsilon * (r6Inv*r6Inv - r6Inv - l.shift)
}

func (l *LennardJones) Interacting(ri, ui, rj, uj []float64) bool {
	l.box.Separation(ri, rj, l.sep)
	return geom.NormSq(l.sep) < l.rangeSq
}

func (l *LennardJones) Cutoff() float64   { return l.cutoff }
func (l *LennardJones) Repulsive() bool   { return true }
func (l *LennardJones) Anisotropic() bool { return false }
