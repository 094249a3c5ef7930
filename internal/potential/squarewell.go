// Package potential implements the pair potentials and the cell-list
// driven evaluator used by the Monte Carlo move engines. Distances are
// measured in units of the particle diameter, energies in units of kT.
package potential

import (
	"math"

	"github.com/san-kum/clustermc/internal/geom"
)

// Pair computes the interaction energy of one particle pair. A return
// of +Inf signals a hard-core overlap: an invalid configuration, never
// a finite penalty.
type Pair interface {
	// Energy returns the pair energy for particles at ri/rj with
	// orientations ui/uj. Isotropic models ignore the orientations.
	Energy(ri, ui, rj, uj []float64) float64

	// Interacting reports whether the pair counts as an active
	// interaction (used for recruitment candidates and counts).
	Interacting(ri, ui, rj, uj []float64) bool

	// Cutoff is the maximum centre-to-centre distance at which the
	// pair can interact; it sizes the cell list.
	Cutoff() float64

	// Repulsive reports whether the potential has a finite repulsive
	// part, which the cluster engine must fold into its acceptance.
	Repulsive() bool

	// Anisotropic reports whether orientations matter.
	Anisotropic() bool
}

// SquareWell is the isotropic square-well potential: infinite below
// contact, -epsilon inside the well shell, zero beyond.
type SquareWell struct {
	box     *geom.Box
	epsilon float64
	rangeSq float64
	cutoff  float64

	sep []float64 // scratch
}

func NewSquareWell(box *geom.Box, epsilon, interactionRange float64) *SquareWell {
	return &SquareWell{
		box:     box,
		epsilon: epsilon,
		rangeSq: interactionRange * interactionRange,
		cutoff:  interactionRange,
		sep:     make([]float64, box.Dimension()),
	}
}

func (s *SquareWell) Energy(ri, ui, rj, uj []float64) float64 {
	s.box.Separation(ri, rj, s.sep)
	normSq := geom.NormSq(s.sep)

	if normSq < 1 {
		return math.Inf(1)
	}
	if normSq < s.rangeSq {
		return -s.epsilon
	}
	return 0
}

func (s *SquareWell) Interacting(ri, ui, rj, uj []float64) bool {
	s.box.Separation(ri, rj, s.sep)
	return geom.NormSq(s.sep) < s.rangeSq
}

func (s *SquareWell) Cutoff() float64   { return s.cutoff }
func (s *SquareWell) Repulsive() bool   { return false }
func (s *SquareWell) Anisotropic() bool { return false }
