// Package particle defines the authoritative particle store shared by
// the cell list, the potential evaluator and the move engines. All
// components read and write views into this single store; no parallel
// coordinate arrays are kept.
package particle

// Particle is one sphere (or disc) in the simulation box.
type Particle struct {
	Index       int
	Position    []float64
	Orientation []float64 // unit vector; meaningful only for anisotropic models

	// Cell bookkeeping, owned by the cell list.
	Cell    int
	PosCell int
}

// NewStore allocates n particles of the given dimensionality, each with
// a dummy orientation so isotropic models never see a nil slice.
func NewStore(n, dimension int) []Particle {
	store := make([]Particle, n)
	for i := range store {
		store[i].Index = i
		store[i].Position = make([]float64, dimension)
		store[i].Orientation = make([]float64, dimension)
		store[i].Orientation[0] = 1
	}
	return store
}
