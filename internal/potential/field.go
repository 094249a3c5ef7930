package potential

import (
	"math"

	"github.com/san-kum/clustermc/internal/cell"
	"github.com/san-kum/clustermc/internal/geom"
	"github.com/san-kum/clustermc/internal/particle"
)

// Finite energies above this are treated as a hard-core overlap, which
// keeps soft-core models like Lennard-Jones from feeding absurd
// Boltzmann weights into the move engines.
const overlapThreshold = 1e6

// Field evaluates a pair potential over the particle store using the
// cell list, and maintains the per-particle interaction counts. It is
// the single evaluator for both isotropic and anisotropic models: the
// branch happens once, inside the Pair implementation.
//
// All energy queries are read only. The store, the cell list and the
// counts mutate only through Commit.
type Field struct {
	box             *geom.Box
	cells           *cell.List
	store           []particle.Particle
	pair            Pair
	maxInteractions int

	counts []int
	buf    []int
}

func NewField(box *geom.Box, cells *cell.List, store []particle.Particle, pair Pair, maxInteractions int) *Field {
	return &Field{
		box:             box,
		cells:           cells,
		store:           store,
		pair:            pair,
		maxInteractions: maxInteractions,
		counts:          make([]int, len(store)),
		buf:             make([]int, 0, maxInteractions),
	}
}

func (f *Field) N() int               { return len(f.store) }
func (f *Field) Box() *geom.Box       { return f.box }
func (f *Field) Cells() *cell.List    { return f.cells }
func (f *Field) Pair() Pair           { return f.pair }
func (f *Field) MaxInteractions() int { return f.maxInteractions }

func (f *Field) Position(i int) []float64    { return f.store[i].Position }
func (f *Field) Orientation(i int) []float64 { return f.store[i].Orientation }

// PairEnergy evaluates the pair energy between a (possibly virtual)
// particle state ri/ui and the stored state of particle j.
func (f *Field) PairEnergy(ri, ui []float64, j int) float64 {
	return f.pair.Energy(ri, ui, f.store[j].Position, f.store[j].Orientation)
}

// Interactions enumerates the particles interacting with particle i
// probed at pos/orient, truncated at maxInteractions. Partners beyond
// the cap are treated as non-interacting: a deliberate bound on cluster
// growth in dense systems, not a physical truncation.
//
// The returned slice is reused by the next call; copy it to retain it.
// The probe never mutates the cell list.
func (f *Field) Interactions(i int, pos, orient []float64) []int {
	f.buf = f.buf[:0]

	home := f.cells.Index(pos)
	for _, c := range f.cells.NeighbourCells(home) {
		for _, j := range f.cells.Members(c) {
			if j == i {
				continue
			}
			if !f.pair.Interacting(pos, orient, f.store[j].Position, f.store[j].Orientation) {
				continue
			}
			if len(f.buf) == f.maxInteractions {
				return f.buf
			}
			f.buf = append(f.buf, j)
		}
	}

	return f.buf
}

// EnergyOf computes the total interaction energy felt by particle i
// probed at pos/orient. Returns +Inf on hard-core overlap. Interacting
// partners beyond the interaction cap contribute nothing, matching the
// recruitment rule.
func (f *Field) EnergyOf(i int, pos, orient []float64) float64 {
	energy := 0.0
	count := 0

	home := f.cells.Index(pos)
	for _, c := range f.cells.NeighbourCells(home) {
		for _, j := range f.cells.Members(c) {
			if j == i {
				continue
			}
			rj := f.store[j].Position
			uj := f.store[j].Orientation
			if !f.pair.Interacting(pos, orient, rj, uj) {
				// Overlapping pairs may fail the interaction test
				// (e.g. patchy discs) but still invalidate the state.
				if math.IsInf(f.pair.Energy(pos, orient, rj, uj), 1) {
					return math.Inf(1)
				}
				continue
			}
			if count == f.maxInteractions {
				continue
			}
			e := f.pair.Energy(pos, orient, rj, uj)
			if e > overlapThreshold {
				return math.Inf(1)
			}
			energy += e
			count++
		}
	}

	return energy
}

// TotalEnergy recomputes the full system energy, O(N*k) via the cell
// list. Used for diagnostics and for cross-checking the engines'
// incremental bookkeeping.
func (f *Field) TotalEnergy() float64 {
	energy := 0.0
	for i := range f.store {
		e := f.EnergyOf(i, f.store[i].Position, f.store[i].Orientation)
		if math.IsInf(e, 1) {
			return math.Inf(1)
		}
		energy += e
	}
	return energy / 2
}

// EnergyPerParticle is the reporting convention used by the demos.
func (f *Field) EnergyPerParticle() float64 {
	return f.TotalEnergy() / float64(len(f.store))
}

// Count returns particle i's active interaction count. Never exceeds
// the configured maximum.
func (f *Field) Count(i int) int { return f.counts[i] }

// RefreshCounts recomputes every particle's interaction count. Called
// once after initialisation.
func (f *Field) RefreshCounts() {
	for i := range f.store {
		f.counts[i] = len(f.Interactions(i, f.store[i].Position, f.store[i].Orientation))
	}
}

// Commit atomically applies an accepted move: it writes the post-move
// positions and orientations for the given particles, updates their
// cell membership and refreshes the interaction counts of every
// particle whose neighbourhood changed. This is the only operation that
// mutates shared state.
func (f *Field) Commit(indices []int, positions, orientations [][]float64) error {
	affected := make(map[int]struct{}, 4*len(indices))

	// Old-neighbourhood partners lose interactions when we move away.
	for _, i := range indices {
		affected[i] = struct{}{}
		for _, j := range f.Interactions(i, f.store[i].Position, f.store[i].Orientation) {
			affected[j] = struct{}{}
		}
	}

	for k, i := range indices {
		copy(f.store[i].Position, positions[k])
		if orientations != nil {
			copy(f.store[i].Orientation, orientations[k])
		}
		if err := f.cells.Update(&f.store[i], f.store); err != nil {
			return err
		}
	}

	// New-neighbourhood partners gain interactions.
	for _, i := range indices {
		for _, j := range f.Interactions(i, f.store[i].Position, f.store[i].Orientation) {
			affected[j] = struct{}{}
		}
	}

	for k := range affected {
		f.counts[k] = len(f.Interactions(k, f.store[k].Position, f.store[k].Orientation))
	}

	return nil
}
