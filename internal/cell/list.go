// Package cell implements the spatial cell list used to answer "which
// particles lie within interaction range" without an all-pairs scan.
// Cells are sized to the interaction cutoff, so any interacting pair is
// found by scanning a particle's own cell plus its 3^D - 1 neighbours.
package cell

import (
	"fmt"
	"math"

	"github.com/san-kum/clustermc/internal/particle"
)

// List partitions a periodic box into a grid of cells. The grid is a
// coarse filter: callers apply the exact distance cutoff themselves.
type List struct {
	dimension    int
	cellsPerAxis []int
	spacing      []float64
	maxPerCell   int

	tally      []int
	members    [][]int
	neighbours [][]int
}

// New builds a cell list for the given box with cell side >= cutoff.
// It fails when any axis admits fewer than three cells, since a single
// neighbour shell can then wrap onto itself and double-count images.
func New(dimension int, boxSize []float64, cutoff float64) (*List, error) {
	if dimension != 2 && dimension != 3 {
		return nil, fmt.Errorf("cell: dimension must be 2 or 3, got %d", dimension)
	}
	if len(boxSize) != dimension {
		return nil, fmt.Errorf("cell: box has %d axes, want %d", len(boxSize), dimension)
	}
	if cutoff <= 0 {
		return nil, fmt.Errorf("cell: cutoff must be positive, got %f", cutoff)
	}

	l := &List{
		dimension:    dimension,
		cellsPerAxis: make([]int, dimension),
		spacing:      make([]float64, dimension),
	}

	for x := 0; x < dimension; x++ {
		n := int(boxSize[x] / cutoff)
		if n < 3 {
			return nil, fmt.Errorf("cell: box axis %d (%f) is too small for cutoff %f (need >= 3 cells)",
				x, boxSize[x], cutoff)
		}
		l.cellsPerAxis[x] = n
		l.spacing[x] = boxSize[x] / float64(n)
	}

	// Estimate cell occupancy from close packing of unit-diameter
	// spheres, with headroom for transient crowding.
	volume := 1.0
	for x := 0; x < dimension; x++ {
		volume *= l.spacing[x]
	}
	if dimension == 3 {
		l.maxPerCell = int(volume/((4.0/3.0)*math.Pi*0.125)) + 10
	} else {
		l.maxPerCell = int(volume/(math.Pi*0.25)) + 10
	}

	numCells := 1
	for x := 0; x < dimension; x++ {
		numCells *= l.cellsPerAxis[x]
	}

	l.tally = make([]int, numCells)
	l.members = make([][]int, numCells)
	l.neighbours = make([][]int, numCells)
	for m := 0; m < numCells; m++ {
		l.members[m] = make([]int, l.maxPerCell)
	}
	l.buildNeighbourTable()

	return l, nil
}

// buildNeighbourTable precomputes, for every cell, the indices of the
// 3^D cells surrounding it (itself included), with periodic wraparound.
func (l *List) buildNeighbourTable() {
	nx := l.cellsPerAxis[0]
	ny := l.cellsPerAxis[1]
	nz := 1
	if l.dimension == 3 {
		nz = l.cellsPerAxis[2]
	}

	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				m := i + nx*j + nx*ny*k
				neigh := make([]int, 0, 27)

				for c := -1; c <= 1; c++ {
					z := 0
					if l.dimension == 3 {
						z = (k + c + nz) % nz
					} else if c != 0 {
						continue
					}
					for b := -1; b <= 1; b++ {
						y := (j + b + ny) % ny
						for a := -1; a <= 1; a++ {
							x := (i + a + nx) % nx
							neigh = append(neigh, x+nx*y+nx*ny*z)
						}
					}
				}

				l.neighbours[m] = neigh
			}
		}
	}
}

func (l *List) Dimension() int { return l.dimension }
func (l *List) NumCells() int  { return len(l.tally) }

// Index returns the cell owning a position. The position must already
// lie inside the box.
func (l *List) Index(pos []float64) int {
	cx := int(pos[0] / l.spacing[0])
	cy := int(pos[1] / l.spacing[1])

	// Guard against a coordinate sitting exactly on the upper box edge.
	if cx == l.cellsPerAxis[0] {
		cx--
	}
	if cy == l.cellsPerAxis[1] {
		cy--
	}

	cell := cx + cy*l.cellsPerAxis[0]
	if l.dimension == 3 {
		cz := int(pos[2] / l.spacing[2])
		if cz == l.cellsPerAxis[2] {
			cz--
		}
		cell += cz * l.cellsPerAxis[0] * l.cellsPerAxis[1]
	}
	return cell
}

// NeighbourCells returns the precomputed 3^D cells surrounding (and
// including) the given cell. The slice is shared; callers must not
// modify it.
func (l *List) NeighbourCells(cell int) []int { return l.neighbours[cell] }

// Members returns a live view of the particle indices in a cell.
func (l *List) Members(cell int) []int { return l.members[cell][:l.tally[cell]] }

// Insert places a particle into the cell owning its position.
func (l *List) Insert(p *particle.Particle) error {
	cell := l.Index(p.Position)
	if l.tally[cell] == l.maxPerCell {
		return fmt.Errorf("cell: cell %d exceeded capacity %d", cell, l.maxPerCell)
	}
	l.members[cell][l.tally[cell]] = p.Index
	p.Cell = cell
	p.PosCell = l.tally[cell]
	l.tally[cell]++
	return nil
}

// Update moves a particle between cells after a committed position
// change. The old slot is filled by swapping in the cell's last member,
// so removal is O(1). No-op when the particle has not changed cell.
func (l *List) Update(p *particle.Particle, store []particle.Particle) error {
	newCell := l.Index(p.Position)
	if newCell == p.Cell {
		return nil
	}

	// Swap-remove from the old cell.
	old := p.Cell
	l.tally[old]--
	moved := l.members[old][l.tally[old]]
	l.members[old][p.PosCell] = moved
	store[moved].PosCell = p.PosCell

	if l.tally[newCell] == l.maxPerCell {
		return fmt.Errorf("cell: cell %d exceeded capacity %d", newCell, l.maxPerCell)
	}
	l.members[newCell][l.tally[newCell]] = p.Index
	p.Cell = newCell
	p.PosCell = l.tally[newCell]
	l.tally[newCell]++
	return nil
}

// Reset empties every cell.
func (l *List) Reset() {
	for i := range l.tally {
		l.tally[i] = 0
	}
}
