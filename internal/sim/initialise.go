package sim

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/clustermc/internal/cell"
	"github.com/san-kum/clustermc/internal/geom"
	"github.com/san-kum/clustermc/internal/particle"
)

// maxPlacementTrials bounds the rejection sampling per particle during
// random initialisation.
const maxPlacementTrials = 100000

// RandomPlacement fills the store with a non-overlapping random
// configuration and populates the cell list consistently. Orientations
// are drawn uniformly on the unit sphere/circle.
func RandomPlacement(store []particle.Particle, cells *cell.List, box *geom.Box, rng *rand.Rand) error {
	dim := box.Dimension()
	sep := make([]float64, dim)

	for i := range store {
		store[i].Index = i

		placed := false
		for trial := 0; trial < maxPlacementTrials; trial++ {
			for k := 0; k < dim; k++ {
				store[i].Position[k] = rng.Float64() * box.Size[k]
			}
			geom.RandomUnitVector(rng, store[i].Orientation)

			if !overlaps(&store[i], store[:i], cells, box, sep) {
				placed = true
				break
			}
		}
		if !placed {
			return fmt.Errorf("%w (particle %d)", ErrMaxTrials, i)
		}

		if err := cells.Insert(&store[i]); err != nil {
			return err
		}
	}

	return nil
}

// overlaps reports whether p sits within one diameter of any already
// placed particle, scanning only the neighbour cells of p's position.
func overlaps(p *particle.Particle, placed []particle.Particle, cells *cell.List, box *geom.Box, sep []float64) bool {
	home := cells.Index(p.Position)
	for _, c := range cells.NeighbourCells(home) {
		for _, j := range cells.Members(c) {
			box.Separation(p.Position, placed[j].Position, sep)
			if geom.NormSq(sep) < 1 {
				return true
			}
		}
	}
	return false
}
