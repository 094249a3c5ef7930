package analysis

import (
	"math"

	"github.com/san-kum/clustermc/internal/geom"
	"github.com/san-kum/clustermc/internal/particle"
)

// RDF is a radial distribution function g(r) binned to rMax.
type RDF struct {
	BinWidth float64
	R        []float64 // bin centres
	G        []float64
}

// ComputeRDF bins all pair separations under the minimum image
// convention and normalises against the ideal-gas shell density, in two
// or three dimensions. O(N^2), intended for post-run analysis rather
// than the sampling loop.
func ComputeRDF(store []particle.Particle, box *geom.Box, bins int, rMax float64) *RDF {
	n := len(store)
	dim := box.Dimension()
	binWidth := rMax / float64(bins)

	counts := make([]float64, bins)
	sep := make([]float64, dim)

	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			box.Separation(store[i].Position, store[j].Position, sep)
			r := geom.Norm(sep)
			if r >= rMax {
				continue
			}
			counts[int(r/binWidth)] += 2
		}
	}

	volume := 1.0
	for _, l := range box.Size {
		volume *= l
	}
	density := float64(n) / volume

	rdf := &RDF{
		BinWidth: binWidth,
		R:        make([]float64, bins),
		G:        make([]float64, bins),
	}

	for b := 0; b < bins; b++ {
		rLo := float64(b) * binWidth
		rHi := rLo + binWidth
		rdf.R[b] = rLo + binWidth/2

		var shell float64
		if dim == 2 {
			shell = math.Pi * (rHi*rHi - rLo*rLo)
		} else {
			shell = 4 * math.Pi / 3 * (rHi*rHi*rHi - rLo*rLo*rLo)
		}

		ideal := density * shell * float64(n)
		if ideal > 0 {
			rdf.G[b] = counts[b] / ideal
		}
	}

	return rdf
}
