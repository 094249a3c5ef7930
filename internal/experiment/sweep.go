// Package experiment runs parameter sweeps: a grid of values for one
// model parameter, each point sampled over an ensemble of independent
// replicas.
package experiment

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/clustermc/internal/analysis"
	"github.com/san-kum/clustermc/internal/sim"
)

// Sweep scans one parameter of a base configuration across Values.
type Sweep struct {
	Base      sim.Config
	Parameter string // epsilon | density | range
	Values    []float64
	Replicas  int
	Sweeps    int
	SeedStart int64
}

// Point is the ensemble-averaged result at one parameter value.
type Point struct {
	Value          float64
	MeanEnergy     float64
	EnergyError    float64
	MeanAcceptance float64
}

// Run executes the sweep point by point. Replicas within a point run
// concurrently; points run sequentially so memory stays bounded.
func (s *Sweep) Run(ctx context.Context) ([]Point, error) {
	if len(s.Values) == 0 {
		return nil, fmt.Errorf("experiment: no parameter values given")
	}
	if s.Replicas < 1 {
		s.Replicas = 1
	}

	points := make([]Point, 0, len(s.Values))

	for _, v := range s.Values {
		cfg := s.Base
		if err := applyParameter(&cfg, s.Parameter, v); err != nil {
			return nil, err
		}

		ensemble := sim.NewEnsemble(cfg, s.Replicas, s.SeedStart)
		replicas, err := ensemble.Run(ctx, s.Sweeps)
		if err != nil {
			return nil, fmt.Errorf("experiment: %s=%g: %w", s.Parameter, v, err)
		}

		energies := make([]float64, len(replicas))
		acceptances := make([]float64, len(replicas))
		for i, r := range replicas {
			energies[i] = r.Energy
			acceptances[i] = r.Acceptance
		}

		point := Point{
			Value:          v,
			MeanEnergy:     analysis.Mean(energies),
			MeanAcceptance: analysis.Mean(acceptances),
		}
		if len(energies) > 1 {
			point.EnergyError = math.Sqrt(analysis.Variance(energies) / float64(len(energies)))
		}

		points = append(points, point)
	}

	return points, nil
}

func applyParameter(cfg *sim.Config, name string, v float64) error {
	switch name {
	case "epsilon":
		cfg.Epsilon = v
	case "density":
		cfg.Density = v
		cfg.BoxSize = nil
	case "range":
		cfg.Range = v
	default:
		return fmt.Errorf("experiment: unknown sweep parameter %q", name)
	}
	return nil
}
