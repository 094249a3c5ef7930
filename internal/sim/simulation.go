// Package sim assembles the box, cell list, particle store, potential
// field and move engine into a runnable simulation, and owns the sweep
// loop. One Simulation is one logical stream of moves; it is not safe
// for concurrent use.
package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/clustermc/internal/cell"
	"github.com/san-kum/clustermc/internal/geom"
	"github.com/san-kum/clustermc/internal/mc"
	"github.com/san-kum/clustermc/internal/particle"
	"github.com/san-kum/clustermc/internal/potential"
)

// Config is the full configuration surface of one run.
type Config struct {
	Dimension int
	Particles int

	// Density fixes the box size when BoxSize is empty (particle
	// diameter is one).
	Density float64
	BoxSize []float64

	Model string // square_well | lennard_jones | patchy_disc
	Mover string // vmmc | single

	Epsilon         float64 // well depth / energy scale, in kT
	Range           float64 // interaction range, in diameters
	MaxInteractions int

	// Patchy-disc parameters.
	Patches    int
	PatchRange float64

	Move mc.Config
	Seed int64
}

// Simulation bundles the assembled components. Field and Mover share
// the particle store; Store and Box are exposed read-only for writers
// and reporting.
type Simulation struct {
	Box    *geom.Box
	Cells  *cell.List
	Store  []particle.Particle
	Field  *potential.Field
	Mover  mc.Mover
	Rng    *rand.Rand
	Config Config

	sweeps int
}

// BoxLengths returns cfg.BoxSize, or a cube sized so the particles sit
// at the configured number density (the demo convention).
func (cfg Config) BoxLengths() []float64 {
	if len(cfg.BoxSize) != 0 {
		return cfg.BoxSize
	}

	var base float64
	if cfg.Dimension == 2 {
		base = math.Pow(float64(cfg.Particles)*math.Pi/(4*cfg.Density), 1.0/2.0)
	} else {
		base = math.Pow(float64(cfg.Particles)*math.Pi/(6*cfg.Density), 1.0/3.0)
	}

	size := make([]float64, cfg.Dimension)
	for i := range size {
		size[i] = base
	}
	return size
}

// NewPair constructs the configured pair potential.
func NewPair(cfg Config, box *geom.Box) (potential.Pair, error) {
	switch cfg.Model {
	case "square_well", "":
		return potential.NewSquareWell(box, cfg.Epsilon, cfg.Range), nil
	case "lennard_jones":
		return potential.NewLennardJones(box, cfg.Epsilon, cfg.Range), nil
	case "patchy_disc":
		if box.Dimension() != 2 {
			return nil, fmt.Errorf("%w: patchy_disc is two-dimensional", ErrDimension)
		}
		return potential.NewPatchyDisc(box, cfg.Epsilon, cfg.Patches, cfg.PatchRange), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, cfg.Model)
	}
}

// Build assembles and initialises a simulation: box, cell list, random
// non-overlapping placement, potential field and move engine. All
// configuration errors surface here, before any move attempt.
func Build(cfg Config) (*Simulation, error) {
	box, err := geom.NewBox(cfg.BoxLengths())
	if err != nil {
		return nil, err
	}

	pair, err := NewPair(cfg, box)
	if err != nil {
		return nil, err
	}

	cells, err := cell.New(cfg.Dimension, box.Size, pair.Cutoff())
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	store := particle.NewStore(cfg.Particles, cfg.Dimension)
	if err := RandomPlacement(store, cells, box, rng); err != nil {
		return nil, err
	}

	field := potential.NewField(box, cells, store, pair, cfg.MaxInteractions)
	field.RefreshCounts()

	var mover mc.Mover
	switch cfg.Mover {
	case "vmmc", "":
		mover, err = mc.NewVMMC(field, rng, cfg.Move)
	case "single":
		mover, err = mc.NewSingle(field, rng, cfg.Move)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownMover, cfg.Mover)
	}
	if err != nil {
		return nil, err
	}

	return &Simulation{
		Box:    box,
		Cells:  cells,
		Store:  store,
		Field:  field,
		Mover:  mover,
		Rng:    rng,
		Config: cfg,
	}, nil
}

// Sweeps is the number of completed sweeps (one attempted move per
// particle each).
func (s *Simulation) Sweeps() int { return s.sweeps }

// BumpSweep records one sweep driven outside Run, e.g. by the live
// view's event loop.
func (s *Simulation) BumpSweep() { s.sweeps++ }

// Run advances the simulation by nSweeps sweeps, invoking onSample
// after every sampleEvery sweeps (and after the final one). The context
// is checked only between sweeps: a move attempt is never interrupted.
func (s *Simulation) Run(ctx context.Context, nSweeps, sampleEvery int, onSample func(sweep int) error) error {
	if sampleEvery <= 0 {
		sampleEvery = 1
	}

	for i := 0; i < nSweeps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		s.Mover.Step(s.Config.Particles)
		s.sweeps++

		if onSample != nil && (s.sweeps%sampleEvery == 0 || i == nSweeps-1) {
			if err := onSample(s.sweeps); err != nil {
				return err
			}
		}
	}

	return nil
}

// AcceptanceRate is accepted over attempted moves, zero before any
// attempt.
func (s *Simulation) AcceptanceRate() float64 {
	if s.Mover.Attempts() == 0 {
		return 0
	}
	return float64(s.Mover.Accepts()) / float64(s.Mover.Attempts())
}
