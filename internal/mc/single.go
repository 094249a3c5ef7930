package mc

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/clustermc/internal/geom"
	"github.com/san-kum/clustermc/internal/potential"
)

// Single is the classic single-particle Metropolis mover: one particle
// is displaced or rotated and the move is accepted with the Boltzmann
// factor of the energy change. It serves as the baseline the cluster
// engine is measured against, and mixes poorly in dense,
// strongly-interacting systems.
type Single struct {
	field *potential.Field
	box   *geom.Box
	rng   *rand.Rand
	cfg   Config

	dim         int
	n           int
	anisotropic bool

	trial      []float64
	postPos    []float64
	postOrient []float64
	delta      []float64

	attempts  uint64
	accepts   uint64
	rotations uint64
	energy    float64
}

func NewSingle(field *potential.Field, rng *rand.Rand, cfg Config) (*Single, error) {
	if cfg.MaxTranslation <= 0 {
		return nil, fmt.Errorf("mc: max translation must be positive, got %f", cfg.MaxTranslation)
	}

	dim := field.Box().Dimension()
	cfg = cfg.withDefaults(field.N())

	// Rotating an isotropic particle in place changes nothing; spend
	// every attempt on translations instead.
	anisotropic := field.Pair().Anisotropic()
	if !anisotropic {
		cfg.ProbTranslate = 1
	}

	s := &Single{
		field:       field,
		box:         field.Box(),
		rng:         rng,
		cfg:         cfg,
		dim:         dim,
		n:           field.N(),
		anisotropic: anisotropic,
		trial:       make([]float64, dim),
		postPos:     make([]float64, dim),
		postOrient:  make([]float64, dim),
		delta:       make([]float64, dim),
	}

	s.energy = field.TotalEnergy()
	if math.IsInf(s.energy, 1) {
		return nil, fmt.Errorf("mc: initial configuration contains hard-core overlaps")
	}

	return s, nil
}

func (s *Single) Step(n int) {
	for i := 0; i < n; i++ {
		s.step()
	}
}

func (s *Single) Attempts() uint64  { return s.attempts }
func (s *Single) Accepts() uint64   { return s.accepts }
func (s *Single) Rotations() uint64 { return s.rotations }
func (s *Single) Energy() float64   { return s.energy }

func (s *Single) ResetStats() {
	s.attempts = 0
	s.accepts = 0
	s.rotations = 0
}

func (s *Single) step() {
	s.attempts++

	seed := s.rng.Intn(s.n)
	geom.RandomUnitVector(s.rng, s.trial)

	isRotation := false
	var stepSize float64
	if s.rng.Float64() < s.cfg.ProbTranslate {
		stepSize = drawStepSize(s.rng, s.cfg.MaxTranslation, s.dim)
	} else {
		isRotation = true
		stepSize = s.cfg.MaxRotation * (2*s.rng.Float64() - 1)
	}

	pre := s.field.Position(seed)
	preOrient := s.field.Orientation(seed)

	if isRotation {
		copy(s.postPos, pre)
		if s.dim == 3 {
			geom.Rotate3D(preOrient, s.trial, s.delta, stepSize)
		} else {
			geom.Rotate2D(preOrient, s.delta, stepSize)
		}
		for k := 0; k < s.dim; k++ {
			s.postOrient[k] = preOrient[k] + s.delta[k]
		}
	} else {
		for k := 0; k < s.dim; k++ {
			s.postPos[k] = pre[k] + stepSize*s.trial[k]
		}
		s.box.PeriodicWrap(s.postPos)
		copy(s.postOrient, preOrient)
	}

	eInitial := s.field.EnergyOf(seed, pre, preOrient)
	eFinal := s.field.EnergyOf(seed, s.postPos, s.postOrient)
	dE := eFinal - eInitial

	if !s.metropolis(dE) {
		return
	}

	var orientations [][]float64
	if s.anisotropic {
		orientations = [][]float64{s.postOrient}
	}
	if err := s.field.Commit([]int{seed}, [][]float64{s.postPos}, orientations); err != nil {
		panic(err)
	}

	s.energy += dE
	s.accepts++
	if isRotation {
		s.rotations++
	}
}

func (s *Single) metropolis(dE float64) bool {
	if dE == 0 {
		return true
	}
	if math.IsInf(dE, 1) || math.IsNaN(dE) {
		return false
	}
	if dE < 0 {
		return true
	}
	return s.rng.Float64() < math.Exp(-dE)
}
