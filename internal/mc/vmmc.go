package mc

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/clustermc/internal/geom"
	"github.com/san-kum/clustermc/internal/potential"
)

// VMMC executes virtual-move Monte Carlo cluster moves: a seed particle
// is given a trial rigid-body transform, neighbours are recruited into
// the moving cluster with pairwise link probabilities that compensate
// the move's bias, and the whole cluster is accepted or rejected at
// once. See Whitelam & Geissler, J. Chem. Phys. 127, 154101 (2007).
type VMMC struct {
	field *potential.Field
	box   *geom.Box
	rng   *rand.Rand
	cfg   Config

	dim         int
	n           int
	repulsive   bool
	anisotropic bool
	pairBudget  int

	// Trial move parameters, valid for one attempt.
	seed       int
	isRotation bool
	stepSize   float64
	trial      []float64

	// Per-particle virtual state. Only entries named in moveList or
	// frustrated are meaningful; all flags are cleared between
	// attempts in O(cluster size).
	moving       []bool
	isFrustrated []bool
	posFrust     []int
	post         [][]float64
	postOrient   [][]float64
	clusterPos   [][]float64 // pre-move position, unwrapped relative to the seed image

	moveList   []int
	frustrated []int
	pairSeen   map[int64]struct{}

	// Scratch.
	sep       []float64
	delta     []float64
	revPos    []float64
	revOrient []float64

	// Statistics.
	attempts            uint64
	accepts             uint64
	rotations           uint64
	clusterTranslations []uint64
	clusterRotations    []uint64
	energy              float64
}

// NewVMMC validates the configuration and prepares the engine. The
// field must already be initialised (particles placed, cell list
// populated, counts refreshed).
func NewVMMC(field *potential.Field, rng *rand.Rand, cfg Config) (*VMMC, error) {
	if cfg.MaxTranslation <= 0 {
		return nil, fmt.Errorf("vmmc: max translation must be positive, got %f", cfg.MaxTranslation)
	}
	if cfg.ProbTranslate < 0 || cfg.ProbTranslate > 1 {
		return nil, fmt.Errorf("vmmc: translation probability must be in [0,1], got %f", cfg.ProbTranslate)
	}
	if cfg.ProbTranslate < 1 && cfg.MaxRotation <= 0 {
		return nil, fmt.Errorf("vmmc: max rotation must be positive when rotations are enabled")
	}

	n := field.N()
	dim := field.Box().Dimension()
	cfg = cfg.withDefaults(n)

	v := &VMMC{
		field:       field,
		box:         field.Box(),
		rng:         rng,
		cfg:         cfg,
		dim:         dim,
		n:           n,
		repulsive:   field.Pair().Repulsive(),
		anisotropic: field.Pair().Anisotropic(),
		pairBudget:  n * field.MaxInteractions(),

		trial:        make([]float64, dim),
		moving:       make([]bool, n),
		isFrustrated: make([]bool, n),
		posFrust:     make([]int, n),
		post:         make([][]float64, n),
		postOrient:   make([][]float64, n),
		clusterPos:   make([][]float64, n),
		moveList:     make([]int, 0, n),
		frustrated:   make([]int, 0, n),
		pairSeen:     make(map[int64]struct{}),

		sep:       make([]float64, dim),
		delta:     make([]float64, dim),
		revPos:    make([]float64, dim),
		revOrient: make([]float64, dim),

		clusterTranslations: make([]uint64, n),
		clusterRotations:    make([]uint64, n),
	}

	for i := 0; i < n; i++ {
		v.post[i] = make([]float64, dim)
		v.postOrient[i] = make([]float64, dim)
		v.clusterPos[i] = make([]float64, dim)
	}

	v.energy = field.TotalEnergy()
	if math.IsInf(v.energy, 1) {
		return nil, fmt.Errorf("vmmc: initial configuration contains hard-core overlaps")
	}

	return v, nil
}

// Step executes n VMMC trial moves.
func (v *VMMC) Step(n int) {
	for i := 0; i < n; i++ {
		v.step()
	}
}

// Sweep executes one attempted move per particle.
func (v *VMMC) Sweep() { v.Step(v.n) }

func (v *VMMC) Attempts() uint64  { return v.attempts }
func (v *VMMC) Accepts() uint64   { return v.accepts }
func (v *VMMC) Rotations() uint64 { return v.rotations }
func (v *VMMC) Energy() float64   { return v.energy }

// ClusterTranslations returns accepted translation counts indexed by
// cluster size minus one. The slice is shared; do not modify.
func (v *VMMC) ClusterTranslations() []uint64 { return v.clusterTranslations }

// ClusterRotations is the rotation counterpart of ClusterTranslations.
func (v *VMMC) ClusterRotations() []uint64 { return v.clusterRotations }

func (v *VMMC) ResetStats() {
	v.attempts = 0
	v.accepts = 0
	v.rotations = 0
	for i := range v.clusterTranslations {
		v.clusterTranslations[i] = 0
		v.clusterRotations[i] = 0
	}
}

// step performs one trial move: Seeded -> Growing -> resolution.
func (v *VMMC) step() {
	v.attempts++

	v.proposeMove()
	v.addToCluster(v.seed, nil)

	grown := v.grow()

	// A frustrated link that never got recruited breaks the
	// pseudo-detailed-balance bookkeeping, so the move must fail.
	if grown && len(v.frustrated) == 0 {
		if dE, ok := v.acceptMove(); ok {
			v.commit(dE)
		}
	}

	v.resetAttempt()
}

// proposeMove draws the seed, the move type and the rigid-body
// transform for this attempt.
func (v *VMMC) proposeMove() {
	v.seed = v.rng.Intn(v.n)
	geom.RandomUnitVector(v.rng, v.trial)

	if v.rng.Float64() < v.cfg.ProbTranslate {
		v.isRotation = false
		v.stepSize = drawStepSize(v.rng, v.cfg.MaxTranslation, v.dim)
	} else {
		v.isRotation = true
		v.stepSize = v.cfg.MaxRotation * (2*v.rng.Float64() - 1)
	}
}

// addToCluster marks a particle as moving and computes its virtual
// post-move state. linker is the recruiting cluster member, nil for the
// seed.
func (v *VMMC) addToCluster(i int, linker *int) {
	v.moving[i] = true

	if linker == nil {
		copy(v.clusterPos[i], v.field.Position(i))
	} else {
		// Unwrapped position relative to the seed image, built by
		// chaining minimum-image separations along recruitment links.
		// Keeps the cluster geometry meaningful across the periodic
		// boundary.
		l := *linker
		v.box.Separation(v.field.Position(i), v.field.Position(l), v.sep)
		for k := 0; k < v.dim; k++ {
			v.clusterPos[i][k] = v.clusterPos[l][k] + v.sep[k]
		}
	}

	v.computePostMove(i, 1, v.post[i], v.postOrient[i])

	if v.isFrustrated[i] {
		v.unfrustrate(i)
	}

	v.moveList = append(v.moveList, i)
}

// computePostMove applies the trial transform to particle i in the
// given direction (+1 forward, -1 reverse), writing the virtual
// position and orientation.
func (v *VMMC) computePostMove(i, direction int, outPos, outOrient []float64) {
	dir := float64(direction)

	if !v.isRotation {
		pre := v.field.Position(i)
		for k := 0; k < v.dim; k++ {
			outPos[k] = pre[k] + dir*v.stepSize*v.trial[k]
		}
		v.box.PeriodicWrap(outPos)
		copy(outOrient, v.field.Orientation(i))
		return
	}

	// Rotations are rigid-body about the seed particle.
	seedPos := v.clusterPos[v.seed]
	for k := 0; k < v.dim; k++ {
		v.sep[k] = v.clusterPos[i][k] - seedPos[k]
	}
	if v.dim == 3 {
		geom.Rotate3D(v.sep, v.trial, v.delta, dir*v.stepSize)
	} else {
		geom.Rotate2D(v.sep, v.delta, dir*v.stepSize)
	}
	for k := 0; k < v.dim; k++ {
		outPos[k] = seedPos[k] + v.sep[k] + v.delta[k]
	}
	v.box.PeriodicWrap(outPos)

	u := v.field.Orientation(i)
	if v.anisotropic {
		if v.dim == 3 {
			geom.Rotate3D(u, v.trial, v.delta, dir*v.stepSize)
		} else {
			geom.Rotate2D(u, v.delta, dir*v.stepSize)
		}
		for k := 0; k < v.dim; k++ {
			outOrient[k] = u[k] + v.delta[k]
		}
	} else {
		copy(outOrient, u)
	}
}

// grow expands the cluster frontier until no particle is newly
// recruited. Returns false on early termination (overlap, cluster-size
// cap or pair budget), which rejects the move.
func (v *VMMC) grow() bool {
	for fi := 0; fi < len(v.moveList); fi++ {
		i := v.moveList[fi]
		ri := v.field.Position(i)
		ui := v.field.Orientation(i)

		for _, j := range v.field.Interactions(i, ri, ui) {
			if v.moving[j] {
				continue
			}
			if !v.markPair(i, j) {
				continue
			}
			if len(v.pairSeen) > v.pairBudget {
				return false
			}

			ePre := v.field.PairEnergy(ri, ui, j)
			eFwd := v.field.PairEnergy(v.post[i], v.postOrient[i], j)

			// Hard-core overlap under the virtual move: the whole
			// cluster move cannot be validly evaluated.
			if math.IsInf(eFwd, 1) {
				return false
			}

			// Forward link probability: pairs whose energy would rise
			// under the move are recruited with exactly compensating
			// probability.
			pFwd := 1 - math.Exp(ePre-eFwd)
			if pFwd <= 0 || v.rng.Float64() >= pFwd {
				continue
			}

			// Reverse map applied to the recruiting particle decides
			// whether the link is full or frustrated.
			v.computePostMove(i, -1, v.revPos, v.revOrient)
			eRev := v.field.PairEnergy(v.revPos, v.revOrient, j)
			pRev := 1 - math.Exp(ePre-eRev)

			if v.rng.Float64()*pFwd < pRev {
				v.addToCluster(j, &i)
				if len(v.moveList) > v.cfg.MaxClusterSize {
					return false
				}
			} else {
				v.frustrate(j)
			}
		}
	}
	return true
}

func (v *VMMC) markPair(i, j int) bool {
	a, b := i, j
	if a > b {
		a, b = b, a
	}
	key := int64(a)*int64(v.n) + int64(b)
	if _, ok := v.pairSeen[key]; ok {
		return false
	}
	v.pairSeen[key] = struct{}{}
	return true
}

func (v *VMMC) pairTested(i, j int) bool {
	a, b := i, j
	if a > b {
		a, b = b, a
	}
	_, ok := v.pairSeen[int64(a)*int64(v.n)+int64(b)]
	return ok
}

func (v *VMMC) frustrate(j int) {
	if v.isFrustrated[j] {
		return
	}
	v.isFrustrated[j] = true
	v.posFrust[j] = len(v.frustrated)
	v.frustrated = append(v.frustrated, j)
}

func (v *VMMC) unfrustrate(j int) {
	last := v.frustrated[len(v.frustrated)-1]
	v.frustrated[v.posFrust[j]] = last
	v.posFrust[last] = v.posFrust[j]
	v.frustrated = v.frustrated[:len(v.frustrated)-1]
	v.isFrustrated[j] = false
}

// acceptMove resolves a fully grown cluster: Stokes-drag damping, the
// post-move overlap scan and (for repulsive potentials) a Metropolis
// factor over newly formed pairs. Returns the boundary energy change
// and whether the move is accepted.
func (v *VMMC) acceptMove() (float64, bool) {
	scale := v.hydrodynamicScale()
	if scale < 1 && v.rng.Float64() >= scale {
		return 0, false
	}

	// Energy of cluster-boundary pairs before the move.
	ePre := 0.0
	for _, i := range v.moveList {
		e, _, ok := v.boundaryEnergy(i, v.field.Position(i), v.field.Orientation(i))
		if !ok {
			return 0, false
		}
		ePre += e
	}

	// And after. Pairs never tested during growth were not interacting
	// before the move; any energy they carry now is newly created.
	ePost := 0.0
	eNew := 0.0
	for _, i := range v.moveList {
		e, en, ok := v.boundaryEnergy(i, v.post[i], v.postOrient[i])
		if !ok {
			return 0, false
		}
		ePost += e
		eNew += en
	}

	// Links already encode the bias of pre-existing interactions. For
	// purely attractive potentials new bonds only lower the energy;
	// finite repulsion needs an explicit Boltzmann factor.
	if v.repulsive && eNew > 0 {
		if v.rng.Float64() >= math.Exp(-eNew) {
			return 0, false
		}
	}

	return ePost - ePre, true
}

// boundaryEnergy sums pair energies between moved particle i (probed at
// pos/orient) and every non-moving neighbour, applying the interaction
// cap. The second return is the contribution of pairs never tested
// during growth. ok is false on hard-core overlap.
func (v *VMMC) boundaryEnergy(i int, pos, orient []float64) (float64, float64, bool) {
	cells := v.field.Cells()
	energy := 0.0
	newEnergy := 0.0
	count := 0

	home := cells.Index(pos)
	for _, c := range cells.NeighbourCells(home) {
		for _, j := range cells.Members(c) {
			if j == i || v.moving[j] {
				continue
			}
			e := v.field.PairEnergy(pos, orient, j)
			if math.IsInf(e, 1) || e > 1e6 {
				return 0, 0, false
			}
			if e == 0 {
				continue
			}
			if count == v.field.MaxInteractions() {
				continue
			}
			count++
			energy += e
			if !v.pairTested(i, j) {
				newEnergy += e
			}
		}
	}

	return energy, newEnergy, true
}

// hydrodynamicScale approximates Stokes drag: larger clusters diffuse
// more slowly, so their moves are damped by the ratio of the reference
// radius to the cluster's effective hydrodynamic radius (cubed for
// rotations).
func (v *VMMC) hydrodynamicScale() float64 {
	if len(v.moveList) == 1 {
		return 1
	}

	com := make([]float64, v.dim)
	for _, i := range v.moveList {
		for k := 0; k < v.dim; k++ {
			com[k] += v.clusterPos[i][k]
		}
	}
	for k := 0; k < v.dim; k++ {
		com[k] /= float64(len(v.moveList))
	}

	meanSq := 0.0
	for _, i := range v.moveList {
		for k := 0; k < v.dim; k++ {
			d := v.clusterPos[i][k] - com[k]
			meanSq += d * d
		}
	}
	meanSq /= float64(len(v.moveList))

	scale := v.cfg.ReferenceRadius / (v.cfg.ReferenceRadius + math.Sqrt(meanSq))
	if v.isRotation {
		scale = scale * scale * scale
	}
	return scale
}

// commit applies the accepted move atomically and updates statistics.
func (v *VMMC) commit(dE float64) {
	positions := make([][]float64, len(v.moveList))
	var orientations [][]float64
	if v.anisotropic {
		orientations = make([][]float64, len(v.moveList))
	}
	for k, i := range v.moveList {
		positions[k] = v.post[i]
		if v.anisotropic {
			orientations[k] = v.postOrient[i]
		}
	}

	if err := v.field.Commit(v.moveList, positions, orientations); err != nil {
		// Cell overflow here means the capacity estimate was violated
		// mid-run; the configuration is corrupt and continuing would
		// silently break sampling.
		panic(err)
	}

	v.energy += dE
	v.accepts++
	size := len(v.moveList)
	if v.isRotation {
		v.rotations++
		v.clusterRotations[size-1]++
	} else {
		v.clusterTranslations[size-1]++
	}
}

// resetAttempt clears all per-attempt state in O(cluster size).
func (v *VMMC) resetAttempt() {
	for _, i := range v.moveList {
		v.moving[i] = false
	}
	for _, j := range v.frustrated {
		v.isFrustrated[j] = false
	}
	v.moveList = v.moveList[:0]
	v.frustrated = v.frustrated[:0]
	clear(v.pairSeen)
}
