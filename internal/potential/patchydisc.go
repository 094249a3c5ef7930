package potential

import (
	"math"

	"github.com/san-kum/clustermc/internal/geom"
)

// PatchyDisc is a two-dimensional anisotropic member of the square-well
// family: discs carry evenly spaced surface patches, and only
// sufficiently close patch pairs contribute a well depth. Orientation
// therefore matters, and rotations can change the energy.
type PatchyDisc struct {
	box        *geom.Box
	epsilon    float64
	nPatches   int
	patchRange float64
	rangeSq    float64

	cosTheta []float64
	sinTheta []float64

	sep []float64
}

func NewPatchyDisc(box *geom.Box, epsilon float64, nPatches int, patchRange float64) *PatchyDisc {
	p := &PatchyDisc{
		box:        box,
		epsilon:    epsilon,
		nPatches:   nPatches,
		patchRange: patchRange,
		rangeSq:    patchRange * patchRange,
		cosTheta:   make([]float64, nPatches),
		sinTheta:   make([]float64, nPatches),
		sep:        make([]float64, 2),
	}

	separation := 2 * math.Pi / float64(nPatches)
	for x := 0; x < nPatches; x++ {
		p.cosTheta[x] = math.Cos(float64(x) * separation)
		p.sinTheta[x] = math.Sin(float64(x) * separation)
	}

	return p
}

// patch computes the lab-frame position of patch k on a disc at pos
// with orientation u. Patches sit on the disc surface at radius 0.5.
func (p *PatchyDisc) patch(pos, u []float64, k int, out []float64) {
	out[0] = pos[0] + 0.5*(u[0]*p.cosTheta[k]-u[1]*p.sinTheta[k])
	out[1] = pos[1] + 0.5*(u[0]*p.sinTheta[k]+u[1]*p.cosTheta[k])
	p.box.PeriodicWrap(out)
}

func (p *PatchyDisc) Energy(ri, ui, rj, uj []float64) float64 {
	p.box.Separation(ri, rj, p.sep)
	normSq := geom.NormSq(p.sep)

	if normSq < 1 {
		return math.Inf(1)
	}

	// Discs further apart than touching surfaces plus the patch range
	// cannot have interacting patches.
	limit := 1 + p.patchRange
	if normSq >= limit*limit {
		return 0
	}

	energy := 0.0
	var c1, c2 [2]float64

	for i := 0; i < p.nPatches; i++ {
		p.patch(ri, ui, i, c1[:])
		for j := 0; j < p.nPatches; j++ {
			p.patch(rj, uj, j, c2[:])
			p.box.Separation(c1[:], c2[:], p.sep)
			if geom.NormSq(p.sep) < p.rangeSq {
				energy -= p.epsilon
			}
		}
	}

	return energy
}

// Interacting is energy based: two discs interact only when at least
// one patch pair is within range, not merely when their centres are.
func (p *PatchyDisc) Interacting(ri, ui, rj, uj []float64) bool {
	return p.Energy(ri, ui, rj, uj) < 0
}

func (p *PatchyDisc) Cutoff() float64   { return 1 + p.patchRange }
func (p *PatchyDisc) Repulsive() bool   { return false }
func (p *PatchyDisc) Anisotropic() bool { return true }
