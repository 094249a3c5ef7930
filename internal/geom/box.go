package geom

import "fmt"

// Box is a periodic, cuboidal simulation box. Lengths are measured in
// units of the particle diameter.
type Box struct {
	Size []float64

	posMinImage []float64
	negMinImage []float64
}

// NewBox validates the box dimensions and precomputes the minimum-image
// half lengths.
func NewBox(size []float64) (*Box, error) {
	if len(size) != 2 && len(size) != 3 {
		return nil, fmt.Errorf("box: dimension must be 2 or 3, got %d", len(size))
	}

	b := &Box{
		Size:        make([]float64, len(size)),
		posMinImage: make([]float64, len(size)),
		negMinImage: make([]float64, len(size)),
	}

	for i, x := range size {
		if x <= 0 {
			return nil, fmt.Errorf("box: length along axis %d must be positive, got %f", i, x)
		}
		b.Size[i] = x
		b.posMinImage[i] = 0.5 * x
		b.negMinImage[i] = -0.5 * x
	}

	return b, nil
}

func (b *Box) Dimension() int { return len(b.Size) }

// PeriodicWrap folds a coordinate vector back into the box. Coordinates
// that have drifted more than one box length are folded repeatedly, so
// an arbitrarily large trial displacement lands on the same image as
// the equivalent displacement modulo the box length.
func (b *Box) PeriodicWrap(v []float64) {
	for i := range v {
		for v[i] < 0 {
			v[i] += b.Size[i]
		}
		for v[i] >= b.Size[i] {
			v[i] -= b.Size[i]
		}
	}
}

// MinimumImage folds a separation vector onto the nearest periodic
// image, component by component.
func (b *Box) MinimumImage(v []float64) {
	for i := range v {
		if v[i] < b.negMinImage[i] {
			v[i] += b.Size[i]
		} else if v[i] >= b.posMinImage[i] {
			v[i] -= b.Size[i]
		}
	}
}

// Separation computes the minimum-image separation from rj to ri into
// sep. The three slices must share the box dimension.
func (b *Box) Separation(ri, rj, sep []float64) {
	for i := range sep {
		sep[i] = ri[i] - rj[i]
	}
	b.MinimumImage(sep)
}
