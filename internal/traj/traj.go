// Package traj writes particle trajectories in the minimal XYZ flavour
// that VMD reads, one appended frame per sample, plus a ready-made VMD
// visualisation script.
package traj

import (
	"bufio"
	"fmt"
	"os"

	"github.com/san-kum/clustermc/internal/particle"
)

// Writer appends frames to a single trajectory file. Frames share the
// file so VMD can scrub through the run.
type Writer struct {
	f   *os.File
	w   *bufio.Writer
	dim int
}

func NewWriter(path string, dimension int) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Writer{f: f, w: bufio.NewWriter(f), dim: dimension}, nil
}

// WriteFrame appends one frame: particle count, a blank comment line,
// then one record per particle. Two-dimensional runs pad z with zero so
// VMD accepts the file. All particles share atom type 0.
func (t *Writer) WriteFrame(store []particle.Particle) error {
	if _, err := fmt.Fprintf(t.w, "%d\n\n", len(store)); err != nil {
		return err
	}

	for i := range store {
		p := store[i].Position
		z := 0.0
		if t.dim == 3 {
			z = p[2]
		}
		if _, err := fmt.Fprintf(t.w, "0 %5.4f %5.4f %5.4f\n", p[0], p[1], z); err != nil {
			return err
		}
	}

	return t.w.Flush()
}

func (t *Writer) Close() error {
	if err := t.w.Flush(); err != nil {
		t.f.Close()
		return err
	}
	return t.f.Close()
}

// WriteVMDScript writes a Tcl script that loads the trajectory with
// sensible defaults: orthographic projection, particles drawn as
// spheres at the hard-core radius.
func WriteVMDScript(path string) error {
	const script = `light 0 on
light 1 on
light 2 off
light 3 off
axes location off
stage location off
display projection orthographic
mol modstyle 0 0 VDW 1 30
set sel [atomselect top "name X"]
atomselect0 set radius 0.5
display depthcue off
color Display Background white
`
	return os.WriteFile(path, []byte(script), 0644)
}
