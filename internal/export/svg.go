// Package export renders run artefacts to SVG: the particle
// configuration as discs in the box, and sampled series as polylines.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/clustermc/internal/geom"
	"github.com/san-kum/clustermc/internal/particle"
)

// ConfigurationSVG draws the xy projection of a configuration: the box
// as a frame, particles as discs at the hard-core radius. Scale is
// pixels per diameter.
func ConfigurationSVG(store []particle.Particle, box *geom.Box, scale float64) string {
	if scale <= 0 {
		scale = 10
	}

	width := box.Size[0] * scale
	height := box.Size[1] * scale

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<rect x="0.5" y="0.5" width="%.1f" height="%.1f" fill="none" stroke="#444466"/>
<g fill="#00ccff" fill-opacity="0.8">
`, width, height, width, height, width-1, height-1))

	radius := 0.5 * scale
	for i := range store {
		p := store[i].Position
		sb.WriteString(fmt.Sprintf("<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
			p[0]*scale, p[1]*scale, radius))
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SeriesSVG draws a sampled observable as a polyline, autoscaled with
// 10% padding on each side.
func SeriesSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	minY, maxY := values[0], values[0]
	for _, v := range values {
		if v < minY {
			minY = v
		}
		if v > maxY {
			maxY = v
		}
	}

	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	stepX := float64(width) / float64(len(values)-1)
	for i, v := range values {
		x := float64(i) * stepX
		y := float64(height) - (v-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
