package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/clustermc/internal/geom"
	"github.com/san-kum/clustermc/internal/particle"
)

func TestConfigurationSVG(t *testing.T) {
	box, err := geom.NewBox([]float64{10, 10})
	require.NoError(t, err)

	store := particle.NewStore(3, 2)
	store[0].Position = []float64{1, 1}
	store[1].Position = []float64{5, 5}
	store[2].Position = []float64{9, 9}

	svg := ConfigurationSVG(store, box, 10)

	assert.True(t, strings.HasPrefix(svg, `<?xml version="1.0"`))
	assert.Contains(t, svg, `width="100" height="100"`)
	assert.Equal(t, 3, strings.Count(svg, "<circle"))
	// Discs are drawn at the hard-core radius.
	assert.Contains(t, svg, `cx="50.0" cy="50.0" r="5.0"`)
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
}

func TestSeriesSVG(t *testing.T) {
	svg := SeriesSVG([]float64{0, 1, 0.5, 2}, 200, 100, "#00ccff")

	assert.Contains(t, svg, `width="200" height="100"`)
	assert.Contains(t, svg, `stroke="#00ccff"`)
	// One moveto plus one lineto per remaining sample.
	assert.Equal(t, 3, strings.Count(svg, " L"))
}

func TestSeriesSVGDegenerateInputs(t *testing.T) {
	assert.Empty(t, SeriesSVG(nil, 200, 100, "#fff"))
	assert.Empty(t, SeriesSVG([]float64{1}, 200, 100, "#fff"))

	// A flat series must not divide by zero.
	svg := SeriesSVG([]float64{2, 2, 2}, 200, 100, "#fff")
	assert.Contains(t, svg, "<path")
	assert.NotContains(t, svg, "NaN")
}
