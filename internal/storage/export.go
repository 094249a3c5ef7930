package storage

import (
	"encoding/json"
	"io"
)

// ExportData is the self-contained JSON form of one run: metadata plus
// the sampled series.
type ExportData struct {
	Meta       RunMetadata `json:"meta"`
	Sweeps     []int       `json:"sweeps"`
	Energy     []float64   `json:"energy"`
	Acceptance []float64   `json:"acceptance"`
}

// ExportJSON writes a full run as indented JSON.
func ExportJSON(w io.Writer, meta *RunMetadata, series *Series) error {
	data := ExportData{
		Meta:       *meta,
		Sweeps:     series.Sweeps,
		Energy:     series.Energy,
		Acceptance: series.Acceptance,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
