// Package storage persists completed runs to disk: one directory per
// run holding a metadata.json and the sampled energy series as CSV.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Model     string             `json:"model"`
	Mover     string             `json:"mover"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Dimension int                `json:"dimension"`
	Particles int                `json:"particles"`
	Density   float64            `json:"density"`
	Epsilon   float64            `json:"epsilon"`
	Range     float64            `json:"range"`
	Sweeps    int                `json:"sweeps"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Series is the per-sample record of one run: energy per particle and
// running acceptance rate, indexed by sweep.
type Series struct {
	Sweeps     []int
	Energy     []float64
	Acceptance []float64
}

func (sr *Series) Append(sweep int, energy, acceptance float64) {
	sr.Sweeps = append(sr.Sweeps, sweep)
	sr.Energy = append(sr.Energy, energy)
	sr.Acceptance = append(sr.Acceptance, acceptance)
}

func (sr *Series) Len() int { return len(sr.Sweeps) }

// Save writes a run directory named <model>_<unix time> and returns the
// run ID.
func (s *Store) Save(meta RunMetadata, series *Series) (string, error) {
	runID := fmt.Sprintf("%s_%d", meta.Model, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvPath := filepath.Join(runDir, "energy.csv")
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write([]string{"sweep", "energy", "acceptance"}); err != nil {
		return "", err
	}

	for i := range series.Sweeps {
		row := []string{
			strconv.Itoa(series.Sweeps[i]),
			strconv.FormatFloat(series.Energy[i], 'f', 6, 64),
			strconv.FormatFloat(series.Acceptance[i], 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

// SaveRDF writes the radial distribution function of the final
// configuration as rdf.csv in the run directory.
func (s *Store) SaveRDF(runID string, r, g []float64) error {
	f, err := os.Create(filepath.Join(s.baseDir, runID, "rdf.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"r", "g"}); err != nil {
		return err
	}
	for i := range r {
		row := []string{
			strconv.FormatFloat(r[i], 'f', 6, 64),
			strconv.FormatFloat(g[i], 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

// LoadRDF reads rdf.csv back; runs recorded before the RDF existed
// simply return a file error.
func (s *Store) LoadRDF(runID string) (r, g []float64, err error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "rdf.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) < 2 {
			continue
		}
		rv, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		gv, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		r = append(r, rv)
		g = append(g, gv)
	}

	return r, g, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadSeries(runID string) (*Series, error) {
	csvPath := filepath.Join(s.baseDir, runID, "energy.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	series := &Series{}
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) < 3 {
			continue
		}

		sweep, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}
		energy, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		acceptance, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			continue
		}

		series.Append(sweep, energy, acceptance)
	}

	return series, nil
}
