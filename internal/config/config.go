package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/clustermc/internal/mc"
	"github.com/san-kum/clustermc/internal/sim"
)

const (
	DefaultDimension       = 3
	DefaultParticles       = 1000
	DefaultDensity         = 0.05
	DefaultEpsilon         = 2.0
	DefaultRange           = 1.5
	DefaultMaxInteractions = 36
	DefaultMaxTranslation  = 0.15
	DefaultMaxRotation     = 0.3
	DefaultProbTranslate   = 0.5
	DefaultSweeps          = 1000
	DefaultSampleInterval  = 10
)

type Config struct {
	Model     string    `yaml:"model"`
	Mover     string    `yaml:"mover"`
	Dimension int       `yaml:"dimension"`
	Particles int       `yaml:"particles"`
	Density   float64   `yaml:"density"`
	BoxSize   []float64 `yaml:"box_size,omitempty"`

	Epsilon         float64 `yaml:"epsilon"`
	Range           float64 `yaml:"range"`
	MaxInteractions int     `yaml:"max_interactions"`
	Patches         int     `yaml:"patches,omitempty"`
	PatchRange      float64 `yaml:"patch_range,omitempty"`

	Move MoveConfig `yaml:"move"`

	Seed           int64 `yaml:"seed"`
	Sweeps         int   `yaml:"sweeps"`
	SampleInterval int   `yaml:"sample_interval"`
	Trajectory     bool  `yaml:"trajectory"`
}

type MoveConfig struct {
	MaxTranslation  float64 `yaml:"max_translation"`
	MaxRotation     float64 `yaml:"max_rotation"`
	ProbTranslate   float64 `yaml:"prob_translate"`
	ReferenceRadius float64 `yaml:"reference_radius,omitempty"`
	MaxClusterSize  int     `yaml:"max_cluster_size,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:           "square_well",
		Mover:           "vmmc",
		Dimension:       DefaultDimension,
		Particles:       DefaultParticles,
		Density:         DefaultDensity,
		Epsilon:         DefaultEpsilon,
		Range:           DefaultRange,
		MaxInteractions: DefaultMaxInteractions,
		Move: MoveConfig{
			MaxTranslation: DefaultMaxTranslation,
			MaxRotation:    DefaultMaxRotation,
			ProbTranslate:  DefaultProbTranslate,
		},
		Sweeps:         DefaultSweeps,
		SampleInterval: DefaultSampleInterval,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SimConfig converts the file representation into the sim package's
// build configuration.
func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dimension:       c.Dimension,
		Particles:       c.Particles,
		Density:         c.Density,
		BoxSize:         c.BoxSize,
		Model:           c.Model,
		Mover:           c.Mover,
		Epsilon:         c.Epsilon,
		Range:           c.Range,
		MaxInteractions: c.MaxInteractions,
		Patches:         c.Patches,
		PatchRange:      c.PatchRange,
		Move: mc.Config{
			MaxTranslation:  c.Move.MaxTranslation,
			MaxRotation:     c.Move.MaxRotation,
			ProbTranslate:   c.Move.ProbTranslate,
			ReferenceRadius: c.Move.ReferenceRadius,
			MaxClusterSize:  c.Move.MaxClusterSize,
		},
		Seed: c.Seed,
	}
}
