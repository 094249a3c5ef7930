package config

// Presets are ready-made run configurations grouped by model. Each maps
// to a regime with known behaviour, handy as starting points and as
// smoke tests.
var Presets = map[string]map[string]*Config{
	"square_well": {
		"dilute": {
			Model: "square_well", Mover: "vmmc", Dimension: 3,
			Particles: 1000, Density: 0.05, Epsilon: 2.0, Range: 1.5,
			MaxInteractions: 36,
			Move:            MoveConfig{MaxTranslation: 0.15, MaxRotation: 0.3, ProbTranslate: 0.5},
			Sweeps:          1000, SampleInterval: 10,
		},
		"gel": {
			Model: "square_well", Mover: "vmmc", Dimension: 3,
			Particles: 1000, Density: 0.2, Epsilon: 4.0, Range: 1.25,
			MaxInteractions: 36,
			Move:            MoveConfig{MaxTranslation: 0.1, MaxRotation: 0.2, ProbTranslate: 0.5},
			Sweeps:          5000, SampleInterval: 50,
		},
		"planar": {
			Model: "square_well", Mover: "vmmc", Dimension: 2,
			Particles: 400, Density: 0.1, Epsilon: 2.5, Range: 1.4,
			MaxInteractions: 18,
			Move:            MoveConfig{MaxTranslation: 0.15, MaxRotation: 0.3, ProbTranslate: 0.5},
			Sweeps:          2000, SampleInterval: 20,
		},
	},
	"lennard_jones": {
		"vapour": {
			Model: "lennard_jones", Mover: "vmmc", Dimension: 3,
			Particles: 500, Density: 0.02, Epsilon: 1.0, Range: 2.5,
			MaxInteractions: 60,
			Move:            MoveConfig{MaxTranslation: 0.2, MaxRotation: 0.3, ProbTranslate: 0.5},
			Sweeps:          2000, SampleInterval: 20,
		},
		"droplet": {
			Model: "lennard_jones", Mover: "vmmc", Dimension: 3,
			Particles: 500, Density: 0.1, Epsilon: 1.5, Range: 2.5,
			MaxInteractions: 60,
			Move:            MoveConfig{MaxTranslation: 0.1, MaxRotation: 0.2, ProbTranslate: 0.5},
			Sweeps:          5000, SampleInterval: 50,
		},
	},
	"patchy_disc": {
		"trivalent": {
			Model: "patchy_disc", Mover: "vmmc", Dimension: 2,
			Particles: 400, Density: 0.1, Epsilon: 6.0, Range: 1.1,
			MaxInteractions: 3, Patches: 3, PatchRange: 0.1,
			Move:   MoveConfig{MaxTranslation: 0.1, MaxRotation: 0.3, ProbTranslate: 0.5},
			Sweeps: 10000, SampleInterval: 100,
		},
		"chains": {
			Model: "patchy_disc", Mover: "vmmc", Dimension: 2,
			Particles: 400, Density: 0.05, Epsilon: 8.0, Range: 1.1,
			MaxInteractions: 2, Patches: 2, PatchRange: 0.1,
			Move:   MoveConfig{MaxTranslation: 0.1, MaxRotation: 0.3, ProbTranslate: 0.5},
			Sweeps: 10000, SampleInterval: 100,
		},
	},
}

func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	return names
}
