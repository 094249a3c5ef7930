package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/clustermc/internal/analysis"
	"github.com/san-kum/clustermc/internal/config"
	"github.com/san-kum/clustermc/internal/experiment"
	"github.com/san-kum/clustermc/internal/export"
	"github.com/san-kum/clustermc/internal/sim"
	"github.com/san-kum/clustermc/internal/storage"
	"github.com/san-kum/clustermc/internal/traj"
	"github.com/san-kum/clustermc/internal/viz"
)

var (
	dataDir string

	mover           string
	dimension       int
	particles       int
	density         float64
	epsilon         float64
	interactionRng  float64
	maxInteractions int
	patches         int
	patchRange      float64

	maxTranslation  float64
	maxRotation     float64
	probTranslate   float64
	referenceRadius float64
	maxClusterSize  int

	seed           int64
	sweeps         int
	sampleInterval int
	trajectory     bool

	configFile string
	preset     string

	burnIn float64

	sweepParam    string
	sweepValues   []float64
	sweepReplicas int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clustermc",
		Short: "cluster-move Monte Carlo particle simulation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".clustermc", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "equilibrium statistics of the energy series",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().Float64Var(&burnIn, "burn-in", 0.2, "fraction of series discarded as equilibration")

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "run simulation with live visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	benchCmd := &cobra.Command{
		Use:   "bench [model]",
		Short: "benchmark movers",
		Args:  cobra.ExactArgs(1),
		RunE:  benchModel,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the energy series as an SVG plot",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "sweep one parameter over an ensemble of replicas",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "epsilon", "parameter to sweep (epsilon, density, range)")
	sweepCmd.Flags().Float64SliceVar(&sweepValues, "values", nil, "parameter values")
	sweepCmd.Flags().IntVar(&sweepReplicas, "replicas", 4, "replicas per point")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportSVGCmd, analyzeCmd, liveCmd, benchCmd, presetsCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&mover, "mover", "vmmc", "move engine (vmmc, single)")
	cmd.Flags().IntVar(&dimension, "dimension", config.DefaultDimension, "dimensionality (2 or 3)")
	cmd.Flags().IntVar(&particles, "particles", config.DefaultParticles, "number of particles")
	cmd.Flags().Float64Var(&density, "density", config.DefaultDensity, "number density")
	cmd.Flags().Float64Var(&epsilon, "epsilon", config.DefaultEpsilon, "interaction strength (kT)")
	cmd.Flags().Float64Var(&interactionRng, "range", config.DefaultRange, "interaction range (diameters)")
	cmd.Flags().IntVar(&maxInteractions, "max-interactions", config.DefaultMaxInteractions, "per-particle interaction cap")
	cmd.Flags().IntVar(&patches, "patches", 3, "number of patches (patchy_disc)")
	cmd.Flags().Float64Var(&patchRange, "patch-range", 0.1, "patch interaction range (patchy_disc)")
	cmd.Flags().Float64Var(&maxTranslation, "max-translation", config.DefaultMaxTranslation, "maximum trial displacement")
	cmd.Flags().Float64Var(&maxRotation, "max-rotation", config.DefaultMaxRotation, "maximum trial rotation (radians)")
	cmd.Flags().Float64Var(&probTranslate, "prob-translate", config.DefaultProbTranslate, "probability of a translation move")
	cmd.Flags().Float64Var(&referenceRadius, "reference-radius", 0, "hydrodynamic reference radius (0 = default)")
	cmd.Flags().IntVar(&maxClusterSize, "max-cluster", 0, "maximum cluster size (0 = unlimited)")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().IntVar(&sweeps, "sweeps", config.DefaultSweeps, "number of sweeps")
	cmd.Flags().IntVar(&sampleInterval, "sample", config.DefaultSampleInterval, "sweeps between samples")
	cmd.Flags().BoolVar(&trajectory, "trajectory", false, "write an xyz trajectory")
}

// buildConfig layers preset, config file and CLI flags, flags winning.
func buildConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		*cfg = *p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		*cfg = *loaded
	}

	cfg.Model = model

	flagOverrides := map[string]func(){
		"mover":            func() { cfg.Mover = mover },
		"dimension":        func() { cfg.Dimension = dimension },
		"particles":        func() { cfg.Particles = particles },
		"density":          func() { cfg.Density = density },
		"epsilon":          func() { cfg.Epsilon = epsilon },
		"range":            func() { cfg.Range = interactionRng },
		"max-interactions": func() { cfg.MaxInteractions = maxInteractions },
		"patches":          func() { cfg.Patches = patches },
		"patch-range":      func() { cfg.PatchRange = patchRange },
		"max-translation":  func() { cfg.Move.MaxTranslation = maxTranslation },
		"max-rotation":     func() { cfg.Move.MaxRotation = maxRotation },
		"prob-translate":   func() { cfg.Move.ProbTranslate = probTranslate },
		"reference-radius": func() { cfg.Move.ReferenceRadius = referenceRadius },
		"max-cluster":      func() { cfg.Move.MaxClusterSize = maxClusterSize },
		"sweeps":           func() { cfg.Sweeps = sweeps },
		"sample":           func() { cfg.SampleInterval = sampleInterval },
		"trajectory":       func() { cfg.Trajectory = trajectory },
	}
	for name, apply := range flagOverrides {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}

	if cfg.Seed == 0 || cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}

	if cfg.Model == "patchy_disc" && cfg.Patches == 0 {
		cfg.Patches = patches
		cfg.PatchRange = patchRange
	}

	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("building %s system: %d particles, density %.4f\n", cfg.Model, cfg.Particles, cfg.Density)

	s, err := sim.Build(cfg.SimConfig())
	if err != nil {
		return err
	}

	var trajWriter *traj.Writer
	trajPath := ""
	if cfg.Trajectory {
		trajPath = filepath.Join(dataDir, "trajectory.xyz")
		trajWriter, err = traj.NewWriter(trajPath, cfg.Dimension)
		if err != nil {
			return err
		}
		defer trajWriter.Close()
		if err := traj.WriteVMDScript(filepath.Join(dataDir, "vmd.tcl")); err != nil {
			return err
		}
	}

	series := &storage.Series{}
	onSample := func(sweep int) error {
		perParticle := s.Mover.Energy() / float64(cfg.Particles)
		series.Append(sweep, perParticle, s.AcceptanceRate())
		fmt.Printf("sweeps = %d, energy = %.6f\n", sweep, perParticle)
		if trajWriter != nil {
			return trajWriter.WriteFrame(s.Store)
		}
		return nil
	}

	fmt.Printf("running %d sweeps with %s mover...\n", cfg.Sweeps, cfg.Mover)
	start := time.Now()

	if err := s.Run(context.Background(), cfg.Sweeps, cfg.SampleInterval, onSample); err != nil {
		return err
	}

	elapsed := time.Since(start)

	meta := storage.RunMetadata{
		Model:     cfg.Model,
		Mover:     cfg.Mover,
		Seed:      cfg.Seed,
		Dimension: cfg.Dimension,
		Particles: cfg.Particles,
		Density:   cfg.Density,
		Epsilon:   cfg.Epsilon,
		Range:     cfg.Range,
		Sweeps:    s.Sweeps(),
		Metrics: map[string]float64{
			"acceptance":      s.AcceptanceRate(),
			"final_energy":    s.Mover.Energy() / float64(cfg.Particles),
			"attempts":        float64(s.Mover.Attempts()),
			"elapsed_seconds": elapsed.Seconds(),
		},
	}

	runID, err := st.Save(meta, series)
	if err != nil {
		return err
	}

	svgPath := filepath.Join(st.Dir(runID), "final.svg")
	if err := os.WriteFile(svgPath, []byte(export.ConfigurationSVG(s.Store, s.Box, 10)), 0644); err != nil {
		return err
	}

	rMax := s.Box.Size[0] / 2
	for _, l := range s.Box.Size {
		if l/2 < rMax {
			rMax = l / 2
		}
	}
	rdf := analysis.ComputeRDF(s.Store, s.Box, 50, rMax)
	if err := st.SaveRDF(runID, rdf.R, rdf.G); err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("acceptance: %.4f\n", s.AcceptanceRate())
	fmt.Printf("energy per particle: %.6f\n", s.Mover.Energy()/float64(cfg.Particles))
	if trajPath != "" {
		fmt.Printf("trajectory: %s\n", trajPath)
	}

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tMOVER\tTIME\tN\tDENSITY\tSWEEPS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.4f\t%d\n",
			run.ID,
			run.Model,
			run.Mover,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.Density,
			run.Sweeps,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if series.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s (%s)\n", meta.Model, meta.Mover)
	fmt.Printf("samples: %d\n\n", series.Len())

	fmt.Println(asciigraph.Plot(series.Energy,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("energy per particle"),
	))
	fmt.Println()

	fmt.Println(asciigraph.Plot(series.Acceptance,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("acceptance rate"),
	))
	fmt.Println()

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}

	return storage.ExportJSON(os.Stdout, meta, series)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if series.Len() < 2 {
		return fmt.Errorf("not enough samples to plot")
	}

	fmt.Println(export.SeriesSVG(series.Energy, 800, 400, "#00ccff"))
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if series.Len() == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"sweep", "energy", "acceptance"}); err != nil {
		return err
	}
	for i := range series.Sweeps {
		row := []string{
			strconv.Itoa(series.Sweeps[i]),
			strconv.FormatFloat(series.Energy[i], 'f', 6, 64),
			strconv.FormatFloat(series.Acceptance[i], 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if series.Len() < 4 {
		return fmt.Errorf("not enough samples to analyze")
	}

	fmt.Printf("energy series analysis: %s\n", meta.ID)
	fmt.Printf("model: %s (%s)\n\n", meta.Model, meta.Mover)

	summary := analysis.Summarize(series.Energy, burnIn)

	fmt.Printf("mean energy:        %.6f\n", summary.Mean)
	fmt.Printf("variance:           %.6f\n", summary.Variance)
	fmt.Printf("autocorrelation:    %.2f samples\n", summary.Tau)
	fmt.Printf("effective samples:  %.1f\n", summary.Effective)
	fmt.Printf("standard error:     %.6f\n\n", summary.Error)

	tail := series.Energy[int(float64(series.Len())*burnIn):]
	acf := analysis.Autocorrelation(tail)
	window := 50
	if window > len(acf) {
		window = len(acf)
	}

	fmt.Println(asciigraph.Plot(acf[:window],
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("energy autocorrelation"),
	))
	fmt.Println()

	// The final-configuration structure, when the run recorded one.
	if _, g, err := st.LoadRDF(runID); err == nil && len(g) > 1 {
		fmt.Println(asciigraph.Plot(g,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("radial distribution g(r)"),
		))
		fmt.Println()
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	s, err := sim.Build(cfg.SimConfig())
	if err != nil {
		return err
	}

	m := viz.NewModel(s, cfg.Sweeps, 1)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	if len(sweepValues) == 0 {
		return fmt.Errorf("no sweep values given (use --values)")
	}

	sw := experiment.Sweep{
		Base:      cfg.SimConfig(),
		Parameter: sweepParam,
		Values:    sweepValues,
		Replicas:  sweepReplicas,
		Sweeps:    cfg.Sweeps,
		SeedStart: cfg.Seed,
	}

	fmt.Printf("sweeping %s over %d values, %d replicas each, %d sweeps per replica\n\n",
		sweepParam, len(sweepValues), sweepReplicas, cfg.Sweeps)

	points, err := sw.Run(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tENERGY\tERROR\tACCEPTANCE\n", sweepParam)
	for _, p := range points {
		fmt.Fprintf(w, "%.4f\t%.6f\t%.6f\t%.4f\n", p.Value, p.MeanEnergy, p.EnergyError, p.MeanAcceptance)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	energies := make([]float64, len(points))
	for i, p := range points {
		energies[i] = p.MeanEnergy
	}
	fmt.Println()
	fmt.Println(asciigraph.Plot(energies,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Caption(fmt.Sprintf("mean energy vs %s", sweepParam)),
	))

	return nil
}

func benchModel(cmd *cobra.Command, args []string) error {
	model := args[0]

	sizes := []int{100, 500, 1000}
	movers := []string{"single", "vmmc"}

	fmt.Printf("benchmarking %s (100 sweeps each)\n\n", model)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MOVER\tN\tTIME\tSWEEPS/SEC\tACCEPTANCE")

	for _, mv := range movers {
		for _, n := range sizes {
			dim := 3
			cfg := sim.Config{
				Dimension:       dim,
				Particles:       n,
				Density:         0.05,
				Model:           model,
				Mover:           mv,
				Epsilon:         2.0,
				Range:           1.5,
				MaxInteractions: 36,
				Seed:            42,
			}
			if model == "patchy_disc" {
				cfg.Dimension = 2
				cfg.Patches = 3
				cfg.PatchRange = 0.1
				cfg.MaxInteractions = 3
				cfg.Epsilon = 6.0
			}
			cfg.Move.MaxTranslation = 0.15
			cfg.Move.MaxRotation = 0.3
			cfg.Move.ProbTranslate = 0.5

			s, err := sim.Build(cfg)
			if err != nil {
				return err
			}

			const benchSweeps = 100
			start := time.Now()
			if err := s.Run(context.Background(), benchSweeps, benchSweeps, nil); err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%s\t%d\t%v\t%.1f\t%.4f\n",
				mv, n, elapsed.Round(time.Millisecond),
				benchSweeps/elapsed.Seconds(), s.AcceptanceRate())
		}
	}

	return w.Flush()
}
