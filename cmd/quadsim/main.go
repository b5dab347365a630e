package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/quadsim/internal/compute"
	"github.com/san-kum/quadsim/internal/config"
	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/env"
	"github.com/san-kum/quadsim/internal/metrics"
	"github.com/san-kum/quadsim/internal/quad"
	"github.com/san-kum/quadsim/internal/sim"
	"github.com/san-kum/quadsim/internal/storage"
	"github.com/san-kum/quadsim/internal/viz"
)

var (
	dataDir string
	verbose bool

	dt      float64
	steps   int
	batch   int
	seed    int64
	backend string
	action  string

	configFile string
	preset     string

	sampleCount   int
	sampleHorizon int
	sampleOut     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "quadsim",
		Short: "batched quadrotor dynamics simulator",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
				Level(level).With().Timestamp().Logger()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".quadsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a batch rollout",
		RunE:  runRollout,
	}
	addRolloutFlags(runCmd)

	sampleCmd := &cobra.Command{
		Use:   "sample",
		Short: "sample a training dataset",
		RunE:  sampleDataset,
	}
	sampleCmd.Flags().IntVar(&sampleCount, "count", 1024, "number of samples")
	sampleCmd.Flags().IntVar(&sampleHorizon, "horizon", 10, "reference trajectory length")
	sampleCmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	sampleCmd.Flags().Float64Var(&dt, "dt", quad.DefaultDt, "timestep")
	sampleCmd.Flags().StringVar(&sampleOut, "out", "dataset.json", "output path")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
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

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with live visualization",
		RunE:  runLive,
	}
	addRolloutFlags(liveCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark stepping throughput",
		RunE:  benchStepper,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets()
			sort.Strings(names)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tBATCH\tSTEPS\tACTION")
			for _, name := range names {
				cfg := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", name, cfg.Batch, cfg.Steps, cfg.Action.Mode)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(runCmd, sampleCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, liveCmd, benchCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRolloutFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", quad.DefaultDt, "timestep")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	cmd.Flags().IntVar(&batch, "batch", config.DefaultBatch, "batch size")
	cmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	cmd.Flags().StringVar(&backend, "backend", "cpu", "compute backend (serial, cpu)")
	cmd.Flags().StringVar(&action, "action", "", "action mode (hover, zero)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// resolveConfig layers preset, config file and explicit flags, with flags
// winning over the file and the file winning over the preset.
func resolveConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	name := "custom"

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
		name = preset
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("steps") {
		cfg.Steps = steps
	}
	if cmd.Flags().Changed("batch") {
		cfg.Batch = batch
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("backend") {
		cfg.Backend = backend
	}
	if cmd.Flags().Changed("action") {
		cfg.Action = config.ActionConfig{Mode: action}
	}

	return cfg, name, nil
}

func buildStepper(cfg *config.Config) (*quad.Stepper, error) {
	be := compute.Select(cfg.Backend)
	if be == nil {
		return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}
	return quad.NewStepper(&cfg.Params, be)
}

func runRollout(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	stepper, err := buildStepper(cfg)
	if err != nil {
		return err
	}

	row, err := cfg.ActionRow()
	if err != nil {
		return err
	}

	runner := sim.New(stepper, sim.ConstantAction(row))
	runner.AddMetric(metrics.NewStability(1.0, 10.0))
	runner.AddMetric(metrics.NewControlEffort())
	runner.AddMetric(metrics.NewHoverError(0))

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	log.Info().
		Str("name", name).
		Int("batch", cfg.Batch).
		Int("steps", cfg.Steps).
		Float64("dt", cfg.Dt).
		Str("backend", cfg.Backend).
		Msg("running rollout")

	start := time.Now()
	result, err := runner.Run(context.Background(), sim.HoverState(&cfg.Params, cfg.Batch), sim.Config{
		Dt:            cfg.Dt,
		Steps:         cfg.Steps,
		ValidateState: true,
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(name, cfg.Dt, cfg.Steps, cfg.Batch, cfg.Seed, cfg.Backend, result)
	if err != nil {
		return err
	}

	log.Info().Dur("elapsed", elapsed).Str("run_id", runID).Msg("completed")

	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", len(result.States)-1)
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for n := range result.Metrics {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Printf("  %s: %.6f\n", n, result.Metrics[n])
	}

	return nil
}

type datasetExport struct {
	Count    int           `json:"count"`
	Horizon  int           `json:"horizon"`
	Seed     int64         `json:"seed"`
	States   [][]float64   `json:"states"`
	RefWorld [][][]float64 `json:"ref_world"`
	RefBody  [][][]float64 `json:"ref_body"`
}

func sampleDataset(cmd *cobra.Command, args []string) error {
	p := quad.DefaultParams()
	stepper, err := quad.NewStepper(p, compute.NewCPU())
	if err != nil {
		return err
	}

	samplerCfg := env.DefaultSamplerConfig()
	samplerCfg.Seed = seed
	samplerCfg.Dt = dt
	samplerCfg.Horizon = sampleHorizon

	log.Info().Int("count", sampleCount).Int("horizon", sampleHorizon).Msg("sampling dataset")

	ds, err := env.NewDataset(env.NewSampler(stepper, samplerCfg), sampleCount)
	if err != nil {
		return err
	}

	export := datasetExport{
		Count:    ds.Len(),
		Horizon:  ds.Horizon(),
		Seed:     seed,
		States:   make([][]float64, ds.Len()),
		RefWorld: make([][][]float64, ds.Len()),
		RefBody:  make([][][]float64, ds.Len()),
	}
	for i := 0; i < ds.Len(); i++ {
		export.States[i], export.RefWorld[i], export.RefBody[i] = ds.At(i)
	}

	file, err := os.Create(sampleOut)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := json.NewEncoder(file).Encode(export); err != nil {
		return err
	}

	log.Info().Str("path", sampleOut).Msg("dataset written")
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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tSTEPS\tBATCH\tDT\tBACKEND")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.4fs\t%s\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Batch,
			run.Dt,
			run.Backend,
		)
	}

	return w.Flush()
}

var plotChannels = []struct {
	index   int
	caption string
}{
	{quad.OffPosition + 2, "altitude [m]"},
	{quad.OffAttitude, "roll [rad]"},
	{quad.OffAttitude + 1, "pitch [rad]"},
	{quad.OffAttitude + 2, "yaw [rad]"},
	{quad.OffVelocity + 2, "vertical velocity [m/s]"},
	{quad.OffRotorSpeed, "rotor 0 speed [rad/s]"},
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("name: %s\n", meta.Name)
	fmt.Printf("samples: %d\n\n", len(states))

	for _, ch := range plotChannels {
		if ch.index >= len(states[0]) {
			continue
		}

		data := make([]float64, len(states))
		for i := range states {
			data[i] = states[i][ch.index]
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(ch.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	states, times, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	for i := range states {
		row := make([]string, 0, len(states[i])+1)
		row = append(row, strconv.FormatFloat(times[i], 'f', 6, 64))
		for _, v := range states[i] {
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	states, times, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}

	result := &dynamo.Result{
		Times:   times,
		States:  states,
		Actions: [][]float64{},
		Metrics: meta.Metrics,
	}

	return storage.ExportJSONStdout(meta.Name, meta.Backend, meta.Dt, meta.Batch, result)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	stepper, err := buildStepper(cfg)
	if err != nil {
		return err
	}

	row, err := cfg.ActionRow()
	if err != nil {
		return err
	}

	m := viz.NewModel(stepper, sim.HoverState(&cfg.Params, cfg.Batch), row, cfg.Dt, name)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func benchStepper(cmd *cobra.Command, args []string) error {
	p := quad.DefaultParams()
	batchSizes := []int{1, 64, 1024, 8192}
	backends := []string{"serial", "cpu"}
	const benchSteps = 200

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BACKEND\tBATCH\tSTEPS\tTIME\tVEHICLE-STEPS/SEC")

	for _, name := range backends {
		stepper, err := quad.NewStepper(p, compute.Select(name))
		if err != nil {
			return err
		}

		a := p.HoverAction()
		for _, n := range batchSizes {
			state := sim.HoverState(p, n)
			actions := dynamo.NewBatch(n, quad.ActionDim)
			for i := 0; i < n; i++ {
				u := actions.Row(i)
				for k := 0; k < 4; k++ {
					u[k] = a
				}
			}

			start := time.Now()
			for s := 0; s < benchSteps; s++ {
				state, err = stepper.Step(state, actions, quad.DefaultDt)
				if err != nil {
					return err
				}
			}
			elapsed := time.Since(start)

			rate := float64(n*benchSteps) / elapsed.Seconds()
			fmt.Fprintf(w, "%s\t%d\t%d\t%v\t%.0f\n", name, n, benchSteps, elapsed, rate)
		}
	}

	return w.Flush()
}
