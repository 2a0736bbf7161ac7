package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/kinetree/internal/config"
	"github.com/san-kum/kinetree/internal/constraint"
	"github.com/san-kum/kinetree/internal/export"
	"github.com/san-kum/kinetree/internal/metrics"
	"github.com/san-kum/kinetree/internal/multibody"
	"github.com/san-kum/kinetree/internal/runner"
	"github.com/san-kum/kinetree/internal/scene"
	"github.com/san-kum/kinetree/internal/spatial"
	"github.com/san-kum/kinetree/internal/storage"
	"github.com/san-kum/kinetree/internal/viz"
)

var (
	dataDir    string
	configFile string
	dt         float64
	duration   float64
	integrator string
	verbose    bool
	// plot/export selection
	coord    int
	exprBody string
	outFile  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "kinetree",
		Short: "articulated multibody kinematics lab",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".kinetree", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "scene file path (yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "structured log output")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a scene and store the trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScene,
	}
	runCmd.Flags().Float64Var(&dt, "dt", 0, "timestep override")
	runCmd.Flags().Float64Var(&duration, "time", 0, "duration override")
	runCmd.Flags().StringVar(&integrator, "integrator", "", "integrator override (euler, rk4)")

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "watch a scene in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  liveScene,
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect [scene]",
		Short: "describe a scene's tree and constraints",
		Args:  cobra.MaximumNArgs(1),
		RunE:  inspectScene,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored coordinate",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&coord, "coord", 0, "coordinate index")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&exprBody, "body", "", "trace this body's origin instead of a coordinate")
	exportCmd.Flags().IntVar(&coord, "coord", 0, "coordinate index")
	exportCmd.Flags().StringVar(&outFile, "out", "trajectory.svg", "output path")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenes",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, inspectCmd, listCmd, plotCmd, exportCmd, presetsCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves the scene: an explicit --config file wins, otherwise
// the positional argument names a preset.
func loadConfig(args []string) (*config.Config, error) {
	if configFile != "" {
		return config.Load(configFile)
	}
	if len(args) == 0 {
		return config.DefaultConfig(), nil
	}
	cfg := config.GetPreset(args[0])
	if cfg == nil {
		return nil, fmt.Errorf("unknown scene %q (see 'kinetree presets')", args[0])
	}
	return cfg, nil
}

func applyOverrides(cfg *config.Config) {
	if dt > 0 {
		cfg.Run.Dt = dt
	}
	if duration > 0 {
		cfg.Run.Duration = duration
	}
	if integrator != "" {
		cfg.Run.Integrator = integrator
	}
}

func newLogger() (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

func runScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	applyOverrides(cfg)

	sc, err := scene.Build(cfg)
	if err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	r, err := runner.New(sc, cfg.Run, log)
	if err != nil {
		return err
	}
	r.AddMetric(metrics.NewConstraintDrift(sc.Set))
	if len(cfg.Bodies) > 0 {
		if ix, ok := sc.Names[cfg.Bodies[len(cfg.Bodies)-1].Name]; ok {
			r.AddMetric(metrics.NewPathLength(sc.Sys, ix, spatial.Vec3{}))
			r.AddMetric(metrics.NewMomentumPeak(sc.Sys, ix))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := r.Run(ctx, cfg.Run)
	if err != nil {
		return err
	}

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	runID, err := store.Save(cfg.Name, cfg.Run.Dt, cfg.Run.Duration, cfg.Run.Integrator, result)
	if err != nil {
		return err
	}

	fmt.Printf("run %s: %d steps, max constraint violation %.3e\n", runID, result.StepsTaken, result.MaxPerr)
	for name, v := range result.Metrics {
		fmt.Printf("  %-18s %.6g\n", name, v)
	}
	if len(result.Samples) > 1 {
		series := make([]float64, len(result.Samples))
		for i, sample := range result.Samples {
			series[i] = sample.Q[0]
		}
		fmt.Println()
		fmt.Println(asciigraph.Plot(series, asciigraph.Height(10), asciigraph.Width(70), asciigraph.Caption("q0")))
	}
	return nil
}

func liveScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	applyOverrides(cfg)

	sc, err := scene.Build(cfg)
	if err != nil {
		return err
	}
	model, err := viz.NewModel(sc, cfg.Name, cfg.Run)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

func inspectScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	sc, err := scene.Build(cfg)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "scene %s: %d bodies, nq=%d, nu=%d\n", cfg.Name, sc.Sys.NumBodies()-1, sc.Sys.NumQ(), sc.Sys.NumU())
	fmt.Fprintln(w, "BODY\tPARENT\tMOBILIZER\tQ\tU")
	for _, ix := range sc.Sys.TraversalOrder() {
		if ix == multibody.Ground {
			continue
		}
		b := sc.Sys.Body(ix)
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
			b.Name(), sc.Sys.Body(b.Parent()).Name(), b.Mobilizer().Name(), b.NumQ(), b.NumU())
	}
	if n := sc.Set.NumConstraints(); n > 0 {
		fmt.Fprintln(w, "\nCONSTRAINT\tBODIES\tEQUATIONS")
		for i := 0; i < n; i++ {
			c := sc.Set.Constraint(constraint.Index(i))
			names := make([]string, 0, len(c.ConstrainedBodies()))
			for _, bix := range c.ConstrainedBodies() {
				names = append(names, sc.Sys.Body(bix).Name())
			}
			mp, mv, ma := c.NumEquations()
			fmt.Fprintf(w, "%s\t%s\t%d+%d+%d\n", c.Kind(), strings.Join(names, ","), mp, mv, ma)
		}
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no stored runs")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tSTEPS\tMAX PERR\tWHEN")
	for _, meta := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.3e\t%s\n",
			meta.ID, meta.Scene, meta.Steps, meta.MaxPerr, meta.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	samples, err := store.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	if len(samples) < 2 {
		return fmt.Errorf("run %s has no trajectory", args[0])
	}
	if coord < 0 || coord >= len(samples[0].Q) {
		return fmt.Errorf("coordinate %d out of range [0,%d)", coord, len(samples[0].Q))
	}
	series := make([]float64, len(samples))
	for i, sample := range samples {
		series[i] = sample.Q[coord]
	}
	fmt.Println(asciigraph.Plot(series, asciigraph.Height(15), asciigraph.Width(70),
		asciigraph.Caption(fmt.Sprintf("q%d", coord))))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := store.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	var svg string
	if exprBody != "" {
		cfg := config.GetPreset(meta.Scene)
		if configFile != "" {
			cfg, err = config.Load(configFile)
			if err != nil {
				return err
			}
		}
		if cfg == nil {
			return fmt.Errorf("scene %q is not a preset; pass --config", meta.Scene)
		}
		sc, err := scene.Build(cfg)
		if err != nil {
			return err
		}
		svg, err = export.StationPathSVG(sc, samples, exprBody, spatial.Vec3{}, 800, 600)
		if err != nil {
			return err
		}
	} else {
		svg, err = export.CoordinateSVG(samples, coord, 800, 600)
		if err != nil {
			return err
		}
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}
