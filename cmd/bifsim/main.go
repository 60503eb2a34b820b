package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/bifsim/internal/analysis"
	"github.com/san-kum/bifsim/internal/automation"
	"github.com/san-kum/bifsim/internal/config"
	"github.com/san-kum/bifsim/internal/dynamo"
	"github.com/san-kum/bifsim/internal/experiment"
	"github.com/san-kum/bifsim/internal/export"
	"github.com/san-kum/bifsim/internal/optim"
	"github.com/san-kum/bifsim/internal/storage"
	"github.com/san-kum/bifsim/internal/tui"
	"github.com/san-kum/bifsim/internal/viz"
)

var (
	dataDir string
	// Sweep ranges
	rMin  float64
	rMax  float64
	xMin  float64
	xMax  float64
	steps int
	// Field symbols
	variable  string
	parameter string
	workers   int
	// Config file
	configFile string
	// Preset name
	preset string
	noSave bool
	// Output
	outFile   string
	branches  bool
	width     int
	height    int
	theme     string
	atRs      []float64
	epsilons  []float64
	refine    bool
	logLevel  int
	logDev    bool
	logger    logr.Logger
	zapLogger *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bifsim",
		Short: "bifurcation analysis for one-dimensional systems x' = f(x, r)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			viz.SetTheme(theme)
			return setLogger(logLevel, logDev)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if zapLogger != nil {
				_ = zapLogger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(logger)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".bifsim", "data directory")
	rootCmd.PersistentFlags().IntVarP(&logLevel, "verbose", "v", 0, "log verbosity (0 info, 1 debug)")
	rootCmd.PersistentFlags().BoolVar(&logDev, "dev", false, "development logging")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", viz.ThemeClassic.Name, "color theme")

	runCmd := &cobra.Command{
		Use:   "run [model|expression]",
		Short: "sweep r and report equilibria and bifurcations",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	sweepFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().IntVar(&width, "width", 72, "diagram width in cells")
	runCmd.Flags().IntVar(&height, "height", 16, "diagram height in cells")
	runCmd.Flags().BoolVar(&refine, "refine", false, "bisect each bifurcation down to a narrow r bracket")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().IntVar(&width, "width", 72, "diagram width in cells")
	showCmd.Flags().IntVar(&height, "height", 16, "diagram height in cells")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the equilibrium count of a run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&width, "width", 72, "plot width")
	plotCmd.Flags().IntVar(&height, "height", 16, "plot height")

	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render the bifurcation diagram to png or svg",
		Args:  cobra.MaximumNArgs(1),
		RunE:  renderRun,
	}
	renderCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (.png, .svg, .pdf)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (stdout by default)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (stdout by default)")
	exportCSVCmd.Flags().BoolVar(&branches, "branches", false, "export branches instead of equilibria")

	inspectCmd := &cobra.Command{
		Use:   "inspect [model|expression]",
		Short: "classify the equilibria at single values of r",
		Args:  cobra.MaximumNArgs(1),
		RunE:  inspect,
	}
	sweepFlags(inspectCmd)
	inspectCmd.Flags().Float64SliceVar(&atRs, "at", nil, "values of r (default: start, middle and end of the range)")
	inspectCmd.Flags().IntVar(&width, "width", 72, "phase line width")

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list canonical systems",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := experiment.NewRegistry()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tEXPRESSION\tDESCRIPTION")
			for _, name := range reg.ListModels() {
				m, _ := reg.GetModel(name)
				fmt.Fprintf(w, "%s\t%s\t%s\n", m.Name, m.Expression, m.Description)
			}
			return w.Flush()
		},
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
				cfg := config.GetPreset(args[0], p)
				fmt.Printf("  %-8s r in [%g, %g]  x in [%g, %g]\n", p, cfg.RMin, cfg.RMax, cfg.XMin, cfg.XMax)
			}
			return nil
		},
	}

	exploreCmd := &cobra.Command{
		Use:   "explore [model|expression]",
		Short: "step through a sweep interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE:  explore,
	}
	sweepFlags(exploreCmd)

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a scripted sequence of sweeps",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the runs")

	unfoldCmd := &cobra.Command{
		Use:   "unfold [model|expression]",
		Short: "sweep f + eps for several eps and compare the bifurcations",
		Args:  cobra.MaximumNArgs(1),
		RunE:  unfold,
	}
	sweepFlags(unfoldCmd)
	unfoldCmd.Flags().Float64SliceVar(&epsilons, "eps", []float64{-0.05, 0, 0.05}, "constant perturbations")

	rootCmd.AddCommand(runCmd, listCmd, showCmd, plotCmd, renderCmd, exportJSONCmd, exportCSVCmd, inspectCmd, modelsCmd, presetsCmd, exploreCmd, batchCmd, unfoldCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func sweepFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&rMin, "r-min", config.DefaultRMin, "lower end of the r range")
	cmd.Flags().Float64Var(&rMax, "r-max", config.DefaultRMax, "upper end of the r range")
	cmd.Flags().Float64Var(&xMin, "x-min", config.DefaultXMin, "lower end of the x search window")
	cmd.Flags().Float64Var(&xMax, "x-max", config.DefaultXMax, "upper end of the x search window")
	cmd.Flags().IntVar(&steps, "steps", 0, "number of r samples (0 derives it from the range)")
	cmd.Flags().StringVar(&variable, "var", dynamo.DefaultVariable, "state variable name")
	cmd.Flags().StringVar(&parameter, "param", dynamo.DefaultParameter, "parameter name")
	cmd.Flags().IntVar(&workers, "workers", 1, "parallel root solvers")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

func newZapLogger(level int, dev bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if dev {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(zapcore.Level(-level))
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

func setLogger(level int, dev bool) error {
	z, err := newZapLogger(level, dev)
	if err != nil {
		return err
	}
	if zapLogger != nil {
		_ = zapLogger.Sync()
	}
	zapLogger = z
	logger = zapr.NewLogger(z)
	return nil
}

// resolveConfig builds the sweep config from, in increasing priority, the
// registry model or raw expression, a preset, a config file and changed
// flags.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	target := config.DefaultModel
	if len(args) > 0 {
		target = args[0]
	}

	cfg := config.DefaultConfig()
	reg := experiment.NewRegistry()
	if m, err := reg.GetModel(target); err == nil {
		cfg.Model, cfg.Expression = m.Name, m.Expression
		if p := config.GetPreset(m.Name, "default"); p != nil {
			cfg = p
		}
	} else {
		cfg.Model, cfg.Expression = "", target
	}

	if preset != "" {
		p := config.GetPreset(cfg.Model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Model))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if len(args) > 0 {
			loaded.Model, loaded.Expression = cfg.Model, cfg.Expression
		}
		cfg = loaded
		if !cmd.Flags().Changed("verbose") && !cmd.Flags().Changed("dev") {
			if err := setLogger(cfg.Log.Level, cfg.Log.Development); err != nil {
				return nil, err
			}
		}
	}

	flags := cmd.Flags()
	if flags.Changed("r-min") {
		cfg.RMin = rMin
	}
	if flags.Changed("r-max") {
		cfg.RMax = rMax
	}
	if flags.Changed("x-min") {
		cfg.XMin = xMin
	}
	if flags.Changed("x-max") {
		cfg.XMax = xMax
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("var") {
		cfg.Variable = variable
	}
	if flags.Changed("param") {
		cfg.Parameter = parameter
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	return cfg, nil
}

func sweep(cmd *cobra.Command, args []string) (*config.Config, *experiment.Experiment, *dynamo.SweepResult, error) {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return nil, nil, nil, err
	}
	exp := experiment.New(cfg, logger)
	if err := exp.Setup(); err != nil {
		return nil, nil, nil, err
	}

	start := time.Now()
	res, err := exp.Run(cmd.Context())
	if err != nil {
		return nil, nil, nil, err
	}
	logger.V(1).Info("sweep finished", "samples", len(res.Rs), "events", len(res.Bifurcations), "elapsed", time.Since(start))
	return cfg, exp, res, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, exp, res, err := sweep(cmd, args)
	if err != nil {
		return err
	}

	name := cfg.Model
	if name == "" {
		name = "custom"
	}
	fmt.Printf("%s  f = %s\n", viz.Title.Render(name), res.Expression)
	fmt.Printf("f_x = %s\n", res.Derivative)
	if exp.Field().IsPolynomial() {
		fmt.Println(viz.Subtle.Render("polynomial in x: companion-matrix roots"))
	} else {
		fmt.Println(viz.Subtle.Render("non-polynomial: seeded Newton/secant/bisection"))
	}
	fmt.Printf("r in [%g, %g] (%d samples), x in [%g, %g]\n\n", cfg.RMin, cfg.RMax, len(res.Rs), cfg.XMin, cfg.XMax)

	printResult(res)

	if refine && len(res.Bifurcations) > 0 {
		l := optim.NewLocator(cfg.XMin, cfg.XMax)
		l.Roots = experiment.Options(cfg, logger).Roots
		l.Logger = logger
		refined, err := l.LocateAll(cmd.Context(), exp.Field(), res.Bifurcations)
		if err != nil {
			return err
		}
		fmt.Println()
		for _, r := range refined {
			if !r.Converged {
				fmt.Printf("%-22s r ≈ %+.6f  (not refined)\n", r.Event.Type, r.Event.R)
				continue
			}
			fmt.Printf("%-22s r = %+.8f  ± %.1e\n", r.Event.Type, r.R, r.Width/2)
		}
	}

	if noSave {
		return nil
	}
	runID, err := save(cfg, res)
	if err != nil {
		return err
	}
	fmt.Printf("\nrun id: %s\n", runID)
	return nil
}

func save(cfg *config.Config, res *dynamo.SweepResult) (string, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return "", err
	}
	return st.Save(storage.Run{
		Model:      cfg.Model,
		Expression: cfg.Expression,
		RMin:       cfg.RMin,
		RMax:       cfg.RMax,
		XMin:       cfg.XMin,
		XMax:       cfg.XMax,
	}, res)
}

func runBatch(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("scenario: %s\n", scenario.Name)
	if scenario.Description != "" {
		fmt.Println(viz.Subtle.Render(scenario.Description))
	}

	results, err := automation.RunScenario(cmd.Context(), scenario, experiment.NewRegistry(), logger)
	for i, r := range results {
		label := r.Step.SaveAs
		if label == "" {
			label = r.Config.Model
		}
		if label == "" {
			label = "custom"
		}
		fmt.Printf("\n[%d] %s  f = %s\n", i+1, viz.Title.Render(label), r.Result.Expression)
		fmt.Print(viz.EventTable(r.Result.Bifurcations))
		if noSave {
			continue
		}
		runID, serr := save(r.Config, r.Result)
		if serr != nil {
			return serr
		}
		fmt.Printf("run id: %s\n", runID)
	}
	return err
}

func unfold(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	results, err := automation.RunUnfolding(cmd.Context(), &automation.Unfolding{Config: cfg, Epsilons: epsilons}, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EPS\tEXPRESSION\tEVENTS")
	for _, r := range results {
		desc := "no bifurcations found in range"
		if len(r.Events) > 0 {
			parts := make([]string, len(r.Events))
			for i, ev := range r.Events {
				parts[i] = fmt.Sprintf("%s@%+.3f", ev.Type, ev.R)
			}
			desc = strings.Join(parts, ", ")
		}
		fmt.Fprintf(w, "%+g\t%s\t%s\n", r.Epsilon, r.Expression, desc)
	}
	return w.Flush()
}

func printResult(res *dynamo.SweepResult) {
	if res.Empty() {
		fmt.Println("no equilibria found in range")
	} else {
		fmt.Print(viz.RenderDiagram(res, width, height))
		fmt.Println(viz.Legend())
		fmt.Println()
		fmt.Print(viz.SummaryTable(res))
		fmt.Printf("critical r ≈ %+.4f\n", analysis.CriticalR(res))
	}
	fmt.Println()
	fmt.Print(viz.EventTable(res.Bifurcations))
}

func resolveRun(st *storage.Store, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return st.Latest()
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
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tEXPRESSION\tR RANGE\tSTEPS\tEVENTS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t[%g, %g]\t%d\t%d\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Expression,
			run.RMin, run.RMax,
			run.Steps,
			len(run.Bifurcations),
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	res, err := st.LoadResult(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("f = %s\n", meta.Expression)
	fmt.Printf("f_x = %s\n", meta.Derivative)
	fmt.Printf("r in [%g, %g] (%d samples), %d branches\n\n", meta.RMin, meta.RMax, meta.Steps, meta.Branches)
	printResult(res)
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	res, err := st.LoadResult(runID)
	if err != nil {
		return err
	}
	if len(res.Rs) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n\n", runID)
	fmt.Println(viz.CountPlot(res, width, max(height/2, 4)))
	fmt.Println()
	fmt.Print(viz.EventTable(res.Bifurcations))
	return nil
}

func renderRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	res, err := st.LoadResult(runID)
	if err != nil {
		return err
	}

	path := outFile
	if path == "" {
		path = filepath.Join(dataDir, runID, "diagram.png")
	}
	title := fmt.Sprintf("%s: x' = %s", meta.Model, meta.Expression)
	if err := export.Render(res, title, path); err != nil {
		return err
	}
	fmt.Printf("diagram written to %s\n", path)
	return nil
}

func output() (io.Writer, func() error, error) {
	if outFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	res, err := st.LoadResult(runID)
	if err != nil {
		return err
	}

	w, done, err := output()
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(w, meta.Model, res); err != nil {
		done()
		return err
	}
	return done()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	res, err := st.LoadResult(runID)
	if err != nil {
		return err
	}

	w, done, err := output()
	if err != nil {
		return err
	}
	write := storage.WriteEquilibriaCSV
	if branches {
		write = storage.WriteBranchesCSV
	}
	if err := write(w, res); err != nil {
		done()
		return err
	}
	return done()
}

func inspect(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	exp := experiment.New(cfg, logger)
	if err := exp.Setup(); err != nil {
		return err
	}

	rs := atRs
	if len(rs) == 0 {
		rs = []float64{cfg.RMin, 0.5 * (cfg.RMin + cfg.RMax), cfg.RMax}
	}

	f := exp.Field()
	fmt.Printf("f = %s\nf_x = %s\n", f.Expression(), f.Derivative())
	for _, r := range rs {
		eqs, err := exp.Snapshot(r)
		if err != nil {
			return err
		}
		fmt.Printf("\nr = %+.5f  n = %d\n", r, len(eqs))
		if len(eqs) == 0 {
			fmt.Println("  no equilibria found in range")
			continue
		}
		pl := analysis.NewPhaseLine(f, r, cfg.XMin, cfg.XMax)
		fmt.Println("  " + pl.ASCII(width))
		for i, eq := range pl.Equilibria {
			fmt.Printf("  x* = %+.6f  f_x = %+.4e  %s %s\n", eq.X, eq.Slope, viz.Symbol(eq.Stability), pl.Refine(i))
		}
	}
	return nil
}

func explore(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !cmd.Flags().Changed("config") {
		return tui.Run(logger)
	}
	cfg, _, res, err := sweep(cmd, args)
	if err != nil {
		return err
	}
	name := cfg.Model
	if name == "" {
		name = "custom"
	}
	return tui.RunResult(name, res)
}
