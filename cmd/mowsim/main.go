package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/mowsim/internal/config"
	"github.com/san-kum/mowsim/internal/experiment"
	"github.com/san-kum/mowsim/internal/logging"
	"github.com/san-kum/mowsim/internal/sim"
	"github.com/san-kum/mowsim/internal/storage"
	"github.com/san-kum/mowsim/internal/viz"
)

var (
	dataDir  string
	logLevel string
	logger   = logging.Nop()

	// run flags
	script     string
	robotName  string
	controller string
	integrator string
	dt         time.Duration
	steps      int
	duration   time.Duration
	params     map[string]string
	outPath    string
	runName    string
	noSave     bool
	replay     bool
	timeout    time.Duration
)

// main wires the commands and exits with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:           "mowsim",
		Short:         "differential-drive mower simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New("mowsim", logLevel)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mowsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [input]",
		Short: "run a simulation from an input file, stdin (-) or a preset",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&script, "script", "", "script preset (see presets)")
	runCmd.Flags().StringVar(&robotName, "robot", "", "robot preset")
	registry := experiment.NewRegistry()
	runCmd.Flags().StringVar(&controller, "controller", config.DefaultController,
		"controller ("+strings.Join(registry.ListControllers(), ", ")+")")
	runCmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator,
		"integrator ("+strings.Join(registry.ListIntegrators(), ", ")+")")
	runCmd.Flags().DurationVar(&dt, "dt", config.DefaultDt, "tick duration")
	runCmd.Flags().IntVar(&steps, "steps", 0, "run exactly this many ticks")
	runCmd.Flags().DurationVar(&duration, "time", 0, "run for this much simulated time")
	runCmd.Flags().StringToStringVar(&params, "set", nil, "tunable overrides, name=value")
	runCmd.Flags().StringVarP(&outPath, "out", "o", "", "write the full trace as JSON (- for stdout)")
	runCmd.Flags().StringVar(&runName, "name", "", "run name in the store")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not save to the store")
	runCmd.Flags().BoolVar(&replay, "replay", false, "open the replay viewer when done")
	runCmd.Flags().DurationVar(&timeout, "timeout", 0, "abort after this much wall time")

	rootCmd.AddCommand(runCmd, listCmd(), showCmd(), plotCmd(), replayCmd(), renderCmd(),
		exportCSVCmd(), presetsCmd(), suiteCmd(), tuneCmd(), sweepCmd())

	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// signalContext is cancelled on interrupt and, if d > 0, after d.
func signalContext(d time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	if d <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, d)
	return ctx, func() { cancel(); stop() }
}

func parseParams(raw map[string]string) (map[string]float64, error) {
	out := make(map[string]float64, len(raw))
	for k, v := range raw {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("--set %s: %w", k, err)
		}
		out[k] = f
	}
	return out, nil
}

// resolveConfig applies, in order: input file or presets, then flags the user
// actually set.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, string, error) {
	var cfg *config.Config
	var source string
	switch {
	case len(args) == 1:
		c, err := config.Load(args[0])
		if err != nil {
			return nil, "", fmt.Errorf("failed to load input: %w", err)
		}
		cfg, source = c, args[0]
		if robotName != "" {
			phys, ok := config.Robots[robotName]
			if !ok {
				return nil, "", fmt.Errorf("unknown robot: %s (available: %v)", robotName, config.ListPresets("robots"))
			}
			cfg.Physical = phys
		}
	default:
		name := script
		if name == "" {
			name = "square"
		}
		cfg = config.GetPreset(name, robotName)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset script=%q robot=%q (scripts: %v, robots: %v)",
				name, robotName, config.ListPresets("scripts"), config.ListPresets("robots"))
		}
		source = "preset:" + name
	}

	flags := cmd.Flags()
	if flags.Changed("controller") {
		cfg.Controller = controller
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("dt") {
		cfg.DeltaTime = sim.Dur(dt)
	}
	if flags.Changed("steps") && flags.Changed("time") {
		return nil, "", fmt.Errorf("--steps and --time are exclusive")
	}
	if flags.Changed("steps") {
		cfg.SimLength = sim.RunSteps(steps)
	}
	if flags.Changed("time") {
		cfg.SimLength = sim.RunFor(duration)
	}

	overrides, err := parseParams(params)
	if err != nil {
		return nil, "", err
	}
	if cfg, err = cfg.WithParams(overrides); err != nil {
		return nil, "", err
	}
	return cfg, source, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, source, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(timeout)
	defer cancel()
	return simulate(ctx, cfg, source)
}

// simulate runs cfg, then writes, saves and reports whatever trace it got. A
// run that stops early still produces its partial trace, but the stop reason
// is returned so the exit status reflects it.
func simulate(ctx context.Context, cfg *config.Config, source string) error {
	registry := experiment.NewRegistry()
	start := time.Now()
	out, runErr := experiment.RunConfig(ctx, registry, cfg, logger)
	if runErr != nil && out == nil {
		return runErr
	}
	if runErr != nil {
		logger.Warnw("run stopped early", "ticks", out.Ticks(), "error", runErr)
	}
	elapsed := time.Since(start)

	if outPath != "" {
		if err := writeTrace(outPath, out); err != nil {
			return err
		}
	}

	runID := ""
	if !noSave {
		st := storage.New(dataDir).WithLogger(logger)
		name := runName
		if name == "" {
			name = nameFor(source)
		}
		var err error
		runID, err = st.Save(storage.RunInfo{
			Name:       name,
			Source:     source,
			Integrator: cfg.Integrator,
			Controller: cfg.Controller,
			SimLength:  cfg.SimLength,
		}, out)
		if err != nil {
			return err
		}
	}

	// stdout belongs to the trace
	report := os.Stdout
	if outPath == "-" {
		report = os.Stderr
	}
	fmt.Fprintf(report, "completed in %v\n", elapsed)
	if runID != "" {
		fmt.Fprintf(report, "run id: %s\n", runID)
	}
	final := out.Final()
	fmt.Fprintf(report, "ticks: %d (%.2fs simulated)\n", out.Ticks(), float64(out.Ticks())*cfg.DeltaTime.Seconds())
	fmt.Fprintf(report, "final pose: (%.3f, %.3f) heading %.3f rad\n", final.RobotX, final.RobotY, final.RobotTheta)
	printMetrics(report, out.Metrics)

	if replay {
		if err := viz.RunReplay(viz.NewReplay(cfg.Controller, out)); err != nil {
			return err
		}
	}
	if runErr != nil {
		return fmt.Errorf("run stopped early: %w", runErr)
	}
	return nil
}

func writeTrace(path string, out *sim.Output[any]) error {
	if path == "-" {
		return storage.WriteJSON(os.Stdout, out, false)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := storage.WriteJSON(f, out, true); err != nil {
		f.Close()
		return err
	}
	logger.Infow("wrote trace", "path", path)
	return f.Close()
}

func printMetrics(w *os.File, metrics map[string]float64) {
	if len(metrics) == 0 {
		return
	}
	names := make([]string, 0, len(metrics))
	for k := range metrics {
		names = append(names, k)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "\nmetrics:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(tw, "  %s\t%.6f\n", name, metrics[name])
	}
	tw.Flush()
}

// nameFor derives a store name from where the input came from.
func nameFor(source string) string {
	if source == "-" {
		return "stdin"
	}
	source = strings.TrimPrefix(source, "preset:")
	return strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
}
