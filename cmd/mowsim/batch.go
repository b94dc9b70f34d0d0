package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/mowsim/internal/automation"
	"github.com/san-kum/mowsim/internal/config"
	"github.com/san-kum/mowsim/internal/experiment"
	"github.com/san-kum/mowsim/internal/optim"
	"github.com/san-kum/mowsim/internal/sim"
	"github.com/san-kum/mowsim/internal/storage"
)

func presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [scripts|robots]",
		Short: "list script and robot presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groups := []string{"scripts", "robots"}
			if len(args) == 1 {
				if config.ListPresets(args[0]) == nil {
					return fmt.Errorf("unknown preset group %q (want scripts or robots)", args[0])
				}
				groups = args
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, g := range groups {
				fmt.Fprintf(w, "%s:\n", g)
				for _, name := range config.ListPresets(g) {
					if g == "scripts" {
						s := config.Scripts[name]
						fmt.Fprintf(w, "  %s\t%d instructions\t%s\t%s\n", name, len(s.Instructions), s.Length, s.Description)
						continue
					}
					p := config.Robots[name]
					fmt.Fprintf(w, "  %s\twheels %.2fm apart\tradius %.2fm\tblade %.2fm\n", name, p.WheelDistance, p.WheelRadius, p.BladeRadius)
				}
			}
			reg := experiment.NewRegistry()
			fmt.Fprintf(w, "\ncontrollers: %s\n", strings.Join(reg.ListControllers(), ", "))
			fmt.Fprintf(w, "integrators: %s\n", strings.Join(reg.ListIntegrators(), ", "))
			fmt.Fprintf(w, "tunables: %s\n", strings.Join(config.ParamNames(), ", "))
			return w.Flush()
		},
	}
}

func suiteCmd() *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "suite [file]",
		Short: "run a YAML batch of simulations concurrently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			suite, err := automation.LoadSuite(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				suite.Workers = workers
			}

			ctx, cancel := signalContext(0)
			defer cancel()

			st := storage.New(dataDir).WithLogger(logger)
			results, err := automation.RunSuite(ctx, suite, experiment.NewRegistry(), st, logger)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tTICKS\tFINAL\tPATH\tCUT\tID")
			for _, r := range results {
				fmt.Fprintf(w, "%s\t%d\t(%.2f, %.2f)\t%.2fm\t%.2fm\t%s\n",
					r.Name, r.Ticks, r.Final.X, r.Final.Y,
					r.Metrics["path_length"], r.Metrics["cut_length"], r.RunID)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (default from the suite, else CPU count)")
	return cmd
}

// parseGrid reads name=lo:hi:n.
func parseGrid(arg string) (string, []float64, error) {
	name, rng, ok := strings.Cut(arg, "=")
	if !ok {
		return "", nil, fmt.Errorf("grid %q: want name=lo:hi:n", arg)
	}
	parts := strings.Split(rng, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("grid %q: want name=lo:hi:n", arg)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("grid %q: %w", arg, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("grid %q: %w", arg, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return "", nil, fmt.Errorf("grid %q: bad point count", arg)
	}
	return name, optim.Linspace(lo, hi, n), nil
}

func objectiveFor(name string) optim.Objective {
	if name == "ticks" {
		return optim.Ticks()
	}
	return optim.Metric(name)
}

func presetFromFlags(scriptName, bot, ctrl string) (*config.Config, error) {
	cfg := config.GetPreset(scriptName, bot)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset script=%q robot=%q", scriptName, bot)
	}
	if ctrl != "" {
		cfg.Controller = ctrl
	}
	return cfg, nil
}

func tuneCmd() *cobra.Command {
	var scriptName, bot, ctrl, objective string
	var grids []string
	var top int
	cmd := &cobra.Command{
		Use:     "tune",
		Short:   "grid search controller parameters on a preset",
		Example: "  mowsim tune --script square --grid reach_distance=0.05:0.5:10 --grid correction_gain=2:6:5",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := presetFromFlags(scriptName, bot, ctrl)
			if err != nil {
				return err
			}
			if base.SimLength.Kind != sim.Indefinite && objective == "ticks" {
				logger.Warnw("tick objective on a fixed length script is constant", "script", scriptName)
			}

			var names []string
			var ranges [][]float64
			for _, g := range grids {
				name, values, err := parseGrid(g)
				if err != nil {
					return err
				}
				names = append(names, name)
				ranges = append(ranges, values)
			}
			if len(names) == 0 {
				return fmt.Errorf("at least one --grid is required")
			}

			ctx, cancel := signalContext(0)
			defer cancel()

			registry := experiment.NewRegistry()
			search := optim.NewGridSearch(names, ranges)
			logger.Infow("tuning", "script", scriptName, "points", search.Size(), "objective", objective)

			best, score, trials, err := search.Search(ctx, func(ctx context.Context, p map[string]float64) (*sim.Output[any], error) {
				cfg, err := base.WithParams(p)
				if err != nil {
					return nil, err
				}
				if err := cfg.Validate(); err != nil {
					return nil, err
				}
				return experiment.RunConfig(ctx, registry, cfg, nil)
			}, objectiveFor(objective))
			if err != nil {
				return err
			}

			sort.SliceStable(trials, func(i, j int) bool { return trials[i].Score < trials[j].Score })
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\tSCORE")
			for i, t := range trials {
				if i == top {
					break
				}
				for _, n := range names {
					fmt.Fprintf(w, "%.4g\t", t.Params[n])
				}
				if t.Err != nil {
					fmt.Fprintf(w, "error: %v\n", t.Err)
				} else {
					fmt.Fprintf(w, "%.4f\n", t.Score)
				}
			}
			w.Flush()

			fmt.Printf("\nbest %s = %.4f:", objective, score)
			for _, n := range names {
				fmt.Printf(" --set %s=%g", n, best[n])
			}
			fmt.Println()
			return nil
		},
	}
	cmd.Flags().StringVar(&scriptName, "script", "square", "script preset")
	cmd.Flags().StringVar(&bot, "robot", "", "robot preset")
	cmd.Flags().StringVar(&ctrl, "controller", "", "controller (default from preset)")
	cmd.Flags().StringVar(&objective, "objective", "ticks", "ticks or a metric name to minimize")
	cmd.Flags().StringArrayVar(&grids, "grid", nil, "parameter grid, name=lo:hi:n (repeatable)")
	cmd.Flags().IntVar(&top, "top", 10, "trials to list")
	return cmd
}

func sweepCmd() *cobra.Command {
	var scriptName, bot, ctrl, grid string
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "run a preset across a range of one parameter",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := presetFromFlags(scriptName, bot, ctrl)
			if err != nil {
				return err
			}
			name, values, err := parseGrid(grid)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(0)
			defer cancel()

			results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
				Base:      base,
				ParamName: name,
				Values:    values,
			}, experiment.NewRegistry(), logger)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\tTICKS\tFINAL\tPATH\tEFFORT\n", strings.ToUpper(name))
			for _, r := range results {
				fmt.Fprintf(w, "%.4g\t%d\t(%.2f, %.2f)\t%.2fm\t%.3f\n",
					r.ParamValue, r.Ticks, r.Final.X, r.Final.Y, r.Metrics["path_length"], nanIfMissing(r.Metrics, "control_effort"))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&scriptName, "script", "square", "script preset")
	cmd.Flags().StringVar(&bot, "robot", "", "robot preset")
	cmd.Flags().StringVar(&ctrl, "controller", "", "controller (default from preset)")
	cmd.Flags().StringVar(&grid, "param", "reach_distance=0.05:0.5:10", "parameter range, name=lo:hi:n")
	return cmd
}

func nanIfMissing(m map[string]float64, key string) float64 {
	if v, ok := m[key]; ok {
		return v
	}
	return math.NaN()
}
