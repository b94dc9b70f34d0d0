package automation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/mowsim/internal/config"
	"github.com/san-kum/mowsim/internal/experiment"
	"github.com/san-kum/mowsim/internal/robot"
	"github.com/san-kum/mowsim/internal/sim"
	"github.com/san-kum/mowsim/internal/storage"
)

// Suite is a batch of runs described in YAML.
type Suite struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Workers     int        `yaml:"workers"`
	Runs        []SuiteRun `yaml:"runs"`
}

// SuiteRun picks its input either from a file or from presets, then applies
// overrides.
type SuiteRun struct {
	Name       string             `yaml:"name"`
	Input      string             `yaml:"input"`
	Script     string             `yaml:"script"`
	Robot      string             `yaml:"robot"`
	Controller string             `yaml:"controller"`
	Integrator string             `yaml:"integrator"`
	SimLength  *sim.Length        `yaml:"sim_length"`
	Params     map[string]float64 `yaml:"params"`
	Save       bool               `yaml:"save"`
}

// Result summarizes one finished run of a suite.
type Result struct {
	Name    string
	RunID   string
	Ticks   int
	Final   robot.Pose
	Metrics map[string]float64
}

// LoadSuite loads a suite from a YAML file. Relative input paths are resolved
// against the suite file's directory.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var suite Suite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for i := range suite.Runs {
		if in := suite.Runs[i].Input; in != "" && in != "-" && !filepath.IsAbs(in) {
			suite.Runs[i].Input = filepath.Join(dir, in)
		}
	}
	return &suite, nil
}

// Config resolves the run into a validated config.
func (r SuiteRun) Config() (*config.Config, error) {
	var cfg *config.Config
	if r.Input != "" {
		var err error
		if cfg, err = config.Load(r.Input); err != nil {
			return nil, err
		}
	} else {
		cfg = config.GetPreset(r.Script, r.Robot)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset script=%q robot=%q", r.Script, r.Robot)
		}
	}

	if r.Controller != "" {
		cfg.Controller = r.Controller
	}
	if r.Integrator != "" {
		cfg.Integrator = r.Integrator
	}
	if r.SimLength != nil {
		cfg.SimLength = *r.SimLength
	}
	cfg, err := cfg.WithParams(r.Params)
	if err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// RunSuite executes every run concurrently. Results keep the suite order. The
// first failing run cancels the rest. store may be nil when nothing is saved.
func RunSuite(ctx context.Context, suite *Suite, registry *experiment.Registry, store *storage.Store, logger *zap.SugaredLogger) ([]Result, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	results := make([]Result, len(suite.Runs))

	ensemble := sim.NewEnsemble[any](suite.Workers)
	_, err := ensemble.Run(ctx, len(suite.Runs), func(ctx context.Context, i int) (*sim.Output[any], error) {
		run := suite.Runs[i]
		name := run.Name
		if name == "" {
			name = fmt.Sprintf("%s-%d", suite.Name, i+1)
		}
		cfg, err := run.Config()
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", name, err)
		}

		out, err := experiment.RunConfig(ctx, registry, cfg, logger.With("run", name))
		if err != nil {
			return out, fmt.Errorf("run %s: %w", name, err)
		}

		res := Result{Name: name, Ticks: out.Ticks(), Final: out.Final().Pose(), Metrics: out.Metrics}
		if run.Save {
			if store == nil {
				return out, fmt.Errorf("run %s: save requested without a store", name)
			}
			source := run.Input
			if source == "" {
				source = run.Script
			}
			res.RunID, err = store.Save(storage.RunInfo{
				Name:       name,
				Source:     source,
				Integrator: cfg.Integrator,
				Controller: cfg.Controller,
				SimLength:  cfg.SimLength,
			}, out)
			if err != nil {
				return out, fmt.Errorf("run %s: %w", name, err)
			}
		}
		results[i] = res
		logger.Infow("suite run done", "run", name, "ticks", res.Ticks, "id", res.RunID)
		return out, nil
	})
	return results, err
}

// ParameterSweep runs one base config across a range of values for a single
// parameter.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	Values    []float64
}

type SweepResult struct {
	ParamValue float64
	Ticks      int
	Final      robot.Pose
	Metrics    map[string]float64
}

// RunSweep executes the sweep sequentially.
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry, logger *zap.SugaredLogger) ([]SweepResult, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	results := make([]SweepResult, 0, len(sweep.Values))

	for i, v := range sweep.Values {
		cfg, err := sweep.Base.WithParams(map[string]float64{sweep.ParamName: v})
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.ParamName, v, err)
		}

		out, err := experiment.RunConfig(ctx, registry, cfg, nil)
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.ParamName, v, err)
		}

		results = append(results, SweepResult{
			ParamValue: v,
			Ticks:      out.Ticks(),
			Final:      out.Final().Pose(),
			Metrics:    out.Metrics,
		})
		logger.Debugw("sweep point", "n", i+1, "of", len(sweep.Values), sweep.ParamName, v, "ticks", out.Ticks())
	}

	return results, nil
}
