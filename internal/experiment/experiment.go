package experiment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/mowsim/internal/config"
	"github.com/san-kum/mowsim/internal/sim"
)

type Experiment struct {
	cfg    *config.Config
	runner Runnable
	logger *zap.SugaredLogger
}

func New(cfg *config.Config, logger *zap.SugaredLogger) *Experiment {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Experiment{cfg: cfg, logger: logger}
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// Setup builds the simulator from the registry and attaches metrics.
func (e *Experiment) Setup(reg *Registry, metrics []sim.Metric) error {
	runner, err := reg.Build(e.cfg)
	if err != nil {
		return err
	}
	for _, m := range metrics {
		runner.AddMetric(m)
	}
	if debugEnabled(e.logger) {
		runner.AddObserver(progress{logger: e.logger, every: progressEvery})
	}
	e.runner = runner
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Output[any], error) {
	if e.runner == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	e.logger.Debugw("starting run",
		"controller", e.cfg.Controller,
		"integrator", e.cfg.Integrator,
		"instructions", len(e.cfg.Instructions),
		"length", e.cfg.SimLength.String(),
		"dt", e.cfg.DeltaTime.Duration)

	start := time.Now()
	out, err := e.runner.Run(ctx, e.cfg.Input)
	if err != nil {
		e.logger.Warnw("run failed", "error", err)
		return out, err
	}

	e.logger.Infow("run finished",
		"ticks", out.Ticks(),
		"simulated", time.Duration(out.Ticks())*e.cfg.DeltaTime.Duration,
		"elapsed", time.Since(start))
	return out, nil
}

// Simulator returns the underlying simulator for adding observers.
func (e *Experiment) Simulator() Runnable {
	return e.runner
}

// RunConfig is the one-call form: build with default metrics and run.
func RunConfig(ctx context.Context, reg *Registry, cfg *config.Config, logger *zap.SugaredLogger) (*sim.Output[any], error) {
	exp := New(cfg, logger)
	if err := exp.Setup(reg, reg.DefaultMetrics()); err != nil {
		return nil, err
	}
	return exp.Run(ctx)
}
