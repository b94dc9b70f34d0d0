package experiment

import (
	"context"
	"fmt"
	"sort"

	"github.com/san-kum/mowsim/internal/config"
	"github.com/san-kum/mowsim/internal/controllers"
	"github.com/san-kum/mowsim/internal/integrators"
	"github.com/san-kum/mowsim/internal/metrics"
	"github.com/san-kum/mowsim/internal/sim"
)

// Runnable is a simulator whose controller state type has been erased, so
// that every controller can be driven through one code path.
type Runnable interface {
	AddMetric(m sim.Metric)
	AddObserver(o sim.Observer)
	Run(ctx context.Context, in sim.Input) (*sim.Output[any], error)
}

type erased[D any] struct {
	*sim.Simulator[D]
}

func (e erased[D]) Run(ctx context.Context, in sim.Input) (*sim.Output[any], error) {
	out, err := e.Simulator.Run(ctx, in)
	return sim.Erase(out), err
}

func wrap[D any](integ sim.Integrator, ctrl sim.Controller[D]) Runnable {
	return erased[D]{sim.New(integ, ctrl)}
}

type Registry struct {
	integrators map[string]func() sim.Integrator
	controllers map[string]func(cfg *config.Config, integ sim.Integrator) Runnable
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() sim.Integrator),
		controllers: make(map[string]func(*config.Config, sim.Integrator) Runnable),
	}

	r.integrators["euler"] = func() sim.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() sim.Integrator { return integrators.NewRK4() }

	r.controllers["waypoint"] = func(cfg *config.Config, integ sim.Integrator) Runnable {
		return wrap[controllers.State](integ, controllers.NewWaypoint(cfg.ControllerParams))
	}
	r.controllers["pid"] = func(cfg *config.Config, integ sim.Integrator) Runnable {
		pid := controllers.NewPID(cfg.PID.Kp, cfg.PID.Ki, cfg.PID.Kd)
		return wrap[controllers.State](integ, controllers.NewPIDWaypoint(cfg.ControllerParams, pid))
	}
	r.controllers["manual"] = func(cfg *config.Config, integ sim.Integrator) Runnable {
		return wrap[int](integ, controllers.NewManual(cfg.Manual.Left, cfg.Manual.Right))
	}
	r.controllers["none"] = func(cfg *config.Config, integ sim.Integrator) Runnable {
		return wrap[struct{}](integ, controllers.NewNone())
	}

	return r
}

func (r *Registry) GetIntegrator(name string) (sim.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

// Build resolves the controller and integrator named in cfg into a fresh
// simulator. Every call returns independent controller state.
func (r *Registry) Build(cfg *config.Config) (Runnable, error) {
	integ, err := r.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	fn, ok := r.controllers[cfg.Controller]
	if !ok {
		return nil, fmt.Errorf("unknown controller: %s", cfg.Controller)
	}
	return fn(cfg, integ), nil
}

func (r *Registry) ListControllers() []string {
	return sortedKeys(r.controllers)
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics() []sim.Metric {
	return metrics.Default()
}
