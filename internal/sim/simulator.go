package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/mowsim/internal/models"
	"github.com/san-kum/mowsim/internal/robot"
	"github.com/san-kum/mowsim/internal/telemetry"
)

const maxPrealloc = 1 << 16

// DynamicsFactory builds the plant model for a run from its constants.
type DynamicsFactory func(robot.Physical) Dynamics

func diffDrive(p robot.Physical) Dynamics { return models.NewDiffDrive(p) }

type Simulator[D any] struct {
	dynamics   DynamicsFactory
	integrator Integrator
	controller Controller[D]
	metrics    []Metric
	observers  []Observer
}

func New[D any](integrator Integrator, controller Controller[D]) *Simulator[D] {
	return &Simulator[D]{
		dynamics:   diffDrive,
		integrator: integrator,
		controller: controller,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

// WithDynamics replaces the differential-drive model.
func (s *Simulator[D]) WithDynamics(f DynamicsFactory) *Simulator[D] {
	s.dynamics = f
	return s
}

func (s *Simulator[D]) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator[D]) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run executes the whole simulation and returns its trace. The trace always
// starts with the initial record at the origin. On cancellation the partial
// trace is returned together with ctx.Err().
func (s *Simulator[D]) Run(ctx context.Context, in Input) (*Output[D], error) {
	out := &Output[D]{
		DeltaTime: in.DeltaTime,
		Physical:  in.Physical,
		Metrics:   make(map[string]float64),
	}
	if in.DeltaTime.Duration > 0 {
		if n, ok := in.SimLength.Ticks(in.DeltaTime.Duration); ok && n >= 0 {
			out.States = make([]Record[D], 0, min(n, maxPrealloc)+1)
		}
	}

	err := s.loop(ctx, in, func(r Record[D]) bool {
		out.States = append(out.States, r)
		return true
	})
	if len(out.States) == 0 {
		return nil, err
	}

	for _, m := range s.metrics {
		out.Metrics[m.Name()] = m.Value()
	}
	return out, err
}

// RunWithCallback streams records as they are produced instead of collecting
// them. Returning false from callback stops the run early without error.
func (s *Simulator[D]) RunWithCallback(ctx context.Context, in Input, callback func(Record[D]) bool) error {
	return s.loop(ctx, in, callback)
}

func (s *Simulator[D]) loop(ctx context.Context, in Input, emit func(Record[D]) bool) error {
	if s.controller == nil {
		return ErrNoController
	}
	if s.integrator == nil {
		return fmt.Errorf("sim: no integrator")
	}
	if in.DeltaTime.Duration <= 0 {
		return fmt.Errorf("delta_time must be positive, got %v", in.DeltaTime.Duration)
	}
	if err := in.SimLength.Validate(); err != nil {
		return err
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	dyn := s.dynamics(in.Physical)
	dt := in.DeltaTime.Seconds()
	budget, bounded := in.SimLength.Ticks(in.DeltaTime.Duration)

	var pose robot.Pose
	var act robot.Actuation

	debug, state := s.controller.Initialize(in.Instructions)
	if !emit(record(pose, act, debug, state)) {
		return nil
	}

	for tick := 0; !bounded || tick < budget; tick++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		step := s.controller.Step(in.DeltaTime.Duration, Readback{
			Pose:      pose,
			Physical:  in.Physical,
			Actuation: act,
		})
		u := step.Actuation.Clamped()
		next := s.integrator.Step(dyn, pose, u, dt)

		t := float64(tick+1) * dt
		if !next.IsValid() {
			return &SimError{Tick: tick + 1, Time: t, Wrapped: ErrInvalidState}
		}

		tr := Transition{Tick: tick + 1, Time: t, From: pose, To: next, Actuation: u}
		for _, m := range s.metrics {
			m.Observe(tr)
		}
		for _, obs := range s.observers {
			obs.OnStep(tr, step.Debug)
		}

		pose, act = next, u
		if !emit(record(pose, act, step.Debug, step.State)) {
			return nil
		}

		// a controller cannot cut a bounded run short
		if !bounded && step.End {
			break
		}
	}
	return nil
}

func record[D any](p robot.Pose, u robot.Actuation, debug telemetry.Debug, state D) Record[D] {
	return Record[D]{
		RobotX:     p.X,
		RobotY:     p.Y,
		RobotTheta: p.Theta,
		BladeOn:    u.BladeOn,
		MotorLeft:  u.MotorLeft,
		MotorRight: u.MotorRight,
		Debug:      debug,
		Control:    state,
	}
}
