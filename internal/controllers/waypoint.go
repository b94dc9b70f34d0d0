package controllers

import (
	"math"
	"time"

	"github.com/san-kum/mowsim/internal/geom"
	"github.com/san-kum/mowsim/internal/robot"
	"github.com/san-kum/mowsim/internal/sim"
	"github.com/san-kum/mowsim/internal/telemetry"
)

// Waypoint interprets an instruction script: blade commands toggle the blade,
// motion commands expand into waypoints that are visited one after another.
type Waypoint struct {
	Params
	steering Steering

	queue          []robot.Instruction
	state          State
	stepsSinceIdle int
}

func NewWaypoint(p Params) *Waypoint {
	return &Waypoint{Params: p, steering: Proportional{Params: p}}
}

// NewPIDWaypoint drives with a PID heading correction instead of the fixed
// proportional gain.
func NewPIDWaypoint(p Params, pid *PID) *Waypoint {
	return &Waypoint{Params: p, steering: &PIDSteering{Params: p, PID: pid}}
}

func (w *Waypoint) Initialize(instructions []robot.Instruction) (telemetry.Debug, State) {
	w.queue = append([]robot.Instruction(nil), instructions...)
	w.state = IdleState()
	w.stepsSinceIdle = 0

	debug := telemetry.New()
	debug.Logf("Robot Initialized")
	return debug, w.state
}

// Remaining is the number of instructions not yet started.
func (w *Waypoint) Remaining() int { return len(w.queue) }

func (w *Waypoint) Step(dt time.Duration, in sim.Readback) sim.Step[State] {
	debug := telemetry.New()
	u := in.Actuation

	if w.state.Kind == Idle {
		w.stepsSinceIdle = 0
		u.MotorLeft, u.MotorRight = 0, 0

		if len(w.queue) == 0 {
			debug.Logf("No instructions remaining")
			return sim.Step[State]{Actuation: u, End: true, Debug: debug, State: w.state}
		}
		w.state = w.begin(w.queue[0])
		w.queue = w.queue[1:]
	} else {
		w.stepsSinceIdle++
	}
	debug.Logf("Steps since last idle: %d", w.stepsSinceIdle)

	switch w.state.Kind {
	case SetBlade:
		u.BladeOn = w.state.Blade
		w.state = IdleState()
	case GotoPoints:
		u = w.gotoPoints(dt, in, u, &debug)
	}

	return sim.Step[State]{Actuation: u, Debug: debug, State: w.state}
}

func (w *Waypoint) begin(instr robot.Instruction) State {
	switch instr.Kind() {
	case robot.BladeOn:
		return SetBladeState(true)
	case robot.BladeOff:
		return SetBladeState(false)
	}
	w.steering.Retarget()
	return GotoPointsState(instr.Waypoints(w.BezierSteps))
}

// gotoPoints steers toward the front waypoint. The waypoint slice is only
// ever resliced, so the snapshots handed out in earlier steps stay valid.
func (w *Waypoint) gotoPoints(dt time.Duration, in sim.Readback, u robot.Actuation, debug *telemetry.Debug) robot.Actuation {
	if len(w.state.Points) == 0 {
		w.state = IdleState()
		return u
	}

	target := w.state.Points[0]
	pos := in.Pose.Position()
	delta := target.Sub(pos)
	distance := delta.Norm()
	errAngle := geom.SignedAngleDifference(in.Pose.Theta, math.Atan2(delta.Y, delta.X))

	u.MotorLeft, u.MotorRight = w.steering.Steer(errAngle, distance, dt)

	if distance < w.ReachDistance {
		w.state.Points = w.state.Points[1:]
		w.steering.Retarget()
	}

	debug.Draw(telemetry.Line(target, pos, 4, telemetry.Red))
	debug.Logf("Robot Position: (%.3f, %.3f)", pos.X, pos.Y)
	debug.Logf("Robot Angle: %.1f", geom.Degrees(in.Pose.Theta))
	debug.Logf("Target point: (%.2f, %.2f)", target.X, target.Y)
	debug.Logf("Distance to target: %.4f", distance)
	debug.Logf("Angle error to target: %.1f", geom.Degrees(errAngle))
	debug.Logf("Left Motor Power: %+5.2f", u.MotorLeft)
	debug.Logf("Right Motor Power: %+5.2f", u.MotorRight)
	return u
}
