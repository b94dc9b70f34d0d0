package sim

import (
	"time"

	"github.com/san-kum/mowsim/internal/robot"
	"github.com/san-kum/mowsim/internal/telemetry"
)

// Dynamics gives the time derivative of the pose under a motor command. The
// returned Pose holds rates: m/s for X and Y, rad/s for Theta.
type Dynamics interface {
	Derivative(p robot.Pose, u robot.Actuation) robot.Pose
}

type Integrator interface {
	Step(dyn Dynamics, p robot.Pose, u robot.Actuation, dt float64) robot.Pose
}

// Readback is the controller's view of the robot at the start of a tick.
type Readback struct {
	// heading from the imu, position from gps
	Pose     robot.Pose
	Physical robot.Physical
	// last tick's clamped command; a controller that leaves it untouched
	// keeps the motors where they were
	Actuation robot.Actuation
}

// Step is everything a controller produces in one tick.
type Step[D any] struct {
	Actuation robot.Actuation
	// End asks the harness to stop; only honoured under Indefinite length.
	End   bool
	Debug telemetry.Debug
	State D
}

// Controller is a pluggable control strategy. D is the diagnostic snapshot of
// its internal state, recorded with every trace entry.
type Controller[D any] interface {
	Initialize(instructions []robot.Instruction) (telemetry.Debug, D)
	Step(dt time.Duration, in Readback) Step[D]
}

// Transition describes one integrated tick, for metrics and observers.
type Transition struct {
	Tick      int
	Time      float64
	From, To  robot.Pose
	Actuation robot.Actuation
}

type Metric interface {
	Name() string
	Observe(tr Transition)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(tr Transition, debug telemetry.Debug)
}

// Input is the fully formed description of one run.
type Input struct {
	Instructions   []robot.Instruction `json:"instructions" yaml:"instructions"`
	SimLength      Length              `json:"sim_length" yaml:"sim_length"`
	DeltaTime      Duration            `json:"delta_time" yaml:"delta_time"`
	robot.Physical `yaml:",inline"`
}

// Record is one trace entry.
type Record[D any] struct {
	RobotX     float64         `json:"robot_x"`
	RobotY     float64         `json:"robot_y"`
	RobotTheta float64         `json:"robot_theta"`
	BladeOn    bool            `json:"blade_on"`
	MotorLeft  float64         `json:"motor_left"`
	MotorRight float64         `json:"motor_right"`
	Debug      telemetry.Debug `json:"debug"`
	Control    D               `json:"control"`
}

func (r Record[D]) Pose() robot.Pose {
	return robot.Pose{X: r.RobotX, Y: r.RobotY, Theta: r.RobotTheta}
}

// Output is the full trace plus the constants needed to replay it.
type Output[D any] struct {
	States         []Record[D]        `json:"states"`
	DeltaTime      Duration           `json:"delta_time"`
	Metrics        map[string]float64 `json:"metrics,omitempty"`
	robot.Physical `yaml:",inline"`
}

// Ticks is the number of executed ticks, not counting the initial record.
func (o *Output[D]) Ticks() int {
	if len(o.States) == 0 {
		return 0
	}
	return len(o.States) - 1
}

func (o *Output[D]) Final() Record[D] {
	return o.States[len(o.States)-1]
}

// Times returns the simulated time of every record.
func (o *Output[D]) Times() []float64 {
	dt := o.DeltaTime.Seconds()
	ts := make([]float64, len(o.States))
	for i := range ts {
		ts[i] = float64(i) * dt
	}
	return ts
}

// Erase drops the concrete diagnostic type, for callers that handle several
// controllers through one code path.
func Erase[D any](o *Output[D]) *Output[any] {
	if o == nil {
		return nil
	}
	out := &Output[any]{
		States:    make([]Record[any], len(o.States)),
		DeltaTime: o.DeltaTime,
		Metrics:   o.Metrics,
		Physical:  o.Physical,
	}
	for i, r := range o.States {
		out.States[i] = Record[any]{
			RobotX:     r.RobotX,
			RobotY:     r.RobotY,
			RobotTheta: r.RobotTheta,
			BladeOn:    r.BladeOn,
			MotorLeft:  r.MotorLeft,
			MotorRight: r.MotorRight,
			Debug:      r.Debug,
			Control:    r.Control,
		}
	}
	return out
}
