package robot

import (
	"math"

	"github.com/san-kum/mowsim/internal/geom"
)

const (
	DefaultWheelDistance = 0.65
	DefaultWheelRadius   = 0.20
	// 300 rpm
	DefaultMaxMotorSpeed = 5 * 2 * math.Pi
	DefaultBladeRadius   = 0.25
)

// Pose is the robot position in meters and heading in radians. Heading is
// never normalized; it accumulates across full turns.
type Pose struct {
	X     float64 `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`
	Theta float64 `json:"theta" yaml:"theta"`
}

func (p Pose) Position() geom.Point { return geom.Pt(p.X, p.Y) }

func (p Pose) IsValid() bool {
	for _, v := range [...]float64{p.X, p.Y, p.Theta} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Physical holds the read-only constants of the drive train.
type Physical struct {
	// meters between the two wheel contact points
	WheelDistance float64 `json:"wheel_distance" yaml:"wheel_distance"`
	// meters
	WheelRadius float64 `json:"wheel_radius" yaml:"wheel_radius"`
	// radians/second at full motor power
	MaxMotorSpeed float64 `json:"max_motor_speed" yaml:"max_motor_speed"`
	// meters, only used for coverage metrics and rendering
	BladeRadius float64 `json:"blade_radius" yaml:"blade_radius"`
}

func DefaultPhysical() Physical {
	return Physical{
		WheelDistance: DefaultWheelDistance,
		WheelRadius:   DefaultWheelRadius,
		MaxMotorSpeed: DefaultMaxMotorSpeed,
		BladeRadius:   DefaultBladeRadius,
	}
}

// Actuation is what the controller asks of the hardware for one tick.
type Actuation struct {
	MotorLeft  float64 `json:"motor_left"`
	MotorRight float64 `json:"motor_right"`
	BladeOn    bool    `json:"blade_on"`
}

// Clamped returns a copy with both motor powers limited to [-1, 1].
func (a Actuation) Clamped() Actuation {
	a.MotorLeft = geom.Clamp(a.MotorLeft, -1, 1)
	a.MotorRight = geom.Clamp(a.MotorRight, -1, 1)
	return a
}
