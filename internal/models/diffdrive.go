// Package models holds the plant models the simulator can integrate.
package models

import (
	"math"

	"github.com/san-kum/mowsim/internal/robot"
)

// DiffDrive is a differential-drive base with two independently powered
// wheels on a common axle.
type DiffDrive struct {
	WheelRadius   float64
	WheelDistance float64
	MaxMotorSpeed float64
}

func NewDiffDrive(p robot.Physical) *DiffDrive {
	return &DiffDrive{
		WheelRadius:   p.WheelRadius,
		WheelDistance: p.WheelDistance,
		MaxMotorSpeed: p.MaxMotorSpeed,
	}
}

// WheelSpeeds maps normalized motor power to wheel angular speed in rad/s.
func (d *DiffDrive) WheelSpeeds(u robot.Actuation) (left, right float64) {
	return u.MotorLeft * d.MaxMotorSpeed, u.MotorRight * d.MaxMotorSpeed
}

// Derivative returns (dx/dt, dy/dt, dθ/dt). Heading is taken as is, so the
// rate of θ accumulates without wrapping.
func (d *DiffDrive) Derivative(p robot.Pose, u robot.Actuation) robot.Pose {
	left, right := d.WheelSpeeds(u)
	v := d.WheelRadius / 2 * (left + right)
	return robot.Pose{
		X:     v * math.Cos(p.Theta),
		Y:     v * math.Sin(p.Theta),
		Theta: d.WheelRadius / d.WheelDistance * (right - left),
	}
}

// Velocities returns the body-frame forward speed (m/s) and yaw rate (rad/s).
func (d *DiffDrive) Velocities(u robot.Actuation) (linear, angular float64) {
	left, right := d.WheelSpeeds(u)
	return d.WheelRadius / 2 * (left + right), d.WheelRadius / d.WheelDistance * (right - left)
}
