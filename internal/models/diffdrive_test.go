package models

import (
	"math"
	"testing"

	"github.com/san-kum/mowsim/internal/robot"
)

func TestDiffDriveAtRest(t *testing.T) {
	d := NewDiffDrive(robot.DefaultPhysical())

	dx := d.Derivative(robot.Pose{X: 3, Y: -1, Theta: 1.2}, robot.Actuation{})

	if dx != (robot.Pose{}) {
		t.Errorf("expected zero derivative with motors off, got %+v", dx)
	}
}

func TestDiffDriveStraight(t *testing.T) {
	p := robot.DefaultPhysical()
	d := NewDiffDrive(p)

	dx := d.Derivative(robot.Pose{}, robot.Actuation{MotorLeft: 1, MotorRight: 1})

	expected := p.WheelRadius * p.MaxMotorSpeed
	if math.Abs(dx.X-expected) > 1e-12 {
		t.Errorf("expected dx/dt %f, got %f", expected, dx.X)
	}
	if dx.Y != 0 || dx.Theta != 0 {
		t.Errorf("expected no lateral or angular rate, got %+v", dx)
	}
}

func TestDiffDriveHeading(t *testing.T) {
	d := NewDiffDrive(robot.DefaultPhysical())
	u := robot.Actuation{MotorLeft: 0.5, MotorRight: 0.5}

	dx := d.Derivative(robot.Pose{Theta: math.Pi / 2}, u)

	if math.Abs(dx.X) > 1e-12 {
		t.Errorf("expected no x motion facing +y, got %f", dx.X)
	}
	if dx.Y <= 0 {
		t.Errorf("expected positive y rate, got %f", dx.Y)
	}
}

func TestDiffDriveSpinInPlace(t *testing.T) {
	p := robot.DefaultPhysical()
	d := NewDiffDrive(p)

	dx := d.Derivative(robot.Pose{}, robot.Actuation{MotorLeft: -1, MotorRight: 1})

	expected := p.WheelRadius / p.WheelDistance * 2 * p.MaxMotorSpeed
	if math.Abs(dx.Theta-expected) > 1e-12 {
		t.Errorf("expected yaw rate %f, got %f", expected, dx.Theta)
	}
	if dx.X != 0 || dx.Y != 0 {
		t.Errorf("expected no translation, got %+v", dx)
	}

	lin, ang := d.Velocities(robot.Actuation{MotorLeft: -1, MotorRight: 1})
	if lin != 0 || ang != dx.Theta {
		t.Errorf("expected velocities (0, %f), got (%f, %f)", dx.Theta, lin, ang)
	}
}
