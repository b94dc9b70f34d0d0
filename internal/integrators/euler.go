package integrators

import (
	"github.com/san-kum/mowsim/internal/robot"
	"github.com/san-kum/mowsim/internal/sim"
)

// Euler is forward Euler: the derivative is evaluated once, at the pose the
// tick starts from.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn sim.Dynamics, p robot.Pose, u robot.Actuation, dt float64) robot.Pose {
	return advance(p, dyn.Derivative(p, u), dt)
}

func advance(p, dp robot.Pose, dt float64) robot.Pose {
	return robot.Pose{
		X:     p.X + dt*dp.X,
		Y:     p.Y + dt*dp.Y,
		Theta: p.Theta + dt*dp.Theta,
	}
}
