package integrators

import (
	"github.com/san-kum/mowsim/internal/robot"
	"github.com/san-kum/mowsim/internal/sim"
)

// RK4 holds the command constant over the tick and samples the heading four
// times, which follows arcs much more closely than Euler at large dt.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(dyn sim.Dynamics, p robot.Pose, u robot.Actuation, dt float64) robot.Pose {
	k1 := dyn.Derivative(p, u)
	k2 := dyn.Derivative(advance(p, k1, dt*0.5), u)
	k3 := dyn.Derivative(advance(p, k2, dt*0.5), u)
	k4 := dyn.Derivative(advance(p, k3, dt), u)

	dt6 := dt / 6.0
	return robot.Pose{
		X:     p.X + dt6*(k1.X+2*k2.X+2*k3.X+k4.X),
		Y:     p.Y + dt6*(k1.Y+2*k2.Y+2*k3.Y+k4.Y),
		Theta: p.Theta + dt6*(k1.Theta+2*k2.Theta+2*k3.Theta+k4.Theta),
	}
}
