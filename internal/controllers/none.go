package controllers

import (
	"time"

	"github.com/san-kum/mowsim/internal/robot"
	"github.com/san-kum/mowsim/internal/sim"
	"github.com/san-kum/mowsim/internal/telemetry"
)

// None leaves the motors off and asks to stop on the first tick.
type None struct{}

func NewNone() *None {
	return &None{}
}

func (n *None) Initialize([]robot.Instruction) (telemetry.Debug, struct{}) {
	return telemetry.New(), struct{}{}
}

func (n *None) Step(time.Duration, sim.Readback) sim.Step[struct{}] {
	return sim.Step[struct{}]{
		Actuation: robot.Actuation{},
		End:       true,
		Debug:     telemetry.New(),
	}
}
