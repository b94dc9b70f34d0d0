package metrics

import (
	"math"

	"github.com/san-kum/mowsim/internal/sim"
)

// effort accumulates a per-tick score of the clamped motor command and
// reports its mean over ticks.
type effort struct {
	name  string
	score func(left, right float64) float64
	sum   float64
	ticks int
}

func (e *effort) Name() string { return e.name }

func (e *effort) Observe(tr sim.Transition) {
	e.sum += e.score(tr.Actuation.MotorLeft, tr.Actuation.MotorRight)
	e.ticks++
}

func (e *effort) Value() float64 {
	if e.ticks == 0 {
		return 0
	}
	return e.sum / float64(e.ticks)
}

func (e *effort) Reset() {
	e.sum = 0
	e.ticks = 0
}

// NewControlEffort is the mean absolute motor power over both wheels.
func NewControlEffort() sim.Metric {
	return &effort{
		name: "control_effort",
		score: func(l, r float64) float64 {
			return (math.Abs(l) + math.Abs(r)) / 2
		},
	}
}

// NewSaturation is the fraction of ticks with at least one motor at full
// power, where the controller has no headroom left.
func NewSaturation() sim.Metric {
	return &effort{
		name: "saturation",
		score: func(l, r float64) float64 {
			if math.Abs(l) >= 1 || math.Abs(r) >= 1 {
				return 1
			}
			return 0
		},
	}
}
