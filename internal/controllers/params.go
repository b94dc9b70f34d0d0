package controllers

import (
	"fmt"
	"math"

	"github.com/san-kum/mowsim/internal/geom"
	"go.uber.org/multierr"
)

// Params are the tuning constants of the waypoint controller.
type Params struct {
	// heading error (radians) above which the robot spins in place
	TurnThreshold float64 `json:"turn_threshold" yaml:"turn_threshold"`
	TurnExponent  float64 `json:"turn_exponent" yaml:"turn_exponent"`
	TurnDivisor   float64 `json:"turn_divisor" yaml:"turn_divisor"`
	// distance (m) at which forward power saturates
	ForwardSaturation float64 `json:"forward_saturation" yaml:"forward_saturation"`
	CorrectionGain    float64 `json:"correction_gain" yaml:"correction_gain"`
	// a waypoint closer than this (m) counts as reached
	ReachDistance float64 `json:"reach_distance" yaml:"reach_distance"`
	BezierSteps   int     `json:"bezier_steps" yaml:"bezier_steps"`
}

func DefaultParams() Params {
	return Params{
		TurnThreshold:     geom.Radians(5),
		TurnExponent:      0.7,
		TurnDivisor:       1.5,
		ForwardSaturation: 2.0,
		CorrectionGain:    4.0,
		ReachDistance:     0.1,
		BezierSteps:       100,
	}
}

func (p Params) Validate() error {
	var err error
	if p.TurnThreshold < 0 || p.TurnThreshold > math.Pi {
		err = multierr.Append(err, fmt.Errorf("turn_threshold must be in [0, pi], got %g", p.TurnThreshold))
	}
	if p.TurnExponent <= 0 {
		err = multierr.Append(err, fmt.Errorf("turn_exponent must be positive, got %g", p.TurnExponent))
	}
	if p.TurnDivisor <= 0 {
		err = multierr.Append(err, fmt.Errorf("turn_divisor must be positive, got %g", p.TurnDivisor))
	}
	if p.ForwardSaturation <= 0 {
		err = multierr.Append(err, fmt.Errorf("forward_saturation must be positive, got %g", p.ForwardSaturation))
	}
	if p.ReachDistance <= 0 {
		err = multierr.Append(err, fmt.Errorf("reach_distance must be positive, got %g", p.ReachDistance))
	}
	if p.BezierSteps < 1 {
		err = multierr.Append(err, fmt.Errorf("bezier_steps must be at least 1, got %d", p.BezierSteps))
	}
	return err
}

// Turning reports whether the error is large enough to spin in place.
func (p Params) Turning(errAngle float64) bool {
	return math.Abs(errAngle) > p.TurnThreshold
}

// TurnPower is the in-place rotation power: positive turns left.
func (p Params) TurnPower(errAngle float64) float64 {
	mag := math.Pow(math.Min(math.Abs(errAngle), 1), p.TurnExponent) / p.TurnDivisor
	return math.Copysign(mag, errAngle)
}

// ForwardPower slows the robot down on the last ForwardSaturation meters.
func (p Params) ForwardPower(distance float64) float64 {
	return math.Sqrt(math.Min(distance, p.ForwardSaturation) / p.ForwardSaturation)
}
