package controllers

import "time"

// Steering turns heading error and distance to the current waypoint into
// motor powers. It is only consulted while a waypoint is active.
type Steering interface {
	Steer(errAngle, distance float64, dt time.Duration) (left, right float64)
	// Retarget is called whenever the active waypoint changes.
	Retarget()
}

// Proportional spins in place while the heading error is large, then drives
// forward with a correction proportional to the error.
type Proportional struct {
	Params
}

func (s Proportional) Steer(errAngle, distance float64, _ time.Duration) (left, right float64) {
	if s.Turning(errAngle) {
		p := s.TurnPower(errAngle)
		return -p, p
	}
	fwd := s.ForwardPower(distance)
	return -errAngle*s.CorrectionGain + fwd, errAngle*s.CorrectionGain + fwd
}

func (Proportional) Retarget() {}

// PIDSteering replaces the proportional correction with a PID loop on the
// heading error. Turning in place is unchanged.
type PIDSteering struct {
	Params
	PID *PID
}

func (s *PIDSteering) Steer(errAngle, distance float64, dt time.Duration) (left, right float64) {
	if s.Turning(errAngle) {
		s.PID.Reset()
		p := s.TurnPower(errAngle)
		return -p, p
	}
	c := s.PID.Update(errAngle, dt)
	fwd := s.ForwardPower(distance)
	return -c + fwd, c + fwd
}

func (s *PIDSteering) Retarget() { s.PID.Reset() }
