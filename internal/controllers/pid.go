package controllers

import "time"

// PID is a textbook PID loop on a scalar error. The first update has no
// derivative term.
type PID struct {
	Kp       float64
	Ki       float64
	Kd       float64
	integral float64
	prevErr  float64
	first    bool
}

func NewPID(kp, ki, kd float64) *PID {
	return &PID{
		Kp:    kp,
		Ki:    ki,
		Kd:    kd,
		first: true,
	}
}

func (p *PID) Update(err float64, dt time.Duration) float64 {
	if p.first {
		p.prevErr = err
		p.first = false
		return p.Kp * err
	}

	h := dt.Seconds()
	if h <= 0 {
		return p.Kp * err
	}
	p.integral += err * h
	derivative := (err - p.prevErr) / h
	p.prevErr = err

	return p.Kp*err + p.Ki*p.integral + p.Kd*derivative
}

func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.first = true
}
