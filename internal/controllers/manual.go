package controllers

import (
	"time"

	"github.com/san-kum/mowsim/internal/robot"
	"github.com/san-kum/mowsim/internal/sim"
	"github.com/san-kum/mowsim/internal/telemetry"
)

// Manual drives both motors at fixed powers. It still consumes the script one
// instruction per tick so that an Indefinite run ends once it is drained; blade
// commands are applied, motion commands only advance the queue.
type Manual struct {
	Left, Right float64

	queue []robot.Instruction
}

func NewManual(left, right float64) *Manual {
	return &Manual{Left: left, Right: right}
}

func (m *Manual) Initialize(instructions []robot.Instruction) (telemetry.Debug, int) {
	m.queue = append([]robot.Instruction(nil), instructions...)
	debug := telemetry.New()
	debug.Logf("Manual drive: left %+.2f, right %+.2f", m.Left, m.Right)
	return debug, len(m.queue)
}

// Step records the number of instructions still queued as its state.
func (m *Manual) Step(_ time.Duration, in sim.Readback) sim.Step[int] {
	debug := telemetry.New()
	u := in.Actuation
	u.MotorLeft, u.MotorRight = m.Left, m.Right

	if len(m.queue) == 0 {
		debug.Logf("No instructions remaining")
		return sim.Step[int]{Actuation: u, End: true, Debug: debug}
	}
	instr := m.queue[0]
	m.queue = m.queue[1:]
	switch instr.Kind() {
	case robot.BladeOn:
		u.BladeOn = true
	case robot.BladeOff:
		u.BladeOn = false
	}
	debug.Logf("Skipped %s", instr)
	return sim.Step[int]{Actuation: u, Debug: debug, State: len(m.queue)}
}
