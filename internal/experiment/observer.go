package experiment

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/mowsim/internal/sim"
	"github.com/san-kum/mowsim/internal/telemetry"
)

const progressEvery = 100

// progress logs the pose every few ticks at debug level.
type progress struct {
	logger *zap.SugaredLogger
	every  int
}

func (p progress) OnStep(tr sim.Transition, debug telemetry.Debug) {
	if tr.Tick%p.every != 0 {
		return
	}
	p.logger.Debugw("tick",
		"tick", tr.Tick,
		"t", tr.Time,
		"x", tr.To.X,
		"y", tr.To.Y,
		"theta", tr.To.Theta,
		"left", tr.Actuation.MotorLeft,
		"right", tr.Actuation.MotorRight,
		"messages", len(debug.Messages))
}

func debugEnabled(l *zap.SugaredLogger) bool {
	return l.Desugar().Core().Enabled(zapcore.DebugLevel)
}
