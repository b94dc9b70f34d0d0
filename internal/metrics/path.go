package metrics

import (
	"math"

	"github.com/san-kum/mowsim/internal/sim"
)

// PathLength is the distance travelled, in meters.
type PathLength struct {
	total float64
}

func NewPathLength() *PathLength { return &PathLength{} }

func (p *PathLength) Name() string { return "path_length" }

func (p *PathLength) Observe(tr sim.Transition) {
	p.total += tr.From.Position().Dist(tr.To.Position())
}

func (p *PathLength) Value() float64 { return p.total }
func (p *PathLength) Reset()         { p.total = 0 }

// CutLength only counts distance travelled with the blade spinning.
type CutLength struct {
	total float64
}

func NewCutLength() *CutLength { return &CutLength{} }

func (c *CutLength) Name() string { return "cut_length" }

func (c *CutLength) Observe(tr sim.Transition) {
	if tr.Actuation.BladeOn {
		c.total += tr.From.Position().Dist(tr.To.Position())
	}
}

func (c *CutLength) Value() float64 { return c.total }
func (c *CutLength) Reset()         { c.total = 0 }

// Rotation is the total heading change in radians, regardless of direction.
type Rotation struct {
	total float64
}

func NewRotation() *Rotation { return &Rotation{} }

func (r *Rotation) Name() string { return "rotation" }

func (r *Rotation) Observe(tr sim.Transition) {
	r.total += math.Abs(tr.To.Theta - tr.From.Theta)
}

func (r *Rotation) Value() float64 { return r.total }
func (r *Rotation) Reset()         { r.total = 0 }

// BladeTime is the simulated time, in seconds, spent with the blade on.
type BladeTime struct {
	lastT   float64
	seconds float64
}

func NewBladeTime() *BladeTime { return &BladeTime{} }

func (b *BladeTime) Name() string { return "blade_time" }

func (b *BladeTime) Observe(tr sim.Transition) {
	if tr.Actuation.BladeOn {
		b.seconds += tr.Time - b.lastT
	}
	b.lastT = tr.Time
}

func (b *BladeTime) Value() float64 { return b.seconds }

func (b *BladeTime) Reset() {
	b.lastT = 0
	b.seconds = 0
}

// Default is the set every run reports.
func Default() []sim.Metric {
	return []sim.Metric{
		NewPathLength(),
		NewCutLength(),
		NewControlEffort(),
		NewSaturation(),
		NewRotation(),
		NewBladeTime(),
	}
}
