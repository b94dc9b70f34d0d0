package robot

import (
	"fmt"

	"github.com/san-kum/mowsim/internal/geom"
)

type Kind int

const (
	BladeOn Kind = iota
	BladeOff
	GotoPoint
	Line
	CubicBezier
)

var kindNames = [...]string{
	BladeOn:     "BladeOn",
	BladeOff:    "BladeOff",
	GotoPoint:   "GotoPoint",
	Line:        "Line",
	CubicBezier: "CubicBezier",
}

// pointCount is the number of points each kind carries.
var pointCount = [...]int{
	BladeOn:     0,
	BladeOff:    0,
	GotoPoint:   1,
	Line:        2,
	CubicBezier: 4,
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

func (k Kind) valid() bool { return k >= 0 && int(k) < len(kindNames) }

func parseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown instruction %q", name)
}

// Instruction is one motion command of a script. It is a small value type:
// the kind tag selects how many of the points are meaningful.
type Instruction struct {
	kind Kind
	pts  [4]geom.Point
}

func NewBladeOn() Instruction  { return Instruction{kind: BladeOn} }
func NewBladeOff() Instruction { return Instruction{kind: BladeOff} }

func NewGotoPoint(x, y float64) Instruction {
	return Instruction{kind: GotoPoint, pts: [4]geom.Point{geom.Pt(x, y)}}
}

func NewLine(start, end geom.Point) Instruction {
	return Instruction{kind: Line, pts: [4]geom.Point{start, end}}
}

func NewCubicBezier(p0, p1, p2, p3 geom.Point) Instruction {
	return Instruction{kind: CubicBezier, pts: [4]geom.Point{p0, p1, p2, p3}}
}

func (i Instruction) Kind() Kind { return i.kind }

// Points returns the control points carried by the instruction, in order.
func (i Instruction) Points() []geom.Point {
	n := pointCount[i.kind]
	out := make([]geom.Point, n)
	copy(out, i.pts[:n])
	return out
}

// IsMotion reports whether the instruction expands into waypoints.
func (i Instruction) IsMotion() bool { return pointCount[i.kind] > 0 }

// Waypoints expands the instruction into the ordered targets the robot must
// visit. Béziers are sampled at bezierSteps equally spaced parameters,
// excluding t = 1.
func (i Instruction) Waypoints(bezierSteps int) []geom.Point {
	switch i.kind {
	case GotoPoint, Line:
		return i.Points()
	case CubicBezier:
		return geom.SampleCubicBezier(i.pts[0], i.pts[1], i.pts[2], i.pts[3], bezierSteps)
	}
	return nil
}

func (i Instruction) String() string {
	switch i.kind {
	case GotoPoint:
		return fmt.Sprintf("GotoPoint(%g, %g)", i.pts[0].X, i.pts[0].Y)
	case Line:
		return fmt.Sprintf("Line(%v -> %v)", i.pts[0], i.pts[1])
	case CubicBezier:
		return fmt.Sprintf("CubicBezier(%v, %v, %v, %v)", i.pts[0], i.pts[1], i.pts[2], i.pts[3])
	}
	return i.kind.String()
}

// Validate reports non-finite coordinates.
func (i Instruction) Validate() error {
	if !i.kind.valid() {
		return fmt.Errorf("invalid instruction kind %d", int(i.kind))
	}
	for n, p := range i.pts[:pointCount[i.kind]] {
		if !p.IsFinite() {
			return fmt.Errorf("%s: point %d is not finite", i.kind, n)
		}
	}
	return nil
}
