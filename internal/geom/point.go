package geom

import (
	"encoding/json"
	"fmt"

	"github.com/golang/geo/r2"
	"gopkg.in/yaml.v3"
)

// Point is a world-frame position in meters. On the wire it is a two element
// array [x, y].
type Point r2.Point

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Vec converts to the r2 vector the arithmetic below delegates to.
func (p Point) Vec() r2.Point { return r2.Point(p) }

// Vector arithmetic. Dist is the Euclidean distance between two points and
// Equal compares coordinates exactly.
func (p Point) Add(q Point) Point    { return Point(p.Vec().Add(q.Vec())) }
func (p Point) Sub(q Point) Point    { return Point(p.Vec().Sub(q.Vec())) }
func (p Point) Mul(f float64) Point  { return Point(p.Vec().Mul(f)) }
func (p Point) Norm() float64        { return p.Vec().Norm() }
func (p Point) Dist(q Point) float64 { return p.Sub(q).Norm() }
func (p Point) Equal(q Point) bool   { return p.X == q.X && p.Y == q.Y }

func (p Point) String() string { return fmt.Sprintf("(%g, %g)", p.X, p.Y) }

// Tuple is the [x, y] wire form.
func (p Point) Tuple() [2]float64 { return [2]float64{p.X, p.Y} }

// FromTuple is the inverse of Tuple.
func FromTuple(t [2]float64) Point { return Point{X: t[0], Y: t[1]} }

// IsFinite reports whether neither coordinate is NaN or infinite.
func (p Point) IsFinite() bool { return isFinite(p.X) && isFinite(p.Y) }

// MarshalJSON writes the point as [x, y].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Tuple())
}

// UnmarshalJSON accepts [x, y] or {"x": .., "y": ..}.
func (p *Point) UnmarshalJSON(data []byte) error {
	var t [2]float64
	if err := json.Unmarshal(data, &t); err == nil {
		*p = FromTuple(t)
		return nil
	}
	var obj struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("point: expected [x, y] or {x, y}: %w", err)
	}
	*p = Pt(obj.X, obj.Y)
	return nil
}

func (p Point) MarshalYAML() (interface{}, error) {
	return []float64{p.X, p.Y}, nil
}

// UnmarshalYAML accepts a two element sequence or an x/y mapping.
func (p *Point) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var s []float64
		if err := node.Decode(&s); err != nil {
			return err
		}
		if len(s) != 2 {
			return fmt.Errorf("line %d: point needs 2 coordinates, got %d", node.Line, len(s))
		}
		*p = Pt(s[0], s[1])
		return nil
	case yaml.MappingNode:
		var obj struct {
			X float64 `yaml:"x"`
			Y float64 `yaml:"y"`
		}
		if err := node.Decode(&obj); err != nil {
			return err
		}
		*p = Pt(obj.X, obj.Y)
		return nil
	}
	return fmt.Errorf("line %d: point must be [x, y] or {x, y}", node.Line)
}
