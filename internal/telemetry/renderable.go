package telemetry

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/san-kum/mowsim/internal/geom"
)

type Color struct{ R, G, B uint8 }

var (
	Red   = Color{255, 0, 0}
	Green = Color{0, 255, 0}
	Blue  = Color{0, 0, 255}
)

func (c Color) String() string { return fmt.Sprintf("(%d, %d, %d)", c.R, c.G, c.B) }

// Renderable is a shape a viewer may draw on top of the world.
type Renderable interface {
	String() string
}

type LineShape struct {
	From, To geom.Point
	Width    float64
	Color    Color
}

type CircleShape struct {
	Center geom.Point
	Radius float64
	Color  Color
}

func Line(from, to geom.Point, width float64, c Color) LineShape {
	return LineShape{From: from, To: to, Width: width, Color: c}
}

func Circle(center geom.Point, radius float64, c Color) CircleShape {
	return CircleShape{Center: center, Radius: radius, Color: c}
}

func (l LineShape) String() string {
	return fmt.Sprintf("Line(%s, %s, %s, %s)", tuple(l.From), tuple(l.To), num(l.Width), l.Color)
}

func (c CircleShape) String() string {
	return fmt.Sprintf("Circle(%s, %s, %s)", tuple(c.Center), num(c.Radius), c.Color)
}

// tuple prints a point as (x, y) with every coordinate carrying a decimal
// point, the format downstream viewers evaluate.
func tuple(p geom.Point) string {
	return "(" + decimal(p.X) + ", " + decimal(p.Y) + ")"
}

func decimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var (
	numberRe = regexp.MustCompile(`-?[0-9]+(?:\.[0-9]+)?(?:[eE][-+]?[0-9]+)?`)
)

// Parse reads back a descriptor produced by LineShape or CircleShape.
func Parse(s string) (Renderable, error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return nil, fmt.Errorf("renderable %q: malformed", s)
	}

	raw := numberRe.FindAllString(s[open:], -1)
	nums := make([]float64, len(raw))
	for i, r := range raw {
		v, err := strconv.ParseFloat(r, 64)
		if err != nil {
			return nil, fmt.Errorf("renderable %q: %w", s, err)
		}
		nums[i] = v
	}

	switch name := s[:open]; name {
	case "Line":
		if len(nums) != 8 {
			return nil, fmt.Errorf("renderable %q: line needs 8 numbers, got %d", s, len(nums))
		}
		return Line(geom.Pt(nums[0], nums[1]), geom.Pt(nums[2], nums[3]), nums[4], color(nums[5:])), nil
	case "Circle":
		if len(nums) != 6 {
			return nil, fmt.Errorf("renderable %q: circle needs 6 numbers, got %d", s, len(nums))
		}
		return Circle(geom.Pt(nums[0], nums[1]), nums[2], color(nums[3:])), nil
	default:
		return nil, fmt.Errorf("renderable %q: unknown shape %q", s, name)
	}
}

func color(v []float64) Color {
	return Color{uint8(geom.Clamp(v[0], 0, 255)), uint8(geom.Clamp(v[1], 0, 255)), uint8(geom.Clamp(v[2], 0, 255))}
}
