package viz

import (
	"math"
	"strings"

	"github.com/san-kum/mowsim/internal/geom"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
const brailleBlank = 0x2800

var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Dots is the canvas size in sub-pixels.
func (c *Canvas) Dots() (int, int) { return c.Width * 2, c.Height * 4 }

// Set lights a dot at (x, y) in sub-pixel coordinates. Out of range dots are
// dropped.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawCircle plots a circle outline; radius is in dots.
func (c *Canvas) DrawCircle(cx, cy, r int) {
	if r <= 0 {
		c.Set(cx, cy)
		return
	}
	n := 8 * r
	px, py := cx+r, cy
	for i := 1; i <= n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		x := cx + int(math.Round(float64(r)*math.Cos(a)))
		y := cy + int(math.Round(float64(r)*math.Sin(a)))
		c.DrawLine(px, py, x, y)
		px, py = x, y
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Viewport maps world metres onto canvas dots with a uniform scale, y up.
type Viewport struct {
	Min, Max geom.Point
	dotsW    int
	dotsH    int
	scale    float64
	offX     float64
	offY     float64
}

// FitViewport frames every point with a margin of the given fraction.
func FitViewport(c *Canvas, pts []geom.Point, margin float64) Viewport {
	min, max := geom.Pt(-1, -1), geom.Pt(1, 1)
	if len(pts) > 0 {
		min, max = pts[0], pts[0]
		for _, p := range pts[1:] {
			min = geom.Pt(math.Min(min.X, p.X), math.Min(min.Y, p.Y))
			max = geom.Pt(math.Max(max.X, p.X), math.Max(max.Y, p.Y))
		}
	}
	span := math.Max(max.X-min.X, max.Y-min.Y)
	if span < 1 {
		span = 1
	}
	pad := span * margin
	min = geom.Pt(min.X-pad, min.Y-pad)
	max = geom.Pt(max.X+pad, max.Y+pad)

	w, h := c.Dots()
	v := Viewport{Min: min, Max: max, dotsW: w, dotsH: h}
	sx := float64(w-1) / (max.X - min.X)
	sy := float64(h-1) / (max.Y - min.Y)
	v.scale = math.Min(sx, sy)
	// centre the shorter axis
	v.offX = (float64(w-1) - v.scale*(max.X-min.X)) / 2
	v.offY = (float64(h-1) - v.scale*(max.Y-min.Y)) / 2
	return v
}

func (v Viewport) Project(p geom.Point) (int, int) {
	x := v.offX + (p.X-v.Min.X)*v.scale
	y := float64(v.dotsH-1) - v.offY - (p.Y-v.Min.Y)*v.scale
	return int(math.Round(x)), int(math.Round(y))
}

// Dots converts a world length to dots.
func (v Viewport) Dots(metres float64) int {
	return int(math.Round(metres * v.scale))
}

func (v Viewport) Line(c *Canvas, a, b geom.Point) {
	x0, y0 := v.Project(a)
	x1, y1 := v.Project(b)
	c.DrawLine(x0, y0, x1, y1)
}

func (v Viewport) Path(c *Canvas, pts []geom.Point) {
	for i := 1; i < len(pts); i++ {
		v.Line(c, pts[i-1], pts[i])
	}
}
