package geom

import "math"

// CubicBezier evaluates the curve defined by control points p0..p3 at t.
func CubicBezier(p0, p1, p2, p3 Point, t float64) Point {
	o := 1 - t
	a := p0.Vec().Mul(o * o * o)
	b := p1.Vec().Mul(3 * o * o * t)
	c := p2.Vec().Mul(3 * o * t * t)
	d := p3.Vec().Mul(t * t * t)
	return Point(a.Add(b).Add(c).Add(d))
}

// SampleCubicBezier returns n points at t = i/n for i in [0, n). The end point
// t = 1 is left out so the last sample never duplicates the next segment's
// start.
func SampleCubicBezier(p0, p1, p2, p3 Point, n int) []Point {
	if n <= 0 {
		return nil
	}
	pts := make([]Point, n)
	for i := range pts {
		pts[i] = CubicBezier(p0, p1, p2, p3, float64(i)/float64(n))
	}
	return pts
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
