package geom

import (
	"cmp"
	"math"
)

// Clamp limits x to [lo, hi]. Values that do not compare (NaN) pass through.
func Clamp[T cmp.Ordered](x, lo, hi T) T {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Lerp maps t in [0, 1] onto [lo, hi].
func Lerp(t, lo, hi float64) float64 {
	return t*(hi-lo) + lo
}

// InvLerp is the inverse of Lerp: where x sits inside [lo, hi] as a fraction.
func InvLerp(x, lo, hi float64) float64 {
	return (x - lo) / (hi - lo)
}

// MapRange re-projects x from [inLo, inHi] onto [outLo, outHi].
func MapRange(x, inLo, inHi, outLo, outHi float64) float64 {
	return Lerp(InvLerp(x, inLo, inHi), outLo, outHi)
}

// SignedAngleDifference returns the rotation in radians that takes heading
// source onto heading target, in the range (-π, π].
func SignedAngleDifference(source, target float64) float64 {
	const tau = 2 * math.Pi

	r := math.Mod(target-source+math.Pi, tau)
	if r < 0 {
		r += tau
	}
	d := r - math.Pi
	if d <= -math.Pi {
		d += tau
	}
	return d
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}
