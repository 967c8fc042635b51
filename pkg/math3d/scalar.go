package math3d

import "math"

// Fract returns x - floor(x), always in [0, 1).
func Fract(x float64) float64 {
	f := x - math.Floor(x)
	// x - floor(x) rounds up to 1 for tiny negative x.
	if f >= 1 {
		return 0
	}
	return f
}

// Clamp restricts x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// Mix linearly interpolates between a and b: a*(1-t) + b*t.
func Mix(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

// Step returns 0 when x < edge and 1 otherwise.
func Step(edge, x float64) float64 {
	if x < edge {
		return 0
	}
	return 1
}

// Smoothstep performs Hermite interpolation between 0 and 1 as x moves from
// edge0 to edge1. A degenerate range (edge0 >= edge1) collapses to a hard
// step at edge0.
func Smoothstep(edge0, edge1, x float64) float64 {
	if edge0 >= edge1 {
		return Step(edge0, x)
	}
	t := Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// Sign returns -1, 0 or 1 matching the sign of x.
func Sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
