package noise

import (
	"math"

	"github.com/taigrr/planetarium/pkg/math3d"
)

const (
	// gradientBias centers hash values on zero. Using slightly less than
	// 0.5 keeps a gradient from collapsing to the zero vector.
	gradientBias = 0.49999

	// gradientEpsilon guards the gradient normalization.
	gradientEpsilon = 1e-12

	perlin2Norm = 1.4142135623730950488
)

// Perlin2D returns classic gradient noise in roughly [-1, 1]. It is exactly
// zero on every integer lattice point.
func Perlin2D(p math3d.Vec2) float64 {
	cell := p.Floor()
	fx, fy := p.X-cell.X, p.Y-cell.Y
	hx, hy := Hash2D(cell)

	vx := Corners{fx, fx - 1, fx, fx - 1}
	vy := Corners{fy, fy, fy - 1, fy - 1}

	var g Corners
	for i := range 4 {
		g[i] = gradientDot2(hx[i], hy[i], vx[i], vy[i])
	}

	bx, by := quintic(fx), quintic(fy)
	sum := g[0]*(1-bx)*(1-by) +
		g[1]*bx*(1-by) +
		g[2]*(1-bx)*by +
		g[3]*bx*by
	return sum * perlin2Norm
}

// gradientDot2 builds a unit gradient from two hash channels and dots it
// with the offset (vx, vy).
func gradientDot2(hx, hy, vx, vy float64) float64 {
	gx, gy := hx-gradientBias, hy-gradientBias
	return (gx*vx + gy*vy) / math.Sqrt(gx*gx+gy*gy+gradientEpsilon)
}

// quintic is Perlin's improved interpolant t^3 (t (6t - 15) + 10).
func quintic(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}
