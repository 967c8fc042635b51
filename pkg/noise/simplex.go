package noise

import (
	"math"

	"github.com/taigrr/planetarium/pkg/math3d"
)

const (
	simplex2Skew   = 0.36602540378443864676 // (sqrt(3) - 1) / 2
	simplex2Unskew = 0.21132486540518711775 // (3 - sqrt(3)) / 6
	simplex2Scale  = 0.40824829046386301637 // 1 / sqrt(6)
	simplex2Norm   = 99.204334582718712977

	simplex3Skew   = 1.0 / 3.0
	simplex3Unskew = 1.0 / 6.0
	simplex3Scale  = 0.70710678118654752440 // 1 / sqrt(2)
	simplex3Norm   = 107.653485397282

	// simplexRadius2 is the squared radius of each corner's falloff kernel.
	simplexRadius2 = 0.5
)

// SimplexPerlin2D returns simplex gradient noise in roughly [-1, 1].
func SimplexPerlin2D(p math3d.Vec2) float64 {
	x, y := p.X*simplex2Scale, p.Y*simplex2Scale

	s := (x + y) * simplex2Skew
	cell := math3d.V2(math.Floor(x+s), math.Floor(y+s))
	hx, hy := Hash2D(cell)

	t := (cell.X + cell.Y) * simplex2Unskew
	v0x, v0y := cell.X-t-x, cell.Y-t-y

	// The middle corner is (1,0) or (0,1) depending on which half of the
	// skewed cell holds the point.
	var v1x, v1y float64
	var h1 int
	if v0x < v0y {
		v1x, v1y = v0x+1-simplex2Unskew, v0y-simplex2Unskew
		h1 = 1
	} else {
		v1x, v1y = v0x-simplex2Unskew, v0y+1-simplex2Unskew
		h1 = 2
	}
	v2x, v2y := v0x+1-2*simplex2Unskew, v0y+1-2*simplex2Unskew

	sum := simplexCorner2(hx[0], hy[0], v0x, v0y) +
		simplexCorner2(hx[h1], hy[h1], v1x, v1y) +
		simplexCorner2(hx[3], hy[3], v2x, v2y)
	return sum * simplex2Norm
}

func simplexCorner2(hx, hy, vx, vy float64) float64 {
	m := falloff(vx*vx + vy*vy)
	if m == 0 {
		return 0
	}
	return m * gradientDot2(hx, hy, vx, vy)
}

// SimplexPerlin3D returns simplex gradient noise in roughly [-1, 1].
func SimplexPerlin3D(p math3d.Vec3) float64 {
	pt := [3]float64{p.X * simplex3Scale, p.Y * simplex3Scale, p.Z * simplex3Scale}

	s := (pt[0] + pt[1] + pt[2]) * simplex3Skew
	var cell [3]float64
	for i := range pt {
		cell[i] = math.Floor(pt[i] + s)
	}
	t := (cell[0] + cell[1] + cell[2]) * simplex3Unskew

	var x0 [3]float64
	for i := range pt {
		x0[i] = pt[i] - cell[i] + t
	}
	c1, c2 := simplexOrder3(x0)

	var x1, x2, x3 [3]float64
	for i := range 3 {
		x1[i] = x0[i] - c1[i] + simplex3Unskew
		x2[i] = x0[i] - c2[i] + 2*simplex3Unskew
		x3[i] = x0[i] - 1 + 3*simplex3Unskew
	}

	h := hash3D(cell, c1, c2)
	offsets := [4][3]float64{x0, x1, x2, x3}

	var sum float64
	for c, v := range offsets {
		m := falloff(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
		if m == 0 {
			continue
		}
		gx := h[0][c] - gradientBias
		gy := h[1][c] - gradientBias
		gz := h[2][c] - gradientBias
		dot := (gx*v[0] + gy*v[1] + gz*v[2]) / math.Sqrt(gx*gx+gy*gy+gz*gz+gradientEpsilon)
		sum += m * dot
	}
	return sum * simplex3Norm
}

// simplexOrder3 ranks the offsets within the skewed cube and returns the
// lattice offsets of the second and third tetrahedron corners.
func simplexOrder3(x0 [3]float64) (c1, c2 [3]float64) {
	x, y, z := x0[0], x0[1], x0[2]
	if x >= y {
		switch {
		case y >= z:
			return [3]float64{1, 0, 0}, [3]float64{1, 1, 0}
		case x >= z:
			return [3]float64{1, 0, 0}, [3]float64{1, 0, 1}
		default:
			return [3]float64{0, 0, 1}, [3]float64{1, 0, 1}
		}
	}
	switch {
	case y < z:
		return [3]float64{0, 0, 1}, [3]float64{0, 1, 1}
	case x < z:
		return [3]float64{0, 1, 0}, [3]float64{0, 1, 1}
	default:
		return [3]float64{0, 1, 0}, [3]float64{1, 1, 0}
	}
}

// falloff is the quartic kernel max(r^2 - d^2, 0)^4. The fourth power keeps
// the summed field C2 continuous across simplex boundaries.
func falloff(d2 float64) float64 {
	m := simplexRadius2 - d2
	if m <= 0 {
		return 0
	}
	m *= m
	return m * m
}
