// Package noise implements the deterministic lattice noise fields used to
// color the planet surface: Cellular2D (Worley), Perlin2D, SimplexPerlin2D
// and SimplexPerlin3D.
//
// Every field draws its pseudo-randomness from one FAST32-style hash kernel.
// The hash folds lattice coordinates modulo a fixed domain before squaring,
// so each field repeats with that period. The constants below are frozen:
// changing any of them changes the look of every surface.
package noise

import (
	"math"

	"github.com/taigrr/planetarium/pkg/math3d"
)

// Period2D is the lattice period of the 2D hash kernel. Cellular2D and
// Perlin2D repeat every Period2D units along x and y.
const Period2D = 71.0

// Period3D is the lattice period of the 3D hash kernel.
const Period3D = 69.0

const (
	hash2OffsetX = 26.0
	hash2OffsetY = 161.0
	hash2LargeX  = 951.135664
	hash2LargeY  = 642.949883

	hash3OffsetX = 50.0
	hash3OffsetY = 161.0
)

var (
	hash3Large = [3]float64{635.298681, 682.357502, 668.926525}
	hash3ZInc  = [3]float64{48.500388, 65.294118, 63.934599}
)

// Corners holds one value per lattice-cell corner, ordered
// (0,0), (1,0), (0,1), (1,1).
type Corners [4]float64

// wrap folds p into [0, period). Division keeps exact multiples of the
// period on the lattice.
func wrap(p, period float64) float64 {
	return p - math.Floor(p/period)*period
}

// Hash2D returns two decorrelated pseudo-random channels in [0, 1) for the
// four corners of the lattice cell whose lower corner is cell. cell must be
// integer valued.
func Hash2D(cell math3d.Vec2) (hx, hy Corners) {
	x0 := wrap(cell.X, Period2D) + hash2OffsetX
	y0 := wrap(cell.Y, Period2D) + hash2OffsetY
	x1 := wrap(cell.X+1, Period2D) + hash2OffsetX
	y1 := wrap(cell.Y+1, Period2D) + hash2OffsetY
	x0, y0, x1, y1 = x0*x0, y0*y0, x1*x1, y1*y1

	q := Corners{x0 * y0, x1 * y0, x0 * y1, x1 * y1}
	for i, v := range q {
		hx[i] = math3d.Fract(v / hash2LargeX)
		hy[i] = math3d.Fract(v / hash2LargeY)
	}
	return hx, hy
}

// hash3D hashes the four corners of one simplex in the 3D lattice. cell is
// the integer lattice origin; c1 and c2 are the 0/1 offsets of the middle
// two corners. The result is indexed [channel][corner] with corners ordered
// origin, c1, c2, (1,1,1).
func hash3D(cell, c1, c2 [3]float64) [3]Corners {
	var lo, hi [3]float64
	for i, p := range cell {
		lo[i] = wrap(p, Period3D)
		if lo[i] <= Period3D-1.5 {
			hi[i] = lo[i] + 1
		}
	}

	x0, y0 := lo[0]+hash3OffsetX, lo[1]+hash3OffsetY
	x1, y1 := hi[0]+hash3OffsetX, hi[1]+hash3OffsetY
	x0, y0, x1, y1 = x0*x0, y0*y0, x1*x1, y1*y1

	pick := func(a, b, corner float64) float64 {
		if corner != 0 {
			return b
		}
		return a
	}
	q := Corners{
		x0 * y0,
		pick(x0, x1, c1[0]) * pick(y0, y1, c1[1]),
		pick(x0, x1, c2[0]) * pick(y0, y1, c2[1]),
		x1 * y1,
	}

	var out [3]Corners
	for k := range 3 {
		low := 1 / (hash3Large[k] + lo[2]*hash3ZInc[k])
		high := 1 / (hash3Large[k] + hi[2]*hash3ZInc[k])
		out[k] = Corners{
			math3d.Fract(q[0] * low),
			math3d.Fract(q[1] * pick(low, high, c1[2])),
			math3d.Fract(q[2] * pick(low, high, c2[2])),
			math3d.Fract(q[3] * high),
		}
	}
	return out
}
