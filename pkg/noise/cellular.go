package noise

import (
	"math"

	"github.com/taigrr/planetarium/pkg/math3d"
)

const (
	// cellularJitter keeps every feature point within a quarter cell of its
	// lattice corner, which lets the search stop at the 2x2 neighborhood.
	cellularJitter = 0.25

	// cellularNorm is the largest squared distance the 2x2 search can
	// return: 1.5^2 / 2.
	cellularNorm = 1.125
)

var (
	cornerX = Corners{0, 1, 0, 1}
	cornerY = Corners{0, 0, 1, 1}
)

// Cellular2D returns the squared distance from p to the nearest jittered
// feature point, scaled to roughly [0, 1].
func Cellular2D(p math3d.Vec2) float64 {
	cell := p.Floor()
	fx, fy := p.X-cell.X, p.Y-cell.Y
	hx, hy := Hash2D(cell)

	best := math.Inf(1)
	for i := range 4 {
		dx := fx - (jitter(hx[i])*cellularJitter + cornerX[i])
		dy := fy - (jitter(hy[i])*cellularJitter + cornerY[i])
		best = math.Min(best, dx*dx+dy*dy)
	}
	return best / cellularNorm
}

// jitter remaps a hash value in [0, 1) to a weighted offset that pushes
// feature points away from the cell center.
func jitter(h float64) float64 {
	h = h*2 - 1
	return h*h*h - math3d.Sign(h)
}
