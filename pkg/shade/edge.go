package shade

import (
	"math"

	"github.com/taigrr/planetarium/pkg/math3d"
)

// edgeWidth is the line half-thickness in pixels, measured in multiples of
// the barycentric screen derivative.
const edgeWidth = 1.5

var (
	// EdgeColor is drawn exactly on triangle edges.
	EdgeColor = math3d.V3(0, 0, 0)
	// FillColor is drawn in triangle interiors in wireframe mode.
	FillColor = math3d.V3(0.5, 0.5, 0.5)
)

// EdgeFactor returns 0 on a triangle edge, rising to 1 once bary is at least
// edgeWidth derivative widths away from every edge. fwidth is the per-axis
// screen derivative magnitude of bary.
func EdgeFactor(bary, fwidth math3d.Vec3) float64 {
	return math.Min(
		math3d.Smoothstep(0, edgeWidth*fwidth.X, bary.X),
		math.Min(
			math3d.Smoothstep(0, edgeWidth*fwidth.Y, bary.Y),
			math3d.Smoothstep(0, edgeWidth*fwidth.Z, bary.Z),
		),
	)
}

// ShadeEdges blends EdgeColor toward fill by the fragment's edge factor.
func ShadeEdges(f Fragment, fill math3d.Vec3) math3d.Vec3 {
	return EdgeColor.Lerp(fill, EdgeFactor(f.Barycentric, f.Fwidth().Barycentric))
}
