package render

import (
	"github.com/taigrr/planetarium/pkg/shade"
)

// A triangle clipped against one plane has at most four vertices.
const maxClipVertices = 4

// clipNear clips a triangle against the near plane (z >= -w) using
// Sutherland-Hodgman. Vertex order, and therefore winding, is preserved.
func clipNear(tri [3]shade.VertexOut) (poly [maxClipVertices]shade.VertexOut, n int) {
	for i := range 3 {
		cur, next := tri[i], tri[(i+1)%3]
		dc := cur.Clip.Z + cur.Clip.W
		dn := next.Clip.Z + next.Clip.W

		if dc >= 0 {
			poly[n] = cur
			n++
		}
		if (dc >= 0) != (dn >= 0) {
			poly[n] = lerpVertex(cur, next, dc/(dc-dn))
			n++
		}
	}
	return poly, n
}

// lerpVertex interpolates clip position and varyings linearly in clip space.
func lerpVertex(a, b shade.VertexOut, t float64) shade.VertexOut {
	return shade.VertexOut{
		Clip:     a.Clip.Lerp(b.Clip, t),
		Varyings: a.Varyings.Lerp(b.Varyings, t),
	}
}

// outsideClipVolume reports whether all three vertices lie outside the same
// side plane or beyond the far plane.
func outsideClipVolume(tri [3]shade.VertexOut) bool {
	outside := func(test func(x, y, z, w float64) bool) bool {
		for _, v := range tri {
			if !test(v.Clip.X, v.Clip.Y, v.Clip.Z, v.Clip.W) {
				return false
			}
		}
		return true
	}
	return outside(func(x, _, _, w float64) bool { return x < -w }) ||
		outside(func(x, _, _, w float64) bool { return x > w }) ||
		outside(func(_, y, _, w float64) bool { return y < -w }) ||
		outside(func(_, y, _, w float64) bool { return y > w }) ||
		outside(func(_, _, z, w float64) bool { return z > w })
}
