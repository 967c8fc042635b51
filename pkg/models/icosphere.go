package models

import (
	"math"

	"github.com/taigrr/planetarium/pkg/math3d"
)

// MaxSubdivisions bounds NewIcosphere; level 7 already has 327680 faces.
const MaxSubdivisions = 7

// icosahedronFaces lists the 20 faces of the base icosahedron, all wound
// counter-clockwise when seen from outside.
var icosahedronFaces = [20][3]int{
	{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
	{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
	{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
	{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
}

// NewIcosphere builds a unit sphere by repeatedly splitting each face of an
// icosahedron into four and pushing the new vertices onto the sphere.
// Normals equal positions. subdivisions is clamped to [0, MaxSubdivisions].
func NewIcosphere(subdivisions int) *Mesh {
	subdivisions = max(0, min(subdivisions, MaxSubdivisions))

	t := (1 + math.Sqrt(5)) / 2
	positions := []math3d.Vec3{
		{X: -1, Y: t}, {X: 1, Y: t}, {X: -1, Y: -t}, {X: 1, Y: -t},
		{Y: -1, Z: t}, {Y: 1, Z: t}, {Y: -1, Z: -t}, {Y: 1, Z: -t},
		{X: t, Z: -1}, {X: t, Z: 1}, {X: -t, Z: -1}, {X: -t, Z: 1},
	}
	for i := range positions {
		positions[i] = positions[i].Normalize()
	}
	faces := icosahedronFaces[:]

	for range subdivisions {
		positions, faces = subdivide(positions, faces)
	}

	mesh := NewMesh("icosphere")
	mesh.Vertices = make([]MeshVertex, len(positions))
	for i, p := range positions {
		mesh.Vertices[i] = MeshVertex{Position: p, Normal: p}
	}
	mesh.Faces = make([]Face, len(faces))
	for i, f := range faces {
		mesh.Faces[i] = Face{V: f}
	}
	mesh.CalculateBounds()
	return mesh
}

// subdivide splits every face into four, sharing edge midpoints between
// neighbouring faces.
func subdivide(positions []math3d.Vec3, faces [][3]int) ([]math3d.Vec3, [][3]int) {
	midpoints := make(map[[2]int]int, len(faces)*3/2)
	midpoint := func(a, b int) int {
		key := [2]int{min(a, b), max(a, b)}
		if i, ok := midpoints[key]; ok {
			return i
		}
		positions = append(positions, positions[a].Add(positions[b]).Normalize())
		i := len(positions) - 1
		midpoints[key] = i
		return i
	}

	out := make([][3]int, 0, len(faces)*4)
	for _, f := range faces {
		v1, v2, v3 := f[0], f[1], f[2]
		m1 := midpoint(v1, v2)
		m2 := midpoint(v2, v3)
		m3 := midpoint(v3, v1)
		out = append(out,
			[3]int{v1, m1, m3},
			[3]int{v2, m2, m1},
			[3]int{v3, m3, m2},
			[3]int{m1, m2, m3},
		)
	}
	return positions, out
}
