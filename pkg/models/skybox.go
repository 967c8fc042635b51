package models

import "github.com/taigrr/planetarium/pkg/math3d"

// NewSkyboxCube returns the unwelded ±1 cube drawn around the camera: 36
// vertices, two triangles per face, wound counter-clockwise when seen from
// inside.
func NewSkyboxCube() *Mesh {
	// Each quad lists its corners counter-clockwise as seen from inside.
	quads := [6][4]math3d.Vec3{
		{{X: 1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: -1}},     // +X
		{{X: -1, Y: -1, Z: 1}, {X: -1, Y: -1, Z: -1}, {X: -1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: 1}}, // -X
		{{X: -1, Y: 1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1}},     // +Y
		{{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: -1}, {X: -1, Y: -1, Z: -1}}, // -Y
		{{X: 1, Y: -1, Z: 1}, {X: -1, Y: -1, Z: 1}, {X: -1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1}},     // +Z
		{{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: -1}}, // -Z
	}

	mesh := NewMesh("skybox")
	mesh.Vertices = make([]MeshVertex, 0, 36)
	mesh.Faces = make([]Face, 0, 12)
	for _, q := range quads {
		normal := q[1].Sub(q[0]).Cross(q[2].Sub(q[0])).Normalize()
		for _, tri := range [2][3]int{{0, 1, 2}, {0, 2, 3}} {
			base := len(mesh.Vertices)
			for _, c := range tri {
				mesh.Vertices = append(mesh.Vertices, MeshVertex{Position: q[c], Normal: normal})
			}
			mesh.Faces = append(mesh.Faces, Face{V: [3]int{base, base + 1, base + 2}})
		}
	}
	mesh.CalculateBounds()
	return mesh
}
