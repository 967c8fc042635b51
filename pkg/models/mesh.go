// Package models builds and loads the triangle meshes drawn by the renderer:
// the planet icosphere, the skybox cube and glTF models.
package models

import (
	"github.com/taigrr/planetarium/pkg/math3d"
	"github.com/taigrr/planetarium/pkg/shade"
)

// Mesh represents a 3D mesh with vertices and faces.
type Mesh struct {
	Name     string
	Vertices []MeshVertex
	Faces    []Face

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// MeshVertex holds all vertex attributes.
type MeshVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	// Barycentric is one-hot on unwelded meshes and zero otherwise.
	Barycentric math3d.Vec3
}

// Face represents a triangle, counter-clockwise when seen from the front.
type Face struct {
	V [3]int // Indices into Mesh.Vertices
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: make([]MeshVertex, 0),
		Faces:    make([]Face, 0),
	}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// faceNormal returns the unnormalized normal of f, which has twice the
// triangle's area as its length.
func (m *Mesh) faceNormal(f Face) math3d.Vec3 {
	v0 := m.Vertices[f.V[0]].Position
	v1 := m.Vertices[f.V[1]].Position
	v2 := m.Vertices[f.V[2]].Position
	return v1.Sub(v0).Cross(v2.Sub(v0))
}

// CalculateNormals assigns each face's normal to its vertices. Shared
// vertices end up with the normal of the last face that uses them.
func (m *Mesh) CalculateNormals() {
	for _, f := range m.Faces {
		normal := m.faceNormal(f).Normalize()
		for _, i := range f.V {
			m.Vertices[i].Normal = normal
		}
	}
}

// CalculateSmoothNormals computes area-weighted averaged normals.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Splat3(0)
	}

	for _, f := range m.Faces {
		normal := m.faceNormal(f)
		for _, i := range f.V {
			m.Vertices[i].Normal = m.Vertices[i].Normal.Add(normal)
		}
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// Transform applies a transformation matrix to all vertices. Normals use
// the inverse-transpose so they stay perpendicular under non-uniform scale.
func (m *Mesh) Transform(mat math3d.Mat4) {
	normalMat := mat.NormalMatrix()
	for i := range m.Vertices {
		m.Vertices[i].Position = mat.MulVec3(m.Vertices[i].Position)
		m.Vertices[i].Normal = normalMat.MulVec3(m.Vertices[i].Normal).Normalize()
	}
	m.CalculateBounds()
}

// FitUnitSphere centers the mesh on the origin and scales it so the
// farthest vertex lies at distance 1.
func (m *Mesh) FitUnitSphere() {
	m.CalculateBounds()
	center := m.Center()

	var radius float64
	for _, v := range m.Vertices {
		radius = max(radius, v.Position.Sub(center).Len())
	}
	if radius == 0 {
		return
	}
	m.Transform(math3d.ScaleUniform(1 / radius).Mul(math3d.Translate(center.Negate())))
}

// Unweld returns a copy in which every face has its own three vertices,
// tagged (1,0,0), (0,1,0) and (0,0,1) in corner order. Edge overlays need
// this because a shared vertex cannot carry a different barycentric for
// each face.
func (m *Mesh) Unweld() *Mesh {
	out := &Mesh{
		Name:      m.Name,
		Vertices:  make([]MeshVertex, 0, 3*len(m.Faces)),
		Faces:     make([]Face, len(m.Faces)),
		BoundsMin: m.BoundsMin,
		BoundsMax: m.BoundsMax,
	}
	corners := [3]math3d.Vec3{math3d.V3(1, 0, 0), math3d.V3(0, 1, 0), math3d.V3(0, 0, 1)}
	for fi, f := range m.Faces {
		for k, vi := range f.V {
			v := m.Vertices[vi]
			v.Barycentric = corners[k]
			out.Faces[fi].V[k] = len(out.Vertices)
			out.Vertices = append(out.Vertices, v)
		}
	}
	return out
}

// GetVertex returns the shader input for vertex i.
// Implements render.MeshRenderer interface.
func (m *Mesh) GetVertex(i int) shade.Vertex {
	v := m.Vertices[i]
	return shade.Vertex{Position: v.Position, Normal: v.Normal, Barycentric: v.Barycentric}
}

// GetFace returns the vertex indices for face i.
// Implements render.MeshRenderer interface.
func (m *Mesh) GetFace(i int) [3]int {
	return m.Faces[i].V
}

// GetBounds returns the axis-aligned bounding box.
// Implements render.BoundedMeshRenderer interface.
func (m *Mesh) GetBounds() (min, max math3d.Vec3) {
	return m.BoundsMin, m.BoundsMax
}
