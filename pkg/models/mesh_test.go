package models

import (
	"context"
	"math"
	"testing"

	"github.com/taigrr/planetarium/pkg/math3d"
	"github.com/taigrr/planetarium/pkg/render"
	"github.com/taigrr/planetarium/pkg/shade"
)

var (
	_ render.BoundedMeshRenderer = (*Mesh)(nil)
	_ render.MeshRenderer        = (*Mesh)(nil)
)

func TestIcosphereCounts(t *testing.T) {
	tests := []struct {
		subdivisions int
		vertices     int
		faces        int
	}{
		{0, 12, 20},
		{1, 42, 80},
		{2, 162, 320},
		{3, 642, 1280},
		{-1, 12, 20},
	}

	for _, tt := range tests {
		mesh := NewIcosphere(tt.subdivisions)
		if mesh.VertexCount() != tt.vertices || mesh.TriangleCount() != tt.faces {
			t.Errorf("NewIcosphere(%d): %d vertices, %d faces; want %d, %d",
				tt.subdivisions, mesh.VertexCount(), mesh.TriangleCount(), tt.vertices, tt.faces)
		}
	}
}

func TestIcosphereOnUnitSphere(t *testing.T) {
	mesh := NewIcosphere(3)
	for i, v := range mesh.Vertices {
		if math.Abs(v.Position.Len()-1) > 1e-12 {
			t.Fatalf("vertex %d at radius %f", i, v.Position.Len())
		}
		if v.Normal != v.Position {
			t.Fatalf("vertex %d normal %v != position %v", i, v.Normal, v.Position)
		}
	}
	if mesh.BoundsMin.X > -0.99 || mesh.BoundsMax.Y < 0.99 {
		t.Errorf("bounds %v..%v", mesh.BoundsMin, mesh.BoundsMax)
	}
}

func TestIcosphereWindsOutward(t *testing.T) {
	mesh := NewIcosphere(2)
	for i, f := range mesh.Faces {
		n := mesh.faceNormal(f)
		centroid := mesh.Vertices[f.V[0]].Position.
			Add(mesh.Vertices[f.V[1]].Position).
			Add(mesh.Vertices[f.V[2]].Position)
		if n.Dot(centroid) <= 0 {
			t.Fatalf("face %d winds inward", i)
		}
	}
}

func TestUnweld(t *testing.T) {
	mesh := NewIcosphere(1)
	flat := mesh.Unweld()

	if flat.VertexCount() != 3*mesh.TriangleCount() {
		t.Fatalf("VertexCount = %d, want %d", flat.VertexCount(), 3*mesh.TriangleCount())
	}
	corners := [3]math3d.Vec3{math3d.V3(1, 0, 0), math3d.V3(0, 1, 0), math3d.V3(0, 0, 1)}
	for i, f := range flat.Faces {
		for k, vi := range f.V {
			v := flat.GetVertex(vi)
			if v.Barycentric != corners[k] {
				t.Fatalf("face %d corner %d barycentric %v", i, k, v.Barycentric)
			}
			if v.Position != mesh.Vertices[mesh.Faces[i].V[k]].Position {
				t.Fatalf("face %d corner %d moved", i, k)
			}
		}
	}
	// The source mesh is untouched.
	if mesh.Vertices[0].Barycentric != (math3d.Vec3{}) {
		t.Error("Unweld modified the source mesh")
	}
}

func TestTransformNonUniformScale(t *testing.T) {
	mesh := NewIcosphere(2)
	mesh.Transform(math3d.Scale(math3d.V3(2, 1, 0.5)))

	// An ellipsoid x²/4 + y² + 4z² = 1 has gradient (x/2, 2y, 8z).
	for i, v := range mesh.Vertices {
		p := v.Position
		want := math3d.V3(p.X/2, 2*p.Y, 8*p.Z).Normalize()
		if v.Normal.Sub(want).Len() > 1e-9 {
			t.Fatalf("vertex %d normal %v, want %v", i, v.Normal, want)
		}
	}
	if math.Abs(mesh.BoundsMax.X-2) > 1e-9 {
		t.Errorf("BoundsMax.X = %f, want 2", mesh.BoundsMax.X)
	}
}

func TestCalculateNormalsFlat(t *testing.T) {
	mesh := NewMesh("tri")
	mesh.Vertices = []MeshVertex{
		{Position: math3d.V3(0, 0, 0)},
		{Position: math3d.V3(0, 0, 1)},
		{Position: math3d.V3(1, 0, 0)},
	}
	mesh.Faces = []Face{{V: [3]int{0, 1, 2}}}
	mesh.CalculateNormals()
	for _, v := range mesh.Vertices {
		if v.Normal != math3d.V3(0, 1, 0) {
			t.Fatalf("normal = %v, want +Y", v.Normal)
		}
	}
}

func TestSkyboxCube(t *testing.T) {
	cube := NewSkyboxCube()
	if cube.VertexCount() != 36 || cube.TriangleCount() != 12 {
		t.Fatalf("got %d vertices, %d faces", cube.VertexCount(), cube.TriangleCount())
	}
	for i, f := range cube.Faces {
		n := cube.faceNormal(f)
		centroid := cube.Vertices[f.V[0]].Position.
			Add(cube.Vertices[f.V[1]].Position).
			Add(cube.Vertices[f.V[2]].Position)
		if n.Dot(centroid) >= 0 {
			t.Errorf("face %d does not face inward", i)
		}
	}
	if cube.BoundsMin != math3d.Splat3(-1) || cube.BoundsMax != math3d.Splat3(1) {
		t.Errorf("bounds %v..%v", cube.BoundsMin, cube.BoundsMax)
	}
}

// TestRenderUnweldedPlanet draws a wireframe planet through the pipeline
// and checks that both edge and fill pixels appear.
func TestRenderUnweldedPlanet(t *testing.T) {
	mesh := NewPlanet(DefaultPlanetSpec(), 1).Unweld()

	cam := render.NewOrbitCamera()
	cam.SetOrbit(3, 0, 0)
	params := shade.Params{
		Transform: shade.TransformParams{
			Model:      math3d.Identity(),
			View:       cam.ViewMatrix(),
			Projection: cam.ProjectionMatrix(),
		},
		CameraPosition: cam.Position(),
		Light:          shade.DefaultLighting(),
	}
	prog := shade.NewPlanetProgram(params, shade.ModeWireframe, shade.DefaultSurfaceStyle())

	fb := render.NewFramebuffer(96, 96)
	p := render.NewPipeline(fb, 2)
	p.ClearDepth()
	if err := p.Draw(context.Background(), mesh, prog, render.SurfaceState()); err != nil {
		t.Fatalf("Draw: %v", err)
	}

	if p.Stats.Triangles == 0 || p.Stats.TrianglesCulled == 0 {
		t.Errorf("stats %+v: expected drawn and back-face culled triangles", p.Stats)
	}
	var fill, dark int
	for _, c := range fb.Pixels {
		switch {
		case c.A == 0:
		case c.R == 128 && c.G == 128 && c.B == 128:
			fill++
		case c.R < 64:
			dark++
		}
	}
	if fill == 0 || dark == 0 {
		t.Errorf("fill=%d dark=%d, want both > 0", fill, dark)
	}
	// The planet is centred, so the middle pixel is covered.
	if fb.GetPixel(48, 48).A != 255 {
		t.Error("centre pixel not covered")
	}
}
