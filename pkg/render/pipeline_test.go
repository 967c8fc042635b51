package render

import (
	"context"
	"errors"
	"image/color"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/taigrr/planetarium/pkg/math3d"
	"github.com/taigrr/planetarium/pkg/shade"
)

// testMesh implements MeshRenderer for testing.
type testMesh struct {
	vertices []shade.Vertex
	faces    [][3]int
}

func (m *testMesh) VertexCount() int             { return len(m.vertices) }
func (m *testMesh) TriangleCount() int           { return len(m.faces) }
func (m *testMesh) GetVertex(i int) shade.Vertex { return m.vertices[i] }
func (m *testMesh) GetFace(i int) [3]int         { return m.faces[i] }

// boundedMesh adds bounds for frustum culling.
type boundedMesh struct {
	testMesh
	min, max math3d.Vec3
}

func (m *boundedMesh) GetBounds() (min, max math3d.Vec3) { return m.min, m.max }

// triangleMesh builds a single triangle with one-hot barycentrics.
func triangleMesh(a, b, c math3d.Vec3) *testMesh {
	return &testMesh{
		vertices: []shade.Vertex{
			{Position: a, Barycentric: math3d.V3(1, 0, 0)},
			{Position: b, Barycentric: math3d.V3(0, 1, 0)},
			{Position: c, Barycentric: math3d.V3(0, 0, 1)},
		},
		faces: [][3]int{{0, 1, 2}},
	}
}

// flatProgram projects with a fixed matrix and outputs one color.
type flatProgram struct {
	mvp   math3d.Mat4
	color math3d.Vec4
}

func (p flatProgram) Vertex(v shade.Vertex) shade.VertexOut {
	return shade.VertexOut{
		Clip:     p.mvp.MulVec4(math3d.V4FromV3(v.Position, 1)),
		Varyings: shade.Varyings{Position: v.Position, Normal: v.Normal, Barycentric: v.Barycentric},
	}
}

func (p flatProgram) Fragment(shade.Fragment) math3d.Vec4 { return p.color }

// recordProgram remembers every fragment it shades.
type recordProgram struct {
	flatProgram
	mu        sync.Mutex
	fragments []shade.Fragment
}

func (p *recordProgram) Fragment(f shade.Fragment) math3d.Vec4 {
	p.mu.Lock()
	p.fragments = append(p.fragments, f)
	p.mu.Unlock()
	return p.color
}

func newRecordProgram(mvp math3d.Mat4) *recordProgram {
	return &recordProgram{flatProgram: flatProgram{mvp: mvp, color: math3d.V4(1, 1, 1, 1)}}
}

func identityParams() shade.Params {
	return shade.Params{Transform: shade.NewTransformParams()}
}

func renderWireframe(t *testing.T, apexY float64) *Framebuffer {
	t.Helper()
	fb := NewFramebuffer(64, 64)
	p := NewPipeline(fb, 4)
	mesh := triangleMesh(math3d.V3(-0.8, -0.8, 0), math3d.V3(0.8, -0.8, 0), math3d.V3(0, apexY, 0))
	prog := shade.NewPlanetProgram(identityParams(), shade.ModeWireframe, shade.DefaultSurfaceStyle())
	if err := p.Draw(context.Background(), mesh, prog, SurfaceState()); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	return fb
}

func TestWireframeTriangle(t *testing.T) {
	fb := renderWireframe(t, 0.8)

	fill := color.RGBA{128, 128, 128, 255}
	if got := fb.GetPixel(32, 40); got != fill {
		t.Errorf("centroid pixel = %v, want fill %v", got, fill)
	}
	if got := fb.GetPixel(32, 57); got.R > 32 || got.A != 255 {
		t.Errorf("pixel on bottom edge = %v, want near black", got)
	}
	if got := fb.GetPixel(32, 58); got != (color.RGBA{}) {
		t.Errorf("pixel below triangle = %v, want untouched", got)
	}
	if got := fb.GetPixel(0, 0); got != (color.RGBA{}) {
		t.Errorf("corner pixel = %v, want untouched", got)
	}
}

func TestWireframeWidthIndependentOfSize(t *testing.T) {
	big := renderWireframe(t, 0.8)
	small := renderWireframe(t, 0.0)

	// Rows 55-57 sit at the same pixel distances from the shared bottom
	// edge in both triangles.
	for y := 55; y <= 57; y++ {
		a, b := big.GetPixel(32, y), small.GetPixel(32, y)
		if d := int(a.R) - int(b.R); d < -2 || d > 2 {
			t.Errorf("row %d: big triangle %v, small triangle %v", y, a, b)
		}
	}
	if got := big.GetPixel(32, 55).R; got != 128 {
		t.Errorf("row 55 is %d, want fill beyond the line width", got)
	}
}

func TestSkyboxAttenuation(t *testing.T) {
	fb := NewFramebuffer(16, 16)
	p := NewPipeline(fb, 2)
	mesh := triangleMesh(math3d.V3(-3, -1, 0.5), math3d.V3(3, -1, 0.5), math3d.V3(0, 3, 0.5))
	prog := shade.NewSkyboxProgram(identityParams(), whiteEnv{})
	if err := p.Draw(context.Background(), mesh, prog, SkyboxState()); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	want := color.RGBA{51, 51, 51, 255}
	if got := fb.GetPixel(8, 8); got != want {
		t.Errorf("skybox pixel = %v, want %v", got, want)
	}
}

type whiteEnv struct{}

func (whiteEnv) Sample(math3d.Vec3) math3d.Vec4 { return math3d.V4(1, 1, 1, 1) }

func TestDepthTest(t *testing.T) {
	near := triangleMesh(math3d.V3(-1, -1, -0.5), math3d.V3(1, -1, -0.5), math3d.V3(0, 1, -0.5))
	far := triangleMesh(math3d.V3(-1, -1, 0.5), math3d.V3(1, -1, 0.5), math3d.V3(0, 1, 0.5))
	red := flatProgram{mvp: math3d.Identity(), color: math3d.V4(1, 0, 0, 1)}
	blue := flatProgram{mvp: math3d.Identity(), color: math3d.V4(0, 0, 1, 1)}

	tests := []struct {
		name  string
		order []*testMesh
		progs []shade.Program
	}{
		{"near first", []*testMesh{near, far}, []shade.Program{red, blue}},
		{"far first", []*testMesh{far, near}, []shade.Program{blue, red}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fb := NewFramebuffer(32, 32)
			p := NewPipeline(fb, 2)
			for i, m := range tc.order {
				if err := p.Draw(context.Background(), m, tc.progs[i], SurfaceState()); err != nil {
					t.Fatalf("Draw: %v", err)
				}
			}
			if got := fb.GetPixel(16, 20); got != (color.RGBA{255, 0, 0, 255}) {
				t.Errorf("center pixel = %v, want the nearer red triangle", got)
			}
		})
	}
}

func TestBackfaceCulling(t *testing.T) {
	// Clockwise in NDC, so back-facing.
	mesh := triangleMesh(math3d.V3(-1, -1, 0), math3d.V3(0, 1, 0), math3d.V3(1, -1, 0))

	tests := []struct {
		name      string
		cull      CullMode
		wantFrags bool
	}{
		{"cull back", CullBack, false},
		{"cull front", CullFront, true},
		{"cull none", CullNone, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPipeline(NewFramebuffer(32, 32), 2)
			prog := newRecordProgram(math3d.Identity())
			if err := p.Draw(context.Background(), mesh, prog, State{Cull: tc.cull}); err != nil {
				t.Fatalf("Draw: %v", err)
			}
			if got := len(prog.fragments) > 0; got != tc.wantFrags {
				t.Fatalf("fragments shaded = %v, want %v", got, tc.wantFrags)
			}
			for _, f := range prog.fragments {
				if f.FrontFacing {
					t.Fatal("clockwise triangle reported as front-facing")
				}
			}
			if !tc.wantFrags && p.Stats.TrianglesCulled != 1 {
				t.Errorf("TrianglesCulled = %d, want 1", p.Stats.TrianglesCulled)
			}
		})
	}
}

func TestQuadDerivativesAcrossPixels(t *testing.T) {
	const size = 32
	p := NewPipeline(NewFramebuffer(size, size), 3)
	prog := newRecordProgram(math3d.Identity())
	mesh := triangleMesh(math3d.V3(-1, -1, 0), math3d.V3(1, -1, 0), math3d.V3(-1, 1, 0))
	if err := p.Draw(context.Background(), mesh, prog, SurfaceState()); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if len(prog.fragments) == 0 {
		t.Fatal("no fragments shaded")
	}

	// Position equals NDC under identity transforms, so each pixel step
	// changes x by 2/width and y by -2/height.
	for _, f := range prog.fragments {
		if math.Abs(f.DX.Position.X-2.0/size) > 1e-9 || math.Abs(f.DX.Position.Y) > 1e-9 {
			t.Fatalf("DX.Position = %v at (%d,%d), want (%v,0)", f.DX.Position, f.X, f.Y, 2.0/size)
		}
		if math.Abs(f.DY.Position.Y+2.0/size) > 1e-9 || math.Abs(f.DY.Position.X) > 1e-9 {
			t.Fatalf("DY.Position = %v at (%d,%d), want (0,%v)", f.DY.Position, f.X, f.Y, -2.0/size)
		}
	}
}

func TestPerspectiveCorrectVaryings(t *testing.T) {
	// A quad receding in depth: the interpolated view-space Z at each pixel
	// must agree with the depth buffer value mapped back through the
	// projection.
	proj := math3d.Perspective(math.Pi/2, 1, 0.5, 50)
	mesh := &testMesh{
		vertices: []shade.Vertex{
			{Position: math3d.V3(-1, -1, -1)},
			{Position: math3d.V3(1, -1, -1)},
			{Position: math3d.V3(1, -1, -20)},
			{Position: math3d.V3(-1, -1, -20)},
		},
		faces: [][3]int{{0, 1, 2}, {0, 2, 3}},
	}
	p := NewPipeline(NewFramebuffer(48, 48), 2)
	prog := newRecordProgram(proj)
	if err := p.Draw(context.Background(), mesh, prog, State{}); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if len(prog.fragments) == 0 {
		t.Fatal("no fragments shaded")
	}
	for _, f := range prog.fragments {
		pos := f.Position
		clip := proj.MulVec4(math3d.V4FromV3(pos, 1))
		ndcY := clip.Y / clip.W
		screenY := (1 - ndcY) * 0.5 * 48
		if math.Abs(screenY-(float64(f.Y)+0.5)) > 1e-6 {
			t.Fatalf("fragment (%d,%d) has position %v projecting to row %v", f.X, f.Y, pos, screenY)
		}
	}
}

func TestNearPlaneClipping(t *testing.T) {
	proj := math3d.Perspective(math.Pi/2, 1, 0.1, 100)
	// One vertex behind the camera.
	mesh := triangleMesh(math3d.V3(-1, -1, -2), math3d.V3(1, -1, -2), math3d.V3(0, -1, 1))

	p := NewPipeline(NewFramebuffer(32, 32), 2)
	prog := newRecordProgram(proj)
	if err := p.Draw(context.Background(), mesh, prog, State{DepthTest: true, DepthWrite: true}); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if p.Stats.TrianglesClipped != 1 {
		t.Errorf("TrianglesClipped = %d, want 1", p.Stats.TrianglesClipped)
	}
	if len(prog.fragments) == 0 {
		t.Fatal("clipped triangle produced no fragments")
	}
	for _, f := range prog.fragments {
		if f.Position.Z > -0.1+1e-6 {
			t.Fatalf("fragment at view z %v is in front of the near plane", f.Position.Z)
		}
	}
}

func TestFrustumCulledMesh(t *testing.T) {
	mesh := &boundedMesh{
		testMesh: *triangleMesh(math3d.V3(5, 0, 0), math3d.V3(6, 0, 0), math3d.V3(5, 1, 0)),
		min:      math3d.V3(5, 0, 0),
		max:      math3d.V3(6, 1, 0),
	}
	frustum := NewFrustumFromMatrix(math3d.Identity())
	state := SurfaceState()
	state.Frustum = &frustum

	p := NewPipeline(NewFramebuffer(16, 16), 2)
	var bands atomic.Int32
	p.OnBand = func() { bands.Add(1) }
	prog := newRecordProgram(math3d.Identity())
	if err := p.Draw(context.Background(), mesh, prog, state); err != nil {
		t.Fatalf("Draw: %v", err)
	}

	if p.Stats.MeshesTested != 1 || p.Stats.MeshesCulled != 1 {
		t.Errorf("stats = %+v, want one mesh tested and culled", p.Stats)
	}
	if len(prog.fragments) != 0 || p.Stats.Triangles != 0 {
		t.Error("culled mesh should not reach the vertex or fragment stage")
	}
	if int(bands.Load()) != p.Bands() {
		t.Errorf("OnBand called %d times, want %d", bands.Load(), p.Bands())
	}
}

func TestDrawCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPipeline(NewFramebuffer(16, 16), 2)
	mesh := triangleMesh(math3d.V3(-1, -1, 0), math3d.V3(1, -1, 0), math3d.V3(0, 1, 0))
	err := p.Draw(ctx, mesh, newRecordProgram(math3d.Identity()), SurfaceState())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Draw error = %v, want context.Canceled", err)
	}
}

func TestBandsCoverOddHeights(t *testing.T) {
	for _, h := range []int{1, 7, 31, 64, 101} {
		for _, workers := range []int{1, 3, 8} {
			p := NewPipeline(NewFramebuffer(4, h), workers)
			if p.bandHeight%2 != 0 {
				t.Errorf("h=%d workers=%d: band height %d is odd", h, workers, p.bandHeight)
			}
			if p.Bands()*p.bandHeight < h {
				t.Errorf("h=%d workers=%d: %d bands of %d rows do not cover the image", h, workers, p.Bands(), p.bandHeight)
			}
		}
	}
}

func TestOddFramebufferEdges(t *testing.T) {
	// A full-screen triangle on an odd-sized target must cover every pixel
	// exactly once, including the last row and column.
	fb := NewFramebuffer(15, 9)
	p := NewPipeline(fb, 3)
	prog := newRecordProgram(math3d.Identity())
	mesh := triangleMesh(math3d.V3(-3, -1, 0), math3d.V3(3, -1, 0), math3d.V3(0, 5, 0))
	if err := p.Draw(context.Background(), mesh, prog, SurfaceState()); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if got, want := len(prog.fragments), 15*9; got != want {
		t.Errorf("shaded %d fragments, want %d", got, want)
	}
	if p.Stats.Fragments != 15*9 {
		t.Errorf("Stats.Fragments = %d, want %d", p.Stats.Fragments, 15*9)
	}
}

func TestEdgeCoeffs(t *testing.T) {
	// Edge (0,0)->(1,0) is positive for y > 0.
	e := edgeCoeffs(0, 0, 1, 0)
	if got := e.eval(0.5, 1); got != 1 {
		t.Errorf("eval above edge = %v, want 1", got)
	}
	if got := e.eval(0.5, -1); got != -1 {
		t.Errorf("eval below edge = %v, want -1", got)
	}
	if got := e.negate().eval(0.5, 1); got != -1 {
		t.Errorf("negated eval = %v, want -1", got)
	}
}

func TestClearDepth(t *testing.T) {
	p := NewPipeline(NewFramebuffer(5, 3), 1)
	for i := range p.depth {
		p.depth[i] = float64(i)
	}
	p.ClearDepth()
	for i, d := range p.depth {
		if !math.IsInf(d, 1) {
			t.Fatalf("depth[%d] = %v after clear, want +Inf", i, d)
		}
	}
}

func BenchmarkDrawWireframeTriangle(b *testing.B) {
	fb := NewFramebuffer(160, 96)
	p := NewPipeline(fb, 4)
	mesh := triangleMesh(math3d.V3(-0.9, -0.9, 0), math3d.V3(0.9, -0.9, 0), math3d.V3(0, 0.9, 0))
	prog := shade.NewPlanetProgram(identityParams(), shade.ModeWireframe, shade.DefaultSurfaceStyle())
	ctx := context.Background()

	for b.Loop() {
		p.ClearDepth()
		_ = p.Draw(ctx, mesh, prog, SurfaceState())
	}
}

func BenchmarkDrawSurfaceTriangle(b *testing.B) {
	fb := NewFramebuffer(160, 96)
	p := NewPipeline(fb, 4)
	mesh := triangleMesh(math3d.V3(-0.9, -0.9, 0), math3d.V3(0.9, -0.9, 0), math3d.V3(0, 0.9, 0))
	prog := shade.NewPlanetProgram(identityParams(), shade.ModeSurface, shade.DefaultSurfaceStyle())
	ctx := context.Background()

	for b.Loop() {
		p.ClearDepth()
		_ = p.Draw(ctx, mesh, prog, SurfaceState())
	}
}
