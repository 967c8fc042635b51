package render

import (
	"context"
	"math"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/planetarium/pkg/colorspace"
	"github.com/taigrr/planetarium/pkg/math3d"
	"github.com/taigrr/planetarium/pkg/shade"
)

// CullMode selects which triangle facing is discarded.
type CullMode int

const (
	CullNone CullMode = iota
	CullBack
	CullFront
)

// State is the fixed-function configuration of a draw call.
type State struct {
	Cull       CullMode
	DepthTest  bool
	DepthWrite bool

	// Frustum, if set, rejects a BoundedMeshRenderer whose bounds miss it.
	// The planes must be in the mesh's local space.
	Frustum *Frustum
}

// SurfaceState is used for solid geometry: back faces culled, depth tested
// and written.
func SurfaceState() State {
	return State{Cull: CullBack, DepthTest: true, DepthWrite: true}
}

// SkyboxState draws every face and leaves the depth buffer untouched, so it
// must be drawn before other geometry.
func SkyboxState() State {
	return State{Cull: CullNone}
}

// MeshRenderer is the geometry consumed by the pipeline.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) shade.Vertex
	GetFace(i int) [3]int
}

// BoundedMeshRenderer is a mesh with a local-space bounding box.
type BoundedMeshRenderer interface {
	MeshRenderer
	GetBounds() (min, max math3d.Vec3)
}

// Stats counts work done since the last ResetStats.
type Stats struct {
	MeshesTested     int   // Meshes tested against the frustum
	MeshesCulled     int   // Meshes rejected by the frustum
	Triangles        int   // Triangles submitted
	TrianglesCulled  int   // Rejected by facing or zero area
	TrianglesClipped int   // Rejected or split by clipping
	Fragments        int64 // Fragments shaded and written
}

// Pipeline runs shader programs over meshes into a framebuffer.
// Rows are split into bands rasterized concurrently; each band walks the
// triangles in submission order so results match a serial run.
type Pipeline struct {
	fb         *Framebuffer
	depth      []float64
	workers    int
	bandHeight int

	Stats Stats

	// OnBand, if set, is called once per row band after it completes,
	// possibly from several goroutines.
	OnBand func()
}

const (
	vertexChunk    = 1024
	bandsPerWorker = 4
)

// NewPipeline creates a pipeline drawing into fb with the given number of
// concurrent workers (at least one).
func NewPipeline(fb *Framebuffer, workers int) *Pipeline {
	p := &Pipeline{workers: max(workers, 1)}
	p.Resize(fb)
	return p
}

// Resize attaches a new framebuffer and reallocates the depth buffer.
func (p *Pipeline) Resize(fb *Framebuffer) {
	p.fb = fb
	p.depth = make([]float64, fb.Width*fb.Height)

	// Bands start on even rows so 2x2 quads never straddle two bands.
	bands := p.workers * bandsPerWorker
	h := (fb.Height + bands - 1) / bands
	p.bandHeight = max(2, h+h%2)
	p.ClearDepth()
}

// Framebuffer returns the color target.
func (p *Pipeline) Framebuffer() *Framebuffer {
	return p.fb
}

// Bands returns the number of row bands a Draw call reports through OnBand.
func (p *Pipeline) Bands() int {
	return (p.fb.Height + p.bandHeight - 1) / p.bandHeight
}

// ClearDepth resets the depth buffer to the far plane (call before each frame).
func (p *Pipeline) ClearDepth() {
	// Use copy-doubling for faster clearing
	n := len(p.depth)
	if n == 0 {
		return
	}
	p.depth[0] = math.Inf(1)
	for i := 1; i < n; i *= 2 {
		copy(p.depth[i:], p.depth[:i])
	}
}

// ResetStats resets the statistics (call once per frame).
func (p *Pipeline) ResetStats() {
	p.Stats = Stats{}
}

// Draw runs prog over every triangle of mesh. It returns ctx.Err() if the
// context is cancelled before all bands finish.
func (p *Pipeline) Draw(ctx context.Context, mesh MeshRenderer, prog shade.Program, state State) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if state.Frustum != nil {
		if bm, ok := mesh.(BoundedMeshRenderer); ok {
			p.Stats.MeshesTested++
			lo, hi := bm.GetBounds()
			if !state.Frustum.IntersectAABB(NewAABB(lo, hi)) {
				p.Stats.MeshesCulled++
				p.skipBands()
				return nil
			}
		}
	}

	outs, err := p.runVertexStage(ctx, mesh, prog)
	if err != nil {
		return err
	}
	return p.rasterize(ctx, p.setupTriangles(mesh, outs, state.Cull), prog, state)
}

func (p *Pipeline) skipBands() {
	if p.OnBand == nil {
		return
	}
	for range p.Bands() {
		p.OnBand()
	}
}

// runVertexStage transforms all vertices in parallel chunks.
func (p *Pipeline) runVertexStage(ctx context.Context, mesh MeshRenderer, prog shade.Program) ([]shade.VertexOut, error) {
	n := mesh.VertexCount()
	outs := make([]shade.VertexOut, n)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for start := 0; start < n; start += vertexChunk {
		end := min(start+vertexChunk, n)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				outs[i] = prog.Vertex(mesh.GetVertex(i))
			}
			return nil
		})
	}
	return outs, g.Wait()
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y     float64 // Pixel coordinates, Y down
	Z        float64 // NDC depth
	InvW     float64 // 1/w for perspective-correct interpolation
	Varyings shade.Varyings
}

// setupTri is a screen-space triangle ready for rasterization.
type setupTri struct {
	v           [3]screenVertex
	edges       [3]edgeFunc // edges[i] is opposite v[i], positive inside
	invArea     float64
	frontFacing bool

	minX, maxX, minY, maxY int
}

// setupTriangles clips, projects and culls every face.
func (p *Pipeline) setupTriangles(mesh MeshRenderer, outs []shade.VertexOut, cull CullMode) []setupTri {
	tris := make([]setupTri, 0, mesh.TriangleCount())
	for i := range mesh.TriangleCount() {
		f := mesh.GetFace(i)
		tri := [3]shade.VertexOut{outs[f[0]], outs[f[1]], outs[f[2]]}
		p.Stats.Triangles++

		if outsideClipVolume(tri) {
			p.Stats.TrianglesClipped++
			continue
		}
		poly, n := clipNear(tri)
		if n != 3 {
			p.Stats.TrianglesClipped++
		}
		for k := 1; k+1 < n; k++ {
			st, ok := p.setupTriangle(poly[0], poly[k], poly[k+1], cull)
			if !ok {
				p.Stats.TrianglesCulled++
				continue
			}
			if st.minX <= st.maxX && st.minY <= st.maxY {
				tris = append(tris, st)
			}
		}
	}
	return tris
}

func (p *Pipeline) setupTriangle(a, b, c shade.VertexOut, cull CullMode) (setupTri, bool) {
	var t setupTri
	for i, v := range [3]shade.VertexOut{a, b, c} {
		if v.Clip.W <= 0 {
			return t, false
		}
		invW := 1 / v.Clip.W
		ndc := v.Clip.PerspectiveDivide()
		x, y := ndcToScreen(ndc, p.fb.Width, p.fb.Height)
		t.v[i] = screenVertex{X: x, Y: y, Z: ndc.Z, InvW: invW, Varyings: v.Varyings}
	}

	v0, v1, v2 := t.v[0], t.v[1], t.v[2]
	area := (v1.X-v0.X)*(v2.Y-v0.Y) - (v1.Y-v0.Y)*(v2.X-v0.X)
	if area == 0 || math.IsNaN(area) {
		return t, false
	}

	// Counter-clockwise in NDC is clockwise on screen because Y is flipped.
	t.frontFacing = area < 0
	switch {
	case cull == CullBack && !t.frontFacing:
		return t, false
	case cull == CullFront && t.frontFacing:
		return t, false
	}

	t.edges = [3]edgeFunc{
		edgeCoeffs(v1.X, v1.Y, v2.X, v2.Y),
		edgeCoeffs(v2.X, v2.Y, v0.X, v0.Y),
		edgeCoeffs(v0.X, v0.Y, v1.X, v1.Y),
	}
	if area < 0 {
		for i := range t.edges {
			t.edges[i] = t.edges[i].negate()
		}
		area = -area
	}
	t.invArea = 1 / area

	t.minX = max(0, int(math.Floor(min(v0.X, v1.X, v2.X))))
	t.maxX = min(p.fb.Width-1, int(math.Ceil(max(v0.X, v1.X, v2.X))))
	t.minY = max(0, int(math.Floor(min(v0.Y, v1.Y, v2.Y))))
	t.maxY = min(p.fb.Height-1, int(math.Ceil(max(v0.Y, v1.Y, v2.Y))))
	return t, true
}

// interpolate returns perspective-correct varyings for screen-space
// barycentric weights.
func (t *setupTri) interpolate(b0, b1, b2 float64) shade.Varyings {
	w0, w1, w2 := b0*t.v[0].InvW, b1*t.v[1].InvW, b2*t.v[2].InvW
	if sum := w0 + w1 + w2; sum != 0 {
		w0, w1, w2 = w0/sum, w1/sum, w2/sum
	} else {
		w0, w1, w2 = b0, b1, b2
	}
	return t.v[0].Varyings.Scale(w0).
		Add(t.v[1].Varyings.Scale(w1)).
		Add(t.v[2].Varyings.Scale(w2))
}

// rasterize shades all triangles, one goroutine per row band.
func (p *Pipeline) rasterize(ctx context.Context, tris []setupTri, prog shade.Program, state State) error {
	var fragments atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for b := range p.Bands() {
		y0 := b * p.bandHeight
		y1 := min(y0+p.bandHeight, p.fb.Height)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fragments.Add(p.rasterizeBand(tris, prog, state, y0, y1))
			if p.OnBand != nil {
				p.OnBand()
			}
			return nil
		})
	}
	err := g.Wait()
	p.Stats.Fragments += fragments.Load()
	return err
}

// rasterizeBand covers rows [y0, y1) in 2x2 quads aligned to even
// coordinates.
func (p *Pipeline) rasterizeBand(tris []setupTri, prog shade.Program, state State, y0, y1 int) int64 {
	var n int64
	for i := range tris {
		t := &tris[i]
		qy0 := max(t.minY, y0) &^ 1
		qy1 := min(t.maxY, y1-1)
		for qy := qy0; qy <= qy1; qy += 2 {
			for qx := t.minX &^ 1; qx <= t.maxX; qx += 2 {
				n += p.shadeQuad(t, prog, state, qx, qy, y1)
			}
		}
	}
	return n
}

// shadeQuad evaluates all four lanes of the quad at (qx, qy), including
// helper lanes outside the triangle, and writes the covered ones.
// Lanes are ordered (x,y), (x+1,y), (x,y+1), (x+1,y+1).
func (p *Pipeline) shadeQuad(t *setupTri, prog shade.Program, state State, qx, qy, yEnd int) int64 {
	var (
		bary    [4][3]float64
		covered [4]bool
		hit     bool
	)
	for l := range 4 {
		x, y := qx+(l&1), qy+(l>>1)
		px, py := float64(x)+0.5, float64(y)+0.5
		for e := range 3 {
			bary[l][e] = t.edges[e].eval(px, py) * t.invArea
		}
		covered[l] = bary[l][0] >= 0 && bary[l][1] >= 0 && bary[l][2] >= 0 &&
			x < p.fb.Width && y < yEnd
		hit = hit || covered[l]
	}
	if !hit {
		return 0
	}

	var lanes [4]shade.Varyings
	for l := range 4 {
		lanes[l] = t.interpolate(bary[l][0], bary[l][1], bary[l][2])
	}
	deriv := shade.QuadDerivatives(lanes)

	var n int64
	for l := range 4 {
		if !covered[l] {
			continue
		}
		x, y := qx+(l&1), qy+(l>>1)
		b := bary[l]
		z := b[0]*t.v[0].Z + b[1]*t.v[1].Z + b[2]*t.v[2].Z
		if z > 1 {
			continue
		}
		idx := y*p.fb.Width + x
		if state.DepthTest && !(z < p.depth[idx]) {
			continue
		}

		c := prog.Fragment(shade.Fragment{
			Varyings:    lanes[l],
			Derivatives: deriv,
			X:           x,
			Y:           y,
			FrontFacing: t.frontFacing,
		})
		p.fb.Pixels[idx] = colorspace.ToRGBA(c.Vec3(), c.W)
		if state.DepthWrite {
			p.depth[idx] = z
		}
		n++
	}
	return n
}

// edgeFunc is the line equation A*x + B*y + C of a directed triangle edge.
type edgeFunc struct {
	A, B, C float64
}

// edgeCoeffs computes the edge function coefficients for edge (x0,y0)->(x1,y1).
// Edge function: E(x,y) = A*x + B*y + C
// where A = y0 - y1, B = x1 - x0, C = x0*y1 - x1*y0
func edgeCoeffs(x0, y0, x1, y1 float64) edgeFunc {
	return edgeFunc{A: y0 - y1, B: x1 - x0, C: x0*y1 - x1*y0}
}

func (e edgeFunc) eval(x, y float64) float64 {
	return e.A*x + e.B*y + e.C
}

func (e edgeFunc) negate() edgeFunc {
	return edgeFunc{A: -e.A, B: -e.B, C: -e.C}
}
