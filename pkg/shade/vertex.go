package shade

import "github.com/taigrr/planetarium/pkg/math3d"

// Vertex is one mesh corner as supplied by the geometry layer.
type Vertex struct {
	Position math3d.Vec3 // local space
	Normal   math3d.Vec3 // local space
	// Barycentric is one of (1,0,0), (0,1,0), (0,0,1) for meshes prepared
	// for wireframe rendering, and zero otherwise.
	Barycentric math3d.Vec3
}

// Varyings are the per-vertex outputs interpolated across a triangle.
type Varyings struct {
	Position    math3d.Vec3
	Normal      math3d.Vec3
	Barycentric math3d.Vec3
}

// Add returns the component-wise sum a + b.
func (a Varyings) Add(b Varyings) Varyings {
	return Varyings{
		Position:    a.Position.Add(b.Position),
		Normal:      a.Normal.Add(b.Normal),
		Barycentric: a.Barycentric.Add(b.Barycentric),
	}
}

// Sub returns the component-wise difference a - b.
func (a Varyings) Sub(b Varyings) Varyings {
	return Varyings{
		Position:    a.Position.Sub(b.Position),
		Normal:      a.Normal.Sub(b.Normal),
		Barycentric: a.Barycentric.Sub(b.Barycentric),
	}
}

// Scale multiplies every component by s.
func (a Varyings) Scale(s float64) Varyings {
	return Varyings{
		Position:    a.Position.Scale(s),
		Normal:      a.Normal.Scale(s),
		Barycentric: a.Barycentric.Scale(s),
	}
}

// Abs returns the component-wise absolute value.
func (a Varyings) Abs() Varyings {
	return Varyings{
		Position:    a.Position.Abs(),
		Normal:      a.Normal.Abs(),
		Barycentric: a.Barycentric.Abs(),
	}
}

// Lerp interpolates linearly between a and b.
func (a Varyings) Lerp(b Varyings, t float64) Varyings {
	return a.Add(b.Sub(a).Scale(t))
}

// VertexOut is the result of a vertex program: a clip-space position and the
// varyings to interpolate.
type VertexOut struct {
	Clip math3d.Vec4
	Varyings
}

// TransformVertex runs the coordinate transform stage for v:
//
//	clip   = projection * view * model * position
//	normal = transpose(inverse(upper3x3(view * model))) * normal
//
// The local position and barycentric coordinate are forwarded unchanged.
func TransformVertex(t TransformParams, v Vertex) VertexOut {
	return transformVertex(prepared{mvp: t.MVP(), normal: t.NormalMatrix()}, v)
}

func transformVertex(p prepared, v Vertex) VertexOut {
	return VertexOut{
		Clip: p.mvp.MulVec4(math3d.V4FromV3(v.Position, 1)),
		Varyings: Varyings{
			Position:    v.Position,
			Normal:      p.normal.MulVec3(v.Normal),
			Barycentric: v.Barycentric,
		},
	}
}
