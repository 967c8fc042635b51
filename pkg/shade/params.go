// Package shade implements the per-vertex and per-fragment programs that
// color the planet and its skybox.
//
// Everything here is a pure function of explicit inputs. Per-draw constants
// travel in Params; the execution engine in package render supplies the
// interpolated Fragment, including its 2x2 quad derivatives.
package shade

import "github.com/taigrr/planetarium/pkg/math3d"

// TransformParams holds the model, view and projection matrices for one draw
// call.
type TransformParams struct {
	Model      math3d.Mat4
	View       math3d.Mat4
	Projection math3d.Mat4
}

// NewTransformParams creates transform parameters with identity matrices.
func NewTransformParams() TransformParams {
	return TransformParams{
		Model:      math3d.Identity(),
		View:       math3d.Identity(),
		Projection: math3d.Identity(),
	}
}

// ModelView returns view * model.
func (t TransformParams) ModelView() math3d.Mat4 {
	return t.View.Mul(t.Model)
}

// MVP returns projection * view * model.
func (t TransformParams) MVP() math3d.Mat4 {
	return t.Projection.Mul(t.View).Mul(t.Model)
}

// NormalMatrix returns transpose(inverse(upper3x3(view * model))).
func (t TransformParams) NormalMatrix() math3d.Mat3 {
	return t.ModelView().NormalMatrix()
}

// Lighting configures the optional Lambert term of the surface program.
type Lighting struct {
	Enabled  bool
	Position math3d.Vec3
	// Floor is the minimum brightness, so the terminator never goes black.
	Floor float64
}

// DefaultLighting returns the light used by the planet viewer.
func DefaultLighting() Lighting {
	return Lighting{
		Enabled:  true,
		Position: math3d.V3(-40, 0, -60),
		Floor:    0.1,
	}
}

// Params is the read-only per-draw configuration shared by the vertex and
// fragment programs.
type Params struct {
	Transform      TransformParams
	CameraPosition math3d.Vec3
	Light          Lighting
}

// prepared caches the matrices derived from Params so the vertex stage does
// not rebuild them per vertex.
type prepared struct {
	mvp    math3d.Mat4
	normal math3d.Mat3
}

func (p Params) prepare() prepared {
	return prepared{
		mvp:    p.Transform.MVP(),
		normal: p.Transform.NormalMatrix(),
	}
}
