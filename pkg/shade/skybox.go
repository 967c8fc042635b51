package shade

import "github.com/taigrr/planetarium/pkg/math3d"

// skyboxDim keeps the backdrop subordinate to the lit planet.
const skyboxDim = 0.2

// Environment is a direction-indexed color source such as a cubemap.
type Environment interface {
	// Sample returns the RGBA color seen along dir. dir need not be
	// normalized.
	Sample(dir math3d.Vec3) math3d.Vec4
}

// TransformSkyboxVertex centers the skybox cube on the camera. The forwarded
// position is the world-space corner, so the interpolated position minus the
// camera is the view direction.
func TransformSkyboxVertex(p Params, v Vertex) VertexOut {
	return transformSkyboxVertex(p.Transform.Projection.Mul(p.Transform.View), p.CameraPosition, v)
}

func transformSkyboxVertex(viewProj math3d.Mat4, camera math3d.Vec3, v Vertex) VertexOut {
	world := v.Position.Add(camera)
	return VertexOut{
		Clip:     viewProj.MulVec4(math3d.V4FromV3(world, 1)),
		Varyings: Varyings{Position: world},
	}
}

// SkyboxColor samples env along the view direction and dims the RGB channels.
// Alpha passes through from the sample.
func SkyboxColor(env Environment, position, camera math3d.Vec3) math3d.Vec4 {
	c := env.Sample(position.Sub(camera))
	return math3d.V4(c.X*skyboxDim, c.Y*skyboxDim, c.Z*skyboxDim, c.W)
}
