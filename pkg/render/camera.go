package render

import (
	"math"

	"github.com/taigrr/planetarium/pkg/math3d"
)

// Orbit limits.
const (
	maxPitch    = math.Pi/2 - 0.01
	minDistance = 1.2
	maxDistance = 20
)

// Camera orbits a target point at a given distance.
type Camera struct {
	// Orbit parameters
	Target   math3d.Vec3
	Distance float64
	Yaw      float64 // Rotation around the Y axis, radians
	Pitch    float64 // Elevation above the XZ plane, radians

	// Projection parameters
	FOV         float64 // Vertical field of view in radians
	AspectRatio float64 // Width / Height
	Near        float64 // Near clipping plane
	Far         float64 // Far clipping plane

	// Cached matrices (computed on demand)
	viewMatrix     math3d.Mat4
	projMatrix     math3d.Mat4
	viewProjMatrix math3d.Mat4
	viewDirty      bool
	projDirty      bool
	vpDirty        bool
}

// NewOrbitCamera creates a camera 4 units from the origin on the +Z axis.
func NewOrbitCamera() *Camera {
	return &Camera{
		Distance:    4,
		FOV:         math.Pi / 4,
		AspectRatio: 1,
		Near:        0.1,
		Far:         100,
		viewDirty:   true,
		projDirty:   true,
		vpDirty:     true,
	}
}

// SetOrbit sets distance, yaw and pitch at once.
func (c *Camera) SetOrbit(distance, yaw, pitch float64) {
	c.Distance = distance
	c.Yaw = yaw
	c.Pitch = pitch
	c.clamp()
	c.viewDirty = true
}

// SetTarget sets the point the camera orbits and looks at.
func (c *Camera) SetTarget(target math3d.Vec3) {
	c.Target = target
	c.viewDirty = true
}

// SetFOV sets the field of view (in radians).
func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
	c.projDirty = true
}

// SetAspectRatio sets the aspect ratio.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
	c.projDirty = true
}

// SetClipPlanes sets the near and far clipping planes.
func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near = near
	c.Far = far
	c.projDirty = true
}

// Orbit rotates the camera around the target by the given angles (radians).
func (c *Camera) Orbit(deltaYaw, deltaPitch float64) {
	c.Yaw += deltaYaw
	c.Pitch += deltaPitch
	c.clamp()
	c.viewDirty = true
}

// Zoom scales the orbit distance by factor.
func (c *Camera) Zoom(factor float64) {
	c.Distance *= factor
	c.clamp()
	c.viewDirty = true
}

func (c *Camera) clamp() {
	c.Pitch = math3d.Clamp(c.Pitch, -maxPitch, maxPitch)
	c.Distance = math3d.Clamp(c.Distance, minDistance, maxDistance)
}

// Position returns the camera's world-space eye position.
func (c *Camera) Position() math3d.Vec3 {
	offset := math3d.V3(
		math.Sin(c.Yaw)*math.Cos(c.Pitch),
		math.Sin(c.Pitch),
		math.Cos(c.Yaw)*math.Cos(c.Pitch),
	)
	return c.Target.Add(offset.Scale(c.Distance))
}

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.viewMatrix = math3d.LookAt(c.Position(), c.Target, math3d.Up())
		c.viewDirty = false
		c.vpDirty = true
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		c.projMatrix = math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
		c.projDirty = false
		c.vpDirty = true
	}
	return c.projMatrix
}

// ViewProjectionMatrix returns the combined view-projection matrix.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	view := c.ViewMatrix()
	proj := c.ProjectionMatrix()
	if c.vpDirty {
		c.viewProjMatrix = proj.Mul(view)
		c.vpDirty = false
	}
	return c.viewProjMatrix
}

// ndcToScreen maps normalized device coordinates to pixel space with Y down.
func ndcToScreen(ndc math3d.Vec3, width, height int) (x, y float64) {
	x = (ndc.X + 1) * 0.5 * float64(width)
	y = (1 - ndc.Y) * 0.5 * float64(height)
	return x, y
}
