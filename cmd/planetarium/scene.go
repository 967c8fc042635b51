package main

import (
	"context"
	"fmt"
	"image/color"

	"github.com/taigrr/planetarium/pkg/config"
	"github.com/taigrr/planetarium/pkg/math3d"
	"github.com/taigrr/planetarium/pkg/models"
	"github.com/taigrr/planetarium/pkg/render"
	"github.com/taigrr/planetarium/pkg/shade"
)

// Scene holds everything drawn each frame.
type Scene struct {
	Planet     *models.Mesh // welded, for the surface mode
	Wire       *models.Mesh // unwelded, carries barycentrics
	Skybox     *models.Mesh
	Env        shade.Environment
	Camera     *render.Camera
	Style      shade.SurfaceStyle
	Background color.RGBA
}

// View is the per-frame state the viewer can change.
type View struct {
	Mode  shade.Mode
	Light shade.Lighting
}

// NewScene builds meshes, environment and camera from cfg.
func NewScene(cfg config.Config) (*Scene, error) {
	var planet *models.Mesh
	if cfg.Planet.Model != "" {
		mesh, err := models.LoadGLB(cfg.Planet.Model)
		if err != nil {
			return nil, fmt.Errorf("load model: %w", err)
		}
		mesh.Transform(math3d.ScaleUniform(cfg.Planet.Radius))
		planet = mesh
	} else {
		planet = models.NewPlanet(cfg.PlanetSpec(), cfg.Planet.Subdivisions)
	}
	// Baked into the vertices so the light stays fixed while the terrain turns.
	if cfg.Planet.Rotation != [3]float64{} {
		planet.Transform(cfg.Orientation())
	}

	var env shade.Environment
	if cfg.Skybox.Path != "" {
		cube, err := render.LoadCubemapCross(cfg.Skybox.Path)
		if err != nil {
			return nil, err
		}
		env = cube
	} else {
		env = render.NewStarfieldCubemap(cfg.Skybox.Size, cfg.Skybox.Stars, cfg.Skybox.Seed)
	}

	camera := render.NewOrbitCamera()
	camera.SetTarget(cfg.CameraTarget())
	camera.SetOrbit(cfg.Camera.Distance, config.Radians(cfg.Camera.Yaw), config.Radians(cfg.Camera.Pitch))
	camera.SetFOV(config.Radians(cfg.Camera.FOV))
	camera.SetClipPlanes(cfg.Camera.Near, cfg.Camera.Far)

	return &Scene{
		Planet:     planet,
		Wire:       planet.Unweld(),
		Skybox:     models.NewSkyboxCube(),
		Env:        env,
		Camera:     camera,
		Style:      cfg.SurfaceStyle(),
		Background: cfg.BackgroundColor(),
	}, nil
}

// planetFor returns the mesh variant the mode needs.
func (s *Scene) planetFor(mode shade.Mode) *models.Mesh {
	if mode.NeedsBarycentrics() {
		return s.Wire
	}
	return s.Planet
}

// Params returns the per-draw shader inputs for the current camera.
func (s *Scene) Params(light shade.Lighting) shade.Params {
	tp := shade.NewTransformParams()
	tp.View = s.Camera.ViewMatrix()
	tp.Projection = s.Camera.ProjectionMatrix()
	return shade.Params{
		Transform:      tp,
		CameraPosition: s.Camera.Position(),
		Light:          light,
	}
}

// Draw renders one frame into p's framebuffer: the skybox first, then the
// planet with depth testing and back-face culling.
func (s *Scene) Draw(ctx context.Context, p *render.Pipeline, view View) error {
	fb := p.Framebuffer()
	s.Camera.SetAspectRatio(float64(fb.Width) / float64(fb.Height))
	fb.Clear(s.Background)
	p.ClearDepth()
	p.ResetStats()

	params := s.Params(view.Light)
	if err := p.Draw(ctx, s.Skybox, shade.NewSkyboxProgram(params, s.Env), render.SkyboxState()); err != nil {
		return fmt.Errorf("draw skybox: %w", err)
	}

	state := render.SurfaceState()
	// The planet's model matrix is identity, so world-space planes apply.
	frustum := s.Camera.Frustum()
	state.Frustum = &frustum
	prog := shade.NewPlanetProgram(params, view.Mode, s.Style)
	if err := p.Draw(ctx, s.planetFor(view.Mode), prog, state); err != nil {
		return fmt.Errorf("draw planet: %w", err)
	}
	return nil
}
