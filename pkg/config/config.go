// Package config loads and validates planetarium.yaml.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/taigrr/planetarium/pkg/math3d"
	"github.com/taigrr/planetarium/pkg/models"
	"github.com/taigrr/planetarium/pkg/shade"
)

// DefaultFilename is the config file looked up when -config is not given.
const DefaultFilename = "planetarium.yaml"

// Validation errors. Validate joins every problem it finds.
var (
	ErrInvalidMode   = errors.New("invalid shading mode")
	ErrInvalidSize   = errors.New("invalid output size")
	ErrInvalidCamera = errors.New("invalid camera")
	ErrInvalidPlanet = errors.New("invalid planet")
	ErrInvalidColor  = errors.New("invalid color")
	ErrInvalidSkybox = errors.New("invalid skybox")
)

// Config is the full renderer configuration.
type Config struct {
	Mode    string        `yaml:"mode"`
	Output  OutputConfig  `yaml:"output"`
	Camera  CameraConfig  `yaml:"camera"`
	Light   LightConfig   `yaml:"light"`
	Planet  PlanetConfig  `yaml:"planet"`
	Surface SurfaceConfig `yaml:"surface"`
	Skybox  SkyboxConfig  `yaml:"skybox"`
}

// OutputConfig controls the framebuffer and offline output.
type OutputConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Path       string `yaml:"path,omitempty"` // PNG path; empty starts the viewer
	Workers    int    `yaml:"workers"`        // 0 uses GOMAXPROCS
	Background string `yaml:"background"`     // hex color behind the skybox
}

// CameraConfig places the orbit camera. Angles are in degrees.
type CameraConfig struct {
	Distance float64    `yaml:"distance"`
	FOV      float64    `yaml:"fov"`
	Near     float64    `yaml:"near"`
	Far      float64    `yaml:"far"`
	Yaw      float64    `yaml:"yaw"`
	Pitch    float64    `yaml:"pitch"`
	Target   [3]float64 `yaml:"target,flow"` // orbit center
}

// LightConfig configures the Lambert term.
type LightConfig struct {
	Enabled  bool       `yaml:"enabled"`
	Position [3]float64 `yaml:"position,flow"`
	Floor    float64    `yaml:"floor"`
}

// PlanetConfig selects the planet mesh.
type PlanetConfig struct {
	Model        string             `yaml:"model,omitempty"` // .glb instead of the generated sphere
	Radius       float64            `yaml:"radius"`
	Subdivisions int                `yaml:"subdivisions"`
	Seed         int64              `yaml:"seed"`
	Rotation     [3]float64         `yaml:"rotation,flow"` // degrees about X, Y then Z
	Displacement DisplacementConfig `yaml:"displacement"`
}

// DisplacementConfig holds the terrain noise parameters.
type DisplacementConfig struct {
	Octaves     int     `yaml:"octaves"`
	Persistence float64 `yaml:"persistence"`
	Wavelength  float64 `yaml:"wavelength"`
	Lacunarity  float64 `yaml:"lacunarity"`
	Deviation   float64 `yaml:"deviation"`
}

// SurfaceConfig post-adjusts the procedural surface color.
type SurfaceConfig struct {
	HueShift   float64 `yaml:"hue_shift"`
	Saturation float64 `yaml:"saturation"`
}

// SkyboxConfig selects the environment map.
type SkyboxConfig struct {
	Path  string `yaml:"path,omitempty"` // 4x3 cross image; empty generates a starfield
	Size  int    `yaml:"size"`           // starfield face size
	Stars int    `yaml:"stars"`
	Seed  uint64 `yaml:"seed"`
}

// Default returns the built-in configuration.
func Default() Config {
	spec := models.DefaultPlanetSpec()
	light := shade.DefaultLighting()
	style := shade.DefaultSurfaceStyle()
	return Config{
		Mode: shade.ModeSurface.String(),
		Output: OutputConfig{
			Width:      640,
			Height:     480,
			Background: "#000000",
		},
		Camera: CameraConfig{
			Distance: 3,
			FOV:      45,
			Near:     0.1,
			Far:      100,
			Pitch:    15,
		},
		Light: LightConfig{
			Enabled:  light.Enabled,
			Position: [3]float64{light.Position.X, light.Position.Y, light.Position.Z},
			Floor:    light.Floor,
		},
		Planet: PlanetConfig{
			Radius:       spec.Radius,
			Subdivisions: 5,
			Seed:         spec.Seed,
			Displacement: DisplacementConfig{
				Octaves:     spec.Octaves,
				Persistence: spec.Persistence,
				Wavelength:  spec.Wavelength,
				Lacunarity:  spec.Lacunarity,
				Deviation:   spec.Deviation,
			},
		},
		Surface: SurfaceConfig{
			HueShift:   style.HueShift,
			Saturation: style.Saturation,
		},
		Skybox: SkyboxConfig{
			Size:  256,
			Stars: 1500,
			Seed:  1,
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as YAML.
func Save(path string, cfg Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer f.Close()

	if err := cfg.Encode(f); err != nil {
		return err
	}
	return f.Close()
}

// Encode writes cfg as YAML to w.
func (c Config) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close config: %w", err)
	}
	return nil
}

// Validate reports every invalid field, joined into one error.
func (c Config) Validate() error {
	var errs []error
	if _, err := shade.ParseMode(c.Mode); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidMode, err))
	}
	if c.Output.Width <= 0 || c.Output.Height <= 0 {
		errs = append(errs, fmt.Errorf("%w: %dx%d", ErrInvalidSize, c.Output.Width, c.Output.Height))
	}
	if c.Output.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: workers %d", ErrInvalidSize, c.Output.Workers))
	}
	if _, err := colorful.Hex(c.Output.Background); err != nil {
		errs = append(errs, fmt.Errorf("%w: background %q", ErrInvalidColor, c.Output.Background))
	}
	if c.Camera.Distance <= 0 {
		errs = append(errs, fmt.Errorf("%w: distance %g", ErrInvalidCamera, c.Camera.Distance))
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		errs = append(errs, fmt.Errorf("%w: fov %g not in (0, 180)", ErrInvalidCamera, c.Camera.FOV))
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		errs = append(errs, fmt.Errorf("%w: clip planes %g..%g", ErrInvalidCamera, c.Camera.Near, c.Camera.Far))
	}
	if c.Planet.Radius <= 0 {
		errs = append(errs, fmt.Errorf("%w: radius %g", ErrInvalidPlanet, c.Planet.Radius))
	}
	if c.Planet.Subdivisions < 0 || c.Planet.Subdivisions > models.MaxSubdivisions {
		errs = append(errs, fmt.Errorf("%w: subdivisions %d not in [0, %d]",
			ErrInvalidPlanet, c.Planet.Subdivisions, models.MaxSubdivisions))
	}
	d := c.Planet.Displacement
	if d.Octaves < 0 || d.Wavelength <= 0 || d.Lacunarity <= 0 || d.Deviation < 0 {
		errs = append(errs, fmt.Errorf("%w: displacement %+v", ErrInvalidPlanet, d))
	}
	if c.Skybox.Path == "" && c.Skybox.Size <= 0 {
		errs = append(errs, fmt.Errorf("%w: size %d", ErrInvalidSkybox, c.Skybox.Size))
	}
	if c.Skybox.Stars < 0 {
		errs = append(errs, fmt.Errorf("%w: stars %d", ErrInvalidSkybox, c.Skybox.Stars))
	}
	return errors.Join(errs...)
}

// ShadingMode returns the parsed mode. Call Validate first.
func (c Config) ShadingMode() shade.Mode {
	m, _ := shade.ParseMode(c.Mode)
	return m
}

// PlanetSpec returns the terrain parameters.
func (c Config) PlanetSpec() models.PlanetSpec {
	d := c.Planet.Displacement
	return models.PlanetSpec{
		Radius:      c.Planet.Radius,
		Octaves:     d.Octaves,
		Persistence: d.Persistence,
		Wavelength:  d.Wavelength,
		Lacunarity:  d.Lacunarity,
		Deviation:   d.Deviation,
		Seed:        c.Planet.Seed,
	}
}

// Orientation returns the planet rotation, applied about X first, then Y,
// then Z.
func (c Config) Orientation() math3d.Mat4 {
	r := c.Planet.Rotation
	return math3d.RotateZ(Radians(r[2])).
		Mul(math3d.RotateY(Radians(r[1]))).
		Mul(math3d.RotateX(Radians(r[0])))
}

// CameraTarget returns the point the camera orbits.
func (c Config) CameraTarget() math3d.Vec3 {
	t := c.Camera.Target
	return math3d.V3(t[0], t[1], t[2])
}

// Lighting returns the shader lighting parameters.
func (c Config) Lighting() shade.Lighting {
	p := c.Light.Position
	return shade.Lighting{
		Enabled:  c.Light.Enabled,
		Position: math3d.V3(p[0], p[1], p[2]),
		Floor:    c.Light.Floor,
	}
}

// SurfaceStyle returns the surface color adjustments.
func (c Config) SurfaceStyle() shade.SurfaceStyle {
	return shade.SurfaceStyle{HueShift: c.Surface.HueShift, Saturation: c.Surface.Saturation}
}

// BackgroundColor returns the parsed background. Call Validate first.
func (c Config) BackgroundColor() color.RGBA {
	bg, err := colorful.Hex(c.Output.Background)
	if err != nil {
		return color.RGBA{A: 255}
	}
	r, g, b := bg.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Radians converts camera angles for render.Camera.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}
