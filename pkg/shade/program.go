package shade

import (
	"fmt"
	"strings"

	"github.com/taigrr/planetarium/pkg/math3d"
)

// Program is a vertex and fragment program pair run by the execution engine.
// Implementations must be safe for concurrent use.
type Program interface {
	Vertex(v Vertex) VertexOut
	Fragment(f Fragment) math3d.Vec4
}

// Mode selects the fragment path of the planet program.
type Mode int

const (
	ModeSurface   Mode = iota // procedural surface color, optionally lit
	ModeWireframe             // anti-aliased edges over a flat fill
	ModeOverlay               // anti-aliased edges over the surface color
)

var modeNames = [...]string{
	ModeSurface:   "surface",
	ModeWireframe: "wireframe",
	ModeOverlay:   "overlay",
}

// Modes lists every shading mode in cycle order.
func Modes() []Mode {
	return []Mode{ModeSurface, ModeWireframe, ModeOverlay}
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// Next returns the mode after m, wrapping around.
func (m Mode) Next() Mode {
	return Mode((int(m) + 1) % len(modeNames))
}

// NeedsBarycentrics reports whether the mode reads the barycentric varying.
func (m Mode) NeedsBarycentrics() bool {
	return m == ModeWireframe || m == ModeOverlay
}

// ParseMode parses a mode name, ignoring case.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown shading mode %q (want one of %s)", s, strings.Join(modeNames[:], ", "))
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if m < 0 || int(m) >= len(modeNames) {
		return nil, fmt.Errorf("invalid shading mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// PlanetProgram shades the planet mesh in the selected mode.
type PlanetProgram struct {
	mode  Mode
	style SurfaceStyle
	light Lighting
	prep  prepared
}

// NewPlanetProgram builds a planet program for one draw call.
func NewPlanetProgram(p Params, mode Mode, style SurfaceStyle) *PlanetProgram {
	return &PlanetProgram{
		mode:  mode,
		style: style,
		light: p.Light,
		prep:  p.prepare(),
	}
}

// Mode returns the shading mode.
func (p *PlanetProgram) Mode() Mode {
	return p.mode
}

// Vertex runs the coordinate transform stage.
func (p *PlanetProgram) Vertex(v Vertex) VertexOut {
	return transformVertex(p.prep, v)
}

// Fragment returns an opaque color for f.
func (p *PlanetProgram) Fragment(f Fragment) math3d.Vec4 {
	var c math3d.Vec3
	switch p.mode {
	case ModeWireframe:
		c = ShadeEdges(f, FillColor)
	case ModeOverlay:
		c = ShadeEdges(f, ShadeSurface(f, p.light, p.style))
	default:
		c = ShadeSurface(f, p.light, p.style)
	}
	return math3d.V4FromV3(c, 1)
}

// SkyboxProgram draws the environment backdrop.
type SkyboxProgram struct {
	env      Environment
	camera   math3d.Vec3
	viewProj math3d.Mat4
}

// NewSkyboxProgram builds a skybox program for one draw call. The model
// matrix in p is ignored.
func NewSkyboxProgram(p Params, env Environment) *SkyboxProgram {
	return &SkyboxProgram{
		env:      env,
		camera:   p.CameraPosition,
		viewProj: p.Transform.Projection.Mul(p.Transform.View),
	}
}

// Vertex centers the cube on the camera.
func (s *SkyboxProgram) Vertex(v Vertex) VertexOut {
	return transformSkyboxVertex(s.viewProj, s.camera, v)
}

// Fragment samples the environment along the view direction.
func (s *SkyboxProgram) Fragment(f Fragment) math3d.Vec4 {
	return SkyboxColor(s.env, f.Position, s.camera)
}
