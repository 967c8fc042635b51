package models

import (
	"github.com/ojrac/opensimplex-go"

	"github.com/taigrr/planetarium/pkg/math3d"
)

// reliefScale maps Deviation onto a radius fraction; Deviation 1 lets the
// surface move by a tenth of the radius.
const reliefScale = 0.1

// PlanetSpec describes the terrain of a generated planet.
type PlanetSpec struct {
	Radius      float64
	Octaves     int
	Persistence float64
	Wavelength  float64
	Lacunarity  float64
	// Deviation scales the relief. Zero gives a perfect sphere.
	Deviation float64
	Seed      int64
}

// DefaultPlanetSpec returns the mountainous default planet.
func DefaultPlanetSpec() PlanetSpec {
	return PlanetSpec{
		Radius:      1,
		Octaves:     12,
		Persistence: 0.8,
		Wavelength:  7,
		Lacunarity:  1.91,
		Deviation:   0.4,
	}
}

// fbm sums octaves of 3D simplex noise, normalized to about [-1, 1].
type fbm struct {
	noise       opensimplex.Noise
	octaves     int
	persistence float64
	frequency   float64
	lacunarity  float64
}

func (b fbm) eval(p math3d.Vec3) float64 {
	var sum, norm float64
	amp, freq := 1.0, b.frequency
	for range b.octaves {
		sum += amp * b.noise.Eval3(p.X*freq, p.Y*freq, p.Z*freq)
		norm += amp
		freq *= b.lacunarity
		amp *= b.persistence
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

// PlanetField maps a direction from the planet centre to a surface radius.
// Mountain and plain noise layers are blended by a third, low-frequency mix
// layer, with a narrow linear band between the two. It is safe for
// concurrent use.
type PlanetField struct {
	spec      PlanetSpec
	mountains fbm
	plains    fbm
	mix       fbm
}

// NewPlanetField builds the noise layers for spec.
func NewPlanetField(spec PlanetSpec) *PlanetField {
	layer := func(seed int64, octaves int, persistence, wavelength, lacunarity float64) fbm {
		return fbm{
			noise:       opensimplex.New(seed),
			octaves:     octaves,
			persistence: persistence,
			frequency:   1 / wavelength,
			lacunarity:  lacunarity,
		}
	}
	return &PlanetField{
		spec:      spec,
		mountains: layer(spec.Seed, spec.Octaves, spec.Persistence, spec.Wavelength, spec.Lacunarity),
		plains:    layer(spec.Seed+1, 3, 0.9, 3, 1.8),
		mix:       layer(spec.Seed+2, 2, 0.5, 2, 2),
	}
}

// Perturbation returns the blended terrain height along dir, about [-1, 1].
func (f *PlanetField) Perturbation(dir math3d.Vec3) float64 {
	p := dir.Normalize()
	uplift := 0.01 * f.spec.Deviation

	alpha := (1 + f.mix.eval(p.Scale(3).AddScalar(10))) / 2
	switch {
	case alpha < 0.45:
		return f.plains.eval(p)
	case alpha < 0.55:
		a := (alpha - 0.45) * 10
		return a*(f.mountains.eval(p.Scale(4))+uplift) + (1-a)*f.plains.eval(p)
	default:
		return f.mountains.eval(p.Scale(4)) + uplift
	}
}

// Radius returns the surface radius along dir.
func (f *PlanetField) Radius(dir math3d.Vec3) float64 {
	if f.spec.Deviation == 0 {
		return f.spec.Radius
	}
	return f.spec.Radius * (1 + reliefScale*f.spec.Deviation*f.Perturbation(dir))
}

// Displace moves every vertex radially onto the field's surface, then
// recomputes smooth normals and bounds. Call it before Unweld so shared
// vertices stay shared.
func (m *Mesh) Displace(field *PlanetField) {
	for i := range m.Vertices {
		dir := m.Vertices[i].Position.Normalize()
		m.Vertices[i].Position = dir.Scale(field.Radius(dir))
	}
	m.CalculateSmoothNormals()
	m.CalculateBounds()
}

// NewPlanet generates a displaced icosphere for spec.
func NewPlanet(spec PlanetSpec, subdivisions int) *Mesh {
	mesh := NewIcosphere(subdivisions)
	mesh.Name = "planet"
	mesh.Displace(NewPlanetField(spec))
	return mesh
}
