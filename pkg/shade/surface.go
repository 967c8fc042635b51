package shade

import (
	"math"

	"github.com/taigrr/planetarium/pkg/colorspace"
	"github.com/taigrr/planetarium/pkg/math3d"
	"github.com/taigrr/planetarium/pkg/noise"
)

// darkScale darkens the regular surface color for the low end of the blend.
const darkScale = 0.3

// surfaceChannel describes one Cellular2D sample: which axis pair of the
// position it projects, its anisotropic scale, and the warp applied first.
type surfaceChannel struct {
	project func(math3d.Vec3) math3d.Vec2
	scale   math3d.Vec2
	warp    func(math3d.Vec3) float64
	// base + span*sample maps the cellular value into a color band.
	base, span float64
}

var surfaceChannels = [3]surfaceChannel{
	{
		project: math3d.Vec3.XY,
		scale:   math3d.V2(3, 12),
		warp:    func(p math3d.Vec3) float64 { return 0.5 * noise.Perlin2D(p.XY().Scale(4)) },
		base:    0.25, span: 0.55,
	},
	{
		project: math3d.Vec3.YZ,
		scale:   math3d.V2(10, 2.5),
		warp:    func(p math3d.Vec3) float64 { return 0.5 * noise.SimplexPerlin2D(p.YZ().Scale(6)) },
		base:    0.35, span: 0.45,
	},
	{
		project: math3d.Vec3.ZX,
		scale:   math3d.V2(4, 6),
		warp:    func(p math3d.Vec3) float64 { return 0.5 * noise.SimplexPerlin3D(p.Scale(5)) },
		base:    0.15, span: 0.7,
	},
}

// SurfaceStyle post-adjusts the regular surface color in HSV space. The zero
// value is not neutral; use DefaultSurfaceStyle.
type SurfaceStyle struct {
	HueShift   float64 // turns added to the hue
	Saturation float64 // saturation multiplier
}

// DefaultSurfaceStyle leaves the synthesized color unchanged.
func DefaultSurfaceStyle() SurfaceStyle {
	return SurfaceStyle{Saturation: 1}
}

func (s SurfaceStyle) neutral() bool {
	return s.HueShift == 0 && s.Saturation == 1
}

// SurfaceColor synthesizes the planet color at local position p. Three
// domain-warped Cellular2D samples become the red, green and blue bands; the
// third sample also blends between the color and its darkened copy, using the
// raw Cellular2D value rather than the remapped blue band.
func SurfaceColor(p math3d.Vec3, style SurfaceStyle) math3d.Vec3 {
	var raw, band [3]float64
	for i, ch := range surfaceChannels {
		q := ch.project(p).Mul(ch.scale).AddScalar(ch.warp(p))
		raw[i] = noise.Cellular2D(q)
		band[i] = ch.base + ch.span*raw[i]
	}

	regular := math3d.V3(band[0], band[1], band[2])
	if !style.neutral() {
		regular = colorspace.AdjustHSV(regular, style.HueShift, style.Saturation)
	}
	dark := regular.Scale(darkScale)
	return dark.Lerp(regular, raw[2])
}

// Lambert returns max(floor, dot(normalize(normal), normalize(position -
// light))). position is the forwarded local-space position; it is compared
// with the light as given, without a change of space.
func Lambert(normal, position math3d.Vec3, light Lighting) float64 {
	d := normal.Normalize().Dot(position.Sub(light.Position).Normalize())
	return math.Max(light.Floor, d)
}

// ShadeSurface returns the lit surface color for one fragment.
func ShadeSurface(f Fragment, light Lighting, style SurfaceStyle) math3d.Vec3 {
	c := SurfaceColor(f.Position, style)
	if light.Enabled {
		c = c.Scale(Lambert(f.Normal, f.Position, light))
	}
	return c
}
