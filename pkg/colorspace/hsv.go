// Package colorspace converts surface colors between RGB and HSV.
//
// Colors are math3d.Vec3 triples with every channel in [0, 1]; hue is a
// fraction of a full turn rather than degrees.
package colorspace

import (
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/planetarium/pkg/math3d"
)

// hsvEpsilon keeps hue and saturation defined for gray input.
const hsvEpsilon = 1e-10

// RGBToHSV converts an RGB triple to (hue, saturation, value). Gray input
// yields hue 0 and saturation 0.
func RGBToHSV(c math3d.Vec3) math3d.Vec3 {
	// Sort the channels into max (qx) and the other two, keeping the hue
	// offset of the sector in qz.
	var px, py, pz, pw float64
	if c.Z > c.Y {
		px, py, pz, pw = c.Z, c.Y, -1, 2.0/3.0
	} else {
		px, py, pz, pw = c.Y, c.Z, 0, -1.0/3.0
	}
	var qx, qy, qz, qw float64
	if px > c.X {
		qx, qy, qz, qw = px, py, pw, c.X
	} else {
		qx, qy, qz, qw = c.X, py, pz, px
	}

	d := qx - math.Min(qw, qy)
	return math3d.V3(
		math.Abs(qz+(qw-qy)/(6*d+hsvEpsilon)),
		d/(qx+hsvEpsilon),
		qx,
	)
}

// HSVToRGB converts a (hue, saturation, value) triple back to RGB. Hue
// wraps, so any finite hue is accepted.
func HSVToRGB(c math3d.Vec3) math3d.Vec3 {
	h, s, v := c.X, c.Y, c.Z
	channel := func(offset float64) float64 {
		p := math.Abs(math3d.Fract(h+offset)*6 - 3)
		return v * math3d.Mix(1, math3d.Clamp(p-1, 0, 1), s)
	}
	return math3d.V3(channel(1), channel(2.0/3.0), channel(1.0/3.0))
}

// AdjustHSV shifts hue by hueShift turns and scales saturation by
// saturation, clamping the result to [0, 1].
func AdjustHSV(c math3d.Vec3, hueShift, saturation float64) math3d.Vec3 {
	hsv := RGBToHSV(c)
	hsv.X = math3d.Fract(hsv.X + hueShift)
	hsv.Y = math3d.Clamp(hsv.Y*saturation, 0, 1)
	return HSVToRGB(hsv)
}

// FromColorful converts a go-colorful color to an RGB triple.
func FromColorful(c colorful.Color) math3d.Vec3 {
	return math3d.V3(c.R, c.G, c.B)
}

// ToRGBA quantizes an RGB triple and alpha in [0, 1] to 8-bit channels,
// clamping out-of-range values.
func ToRGBA(c math3d.Vec3, alpha float64) color.RGBA {
	q := func(v float64) uint8 {
		return uint8(math.Round(math3d.Clamp(v, 0, 1) * 255))
	}
	return color.RGBA{R: q(c.X), G: q(c.Y), B: q(c.Z), A: q(alpha)}
}
