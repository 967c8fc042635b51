package render

import (
	"errors"
	"fmt"
	"image"
	"math"
	"math/rand/v2"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/taigrr/planetarium/pkg/colorspace"
	"github.com/taigrr/planetarium/pkg/math3d"
	"github.com/taigrr/planetarium/pkg/noise"
)

// CubeFace indexes the six faces of a cubemap in the conventional
// +X, -X, +Y, -Y, +Z, -Z order.
type CubeFace int

const (
	FacePosX CubeFace = iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ
)

// ErrCrossLayout is returned when an image is not a 4x3 grid of square faces.
var ErrCrossLayout = errors.New("cubemap image is not a 4x3 cross")

// crossCells is the grid cell of each face in a horizontal cross:
// +Y above, -X +Z +X -Z across the middle, -Y below.
var crossCells = [6]image.Point{
	FacePosX: {2, 1},
	FaceNegX: {0, 1},
	FacePosY: {1, 0},
	FaceNegY: {1, 2},
	FacePosZ: {1, 1},
	FaceNegZ: {3, 1},
}

// Cubemap is an environment map made of six square faces. It is safe for
// concurrent sampling.
type Cubemap struct {
	Faces [6]*Texture
}

// NewCubemap builds a cubemap from six equally sized square faces.
func NewCubemap(faces [6]*Texture) (*Cubemap, error) {
	size := faces[0].Width
	for i, f := range faces {
		if f.Width != size || f.Height != size || size == 0 {
			return nil, fmt.Errorf("cubemap face %d is %dx%d, want %dx%d", i, f.Width, f.Height, size, size)
		}
		f.WrapU, f.WrapV = WrapClamp, WrapClamp
		f.FilterMode = FilterBilinear
	}
	return &Cubemap{Faces: faces}, nil
}

// LoadCubemapCross loads a cubemap from a single image laid out as a
// horizontal cross.
func LoadCubemapCross(path string) (*Cubemap, error) {
	img, err := LoadImage(path)
	if err != nil {
		return nil, err
	}
	cm, err := CubemapFromCross(img)
	if err != nil {
		return nil, fmt.Errorf("load skybox %s: %w", path, err)
	}
	return cm, nil
}

// CubemapFromCross slices a horizontal cross image into six faces.
func CubemapFromCross(img image.Image) (*Cubemap, error) {
	b := img.Bounds()
	if b.Dx()%4 != 0 || b.Dy()%3 != 0 || b.Dx()/4 != b.Dy()/3 || b.Dx() == 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrCrossLayout, b.Dx(), b.Dy())
	}
	size := b.Dx() / 4

	var faces [6]*Texture
	for i, cell := range crossCells {
		origin := b.Min.Add(cell.Mul(size))
		faces[i] = textureFromRegion(img, image.Rectangle{Min: origin, Max: origin.Add(image.Pt(size, size))})
	}
	return NewCubemap(faces)
}

// Sample returns the environment color seen along dir.
func (c *Cubemap) Sample(dir math3d.Vec3) math3d.Vec4 {
	face, u, v := cubeFaceCoords(dir)
	return c.Faces[face].Sample(u, v)
}

// cubeFaceCoords selects the face along the major axis of dir and returns
// face coordinates in [0,1] with (0,0) at the image's top-left.
func cubeFaceCoords(dir math3d.Vec3) (face CubeFace, u, v float64) {
	ax, ay, az := math.Abs(dir.X), math.Abs(dir.Y), math.Abs(dir.Z)

	var sc, tc, ma float64
	switch {
	case ax >= ay && ax >= az:
		ma = ax
		if dir.X >= 0 {
			face, sc, tc = FacePosX, -dir.Z, -dir.Y
		} else {
			face, sc, tc = FaceNegX, dir.Z, -dir.Y
		}
	case ay >= az:
		ma = ay
		if dir.Y >= 0 {
			face, sc, tc = FacePosY, dir.X, dir.Z
		} else {
			face, sc, tc = FaceNegY, dir.X, -dir.Z
		}
	default:
		ma = az
		if dir.Z >= 0 {
			face, sc, tc = FacePosZ, dir.X, -dir.Y
		} else {
			face, sc, tc = FaceNegZ, -dir.X, -dir.Y
		}
	}
	if ma == 0 {
		return FacePosX, 0.5, 0.5
	}
	return face, 0.5 * (sc/ma + 1), 0.5 * (tc/ma + 1)
}

// cubeFaceDirection is the inverse of cubeFaceCoords. The result is not
// normalized.
func cubeFaceDirection(face CubeFace, u, v float64) math3d.Vec3 {
	sc, tc := 2*u-1, 2*v-1
	switch face {
	case FacePosX:
		return math3d.V3(1, -tc, -sc)
	case FaceNegX:
		return math3d.V3(-1, -tc, sc)
	case FacePosY:
		return math3d.V3(sc, 1, tc)
	case FaceNegY:
		return math3d.V3(sc, -1, -tc)
	case FacePosZ:
		return math3d.V3(sc, -tc, 1)
	default:
		return math3d.V3(-sc, -tc, -1)
	}
}

// NewStarfieldCubemap generates a deterministic space backdrop: a faint
// nebula over deep blue with the given number of stars.
func NewStarfieldCubemap(size, stars int, seed uint64) *Cubemap {
	deep := colorful.Hsv(230, 0.7, 0.06)
	nebula := colorful.Hsv(285, 0.55, 0.22)

	var faces [6]*Texture
	for f := range faces {
		tex := NewTexture(size, size)
		for y := range size {
			for x := range size {
				u := (float64(x) + 0.5) / float64(size)
				v := (float64(y) + 0.5) / float64(size)
				dir := cubeFaceDirection(CubeFace(f), u, v).Normalize()
				n := noise.SimplexPerlin3D(dir.Scale(2.5))
				c := deep.BlendLab(nebula, math3d.Smoothstep(0.1, 0.9, 0.5*n+0.5)).Clamped()
				tex.SetPixel(x, y, colorspace.ToRGBA(colorspace.FromColorful(c), 1))
			}
		}
		faces[f] = tex
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for range stars {
		dir := math3d.V3(rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64())
		face, u, v := cubeFaceCoords(dir)
		x := min(int(u*float64(size)), size-1)
		y := min(int(v*float64(size)), size-1)

		hue := 200 + 50*rng.Float64()
		if rng.IntN(4) == 0 {
			hue = 30 + 25*rng.Float64()
		}
		c := colorful.Hsv(hue, 0.1+0.3*rng.Float64(), 0.6+0.4*rng.Float64())
		faces[face].SetPixel(x, y, colorspace.ToRGBA(colorspace.FromColorful(c), 1))
	}

	cm, _ := NewCubemap(faces)
	return cm
}
