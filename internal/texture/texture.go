// Package texture holds read-only card art addressed by normalized UV.
//
// Textures are immutable after construction and may be shared by pointer
// across any number of effect instances. Sampling outside the unit square,
// or through a nil *Texture, yields exact transparent black.
package texture

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"

	"github.com/Garsondee/kimcard/internal/shade"
)

// Texture is a straight-alpha float RGBA image.
type Texture struct {
	w, h int
	pix  []float32 // 4 floats per texel, row 0 is the top of the source image
	name string
}

// FromImage copies img into a Texture.
func FromImage(name string, img image.Image) *Texture {
	b := img.Bounds()
	t := &Texture{
		w:    b.Dx(),
		h:    b.Dy(),
		pix:  make([]float32, 4*b.Dx()*b.Dy()),
		name: name,
	}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			t.pix[i+0] = float32(c.R) / 255
			t.pix[i+1] = float32(c.G) / 255
			t.pix[i+2] = float32(c.B) / 255
			t.pix[i+3] = float32(c.A) / 255
			i += 4
		}
	}
	return t
}

// Solid returns a 1x1 texture of a single colour.
func Solid(name string, c shade.Vec4) *Texture {
	return &Texture{w: 1, h: 1, pix: []float32{c.X, c.Y, c.Z, c.W}, name: name}
}

// Name is the asset name the texture was loaded from.
func (t *Texture) Name() string {
	if t == nil {
		return ""
	}
	return t.name
}

// Size returns the texel dimensions.
func (t *Texture) Size() (int, int) {
	if t == nil {
		return 0, 0
	}
	return t.w, t.h
}

// Sample returns the bilinearly filtered texel at uv, with v=0 at the bottom
// of the image. Anything outside [0,1]^2 is zero.
func (t *Texture) Sample(uv shade.Vec2) shade.Vec4 {
	if t == nil || len(t.pix) == 0 || !uv.InUnit() {
		return shade.Vec4{}
	}
	fx := uv.X*float32(t.w) - 0.5
	fy := (1-uv.Y)*float32(t.h) - 0.5
	x0 := int(math32.Floor(fx))
	y0 := int(math32.Floor(fy))
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	a := t.texel(x0, y0)
	b := t.texel(x0+1, y0)
	c := t.texel(x0, y0+1)
	d := t.texel(x0+1, y0+1)
	top := lerp4(a, b, tx)
	bot := lerp4(c, d, tx)
	return lerp4(top, bot, ty)
}

// Alpha returns only the alpha channel at uv.
func (t *Texture) Alpha(uv shade.Vec2) float32 {
	return t.Sample(uv).W
}

// texel clamps to the edge inside the image; the unit-square mask in Sample
// has already rejected out-of-bounds lookups.
func (t *Texture) texel(x, y int) shade.Vec4 {
	x = min(max(x, 0), t.w-1)
	y = min(max(y, 0), t.h-1)
	i := 4 * (y*t.w + x)
	return shade.Vec4{X: t.pix[i], Y: t.pix[i+1], Z: t.pix[i+2], W: t.pix[i+3]}
}

func lerp4(a, b shade.Vec4, t float32) shade.Vec4 {
	return shade.Vec4{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
		W: a.W + (b.W-a.W)*t,
	}
}
