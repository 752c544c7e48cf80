package raster

import (
	"image"
	"image/draw"

	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/blur"

	"github.com/Garsondee/kimcard/internal/effect"
)

// Composite layers fg onto bg according to mode: additive glow layers add
// their colour, textured cards use source-over. Both images must share
// bounds.
func Composite(bg, fg image.Image, mode effect.BlendMode) *image.RGBA {
	if mode == effect.BlendAdditive {
		return blend.Add(bg, fg)
	}
	return blend.Normal(bg, fg)
}

// bloomThreshold is the luminance above which pixels feed the bloom.
const bloomThreshold = 0.6

// Bloom adds a blurred copy of the bright parts of img back onto it.
// radius <= 0 returns img unchanged.
func Bloom(img image.Image, radius float64) image.Image {
	if radius <= 0 {
		return img
	}
	bright := brightPass(img)
	return blend.Add(img, blur.Gaussian(bright, radius))
}

func brightPass(img image.Image) *image.NRGBA {
	b := img.Bounds()
	src := image.NewNRGBA(b)
	draw.Draw(src, b, img, b.Min, draw.Src)
	out := image.NewNRGBA(b)
	for i := 0; i < len(src.Pix); i += 4 {
		r, g, bl, a := src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3]
		lum := (0.299*float32(r) + 0.587*float32(g) + 0.114*float32(bl)) / 255
		if lum < bloomThreshold || a == 0 {
			continue
		}
		out.Pix[i], out.Pix[i+1], out.Pix[i+2], out.Pix[i+3] = r, g, bl, a
	}
	return out
}
