package effect

import (
	"github.com/chewxy/math32"

	"github.com/Garsondee/kimcard/internal/shade"
)

const sheenWidth = 0.15

var sheenEdgeColor = shade.Vec3{X: 0.8, Y: 0.9, Z: 1.0}

type sheen struct {
	p Params
}

func newSheen(p Params) *sheen { return &sheen{p: p} }

func (s *sheen) Variant() Variant { return VariantSheen }
func (s *sheen) Params() Params { return s.p }

// Blend is additive for the bare overlay and over when the sheen carries its
// own card art.
func (s *sheen) Blend() BlendMode {
	if s.p.Textures.Background != nil {
		return BlendOver
	}
	return BlendAdditive
}

// The bands ramp from 0.3 to 0.7 of Intensity with hover.
func (s *sheen) ownsHoverRamp() {}

func (s *sheen) Uniforms() []UniformDecl {
	return decls("Time", "Hover", "Mouse", "Intensity")
}

// bands evaluates the two counter-propagating diagonal bands.
func (s *sheen) bands(uv shade.Vec2, t, hover float32) (c1, c2 shade.Vec3, strength float32) {
	speed := 0.4 + hover*0.6
	intensity := (0.3 + hover*0.4) * s.p.Intensity

	diagonal := (uv.X + uv.Y) * 0.5
	band1 := shade.Smoothstep(sheenWidth, 0, shade.WrappedDistance(diagonal, shade.Fract(t*speed)))
	hue := shade.Fract(diagonal*2 + t*0.1)

	diagonal2 := (uv.X - uv.Y + 1) * 0.5
	band2 := shade.Smoothstep(sheenWidth*0.7, 0, shade.WrappedDistance(diagonal2, shade.Fract(t*speed*0.7+0.5))) * 0.5

	c1 = shade.HSL(hue, 0.8, 0.6).Scale(band1 * intensity)
	c2 = shade.HSL(hue+0.5, 0.7, 0.5).Scale(band2 * intensity)
	return c1, c2, max(band1, band2)
}

func (s *sheen) Eval(uv shade.Vec2, f *Frame) Sample {
	c1, c2, strength := s.bands(uv, f.Time, f.Hover)
	bands := c1.Add(c2)
	if s.p.Textures.Background == nil {
		return finish(bands, bands.Length(), strength)
	}

	mouse := f.Pointer.Scale(f.Hover)
	tex := s.p.Textures.Background.Sample(uv.Add(mouse.Scale(ParallaxFor(VariantSheen).Background)))

	iridescence := math32.Sin(uv.X*20+uv.Y*20+f.Time) * 0.03
	irid := shade.HSL(shade.Fract(uv.X+uv.Y+f.Time*0.05), 0.5, 0.5).Scale(iridescence)

	edgeDist := min(min(uv.X, 1-uv.X), min(uv.Y, 1-uv.Y))
	edge := sheenEdgeColor.Scale(shade.Smoothstep(0.1, 0, edgeDist) * 0.2 * f.Hover)

	base := tex.RGB()
	final := base.Add(bands).Add(irid).Add(edge)
	desat := shade.Splat3(base.Luminance()).Add(bands)
	final = shade.Mix3(final, desat, 0.1)
	return finish(final, tex.W, strength)
}
