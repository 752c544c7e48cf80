package effect

import (
	"github.com/Garsondee/kimcard/internal/shade"
)

// Parallax is the fraction of the smoothed pointer offset each art layer
// shifts by. Background moves least, the character most and against the
// pointer, the frame in between.
type Parallax struct {
	Background float32
	Character  float32
	Frame      float32
}

var parallaxTable = [variantCount]Parallax{
	VariantSheen:     {Background: 0.01},
	VariantBurning:   {Background: 0.012, Character: -0.05, Frame: 0.03},
	VariantLightning: {},
	VariantAura:      {},
	VariantElectric:  {Background: 0.01, Character: -0.06, Frame: 0.03},
	VariantCloud:     {Background: 0.015, Character: -0.05, Frame: 0.035},
}

// ParallaxFor returns the layer parallax of v.
func ParallaxFor(v Variant) Parallax {
	if v < 0 || v >= variantCount {
		return Parallax{}
	}
	return parallaxTable[v]
}

// layerUVs are the remapped uv coordinates of the three art layers.
type layerUVs struct {
	bg, char, frame shade.Vec2
}

// cardUVs applies scale, offset and parallax to uv for each layer.
// mouse is the smoothed pointer already scaled by hover.
func cardUVs(uv shade.Vec2, p *Params, px Parallax, mouse shade.Vec2) layerUVs {
	centred := uv.AddS(-0.5)
	return layerUVs{
		bg:    uv.Add(mouse.Scale(px.Background)),
		char:  centred.Div(p.CharScale).AddS(0.5).Add(p.CharOffset).Add(mouse.Scale(px.Character)),
		frame: centred.Div(p.FrameScale).AddS(0.5).Add(mouse.Scale(px.Frame)),
	}
}

// over is straight-alpha source-over of src onto dst with coverage a.
func over(dst, src shade.Vec3, a float32) shade.Vec3 {
	return shade.Mix3(dst, src, a)
}

// frameStage composites the frame when it is enabled and configured for
// the given position. Both positions share this code path.
func frameStage(composite shade.Vec3, p *Params, at FrameLayer, frame shade.Vec3, frameAlpha, cardMask float32) shade.Vec3 {
	if !p.ShowFrame || p.FrameLayer != at {
		return composite
	}
	return over(composite, frame, frameAlpha*cardMask)
}

// frameAlpha is the frame's alpha contribution, zero when the frame is hidden.
func frameAlpha(p *Params, a float32) float32 {
	if !p.ShowFrame {
		return 0
	}
	return a
}

// maxAlpha combines layer alphas by maximum so stacked layers never exceed 1.
func maxAlpha(alphas ...float32) float32 {
	var m float32
	for _, a := range alphas {
		m = max(m, a)
	}
	return m
}
