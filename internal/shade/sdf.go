package shade

import "github.com/chewxy/math32"

// SDRoundedRect is the signed distance from p to a rounded rectangle centred
// on the origin with half extents b and corner radius r. Negative inside.
func SDRoundedRect(p, b Vec2, r float32) float32 {
	q := p.Abs().Sub(b).AddS(r)
	outside := q.MaxS(0).Length()
	inside := min(math32.Max(q.X, q.Y), 0)
	return outside + inside - r
}

// Card geometry shared by every border-hugging effect. Programs map uv to
// p = (uv-0.5)*CardViewScale and test SDRoundedRect(p*CardSDFScale, CardHalfExtents, CardCornerRadius).
const (
	CardViewScale    = 1.25
	CardSDFScale     = 2.15
	CardCornerRadius = 0.12
	cardMaskFeather  = 0.015
)

// CardHalfExtents are the half extents of the card in SDF space.
var CardHalfExtents = Vec2{1, 1}

// CardPoint maps uv in [0,1]^2 to the centred card plane.
func CardPoint(uv Vec2) Vec2 {
	return uv.AddS(-0.5).Scale(CardViewScale)
}

// CardSDF is the signed distance of the card boundary at plane point p.
func CardSDF(p Vec2) float32 {
	return SDRoundedRect(p.Scale(CardSDFScale), CardHalfExtents, CardCornerRadius)
}

// CardMask is 1 inside the card, 0 outside, with a thin feathered edge.
func CardMask(sdf float32) float32 {
	return Smoothstep(cardMaskFeather, -cardMaskFeather, sdf)
}
