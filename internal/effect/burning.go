package effect

import (
	"github.com/chewxy/math32"

	"github.com/Garsondee/kimcard/internal/shade"
)

var (
	fireOrange = shade.Vec3{X: 1.0, Y: 0.3, Z: 0.0}
	fireGold   = shade.Vec3{X: 1.0, Y: 0.8, Z: 0.2}
	fireWhite  = shade.Vec3{X: 1.0, Y: 1.0, Z: 0.9}
)

// emberGrid is the number of ember cells across and up the card.
var emberGrid = shade.Vec2{X: 10, Y: 5}

type burning struct {
	p  Params
	px Parallax
}

func newBurning(p Params) *burning {
	return &burning{p: p, px: ParallaxFor(VariantBurning)}
}

func (b *burning) Variant() Variant { return VariantBurning }
func (b *burning) Params() Params { return b.p }

// Blend is additive for the bare fire overlay; with card art the program
// draws the whole card and composites over.
func (b *burning) Blend() BlendMode {
	if b.p.Textures.Any() {
		return BlendOver
	}
	return BlendAdditive
}

func (b *burning) Uniforms() []UniformDecl {
	if b.p.Textures.Any() {
		return decls("Time", "Hover", "Mouse", "Intensity", "FrameScale", "CharScale", "CharOffset", "ShowFrame", "FrameBehind")
	}
	return decls("Time", "Hover", "Intensity")
}

// borderMask is strongest at the corners: pow(max(|u-.5|,|v-.5|)*2, 4).
func borderMask(uv shade.Vec2) float32 {
	d := max(math32.Abs(uv.X-0.5), math32.Abs(uv.Y-0.5)) * 2
	d2 := d * d
	return d2 * d2
}

// fire returns the fire colour and its activation at uv.
func (b *burning) fire(uv shade.Vec2, t, hover float32) (shade.Vec3, float32) {
	time := t * (1.2 + hover)
	n1 := shade.Simplex(uv.Scale(3).Add(shade.Vec2{Y: -time * 1.5}))
	n2 := shade.Simplex(uv.Scale(6).Add(shade.Vec2{X: time * 0.2, Y: -time * 2.5}))
	noise := n1*0.6 + n2*0.4

	shape := borderMask(uv) + noise*0.25*(0.5+hover*0.5)
	act := shade.Smoothstep(0.4, 0.95, shape)

	embers := b.embers(uv, time, hover)

	col := shade.Mix3(shade.Vec3{}, fireOrange, shade.Smoothstep(0, 0.5, act))
	col = shade.Mix3(col, fireGold, shade.Smoothstep(0.5, 0.9, act))
	col = shade.Mix3(col, fireWhite, shade.Smoothstep(0.9, 1, act))

	final := col.Scale(act * (1 + hover)).Add(fireGold.Scale(embers * 2))
	return final.Scale(b.p.Intensity), act
}

// embers scatters one animated glowing point per grid cell, checking the
// 3x3 neighbourhood so points may drift across cell borders. Ember radius
// scales with hover; at rest there are none.
func (b *burning) embers(uv shade.Vec2, time, hover float32) float32 {
	if hover <= 0 {
		return 0
	}
	cell := uv.Mul(emberGrid)
	gv := cell.Fract().AddS(-0.5)
	id := cell.Floor()
	var sum float32
	for y := -1; y <= 1; y++ {
		for x := -1; x <= 1; x++ {
			off := shade.Vec2{X: float32(x), Y: float32(y)}
			n := shade.Hash(id.Add(off))
			pt := time*0.5 + n*6.28
			pos := off.Add(shade.Vec2{X: math32.Sin(pt) * 0.4, Y: shade.Fract(pt)*2 - 1})
			radius := (0.04 + n*0.04) * hover
			sum += shade.Smoothstep(radius, 0, gv.Sub(pos).Length()) * (0.5 + 0.5*math32.Sin(pt*2))
		}
	}
	return sum
}

func (b *burning) Eval(uv shade.Vec2, f *Frame) Sample {
	fire, act := b.fire(uv, f.Time, f.Hover)
	fireAlpha := shade.Saturate(fire.Length() * 1.5)
	if !b.p.Textures.Any() {
		return finish(fire, fireAlpha, act)
	}

	p := shade.CardPoint(uv)
	cardMask := shade.CardMask(shade.CardSDF(p))
	mouse := f.Pointer.Scale(f.Hover)
	uvs := cardUVs(uv, &b.p, b.px, mouse)
	tx := b.p.Textures

	bg := tx.Background.Sample(uvs.bg)
	ch := tx.Character.Sample(uvs.char)
	fr := tx.Frame.Sample(uvs.frame)

	// Art warms toward the fire as it intensifies.
	warm := shade.Mix3(shade.Splat3(1), fireGold, 0.25*act)
	composite := bg.RGB().Mul(warm).Scale(cardMask)
	finalFrame := fr.RGB().Add(fireOrange.Scale(fr.W * act * 0.5))
	composite = frameStage(composite, &b.p, FrameBack, finalFrame, fr.W, cardMask)
	composite = over(composite, ch.RGB(), ch.W)
	composite = composite.Add(fire.Scale(fireAlpha))
	composite = frameStage(composite, &b.p, FrameFront, finalFrame, fr.W, cardMask)

	alpha := maxAlpha(cardMask, ch.W, frameAlpha(&b.p, fr.W), fireAlpha)
	return finish(composite, alpha, act)
}
