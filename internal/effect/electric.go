package effect

import (
	"github.com/chewxy/math32"

	"github.com/Garsondee/kimcard/internal/shade"
)

var (
	holyWhite = shade.Vec3{X: 1.0, Y: 1.0, Z: 0.98}
	goldBase  = shade.Vec3{X: 1.0, Y: 0.85, Z: 0.3}
)

// Reference values the tier table is normalized against; tier m reproduces
// the unscaled border.
const (
	electricTubeFalloff = 150
	electricAuraFalloff = 12
	electricStrikeRate  = 3.2
	electricStrikeGate  = 0.96
	sparkCellsPerUnit   = 60

	// The border tube is bent by ElectricFBM within this distance of the
	// card edge; the displacement peaks near electricWarpAmount.
	electricWarpBand   = 0.15
	electricWarpAmount = 0.01
)

type electric struct {
	p    Params
	px   Parallax
	tier TierConstants
	ref  TierConstants

	tubeK  float32 // border tube falloff
	auraK  float32 // outer aura falloff
	gain   float32 // tier intensity relative to m
	sparkK float32 // spark cells per plane unit
}

func newElectric(p Params) *electric {
	tier := p.Tier.Constants()
	ref := TierM.Constants()
	return &electric{
		p:      p,
		px:     ParallaxFor(VariantElectric),
		tier:   tier,
		ref:    ref,
		tubeK:  electricTubeFalloff * ref.Range / tier.Range,
		auraK:  electricAuraFalloff * tier.Falloff / ref.Falloff,
		gain:   tier.Intensity / ref.Intensity,
		sparkK: sparkCellsPerUnit / tier.ParticleSize,
	}
}

func (e *electric) Variant() Variant { return VariantElectric }
func (e *electric) Params() Params { return e.p }
func (e *electric) Blend() BlendMode { return BlendOver }

func (e *electric) Uniforms() []UniformDecl {
	return decls("Time", "Hover", "Mouse",
		"ElectricRange", "GlowFalloff", "ElectricIntensity",
		"ParticleDensity", "ParticleSize", "ParticleIntensity", "FrameGlow",
		"FrameScale", "CharScale", "CharOffset", "ShowFrame", "FrameBehind")
}

// border holds the border-energy terms shared by compositing.
type border struct {
	electricity float32 // crackling filament strength on the tube
	core        float32 // thin bright line on the boundary
	glow        float32 // near glow driven by electricity
	aura        float32 // wide steady halo
	jitter      float32
}

// borderWarp displaces the card edge with slow simplex fbm so the tube
// wanders. It is zero outside electricWarpBand.
func borderWarp(p shade.Vec2, sdf, time, hover float32) float32 {
	if math32.Abs(sdf) >= electricWarpBand {
		return 0
	}
	drift := shade.Vec2{X: time * 0.2, Y: -time * 0.3}
	return shade.ElectricFBM.Simplex(p.Scale(2).Add(drift)) * electricWarpAmount * shade.Mix(0.4, 1, hover)
}

func (e *electric) border(p shade.Vec2, sdf, time, hover float32) border {
	ad := math32.Abs(sdf)
	wd := math32.Abs(sdf + borderWarp(p, sdf, time, hover))
	f1 := shade.Filament(p.Scale(3.5), time*1.5)
	f2 := shade.Filament(p.Scale(7.5), -time*2.5)
	tube := math32.Exp(-wd * e.tubeK)
	filaments := (f1*1.6 + f2) * tube

	jitter := shade.Step(0.1, shade.Fract(math32.Sin(time*60)*43758.5453))
	electricity := filaments * jitter * shade.Mix(0.5, 3, hover)

	// The aura follows the true edge; only the tube wanders.
	return border{
		electricity: electricity,
		core:        shade.Smoothstep(0.008, 0, wd-electricity*0.012),
		glow:        math32.Exp(-wd*80) * electricity * 3.5 * e.gain,
		aura:        math32.Exp(-ad*e.auraK) * shade.Mix(0.15, 1.2, hover) * e.gain,
		jitter:      jitter,
	}
}

// strike holds the stochastic lightning strike terms.
type strike struct {
	layer shade.Vec3
	flash float32
	glow  float32
	on    float32
}

// strikes evaluates up to boltCount bolts that fire together when the strike
// noise crosses its gate, each from its own seeded x position.
func (e *electric) strikes(p shade.Vec2, t, time float32) strike {
	strikeTime := t * electricStrikeRate
	trigger := shade.Step(electricStrikeGate, shade.Simplex(shade.Vec2{X: strikeTime * 0.35}))
	strobe := shade.Step(0.35, shade.Fract(math32.Sin(t*150)*43758.5453))
	on := trigger * strobe
	if on == 0 {
		return strike{on: trigger}
	}
	seed := math32.Floor(strikeTime)

	bp := p.Scale(1.5)
	j1 := shade.Simplex(bp.Scale(4).AddS(time * 2))
	j2 := shade.Simplex(bp.Scale(12).AddS(-time * 4))
	jagged := j1*0.15 + j2*0.05

	var core, layer float32
	for i := range boltCount {
		fi := float32(i)
		ls := seed + fi*21.43
		x := (shade.Fract(math32.Sin(ls)*789.12) - 0.5) * 1.5
		branch := shade.Step(0.7, shade.Fract(math32.Sin(ls+bp.Y*10))) * j1 * 0.2
		d := math32.Abs(p.X - x - jagged - branch)
		core += shade.Smoothstep(0.012, 0, d) * (1 - fi*0.2)
		layer += shade.Smoothstep(0.05, 0, d) * (0.6 - fi*0.1)
	}
	return strike{
		layer: holyWhite.Scale(core).Add(goldBase.Scale(layer)).Scale(on * 8),
		flash: on * 0.4,
		glow:  on * math32.Exp(-math32.Abs(p.X)*1.5) * 0.2,
		on:    trigger,
	}
}

// sparks are particles thrown off the border: sparse large ones at high
// tiers, dense fine ones at low tiers.
func (e *electric) sparks(p shade.Vec2, sdf, time, hover float32) float32 {
	g := p.Scale(e.sparkK).Add(shade.Vec2{Y: -time * 1.5})
	id := g.Floor()
	lit := 1 - shade.Step(e.tier.ParticleDensity, shade.Random(id))
	if lit == 0 {
		return 0
	}
	h := shade.Random(id.AddS(7.13))
	pos := shade.Vec2{X: h - 0.5, Y: shade.Random(id.AddS(3.71)) - 0.5}.Scale(0.6)
	d := g.Fract().AddS(-0.5).Sub(pos).Length()
	twinkle := 0.5 + 0.5*math32.Sin(time*6+h*40)
	near := math32.Exp(-math32.Abs(sdf) * e.tier.Falloff)
	return shade.Smoothstep(0.15, 0, d) * twinkle * near * e.tier.ParticleIntensity * 0.001 * shade.Mix(0.2, 1, hover)
}

func (e *electric) Eval(uv shade.Vec2, f *Frame) Sample {
	hover := f.Hover
	time := f.Time * shade.Mix(1.2, 4, hover)
	mouse := f.Pointer.Scale(hover)

	p := shade.CardPoint(uv)
	sdf := shade.CardSDF(p)
	cardMask := shade.CardMask(sdf)

	b := e.border(p, sdf, time, hover)
	energy := goldBase.Scale(b.core * b.electricity * 8).
		Add(holyWhite.Scale(b.glow * 1.5)).
		Add(holyWhite.Scale(b.aura * 0.4))

	s := e.strikes(p, f.Time, time)
	sparks := e.sparks(p, sdf, time, hover)

	// God rays radiating from the character focus.
	rel := p.Sub(e.p.CharOffset)
	angle := math32.Atan2(rel.Y, rel.X)
	rays := (math32.Sin(angle*8+time*0.3)*0.5 + 0.5) * (math32.Sin(angle*16-time*0.1)*0.5 + 0.5)
	radiance := math32.Pow(max(0, 1-rel.Length()*0.7), 4) * rays * hover
	holy := shade.Mix3(goldBase, holyWhite, 0.8).Scale(radiance * 1.5)

	uvs := cardUVs(uv, &e.p, e.px, mouse)
	tx := e.p.Textures
	bg := tx.Background.Sample(uvs.bg).RGB()
	ch := tx.Character.Sample(uvs.char)
	fr := tx.Frame.Sample(uvs.frame)

	flicker := 1 + s.flash + b.jitter*0.05
	bg = shade.Mix3(bg, holyWhite, s.flash*0.3).Scale(shade.Mix(0.95, 0.6, hover) * flicker)

	frameGlow := e.tier.FrameGlow / e.ref.FrameGlow
	finalFrame := fr.RGB().Scale(1 + b.glow*0.5 + s.flash).
		Add(shade.Mix3(goldBase, holyWhite, 0.6).Scale(fr.W * (b.glow + b.aura) * 0.5 * frameGlow))

	composite := bg.Scale(cardMask).Add(holy.Scale(cardMask))
	composite = frameStage(composite, &e.p, FrameBack, finalFrame, fr.W, cardMask)

	rim := math32.Pow(1-ch.W, 4) * (b.glow*1.2 + b.aura*0.5 + s.flash*3.5) * 0.7
	tint := shade.Mix3(shade.Splat3(1), holyWhite, 0.8).Scale(s.flash * 0.5)
	finalChar := ch.RGB().Scale(1 + s.flash*0.6).Add(tint).Add(shade.Mix3(goldBase, holyWhite, 0.5).Scale(rim))
	composite = over(composite, finalChar, ch.W)

	// Energy is additive and spills past the card edge; strikes stay inside.
	composite = composite.Add(energy.Scale(0.9))
	composite = composite.Add(holyWhite.Scale(sparks))
	composite = composite.Add(s.layer.Scale(cardMask))
	composite = composite.Add(holyWhite.Scale((s.glow + s.flash*0.3) * cardMask))
	composite = frameStage(composite, &e.p, FrameFront, finalFrame, fr.W, cardMask)

	glowAlpha := shade.Saturate(b.aura + b.glow + s.on*cardMask + radiance + s.flash + sparks)
	alpha := maxAlpha(cardMask, ch.W, frameAlpha(&e.p, fr.W), glowAlpha)
	return finish(composite, alpha, b.aura+b.glow+b.electricity)
}
