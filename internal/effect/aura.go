package effect

import (
	"github.com/chewxy/math32"

	"github.com/Garsondee/kimcard/internal/shade"
)

const auraCornerRadius = 0.04

var (
	auraDeepRed = shade.Vec3{X: 0.6, Y: 0.1, Z: 0.0}
	auraWhite   = shade.Vec3{X: 1.0, Y: 1.0, Z: 0.9}
)

type aura struct {
	p    Params
	size shade.Vec2
}

func newAura(p Params) *aura {
	return &aura{p: p, size: shade.Vec2{X: p.AuraScale, Y: p.AuraScale * p.AspectRatio}}
}

func (a *aura) Variant() Variant { return VariantAura }
func (a *aura) Params() Params { return a.p }
func (a *aura) Blend() BlendMode { return BlendAdditive }

func (a *aura) Uniforms() []UniformDecl {
	return decls("Time", "Hover", "Color", "Intensity", "Spread", "AuraSize")
}

// Eval renders an upward-flowing flame that hugs a rounded box.
func (a *aura) Eval(uv shade.Vec2, f *Frame) Sample {
	t := f.Time
	dist := shade.SDRoundedRect(uv.AddS(-0.5), a.size, auraCornerRadius)

	flow := shade.Vec2{
		X: uv.X + math32.Sin(uv.Y*3+t*5)*0.05,
		Y: uv.Y - t*1.5,
	}
	fireNoise := shade.AuraFBM.Value(flow.Mul(shade.Vec2{X: 6, Y: 2.5}))
	detail := shade.AuraFBM.Value(uv.Scale(12).AddS(-t * 4))

	outer := 1 - shade.Smoothstep(0, 0.2+a.p.Spread*0.8, dist)
	outer = shade.Saturate(outer) * shade.Step(0, dist+0.02)

	fire := (fireNoise*0.7 + detail*0.3) * outer
	fire = math32.Pow(max(fire, 0), 1.4)
	core := shade.Smoothstep(0.03, 0, math32.Abs(dist)) * 0.5

	col := shade.Mix3(auraDeepRed, a.p.Color, shade.Smoothstep(0.1, 0.5, fire))
	col = shade.Mix3(col, auraWhite, shade.Smoothstep(0.6, 1, fire+core))

	intensity := hoverIntensity(a.p.Intensity, f.Hover)
	alpha := shade.Smoothstep(0.1, 0.3, fire)*intensity + core*intensity
	pulse := 0.95 + 0.05*math32.Sin(t*8)
	return finish(col.Scale(pulse), alpha, fire+core)
}
