package effect

import (
	"github.com/chewxy/math32"

	"github.com/Garsondee/kimcard/internal/shade"
)

const (
	boltCount     = 3
	flickerRate   = 20  // gate samples per second
	flickerGate   = 0.8 // a bolt is visible while its gate sample exceeds this
	boltGlowWidth = 0.02
)

type lightning struct {
	p Params
}

func newLightning(p Params) *lightning { return &lightning{p: p} }

func (l *lightning) Variant() Variant { return VariantLightning }
func (l *lightning) Params() Params { return l.p }
func (l *lightning) Blend() BlendMode { return BlendAdditive }

func (l *lightning) Uniforms() []UniformDecl {
	return decls("Time", "Hover", "Color", "Intensity")
}

// Eval draws three horizontal bolts. Each re-seeds its vertical offset twice
// a second, bends along an fbm path and is gated on and off at flickerRate.
func (l *lightning) Eval(uv shade.Vec2, f *Frame) Sample {
	var energy float32
	gateT := math32.Floor(f.Time * flickerRate)
	taper := shade.Smoothstep(0, 0.2, uv.X) * shade.Smoothstep(1, 0.8, uv.X)
	for i := range boltCount {
		fi := float32(i)
		if shade.Random(shade.Vec2{X: gateT, Y: fi}) <= flickerGate {
			continue
		}
		t := f.Time*2 + fi
		seed := math32.Floor(t)
		offset := shade.Random(shade.Vec2{X: seed, Y: fi})
		distortion := shade.LightningFBM.Value(shade.Vec2{X: uv.X * 10, Y: t}) * 0.4
		path := math32.Abs(uv.Y - 0.5 + distortion - (offset-0.5)*0.5)
		energy += boltGlowWidth / (path + 0.001) * taper
	}

	intensity := hoverIntensity(l.p.Intensity, f.Hover)
	col := l.p.Color.Scale(energy * intensity)
	return finish(col, energy*l.p.Color.Length(), energy)
}
