// Package effect implements the procedural card effect programs.
//
// A Program is a pure function from a uv coordinate and an immutable Frame
// snapshot to a colour sample. Programs hold only construction-time
// parameters, so one Program may be evaluated from many goroutines at once.
package effect

import (
	"strings"

	"github.com/Garsondee/kimcard/internal/shade"
)

// Variant selects one member of the effect family.
type Variant int

const (
	VariantSheen Variant = iota
	VariantBurning
	VariantLightning
	VariantAura
	VariantElectric
	VariantCloud
	variantCount
)

var variantNames = [variantCount]string{
	VariantSheen:     "sheen",
	VariantBurning:   "burning",
	VariantLightning: "lightning",
	VariantAura:      "aura",
	VariantElectric:  "electric",
	VariantCloud:     "cloud",
}

func (v Variant) String() string {
	if v < 0 || v >= variantCount {
		return "unknown"
	}
	return variantNames[v]
}

// Variants lists every variant in declaration order.
func Variants() []Variant {
	out := make([]Variant, variantCount)
	for i := range out {
		out[i] = Variant(i)
	}
	return out
}

// ParseVariant maps a name to a Variant. Unknown names fall back to
// VariantSheen with ok=false. "fire" is accepted as an alias of burning.
func ParseVariant(s string) (Variant, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "fire" {
		return VariantBurning, true
	}
	for i, n := range variantNames {
		if n == s {
			return Variant(i), true
		}
	}
	return VariantSheen, false
}

// BlendMode is how a program's output layers onto what is already drawn.
type BlendMode int

const (
	// BlendAdditive adds colour*alpha to the destination (glow layers).
	BlendAdditive BlendMode = iota
	// BlendOver is standard straight-alpha source-over (textured cards).
	BlendOver
)

func (b BlendMode) String() string {
	if b == BlendOver {
		return "over"
	}
	return "additive"
}

// Frame is the per-frame uniform snapshot produced by the parameter updater.
type Frame struct {
	Time    float32    // seconds since the surface was created
	Hover   float32    // smoothed hover amount in [0,1]
	Pointer shade.Vec2 // smoothed pointer offset from card centre, [-0.5,0.5]^2
}

// Sample is one evaluated pixel.
type Sample struct {
	Color      shade.Vec3 // linear, unclamped, non-premultiplied
	Alpha      float32    // [0,1]
	Activation float32    // the program's scalar energy before colour mapping
}

// Program is one configured effect.
type Program interface {
	Variant() Variant
	Blend() BlendMode
	Params() Params
	Uniforms() []UniformDecl
	Eval(uv shade.Vec2, f *Frame) Sample
}

// New builds the program for v. Params are normalized first. An unknown
// variant yields the sheen program.
func New(v Variant, p Params) Program {
	p = p.Normalize()
	switch v {
	case VariantBurning:
		return newBurning(p)
	case VariantLightning:
		return newLightning(p)
	case VariantAura:
		return newAura(p)
	case VariantElectric:
		return newElectric(p)
	case VariantCloud:
		return newCloud(p)
	default:
		return newSheen(p)
	}
}

// finish makes a sample total: non-finite or negative channels become 0 and
// alpha is clamped to [0,1].
func finish(c shade.Vec3, alpha, activation float32) Sample {
	return Sample{
		Color: shade.Vec3{
			X: shade.Sanitize(c.X),
			Y: shade.Sanitize(c.Y),
			Z: shade.Sanitize(c.Z),
		},
		Alpha:      shade.Saturate(shade.Sanitize(alpha)),
		Activation: shade.Sanitize(activation),
	}
}
