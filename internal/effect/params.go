package effect

import (
	"github.com/Garsondee/kimcard/internal/shade"
	"github.com/Garsondee/kimcard/internal/texture"
)

// MinScale is the smallest accepted texture scale; (uv-0.5)/scale divides by it.
const MinScale = 0.05

// FrameLayer selects whether the frame art is drawn over or under the character.
type FrameLayer int

const (
	FrameFront FrameLayer = iota
	FrameBack
)

func (l FrameLayer) String() string {
	if l == FrameBack {
		return "back"
	}
	return "front"
}

// ParseFrameLayer maps "front"/"back"; anything else is front.
func ParseFrameLayer(s string) FrameLayer {
	if s == "back" {
		return FrameBack
	}
	return FrameFront
}

// Textures are the optional art layers of a card. Nil layers are transparent.
type Textures struct {
	Background *texture.Texture
	Character  *texture.Texture
	Frame      *texture.Texture
}

// Any reports whether at least one layer is present.
func (t Textures) Any() bool {
	return t.Background != nil || t.Character != nil || t.Frame != nil
}

// Params are the construction-time settings of a program.
type Params struct {
	Color      shade.Vec3
	Intensity  float32
	Spread     float32
	Tier       SizeTier
	Textures   Textures
	FrameScale float32
	CharScale  float32
	CharOffset shade.Vec2
	ShowFrame  bool
	FrameLayer FrameLayer

	// Aura box: width AuraScale, height AuraScale*AspectRatio.
	AuraScale   float32
	AspectRatio float32

	CloudDensity float32
	CloudSpeed   float32
}

// DefaultParams returns the documented defaults.
func DefaultParams() Params {
	return Params{
		Color:        shade.Splat3(1),
		Intensity:    1.0,
		Spread:       0.05,
		Tier:         TierM,
		FrameScale:   1.0,
		CharScale:    1.0,
		ShowFrame:    true,
		FrameLayer:   FrameFront,
		AuraScale:    0.33,
		AspectRatio:  1.0,
		CloudDensity: 0.6,
		CloudSpeed:   0.4,
	}
}

// Normalize clamps malformed values: scales to MinScale, non-negative
// gains to zero, unknown tiers to m and non-finite values to defaults.
func (p Params) Normalize() Params {
	d := DefaultParams()
	p.FrameScale = atLeast(p.FrameScale, MinScale, d.FrameScale)
	p.CharScale = atLeast(p.CharScale, MinScale, d.CharScale)
	p.AuraScale = atLeast(p.AuraScale, MinScale, d.AuraScale)
	p.AspectRatio = atLeast(p.AspectRatio, MinScale, d.AspectRatio)
	p.Intensity = atLeast(p.Intensity, 0, d.Intensity)
	p.Spread = atLeast(p.Spread, 0, d.Spread)
	p.CloudDensity = atLeast(p.CloudDensity, 0, d.CloudDensity)
	p.CloudSpeed = atLeast(p.CloudSpeed, 0, d.CloudSpeed)
	p.Color = shade.Vec3{X: shade.Sanitize(p.Color.X), Y: shade.Sanitize(p.Color.Y), Z: shade.Sanitize(p.Color.Z)}
	if !shade.Finite(p.CharOffset.X) || !shade.Finite(p.CharOffset.Y) {
		p.CharOffset = shade.Vec2{}
	}
	if p.Tier < 0 || p.Tier >= tierCount {
		p.Tier = TierM
	}
	if p.FrameLayer != FrameBack {
		p.FrameLayer = FrameFront
	}
	return p
}

func atLeast(v, lo, fallback float32) float32 {
	if !shade.Finite(v) {
		return fallback
	}
	return max(v, lo)
}
