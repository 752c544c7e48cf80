package effect

import "strings"

// SizeTier is a discrete scale preset for the electric border.
type SizeTier int

const (
	TierXS SizeTier = iota
	TierS
	TierM
	TierL
	TierXL
	tierCount
)

// TierConstants are the per-tier shaping constants.
type TierConstants struct {
	Range             float32 // width of the border tube
	Falloff           float32 // exponential falloff of the outer aura
	Intensity         float32 // energy gain
	ParticleDensity   float32 // fraction of spark cells that are lit
	ParticleSize      float32 // spark cell size multiplier
	ParticleIntensity float32 // spark brightness
	FrameGlow         float32 // frame rim glow strength
}

var tierTable = [tierCount]TierConstants{
	TierXS: {Range: 0.04, Falloff: 50, Intensity: 1.0, ParticleDensity: 0.22, ParticleSize: 0.8, ParticleIntensity: 150, FrameGlow: 0.6},
	TierS:  {Range: 0.08, Falloff: 35, Intensity: 1.2, ParticleDensity: 0.18, ParticleSize: 1.0, ParticleIntensity: 300, FrameGlow: 1.5},
	TierM:  {Range: 0.15, Falloff: 22, Intensity: 1.5, ParticleDensity: 0.12, ParticleSize: 1.4, ParticleIntensity: 600, FrameGlow: 2.8},
	TierL:  {Range: 0.25, Falloff: 14, Intensity: 1.8, ParticleDensity: 0.08, ParticleSize: 2.0, ParticleIntensity: 1200, FrameGlow: 5.0},
	TierXL: {Range: 0.45, Falloff: 9, Intensity: 2.2, ParticleDensity: 0.03, ParticleSize: 3.0, ParticleIntensity: 3000, FrameGlow: 10.0},
}

var tierNames = [tierCount]string{
	TierXS: "xs",
	TierS:  "s",
	TierM:  "m",
	TierL:  "l",
	TierXL: "xl",
}

// Constants returns the table row for t; out-of-range tiers use TierM.
func (t SizeTier) Constants() TierConstants {
	if t < 0 || t >= tierCount {
		return tierTable[TierM]
	}
	return tierTable[t]
}

func (t SizeTier) String() string {
	if t < 0 || t >= tierCount {
		return tierNames[TierM]
	}
	return tierNames[t]
}

// ParseTier maps "xs".."xl" to a tier. Unknown names yield TierM, ok=false.
func ParseTier(s string) (SizeTier, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range tierNames {
		if n == s {
			return SizeTier(i), true
		}
	}
	return TierM, false
}

// MarshalText implements encoding.TextMarshaler.
func (t SizeTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler; unknown names become m.
func (t *SizeTier) UnmarshalText(b []byte) error {
	*t, _ = ParseTier(string(b))
	return nil
}
