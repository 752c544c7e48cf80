package raster

import "github.com/Garsondee/kimcard/internal/effect"

// Stats summarizes one rendered frame.
type Stats struct {
	Pixels         int
	Covered        int     // pixels with non-zero alpha
	Coverage       float32 // Covered / Pixels
	MeanAlpha      float32
	MeanActivation float32
	PeakActivation float32
	PeakLuminance  float32 // of colour*alpha, before clamping

	alphaSum, activationSum float32
}

func (s *Stats) add(x effect.Sample) {
	s.Pixels++
	if x.Alpha > 0 {
		s.Covered++
	}
	s.alphaSum += x.Alpha
	s.activationSum += x.Activation
	s.PeakActivation = max(s.PeakActivation, x.Activation)
	s.PeakLuminance = max(s.PeakLuminance, x.Color.Luminance()*x.Alpha)
}

// mergeStats folds per-row partials into frame totals.
func mergeStats(rows []Stats, pixels int) Stats {
	var out Stats
	for _, r := range rows {
		out.Pixels += r.Pixels
		out.Covered += r.Covered
		out.alphaSum += r.alphaSum
		out.activationSum += r.activationSum
		out.PeakActivation = max(out.PeakActivation, r.PeakActivation)
		out.PeakLuminance = max(out.PeakLuminance, r.PeakLuminance)
	}
	if pixels > 0 {
		n := float32(pixels)
		out.Coverage = float32(out.Covered) / n
		out.MeanAlpha = out.alphaSum / n
		out.MeanActivation = out.activationSum / n
	}
	return out
}
