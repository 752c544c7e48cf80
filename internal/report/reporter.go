package report

import (
	"fmt"
	"strings"

	"github.com/Garsondee/kimcard/internal/effect"
	"github.com/Garsondee/kimcard/internal/raster"
)

// DefaultWindowFrames is the sliding window for recent-behaviour reports
// (about 5s at 60 fps).
const DefaultWindowFrames = 300

// CardReport captures one card's state at one frame.
type CardReport struct {
	Name           string
	Variant        effect.Variant
	Hover          float64
	Coverage       float64
	MeanAlpha      float64
	MeanActivation float64
	PeakLuminance  float64
}

// FrameReport is a snapshot of every card at one frame.
type FrameReport struct {
	Frame int
	Time  float64
	Cards []CardReport
}

// Reporter collects periodic frame reports and summarizes sliding windows.
type Reporter struct {
	history      []FrameReport
	windowFrames int
}

// NewReporter creates a reporter with the given window size.
func NewReporter(windowFrames int) *Reporter {
	if windowFrames <= 0 {
		windowFrames = DefaultWindowFrames
	}
	return &Reporter{windowFrames: windowFrames}
}

// CardSample is one card's input to Collect.
type CardSample struct {
	Name    string
	Variant effect.Variant
	Frame   effect.Frame
	Stats   raster.Stats
}

// Collect appends a snapshot. Call it periodically, e.g. every 30 frames.
func (r *Reporter) Collect(frame int, time float64, cards []CardSample) {
	rpt := FrameReport{Frame: frame, Time: time, Cards: make([]CardReport, 0, len(cards))}
	for _, c := range cards {
		rpt.Cards = append(rpt.Cards, CardReport{
			Name:           c.Name,
			Variant:        c.Variant,
			Hover:          float64(c.Frame.Hover),
			Coverage:       float64(c.Stats.Coverage),
			MeanAlpha:      float64(c.Stats.MeanAlpha),
			MeanActivation: float64(c.Stats.MeanActivation),
			PeakLuminance:  float64(c.Stats.PeakLuminance),
		})
	}
	r.history = append(r.history, rpt)

	// Keep at most two windows of history.
	maxKeep := max(r.windowFrames/30*2, 100)
	if len(r.history) > maxKeep {
		r.history = r.history[len(r.history)-maxKeep:]
	}
}

// Latest returns the most recent report, or nil if none collected yet.
func (r *Reporter) Latest() *FrameReport {
	if len(r.history) == 0 {
		return nil
	}
	return &r.history[len(r.history)-1]
}

// History returns all retained reports.
func (r *Reporter) History() []FrameReport {
	return r.history
}

// CardWindow is one card's averages over a window.
type CardWindow struct {
	Name              string
	Variant           effect.Variant
	AvgHover          float64
	AvgCoverage       float64
	AvgMeanActivation float64
	MaxPeakLuminance  float64
}

// WindowReport is an aggregated summary over a frame window.
type WindowReport struct {
	FromFrame, ToFrame int
	SampleCount        int
	Cards              []CardWindow // in first-seen order
}

// WindowSummary aggregates the reports within the window ending at the
// latest report.
func (r *Reporter) WindowSummary() *WindowReport {
	if len(r.history) == 0 {
		return nil
	}
	latest := r.history[len(r.history)-1].Frame
	cutoff := latest - r.windowFrames
	start := len(r.history) - 1
	for start > 0 && r.history[start-1].Frame >= cutoff {
		start--
	}
	window := r.history[start:]

	wr := &WindowReport{
		FromFrame:   window[0].Frame,
		ToFrame:     latest,
		SampleCount: len(window),
	}
	index := map[string]int{}
	counts := []int{}
	for _, rpt := range window {
		for _, c := range rpt.Cards {
			i, ok := index[c.Name]
			if !ok {
				i = len(wr.Cards)
				index[c.Name] = i
				wr.Cards = append(wr.Cards, CardWindow{Name: c.Name, Variant: c.Variant})
				counts = append(counts, 0)
			}
			cw := &wr.Cards[i]
			counts[i]++
			cw.AvgHover += c.Hover
			cw.AvgCoverage += c.Coverage
			cw.AvgMeanActivation += c.MeanActivation
			cw.MaxPeakLuminance = max(cw.MaxPeakLuminance, c.PeakLuminance)
		}
	}
	for i := range wr.Cards {
		n := float64(counts[i])
		wr.Cards[i].AvgHover /= n
		wr.Cards[i].AvgCoverage /= n
		wr.Cards[i].AvgMeanActivation /= n
	}
	return wr
}

// Format returns a human-readable multi-line string of the window summary.
func (wr *WindowReport) Format() string {
	if wr == nil {
		return "No data collected yet.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Render Report (F=%d..%d, %d samples) ===\n",
		wr.FromFrame, wr.ToFrame, wr.SampleCount)
	for _, c := range wr.Cards {
		fmt.Fprintf(&sb, "  %-12s %-9s hover=%.2f coverage=%5.1f%% activation=%.4f peak_lum=%.2f (%s)\n",
			c.Name, c.Variant, c.AvgHover, c.AvgCoverage*100, c.AvgMeanActivation,
			c.MaxPeakLuminance, exposureLabel(c.MaxPeakLuminance))
	}
	return sb.String()
}

func exposureLabel(l float64) string {
	switch {
	case l > 2:
		return "blown out"
	case l > 1:
		return "hot"
	case l > 0.25:
		return "balanced"
	case l > 0:
		return "dim"
	default:
		return "dark"
	}
}

// FormatGrades renders a grade table.
func FormatGrades(grades []Grade) string {
	var sb strings.Builder
	sb.WriteString("--- Card Grades ---\n")
	for _, g := range grades {
		gain := "n/a"
		if g.HoverGainOK {
			gain = fmt.Sprintf("%.2f", g.HoverGain)
		}
		fmt.Fprintf(&sb, "  %-12s %-9s %-2s %5.1f  coverage=%5.1f%% lit=%5.1f%% hover_gain=%s",
			g.Name, g.Variant, g.Grade, g.Score, g.AvgCoverage, g.LitPct, gain)
		if len(g.GoodTraits) > 0 {
			fmt.Fprintf(&sb, "  +[%s]", strings.Join(g.GoodTraits, ", "))
		}
		if len(g.BadTraits) > 0 {
			fmt.Fprintf(&sb, "  -[%s]", strings.Join(g.BadTraits, ", "))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
