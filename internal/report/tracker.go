package report

import (
	"math"
	"sort"

	"github.com/Garsondee/kimcard/internal/effect"
	"github.com/Garsondee/kimcard/internal/raster"
)

// Grading thresholds.
const (
	gradeMinFrames   = 30
	gradeMinPhase    = 10   // frames needed in each of idle and hovered
	hoverThreshold   = 0.5  // smoothed hover above which a frame counts as hovered
	litActivationMin = 1e-3 // mean activation below which a frame is dark
)

// Tracker accumulates per-frame render statistics for one card.
type Tracker struct {
	Name    string
	Variant effect.Variant

	Frames        int
	FramesHovered int
	FramesLit     int
	LitToggles    int // lit <-> dark changes between consecutive frames

	CoverageSum        float64
	IdleActivationSum  float64
	HoverActivationSum float64
	PeakActivation     float64
	PeakLuminance      float64
	FramesOverexposed  int // frames whose peak luminance exceeds 1
	LastCoverage       float64
	LastMeanActivation float64

	prevLit bool
}

// NewTracker returns an empty tracker.
func NewTracker(name string, v effect.Variant) *Tracker {
	return &Tracker{Name: name, Variant: v}
}

// Update accumulates one rendered frame.
func (t *Tracker) Update(st raster.Stats, f effect.Frame) {
	act := float64(st.MeanActivation)
	lit := act >= litActivationMin
	if t.Frames > 0 && lit != t.prevLit {
		t.LitToggles++
	}
	t.prevLit = lit
	t.Frames++
	if lit {
		t.FramesLit++
	}

	if f.Hover > hoverThreshold {
		t.FramesHovered++
		t.HoverActivationSum += act
	} else {
		t.IdleActivationSum += act
	}

	t.CoverageSum += float64(st.Coverage)
	t.PeakActivation = math.Max(t.PeakActivation, float64(st.PeakActivation))
	t.PeakLuminance = math.Max(t.PeakLuminance, float64(st.PeakLuminance))
	if st.PeakLuminance > 1 {
		t.FramesOverexposed++
	}
	t.LastCoverage = float64(st.Coverage)
	t.LastMeanActivation = act
}

// Grade is the computed assessment of one card's run.
type Grade struct {
	Name    string
	Variant effect.Variant
	Grade   string  // A+, A, B+, B, C+, C, D, F
	Score   float64 // 0-100

	// Component scores (0-100; -1 = not enough data to grade).
	PresenceScore  float64
	ResponseScore  float64
	StabilityScore float64
	ExposureScore  float64

	// Observed traits.
	GoodTraits []string
	BadTraits  []string

	// Key stats.
	AvgCoverage     float64 // percent
	LitPct          float64
	HoverGain       float64 // hovered / idle mean activation, valid when HoverGainOK
	HoverGainOK     bool
	DarkAtRest      bool // lit while hovered but dark at rest; the gain is unbounded
	TogglesPerFrame float64
}

// GradeAll computes grades for every tracker, best first.
func GradeAll(trackers []*Tracker) []Grade {
	grades := make([]Grade, 0, len(trackers))
	for _, t := range trackers {
		grades = append(grades, computeGrade(t))
	}
	sort.SliceStable(grades, func(i, j int) bool {
		return grades[i].Score > grades[j].Score
	})
	return grades
}

func computeGrade(t *Tracker) Grade {
	g := Grade{
		Name:           t.Name,
		Variant:        t.Variant,
		PresenceScore:  -1,
		ResponseScore:  -1,
		StabilityScore: -1,
		ExposureScore:  -1,
	}
	if t.Frames == 0 {
		g.Grade = "F"
		return g
	}
	n := float64(t.Frames)
	g.AvgCoverage = t.CoverageSum / n * 100
	g.LitPct = float64(t.FramesLit) / n * 100
	g.TogglesPerFrame = float64(t.LitToggles) / n

	idleFrames := t.Frames - t.FramesHovered
	if t.FramesHovered > 0 && idleFrames > 0 {
		idle := t.IdleActivationSum / float64(idleFrames)
		hovered := t.HoverActivationSum / float64(t.FramesHovered)
		switch {
		case idle > 0:
			g.HoverGain = hovered / idle
			g.HoverGainOK = true
		case hovered > 0:
			g.DarkAtRest = true
		}
	}

	if t.Frames >= gradeMinFrames {
		g.PresenceScore = clampScore(40 + 60*g.LitPct/100)
		g.StabilityScore = clampScore(100 - 150*g.TogglesPerFrame)
		g.ExposureScore = clampScore(100 - 80*float64(t.FramesOverexposed)/n)
	}
	if t.FramesHovered >= gradeMinPhase && idleFrames >= gradeMinPhase {
		gain := g.HoverGain
		if g.DarkAtRest {
			gain = 3
		}
		g.ResponseScore = clampScore(50 + 25*math.Log2(math.Max(gain, 1e-3)))
	}

	type scoredWeight struct {
		score  float64
		weight float64
	}
	items := []scoredWeight{
		{g.PresenceScore, 0.30},
		{g.ResponseScore, 0.35},
		{g.StabilityScore, 0.20},
		{g.ExposureScore, 0.15},
	}
	var sum, w float64
	for _, it := range items {
		if it.score < 0 {
			continue
		}
		sum += it.score * it.weight
		w += it.weight
	}
	if w > 0 {
		g.Score = sum / w
	}
	g.Grade = letterGrade(g.Score, w > 0)

	if g.DarkAtRest || (g.HoverGainOK && g.HoverGain >= 1.5) {
		g.GoodTraits = append(g.GoodTraits, "responds to hover")
	}
	if g.LitPct >= 90 {
		g.GoodTraits = append(g.GoodTraits, "always visible")
	}
	if g.TogglesPerFrame > 0.3 {
		g.BadTraits = append(g.BadTraits, "strobing")
	}
	if t.FramesOverexposed > t.Frames/2 {
		g.BadTraits = append(g.BadTraits, "overexposed")
	}
	if t.FramesLit == 0 {
		g.BadTraits = append(g.BadTraits, "never lit")
	}
	return g
}

func clampScore(s float64) float64 {
	return math.Max(0, math.Min(100, s))
}

func letterGrade(score float64, graded bool) string {
	if !graded {
		return "-"
	}
	switch {
	case score >= 90:
		return "A+"
	case score >= 80:
		return "A"
	case score >= 72:
		return "B+"
	case score >= 64:
		return "B"
	case score >= 56:
		return "C+"
	case score >= 48:
		return "C"
	case score >= 35:
		return "D"
	default:
		return "F"
	}
}
