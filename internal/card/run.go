package card

import (
	"context"
	"fmt"
	"image"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/Garsondee/kimcard/internal/anim"
	"github.com/Garsondee/kimcard/internal/deck"
	"github.com/Garsondee/kimcard/internal/effect"
	"github.com/Garsondee/kimcard/internal/logging"
	"github.com/Garsondee/kimcard/internal/raster"
	"github.com/Garsondee/kimcard/internal/report"
	"github.com/Garsondee/kimcard/internal/shade"
	"github.com/Garsondee/kimcard/internal/texture"
)

// Run drives a set of cards headlessly through a hover schedule, rendering
// every frame and recording what happened. It is deterministic for a given
// seed.
type Run struct {
	Width    int
	Height   int
	Cards    []*Card
	Log      *report.FrameLog
	Reporter *report.Reporter

	trackers  []*report.Tracker
	images    []*image.NRGBA
	phases    []float64 // pointer orbit phase per card
	renderer  *raster.Renderer
	rng       *rand.Rand
	log       *zap.Logger
	workers   int
	dt        time.Duration
	hoverFrom int
	hoverTo   int // exclusive; <0 means until the end
	every     int // reporter collection period in frames
	smoothing anim.Smoothing

	frame int
}

// runOptionKind controls the pass in which an option is applied.
type runOptionKind int

const (
	runOptInfra runOptionKind = iota // size, seed, verbose, schedule; applied first
	runOptCard                       // cards; applied once the renderer exists
)

// RunOption is a builder function applied to a Run during construction.
type RunOption struct {
	kind runOptionKind
	fn   func(*Run)
}

// WithSize sets the render resolution of each card.
func WithSize(w, h int) RunOption {
	return RunOption{runOptInfra, func(r *Run) {
		r.Width = w
		r.Height = h
	}}
}

// WithSeed sets the RNG seed for the pointer paths.
func WithSeed(seed int64) RunOption {
	return RunOption{runOptInfra, func(r *Run) {
		r.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- animation only
	}}
}

// WithVerbose enables per-frame statistics in the frame log.
func WithVerbose(v bool) RunOption {
	return RunOption{runOptInfra, func(r *Run) {
		r.Log = report.NewFrameLog(v)
	}}
}

// WithWorkers sets the rasterizer worker limit.
func WithWorkers(n int) RunOption {
	return RunOption{runOptInfra, func(r *Run) { r.workers = n }}
}

// WithFrameRate sets the simulated host refresh rate.
func WithFrameRate(fps int) RunOption {
	return RunOption{runOptInfra, func(r *Run) {
		if fps > 0 {
			r.dt = time.Second / time.Duration(fps)
		}
	}}
}

// WithHoverWindow hovers every card for frames in [from, to). A negative
// to keeps the cards hovered until the end of the run.
func WithHoverWindow(from, to int) RunOption {
	return RunOption{runOptInfra, func(r *Run) {
		r.hoverFrom = from
		r.hoverTo = to
	}}
}

// WithReportEvery sets how often the windowed reporter samples.
func WithReportEvery(n int) RunOption {
	return RunOption{runOptInfra, func(r *Run) {
		if n > 0 {
			r.every = n
		}
	}}
}

// WithSmoothing selects the updater easing mode for every card.
func WithSmoothing(m anim.Smoothing) RunOption {
	return RunOption{runOptInfra, func(r *Run) { r.smoothing = m }}
}

// WithLogger routes run diagnostics to log.
func WithLogger(log *zap.Logger) RunOption {
	return RunOption{runOptInfra, func(r *Run) { r.log = logging.OrNop(log) }}
}

// WithCard adds one card.
func WithCard(name string, v effect.Variant, p effect.Params) RunOption {
	return RunOption{runOptCard, func(r *Run) {
		r.addCard(deck.Resolved{Name: name, Variant: v, Params: p})
	}}
}

// WithDeck adds every card of d, loading textures through cache.
func WithDeck(d *deck.Deck, cache *texture.Cache) RunOption {
	return RunOption{runOptCard, func(r *Run) {
		for _, rc := range d.Resolve(cache, r.log) {
			r.addCard(rc)
		}
	}}
}

// NewRun constructs a Run from the given options in two ordered passes:
//  1. Infrastructure (size, seed, verbose, schedule)
//  2. Cards
func NewRun(opts ...RunOption) *Run {
	r := &Run{
		Width:     128,
		Height:    176,
		Log:       report.NewFrameLog(false),
		rng:       rand.New(rand.NewSource(1)), // #nosec G404 -- animation only
		log:       zap.NewNop(),
		dt:        time.Second / anim.ReferenceRate,
		hoverFrom: 60,
		hoverTo:   -1,
		every:     30,
	}
	for _, o := range opts {
		if o.kind == runOptInfra {
			o.fn(r)
		}
	}
	r.renderer = raster.NewRenderer(r.workers, r.log)
	r.Reporter = report.NewReporter(report.DefaultWindowFrames)
	for _, o := range opts {
		if o.kind == runOptCard {
			o.fn(r)
		}
	}
	return r
}

func (r *Run) addCard(rc deck.Resolved) {
	name, variant := rc.Name, rc.Variant
	c := FromResolved(rc,
		anim.WithSmoothing(r.smoothing),
		anim.OnTransition(func(from, to anim.State, at float64) {
			r.Log.Transition(r.frame, name, variant, from, to, at)
		}),
	)
	r.Cards = append(r.Cards, c)
	r.trackers = append(r.trackers, report.NewTracker(rc.Name, rc.Variant))
	r.images = append(r.images, raster.NewCard(r.Width, r.Height))
	r.phases = append(r.phases, r.rng.Float64()*2*math.Pi)
}

// RunFrames advances and renders every card n times.
func (r *Run) RunFrames(ctx context.Context, n int) error {
	for range n {
		if err := r.runOneFrame(ctx); err != nil {
			return err
		}
	}
	return nil
}

// RunUntil advances up to maxFrames, stopping early once predicate returns
// true. It returns the frame at which the predicate held, or -1.
func (r *Run) RunUntil(ctx context.Context, predicate func(*Run) bool, maxFrames int) (int, error) {
	for range maxFrames {
		if err := r.runOneFrame(ctx); err != nil {
			return -1, err
		}
		if predicate(r) {
			return r.frame, nil
		}
	}
	return -1, nil
}

// Interaction returns the scripted input for card i at the current frame:
// hovered inside the hover window, with the pointer orbiting the centre.
func (r *Run) Interaction(i int) anim.Interaction {
	hovered := r.frame >= r.hoverFrom && (r.hoverTo < 0 || r.frame < r.hoverTo)
	if !hovered {
		return anim.Interaction{}
	}
	a := r.phases[i] + float64(r.frame)*0.05
	return anim.Interaction{
		Hovered: true,
		Pointer: shade.Vec2{X: float32(0.35 * math.Cos(a)), Y: float32(0.35 * math.Sin(a))},
	}
}

func (r *Run) runOneFrame(ctx context.Context) error {
	r.frame++
	samples := make([]report.CardSample, 0, len(r.Cards))
	for i, c := range r.Cards {
		f := c.Step(r.Interaction(i), r.dt)
		st, err := c.Render(ctx, r.renderer, r.images[i])
		if err != nil {
			r.Log.Error(r.frame, c.Name, c.Variant(), err)
			return fmt.Errorf("card %s frame %d: %w", c.Name, r.frame, err)
		}
		r.trackers[i].Update(st, f)
		r.Log.Stats(r.frame, c.Name, c.Variant(), f, st)
		samples = append(samples, report.CardSample{Name: c.Name, Variant: c.Variant(), Frame: f, Stats: st})
	}
	if r.frame%r.every == 0 {
		r.Reporter.Collect(r.frame, float64(r.frame)*r.dt.Seconds(), samples)
	}
	return nil
}

// CurrentFrame returns the number of frames run so far.
func (r *Run) CurrentFrame() int { return r.frame }

// Image returns the last rendered image of card i.
func (r *Run) Image(i int) *image.NRGBA { return r.images[i] }

// Trackers returns the per-card trackers in card order.
func (r *Run) Trackers() []*report.Tracker { return r.trackers }

// Grades grades every card, best first.
func (r *Run) Grades() []report.Grade { return report.GradeAll(r.trackers) }

// CardSnapshot is a lightweight copy of one card's state.
type CardSnapshot struct {
	Name    string
	Variant effect.Variant
	State   anim.State
	Frame   effect.Frame
}

// RunSnapshot captures every card at the current frame.
type RunSnapshot struct {
	Frame int
	Cards []CardSnapshot
}

// Snapshot returns the current state of all cards.
func (r *Run) Snapshot() RunSnapshot {
	snap := RunSnapshot{Frame: r.frame}
	for _, c := range r.Cards {
		snap.Cards = append(snap.Cards, CardSnapshot{
			Name:    c.Name,
			Variant: c.Variant(),
			State:   c.State(),
			Frame:   c.Frame(),
		})
	}
	return snap
}

// Close resets every card.
func (r *Run) Close() {
	for _, c := range r.Cards {
		c.Close()
	}
}
