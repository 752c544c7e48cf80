// Command render-report renders a deck headlessly through a hover schedule
// and prints per-card statistics and grades.
package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/Garsondee/kimcard/internal/card"
	"github.com/Garsondee/kimcard/internal/deck"
	"github.com/Garsondee/kimcard/internal/logging"
	"github.com/Garsondee/kimcard/internal/raster"
	"github.com/Garsondee/kimcard/internal/report"
	"github.com/Garsondee/kimcard/internal/texture"
)

// backdropColor is what additive cards are composited onto for PNG output.
var backdropColor = color.NRGBA{R: 20, G: 18, B: 28, A: 255}

type options struct {
	deck      string
	frames    int
	width     int
	height    int
	hoverFrom int
	hoverTo   int
	workers   int
	runs      int
	seedBase  int64
	seedStep  int64
	out       string
	bloom     float64
	verbose   bool

	logCard string
	logFrom int
	logTo   int
}

type runStats struct {
	runIndex int
	seed     int64

	firstHoverFrame int
	firstIdleFrame  int // first return to idle after hovering
	stateChanges    int
	lastFrame       int

	windowSummary *report.WindowReport
	grades        []report.Grade
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "render-report",
		Short: "Render a card deck headlessly and report per-card statistics",
		Long: `Renders every card of a deck for a fixed number of frames, hovering each
card over a frame window with the pointer orbiting the centre. Prints the
state transitions, windowed averages and grades of every run. With --out the
last frame of every card of the first run is written as PNG.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, stdout)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.deck, "deck", "", "deck file (.yaml, .yml or .toml); built-in deck when empty")
	f.IntVar(&opts.frames, "frames", 240, "frames per run")
	f.IntVar(&opts.width, "width", 160, "card render width in pixels")
	f.IntVar(&opts.height, "height", 224, "card render height in pixels")
	f.IntVar(&opts.hoverFrom, "hover-from", 60, "first hovered frame")
	f.IntVar(&opts.hoverTo, "hover-to", -1, "first frame after hovering ends; -1 hovers to the end")
	f.IntVar(&opts.workers, "workers", 0, "rasterizer workers; 0 uses GOMAXPROCS")
	f.IntVar(&opts.runs, "runs", 1, "number of runs")
	f.Int64Var(&opts.seedBase, "seed-base", 42, "pointer path seed for run 1")
	f.Int64Var(&opts.seedStep, "seed-step", 1, "seed increment between runs")
	f.StringVar(&opts.out, "out", "", "directory for last-frame PNGs")
	f.Float64Var(&opts.bloom, "bloom", 0, "bloom blur radius for PNG output; 0 disables")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging and per-frame statistics")
	f.StringVar(&opts.logCard, "log-card", "", "print the frame log of this card only")
	f.IntVar(&opts.logFrom, "log-from", 0, "print frame log events from this frame")
	f.IntVar(&opts.logTo, "log-to", 0, "print frame log events up to this frame; 0 is open-ended")
	return cmd
}

func (o options) validate() error {
	var errs []error
	if o.frames <= 0 {
		errs = append(errs, errors.New("--frames must be > 0"))
	}
	if o.width <= 0 || o.height <= 0 {
		errs = append(errs, errors.New("--width and --height must be > 0"))
	}
	if o.runs <= 0 {
		errs = append(errs, errors.New("--runs must be > 0"))
	}
	if o.bloom < 0 {
		errs = append(errs, errors.New("--bloom must be >= 0"))
	}
	if o.logFrom < 0 || o.logTo < 0 {
		errs = append(errs, errors.New("--log-from and --log-to must be >= 0"))
	}
	if o.logTo > 0 && o.logTo < o.logFrom {
		errs = append(errs, errors.New("--log-to must not precede --log-from"))
	}
	return errors.Join(errs...)
}

// logQuery selects the frame log events to print. ok is false when the log
// should not be printed at all.
func (o options) logQuery() (q report.Query, ok bool) {
	q = report.Query{Card: o.logCard, From: o.logFrom, To: o.logTo}
	return q, o.verbose || q != report.Query{}
}

func run(ctx context.Context, opts options, w io.Writer) error {
	if err := opts.validate(); err != nil {
		return err
	}
	log, err := logging.New(opts.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	d := deck.Default()
	if opts.deck != "" {
		if d, err = deck.Load(opts.deck); err != nil {
			return err
		}
	}
	cache := texture.NewCache(log, 0)

	fmt.Fprintf(w, "=== Card Render Report ===\n")
	fmt.Fprintf(w, "cards=%d runs=%d frames=%d size=%dx%d hover=%d..%d seed_base=%d seed_step=%d\n\n",
		len(d.Cards), opts.runs, opts.frames, opts.width, opts.height, opts.hoverFrom, opts.hoverTo, opts.seedBase, opts.seedStep)

	all := make([]runStats, 0, opts.runs)
	for i := range opts.runs {
		seed := opts.seedBase + int64(i)*opts.seedStep
		r := card.NewRun(
			card.WithSize(opts.width, opts.height),
			card.WithSeed(seed),
			card.WithVerbose(opts.verbose),
			card.WithWorkers(opts.workers),
			card.WithHoverWindow(opts.hoverFrom, opts.hoverTo),
			card.WithLogger(log),
			card.WithDeck(d, cache),
		)
		if err := r.RunFrames(ctx, opts.frames); err != nil {
			return err
		}
		rs := collect(i+1, seed, r)
		all = append(all, rs)
		printRun(w, rs)
		if q, ok := opts.logQuery(); ok {
			fmt.Fprint(w, r.Log.Format(q))
		}
		if i == 0 && opts.out != "" {
			if err := writeImages(r, opts.out, opts.bloom, log); err != nil {
				return err
			}
		}
		r.Close()
	}
	printAggregate(w, all)
	return nil
}

func collect(runIndex int, seed int64, r *card.Run) runStats {
	transitions := report.Query{Kinds: report.EventTransition}
	toHover, toIdle := transitions, transitions
	toHover.Contains = "→ hovering"
	toIdle.Contains = "→ idle"
	return runStats{
		runIndex:        runIndex,
		seed:            seed,
		firstHoverFrame: r.Log.FirstFrame(toHover),
		firstIdleFrame:  r.Log.FirstFrame(toIdle),
		stateChanges:    r.Log.Count(transitions),
		lastFrame:       r.CurrentFrame(),
		windowSummary:   r.Reporter.WindowSummary(),
		grades:          r.Grades(),
	}
}

func printRun(w io.Writer, rs runStats) {
	fmt.Fprintf(w, "--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Fprintf(w, "phase_markers: first_hover=%d first_idle=%d last_frame=%d\n",
		rs.firstHoverFrame, rs.firstIdleFrame, rs.lastFrame)
	fmt.Fprintf(w, "event_totals: state_change=%d\n", rs.stateChanges)
	if rs.windowSummary != nil {
		fmt.Fprint(w, rs.windowSummary.Format())
	}
	fmt.Fprint(w, report.FormatGrades(rs.grades))
	fmt.Fprintln(w)
}

func printAggregate(w io.Writer, all []runStats) {
	type cardAgg struct {
		scoreSum float64
		count    int
		good     map[string]int
		bad      map[string]int
	}
	aggs := map[string]*cardAgg{}
	totalChanges := 0
	for _, rs := range all {
		totalChanges += rs.stateChanges
		for _, g := range rs.grades {
			ag, ok := aggs[g.Name]
			if !ok {
				ag = &cardAgg{good: map[string]int{}, bad: map[string]int{}}
				aggs[g.Name] = ag
			}
			ag.scoreSum += g.Score
			ag.count++
			for _, t := range g.GoodTraits {
				ag.good[t]++
			}
			for _, t := range g.BadTraits {
				ag.bad[t]++
			}
		}
	}

	fmt.Fprintln(w, "=== Aggregate ===")
	fmt.Fprintf(w, "runs=%d avg_state_changes=%.1f\n", len(all), avg(totalChanges, len(all)))
	names := make([]string, 0, len(aggs))
	for name := range aggs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ag := aggs[name]
		fmt.Fprintf(w, "  %-12s avg=%.1f", name, ag.scoreSum/float64(ag.count))
		if tg := topTrait(ag.good); tg != "" {
			fmt.Fprintf(w, "  good=%s", tg)
		}
		if tb := topTrait(ag.bad); tb != "" {
			fmt.Fprintf(w, "  bad=%s", tb)
		}
		fmt.Fprintln(w)
	}
}

func avg(sum, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// topTrait returns the most frequent trait, ties broken alphabetically.
func topTrait(counts map[string]int) string {
	best, bestN := "", 0
	for k, v := range counts {
		if v > bestN || (v == bestN && k < best) {
			best, bestN = k, v
		}
	}
	if bestN == 0 {
		return ""
	}
	return fmt.Sprintf("%s(%d)", best, bestN)
}

// writeImages saves the last frame of every card as <dir>/<name>.png,
// composited onto a dark backdrop with the card's blend mode.
func writeImages(r *card.Run, dir string, bloom float64, log *zap.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("render-report: create %s: %w", dir, err)
	}
	for i, c := range r.Cards {
		fg := r.Image(i)
		bg := image.NewNRGBA(fg.Bounds())
		draw.Draw(bg, bg.Bounds(), image.NewUniform(backdropColor), image.Point{}, draw.Src)

		var img image.Image = raster.Composite(bg, fg, c.Program().Blend())
		img = raster.Bloom(img, bloom)

		path := filepath.Join(dir, fileName(c.Name)+".png")
		if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
			return fmt.Errorf("render-report: save %s: %w", path, err)
		}
		log.Debug("wrote card image", zap.String("card", c.Name), zap.String("path", path))
	}
	return nil
}

// fileName maps a card name to a safe file stem.
func fileName(name string) string {
	stem := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if stem == "" {
		return "card"
	}
	return stem
}
