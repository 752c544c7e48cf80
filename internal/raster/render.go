// Package raster evaluates effect programs on the CPU into NRGBA images and
// blends the resulting layers.
package raster

import (
	"context"
	"fmt"
	"image"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Garsondee/kimcard/internal/effect"
	"github.com/Garsondee/kimcard/internal/logging"
	"github.com/Garsondee/kimcard/internal/shade"
)

// Renderer rasterizes programs with a bounded pool of row workers.
type Renderer struct {
	workers int
	log     *zap.Logger
}

// NewRenderer returns a Renderer using up to workers goroutines. Zero or
// negative selects GOMAXPROCS.
func NewRenderer(workers int, log *zap.Logger) *Renderer {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Renderer{workers: workers, log: logging.OrNop(log)}
}

// Workers returns the worker limit.
func (r *Renderer) Workers() int { return r.workers }

// Render evaluates prog at every pixel centre of dst. Row 0 of dst is the
// top of the card (v=1). Rows are independent; Render returns once every
// started row has finished, or with ctx's error if cancelled.
func (r *Renderer) Render(ctx context.Context, prog effect.Program, f effect.Frame, dst *image.NRGBA) (Stats, error) {
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return Stats{}, nil
	}
	rows := make([]Stats, h)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for y := range h {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows[y] = renderRow(prog, &f, dst, y, w, h)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, fmt.Errorf("raster: render %s: %w", prog.Variant(), err)
	}
	if err := ctx.Err(); err != nil {
		return Stats{}, fmt.Errorf("raster: render %s: %w", prog.Variant(), err)
	}

	st := mergeStats(rows, w*h)
	r.log.Debug("rendered",
		zap.Stringer("variant", prog.Variant()),
		zap.Int("width", w),
		zap.Int("height", h),
		zap.Float32("coverage", st.Coverage),
		zap.Float32("peak_luminance", st.PeakLuminance),
	)
	return st, nil
}

func renderRow(prog effect.Program, f *effect.Frame, dst *image.NRGBA, y, w, h int) Stats {
	b := dst.Bounds()
	v := 1 - (float32(y)+0.5)/float32(h)
	off := dst.PixOffset(b.Min.X, b.Min.Y+y)
	row := dst.Pix[off : off+4*w]

	var st Stats
	for x := range w {
		uv := shade.Vec2{X: (float32(x) + 0.5) / float32(w), Y: v}
		s := prog.Eval(uv, f)
		st.add(s)
		i := 4 * x
		row[i+0] = to8(s.Color.X)
		row[i+1] = to8(s.Color.Y)
		row[i+2] = to8(s.Color.Z)
		row[i+3] = to8(s.Alpha)
	}
	return st
}

func to8(c float32) uint8 {
	return uint8(shade.Saturate(c)*255 + 0.5)
}

// NewCard allocates a w x h destination.
func NewCard(w, h int) *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, w, h))
}
