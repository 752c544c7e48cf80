// Package card ties an effect program to its per-frame updater and drives
// one or more cards through scripted runs.
package card

import (
	"context"
	"image"
	"time"

	"github.com/Garsondee/kimcard/internal/anim"
	"github.com/Garsondee/kimcard/internal/deck"
	"github.com/Garsondee/kimcard/internal/effect"
	"github.com/Garsondee/kimcard/internal/raster"
)

// Card is one animated card surface: a configured program plus the clock
// and smoothed interaction state that feed it.
type Card struct {
	Name string

	prog effect.Program
	upd  *anim.Updater
}

// New builds a card around prog.
func New(name string, prog effect.Program, opts ...anim.Option) *Card {
	return &Card{Name: name, prog: prog, upd: anim.NewUpdater(opts...)}
}

// FromResolved builds a card from a resolved deck entry.
func FromResolved(r deck.Resolved, opts ...anim.Option) *Card {
	return New(r.Name, effect.New(r.Variant, r.Params), opts...)
}

// Program returns the card's effect program.
func (c *Card) Program() effect.Program { return c.prog }

// Variant returns the program's variant.
func (c *Card) Variant() effect.Variant { return c.prog.Variant() }

// Step advances the card by one host frame.
func (c *Card) Step(in anim.Interaction, dt time.Duration) effect.Frame {
	return c.upd.Step(in, dt)
}

// Frame returns the current snapshot without advancing.
func (c *Card) Frame() effect.Frame { return c.upd.Frame() }

// State returns the card's interaction state.
func (c *Card) State() anim.State { return c.upd.State() }

// Bind returns the named parameter set for the current frame.
func (c *Card) Bind() (effect.ParameterSet, error) {
	return effect.Bind(c.prog, c.upd.Frame())
}

// Render rasterizes the current frame into dst.
func (c *Card) Render(ctx context.Context, r *raster.Renderer, dst *image.NRGBA) (raster.Stats, error) {
	return r.Render(ctx, c.prog, c.upd.Frame(), dst)
}

// Close resets the card's clock and smoothed state.
func (c *Card) Close() {
	c.upd.Reset()
}
