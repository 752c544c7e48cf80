// Package gallery is the interactive ebiten viewer: a grid of animated cards
// with pointer hover, an event log panel and a HUD.
package gallery

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/Garsondee/kimcard/internal/anim"
	"github.com/Garsondee/kimcard/internal/card"
	"github.com/Garsondee/kimcard/internal/deck"
	"github.com/Garsondee/kimcard/internal/effect"
	"github.com/Garsondee/kimcard/internal/logging"
	"github.com/Garsondee/kimcard/internal/raster"
	"github.com/Garsondee/kimcard/internal/texture"
)

// Default render resolution of one card. The on-screen size is this times
// Config.Scale.
const (
	DefaultCardW = 120
	DefaultCardH = 168
)

var (
	backgroundColor = color.RGBA{R: 14, G: 12, B: 20, A: 255}
	cardBaseColor   = color.RGBA{R: 28, G: 26, B: 38, A: 255}
	hoverColor      = color.RGBA{R: 240, G: 220, B: 140, A: 200}
)

// Config configures a Game.
type Config struct {
	Deck     *deck.Deck
	Cache    *texture.Cache
	Scale    int // on-screen pixels per rendered pixel
	CardW    int
	CardH    int
	Workers  int
	GPUSheen bool // draw untextured Sheen cards with the Kage shader
	Log      *zap.Logger
}

// Game implements ebiten.Game.
type Game struct {
	cfg      Config
	log      *zap.Logger
	renderer *raster.Renderer
	layout   Layout
	events   *EventLog

	cards    []*card.Card
	resolved []deck.Resolved
	bufs     []*image.NRGBA // CPU render targets at card resolution
	scaled   []*image.RGBA  // premultiplied, at on-screen size
	imgs     []*ebiten.Image
	stats    []raster.Stats

	sheen      *sheenShader
	sheenTried bool

	hovered  int
	frame    int
	paused   bool
	showHUD  bool
	prevKeys map[ebiten.Key]bool

	mu      sync.Mutex
	pending *deck.Deck // set by Reload, applied on the next Update
}

// New builds a gallery for cfg.Deck, or the built-in deck when nil.
func New(cfg Config) *Game {
	if cfg.Deck == nil {
		cfg.Deck = deck.Default()
	}
	if cfg.Scale <= 0 {
		cfg.Scale = 2
	}
	if cfg.CardW <= 0 || cfg.CardH <= 0 {
		cfg.CardW, cfg.CardH = DefaultCardW, DefaultCardH
	}
	g := &Game{
		cfg:      cfg,
		log:      logging.OrNop(cfg.Log),
		events:   NewEventLog(),
		hovered:  -1,
		showHUD:  true,
		prevKeys: make(map[ebiten.Key]bool),
	}
	g.renderer = raster.NewRenderer(cfg.Workers, g.log)
	g.load(cfg.Deck)
	return g
}

// Reload swaps in a new deck. It is safe to call from any goroutine; the
// change takes effect on the next Update.
func (g *Game) Reload(d *deck.Deck) {
	g.mu.Lock()
	g.pending = d
	g.mu.Unlock()
}

func (g *Game) applyPending() {
	g.mu.Lock()
	d := g.pending
	g.pending = nil
	g.mu.Unlock()
	if d == nil {
		return
	}
	g.load(d)
	g.events.Addf(g.frame, "deck", "reloaded %d cards", len(g.cards))
}

func (g *Game) load(d *deck.Deck) {
	for _, img := range g.imgs {
		img.Deallocate()
	}
	g.resolved = d.Resolve(g.cfg.Cache, g.log)
	n := len(g.resolved)
	sw, sh := g.cfg.CardW*g.cfg.Scale, g.cfg.CardH*g.cfg.Scale
	g.layout = NewLayout(n, sw, sh)

	g.cards = make([]*card.Card, 0, n)
	g.bufs = make([]*image.NRGBA, 0, n)
	g.scaled = make([]*image.RGBA, 0, n)
	g.imgs = make([]*ebiten.Image, 0, n)
	g.stats = make([]raster.Stats, n)
	for _, r := range g.resolved {
		name := r.Name
		g.cards = append(g.cards, card.FromResolved(r,
			anim.OnTransition(func(from, to anim.State, _ float64) {
				g.events.Addf(g.frame, name, "%s -> %s", from, to)
			}),
		))
		g.bufs = append(g.bufs, raster.NewCard(g.cfg.CardW, g.cfg.CardH))
		g.scaled = append(g.scaled, image.NewRGBA(image.Rect(0, 0, sw, sh)))
		g.imgs = append(g.imgs, ebiten.NewImage(sw, sh))
	}
	g.hovered = -1
}

// Update advances every card by one tick and renders the CPU cards.
func (g *Game) Update() error {
	g.applyPending()
	g.ensureShader()
	g.handleInput()
	if g.paused {
		return nil
	}
	g.frame++

	mx, my := ebiten.CursorPosition()
	idx, uv, _ := g.layout.HitTest(mx, my, len(g.cards))
	g.hovered = idx

	dt := tickDuration(ebiten.TPS())
	for i, c := range g.cards {
		var in anim.Interaction
		if i == idx {
			in = anim.Interaction{Hovered: true, Pointer: anim.PointerFromUV(uv)}
		}
		c.Step(in, dt)
		if g.sheen.supports(c.Program()) {
			continue
		}
		st, err := c.Render(context.Background(), g.renderer, g.bufs[i])
		if err != nil {
			return fmt.Errorf("gallery: %w", err)
		}
		g.stats[i] = st
		g.upload(i)
	}
	return nil
}

func tickDuration(tps int) time.Duration {
	if tps <= 0 {
		tps = anim.ReferenceRate
	}
	return time.Second / time.Duration(tps)
}

// upload scales card i's render to screen size and writes it to its image.
func (g *Game) upload(i int) {
	src, dst := g.bufs[i], g.scaled[i]
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	g.imgs[i].WritePixels(dst.Pix)
}

func (g *Game) ensureShader() {
	if !g.cfg.GPUSheen || g.sheenTried {
		return
	}
	g.sheenTried = true
	s, err := newSheenShader()
	if err != nil {
		g.log.Warn("GPU sheen unavailable, using CPU", zap.Error(err))
		return
	}
	g.sheen = s
}

func (g *Game) handleInput() {
	keys := []ebiten.Key{ebiten.KeyH, ebiten.KeyP, ebiten.KeyC, ebiten.KeyR}
	current := make(map[ebiten.Key]bool, len(keys))
	for _, k := range keys {
		current[k] = ebiten.IsKeyPressed(k)
	}
	pressed := func(k ebiten.Key) bool { return current[k] && !g.prevKeys[k] }

	if pressed(ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	if pressed(ebiten.KeyP) {
		g.paused = !g.paused
	}
	if pressed(ebiten.KeyC) && len(g.cards) > 0 {
		g.copyCard(max(g.hovered, 0))
	}
	if pressed(ebiten.KeyR) {
		for _, c := range g.cards {
			c.Close()
		}
		g.events.Add(g.frame, "all", "reset")
	}
	g.prevKeys = current
}

func (g *Game) copyCard(i int) {
	c := g.cards[i]
	if err := CopySnippet(resolvedFor(c)); err != nil {
		g.log.Warn("copy failed", zap.String("card", c.Name), zap.Error(err))
		g.events.Add(g.frame, c.Name, "copy failed")
		return
	}
	g.events.Add(g.frame, c.Name, "params copied")
}

// Draw renders the grid, the event log and the HUD.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	for i, c := range g.cards {
		r := g.layout.Cell(i)
		x, y := float32(r.Min.X), float32(r.Min.Y)
		w, h := float32(r.Dx()), float32(r.Dy())
		vector.FillRect(screen, x, y, w, h, cardBaseColor, false)

		prog := c.Program()
		if g.sheen.supports(prog) {
			if ps, err := c.Bind(); err == nil {
				g.sheen.draw(screen, r, ps)
			}
		} else {
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Translate(float64(r.Min.X), float64(r.Min.Y))
			if prog.Blend() == effect.BlendAdditive {
				op.Blend = ebiten.BlendLighter
			}
			screen.DrawImage(g.imgs[i], op)
		}
		if i == g.hovered {
			vector.StrokeRect(screen, x-2, y-2, w+4, h+4, 2, hoverColor, false)
		}
		ebitenutil.DebugPrintAt(screen, c.Name, r.Min.X, r.Max.Y)
	}

	gw, gh := g.layout.Size(len(g.cards))
	g.events.Draw(screen, gw, gh)
	if g.showHUD {
		g.drawHUD(screen)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	line := fmt.Sprintf("TPS %.0f  FPS %.0f  frame %d  [H]ud [P]ause [C]opy [R]eset",
		ebiten.ActualTPS(), ebiten.ActualFPS(), g.frame)
	if g.paused {
		line += "  PAUSED"
	}
	ebitenutil.DebugPrintAt(screen, line, 4, 2)

	if g.hovered < 0 || g.hovered >= len(g.cards) {
		return
	}
	c := g.cards[g.hovered]
	f := c.Frame()
	st := g.stats[g.hovered]
	info := fmt.Sprintf("%s (%s)  %s  hover %.2f  coverage %.0f%%  activation %.3f",
		c.Name, c.Variant(), c.State(), f.Hover, st.Coverage*100, st.MeanActivation)
	_, gh := g.layout.Size(len(g.cards))
	ebitenutil.DebugPrintAt(screen, info, 4, gh-18)
}

// Layout reports the fixed logical screen size.
func (g *Game) Layout(_, _ int) (int, int) {
	gw, gh := g.layout.Size(len(g.cards))
	return gw + logPanelWidth, max(gh, 240)
}

// ScreenSize returns the logical size for the initial window.
func (g *Game) ScreenSize() (int, int) {
	return g.Layout(0, 0)
}

// Events exposes the event log.
func (g *Game) Events() *EventLog { return g.events }

// Close releases GPU resources.
func (g *Game) Close() {
	g.sheen.dispose()
	for _, img := range g.imgs {
		img.Deallocate()
	}
	for _, c := range g.cards {
		c.Close()
	}
}
