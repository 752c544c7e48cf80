// Command gallery opens an ebiten window showing a deck of animated cards.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Garsondee/kimcard/internal/deck"
	"github.com/Garsondee/kimcard/internal/gallery"
	"github.com/Garsondee/kimcard/internal/logging"
	"github.com/Garsondee/kimcard/internal/texture"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		deckPath string
		scale    int
		gpuSheen bool
		verbose  bool
	)
	cmd := &cobra.Command{
		Use:   "gallery",
		Short: "Show a deck of animated cards",
		Long: `Opens a window with one tile per card. Hover a card to animate it.
Keys: H toggles the HUD, P pauses, C copies the hovered card's parameters as
YAML, R resets every card. The deck file is reloaded when it changes.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), deckPath, scale, gpuSheen, verbose)
		},
	}
	f := cmd.Flags()
	f.StringVar(&deckPath, "deck", "", "deck file (.yaml, .yml or .toml); built-in deck when empty")
	f.IntVar(&scale, "scale", 2, "on-screen pixels per rendered pixel")
	f.BoolVar(&gpuSheen, "gpu-sheen", false, "draw untextured sheen cards with a GPU shader")
	f.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	return cmd
}

func run(ctx context.Context, deckPath string, scale int, gpuSheen, verbose bool) error {
	log, err := logging.New(verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	d := deck.Default()
	if deckPath != "" {
		if d, err = deck.Load(deckPath); err != nil {
			return err
		}
	}
	g := gallery.New(gallery.Config{
		Deck:     d,
		Cache:    texture.NewCache(log, 0),
		Scale:    scale,
		GPUSheen: gpuSheen,
		Log:      log,
	})
	defer g.Close()

	if deckPath != "" {
		watcher, err := deck.NewWatcher(deckPath, g.Reload, log)
		if err != nil {
			return err
		}
		defer watcher.Stop()
		if err := watcher.Start(ctx); err != nil {
			return err
		}
	}

	w, h := g.ScreenSize()
	ebiten.SetWindowTitle("kimcard gallery")
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	log.Info("gallery starting", zap.Int("cards", len(d.Cards)), zap.Bool("gpu_sheen", gpuSheen))
	return ebiten.RunGame(&quitOnDone{Game: g, ctx: ctx})
}

// quitOnDone ends the game loop once ctx is cancelled.
type quitOnDone struct {
	*gallery.Game
	ctx context.Context
}

func (q *quitOnDone) Update() error {
	if q.ctx.Err() != nil {
		return ebiten.Termination
	}
	return q.Game.Update()
}
