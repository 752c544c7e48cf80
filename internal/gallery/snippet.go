package gallery

import (
	"fmt"

	"github.com/atotto/clipboard"
	"gopkg.in/yaml.v3"

	"github.com/Garsondee/kimcard/internal/card"
	"github.com/Garsondee/kimcard/internal/deck"
	"github.com/Garsondee/kimcard/internal/shade"
)

// DeckCard converts a resolved card back to its deck form with every
// parameter spelled out.
func DeckCard(r deck.Resolved) deck.Card {
	p := r.Params
	showFrame := p.ShowFrame
	c := deck.Card{
		Name:         r.Name,
		Effect:       r.Variant.String(),
		Color:        shade.Hex(p.Color),
		Intensity:    ptr(p.Intensity),
		Spread:       ptr(p.Spread),
		Tier:         p.Tier.String(),
		Background:   p.Textures.Background.Name(),
		Character:    p.Textures.Character.Name(),
		Frame:        p.Textures.Frame.Name(),
		FrameScale:   ptr(p.FrameScale),
		CharScale:    ptr(p.CharScale),
		ShowFrame:    &showFrame,
		FrameLayer:   p.FrameLayer.String(),
		AuraScale:    ptr(p.AuraScale),
		AspectRatio:  ptr(p.AspectRatio),
		CloudDensity: ptr(p.CloudDensity),
		CloudSpeed:   ptr(p.CloudSpeed),
	}
	if p.CharOffset != (shade.Vec2{}) {
		c.CharOffset = []float32{p.CharOffset.X, p.CharOffset.Y}
	}
	return c
}

func ptr(v float32) *float32 { return &v }

// Snippet renders r as a one-card YAML deck.
func Snippet(r deck.Resolved) ([]byte, error) {
	out, err := yaml.Marshal(&deck.Deck{Cards: []deck.Card{DeckCard(r)}})
	if err != nil {
		return nil, fmt.Errorf("gallery: encode %s: %w", r.Name, err)
	}
	return out, nil
}

// CopySnippet places the card's YAML on the system clipboard.
func CopySnippet(r deck.Resolved) error {
	out, err := Snippet(r)
	if err != nil {
		return err
	}
	if err := clipboard.WriteAll(string(out)); err != nil {
		return fmt.Errorf("gallery: clipboard: %w", err)
	}
	return nil
}

// resolvedFor recovers the resolved form of a live card.
func resolvedFor(c *card.Card) deck.Resolved {
	return deck.Resolved{Name: c.Name, Variant: c.Variant(), Params: c.Program().Params()}
}
