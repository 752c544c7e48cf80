// Package deck reads deck files describing a set of cards. YAML and TOML
// are both accepted and decode to the same structure.
package deck

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Garsondee/kimcard/internal/effect"
	"github.com/Garsondee/kimcard/internal/logging"
	"github.com/Garsondee/kimcard/internal/shade"
	"github.com/Garsondee/kimcard/internal/texture"
)

var (
	ErrUnknownFormat = errors.New("deck: unknown file format")
	ErrEmptyName     = errors.New("deck: card without a name")
	ErrDuplicateName = errors.New("deck: duplicate card name")
)

// Deck is the decoded content of a deck file.
type Deck struct {
	Cards []Card `yaml:"cards" toml:"cards"`

	// dir is the directory relative texture paths are resolved against.
	dir string
}

// Card is one card entry. Optional fields left out of the file keep the
// effect defaults.
type Card struct {
	Name   string `yaml:"name" toml:"name"`
	Effect string `yaml:"effect" toml:"effect"`

	Color     string   `yaml:"color,omitempty" toml:"color,omitempty"`
	Intensity *float32 `yaml:"intensity,omitempty" toml:"intensity,omitempty"`
	Spread    *float32 `yaml:"spread,omitempty" toml:"spread,omitempty"`
	Tier      string   `yaml:"tier,omitempty" toml:"tier,omitempty"`

	Background string `yaml:"background,omitempty" toml:"background,omitempty"`
	Character  string `yaml:"character,omitempty" toml:"character,omitempty"`
	Frame      string `yaml:"frame,omitempty" toml:"frame,omitempty"`

	FrameScale *float32  `yaml:"frame_scale,omitempty" toml:"frame_scale,omitempty"`
	CharScale  *float32  `yaml:"char_scale,omitempty" toml:"char_scale,omitempty"`
	CharOffset []float32 `yaml:"char_offset,omitempty" toml:"char_offset,omitempty"`
	ShowFrame  *bool     `yaml:"show_frame,omitempty" toml:"show_frame,omitempty"`
	FrameLayer string    `yaml:"frame_layer,omitempty" toml:"frame_layer,omitempty"`

	AuraScale   *float32 `yaml:"aura_scale,omitempty" toml:"aura_scale,omitempty"`
	AspectRatio *float32 `yaml:"aspect_ratio,omitempty" toml:"aspect_ratio,omitempty"`

	CloudDensity *float32 `yaml:"cloud_density,omitempty" toml:"cloud_density,omitempty"`
	CloudSpeed   *float32 `yaml:"cloud_speed,omitempty" toml:"cloud_speed,omitempty"`
}

// Load reads the deck at path; the extension selects the decoder.
func Load(path string) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("deck: read %s: %w", path, err)
	}
	d, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("deck: parse %s: %w", path, err)
	}
	d.dir = filepath.Dir(path)
	return d, nil
}

// Parse decodes data in the format named by ext (".yaml", ".yml" or ".toml").
func Parse(data []byte, ext string) (*Deck, error) {
	var d Deck
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, err
		}
	case ".toml":
		if err := toml.Unmarshal(data, &d); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks that every card has a unique, non-empty name.
func (d *Deck) Validate() error {
	seen := make(map[string]bool, len(d.Cards))
	var errs []error
	for i, c := range d.Cards {
		switch {
		case c.Name == "":
			errs = append(errs, fmt.Errorf("%w (entry %d)", ErrEmptyName, i))
		case seen[c.Name]:
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateName, c.Name))
		}
		seen[c.Name] = true
	}
	return errors.Join(errs...)
}

// Dir returns the directory the deck was loaded from, or "".
func (d *Deck) Dir() string { return d.dir }

// Resolved is a card ready to build a program from.
type Resolved struct {
	Name    string
	Variant effect.Variant
	Params  effect.Params
}

// Resolve turns every card into program parameters, loading textures
// through cache. Unknown effect, tier or colour values fall back to their
// defaults with a warning; they never fail the deck.
func (d *Deck) Resolve(cache *texture.Cache, log *zap.Logger) []Resolved {
	log = logging.OrNop(log)
	out := make([]Resolved, 0, len(d.Cards))
	for _, c := range d.Cards {
		out = append(out, d.resolveCard(c, cache, log.With(zap.String("card", c.Name))))
	}
	return out
}

func (d *Deck) resolveCard(c Card, cache *texture.Cache, log *zap.Logger) Resolved {
	v, ok := effect.ParseVariant(c.Effect)
	if !ok {
		log.Warn("unknown effect, using sheen", zap.String("effect", c.Effect))
	}
	p := effect.DefaultParams()
	if c.Color != "" {
		col, err := shade.ParseHex(c.Color)
		if err != nil {
			log.Warn("bad colour, using white", zap.Error(err))
		} else {
			p.Color = col
		}
	}
	if c.Tier != "" {
		tier, ok := effect.ParseTier(c.Tier)
		if !ok {
			log.Warn("unknown tier, using m", zap.String("tier", c.Tier))
		}
		p.Tier = tier
	}
	if c.FrameLayer != "" {
		p.FrameLayer = effect.ParseFrameLayer(c.FrameLayer)
	}
	if len(c.CharOffset) == 2 {
		p.CharOffset = shade.Vec2{X: c.CharOffset[0], Y: c.CharOffset[1]}
	} else if len(c.CharOffset) != 0 {
		log.Warn("char_offset needs two values, ignoring", zap.Int("got", len(c.CharOffset)))
	}
	if c.ShowFrame != nil {
		p.ShowFrame = *c.ShowFrame
	}
	set(&p.Intensity, c.Intensity)
	set(&p.Spread, c.Spread)
	set(&p.FrameScale, c.FrameScale)
	set(&p.CharScale, c.CharScale)
	set(&p.AuraScale, c.AuraScale)
	set(&p.AspectRatio, c.AspectRatio)
	set(&p.CloudDensity, c.CloudDensity)
	set(&p.CloudSpeed, c.CloudSpeed)

	if cache != nil {
		p.Textures = effect.Textures{
			Background: cache.Get(d.path(c.Background)),
			Character:  cache.Get(d.path(c.Character)),
			Frame:      cache.Get(d.path(c.Frame)),
		}
	}
	return Resolved{Name: c.Name, Variant: v, Params: p.Normalize()}
}

func set(dst *float32, v *float32) {
	if v != nil {
		*dst = *v
	}
}

// path resolves p against the deck directory.
func (d *Deck) path(p string) string {
	if p == "" || filepath.IsAbs(p) || d.dir == "" {
		return p
	}
	return filepath.Join(d.dir, p)
}

// Default returns one untextured card per effect variant.
func Default() *Deck {
	colors := map[effect.Variant]string{
		effect.VariantLightning: "#22d3ee",
		effect.VariantAura:      "#f97316",
	}
	d := &Deck{}
	for _, v := range effect.Variants() {
		d.Cards = append(d.Cards, Card{Name: v.String(), Effect: v.String(), Color: colors[v]})
	}
	return d
}
