package deck

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/kimcard/internal/effect"
	"github.com/Garsondee/kimcard/internal/shade"
	"github.com/Garsondee/kimcard/internal/texture"
)

const yamlDeck = `
cards:
  - name: thunder
    effect: lightning
    color: "#22d3ee"
    intensity: 1.5
    tier: xl
  - name: hero
    effect: electric
    background: bg.png
    char_offset: [0.0, 0.1]
    show_frame: false
    frame_layer: back
`

const tomlDeck = `
[[cards]]
name = "thunder"
effect = "lightning"
color = "#22d3ee"
intensity = 1.5
tier = "xl"

[[cards]]
name = "hero"
effect = "electric"
background = "bg.png"
char_offset = [0.0, 0.1]
show_frame = false
frame_layer = "back"
`

func TestParse_YAMLAndTOMLAgree(t *testing.T) {
	y, err := Parse([]byte(yamlDeck), ".yaml")
	require.NoError(t, err)
	tm, err := Parse([]byte(tomlDeck), ".toml")
	require.NoError(t, err)

	if diff := cmp.Diff(y, tm, cmpopts.IgnoreUnexported(Deck{})); diff != "" {
		t.Fatalf("yaml and toml decks differ (-yaml +toml):\n%s", diff)
	}
	require.Len(t, y.Cards, 2)
	require.NotNil(t, y.Cards[0].Intensity)
	assert.Equal(t, float32(1.5), *y.Cards[0].Intensity)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("cards: []"), ".json")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Parse([]byte("cards:\n  - effect: aura\n"), ".yml")
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = Parse([]byte("cards:\n  - name: a\n  - name: a\n"), ".yml")
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = Parse([]byte("cards: [unterminated"), ".yaml")
	assert.Error(t, err)
}

func TestLoad_WrapsParseErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("cards = ["), 0o644))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deck: parse "+path)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlDeck+`
  - name: odd
    effect: plasma
    tier: huge
    color: "not-a-colour"
    frame_scale: 0
`), 0o644))
	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, dir, d.Dir())

	cache := texture.NewCache(nil, 0)
	bg := texture.Solid("bg", shade.Vec4{X: 1, W: 1})
	cache.Put(filepath.Join(dir, "bg.png"), bg)

	cards := d.Resolve(cache, nil)
	require.Len(t, cards, 3)

	thunder := cards[0]
	assert.Equal(t, effect.VariantLightning, thunder.Variant)
	assert.Equal(t, effect.TierXL, thunder.Params.Tier)
	assert.Equal(t, float32(1.5), thunder.Params.Intensity)
	assert.Equal(t, "#22d3ee", shade.Hex(thunder.Params.Color))
	assert.Nil(t, thunder.Params.Textures.Background)

	hero := cards[1]
	assert.Same(t, bg, hero.Params.Textures.Background)
	assert.Equal(t, shade.V2(0, 0.1), hero.Params.CharOffset)
	assert.False(t, hero.Params.ShowFrame)
	assert.Equal(t, effect.FrameBack, hero.Params.FrameLayer)

	odd := cards[2]
	assert.Equal(t, effect.VariantSheen, odd.Variant)
	assert.Equal(t, effect.TierM, odd.Params.Tier)
	assert.Equal(t, shade.Splat3(1), odd.Params.Color)
	assert.Equal(t, float32(effect.MinScale), odd.Params.FrameScale)
}

func TestDefault_OneCardPerVariant(t *testing.T) {
	d := Default()
	require.NoError(t, d.Validate())
	cards := d.Resolve(nil, nil)
	require.Len(t, cards, len(effect.Variants()))
	for i, v := range effect.Variants() {
		assert.Equal(t, v, cards[i].Variant)
	}
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlDeck), 0o644))

	got := make(chan *Deck, 4)
	w, err := NewWatcher(path, func(d *Deck) { got <- d }, nil)
	require.NoError(t, err)
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	// Unrelated files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("cards:\n  - name: solo\n    effect: cloud\n"), 0o644))

	select {
	case d := <-got:
		require.Len(t, d.Cards, 1)
		assert.Equal(t, "solo", d.Cards[0].Name)
	case <-time.After(5 * time.Second):
		t.Fatal("deck was not reloaded")
	}

	// A broken save keeps the previous deck and counts a failure.
	require.NoError(t, os.WriteFile(path, []byte("cards: [oops"), 0o644))
	require.Eventually(t, func() bool {
		_, failures := w.Stats()
		return failures > 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlDeck), 0o644))

	w, err := NewWatcher(path, nil, nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, w.Start(ctx))
	require.NoError(t, w.Start(ctx), "second Start while running is a no-op")

	assert.NotPanics(t, w.Stop)
	assert.NotPanics(t, w.Stop)
	assert.ErrorIs(t, w.Start(ctx), ErrWatcherClosed)
	assert.NotPanics(t, w.Stop)
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.yaml")
	w, err := NewWatcher(path, nil, nil)
	require.NoError(t, err)

	assert.NotPanics(t, w.Stop)
	assert.NotPanics(t, w.Stop)
	assert.ErrorIs(t, w.Start(context.Background()), ErrWatcherClosed)
}
