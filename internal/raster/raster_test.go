package raster

import (
	"context"
	"image"
	"image/color"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Garsondee/kimcard/internal/effect"
	"github.com/Garsondee/kimcard/internal/shade"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// gradient writes v into red and counts evaluations.
type gradient struct {
	evals atomic.Int64
}

func (g *gradient) Variant() effect.Variant { return effect.VariantSheen }
func (g *gradient) Blend() effect.BlendMode { return effect.BlendOver }
func (g *gradient) Params() effect.Params { return effect.DefaultParams() }
func (g *gradient) Uniforms() []effect.UniformDecl { return nil }

func (g *gradient) Eval(uv shade.Vec2, _ *effect.Frame) effect.Sample {
	g.evals.Add(1)
	return effect.Sample{Color: shade.V3(uv.Y, uv.X, 0), Alpha: 1, Activation: uv.X}
}

func TestRender_OrientationAndStats(t *testing.T) {
	prog := &gradient{}
	dst := NewCard(8, 16)
	st, err := NewRenderer(3, nil).Render(context.Background(), prog, effect.Frame{}, dst)
	require.NoError(t, err)

	assert.Equal(t, int64(8*16), prog.evals.Load())
	assert.Equal(t, 128, st.Pixels)
	assert.Equal(t, float32(1), st.Coverage)
	assert.InDelta(t, 1, st.MeanAlpha, 1e-6)
	assert.InDelta(t, 0.5, st.MeanActivation, 1e-5)

	// Row 0 is the top of the card.
	top := dst.NRGBAAt(0, 0)
	bottom := dst.NRGBAAt(0, 15)
	assert.Greater(t, top.R, uint8(240))
	assert.Less(t, bottom.R, uint8(15))
	assert.Less(t, dst.NRGBAAt(0, 4).G, dst.NRGBAAt(7, 4).G)
	assert.Equal(t, uint8(255), top.A)
}

func TestRender_OffsetBounds(t *testing.T) {
	dst := image.NewNRGBA(image.Rect(10, 20, 14, 24))
	_, err := NewRenderer(2, nil).Render(context.Background(), &gradient{}, effect.Frame{}, dst)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), dst.NRGBAAt(10, 20).A)
	assert.Equal(t, uint8(255), dst.NRGBAAt(13, 23).A)
}

func TestRender_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	prog := &gradient{}
	_, err := NewRenderer(4, nil).Render(ctx, prog, effect.Frame{}, NewCard(32, 32))
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, prog.evals.Load())
}

func TestRender_AllVariants(t *testing.T) {
	r := NewRenderer(0, nil)
	f := effect.Frame{Time: 2, Hover: 1}
	for _, v := range effect.Variants() {
		prog := effect.New(v, effect.DefaultParams())
		st, err := r.Render(context.Background(), prog, f, NewCard(24, 24))
		require.NoError(t, err, v.String())
		assert.Equal(t, 576, st.Pixels)
		assert.GreaterOrEqual(t, st.MeanAlpha, float32(0))
		assert.LessOrEqual(t, st.MeanAlpha, float32(1))
	}
}

func TestRender_Empty(t *testing.T) {
	st, err := NewRenderer(1, nil).Render(context.Background(), &gradient{}, effect.Frame{}, NewCard(0, 5))
	require.NoError(t, err)
	assert.Zero(t, st.Pixels)
}

func fill(w, h int, c color.NRGBA) *image.NRGBA {
	img := NewCard(w, h)
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestComposite_Over(t *testing.T) {
	bg := fill(4, 4, color.NRGBA{R: 200, A: 255})
	fg := fill(4, 4, color.NRGBA{B: 200, A: 255})
	out := Composite(bg, fg, effect.BlendOver)
	r, _, b, a := out.At(1, 1).RGBA()
	assert.Zero(t, r)
	assert.InDelta(t, 200*257, b, 2*257)
	assert.Equal(t, uint32(0xffff), a)
}

func TestComposite_AdditiveTransparentIsIdentity(t *testing.T) {
	bg := fill(4, 4, color.NRGBA{R: 100, G: 50, A: 255})
	fg := NewCard(4, 4)
	out := Composite(bg, fg, effect.BlendAdditive)
	r, g, _, a := out.At(2, 2).RGBA()
	assert.InDelta(t, 100*257, r, 2*257)
	assert.InDelta(t, 50*257, g, 2*257)
	assert.Equal(t, uint32(0xffff), a)
}

func TestComposite_AdditiveBrightens(t *testing.T) {
	bg := fill(4, 4, color.NRGBA{R: 100, A: 255})
	fg := fill(4, 4, color.NRGBA{R: 100, G: 40, A: 255})
	out := Composite(bg, fg, effect.BlendAdditive)
	r, g, _, _ := out.At(0, 0).RGBA()
	assert.Greater(t, r, uint32(150*257))
	assert.Greater(t, g, uint32(30*257))
}

func TestBloom(t *testing.T) {
	img := fill(16, 16, color.NRGBA{A: 255})
	img.SetNRGBA(8, 8, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	assert.Same(t, img, Bloom(img, 0))

	out := Bloom(img, 2)
	r, _, _, _ := out.At(9, 8).RGBA()
	assert.Positive(t, r, "bloom should spread past the bright pixel")
	r0, _, _, _ := out.At(0, 0).RGBA()
	assert.Zero(t, r0)
}
