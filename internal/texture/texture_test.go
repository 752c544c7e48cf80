package texture

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/kimcard/internal/shade"
)

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{B: 255, A: 128})
			}
		}
	}
	return img
}

func TestSample_OutOfBoundsIsTransparent(t *testing.T) {
	tex := Solid("white", shade.Vec4{X: 1, Y: 1, Z: 1, W: 1})
	for _, uv := range []shade.Vec2{{X: 1.5, Y: 0.5}, {X: -0.01, Y: 0.5}, {X: 0.5, Y: 1.0001}, {X: 0.5, Y: -3}} {
		s := tex.Sample(uv)
		assert.Equal(t, shade.Vec4{}, s, "uv %v", uv)
	}
	assert.Equal(t, float32(1), tex.Sample(shade.V2(0.5, 0.5)).W)
	assert.Equal(t, float32(1), tex.Sample(shade.V2(1, 1)).W)
}

func TestSample_NilTexture(t *testing.T) {
	var tex *Texture
	assert.Equal(t, shade.Vec4{}, tex.Sample(shade.V2(0.5, 0.5)))
	assert.Zero(t, tex.Alpha(shade.V2(0.5, 0.5)))
	assert.Equal(t, "", tex.Name())
}

func TestSample_VerticalOrientation(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255}) // top row
	img.SetNRGBA(0, 1, color.NRGBA{G: 255, A: 255}) // bottom row
	tex := FromImage("strip", img)

	top := tex.Sample(shade.V2(0.5, 0.99))
	bottom := tex.Sample(shade.V2(0.5, 0.01))
	assert.InDelta(t, 1, top.X, 1e-5)
	assert.InDelta(t, 1, bottom.Y, 1e-5)
}

func TestSample_BilinearMidpoint(t *testing.T) {
	tex := FromImage("checker", checker(2, 1))
	mid := tex.Sample(shade.V2(0.5, 0.5))
	assert.InDelta(t, 0.5, mid.X, 1e-5)
	assert.InDelta(t, 0.5, mid.Z, 1e-5)
	assert.InDelta(t, (1+128.0/255)/2, mid.W, 1e-5)
}

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestCache_LoadsOnceAndShares(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "bg.png", checker(8, 8))

	c := NewCache(nil, 0)
	a := c.Get(path)
	b := c.Get(path)
	require.NotNil(t, a)
	assert.Same(t, a, b)
	assert.Equal(t, 1, c.Len())
	w, h := a.Size()
	assert.Equal(t, 8, w)
	assert.Equal(t, 8, h)
}

func TestCache_MissingDegradesToNil(t *testing.T) {
	c := NewCache(nil, 0)
	missing := filepath.Join(t.TempDir(), "nope.png")
	assert.Nil(t, c.Get(missing))
	assert.Nil(t, c.Get(missing))
	assert.Error(t, c.Err(missing))
	assert.Nil(t, c.Get(""))
	assert.Zero(t, c.Len())
}

func TestCache_DownscalesLargeImages(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "big.png", checker(64, 32))

	c := NewCache(nil, 16)
	tex := c.Get(path)
	require.NotNil(t, tex)
	w, h := tex.Size()
	assert.Equal(t, 16, w)
	assert.Equal(t, 8, h)
}
