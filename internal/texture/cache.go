package texture

import (
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/anthonynsimon/bild/imgio"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

// DefaultMaxSize caps the longest side of a loaded texture. Card art is
// sampled per pixel, so there is no benefit in keeping more texels than the
// render target has pixels.
const DefaultMaxSize = 1024

// Cache loads textures once and hands out shared read-only pointers.
type Cache struct {
	mu      sync.Mutex
	byPath  map[string]*Texture
	failed  map[string]error
	maxSize int
	log     *zap.Logger
}

// NewCache creates a texture cache. A nil logger disables logging.
func NewCache(log *zap.Logger, maxSize int) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Cache{
		byPath:  make(map[string]*Texture),
		failed:  make(map[string]error),
		maxSize: maxSize,
		log:     log,
	}
}

// Load reads and decodes path. Images larger than maxSize are downscaled
// with Catmull-Rom filtering.
func Load(path string, maxSize int) (*Texture, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("texture: open %s: %w", path, err)
	}
	return FromImage(path, fit(img, maxSize)), nil
}

// Get returns the texture at path, loading it on first use. An empty path or
// a load failure yields nil, which samples as fully transparent; failures
// are logged once per path.
func (c *Cache) Get(path string) *Texture {
	if path == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.byPath[path]; ok {
		return t
	}
	if _, ok := c.failed[path]; ok {
		return nil
	}
	t, err := Load(path, c.maxSize)
	if err != nil {
		c.failed[path] = err
		if errors.Is(err, os.ErrNotExist) {
			c.log.Warn("texture missing, layer will be transparent", zap.String("path", path))
		} else {
			c.log.Warn("texture load failed, layer will be transparent", zap.String("path", path), zap.Error(err))
		}
		return nil
	}
	w, h := t.Size()
	c.log.Debug("texture loaded", zap.String("path", path), zap.Int("w", w), zap.Int("h", h))
	c.byPath[path] = t
	return t
}

// Put registers an in-memory texture under name.
func (c *Cache) Put(name string, t *Texture) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byPath[name] = t
	delete(c.failed, name)
}

// Err returns the load error recorded for path, if any.
func (c *Cache) Err(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failed[path]
}

// Len is the number of successfully loaded textures.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byPath)
}

func fit(img image.Image, maxSize int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return img
	}
	if w >= h {
		h = max(1, h*maxSize/w)
		w = maxSize
	} else {
		w = max(1, w*maxSize/h)
		h = maxSize
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
