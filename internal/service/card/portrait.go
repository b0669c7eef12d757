package card

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"math"
	"sync"

	xdraw "golang.org/x/image/draw"
)

// maxPortraitPixels bounds the decoded size of a profile image (4096²).
const maxPortraitPixels = 4096 * 4096

const portraitCacheLimit = 32

var ErrPortraitTooLarge = errors.New("profile image dimensions too large")

type portraitKey struct {
	ref  [sha256.Size]byte
	size int
}

// portraitCache keeps finished circular tiles so edits that do not touch
// the image only redraw text. Failed decodes are cached as nil tiles.
// Eviction is oldest-first.
type portraitCache struct {
	mu      sync.Mutex
	entries map[portraitKey]*image.RGBA
	order   []portraitKey
	limit   int
}

var portraits = &portraitCache{entries: map[portraitKey]*image.RGBA{}, limit: portraitCacheLimit}

// decodePortrait is swapped in tests to count decodes.
var decodePortrait = decodeBoundedImage

// tile returns the circular tile of ref at size×size pixels, decoding
// only on a cache miss.
func (c *portraitCache) tile(ref string, size int) (*image.RGBA, error) {
	key := portraitKey{ref: sha256.Sum256([]byte(ref)), size: size}

	c.mu.Lock()
	t, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		if t == nil {
			return nil, errCachedDecodeFailure
		}
		return t, nil
	}

	src, err := decodePortrait(ref)
	if err == nil {
		t = circularTile(src, size, size)
	}
	c.mu.Lock()
	c.put(key, t)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errCachedDecodeFailure
	}
	return t, nil
}

var errCachedDecodeFailure = errors.New("profile image previously failed to decode")

func (c *portraitCache) put(key portraitKey, t *image.RGBA) {
	if _, ok := c.entries[key]; ok {
		c.entries[key] = t
		return
	}
	if len(c.order) >= c.limit {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
	c.entries[key] = t
	c.order = append(c.order, key)
}

// decodeBoundedImage decodes an embedded image, refusing canvases larger
// than maxPortraitPixels before any pixel buffer is allocated.
func decodeBoundedImage(ref string) (image.Image, error) {
	_, data, err := ParseDataURI(ref)
	if err != nil {
		return nil, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode profile image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxPortraitPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrPortraitTooLarge, cfg.Width, cfg.Height)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode profile image: %w", err)
	}
	return img, nil
}

// circularTile scales src to cover a w×h tile (centre crop, like
// object-fit: cover) and cuts it to a circle on a transparent background.
func circularTile(src image.Image, w, h int) *image.RGBA {
	if src == nil || w <= 0 || h <= 0 {
		return nil
	}
	crop := coverCrop(src.Bounds(), w, h)
	if crop.Empty() {
		return nil
	}

	scaledImg := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(scaledImg, scaledImg.Bounds(), src, crop, xdraw.Src, nil)

	mask := &circleMask{
		center: image.Pt(w/2, h/2),
		radius: float64(min(w, h)) / 2,
	}
	tile := image.NewRGBA(scaledImg.Bounds())
	imagedraw.DrawMask(tile, tile.Bounds(), scaledImg, image.Point{}, mask, image.Point{}, imagedraw.Over)
	return tile
}

// coverCrop returns the largest centred region of b with the aspect ratio
// w:h.
func coverCrop(b image.Rectangle, w, h int) image.Rectangle {
	if b.Empty() || w <= 0 || h <= 0 {
		return image.Rectangle{}
	}
	srcW, srcH := b.Dx(), b.Dy()
	cropW, cropH := srcW, srcW*h/w
	if cropH > srcH {
		cropH = srcH
		cropW = srcH * w / h
	}
	if cropW <= 0 || cropH <= 0 {
		return image.Rectangle{}
	}
	x := b.Min.X + (srcW-cropW)/2
	y := b.Min.Y + (srcH-cropH)/2
	return image.Rect(x, y, x+cropW, y+cropH)
}

// circleMask is an alpha mask with a one-pixel antialiased edge.
type circleMask struct {
	center image.Point
	radius float64
}

func (m *circleMask) ColorModel() color.Model { return color.AlphaModel }

func (m *circleMask) Bounds() image.Rectangle {
	r := int(m.radius + 1)
	return image.Rect(m.center.X-r, m.center.Y-r, m.center.X+r, m.center.Y+r)
}

func (m *circleMask) At(x, y int) color.Color {
	dx := float64(x-m.center.X) + 0.5
	dy := float64(y-m.center.Y) + 0.5
	d := dx*dx + dy*dy
	inner := m.radius - 1
	switch {
	case d <= inner*inner:
		return color.Alpha{A: 255}
	case d >= m.radius*m.radius:
		return color.Alpha{}
	}
	// Linear falloff across the edge pixel.
	dist := math.Sqrt(d)
	return color.Alpha{A: floatToUint8((m.radius - dist) * 255)}
}

func floatToUint8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
