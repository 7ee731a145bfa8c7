package ggrenderer

import (
	"math"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/user/dpframe/pkg/ports"
)

// faceKey identifies a cached face. Sizes are quantized to 1/64 px.
type faceKey struct {
	weight ports.FontWeight
	size   int64
}

// fontCache parses the embedded Go fonts once and hands out faces per size.
// Faces keep glyph caches and are not safe for concurrent use, so each
// canvas works on its own fork.
type fontCache struct {
	mu      sync.Mutex
	regular *truetype.Font
	bold    *truetype.Font
	faces   map[faceKey]font.Face
}

func newFontCache() *fontCache {
	fc := &fontCache{faces: make(map[faceKey]font.Face)}
	if f, err := truetype.Parse(goregular.TTF); err == nil {
		fc.regular = f
	}
	if f, err := truetype.Parse(gobold.TTF); err == nil {
		fc.bold = f
	}
	return fc
}

// fork returns a cache sharing the parsed fonts with an empty face map.
func (fc *fontCache) fork() *fontCache {
	return &fontCache{
		regular: fc.regular,
		bold:    fc.bold,
		faces:   make(map[faceKey]font.Face),
	}
}

// face returns a face of the given pixel size. DPI is left at 72 so
// points and pixels coincide.
func (fc *fontCache) face(weight ports.FontWeight, size float64) font.Face {
	if size <= 0 {
		size = 1
	}
	key := faceKey{weight: weight, size: int64(math.Round(size * 64))}

	fc.mu.Lock()
	defer fc.mu.Unlock()

	if f, ok := fc.faces[key]; ok {
		return f
	}

	ttf := fc.regular
	if weight == ports.WeightBold && fc.bold != nil {
		ttf = fc.bold
	}
	if ttf == nil {
		return basicfont.Face7x13
	}

	f := truetype.NewFace(ttf, &truetype.Options{
		Size:    float64(key.size) / 64,
		Hinting: font.HintingNone,
	})
	fc.faces[key] = f
	return f
}

// measure returns the advance width and line height of text in the face's units.
func measure(face font.Face, text string) (width, height float64) {
	adv := font.MeasureString(face, text)
	m := face.Metrics()
	return float64(adv) / 64, float64(m.Height) / 64
}
