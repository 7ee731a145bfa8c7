// Package ggrenderer provides a renderer implementation using the gg library.
package ggrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder for FormatAuto

	"github.com/user/dpframe/pkg/ports"
)

// Renderer implements ports.Renderer using the gg library.
type Renderer struct {
	fonts *fontCache
}

// New creates a new Renderer.
func New() *Renderer {
	return &Renderer{fonts: newFontCache()}
}

// CreateCanvas creates a new drawing canvas. The device pixel ratio is
// installed as the base transform here and nowhere else.
func (r *Renderer) CreateCanvas(width, height, scale float64, bg color.Color) ports.Canvas {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		scale = 1
	}
	pw := physical(width, scale)
	ph := physical(height, scale)

	dc := gg.NewContext(pw, ph)
	dc.Scale(scale, scale)

	c := &Canvas{
		dc:     dc,
		width:  width,
		height: height,
		scale:  scale,
		fonts:  r.fonts.fork(),
	}
	c.Clear(bg)
	return c
}

// DecodeImage decodes image data into an image.Image.
func (r *Renderer) DecodeImage(data []byte, format ports.ImageFormat) (image.Image, error) {
	reader := bytes.NewReader(data)

	switch format {
	case ports.FormatJPEG:
		return jpeg.Decode(reader)
	case ports.FormatPNG:
		return png.Decode(reader)
	default:
		img, _, err := image.Decode(reader)
		return img, err
	}
}

// EncodeImage encodes an image to the specified format.
func (r *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case ports.FormatJPEG:
		if quality < 1 {
			quality = 1
		} else if quality > 100 {
			quality = 100
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode JPEG: %w", err)
		}
	case ports.FormatPNG:
		enc := png.Encoder{CompressionLevel: png.DefaultCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode PNG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	return buf.Bytes(), nil
}

// ResizeImage resizes an image to the specified dimensions.
func (r *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// Ensure Renderer implements ports.Renderer
var _ ports.Renderer = (*Renderer)(nil)

func physical(logical, scale float64) int {
	n := int(math.Round(logical * scale))
	if n < 1 {
		n = 1
	}
	return n
}
