package ggrenderer

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/fogleman/gg"

	"github.com/user/dpframe/pkg/ports"
)

// Canvas implements ports.Canvas using gg.Context.
//
// gg's Pop does not restore the clip mask, so the canvas keeps its own
// mask stack and reinstalls masks explicitly.
type Canvas struct {
	dc     *gg.Context
	width  float64
	height float64
	scale  float64
	fonts  *fontCache

	mask  *image.Alpha
	masks []*image.Alpha
}

// Size returns the logical dimensions.
func (c *Canvas) Size() (float64, float64) {
	return c.width, c.height
}

// Scale returns the device pixel ratio.
func (c *Canvas) Scale() float64 {
	return c.scale
}

// Clear fills the whole raster with col, ignoring any clip.
func (c *Canvas) Clear(col color.Color) {
	if col == nil {
		col = color.Transparent
	}
	c.dc.SetColor(col)
	c.dc.Clear()
}

// Push saves the current clip.
func (c *Canvas) Push() {
	c.masks = append(c.masks, c.mask)
}

// Pop restores the clip saved by the matching Push.
func (c *Canvas) Pop() {
	if len(c.masks) == 0 {
		return
	}
	c.mask = c.masks[len(c.masks)-1]
	c.masks = c.masks[:len(c.masks)-1]
	c.applyMask()
}

// ClipCircle intersects the clip with a circle in logical coordinates.
func (c *Canvas) ClipCircle(cx, cy, radius float64) {
	b := c.dc.Image().Bounds()

	scratch := gg.NewContext(b.Dx(), b.Dy())
	scratch.Scale(c.scale, c.scale)
	scratch.DrawCircle(cx, cy, radius)
	scratch.SetColor(color.White)
	scratch.Fill()
	circle := scratch.AsMask()

	if c.mask != nil {
		merged := image.NewAlpha(b)
		draw.DrawMask(merged, b, circle, image.Point{}, c.mask, image.Point{}, draw.Over)
		circle = merged
	}
	c.mask = circle
	c.applyMask()
}

func (c *Canvas) applyMask() {
	if c.mask == nil {
		c.dc.ResetClip()
		return
	}
	c.dc.SetMask(c.mask)
}

// DrawImageRect draws img stretched into the logical rectangle.
func (c *Canvas) DrawImageRect(img image.Image, x, y, width, height float64) {
	b := img.Bounds()
	if b.Empty() || width <= 0 || height <= 0 {
		return
	}

	c.dc.Push()
	defer c.dc.Pop()

	c.dc.Translate(x, y)
	c.dc.Scale(width/float64(b.Dx()), height/float64(b.Dy()))
	c.dc.DrawImage(img, -b.Min.X, -b.Min.Y)
}

// StrokeCircle draws a circle outline. lineWidth is logical.
func (c *Canvas) StrokeCircle(cx, cy, radius float64, col color.Color, lineWidth float64) {
	c.dc.SetColor(col)
	c.dc.SetLineWidth(lineWidth * c.scale)
	c.dc.DrawCircle(cx, cy, radius)
	c.dc.Stroke()
}

// DrawText rasterizes text with a face built at physical size so glyphs
// stay sharp at any device pixel ratio.
func (c *Canvas) DrawText(text string, x, y float64, style ports.TextStyle) {
	if text == "" {
		return
	}
	col := style.Color
	if col == nil {
		col = color.Black
	}

	px, py := c.dc.TransformPoint(x, y)

	c.dc.Push()
	defer c.dc.Pop()

	c.dc.Identity()
	c.dc.SetFontFace(c.fonts.face(style.Weight, style.FontSize*c.scale))
	c.dc.SetColor(col)
	c.dc.DrawStringAnchored(text, px, py, anchorX(style.Align), 0.5)
}

// MeasureText measures with a face at logical size.
func (c *Canvas) MeasureText(text string, style ports.TextStyle) (float64, float64) {
	return measure(c.fonts.face(style.Weight, style.FontSize), text)
}

// ToImage returns a snapshot of the physical raster. Later drawing does
// not affect the returned image.
func (c *Canvas) ToImage() image.Image {
	src := c.dc.Image()
	dst := image.NewRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}

func anchorX(a ports.TextAlign) float64 {
	switch a {
	case ports.AlignCenter:
		return 0.5
	case ports.AlignRight:
		return 1.0
	default:
		return 0
	}
}

// Ensure Canvas implements ports.Canvas
var _ ports.Canvas = (*Canvas)(nil)
