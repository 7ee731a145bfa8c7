package ports

import (
	"image"
	"image/color"
	"strings"
)

// Renderer abstracts surface creation and image codecs.
type Renderer interface {
	// CreateCanvas creates a drawing surface of the given logical size.
	// scale is the device pixel ratio; the physical raster is
	// round(width*scale) x round(height*scale).
	CreateCanvas(width, height, scale float64, bg color.Color) Canvas

	// DecodeImage decodes image data into an image.Image.
	DecodeImage(data []byte, format ImageFormat) (image.Image, error)

	// EncodeImage encodes an image to the specified format.
	// quality is only used by lossy formats (1-100).
	EncodeImage(img image.Image, format ImageFormat, quality int) ([]byte, error)

	// ResizeImage resizes an image to the specified dimensions.
	ResizeImage(img image.Image, width, height int) image.Image
}

// Canvas is the drawing capability the compositor paints through.
// Every coordinate and length is in logical pixels.
type Canvas interface {
	// Size returns the logical dimensions of the surface.
	Size() (width, height float64)

	// Scale returns the device pixel ratio applied at creation.
	Scale() float64

	// Clear fills the whole surface with c, discarding previous content.
	Clear(c color.Color)

	// Push saves the clip state; Pop restores it.
	Push()
	Pop()

	// ClipCircle intersects the clip region with a circle.
	ClipCircle(cx, cy, radius float64)

	// DrawImageRect draws img stretched into the rectangle.
	DrawImageRect(img image.Image, x, y, width, height float64)

	// StrokeCircle draws a circle outline.
	StrokeCircle(cx, cy, radius float64, c color.Color, lineWidth float64)

	// DrawText draws a single line of text vertically centered on y.
	// Align controls how x is interpreted.
	DrawText(text string, x, y float64, style TextStyle)

	// MeasureText returns the logical width and height of the text.
	MeasureText(text string, style TextStyle) (width, height float64)

	// ToImage returns the physical raster.
	ToImage() image.Image
}

// TextStyle defines text rendering properties.
type TextStyle struct {
	FontSize float64
	Weight   FontWeight
	Color    color.Color
	Align    TextAlign
}

// FontWeight selects the embedded face.
type FontWeight int

const (
	WeightRegular FontWeight = iota
	WeightBold
)

// TextAlign specifies text alignment.
type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

// ImageFormat specifies image encoding format.
type ImageFormat int

const (
	FormatJPEG ImageFormat = iota
	FormatPNG
	// FormatAuto lets the decoder sniff the format. Not valid for encoding.
	FormatAuto
)

// String returns the canonical short name of the format.
func (f ImageFormat) String() string {
	switch f {
	case FormatJPEG:
		return "jpeg"
	case FormatPNG:
		return "png"
	case FormatAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// Extension returns the file extension including the dot.
func (f ImageFormat) Extension() string {
	if f == FormatJPEG {
		return ".jpg"
	}
	return ".png"
}

// ParseImageFormat parses a format name or MIME type. Unknown values
// fall back to PNG.
func ParseImageFormat(s string) ImageFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jpeg", "jpg", "image/jpeg", "image/jpg":
		return FormatJPEG
	default:
		return FormatPNG
	}
}
