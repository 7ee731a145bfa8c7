package mocks

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"
	"unicode/utf8"

	"github.com/user/dpframe/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
type Renderer struct {
	CreateCanvasFunc func(width, height, scale float64, bg color.Color) ports.Canvas
	DecodeImageFunc  func(data []byte, format ports.ImageFormat) (image.Image, error)
	EncodeImageFunc  func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)
	ResizeImageFunc  func(img image.Image, width, height int) image.Image

	mu       sync.Mutex
	canvases []*Canvas
}

func (m *Renderer) CreateCanvas(width, height, scale float64, bg color.Color) ports.Canvas {
	if m.CreateCanvasFunc != nil {
		return m.CreateCanvasFunc(width, height, scale, bg)
	}
	c := NewCanvas(width, height, scale)
	m.mu.Lock()
	m.canvases = append(m.canvases, c)
	m.mu.Unlock()
	return c
}

// LastCanvas returns the most recently created recording canvas.
func (m *Renderer) LastCanvas() *Canvas {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.canvases) == 0 {
		return nil
	}
	return m.canvases[len(m.canvases)-1]
}

func (m *Renderer) DecodeImage(data []byte, format ports.ImageFormat) (image.Image, error) {
	if m.DecodeImageFunc != nil {
		return m.DecodeImageFunc(data, format)
	}
	return image.NewRGBA(image.Rect(0, 0, 100, 100)), nil
}

func (m *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format, quality)
	}
	return []byte{0x89, 'P', 'N', 'G'}, nil
}

func (m *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	if m.ResizeImageFunc != nil {
		return m.ResizeImageFunc(img, width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

var _ ports.Renderer = (*Renderer)(nil)

// Op is one recorded drawing call.
type Op struct {
	Kind  string
	Text  string
	Image image.Image
	X, Y  float64
	W, H  float64
	Style ports.TextStyle
	Color color.Color
}

// String renders the op in a compact form for test failure output.
func (o Op) String() string {
	switch o.Kind {
	case "text":
		return fmt.Sprintf("text(%q@%.1f,%.1f size=%.0f)", o.Text, o.X, o.Y, o.Style.FontSize)
	case "image":
		return fmt.Sprintf("image(%.1f,%.1f %.1fx%.1f)", o.X, o.Y, o.W, o.H)
	case "clip", "stroke":
		return fmt.Sprintf("%s(%.1f,%.1f r=%.1f)", o.Kind, o.X, o.Y, o.W)
	default:
		return o.Kind
	}
}

// Canvas is a recording implementation of ports.Canvas. Text width is
// 0.6 * size per rune so fitting tests are exact.
type Canvas struct {
	mu     sync.Mutex
	width  float64
	height float64
	scale  float64
	ops    []Op
}

// NewCanvas creates a recording canvas.
func NewCanvas(width, height, scale float64) *Canvas {
	if scale <= 0 {
		scale = 1
	}
	return &Canvas{width: width, height: height, scale: scale}
}

func (m *Canvas) record(op Op) {
	m.mu.Lock()
	m.ops = append(m.ops, op)
	m.mu.Unlock()
}

// Ops returns a copy of the recorded calls.
func (m *Canvas) Ops() []Op {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Op, len(m.ops))
	copy(out, m.ops)
	return out
}

// Kinds returns the kinds of the recorded calls in order.
func (m *Canvas) Kinds() []string {
	ops := m.Ops()
	kinds := make([]string, len(ops))
	for i, op := range ops {
		kinds[i] = op.Kind
	}
	return kinds
}

// Reset discards recorded calls.
func (m *Canvas) Reset() {
	m.mu.Lock()
	m.ops = nil
	m.mu.Unlock()
}

func (m *Canvas) Size() (float64, float64) { return m.width, m.height }

func (m *Canvas) Scale() float64 { return m.scale }

func (m *Canvas) Clear(c color.Color) { m.record(Op{Kind: "clear", Color: c}) }

func (m *Canvas) Push() { m.record(Op{Kind: "push"}) }

func (m *Canvas) Pop() { m.record(Op{Kind: "pop"}) }

func (m *Canvas) ClipCircle(cx, cy, radius float64) {
	m.record(Op{Kind: "clip", X: cx, Y: cy, W: radius})
}

func (m *Canvas) DrawImageRect(img image.Image, x, y, width, height float64) {
	m.record(Op{Kind: "image", Image: img, X: x, Y: y, W: width, H: height})
}

func (m *Canvas) StrokeCircle(cx, cy, radius float64, c color.Color, lineWidth float64) {
	m.record(Op{Kind: "stroke", X: cx, Y: cy, W: radius, Color: c})
}

func (m *Canvas) DrawText(text string, x, y float64, style ports.TextStyle) {
	m.record(Op{Kind: "text", Text: text, X: x, Y: y, Style: style, Color: style.Color})
}

func (m *Canvas) MeasureText(text string, style ports.TextStyle) (float64, float64) {
	w := float64(utf8.RuneCountInString(text)) * style.FontSize * 0.6
	return math.Round(w*1000) / 1000, style.FontSize * 1.2
}

func (m *Canvas) ToImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0,
		int(math.Round(m.width*m.scale)), int(math.Round(m.height*m.scale))))
}

var _ ports.Canvas = (*Canvas)(nil)
