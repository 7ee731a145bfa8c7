package compositor

import (
	"image/color"
	"math"
	"strings"

	"github.com/user/dpframe/pkg/ports"
)

var (
	placeholderStroke = color.NRGBA{0, 0, 0, 26}
	placeholderText   = color.NRGBA{0, 0, 0, 51}
	nameColor         = color.Black
	nameShadow        = color.NRGBA{0, 0, 0, 26}

	errorBackground = color.NRGBA{0xf0, 0xf0, 0xf0, 0xff}
	errorTitle      = color.NRGBA{0xef, 0x44, 0x44, 0xff}
	errorText       = color.NRGBA{0x66, 0x66, 0x66, 0xff}
)

// FrameErrorMessage is shown on the surface when the frame cannot load.
const FrameErrorMessage = "Failed to load frame template. Check the frame location and try again."

const (
	shadowOffset    = 1.0
	errorLineHeight = 30.0
	errorMargin     = 100.0
)

// Render paints the surface from the current state.
func (c *Compositor) Render() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.throttle != nil {
		c.throttle.cancel()
	}
	c.renderLocked()
}

func (c *Compositor) renderLocked() {
	c.dirty = false
	c.renders++

	if c.frameStatus == FrameFailed {
		c.lastFit = Fit{}
		c.paintError(FrameErrorMessage)
		return
	}

	cv := c.canvas
	cv.Clear(c.opts.Background)

	if c.photo != nil && !c.photo.Bounds().Empty() {
		c.paintPhoto(cv)
	} else {
		c.paintPlaceholder(cv)
	}

	if c.frameStatus == FrameLoaded && c.frame != nil {
		cv.DrawImageRect(c.frame, 0, 0, c.layout.Width, c.layout.Height)
	}

	c.lastFit = Fit{}
	if c.name != "" {
		c.paintName(cv)
	}
}

// paintPhoto aspect-fills the photo into the clipped circle.
func (c *Compositor) paintPhoto(cv ports.Canvas) {
	l := c.layout
	b := c.photo.Bounds()
	iw, ih := float64(b.Dx()), float64(b.Dy())

	scale := math.Max(2*l.PhotoRadius/iw, 2*l.PhotoRadius/ih) * c.zoom
	w, h := iw*scale, ih*scale
	x := l.PhotoCenter.X - w/2 + c.offsetX
	y := l.PhotoCenter.Y - h/2 + c.offsetY

	cv.Push()
	cv.ClipCircle(l.PhotoCenter.X, l.PhotoCenter.Y, l.PhotoRadius)
	cv.DrawImageRect(c.photo, x, y, w, h)
	cv.Pop()
}

func (c *Compositor) paintPlaceholder(cv ports.Canvas) {
	l := c.layout
	cx, cy := l.PhotoCenter.X, l.PhotoCenter.Y

	cv.StrokeCircle(cx, cy, l.PhotoRadius, placeholderStroke, 2)
	cv.DrawText("Your Photo", cx, cy-20, ports.TextStyle{
		FontSize: 40, Weight: ports.WeightBold, Color: placeholderText, Align: ports.AlignCenter,
	})
	cv.DrawText("Here", cx, cy+20, ports.TextStyle{
		FontSize: 30, Weight: ports.WeightRegular, Color: placeholderText, Align: ports.AlignCenter,
	})
}

func (c *Compositor) paintName(cv ports.Canvas) {
	l := c.layout
	fit := FitFontSize(cv, strings.ToUpper(c.name), l)
	c.lastFit = fit

	style := ports.TextStyle{
		FontSize: fit.FontSize,
		Weight:   ports.WeightBold,
		Color:    nameShadow,
		Align:    ports.AlignCenter,
	}
	cv.DrawText(fit.Text, l.NameCenter.X+shadowOffset, l.NameCenter.Y+shadowOffset, style)
	style.Color = nameColor
	cv.DrawText(fit.Text, l.NameCenter.X, l.NameCenter.Y, style)

	if fit.Overflow {
		c.logger.Debug("Name %q overflows at minimum size %.0f (%.1f > %.1f)", fit.Text, fit.FontSize, fit.Width, l.FitWidth())
	}
}

// paintError replaces the whole composition with an error notice.
func (c *Compositor) paintError(message string) {
	cv := c.canvas
	w, h := c.layout.Width, c.layout.Height

	cv.Clear(errorBackground)
	cv.DrawText("Error", w/2, h/2-40, ports.TextStyle{
		FontSize: 40, Weight: ports.WeightBold, Color: errorTitle, Align: ports.AlignCenter,
	})

	style := errorStyle()
	y := h/2 + 20
	for _, line := range wrapWords(cv, message, w-errorMargin, style) {
		cv.DrawText(line, w/2, y, style)
		y += errorLineHeight
	}
}

func errorStyle() ports.TextStyle {
	return ports.TextStyle{FontSize: 24, Weight: ports.WeightRegular, Color: errorText, Align: ports.AlignCenter}
}

// wrapWords greedily breaks text on spaces so each line fits maxWidth.
// A single word wider than maxWidth gets a line of its own.
func wrapWords(m Measurer, text string, maxWidth float64, style ports.TextStyle) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if wdt, _ := m.MeasureText(candidate, style); wdt > maxWidth && line != "" {
			lines = append(lines, line)
			line = word
			continue
		}
		line = candidate
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}
