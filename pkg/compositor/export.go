package compositor

import (
	"context"
	"math"

	"github.com/user/dpframe/pkg/ports"
)

// Export encodes the current surface. quality applies to JPEG and ranges
// over 0..1, mapped onto the encoder's 1..100 scale. Callers gate on
// IsComplete; Export itself encodes whatever the surface shows.
func (c *Compositor) Export(ctx context.Context, format ports.ImageFormat, quality float64) ([]byte, error) {
	if format == ports.FormatAuto {
		format = ports.FormatPNG
	}

	c.mu.Lock()
	if c.exporting {
		c.mu.Unlock()
		return nil, ErrExportInProgress
	}
	c.exporting = true
	c.flushLocked()
	img := c.canvas.ToImage()
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.exporting = false
		c.mu.Unlock()
	}()

	if err := ctx.Err(); err != nil {
		return nil, &ExportError{Format: format.String(), Err: err}
	}

	data, err := c.renderer.EncodeImage(img, format, QualityPercent(quality))
	if err != nil {
		return nil, &ExportError{Format: format.String(), Err: err}
	}
	if len(data) == 0 {
		return nil, &ExportError{Format: format.String(), Err: ErrEmptyExport}
	}

	b := img.Bounds()
	c.logger.Debug("Exported %s %dx%d: %d bytes", format, b.Dx(), b.Dy(), len(data))
	return data, nil
}

// QualityPercent maps a 0..1 quality onto 1..100. Zero, NaN and out of
// range values select full quality.
func QualityPercent(q float64) int {
	if math.IsNaN(q) || q <= 0 || q > 1 {
		q = 1
	}
	p := int(math.Round(q * 100))
	if p < 1 {
		p = 1
	}
	return p
}
