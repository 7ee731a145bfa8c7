// Package dpframe provides a high-level API for composing DP images.
package dpframe

import (
	"image/color"
	"time"

	"github.com/user/dpframe/pkg/orchestrator"
	"github.com/user/dpframe/pkg/pipeline"
	"github.com/user/dpframe/pkg/ports"
)

// QualityPreset represents a JPEG quality preset name.
type QualityPreset string

const (
	QualityLow    QualityPreset = "low"
	QualityMedium QualityPreset = "medium"
	QualityHigh   QualityPreset = "high"
)

// GetQuality returns the export quality (0..1) for the given preset.
func GetQuality(preset QualityPreset) float64 {
	switch preset {
	case QualityLow:
		return 0.7
	case QualityHigh:
		return 0.95
	default: // medium
		return 0.85
	}
}

// Config represents the configuration for one DP image.
type Config struct {
	// Surface size in logical pixels
	Width  float64
	Height float64
	Scale  float64 // device pixel ratio, physical size = logical * Scale

	// Template
	Template   pipeline.Template
	Background color.Color

	// Adjustments. Nil leaves restored or default values untouched.
	Name    *string
	Zoom    *float64
	OffsetX *float64
	OffsetY *float64

	// Frame loading
	FrameAttempts   int
	FrameRetryDelay time.Duration

	// Export
	Format          ports.ImageFormat
	Quality         float64 // 0..1, JPEG only
	AllowIncomplete bool

	// Persistence
	RestoreState bool
	SaveState    bool

	// RenderThrottle coalesces renders in watch mode.
	RenderThrottle time.Duration
}

// ConfigBuilder provides a fluent interface for building Config.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder creates a new ConfigBuilder with square preset defaults.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config: squareDefaults(),
	}
}

// NewPortraitConfigBuilder creates a new ConfigBuilder with portrait
// (4:5) preset defaults.
func NewPortraitConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config: portraitDefaults(),
	}
}

// squareDefaults returns the square preset configuration.
func squareDefaults() Config {
	return Config{
		// Surface
		Width:  1080,
		Height: 1080,
		Scale:  1,

		// Template
		Template:   pipeline.DefaultTemplate(),
		Background: color.White,

		// Frame loading
		FrameAttempts:   3,
		FrameRetryDelay: time.Second,

		// Export
		Format:  ports.FormatPNG,
		Quality: GetQuality(QualityMedium),

		// Persistence
		RestoreState: true,
		SaveState:    true,
	}
}

// portraitDefaults returns the portrait preset configuration.
func portraitDefaults() Config {
	cfg := squareDefaults()
	cfg.Height = 1350
	// Keep the circle where it sits on a square frame, measured from the top.
	cfg.Template.PhotoCenterY = 0.32 * 1080 / 1350
	cfg.Template.NameCenterY = 0.565 * 1080 / 1350
	return cfg
}

// Build returns the final Config, applying validation and constraints.
func (b *ConfigBuilder) Build() Config {
	cfg := b.config

	// Enforce a usable device pixel ratio
	if cfg.Scale <= 0 {
		cfg.Scale = 1
	}
	if cfg.Scale > 4 {
		cfg.Scale = 4
	}

	// Enforce at least one frame attempt
	if cfg.FrameAttempts < 1 {
		cfg.FrameAttempts = 1
	}
	if cfg.FrameRetryDelay < 0 {
		cfg.FrameRetryDelay = 0
	}

	// Quality outside (0, 1] means best
	if cfg.Quality <= 0 || cfg.Quality > 1 {
		cfg.Quality = 1
	}

	if cfg.Background == nil {
		cfg.Background = color.White
	}

	return cfg
}

// WithWidth sets the logical surface width.
func (b *ConfigBuilder) WithWidth(width float64) *ConfigBuilder {
	b.config.Width = width
	return b
}

// WithHeight sets the logical surface height.
func (b *ConfigBuilder) WithHeight(height float64) *ConfigBuilder {
	b.config.Height = height
	return b
}

// WithScale sets the device pixel ratio (clamped to (0, 4]).
func (b *ConfigBuilder) WithScale(scale float64) *ConfigBuilder {
	b.config.Scale = scale
	return b
}

// WithTemplate replaces the frame template.
func (b *ConfigBuilder) WithTemplate(t pipeline.Template) *ConfigBuilder {
	b.config.Template = t
	return b
}

// WithFontRange sets the name font size bounds.
func (b *ConfigBuilder) WithFontRange(minSize, maxSize float64) *ConfigBuilder {
	b.config.Template.FontSize = pipeline.FontRange{Min: minSize, Max: maxSize}
	return b
}

// WithNamePadding sets the horizontal padding inside the name box.
func (b *ConfigBuilder) WithNamePadding(padding float64) *ConfigBuilder {
	b.config.Template.NamePadding = padding
	return b
}

// WithBackgroundColor sets the surface background color.
func (b *ConfigBuilder) WithBackgroundColor(c color.Color) *ConfigBuilder {
	b.config.Background = c
	return b
}

// WithName sets the name label.
func (b *ConfigBuilder) WithName(name string) *ConfigBuilder {
	b.config.Name = &name
	return b
}

// WithZoom sets the photo zoom factor.
func (b *ConfigBuilder) WithZoom(zoom float64) *ConfigBuilder {
	b.config.Zoom = &zoom
	return b
}

// WithOffsetX sets the horizontal photo offset.
func (b *ConfigBuilder) WithOffsetX(x float64) *ConfigBuilder {
	b.config.OffsetX = &x
	return b
}

// WithOffsetY sets the vertical photo offset.
func (b *ConfigBuilder) WithOffsetY(y float64) *ConfigBuilder {
	b.config.OffsetY = &y
	return b
}

// WithFrameRetry sets the frame attempt budget and the delay between attempts.
func (b *ConfigBuilder) WithFrameRetry(attempts int, delay time.Duration) *ConfigBuilder {
	b.config.FrameAttempts = attempts
	b.config.FrameRetryDelay = delay
	return b
}

// WithFormat sets the export format.
func (b *ConfigBuilder) WithFormat(format ports.ImageFormat) *ConfigBuilder {
	b.config.Format = format
	return b
}

// WithQuality sets the JPEG quality (0..1).
func (b *ConfigBuilder) WithQuality(quality float64) *ConfigBuilder {
	b.config.Quality = quality
	return b
}

// WithQualityPreset applies a quality preset (low, medium, high).
func (b *ConfigBuilder) WithQualityPreset(preset QualityPreset) *ConfigBuilder {
	b.config.Quality = GetQuality(preset)
	return b
}

// WithAllowIncomplete exports even when the frame or photo is missing.
func (b *ConfigBuilder) WithAllowIncomplete(allow bool) *ConfigBuilder {
	b.config.AllowIncomplete = allow
	return b
}

// WithState toggles restoring and saving the adjustment record.
func (b *ConfigBuilder) WithState(restore, save bool) *ConfigBuilder {
	b.config.RestoreState = restore
	b.config.SaveState = save
	return b
}

// WithRenderThrottle coalesces renders triggered within d of each other.
func (b *ConfigBuilder) WithRenderThrottle(d time.Duration) *ConfigBuilder {
	b.config.RenderThrottle = d
	return b
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
func (c Config) ToOrchestratorConfig(photoPath, outputPath, outputDir string) orchestrator.Config {
	return orchestrator.Config{
		PhotoPath: photoPath,

		// Adjustments
		Name:    c.Name,
		Zoom:    c.Zoom,
		OffsetX: c.OffsetX,
		OffsetY: c.OffsetY,

		// Surface
		Width:      c.Width,
		Height:     c.Height,
		Scale:      c.Scale,
		Template:   c.Template,
		Background: colorToArray(c.Background),

		// Frame loading
		FrameAttempts:     c.FrameAttempts,
		FrameRetryDelayMs: int(c.FrameRetryDelay / time.Millisecond),

		// Output
		OutputPath:      outputPath,
		OutputDir:       outputDir,
		Format:          c.Format,
		Quality:         c.Quality,
		AllowIncomplete: c.AllowIncomplete,

		// Persistence
		RestoreState: c.RestoreState,
		SaveState:    c.SaveState,

		RenderThrottleMs: int(c.RenderThrottle / time.Millisecond),
	}
}

// colorToArray converts color.Color to [4]uint8 array.
func colorToArray(c color.Color) [4]uint8 {
	if c == nil {
		return [4]uint8{}
	}
	r, g, b, a := c.RGBA()
	return [4]uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}
