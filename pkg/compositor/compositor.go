// Package compositor owns the composition state of one DP session and
// paints it onto a drawing surface.
package compositor

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/user/dpframe/pkg/pipeline"
	"github.com/user/dpframe/pkg/ports"
	"github.com/user/dpframe/pkg/stages/layout"
)

// Options configures a Compositor. Zero values select the defaults.
type Options struct {
	// Scale is the device pixel ratio of the surface. Defaults to 1.
	Scale float64

	// Background fills the surface before each render. Defaults to white.
	Background color.Color

	// FrameSource supplies the decorative frame for LoadFrame.
	FrameSource ports.FrameSource

	// Retry bounds frame loading.
	Retry RetryPolicy

	// Sleep waits between frame load attempts. Defaults to a timer
	// that honours ctx.
	Sleep func(ctx context.Context, d time.Duration) error

	// RenderThrottle coalesces setter-triggered renders into one trailing
	// render per interval. Zero renders synchronously.
	RenderThrottle time.Duration

	Logger ports.Logger
}

// Ticket identifies one upload request. Only the newest ticket commits.
type Ticket uint64

// Compositor holds one session's CompositionState. All methods are safe
// for concurrent use; state changes and painting are serialized.
type Compositor struct {
	mu sync.Mutex

	id       string
	renderer ports.Renderer
	layout   pipeline.Layout
	canvas   ports.Canvas
	opts     Options
	logger   ports.Logger
	throttle *throttle

	frame   image.Image
	photo   image.Image
	name    string
	zoom    float64
	offsetX float64
	offsetY float64

	frameStatus   FrameStatus
	frameAttempts int
	frameErr      *FrameLoadError

	generation uint64
	dirty      bool
	exporting  bool
	renders    int
	lastFit    Fit
}

// New validates l, creates the surface and paints the initial state.
func New(renderer ports.Renderer, l pipeline.Layout, opts Options) (*Compositor, error) {
	if err := layout.Validate(l); err != nil {
		return nil, fmt.Errorf("compositor: %w", err)
	}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.Background == nil {
		opts.Background = color.White
	}
	opts.Retry = opts.Retry.withDefaults()
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}

	id := uuid.NewString()
	var log ports.Logger = nopLogger{}
	if opts.Logger != nil {
		log = opts.Logger.WithComponent("compositor")
	}

	c := &Compositor{
		id:       id,
		renderer: renderer,
		layout:   l,
		canvas:   renderer.CreateCanvas(l.Width, l.Height, opts.Scale, opts.Background),
		opts:     opts,
		logger:   log,
		zoom:     DefaultZoom,
	}
	if opts.RenderThrottle > 0 {
		c.throttle = newThrottle(opts.RenderThrottle, c.flushPending)
	}

	c.logger.Debug("Session %s: %.0fx%.0f canvas at %.2fx", id, l.Width, l.Height, opts.Scale)

	c.mu.Lock()
	c.renderLocked()
	c.mu.Unlock()
	return c, nil
}

// ID returns the session identifier.
func (c *Compositor) ID() string { return c.id }

// Layout returns the immutable geometry.
func (c *Compositor) Layout() pipeline.Layout { return c.layout }

// Scale returns the device pixel ratio of the surface.
func (c *Compositor) Scale() float64 { return c.canvas.Scale() }

// Close cancels any pending coalesced render.
func (c *Compositor) Close() {
	if c.throttle != nil {
		c.throttle.cancel()
	}
}

// SetUserImage replaces the photo and invalidates outstanding tickets.
func (c *Compositor) SetUserImage(img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.photo = img
	c.changedLocked()
}

// BeginUpload starts an upload and returns its ticket. A later
// BeginUpload, SetUserImage or Reset makes the ticket stale.
func (c *Compositor) BeginUpload() Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	return Ticket(c.generation)
}

// CommitUpload stores img if t is still the newest ticket. It reports
// whether the image was applied; a stale result leaves state untouched.
func (c *Compositor) CommitUpload(t Ticket, img image.Image) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if uint64(t) != c.generation {
		c.logger.Warn("Discarding stale upload %d (current %d)", uint64(t), c.generation)
		return false
	}
	c.photo = img
	c.changedLocked()
	return true
}

// SetName sanitizes and stores the name label.
func (c *Compositor) SetName(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = SanitizeName(text)
	c.changedLocked()
}

// SetZoom stores the clamped zoom.
func (c *Compositor) SetZoom(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zoom = ClampZoom(v)
	c.changedLocked()
}

// SetOffset stores the clamped photo offset.
func (c *Compositor) SetOffset(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offsetX = ClampOffset(x)
	c.offsetY = ClampOffset(y)
	c.changedLocked()
}

// ResetAdjustments restores zoom and offset.
func (c *Compositor) ResetAdjustments() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zoom = DefaultZoom
	c.offsetX, c.offsetY = 0, 0
	c.changedLocked()
}

// Reset clears the photo, the name and the adjustments. The frame stays.
func (c *Compositor) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.photo = nil
	c.name = ""
	c.zoom = DefaultZoom
	c.offsetX, c.offsetY = 0, 0
	c.changedLocked()
}

// IsComplete reports whether both the frame and a photo are present.
func (c *Compositor) IsComplete() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frameStatus == FrameLoaded && c.frame != nil && c.photo != nil
}

// Name returns the sanitized name.
func (c *Compositor) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

// Zoom returns the stored zoom.
func (c *Compositor) Zoom() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom
}

// Offset returns the stored photo offset.
func (c *Compositor) Offset() (x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offsetX, c.offsetY
}

// LastFit returns the text fit of the most recent render.
func (c *Compositor) LastFit() Fit {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastFit
}

// Image flushes any pending render and returns the physical raster.
func (c *Compositor) Image() image.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushLocked()
	return c.canvas.ToImage()
}

// Stats summarizes the session.
type Stats struct {
	SessionID     string  `json:"sessionId"`
	HasImage      bool    `json:"hasImage"`
	HasFrame      bool    `json:"hasFrame"`
	HasName       bool    `json:"hasName"`
	FrameStatus   string  `json:"frameStatus"`
	FrameAttempts int     `json:"frameAttempts"`
	Zoom          float64 `json:"zoom"`
	OffsetX       float64 `json:"offsetX"`
	OffsetY       float64 `json:"offsetY"`
	FontSize      float64 `json:"fontSize,omitempty"`
	Renders       int     `json:"renders"`
}

// Stats returns a snapshot of the session for reports and debug output.
func (c *Compositor) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		SessionID:     c.id,
		HasImage:      c.photo != nil,
		HasFrame:      c.frame != nil,
		HasName:       c.name != "",
		FrameStatus:   c.frameStatus.String(),
		FrameAttempts: c.frameAttempts,
		Zoom:          c.zoom,
		OffsetX:       c.offsetX,
		OffsetY:       c.offsetY,
		FontSize:      c.lastFit.FontSize,
		Renders:       c.renders,
	}
}

// changedLocked renders now or schedules a coalesced render.
func (c *Compositor) changedLocked() {
	c.dirty = true
	if c.throttle != nil {
		c.throttle.trigger()
		return
	}
	c.renderLocked()
}

// flushLocked renders if a coalesced render is outstanding.
func (c *Compositor) flushLocked() {
	if c.throttle != nil {
		c.throttle.cancel()
	}
	if c.dirty {
		c.renderLocked()
	}
}

func (c *Compositor) flushPending() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dirty {
		c.renderLocked()
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{})        {}
func (nopLogger) Info(string, ...interface{})         {}
func (nopLogger) Warn(string, ...interface{})         {}
func (nopLogger) Error(string, ...interface{})        {}
func (l nopLogger) WithComponent(string) ports.Logger { return l }
