// Package orchestrator wires the stages and the compositor into a
// generate run.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"time"

	"github.com/user/dpframe/pkg/compositor"
	"github.com/user/dpframe/pkg/pipeline"
	"github.com/user/dpframe/pkg/ports"
)

// ErrIncomplete is returned when an export is requested before both the
// frame and a photo are present.
var ErrIncomplete = errors.New("orchestrator: frame and photo are both required")

// Config contains all configuration for a generate run.
type Config struct {
	// Input
	PhotoPath string

	// Adjustments applied after any restored state. Nil leaves the
	// value alone.
	Name    *string
	Zoom    *float64
	OffsetX *float64
	OffsetY *float64

	// Surface
	Width      float64
	Height     float64
	Scale      float64
	Template   pipeline.Template
	Background [4]uint8 // RGBA, zero means white

	// Frame loading
	FrameAttempts     int
	FrameRetryDelayMs int

	// Output
	OutputPath      string // explicit path, wins over OutputDir
	OutputDir       string
	Format          ports.ImageFormat
	Quality         float64 // 0..1, JPEG only
	AllowIncomplete bool

	// Persistence
	RestoreState bool
	SaveState    bool

	// RenderThrottleMs coalesces renders in long-lived sessions.
	RenderThrottleMs int
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	input := pipeline.DefaultLayoutInput()
	return Config{
		Width:             input.Width,
		Height:            input.Height,
		Scale:             1,
		Template:          input.Template,
		FrameAttempts:     3,
		FrameRetryDelayMs: 1000,
		OutputDir:         ".",
		Format:            ports.FormatPNG,
		Quality:           0.92,
		RestoreState:      true,
		SaveState:         true,
	}
}

// Orchestrator coordinates the execution of all pipeline stages.
type Orchestrator struct {
	layoutStage pipeline.Stage[pipeline.LayoutInput, pipeline.Layout]
	uploadStage pipeline.Stage[pipeline.UploadInput, pipeline.UploadResult]
	saveStage   pipeline.Stage[pipeline.SaveInput, pipeline.SaveResult]
	renderer    ports.Renderer
	frames      ports.FrameSource
	store       ports.StateStore
	sink        ports.DebugSink
	logger      ports.Logger
	now         func() time.Time
}

// New creates a new Orchestrator. store may be nil to disable persistence.
func New(
	layoutStage pipeline.Stage[pipeline.LayoutInput, pipeline.Layout],
	uploadStage pipeline.Stage[pipeline.UploadInput, pipeline.UploadResult],
	saveStage pipeline.Stage[pipeline.SaveInput, pipeline.SaveResult],
	renderer ports.Renderer,
	frames ports.FrameSource,
	store ports.StateStore,
	sink ports.DebugSink,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		layoutStage: layoutStage,
		uploadStage: uploadStage,
		saveStage:   saveStage,
		renderer:    renderer,
		frames:      frames,
		store:       store,
		sink:        sink,
		logger:      logger,
		now:         time.Now,
	}
}

// Session is a prepared compositor together with what it was built from.
type Session struct {
	Compositor *compositor.Compositor
	Layout     pipeline.Layout
	Photo      *pipeline.UploadResult
	PhotoPath  string
	Restored   bool
	FrameErr   error

	o      *Orchestrator
	config Config
}

// Run prepares a session and generates one image.
func (o *Orchestrator) Run(ctx context.Context, config Config) (RunResult, error) {
	o.logger.Info("Starting generation")
	start := time.Now()

	s, err := o.Prepare(ctx, config)
	if err != nil {
		return RunResult{}, err
	}
	defer s.Compositor.Close()

	result, err := s.Generate(ctx)
	if err != nil {
		return result, err
	}
	result.Duration = time.Since(start)

	o.logger.Info("Generation completed successfully")
	return result, nil
}

// Prepare computes the layout, loads the frame, restores state, applies
// the configured adjustments and uploads the photo.
func (o *Orchestrator) Prepare(ctx context.Context, config Config) (*Session, error) {
	// 1. Layout
	o.logger.Info("Calculating layout")
	layout, err := o.layoutStage.Execute(ctx, pipeline.LayoutInput{
		Width:    config.Width,
		Height:   config.Height,
		Template: config.Template,
	})
	if err != nil {
		o.logger.Error("Failed to calculate layout: %s", err)
		return nil, fmt.Errorf("layout stage: %w", err)
	}
	o.logger.Debug("Layout calculated: %.0fx%.0f canvas, photo radius %.1f", layout.Width, layout.Height, layout.PhotoRadius)

	if o.sink.Enabled() {
		if data, err := json.MarshalIndent(layout, "", "  "); err == nil {
			o.sink.SaveLayoutJSON(data)
		}
	}

	// 2. Compositor
	comp, err := compositor.New(o.renderer, layout, compositor.Options{
		Scale:       config.Scale,
		Background:  backgroundColor(config.Background),
		FrameSource: o.frames,
		Retry: compositor.RetryPolicy{
			MaxAttempts: config.FrameAttempts,
			Delay:       retryDelay(config.FrameRetryDelayMs),
		},
		RenderThrottle: time.Duration(config.RenderThrottleMs) * time.Millisecond,
		Logger:         o.logger,
	})
	if err != nil {
		return nil, err
	}
	s := &Session{Compositor: comp, Layout: layout, o: o, config: config}

	// 3. Frame
	if o.frames != nil {
		o.logger.Info("Loading frame from %s", o.frames.Location())
		if err := comp.LoadFrame(ctx); err != nil {
			s.FrameErr = err
			o.logger.Error("Failed to load frame: %s", err)
			if !config.AllowIncomplete {
				o.saveRender(comp, "error")
				comp.Close()
				return nil, fmt.Errorf("frame: %w", err)
			}
		}
	}

	// 4. Restore persisted adjustments
	if o.store != nil && config.RestoreState {
		rec, ok, err := o.store.Load(ctx)
		switch {
		case err != nil:
			o.logger.Warn("Ignoring saved state: %s", err)
		case ok:
			comp.ApplyAdjustments(compositor.FromRecord(rec))
			s.Restored = true
			o.logger.Info("Restored adjustments saved at %s", time.UnixMilli(rec.Timestamp).Format(time.RFC3339))
		}
	}

	// 5. Explicit adjustments
	s.applyOverrides()

	// 6. Photo
	if config.PhotoPath != "" {
		if err := s.Upload(ctx, config.PhotoPath); err != nil {
			comp.Close()
			return nil, err
		}
	}

	return s, nil
}

func (s *Session) applyOverrides() {
	c, comp := s.config, s.Compositor
	if c.Name != nil {
		comp.SetName(*c.Name)
	}
	if c.Zoom != nil {
		comp.SetZoom(*c.Zoom)
	}
	if c.OffsetX != nil || c.OffsetY != nil {
		x, y := comp.Offset()
		if c.OffsetX != nil {
			x = *c.OffsetX
		}
		if c.OffsetY != nil {
			y = *c.OffsetY
		}
		comp.SetOffset(x, y)
	}
}

// Upload decodes path and commits it unless a newer upload started.
func (s *Session) Upload(ctx context.Context, path string) error {
	o := s.o
	o.logger.Info("Loading photo %s", path)

	ticket := s.Compositor.BeginUpload()
	photo, err := o.uploadStage.Execute(ctx, pipeline.UploadInput{Path: path})
	if err != nil {
		o.logger.Error("Failed to load photo: %s", err)
		return fmt.Errorf("upload stage: %w", err)
	}
	if !s.Compositor.CommitUpload(ticket, photo.Image) {
		return nil
	}
	s.Photo = &photo
	s.PhotoPath = path
	if photo.Resized {
		o.logger.Info("Photo downscaled from %dx%d", photo.Width, photo.Height)
	}
	return nil
}

// Generate renders, exports and saves the current state of the session.
func (s *Session) Generate(ctx context.Context) (RunResult, error) {
	o, c, comp := s.o, s.config, s.Compositor

	comp.Render()
	o.saveRender(comp, "final")
	if o.sink.Enabled() {
		if data, err := json.MarshalIndent(comp.Stats(), "", "  "); err == nil {
			o.sink.SaveStateJSON(data)
		}
	}

	if !comp.IsComplete() && !c.AllowIncomplete {
		o.logger.Error("Cannot export: frame and photo are both required")
		return RunResult{}, ErrIncomplete
	}

	o.logger.Info("Exporting %s", c.Format)
	data, err := comp.Export(ctx, c.Format, c.Quality)
	if err != nil {
		o.logger.Error("Failed to export image: %s", err)
		return RunResult{}, err
	}

	adj := comp.Adjustments()
	saved, err := o.saveStage.Execute(ctx, pipeline.SaveInput{
		Data:   data,
		Format: c.Format,
		Name:   adj.Name,
		Dir:    c.OutputDir,
		Path:   c.OutputPath,
	})
	if err != nil {
		o.logger.Error("Failed to write output: %s", err)
		return RunResult{}, fmt.Errorf("save stage: %w", err)
	}
	o.logger.Info("Output saved to %s", saved.Path)

	if o.store != nil && c.SaveState {
		if err := o.store.Save(ctx, adj.Record(o.now())); err != nil {
			o.logger.Warn("Failed to save state: %s", err)
		}
	}

	return s.result(saved, adj), nil
}

func (s *Session) result(saved pipeline.SaveResult, adj compositor.Adjustments) RunResult {
	comp := s.Compositor
	stats := comp.Stats()
	fit := comp.LastFit()

	r := RunResult{
		SessionID:     stats.SessionID,
		OutputPath:    saved.Path,
		FileSize:      int64(saved.Bytes),
		Format:        s.config.Format.String(),
		CanvasWidth:   s.Layout.Width,
		CanvasHeight:  s.Layout.Height,
		Scale:         comp.Scale(),
		Name:          adj.Name,
		FontSize:      fit.FontSize,
		NameOverflow:  fit.Overflow,
		Zoom:          adj.Zoom,
		OffsetX:       adj.OffsetX,
		OffsetY:       adj.OffsetY,
		FrameStatus:   stats.FrameStatus,
		FrameAttempts: stats.FrameAttempts,
		Restored:      s.Restored,
	}
	if s.o.frames != nil {
		r.FrameLocation = s.o.frames.Location()
	}
	if s.Photo != nil {
		r.PhotoPath = s.PhotoPath
		r.PhotoFormat = s.Photo.Format
		r.PhotoWidth = s.Photo.Width
		r.PhotoHeight = s.Photo.Height
		r.PhotoResized = s.Photo.Resized
	}
	return r
}

func (o *Orchestrator) saveRender(comp *compositor.Compositor, label string) {
	if !o.sink.Enabled() {
		return
	}
	if err := o.sink.SaveRender(label, comp.Image()); err != nil {
		o.logger.Warn("Failed to save debug render: %s", err)
	}
}

// retryDelay maps a configured delay onto a RetryPolicy delay. An explicit
// zero means no wait, not the compositor default.
func retryDelay(ms int) time.Duration {
	if ms <= 0 {
		return compositor.NoRetryDelay
	}
	return time.Duration(ms) * time.Millisecond
}

func backgroundColor(c [4]uint8) color.Color {
	if c == [4]uint8{} {
		return color.White
	}
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: c[3]}
}

// RunResult contains the results of a generate run for summary generation.
type RunResult struct {
	SessionID string

	// Output
	OutputPath string
	FileSize   int64
	Format     string

	// Surface
	CanvasWidth  float64
	CanvasHeight float64
	Scale        float64

	// Composition
	Name         string
	FontSize     float64
	NameOverflow bool
	Zoom         float64
	OffsetX      float64
	OffsetY      float64
	Restored     bool

	// Frame
	FrameLocation string
	FrameStatus   string
	FrameAttempts int

	// Photo
	PhotoPath    string
	PhotoFormat  string
	PhotoWidth   int
	PhotoHeight  int
	PhotoResized bool

	Duration time.Duration
}

// PhysicalSize returns the exported pixel dimensions.
func (r RunResult) PhysicalSize() (int, int) {
	return int(r.CanvasWidth*r.Scale + 0.5), int(r.CanvasHeight*r.Scale + 0.5)
}
