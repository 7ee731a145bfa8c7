// Package summarizer provides summary generation for generate runs.
package summarizer

import "time"

// Summary contains all data collected during a generate run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time
	SessionID   string

	// Inputs
	Photo PhotoInfo
	Frame FrameInfo

	// What was composed
	Composition CompositionInfo

	// Image output details
	Output OutputInfo

	// Timing results
	Timing TimingInfo
}

// PhotoInfo describes the user photo.
type PhotoInfo struct {
	Path    string
	Format  string
	Width   int
	Height  int
	Resized bool
}

// FrameInfo describes how the frame was loaded.
type FrameInfo struct {
	Location string
	Status   string
	Attempts int
}

// CompositionInfo contains the adjustments and the fitted label.
type CompositionInfo struct {
	Name         string
	FontSize     float64
	NameOverflow bool
	Zoom         float64
	OffsetX      float64
	OffsetY      float64
	Restored     bool
}

// OutputInfo contains information about the exported image.
type OutputInfo struct {
	Path         string
	Format       string
	FileSize     int64
	CanvasWidth  float64 // logical
	CanvasHeight float64 // logical
	Scale        float64
	PixelWidth   int
	PixelHeight  int
}

// TimingInfo contains timing measurements.
type TimingInfo struct {
	TotalDurationMs int
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithSession sets the compositor session id.
func (b *Builder) WithSession(id string) *Builder {
	b.summary.SessionID = id
	return b
}

// WithPhoto sets photo information.
func (b *Builder) WithPhoto(photo PhotoInfo) *Builder {
	b.summary.Photo = photo
	return b
}

// WithFrame sets frame information.
func (b *Builder) WithFrame(location, status string, attempts int) *Builder {
	b.summary.Frame = FrameInfo{
		Location: location,
		Status:   status,
		Attempts: attempts,
	}
	return b
}

// WithComposition sets the composed adjustments.
func (b *Builder) WithComposition(c CompositionInfo) *Builder {
	b.summary.Composition = c
	return b
}

// WithOutput sets image output information.
func (b *Builder) WithOutput(output OutputInfo) *Builder {
	b.summary.Output = output
	return b
}

// WithDuration sets the total run time.
func (b *Builder) WithDuration(d time.Duration) *Builder {
	b.summary.Timing = TimingInfo{
		TotalDurationMs: int(d / time.Millisecond),
	}
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
