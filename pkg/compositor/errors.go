package compositor

import (
	"errors"
	"fmt"
)

var (
	// ErrFrameLoadInProgress is returned by LoadFrame while another load runs.
	ErrFrameLoadInProgress = errors.New("compositor: frame load already in progress")

	// ErrExportInProgress is returned by Export while another export runs.
	ErrExportInProgress = errors.New("compositor: export already in progress")

	// ErrFrameAspect marks a frame whose aspect ratio does not match the surface.
	ErrFrameAspect = errors.New("compositor: frame aspect ratio does not match canvas")

	// ErrNoFrameSource is returned by LoadFrame when no source is configured.
	ErrNoFrameSource = errors.New("compositor: no frame source configured")

	// ErrEmptyExport is wrapped by ExportError when the encoder yields no bytes.
	ErrEmptyExport = errors.New("compositor: encoder returned no data")
)

// FrameLoadError reports a failed frame load.
// Terminal is set once the attempt budget is exhausted or the failure
// cannot be fixed by retrying.
type FrameLoadError struct {
	Location string
	Attempts int
	Terminal bool
	Err      error
}

func (e *FrameLoadError) Error() string {
	return fmt.Sprintf("frame load failed after %d attempt(s) from %s: %v", e.Attempts, e.Location, e.Err)
}

func (e *FrameLoadError) Unwrap() error { return e.Err }

// ExportError reports a failed export. State is left untouched so the
// export can be retried.
type ExportError struct {
	Format string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Format, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }
