package ports

import (
	"image"
)

// DebugSink abstracts debug output for intermediate results.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveLayoutJSON saves the resolved layout geometry as JSON.
	SaveLayoutJSON(data []byte) error

	// SaveStateJSON saves a snapshot of the composition adjustments.
	SaveStateJSON(data []byte) error

	// SaveRender saves a rendered surface under a label such as "preview".
	SaveRender(label string, img image.Image) error
}
