// Package nullsink provides a no-op debug sink implementation.
package nullsink

import (
	"image"

	"github.com/user/dpframe/pkg/ports"
)

// Sink discards all debug output.
type Sink struct{}

// New creates a new NullSink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false as this sink discards all output.
func (s *Sink) Enabled() bool {
	return false
}

func (s *Sink) SaveLayoutJSON(data []byte) error { return nil }

func (s *Sink) SaveStateJSON(data []byte) error { return nil }

func (s *Sink) SaveRender(label string, img image.Image) error { return nil }

var _ ports.DebugSink = (*Sink)(nil)
