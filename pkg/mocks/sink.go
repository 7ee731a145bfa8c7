package mocks

import (
	"image"
	"sync"

	"github.com/user/dpframe/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	LayoutJSON []byte
	StateJSON  []byte
	Renders    map[string]image.Image
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled: enabled,
		Renders: make(map[string]image.Image),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveLayoutJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LayoutJSON = data
	return nil
}

func (m *DebugSink) SaveStateJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StateJSON = data
	return nil
}

func (m *DebugSink) SaveRender(label string, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Renders[label] = img
	return nil
}

// Render returns the image saved under label.
func (m *DebugSink) Render(label string) (image.Image, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	img, ok := m.Renders[label]
	return img, ok
}

var _ ports.DebugSink = (*DebugSink)(nil)
