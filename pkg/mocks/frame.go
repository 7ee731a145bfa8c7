package mocks

import (
	"context"
	"sync"

	"github.com/user/dpframe/pkg/ports"
)

// FrameSource is a mock implementation of ports.FrameSource.
type FrameSource struct {
	FetchFunc func(ctx context.Context) ([]byte, error)
	Data      []byte

	mu    sync.Mutex
	calls int
}

func (m *FrameSource) Fetch(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx)
	}
	return m.Data, nil
}

func (m *FrameSource) Location() string { return "mock://frame" }

// Calls returns how many fetch attempts were made.
func (m *FrameSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

var _ ports.FrameSource = (*FrameSource)(nil)
