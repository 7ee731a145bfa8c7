package mocks

import (
	"context"
	"sync"

	"github.com/user/dpframe/pkg/ports"
)

// StateStore is an in-memory implementation of ports.StateStore.
type StateStore struct {
	mu     sync.Mutex
	record *ports.AdjustmentRecord

	LoadErr error
	SaveErr error
	Saves   int
}

// NewStateStore creates a store, optionally pre-populated.
func NewStateStore(initial *ports.AdjustmentRecord) *StateStore {
	return &StateStore{record: initial}
}

func (m *StateStore) Load(ctx context.Context) (ports.AdjustmentRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return ports.AdjustmentRecord{}, false, m.LoadErr
	}
	if m.record == nil {
		return ports.AdjustmentRecord{}, false, nil
	}
	return *m.record, true, nil
}

func (m *StateStore) Save(ctx context.Context, rec ports.AdjustmentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Saves++
	m.record = &rec
	return nil
}

func (m *StateStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record = nil
	return nil
}

// Record returns the stored record, if any.
func (m *StateStore) Record() (ports.AdjustmentRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.record == nil {
		return ports.AdjustmentRecord{}, false
	}
	return *m.record, true
}

var _ ports.StateStore = (*StateStore)(nil)
