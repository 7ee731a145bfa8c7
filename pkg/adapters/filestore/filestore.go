// Package filestore persists the adjustment record as a JSON file.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/user/dpframe/pkg/ports"
)

// DefaultKey is the file name of the stored record.
const DefaultKey = "dpframe_last_state.json"

// Store keeps one record at dir/key.
type Store struct {
	path string
	fs   ports.FileSystem
}

// New creates a store. An empty key selects DefaultKey.
func New(dir, key string, fs ports.FileSystem) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{path: filepath.Join(dir, key), fs: fs}
}

// Path returns the record location.
func (s *Store) Path() string { return s.path }

func (s *Store) Load(ctx context.Context) (ports.AdjustmentRecord, bool, error) {
	var rec ports.AdjustmentRecord
	if err := ctx.Err(); err != nil {
		return rec, false, err
	}

	exists, err := s.fs.Exists(s.path)
	if err != nil {
		return rec, false, fmt.Errorf("filestore: %w", err)
	}
	if !exists {
		return rec, false, nil
	}

	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		return rec, false, fmt.Errorf("filestore: %w", err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return ports.AdjustmentRecord{}, false, fmt.Errorf("filestore: parsing %s: %w", s.path, err)
	}
	return rec, true, nil
}

func (s *Store) Save(ctx context.Context, rec ports.AdjustmentRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("filestore: %w", err)
	}
	if err := s.fs.MkdirAll(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("filestore: %w", err)
	}
	if err := s.fs.WriteFile(s.path, data); err != nil {
		return fmt.Errorf("filestore: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	exists, err := s.fs.Exists(s.path)
	if err != nil {
		return fmt.Errorf("filestore: %w", err)
	}
	if !exists {
		return nil
	}
	if err := s.fs.Remove(s.path); err != nil {
		return fmt.Errorf("filestore: %w", err)
	}
	return nil
}

var _ ports.StateStore = (*Store)(nil)
