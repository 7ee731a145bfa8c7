package ports

import "context"

// AdjustmentRecord is the persisted snapshot of user adjustments.
// Bitmaps are never persisted.
type AdjustmentRecord struct {
	Name      string  `json:"name"`
	Zoom      float64 `json:"zoom"`
	PosX      float64 `json:"posX"`
	PosY      float64 `json:"posY"`
	Timestamp int64   `json:"timestamp"`
}

// StateStore persists the adjustment record between sessions.
type StateStore interface {
	// Load returns the stored record. ok is false when nothing is stored.
	Load(ctx context.Context) (rec AdjustmentRecord, ok bool, err error)

	// Save replaces the stored record.
	Save(ctx context.Context, rec AdjustmentRecord) error

	// Clear removes the stored record.
	Clear(ctx context.Context) error
}
