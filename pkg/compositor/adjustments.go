package compositor

import (
	"time"

	"github.com/user/dpframe/pkg/ports"
)

// Adjustments is the user-editable part of the state.
type Adjustments struct {
	Name    string  `json:"name" yaml:"name"`
	Zoom    float64 `json:"zoom" yaml:"zoom"`
	OffsetX float64 `json:"offsetX" yaml:"offset_x"`
	OffsetY float64 `json:"offsetY" yaml:"offset_y"`
}

// DefaultAdjustments returns the state of a fresh session.
func DefaultAdjustments() Adjustments {
	return Adjustments{Zoom: DefaultZoom}
}

// FromRecord converts a persisted record. A zero zoom means the record
// predates zoom support and maps to DefaultZoom.
func FromRecord(rec ports.AdjustmentRecord) Adjustments {
	zoom := rec.Zoom
	if zoom == 0 {
		zoom = DefaultZoom
	}
	return Adjustments{Name: rec.Name, Zoom: zoom, OffsetX: rec.PosX, OffsetY: rec.PosY}
}

// Record converts a to its persisted form stamped with at.
func (a Adjustments) Record(at time.Time) ports.AdjustmentRecord {
	return ports.AdjustmentRecord{
		Name:      a.Name,
		Zoom:      a.Zoom,
		PosX:      a.OffsetX,
		PosY:      a.OffsetY,
		Timestamp: at.UnixMilli(),
	}
}

// Adjustments snapshots name, zoom and offset.
func (c *Compositor) Adjustments() Adjustments {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Adjustments{Name: c.name, Zoom: c.zoom, OffsetX: c.offsetX, OffsetY: c.offsetY}
}

// ApplyAdjustments applies a through the same sanitizing rules as the
// individual setters, with a single render.
func (c *Compositor) ApplyAdjustments(a Adjustments) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = SanitizeName(a.Name)
	c.zoom = ClampZoom(a.Zoom)
	c.offsetX = ClampOffset(a.OffsetX)
	c.offsetY = ClampOffset(a.OffsetY)
	c.changedLocked()
}
