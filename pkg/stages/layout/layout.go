// Package layout implements the layout calculation stage.
package layout

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/user/dpframe/pkg/pipeline"
)

var (
	// ErrInvalidCanvas is returned for non-positive canvas dimensions.
	ErrInvalidCanvas = errors.New("layout: canvas dimensions must be positive")

	// ErrInvalidRadius is returned when the photo radius is not positive.
	ErrInvalidRadius = errors.New("layout: photo radius must be positive")

	// ErrInvalidFontRange is returned when min > max or min <= 0.
	ErrInvalidFontRange = errors.New("layout: invalid font size range")
)

// Stage resolves a template against a canvas size.
// This is a pure function with no external dependencies.
type Stage struct{}

// NewStage creates a new layout stage.
func NewStage() *Stage {
	return &Stage{}
}

// Execute computes and validates the layout.
func (s *Stage) Execute(ctx context.Context, input pipeline.LayoutInput) (pipeline.Layout, error) {
	l := ComputeLayout(input)
	if err := Validate(l); err != nil {
		return pipeline.Layout{}, err
	}
	return l, nil
}

// ComputeLayout converts template fractions into logical coordinates.
// Font sizes and padding are already logical and pass through unchanged.
func ComputeLayout(input pipeline.LayoutInput) pipeline.Layout {
	w, h, t := input.Width, input.Height, input.Template

	return pipeline.Layout{
		Width:  w,
		Height: h,
		PhotoCenter: pipeline.Point{
			X: w * t.PhotoCenterX,
			Y: h * t.PhotoCenterY,
		},
		PhotoRadius: w * t.PhotoRadius,
		NameCenter: pipeline.Point{
			X: w * t.NameCenterX,
			Y: h * t.NameCenterY,
		},
		NameMaxWidth: w * t.NameMaxWidth,
		NamePadding:  t.NamePadding,
		FontSize:     t.FontSize,
	}
}

// Validate checks the invariants every render relies on.
func Validate(l pipeline.Layout) error {
	if !positive(l.Width) || !positive(l.Height) {
		return fmt.Errorf("%w: %vx%v", ErrInvalidCanvas, l.Width, l.Height)
	}
	if !positive(l.PhotoRadius) {
		return fmt.Errorf("%w: %v", ErrInvalidRadius, l.PhotoRadius)
	}
	if !positive(l.FontSize.Min) || math.IsNaN(l.FontSize.Max) || l.FontSize.Min > l.FontSize.Max {
		return fmt.Errorf("%w: min=%v max=%v", ErrInvalidFontRange, l.FontSize.Min, l.FontSize.Max)
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
