package layout

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/user/dpframe/pkg/pipeline"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeLayout_DefaultTemplate(t *testing.T) {
	input := pipeline.LayoutInput{
		Width:    1000,
		Height:   1250,
		Template: pipeline.DefaultTemplate(),
	}

	l := ComputeLayout(input)

	if !near(l.PhotoCenter.X, 500) || !near(l.PhotoCenter.Y, 400) {
		t.Errorf("photo center: expected (500,400), got %+v", l.PhotoCenter)
	}
	if !near(l.PhotoRadius, 230) {
		t.Errorf("photo radius: expected 230, got %v", l.PhotoRadius)
	}
	if !near(l.NameCenter.X, 500) || !near(l.NameCenter.Y, 706.25) {
		t.Errorf("name center: expected (500,706.25), got %+v", l.NameCenter)
	}
	if !near(l.NameMaxWidth, 400) {
		t.Errorf("name max width: expected 400, got %v", l.NameMaxWidth)
	}
	if l.FontSize != (pipeline.FontRange{Min: 30, Max: 60}) {
		t.Errorf("font size range: expected 30..60, got %+v", l.FontSize)
	}
}

func TestComputeLayout_ScalesWithCanvas(t *testing.T) {
	small := ComputeLayout(pipeline.LayoutInput{Width: 500, Height: 500, Template: pipeline.DefaultTemplate()})
	large := ComputeLayout(pipeline.LayoutInput{Width: 1000, Height: 1000, Template: pipeline.DefaultTemplate()})

	if !near(large.PhotoRadius, small.PhotoRadius*2) {
		t.Errorf("expected radius to scale with width: %v vs %v", small.PhotoRadius, large.PhotoRadius)
	}
	if !near(large.NameCenter.Y, small.NameCenter.Y*2) {
		t.Errorf("expected name center to scale with height: %v vs %v", small.NameCenter.Y, large.NameCenter.Y)
	}
	// Font bounds are absolute logical sizes.
	if large.FontSize != small.FontSize {
		t.Errorf("expected font range to be size independent: %+v vs %+v", small.FontSize, large.FontSize)
	}
}

func TestLayout_FitWidth(t *testing.T) {
	tpl := pipeline.DefaultTemplate()
	tpl.NamePadding = 10
	l := ComputeLayout(pipeline.LayoutInput{Width: 1000, Height: 1000, Template: tpl})

	if !near(l.FitWidth(), 380) {
		t.Errorf("expected fit width 380, got %v", l.FitWidth())
	}
}

func TestStage_Execute(t *testing.T) {
	stage := NewStage()

	l, err := stage.Execute(context.Background(), pipeline.DefaultLayoutInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Width != 1080 || l.Height != 1080 {
		t.Errorf("expected 1080x1080, got %vx%v", l.Width, l.Height)
	}
}

func TestStage_Execute_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*pipeline.LayoutInput)
		want   error
	}{
		{
			name:   "zero width",
			modify: func(in *pipeline.LayoutInput) { in.Width = 0 },
			want:   ErrInvalidCanvas,
		},
		{
			name:   "zero radius",
			modify: func(in *pipeline.LayoutInput) { in.Template.PhotoRadius = 0 },
			want:   ErrInvalidRadius,
		},
		{
			name:   "negative radius",
			modify: func(in *pipeline.LayoutInput) { in.Template.PhotoRadius = -0.1 },
			want:   ErrInvalidRadius,
		},
		{
			name:   "min above max",
			modify: func(in *pipeline.LayoutInput) { in.Template.FontSize = pipeline.FontRange{Min: 70, Max: 60} },
			want:   ErrInvalidFontRange,
		},
		{
			name:   "zero min",
			modify: func(in *pipeline.LayoutInput) { in.Template.FontSize.Min = 0 },
			want:   ErrInvalidFontRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := pipeline.DefaultLayoutInput()
			tt.modify(&input)

			_, err := NewStage().Execute(context.Background(), input)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestValidate_EqualFontBounds(t *testing.T) {
	input := pipeline.DefaultLayoutInput()
	input.Template.FontSize = pipeline.FontRange{Min: 40, Max: 40}

	if err := Validate(ComputeLayout(input)); err != nil {
		t.Errorf("expected min == max to be valid, got %v", err)
	}
}
