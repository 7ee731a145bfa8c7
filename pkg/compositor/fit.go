package compositor

import (
	"math"

	"github.com/user/dpframe/pkg/pipeline"
	"github.com/user/dpframe/pkg/ports"
)

// FontStep is the decrement of the greedy text-fit search.
const FontStep = 2.0

// Measurer measures a single line of text.
type Measurer interface {
	MeasureText(text string, style ports.TextStyle) (width, height float64)
}

// Fit is the outcome of fitting a name into the label area.
type Fit struct {
	Text     string  `json:"text"`
	FontSize float64 `json:"fontSize"`
	Width    float64 `json:"width"`
	Overflow bool    `json:"overflow"`
}

// FitFontSize picks the largest size, stepping down from the layout's
// maximum by FontStep, at which text fits the layout's fit width. It
// stops at the minimum and reports Overflow if the text is still too wide.
// text is measured as given; callers upper-case it first.
func FitFontSize(m Measurer, text string, l pipeline.Layout) Fit {
	limit := l.FitWidth()
	style := ports.TextStyle{Weight: ports.WeightBold, FontSize: l.FontSize.Max}

	width, _ := m.MeasureText(text, style)
	for width > limit && style.FontSize > l.FontSize.Min {
		style.FontSize = math.Max(style.FontSize-FontStep, l.FontSize.Min)
		width, _ = m.MeasureText(text, style)
	}

	return Fit{
		Text:     text,
		FontSize: style.FontSize,
		Width:    width,
		Overflow: width > limit,
	}
}
