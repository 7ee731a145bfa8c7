package compositor

import (
	"math"
	"strings"
	"unicode"
)

const (
	MinZoom     = 0.5
	MaxZoom     = 2.0
	DefaultZoom = 1.0

	// MaxOffset bounds each axis of the photo offset in logical pixels.
	MaxOffset = 100.0

	// MaxNameLength is the name cap in runes.
	MaxNameLength = 25
)

// SanitizeName strips control characters and angle brackets, trims
// surrounding whitespace and caps the result at MaxNameLength runes.
func SanitizeName(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '<' || r == '>' || unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	cleaned = strings.TrimSpace(cleaned)

	runes := []rune(cleaned)
	if len(runes) > MaxNameLength {
		runes = runes[:MaxNameLength]
	}
	return string(runes)
}

// ClampZoom maps NaN and infinities to DefaultZoom and clamps the rest.
func ClampZoom(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return DefaultZoom
	}
	return clamp(v, MinZoom, MaxZoom)
}

// ClampOffset maps NaN and infinities to zero and clamps the rest to
// [-MaxOffset, MaxOffset].
func ClampOffset(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return clamp(v, -MaxOffset, MaxOffset)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
