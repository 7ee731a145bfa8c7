package dpframe

import (
	"image/color"
	"testing"
	"time"

	"github.com/user/dpframe/pkg/ports"
)

func TestConfigBuilder_Defaults(t *testing.T) {
	cfg := NewConfigBuilder().Build()

	if cfg.Width != 1080 || cfg.Height != 1080 || cfg.Scale != 1 {
		t.Errorf("unexpected surface %vx%v@%v", cfg.Width, cfg.Height, cfg.Scale)
	}
	if cfg.Format != ports.FormatPNG {
		t.Errorf("expected PNG, got %v", cfg.Format)
	}
	if cfg.FrameAttempts != 3 || cfg.FrameRetryDelay != time.Second {
		t.Errorf("unexpected retry %d/%v", cfg.FrameAttempts, cfg.FrameRetryDelay)
	}
	if cfg.Name != nil || cfg.Zoom != nil {
		t.Error("adjustments should be unset by default")
	}
}

func TestConfigBuilder_Portrait(t *testing.T) {
	cfg := NewPortraitConfigBuilder().Build()

	if cfg.Height != 1350 {
		t.Errorf("expected height 1350, got %v", cfg.Height)
	}
	// The photo center stays 345.6px from the top.
	if got := cfg.Template.PhotoCenterY * cfg.Height; got < 345.5 || got > 345.7 {
		t.Errorf("expected photo center near 345.6, got %v", got)
	}
}

func TestConfigBuilder_Constraints(t *testing.T) {
	cfg := NewConfigBuilder().
		WithScale(9).
		WithFrameRetry(0, -time.Second).
		WithQuality(3).
		WithBackgroundColor(nil).
		Build()

	if cfg.Scale != 4 {
		t.Errorf("expected scale clamped to 4, got %v", cfg.Scale)
	}
	if cfg.FrameAttempts != 1 || cfg.FrameRetryDelay != 0 {
		t.Errorf("unexpected retry %d/%v", cfg.FrameAttempts, cfg.FrameRetryDelay)
	}
	if cfg.Quality != 1 {
		t.Errorf("expected quality 1, got %v", cfg.Quality)
	}
	if cfg.Background != color.White {
		t.Errorf("expected white background, got %v", cfg.Background)
	}
}

func TestConfigBuilder_ToOrchestratorConfig(t *testing.T) {
	cfg := NewConfigBuilder().
		WithName("Ada").
		WithZoom(1.5).
		WithOffsetY(-12).
		WithQualityPreset(QualityHigh).
		WithFormat(ports.FormatJPEG).
		WithBackgroundColor(color.RGBA{R: 10, G: 20, B: 30, A: 255}).
		WithFrameRetry(5, 250*time.Millisecond).
		WithRenderThrottle(50 * time.Millisecond).
		WithState(false, true).
		Build()

	oc := cfg.ToOrchestratorConfig("me.jpg", "", "out")

	if oc.PhotoPath != "me.jpg" || oc.OutputDir != "out" || oc.OutputPath != "" {
		t.Errorf("unexpected paths %+v", oc)
	}
	if oc.Name == nil || *oc.Name != "Ada" || *oc.Zoom != 1.5 || *oc.OffsetY != -12 || oc.OffsetX != nil {
		t.Error("adjustments not carried over")
	}
	if oc.Quality != 0.95 || oc.Format != ports.FormatJPEG {
		t.Errorf("unexpected export settings %v %v", oc.Quality, oc.Format)
	}
	if oc.Background != [4]uint8{10, 20, 30, 255} {
		t.Errorf("unexpected background %v", oc.Background)
	}
	if oc.FrameAttempts != 5 || oc.FrameRetryDelayMs != 250 || oc.RenderThrottleMs != 50 {
		t.Errorf("unexpected timing %d %d %d", oc.FrameAttempts, oc.FrameRetryDelayMs, oc.RenderThrottleMs)
	}
	if oc.RestoreState || !oc.SaveState {
		t.Error("state flags not carried over")
	}
}
