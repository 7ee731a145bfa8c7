// Package config provides configuration loading and management.
package config

import (
	"image/color"
	"os"
	"strings"

	"github.com/user/dpframe/pkg/orchestrator"
	"github.com/user/dpframe/pkg/pipeline"
	"github.com/user/dpframe/pkg/ports"
	"gopkg.in/yaml.v3"
)

// Config represents the full configuration for dpframe.
type Config struct {
	// Input
	Photo string `yaml:"photo"`
	Frame string `yaml:"frame"` // path or http(s) URL

	// Adjustments. Nil keeps the restored or default value.
	Name    *string  `yaml:"name"`
	Zoom    *float64 `yaml:"zoom"`
	OffsetX *float64 `yaml:"offset_x"`
	OffsetY *float64 `yaml:"offset_y"`

	// Surface
	Width      float64           `yaml:"width"`
	Height     float64           `yaml:"height"`
	Scale      float64           `yaml:"scale"`
	Background string            `yaml:"background"`
	Template   pipeline.Template `yaml:"template"`

	// Frame loading
	FrameAttempts     int `yaml:"frame_attempts"`
	FrameRetryDelayMs int `yaml:"frame_retry_delay_ms"`

	// Upload limits
	MaxUploadMB  int `yaml:"max_upload_mb"`
	MaxDimension int `yaml:"max_dimension"`

	// Output
	Output          string  `yaml:"output"`
	OutputDir       string  `yaml:"output_dir"`
	Suffix          string  `yaml:"suffix"`
	Format          string  `yaml:"format"`
	Quality         float64 `yaml:"quality"`
	AllowIncomplete bool    `yaml:"allow_incomplete"`

	// Persistence
	StateDir     string `yaml:"state_dir"`
	StateKey     string `yaml:"state_key"`
	RestoreState bool   `yaml:"restore_state"`
	SaveState    bool   `yaml:"save_state"`

	// Logging
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	oc := orchestrator.DefaultConfig()
	return Config{
		// Surface
		Width:      oc.Width,
		Height:     oc.Height,
		Scale:      oc.Scale,
		Background: "#ffffff",
		Template:   oc.Template,

		// Frame loading
		FrameAttempts:     oc.FrameAttempts,
		FrameRetryDelayMs: oc.FrameRetryDelayMs,

		// Upload limits
		MaxUploadMB:  5,
		MaxDimension: 4096,

		// Output
		OutputDir: oc.OutputDir,
		Suffix:    "dp",
		Format:    "png",
		Quality:   oc.Quality,

		// Persistence
		StateDir:     ".",
		StateKey:     "dpframe_last_state.json",
		RestoreState: oc.RestoreState,
		SaveState:    oc.SaveState,

		// Logging
		LogLevel: "info",

		// Debug
		DebugDir: "./debug",
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// ParseColor parses a #rgb, #rrggbb or #rrggbbaa hex string.
// Malformed input yields white.
func ParseColor(hex string) color.RGBA {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}

	var v [4]uint8
	for i := range v {
		hi, ok1 := hexValue(hex[2*i])
		lo, ok2 := hexValue(hex[2*i+1])
		if !ok1 || !ok2 {
			return color.RGBA{R: 255, G: 255, B: 255, A: 255}
		}
		v[i] = hi<<4 | lo
	}
	return color.RGBA{R: v[0], G: v[1], B: v[2], A: v[3]}
}

func hexValue(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
func (c Config) ToOrchestratorConfig() orchestrator.Config {
	bg := ParseColor(c.Background)
	return orchestrator.Config{
		PhotoPath: c.Photo,

		Name:    c.Name,
		Zoom:    c.Zoom,
		OffsetX: c.OffsetX,
		OffsetY: c.OffsetY,

		Width:      c.Width,
		Height:     c.Height,
		Scale:      c.Scale,
		Template:   c.Template,
		Background: [4]uint8{bg.R, bg.G, bg.B, bg.A},

		FrameAttempts:     c.FrameAttempts,
		FrameRetryDelayMs: c.FrameRetryDelayMs,

		OutputPath:      c.Output,
		OutputDir:       c.OutputDir,
		Format:          ports.ParseImageFormat(c.Format),
		Quality:         c.Quality,
		AllowIncomplete: c.AllowIncomplete,

		RestoreState: c.RestoreState,
		SaveState:    c.SaveState,
	}
}
