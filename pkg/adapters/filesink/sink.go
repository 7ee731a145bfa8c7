// Package filesink writes debug artifacts of a generate run to a directory.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/user/dpframe/pkg/ports"
)

// Sink saves debug output to files under baseDir.
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
}

// New creates a new file sink.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveLayoutJSON writes layout.json.
func (s *Sink) SaveLayoutJSON(data []byte) error {
	return s.write("layout.json", data)
}

// SaveStateJSON writes state.json.
func (s *Sink) SaveStateJSON(data []byte) error {
	return s.write("state.json", data)
}

// SaveRender writes renders/<label>.png.
func (s *Sink) SaveRender(label string, img image.Image) error {
	data, err := s.renderer.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode %s render: %w", label, err)
	}
	return s.write(filepath.Join("renders", safeLabel(label)+".png"), data)
}

func (s *Sink) write(name string, data []byte) error {
	path := filepath.Join(s.baseDir, name)
	if err := s.fs.MkdirAll(filepath.Dir(path)); err != nil {
		return err
	}
	return s.fs.WriteFile(path, data)
}

func safeLabel(label string) string {
	label = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, label)
	if label == "" {
		return "render"
	}
	return label
}

var _ ports.DebugSink = (*Sink)(nil)
