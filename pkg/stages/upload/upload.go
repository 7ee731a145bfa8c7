// Package upload implements the photo upload stage: size and type checks,
// decoding, and downscaling of oversized photos.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for DecodeConfig
	_ "image/png"
	"math"

	_ "golang.org/x/image/webp"

	"github.com/user/dpframe/pkg/pipeline"
	"github.com/user/dpframe/pkg/ports"
)

const (
	// DefaultMaxBytes is the largest accepted upload.
	DefaultMaxBytes = 5 << 20

	// DefaultMaxDimension caps the longer side of a decoded photo.
	DefaultMaxDimension = 4096

	// DefaultMaxPixels caps the pixel count a photo header may declare.
	DefaultMaxPixels = 40_000_000
)

// Supported format names.
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
	FormatWebP = "webp"
)

var (
	// ErrEmptyFile is returned for zero-length uploads.
	ErrEmptyFile = errors.New("upload: file is empty")

	// ErrFileTooLarge is returned when an upload exceeds the size limit.
	ErrFileTooLarge = errors.New("upload: file too large")

	// ErrUnsupportedType is returned for anything but JPEG, PNG or WebP.
	ErrUnsupportedType = errors.New("upload: unsupported image type")

	// ErrTooManyPixels is returned when the declared dimensions exceed the
	// pixel limit. The photo is rejected before decoding.
	ErrTooManyPixels = errors.New("upload: image dimensions too large")

	// ErrNoInput is returned when neither data nor a path is given.
	ErrNoInput = errors.New("upload: no image data or path")
)

// DecodeError reports an upload that looks like an image but does not decode.
type DecodeError struct {
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("upload: cannot decode %s image: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Options configures the upload stage. Zero values select the defaults.
type Options struct {
	MaxBytes     int64
	MaxDimension int
	MaxPixels    int64
}

// Stage validates and decodes user photos.
type Stage struct {
	fs       ports.FileSystem
	renderer ports.Renderer
	logger   ports.Logger
	opts     Options
}

// NewStage creates a new upload stage.
func NewStage(fs ports.FileSystem, renderer ports.Renderer, logger ports.Logger, opts Options) *Stage {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = DefaultMaxDimension
	}
	if opts.MaxPixels <= 0 {
		opts.MaxPixels = DefaultMaxPixels
	}
	return &Stage{
		fs:       fs,
		renderer: renderer,
		logger:   logger.WithComponent("upload"),
		opts:     opts,
	}
}

// Execute reads, validates and decodes the photo. On any error nothing is
// returned for the caller to commit.
func (s *Stage) Execute(ctx context.Context, input pipeline.UploadInput) (pipeline.UploadResult, error) {
	data, err := s.read(input)
	if err != nil {
		return pipeline.UploadResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return pipeline.UploadResult{}, err
	}

	format, err := DetectFormat(data)
	if err != nil {
		return pipeline.UploadResult{}, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return pipeline.UploadResult{}, &DecodeError{Format: format, Err: err}
	}
	if px := int64(cfg.Width) * int64(cfg.Height); px > s.opts.MaxPixels {
		return pipeline.UploadResult{}, fmt.Errorf("%w: %dx%d, limit %d pixels", ErrTooManyPixels, cfg.Width, cfg.Height, s.opts.MaxPixels)
	}

	img, err := s.renderer.DecodeImage(data, ports.FormatAuto)
	if err != nil {
		return pipeline.UploadResult{}, &DecodeError{Format: format, Err: err}
	}
	b := img.Bounds()
	if b.Empty() {
		return pipeline.UploadResult{}, &DecodeError{Format: format, Err: errors.New("image has no pixels")}
	}

	result := pipeline.UploadResult{
		Image:  img,
		Format: format,
		Width:  b.Dx(),
		Height: b.Dy(),
	}

	if w, h, ok := FitWithin(b.Dx(), b.Dy(), s.opts.MaxDimension); ok {
		s.logger.Debug("Downscaling photo from %dx%d to %dx%d", b.Dx(), b.Dy(), w, h)
		result.Image = s.renderer.ResizeImage(img, w, h)
		result.Resized = true
	}

	s.logger.Debug("Photo accepted: %s %dx%d, %d bytes", format, result.Width, result.Height, len(data))
	return result, nil
}

func (s *Stage) read(input pipeline.UploadInput) ([]byte, error) {
	if input.Data != nil {
		return s.check(input.Data)
	}
	if input.Path == "" {
		return nil, ErrNoInput
	}

	size, err := s.fs.Size(input.Path)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	if size > s.opts.MaxBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, input.Path, size, s.opts.MaxBytes)
	}

	data, err := s.fs.ReadFile(input.Path)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	return s.check(data)
}

func (s *Stage) check(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if int64(len(data)) > s.opts.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, len(data), s.opts.MaxBytes)
	}
	return data, nil
}

// DetectFormat identifies JPEG, PNG and WebP by their magic numbers.
func DetectFormat(data []byte) (string, error) {
	n := len(data)
	switch {
	case n >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return FormatJPEG, nil
	case n >= 8 && string(data[:8]) == "\x89PNG\r\n\x1a\n":
		return FormatPNG, nil
	case n >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return FormatWebP, nil
	}
	return "", ErrUnsupportedType
}

// FitWithin scales w x h down so the longer side is at most max,
// preserving the aspect ratio. ok is false when no scaling is needed.
func FitWithin(w, h, max int) (int, int, bool) {
	if w <= max && h <= max {
		return w, h, false
	}
	ratio := float64(max) / float64(w)
	if h > w {
		ratio = float64(max) / float64(h)
	}
	nw := int(math.Max(1, math.Round(float64(w)*ratio)))
	nh := int(math.Max(1, math.Round(float64(h)*ratio)))
	return nw, nh, true
}
