package upload

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/user/dpframe/pkg/adapters/ggrenderer"
	"github.com/user/dpframe/pkg/adapters/logger"
	"github.com/user/dpframe/pkg/mocks"
	"github.com/user/dpframe/pkg/pipeline"
	"github.com/user/dpframe/pkg/ports"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil); err != nil {
		t.Fatalf("jpeg encode: %v", err)
	}
	return buf.Bytes()
}

func newStage(fs *mocks.FileSystem, opts Options) *Stage {
	return NewStage(fs, ggrenderer.New(), logger.NewNoop(), opts)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    string
		wantErr bool
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, FormatJPEG, false},
		{"png", []byte("\x89PNG\r\n\x1a\n...."), FormatPNG, false},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), FormatWebP, false},
		{"gif", []byte("GIF89a......"), "", true},
		{"short", []byte{0xFF}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.data)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedType) {
					t.Errorf("expected ErrUnsupportedType, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("expected %q, got %q (%v)", tt.want, got, err)
			}
		})
	}
}

func TestStage_ExecuteData(t *testing.T) {
	stage := newStage(mocks.NewFileSystem(), Options{})

	result, err := stage.Execute(context.Background(), pipeline.UploadInput{Data: encodePNG(t, 40, 30)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Format != FormatPNG || result.Width != 40 || result.Height != 30 {
		t.Errorf("unexpected result %+v", result)
	}
	if result.Resized {
		t.Error("expected small photo to keep its size")
	}
}

func TestStage_ExecutePath(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.WriteFile("/photos/me.jpg", encodeJPEG(t, 16, 16))
	stage := newStage(fs, Options{})

	result, err := stage.Execute(context.Background(), pipeline.UploadInput{Path: "/photos/me.jpg"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Format != FormatJPEG {
		t.Errorf("expected jpeg, got %q", result.Format)
	}
}

func TestStage_Errors(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.WriteFile("/big.png", make([]byte, 2048))
	stage := newStage(fs, Options{MaxBytes: 1024})

	tests := []struct {
		name  string
		input pipeline.UploadInput
		want  error
	}{
		{"empty data", pipeline.UploadInput{Data: []byte{}}, ErrEmptyFile},
		{"no input", pipeline.UploadInput{}, ErrNoInput},
		{"data too large", pipeline.UploadInput{Data: make([]byte, 1025)}, ErrFileTooLarge},
		{"file too large", pipeline.UploadInput{Path: "/big.png"}, ErrFileTooLarge},
		{"unsupported", pipeline.UploadInput{Data: []byte("GIF89a......")}, ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := stage.Execute(context.Background(), tt.input)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestStage_DecodeError(t *testing.T) {
	stage := newStage(mocks.NewFileSystem(), Options{})
	corrupt := append([]byte("\x89PNG\r\n\x1a\n"), []byte("not really a png")...)

	_, err := stage.Execute(context.Background(), pipeline.UploadInput{Data: corrupt})

	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, got %v", err)
	}
	if de.Format != FormatPNG {
		t.Errorf("expected png format in error, got %q", de.Format)
	}
}

func TestStage_RejectsHugeDimensionsBeforeDecoding(t *testing.T) {
	r := &mocks.Renderer{DecodeImageFunc: func(data []byte, format ports.ImageFormat) (image.Image, error) {
		t.Error("decode must not run for an oversized header")
		return nil, errors.New("unexpected decode")
	}}
	stage := NewStage(mocks.NewFileSystem(), r, logger.NewNoop(), Options{MaxPixels: 1_000_000})

	// Compresses to a few kilobytes but declares two megapixels.
	data := encodePNG(t, 2000, 1000)
	if len(data) > DefaultMaxBytes {
		t.Fatalf("test image unexpectedly large: %d bytes", len(data))
	}

	_, err := stage.Execute(context.Background(), pipeline.UploadInput{Data: data})
	if !errors.Is(err, ErrTooManyPixels) {
		t.Errorf("expected ErrTooManyPixels, got %v", err)
	}
}

func TestStage_DownscalesLargePhotos(t *testing.T) {
	stage := newStage(mocks.NewFileSystem(), Options{MaxDimension: 50})

	result, err := stage.Execute(context.Background(), pipeline.UploadInput{Data: encodePNG(t, 200, 100)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Resized {
		t.Fatal("expected the photo to be downscaled")
	}
	b := result.Image.Bounds()
	if b.Dx() != 50 || b.Dy() != 25 {
		t.Errorf("expected 50x25, got %dx%d", b.Dx(), b.Dy())
	}
	if result.Width != 200 || result.Height != 100 {
		t.Errorf("expected original dimensions reported, got %dx%d", result.Width, result.Height)
	}
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h, max  int
		wantW      int
		wantH      int
		wantResize bool
	}{
		{100, 100, 200, 100, 100, false},
		{400, 200, 100, 100, 50, true},
		{200, 400, 100, 50, 100, true},
		{5000, 1, 100, 100, 1, true},
	}
	for _, tt := range tests {
		w, h, ok := FitWithin(tt.w, tt.h, tt.max)
		if w != tt.wantW || h != tt.wantH || ok != tt.wantResize {
			t.Errorf("FitWithin(%d,%d,%d) = %d,%d,%v", tt.w, tt.h, tt.max, w, h, ok)
		}
	}
}
