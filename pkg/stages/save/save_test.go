package save

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/dpframe/pkg/adapters/logger"
	"github.com/user/dpframe/pkg/mocks"
	"github.com/user/dpframe/pkg/pipeline"
	"github.com/user/dpframe/pkg/ports"
)

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Bob":                 "bob",
		"Mary Jane":           "mary-jane",
		"  O'Neil -- Smith! ": "o-neil-smith",
		"Ünïcode":             "n-code",
		"!!!":                 "",
		"":                    "",
	}
	for in, want := range tests {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFileName(t *testing.T) {
	now := time.UnixMilli(1735689600000)

	tests := []struct {
		name   string
		suffix string
		format ports.ImageFormat
		want   string
	}{
		{"Mary Jane", "praise-night", ports.FormatPNG, "mary-jane-praise-night.png"},
		{"Mary Jane", "", ports.FormatJPEG, "mary-jane-dp.jpg"},
		{"", "praise-night", ports.FormatPNG, "praise-night-1735689600000.png"},
		{"<>", "", ports.FormatPNG, "dp-1735689600000.png"},
	}
	for _, tt := range tests {
		if got := FileName(tt.name, tt.suffix, tt.format, now); got != tt.want {
			t.Errorf("FileName(%q, %q) = %q, want %q", tt.name, tt.suffix, got, tt.want)
		}
	}
}

func TestStage_GeneratedName(t *testing.T) {
	fs := mocks.NewFileSystem()
	stage := NewStage(fs, logger.NewNoop(), "")

	result, err := stage.Execute(context.Background(), pipeline.SaveInput{
		Data:   []byte("png"),
		Format: ports.FormatPNG,
		Name:   "Nia Long",
		Dir:    "out",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := filepath.Join("out", "nia-long-dp.png")
	if result.Path != want || result.Bytes != 3 {
		t.Errorf("unexpected result %+v", result)
	}
	if _, ok := fs.GetFile(want); !ok {
		t.Errorf("expected file at %s", want)
	}
}

func TestStage_ExplicitPath(t *testing.T) {
	fs := mocks.NewFileSystem()
	stage := NewStage(fs, logger.NewNoop(), "")

	result, err := stage.Execute(context.Background(), pipeline.SaveInput{
		Data: []byte("jpg"),
		Name: "ignored",
		Path: "custom.jpg",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Path != "custom.jpg" {
		t.Errorf("expected explicit path, got %q", result.Path)
	}
}

func TestStage_Timestamped(t *testing.T) {
	fs := mocks.NewFileSystem()
	stage := NewStage(fs, logger.NewNoop(), "frame")
	stage.now = func() time.Time { return time.UnixMilli(42) }

	result, err := stage.Execute(context.Background(), pipeline.SaveInput{Data: []byte("x"), Format: ports.FormatPNG})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Path != "frame-42.png" {
		t.Errorf("expected timestamped name, got %q", result.Path)
	}
}

func TestStage_Errors(t *testing.T) {
	fs := mocks.NewFileSystem()
	stage := NewStage(fs, logger.NewNoop(), "")

	if _, err := stage.Execute(context.Background(), pipeline.SaveInput{}); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}

	writeErr := errors.New("disk full")
	fs.WriteFileFunc = func(path string, data []byte) error { return writeErr }
	if _, err := stage.Execute(context.Background(), pipeline.SaveInput{Data: []byte("x"), Path: "a.png"}); !errors.Is(err, writeErr) {
		t.Errorf("expected write error, got %v", err)
	}
}
