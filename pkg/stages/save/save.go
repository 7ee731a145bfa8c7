// Package save implements the download stage: it names the exported image
// and writes it through the file system port.
package save

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/user/dpframe/pkg/pipeline"
	"github.com/user/dpframe/pkg/ports"
)

// DefaultSuffix is appended to generated file names.
const DefaultSuffix = "dp"

// ErrNoData is returned when there is nothing to write.
var ErrNoData = errors.New("save: no image data")

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lower-cases name and collapses every run of other characters into
// a single dash, trimming dashes at both ends.
func Slug(name string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

// FileName returns "<slug>-<suffix><ext>", or "<suffix>-<unix ms><ext>"
// when the name has no usable characters.
func FileName(name, suffix string, format ports.ImageFormat, now time.Time) string {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	if slug := Slug(name); slug != "" {
		return fmt.Sprintf("%s-%s%s", slug, suffix, format.Extension())
	}
	return fmt.Sprintf("%s-%d%s", suffix, now.UnixMilli(), format.Extension())
}

// Stage writes exported images.
type Stage struct {
	fs     ports.FileSystem
	logger ports.Logger
	suffix string
	now    func() time.Time
}

// NewStage creates a save stage. An empty suffix selects DefaultSuffix.
func NewStage(fs ports.FileSystem, logger ports.Logger, suffix string) *Stage {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	return &Stage{
		fs:     fs,
		logger: logger.WithComponent("save"),
		suffix: suffix,
		now:    time.Now,
	}
}

// Execute writes input.Data to input.Path, or to a generated name in
// input.Dir when no path is given.
func (s *Stage) Execute(ctx context.Context, input pipeline.SaveInput) (pipeline.SaveResult, error) {
	if len(input.Data) == 0 {
		return pipeline.SaveResult{}, ErrNoData
	}
	if err := ctx.Err(); err != nil {
		return pipeline.SaveResult{}, err
	}

	path := input.Path
	if path == "" {
		path = filepath.Join(input.Dir, FileName(input.Name, s.suffix, input.Format, s.now()))
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := s.fs.MkdirAll(dir); err != nil {
			return pipeline.SaveResult{}, fmt.Errorf("save: %w", err)
		}
	}
	if err := s.fs.WriteFile(path, input.Data); err != nil {
		return pipeline.SaveResult{}, fmt.Errorf("save: %w", err)
	}

	s.logger.Debug("Wrote %d bytes to %s", len(input.Data), path)
	return pipeline.SaveResult{Path: path, Bytes: len(input.Data)}, nil
}
