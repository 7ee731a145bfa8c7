// Package controller maps edits of an adjustment file onto compositor
// setters, the command line counterpart of sliders and text inputs.
package controller

import (
	"context"
	"fmt"
	"image"

	"github.com/user/dpframe/pkg/compositor"
	"github.com/user/dpframe/pkg/pipeline"
	"github.com/user/dpframe/pkg/ports"
	"gopkg.in/yaml.v3"
)

// Target is the part of the compositor the controller drives.
type Target interface {
	SetName(text string)
	SetZoom(v float64)
	SetOffset(x, y float64)
	ResetAdjustments()
	BeginUpload() compositor.Ticket
	CommitUpload(t compositor.Ticket, img image.Image) bool
	Adjustments() compositor.Adjustments
}

// File is the adjustment file. Absent fields leave state unchanged.
//
//	name: Mary Jane
//	zoom: 1.2
//	offset_x: -10
//	offset_y: 25
//	photo: me.jpg
type File struct {
	Name    *string  `yaml:"name"`
	Zoom    *float64 `yaml:"zoom"`
	OffsetX *float64 `yaml:"offset_x"`
	OffsetY *float64 `yaml:"offset_y"`
	Photo   string   `yaml:"photo"`
	Reset   bool     `yaml:"reset"`
}

// Parse decodes an adjustment file.
func Parse(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("controller: parsing adjustments: %w", err)
	}
	return f, nil
}

// Controller applies adjustment files to a Target.
type Controller struct {
	target    Target
	fs        ports.FileSystem
	upload    pipeline.Stage[pipeline.UploadInput, pipeline.UploadResult]
	logger    ports.Logger
	lastPhoto string
}

// New creates a controller. upload may be nil when photos are never
// set through the file.
func New(target Target, fs ports.FileSystem, upload pipeline.Stage[pipeline.UploadInput, pipeline.UploadResult], logger ports.Logger) *Controller {
	return &Controller{
		target: target,
		fs:     fs,
		upload: upload,
		logger: logger.WithComponent("controller"),
	}
}

// ApplyFile reads path and applies it.
func (c *Controller) ApplyFile(ctx context.Context, path string) error {
	data, err := c.fs.ReadFile(path)
	if err != nil {
		return fmt.Errorf("controller: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return err
	}
	return c.Apply(ctx, f)
}

// Apply pushes f through the setters. A photo is only re-uploaded when
// its path changes; a failed upload leaves the previous photo in place.
func (c *Controller) Apply(ctx context.Context, f File) error {
	if f.Reset {
		c.target.ResetAdjustments()
	}
	if f.Name != nil {
		c.target.SetName(*f.Name)
	}
	if f.Zoom != nil {
		c.target.SetZoom(*f.Zoom)
	}
	if f.OffsetX != nil || f.OffsetY != nil {
		cur := c.target.Adjustments()
		x, y := cur.OffsetX, cur.OffsetY
		if f.OffsetX != nil {
			x = *f.OffsetX
		}
		if f.OffsetY != nil {
			y = *f.OffsetY
		}
		c.target.SetOffset(x, y)
	}

	if f.Photo != "" && f.Photo != c.lastPhoto {
		if err := c.SetPhoto(ctx, f.Photo); err != nil {
			return err
		}
	}

	a := c.target.Adjustments()
	c.logger.Debug("Adjustments applied: name=%q zoom=%.2f offset=(%.0f,%.0f)", a.Name, a.Zoom, a.OffsetX, a.OffsetY)
	return nil
}

// SetPhoto uploads path and commits it unless a newer upload started.
func (c *Controller) SetPhoto(ctx context.Context, path string) error {
	if c.upload == nil {
		return fmt.Errorf("controller: no upload stage for %s", path)
	}
	ticket := c.target.BeginUpload()
	result, err := c.upload.Execute(ctx, pipeline.UploadInput{Path: path})
	if err != nil {
		return err
	}
	if c.target.CommitUpload(ticket, result.Image) {
		c.lastPhoto = path
	}
	return nil
}
