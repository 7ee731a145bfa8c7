package pipeline

import (
	"image"

	"github.com/user/dpframe/pkg/ports"
)

// =============================================================================
// Common Types
// =============================================================================

// Point is a position in logical pixels.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// FontRange bounds the name font size in logical pixels.
type FontRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// =============================================================================
// Layout Stage Types
// =============================================================================

// Template describes where the photo circle and name label sit, as
// fractions of the canvas so one template serves every surface size.
type Template struct {
	PhotoCenterX float64   `yaml:"photo_center_x"` // fraction of width
	PhotoCenterY float64   `yaml:"photo_center_y"` // fraction of height
	PhotoRadius  float64   `yaml:"photo_radius"`   // fraction of width
	NameCenterX  float64   `yaml:"name_center_x"`  // fraction of width
	NameCenterY  float64   `yaml:"name_center_y"`  // fraction of height
	NameMaxWidth float64   `yaml:"name_max_width"` // fraction of width
	NamePadding  float64   `yaml:"name_padding"`   // logical pixels on each side
	FontSize     FontRange `yaml:"font_size"`      // logical pixels
}

// DefaultTemplate returns the stock frame template.
func DefaultTemplate() Template {
	return Template{
		PhotoCenterX: 0.5,
		PhotoCenterY: 0.32,
		PhotoRadius:  0.23,
		NameCenterX:  0.5,
		NameCenterY:  0.565,
		NameMaxWidth: 0.4,
		NamePadding:  0,
		FontSize:     FontRange{Min: 30, Max: 60},
	}
}

// LayoutInput contains parameters for layout calculation.
type LayoutInput struct {
	Width    float64 // logical canvas width
	Height   float64 // logical canvas height
	Template Template
}

// DefaultLayoutInput returns LayoutInput with default values.
func DefaultLayoutInput() LayoutInput {
	return LayoutInput{
		Width:    1080,
		Height:   1080,
		Template: DefaultTemplate(),
	}
}

// Layout is the resolved, immutable geometry of one deployment.
// All values are logical pixels.
type Layout struct {
	Width        float64   `json:"width"`
	Height       float64   `json:"height"`
	PhotoCenter  Point     `json:"photoCenter"`
	PhotoRadius  float64   `json:"photoRadius"`
	NameCenter   Point     `json:"nameCenter"`
	NameMaxWidth float64   `json:"nameMaxWidth"`
	NamePadding  float64   `json:"namePadding"`
	FontSize     FontRange `json:"fontSize"`
}

// FitWidth is the width the name must fit into.
func (l Layout) FitWidth() float64 {
	return l.NameMaxWidth - 2*l.NamePadding
}

// =============================================================================
// Upload Stage Types
// =============================================================================

// UploadInput identifies a user photo. Data wins over Path when both are set.
type UploadInput struct {
	Path string
	Data []byte
}

// UploadResult is a decoded, validated user photo.
type UploadResult struct {
	Image   image.Image
	Format  string // "jpeg", "png" or "webp"
	Width   int    // decoded width before any downscale
	Height  int    // decoded height before any downscale
	Resized bool
}

// =============================================================================
// Save Stage Types
// =============================================================================

// SaveInput describes an exported image to persist.
type SaveInput struct {
	Data   []byte
	Format ports.ImageFormat
	Name   string // user name used to derive the file name
	Dir    string // target directory when Path is empty
	Path   string // explicit output path
}

// SaveResult reports where the image was written.
type SaveResult struct {
	Path  string
	Bytes int
}

// =============================================================================
// Batch Stage Types
// =============================================================================

// BatchJob is one image of a batch run.
type BatchJob struct {
	Name      string
	PhotoPath string // empty uses BatchInput.Photo
}

// BatchInput describes many images sharing one layout and frame.
type BatchInput struct {
	Layout    Layout
	Jobs      []BatchJob
	Photo     image.Image // shared photo for jobs without PhotoPath
	Zoom      float64
	OffsetX   float64
	OffsetY   float64
	Format    ports.ImageFormat
	Quality   float64
	OutputDir string
}

// BatchItem reports the outcome of one job.
type BatchItem struct {
	Index    int
	Name     string
	Path     string
	Bytes    int
	FontSize float64
	Overflow bool
	Err      error
}

// BatchResult lists items in job order.
type BatchResult struct {
	Items  []BatchItem
	Failed int
}
