package ggrenderer

import (
	"image"
	"image/color"
	"testing"

	"github.com/user/dpframe/pkg/ports"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func isRed(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r > 0xe000 && g < 0x2000 && b < 0x2000
}

func isWhite(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r > 0xf000 && g > 0xf000 && b > 0xf000
}

func TestRenderer_CreateCanvas(t *testing.T) {
	r := New()

	canvas := r.CreateCanvas(100, 80, 1, color.White)
	bounds := canvas.ToImage().Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 80 {
		t.Errorf("expected 100x80, got %dx%d", bounds.Dx(), bounds.Dy())
	}

	w, h := canvas.Size()
	if w != 100 || h != 80 {
		t.Errorf("expected logical 100x80, got %vx%v", w, h)
	}
}

func TestRenderer_CreateCanvas_DevicePixelRatio(t *testing.T) {
	r := New()

	canvas := r.CreateCanvas(100, 50, 2, color.White)
	bounds := canvas.ToImage().Bounds()
	if bounds.Dx() != 200 || bounds.Dy() != 100 {
		t.Errorf("expected 200x100 physical, got %dx%d", bounds.Dx(), bounds.Dy())
	}
	if canvas.Scale() != 2 {
		t.Errorf("expected scale 2, got %v", canvas.Scale())
	}

	// Logical sizes are unaffected by the ratio.
	w, h := canvas.Size()
	if w != 100 || h != 50 {
		t.Errorf("expected logical 100x50, got %vx%v", w, h)
	}
}

func TestRenderer_CreateCanvas_InvalidScale(t *testing.T) {
	r := New()

	canvas := r.CreateCanvas(40, 40, 0, color.White)
	if canvas.Scale() != 1 {
		t.Errorf("expected scale to fall back to 1, got %v", canvas.Scale())
	}
}

func TestRenderer_EncodeDecodeJPEG(t *testing.T) {
	r := New()
	img := solid(50, 50, color.RGBA{R: 255, A: 255})

	data, err := r.EncodeImage(img, ports.FormatJPEG, 80)
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty data")
	}

	decoded, err := r.DecodeImage(data, ports.FormatJPEG)
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}
	bounds := decoded.Bounds()
	if bounds.Dx() != 50 || bounds.Dy() != 50 {
		t.Errorf("expected 50x50, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestRenderer_EncodeDecodePNG_Auto(t *testing.T) {
	r := New()
	img := image.NewRGBA(image.Rect(0, 0, 30, 20))

	data, err := r.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}

	decoded, err := r.DecodeImage(data, ports.FormatAuto)
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}
	bounds := decoded.Bounds()
	if bounds.Dx() != 30 || bounds.Dy() != 20 {
		t.Errorf("expected 30x20, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestRenderer_EncodeUnsupported(t *testing.T) {
	r := New()
	if _, err := r.EncodeImage(image.NewRGBA(image.Rect(0, 0, 1, 1)), ports.FormatAuto, 0); err == nil {
		t.Error("expected error for FormatAuto encode")
	}
}

func TestRenderer_DecodeGarbage(t *testing.T) {
	r := New()
	if _, err := r.DecodeImage([]byte("definitely not an image"), ports.FormatAuto); err == nil {
		t.Error("expected decode error")
	}
}

func TestRenderer_ResizeImage(t *testing.T) {
	r := New()
	resized := r.ResizeImage(image.NewRGBA(image.Rect(0, 0, 100, 100)), 50, 25)

	bounds := resized.Bounds()
	if bounds.Dx() != 50 || bounds.Dy() != 25 {
		t.Errorf("expected 50x25, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestCanvas_DrawImageRect(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(100, 100, 1, color.White)

	canvas.DrawImageRect(solid(10, 10, color.RGBA{R: 255, A: 255}), 20, 20, 40, 40)

	img := canvas.ToImage()
	if !isRed(img.At(40, 40)) {
		t.Error("expected red pixel inside the scaled image")
	}
	if !isWhite(img.At(70, 70)) {
		t.Error("expected white pixel outside the scaled image")
	}
}

func TestCanvas_DrawImageRect_DevicePixelRatio(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(100, 100, 2, color.White)

	canvas.DrawImageRect(solid(10, 10, color.RGBA{R: 255, A: 255}), 50, 50, 50, 50)

	img := canvas.ToImage()
	// Logical (75,75) lands on physical (150,150).
	if !isRed(img.At(150, 150)) {
		t.Error("expected red pixel at scaled physical position")
	}
	if !isWhite(img.At(80, 80)) {
		t.Error("expected white pixel before the scaled origin")
	}
}

func TestCanvas_DrawImageRect_NonZeroOrigin(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(40, 40, 1, color.White)

	src := solid(20, 20, color.RGBA{R: 255, A: 255}).SubImage(image.Rect(10, 10, 20, 20))
	canvas.DrawImageRect(src, 0, 0, 40, 40)

	if !isRed(canvas.ToImage().At(5, 5)) {
		t.Error("expected sub-image to be drawn from its own origin")
	}
}

func TestCanvas_ClipCircle(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(100, 100, 1, color.White)

	canvas.Push()
	canvas.ClipCircle(50, 50, 20)
	canvas.DrawImageRect(solid(4, 4, color.RGBA{R: 255, A: 255}), 0, 0, 100, 100)
	canvas.Pop()

	img := canvas.ToImage()
	if !isRed(img.At(50, 50)) {
		t.Error("expected red at circle center")
	}
	if !isWhite(img.At(5, 5)) {
		t.Error("expected corner to stay white outside the clip")
	}
}

func TestCanvas_PopRestoresClip(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(100, 100, 1, color.White)

	canvas.Push()
	canvas.ClipCircle(50, 50, 10)
	canvas.Pop()

	canvas.DrawImageRect(solid(4, 4, color.RGBA{R: 255, A: 255}), 0, 0, 100, 100)
	if !isRed(canvas.ToImage().At(2, 2)) {
		t.Error("expected clip to be removed after Pop")
	}
}

func TestCanvas_StrokeCircle(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(100, 100, 1, color.White)

	canvas.StrokeCircle(50, 50, 30, color.Black, 4)

	img := canvas.ToImage()
	if isWhite(img.At(80, 50)) {
		t.Error("expected non-white pixel on the circle outline")
	}
	if !isWhite(img.At(50, 50)) {
		t.Error("expected circle interior to stay white")
	}
}

func TestCanvas_MeasureText(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(400, 100, 2, color.White)
	style := ports.TextStyle{FontSize: 40, Weight: ports.WeightBold}

	short, h := canvas.MeasureText("ADA", style)
	long, _ := canvas.MeasureText("ADA LOVELACE", style)
	if short <= 0 || h <= 0 {
		t.Fatalf("expected positive metrics, got %v x %v", short, h)
	}
	if long <= short {
		t.Errorf("expected longer text to be wider: %v <= %v", long, short)
	}

	// Measurement is logical: it must not depend on the pixel ratio.
	other := r.CreateCanvas(400, 100, 1, color.White)
	same, _ := other.MeasureText("ADA", style)
	if same != short {
		t.Errorf("expected ratio-independent width, got %v and %v", same, short)
	}
}

func TestCanvas_DrawText(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(200, 60, 1, color.White)

	canvas.DrawText("HELLO", 100, 30, ports.TextStyle{
		FontSize: 30,
		Weight:   ports.WeightBold,
		Color:    color.Black,
		Align:    ports.AlignCenter,
	})

	img := canvas.ToImage()
	dark := 0
	for x := 60; x < 140; x++ {
		if !isWhite(img.At(x, 30)) {
			dark++
		}
	}
	if dark == 0 {
		t.Error("expected glyph pixels around the anchor")
	}
	if !isWhite(img.At(5, 5)) {
		t.Error("expected corner to stay white")
	}
}
