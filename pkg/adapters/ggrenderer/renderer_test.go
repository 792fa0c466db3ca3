package ggrenderer

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/user/basiskit/pkg/ports"
)

func TestRenderer_CreateCanvas(t *testing.T) {
	r := New()

	canvas := r.CreateCanvas(100, 100, color.White)
	if canvas == nil {
		t.Fatal("expected canvas to be created")
	}

	img := canvas.ToImage()
	bounds := img.Bounds()

	if bounds.Dx() != 100 || bounds.Dy() != 100 {
		t.Errorf("expected 100x100, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestRenderer_EncodeImage(t *testing.T) {
	r := New()

	img := image.NewNRGBA(image.Rect(0, 0, 30, 20))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}

	tests := []struct {
		format ports.ImageFormat
		decode func([]byte) (image.Image, error)
	}{
		{ports.FormatPNG, func(b []byte) (image.Image, error) { return png.Decode(bytes.NewReader(b)) }},
		{ports.FormatBMP, func(b []byte) (image.Image, error) { return bmp.Decode(bytes.NewReader(b)) }},
		{ports.FormatTIFF, func(b []byte) (image.Image, error) { return tiff.Decode(bytes.NewReader(b)) }},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			data, err := r.EncodeImage(img, tt.format)
			if err != nil {
				t.Fatalf("EncodeImage failed: %v", err)
			}
			decoded, err := tt.decode(data)
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			bounds := decoded.Bounds()
			if bounds.Dx() != 30 || bounds.Dy() != 20 {
				t.Errorf("expected 30x20, got %dx%d", bounds.Dx(), bounds.Dy())
			}
		})
	}
}

func TestRenderer_EncodeUnsupported(t *testing.T) {
	if _, err := New().EncodeImage(image.NewNRGBA(image.Rect(0, 0, 1, 1)), ports.ImageFormat(99)); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestRenderer_ResizeImage(t *testing.T) {
	r := New()

	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.Set(0, 0, color.NRGBA{R: 255, A: 255})
	src.Set(1, 0, color.NRGBA{G: 255, A: 255})
	src.Set(0, 1, color.NRGBA{B: 255, A: 255})
	src.Set(1, 1, color.NRGBA{A: 255})

	up := r.ResizeImage(src, 8, 8)
	if b := up.Bounds(); b.Dx() != 8 || b.Dy() != 8 {
		t.Fatalf("expected 8x8, got %dx%d", b.Dx(), b.Dy())
	}
	// Nearest neighbour keeps the top-left texel intact.
	if got := color.NRGBAModel.Convert(up.At(1, 1)).(color.NRGBA); got != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("upscaled pixel = %v", got)
	}

	down := r.ResizeImage(image.NewNRGBA(image.Rect(0, 0, 64, 64)), 16, 16)
	if b := down.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
		t.Errorf("expected 16x16, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestCanvas_DrawCheckerboard(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(16, 16, color.Black)
	light := color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	dark := color.NRGBA{R: 100, G: 100, B: 100, A: 255}
	canvas.DrawCheckerboard(0, 0, 16, 16, 8, light, dark)

	img := canvas.ToImage()
	at := func(x, y int) color.NRGBA {
		return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	}
	if at(2, 2) != light {
		t.Errorf("cell (0,0) = %v, want %v", at(2, 2), light)
	}
	if at(10, 2) != dark {
		t.Errorf("cell (1,0) = %v, want %v", at(10, 2), dark)
	}
	if at(10, 10) != light {
		t.Errorf("cell (1,1) = %v, want %v", at(10, 10), light)
	}
}

func TestCanvas_DrawOperations(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(120, 40, color.White)

	// These should not panic
	canvas.DrawImage(image.NewNRGBA(image.Rect(0, 0, 10, 10)), 5, 5)
	canvas.DrawRectStroke(1, 1, 100, 30, color.Black, 2)
	canvas.DrawText("bc7_rgba 256x256", 4, 4, 12, color.Black)
	canvas.DrawText("level 3", 4, 20, 12, color.Black)

	if canvas.ToImage() == nil {
		t.Error("expected image")
	}
}
