// Package ggrenderer provides a renderer implementation using the gg library.
package ggrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/tiff"

	"github.com/user/basiskit/pkg/ports"
)

// Renderer implements ports.Renderer using the gg library.
type Renderer struct{}

// New creates a new Renderer.
func New() *Renderer {
	return &Renderer{}
}

// CreateCanvas creates a new drawing canvas.
func (r *Renderer) CreateCanvas(width, height int, bg color.Color) ports.Canvas {
	dc := gg.NewContext(width, height)
	dc.SetColor(bg)
	dc.Clear()
	return &Canvas{dc: dc}
}

// EncodeImage encodes an image to the specified format.
func (r *Renderer) EncodeImage(img image.Image, format ports.ImageFormat) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case ports.FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode PNG: %w", err)
		}
	case ports.FormatBMP:
		if err := bmp.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode BMP: %w", err)
		}
	case ports.FormatTIFF:
		if err := tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
			return nil, fmt.Errorf("encode TIFF: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %d", format)
	}

	return buf.Bytes(), nil
}

// ResizeImage resizes an image to the specified dimensions. Mip levels are
// upscaled with nearest neighbour so block artifacts stay visible.
func (r *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	b := img.Bounds()
	scaler := draw.Interpolator(draw.CatmullRom)
	if width >= b.Dx() && height >= b.Dy() {
		scaler = draw.NearestNeighbor
	}
	scaler.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Ensure Renderer implements ports.Renderer
var _ ports.Renderer = (*Renderer)(nil)

var (
	fontOnce sync.Once
	goFont   *truetype.Font
)

// Canvas implements ports.Canvas using gg.Context.
type Canvas struct {
	dc    *gg.Context
	faces map[float64]font.Face
}

// face returns a Go Regular face of the given size. Faces cache glyphs and
// are not safe for concurrent use, so each canvas keeps its own.
func (c *Canvas) face(size float64) font.Face {
	fontOnce.Do(func() {
		if f, err := truetype.Parse(goregular.TTF); err == nil {
			goFont = f
		}
	})
	if goFont == nil {
		return nil
	}
	if f, ok := c.faces[size]; ok {
		return f
	}
	if c.faces == nil {
		c.faces = make(map[float64]font.Face)
	}
	f := truetype.NewFace(goFont, &truetype.Options{Size: size})
	c.faces[size] = f
	return f
}

// DrawImage draws an image at the specified position.
func (c *Canvas) DrawImage(img image.Image, x, y int) {
	c.dc.DrawImage(img, x, y)
}

// DrawCheckerboard fills a rectangle with alternating cells of a and b.
func (c *Canvas) DrawCheckerboard(x, y, w, h, cell int, a, b color.Color) {
	if cell <= 0 {
		cell = 8
	}
	for cy := 0; cy < h; cy += cell {
		for cx := 0; cx < w; cx += cell {
			col := a
			if (cx/cell+cy/cell)%2 == 1 {
				col = b
			}
			c.dc.SetColor(col)
			c.dc.DrawRectangle(float64(x+cx), float64(y+cy), float64(min(cell, w-cx)), float64(min(cell, h-cy)))
			c.dc.Fill()
		}
	}
}

// DrawRectStroke draws a rectangle outline.
func (c *Canvas) DrawRectStroke(x, y, w, h int, col color.Color, strokeWidth float64) {
	c.dc.SetColor(col)
	c.dc.SetLineWidth(strokeWidth)
	c.dc.DrawRectangle(float64(x), float64(y), float64(w), float64(h))
	c.dc.Stroke()
}

// DrawText draws text with its top-left corner at the specified position.
func (c *Canvas) DrawText(text string, x, y int, size float64, col color.Color) {
	if f := c.face(size); f != nil {
		c.dc.SetFontFace(f)
	}
	c.dc.SetColor(col)
	c.dc.DrawStringAnchored(text, float64(x), float64(y), 0, 1)
}

// ToImage returns the canvas as an image.Image.
func (c *Canvas) ToImage() image.Image {
	return c.dc.Image()
}

// Ensure Canvas implements ports.Canvas
var _ ports.Canvas = (*Canvas)(nil)
