package ports

import (
	"image"
	"image/color"
)

// Renderer abstracts image processing operations used for previews.
type Renderer interface {
	// CreateCanvas creates a new drawing canvas with the specified dimensions and background color.
	CreateCanvas(width, height int, bg color.Color) Canvas

	// EncodeImage encodes an image to the specified format.
	EncodeImage(img image.Image, format ImageFormat) ([]byte, error)

	// ResizeImage resizes an image to the specified dimensions.
	ResizeImage(img image.Image, width, height int) image.Image
}

// Canvas provides drawing operations for contact sheets.
type Canvas interface {
	// DrawImage draws an image at the specified position.
	DrawImage(img image.Image, x, y int)

	// DrawCheckerboard fills a rectangle with a two-tone checkerboard so that
	// transparent previews stay readable.
	DrawCheckerboard(x, y, w, h, cell int, a, b color.Color)

	// DrawRectStroke draws a rectangle outline.
	DrawRectStroke(x, y, w, h int, c color.Color, strokeWidth float64)

	// DrawText draws text with its top-left corner at the specified position.
	DrawText(text string, x, y int, size float64, c color.Color)

	// ToImage returns the canvas as an image.Image.
	ToImage() image.Image
}

// ImageFormat specifies image encoding format.
type ImageFormat int

const (
	FormatPNG ImageFormat = iota
	FormatBMP
	FormatTIFF
)

// String returns the file extension used for the format.
func (f ImageFormat) String() string {
	switch f {
	case FormatBMP:
		return "bmp"
	case FormatTIFF:
		return "tiff"
	default:
		return "png"
	}
}

// ParseImageFormat parses a preview format name. Unknown names select PNG.
func ParseImageFormat(s string) ImageFormat {
	switch s {
	case "bmp":
		return FormatBMP
	case "tiff", "tif":
		return FormatTIFF
	default:
		return FormatPNG
	}
}
