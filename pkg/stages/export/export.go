// Package export implements the output stage: raw level files, decoded
// previews, mip chain contact sheets and the container description.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"

	"github.com/user/basiskit/pkg/basis"
	"github.com/user/basiskit/pkg/pipeline"
	"github.com/user/basiskit/pkg/ports"
)

// Theme contains the contact sheet styling.
type Theme struct {
	Background  color.Color
	CheckerA    color.Color
	CheckerB    color.Color
	BorderColor color.Color
	TextColor   color.Color
	Padding     int
	LabelHeight int
	// MaxTile caps the larger side of a tile; bigger levels are scaled down.
	MaxTile int
	// MinTile is the smallest tile side; smaller levels are scaled up.
	MinTile int
}

// DefaultTheme returns the default contact sheet styling.
func DefaultTheme() Theme {
	return Theme{
		Background:  color.RGBA{R: 32, G: 32, B: 36, A: 255},
		CheckerA:    color.RGBA{R: 204, G: 204, B: 204, A: 255},
		CheckerB:    color.RGBA{R: 153, G: 153, B: 153, A: 255},
		BorderColor: color.RGBA{R: 96, G: 96, B: 104, A: 255},
		TextColor:   color.RGBA{R: 230, G: 230, B: 230, A: 255},
		Padding:     8,
		LabelHeight: 16,
		MaxTile:     256,
		MinTile:     16,
	}
}

// Stage writes transcoder output through a LevelSink.
type Stage struct {
	renderer ports.Renderer
	sink     ports.LevelSink
	logger   ports.Logger
	theme    Theme
}

// NewStage creates a new export stage.
func NewStage(renderer ports.Renderer, sink ports.LevelSink, logger ports.Logger) *Stage {
	return &Stage{
		renderer: renderer,
		sink:     sink,
		logger:   logger.WithComponent("export"),
		theme:    DefaultTheme(),
	}
}

// sheetKey groups the levels of one contact sheet.
type sheetKey struct {
	image  uint32
	format basis.TargetFormat
}

type tile struct {
	level uint32
	desc  basis.ImageLevelDesc
	img   image.Image
}

// Execute writes everything input asks for. A disabled sink makes it a
// no-op.
func (s *Stage) Execute(ctx context.Context, input pipeline.ExportInput) (pipeline.ExportResult, error) {
	var result pipeline.ExportResult
	if !s.sink.Enabled() {
		return result, nil
	}

	if input.FileInfoJSON {
		data, err := json.MarshalIndent(input.Info, "", "  ")
		if err != nil {
			return result, fmt.Errorf("marshal file info: %w", err)
		}
		if err := s.sink.SaveFileInfo(data); err != nil {
			return result, fmt.Errorf("save file info: %w", err)
		}
	}

	decode := input.Previews || input.ContactSheet
	var order []sheetKey
	sheets := make(map[sheetKey][]tile)

	for _, lvl := range input.Levels {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		key := ports.LevelKey{Image: lvl.Image, Level: lvl.Level, Format: lvl.Format.String()}

		if input.WriteRaw {
			if err := s.sink.SaveLevel(key, lvl.Data); err != nil {
				return result, fmt.Errorf("save level: %w", err)
			}
			result.RawFiles++
			result.RawBytes += int64(len(lvl.Data))
		}

		if !decode || !basis.CanDecodeImage(lvl.Format) {
			continue
		}
		img, err := basis.DecodeImage(lvl.Format, int(lvl.Desc.OrigWidth), int(lvl.Desc.OrigHeight), lvl.Data)
		if err != nil {
			s.logger.Warn("No preview for image %d level %d %s: %v", lvl.Image, lvl.Level, lvl.Format, err)
			continue
		}
		if input.Previews {
			if err := s.sink.SavePreview(key, img); err != nil {
				return result, fmt.Errorf("save preview: %w", err)
			}
			result.Previews++
		}
		if input.ContactSheet {
			sk := sheetKey{image: lvl.Image, format: lvl.Format}
			if _, ok := sheets[sk]; !ok {
				order = append(order, sk)
			}
			sheets[sk] = append(sheets[sk], tile{level: lvl.Level, desc: lvl.Desc, img: img})
		}
	}

	for _, sk := range order {
		sheet := s.contactSheet(sk.format, sheets[sk])
		if err := s.sink.SaveContactSheet(sk.image, sk.format.String(), sheet); err != nil {
			return result, fmt.Errorf("save contact sheet: %w", err)
		}
		result.ContactSheets++
	}

	s.logger.Debug("Exported %d raw files, %d previews, %d contact sheets", result.RawFiles, result.Previews, result.ContactSheets)
	return result, nil
}

// tileSize fits a level into the theme's tile bounds, keeping its aspect
// ratio.
func (s *Stage) tileSize(w, h int) (int, int) {
	t := s.theme
	if m := max(w, h); m > t.MaxTile {
		w, h = max(w*t.MaxTile/m, 1), max(h*t.MaxTile/m, 1)
	}
	if m := max(w, h); m < t.MinTile {
		w, h = w*t.MinTile/m, h*t.MinTile/m
	}
	return w, h
}

// contactSheet lays the levels of one image out left to right, each on a
// checkerboard with a label underneath.
func (s *Stage) contactSheet(format basis.TargetFormat, tiles []tile) image.Image {
	t := s.theme
	width, height := t.Padding, 0
	sizes := make([]image.Point, len(tiles))
	for i, tl := range tiles {
		w, h := s.tileSize(int(tl.desc.OrigWidth), int(tl.desc.OrigHeight))
		sizes[i] = image.Pt(w, h)
		width += w + t.Padding
		height = max(height, h)
	}
	height += 2*t.Padding + t.LabelHeight

	canvas := s.renderer.CreateCanvas(width, height, t.Background)
	x := t.Padding
	for i, tl := range tiles {
		w, h := sizes[i].X, sizes[i].Y
		img := tl.img
		if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
			img = s.renderer.ResizeImage(img, w, h)
		}
		canvas.DrawCheckerboard(x, t.Padding, w, h, 8, t.CheckerA, t.CheckerB)
		canvas.DrawImage(img, x, t.Padding)
		canvas.DrawRectStroke(x, t.Padding, w, h, t.BorderColor, 1)
		canvas.DrawText(fmt.Sprintf("L%d %dx%d", tl.level, tl.desc.OrigWidth, tl.desc.OrigHeight),
			x, t.Padding+h+2, 10, t.TextColor)
		x += w + t.Padding
	}
	return canvas.ToImage()
}

var _ pipeline.Stage[pipeline.ExportInput, pipeline.ExportResult] = (*Stage)(nil)
