// Package transcode implements the level transcoding stage.
package transcode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/user/basiskit/pkg/basis"
	"github.com/user/basiskit/pkg/pipeline"
	"github.com/user/basiskit/pkg/ports"
)

// Stage runs one transcoding pass over a container.
type Stage struct {
	transcoder *basis.Transcoder
	logger     ports.Logger
}

// NewStage creates a new transcode stage.
func NewStage(transcoder *basis.Transcoder, logger ports.Logger) *Stage {
	return &Stage{
		transcoder: transcoder,
		logger:     logger.WithComponent("transcode"),
	}
}

// unit is one (image, level) pair selected for the pass.
type unit struct {
	image, level uint32
}

// Execute transcodes every selected (image, level) to every requested
// format inside a single pass. Formats the container cannot reach are
// skipped with a warning, as are explicitly requested levels that do not
// exist. Any other failure aborts the pass.
func (s *Stage) Execute(ctx context.Context, input pipeline.TranscodeInput) (pipeline.TranscodeResult, error) {
	start := time.Now()
	result := pipeline.TranscodeResult{Levels: []pipeline.TranscodedLevel{}}

	source, err := s.transcoder.BasisFormat(input.Data)
	if err != nil {
		return result, err
	}

	formats := make([]basis.TargetFormat, 0, len(input.Formats))
	for _, f := range input.Formats {
		if err := basis.CheckCompatibility(source, f); err != nil {
			s.logger.Warn("Skipping %s: %v", f, err)
			result.Skipped = append(result.Skipped, pipeline.SkippedFormat{Format: f, Reason: err})
			continue
		}
		formats = append(formats, f)
	}
	if len(formats) == 0 {
		return result, nil
	}

	units, err := s.units(input)
	if err != nil {
		return result, err
	}

	s.logger.Debug("Transcoding %d levels to %d formats", len(units), len(formats))
	err = s.transcoder.Transcode(input.Data, func(p *basis.Prepared) error {
		for _, u := range units {
			for _, f := range formats {
				if err := ctx.Err(); err != nil {
					return err
				}
				out, desc, err := p.TranscodeLevel(u.image, u.level, f, input.DecodeFlags)
				if errors.Is(err, basis.ErrLevelNotFound) {
					s.logger.Warn("Image %d has no level %d", u.image, u.level)
					break
				}
				if err != nil {
					return fmt.Errorf("image %d level %d to %s: %w", u.image, u.level, f, err)
				}
				result.Levels = append(result.Levels, pipeline.TranscodedLevel{
					Image:  u.image,
					Level:  u.level,
					Format: f,
					Desc:   desc,
					Data:   out,
				})
			}
		}
		return nil
	})
	result.Duration = time.Since(start)
	if err != nil {
		return result, fmt.Errorf("transcode: %w", err)
	}

	s.logger.Debug("Transcoded %d outputs (%d bytes) in %s", len(result.Levels), result.TotalBytes(), result.Duration)
	return result, nil
}

// units expands the image and level selections. Unselected dimensions
// cover everything in the container; selected levels are kept even when an
// image lacks them so the pass can report the gap.
func (s *Stage) units(input pipeline.TranscodeInput) ([]unit, error) {
	images := input.Images
	if images == nil {
		n, err := s.transcoder.TotalImages(input.Data)
		if err != nil {
			return nil, err
		}
		images = seq(n)
	}

	var units []unit
	for _, img := range images {
		levels := input.Levels
		if levels == nil {
			n, err := s.transcoder.TotalImageLevels(input.Data, img)
			if err != nil {
				return nil, err
			}
			if n == 0 {
				s.logger.Warn("Container has no image %d", img)
			}
			levels = seq(n)
		}
		for _, l := range levels {
			units = append(units, unit{image: img, level: l})
		}
	}
	return units, nil
}

func seq(n uint32) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = uint32(i)
	}
	return out
}

var _ pipeline.Stage[pipeline.TranscodeInput, pipeline.TranscodeResult] = (*Stage)(nil)
