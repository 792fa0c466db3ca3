// Package inspect implements the container validation and description stage.
package inspect

import (
	"context"
	"fmt"

	"github.com/user/basiskit/pkg/basis"
	"github.com/user/basiskit/pkg/pipeline"
	"github.com/user/basiskit/pkg/ports"
)

// Stage validates a container and gathers its FileInfo.
type Stage struct {
	transcoder *basis.Transcoder
	logger     ports.Logger
}

// NewStage creates a new inspect stage.
func NewStage(transcoder *basis.Transcoder, logger ports.Logger) *Stage {
	return &Stage{
		transcoder: transcoder,
		logger:     logger.WithComponent("inspect"),
	}
}

// Execute validates input.Data. An invalid header is an error wrapping
// basis.ErrInvalidContainer; a checksum mismatch is reported in the result.
func (s *Stage) Execute(ctx context.Context, input pipeline.InspectInput) (pipeline.InspectResult, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.InspectResult{}, err
	}

	ok, err := s.transcoder.ValidateHeader(input.Data)
	if err != nil {
		return pipeline.InspectResult{}, err
	}
	if !ok {
		return pipeline.InspectResult{}, fmt.Errorf("inspect: %w", basis.ErrInvalidContainer)
	}

	mode := input.Checksums
	if mode == "" {
		mode = pipeline.ChecksumHeader
	}
	result := pipeline.InspectResult{ChecksumsChecked: mode, ChecksumsValid: true}
	if mode != pipeline.ChecksumNone {
		valid, err := s.transcoder.ValidateChecksums(input.Data, mode == pipeline.ChecksumFull)
		if err != nil {
			return pipeline.InspectResult{}, err
		}
		result.ChecksumsValid = valid
		if !valid {
			s.logger.Warn("Checksum mismatch (%s)", mode)
		}
	}

	info, ok, err := s.transcoder.FileInfo(input.Data)
	if err != nil {
		return pipeline.InspectResult{}, err
	}
	if !ok {
		return pipeline.InspectResult{}, fmt.Errorf("inspect: %w", basis.ErrInvalidContainer)
	}
	result.Info = info

	s.logger.Debug("Container: %s %s, %d images, %d slices", info.FormatName, info.TextureTypeName, info.TotalImages, len(info.Slices))
	return result, nil
}

var _ pipeline.Stage[pipeline.InspectInput, pipeline.InspectResult] = (*Stage)(nil)
