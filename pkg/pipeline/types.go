package pipeline

import (
	"fmt"
	"time"

	"github.com/user/basiskit/pkg/basis"
)

// =============================================================================
// Inspect Stage Types
// =============================================================================

// ChecksumMode selects how much of a container is CRC-checked.
type ChecksumMode string

const (
	ChecksumNone   ChecksumMode = "none"
	ChecksumHeader ChecksumMode = "header"
	ChecksumFull   ChecksumMode = "full"
)

// ParseChecksumMode parses a mode name. The empty string means header.
func ParseChecksumMode(s string) (ChecksumMode, error) {
	switch m := ChecksumMode(s); m {
	case "":
		return ChecksumHeader, nil
	case ChecksumNone, ChecksumHeader, ChecksumFull:
		return m, nil
	}
	return "", fmt.Errorf("pipeline: unknown checksum mode %q", s)
}

// InspectInput contains the container to inspect.
type InspectInput struct {
	Data      []byte
	Checksums ChecksumMode
}

// InspectResult describes a container that passed header validation.
type InspectResult struct {
	Info basis.FileInfo

	// ChecksumsChecked is the mode that was applied.
	ChecksumsChecked ChecksumMode
	// ChecksumsValid is false when a requested CRC did not match.
	ChecksumsValid bool
}

// =============================================================================
// Transcode Stage Types
// =============================================================================

// TranscodeInput selects what one pass transcodes.
type TranscodeInput struct {
	Data    []byte
	Formats []basis.TargetFormat

	// Images and Levels restrict the pass. Nil selects everything present.
	Images []uint32
	Levels []uint32

	DecodeFlags basis.DecodeFlags
}

// TranscodedLevel is one (image, level, format) output.
type TranscodedLevel struct {
	Image  uint32
	Level  uint32
	Format basis.TargetFormat
	Desc   basis.ImageLevelDesc
	Data   []byte
}

// SkippedFormat records a requested format the container cannot reach.
type SkippedFormat struct {
	Format basis.TargetFormat
	Reason error
}

// TranscodeResult contains the outputs of a pass in request order.
type TranscodeResult struct {
	Levels   []TranscodedLevel
	Skipped  []SkippedFormat
	Duration time.Duration
}

// TotalBytes returns the combined size of all transcoded levels.
func (r TranscodeResult) TotalBytes() int64 {
	var n int64
	for _, l := range r.Levels {
		n += int64(len(l.Data))
	}
	return n
}

// =============================================================================
// Export Stage Types
// =============================================================================

// ExportInput contains what the export stage writes.
type ExportInput struct {
	Info   basis.FileInfo
	Levels []TranscodedLevel

	WriteRaw     bool
	Previews     bool
	ContactSheet bool
	FileInfoJSON bool
}

// ExportResult counts what was written.
type ExportResult struct {
	RawFiles      int
	Previews      int
	ContactSheets int
	RawBytes      int64
}
