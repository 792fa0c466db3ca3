// Package summarizer provides summary generation for transcoding runs.
package summarizer

import "time"

// Summary contains all data collected during a run over one or more
// containers.
type Summary struct {
	// Metadata
	GeneratedAt time.Time `json:"generated_at"`

	// Engine that did the work
	Engine EngineInfo `json:"engine"`

	// Settings the run used
	Settings Settings `json:"settings"`

	// One entry per input, in input order
	Containers []ContainerInfo `json:"containers"`
}

// EngineInfo describes the transcoding backend.
type EngineInfo struct {
	Backend   string `json:"backend"`
	CanDecode bool   `json:"can_decode"`
}

// Settings contains the run configuration.
type Settings struct {
	Formats     []string `json:"formats"`
	Checksums   string   `json:"checksums"`
	DecodeFlags []string `json:"decode_flags,omitempty"`
	OutputDir   string   `json:"output_dir"`
	Workers     int      `json:"workers"`
}

// ContainerInfo describes one processed container.
type ContainerInfo struct {
	Path      string `json:"path"`
	OutputDir string `json:"output_dir,omitempty"`

	Wrapping   string `json:"wrapping"`
	FileBytes  int64  `json:"file_bytes"`
	BasisBytes int64  `json:"basis_bytes"`

	Format      string      `json:"format"`
	TextureType string      `json:"texture_type"`
	Images      []ImageInfo `json:"images"`

	Checksums   string `json:"checksums"`
	ChecksumsOK bool   `json:"checksums_ok"`

	Outputs     []FormatOutput `json:"outputs"`
	Skipped     []SkippedInfo  `json:"skipped,omitempty"`
	TranscodeMs int64          `json:"transcode_ms"`

	RawFiles      int `json:"raw_files"`
	Previews      int `json:"previews"`
	ContactSheets int `json:"contact_sheets"`

	// Error is set when the container failed.
	Error string `json:"error,omitempty"`
}

// ImageInfo describes one image of a container.
type ImageInfo struct {
	Index  uint32 `json:"index"`
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
	Levels uint32 `json:"levels"`
}

// FormatOutput totals the transcoded output of one target format.
type FormatOutput struct {
	Format string `json:"format"`
	Levels int    `json:"levels"`
	Bytes  int64  `json:"bytes"`
}

// SkippedInfo records a requested format the container could not reach.
type SkippedInfo struct {
	Format string `json:"format"`
	Reason string `json:"reason"`
}

// TotalOutputBytes returns the combined size of all outputs.
func (c ContainerInfo) TotalOutputBytes() int64 {
	var n int64
	for _, o := range c.Outputs {
		n += o.Bytes
	}
	return n
}

// Failed returns the number of containers with an error.
func (s *Summary) Failed() int {
	n := 0
	for _, c := range s.Containers {
		if c.Error != "" {
			n++
		}
	}
	return n
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithEngine sets engine information.
func (b *Builder) WithEngine(backend string, canDecode bool) *Builder {
	b.summary.Engine = EngineInfo{
		Backend:   backend,
		CanDecode: canDecode,
	}
	return b
}

// WithSettings sets run settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// AddContainer appends a container.
func (b *Builder) AddContainer(c ContainerInfo) *Builder {
	b.summary.Containers = append(b.summary.Containers, c)
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
