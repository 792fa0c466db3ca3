// Package filesink writes transcoded levels, previews and container metadata
// to a directory tree.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/basiskit/pkg/adapters/containerio"
	"github.com/user/basiskit/pkg/ports"
)

// Sink saves transcoder output to files under a base directory:
//
//	fileinfo.json
//	levels/image-000/level-00.<format>.bin[.zst|.lz4]
//	previews/image-000/level-00.<format>.png
//	contact/image-000.<format>.png
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer

	previewFormat ports.ImageFormat
	compression   containerio.Wrapping
}

// Option configures a Sink.
type Option func(*Sink)

// WithPreviewFormat selects the encoding of previews and contact sheets.
func WithPreviewFormat(f ports.ImageFormat) Option {
	return func(s *Sink) { s.previewFormat = f }
}

// WithCompression wraps raw level files in a zstd or LZ4 frame.
func WithCompression(w containerio.Wrapping) Option {
	return func(s *Sink) { s.compression = w }
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer, opts ...Option) *Sink {
	s := &Sink{
		baseDir:       baseDir,
		fs:            fs,
		renderer:      renderer,
		previewFormat: ports.FormatPNG,
		compression:   containerio.WrappingNone,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// LevelPath returns the file a level is written to.
func (s *Sink) LevelPath(key ports.LevelKey) string {
	name := fmt.Sprintf("level-%02d.%s.bin%s", key.Level, key.Format, s.compression.Extension())
	return filepath.Join(s.baseDir, "levels", imageDir(key.Image), name)
}

// SaveLevel saves the raw transcoded bytes of one level.
func (s *Sink) SaveLevel(key ports.LevelKey, data []byte) error {
	out, err := containerio.Wrap(data, s.compression)
	if err != nil {
		return fmt.Errorf("compress level: %w", err)
	}
	path := s.LevelPath(key)
	if err := s.fs.MkdirAll(filepath.Dir(path)); err != nil {
		return err
	}
	return s.fs.WriteFile(path, out)
}

// SavePreview saves a decoded preview of one level.
func (s *Sink) SavePreview(key ports.LevelKey, img image.Image) error {
	dir := filepath.Join(s.baseDir, "previews", imageDir(key.Image))
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	data, err := s.renderer.EncodeImage(img, s.previewFormat)
	if err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("level-%02d.%s.%s", key.Level, key.Format, s.previewFormat))
	return s.fs.WriteFile(path, data)
}

// SaveContactSheet saves the mip chain overview of one image.
func (s *Sink) SaveContactSheet(imageIndex uint32, format string, img image.Image) error {
	dir := filepath.Join(s.baseDir, "contact")
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	data, err := s.renderer.EncodeImage(img, s.previewFormat)
	if err != nil {
		return fmt.Errorf("encode contact sheet: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s.%s.%s", imageDir(imageIndex), format, s.previewFormat))
	return s.fs.WriteFile(path, data)
}

// SaveFileInfo saves the container description as JSON.
func (s *Sink) SaveFileInfo(data []byte) error {
	path := filepath.Join(s.baseDir, "fileinfo.json")
	return s.fs.WriteFile(path, data)
}

func imageDir(index uint32) string {
	return fmt.Sprintf("image-%03d", index)
}

// Ensure Sink implements ports.LevelSink
var _ ports.LevelSink = (*Sink)(nil)
