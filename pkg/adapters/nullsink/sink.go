// Package nullsink provides the LevelSink used by validation and
// transcode --dry-run.
package nullsink

import (
	"image"

	"github.com/user/basiskit/pkg/ports"
)

// Sink reports itself disabled, so the export stage skips level encoding
// and preview rendering entirely. Its save methods discard their input.
type Sink struct{}

func New() *Sink { return &Sink{} }

func (*Sink) Enabled() bool { return false }

func (*Sink) SaveLevel(ports.LevelKey, []byte) error             { return nil }
func (*Sink) SavePreview(ports.LevelKey, image.Image) error      { return nil }
func (*Sink) SaveContactSheet(uint32, string, image.Image) error { return nil }
func (*Sink) SaveFileInfo([]byte) error                          { return nil }

var _ ports.LevelSink = (*Sink)(nil)
