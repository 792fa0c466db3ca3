package basisgo

import (
	"sync/atomic"

	"github.com/user/basiskit/pkg/adapters/logger"
	"github.com/user/basiskit/pkg/ports"
)

// Raw codes reported by TexFormat and TextureType for data that cannot be
// parsed. They match no format or texture type.
const (
	InvalidTexFormat   = ^uint32(0)
	InvalidTextureType = ^uint32(0)
)

// Engine is the pure-Go ports.Engine.
type Engine struct {
	logger  ports.Logger
	started atomic.Bool
}

// New creates a pure-Go engine. A nil logger discards messages.
func New(log ports.Logger) *Engine {
	if log == nil {
		log = logger.NewNoop()
	}
	return &Engine{logger: log.WithComponent("basisgo")}
}

// InitGlobal is a no-op; the reader has no global tables beyond the lazily
// built CRC table.
func (e *Engine) InitGlobal() {}

func (e *Engine) parse(data []byte) (*File, bool) {
	f, err := Parse(data)
	if err != nil {
		e.logger.Debug("Container rejected: %v", err)
		return nil, false
	}
	return f, true
}

func (e *Engine) ValidateHeader(data []byte) bool {
	_, ok := e.parse(data)
	return ok
}

func (e *Engine) ValidateChecksums(data []byte, full bool) bool {
	f, ok := e.parse(data)
	return ok && f.ChecksumsValid(full)
}

// ValidateHeaderWith accepts data only when both this reader and codec
// accept it. Engines that pair a codec with this reader validate through it
// so that every query the reader answers sees a container it can parse.
func (e *Engine) ValidateHeaderWith(data []byte, codec func(data []byte) bool) bool {
	return e.ValidateHeader(data) && codec(data)
}

// ValidateChecksumsWith is ValidateHeaderWith for checksum validation.
func (e *Engine) ValidateChecksumsWith(data []byte, full bool, codec func(data []byte, full bool) bool) bool {
	return e.ValidateChecksums(data, full) && codec(data, full)
}

func (e *Engine) TextureType(data []byte) uint32 {
	if f, ok := e.parse(data); ok {
		return uint32(f.Header.TexType)
	}
	return InvalidTextureType
}

func (e *Engine) TexFormat(data []byte) uint32 {
	if f, ok := e.parse(data); ok {
		return uint32(f.Header.TexFormat)
	}
	return InvalidTexFormat
}

func (e *Engine) UserData(data []byte) (uint32, uint32, bool) {
	f, ok := e.parse(data)
	if !ok {
		return 0, 0, false
	}
	return f.Header.UserData0, f.Header.UserData1, true
}

func (e *Engine) TotalImages(data []byte) uint32 {
	if f, ok := e.parse(data); ok {
		return f.Header.TotalImages
	}
	return 0
}

func (e *Engine) TotalImageLevels(data []byte, image uint32) uint32 {
	if f, ok := e.parse(data); ok {
		return f.ImageLevels(image)
	}
	return 0
}

func (e *Engine) ImageLevelDesc(data []byte, image, level uint32) (uint32, uint32, uint32, bool) {
	f, ok := e.parse(data)
	if !ok {
		return 0, 0, 0, false
	}
	s, _, ok := f.Level(image, level)
	if !ok {
		return 0, 0, 0, false
	}
	return uint32(s.OrigWidth), uint32(s.OrigHeight), s.TotalBlocks(), true
}

func (e *Engine) ImageInfo(data []byte, image uint32) (ports.ImageInfo, bool) {
	f, ok := e.parse(data)
	if !ok {
		return ports.ImageInfo{}, false
	}
	return f.imageInfo(image)
}

func (e *Engine) ImageLevelInfo(data []byte, image, level uint32) (ports.ImageLevelInfo, bool) {
	f, ok := e.parse(data)
	if !ok {
		return ports.ImageLevelInfo{}, false
	}
	return f.imageLevelInfo(image, level)
}

func (e *Engine) FileInfo(data []byte) (ports.FileInfo, bool) {
	f, ok := e.parse(data)
	if !ok {
		return ports.FileInfo{}, false
	}
	return f.fileInfo(), true
}

// StartTranscoding fails only when a pass is already running.
func (e *Engine) StartTranscoding(data []byte) bool {
	if !e.started.CompareAndSwap(false, true) {
		return false
	}
	e.logger.Debug("Pass started")
	return true
}

func (e *Engine) StopTranscoding() bool {
	return e.started.CompareAndSwap(true, false)
}

// TranscodeImageLevel checks its arguments like a real codec would and then
// reports failure, since no block decoder is built into this engine.
func (e *Engine) TranscodeImageLevel(data []byte, image, level uint32, out []byte, outElems uint32, format uint32, params ports.DecodeParams) bool {
	if !e.started.Load() {
		e.logger.Debug("Transcode outside of a pass")
		return false
	}
	f, ok := e.parse(data)
	if !ok {
		return false
	}
	if _, _, ok := f.Level(image, level); !ok {
		return false
	}
	if !outputFits(format, out, outElems) {
		e.logger.Debug("Output buffer of %d bytes too small for %d elements", len(out), outElems)
		return false
	}
	e.logger.Debug("No block codec for format %d in the pure-Go engine", format)
	return false
}

func (e *Engine) Close() error {
	return nil
}

// outputFits reports whether out holds outElems elements of format.
func outputFits(format uint32, out []byte, outElems uint32) bool {
	var size uint64
	switch format {
	case 0, 2, 4, 8, 9, 11, 17, 18, 19, 20:
		size = 8
	case 1, 3, 5, 6, 10, 12, 21:
		size = 16
	case 13:
		size = 4
	case 14, 15, 16:
		size = 2
	default:
		return false
	}
	return uint64(len(out)) >= uint64(outElems)*size
}

var _ ports.Engine = (*Engine)(nil)
