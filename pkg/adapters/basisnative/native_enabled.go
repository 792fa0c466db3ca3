//go:build basisu_native && cgo

package basisnative

import (
	"errors"
	"sync"
	"unsafe"

	"github.com/user/basiskit/pkg/adapters/basisgo"
	nativecgo "github.com/user/basiskit/pkg/adapters/basisnative/internal/basisu"
	"github.com/user/basiskit/pkg/adapters/logger"
	"github.com/user/basiskit/pkg/ports"
)

func Enabled() bool { return true }

var (
	errCreate = errors.New("basisnative: failed to create native transcoder")
	initOnce  sync.Once
)

// Engine wraps a native basisu_transcoder instance.
//
// Engine is not safe for concurrent use; basis.Transcoder serializes access.
type Engine struct {
	*basisgo.Engine

	logger ports.Logger
	handle unsafe.Pointer
	mu     sync.Mutex
}

// New creates a native engine. A nil logger discards messages.
func New(log ports.Logger) (*Engine, error) {
	if log == nil {
		log = logger.NewNoop()
	}
	h := nativecgo.Create()
	if h == nil {
		return nil, errCreate
	}
	e := &Engine{
		Engine: basisgo.New(log),
		logger: log.WithComponent("basisnative"),
		handle: h,
	}
	return e, nil
}

// InitGlobal builds the native transcoder tables once per process.
func (e *Engine) InitGlobal() {
	initOnce.Do(func() {
		e.logger.Debug("Initializing native transcoder tables")
		nativecgo.Init()
	})
}

// ValidateHeader requires both basisu and the embedded reader to accept
// data. basisu does not range-check slice payloads, and the reader answers
// the remaining introspection calls.
func (e *Engine) ValidateHeader(data []byte) bool {
	return e.Engine.ValidateHeaderWith(data, func(data []byte) bool {
		return nativecgo.ValidateHeader(e.ptr(), data)
	})
}

func (e *Engine) ValidateChecksums(data []byte, full bool) bool {
	return e.Engine.ValidateChecksumsWith(data, full, func(data []byte, full bool) bool {
		return nativecgo.ValidateChecksums(e.ptr(), data, full)
	})
}

func (e *Engine) StartTranscoding(data []byte) bool {
	return nativecgo.StartTranscoding(e.ptr(), data)
}

func (e *Engine) StopTranscoding() bool {
	return nativecgo.StopTranscoding(e.ptr())
}

func (e *Engine) TranscodeImageLevel(data []byte, image, level uint32, out []byte, outElems uint32, format uint32, params ports.DecodeParams) bool {
	ok := nativecgo.TranscodeImageLevel(e.ptr(), data, image, level, out, outElems, format,
		params.Flags, params.RowPitch, params.Rows)
	if !ok {
		e.logger.Debug("Native transcode of image %d level %d to format %d failed", image, level, format)
	}
	return ok
}

// Close destroys the native transcoder. It must be called to release the
// handle; it is safe to call more than once.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.handle != nil {
		nativecgo.Destroy(e.handle)
		e.handle = nil
	}
	return nil
}

func (e *Engine) ptr() unsafe.Pointer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.handle
}

var _ ports.Engine = (*Engine)(nil)
