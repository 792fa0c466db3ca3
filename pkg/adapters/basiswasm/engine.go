// Package basiswasm runs the Basis Universal transcoder compiled to
// WebAssembly inside a wazero runtime.
//
// The guest module must export its linear memory along with malloc, free
// and the basisrs_* transcoder entry points. Container introspection is
// served by the pure-Go reader in basisgo.
package basiswasm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	"github.com/user/basiskit/pkg/adapters/basisgo"
	"github.com/user/basiskit/pkg/ports"
)

// ErrGuestMemory is returned when the guest cannot hold a buffer.
var ErrGuestMemory = errors.New("basiswasm: guest memory exhausted")

// Options configures the wazero runtime.
type Options struct {
	// MemoryLimitPages caps guest memory in 64KiB pages. 0 keeps the
	// wazero default.
	MemoryLimitPages uint32
}

const (
	fnMalloc            = "malloc"
	fnFree              = "free"
	fnInit              = "basisrs_init"
	fnCreate            = "basisrs_create_transcoder"
	fnDestroy           = "basisrs_destroy_transcoder"
	fnValidateHeader    = "basisrs_validate_header"
	fnValidateChecksums = "basisrs_validate_file_checksums"
	fnStart             = "basisrs_start_transcoding"
	fnStop              = "basisrs_stop_transcoding"
	fnTranscode         = "basisrs_transcode_image_level"
)

var requiredExports = []string{
	fnMalloc, fnFree, fnInit, fnCreate, fnDestroy,
	fnValidateHeader, fnValidateChecksums, fnStart, fnStop, fnTranscode,
}

// staged is a container copied into guest memory for the duration of a
// transcoding pass.
type staged struct {
	src *byte
	n   int
	ptr uint32
}

// Engine is a ports.Engine backed by a wasm guest. Calls into the guest are
// serialized.
type Engine struct {
	*basisgo.Engine

	ctx     context.Context
	runtime wazero.Runtime
	mod     api.Module
	fns     map[string]api.Function

	mu       sync.Mutex
	handle   uint32
	pass     *staged
	initOnce sync.Once
	closed   bool
}

// New compiles and instantiates wasm. ctx bounds every later guest call.
func New(ctx context.Context, wasm []byte, opts Options) (*Engine, error) {
	cfg := wazero.NewRuntimeConfig()
	if opts.MemoryLimitPages > 0 {
		cfg = cfg.WithMemoryLimitPages(opts.MemoryLimitPages)
	}
	r := wazero.NewRuntimeWithConfig(ctx, cfg)

	e, err := instantiate(ctx, r, wasm)
	if err != nil {
		if cerr := r.Close(ctx); cerr != nil {
			Logger().Warn("failed to close runtime during cleanup", zap.Error(cerr))
		}
		return nil, err
	}
	return e, nil
}

func instantiate(ctx context.Context, r wazero.Runtime, wasm []byte) (*Engine, error) {
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
		return nil, fmt.Errorf("basiswasm: instantiate WASI: %w", err)
	}
	compiled, err := r.CompileModule(ctx, wasm)
	if err != nil {
		return nil, fmt.Errorf("basiswasm: compile failed: %w", err)
	}
	modCfg := wazero.NewModuleConfig().
		WithName("basisu").
		WithStartFunctions("_initialize")
	mod, err := r.InstantiateModule(ctx, compiled, modCfg)
	if err != nil {
		return nil, fmt.Errorf("basiswasm: instantiate failed: %w", err)
	}
	if mod.Memory() == nil {
		return nil, errors.New("basiswasm: guest does not export memory")
	}

	fns := make(map[string]api.Function, len(requiredExports))
	for _, name := range requiredExports {
		fn := mod.ExportedFunction(name)
		if fn == nil {
			return nil, fmt.Errorf("basiswasm: guest does not export %s", name)
		}
		fns[name] = fn
	}

	e := &Engine{
		Engine:  basisgo.New(nil),
		ctx:     ctx,
		runtime: r,
		mod:     mod,
		fns:     fns,
	}
	res, err := e.call(fnCreate)
	if err != nil {
		return nil, err
	}
	if res == 0 {
		return nil, ErrGuestMemory
	}
	e.handle = uint32(res)
	Logger().Debug("guest transcoder created", zap.Uint32("handle", e.handle))
	return e, nil
}

func (e *Engine) call(name string, params ...uint64) (uint64, error) {
	out, err := e.fns[name].Call(e.ctx, params...)
	if err != nil {
		return 0, fmt.Errorf("basiswasm: %s: %w", name, err)
	}
	if len(out) == 0 {
		return 0, nil
	}
	return out[0], nil
}

// callBool reports a guest failure as false, logging traps.
func (e *Engine) callBool(name string, params ...uint64) bool {
	res, err := e.call(name, params...)
	if err != nil {
		Logger().Warn("guest call trapped", zap.String("func", name), zap.Error(err))
		return false
	}
	return uint32(res) != 0
}

// copyIn allocates guest memory and copies b into it. Empty input still
// gets a one-byte allocation so the pointer is never null.
func (e *Engine) copyIn(b []byte) (uint32, error) {
	size := uint64(len(b))
	if size == 0 {
		size = 1
	}
	res, err := e.call(fnMalloc, size)
	if err != nil {
		return 0, err
	}
	ptr := uint32(res)
	if ptr == 0 {
		return 0, ErrGuestMemory
	}
	if !e.mod.Memory().Write(ptr, b) {
		e.free(ptr)
		return 0, ErrGuestMemory
	}
	return ptr, nil
}

func (e *Engine) free(ptr uint32) {
	if ptr == 0 {
		return
	}
	if _, err := e.call(fnFree, uint64(ptr)); err != nil {
		Logger().Warn("failed to free guest buffer", zap.Uint32("ptr", ptr), zap.Error(err))
	}
}

// withData runs fn with data in guest memory, reusing the copy staged for
// the running pass when data is the same slice.
func (e *Engine) withData(data []byte, fn func(ptr uint32) bool) bool {
	if p := e.pass; p != nil && p.n == len(data) && p.src == unsafe.SliceData(data) {
		return fn(p.ptr)
	}
	ptr, err := e.copyIn(data)
	if err != nil {
		Logger().Warn("failed to stage container", zap.Int("size", len(data)), zap.Error(err))
		return false
	}
	defer e.free(ptr)
	return fn(ptr)
}

func (e *Engine) InitGlobal() {
	e.initOnce.Do(func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if _, err := e.call(fnInit); err != nil {
			Logger().Error("guest table initialization failed", zap.Error(err))
		}
	})
}

// ValidateHeader requires both the guest and the embedded reader to accept
// data, since the reader answers the remaining introspection calls.
func (e *Engine) ValidateHeader(data []byte) bool {
	return e.Engine.ValidateHeaderWith(data, e.guestValidateHeader)
}

func (e *Engine) ValidateChecksums(data []byte, full bool) bool {
	return e.Engine.ValidateChecksumsWith(data, full, e.guestValidateChecksums)
}

func (e *Engine) guestValidateHeader(data []byte) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	return e.withData(data, func(ptr uint32) bool {
		return e.callBool(fnValidateHeader, uint64(e.handle), uint64(ptr), uint64(len(data)))
	})
}

func (e *Engine) guestValidateChecksums(data []byte, full bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	var f uint64
	if full {
		f = 1
	}
	return e.withData(data, func(ptr uint32) bool {
		return e.callBool(fnValidateChecksums, uint64(e.handle), uint64(ptr), uint64(len(data)), f)
	})
}

// StartTranscoding copies data into the guest and keeps it there until
// StopTranscoding.
func (e *Engine) StartTranscoding(data []byte) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.pass != nil {
		return false
	}
	ptr, err := e.copyIn(data)
	if err != nil {
		Logger().Warn("failed to stage container", zap.Int("size", len(data)), zap.Error(err))
		return false
	}
	if !e.callBool(fnStart, uint64(e.handle), uint64(ptr), uint64(len(data))) {
		e.free(ptr)
		return false
	}
	e.pass = &staged{src: unsafe.SliceData(data), n: len(data), ptr: ptr}
	return true
}

func (e *Engine) StopTranscoding() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pass == nil {
		return false
	}
	ok := e.callBool(fnStop, uint64(e.handle))
	e.free(e.pass.ptr)
	e.pass = nil
	return ok
}

func (e *Engine) TranscodeImageLevel(data []byte, image, level uint32, out []byte, outElems uint32, format uint32, params ports.DecodeParams) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.pass == nil {
		return false
	}
	outPtr, err := e.copyIn(out)
	if err != nil {
		Logger().Warn("failed to allocate output", zap.Int("size", len(out)), zap.Error(err))
		return false
	}
	defer e.free(outPtr)

	return e.withData(data, func(ptr uint32) bool {
		ok := e.callBool(fnTranscode,
			uint64(e.handle), uint64(ptr), uint64(len(data)),
			uint64(image), uint64(level),
			uint64(outPtr), uint64(outElems), uint64(format),
			uint64(params.Flags), uint64(params.RowPitch),
			0, // transcoder state
			uint64(params.Rows),
		)
		if !ok {
			return false
		}
		res, ok := e.mod.Memory().Read(outPtr, uint32(len(out)))
		if !ok {
			return false
		}
		copy(out, res)
		return true
	})
}

// Close destroys the guest transcoder and the runtime. It is safe to call
// more than once.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	if e.pass != nil {
		e.callBool(fnStop, uint64(e.handle))
		e.free(e.pass.ptr)
		e.pass = nil
	}
	if _, err := e.call(fnDestroy, uint64(e.handle)); err != nil {
		Logger().Warn("failed to destroy guest transcoder", zap.Error(err))
	}
	return e.runtime.Close(e.ctx)
}

var _ ports.Engine = (*Engine)(nil)
