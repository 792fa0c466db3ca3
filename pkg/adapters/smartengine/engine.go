// Package smartengine selects the best available ports.Engine backend.
package smartengine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/user/basiskit/pkg/adapters/basisgo"
	"github.com/user/basiskit/pkg/adapters/basisnative"
	"github.com/user/basiskit/pkg/adapters/basiswasm"
	"github.com/user/basiskit/pkg/ports"
)

// Backend represents the engine implementation in use.
type Backend string

const (
	// BackendAuto picks native, then wasm, then the pure-Go reader.
	BackendAuto Backend = "auto"
	// BackendNative is the CGO build of the upstream transcoder.
	BackendNative Backend = "native"
	// BackendWasm is the upstream transcoder running under wazero.
	BackendWasm Backend = "wasm"
	// BackendGo is the pure-Go container reader. It cannot decode blocks.
	BackendGo Backend = "go"
)

// ParseBackend parses a backend name. The empty string means auto.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return BackendAuto, nil
	case BackendAuto, BackendNative, BackendWasm, BackendGo:
		return b, nil
	}
	return "", fmt.Errorf("smartengine: unknown backend %q", s)
}

// Info contains information about the selected engine.
type Info struct {
	// Backend is the implementation being used.
	Backend Backend
	// CanDecode reports whether the backend carries a block codec.
	CanDecode bool
}

// Options configures backend selection.
type Options struct {
	// Backend forces an implementation. Empty or auto selects automatically.
	Backend Backend
	// WasmModulePath is the transcoder wasm binary. The wasm backend is
	// skipped in auto mode when it is empty.
	WasmModulePath string
	// WasmMemoryLimitPages caps guest memory in 64KiB pages.
	WasmMemoryLimitPages uint32
	// FileSystem reads the wasm binary.
	FileSystem ports.FileSystem
	// Logger receives adapter diagnostics. Nil discards them.
	Logger ports.Logger
}

var (
	// ErrNoEngineAvailable is returned when a forced backend cannot be created.
	ErrNoEngineAvailable = errors.New("smartengine: no engine available")
	// ErrUnsupportedBackend is returned for unknown backends.
	ErrUnsupportedBackend = errors.New("smartengine: unsupported backend")
)

// New creates an engine.
//
// The selection flow in auto mode:
//   - native, when built with the basisu_native tag
//   - wasm, when WasmModulePath is set and the module loads
//   - the pure-Go reader otherwise
func New(ctx context.Context, opts Options) (ports.Engine, Info, error) {
	switch opts.Backend {
	case "", BackendAuto:
		if e, err := basisnative.New(opts.Logger); err == nil {
			return e, Info{Backend: BackendNative, CanDecode: true}, nil
		}
		if opts.WasmModulePath != "" {
			e, err := newWasm(ctx, opts)
			if err == nil {
				return e, Info{Backend: BackendWasm, CanDecode: true}, nil
			}
			if opts.Logger != nil {
				opts.Logger.Warn("Wasm engine unavailable: %v", err)
			}
		}
		return basisgo.New(opts.Logger), Info{Backend: BackendGo}, nil

	case BackendNative:
		e, err := basisnative.New(opts.Logger)
		if err != nil {
			return nil, Info{}, fmt.Errorf("%w: %v", ErrNoEngineAvailable, err)
		}
		return e, Info{Backend: BackendNative, CanDecode: true}, nil

	case BackendWasm:
		e, err := newWasm(ctx, opts)
		if err != nil {
			return nil, Info{}, fmt.Errorf("%w: %v", ErrNoEngineAvailable, err)
		}
		return e, Info{Backend: BackendWasm, CanDecode: true}, nil

	case BackendGo:
		return basisgo.New(opts.Logger), Info{Backend: BackendGo}, nil

	default:
		return nil, Info{}, ErrUnsupportedBackend
	}
}

func newWasm(ctx context.Context, opts Options) (*basiswasm.Engine, error) {
	if opts.WasmModulePath == "" {
		return nil, errors.New("no wasm module path configured")
	}
	if opts.FileSystem == nil {
		return nil, errors.New("no filesystem to read the wasm module")
	}
	bin, err := opts.FileSystem.ReadFile(opts.WasmModulePath)
	if err != nil {
		return nil, fmt.Errorf("read wasm module: %w", err)
	}
	return basiswasm.New(ctx, bin, basiswasm.Options{MemoryLimitPages: opts.WasmMemoryLimitPages})
}

// NativeAvailable reports whether this build carries the native engine.
func NativeAvailable() bool {
	return basisnative.Enabled()
}
