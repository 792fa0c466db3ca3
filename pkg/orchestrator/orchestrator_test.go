package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/user/basiskit/pkg/adapters/containerio"
	"github.com/user/basiskit/pkg/basis"
	"github.com/user/basiskit/pkg/mocks"
	"github.com/user/basiskit/pkg/pipeline"
	"github.com/user/basiskit/pkg/ports"
)

var container = []byte("sB-container")

// harness records every engine and sink the orchestrator creates.
type harness struct {
	mu      sync.Mutex
	engines []*mocks.Engine
	sinks   map[string]*mocks.LevelSink
	fs      *mocks.FileSystem
	logger  *mocks.Logger

	configure func(*mocks.Engine)
	factErr   error
}

func newHarness() *harness {
	return &harness{
		sinks:  make(map[string]*mocks.LevelSink),
		fs:     mocks.NewFileSystem(),
		logger: mocks.NewLogger(),
	}
}

func (h *harness) orchestrator() *Orchestrator {
	newTranscoder := func(context.Context) (*basis.Transcoder, error) {
		if h.factErr != nil {
			return nil, h.factErr
		}
		e := mocks.NewEngine()
		e.Images = [][]mocks.Level{mocks.MipChain(16, 3)}
		if h.configure != nil {
			h.configure(e)
		}
		h.mu.Lock()
		h.engines = append(h.engines, e)
		h.mu.Unlock()
		return basis.New(e), nil
	}
	newSink := func(dir string) ports.LevelSink {
		s := mocks.NewLevelSink(true)
		h.mu.Lock()
		h.sinks[dir] = s
		h.mu.Unlock()
		return s
	}
	return New(newTranscoder, newSink, h.fs, &mocks.Renderer{}, h.logger)
}

func TestOrchestrator_Run(t *testing.T) {
	h := newHarness()
	h.fs.WriteFile("in/rock.basis", container)

	config := DefaultConfig()
	config.OutputDir = "out/rock"
	config.Formats = []basis.TargetFormat{basis.TargetRGBA32, basis.TargetBC1RGB}
	config.Previews = true

	result, err := h.orchestrator().Run(context.Background(), config, "in/rock.basis")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Wrapping != containerio.WrappingNone || result.BasisBytes != int64(len(container)) {
		t.Errorf("wrapping = %s, %d bytes", result.Wrapping, result.BasisBytes)
	}
	if result.Info.TotalImages != 1 || !result.ChecksumsOK {
		t.Errorf("info = %+v, checksums ok %v", result.Info, result.ChecksumsOK)
	}
	// 3 levels x 2 formats
	if len(result.Levels) != 6 {
		t.Errorf("levels = %d, want 6", len(result.Levels))
	}
	wantBytes := int64((16*16+8*8+4*4)*4 + (16+4+1)*8)
	if result.TranscodedBytes != wantBytes {
		t.Errorf("TranscodedBytes = %d, want %d", result.TranscodedBytes, wantBytes)
	}
	if result.Export.RawFiles != 6 {
		t.Errorf("raw files = %d, want 6", result.Export.RawFiles)
	}
	if result.Export.Previews != 6 {
		t.Errorf("previews = %d, want 6", result.Export.Previews)
	}

	sink, ok := h.sinks["out/rock"]
	if !ok {
		t.Fatalf("no sink for out/rock, have %v", h.sinks)
	}
	if sink.FileInfoJSON == nil {
		t.Error("fileinfo.json not written")
	}
	if len(h.engines) != 1 || h.engines[0].CloseCalls != 1 {
		t.Errorf("engine not closed exactly once")
	}
}

func TestOrchestrator_RunSkipsIncompatible(t *testing.T) {
	h := newHarness()
	h.configure = func(e *mocks.Engine) { e.Format = 1 }
	h.fs.WriteFile("a.basis", container)

	config := DefaultConfig()
	config.Formats = []basis.TargetFormat{basis.TargetATCRGB, basis.TargetRGBA4444, basis.TargetBC7RGBA}

	result, err := h.orchestrator().Run(context.Background(), config, "a.basis")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Skipped) != 2 {
		t.Errorf("skipped = %d, want 2", len(result.Skipped))
	}
	if len(result.Levels) != 3 {
		t.Errorf("levels = %d, want 3", len(result.Levels))
	}
}

func TestOrchestrator_RunErrors(t *testing.T) {
	errNoEngine := errors.New("no engine")

	tests := []struct {
		name      string
		path      string
		configure func(*mocks.Engine)
		factErr   error
		wantIs    error
	}{
		{name: "missing file", path: "missing.basis"},
		{name: "unknown wrapping", path: "junk.bin", wantIs: containerio.ErrUnknownWrapping},
		{
			name:      "invalid header",
			path:      "a.basis",
			configure: func(e *mocks.Engine) { e.HeaderValid = false },
			wantIs:    basis.ErrInvalidContainer,
		},
		{
			name: "decode failure",
			path: "a.basis",
			configure: func(e *mocks.Engine) {
				e.TranscodeImageLevelFunc = func([]byte, uint32, uint32, []byte, uint32, uint32, ports.DecodeParams) bool { return false }
			},
			wantIs: basis.ErrDecodeFailed,
		},
		{name: "factory", path: "a.basis", factErr: errNoEngine, wantIs: errNoEngine},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			h.configure = tt.configure
			h.factErr = tt.factErr
			h.fs.WriteFile("a.basis", container)
			h.fs.WriteFile("junk.bin", []byte("not a texture"))

			_, err := h.orchestrator().Run(context.Background(), DefaultConfig(), tt.path)
			if err == nil {
				t.Fatal("Run succeeded")
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("error = %v, want %v", err, tt.wantIs)
			}
		})
	}
}

func TestOrchestrator_Inspect(t *testing.T) {
	h := newHarness()
	h.configure = func(e *mocks.Engine) {
		e.ValidateChecksumsFunc = func(_ []byte, full bool) bool { return !full }
	}
	h.fs.WriteFile("a.basis", container)

	result, err := h.orchestrator().Inspect(context.Background(), "a.basis", pipeline.ChecksumFull)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if result.ChecksumsOK {
		t.Error("ChecksumsOK = true for a failing full check")
	}
	if result.Checksums != pipeline.ChecksumFull {
		t.Errorf("Checksums = %s", result.Checksums)
	}
	if len(h.sinks) != 0 {
		t.Error("Inspect created an output sink")
	}
	if calls := h.engines[0].TranscodeCalls; len(calls) != 0 {
		t.Errorf("Inspect transcoded %d levels", len(calls))
	}
}

func TestOrchestrator_RunBatch(t *testing.T) {
	h := newHarness()
	var paths []string
	for i := 0; i < 5; i++ {
		p := fmt.Sprintf("in/tex%d.basis", i)
		h.fs.WriteFile(p, container)
		paths = append(paths, p)
	}
	paths = append(paths, "in/missing.basis")

	config := DefaultConfig()
	config.OutputDir = "out"
	config.Workers = 3

	results, err := h.orchestrator().RunBatch(context.Background(), config, paths)
	if err == nil {
		t.Fatal("expected an error for the missing input")
	}
	if len(results) != len(paths) {
		t.Fatalf("results = %d, want %d", len(results), len(paths))
	}
	for i, r := range results {
		if r.Path != paths[i] {
			t.Errorf("results[%d].Path = %s, want %s", i, r.Path, paths[i])
		}
		wantErr := i == len(paths)-1
		if (r.Err != nil) != wantErr {
			t.Errorf("results[%d].Err = %v", i, r.Err)
		}
	}
	if results[2].OutputDir != "out/tex2" {
		t.Errorf("OutputDir = %s, want out/tex2", results[2].OutputDir)
	}
	if len(h.engines) != 3 {
		t.Errorf("engines = %d, want one per worker", len(h.engines))
	}
	for _, e := range h.engines {
		if e.CloseCalls != 1 {
			t.Errorf("engine closed %d times", e.CloseCalls)
		}
	}
}

func TestOrchestrator_RunBatchFactoryError(t *testing.T) {
	h := newHarness()
	h.factErr = errors.New("no engine")
	config := DefaultConfig()
	config.Workers = 2

	results, err := h.orchestrator().RunBatch(context.Background(), config, []string{"a.basis", "b.basis", "c.basis"})
	if !errors.Is(err, h.factErr) {
		t.Errorf("error = %v, want %v", err, h.factErr)
	}
	for _, r := range results {
		if !errors.Is(r.Err, h.factErr) {
			t.Errorf("%s: Err = %v", r.Path, r.Err)
		}
	}
}

func TestOrchestrator_RunBatchEmpty(t *testing.T) {
	results, err := newHarness().orchestrator().RunBatch(context.Background(), DefaultConfig(), nil)
	if err != nil || len(results) != 0 {
		t.Errorf("RunBatch(nil) = %v, %v", results, err)
	}
}

func TestOrchestrator_RunBatchDuplicateStems(t *testing.T) {
	h := newHarness()
	paths := []string{"a/rock.basis", "b/rock.basis", "c/rock.basis.zst"}
	for _, p := range paths[:2] {
		h.fs.WriteFile(p, container)
	}
	zst, err := containerio.Wrap(container, containerio.WrappingZstd)
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	h.fs.WriteFile(paths[2], zst)

	config := DefaultConfig()
	config.OutputDir = "out"
	config.Workers = 2

	results, err := h.orchestrator().RunBatch(context.Background(), config, paths)
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	want := []string{"out/rock", "out/rock-2", "out/rock-3"}
	for i, r := range results {
		if r.OutputDir != want[i] {
			t.Errorf("results[%d].OutputDir = %s, want %s", i, r.OutputDir, want[i])
		}
	}
	if len(h.sinks) != 3 {
		t.Errorf("sinks = %d, want one per container", len(h.sinks))
	}
}

func TestBatchDirs(t *testing.T) {
	tests := []struct {
		paths []string
		want  []string
	}{
		{[]string{"a.basis", "b.basis"}, []string{"a", "b"}},
		{[]string{"x/a.basis", "y/a.basis.lz4", "a"}, []string{"a", "a-2", "a-3"}},
		{[]string{"a-2.basis", "a.basis", "z/a.basis"}, []string{"a-2", "a", "a-3"}},
		{nil, []string{}},
	}
	for _, tt := range tests {
		got := BatchDirs(tt.paths)
		if fmt.Sprint(got) != fmt.Sprint(tt.want) {
			t.Errorf("BatchDirs(%v) = %v, want %v", tt.paths, got, tt.want)
		}
	}
}

func TestStem(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"textures/rock.basis", "rock"},
		{"rock.basis.zst", "rock"},
		{"/abs/rock.basis.lz4", "rock"},
		{"noext", "noext"},
		{".basis", "container"},
	}
	for _, tt := range tests {
		if got := Stem(tt.path); got != tt.want {
			t.Errorf("Stem(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
