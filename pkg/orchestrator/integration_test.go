package orchestrator_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/basiskit/pkg/adapters/basisgo"
	"github.com/user/basiskit/pkg/adapters/containerio"
	"github.com/user/basiskit/pkg/adapters/filesink"
	"github.com/user/basiskit/pkg/adapters/ggrenderer"
	"github.com/user/basiskit/pkg/adapters/logger"
	"github.com/user/basiskit/pkg/adapters/osfilesystem"
	"github.com/user/basiskit/pkg/basis"
	"github.com/user/basiskit/pkg/orchestrator"
	"github.com/user/basiskit/pkg/pipeline"
	"github.com/user/basiskit/pkg/ports"
)

// newOrchestrator wires the pure-Go engine with real file output.
func newOrchestrator() *orchestrator.Orchestrator {
	fs := osfilesystem.New()
	renderer := ggrenderer.New()
	log := logger.NewNoop()
	return orchestrator.New(
		func(context.Context) (*basis.Transcoder, error) {
			return basis.New(basisgo.New(log), basis.WithLogger(log)), nil
		},
		func(dir string) ports.LevelSink { return filesink.New(dir, fs, renderer) },
		fs,
		renderer,
		log,
	)
}

func writeContainer(t *testing.T, name string, w containerio.Wrapping) string {
	t.Helper()
	data := basisgo.NewBuilder(0).AddImage(64, 32, 4).AddImage(16, 16, 2).Build()
	wrapped, err := containerio.Wrap(data, w)
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, wrapped, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestIntegration_InspectWrapped(t *testing.T) {
	for _, w := range []containerio.Wrapping{containerio.WrappingNone, containerio.WrappingZstd, containerio.WrappingLZ4} {
		t.Run(string(w), func(t *testing.T) {
			path := writeContainer(t, "tex.basis"+w.Extension(), w)

			r, err := newOrchestrator().Inspect(context.Background(), path, pipeline.ChecksumFull)
			if err != nil {
				t.Fatalf("Inspect: %v", err)
			}
			if r.Wrapping != w {
				t.Errorf("Wrapping = %s, want %s", r.Wrapping, w)
			}
			if !r.ChecksumsOK {
				t.Error("checksums failed on a freshly built container")
			}
			if r.Info.TotalImages != 2 || len(r.Info.ImageMipmapLevels) != 2 || r.Info.ImageMipmapLevels[0] != 4 {
				t.Errorf("info = %+v", r.Info)
			}
			if !r.Info.ETC1S() {
				t.Errorf("format = %s", r.Info.Format)
			}
		})
	}
}

func TestIntegration_RunWritesFileInfo(t *testing.T) {
	path := writeContainer(t, "tex.basis", containerio.WrappingNone)
	outDir := filepath.Join(t.TempDir(), "out")

	config := orchestrator.DefaultConfig()
	config.OutputDir = outDir
	config.Formats = []basis.TargetFormat{basis.TargetRGBA4444}

	r, err := newOrchestrator().Run(context.Background(), config, path)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(r.Skipped) != 1 || !errors.Is(r.Skipped[0].Reason, basis.ErrRGBA4444Unsupported) {
		t.Errorf("skipped = %+v", r.Skipped)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "fileinfo.json"))
	if err != nil {
		t.Fatalf("fileinfo.json: %v", err)
	}
	var info basis.FileInfo
	if err := json.Unmarshal(data, &info); err != nil {
		t.Fatalf("decode fileinfo.json: %v", err)
	}
	if info.TotalImages != 2 || info.FormatName != "etc1s" {
		t.Errorf("fileinfo.json = %+v", info)
	}
}

func TestIntegration_CodeclessEngineFails(t *testing.T) {
	path := writeContainer(t, "tex.basis", containerio.WrappingNone)

	config := orchestrator.DefaultConfig()
	config.OutputDir = t.TempDir()
	config.Formats = []basis.TargetFormat{basis.TargetBC7RGBA}

	_, err := newOrchestrator().Run(context.Background(), config, path)
	if !errors.Is(err, basis.ErrDecodeFailed) {
		t.Errorf("Run error = %v, want ErrDecodeFailed", err)
	}
}
