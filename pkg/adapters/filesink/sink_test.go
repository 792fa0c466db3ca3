package filesink

import (
	"bytes"
	"image"
	"path/filepath"
	"testing"

	"github.com/user/basiskit/pkg/adapters/containerio"
	"github.com/user/basiskit/pkg/mocks"
	"github.com/user/basiskit/pkg/ports"
)

// testBaseDir is a platform-independent base directory for tests
var testBaseDir = filepath.Join("out", "tex")

func TestSink_Enabled(t *testing.T) {
	sink := New(testBaseDir, mocks.NewFileSystem(), &mocks.Renderer{})
	if !sink.Enabled() {
		t.Error("expected Enabled to return true")
	}
}

func TestSink_SaveLevel(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, &mocks.Renderer{})

	key := ports.LevelKey{Image: 1, Level: 3, Format: "bc7_rgba"}
	data := []byte{1, 2, 3, 4}
	if err := sink.SaveLevel(key, data); err != nil {
		t.Fatalf("SaveLevel failed: %v", err)
	}

	expectedPath := filepath.Join(testBaseDir, "levels", "image-001", "level-03.bc7_rgba.bin")
	saved, ok := fs.GetFile(expectedPath)
	if !ok {
		t.Fatalf("expected file to be saved at %s", expectedPath)
	}
	if !bytes.Equal(saved, data) {
		t.Errorf("expected %v, got %v", data, saved)
	}
}

func TestSink_SaveLevelCompressed(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, &mocks.Renderer{}, WithCompression(containerio.WrappingZstd))

	key := ports.LevelKey{Image: 0, Level: 0, Format: "rgba32"}
	data := bytes.Repeat([]byte{0xAB}, 4096)
	if err := sink.SaveLevel(key, data); err != nil {
		t.Fatalf("SaveLevel failed: %v", err)
	}

	path := sink.LevelPath(key)
	if filepath.Ext(path) != ".zst" {
		t.Errorf("path %s has no .zst suffix", path)
	}
	saved, ok := fs.GetFile(path)
	if !ok {
		t.Fatalf("expected file to be saved at %s", path)
	}
	got, w, err := containerio.Unwrap(saved)
	if err != nil || w != containerio.WrappingZstd || !bytes.Equal(got, data) {
		t.Errorf("Unwrap = %d bytes, %s, %v", len(got), w, err)
	}
}

func TestSink_SavePreview(t *testing.T) {
	fs := mocks.NewFileSystem()
	renderer := &mocks.Renderer{}
	sink := New(testBaseDir, fs, renderer, WithPreviewFormat(ports.FormatBMP))

	key := ports.LevelKey{Image: 0, Level: 2, Format: "rgb565"}
	if err := sink.SavePreview(key, image.NewNRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("SavePreview failed: %v", err)
	}

	expectedPath := filepath.Join(testBaseDir, "previews", "image-000", "level-02.rgb565.bmp")
	if _, ok := fs.GetFile(expectedPath); !ok {
		t.Errorf("expected file to be saved at %s", expectedPath)
	}
	if len(renderer.Encoded) != 1 || renderer.Encoded[0] != ports.FormatBMP {
		t.Errorf("encoded formats = %v", renderer.Encoded)
	}
}

func TestSink_SaveContactSheet(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, &mocks.Renderer{})

	if err := sink.SaveContactSheet(2, "bc1_rgb", image.NewNRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatalf("SaveContactSheet failed: %v", err)
	}

	expectedPath := filepath.Join(testBaseDir, "contact", "image-002.bc1_rgb.png")
	if _, ok := fs.GetFile(expectedPath); !ok {
		t.Errorf("expected file to be saved at %s", expectedPath)
	}
}

func TestSink_SaveFileInfo(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, &mocks.Renderer{})

	data := []byte(`{"version": 19}`)
	if err := sink.SaveFileInfo(data); err != nil {
		t.Fatalf("SaveFileInfo failed: %v", err)
	}

	expectedPath := filepath.Join(testBaseDir, "fileinfo.json")
	saved, ok := fs.GetFile(expectedPath)
	if !ok {
		t.Fatalf("expected file to be saved at %s", expectedPath)
	}
	if string(saved) != string(data) {
		t.Errorf("expected %q, got %q", data, saved)
	}
}
