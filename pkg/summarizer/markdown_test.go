package summarizer

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/user/basiskit/pkg/mocks"
)

func sampleSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Engine:      EngineInfo{Backend: "native", CanDecode: true},
		Settings: Settings{
			Formats:   []string{"bc1_rgb", "atc_rgb"},
			Checksums: "full",
			OutputDir: "out",
			Workers:   2,
		},
		Containers: []ContainerInfo{{
			Path:        "textures/rock.basis.zst",
			OutputDir:   "out/rock",
			Wrapping:    "zstd",
			FileBytes:   512 * 1024,
			BasisBytes:  1024 * 1024,
			Format:      "uastc",
			TextureType: "2d",
			Images:      []ImageInfo{{Index: 0, Width: 2048, Height: 1024, Levels: 12}},
			Checksums:   "full",
			ChecksumsOK: true,
			Outputs:     []FormatOutput{{Format: "bc1_rgb", Levels: 12, Bytes: 1536}},
			Skipped:     []SkippedInfo{{Format: "atc_rgb", Reason: "not supported for UASTC"}},
			TranscodeMs: 42,
			RawFiles:    12,
		}},
	}
}

func TestMarkdownFormatter_Format_Basic(t *testing.T) {
	result := NewMarkdownFormatter().Format(sampleSummary())

	checks := []string{
		"# Transcode Summary",
		"2024-01-15 10:30:00 UTC",
		"native",
		"bc1_rgb, atc_rgb",
		"## textures/rock.basis.zst",
		"| Format | uastc |",
		"zstd (512.00 KB → 1.00 MB)",
		"| Checksums (full) | OK |",
		"42 ms",
		"| 0 | 2048x1024 | 12 |",
		"| bc1_rgb | 12 | 1.50 KB |",
		"- atc_rgb: not supported for UASTC",
		"12 raw files",
	}
	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected output to contain %q", check)
		}
	}
}

func TestMarkdownFormatter_Checksums(t *testing.T) {
	tests := []struct {
		mode string
		ok   bool
		want string
	}{
		{"header", true, "| Checksums (header) | OK |"},
		{"full", false, "| Checksums (full) | Mismatch |"},
		{"none", false, "| Checksums (none) | not checked |"},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			s := sampleSummary()
			s.Containers[0].Checksums = tt.mode
			s.Containers[0].ChecksumsOK = tt.ok
			if result := NewMarkdownFormatter().Format(s); !strings.Contains(result, tt.want) {
				t.Errorf("expected output to contain %q", tt.want)
			}
		})
	}
}

func TestMarkdownFormatter_FailedContainer(t *testing.T) {
	s := sampleSummary()
	s.Containers = append(s.Containers, ContainerInfo{Path: "broken.basis", Error: "invalid container"})

	result := NewMarkdownFormatter().Format(s)
	if !strings.Contains(result, "**Failed**: invalid container") {
		t.Error("expected failure line")
	}
	if !strings.Contains(result, "Containers: 2 (failed: 1)") {
		t.Error("expected container totals")
	}
	tail := result[strings.Index(result, "## broken.basis"):]
	if strings.Contains(tail, "| Property |") {
		t.Error("failed container without metadata rendered a property table")
	}
}

func TestMarkdownFormatter_Uncompressed(t *testing.T) {
	s := sampleSummary()
	s.Containers[0].Wrapping = "none"
	result := NewMarkdownFormatter().Format(s)
	if !strings.Contains(result, "| Size | 1.00 MB |") {
		t.Error("expected plain size row")
	}
	if strings.Contains(result, "| Compression |") {
		t.Error("compression row for an uncompressed input")
	}
}

func TestMarkdownFormatter_WithTranslator(t *testing.T) {
	translator := func(key string) string {
		translations := map[string]string{
			"Transcode Summary": "トランスコードサマリー",
			"Outputs":           "出力",
			"Skipped formats":   "スキップした形式",
		}
		if v, ok := translations[key]; ok {
			return v
		}
		return key
	}

	result := NewMarkdownFormatter(WithTranslator(translator)).Format(sampleSummary())

	for _, want := range []string{"トランスコードサマリー", "### 出力", "### スキップした形式"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected translated %q", want)
		}
	}
}

func TestMarkdownFormatter_WithVersion(t *testing.T) {
	result := NewMarkdownFormatter(WithVersion("v1.2.0")).Format(sampleSummary())
	if !strings.Contains(result, "v1.2.0") {
		t.Error("expected output to contain version 'v1.2.0'")
	}
	if strings.Contains(NewMarkdownFormatter().Format(sampleSummary()), "Generated by") {
		t.Error("footer written without a version")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{100, "100 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1024 * 1024, "1.00 MB"},
		{1024 * 1024 * 1024, "1.00 GB"},
		{1536 * 1024 * 1024, "1.50 GB"},
		{4096 * 1024 * 1024 * 1024, "4096.00 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := formatBytes(tt.bytes)
			if got != tt.want {
				t.Errorf("formatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestJSONFormatter(t *testing.T) {
	out := JSONFormatter.Format(sampleSummary())

	var decoded Summary
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(decoded.Containers) != 1 || decoded.Containers[0].Format != "uastc" {
		t.Errorf("decoded = %+v", decoded.Containers)
	}
	if decoded.Engine.Backend != "native" {
		t.Errorf("engine = %+v", decoded.Engine)
	}
}

func TestWriter_Write(t *testing.T) {
	fs := mocks.NewFileSystem()
	w := NewWriter(NewMarkdownFormatter(), fs)

	if err := w.Write("out/reports/summary.md", sampleSummary()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, ok := fs.GetFile("out/reports/summary.md")
	if !ok || !strings.HasPrefix(string(data), "# Transcode Summary") {
		t.Errorf("summary not written: %q", data)
	}
	if !fs.HasDir("out/reports") {
		t.Error("parent directory not created")
	}
}

func TestWriter_WriteError(t *testing.T) {
	errDisk := errors.New("disk full")
	fs := mocks.NewFileSystem()
	fs.WriteFileFunc = func(string, []byte) error { return errDisk }

	err := NewWriter(JSONFormatter, fs).Write("summary.json", sampleSummary())
	if !errors.Is(err, errDisk) {
		t.Errorf("Write() = %v, want %v", err, errDisk)
	}
}

func TestWriter_WriteStdout(t *testing.T) {
	fs := mocks.NewFileSystem()
	var buf bytes.Buffer
	w := NewWriter(FormatFunc(func(*Summary) string { return "no newline" }), fs, WithStdout(&buf))

	if err := w.Write(StdoutPath, sampleSummary()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.String() != "no newline\n" {
		t.Errorf("stdout = %q", buf.String())
	}
	if len(fs.GetAllFiles()) != 0 {
		t.Error("stdout summary also written to the filesystem")
	}
}

func TestWriter_MkdirError(t *testing.T) {
	errPerm := errors.New("permission denied")
	fs := mocks.NewFileSystem()
	fs.MkdirAllFunc = func(string) error { return errPerm }

	err := NewWriter(JSONFormatter, fs).Write("reports/summary.json", sampleSummary())
	if !errors.Is(err, errPerm) || !strings.Contains(err.Error(), "reports") {
		t.Errorf("Write() = %v", err)
	}
}
