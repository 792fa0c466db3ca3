// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/user/basiskit/pkg/adapters/containerio"
	"github.com/user/basiskit/pkg/adapters/smartengine"
	"github.com/user/basiskit/pkg/basis"
	"github.com/user/basiskit/pkg/orchestrator"
	"github.com/user/basiskit/pkg/pipeline"
	"github.com/user/basiskit/pkg/ports"
)

// Config represents the full configuration for basiskit.
type Config struct {
	Engine    EngineConfig    `yaml:"engine"`
	Transcode TranscodeConfig `yaml:"transcode"`
	Output    OutputConfig    `yaml:"output"`
	Log       LogConfig       `yaml:"log"`

	// Workers is the number of containers processed in parallel.
	Workers int `yaml:"workers"`
}

// EngineConfig selects the transcoding backend.
type EngineConfig struct {
	Backend          string `yaml:"backend"`
	WasmModule       string `yaml:"wasm_module"`
	MemoryLimitPages uint32 `yaml:"memory_limit_pages"`
}

// TranscodeConfig selects what gets transcoded.
type TranscodeConfig struct {
	Formats []string `yaml:"formats"`
	// Images and Levels restrict the pass; empty means all.
	Images      []uint32 `yaml:"images"`
	Levels      []uint32 `yaml:"levels"`
	Checksums   string   `yaml:"checksums"`
	DecodeFlags []string `yaml:"decode_flags"`
}

// OutputConfig controls what gets written.
type OutputConfig struct {
	Dir           string `yaml:"dir"`
	WriteRaw      bool   `yaml:"write_raw"`
	Compression   string `yaml:"compression"`
	Previews      bool   `yaml:"previews"`
	PreviewFormat string `yaml:"preview_format"`
	ContactSheet  bool   `yaml:"contact_sheet"`
	FileInfoJSON  bool   `yaml:"file_info_json"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Engine: EngineConfig{
			Backend: string(smartengine.BackendAuto),
		},
		Transcode: TranscodeConfig{
			Formats:   []string{basis.TargetRGBA32.String()},
			Checksums: string(pipeline.ChecksumHeader),
		},
		Output: OutputConfig{
			Dir:           "out",
			WriteRaw:      true,
			Compression:   string(containerio.WrappingNone),
			PreviewFormat: ports.FormatPNG.String(),
			FileInfoJSON:  true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: string(ports.LogFormatConsole),
		},
		Workers: runtime.NumCPU(),
	}
}

// LoadFromFile loads configuration from a YAML file. Keys absent from the
// file keep their defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// decodeFlagNames maps configuration names to decode flags.
var decodeFlagNames = map[string]basis.DecodeFlags{
	"pvrtc_next_pow2":          basis.DecodeFlagPVRTCDecodeToNextPow2,
	"alpha_to_opaque":          basis.DecodeFlagTranscodeAlphaDataToOpaqueFormats,
	"bc1_forbid_three_color":   basis.DecodeFlagBC1ForbidThreeColorBlocks,
	"output_has_alpha_indices": basis.DecodeFlagOutputHasAlphaIndices,
	"high_quality":             basis.DecodeFlagHighQuality,
}

// ParseDecodeFlags combines named decode flags.
func ParseDecodeFlags(names []string) (basis.DecodeFlags, error) {
	var flags basis.DecodeFlags
	for _, name := range names {
		f, ok := decodeFlagNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return 0, fmt.Errorf("unknown decode flag %q", name)
		}
		flags |= f
	}
	return flags, nil
}

// ParseFormats parses target format names. "all" selects every format.
func ParseFormats(names []string) ([]basis.TargetFormat, error) {
	var formats []basis.TargetFormat
	for _, name := range names {
		if strings.EqualFold(name, "all") {
			return basis.AllTargetFormats(), nil
		}
		f, err := basis.ParseTargetFormat(name)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if _, err := smartengine.ParseBackend(c.Engine.Backend); err != nil {
		errs = append(errs, err)
	}
	if c.Engine.Backend == string(smartengine.BackendWasm) && c.Engine.WasmModule == "" {
		errs = append(errs, errors.New("engine.wasm_module is required for the wasm backend"))
	}
	if len(c.Transcode.Formats) == 0 {
		errs = append(errs, errors.New("transcode.formats is empty"))
	} else if _, err := ParseFormats(c.Transcode.Formats); err != nil {
		errs = append(errs, err)
	}
	if _, err := pipeline.ParseChecksumMode(c.Transcode.Checksums); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseDecodeFlags(c.Transcode.DecodeFlags); err != nil {
		errs = append(errs, err)
	}
	if c.Output.Dir == "" {
		errs = append(errs, errors.New("output.dir is empty"))
	}
	if _, err := containerio.ParseWrapping(c.Output.Compression); err != nil {
		errs = append(errs, err)
	}
	switch c.Output.PreviewFormat {
	case "", "png", "bmp", "tiff", "tif":
	default:
		errs = append(errs, fmt.Errorf("unknown preview format %q", c.Output.PreviewFormat))
	}
	if _, err := ports.LookupLogLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch ports.LogFormat(c.Log.Format) {
	case "", ports.LogFormatConsole, ports.LogFormatJSON:
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	return errors.Join(errs...)
}

// ToOrchestratorConfig converts Config to orchestrator.Config. Call
// Validate first; names that fail to parse are dropped here.
func (c Config) ToOrchestratorConfig() orchestrator.Config {
	formats, _ := ParseFormats(c.Transcode.Formats)
	checksums, _ := pipeline.ParseChecksumMode(c.Transcode.Checksums)
	flags, _ := ParseDecodeFlags(c.Transcode.DecodeFlags)

	return orchestrator.Config{
		OutputDir: c.Output.Dir,
		Checksums: checksums,

		Formats:     formats,
		Images:      nilIfEmpty(c.Transcode.Images),
		Levels:      nilIfEmpty(c.Transcode.Levels),
		DecodeFlags: flags,

		WriteRaw:     c.Output.WriteRaw,
		Previews:     c.Output.Previews,
		ContactSheet: c.Output.ContactSheet,
		FileInfoJSON: c.Output.FileInfoJSON,

		Workers: c.Workers,
	}
}

// EngineOptions converts the engine section to smartengine options.
func (c Config) EngineOptions() smartengine.Options {
	backend, _ := smartengine.ParseBackend(c.Engine.Backend)
	return smartengine.Options{
		Backend:              backend,
		WasmModulePath:       c.Engine.WasmModule,
		WasmMemoryLimitPages: c.Engine.MemoryLimitPages,
	}
}

func nilIfEmpty(s []uint32) []uint32 {
	if len(s) == 0 {
		return nil
	}
	return s
}
