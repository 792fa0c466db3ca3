// Package orchestrator coordinates all pipeline stages.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ideamans/go-l10n"

	"github.com/user/basiskit/pkg/adapters/containerio"
	"github.com/user/basiskit/pkg/basis"
	"github.com/user/basiskit/pkg/pipeline"
	"github.com/user/basiskit/pkg/ports"
	"github.com/user/basiskit/pkg/stages/export"
	"github.com/user/basiskit/pkg/stages/inspect"
	"github.com/user/basiskit/pkg/stages/transcode"
)

// Config contains all configuration for the orchestrator.
type Config struct {
	// Output
	OutputDir string

	// Validation
	Checksums pipeline.ChecksumMode

	// Selection; nil Images or Levels means all.
	Formats     []basis.TargetFormat
	Images      []uint32
	Levels      []uint32
	DecodeFlags basis.DecodeFlags

	// Export
	WriteRaw     bool
	Previews     bool
	ContactSheet bool
	FileInfoJSON bool

	// Workers is the number of containers processed in parallel by RunBatch.
	Workers int
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		OutputDir:    "out",
		Checksums:    pipeline.ChecksumHeader,
		Formats:      []basis.TargetFormat{basis.TargetRGBA32},
		WriteRaw:     true,
		FileInfoJSON: true,
		Workers:      1,
	}
}

// TranscoderFactory creates a Transcoder with its own engine. Each worker
// owns the Transcoder it is given and closes it when done.
type TranscoderFactory func(ctx context.Context) (*basis.Transcoder, error)

// SinkFactory creates the LevelSink writing into dir.
type SinkFactory func(dir string) ports.LevelSink

// Orchestrator coordinates the execution of all pipeline stages.
type Orchestrator struct {
	newTranscoder TranscoderFactory
	newSink       SinkFactory
	fs            ports.FileSystem
	renderer      ports.Renderer
	logger        ports.Logger
}

// New creates a new Orchestrator.
func New(
	newTranscoder TranscoderFactory,
	newSink SinkFactory,
	fs ports.FileSystem,
	renderer ports.Renderer,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		newTranscoder: newTranscoder,
		newSink:       newSink,
		fs:            fs,
		renderer:      renderer,
		logger:        logger,
	}
}

// RunResult contains the results of one container for summary generation.
type RunResult struct {
	Path      string
	OutputDir string

	Wrapping    containerio.Wrapping
	FileBytes   int64
	BasisBytes  int64
	Info        basis.FileInfo
	Checksums   pipeline.ChecksumMode
	ChecksumsOK bool

	Levels            []pipeline.TranscodedLevel
	Skipped           []pipeline.SkippedFormat
	TranscodedBytes   int64
	TranscodeDuration time.Duration

	Export pipeline.ExportResult

	// Err is set by RunBatch for containers that failed.
	Err error
}

// Inspect loads a container and runs only the inspect stage.
func (o *Orchestrator) Inspect(ctx context.Context, path string, mode pipeline.ChecksumMode) (RunResult, error) {
	tr, err := o.newTranscoder(ctx)
	if err != nil {
		return RunResult{}, fmt.Errorf("create transcoder: %w", err)
	}
	defer tr.Close()

	result, _, err := o.inspect(ctx, tr, path, mode)
	return result, err
}

// Run executes the complete pipeline for one container, writing into
// config.OutputDir.
func (o *Orchestrator) Run(ctx context.Context, config Config, path string) (RunResult, error) {
	o.logger.Info(l10n.T("Starting pipeline"))

	tr, err := o.newTranscoder(ctx)
	if err != nil {
		return RunResult{}, fmt.Errorf("create transcoder: %w", err)
	}
	defer tr.Close()

	result, err := o.run(ctx, tr, config, path, config.OutputDir)
	if err != nil {
		return result, err
	}
	o.logger.Info(l10n.T("Pipeline completed successfully"))
	return result, nil
}

// RunBatch processes several containers with config.Workers workers. Each
// container is written into its own subdirectory of config.OutputDir, named
// by BatchDirs.
// Results keep the order of paths; failures are recorded per result and
// joined into the returned error.
func (o *Orchestrator) RunBatch(ctx context.Context, config Config, paths []string) ([]RunResult, error) {
	if len(paths) == 0 {
		return []RunResult{}, nil
	}
	numWorkers := config.Workers
	if numWorkers < 1 {
		numWorkers = 1
	}
	if numWorkers > len(paths) {
		numWorkers = len(paths)
	}
	o.logger.Info(l10n.F("Processing %d files with %d workers", len(paths), numWorkers))

	dirs := BatchDirs(paths)
	jobs := make(chan int, len(paths))
	results := make(chan indexedResult, len(paths))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go o.worker(ctx, &wg, config, paths, dirs, jobs, results)
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	collected := make([]indexedResult, 0, len(paths))
	for r := range results {
		collected = append(collected, r)
	}
	sort.Slice(collected, func(i, j int) bool {
		return collected[i].index < collected[j].index
	})

	out := make([]RunResult, len(collected))
	var errs []error
	for i, r := range collected {
		out[i] = r.result
		if r.result.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.result.Path, r.result.Err))
		}
	}
	return out, errors.Join(errs...)
}

// indexedResult holds a result with its position in the batch.
type indexedResult struct {
	index  int
	result RunResult
}

// worker owns one Transcoder for its whole lifetime.
func (o *Orchestrator) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	config Config,
	paths, dirs []string,
	jobs <-chan int,
	results chan<- indexedResult,
) {
	defer wg.Done()

	tr, err := o.newTranscoder(ctx)
	if err != nil {
		err = fmt.Errorf("create transcoder: %w", err)
		for idx := range jobs {
			results <- indexedResult{index: idx, result: RunResult{Path: paths[idx], Err: err}}
		}
		return
	}
	defer tr.Close()

	for idx := range jobs {
		path := paths[idx]
		if err := ctx.Err(); err != nil {
			results <- indexedResult{index: idx, result: RunResult{Path: path, Err: err}}
			continue
		}
		r, err := o.run(ctx, tr, config, path, filepath.Join(config.OutputDir, dirs[idx]))
		r.Path = path
		r.Err = err
		results <- indexedResult{index: idx, result: r}
	}
}

// inspect loads path and validates it. The unwrapped container bytes are
// returned for the following stages.
func (o *Orchestrator) inspect(ctx context.Context, tr *basis.Transcoder, path string, mode pipeline.ChecksumMode) (RunResult, []byte, error) {
	result := RunResult{Path: path, Checksums: mode}

	o.logger.Info(l10n.F("Processing %s", path))
	raw, err := o.fs.ReadFile(path)
	if err != nil {
		o.logger.Error(l10n.F("Failed to read %s: %s", path, err))
		return result, nil, fmt.Errorf("read input: %w", err)
	}
	data, wrapping, err := containerio.Unwrap(raw)
	if err != nil {
		o.logger.Error(l10n.F("Failed to read %s: %s", path, err))
		return result, nil, fmt.Errorf("unwrap input: %w", err)
	}
	if wrapping != containerio.WrappingNone {
		o.logger.Info(l10n.F("Unwrapped %s container: %d -> %d bytes", wrapping, len(raw), len(data)))
	}
	result.Wrapping = wrapping
	result.FileBytes = int64(len(raw))
	result.BasisBytes = int64(len(data))

	inspected, err := pipeline.Run[pipeline.InspectInput, pipeline.InspectResult](ctx, inspect.NewStage(tr, o.logger), pipeline.InspectInput{Data: data, Checksums: mode})
	if err != nil {
		return result, nil, fmt.Errorf("inspect stage: %w", err)
	}
	result.Info = inspected.Info
	result.ChecksumsOK = inspected.ChecksumsValid
	o.logger.Info(l10n.F("Container: %s, %d images, texture type %s",
		inspected.Info.Format, inspected.Info.TotalImages, inspected.Info.TextureType))
	return result, data, nil
}

func (o *Orchestrator) run(ctx context.Context, tr *basis.Transcoder, config Config, path, outDir string) (RunResult, error) {
	result, data, err := o.inspect(ctx, tr, path, config.Checksums)
	if err != nil {
		return result, err
	}
	result.OutputDir = outDir

	o.logger.Info(l10n.F("Transcoding to %d formats", len(config.Formats)))
	transcoded, err := pipeline.Run[pipeline.TranscodeInput, pipeline.TranscodeResult](ctx, transcode.NewStage(tr, o.logger), pipeline.TranscodeInput{
		Data:        data,
		Formats:     config.Formats,
		Images:      config.Images,
		Levels:      config.Levels,
		DecodeFlags: config.DecodeFlags,
	})
	if err != nil {
		o.logger.Error(l10n.F("Failed to transcode %s: %s", path, err))
		return result, fmt.Errorf("transcode stage: %w", err)
	}
	result.Levels = transcoded.Levels
	result.Skipped = transcoded.Skipped
	result.TranscodedBytes = transcoded.TotalBytes()
	result.TranscodeDuration = transcoded.Duration
	o.logger.Info(l10n.F("Transcoded %d levels (%d bytes) in %d ms",
		len(transcoded.Levels), result.TranscodedBytes, transcoded.Duration.Milliseconds()))

	sink := o.newSink(outDir)
	exported, err := pipeline.Run[pipeline.ExportInput, pipeline.ExportResult](ctx, export.NewStage(o.renderer, sink, o.logger), pipeline.ExportInput{
		Info:         result.Info,
		Levels:       transcoded.Levels,
		WriteRaw:     config.WriteRaw,
		Previews:     config.Previews,
		ContactSheet: config.ContactSheet,
		FileInfoJSON: config.FileInfoJSON,
	})
	if err != nil {
		o.logger.Error(l10n.F("Failed to write output: %s", err))
		return result, fmt.Errorf("export stage: %w", err)
	}
	result.Export = exported
	if sink.Enabled() {
		o.logger.Info(l10n.F("Output saved to %s", outDir))
	}
	return result, nil
}

// BatchDirs returns the output subdirectory of each path. Paths sharing a
// Stem get a numeric suffix in order of appearance, so rock.basis from two
// directories becomes rock and rock-2.
func BatchDirs(paths []string) []string {
	used := make(map[string]bool, len(paths))
	dirs := make([]string, len(paths))
	for i, path := range paths {
		name := Stem(path)
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s-%d", Stem(path), n)
		}
		used[name] = true
		dirs[i] = name
	}
	return dirs
}

// Stem returns the base name of path without the container and wrapping
// extensions, e.g. "textures/rock.basis.zst" gives "rock".
func Stem(path string) string {
	name := filepath.Base(path)
	for _, ext := range []string{".zst", ".lz4", ".basis"} {
		name = strings.TrimSuffix(name, ext)
	}
	if name == "" {
		return "container"
	}
	return name
}
