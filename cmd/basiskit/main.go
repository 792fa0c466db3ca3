// Package main provides the CLI entry point for basiskit.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"

	"github.com/user/basiskit/pkg/adapters/basiswasm"
	"github.com/user/basiskit/pkg/adapters/containerio"
	"github.com/user/basiskit/pkg/adapters/filesink"
	"github.com/user/basiskit/pkg/adapters/ggrenderer"
	"github.com/user/basiskit/pkg/adapters/logger"
	"github.com/user/basiskit/pkg/adapters/nullsink"
	"github.com/user/basiskit/pkg/adapters/osfilesystem"
	"github.com/user/basiskit/pkg/adapters/smartengine"
	"github.com/user/basiskit/pkg/basis"
	"github.com/user/basiskit/pkg/config"
	"github.com/user/basiskit/pkg/orchestrator"
	"github.com/user/basiskit/pkg/pipeline"
	"github.com/user/basiskit/pkg/ports"
	"github.com/user/basiskit/pkg/summarizer"
)

// CLI defines the command-line interface with subcommands.
type CLI struct {
	Info      InfoCmd      `cmd:"" help:"Show container metadata."`
	Validate  ValidateCmd  `cmd:"" help:"Check container headers and checksums."`
	Transcode TranscodeCmd `cmd:"" help:"Transcode containers to GPU texture formats."`
	Version   VersionCmd   `cmd:"" help:"Show version information."`
}

// CommonFlags are shared by every command that opens containers.
type CommonFlags struct {
	Config string `short:"C" type:"path" help:"YAML configuration file."`

	// Engine options (override the config file)
	Engine     *string `short:"e" help:"Engine backend (auto, native, wasm, go)."`
	WasmModule *string `type:"path" help:"Path to the transcoder WebAssembly module."`

	// Logging options
	LogLevel  *string `short:"l" help:"Log level (debug, info, warn, error)."`
	LogFormat *string `help:"Log format (console, json)."`
	Quiet     bool    `short:"Q" help:"Suppress all log output."`
}

// InfoCmd prints container metadata.
type InfoCmd struct {
	CommonFlags `embed:""`

	Paths     []string `arg:"" help:"Containers or glob patterns."`
	Checksums *string  `help:"Checksum validation (none, header, full)."`
	JSON      bool     `help:"Print the full container description as JSON."`
}

// ValidateCmd checks containers without transcoding them.
type ValidateCmd struct {
	CommonFlags `embed:""`

	Paths     []string `arg:"" help:"Containers or glob patterns."`
	Checksums string   `default:"full" enum:"header,full" help:"Checksum validation (header, full)."`
}

// TranscodeCmd transcodes containers and writes the results.
type TranscodeCmd struct {
	CommonFlags `embed:""`

	Paths []string `arg:"" help:"Containers or glob patterns."`

	// Selection
	Formats     []string `short:"f" help:"Target formats, comma separated, or 'all'."`
	Images      []uint32 `help:"Image indices to transcode (default: all)."`
	Levels      []uint32 `help:"Mip levels to transcode (default: all)."`
	Checksums   *string  `help:"Checksum validation (none, header, full)."`
	DecodeFlags []string `help:"Decode flags (pvrtc_next_pow2, alpha_to_opaque, bc1_forbid_three_color, output_has_alpha_indices, high_quality)."`

	// Output
	Output        *string `short:"o" type:"path" help:"Output directory."`
	NoRaw         bool    `help:"Do not write raw level files."`
	Compression   *string `help:"Compression of raw level files (none, zstd, lz4)."`
	Previews      bool    `short:"p" help:"Write decoded previews of levels."`
	PreviewFormat *string `help:"Preview image format (png, bmp, tiff)."`
	ContactSheet  bool    `help:"Write a mip chain contact sheet per image and format."`
	NoFileInfo    bool    `help:"Do not write fileinfo.json."`
	DryRun        bool    `short:"n" help:"Transcode without writing any output."`

	// Performance
	Workers *int `short:"w" help:"Number of containers processed in parallel."`

	// Summary
	Summary       string `help:"Output execution summary to file, or - for stdout."`
	SummaryFormat string `default:"markdown" enum:"markdown,json" help:"Summary format (markdown, json)."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

var version = "dev"

func main() {
	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("basiskit"),
		kong.Description(l10n.T("Inspect and transcode .basis texture containers.")),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// app holds the adapters shared by a command run.
type app struct {
	cfg config.Config
	log ports.Logger
	fs  *osfilesystem.FileSystem

	engineOnce sync.Once
	engineInfo smartengine.Info
}

// load builds the configuration from the file, then the flags.
func (f *CommonFlags) load(apply func(*config.Config)) (config.Config, error) {
	cfg := config.Defaults()
	if f.Config != "" {
		var err error
		if cfg, err = config.LoadFromFile(f.Config); err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
	}
	if f.Engine != nil {
		cfg.Engine.Backend = *f.Engine
	}
	if f.WasmModule != nil {
		cfg.Engine.WasmModule = *f.WasmModule
	}
	if f.LogLevel != nil {
		cfg.Log.Level = *f.LogLevel
	}
	if f.LogFormat != nil {
		cfg.Log.Format = *f.LogFormat
	}
	if f.Quiet {
		cfg.Log.Level = "quiet"
	}
	if apply != nil {
		apply(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (f *CommonFlags) setup(apply func(*config.Config)) (*app, error) {
	cfg, err := f.load(apply)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(ports.ParseLogLevel(cfg.Log.Level), ports.LogFormat(cfg.Log.Format))
	if err != nil {
		return nil, err
	}
	if z, ok := log.(*logger.ZapLogger); ok {
		basiswasm.SetLogger(z.Zap().Named("basiswasm"))
	}
	return &app{cfg: cfg, log: log, fs: osfilesystem.New()}, nil
}

// newTranscoder creates a Transcoder on the configured engine.
func (a *app) newTranscoder(ctx context.Context) (*basis.Transcoder, error) {
	opts := a.cfg.EngineOptions()
	opts.FileSystem = a.fs
	opts.Logger = a.log
	engine, info, err := smartengine.New(ctx, opts)
	if err != nil {
		return nil, err
	}
	a.engineOnce.Do(func() {
		a.engineInfo = info
		a.log.Info(l10n.F("Using %s engine", info.Backend))
		if !info.CanDecode {
			a.log.Warn(l10n.T("This engine reads metadata only; transcoding will fail"))
		}
	})
	return basis.New(engine, basis.WithLogger(a.log)), nil
}

func (a *app) orchestrator(newSink orchestrator.SinkFactory) *orchestrator.Orchestrator {
	if newSink == nil {
		newSink = func(string) ports.LevelSink { return nullsink.New() }
	}
	return orchestrator.New(a.newTranscoder, newSink, a.fs, ggrenderer.New(), a.log)
}

// expand resolves glob patterns. Plain paths are kept as given.
func (a *app) expand(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[") {
			paths = append(paths, arg)
			continue
		}
		matches, err := a.fs.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("expand %s: %w", arg, err)
		}
		if len(matches) == 0 {
			a.log.Warn(l10n.F("No files match %s", arg))
		}
		paths = append(paths, matches...)
	}
	if len(paths) == 0 {
		return nil, errors.New(l10n.T("No input files"))
	}
	return paths, nil
}

// signalContext cancels on SIGINT or SIGTERM.
func signalContext(log ports.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn(l10n.T("Interrupted, shutting down..."))
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// Run executes the info command.
func (cmd *InfoCmd) Run() error {
	a, err := cmd.setup(func(c *config.Config) {
		if cmd.Checksums != nil {
			c.Transcode.Checksums = *cmd.Checksums
		}
	})
	if err != nil {
		return err
	}
	defer logger.Sync(a.log)
	paths, err := a.expand(cmd.Paths)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(a.log)
	defer cancel()

	mode, _ := pipeline.ParseChecksumMode(a.cfg.Transcode.Checksums)
	orch := a.orchestrator(nil)
	builder := summarizer.NewBuilder()
	var infos []basis.FileInfo
	var errs []error
	for _, path := range paths {
		r, err := orch.Inspect(ctx, path, mode)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			r.Err = err
		}
		r.Path = path
		infos = append(infos, r.Info)
		builder.AddContainer(containerInfo(r))
	}
	builder.WithEngine(string(a.engineInfo.Backend), a.engineInfo.CanDecode)

	if cmd.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if len(infos) == 1 {
			err = enc.Encode(infos[0])
		} else {
			err = enc.Encode(infos)
		}
		if err != nil {
			return err
		}
	} else {
		fmt.Print(summarizer.NewMarkdownFormatter(summarizer.WithTranslator(l10n.T)).Format(builder.Build()))
	}
	return errors.Join(errs...)
}

// Run executes the validate command.
func (cmd *ValidateCmd) Run() error {
	a, err := cmd.setup(nil)
	if err != nil {
		return err
	}
	defer logger.Sync(a.log)
	paths, err := a.expand(cmd.Paths)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(a.log)
	defer cancel()

	orch := a.orchestrator(nil)
	failed := 0
	for _, path := range paths {
		r, err := orch.Inspect(ctx, path, pipeline.ChecksumMode(cmd.Checksums))
		switch {
		case err != nil:
			failed++
			fmt.Println(statusLine(false, l10n.F("FAIL %s: %s", path, err)))
		case !r.ChecksumsOK:
			failed++
			fmt.Println(statusLine(false, l10n.F("FAIL %s: %s checksum mismatch", path, cmd.Checksums)))
		default:
			fmt.Println(statusLine(true, l10n.F("OK   %s", path)))
		}
	}
	if failed > 0 {
		return errors.New(l10n.F("%d of %d containers failed validation", failed, len(paths)))
	}
	return nil
}

// Run executes the transcode command.
func (cmd *TranscodeCmd) Run() error {
	a, err := cmd.setup(cmd.apply)
	if err != nil {
		return err
	}
	defer logger.Sync(a.log)
	paths, err := a.expand(cmd.Paths)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(a.log)
	defer cancel()

	var newSink orchestrator.SinkFactory
	if !cmd.DryRun {
		compression, _ := containerio.ParseWrapping(a.cfg.Output.Compression)
		opts := []filesink.Option{
			filesink.WithPreviewFormat(ports.ParseImageFormat(a.cfg.Output.PreviewFormat)),
			filesink.WithCompression(compression),
		}
		renderer := ggrenderer.New()
		newSink = func(dir string) ports.LevelSink {
			return filesink.New(dir, a.fs, renderer, opts...)
		}
	}
	orch := a.orchestrator(newSink)
	oc := a.cfg.ToOrchestratorConfig()

	var results []orchestrator.RunResult
	if len(paths) == 1 {
		r, runErr := orch.Run(ctx, oc, paths[0])
		r.Path = paths[0]
		r.Err = runErr
		results, err = []orchestrator.RunResult{r}, runErr
	} else {
		results, err = orch.RunBatch(ctx, oc, paths)
	}

	if cmd.Summary != "" {
		builder := summarizer.NewBuilder().
			WithEngine(string(a.engineInfo.Backend), a.engineInfo.CanDecode).
			WithSettings(summarizer.Settings{
				Formats:     a.cfg.Transcode.Formats,
				Checksums:   a.cfg.Transcode.Checksums,
				DecodeFlags: a.cfg.Transcode.DecodeFlags,
				OutputDir:   a.cfg.Output.Dir,
				Workers:     a.cfg.Workers,
			})
		for _, r := range results {
			builder.AddContainer(containerInfo(r))
		}
		var formatter summarizer.Formatter = summarizer.JSONFormatter
		if cmd.SummaryFormat == "markdown" {
			formatter = summarizer.NewMarkdownFormatter(
				summarizer.WithTranslator(l10n.T),
				summarizer.WithVersion(version),
			)
		}
		if werr := summarizer.NewWriter(formatter, a.fs).Write(cmd.Summary, builder.Build()); werr != nil {
			a.log.Error(l10n.F("Failed to write summary: %s", werr))
		} else {
			a.log.Info(l10n.F("Summary saved to %s", cmd.Summary))
		}
	}

	return err
}

// apply copies transcode flags over the configuration.
func (cmd *TranscodeCmd) apply(c *config.Config) {
	if len(cmd.Formats) > 0 {
		c.Transcode.Formats = cmd.Formats
	}
	if len(cmd.Images) > 0 {
		c.Transcode.Images = cmd.Images
	}
	if len(cmd.Levels) > 0 {
		c.Transcode.Levels = cmd.Levels
	}
	if cmd.Checksums != nil {
		c.Transcode.Checksums = *cmd.Checksums
	}
	if len(cmd.DecodeFlags) > 0 {
		c.Transcode.DecodeFlags = cmd.DecodeFlags
	}
	if cmd.Output != nil {
		c.Output.Dir = *cmd.Output
	}
	if cmd.NoRaw {
		c.Output.WriteRaw = false
	}
	if cmd.Compression != nil {
		c.Output.Compression = *cmd.Compression
	}
	if cmd.Previews {
		c.Output.Previews = true
	}
	if cmd.PreviewFormat != nil {
		c.Output.PreviewFormat = *cmd.PreviewFormat
	}
	if cmd.ContactSheet {
		c.Output.ContactSheet = true
	}
	if cmd.NoFileInfo {
		c.Output.FileInfoJSON = false
	}
	if cmd.Workers != nil {
		c.Workers = *cmd.Workers
	}
}

// Run executes the version command.
func (cmd *VersionCmd) Run() error {
	fmt.Println(headingStyle.Render(l10n.F("basiskit version %s", version)))
	native := l10n.T("no")
	if smartengine.NativeAvailable() {
		native = l10n.T("yes")
	}
	fmt.Println(l10n.F("Native engine: %s", native))
	return nil
}
