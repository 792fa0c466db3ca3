package transcode

import (
	"context"
	"errors"
	"testing"

	"github.com/user/basiskit/pkg/basis"
	"github.com/user/basiskit/pkg/mocks"
	"github.com/user/basiskit/pkg/pipeline"
	"github.com/user/basiskit/pkg/ports"
)

var container = []byte("sB-container")

func newStage(engine *mocks.Engine) (*Stage, *mocks.Logger) {
	logger := mocks.NewLogger()
	return NewStage(basis.New(engine), logger), logger
}

func TestStage_Execute(t *testing.T) {
	engine := mocks.NewEngine()
	engine.Images = [][]mocks.Level{mocks.MipChain(64, 3), mocks.MipChain(16, 2)}
	stage, _ := newStage(engine)

	result, err := stage.Execute(context.Background(), pipeline.TranscodeInput{
		Data:    container,
		Formats: []basis.TargetFormat{basis.TargetBC1RGB, basis.TargetRGBA32},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 5 levels x 2 formats, in image, level, format order
	if len(result.Levels) != 10 {
		t.Fatalf("expected 10 outputs, got %d", len(result.Levels))
	}
	first := result.Levels[0]
	if first.Image != 0 || first.Level != 0 || first.Format != basis.TargetBC1RGB || len(first.Data) != 16*16*8 {
		t.Errorf("first output = image %d level %d %s, %d bytes", first.Image, first.Level, first.Format, len(first.Data))
	}
	last := result.Levels[9]
	if last.Image != 1 || last.Level != 1 || last.Format != basis.TargetRGBA32 || len(last.Data) != 8*8*4 {
		t.Errorf("last output = image %d level %d %s, %d bytes", last.Image, last.Level, last.Format, len(last.Data))
	}
	if last.Desc.OrigWidth != 8 {
		t.Errorf("last desc = %+v", last.Desc)
	}

	start, stop, calls := engine.Calls()
	if start != 1 || stop != 1 || calls != 10 {
		t.Errorf("start=%d stop=%d transcode=%d, want one pass with 10 calls", start, stop, calls)
	}
}

func TestStage_ExecuteSkipsIncompatible(t *testing.T) {
	engine := mocks.NewEngine()
	engine.Format = 1 // UASTC
	engine.Images = [][]mocks.Level{mocks.MipChain(8, 1)}
	stage, logger := newStage(engine)

	result, err := stage.Execute(context.Background(), pipeline.TranscodeInput{
		Data:    container,
		Formats: []basis.TargetFormat{basis.TargetATCRGB, basis.TargetASTC4x4RGBA, basis.TargetRGBA4444},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Levels) != 1 || result.Levels[0].Format != basis.TargetASTC4x4RGBA {
		t.Errorf("outputs = %+v", result.Levels)
	}
	if len(result.Skipped) != 2 {
		t.Fatalf("expected 2 skipped formats, got %d", len(result.Skipped))
	}
	if !errors.Is(result.Skipped[0].Reason, basis.ErrUASTCUnsupported) {
		t.Errorf("skip reason = %v", result.Skipped[0].Reason)
	}
	if !errors.Is(result.Skipped[1].Reason, basis.ErrRGBA4444Unsupported) {
		t.Errorf("skip reason = %v", result.Skipped[1].Reason)
	}
	if got := len(logger.Entries(ports.LevelWarn)); got != 2 {
		t.Errorf("expected 2 warnings, got %d", got)
	}
}

func TestStage_ExecuteNothingReachable(t *testing.T) {
	engine := mocks.NewEngine()
	stage, _ := newStage(engine)

	result, err := stage.Execute(context.Background(), pipeline.TranscodeInput{
		Data:    container,
		Formats: []basis.TargetFormat{basis.TargetRGBA4444},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Levels) != 0 {
		t.Errorf("expected no outputs, got %d", len(result.Levels))
	}
	if start, _, _ := engine.Calls(); start != 0 {
		t.Error("pass started with nothing to transcode")
	}
}

func TestStage_ExecuteSelection(t *testing.T) {
	engine := mocks.NewEngine()
	engine.Images = [][]mocks.Level{mocks.MipChain(64, 4), mocks.MipChain(64, 2)}
	stage, logger := newStage(engine)

	result, err := stage.Execute(context.Background(), pipeline.TranscodeInput{
		Data:        container,
		Formats:     []basis.TargetFormat{basis.TargetBC7RGBA},
		Images:      []uint32{0, 1},
		Levels:      []uint32{3},
		DecodeFlags: basis.DecodeFlagHighQuality,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Levels) != 1 || result.Levels[0].Image != 0 || result.Levels[0].Level != 3 {
		t.Errorf("outputs = %+v", result.Levels)
	}
	if got := len(logger.Entries(ports.LevelWarn)); got != 1 {
		t.Errorf("expected 1 warning for the missing level, got %d", got)
	}
	if engine.TranscodeCalls[0].Params.Flags != uint32(basis.DecodeFlagHighQuality) {
		t.Errorf("flags = %d", engine.TranscodeCalls[0].Params.Flags)
	}
}

func TestStage_ExecuteDecodeFailure(t *testing.T) {
	engine := mocks.NewEngine()
	engine.TranscodeImageLevelFunc = func(data []byte, image, level uint32, out []byte, outElems, format uint32, params ports.DecodeParams) bool {
		return level < 2
	}
	stage, _ := newStage(engine)
	tr := stage.transcoder

	result, err := stage.Execute(context.Background(), pipeline.TranscodeInput{
		Data:    container,
		Formats: []basis.TargetFormat{basis.TargetETC1RGB},
	})
	if !errors.Is(err, basis.ErrDecodeFailed) {
		t.Fatalf("expected ErrDecodeFailed, got %v", err)
	}
	if len(result.Levels) != 2 {
		t.Errorf("expected 2 outputs before the failure, got %d", len(result.Levels))
	}
	if tr.Busy() {
		t.Error("transcoder left busy after a failed pass")
	}
}

func TestStage_ExecuteBusy(t *testing.T) {
	engine := mocks.NewEngine()
	stage, _ := newStage(engine)

	p, err := stage.transcoder.Prepare(container)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	defer p.Close()

	_, err = stage.Execute(context.Background(), pipeline.TranscodeInput{
		Data:    container,
		Formats: []basis.TargetFormat{basis.TargetETC1RGB},
	})
	if !errors.Is(err, basis.ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
}

func TestStage_ExecuteCancelled(t *testing.T) {
	engine := mocks.NewEngine()
	stage, _ := newStage(engine)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := stage.Execute(ctx, pipeline.TranscodeInput{
		Data:    container,
		Formats: []basis.TargetFormat{basis.TargetETC1RGB},
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if stage.transcoder.Busy() {
		t.Error("transcoder left busy after cancellation")
	}
}
