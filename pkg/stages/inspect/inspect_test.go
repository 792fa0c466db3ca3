package inspect

import (
	"context"
	"errors"
	"testing"

	"github.com/user/basiskit/pkg/adapters/basisgo"
	"github.com/user/basiskit/pkg/basis"
	"github.com/user/basiskit/pkg/mocks"
	"github.com/user/basiskit/pkg/pipeline"
	"github.com/user/basiskit/pkg/ports"
)

func newStage(logger ports.Logger) (*Stage, *basis.Transcoder) {
	tr := basis.New(basisgo.New(nil))
	return NewStage(tr, logger), tr
}

func TestStage_Execute(t *testing.T) {
	stage, tr := newStage(mocks.NewLogger())
	defer tr.Close()

	data := basisgo.NewBuilder(1).AddImage(64, 32, 4).AddImage(16, 16, 1).Build()
	result, err := stage.Execute(context.Background(), pipeline.InspectInput{Data: data, Checksums: pipeline.ChecksumFull})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.ChecksumsValid || result.ChecksumsChecked != pipeline.ChecksumFull {
		t.Errorf("checksums = %s, %v", result.ChecksumsChecked, result.ChecksumsValid)
	}
	if result.Info.TotalImages != 2 || result.Info.Format != basis.FormatUASTC {
		t.Errorf("info = %+v", result.Info)
	}
	if len(result.Info.Slices) != 5 {
		t.Errorf("expected 5 slices, got %d", len(result.Info.Slices))
	}
}

func TestStage_ExecuteChecksumMismatch(t *testing.T) {
	logger := mocks.NewLogger()
	stage, tr := newStage(logger)
	defer tr.Close()

	data := basisgo.NewBuilder(0).AddImage(16, 16, 1).Build()
	data[len(data)-1] ^= 0xFF

	tests := []struct {
		mode  pipeline.ChecksumMode
		valid bool
	}{
		{pipeline.ChecksumNone, true},
		{"", true},
		{pipeline.ChecksumFull, false},
	}
	for _, tt := range tests {
		result, err := stage.Execute(context.Background(), pipeline.InspectInput{Data: data, Checksums: tt.mode})
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tt.mode, err)
		}
		if result.ChecksumsValid != tt.valid {
			t.Errorf("%q: ChecksumsValid = %v, want %v", tt.mode, result.ChecksumsValid, tt.valid)
		}
	}
	if len(logger.Entries(ports.LevelWarn)) != 1 {
		t.Errorf("expected one warning, got %v", logger.Entries(ports.LevelWarn))
	}
}

func TestStage_ExecuteInvalidHeader(t *testing.T) {
	stage, tr := newStage(mocks.NewLogger())
	defer tr.Close()

	_, err := stage.Execute(context.Background(), pipeline.InspectInput{Data: []byte("not a container")})
	if !errors.Is(err, basis.ErrInvalidContainer) {
		t.Errorf("expected ErrInvalidContainer, got %v", err)
	}
}

func TestStage_ExecuteCancelled(t *testing.T) {
	stage, tr := newStage(mocks.NewLogger())
	defer tr.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := stage.Execute(ctx, pipeline.InspectInput{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
