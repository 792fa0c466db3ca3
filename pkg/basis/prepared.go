package basis

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/user/basiskit/pkg/ports"
)

// DecodeFlags tune how the engine writes a level.
type DecodeFlags uint32

const (
	// DecodeFlagPVRTCDecodeToNextPow2 pads PVRTC1 output of non power of two
	// levels up to the next power of two.
	DecodeFlagPVRTCDecodeToNextPow2 DecodeFlags = 2
	// DecodeFlagTranscodeAlphaDataToOpaqueFormats writes the alpha slice
	// into formats without an alpha channel.
	DecodeFlagTranscodeAlphaDataToOpaqueFormats DecodeFlags = 4
	// DecodeFlagBC1ForbidThreeColorBlocks disables BC1 three-color mode.
	DecodeFlagBC1ForbidThreeColorBlocks DecodeFlags = 8
	// DecodeFlagOutputHasAlphaIndices makes BC1/ETC1 output keep the
	// indices needed for punch-through alpha.
	DecodeFlagOutputHasAlphaIndices DecodeFlags = 16
	// DecodeFlagHighQuality trades speed for quality on UASTC sources.
	DecodeFlagHighQuality DecodeFlags = 32
)

// Prepared is an active transcoding pass bound to one container buffer.
// It is created by Transcoder.Prepare and must be closed exactly once;
// Transcoder.Transcode does that automatically.
//
// Calls on one Prepared must not overlap.
type Prepared struct {
	t    *Transcoder
	data []byte

	closed    atomic.Bool
	closeOnce sync.Once
}

// Prepare starts a transcoding pass over data. It never waits: if another
// pass is active it returns ErrBusy at once.
func (t *Transcoder) Prepare(data []byte) (*Prepared, error) {
	if err := t.check(data); err != nil {
		return nil, err
	}
	t.Init()
	if !t.engine.ValidateHeader(data) {
		return nil, ErrInvalidContainer
	}
	if !t.busy.tryAcquire() {
		if t.closed.Load() {
			return nil, ErrClosed
		}
		return nil, ErrBusy
	}
	if !t.engine.StartTranscoding(data) {
		t.busy.release()
		invariant("engine refused to start a pass while idle")
	}
	t.logger.Debug("Transcoding pass started (%d bytes)", len(data))
	return &Prepared{t: t, data: data}, nil
}

// Transcode runs fn inside a transcoding pass over data and ends the pass
// on every return path, including panics in fn.
func (t *Transcoder) Transcode(data []byte, fn func(p *Prepared) error) error {
	p, err := t.Prepare(data)
	if err != nil {
		return err
	}
	defer p.Close()
	return fn(p)
}

// Data returns the container the pass is bound to.
func (p *Prepared) Data() []byte {
	return p.data
}

// TranscodeImageLevel converts one (image, level) unit to target and returns
// a buffer of exactly OutputSize(target, desc) bytes.
func (p *Prepared) TranscodeImageLevel(image, level uint32, target TargetFormat) ([]byte, error) {
	return p.TranscodeImageLevelWithFlags(image, level, target, 0)
}

// TranscodeImageLevelWithFlags is TranscodeImageLevel with explicit decode
// flags.
func (p *Prepared) TranscodeImageLevelWithFlags(image, level uint32, target TargetFormat, flags DecodeFlags) ([]byte, error) {
	out, _, err := p.TranscodeLevel(image, level, target, flags)
	return out, err
}

// TranscodeLevel is TranscodeImageLevelWithFlags that also returns the
// geometry of the level it wrote.
func (p *Prepared) TranscodeLevel(image, level uint32, target TargetFormat, flags DecodeFlags) ([]byte, ImageLevelDesc, error) {
	if p.closed.Load() {
		return nil, ImageLevelDesc{}, ErrSessionClosed
	}
	t := p.t

	source := basisFormatFromRaw(t.engine.TexFormat(p.data))
	if err := compatibility(source, target); err != nil {
		t.logger.Debug("Rejected %s output for %s source", target, source)
		return nil, ImageLevelDesc{}, &FormatError{Source: source, Target: target, Err: err}
	}

	desc, ok := t.levelDesc(p.data, image, level)
	if !ok {
		return nil, ImageLevelDesc{}, fmt.Errorf("%w: image %d level %d", ErrLevelNotFound, image, level)
	}
	size, err := OutputSize(target, desc)
	if err != nil {
		return nil, desc, err
	}
	out := make([]byte, size)

	params := ports.DecodeParams{Flags: uint32(flags)}
	if !t.engine.TranscodeImageLevel(p.data, image, level, out, OutputElementCount(target, desc), target.raw(), params) {
		return nil, desc, fmt.Errorf("%w: image %d level %d to %s", ErrDecodeFailed, image, level, target)
	}
	return out, desc, nil
}

// Close ends the pass and frees the Transcoder for the next Prepare.
// Only the first call has an effect.
func (p *Prepared) Close() error {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		defer p.t.busy.release()
		if !p.t.engine.StopTranscoding() {
			invariant("engine refused to stop an active pass")
		}
		p.t.logger.Debug("Transcoding pass finished")
	})
	return nil
}
