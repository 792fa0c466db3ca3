package basis

import (
	"sync"
	"sync/atomic"

	"github.com/user/basiskit/pkg/ports"
)

// noCopy flags accidental copies of a Transcoder to go vet's copylocks check.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Transcoder owns one engine instance. Its introspection methods are
// read-only and may be called from any goroutine at any time; transcoding
// goes through Prepare, which admits a single active pass.
type Transcoder struct {
	_ noCopy

	engine ports.Engine
	logger ports.Logger
	busy   busyFlag

	initOnce sync.Once

	// closeMu serializes Close. Once closed, busy stays held so no pass can
	// start on the released engine.
	closeMu  sync.Mutex
	closed   atomic.Bool
	closeErr error
}

// Option configures a Transcoder.
type Option func(*Transcoder)

// WithLogger sets the logger used for pass lifecycle messages.
func WithLogger(logger ports.Logger) Option {
	return func(t *Transcoder) {
		if logger != nil {
			t.logger = logger.WithComponent("basis")
		}
	}
}

// New wraps engine in a Transcoder. The Transcoder takes ownership of engine
// and releases it on Close.
func New(engine ports.Engine, opts ...Option) *Transcoder {
	t := &Transcoder{
		engine: engine,
		logger: nopLogger{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Init runs the engine's process-wide table setup. It is idempotent and is
// triggered implicitly by the first Prepare.
func (t *Transcoder) Init() {
	t.initOnce.Do(func() {
		t.logger.Debug("Initializing transcoder tables")
		t.engine.InitGlobal()
	})
}

// Busy reports whether a transcoding pass is active.
func (t *Transcoder) Busy() bool {
	return t.busy.held() && !t.closed.Load()
}

// Close releases the engine. It fails with ErrBusy while a pass is active
// and is a no-op after the first successful call. Every later call on the
// Transcoder returns ErrClosed.
func (t *Transcoder) Close() error {
	t.closeMu.Lock()
	defer t.closeMu.Unlock()
	if t.closed.Load() {
		return t.closeErr
	}
	if !t.busy.tryAcquire() {
		return ErrBusy
	}
	t.closed.Store(true)
	t.closeErr = t.engine.Close()
	t.logger.Debug("Transcoder closed")
	return t.closeErr
}

// check applies the closed state and the length limit that guard every
// call reaching the engine.
func (t *Transcoder) check(data []byte) error {
	if t.closed.Load() {
		return ErrClosed
	}
	return checkLen(data)
}

// ValidateHeader reports whether data carries a well-formed header.
func (t *Transcoder) ValidateHeader(data []byte) (bool, error) {
	if err := t.check(data); err != nil {
		return false, err
	}
	return t.engine.ValidateHeader(data), nil
}

// ValidateChecksums verifies the header checksum, and the payload checksum
// when full is set.
func (t *Transcoder) ValidateChecksums(data []byte, full bool) (bool, error) {
	if err := t.check(data); err != nil {
		return false, err
	}
	return t.engine.ValidateChecksums(data, full), nil
}

// TextureType returns the texture layout of the container.
func (t *Transcoder) TextureType(data []byte) (TextureType, error) {
	if err := t.checkHeader(data); err != nil {
		return 0, err
	}
	return textureTypeFromRaw(t.engine.TextureType(data)), nil
}

// BasisFormat returns the source encoding of the container.
func (t *Transcoder) BasisFormat(data []byte) (BasisFormat, error) {
	if err := t.checkHeader(data); err != nil {
		return 0, err
	}
	return basisFormatFromRaw(t.engine.TexFormat(data)), nil
}

// UserData returns the user-defined header words. ok is false when the
// engine reports none.
func (t *Transcoder) UserData(data []byte) (UserData, bool, error) {
	if err := t.check(data); err != nil {
		return UserData{}, false, err
	}
	w0, w1, ok := t.engine.UserData(data)
	if !ok {
		return UserData{}, false, nil
	}
	return UserData{UserData0: w0, UserData1: w1}, true, nil
}

// TotalImages returns the number of images in the container, which is never
// zero for a container whose header validates.
func (t *Transcoder) TotalImages(data []byte) (uint32, error) {
	if err := t.checkHeader(data); err != nil {
		return 0, err
	}
	n := t.engine.TotalImages(data)
	if n == 0 {
		invariant("valid container reports zero images")
	}
	return n, nil
}

// TotalImageLevels returns the mip level count of image, or 0 when image is
// out of range.
func (t *Transcoder) TotalImageLevels(data []byte, image uint32) (uint32, error) {
	if err := t.check(data); err != nil {
		return 0, err
	}
	return t.engine.TotalImageLevels(data, image), nil
}

// ImageLevelDesc returns the geometry of (image, level). ok is false when
// the pair does not exist.
func (t *Transcoder) ImageLevelDesc(data []byte, image, level uint32) (ImageLevelDesc, bool, error) {
	if err := t.check(data); err != nil {
		return ImageLevelDesc{}, false, err
	}
	desc, ok := t.levelDesc(data, image, level)
	return desc, ok, nil
}

func (t *Transcoder) levelDesc(data []byte, image, level uint32) (ImageLevelDesc, bool) {
	w, h, blocks, ok := t.engine.ImageLevelDesc(data, image, level)
	if !ok {
		return ImageLevelDesc{}, false
	}
	return ImageLevelDesc{OrigWidth: w, OrigHeight: h, TotalBlocks: blocks}, true
}

// ImageInfo describes the base level of image.
func (t *Transcoder) ImageInfo(data []byte, image uint32) (ImageInfo, bool, error) {
	if err := t.check(data); err != nil {
		return ImageInfo{}, false, err
	}
	info, ok := t.engine.ImageInfo(data, image)
	if !ok {
		return ImageInfo{}, false, nil
	}
	return imageInfoFromPort(info), true, nil
}

// ImageLevelInfo describes one (image, level) unit.
func (t *Transcoder) ImageLevelInfo(data []byte, image, level uint32) (ImageLevelInfo, bool, error) {
	if err := t.check(data); err != nil {
		return ImageLevelInfo{}, false, err
	}
	info, ok := t.engine.ImageLevelInfo(data, image, level)
	if !ok {
		return ImageLevelInfo{}, false, nil
	}
	return imageLevelInfoFromPort(info), true, nil
}

// FileInfo describes the whole container. ok is false when the container
// cannot be parsed.
func (t *Transcoder) FileInfo(data []byte) (FileInfo, bool, error) {
	if err := t.check(data); err != nil {
		return FileInfo{}, false, err
	}
	info, ok := t.engine.FileInfo(data)
	if !ok {
		return FileInfo{}, false, nil
	}
	return fileInfoFromPort(info), true, nil
}

// checkHeader applies the length limit and header validation that guard
// every query whose result is only meaningful for a parseable container.
func (t *Transcoder) checkHeader(data []byte) error {
	if err := t.check(data); err != nil {
		return err
	}
	if !t.engine.ValidateHeader(data) {
		return ErrInvalidContainer
	}
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{})        {}
func (nopLogger) Info(string, ...interface{})         {}
func (nopLogger) Warn(string, ...interface{})         {}
func (nopLogger) Error(string, ...interface{})        {}
func (n nopLogger) WithComponent(string) ports.Logger { return n }
