package mocks

import (
	"image"
	"sync"

	"github.com/user/basiskit/pkg/ports"
)

// ContactSheetKey identifies a contact sheet saved to the mock sink.
type ContactSheetKey struct {
	Image  uint32
	Format string
}

// LevelSink is a mock implementation of ports.LevelSink.
type LevelSink struct {
	mu sync.RWMutex

	enabled bool

	Levels        map[ports.LevelKey][]byte
	Previews      map[ports.LevelKey]image.Image
	ContactSheets map[ContactSheetKey]image.Image
	FileInfoJSON  []byte

	SaveLevelFunc func(key ports.LevelKey, data []byte) error
}

// NewLevelSink creates a new mock LevelSink.
func NewLevelSink(enabled bool) *LevelSink {
	return &LevelSink{
		enabled:       enabled,
		Levels:        make(map[ports.LevelKey][]byte),
		Previews:      make(map[ports.LevelKey]image.Image),
		ContactSheets: make(map[ContactSheetKey]image.Image),
	}
}

func (m *LevelSink) Enabled() bool {
	return m.enabled
}

func (m *LevelSink) SaveLevel(key ports.LevelKey, data []byte) error {
	if m.SaveLevelFunc != nil {
		return m.SaveLevelFunc(key, data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Levels[key] = data
	return nil
}

func (m *LevelSink) SavePreview(key ports.LevelKey, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Previews[key] = img
	return nil
}

func (m *LevelSink) SaveContactSheet(imageIndex uint32, format string, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ContactSheets[ContactSheetKey{Image: imageIndex, Format: format}] = img
	return nil
}

func (m *LevelSink) SaveFileInfo(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FileInfoJSON = data
	return nil
}

var _ ports.LevelSink = (*LevelSink)(nil)

// NullSink is a no-op implementation of ports.LevelSink.
type NullSink struct{}

func (m *NullSink) Enabled() bool                                         { return false }
func (m *NullSink) SaveLevel(key ports.LevelKey, data []byte) error       { return nil }
func (m *NullSink) SavePreview(key ports.LevelKey, img image.Image) error { return nil }
func (m *NullSink) SaveFileInfo(data []byte) error                        { return nil }

func (m *NullSink) SaveContactSheet(imageIndex uint32, format string, img image.Image) error {
	return nil
}

var _ ports.LevelSink = (*NullSink)(nil)
