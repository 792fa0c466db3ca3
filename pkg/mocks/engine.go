package mocks

import (
	"sync"

	"github.com/user/basiskit/pkg/ports"
)

// Level is the geometry the mock Engine reports for one (image, level).
type Level struct {
	Width  uint32
	Height uint32
}

// Blocks returns the 4x4 block count of the level.
func (l Level) Blocks() uint32 {
	return ((l.Width + 3) / 4) * ((l.Height + 3) / 4)
}

// MipChain returns the levels of a square power-of-two image of the given
// size down to 1x1 or until count levels are produced.
func MipChain(size uint32, count int) []Level {
	levels := make([]Level, 0, count)
	for i := 0; i < count && size>>uint(i) > 0; i++ {
		s := size >> uint(i)
		levels = append(levels, Level{Width: s, Height: s})
	}
	return levels
}

// Engine is a mock implementation of ports.Engine. Without overrides it
// describes a valid container made of Images, encoded as Format.
type Engine struct {
	mu sync.Mutex

	Format      uint32
	TexType     uint32
	Images      [][]Level
	UserData0   uint32
	UserData1   uint32
	HeaderValid bool

	ValidateHeaderFunc      func(data []byte) bool
	ValidateChecksumsFunc   func(data []byte, full bool) bool
	TotalImagesFunc         func(data []byte) uint32
	StartTranscodingFunc    func(data []byte) bool
	StopTranscodingFunc     func() bool
	TranscodeImageLevelFunc func(data []byte, image, level uint32, out []byte, outElems, format uint32, params ports.DecodeParams) bool
	CloseFunc               func() error

	// Recorded calls for verification
	InitCalls      int
	StartCalls     int
	StopCalls      int
	CloseCalls     int
	TranscodeCalls []TranscodeCall
}

// TranscodeCall records a call to TranscodeImageLevel.
type TranscodeCall struct {
	Image    uint32
	Level    uint32
	OutLen   int
	OutElems uint32
	Format   uint32
	Params   ports.DecodeParams
}

// NewEngine creates a mock Engine describing a single 2048x2048 ETC1S image
// with 12 mip levels.
func NewEngine() *Engine {
	return &Engine{
		Format:      0,
		Images:      [][]Level{MipChain(2048, 12)},
		HeaderValid: true,
	}
}

func (m *Engine) InitGlobal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitCalls++
}

func (m *Engine) ValidateHeader(data []byte) bool {
	if m.ValidateHeaderFunc != nil {
		return m.ValidateHeaderFunc(data)
	}
	return m.HeaderValid
}

func (m *Engine) ValidateChecksums(data []byte, full bool) bool {
	if m.ValidateChecksumsFunc != nil {
		return m.ValidateChecksumsFunc(data, full)
	}
	return m.HeaderValid
}

func (m *Engine) TextureType(data []byte) uint32 { return m.TexType }

func (m *Engine) TexFormat(data []byte) uint32 { return m.Format }

func (m *Engine) UserData(data []byte) (uint32, uint32, bool) {
	if !m.HeaderValid {
		return 0, 0, false
	}
	return m.UserData0, m.UserData1, true
}

func (m *Engine) TotalImages(data []byte) uint32 {
	if m.TotalImagesFunc != nil {
		return m.TotalImagesFunc(data)
	}
	return uint32(len(m.Images))
}

func (m *Engine) TotalImageLevels(data []byte, image uint32) uint32 {
	if int(image) >= len(m.Images) {
		return 0
	}
	return uint32(len(m.Images[image]))
}

func (m *Engine) level(image, level uint32) (Level, bool) {
	if int(image) >= len(m.Images) || int(level) >= len(m.Images[image]) {
		return Level{}, false
	}
	return m.Images[image][level], true
}

func (m *Engine) ImageLevelDesc(data []byte, image, level uint32) (uint32, uint32, uint32, bool) {
	l, ok := m.level(image, level)
	if !ok {
		return 0, 0, 0, false
	}
	return l.Width, l.Height, l.Blocks(), true
}

func (m *Engine) ImageInfo(data []byte, image uint32) (ports.ImageInfo, bool) {
	l, ok := m.level(image, 0)
	if !ok {
		return ports.ImageInfo{}, false
	}
	return ports.ImageInfo{
		ImageIndex:  image,
		TotalLevels: uint32(len(m.Images[image])),
		OrigWidth:   l.Width,
		OrigHeight:  l.Height,
		Width:       (l.Width + 3) &^ 3,
		Height:      (l.Height + 3) &^ 3,
		NumBlocksX:  (l.Width + 3) / 4,
		NumBlocksY:  (l.Height + 3) / 4,
		TotalBlocks: l.Blocks(),
	}, true
}

func (m *Engine) ImageLevelInfo(data []byte, image, level uint32) (ports.ImageLevelInfo, bool) {
	l, ok := m.level(image, level)
	if !ok {
		return ports.ImageLevelInfo{}, false
	}
	return ports.ImageLevelInfo{
		ImageIndex:  image,
		LevelIndex:  level,
		OrigWidth:   l.Width,
		OrigHeight:  l.Height,
		Width:       (l.Width + 3) &^ 3,
		Height:      (l.Height + 3) &^ 3,
		NumBlocksX:  (l.Width + 3) / 4,
		NumBlocksY:  (l.Height + 3) / 4,
		TotalBlocks: l.Blocks(),
	}, true
}

func (m *Engine) FileInfo(data []byte) (ports.FileInfo, bool) {
	if !m.HeaderValid {
		return ports.FileInfo{}, false
	}
	info := ports.FileInfo{
		Version:         0x13,
		TotalHeaderSize: 77,
		TexType:         m.TexType,
		TexFormat:       m.Format,
		TotalImages:     uint32(len(m.Images)),
		UserData0:       m.UserData0,
		UserData1:       m.UserData1,
		ETC1S:           m.Format == 0,
	}
	for i, levels := range m.Images {
		info.ImageMipmapLevels = append(info.ImageMipmapLevels, uint32(len(levels)))
		for j, l := range levels {
			info.SliceInfo = append(info.SliceInfo, ports.SliceInfo{
				OrigWidth:   l.Width,
				OrigHeight:  l.Height,
				TotalBlocks: l.Blocks(),
				SliceIndex:  uint32(len(info.SliceInfo)),
				ImageIndex:  uint32(i),
				LevelIndex:  uint32(j),
			})
		}
	}
	return info, true
}

func (m *Engine) StartTranscoding(data []byte) bool {
	m.mu.Lock()
	m.StartCalls++
	m.mu.Unlock()
	if m.StartTranscodingFunc != nil {
		return m.StartTranscodingFunc(data)
	}
	return true
}

func (m *Engine) StopTranscoding() bool {
	m.mu.Lock()
	m.StopCalls++
	m.mu.Unlock()
	if m.StopTranscodingFunc != nil {
		return m.StopTranscodingFunc()
	}
	return true
}

func (m *Engine) TranscodeImageLevel(data []byte, image, level uint32, out []byte, outElems, format uint32, params ports.DecodeParams) bool {
	m.mu.Lock()
	m.TranscodeCalls = append(m.TranscodeCalls, TranscodeCall{
		Image:    image,
		Level:    level,
		OutLen:   len(out),
		OutElems: outElems,
		Format:   format,
		Params:   params,
	})
	m.mu.Unlock()
	if m.TranscodeImageLevelFunc != nil {
		return m.TranscodeImageLevelFunc(data, image, level, out, outElems, format, params)
	}
	return true
}

func (m *Engine) Close() error {
	m.mu.Lock()
	m.CloseCalls++
	m.mu.Unlock()
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Calls returns a snapshot of the recorded start, stop and transcode counts.
func (m *Engine) Calls() (start, stop, transcode int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.StartCalls, m.StopCalls, len(m.TranscodeCalls)
}

var _ ports.Engine = (*Engine)(nil)
