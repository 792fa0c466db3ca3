package basisgo

import (
	"errors"
	"fmt"

	"github.com/user/basiskit/pkg/ports"
)

// ErrInvalid is wrapped by every structural validation failure.
var ErrInvalid = errors.New("basisgo: invalid container")

// File is a validated view of a container. It aliases the input buffer.
type File struct {
	Header Header
	Slices []SliceDesc

	data []byte
}

// Parse validates the header and slice table of data and decodes them.
func Parse(data []byte) (*File, error) {
	if len(data) <= HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is not enough for a header", ErrInvalid, len(data))
	}
	h, err := ParseHeader(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := h.validate(len(data)); err != nil {
		return nil, err
	}

	size := uint64(len(data))
	ofs := uint64(h.SliceDescFileOfs)
	if ofs >= size || size-ofs < uint64(h.TotalSlices)*SliceDescSize {
		return nil, fmt.Errorf("%w: slice table at %d does not fit", ErrInvalid, ofs)
	}

	slices := make([]SliceDesc, h.TotalSlices)
	for i := range slices {
		s := parseSliceDesc(data[ofs+uint64(i)*SliceDescSize:])
		if s.ImageIndex >= h.TotalImages {
			return nil, fmt.Errorf("%w: slice %d refers to image %d", ErrInvalid, i, s.ImageIndex)
		}
		if s.LevelIndex >= MaxLevels {
			return nil, fmt.Errorf("%w: slice %d has level %d", ErrInvalid, i, s.LevelIndex)
		}
		if uint64(s.FileOfs) < HeaderSize || uint64(s.FileOfs) >= size || size-uint64(s.FileOfs) < uint64(s.FileSize) {
			return nil, fmt.Errorf("%w: slice %d data out of range", ErrInvalid, i)
		}
		slices[i] = s
	}
	return &File{Header: h, Slices: slices, data: data}, nil
}

func (h Header) validate(size int) error {
	switch {
	case uint64(size) < HeaderSize+uint64(h.DataSize):
		return fmt.Errorf("%w: payload of %d bytes is truncated", ErrInvalid, h.DataSize)
	case h.TexFormat != texFormatETC1S && h.TexFormat != texFormatUASTC:
		return fmt.Errorf("%w: unknown format %d", ErrInvalid, h.TexFormat)
	case h.TotalSlices == 0 || h.TotalImages == 0:
		return fmt.Errorf("%w: empty container", ErrInvalid)
	case h.TotalImages > h.TotalSlices:
		return fmt.Errorf("%w: %d images in %d slices", ErrInvalid, h.TotalImages, h.TotalSlices)
	case h.TexType >= texTypeTotal:
		return fmt.Errorf("%w: unknown texture type %d", ErrInvalid, h.TexType)
	}
	if h.HasAlphaSlices() {
		if h.TotalSlices&1 != 0 || h.TotalSlices/2 < h.TotalImages {
			return fmt.Errorf("%w: %d slices cannot hold alpha for %d images", ErrInvalid, h.TotalSlices, h.TotalImages)
		}
	}
	return nil
}

// ChecksumsValid verifies the header CRC and, when full is set, the
// payload CRC.
func (f *File) ChecksumsValid(full bool) bool {
	if headerCRC(f.data) != f.Header.HeaderCRC {
		return false
	}
	if full {
		payload := f.data[HeaderSize : HeaderSize+uint64(f.Header.DataSize)]
		if CRC16(payload) != f.Header.DataCRC {
			return false
		}
	}
	return true
}

// findSlice returns the index of the slice backing (image, level). For
// ETC1S containers alpha selects between the color and alpha slice.
func (f *File) findSlice(image, level uint32, alpha bool) int {
	for i, s := range f.Slices {
		if s.ImageIndex != image || uint32(s.LevelIndex) != level {
			continue
		}
		if !f.Header.ETC1S() || s.HasAlpha() == alpha {
			return i
		}
	}
	return -1
}

func (f *File) firstSlice(image uint32) int {
	for i, s := range f.Slices {
		if s.ImageIndex == image {
			return i
		}
	}
	return -1
}

// ImageLevels returns the mip level count of image, 0 when it is absent.
func (f *File) ImageLevels(image uint32) uint32 {
	if image >= f.Header.TotalImages {
		return 0
	}
	first := f.firstSlice(image)
	if first < 0 {
		return 0
	}
	levels := uint32(1)
	for _, s := range f.Slices[first+1:] {
		if s.ImageIndex != image {
			break
		}
		if l := uint32(s.LevelIndex) + 1; l > levels {
			levels = l
		}
	}
	return levels
}

// Level returns the color slice of (image, level).
func (f *File) Level(image, level uint32) (SliceDesc, int, bool) {
	i := f.findSlice(image, level, false)
	if i < 0 {
		return SliceDesc{}, -1, false
	}
	return f.Slices[i], i, true
}

func (f *File) alphaFlag(s SliceDesc) bool {
	if f.Header.ETC1S() {
		return f.Header.HasAlphaSlices()
	}
	return s.HasAlpha()
}

func (f *File) imageInfo(image uint32) (ports.ImageInfo, bool) {
	if image >= f.Header.TotalImages {
		return ports.ImageInfo{}, false
	}
	s, idx, ok := f.Level(image, 0)
	if !ok {
		return ports.ImageInfo{}, false
	}
	return ports.ImageInfo{
		ImageIndex:      image,
		TotalLevels:     f.ImageLevels(image),
		OrigWidth:       uint32(s.OrigWidth),
		OrigHeight:      uint32(s.OrigHeight),
		Width:           uint32(s.NumBlocksX) * 4,
		Height:          uint32(s.NumBlocksY) * 4,
		NumBlocksX:      uint32(s.NumBlocksX),
		NumBlocksY:      uint32(s.NumBlocksY),
		TotalBlocks:     s.TotalBlocks(),
		FirstSliceIndex: uint32(idx),
		AlphaFlag:       f.alphaFlag(s),
		IFrameFlag:      s.IFrame(),
	}, true
}

func (f *File) imageLevelInfo(image, level uint32) (ports.ImageLevelInfo, bool) {
	s, idx, ok := f.Level(image, level)
	if !ok {
		return ports.ImageLevelInfo{}, false
	}
	return ports.ImageLevelInfo{
		ImageIndex:      image,
		LevelIndex:      level,
		OrigWidth:       uint32(s.OrigWidth),
		OrigHeight:      uint32(s.OrigHeight),
		Width:           uint32(s.NumBlocksX) * 4,
		Height:          uint32(s.NumBlocksY) * 4,
		NumBlocksX:      uint32(s.NumBlocksX),
		NumBlocksY:      uint32(s.NumBlocksY),
		TotalBlocks:     s.TotalBlocks(),
		FirstSliceIndex: uint32(idx),
		AlphaFlag:       f.alphaFlag(s),
		IFrameFlag:      s.IFrame(),
	}, true
}

func (f *File) fileInfo() ports.FileInfo {
	h := f.Header
	info := ports.FileInfo{
		Version:              uint32(h.Version),
		TotalHeaderSize:      uint32(h.HeaderSize),
		TotalSelectors:       uint32(h.TotalSelectors),
		SelectorCodebookSize: h.SelectorCBFileSize,
		TotalEndpoints:       uint32(h.TotalEndpoints),
		EndpointCodebookSize: h.EndpointCBFileSize,
		TablesSize:           h.TablesFileSize,
		TexType:              uint32(h.TexType),
		USPerFrame:           h.USPerFrame,
		TotalImages:          h.TotalImages,
		UserData0:            h.UserData0,
		UserData1:            h.UserData1,
		TexFormat:            uint32(h.TexFormat),
		YFlipped:             h.Flags&FlagYFlipped != 0,
		ETC1S:                h.ETC1S(),
		HasAlphaSlices:       h.HasAlphaSlices(),
		SliceInfo:            make([]ports.SliceInfo, len(f.Slices)),
		ImageMipmapLevels:    make([]uint32, h.TotalImages),
	}
	for i, s := range f.Slices {
		info.SlicesSize += s.FileSize
		info.SliceInfo[i] = ports.SliceInfo{
			OrigWidth:      uint32(s.OrigWidth),
			OrigHeight:     uint32(s.OrigHeight),
			Width:          uint32(s.NumBlocksX) * 4,
			Height:         uint32(s.NumBlocksY) * 4,
			NumBlocksX:     uint32(s.NumBlocksX),
			NumBlocksY:     uint32(s.NumBlocksY),
			TotalBlocks:    s.TotalBlocks(),
			CompressedSize: s.FileSize,
			SliceIndex:     uint32(i),
			ImageIndex:     s.ImageIndex,
			LevelIndex:     uint32(s.LevelIndex),
			UnpackedCRC16:  uint32(s.DataCRC),
			AlphaFlag:      s.HasAlpha(),
			IFrameFlag:     s.IFrame(),
		}
	}
	for i := range info.ImageMipmapLevels {
		info.ImageMipmapLevels[i] = f.ImageLevels(uint32(i))
	}
	return info
}
