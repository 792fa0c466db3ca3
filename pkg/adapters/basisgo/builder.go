package basisgo

import (
	"encoding/binary"
)

// Builder writes structurally valid containers with correct checksums.
// Slice payloads and codebooks are filler bytes, so the result is good for
// metadata work and engine plumbing but not for real decoding.
type Builder struct {
	TexFormat  uint8
	TexType    uint8
	USPerFrame uint32
	UserData0  uint32
	UserData1  uint32
	YFlipped   bool

	// AlphaSlices stores a separate alpha slice after each color slice
	// (ETC1S) or flags every slice as carrying alpha (UASTC).
	AlphaSlices bool

	// PayloadSize is the filler size of each slice. Zero selects 16 bytes.
	PayloadSize int

	images []builderImage
}

type builderImage struct {
	width, height uint32
	levels        int
}

// NewBuilder returns a Builder for the given raw format code
// (0 for ETC1S, 1 for UASTC).
func NewBuilder(texFormat uint8) *Builder {
	return &Builder{TexFormat: texFormat}
}

// AddImage appends an image with a mip chain of levels, each half the size
// of the previous one and never smaller than 1x1.
func (b *Builder) AddImage(width, height uint32, levels int) *Builder {
	b.images = append(b.images, builderImage{width: width, height: height, levels: levels})
	return b
}

const (
	fillerCodebookSize = 32
	fillerTablesSize   = 24
)

// Build returns the encoded container.
func (b *Builder) Build() []byte {
	payload := b.PayloadSize
	if payload <= 0 {
		payload = 16
	}

	var slices []SliceDesc
	for img, im := range b.images {
		for l := 0; l < im.levels; l++ {
			w, h := max(im.width>>uint(l), 1), max(im.height>>uint(l), 1)
			s := SliceDesc{
				ImageIndex: uint32(img),
				LevelIndex: uint8(l),
				OrigWidth:  uint16(w),
				OrigHeight: uint16(h),
				NumBlocksX: uint16((w + 3) / 4),
				NumBlocksY: uint16((h + 3) / 4),
				FileSize:   uint32(payload),
			}
			if b.TexType == 3 && img == 0 {
				s.Flags |= SliceIFrame
			}
			if b.AlphaSlices && b.TexFormat != texFormatETC1S {
				s.Flags |= SliceHasAlpha
			}
			slices = append(slices, s)
			if b.AlphaSlices && b.TexFormat == texFormatETC1S {
				a := s
				a.Flags |= SliceHasAlpha
				slices = append(slices, a)
			}
		}
	}

	endpointOfs := uint32(HeaderSize)
	selectorOfs := endpointOfs + fillerCodebookSize
	tablesOfs := selectorOfs + fillerCodebookSize
	sliceDescOfs := tablesOfs + fillerTablesSize
	dataOfs := sliceDescOfs + uint32(len(slices))*SliceDescSize
	total := dataOfs + uint32(len(slices)*payload)

	out := make([]byte, total)
	for i := HeaderSize; i < int(dataOfs); i++ {
		out[i] = byte(i * 7)
	}
	for i := range slices {
		slices[i].FileOfs = dataOfs + uint32(i*payload)
		chunk := out[slices[i].FileOfs : slices[i].FileOfs+uint32(payload)]
		for j := range chunk {
			chunk[j] = byte(i*31 + j)
		}
		slices[i].DataCRC = CRC16(chunk)
		marshalSliceDesc(out[sliceDescOfs+uint32(i)*SliceDescSize:], slices[i])
	}

	h := Header{
		Signature:          Signature,
		Version:            Version,
		HeaderSize:         HeaderSize,
		DataSize:           total - HeaderSize,
		TotalSlices:        uint32(len(slices)),
		TotalImages:        uint32(len(b.images)),
		TexFormat:          b.TexFormat,
		TexType:            b.TexType,
		USPerFrame:         b.USPerFrame,
		UserData0:          b.UserData0,
		UserData1:          b.UserData1,
		TotalEndpoints:     4,
		EndpointCBFileOfs:  endpointOfs,
		EndpointCBFileSize: fillerCodebookSize,
		TotalSelectors:     4,
		SelectorCBFileOfs:  selectorOfs,
		SelectorCBFileSize: fillerCodebookSize,
		TablesFileOfs:      tablesOfs,
		TablesFileSize:     fillerTablesSize,
		SliceDescFileOfs:   sliceDescOfs,
	}
	if b.TexFormat == texFormatETC1S {
		h.Flags |= FlagETC1S
	}
	if b.YFlipped {
		h.Flags |= FlagYFlipped
	}
	if b.AlphaSlices && b.TexFormat == texFormatETC1S {
		h.Flags |= FlagHasAlphaSlices
	}
	h.DataCRC = CRC16(out[HeaderSize:])

	hdr := MarshalHeader(h)
	copy(out, hdr[:])
	binary.LittleEndian.PutUint16(out[6:], headerCRC(out))
	return out
}
