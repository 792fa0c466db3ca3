// Package basisgo reads .basis containers in pure Go.
//
// It implements every metadata query of ports.Engine and tracks transcoding
// passes, but carries no block codec: level transcodes report failure. It is
// the fallback engine and the metadata reader behind the other engines.
package basisgo

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// HeaderSize is the size in bytes of the file header.
	HeaderSize = 77
	// SliceDescSize is the size in bytes of one slice descriptor.
	SliceDescSize = 23

	// Signature is the "sB" magic stored little-endian in the first two bytes.
	Signature = uint16('B')<<8 | uint16('s')
	// Version is the only container version understood.
	Version = 0x13

	// MaxLevels is the largest mip chain a container may describe.
	MaxLevels = 16

	texFormatETC1S = 0
	texFormatUASTC = 1
	texTypeTotal   = 5
)

// Header flags.
const (
	FlagETC1S              uint16 = 1
	FlagYFlipped           uint16 = 2
	FlagHasAlphaSlices     uint16 = 4
	FlagUsesGlobalCodebook uint16 = 8
	FlagSRGB               uint16 = 16
)

// Slice flags.
const (
	SliceHasAlpha uint8 = 1
	SliceIFrame   uint8 = 2
)

var (
	errShort     = errors.New("basisgo: data too short for header")
	errSignature = errors.New("basisgo: invalid signature")
	errVersion   = errors.New("basisgo: unsupported version")
	errHdrSize   = errors.New("basisgo: unexpected header size")
)

// Header is the fixed file header of a .basis container.
type Header struct {
	Signature  uint16
	Version    uint16
	HeaderSize uint16
	HeaderCRC  uint16

	DataSize uint32
	DataCRC  uint16

	TotalSlices uint32
	TotalImages uint32

	TexFormat  uint8
	Flags      uint16
	TexType    uint8
	USPerFrame uint32

	Reserved  uint32
	UserData0 uint32
	UserData1 uint32

	TotalEndpoints     uint16
	EndpointCBFileOfs  uint32
	EndpointCBFileSize uint32
	TotalSelectors     uint16
	SelectorCBFileOfs  uint32
	SelectorCBFileSize uint32
	TablesFileOfs      uint32
	TablesFileSize     uint32
	SliceDescFileOfs   uint32
	ExtendedFileOfs    uint32
	ExtendedFileSize   uint32
}

func (h Header) String() string {
	return fmt.Sprintf("basis v%#x, %d images in %d slices, format %d, type %d",
		h.Version, h.TotalImages, h.TotalSlices, h.TexFormat, h.TexType)
}

// ETC1S reports whether the payload is ETC1S encoded.
func (h Header) ETC1S() bool {
	return h.TexFormat == texFormatETC1S
}

// HasAlphaSlices reports whether every level carries a separate alpha slice.
func (h Header) HasAlphaSlices() bool {
	return h.Flags&FlagHasAlphaSlices != 0
}

// SliceDesc describes one compressed slice.
type SliceDesc struct {
	ImageIndex uint32
	LevelIndex uint8
	Flags      uint8
	OrigWidth  uint16
	OrigHeight uint16
	NumBlocksX uint16
	NumBlocksY uint16
	FileOfs    uint32
	FileSize   uint32
	DataCRC    uint16
}

// HasAlpha reports whether the slice holds alpha data.
func (s SliceDesc) HasAlpha() bool {
	return s.Flags&SliceHasAlpha != 0
}

// IFrame reports whether the slice is a video key frame.
func (s SliceDesc) IFrame() bool {
	return s.Flags&SliceIFrame != 0
}

// TotalBlocks returns the block count of the slice.
func (s SliceDesc) TotalBlocks() uint32 {
	return uint32(s.NumBlocksX) * uint32(s.NumBlocksY)
}

// ParseHeader decodes the fixed header. It only checks the signature,
// version and header size; use Validate for the structural checks.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, errShort
	}
	le := binary.LittleEndian
	h := Header{
		Signature:          le.Uint16(data[0:]),
		Version:            le.Uint16(data[2:]),
		HeaderSize:         le.Uint16(data[4:]),
		HeaderCRC:          le.Uint16(data[6:]),
		DataSize:           le.Uint32(data[8:]),
		DataCRC:            le.Uint16(data[12:]),
		TotalSlices:        decodeU24LE(data[14:]),
		TotalImages:        decodeU24LE(data[17:]),
		TexFormat:          data[20],
		Flags:              le.Uint16(data[21:]),
		TexType:            data[23],
		USPerFrame:         decodeU24LE(data[24:]),
		Reserved:           le.Uint32(data[27:]),
		UserData0:          le.Uint32(data[31:]),
		UserData1:          le.Uint32(data[35:]),
		TotalEndpoints:     le.Uint16(data[39:]),
		EndpointCBFileOfs:  le.Uint32(data[41:]),
		EndpointCBFileSize: decodeU24LE(data[45:]),
		TotalSelectors:     le.Uint16(data[48:]),
		SelectorCBFileOfs:  le.Uint32(data[50:]),
		SelectorCBFileSize: decodeU24LE(data[54:]),
		TablesFileOfs:      le.Uint32(data[57:]),
		TablesFileSize:     le.Uint32(data[61:]),
		SliceDescFileOfs:   le.Uint32(data[65:]),
		ExtendedFileOfs:    le.Uint32(data[69:]),
		ExtendedFileSize:   le.Uint32(data[73:]),
	}
	switch {
	case h.Signature != Signature:
		return Header{}, errSignature
	case h.Version != Version:
		return Header{}, fmt.Errorf("%w: %#x", errVersion, h.Version)
	case h.HeaderSize != HeaderSize:
		return Header{}, fmt.Errorf("%w: %d", errHdrSize, h.HeaderSize)
	}
	return h, nil
}

// MarshalHeader returns the wire encoding of h. CRC fields are written as
// they are; see Builder for a writer that fills them in.
func MarshalHeader(h Header) [HeaderSize]byte {
	var out [HeaderSize]byte
	le := binary.LittleEndian
	le.PutUint16(out[0:], h.Signature)
	le.PutUint16(out[2:], h.Version)
	le.PutUint16(out[4:], h.HeaderSize)
	le.PutUint16(out[6:], h.HeaderCRC)
	le.PutUint32(out[8:], h.DataSize)
	le.PutUint16(out[12:], h.DataCRC)
	encodeU24LE(out[14:], h.TotalSlices)
	encodeU24LE(out[17:], h.TotalImages)
	out[20] = h.TexFormat
	le.PutUint16(out[21:], h.Flags)
	out[23] = h.TexType
	encodeU24LE(out[24:], h.USPerFrame)
	le.PutUint32(out[27:], h.Reserved)
	le.PutUint32(out[31:], h.UserData0)
	le.PutUint32(out[35:], h.UserData1)
	le.PutUint16(out[39:], h.TotalEndpoints)
	le.PutUint32(out[41:], h.EndpointCBFileOfs)
	encodeU24LE(out[45:], h.EndpointCBFileSize)
	le.PutUint16(out[48:], h.TotalSelectors)
	le.PutUint32(out[50:], h.SelectorCBFileOfs)
	encodeU24LE(out[54:], h.SelectorCBFileSize)
	le.PutUint32(out[57:], h.TablesFileOfs)
	le.PutUint32(out[61:], h.TablesFileSize)
	le.PutUint32(out[65:], h.SliceDescFileOfs)
	le.PutUint32(out[69:], h.ExtendedFileOfs)
	le.PutUint32(out[73:], h.ExtendedFileSize)
	return out
}

func parseSliceDesc(b []byte) SliceDesc {
	le := binary.LittleEndian
	return SliceDesc{
		ImageIndex: decodeU24LE(b[0:]),
		LevelIndex: b[3],
		Flags:      b[4],
		OrigWidth:  le.Uint16(b[5:]),
		OrigHeight: le.Uint16(b[7:]),
		NumBlocksX: le.Uint16(b[9:]),
		NumBlocksY: le.Uint16(b[11:]),
		FileOfs:    le.Uint32(b[13:]),
		FileSize:   le.Uint32(b[17:]),
		DataCRC:    le.Uint16(b[21:]),
	}
}

func marshalSliceDesc(b []byte, s SliceDesc) {
	le := binary.LittleEndian
	encodeU24LE(b[0:], s.ImageIndex)
	b[3] = s.LevelIndex
	b[4] = s.Flags
	le.PutUint16(b[5:], s.OrigWidth)
	le.PutUint16(b[7:], s.OrigHeight)
	le.PutUint16(b[9:], s.NumBlocksX)
	le.PutUint16(b[11:], s.NumBlocksY)
	le.PutUint32(b[13:], s.FileOfs)
	le.PutUint32(b[17:], s.FileSize)
	le.PutUint16(b[21:], s.DataCRC)
}

func decodeU24LE(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

func encodeU24LE(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}
