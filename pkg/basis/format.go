package basis

import (
	"fmt"
	"math"
	"strings"
)

// TextureType is the layout of the images stored in a container.
type TextureType uint8

const (
	TextureType2D TextureType = iota
	TextureType2DArray
	TextureTypeCubemapArray
	TextureTypeVideoFrames
	TextureTypeVolume
	// TextureTypeTotal is the sentinel count reported by the engine.
	TextureTypeTotal
)

func (t TextureType) String() string {
	switch t {
	case TextureType2D:
		return "2d"
	case TextureType2DArray:
		return "2d_array"
	case TextureTypeCubemapArray:
		return "cubemap_array"
	case TextureTypeVideoFrames:
		return "video_frames"
	case TextureTypeVolume:
		return "volume"
	case TextureTypeTotal:
		return "total"
	default:
		return fmt.Sprintf("TextureType(%d)", uint8(t))
	}
}

func textureTypeFromRaw(raw uint32) TextureType {
	if raw > uint32(TextureTypeTotal) {
		invariant("unknown texture type code %d", raw)
	}
	return TextureType(raw)
}

// BasisFormat is the source encoding of a container.
type BasisFormat uint8

const (
	FormatETC1S BasisFormat = iota
	FormatUASTC
)

func (f BasisFormat) String() string {
	switch f {
	case FormatETC1S:
		return "etc1s"
	case FormatUASTC:
		return "uastc"
	default:
		return fmt.Sprintf("BasisFormat(%d)", uint8(f))
	}
}

// SupportsTextureFormat reports whether f can be transcoded to target.
func (f BasisFormat) SupportsTextureFormat(target TargetFormat) bool {
	return IsCompatible(f, target)
}

func basisFormatFromRaw(raw uint32) BasisFormat {
	switch raw {
	case 0:
		return FormatETC1S
	case 1:
		return FormatUASTC
	}
	invariant("unknown basis format code %d", raw)
	return 0
}

// TargetFormat is a GPU block format or uncompressed pixel layout that a
// level can be transcoded to.
type TargetFormat uint8

const (
	TargetETC1RGB TargetFormat = iota
	TargetETC2RGBA
	TargetBC1RGB
	TargetBC3RGBA
	TargetBC4R
	TargetBC5RG
	TargetBC7RGBA
	TargetPVRTC14RGB
	TargetPVRTC14RGBA
	TargetASTC4x4RGBA
	TargetATCRGB
	TargetATCRGBA
	TargetFXT1RGB
	TargetPVRTC24RGB
	TargetPVRTC24RGBA
	TargetETC2EACR11
	TargetETC2EACRG11
	TargetRGBA32
	TargetRGB565
	TargetBGR565
	TargetRGBA4444

	numTargetFormats
)

type targetFormatInfo struct {
	name      string
	raw       uint32
	blockSize uint32
	blockW    int
	blockH    int
	alpha     bool
}

var targetFormats = [numTargetFormats]targetFormatInfo{
	TargetETC1RGB:     {"etc1_rgb", 0, 8, 4, 4, false},
	TargetETC2RGBA:    {"etc2_rgba", 1, 16, 4, 4, true},
	TargetBC1RGB:      {"bc1_rgb", 2, 8, 4, 4, false},
	TargetBC3RGBA:     {"bc3_rgba", 3, 16, 4, 4, true},
	TargetBC4R:        {"bc4_r", 4, 8, 4, 4, false},
	TargetBC5RG:       {"bc5_rg", 5, 16, 4, 4, false},
	TargetBC7RGBA:     {"bc7_rgba", 6, 16, 4, 4, true},
	TargetPVRTC14RGB:  {"pvrtc1_4_rgb", 8, 8, 4, 4, false},
	TargetPVRTC14RGBA: {"pvrtc1_4_rgba", 9, 8, 4, 4, true},
	TargetASTC4x4RGBA: {"astc_4x4_rgba", 10, 16, 4, 4, true},
	TargetATCRGB:      {"atc_rgb", 11, 8, 4, 4, false},
	TargetATCRGBA:     {"atc_rgba", 12, 16, 4, 4, true},
	TargetFXT1RGB:     {"fxt1_rgb", 17, 8, 8, 4, false},
	TargetPVRTC24RGB:  {"pvrtc2_4_rgb", 18, 8, 4, 4, false},
	TargetPVRTC24RGBA: {"pvrtc2_4_rgba", 19, 8, 4, 4, true},
	TargetETC2EACR11:  {"etc2_eac_r11", 20, 8, 4, 4, false},
	TargetETC2EACRG11: {"etc2_eac_rg11", 21, 16, 4, 4, false},
	TargetRGBA32:      {"rgba32", 13, 4, 1, 1, true},
	TargetRGB565:      {"rgb565", 14, 2, 1, 1, false},
	TargetBGR565:      {"bgr565", 15, 2, 1, 1, false},
	TargetRGBA4444:    {"rgba4444", 16, 2, 1, 1, true},
}

func (t TargetFormat) info() targetFormatInfo {
	if t >= numTargetFormats {
		invariant("unknown target format %d", uint8(t))
	}
	return targetFormats[t]
}

func (t TargetFormat) String() string {
	if t >= numTargetFormats {
		return fmt.Sprintf("TargetFormat(%d)", uint8(t))
	}
	return targetFormats[t].name
}

// raw returns the engine code of t.
func (t TargetFormat) raw() uint32 {
	return t.info().raw
}

// HasAlpha reports whether the format stores an alpha channel.
func (t TargetFormat) HasAlpha() bool {
	return t.info().alpha
}

// BlockDimensions returns the texel footprint of one output element.
func (t TargetFormat) BlockDimensions() (width, height int) {
	i := t.info()
	return i.blockW, i.blockH
}

// AllTargetFormats returns every target format in catalog order.
func AllTargetFormats() []TargetFormat {
	out := make([]TargetFormat, numTargetFormats)
	for i := range out {
		out[i] = TargetFormat(i)
	}
	return out
}

// ParseTargetFormat looks a target format up by name, ignoring case.
// Dashes are accepted in place of underscores.
func ParseTargetFormat(name string) (TargetFormat, error) {
	n := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for i, f := range targetFormats {
		if f.name == n {
			return TargetFormat(i), nil
		}
	}
	return 0, fmt.Errorf("basis: unknown target format %q", name)
}

// BlockSize returns the number of bytes per output element of t: bytes per
// block for compressed formats, bytes per pixel for uncompressed ones.
func BlockSize(t TargetFormat) uint32 {
	return t.info().blockSize
}

// IsUncompressed reports whether t is a plain pixel layout.
func IsUncompressed(t TargetFormat) bool {
	switch t {
	case TargetRGBA32, TargetRGB565, TargetBGR565, TargetRGBA4444:
		return true
	}
	return false
}

// IsCompatible reports whether a container encoded as source can be
// transcoded to target.
func IsCompatible(source BasisFormat, target TargetFormat) bool {
	return compatibility(source, target) == nil
}

// CheckCompatibility returns a *FormatError when a container encoded as
// source cannot be transcoded to target.
func CheckCompatibility(source BasisFormat, target TargetFormat) error {
	if err := compatibility(source, target); err != nil {
		return &FormatError{Source: source, Target: target, Err: err}
	}
	return nil
}

// compatibility returns the sentinel explaining why the pair is rejected,
// or nil when it is allowed.
func compatibility(source BasisFormat, target TargetFormat) error {
	if target == TargetRGBA4444 {
		return ErrRGBA4444Unsupported
	}
	if source == FormatUASTC {
		switch target {
		case TargetATCRGB, TargetATCRGBA, TargetFXT1RGB, TargetPVRTC24RGB, TargetPVRTC24RGBA:
			return ErrUASTCUnsupported
		}
	}
	return nil
}

// OutputElementCount returns how many output elements a level occupies in
// target: pixels for uncompressed formats, blocks otherwise.
func OutputElementCount(t TargetFormat, desc ImageLevelDesc) uint32 {
	if IsUncompressed(t) {
		return desc.OrigWidth * desc.OrigHeight
	}
	return desc.TotalBlocks
}

// OutputSize returns the number of bytes needed to hold a level in target.
func OutputSize(t TargetFormat, desc ImageLevelDesc) (int, error) {
	var elems uint64
	if IsUncompressed(t) {
		elems = uint64(desc.OrigWidth) * uint64(desc.OrigHeight)
		if elems > math.MaxUint32 {
			return 0, fmt.Errorf("basis: %dx%d level has too many pixels", desc.OrigWidth, desc.OrigHeight)
		}
	} else {
		elems = uint64(desc.TotalBlocks)
	}
	size := elems * uint64(BlockSize(t))
	if size > uint64(math.MaxInt) {
		return 0, fmt.Errorf("basis: output of %d bytes exceeds addressable memory", size)
	}
	return int(size), nil
}
