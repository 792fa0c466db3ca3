package basis

import "github.com/user/basiskit/pkg/ports"

// ImageLevelDesc is the geometry of one (image, level) unit.
type ImageLevelDesc struct {
	OrigWidth   uint32 `json:"orig_width"`
	OrigHeight  uint32 `json:"orig_height"`
	TotalBlocks uint32 `json:"total_blocks"`
}

// UserData holds the two user-defined header words.
type UserData struct {
	UserData0 uint32 `json:"userdata0"`
	UserData1 uint32 `json:"userdata1"`
}

// ImageInfo describes the base level of an image.
type ImageInfo struct {
	ImageIndex      uint32 `json:"image_index"`
	TotalLevels     uint32 `json:"total_levels"`
	OrigWidth       uint32 `json:"orig_width"`
	OrigHeight      uint32 `json:"orig_height"`
	Width           uint32 `json:"width"`
	Height          uint32 `json:"height"`
	NumBlocksX      uint32 `json:"num_blocks_x"`
	NumBlocksY      uint32 `json:"num_blocks_y"`
	TotalBlocks     uint32 `json:"total_blocks"`
	FirstSliceIndex uint32 `json:"first_slice_index"`
	HasAlpha        bool   `json:"has_alpha"`
	IFrame          bool   `json:"iframe"`
}

// ImageLevelInfo describes one (image, level) unit.
type ImageLevelInfo struct {
	ImageIndex      uint32 `json:"image_index"`
	LevelIndex      uint32 `json:"level_index"`
	OrigWidth       uint32 `json:"orig_width"`
	OrigHeight      uint32 `json:"orig_height"`
	Width           uint32 `json:"width"`
	Height          uint32 `json:"height"`
	NumBlocksX      uint32 `json:"num_blocks_x"`
	NumBlocksY      uint32 `json:"num_blocks_y"`
	TotalBlocks     uint32 `json:"total_blocks"`
	FirstSliceIndex uint32 `json:"first_slice_index"`
	HasAlpha        bool   `json:"has_alpha"`
	IFrame          bool   `json:"iframe"`
}

// Desc returns the geometry part of the level description.
func (i ImageLevelInfo) Desc() ImageLevelDesc {
	return ImageLevelDesc{OrigWidth: i.OrigWidth, OrigHeight: i.OrigHeight, TotalBlocks: i.TotalBlocks}
}

// SliceInfo describes one compressed slice of the container.
type SliceInfo struct {
	SliceIndex     uint32 `json:"slice_index"`
	ImageIndex     uint32 `json:"image_index"`
	LevelIndex     uint32 `json:"level_index"`
	OrigWidth      uint32 `json:"orig_width"`
	OrigHeight     uint32 `json:"orig_height"`
	Width          uint32 `json:"width"`
	Height         uint32 `json:"height"`
	NumBlocksX     uint32 `json:"num_blocks_x"`
	NumBlocksY     uint32 `json:"num_blocks_y"`
	TotalBlocks    uint32 `json:"total_blocks"`
	CompressedSize uint32 `json:"compressed_size"`
	UnpackedCRC16  uint32 `json:"unpacked_crc16"`
	HasAlpha       bool   `json:"has_alpha"`
	IFrame         bool   `json:"iframe"`
}

// FileInfo describes a whole container.
type FileInfo struct {
	Version              uint32      `json:"version"`
	TotalHeaderSize      uint32      `json:"total_header_size"`
	TotalSelectors       uint32      `json:"total_selectors"`
	SelectorCodebookSize uint32      `json:"selector_codebook_size"`
	TotalEndpoints       uint32      `json:"total_endpoints"`
	EndpointCodebookSize uint32      `json:"endpoint_codebook_size"`
	TablesSize           uint32      `json:"tables_size"`
	SlicesSize           uint32      `json:"slices_size"`
	TextureType          TextureType `json:"-"`
	TextureTypeName      string      `json:"texture_type"`
	USPerFrame           uint32      `json:"us_per_frame"`
	Slices               []SliceInfo `json:"slices"`
	TotalImages          uint32      `json:"total_images"`
	ImageMipmapLevels    []uint32    `json:"image_mipmap_levels"`
	UserData             UserData    `json:"userdata"`
	Format               BasisFormat `json:"-"`
	FormatName           string      `json:"format"`
	YFlipped             bool        `json:"y_flipped"`
	HasAlphaSlices       bool        `json:"has_alpha_slices"`
}

// ETC1S reports whether the container is ETC1S encoded.
func (f FileInfo) ETC1S() bool {
	return f.Format == FormatETC1S
}

func imageInfoFromPort(p ports.ImageInfo) ImageInfo {
	return ImageInfo{
		ImageIndex:      p.ImageIndex,
		TotalLevels:     p.TotalLevels,
		OrigWidth:       p.OrigWidth,
		OrigHeight:      p.OrigHeight,
		Width:           p.Width,
		Height:          p.Height,
		NumBlocksX:      p.NumBlocksX,
		NumBlocksY:      p.NumBlocksY,
		TotalBlocks:     p.TotalBlocks,
		FirstSliceIndex: p.FirstSliceIndex,
		HasAlpha:        p.AlphaFlag,
		IFrame:          p.IFrameFlag,
	}
}

func imageLevelInfoFromPort(p ports.ImageLevelInfo) ImageLevelInfo {
	return ImageLevelInfo{
		ImageIndex:      p.ImageIndex,
		LevelIndex:      p.LevelIndex,
		OrigWidth:       p.OrigWidth,
		OrigHeight:      p.OrigHeight,
		Width:           p.Width,
		Height:          p.Height,
		NumBlocksX:      p.NumBlocksX,
		NumBlocksY:      p.NumBlocksY,
		TotalBlocks:     p.TotalBlocks,
		FirstSliceIndex: p.FirstSliceIndex,
		HasAlpha:        p.AlphaFlag,
		IFrame:          p.IFrameFlag,
	}
}

func fileInfoFromPort(p ports.FileInfo) FileInfo {
	tt := textureTypeFromRaw(p.TexType)
	bf := basisFormatFromRaw(p.TexFormat)
	if p.ETC1S != (bf == FormatETC1S) {
		invariant("ETC1S flag disagrees with format %s", bf)
	}
	slices := make([]SliceInfo, len(p.SliceInfo))
	for i, s := range p.SliceInfo {
		slices[i] = SliceInfo{
			SliceIndex:     s.SliceIndex,
			ImageIndex:     s.ImageIndex,
			LevelIndex:     s.LevelIndex,
			OrigWidth:      s.OrigWidth,
			OrigHeight:     s.OrigHeight,
			Width:          s.Width,
			Height:         s.Height,
			NumBlocksX:     s.NumBlocksX,
			NumBlocksY:     s.NumBlocksY,
			TotalBlocks:    s.TotalBlocks,
			CompressedSize: s.CompressedSize,
			UnpackedCRC16:  s.UnpackedCRC16,
			HasAlpha:       s.AlphaFlag,
			IFrame:         s.IFrameFlag,
		}
	}
	return FileInfo{
		Version:              p.Version,
		TotalHeaderSize:      p.TotalHeaderSize,
		TotalSelectors:       p.TotalSelectors,
		SelectorCodebookSize: p.SelectorCodebookSize,
		TotalEndpoints:       p.TotalEndpoints,
		EndpointCodebookSize: p.EndpointCodebookSize,
		TablesSize:           p.TablesSize,
		SlicesSize:           p.SlicesSize,
		TextureType:          tt,
		TextureTypeName:      tt.String(),
		USPerFrame:           p.USPerFrame,
		Slices:               slices,
		TotalImages:          p.TotalImages,
		ImageMipmapLevels:    append([]uint32(nil), p.ImageMipmapLevels...),
		UserData:             UserData{UserData0: p.UserData0, UserData1: p.UserData1},
		Format:               bf,
		FormatName:           bf.String(),
		YFlipped:             p.YFlipped,
		HasAlphaSlices:       p.HasAlphaSlices,
	}
}
