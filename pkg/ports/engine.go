package ports

// Engine abstracts the block decode library that understands the .basis
// container and performs the actual block transcoding.
//
// All enumerations cross this boundary as raw integer codes; mapping them onto
// typed values is the caller's job. Engines own whatever native state they
// need and must be released with Close.
type Engine interface {
	// InitGlobal performs the library's process-wide initialisation.
	// It must be safe to call more than once.
	InitGlobal()

	// ValidateHeader reports whether data starts with a well-formed header.
	ValidateHeader(data []byte) bool

	// ValidateChecksums verifies the header checksum and, when full is set,
	// the payload checksum as well.
	ValidateChecksums(data []byte, full bool) bool

	// TextureType returns the raw texture type code of the container.
	TextureType(data []byte) uint32

	// TexFormat returns the raw source (basis) format code of the container.
	TexFormat(data []byte) uint32

	// UserData returns the two user-defined words stored in the header.
	UserData(data []byte) (userdata0, userdata1 uint32, ok bool)

	// TotalImages returns the number of images in the container.
	TotalImages(data []byte) uint32

	// TotalImageLevels returns the mip level count of an image, 0 when the
	// image index is out of range.
	TotalImageLevels(data []byte, image uint32) uint32

	// ImageLevelDesc returns the original dimensions and block count of one
	// (image, level) unit.
	ImageLevelDesc(data []byte, image, level uint32) (origWidth, origHeight, totalBlocks uint32, ok bool)

	// ImageInfo describes the base level of an image.
	ImageInfo(data []byte, image uint32) (ImageInfo, bool)

	// ImageLevelInfo describes one (image, level) unit in detail.
	ImageLevelInfo(data []byte, image, level uint32) (ImageLevelInfo, bool)

	// FileInfo describes the whole container.
	FileInfo(data []byte) (FileInfo, bool)

	// StartTranscoding prepares the engine to transcode levels of data.
	StartTranscoding(data []byte) bool

	// StopTranscoding ends the pass started by StartTranscoding.
	StopTranscoding() bool

	// TranscodeImageLevel writes one (image, level) unit into out, which holds
	// outElems blocks (compressed formats) or pixels (uncompressed formats).
	TranscodeImageLevel(data []byte, image, level uint32, out []byte, outElems uint32, format uint32, params DecodeParams) bool

	// Close releases the engine.
	Close() error
}

// DecodeParams are the optional knobs of a level transcode.
// Zero values select the library defaults.
type DecodeParams struct {
	Flags    uint32
	RowPitch uint32
	Rows     uint32
}

// ImageInfo is the raw engine description of an image's base level.
type ImageInfo struct {
	ImageIndex      uint32
	TotalLevels     uint32
	OrigWidth       uint32
	OrigHeight      uint32
	Width           uint32
	Height          uint32
	NumBlocksX      uint32
	NumBlocksY      uint32
	TotalBlocks     uint32
	FirstSliceIndex uint32
	AlphaFlag       bool
	IFrameFlag      bool
}

// ImageLevelInfo is the raw engine description of one (image, level) unit.
type ImageLevelInfo struct {
	ImageIndex      uint32
	LevelIndex      uint32
	OrigWidth       uint32
	OrigHeight      uint32
	Width           uint32
	Height          uint32
	NumBlocksX      uint32
	NumBlocksY      uint32
	TotalBlocks     uint32
	FirstSliceIndex uint32
	AlphaFlag       bool
	IFrameFlag      bool
}

// SliceInfo is the raw engine description of one slice.
type SliceInfo struct {
	OrigWidth      uint32
	OrigHeight     uint32
	Width          uint32
	Height         uint32
	NumBlocksX     uint32
	NumBlocksY     uint32
	TotalBlocks    uint32
	CompressedSize uint32
	SliceIndex     uint32
	ImageIndex     uint32
	LevelIndex     uint32
	UnpackedCRC16  uint32
	AlphaFlag      bool
	IFrameFlag     bool
}

// FileInfo is the raw engine description of a whole container.
type FileInfo struct {
	Version              uint32
	TotalHeaderSize      uint32
	TotalSelectors       uint32
	SelectorCodebookSize uint32
	TotalEndpoints       uint32
	EndpointCodebookSize uint32
	TablesSize           uint32
	SlicesSize           uint32
	TexType              uint32
	USPerFrame           uint32
	SliceInfo            []SliceInfo
	TotalImages          uint32
	ImageMipmapLevels    []uint32
	UserData0            uint32
	UserData1            uint32
	TexFormat            uint32
	YFlipped             bool
	ETC1S                bool
	HasAlphaSlices       bool
}
