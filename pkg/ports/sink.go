package ports

import (
	"image"
)

// LevelKey identifies one transcoded unit written by a LevelSink.
type LevelKey struct {
	Image  uint32
	Level  uint32
	Format string
}

// LevelSink abstracts where transcoded output ends up.
// Implementations may write to disk, keep data in memory or discard it.
type LevelSink interface {
	// Enabled returns true if the sink persists anything.
	Enabled() bool

	// SaveLevel saves the raw transcoded bytes of one unit.
	SaveLevel(key LevelKey, data []byte) error

	// SavePreview saves a decoded preview of one unit.
	SavePreview(key LevelKey, img image.Image) error

	// SaveContactSheet saves the mip chain overview of one image and format.
	SaveContactSheet(imageIndex uint32, format string, img image.Image) error

	// SaveFileInfo saves the container description as JSON.
	SaveFileInfo(data []byte) error
}
