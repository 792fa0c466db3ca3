package basis

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
)

// ErrPreviewUnsupported is returned by DecodeImage for formats it cannot
// expand to pixels.
var ErrPreviewUnsupported = errors.New("basis: no pixel decoder for format")

// CanDecodeImage reports whether DecodeImage supports t.
func CanDecodeImage(t TargetFormat) bool {
	switch t {
	case TargetRGBA32, TargetRGB565, TargetBGR565, TargetRGBA4444, TargetBC1RGB, TargetBC3RGBA:
		return true
	}
	return false
}

// DecodeImage expands transcoded level data into an image of the level's
// original size. Uncompressed layouts and the BC1/BC3 block formats are
// supported.
func DecodeImage(t TargetFormat, width, height int, data []byte) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("basis: invalid image size %dx%d", width, height)
	}
	if !CanDecodeImage(t) {
		return nil, fmt.Errorf("%w: %s", ErrPreviewUnsupported, t)
	}

	var need int
	if IsUncompressed(t) {
		need = width * height * int(BlockSize(t))
	} else {
		need = ((width + 3) / 4) * ((height + 3) / 4) * int(BlockSize(t))
	}
	if len(data) < need {
		return nil, fmt.Errorf("basis: %s data is %d bytes, need %d", t, len(data), need)
	}

	switch t {
	case TargetRGBA32:
		img := image.NewNRGBA(image.Rect(0, 0, width, height))
		copy(img.Pix, data[:need])
		return img, nil
	case TargetRGB565, TargetBGR565, TargetRGBA4444:
		img := image.NewNRGBA(image.Rect(0, 0, width, height))
		for i := 0; i < width*height; i++ {
			c := unpack16(t, binary.LittleEndian.Uint16(data[i*2:]))
			img.Pix[i*4+0] = c.R
			img.Pix[i*4+1] = c.G
			img.Pix[i*4+2] = c.B
			img.Pix[i*4+3] = c.A
		}
		return img, nil
	case TargetBC1RGB:
		return decodeBC1(width, height, data), nil
	default:
		return decodeBC3(width, height, data), nil
	}
}

func unpack16(t TargetFormat, v uint16) color.NRGBA {
	switch t {
	case TargetRGB565:
		return color.NRGBA{R: expand5(v >> 11), G: expand6(v >> 5), B: expand5(v), A: 255}
	case TargetBGR565:
		return color.NRGBA{R: expand5(v), G: expand6(v >> 5), B: expand5(v >> 11), A: 255}
	default:
		return color.NRGBA{R: expand4(v >> 12), G: expand4(v >> 8), B: expand4(v >> 4), A: expand4(v)}
	}
}

func expand4(v uint16) uint8 {
	v &= 0xF
	return uint8(v<<4 | v)
}

func expand5(v uint16) uint8 {
	v &= 0x1F
	return uint8(v<<3 | v>>2)
}

func expand6(v uint16) uint8 {
	v &= 0x3F
	return uint8(v<<2 | v>>4)
}

// bc1Palette builds the four colors of a BC1 block. With c0 <= c1 the block
// is in three-color mode and index 3 is transparent black, unless the block
// belongs to a BC3 texture where four-color mode always applies.
func bc1Palette(c0, c1 uint16, forceFour bool) [4]color.NRGBA {
	var p [4]color.NRGBA
	p[0] = unpack16(TargetRGB565, c0)
	p[1] = unpack16(TargetRGB565, c1)
	if c0 > c1 || forceFour {
		p[2] = mix(p[0], p[1], 2, 1, 3)
		p[3] = mix(p[0], p[1], 1, 2, 3)
	} else {
		p[2] = mix(p[0], p[1], 1, 1, 2)
		p[3] = color.NRGBA{}
	}
	return p
}

func mix(a, b color.NRGBA, wa, wb, div int) color.NRGBA {
	f := func(x, y uint8) uint8 { return uint8((int(x)*wa + int(y)*wb) / div) }
	return color.NRGBA{R: f(a.R, b.R), G: f(a.G, b.G), B: f(a.B, b.B), A: 255}
}

func bc3AlphaPalette(a0, a1 uint8) [8]uint8 {
	var p [8]uint8
	p[0], p[1] = a0, a1
	if a0 > a1 {
		for i := 1; i <= 6; i++ {
			p[i+1] = uint8((int(a0)*(7-i) + int(a1)*i) / 7)
		}
	} else {
		for i := 1; i <= 4; i++ {
			p[i+1] = uint8((int(a0)*(5-i) + int(a1)*i) / 5)
		}
		p[6], p[7] = 0, 255
	}
	return p
}

func decodeBC1(w, h int, data []byte) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	bw, bh := (w+3)/4, (h+3)/4
	off := 0
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			colors := bc1Palette(binary.LittleEndian.Uint16(data[off:]), binary.LittleEndian.Uint16(data[off+2:]), false)
			indices := binary.LittleEndian.Uint32(data[off+4:])
			off += 8
			for py := 0; py < 4; py++ {
				for px := 0; px < 4; px++ {
					x, y := bx*4+px, by*4+py
					if x >= w || y >= h {
						continue
					}
					img.SetNRGBA(x, y, colors[(indices>>uint(2*(py*4+px)))&3])
				}
			}
		}
	}
	return img
}

func decodeBC3(w, h int, data []byte) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	bw, bh := (w+3)/4, (h+3)/4
	off := 0
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			alpha := bc3AlphaPalette(data[off], data[off+1])
			var alphaBits uint64
			for i := 0; i < 6; i++ {
				alphaBits |= uint64(data[off+2+i]) << (8 * i)
			}
			colors := bc1Palette(binary.LittleEndian.Uint16(data[off+8:]), binary.LittleEndian.Uint16(data[off+10:]), true)
			indices := binary.LittleEndian.Uint32(data[off+12:])
			off += 16
			for py := 0; py < 4; py++ {
				for px := 0; px < 4; px++ {
					x, y := bx*4+px, by*4+py
					if x >= w || y >= h {
						continue
					}
					p := py*4 + px
					c := colors[(indices>>uint(2*p))&3]
					c.A = alpha[(alphaBits>>(3*uint(p)))&7]
					img.SetNRGBA(x, y, c)
				}
			}
		}
	}
	return img
}
