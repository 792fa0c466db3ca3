// Package containerio loads .basis containers that may be stored inside a
// zstd or LZ4 frame, and wraps transcoded output the same way.
package containerio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/user/basiskit/pkg/basis"
	"github.com/user/basiskit/pkg/ports"
)

// Wrapping identifies the outer framing of a file.
type Wrapping string

const (
	WrappingNone    Wrapping = "none"
	WrappingZstd    Wrapping = "zstd"
	WrappingLZ4     Wrapping = "lz4"
	WrappingUnknown Wrapping = "unknown"
)

var (
	zstdMagic  = []byte{0x28, 0xB5, 0x2F, 0xFD}
	lz4Magic   = []byte{0x04, 0x22, 0x4D, 0x18}
	basisMagic = []byte{'s', 'B'}
)

// ErrUnknownWrapping is returned for files that are neither a .basis
// container nor a supported compressed frame.
var ErrUnknownWrapping = errors.New("containerio: unrecognized file format")

// ParseWrapping parses a wrapping name. The empty string means none.
func ParseWrapping(s string) (Wrapping, error) {
	switch w := Wrapping(strings.ToLower(strings.TrimSpace(s))); w {
	case "", WrappingNone:
		return WrappingNone, nil
	case WrappingZstd, WrappingLZ4:
		return w, nil
	}
	return WrappingUnknown, fmt.Errorf("containerio: unknown compression %q", s)
}

// Extension returns the file suffix for the wrapping, including the dot.
func (w Wrapping) Extension() string {
	switch w {
	case WrappingZstd:
		return ".zst"
	case WrappingLZ4:
		return ".lz4"
	}
	return ""
}

// Detect identifies the framing of data from its leading bytes.
func Detect(data []byte) Wrapping {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		return WrappingZstd
	case bytes.HasPrefix(data, lz4Magic):
		return WrappingLZ4
	case bytes.HasPrefix(data, basisMagic):
		return WrappingNone
	}
	return WrappingUnknown
}

var zstdDecPool = sync.Pool{
	New: func() any {
		dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		return dec
	},
}

var zstdEncPool = sync.Pool{
	New: func() any {
		enc, _ := zstd.NewWriter(nil)
		return enc
	},
}

// Unwrap returns the container inside data. Uncompressed input is returned
// as is. Decompressed output larger than basis.MaxInputLen is rejected.
func Unwrap(data []byte) ([]byte, Wrapping, error) {
	w := Detect(data)
	switch w {
	case WrappingNone:
		return data, w, nil
	case WrappingZstd:
		dec := zstdDecPool.Get().(*zstd.Decoder)
		defer zstdDecPool.Put(dec)
		if err := dec.Reset(bytes.NewReader(data)); err != nil {
			return nil, w, fmt.Errorf("zstd decode: %w", err)
		}
		out, err := readLimited(dec)
		if err != nil {
			return nil, w, fmt.Errorf("zstd decode: %w", err)
		}
		return out, w, nil
	case WrappingLZ4:
		out, err := readLimited(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, w, fmt.Errorf("lz4 decode: %w", err)
		}
		return out, w, nil
	}
	return nil, w, ErrUnknownWrapping
}

func readLimited(r io.Reader) ([]byte, error) {
	var out bytes.Buffer
	n, err := out.ReadFrom(io.LimitReader(r, int64(basis.MaxInputLen)+1))
	if err != nil {
		return nil, err
	}
	if uint64(n) > basis.MaxInputLen {
		return nil, &basis.FileTooLongError{Len: int(n)}
	}
	return out.Bytes(), nil
}

// Wrap compresses data with w. WrappingNone returns data unchanged.
func Wrap(data []byte, w Wrapping) ([]byte, error) {
	switch w {
	case WrappingNone:
		return data, nil
	case WrappingZstd:
		var buf bytes.Buffer
		enc := zstdEncPool.Get().(*zstd.Encoder)
		defer zstdEncPool.Put(enc)
		enc.Reset(&buf)
		if _, err := enc.Write(data); err != nil {
			_ = enc.Close()
			return nil, fmt.Errorf("zstd encode: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("zstd encode: %w", err)
		}
		return buf.Bytes(), nil
	case WrappingLZ4:
		var buf bytes.Buffer
		zw := lz4.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return nil, fmt.Errorf("lz4 encode: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("lz4 encode: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, ErrUnknownWrapping
}

// Load reads path through fs and unwraps it.
func Load(fs ports.FileSystem, path string) ([]byte, Wrapping, error) {
	raw, err := fs.ReadFile(path)
	if err != nil {
		return nil, WrappingUnknown, fmt.Errorf("read %s: %w", path, err)
	}
	data, w, err := Unwrap(raw)
	if err != nil {
		return nil, w, fmt.Errorf("%s: %w", path, err)
	}
	return data, w, nil
}
