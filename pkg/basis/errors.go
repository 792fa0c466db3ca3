package basis

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidContainer is returned when the container header does not
	// validate.
	ErrInvalidContainer = errors.New("basis: invalid container header")

	// ErrBusy is returned by Prepare when another transcoding pass is
	// already active on the same Transcoder.
	ErrBusy = errors.New("basis: transcoder is busy")

	// ErrClosed is returned by every Transcoder call made after Close.
	ErrClosed = errors.New("basis: transcoder closed")

	// ErrSessionClosed is returned when a closed Prepared is used.
	ErrSessionClosed = errors.New("basis: transcoding session closed")

	// ErrLevelNotFound is returned when an (image, level) pair does not
	// exist in the container.
	ErrLevelNotFound = errors.New("basis: image level not found")

	// ErrRGBA4444Unsupported is returned for RGBA4444 targets, which no
	// source format can produce.
	ErrRGBA4444Unsupported = errors.New("basis: RGBA4444 output is not supported")

	// ErrUASTCUnsupported is returned when a UASTC container is asked for a
	// format only reachable from ETC1S.
	ErrUASTCUnsupported = errors.New("basis: format is not reachable from UASTC")

	// ErrDecodeFailed is returned when the engine rejects a level transcode.
	ErrDecodeFailed = errors.New("basis: decoding failed")
)

// MaxInputLen is the largest container the engine can address.
const MaxInputLen = 1<<32 - 1

// FileTooLongError reports an input buffer too large for the engine's
// 32-bit length parameter.
type FileTooLongError struct {
	Len int
}

func (e *FileTooLongError) Error() string {
	return fmt.Sprintf("basis: file of %d bytes exceeds the %d byte limit", e.Len, uint64(MaxInputLen))
}

// FormatError reports a source/target pair that cannot be transcoded.
// Err is ErrRGBA4444Unsupported or ErrUASTCUnsupported.
type FormatError struct {
	Source BasisFormat
	Target TargetFormat
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("basis: cannot transcode %s to %s: %v", e.Source, e.Target, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// invariant panics with a message describing an engine contract violation.
func invariant(format string, args ...interface{}) {
	panic(fmt.Sprintf("basis: invariant violated: "+format, args...))
}

// checkLen validates that data fits in the engine's length parameter.
func checkLen(data []byte) error {
	if uint64(len(data)) > MaxInputLen {
		return &FileTooLongError{Len: len(data)}
	}
	return nil
}
