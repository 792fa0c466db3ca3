//go:build basisu_native && cgo

package basisu

/*
#cgo CXXFLAGS: -O3 -std=c++14 -I${SRCDIR}/upstream -DBASISD_SUPPORT_KTX2=0
#cgo darwin LDFLAGS: -lm
#cgo linux LDFLAGS: -lstdc++ -lm -pthread

#include <stdlib.h>
#include "bridge.h"
*/
import "C"

import (
	"unsafe"
)

func Init() {
	C.basisu_native_init()
}

func Create() unsafe.Pointer {
	return C.basisu_native_create()
}

func Destroy(h unsafe.Pointer) {
	if h != nil {
		C.basisu_native_destroy(h)
	}
}

func bytesPtr(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Pointer(&b[0])
}

func ValidateHeader(h unsafe.Pointer, data []byte) bool {
	if h == nil {
		return false
	}
	return C.basisu_native_validate_header(h, bytesPtr(data), C.uint32_t(len(data))) != 0
}

func ValidateChecksums(h unsafe.Pointer, data []byte, full bool) bool {
	if h == nil {
		return false
	}
	f := C.int(0)
	if full {
		f = 1
	}
	return C.basisu_native_validate_checksums(h, bytesPtr(data), C.uint32_t(len(data)), f) != 0
}

func StartTranscoding(h unsafe.Pointer, data []byte) bool {
	if h == nil {
		return false
	}
	return C.basisu_native_start_transcoding(h, bytesPtr(data), C.uint32_t(len(data))) != 0
}

func StopTranscoding(h unsafe.Pointer) bool {
	if h == nil {
		return false
	}
	return C.basisu_native_stop_transcoding(h) != 0
}

func TranscodeImageLevel(h unsafe.Pointer, data []byte, image, level uint32, out []byte, outElems, format, flags, rowPitch, rows uint32) bool {
	if h == nil {
		return false
	}
	return C.basisu_native_transcode_image_level(
		h,
		bytesPtr(data),
		C.uint32_t(len(data)),
		C.uint32_t(image),
		C.uint32_t(level),
		bytesPtr(out),
		C.uint32_t(outElems),
		C.uint32_t(format),
		C.uint32_t(flags),
		C.uint32_t(rowPitch),
		C.uint32_t(rows),
	) != 0
}
