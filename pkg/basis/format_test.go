package basis

import (
	"errors"
	"testing"
)

func TestBlockSize(t *testing.T) {
	tests := []struct {
		target TargetFormat
		want   uint32
	}{
		{TargetETC1RGB, 8},
		{TargetETC2RGBA, 16},
		{TargetBC1RGB, 8},
		{TargetBC3RGBA, 16},
		{TargetBC4R, 8},
		{TargetBC5RG, 16},
		{TargetBC7RGBA, 16},
		{TargetPVRTC14RGB, 8},
		{TargetPVRTC14RGBA, 8},
		{TargetASTC4x4RGBA, 16},
		{TargetATCRGB, 8},
		{TargetATCRGBA, 16},
		{TargetFXT1RGB, 8},
		{TargetPVRTC24RGB, 8},
		{TargetPVRTC24RGBA, 8},
		{TargetETC2EACR11, 8},
		{TargetETC2EACRG11, 16},
		{TargetRGBA32, 4},
		{TargetRGB565, 2},
		{TargetBGR565, 2},
		{TargetRGBA4444, 2},
	}

	if len(tests) != len(AllTargetFormats()) {
		t.Fatalf("table covers %d formats, catalog has %d", len(tests), len(AllTargetFormats()))
	}
	for _, tt := range tests {
		t.Run(tt.target.String(), func(t *testing.T) {
			if got := BlockSize(tt.target); got != tt.want {
				t.Errorf("BlockSize(%s) = %d, want %d", tt.target, got, tt.want)
			}
		})
	}
}

func TestIsUncompressed(t *testing.T) {
	uncompressed := map[TargetFormat]bool{
		TargetRGBA32:   true,
		TargetRGB565:   true,
		TargetBGR565:   true,
		TargetRGBA4444: true,
	}
	for _, f := range AllTargetFormats() {
		if got := IsUncompressed(f); got != uncompressed[f] {
			t.Errorf("IsUncompressed(%s) = %v, want %v", f, got, uncompressed[f])
		}
	}
}

func TestRawCodes(t *testing.T) {
	want := []uint32{0, 1, 2, 3, 4, 5, 6, 8, 9, 10, 11, 12, 17, 18, 19, 20, 21, 13, 14, 15, 16}
	seen := make(map[uint32]bool)
	for i, f := range AllTargetFormats() {
		if got := f.raw(); got != want[i] {
			t.Errorf("%s.raw() = %d, want %d", f, got, want[i])
		}
		if seen[f.raw()] {
			t.Errorf("raw code %d used twice", f.raw())
		}
		seen[f.raw()] = true
	}
}

func TestRGBA4444NeverCompatible(t *testing.T) {
	for _, src := range []BasisFormat{FormatETC1S, FormatUASTC} {
		if IsCompatible(src, TargetRGBA4444) {
			t.Errorf("IsCompatible(%s, rgba4444) = true", src)
		}
		if err := compatibility(src, TargetRGBA4444); !errors.Is(err, ErrRGBA4444Unsupported) {
			t.Errorf("compatibility(%s, rgba4444) = %v", src, err)
		}
	}
}

func TestUASTCExclusions(t *testing.T) {
	excluded := []TargetFormat{TargetATCRGB, TargetATCRGBA, TargetFXT1RGB, TargetPVRTC24RGB, TargetPVRTC24RGBA}
	for _, f := range excluded {
		if IsCompatible(FormatUASTC, f) {
			t.Errorf("IsCompatible(uastc, %s) = true, want false", f)
		}
		if !IsCompatible(FormatETC1S, f) {
			t.Errorf("IsCompatible(etc1s, %s) = false, want true", f)
		}
		if err := compatibility(FormatUASTC, f); !errors.Is(err, ErrUASTCUnsupported) {
			t.Errorf("compatibility(uastc, %s) = %v", f, err)
		}
	}
}

func TestCompatibilityCount(t *testing.T) {
	count := func(src BasisFormat) int {
		n := 0
		for _, f := range AllTargetFormats() {
			if src.SupportsTextureFormat(f) {
				n++
			}
		}
		return n
	}
	if got := count(FormatETC1S); got != 20 {
		t.Errorf("ETC1S reaches %d formats, want 20", got)
	}
	if got := count(FormatUASTC); got != 15 {
		t.Errorf("UASTC reaches %d formats, want 15", got)
	}
}

func TestCheckCompatibility(t *testing.T) {
	if err := CheckCompatibility(FormatETC1S, TargetFXT1RGB); err != nil {
		t.Errorf("ETC1S to FXT1: %v", err)
	}

	err := CheckCompatibility(FormatUASTC, TargetATCRGBA)
	var fe *FormatError
	if !errors.As(err, &fe) || fe.Source != FormatUASTC || fe.Target != TargetATCRGBA {
		t.Fatalf("UASTC to ATC_RGBA: %v", err)
	}
	if !errors.Is(err, ErrUASTCUnsupported) {
		t.Errorf("error %v does not wrap ErrUASTCUnsupported", err)
	}
	if !errors.Is(CheckCompatibility(FormatETC1S, TargetRGBA4444), ErrRGBA4444Unsupported) {
		t.Error("RGBA4444 accepted")
	}
}

func TestOutputSize(t *testing.T) {
	desc := ImageLevelDesc{OrigWidth: 13, OrigHeight: 7, TotalBlocks: 8}

	tests := []struct {
		target    TargetFormat
		wantElems uint32
		wantSize  int
	}{
		{TargetBC1RGB, 8, 64},
		{TargetBC7RGBA, 8, 128},
		{TargetRGBA32, 91, 364},
		{TargetRGB565, 91, 182},
		{TargetBGR565, 91, 182},
	}
	for _, tt := range tests {
		t.Run(tt.target.String(), func(t *testing.T) {
			if got := OutputElementCount(tt.target, desc); got != tt.wantElems {
				t.Errorf("OutputElementCount = %d, want %d", got, tt.wantElems)
			}
			size, err := OutputSize(tt.target, desc)
			if err != nil {
				t.Fatalf("OutputSize error: %v", err)
			}
			if size != tt.wantSize {
				t.Errorf("OutputSize = %d, want %d", size, tt.wantSize)
			}
		})
	}
}

func TestOutputSizeOverflow(t *testing.T) {
	desc := ImageLevelDesc{OrigWidth: 1 << 20, OrigHeight: 1 << 20}
	if _, err := OutputSize(TargetRGBA32, desc); err == nil {
		t.Error("expected error for a level with more than 2^32 pixels")
	}
}

func TestParseTargetFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    TargetFormat
		wantErr bool
	}{
		{"bc7_rgba", TargetBC7RGBA, false},
		{"BC1_RGB", TargetBC1RGB, false},
		{"astc-4x4-rgba", TargetASTC4x4RGBA, false},
		{" rgba32 ", TargetRGBA32, false},
		{"etc2_eac_rg11", TargetETC2EACRG11, false},
		{"dxt1", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseTargetFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTargetFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseTargetFormat(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	for _, f := range AllTargetFormats() {
		got, err := ParseTargetFormat(f.String())
		if err != nil || got != f {
			t.Errorf("round trip of %s gave %s, %v", f, got, err)
		}
	}
}

func TestBlockDimensions(t *testing.T) {
	if w, h := TargetFXT1RGB.BlockDimensions(); w != 8 || h != 4 {
		t.Errorf("FXT1 block = %dx%d, want 8x4", w, h)
	}
	if w, h := TargetBC1RGB.BlockDimensions(); w != 4 || h != 4 {
		t.Errorf("BC1 block = %dx%d, want 4x4", w, h)
	}
	if w, h := TargetRGB565.BlockDimensions(); w != 1 || h != 1 {
		t.Errorf("RGB565 element = %dx%d, want 1x1", w, h)
	}
}

func TestUnknownRawCodesPanic(t *testing.T) {
	mustPanic := func(name string, fn func()) {
		t.Helper()
		defer func() {
			if recover() == nil {
				t.Errorf("%s did not panic", name)
			}
		}()
		fn()
	}
	mustPanic("basisFormatFromRaw(2)", func() { basisFormatFromRaw(2) })
	mustPanic("textureTypeFromRaw(6)", func() { textureTypeFromRaw(6) })
	mustPanic("TargetFormat(21).raw()", func() { TargetFormat(21).raw() })
}
