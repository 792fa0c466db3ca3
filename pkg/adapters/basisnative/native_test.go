package basisnative

import (
	"testing"
)

func TestNewMatchesEnabled(t *testing.T) {
	e, err := New(nil)
	if Enabled() {
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		defer e.Close()
		return
	}
	if err == nil || e != nil {
		t.Fatalf("New() = %v, %v; want error in a build without the native library", e, err)
	}
}
