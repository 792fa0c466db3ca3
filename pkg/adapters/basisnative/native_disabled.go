//go:build !basisu_native

package basisnative

import (
	"errors"

	"github.com/user/basiskit/pkg/adapters/basisgo"
	"github.com/user/basiskit/pkg/ports"
)

var errDisabled = errors.New("basisnative: disabled (build with -tags basisu_native and CGO_ENABLED=1)")

// Enabled reports whether the CGO native implementation is available in this build.
func Enabled() bool { return false }

// Engine is unavailable in this build.
type Engine struct {
	*basisgo.Engine
}

func New(log ports.Logger) (*Engine, error) {
	return nil, errDisabled
}
