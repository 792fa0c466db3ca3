//go:build basisu_native && !cgo

package basisnative

import (
	"errors"

	"github.com/user/basiskit/pkg/adapters/basisgo"
	"github.com/user/basiskit/pkg/ports"
)

var errNoCGO = errors.New("basisnative: basisu_native set but CGO is disabled (set CGO_ENABLED=1)")

func Enabled() bool { return false }

type Engine struct {
	*basisgo.Engine
}

func New(log ports.Logger) (*Engine, error) {
	return nil, errNoCGO
}
