package logger

import (
	"fmt"

	"github.com/user/basiskit/pkg/ports"
)

// New creates the logger selected by format. Quiet level always yields a
// NoopLogger.
func New(level ports.LogLevel, format ports.LogFormat) (ports.Logger, error) {
	if level == ports.LevelQuiet {
		return NewNoop(), nil
	}
	switch format {
	case ports.LogFormatConsole, "":
		return NewConsole(level), nil
	case ports.LogFormatJSON:
		return NewZap(level)
	default:
		return nil, fmt.Errorf("logger: unknown format %q", format)
	}
}

// Sync flushes l if its backend buffers output.
func Sync(l ports.Logger) error {
	if s, ok := l.(interface{ Sync() error }); ok {
		return s.Sync()
	}
	return nil
}
