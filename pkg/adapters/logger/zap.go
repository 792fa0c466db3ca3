package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/user/basiskit/pkg/ports"
)

// ZapLogger writes structured log lines through zap. Messages are logged
// untranslated so that they stay stable for log processing.
type ZapLogger struct {
	base      *zap.Logger
	component string
}

// NewZap creates a JSON logger writing to stderr at the given level.
func NewZap(level ports.LogLevel) (*ZapLogger, error) {
	if level == ports.LevelQuiet {
		return NewZapFrom(zap.NewNop()), nil
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel(level))
	cfg.Sampling = nil
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	base, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logger: build zap logger: %w", err)
	}
	return NewZapFrom(base), nil
}

// NewZapFrom wraps an existing zap logger.
func NewZapFrom(base *zap.Logger) *ZapLogger {
	return &ZapLogger{base: base}
}

// Zap returns the underlying zap logger, named after the component if one
// is set.
func (l *ZapLogger) Zap() *zap.Logger {
	if l.component != "" {
		return l.base.Named(l.component)
	}
	return l.base
}

func (l *ZapLogger) Debug(msg string, args ...interface{}) {
	if ce := l.Zap().Check(zapcore.DebugLevel, ""); ce != nil {
		ce.Message = fmt.Sprintf(msg, args...)
		ce.Write()
	}
}

func (l *ZapLogger) Info(msg string, args ...interface{}) {
	l.Zap().Info(fmt.Sprintf(msg, args...))
}

func (l *ZapLogger) Warn(msg string, args ...interface{}) {
	l.Zap().Warn(fmt.Sprintf(msg, args...))
}

func (l *ZapLogger) Error(msg string, args ...interface{}) {
	l.Zap().Error(fmt.Sprintf(msg, args...))
}

// WithComponent returns a logger named after component.
func (l *ZapLogger) WithComponent(component string) ports.Logger {
	return &ZapLogger{base: l.base, component: component}
}

// Sync flushes buffered log entries.
func (l *ZapLogger) Sync() error {
	return l.base.Sync()
}

func zapLevel(level ports.LogLevel) zapcore.Level {
	switch level {
	case ports.LevelDebug:
		return zapcore.DebugLevel
	case ports.LevelWarn:
		return zapcore.WarnLevel
	case ports.LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

var _ ports.Logger = (*ZapLogger)(nil)
