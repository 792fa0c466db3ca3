// Package logger provides the ports.Logger implementations used by the CLI:
// a translated console logger, a zap JSON logger and a no-op logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/ideamans/go-l10n"
	"github.com/mattn/go-isatty"

	"github.com/user/basiskit/pkg/ports"
)

const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
)

// consoleOutput is shared by a logger and every logger derived from it, so
// lines from concurrent batch workers never interleave.
type consoleOutput struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	color  bool
}

// ConsoleLogger writes translated messages to the terminal. Progress goes to
// stdout, warnings and errors to stderr. Component names nest, so the core
// logger of the transcode stage prints as [transcode/basis].
type ConsoleLogger struct {
	level     ports.LogLevel
	component string
	output    *consoleOutput
}

// NewConsole creates a console logger on stdout and stderr. Color is enabled
// when stdout is a terminal.
func NewConsole(level ports.LogLevel) *ConsoleLogger {
	fd := os.Stdout.Fd()
	return NewConsoleTo(level, os.Stdout, os.Stderr, isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
}

// NewConsoleTo creates a console logger on the given writers.
func NewConsoleTo(level ports.LogLevel, out, errOut io.Writer, color bool) *ConsoleLogger {
	return &ConsoleLogger{
		level:  level,
		output: &consoleOutput{out: out, errOut: errOut, color: color},
	}
}

func (l *ConsoleLogger) Debug(msg string, args ...interface{}) {
	l.log(ports.LevelDebug, msg, args...)
}

func (l *ConsoleLogger) Info(msg string, args ...interface{}) {
	l.log(ports.LevelInfo, msg, args...)
}

func (l *ConsoleLogger) Warn(msg string, args ...interface{}) {
	l.log(ports.LevelWarn, msg, args...)
}

func (l *ConsoleLogger) Error(msg string, args ...interface{}) {
	l.log(ports.LevelError, msg, args...)
}

// WithComponent returns a logger whose prefix appends component to the
// current one.
func (l *ConsoleLogger) WithComponent(component string) ports.Logger {
	name := component
	if l.component != "" && component != "" {
		name = l.component + "/" + component
	}
	return &ConsoleLogger{level: l.level, component: name, output: l.output}
}

func (l *ConsoleLogger) log(level ports.LogLevel, msg string, args ...interface{}) {
	if level < l.level {
		return
	}
	o := l.output

	var b strings.Builder
	if l.component != "" {
		if o.color {
			fmt.Fprintf(&b, "%s[%s]%s ", colorCyan, l.component, colorReset)
		} else {
			fmt.Fprintf(&b, "[%s] ", l.component)
		}
	}
	// Without color the severity would be lost in piped batch output.
	if !o.color {
		switch level {
		case ports.LevelWarn:
			b.WriteString(l10n.T("warning: "))
		case ports.LevelError:
			b.WriteString(l10n.T("error: "))
		}
	}
	b.WriteString(l10n.F(msg, args...))

	line := b.String()
	if o.color {
		switch level {
		case ports.LevelDebug:
			line = colorGray + line + colorReset
		case ports.LevelWarn:
			line = colorYellow + line + colorReset
		case ports.LevelError:
			line = colorRed + line + colorReset
		}
	}

	w := o.out
	if level >= ports.LevelWarn {
		w = o.errOut
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintln(w, line)
}

var _ ports.Logger = (*ConsoleLogger)(nil)
