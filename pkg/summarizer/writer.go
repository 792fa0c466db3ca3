package summarizer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/user/basiskit/pkg/ports"
)

// StdoutPath makes Write print the summary instead of saving it.
const StdoutPath = "-"

// Writer saves formatted summaries through a ports.FileSystem.
type Writer struct {
	formatter Formatter
	fs        ports.FileSystem
	stdout    io.Writer
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithStdout sets where summaries written to StdoutPath go.
func WithStdout(w io.Writer) WriterOption {
	return func(wr *Writer) {
		wr.stdout = w
	}
}

func NewWriter(formatter Formatter, fs ports.FileSystem, opts ...WriterOption) *Writer {
	w := &Writer{formatter: formatter, fs: fs, stdout: os.Stdout}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write formats summary and stores it at path, creating its directory.
// The content always ends with a newline.
func (w *Writer) Write(path string, summary *Summary) error {
	content := w.formatter.Format(summary)
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}

	if path == StdoutPath {
		if _, err := io.WriteString(w.stdout, content); err != nil {
			return fmt.Errorf("summarizer: write stdout: %w", err)
		}
		return nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := w.fs.MkdirAll(dir); err != nil {
			return fmt.Errorf("summarizer: create %s: %w", dir, err)
		}
	}
	if err := w.fs.WriteFile(path, []byte(content)); err != nil {
		return fmt.Errorf("summarizer: write %s: %w", path, err)
	}
	return nil
}
