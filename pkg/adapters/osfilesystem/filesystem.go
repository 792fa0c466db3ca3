// Package osfilesystem implements ports.FileSystem on the local disk.
package osfilesystem

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/user/basiskit/pkg/basis"
	"github.com/user/basiskit/pkg/ports"
)

// ErrFileTooLarge is returned by ReadFile for inputs above the read limit.
var ErrFileTooLarge = errors.New("osfilesystem: file too large")

// FileSystem reads inputs with a size limit and writes outputs atomically,
// so a cancelled batch never leaves truncated level files behind.
type FileSystem struct {
	maxRead int64
}

// Option configures a FileSystem.
type Option func(*FileSystem)

// WithMaxReadSize caps the size of files ReadFile accepts.
func WithMaxReadSize(n int64) Option {
	return func(fs *FileSystem) {
		fs.maxRead = n
	}
}

// New creates a FileSystem. By default ReadFile accepts anything the
// transcoder can address.
func New(opts ...Option) *FileSystem {
	fs := &FileSystem{maxRead: basis.MaxInputLen}
	for _, opt := range opts {
		opt(fs)
	}
	return fs
}

// ReadFile reads path after checking its size against the limit.
func (fs *FileSystem) ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !st.Mode().IsRegular() {
		return nil, fmt.Errorf("osfilesystem: %s is not a regular file", path)
	}
	if st.Size() > fs.maxRead {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, path, st.Size(), fs.maxRead)
	}
	// The extra byte detects files that grew after Stat.
	data, err := io.ReadAll(io.LimitReader(f, fs.maxRead+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > fs.maxRead {
		return nil, fmt.Errorf("%w: %s", ErrFileTooLarge, path)
	}
	return data, nil
}

// WriteFile writes data to a temporary file next to path and renames it
// into place.
func (fs *FileSystem) WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Chmod(name, 0644); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}

func (fs *FileSystem) MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

// Glob returns the regular files matching pattern in lexical order.
// Directories matching the pattern are skipped.
func (fs *FileSystem) Glob(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	files := matches[:0]
	for _, m := range matches {
		if st, err := os.Stat(m); err == nil && st.Mode().IsRegular() {
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

var _ ports.FileSystem = (*FileSystem)(nil)
