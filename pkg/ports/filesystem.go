package ports

// FileSystem abstracts the file access of the CLI: reading containers,
// writing level output and expanding input patterns.
type FileSystem interface {
	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating parent directories as
	// needed. Readers never observe a partially written file.
	WriteFile(path string, data []byte) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	// Glob returns the regular files matching pattern, sorted.
	Glob(pattern string) ([]string, error)
}
