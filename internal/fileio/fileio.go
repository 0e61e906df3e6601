// Package fileio reads and writes whole text files.
package fileio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Writer moves interchange data between files and memory.
type Writer interface {
	ToFile(path, data string) error
	FromFile(path string) (string, error)
}

// Files is the production Writer. Errors carry the path and the OS error text.
type Files struct{}

// FromFile reads the whole file at path.
func (Files) FromFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file '%s': %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only file.
			_ = cerr
		}
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read from '%s': %w", path, err)
	}
	return string(data), nil
}

// ToFile replaces the file at path with data through a temp file in the same directory.
func (Files) ToFile(path, data string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to open file '%s': %w", path, err)
	}
	tmpFile, err := os.CreateTemp(dir, ".chantest-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to open file '%s': %w", path, err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := io.WriteString(tmpFile, data); err != nil {
		return fmt.Errorf("failed to write to '%s': %w", path, err)
	}
	if err := tmpFile.Chmod(0o644); err != nil {
		return fmt.Errorf("failed to write to '%s': %w", path, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to write to '%s': %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write to '%s': %w", path, err)
	}
	return nil
}
