package output

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"
)

// Writer is the interface for output destinations.
type Writer interface {
	// Write sends serialized bytes to the output destination.
	Write(data []byte) error
}

// FileWriter writes serialized output to a file, creating parent
// directories as needed.
type FileWriter struct {
	path   string
	perm   os.FileMode
	logger *slog.Logger
}

// FileWriterOption configures a FileWriter.
type FileWriterOption func(*FileWriter)

// WithPermissions overrides the default file permissions (0644).
func WithPermissions(perm os.FileMode) FileWriterOption {
	return func(fw *FileWriter) {
		fw.perm = perm
	}
}

// WithLogger sets a logger for the FileWriter.
func WithLogger(logger *slog.Logger) FileWriterOption {
	return func(fw *FileWriter) {
		fw.logger = logger
	}
}

// NewFileWriter creates a writer that writes to the specified file path.
func NewFileWriter(path string, opts ...FileWriterOption) *FileWriter {
	fw := &FileWriter{
		path:   path,
		perm:   0o644,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(fw)
	}

	return fw
}

// Write creates parent directories and writes data to the file. Replacing
// an existing file with different content logs a unified diff at debug
// level.
func (fw *FileWriter) Write(data []byte) error {
	dir := filepath.Dir(fw.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	if existing, err := os.ReadFile(fw.path); err == nil {
		fw.logOverwrite(existing, data)
	}

	if err := os.WriteFile(fw.path, data, fw.perm); err != nil {
		return fmt.Errorf("writing file %s: %w", fw.path, err)
	}

	return nil
}

func (fw *FileWriter) logOverwrite(existing, data []byte) {
	if bytes.Equal(existing, data) {
		fw.logger.Debug("file unchanged", slog.String("path", fw.path))
		return
	}

	fw.logger.Info("overwriting existing file", slog.String("path", fw.path))

	diff, err := UnifiedDiff(fw.path, existing, data)
	if err != nil {
		fw.logger.Debug("computing diff failed", slog.String("path", fw.path), slog.String("error", err.Error()))
		return
	}

	fw.logger.Debug("file changed", slog.String("path", fw.path), slog.String("diff", diff))
}

// UnifiedDiff returns a unified diff between the old and new content of
// path.
func UnifiedDiff(path string, before, after []byte) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: path + " (existing)",
		ToFile:   path + " (generated)",
		Context:  3,
	})
}
