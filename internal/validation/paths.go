// Package validation checks the files and directories a report run reads
// and writes before any work starts.
package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"ecomdash/internal/dataprocessing"
)

// ErrInvalidPath is wrapped by every validation failure.
var ErrInvalidPath = errors.New("invalid path")

// DatasetExtensions are the accepted dataset file extensions.
var DatasetExtensions = []string{".csv", ".tsv", ".txt"}

// PathValidator validates report inputs and outputs.
type PathValidator struct {
	logger *slog.Logger
}

// NewPathValidator creates a new validator
func NewPathValidator(logger *slog.Logger) *PathValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &PathValidator{
		logger: logger,
	}
}

// ValidateDatasetFile checks that path is a readable regular file with a
// delimited-text extension.
func (v *PathValidator) ValidateDatasetFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		v.logger.Error("Dataset file is not accessible",
			slog.String("file", path),
			slog.String("error", err.Error()))
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s: %w", dataprocessing.ErrFileNotFound, path, err)
		}
		return fmt.Errorf("dataset file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory, not a file", ErrInvalidPath, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !hasExtension(ext, DatasetExtensions) {
		v.logger.Error("Dataset file has an unexpected extension",
			slog.String("file", path),
			slog.String("extension", ext))
		return fmt.Errorf("%w: %s is not a delimited text file (extension: %q)", ErrInvalidPath, path, ext)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("dataset file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("Dataset file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory creates dir when missing and verifies it is
// writable.
func (v *PathValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".write_test*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	tmp.Close()
	os.Remove(tmp.Name())

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}

// ValidateWorkbookPath checks an XLSX destination and prepares its directory.
// An existing directory at path is rejected.
func (v *PathValidator) ValidateWorkbookPath(path string) error {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".xlsx" {
		return fmt.Errorf("%w: workbook %s must have the .xlsx extension", ErrInvalidPath, path)
	}

	// Excel lock files
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return fmt.Errorf("%w: %s is a temporary Excel file", ErrInvalidPath, path)
	}

	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return fmt.Errorf("%w: %s is a directory", ErrInvalidPath, path)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("failed to stat workbook %s: %w", path, err)
	}

	return v.ValidateOutputDirectory(filepath.Dir(path))
}

func hasExtension(ext string, allowed []string) bool {
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}
