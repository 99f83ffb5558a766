// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrExtensionEmpty         = errors.New("extension cannot be empty")
	ErrExtensionPathTraversal = errors.New("extension contains path separator or null byte")
	ErrEmptyBaseName          = errors.New("input has no base name")
)

// tempPrefix names every temporary file this module creates.
const tempPrefix = "paramtable-*."

// WriteTempFile creates a temporary file with the given content and extension.
// Returns the file path and a cleanup function to remove the file.
func WriteTempFile(content, extension string) (path string, cleanup func(), err error) {
	if err := ValidateExtension(extension); err != nil {
		return "", nil, err
	}

	tmpFile, err := os.CreateTemp("", tempPrefix+extension)
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}

	path = tmpFile.Name()
	cleanup = func() { _ = os.Remove(path) }

	if _, writeErr := tmpFile.WriteString(content); writeErr != nil {
		_ = tmpFile.Close()
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", writeErr)
	}

	if closeErr := tmpFile.Close(); closeErr != nil {
		cleanup()
		return "", nil, fmt.Errorf("closing temp file: %w", closeErr)
	}

	return path, cleanup, nil
}

// ValidateExtension checks that the extension is safe for use in file names.
func ValidateExtension(extension string) error {
	if extension == "" {
		return ErrExtensionEmpty
	}
	if strings.ContainsAny(extension, "/\\\x00") {
		return ErrExtensionPathTraversal
	}
	return nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "compact" -> false (name)
//   - "./render.yaml" -> true (relative path)
//   - "/etc/paramtable/render.yaml" -> true (absolute)
//   - "C:\config\render.yaml" -> true (Windows)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// OutputPath builds "<dir>/<base>_<suffix>.<ext>" where base is the input
// file name without its extension. An empty dir places the output next to
// the input.
//
// Examples:
//   - ("out", "data/item-42.yaml", "phone", "png") -> "out/item-42_phone.png"
//   - ("", "data/item-42.yaml", "desktop", "svg") -> "data/item-42_desktop.svg"
func OutputPath(dir, input, suffix, extension string) (string, error) {
	if err := ValidateExtension(extension); err != nil {
		return "", err
	}
	name := filepath.Base(input)
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("%w: %q", ErrEmptyBaseName, input)
	}
	if dir == "" {
		dir = filepath.Dir(input)
	}
	file := base
	if suffix != "" {
		file += "_" + suffix
	}
	return filepath.Join(dir, file+"."+extension), nil
}
