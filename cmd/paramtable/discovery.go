package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/q939055502/jy-syzn"
)

// Sentinel errors for input discovery.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrInvalidExtension   = errors.New("records file must have .yaml, .yml or .json extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// discoverFiles expands the input arguments into records files. Directories
// are walked recursively; files must carry a records extension. Duplicates
// are dropped and the input order is kept.
func discoverFiles(inputs []string) ([]string, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInput
	}

	var files []string
	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if err := validateRecordsExtension(input); err != nil {
				return nil, err
			}
			files = append(files, input)
			continue
		}

		var found []string
		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("scanning %s: %w", path, err)
			}
			if d.IsDir() || !isRecordsExtension(filepath.Ext(path)) {
				return nil
			}
			found = append(found, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
		slices.Sort(found)
		files = append(files, found...)
	}

	seen := make(map[string]bool, len(files))
	unique := files[:0]
	for _, f := range files {
		key := filepath.Clean(f)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, f)
	}

	if len(unique) == 0 {
		return nil, fmt.Errorf("%w: no records files found in %s", ErrNoInput, strings.Join(inputs, ", "))
	}
	return unique, nil
}

func isRecordsExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// validateRecordsExtension checks that the file has a records extension.
func validateRecordsExtension(path string) error {
	ext := filepath.Ext(path)
	if !isRecordsExtension(ext) {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, ext)
	}
	return nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > paramtable.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, paramtable.MaxPoolSize)
	}
	return nil
}
