package main

import (
	"errors"
	"os"

	"github.com/q939055502/jy-syzn"
	"github.com/q939055502/jy-syzn/internal/config"
)

// Exit codes for the paramtable CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // All files rendered
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, records or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, paramtable.ErrBrowserConnect) ||
		errors.Is(err, paramtable.ErrPageCreate) ||
		errors.Is(err, paramtable.ErrPageLoad) ||
		errors.Is(err, paramtable.ErrSnapshot) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadRecords) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, paramtable.ErrEmptyInput) ||
		errors.Is(err, paramtable.ErrUnknownDevice) ||
		errors.Is(err, paramtable.ErrInvalidWatermark) ||
		errors.Is(err, paramtable.ErrInvalidAntiScrape) ||
		errors.Is(err, paramtable.ErrInvalidRasterWatermark) ||
		errors.Is(err, ErrInvalidRecords) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidColor) ||
		errors.Is(err, ErrNoOutput) {
		return ExitUsage
	}

	return ExitGeneral
}
