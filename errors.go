package paramtable

import (
	"errors"

	"github.com/q939055502/jy-syzn/internal/raster"
	"github.com/q939055502/jy-syzn/internal/snapshot"
	"github.com/q939055502/jy-syzn/internal/watermark"
)

// Sentinel errors for library operations.
var (
	ErrEmptyInput     = errors.New("parameter records cannot be empty")
	ErrUnknownDevice  = errors.New("unknown device")
	ErrRendererClosed = errors.New("renderer is closed")

	// ErrFontUnavailable is never returned by Render. It is logged as a
	// warning when the raster renderer falls back to a font without CJK
	// glyphs.
	ErrFontUnavailable = raster.ErrFontUnavailable

	// Output errors.
	ErrRasterEncode = raster.ErrEncode

	// Watermark validation errors.
	ErrInvalidWatermark       = watermark.ErrInvalidText
	ErrInvalidAntiScrape      = watermark.ErrInvalidAntiScrape
	ErrInvalidRasterWatermark = errors.New("invalid raster watermark")

	// Browser snapshot errors.
	ErrBrowserConnect = snapshot.ErrBrowserConnect
	ErrPageCreate     = snapshot.ErrPageCreate
	ErrPageLoad       = snapshot.ErrPageLoad
	ErrSnapshot       = snapshot.ErrCapture
)
