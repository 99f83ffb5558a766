package main

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"

	"github.com/q939055502/jy-syzn"
	"github.com/q939055502/jy-syzn/internal/config"
)

// Sentinel errors for render parameters.
var (
	ErrInvalidColor = errors.New("invalid color")
	ErrNoOutput     = errors.New("no output selected")
)

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *renderFlags, cfg *config.Config) {
	if flags.output.dir != "" {
		cfg.Output.DefaultDir = flags.output.dir
	}
	if flags.output.noVector {
		cfg.Output.Vector = false
	}
	if flags.output.noRaster {
		cfg.Output.Raster = false
	}
	if flags.output.snapshot {
		cfg.Snapshot.Enabled = true
	}
	if flags.timeout != "" {
		cfg.Snapshot.Timeout = flags.timeout
	}

	if len(flags.devices) > 0 {
		cfg.Devices = flags.devices
	}
	if flags.sort {
		cfg.Input.Sort = true
	}

	if flags.watermark.text != "" {
		cfg.Watermark.Text = flags.watermark.text
		cfg.Watermark.Enabled = true
	}
	if flags.watermark.disabled {
		cfg.Watermark.Enabled = false
	}
	if flags.watermark.noAntiScrape {
		cfg.AntiScrape.Enabled = false
	}
	if flags.watermark.seed != 0 {
		cfg.AntiScrape.Seed = flags.watermark.seed
	}

	if len(flags.raster.fonts) > 0 {
		cfg.Fonts.Paths = append(append([]string(nil), flags.raster.fonts...), cfg.Fonts.Paths...)
	}
	if flags.raster.noSystemFonts {
		cfg.Fonts.System = false
	}
	if flags.raster.watermark {
		cfg.Raster.Watermark.Enabled = true
		if cfg.Raster.Watermark.Text == "" {
			cfg.Raster.Watermark.Text = paramtable.DefaultRasterWatermark().Text
		}
	}
}

// resolveDevices parses the configured device names, keeping their order and
// dropping repeats. An empty list selects every device.
func resolveDevices(names []string) ([]paramtable.Device, error) {
	if len(names) == 0 {
		return paramtable.Devices, nil
	}
	devices := make([]paramtable.Device, 0, len(names))
	seen := make(map[paramtable.Device]bool, len(names))
	for _, name := range names {
		d, err := paramtable.ParseDevice(name)
		if err != nil {
			return nil, err
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		devices = append(devices, d)
	}
	return devices, nil
}

// resolveTimeout returns the snapshot timeout from config, or the default.
func resolveTimeout(cfg *config.Config) (time.Duration, error) {
	d, err := cfg.Snapshot.TimeoutDuration()
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return paramtable.DefaultTimeout, nil
	}
	return d, nil
}

// buildRendererOptions translates config into renderer options. Zero values
// in the watermark sections keep the engine defaults.
func buildRendererOptions(cfg *config.Config, logger paramtable.Logger) ([]paramtable.Option, error) {
	if !cfg.Output.Vector && !cfg.Output.Raster && !cfg.Snapshot.Enabled {
		return nil, fmt.Errorf("%w: enable svg, png or snapshot output", ErrNoOutput)
	}

	timeout, err := resolveTimeout(cfg)
	if err != nil {
		return nil, err
	}

	opts := []paramtable.Option{
		paramtable.WithLogger(logger),
		paramtable.WithTimeout(timeout),
		paramtable.WithWatermark(buildWatermark(cfg.Watermark)),
		paramtable.WithAntiScrape(buildAntiScrape(cfg.AntiScrape)),
	}

	if len(cfg.Fonts.Paths) > 0 {
		opts = append(opts, paramtable.WithFontPaths(cfg.Fonts.Paths...))
	}
	if !cfg.Fonts.System {
		opts = append(opts, paramtable.WithBuiltinFonts())
	}

	if cfg.Raster.Watermark.Enabled {
		w, err := buildRasterWatermark(cfg.Raster.Watermark)
		if err != nil {
			return nil, err
		}
		opts = append(opts, paramtable.WithRasterWatermark(w))
	}

	if cfg.Snapshot.Enabled {
		opts = append(opts, paramtable.WithSnapshot())
	}
	return opts, nil
}

func buildWatermark(c config.WatermarkConfig) *paramtable.Watermark {
	if !c.Enabled {
		return nil
	}
	w := paramtable.DefaultWatermark()
	w.Text = c.Text
	if c.Color != "" {
		w.Color = c.Color
	}
	if c.Opacity > 0 {
		w.Opacity = c.Opacity
	}
	if c.Rotation != 0 {
		w.Rotation = c.Rotation
	}
	if c.FontSize > 0 {
		w.FontSize = c.FontSize
	}
	if c.FontFamily != "" {
		w.FontFamily = c.FontFamily
	}
	if c.HSpacing > 0 {
		w.HorizontalSpacing = c.HSpacing
	}
	if c.VSpacing > 0 {
		w.VerticalSpacing = c.VSpacing
	}
	return w
}

func buildAntiScrape(c config.AntiScrapeConfig) *paramtable.AntiScrape {
	if !c.Enabled {
		return nil
	}
	a := paramtable.DefaultAntiScrape()
	a.Grid = c.Grid
	a.Decoys = c.Decoys
	a.Signature = c.Signature
	a.Seed = c.Seed
	if c.NoiseDensity > 0 {
		a.NoiseDensity = c.NoiseDensity
	}
	if c.NoiseOpacity > 0 {
		a.NoiseOpacity = c.NoiseOpacity
	}
	if c.GridOpacity > 0 {
		a.GridOpacity = c.GridOpacity
	}
	if c.GridSpacing > 0 {
		a.GridSpacing = c.GridSpacing
	}
	if c.DecoyCount > 0 {
		a.DecoyCount = c.DecoyCount
	}
	if c.SignatureText != "" {
		a.SignatureText = c.SignatureText
	}
	if c.CommentLength > 0 {
		a.CommentLength = c.CommentLength
	}
	return a
}

func buildRasterWatermark(c config.RasterWatermarkConfig) (*paramtable.RasterWatermark, error) {
	w := paramtable.DefaultRasterWatermark()
	w.Text = c.Text
	alpha := int(w.Color.A)
	if c.Alpha > 0 {
		alpha = c.Alpha
	}
	if c.Color != "" {
		col, err := parseHexColor(c.Color, alpha)
		if err != nil {
			return nil, fmt.Errorf("raster.watermark.color: %w", err)
		}
		w.Color = col
	} else {
		w.Color.A = uint8(alpha)
	}
	if c.Angle != 0 {
		w.Angle = c.Angle
	}
	if c.FontSize > 0 {
		w.FontSize = c.FontSize
	}
	if c.Spacing > 0 {
		w.Spacing = c.Spacing
	}
	return w, nil
}

// parseHexColor parses "#rgb" or "#rrggbb" with the given alpha (0-255).
func parseHexColor(s string, alpha int) (color.NRGBA, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return color.NRGBA{}, fmt.Errorf("%w: %q (must start with #)", ErrInvalidColor, s)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("%w: %q (want #rgb or #rrggbb)", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	if alpha < 0 || alpha > 255 {
		return color.NRGBA{}, fmt.Errorf("%w: alpha %d", ErrInvalidColor, alpha)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: uint8(alpha)}, nil
}
