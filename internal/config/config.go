package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/q939055502/jy-syzn/internal/fileutil"
	"github.com/q939055502/jy-syzn/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// AppDir is the directory searched under the user config directory.
const AppDir = "paramtable"

// Field length limits.
const (
	MaxPathLength           = 4096
	MaxDeviceNameLength     = 20  // "desktop", "tablet", "phone"
	MaxDevices              = 3   // one entry per profile
	MaxFontPaths            = 32  // font fallback candidates
	MaxWatermarkTextLength  = 50  // "我是水印", "SAMPLE"
	MaxWatermarkColorLength = 20  // "#888888"
	MaxFontFamilyLength     = 100 // "Arial, sans-serif"
	MaxSignatureTextLength  = 100 // "anti-crawl-protected"
	MaxTimeoutLength        = 20  // "30s", "1m30s"
)

// Config holds all configuration for a render run.
type Config struct {
	Input      InputConfig      `yaml:"input"`
	Output     OutputConfig     `yaml:"output"`
	Devices    []string         `yaml:"devices"`
	Watermark  WatermarkConfig  `yaml:"watermark"`
	AntiScrape AntiScrapeConfig `yaml:"antiScrape"`
	Fonts      FontsConfig      `yaml:"fonts"`
	Raster     RasterConfig     `yaml:"raster"`
	Snapshot   SnapshotConfig   `yaml:"snapshot"`
}

// InputConfig defines how record files are read.
type InputConfig struct {
	Sort bool `yaml:"sort"` // regular parameters first, then sort_order
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // empty = next to the records file
	Vector     bool   `yaml:"vector"`     // write <base>_<device>.svg
	Raster     bool   `yaml:"raster"`     // write <base>_<device>.png
}

// WatermarkConfig defines the tiled text watermark of the vector output.
// Zero numeric values keep the engine defaults.
type WatermarkConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Text       string  `yaml:"text"`
	Color      string  `yaml:"color"`    // hex, e.g. "#888888"
	Opacity    float64 `yaml:"opacity"`  // 0.0 to 1.0
	Rotation   float64 `yaml:"rotation"` // degrees
	FontSize   int     `yaml:"fontSize"`
	FontFamily string  `yaml:"fontFamily"`
	HSpacing   int     `yaml:"hSpacing"`
	VSpacing   int     `yaml:"vSpacing"`
}

// AntiScrapeConfig defines the obfuscation layer of the vector output.
type AntiScrapeConfig struct {
	Enabled       bool    `yaml:"enabled"`
	NoiseDensity  float64 `yaml:"noiseDensity"`
	NoiseOpacity  float64 `yaml:"noiseOpacity"`
	Grid          bool    `yaml:"grid"`
	GridOpacity   float64 `yaml:"gridOpacity"`
	GridSpacing   int     `yaml:"gridSpacing"`
	Decoys        bool    `yaml:"decoys"`
	DecoyCount    int     `yaml:"decoyCount"`
	Signature     bool    `yaml:"signature"`
	SignatureText string  `yaml:"signatureText"`
	CommentLength int     `yaml:"commentLength"`
	Seed          uint64  `yaml:"seed"` // 0 = random
}

// FontsConfig defines raster font lookup.
type FontsConfig struct {
	Paths  []string `yaml:"paths"`  // tried first, in order
	System bool     `yaml:"system"` // then the well-known system locations
}

// RasterConfig defines the optional tiled watermark of the raster output.
type RasterConfig struct {
	Watermark RasterWatermarkConfig `yaml:"watermark"`
}

// RasterWatermarkConfig mirrors the raster renderer's watermark settings.
type RasterWatermarkConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Text     string  `yaml:"text"`
	Color    string  `yaml:"color"` // hex, e.g. "#606060"
	Alpha    int     `yaml:"alpha"` // 0 to 255
	Angle    float64 `yaml:"angle"`
	FontSize float64 `yaml:"fontSize"`
	Spacing  int     `yaml:"spacing"`
}

// SnapshotConfig defines the browser snapshot of the vector output.
type SnapshotConfig struct {
	Enabled bool   `yaml:"enabled"`
	Timeout string `yaml:"timeout"` // Go duration, e.g. "30s"
}

// Validate checks field lengths and ranges.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}

	if len(c.Devices) > MaxDevices {
		return fmt.Errorf("%w: devices: %d entries, max %d", ErrInvalidValue, len(c.Devices), MaxDevices)
	}
	for i, d := range c.Devices {
		if err := validateFieldLength(fmt.Sprintf("devices[%d]", i), d, MaxDeviceNameLength); err != nil {
			return err
		}
	}

	if c.Watermark.Enabled {
		if err := c.Watermark.validate(); err != nil {
			return err
		}
	}
	if c.AntiScrape.Enabled {
		if err := c.AntiScrape.validate(); err != nil {
			return err
		}
	}

	if len(c.Fonts.Paths) > MaxFontPaths {
		return fmt.Errorf("%w: fonts.paths: %d entries, max %d", ErrInvalidValue, len(c.Fonts.Paths), MaxFontPaths)
	}
	for i, p := range c.Fonts.Paths {
		if err := validateFieldLength(fmt.Sprintf("fonts.paths[%d]", i), p, MaxPathLength); err != nil {
			return err
		}
	}

	if c.Raster.Watermark.Enabled {
		if err := c.Raster.Watermark.validate(); err != nil {
			return err
		}
	}

	if err := validateFieldLength("snapshot.timeout", c.Snapshot.Timeout, MaxTimeoutLength); err != nil {
		return err
	}
	if _, err := c.Snapshot.TimeoutDuration(); err != nil {
		return err
	}

	return nil
}

func (w *WatermarkConfig) validate() error {
	if w.Text == "" {
		return fmt.Errorf("watermark.text: required when watermark is enabled")
	}
	if err := validateFieldLength("watermark.text", w.Text, MaxWatermarkTextLength); err != nil {
		return err
	}
	if err := validateFieldLength("watermark.color", w.Color, MaxWatermarkColorLength); err != nil {
		return err
	}
	if err := validateFieldLength("watermark.fontFamily", w.FontFamily, MaxFontFamilyLength); err != nil {
		return err
	}
	if w.Opacity < 0 || w.Opacity > 1 {
		return fmt.Errorf("%w: watermark.opacity: must be between 0 and 1, got %.2f", ErrInvalidValue, w.Opacity)
	}
	if w.Rotation < -360 || w.Rotation > 360 {
		return fmt.Errorf("%w: watermark.rotation: must be between -360 and 360, got %.2f", ErrInvalidValue, w.Rotation)
	}
	if w.FontSize < 0 || w.HSpacing < 0 || w.VSpacing < 0 {
		return fmt.Errorf("%w: watermark: fontSize and spacing must not be negative", ErrInvalidValue)
	}
	return nil
}

func (a *AntiScrapeConfig) validate() error {
	if err := validateFieldLength("antiScrape.signatureText", a.SignatureText, MaxSignatureTextLength); err != nil {
		return err
	}
	if a.NoiseDensity < 0 || a.NoiseDensity > 1 {
		return fmt.Errorf("%w: antiScrape.noiseDensity: must be between 0 and 1, got %.3f", ErrInvalidValue, a.NoiseDensity)
	}
	for name, v := range map[string]float64{
		"antiScrape.noiseOpacity": a.NoiseOpacity,
		"antiScrape.gridOpacity":  a.GridOpacity,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s: must be between 0 and 1, got %.2f", ErrInvalidValue, name, v)
		}
	}
	if a.GridSpacing < 0 || a.DecoyCount < 0 || a.CommentLength < 0 {
		return fmt.Errorf("%w: antiScrape: gridSpacing, decoyCount and commentLength must not be negative", ErrInvalidValue)
	}
	return nil
}

func (w *RasterWatermarkConfig) validate() error {
	if w.Text == "" {
		return fmt.Errorf("raster.watermark.text: required when watermark is enabled")
	}
	if err := validateFieldLength("raster.watermark.text", w.Text, MaxWatermarkTextLength); err != nil {
		return err
	}
	if err := validateFieldLength("raster.watermark.color", w.Color, MaxWatermarkColorLength); err != nil {
		return err
	}
	if w.Alpha < 0 || w.Alpha > 255 {
		return fmt.Errorf("%w: raster.watermark.alpha: must be between 0 and 255, got %d", ErrInvalidValue, w.Alpha)
	}
	if w.FontSize < 0 || w.Spacing < 0 {
		return fmt.Errorf("%w: raster.watermark: fontSize and spacing must not be negative", ErrInvalidValue)
	}
	return nil
}

// TimeoutDuration parses Timeout. An empty value returns 0.
func (s SnapshotConfig) TimeoutDuration() (time.Duration, error) {
	if s.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: snapshot.timeout: %v", ErrInvalidValue, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: snapshot.timeout: must be positive, got %s", ErrInvalidValue, s.Timeout)
	}
	return d, nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given: both
// outputs for every device, vector watermark and obfuscation on, system fonts
// searched, raster watermark and browser snapshot off.
func DefaultConfig() *Config {
	return &Config{
		Output:     OutputConfig{Vector: true, Raster: true},
		Devices:    []string{"desktop", "tablet", "phone"},
		Watermark:  WatermarkConfig{Enabled: true, Text: "我是水印"},
		AntiScrape: AntiScrapeConfig{Enabled: true, Grid: true, Decoys: true, Signature: true},
		Fonts:      FontsConfig{System: true},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = ResolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ResolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, <user config dir>/paramtable/
func ResolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, AppDir, name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
