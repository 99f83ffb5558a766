package main

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	flag "github.com/spf13/pflag"
)

// ---------------------------------------------------------------------------
// TestParseRenderFlags - Flag Parsing
// ---------------------------------------------------------------------------

func TestParseRenderFlags(t *testing.T) {
	t.Parallel()

	args := []string{
		"a.yaml",
		"-d", "phone,tablet",
		"--devices", "desktop",
		"-s", "-w", "3", "-t", "45s",
		"-c", "work", "-v",
		"-o", "out", "--no-png", "--snapshot",
		"--wm-text", "SAMPLE", "--no-anti-scrape", "--seed", "12",
		"--font", "/a.ttf", "--font", "/b,c.ttf", "--no-system-fonts", "--png-watermark",
		"b.json",
	}

	f, positional, err := parseRenderFlags(args, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseRenderFlags() error = %v", err)
	}

	if !slices.Equal(positional, []string{"a.yaml", "b.json"}) {
		t.Errorf("positional = %v", positional)
	}
	if !slices.Equal(f.devices, []string{"phone", "tablet", "desktop"}) {
		t.Errorf("devices = %v", f.devices)
	}
	if !f.sort || f.workers != 3 || f.timeout != "45s" {
		t.Errorf("sort/workers/timeout = %v/%d/%q", f.sort, f.workers, f.timeout)
	}
	if f.common != (commonFlags{config: "work", verbose: true}) {
		t.Errorf("common = %+v", f.common)
	}
	if f.output != (outputFlags{dir: "out", noRaster: true, snapshot: true}) {
		t.Errorf("output = %+v", f.output)
	}
	if f.watermark != (watermarkFlags{text: "SAMPLE", noAntiScrape: true, seed: 12}) {
		t.Errorf("watermark = %+v", f.watermark)
	}
	// StringArray keeps commas inside a path.
	if !slices.Equal(f.raster.fonts, []string{"/a.ttf", "/b,c.ttf"}) {
		t.Errorf("fonts = %v", f.raster.fonts)
	}
	if !f.raster.noSystemFonts || !f.raster.watermark {
		t.Errorf("raster = %+v", f.raster)
	}
}

func TestParseRenderFlags_Help(t *testing.T) {
	t.Parallel()

	var usage bytes.Buffer
	_, _, err := parseRenderFlags([]string{"-h"}, &usage)
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("parseRenderFlags(-h) error = %v, want ErrHelp", err)
	}
	if strings.Count(usage.String(), "Usage: paramtable render") != 1 {
		t.Errorf("usage printed %d times", strings.Count(usage.String(), "Usage: paramtable render"))
	}
}

func TestParseRenderFlags_Invalid(t *testing.T) {
	t.Parallel()

	tests := [][]string{
		{"--unknown"},
		{"-w", "many"},
		{"--seed", "-1"},
		{"-o"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			t.Parallel()

			if _, _, err := parseRenderFlags(args, &bytes.Buffer{}); err == nil {
				t.Errorf("parseRenderFlags(%v) error = nil", args)
			}
		})
	}
}
