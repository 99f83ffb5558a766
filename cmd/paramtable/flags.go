package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// outputFlags selects the artifacts written per device.
type outputFlags struct {
	dir      string
	noVector bool
	noRaster bool
	snapshot bool
}

// watermarkFlags holds vector watermark and obfuscation flags.
type watermarkFlags struct {
	text         string
	disabled     bool
	noAntiScrape bool
	seed         uint64
}

// rasterFlags holds raster font and watermark flags.
type rasterFlags struct {
	fonts         []string
	noSystemFonts bool
	watermark     bool
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common    commonFlags
	output    outputFlags
	devices   []string
	sort      bool
	workers   int
	timeout   string
	watermark watermarkFlags
	raster    rasterFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing and diagnostics")
}

// addOutputFlags adds output selection flags to a FlagSet.
func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.StringVarP(&f.dir, "output", "o", "", "output directory (default: next to each records file)")
	fs.BoolVar(&f.noVector, "no-svg", false, "skip SVG output")
	fs.BoolVar(&f.noRaster, "no-png", false, "skip PNG output")
	fs.BoolVar(&f.snapshot, "snapshot", false, "also render the SVG in headless Chrome")
}

// addWatermarkFlags adds vector watermark flags to a FlagSet.
func addWatermarkFlags(fs *flag.FlagSet, f *watermarkFlags) {
	fs.StringVar(&f.text, "wm-text", "", "watermark text")
	fs.BoolVar(&f.disabled, "no-watermark", false, "disable the SVG text watermark")
	fs.BoolVar(&f.noAntiScrape, "no-anti-scrape", false, "disable the SVG anti-scrape layer")
	fs.Uint64Var(&f.seed, "seed", 0, "anti-scrape random seed (0 = random)")
}

// addRasterFlags adds raster flags to a FlagSet.
func addRasterFlags(fs *flag.FlagSet, f *rasterFlags) {
	fs.StringArrayVar(&f.fonts, "font", nil, "font file for PNG output (repeatable)")
	fs.BoolVar(&f.noSystemFonts, "no-system-fonts", false, "do not search system font directories")
	fs.BoolVar(&f.watermark, "png-watermark", false, "tile a watermark over the PNG output")
}

// parseRenderFlags parses render command flags and returns positional args.
func parseRenderFlags(args []string, usage io.Writer) (*renderFlags, []string, error) {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f := &renderFlags{}

	fs.StringSliceVarP(&f.devices, "devices", "d", nil, "devices to render: desktop,tablet,phone")
	fs.BoolVarP(&f.sort, "sort", "s", false, "sort records: regular parameters first, then sort_order")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "snapshot timeout (e.g., 30s, 2m)")

	addCommonFlags(fs, &f.common)
	addOutputFlags(fs, &f.output)
	addWatermarkFlags(fs, &f.watermark)
	addRasterFlags(fs, &f.raster)

	fs.Usage = func() { printRenderUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
