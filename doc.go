// Package paramtable renders the detection parameters of an inspection item
// as an 8-column table, both as an SVG document and as a PNG bitmap, for the
// desktop, tablet and phone profiles.
//
// # Quick Start
//
// Create a renderer, render records, and close when done:
//
//	r, err := paramtable.NewRenderer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	results, err := r.RenderAll(ctx, records)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, res := range results {
//	    os.WriteFile(res.Device.String()+".svg", res.Vector.Data, 0644)
//	    os.WriteFile(res.Device.String()+".png", res.Raster.Data, 0644)
//	}
//
// Records are rendered in the order given. Use SortRecords to put regular
// parameters first when the source is unordered.
//
// # Rendering Pipeline
//
// Each render follows these stages:
//
//  1. Transform: "name(price)" parameter cells, two-line remarks, null
//     markers removed
//  2. Clean: values repeated from the row above are blanked so they merge
//  3. Layout: per-profile wrapping, merge spans and row heights
//  4. SVG and PNG drawing from the same layout, concurrently
//  5. SVG only: tiled text watermark, then noise, grid, decoys and a
//     signature against scraping
//
// Rows are cleaned once and shared by the device renders of RenderAll.
//
// # Configuration
//
// Use functional options to customize the renderer:
//
//	r, err := paramtable.NewRenderer(
//	    paramtable.WithFontPaths("/opt/fonts/NotoSansCJK-Regular.ttc"),
//	    paramtable.WithWatermark(&paramtable.Watermark{Text: "SAMPLE", ...}),
//	    paramtable.WithAntiScrape(nil), // plain SVG
//	    paramtable.WithLogger(logger),
//	)
//
// # Fonts
//
// PNG output needs a font with CJK glyphs. Configured paths are tried first,
// then well-known system locations. Without one the renderer falls back to
// Go Regular and logs ErrFontUnavailable as a warning; rendering still
// succeeds.
//
// # Parallel Processing
//
// For batch rendering, use RendererPool:
//
//	pool, err := paramtable.NewRendererPool(paramtable.ResolvePoolSize(0))
//	defer pool.Close()
//
//	r := pool.Acquire()
//	defer pool.Release(r)
//	results, err := r.RenderAll(ctx, records)
//
// # Browser Snapshots
//
// WithSnapshot also renders the finished SVG in headless Chrome (go-rod).
// The library downloads a managed Chromium on first use. For containers and
// CI environments, set ROD_NO_SANDBOX=1 to disable the Chrome sandbox. Use
// ROD_BROWSER_BIN to specify a custom Chrome binary.
package paramtable
