package paramtable

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/q939055502/jy-syzn/internal/layout"
	"github.com/q939055502/jy-syzn/internal/raster"
	"github.com/q939055502/jy-syzn/internal/snapshot"
	"github.com/q939055502/jy-syzn/internal/svg"
	"github.com/q939055502/jy-syzn/internal/table"
	"github.com/q939055502/jy-syzn/internal/watermark"
)

// DefaultTimeout bounds one browser snapshot.
const DefaultTimeout = snapshot.DefaultTimeout

// Renderer turns parameter records into table artifacts for each device.
// Create with NewRenderer, use Render or RenderAll, and Close when done.
// A Renderer is safe for concurrent use.
type Renderer struct {
	logger          Logger
	watermark       *Watermark
	antiScrape      *AntiScrape
	rasterWatermark *RasterWatermark
	fontPaths       []string
	systemFonts     bool
	fonts           *raster.FontSource
	snapshot        bool
	timeout         time.Duration

	capturer    snapshot.Capturer
	newCapturer func() snapshot.Capturer
	fontOnce    *sync.Once // shared by clones

	mu     sync.Mutex
	closed bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the diagnostics logger. The default discards everything.
func WithLogger(l Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithWatermark replaces the vector text watermark. A nil w disables it.
func WithWatermark(w *Watermark) Option {
	return func(r *Renderer) {
		r.watermark = w
	}
}

// WithoutWatermark disables the vector text watermark.
func WithoutWatermark() Option {
	return WithWatermark(nil)
}

// WithAntiScrape replaces the vector obfuscation layer. A nil a disables it.
func WithAntiScrape(a *AntiScrape) Option {
	return func(r *Renderer) {
		r.antiScrape = a
	}
}

// WithFontPaths adds font files tried before the system CJK fonts. The
// first file that contains CJK glyphs wins.
func WithFontPaths(paths ...string) Option {
	return func(r *Renderer) {
		r.fontPaths = append(r.fontPaths, paths...)
	}
}

// WithBuiltinFonts skips the system font search. Only WithFontPaths files
// and the embedded fallbacks are used, which makes raster output independent
// of the host.
func WithBuiltinFonts() Option {
	return func(r *Renderer) {
		r.systemFonts = false
	}
}

// WithRasterWatermark tiles a rotated watermark over the raster output.
// A nil w disables it.
func WithRasterWatermark(w *RasterWatermark) Option {
	return func(r *Renderer) {
		r.rasterWatermark = w
	}
}

// WithSnapshot additionally renders the finished vector document in headless
// Chrome and returns the screenshot as Result.Snapshot.
func WithSnapshot() Option {
	return func(r *Renderer) {
		r.snapshot = true
	}
}

// WithTimeout sets the browser snapshot timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Renderer) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// withCapturer replaces the browser, for tests. Clones share c.
func withCapturer(c snapshot.Capturer) Option {
	return func(r *Renderer) {
		r.snapshot = true
		r.newCapturer = func() snapshot.Capturer { return c }
	}
}

// NewRenderer creates a Renderer with the standard watermark and
// obfuscation layer, system font lookup and no snapshot.
// Returns error if an option carries invalid settings.
func NewRenderer(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		logger:      NopLogger{},
		watermark:   DefaultWatermark(),
		antiScrape:  DefaultAntiScrape(),
		systemFonts: true,
		timeout:     DefaultTimeout,
		fontOnce:    new(sync.Once),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.watermark.Validate(); err != nil {
		return nil, err
	}
	if err := r.antiScrape.Validate(); err != nil {
		return nil, err
	}
	if err := r.rasterWatermark.Validate(); err != nil {
		return nil, err
	}

	if r.systemFonts {
		r.fonts = raster.NewFontSource(r.fontPaths...)
	} else {
		r.fonts = raster.NewBuiltinFontSource(r.fontPaths...)
	}
	if r.snapshot {
		if r.newCapturer == nil {
			timeout := r.timeout
			r.newCapturer = func() snapshot.Capturer { return snapshot.New(timeout) }
		}
		r.capturer = r.newCapturer()
	}
	return r, nil
}

// clone returns a Renderer with the same settings and font source but its
// own browser.
func (r *Renderer) clone() *Renderer {
	c := &Renderer{
		logger:          r.logger,
		watermark:       r.watermark,
		antiScrape:      r.antiScrape,
		rasterWatermark: r.rasterWatermark,
		fontPaths:       r.fontPaths,
		systemFonts:     r.systemFonts,
		fonts:           r.fonts,
		snapshot:        r.snapshot,
		timeout:         r.timeout,
		newCapturer:     r.newCapturer,
		fontOnce:        r.fontOnce,
	}
	if c.snapshot {
		c.capturer = c.newCapturer()
	}
	return c
}

// Render renders records for one device. Records are used in the given
// order. The context is used for cancellation and bounds the snapshot.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (r *Renderer) Render(ctx context.Context, records []ParameterRecord, d Device) (result *Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("internal error: %v", rec)
		}
	}()

	rows, err := r.prepare(ctx, records)
	if err != nil {
		return nil, err
	}
	p, err := d.profile()
	if err != nil {
		return nil, err
	}
	return r.render(ctx, rows, d, p)
}

// RenderAll renders records for every given device concurrently, or for all
// devices when none are given. Results follow the order of devices.
// Rows are transformed and cleaned once and shared read-only.
func (r *Renderer) RenderAll(ctx context.Context, records []ParameterRecord, devices ...Device) (results []*Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("internal error: %v", rec)
		}
	}()

	if len(devices) == 0 {
		devices = Devices
	}
	profiles := make([]layout.Profile, len(devices))
	for i, d := range devices {
		if profiles[i], err = d.profile(); err != nil {
			return nil, err
		}
	}

	rows, err := r.prepare(ctx, records)
	if err != nil {
		return nil, err
	}

	results = make([]*Result, len(devices))
	g, gctx := errgroup.WithContext(ctx)
	for i, d := range devices {
		goSafe(g, func() error {
			res, err := r.render(gctx, rows, d, profiles[i])
			if err != nil {
				return fmt.Errorf("%s: %w", d, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Close releases the snapshot browser, if one was started.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	if r.capturer != nil {
		return r.capturer.Close()
	}
	return nil
}

// FontName reports the font used for raster output.
func (r *Renderer) FontName() string {
	return r.fonts.Name()
}

// FontSupportsCJK reports whether the raster font covers CJK text.
func (r *Renderer) FontSupportsCJK() bool {
	return r.fonts.SupportsCJK()
}

func (r *Renderer) prepare(ctx context.Context, records []ParameterRecord) ([]table.CleanedRow, error) {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return nil, ErrRendererClosed
	}
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return table.Clean(table.Transform(toTableRecords(records))), nil
}

// render lays rows out once and draws the vector and raster outputs from the
// same layout concurrently.
func (r *Renderer) render(ctx context.Context, rows []table.CleanedRow, d Device, p layout.Profile) (*Result, error) {
	start := time.Now()
	log := r.logger.With(String("device", d.String()))

	lr := layout.Compute(rows, p)
	log.Debug("layout computed",
		Int("rows", lr.NumRows()),
		Int("spans", len(lr.Spans)),
		Int("height", lr.TotalHeight()))

	r.warnFontFallback()

	var (
		doc string
		png []byte
		g   errgroup.Group
	)
	goSafe(&g, func() error {
		var err error
		doc, err = r.vector(rows, lr)
		return err
	})
	goSafe(&g, func() error {
		var opts []raster.Option
		if r.rasterWatermark != nil {
			opts = append(opts, raster.WithWatermark(toRasterWatermark(r.rasterWatermark)))
		}
		var err error
		png, err = raster.Render(rows, lr, r.fonts, opts...)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{
		Device: d,
		Vector: Artifact{Device: d, Kind: KindVector, Data: []byte(doc)},
		Raster: Artifact{Device: d, Kind: KindRaster, Data: png},
		Layout: toLayout(lr),
	}

	if r.capturer != nil {
		shot, err := r.capturer.Capture(ctx, doc, p.CanvasWidth, lr.TotalHeight())
		if err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
		res.Snapshot = &Artifact{Device: d, Kind: KindSnapshot, Data: shot}
	}

	log.Debug("device rendered",
		Int("svg_bytes", len(res.Vector.Data)),
		Int("png_bytes", len(res.Raster.Data)),
		Duration("elapsed", time.Since(start)))
	return res, nil
}

// vector renders the SVG table, then the watermark, then the obfuscation
// layer.
func (r *Renderer) vector(rows []table.CleanedRow, lr *layout.Result) (string, error) {
	doc := svg.Render(rows, lr)
	doc, err := watermark.Apply(doc, toTextOptions(r.watermark), lr.Profile.CanvasWidth)
	if err != nil {
		return "", err
	}
	return watermark.ApplyAntiScrape(doc, toAntiScrapeOptions(r.antiScrape), lr.Profile.CanvasWidth)
}

// warnFontFallback logs the font fallback once per Renderer.
func (r *Renderer) warnFontFallback() {
	r.fontOnce.Do(func() {
		if w := r.fonts.Warning(); w != nil {
			r.logger.Warn("raster font has no CJK glyphs",
				String("font", r.fonts.Name()),
				Err(w))
			return
		}
		r.logger.Debug("raster font loaded",
			String("font", r.fonts.Name()),
			String("path", r.fonts.Path()))
	})
}

// goSafe runs fn in g and turns a panic into an error.
func goSafe(g *errgroup.Group, fn func() error) {
	g.Go(func() (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("internal error: %v", rec)
			}
		}()
		return fn()
	})
}
