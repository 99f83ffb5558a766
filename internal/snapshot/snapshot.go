// Package snapshot rasterizes a finished SVG document in headless Chrome.
// It gives a browser-rendered reference image of exactly what a client
// would display, watermark layers included.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/q939055502/jy-syzn/internal/fileutil"
	"github.com/q939055502/jy-syzn/internal/process"
)

// Sentinel errors.
var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrCapture        = errors.New("screenshot capture failed")
)

// DefaultTimeout bounds page load when the context has no deadline.
const DefaultTimeout = 30 * time.Second

// Capturer turns an SVG document into PNG bytes.
type Capturer interface {
	Capture(ctx context.Context, doc string, width, height int) ([]byte, error)
	Close() error
}

// pageRenderer abstracts the browser so Capture can be tested without one.
type pageRenderer interface {
	RenderFromFile(ctx context.Context, filePath string, width, height int) ([]byte, error)
	Close() error
}

// Compile-time interface checks
var (
	_ Capturer     = (*Browser)(nil)
	_ pageRenderer = (*rodRenderer)(nil)
)

// Browser captures SVG documents with a lazily launched Chrome.
type Browser struct {
	renderer pageRenderer
}

// New returns a Browser. Chrome starts on the first Capture.
func New(timeout time.Duration) *Browser {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Browser{renderer: &rodRenderer{timeout: timeout}}
}

// Capture writes doc to a temporary file, loads it at width x height and
// returns a PNG screenshot.
func (b *Browser) Capture(ctx context.Context, doc string, width, height int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid viewport %dx%d", ErrCapture, width, height)
	}

	path, cleanup, err := fileutil.WriteTempFile(doc, "svg")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return b.renderer.RenderFromFile(ctx, path, width, height)
}

// Close shuts the browser down.
func (b *Browser) Close() error {
	if b.renderer != nil {
		return b.renderer.Close()
	}
	return nil
}

// rodRenderer implements pageRenderer using go-rod.
// Rod downloads Chromium on first run if none is found.
type rodRenderer struct {
	timeout time.Duration

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// ensureBrowser lazily launches and connects to the browser.
func (r *rodRenderer) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" || os.Getenv("ROD_NO_SANDBOX") == "1" {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.launcher = l
	r.browser = browser
	return browser, nil
}

// RenderFromFile opens a local file at the given viewport and screenshots
// it. Returns explicit errors instead of panicking when browser operations
// fail.
func (r *rodRenderer) RenderFromFile(ctx context.Context, filePath string, width, height int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browser, err := r.ensureBrowser()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "file://" + filePath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	page = page.Context(ctx).Timeout(timeout)

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, fmt.Errorf("%w: setting viewport: %v", ErrPageLoad, err)
	}

	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
		Clip: &proto.PageViewport{
			Width:  float64(width),
			Height: float64(height),
			Scale:  1,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCapture, err)
	}
	return data, nil
}

// Close releases browser resources and kills any leftover Chrome processes.
func (r *rodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	r.browser = nil

	if r.launcher != nil {
		if pid := r.launcher.PID(); pid > 0 {
			process.KillProcessGroup(pid)
		}
		r.launcher.Kill()
		r.launcher = nil
	}
	return err
}
