package paramtable

import (
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps concurrent renderers. With snapshots enabled each one
	// owns a browser (~200MB).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for the per-device goroutines of each render.
	cpuDivisor = 2
)

// RendererPool manages Renderer instances for batch processing.
// All renderers share one font source; each has its own snapshot browser.
// Renderers beyond the first are created lazily on acquire.
type RendererPool struct {
	size      int
	base      *Renderer
	renderers []*Renderer
	sem       chan *Renderer
	mu        sync.Mutex
	created   int
	closed    bool
}

// NewRendererPool creates a pool with capacity for n renderers configured by
// opts. The first renderer is built eagerly so invalid options fail here.
func NewRendererPool(n int, opts ...Option) (*RendererPool, error) {
	if n < 1 {
		n = 1
	}

	base, err := NewRenderer(opts...)
	if err != nil {
		return nil, err
	}

	p := &RendererPool{
		size:      n,
		base:      base,
		renderers: make([]*Renderer, 0, n),
		sem:       make(chan *Renderer, n),
		created:   1,
	}
	p.renderers = append(p.renderers, base)
	p.sem <- base
	return p, nil
}

// Acquire gets a renderer from the pool, creating one if needed.
// Blocks if all renderers are in use. Returns nil after Close.
func (p *RendererPool) Acquire() *Renderer {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	select {
	case r := <-p.sem:
		p.mu.Unlock()
		return r
	default:
	}
	if p.created < p.size {
		p.created++
		r := p.base.clone()
		p.renderers = append(p.renderers, r)
		p.mu.Unlock()
		return r
	}
	p.mu.Unlock()

	// A closed, drained sem yields nil.
	return <-p.sem
}

// Release returns a renderer to the pool. It is a no-op after Close.
// At most size renderers exist, so the send never blocks under the lock.
func (p *RendererPool) Release(r *Renderer) {
	if r == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.sem <- r
}

// Close releases all browser resources.
// Returns an aggregated error if multiple renderers fail to close.
func (p *RendererPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	// Drop idle renderers; Acquire must not hand them out once closed.
	for range p.sem {
	}
	renderers := p.renderers
	p.mu.Unlock()

	var errs []error
	for _, r := range renderers {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *RendererPool) Size() int {
	return p.size
}

// ResolvePoolSize determines the pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// Exported for use by servers and CLIs.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs in containers
	n := runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
