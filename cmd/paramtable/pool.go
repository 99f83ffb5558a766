package main

import (
	"context"
	"fmt"

	"github.com/q939055502/jy-syzn"
)

// TableRenderer renders the records of one file for the selected devices.
type TableRenderer interface {
	RenderAll(ctx context.Context, records []paramtable.ParameterRecord, devices ...paramtable.Device) ([]*paramtable.Result, error)
}

// Compile-time interface implementation check.
var _ TableRenderer = (*paramtable.Renderer)(nil)

// Pool abstracts renderer pool operations for testability.
type Pool interface {
	Acquire() TableRenderer
	Release(TableRenderer)
	Size() int
}

// poolAdapter exposes a paramtable.RendererPool as a Pool.
type poolAdapter struct {
	pool *paramtable.RendererPool
}

var _ Pool = (*poolAdapter)(nil)

// Acquire returns nil once the pool is closed.
func (a *poolAdapter) Acquire() TableRenderer {
	r := a.pool.Acquire()
	if r == nil {
		return nil
	}
	return r
}

// Release panics on a renderer that did not come from the pool.
func (a *poolAdapter) Release(r TableRenderer) {
	if r == nil {
		return
	}
	pr, ok := r.(*paramtable.Renderer)
	if !ok {
		panic(fmt.Sprintf("poolAdapter.Release: unexpected type %T", r))
	}
	a.pool.Release(pr)
}

func (a *poolAdapter) Size() int {
	return a.pool.Size()
}
