package main

// Notes:
// - renderBatch: uses mocks for TableRenderer and Pool; outcome order follows
//   the input order regardless of worker scheduling
// - renderFile: artifact filtering, naming and output directory creation
// - printResults: quiet and verbose output modes

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/q939055502/jy-syzn"
)

const sampleRecordsYAML = `
- param_name: 抗压强度
  price: 120
  is_regular_param: 1
- param_name: 抗渗等级
`

// mockRenderer returns one small result per device.
type mockRenderer struct {
	mu       sync.Mutex
	calls    int
	devices  [][]paramtable.Device
	err      error
	snapshot bool
}

func (m *mockRenderer) RenderAll(_ context.Context, records []paramtable.ParameterRecord, devices ...paramtable.Device) ([]*paramtable.Result, error) {
	m.mu.Lock()
	m.calls++
	m.devices = append(m.devices, devices)
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if len(devices) == 0 {
		devices = paramtable.Devices
	}
	results := make([]*paramtable.Result, len(devices))
	for i, d := range devices {
		res := &paramtable.Result{
			Device: d,
			Vector: paramtable.Artifact{Device: d, Kind: paramtable.KindVector, Data: []byte("<svg/>")},
			Raster: paramtable.Artifact{Device: d, Kind: paramtable.KindRaster, Data: []byte("png")},
			Layout: paramtable.Layout{RowHeights: make([]int, len(records))},
		}
		if m.snapshot {
			res.Snapshot = &paramtable.Artifact{Device: d, Kind: paramtable.KindSnapshot, Data: []byte("shot")}
		}
		results[i] = res
	}
	return results, nil
}

// mockPool hands out a single shared renderer up to size times concurrently.
type mockPool struct {
	renderer TableRenderer
	size     int
	acquired atomic.Int32
	released atomic.Int32
	closed   bool
}

func (p *mockPool) Acquire() TableRenderer {
	if p.closed {
		return nil
	}
	p.acquired.Add(1)
	return p.renderer
}

func (p *mockPool) Release(TableRenderer) { p.released.Add(1) }
func (p *mockPool) Size() int             { return p.size }

func testParams(dir string) *renderParams {
	return &renderParams{
		devices:   []paramtable.Device{paramtable.Desktop, paramtable.Phone},
		outputDir: dir,
		vector:    true,
		raster:    true,
		logger:    paramtable.NopLogger{},
	}
}

// ---------------------------------------------------------------------------
// TestRenderBatch - Concurrent Files
// ---------------------------------------------------------------------------

func TestRenderBatch(t *testing.T) {
	t.Parallel()

	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "nested", "out")
	var files []string
	for _, name := range []string{"a.yaml", "b.yaml", "c.yaml", "d.yaml", "e.yaml"} {
		files = append(files, writeFile(t, in, name, sampleRecordsYAML))
	}

	mr := &mockRenderer{}
	pool := &mockPool{renderer: mr, size: 3}
	results := renderBatch(context.Background(), pool, files, testParams(out))

	if len(results) != len(files) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(files))
	}
	for i, r := range results {
		if r.InputPath != files[i] {
			t.Errorf("results[%d].InputPath = %q, want %q", i, r.InputPath, files[i])
		}
		if r.Err != nil {
			t.Errorf("results[%d].Err = %v", i, r.Err)
		}
		if len(r.Outputs) != 4 {
			t.Errorf("results[%d] wrote %d files, want 4", i, len(r.Outputs))
		}
		if r.JobID == "" {
			t.Errorf("results[%d].JobID is empty", i)
		}
	}
	if mr.calls != len(files) {
		t.Errorf("RenderAll calls = %d, want %d", mr.calls, len(files))
	}
	if got := pool.acquired.Load(); got != 3 {
		t.Errorf("acquired = %d, want 3", got)
	}
	if pool.acquired.Load() != pool.released.Load() {
		t.Errorf("acquired %d, released %d", pool.acquired.Load(), pool.released.Load())
	}
	for _, want := range []string{"a_desktop.svg", "a_desktop.png", "e_phone.svg", "e_phone.png"} {
		if _, err := os.Stat(filepath.Join(out, want)); err != nil {
			t.Errorf("missing output %s: %v", want, err)
		}
	}
}

func TestRenderBatch_Empty(t *testing.T) {
	t.Parallel()

	if got := renderBatch(context.Background(), &mockPool{size: 2}, nil, testParams("")); got != nil {
		t.Errorf("renderBatch(nil) = %v, want nil", got)
	}
}

func TestRenderBatch_ClosedPool(t *testing.T) {
	t.Parallel()

	files := []string{"a.yaml", "b.yaml"}
	results := renderBatch(context.Background(), &mockPool{size: 1, closed: true}, files, testParams(""))

	for i, r := range results {
		if !errors.Is(r.Err, ErrRendererInit) {
			t.Errorf("results[%d].Err = %v, want ErrRendererInit", i, r.Err)
		}
		if r.InputPath != files[i] {
			t.Errorf("results[%d].InputPath = %q", i, r.InputPath)
		}
	}
}

func TestRenderBatch_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mr := &mockRenderer{}
	files := []string{"a.yaml", "b.yaml"}
	results := renderBatch(ctx, &mockPool{renderer: mr, size: 2}, files, testParams(""))

	for i, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("results[%d].Err = %v, want context.Canceled", i, r.Err)
		}
	}
	if mr.calls != 0 {
		t.Errorf("RenderAll called %d times after cancel", mr.calls)
	}
}

// ---------------------------------------------------------------------------
// TestRenderFile - Single File
// ---------------------------------------------------------------------------

func TestRenderFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(*renderParams)
		snapshot bool
		want     []string
	}{
		{
			name: "both outputs",
			want: []string{"item_desktop.svg", "item_desktop.png", "item_phone.svg", "item_phone.png"},
		},
		{
			name:   "svg only",
			mutate: func(p *renderParams) { p.raster = false },
			want:   []string{"item_desktop.svg", "item_phone.svg"},
		},
		{
			name: "snapshot",
			mutate: func(p *renderParams) {
				p.vector = false
				p.raster = false
				p.devices = []paramtable.Device{paramtable.Tablet}
			},
			snapshot: true,
			want:     []string{"item_tablet_snapshot.png"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			input := writeFile(t, dir, "item.yaml", sampleRecordsYAML)
			params := testParams("")
			if tt.mutate != nil {
				tt.mutate(params)
			}

			out := renderFile(context.Background(), &mockRenderer{snapshot: tt.snapshot}, input, params)
			if out.Err != nil {
				t.Fatalf("renderFile() error = %v", out.Err)
			}

			var got []string
			for _, o := range out.Outputs {
				if filepath.Dir(o) != dir {
					t.Errorf("output %s not next to input", o)
				}
				got = append(got, filepath.Base(o))
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("outputs = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRenderFile_Sort(t *testing.T) {
	t.Parallel()

	input := writeFile(t, t.TempDir(), "item.yaml", `
- param_name: b
- param_name: a
  is_regular_param: 1
`)
	var seen []string
	r := recordingRenderer(func(records []paramtable.ParameterRecord) {
		for _, rec := range records {
			seen = append(seen, rec.ParamName)
		}
	})
	params := testParams(t.TempDir())
	params.sort = true

	if out := renderFile(context.Background(), r, input, params); out.Err != nil {
		t.Fatalf("renderFile() error = %v", out.Err)
	}
	if !slices.Equal(seen, []string{"a", "b"}) {
		t.Errorf("records = %v, want [a b]", seen)
	}
}

// recordingRenderer calls fn with the records and returns no results.
type recordingRenderer func([]paramtable.ParameterRecord)

func (f recordingRenderer) RenderAll(_ context.Context, records []paramtable.ParameterRecord, _ ...paramtable.Device) ([]*paramtable.Result, error) {
	f(records)
	return nil, nil
}

func TestRenderFile_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", sampleRecordsYAML)
	blocker := writeFile(t, dir, "blocker", "")

	tests := []struct {
		name     string
		input    string
		renderer *mockRenderer
		outDir   string
		wantErr  error
	}{
		{"missing input", filepath.Join(dir, "missing.yaml"), &mockRenderer{}, "", ErrReadRecords},
		{"render failure", good, &mockRenderer{err: paramtable.ErrEmptyInput}, "", paramtable.ErrEmptyInput},
		{"output dir is a file", good, &mockRenderer{}, filepath.Join(blocker, "out"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			params := testParams(tt.outDir)
			out := renderFile(context.Background(), tt.renderer, tt.input, params)
			if out.Err == nil {
				t.Fatal("renderFile() error = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(out.Err, tt.wantErr) {
				t.Errorf("renderFile() error = %v, want %v", out.Err, tt.wantErr)
			}
			if out.Outputs != nil {
				t.Errorf("Outputs = %v, want none", out.Outputs)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestPrintResults - Summary Output
// ---------------------------------------------------------------------------

func TestPrintResults(t *testing.T) {
	t.Parallel()

	results := []RenderOutcome{
		{InputPath: "a.yaml", Outputs: []string{"a_desktop.svg", "a_desktop.png"}},
		{InputPath: "b.yaml", Err: errors.New("boom")},
	}

	tests := []struct {
		name           string
		quiet, verbose bool
		wantStdout     []string
		notStdout      []string
	}{
		{"default", false, false, []string{"Created a_desktop.svg", "1 succeeded, 1 failed"}, []string{"->"}},
		{"verbose", false, true, []string{"a.yaml -> 2 files", "Created a_desktop.png"}, nil},
		{"quiet", true, false, nil, []string{"Created", "succeeded"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer
			env := &Environment{Stdout: &stdout, Stderr: &stderr}
			if failed := printResults(results, tt.quiet, tt.verbose, env); failed != 1 {
				t.Errorf("failed = %d, want 1", failed)
			}
			if !strings.Contains(stderr.String(), "FAILED b.yaml: boom") {
				t.Errorf("stderr = %q, want FAILED line", stderr.String())
			}
			for _, s := range tt.wantStdout {
				if !strings.Contains(stdout.String(), s) {
					t.Errorf("stdout = %q, want %q", stdout.String(), s)
				}
			}
			for _, s := range tt.notStdout {
				if strings.Contains(stdout.String(), s) {
					t.Errorf("stdout = %q, should not contain %q", stdout.String(), s)
				}
			}
		})
	}
}

func TestCountResults(t *testing.T) {
	t.Parallel()

	got := countResults([]RenderOutcome{
		{Outputs: []string{"x", "y"}},
		{Outputs: []string{"z"}},
		{Err: errors.New("boom"), Outputs: []string{"ignored"}},
	})
	want := ResultSummary{Succeeded: 2, Failed: 1, Outputs: 3}
	if got != want {
		t.Errorf("countResults() = %+v, want %+v", got, want)
	}
}

func TestFirstError(t *testing.T) {
	t.Parallel()

	errA, errB := errors.New("a"), errors.New("b")
	if got := firstError([]RenderOutcome{{}, {Err: errA}, {Err: errB}}); got != errA {
		t.Errorf("firstError() = %v, want %v", got, errA)
	}
	if got := firstError([]RenderOutcome{{}}); got != nil {
		t.Errorf("firstError() = %v, want nil", got)
	}
}
