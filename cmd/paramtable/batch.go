package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/q939055502/jy-syzn"
	"github.com/q939055502/jy-syzn/internal/fileutil"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Sentinel errors for batch operations.
var (
	ErrWriteOutput  = errors.New("failed to write output file")
	ErrRendererInit = errors.New("failed to initialize renderer")
)

// renderParams groups parameters shared by every file of a batch.
type renderParams struct {
	devices   []paramtable.Device
	outputDir string // empty = next to each records file
	sort      bool
	vector    bool
	raster    bool
	logger    paramtable.Logger
}

// RenderOutcome holds the result of rendering one records file.
type RenderOutcome struct {
	JobID     string
	InputPath string
	Outputs   []string
	Err       error
	Duration  time.Duration
}

// renderBatch renders files concurrently with the renderer pool. Outcomes
// follow the order of files.
func renderBatch(ctx context.Context, pool Pool, files []string, params *renderParams) []RenderOutcome {
	if len(files) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(files))

	results := make([]RenderOutcome, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()

			r := pool.Acquire()
			if r == nil {
				// Pool closed, mark remaining jobs as failed
				for idx := range jobs {
					results[idx] = RenderOutcome{InputPath: files[idx], Err: ErrRendererInit}
				}
				return
			}
			defer pool.Release(r)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = RenderOutcome{InputPath: files[idx], Err: ctx.Err()}
					continue
				}
				results[idx] = renderFile(ctx, r, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// renderFile renders one records file and writes its artifacts.
func renderFile(ctx context.Context, r TableRenderer, path string, params *renderParams) RenderOutcome {
	start := time.Now()
	out := RenderOutcome{JobID: uuid.NewString(), InputPath: path}
	log := params.logger.With(paramtable.String("job", out.JobID), paramtable.String("input", path))

	fail := func(err error) RenderOutcome {
		out.Err = err
		out.Duration = time.Since(start)
		log.Debug("render failed", paramtable.Err(err))
		return out
	}

	file, err := readRecords(path)
	if err != nil {
		return fail(err)
	}
	records := file.Records
	if params.sort {
		records = paramtable.SortRecords(records)
	}
	log.Debug("records loaded",
		paramtable.String("item", file.ItemID),
		paramtable.Int("records", len(records)))

	results, err := r.RenderAll(ctx, records, params.devices...)
	if err != nil {
		return fail(err)
	}

	if params.outputDir != "" {
		if err := os.MkdirAll(params.outputDir, dirPermissions); err != nil {
			return fail(fmt.Errorf("creating output directory: %w", err))
		}
	}

	for _, res := range results {
		for _, a := range res.Artifacts() {
			if !params.wants(a.Kind) {
				continue
			}
			dest, err := writeArtifact(params.outputDir, path, a)
			if err != nil {
				return fail(err)
			}
			out.Outputs = append(out.Outputs, dest)
			log.Debug("artifact written",
				paramtable.String("key", paramtable.CacheKey(file.ItemID, a.Device)),
				paramtable.String("kind", a.Kind.String()),
				paramtable.String("path", dest))
		}
	}

	out.Duration = time.Since(start)
	return out
}

func (p *renderParams) wants(k paramtable.ArtifactKind) bool {
	switch k {
	case paramtable.KindVector:
		return p.vector
	case paramtable.KindRaster:
		return p.raster
	default:
		return true
	}
}

// writeArtifact writes a to "<base>_<device>.<ext>", or
// "<base>_<device>_snapshot.png" for browser snapshots.
func writeArtifact(dir, input string, a paramtable.Artifact) (string, error) {
	suffix := a.Device.String()
	if a.Kind == paramtable.KindSnapshot {
		suffix += "_snapshot"
	}
	dest, err := fileutil.OutputPath(dir, input, suffix, a.Kind.Extension())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	// #nosec G306 -- rendered tables are meant to be readable
	if err := os.WriteFile(dest, a.Data, filePermissions); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return dest, nil
}

// ResultSummary holds the count of succeeded and failed files.
type ResultSummary struct {
	Succeeded int
	Failed    int
	Outputs   int
}

// countResults tallies succeeded and failed files.
func countResults(results []RenderOutcome) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
			continue
		}
		summary.Succeeded++
		summary.Outputs += len(r.Outputs)
	}
	return summary
}

// printResults outputs render results and returns the number of failures.
func printResults(results []RenderOutcome, quiet, verbose bool, env *Environment) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %d files (%v)\n", r.InputPath, len(r.Outputs), r.Duration.Round(time.Millisecond))
		}
		for _, o := range r.Outputs {
			fmt.Fprintf(env.Stdout, "Created %s\n", o)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}

// firstError returns the first failure of results, or nil.
func firstError(results []RenderOutcome) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}
