package main

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/q939055502/jy-syzn"
)

// ---------------------------------------------------------------------------
// TestCLILogger_Levels - Output modes
// ---------------------------------------------------------------------------

func TestCLILogger_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		quiet, verbose bool
		want           []string
	}{
		{"default", false, false, []string{"warn: w", "error: e"}},
		{"quiet", true, false, []string{"error: e"}},
		{"verbose", false, true, []string{"debug: d", "info: i", "warn: w", "error: e"}},
		{"verbose wins over quiet", true, true, []string{"debug: d", "info: i", "warn: w", "error: e"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			l := newCLILogger(&buf, tt.quiet, tt.verbose)
			l.Debug("d")
			l.Info("i")
			l.Warn("w")
			l.Error("e")

			got := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("lines = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCLILogger_Fields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := newCLILogger(&buf, false, false).With(paramtable.String("job", "j1"))
	l.Warn("render failed",
		paramtable.Int("rows", 3),
		paramtable.Duration("elapsed", 1500*time.Millisecond),
		paramtable.String("input", "my file.yaml"),
		paramtable.Err(errors.New("boom")))

	want := `warn: render failed job=j1 rows=3 elapsed=1.5s input="my file.yaml" error=boom` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("line = %q, want %q", got, want)
	}
}

func TestCLILogger_WithDoesNotLeak(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := newCLILogger(&buf, false, false)
	_ = base.With(paramtable.String("device", "phone"))
	base.Warn("plain")

	if got := buf.String(); got != "warn: plain\n" {
		t.Errorf("base logger picked up derived fields: %q", got)
	}
}

func TestCLILogger_Concurrent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := newCLILogger(&buf, false, true)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.With(paramtable.Int("n", i)).Info("tick")
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 20 {
		t.Fatalf("got %d lines, want 20", len(lines))
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "info: tick n=") {
			t.Errorf("interleaved line %q", line)
		}
	}
}
