package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/q939055502/jy-syzn"
)

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

func (l level) String() string {
	switch l {
	case levelDebug:
		return "debug"
	case levelInfo:
		return "info"
	case levelWarn:
		return "warn"
	default:
		return "error"
	}
}

// cliLogger writes "level: msg key=value ..." lines. Entries below min are
// dropped. Loggers derived with With share the writer and its lock.
type cliLogger struct {
	w      io.Writer
	mu     *sync.Mutex
	min    level
	fields []paramtable.Field
}

var _ paramtable.Logger = (*cliLogger)(nil)

// newCLILogger returns a logger for the output mode: debug when verbose,
// errors only when quiet, warnings otherwise.
func newCLILogger(w io.Writer, quiet, verbose bool) *cliLogger {
	min := levelWarn
	switch {
	case verbose:
		min = levelDebug
	case quiet:
		min = levelError
	}
	return &cliLogger{w: w, mu: new(sync.Mutex), min: min}
}

func (l *cliLogger) Debug(msg string, fields ...paramtable.Field) { l.log(levelDebug, msg, fields) }
func (l *cliLogger) Info(msg string, fields ...paramtable.Field)  { l.log(levelInfo, msg, fields) }
func (l *cliLogger) Warn(msg string, fields ...paramtable.Field)  { l.log(levelWarn, msg, fields) }
func (l *cliLogger) Error(msg string, fields ...paramtable.Field) { l.log(levelError, msg, fields) }

func (l *cliLogger) With(fields ...paramtable.Field) paramtable.Logger {
	merged := make([]paramtable.Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &cliLogger{w: l.w, mu: l.mu, min: l.min, fields: merged}
}

func (l *cliLogger) log(lvl level, msg string, fields []paramtable.Field) {
	if lvl < l.min {
		return
	}

	var b strings.Builder
	b.WriteString(lvl.String())
	b.WriteString(": ")
	b.WriteString(msg)
	for _, f := range l.fields {
		writeField(&b, f)
	}
	for _, f := range fields {
		writeField(&b, f)
	}
	b.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.w, b.String())
}

func writeField(b *strings.Builder, f paramtable.Field) {
	v := fmt.Sprint(f.Value())
	if strings.ContainsAny(v, " \t\n\"") {
		v = fmt.Sprintf("%q", v)
	}
	fmt.Fprintf(b, " %s=%s", f.Key(), v)
}
