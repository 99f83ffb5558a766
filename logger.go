package paramtable

import "time"

// Logger receives structured diagnostics from a Renderer. Implementations
// must be safe for concurrent use.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

// Field is one key/value pair attached to a log entry.
type Field interface {
	Key() string
	Value() any
}

type field struct {
	key string
	val any
}

func (f field) Key() string { return f.key }
func (f field) Value() any  { return f.val }

// String returns a Field carrying a string value.
func String(key, value string) Field { return field{key, value} }

// Int returns a Field carrying an int value.
func Int(key string, value int) Field { return field{key, value} }

// Duration returns a Field carrying a time.Duration value.
func Duration(key string, value time.Duration) Field { return field{key, value} }

// Err returns a Field with key "error" carrying err, which may be nil.
func Err(err error) Field { return field{"error", err} }

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (NopLogger) With(...Field) Logger   { return NopLogger{} }

var _ Logger = NopLogger{}
