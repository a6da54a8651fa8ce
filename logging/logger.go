// Package logging wraps log/slog with the small set of domain warnings
// vekta emits during store recovery, ingestion, and search. Grounded on
// the teacher's own logger.go: a thin struct wrapping *slog.Logger with a
// handful of named helper methods rather than a general logging facade.
package logging

import (
	"log/slog"
	"os"
)

// Logger wraps *slog.Logger with vekta's domain-specific warnings.
type Logger struct {
	base *slog.Logger
}

// New returns a Logger writing structured text to stderr. verbose selects
// slog.LevelDebug; otherwise the logger stays quiet at slog.LevelWarn, per
// SPEC_FULL §4.9.
func New(verbose bool) *Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return &Logger{base: slog.New(h)}
}

// Nop returns a Logger that discards everything, for tests.
func Nop() *Logger {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1})
	return &Logger{base: slog.New(h)}
}

func (l *Logger) Debug(msg string, args ...any) { l.base.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.base.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.base.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.base.Error(msg, args...) }

// PartialWriteTruncated warns that a store's tail held an incomplete
// record at open time and was truncated back to the last full record.
func (l *Logger) PartialWriteTruncated(path string, from, to int64) {
	l.Warn("truncated partial trailing record", "path", path, "from_bytes", from, "to_bytes", to)
}

// SkippedRecord warns that one input line during an add batch was rejected
// and skipped rather than aborting the whole batch.
func (l *Logger) SkippedRecord(line int, reason error) {
	l.Warn("skipped invalid record", "line", line, "reason", reason)
}

// LSHFallback warns that an approximate-search request fell back to an
// exact scan, e.g. because num_projections is 0.
func (l *Logger) LSHFallback(reason string) {
	l.Warn("falling back to exact search", "reason", reason)
}
