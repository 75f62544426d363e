// Package optlog is the logger collaborator threaded through bundle,
// program, and solver. It follows hyperifyio-gnd's pkg/log shape: a leveled
// printer over os.Stderr, no structured-logging dependency, because nothing
// in the retrieved pack pulls one in for its core algorithmic code either.
//
// A Logger doubles as the §7 "user stop" hook: Log returns false to signal
// that the caller should abort with state.Stopped instead of continuing.
// The default loggers always return true.
package optlog

import (
	"fmt"
	"os"
)

// Level is a logging severity, ordered least to most verbose.
type Level int

const (
	// Error is for unrecoverable per-call failures.
	Error Level = iota
	// Warn is for recoverable anomalies (e.g. a skipped SR1 update).
	Warn
	// Info is for per-iteration solver progress.
	Info
	// Debug is for step-by-step line-search/bundle internals.
	Debug
)

// String renders the level the way hyperifyio-gnd/pkg/log does.
func (l Level) String() string {
	switch l {
	case Error:
		return "ERROR"
	case Warn:
		return "WARN"
	case Info:
		return "INFO"
	case Debug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// Logger is implemented by anything that can receive solver/bundle/program
// progress messages. Log returns false to request that the driving
// algorithm stop early (state.Stopped).
type Logger interface {
	Log(level Level, format string, args ...interface{}) bool
}

// Nop discards every message and never requests a stop. It is the default
// used when callers pass a nil Logger.
type Nop struct{}

// Log implements Logger.
func (Nop) Log(Level, string, ...interface{}) bool { return true }

// Std prints messages at or below Threshold to os.Stderr.
type Std struct {
	// Threshold is the least-severe level that is printed; Debug prints
	// everything, Error prints only errors. The zero value is Error.
	Threshold Level
}

// NewStd returns a Std logger at the given threshold.
func NewStd(threshold Level) *Std { return &Std{Threshold: threshold} }

// Log implements Logger.
func (s *Std) Log(level Level, format string, args ...interface{}) bool {
	if level <= s.Threshold {
		fmt.Fprintf(os.Stderr, "[%s]: %s\n", level, fmt.Sprintf(format, args...))
	}
	return true
}

// OrNop returns l, or a Nop logger if l is nil, so call sites never need a
// nil check before calling Log.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop{}
	}
	return l
}
