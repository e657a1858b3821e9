// Package fpcflog is a thin wrapper around the standard library logger.
// The store and engine accept a Logger but do not currently write to it,
// and nothing in this module makes control-flow decisions based on what
// gets logged.
package fpcflog

import (
	"io"
	"log"
	"os"
)

// Logger is the interface the store and engine accept. The default
// implementation wraps *log.Logger; tests can substitute a Logger that
// collects lines instead of writing them.
type Logger interface {
	Logf(format string, args ...any)
}

type stdLogger struct {
	l *log.Logger
}

// New returns a Logger writing to w with the given prefix, mirroring the
// standard-library-only logging the teacher's internal/core/adt/log.go
// uses (Assertf/Logf over the stdlib log package, no external logging
// dependency).
func New(w io.Writer, prefix string) Logger {
	return &stdLogger{l: log.New(w, prefix, log.LstdFlags|log.Lmicroseconds)}
}

// Default returns a Logger writing to os.Stderr.
func Default() Logger { return New(os.Stderr, "fpcf: ") }

// Discard returns a Logger that drops everything, for tests and for
// callers that don't want store diagnostics on stderr.
func Discard() Logger { return discardLogger{} }

func (s *stdLogger) Logf(format string, args ...any) { s.l.Printf(format, args...) }

type discardLogger struct{}

func (discardLogger) Logf(string, ...any) {}
