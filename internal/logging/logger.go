// Package logging provides the structured logging abstraction used across
// groshify. Components depend on the Logger interface; the concrete backend
// is logrus.
package logging

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is the structured logger every component receives by constructor.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithError returns a logger carrying err as the "error" field.
	WithError(err error) Logger
	WithField(key string, value interface{}) Logger
	WithFields(fields ...Field) Logger

	// Fatal logs and terminates the process. Only commands should call it.
	Fatal(msg string, fields ...Field)
	Fatalf(msg string, args ...interface{})
}

// Field is a key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

var (
	defaultOnce   sync.Once
	defaultLogger Logger
)

// Default returns the process-wide fallback logger (info level, text format).
// Constructors use it when they are handed a nil logger.
func Default() Logger {
	defaultOnce.Do(func() {
		defaultLogger = NewLogrusAdapter("info", "text")
	})
	return defaultLogger
}

// Discard returns a logger that drops everything. Handy in tests and
// benchmarks where log output is noise.
func Discard() Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return NewLogrusAdapterFromLogger(l)
}

// OrDefault returns l, or Default() when l is nil.
func OrDefault(l Logger) Logger {
	if l == nil {
		return Default()
	}
	return l
}
