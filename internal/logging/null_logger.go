package logging

import "github.com/vvka-141/pgbulk/pkg/pgbulk"

var _ pgbulk.Logger = (*NullLogger)(nil)

// NullLogger discards all log messages.
// Used as the default when the caller configures no logger.
type NullLogger struct{}

// NewNullLogger creates a new NullLogger.
func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

func (l *NullLogger) Verbose(format string, args ...interface{}) {}

func (l *NullLogger) Info(format string, args ...interface{}) {}

func (l *NullLogger) Error(format string, args ...interface{}) {}
