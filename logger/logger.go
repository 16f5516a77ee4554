// Package logger provides a leveled logging interface used across the pool,
// breaker and health packages.
package logger

// Logger is a generic logging interface.
type Logger interface {
	// Init initialises options
	Init(options ...Option) error
	// The Logger options
	Options() Options
	// Fields set fields to always be logged
	Fields(fields map[string]interface{}) Logger
	// Log writes a log entry
	Log(level Level, v ...interface{})
	// Logf writes a formatted log entry
	Logf(level Level, format string, v ...interface{})
	// String returns the name of logger
	String() string
}

var (
	// DefaultLogger is used by the package level helpers and by any
	// component not given an explicit logger.
	DefaultLogger = NewLogger()
)

// NewLogger builds a stdout logger.
func NewLogger(opts ...Option) Logger {
	return newLogger(opts...)
}
