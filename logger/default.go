package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

func init() {
	lvl, err := GetLevel(os.Getenv("POOL_LOG_LEVEL"))
	if err != nil {
		lvl = InfoLevel
	}

	DefaultLogger = NewLogger(WithLevel(lvl))
}

type defaultLogger struct {
	opts Options
	slog *slog.Logger
	sync.RWMutex
}

func newLogger(opts ...Option) Logger {
	l := &defaultLogger{opts: newOptions(opts...)}
	l.rebuild()
	return l
}

// Init (opts...) should only overwrite provided options.
func (l *defaultLogger) Init(opts ...Option) error {
	l.Lock()
	defer l.Unlock()

	for _, o := range opts {
		o(&l.opts)
	}
	l.rebuild()

	return nil
}

// rebuild recreates the slog handler from the current options. Callers must
// hold the write lock or own the logger exclusively.
func (l *defaultLogger) rebuild() {
	handler := slog.NewTextHandler(l.opts.Out, &slog.HandlerOptions{
		Level: l.opts.Level.ToSlog(),
	})

	slogger := slog.New(handler)

	if len(l.opts.Fields) > 0 {
		args := make([]any, 0, len(l.opts.Fields)*2)
		for k, v := range l.opts.Fields {
			args = append(args, k, v)
		}
		slogger = slogger.With(args...)
	}

	l.slog = slogger
}

func (l *defaultLogger) Options() Options {
	l.RLock()
	defer l.RUnlock()
	return l.opts
}

func (l *defaultLogger) Fields(fields map[string]interface{}) Logger {
	l.RLock()
	nfields := make(map[string]interface{}, len(l.opts.Fields)+len(fields))
	for k, v := range l.opts.Fields {
		nfields[k] = v
	}
	opts := l.opts
	l.RUnlock()

	for k, v := range fields {
		nfields[k] = v
	}

	return NewLogger(
		WithLevel(opts.Level),
		WithFields(nfields),
		WithOutput(opts.Out),
	)
}

func (l *defaultLogger) Log(level Level, v ...interface{}) {
	l.RLock()
	enabled := l.opts.Level.Enabled(level)
	slogger := l.slog
	l.RUnlock()

	if !enabled {
		return
	}

	slogger.Log(context.Background(), level.ToSlog(), fmt.Sprint(v...))
}

func (l *defaultLogger) Logf(level Level, format string, v ...interface{}) {
	l.RLock()
	enabled := l.opts.Level.Enabled(level)
	slogger := l.slog
	l.RUnlock()

	if !enabled {
		return
	}

	slogger.Log(context.Background(), level.ToSlog(), fmt.Sprintf(format, v...))
}

func (l *defaultLogger) String() string {
	return "default"
}
