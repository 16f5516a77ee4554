package logger

import (
	"io"
	"os"
)

type Option func(*Options)

type Options struct {
	// The logging level the logger should log at. default is `InfoLevel`
	Level Level
	// fields to always be logged
	Fields map[string]interface{}
	// It's common to set this to a file, or leave it default which is `os.Stdout`
	Out io.Writer
}

// WithLevel sets the log level.
func WithLevel(level Level) Option {
	return func(args *Options) {
		args.Level = level
	}
}

// WithFields sets default fields for the logger.
func WithFields(fields map[string]interface{}) Option {
	return func(args *Options) {
		args.Fields = fields
	}
}

// WithOutput sets the output writer.
func WithOutput(out io.Writer) Option {
	return func(args *Options) {
		args.Out = out
	}
}

func newOptions(opts ...Option) Options {
	options := Options{
		Level:  InfoLevel,
		Fields: make(map[string]interface{}),
		Out:    os.Stdout,
	}
	for _, o := range opts {
		o(&options)
	}
	return options
}
