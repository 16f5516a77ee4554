package health

import (
	"time"

	"github.com/micro/go-pool/logger"
	"github.com/micro/go-pool/metrics"
	"github.com/micro/go-pool/metrics/noop"
)

// Options for the periodic checker.
type Options struct {
	// Interval between observations. Defaults to 30s.
	Interval time.Duration
	// Reporter receives pool gauges on every observation. Defaults to noop.
	Reporter metrics.Reporter
	// Cleanup controls whether each observation also retires stale idle
	// connections. Defaults to true.
	Cleanup bool
	// Logger for checker activity.
	Logger logger.Logger
}

// Option sets checker options.
type Option func(*Options)

func newOptions(opts ...Option) Options {
	options := Options{
		Interval: 30 * time.Second,
		Reporter: noop.New(),
		Cleanup:  true,
		Logger:   logger.DefaultLogger,
	}

	for _, o := range opts {
		o(&options)
	}

	return options
}

// Interval sets the time between observations.
func Interval(d time.Duration) Option {
	return func(o *Options) {
		o.Interval = d
	}
}

// Reporter sets the metrics reporter.
func Reporter(r metrics.Reporter) Option {
	return func(o *Options) {
		o.Reporter = r
	}
}

// Cleanup controls stale connection cleanup during observations.
func Cleanup(b bool) Option {
	return func(o *Options) {
		o.Cleanup = b
	}
}

// Logger sets the logger.
func Logger(l logger.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}
