package breaker

import (
	"time"

	"github.com/micro/go-pool/logger"
)

type Options struct {
	// Name identifies the breaker in errors and logs.
	Name string
	// FailureThreshold is the consecutive failure count that trips the
	// breaker open.
	FailureThreshold int
	// ResetTimeout is how long the breaker stays open before admitting
	// a trial call.
	ResetTimeout time.Duration
	// HalfOpenTimeout is the trial window. Surviving it without a
	// failure closes the breaker.
	HalfOpenTimeout time.Duration
	// Exclude designates errors that propagate without counting as
	// breaker evidence, e.g. caller input validation failures.
	Exclude func(error) bool
	// Logger for state transitions.
	Logger logger.Logger
}

type Option func(*Options)

// Name sets the breaker name.
func Name(n string) Option {
	return func(o *Options) {
		o.Name = n
	}
}

// FailureThreshold sets the consecutive failures needed to trip.
func FailureThreshold(n int) Option {
	return func(o *Options) {
		o.FailureThreshold = n
	}
}

// ResetTimeout sets the open cooldown.
func ResetTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.ResetTimeout = d
	}
}

// HalfOpenTimeout sets the half-open trial window.
func HalfOpenTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.HalfOpenTimeout = d
	}
}

// Exclude sets the predicate for errors that must not count toward the
// failure threshold.
func Exclude(fn func(error) bool) Option {
	return func(o *Options) {
		o.Exclude = fn
	}
}

// Logger sets the logger.
func Logger(l logger.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

func newOptions(opts ...Option) Options {
	options := Options{
		Name:             "breaker",
		FailureThreshold: 5,
		ResetTimeout:     30 * time.Second,
		HalfOpenTimeout:  10 * time.Second,
		Logger:           logger.DefaultLogger,
	}
	for _, o := range opts {
		o(&options)
	}
	return options
}
