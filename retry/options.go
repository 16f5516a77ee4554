package retry

import (
	"time"

	"github.com/micro/go-pool/logger"
)

type Options struct {
	// Name identifies the policy in logs.
	Name string
	// MaxRetries is the retry budget, excluding the initial call.
	MaxRetries int
	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration
	// MaxDelay caps the computed delay.
	MaxDelay time.Duration
	// ExponentialBase is the backoff multiplier per attempt.
	ExponentialBase float64
	// Jitter bounds the random delay added to each backoff.
	Jitter time.Duration
	// Retryable classifies errors. A false return propagates the error
	// immediately without consuming retry budget.
	Retryable func(error) bool
	// Logger for per-attempt logging.
	Logger logger.Logger
}

type Option func(*Options)

// Name sets the policy name.
func Name(n string) Option {
	return func(o *Options) {
		o.Name = n
	}
}

// MaxRetries sets the retry budget.
func MaxRetries(n int) Option {
	return func(o *Options) {
		o.MaxRetries = n
	}
}

// BaseDelay sets the first retry delay.
func BaseDelay(d time.Duration) Option {
	return func(o *Options) {
		o.BaseDelay = d
	}
}

// MaxDelay caps the backoff delay.
func MaxDelay(d time.Duration) Option {
	return func(o *Options) {
		o.MaxDelay = d
	}
}

// ExponentialBase sets the backoff multiplier.
func ExponentialBase(f float64) Option {
	return func(o *Options) {
		o.ExponentialBase = f
	}
}

// Jitter sets the jitter bound.
func Jitter(d time.Duration) Option {
	return func(o *Options) {
		o.Jitter = d
	}
}

// Retryable sets the error classification predicate.
func Retryable(fn func(error) bool) Option {
	return func(o *Options) {
		o.Retryable = fn
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
		Name:            "retry",
		MaxRetries:      3,
		BaseDelay:       100 * time.Millisecond,
		MaxDelay:        10 * time.Second,
		ExponentialBase: 2.0,
		Retryable:       AlwaysRetry,
		Logger:          logger.DefaultLogger,
	}
	for _, o := range opts {
		o(&options)
	}
	return options
}
