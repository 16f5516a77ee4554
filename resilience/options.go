package resilience

import (
	"github.com/micro/go-pool/breaker"
	"github.com/micro/go-pool/logger"
	"github.com/micro/go-pool/retry"
)

type Options struct {
	// Name identifies the wrapper in logs.
	Name string
	// Retry governs looping and backoff around the guarded call.
	Retry retry.Policy
	// Breaker short-circuits calls to a failing dependency.
	Breaker breaker.Breaker
	// Logger for diagnostics.
	Logger logger.Logger
}

type Option func(*Options)

// Name sets the wrapper name.
func Name(n string) Option {
	return func(o *Options) {
		o.Name = n
	}
}

// WithRetry sets the retry policy.
func WithRetry(p retry.Policy) Option {
	return func(o *Options) {
		o.Retry = p
	}
}

// WithBreaker sets the circuit breaker.
func WithBreaker(b breaker.Breaker) Option {
	return func(o *Options) {
		o.Breaker = b
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
		Name:   "resilience",
		Logger: logger.DefaultLogger,
	}
	for _, o := range opts {
		o(&options)
	}
	return options
}
