// Package hystrix provides a resilience wrapper backed by afex/hystrix-go,
// for consumers already running a hystrix dashboard.
package hystrix

import (
	"context"

	"github.com/afex/hystrix-go/hystrix"

	"github.com/micro/go-pool/errors"
)

// Wrapper guards operations with a named hystrix command.
type Wrapper struct {
	name string
	opts Options
}

// NewWrapper returns a hystrix-backed wrapper. Command thresholds are
// configured through Configure.
func NewWrapper(name string, opts ...Option) *Wrapper {
	var options Options
	for _, o := range opts {
		o(&options)
	}

	return &Wrapper{
		name: name,
		opts: options,
	}
}

// Configure sets the hystrix command thresholds for name.
func Configure(name string, conf hystrix.CommandConfig) {
	hystrix.ConfigureCommand(name, conf)
}

// Do runs fn guarded by the hystrix command. An open circuit surfaces as
// *errors.CircuitOpen.
func (w *Wrapper) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	err := hystrix.DoC(ctx, w.name, func(c context.Context) error {
		return fn(c)
	}, w.opts.Fallback)

	if err == hystrix.ErrCircuitOpen {
		err = &errors.CircuitOpen{Breaker: w.name}
	}

	if w.opts.Filter != nil {
		err = w.opts.Filter(ctx, err)
	}

	return err
}

func (w *Wrapper) String() string {
	return w.name
}
