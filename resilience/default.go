package resilience

import (
	"context"

	"github.com/micro/go-pool/errors"
	"github.com/micro/go-pool/logger"
	"github.com/micro/go-pool/retry"
)

type defaultWrapper struct {
	opts Options
	log  *logger.Helper
	// loop is the retry policy actually used for looping. It is derived
	// from the configured policy so that an open circuit is never
	// retried: once the breaker rejects, the rejection propagates.
	loop retry.Policy
}

func newWrapper(opts ...Option) (*defaultWrapper, error) {
	options := newOptions(opts...)

	if options.Retry == nil && options.Breaker == nil {
		return nil, &errors.ConfigurationError{
			Option: "resilience",
			Detail: "requires at least one of a retry policy or a circuit breaker",
		}
	}

	w := &defaultWrapper{
		opts: options,
		log:  logger.NewHelper(options.Logger),
	}

	if options.Retry != nil {
		ropts := options.Retry.Options()

		retryable := ropts.Retryable
		if retryable == nil {
			retryable = retry.AlwaysRetry
		}

		loop, err := retry.NewPolicy(
			retry.Name(ropts.Name),
			retry.MaxRetries(ropts.MaxRetries),
			retry.BaseDelay(ropts.BaseDelay),
			retry.MaxDelay(ropts.MaxDelay),
			retry.ExponentialBase(ropts.ExponentialBase),
			retry.Jitter(ropts.Jitter),
			retry.Logger(ropts.Logger),
			retry.Retryable(func(err error) bool {
				if errors.IsCircuitOpen(err) {
					return false
				}
				return retryable(err)
			}),
		)
		if err != nil {
			return nil, err
		}
		w.loop = loop
	}

	return w, nil
}

func (w *defaultWrapper) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	guarded := fn
	if w.opts.Breaker != nil {
		b := w.opts.Breaker
		guarded = func(ctx context.Context) error {
			return b.Do(ctx, fn)
		}
	}

	if w.loop == nil {
		return guarded(ctx)
	}

	return w.loop.Do(ctx, guarded)
}

func (w *defaultWrapper) Options() Options {
	return w.opts
}

func (w *defaultWrapper) String() string {
	return w.opts.Name
}
