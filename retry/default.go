package retry

import (
	"context"
	"time"

	"github.com/micro/go-pool/errors"
	"github.com/micro/go-pool/logger"
	"github.com/micro/go-pool/util/backoff"
	"github.com/micro/go-pool/util/jitter"
)

type defaultPolicy struct {
	opts Options
	log  *logger.Helper
}

func newPolicy(opts ...Option) (*defaultPolicy, error) {
	options := newOptions(opts...)

	if options.MaxRetries < 0 {
		return nil, &errors.ConfigurationError{Option: "max_retries", Detail: "must not be negative"}
	}
	if options.BaseDelay < 0 {
		return nil, &errors.ConfigurationError{Option: "base_delay", Detail: "must not be negative"}
	}
	if options.MaxDelay > 0 && options.MaxDelay < options.BaseDelay {
		return nil, &errors.ConfigurationError{Option: "max_delay", Detail: "must not be less than base_delay"}
	}
	if options.ExponentialBase < 1 {
		return nil, &errors.ConfigurationError{Option: "exponential_base", Detail: "must be at least one"}
	}
	if options.Jitter < 0 {
		return nil, &errors.ConfigurationError{Option: "jitter", Detail: "must not be negative"}
	}

	return &defaultPolicy{
		opts: options,
		log:  logger.NewHelper(options.Logger),
	}, nil
}

func (p *defaultPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	start := time.Now()

	var lastErr error

	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		// non-retryable failures propagate without consuming budget
		if p.opts.Retryable != nil && !p.opts.Retryable(err) {
			return err
		}

		lastErr = err

		if attempt >= p.opts.MaxRetries {
			return &errors.RetryExhausted{
				Attempts: p.opts.MaxRetries,
				Elapsed:  time.Since(start),
				Err:      lastErr,
			}
		}

		delay := backoff.Exponential(attempt, p.opts.BaseDelay, p.opts.MaxDelay, p.opts.ExponentialBase)
		delay += jitter.Do(p.opts.Jitter)

		p.log.Debugf("%s: attempt %d failed, retrying in %v: %v", p.opts.Name, attempt+1, delay, err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (p *defaultPolicy) Options() Options {
	return p.opts
}

func (p *defaultPolicy) String() string {
	return p.opts.Name
}
