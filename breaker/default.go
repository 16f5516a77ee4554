package breaker

import (
	"context"
	"sync"
	"time"

	"github.com/micro/go-pool/errors"
	"github.com/micro/go-pool/logger"
)

type defaultBreaker struct {
	opts Options
	log  *logger.Helper

	mu             sync.Mutex
	state          State
	total          uint64
	successes      uint64
	failures       uint64
	consecutive    int
	lastFailure    time.Time
	lastSuccess    time.Time
	lastTransition time.Time
	// trial is true while a half-open probe call is in flight
	trial bool
}

func newBreaker(opts ...Option) (*defaultBreaker, error) {
	options := newOptions(opts...)

	if options.FailureThreshold <= 0 {
		return nil, &errors.ConfigurationError{Option: "failure_threshold", Detail: "must be greater than zero"}
	}
	if options.ResetTimeout <= 0 {
		return nil, &errors.ConfigurationError{Option: "reset_timeout", Detail: "must be greater than zero"}
	}
	if options.HalfOpenTimeout <= 0 {
		return nil, &errors.ConfigurationError{Option: "half_open_timeout", Detail: "must be greater than zero"}
	}

	return &defaultBreaker{
		opts:           options,
		log:            logger.NewHelper(options.Logger),
		state:          StateClosed,
		lastTransition: time.Now(),
	}, nil
}

// advance applies any time-based transition. Must be called with mu held.
func (b *defaultBreaker) advance(now time.Time) {
	switch b.state {
	case StateOpen:
		if now.Sub(b.lastTransition) >= b.opts.ResetTimeout {
			b.setState(StateHalfOpen, now)
		}
	case StateHalfOpen:
		// the trial window expired without a failure
		if !b.trial && now.Sub(b.lastTransition) >= b.opts.HalfOpenTimeout {
			b.consecutive = 0
			b.setState(StateClosed, now)
		}
	}
}

// setState must be called with mu held.
func (b *defaultBreaker) setState(s State, now time.Time) {
	if b.state == s {
		return
	}
	b.log.Warnf("breaker %s: %s -> %s", b.opts.Name, b.state, s)
	b.state = s
	b.lastTransition = now
	b.trial = false
}

// allow reports whether a call may proceed, claiming the half-open probe
// slot when applicable.
func (b *defaultBreaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.advance(now)

	switch b.state {
	case StateOpen:
		return &errors.CircuitOpen{
			Breaker:    b.opts.Name,
			Failures:   b.consecutive,
			RetryAfter: b.opts.ResetTimeout - now.Sub(b.lastTransition),
		}
	case StateHalfOpen:
		// one probe at a time through the half-open window
		if b.trial {
			return &errors.CircuitOpen{
				Breaker:    b.opts.Name,
				Failures:   b.consecutive,
				RetryAfter: b.opts.HalfOpenTimeout - now.Sub(b.lastTransition),
			}
		}
		b.trial = true
	}

	b.total++
	return nil
}

func (b *defaultBreaker) success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.successes++
	b.consecutive = 0
	b.lastSuccess = now

	if b.state == StateHalfOpen {
		b.trial = false
		b.advance(now)
	}
}

func (b *defaultBreaker) failure(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.opts.Exclude != nil && b.opts.Exclude(err) {
		// not breaker evidence, release the probe slot if held
		b.trial = false
		return
	}

	now := time.Now()
	b.failures++
	b.consecutive++
	b.lastFailure = now

	switch b.state {
	case StateClosed:
		if b.consecutive >= b.opts.FailureThreshold {
			b.setState(StateOpen, now)
		}
	case StateHalfOpen:
		// the probe failed, back to open
		b.setState(StateOpen, now)
	}
}

func (b *defaultBreaker) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := b.allow(); err != nil {
		return err
	}

	if err := fn(ctx); err != nil {
		b.failure(err)
		return err
	}

	b.success()
	return nil
}

func (b *defaultBreaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.advance(time.Now())
	return b.state
}

func (b *defaultBreaker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.advance(time.Now())

	return Stats{
		State:               b.state,
		Total:               b.total,
		Successes:           b.successes,
		Failures:            b.failures,
		ConsecutiveFailures: b.consecutive,
		LastFailure:         b.lastFailure,
		LastSuccess:         b.lastSuccess,
		LastTransition:      b.lastTransition,
	}
}

func (b *defaultBreaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.total = 0
	b.successes = 0
	b.failures = 0
	b.consecutive = 0
	b.setState(StateClosed, time.Now())
}

func (b *defaultBreaker) String() string {
	return b.opts.Name
}
