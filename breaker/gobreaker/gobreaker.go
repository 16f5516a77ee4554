// Package gobreaker implements the breaker interface on top of
// sony/gobreaker, for consumers already standardized on it.
package gobreaker

import (
	"context"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/micro/go-pool/breaker"
	"github.com/micro/go-pool/errors"
)

type sonyBreaker struct {
	mu       sync.Mutex
	settings gobreaker.Settings
	cb       *gobreaker.CircuitBreaker

	lastFailure    time.Time
	lastSuccess    time.Time
	lastTransition time.Time
}

// NewBreaker returns a breaker backed by sony/gobreaker with the given
// settings. Timing semantics (Interval, Timeout, ReadyToTrip) are
// gobreaker's own.
func NewBreaker(settings gobreaker.Settings) breaker.Breaker {
	b := &sonyBreaker{
		settings:       settings,
		lastTransition: time.Now(),
	}

	// chain any caller-provided state change hook behind ours
	onChange := settings.OnStateChange
	b.settings.OnStateChange = func(name string, from, to gobreaker.State) {
		b.mu.Lock()
		b.lastTransition = time.Now()
		b.mu.Unlock()
		if onChange != nil {
			onChange(name, from, to)
		}
	}

	b.cb = gobreaker.NewCircuitBreaker(b.settings)

	return b
}

func (b *sonyBreaker) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn(ctx)
	})

	switch err {
	case nil:
		b.mu.Lock()
		b.lastSuccess = time.Now()
		b.mu.Unlock()
		return nil
	case gobreaker.ErrOpenState, gobreaker.ErrTooManyRequests:
		return &errors.CircuitOpen{
			Breaker:  b.cb.Name(),
			Failures: int(b.cb.Counts().ConsecutiveFailures),
		}
	}

	b.mu.Lock()
	b.lastFailure = time.Now()
	b.mu.Unlock()

	return err
}

func (b *sonyBreaker) State() breaker.State {
	switch b.cb.State() {
	case gobreaker.StateOpen:
		return breaker.StateOpen
	case gobreaker.StateHalfOpen:
		return breaker.StateHalfOpen
	}
	return breaker.StateClosed
}

func (b *sonyBreaker) Stats() breaker.Stats {
	counts := b.cb.Counts()

	b.mu.Lock()
	defer b.mu.Unlock()

	return breaker.Stats{
		State:               b.State(),
		Total:               uint64(counts.Requests),
		Successes:           uint64(counts.TotalSuccesses),
		Failures:            uint64(counts.TotalFailures),
		ConsecutiveFailures: int(counts.ConsecutiveFailures),
		LastFailure:         b.lastFailure,
		LastSuccess:         b.lastSuccess,
		LastTransition:      b.lastTransition,
	}
}

// Reset swaps in a fresh underlying breaker; gobreaker has no reset of its
// own.
func (b *sonyBreaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.cb = gobreaker.NewCircuitBreaker(b.settings)
	b.lastTransition = time.Now()
}

func (b *sonyBreaker) String() string {
	return b.cb.Name()
}
