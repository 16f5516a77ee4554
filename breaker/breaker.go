// Package breaker implements a circuit breaker. The breaker tracks
// consecutive failures of a guarded operation and rejects calls outright
// once a threshold is crossed, keeping additional load off a dependency
// that is already failing.
package breaker

import (
	"context"
	"time"
)

// State is the breaker state.
type State int

const (
	// StateClosed lets calls pass through.
	StateClosed State = iota
	// StateOpen rejects calls until the reset timeout elapses.
	StateOpen
	// StateHalfOpen admits a single trial call at a time.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// Breaker is the circuit breaker interface. Entering Do first checks state;
// while the breaker is open the operation is never invoked and the call
// fails fast with *errors.CircuitOpen. State transitions are evaluated
// lazily on each entry, so no background timer is required.
type Breaker interface {
	// Do runs fn guarded by the breaker.
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	// State returns the current state.
	State() State
	// Stats returns a snapshot of the breaker counters.
	Stats() Stats
	// Reset forces the breaker back to closed and zeroes the counters.
	Reset()
	// String returns the breaker name.
	String() string
}

// Stats is a point-in-time snapshot of breaker counters.
type Stats struct {
	State               State
	Total               uint64
	Successes           uint64
	Failures            uint64
	ConsecutiveFailures int
	LastFailure         time.Time
	LastSuccess         time.Time
	LastTransition      time.Time
}

// NewBreaker returns a breaker with the given options. It fails with a
// ConfigurationError if thresholds or timeouts are invalid.
func NewBreaker(opts ...Option) (Breaker, error) {
	return newBreaker(opts...)
}
