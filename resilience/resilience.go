// Package resilience composes a retry policy and a circuit breaker into one
// wrapper applicable to any connection-using operation. The breaker's
// fast-fail check runs inside every retry attempt, so once the circuit
// opens mid-loop the remaining attempts fail immediately instead of waiting
// out further backoff.
package resilience

import (
	"context"
)

// Wrapper guards a single operation with retry and/or circuit breaking.
type Wrapper interface {
	// Do runs fn through the configured breaker and retry policy.
	// An open circuit surfaces as *errors.CircuitOpen and an exhausted
	// retry budget as *errors.RetryExhausted carrying the originating
	// error. In breaker-only mode an operation failure that does not
	// trip the breaker propagates unwrapped: there is no retry outcome
	// to report, and the caller keeps the original error for its own
	// classification.
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	// Options returns the wrapper configuration.
	Options() Options
	// String returns the wrapper name.
	String() string
}

// NewWrapper returns a wrapper around the configured policies. At least one
// of WithRetry and WithBreaker is required; configuring neither fails with
// a ConfigurationError at wrap time, not at call time.
func NewWrapper(opts ...Option) (Wrapper, error) {
	return newWrapper(opts...)
}
