// Package retry provides a bounded, backoff-governed re-invocation policy
// for transient failures. Idempotence of the retried operation is the
// caller's responsibility.
package retry

import (
	"context"
)

// Policy re-invokes a failing operation with exponential backoff until it
// succeeds or the retry budget is exhausted.
type Policy interface {
	// Do runs fn, retrying retryable failures up to MaxRetries times.
	// The inter-attempt delay is a true suspension point: it honors ctx
	// cancellation and holds no locks.
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	// Options returns the policy configuration.
	Options() Options
	// String returns the policy name.
	String() string
}

// AlwaysRetry treats every error as retryable. It is the default
// classification.
func AlwaysRetry(err error) bool {
	return true
}

// NewPolicy returns a retry policy. It fails with a ConfigurationError if
// the parameters are invalid or contradictory.
func NewPolicy(opts ...Option) (Policy, error) {
	return newPolicy(opts...)
}
