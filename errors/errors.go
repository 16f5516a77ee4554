// Package errors provides the shared error types surfaced by the pool,
// breaker, retry and resilience packages. Every error carries enough
// structured context for a caller to decide between failing the surrounding
// request and degrading gracefully.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ConnectionFailure indicates the backend factory failed to create,
// validate or close a connection.
type ConnectionFailure struct {
	// Op is the factory operation that failed: create, validate or close.
	Op string
	// Err is the underlying factory error, if any.
	Err error
}

func (e *ConnectionFailure) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("connection %s failed", e.Op)
	}
	return fmt.Sprintf("connection %s failed: %v", e.Op, e.Err)
}

func (e *ConnectionFailure) Unwrap() error {
	return e.Err
}

// PoolExhausted indicates no connection slot became available within the
// acquire timeout.
type PoolExhausted struct {
	// Pool is the name of the pool that rejected the acquire.
	Pool string
	// MaxSize is the pool's configured hard cap.
	MaxSize int
	// Waited is how long the caller blocked before giving up.
	Waited time.Duration
}

func (e *PoolExhausted) Error() string {
	return fmt.Sprintf("pool %s exhausted: %d connections in use, waited %v", e.Pool, e.MaxSize, e.Waited)
}

// PoolClosed indicates an operation was attempted after Close.
type PoolClosed struct {
	Pool string
}

func (e *PoolClosed) Error() string {
	return fmt.Sprintf("pool %s is closed", e.Pool)
}

// CircuitOpen indicates the circuit breaker rejected the call without
// invoking the operation.
type CircuitOpen struct {
	// Breaker is the name of the breaker that rejected the call.
	Breaker string
	// Failures is the consecutive failure count that tripped the breaker.
	Failures int
	// RetryAfter is how long until the breaker will allow a trial call.
	RetryAfter time.Duration
}

func (e *CircuitOpen) Error() string {
	return fmt.Sprintf("circuit %s open after %d failures, retry in %v", e.Breaker, e.Failures, e.RetryAfter)
}

// RetryExhausted indicates every retry attempt failed. It wraps the last
// underlying error.
type RetryExhausted struct {
	// Attempts is the number of retries performed, excluding the initial call.
	Attempts int
	// Elapsed is the total time spent across all attempts and backoff waits.
	Elapsed time.Duration
	// Err is the last error returned by the operation.
	Err error
}

func (e *RetryExhausted) Error() string {
	return fmt.Sprintf("retries exhausted after %d attempts in %v: %v", e.Attempts, e.Elapsed, e.Err)
}

func (e *RetryExhausted) Unwrap() error {
	return e.Err
}

// ConfigurationError indicates invalid or contradictory parameters. It is
// raised eagerly at construction, never deferred to call time.
type ConfigurationError struct {
	// Option is the offending option name.
	Option string
	// Detail describes what is wrong with it.
	Detail string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Option, e.Detail)
}

// IsConnectionFailure returns true if err is a ConnectionFailure.
func IsConnectionFailure(err error) bool {
	var e *ConnectionFailure
	return errors.As(err, &e)
}

// IsPoolExhausted returns true if err is a PoolExhausted.
func IsPoolExhausted(err error) bool {
	var e *PoolExhausted
	return errors.As(err, &e)
}

// IsPoolClosed returns true if err is a PoolClosed.
func IsPoolClosed(err error) bool {
	var e *PoolClosed
	return errors.As(err, &e)
}

// IsCircuitOpen returns true if err is a CircuitOpen.
func IsCircuitOpen(err error) bool {
	var e *CircuitOpen
	return errors.As(err, &e)
}

// IsRetryExhausted returns true if err is a RetryExhausted.
func IsRetryExhausted(err error) bool {
	var e *RetryExhausted
	return errors.As(err, &e)
}

// IsConfiguration returns true if err is a ConfigurationError.
func IsConfiguration(err error) bool {
	var e *ConfigurationError
	return errors.As(err, &e)
}
