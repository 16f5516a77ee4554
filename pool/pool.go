// Package pool is a generic connection pool. It owns a bounded collection
// of expensive, stateful connections to a network-attached store, shared by
// many concurrent callers under an exclusive-lease discipline. Connection
// creation, validation and teardown are delegated to a backend-supplied
// Factory, keeping the pool protocol-agnostic.
package pool

import (
	"context"
	"time"
)

// Pool is the connection pool interface.
type Pool interface {
	// Get leases a connection: an idle one if available, a freshly
	// created one if below capacity, otherwise it blocks until a
	// connection is released or the acquire timeout elapses.
	Get(ctx context.Context) (Conn, error)
	// Release returns a leased connection. A non-nil status, a failed
	// test-on-return validation or staleness retires the connection
	// instead of reusing it. Releasing a connection that was never
	// leased from this pool panics.
	Release(conn Conn, status error) error
	// Connection leases a connection for the duration of fn and
	// releases it unconditionally afterwards, including on error.
	Connection(ctx context.Context, fn func(Conn) error) error
	// HealthCheck leases a connection, validates it and releases it.
	// It never fails; any error converts to false.
	HealthCheck(ctx context.Context) bool
	// Stats returns a snapshot of pool and per-connection state.
	Stats() Stats
	// CleanupStale closes idle connections exceeding the idle or
	// lifetime bounds and restores the MinSize floor. It returns the
	// number of connections removed.
	CleanupStale(ctx context.Context) (int, error)
	// Clear forcibly drains the pool, closing every tracked connection.
	Clear() error
	// Close terminates the pool. Later Gets fail with PoolClosed.
	Close() error
	// Options returns the pool configuration.
	Options() Options
	// String returns the pool name.
	String() string
}

// Conn is a leased handle to a single backend resource. It is exclusively
// owned by its caller until returned; the pool is the sole owner of idle
// connections and the sole authority permitted to close one.
type Conn interface {
	// Id is the unique id of the connection.
	Id() string
	// Created is the time the connection was created.
	Created() time.Time
	// LastUsed is the time the connection was last returned.
	LastUsed() time.Time
	// Client is the backend handle produced by the factory.
	Client() interface{}
}

// Factory is the backend contract the pool consumes. It has no knowledge of
// queries or wire formats.
type Factory interface {
	// Create dials a new backend connection.
	Create(ctx context.Context) (interface{}, error)
	// Validate reports whether a connection is still usable. It never
	// fails; any doubt returns false.
	Validate(client interface{}) bool
	// Close tears down a connection.
	Close(client interface{}) error
	// String returns the factory name.
	String() string
}

// Stats is a point-in-time snapshot of pool state.
type Stats struct {
	Name     string      `json:"name"`
	MinSize  int         `json:"min_size"`
	MaxSize  int         `json:"max_size"`
	Total    int         `json:"total"`
	Idle     int         `json:"idle"`
	InUse    int         `json:"in_use"`
	Creating int         `json:"creating"`
	Waiters  int         `json:"waiters"`
	Created  uint64      `json:"created"`
	Retired  uint64      `json:"retired"`
	Timeouts uint64      `json:"timeouts"`
	Closed   bool        `json:"closed"`
	Conns    []ConnStats `json:"conns,omitempty"`
}

// ConnStats is a per-connection snapshot.
type ConnStats struct {
	Id       string        `json:"id"`
	Created  time.Time     `json:"created"`
	LastUsed time.Time     `json:"last_used"`
	IdleTime time.Duration `json:"idle_time"`
	Lifetime time.Duration `json:"lifetime"`
	InUse    bool          `json:"in_use"`
	Stale    bool          `json:"stale"`
}

// NewPool returns a pool backed by the given factory, eagerly creating
// MinSize connections. It fails with a ConfigurationError on invalid
// options and a ConnectionFailure if warm-up creation fails.
func NewPool(factory Factory, opts ...Option) (Pool, error) {
	return newPool(factory, opts...)
}
