// Package registry tracks named pools for a process. There is deliberately
// no package-level default: the composition root owns the registry and its
// lifecycle.
package registry

import (
	stderrors "errors"

	"github.com/micro/go-pool/pool"
)

var (
	// ErrNotFound is returned when looking up a pool that was never
	// registered or was deregistered.
	ErrNotFound = stderrors.New("pool not found")
	// ErrDuplicate is returned when registering a name twice.
	ErrDuplicate = stderrors.New("pool already registered")
)

// Registry is a named collection of pools.
type Registry interface {
	// Register adds a pool under name. Registering an existing name fails
	// with ErrDuplicate; the registry never silently replaces a pool.
	Register(name string, p pool.Pool) error
	// Get looks up a pool by name.
	Get(name string) (pool.Pool, error)
	// Deregister removes a pool without closing it.
	Deregister(name string) error
	// List returns the registered names, sorted.
	List() []string
	// Close closes every registered pool and empties the registry. Close
	// failures are aggregated; every pool is closed regardless.
	Close() error
	String() string
}

// New returns an empty registry.
func New() Registry {
	return newRegistry()
}
