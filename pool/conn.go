package pool

import (
	"time"

	"github.com/google/uuid"
)

type poolConn struct {
	pool   *defaultPool
	client interface{}

	id      string
	created time.Time

	// guarded by pool.mu
	lastUsed time.Time
	inUse    bool
	closed   bool
}

func newPoolConn(p *defaultPool, client interface{}) *poolConn {
	now := time.Now()
	return &poolConn{
		pool:     p,
		client:   client,
		id:       uuid.New().String(),
		created:  now,
		lastUsed: now,
	}
}

func (c *poolConn) Id() string {
	return c.id
}

func (c *poolConn) Created() time.Time {
	return c.created
}

func (c *poolConn) LastUsed() time.Time {
	c.pool.mu.Lock()
	defer c.pool.mu.Unlock()
	return c.lastUsed
}

func (c *poolConn) Client() interface{} {
	return c.client
}

// stale must be called with pool.mu held.
func (c *poolConn) stale(now time.Time, opts Options) bool {
	if opts.IdleTimeout > 0 && now.Sub(c.lastUsed) > opts.IdleTimeout {
		return true
	}
	if opts.MaxLifetime > 0 && now.Sub(c.created) > opts.MaxLifetime {
		return true
	}
	return false
}
