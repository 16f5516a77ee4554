package pool

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/micro/go-pool/errors"
	"github.com/micro/go-pool/logger"
)

// waiter is a caller blocked in Get. A release hands a connection straight
// over on ch; a nil send means a slot was freed and the waiter should retry
// the acquire loop.
type waiter struct {
	ch chan *poolConn
}

type defaultPool struct {
	opts    Options
	factory Factory
	log     *logger.Helper

	// mu guards every field below; it is never held across factory
	// calls or channel operations that could block.
	mu       sync.Mutex
	closed   bool
	conns    map[string]*poolConn
	idle     []*poolConn
	creating int
	waiters  []*waiter

	created  uint64
	retired  uint64
	timeouts uint64
}

func newPool(factory Factory, opts ...Option) (*defaultPool, error) {
	options := newOptions(opts...)

	if factory == nil {
		return nil, &errors.ConfigurationError{Option: "factory", Detail: "is required"}
	}
	if options.MaxSize <= 0 {
		return nil, &errors.ConfigurationError{Option: "max_size", Detail: "must be greater than zero"}
	}
	if options.MinSize < 0 {
		return nil, &errors.ConfigurationError{Option: "min_size", Detail: "must not be negative"}
	}
	if options.MinSize > options.MaxSize {
		return nil, &errors.ConfigurationError{Option: "min_size", Detail: "must not exceed max_size"}
	}
	if options.Timeout < 0 {
		return nil, &errors.ConfigurationError{Option: "timeout", Detail: "must not be negative"}
	}

	p := &defaultPool{
		opts:    options,
		factory: factory,
		log:     logger.NewHelper(options.Logger),
		conns:   make(map[string]*poolConn),
	}

	// warm up to the floor
	for i := 0; i < options.MinSize; i++ {
		client, err := factory.Create(context.Background())
		if err != nil {
			p.Close() // nolint
			return nil, &errors.ConnectionFailure{Op: "create", Err: err}
		}
		pc := newPoolConn(p, client)
		p.conns[pc.id] = pc
		p.idle = append(p.idle, pc)
		p.created++
	}

	p.log.Debugf("pool %s: created with %d/%d connections", options.Name, options.MinSize, options.MaxSize)

	return p, nil
}

func (p *defaultPool) Get(ctx context.Context) (Conn, error) {
	start := time.Now()

	var timeoutCh <-chan time.Time
	if p.opts.Timeout > 0 {
		timer := time.NewTimer(p.opts.Timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	for {
		conn, w, err := p.acquire(ctx)
		if err != nil {
			return nil, err
		}
		if conn != nil {
			return conn, nil
		}
		if w == nil {
			// an idle candidate failed validation, try again
			continue
		}

		select {
		case pc := <-w.ch:
			if pc != nil {
				return pc, nil
			}
			// a slot was freed, retry the acquire loop
		case <-ctx.Done():
			p.abandon(w)
			return nil, ctx.Err()
		case <-timeoutCh:
			p.abandon(w)
			p.mu.Lock()
			p.timeouts++
			p.mu.Unlock()
			return nil, &errors.PoolExhausted{
				Pool:    p.opts.Name,
				MaxSize: p.opts.MaxSize,
				Waited:  time.Since(start),
			}
		}
	}
}

// acquire makes one non-blocking attempt. Exactly one of the returns is
// set: a leased conn, a registered waiter, an error, or none of them when
// the caller should retry immediately.
func (p *defaultPool) acquire(ctx context.Context) (*poolConn, *waiter, error) {
	var retire []*poolConn

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, nil, &errors.PoolClosed{Pool: p.opts.Name}
	}

	now := time.Now()

	var pc *poolConn
	for len(p.idle) > 0 {
		c := p.idle[0]
		p.idle = p.idle[1:]

		if c.stale(now, p.opts) {
			p.removeLocked(c, &retire)
			continue
		}

		c.inUse = true
		pc = c
		break
	}

	creating := false
	var w *waiter

	if pc == nil {
		if len(p.conns)+p.creating < p.opts.MaxSize {
			p.creating++
			creating = true
		} else {
			w = &waiter{ch: make(chan *poolConn, 1)}
			p.waiters = append(p.waiters, w)
		}
	}
	p.mu.Unlock()

	p.closeRetired(retire)

	if pc != nil {
		if p.opts.ValidateOnBorrow && !p.factory.Validate(pc.client) {
			p.log.Debugf("pool %s: discarding invalid connection %s on borrow", p.opts.Name, pc.id)
			p.discard(pc)
			// an invalid connection is discarded and the search continues
			return nil, nil, nil
		}
		return pc, nil, nil
	}

	if creating {
		client, err := p.factory.Create(ctx)

		p.mu.Lock()
		p.creating--
		if err != nil {
			// the reserved slot is free again, let a waiter retry
			if w := p.popWaiterLocked(); w != nil {
				w.ch <- nil
			}
			p.mu.Unlock()
			return nil, nil, &errors.ConnectionFailure{Op: "create", Err: err}
		}
		if p.closed {
			p.mu.Unlock()
			p.factory.Close(client) // nolint
			return nil, nil, &errors.PoolClosed{Pool: p.opts.Name}
		}
		c := newPoolConn(p, client)
		c.inUse = true
		p.conns[c.id] = c
		p.created++
		p.mu.Unlock()

		return c, nil, nil
	}

	return nil, w, nil
}

// abandon removes a waiter after timeout or cancellation. If a handoff
// already happened, the connection is taken and returned to the pool so it
// is never lost.
func (p *defaultPool) abandon(w *waiter) {
	p.mu.Lock()
	for i, queued := range p.waiters {
		if queued == w {
			p.waiters = append(p.waiters[:i], p.waiters[i+1:]...)
			p.mu.Unlock()
			return
		}
	}
	p.mu.Unlock()

	// Not queued anymore: a handoff raced our timeout and the send is
	// guaranteed to arrive. Take it and give the connection back.
	if pc := <-w.ch; pc != nil {
		p.Release(pc, nil) // nolint
		return
	}

	// A freed-slot wake raced the timeout. It is the only notification
	// that capacity opened up, so pass it on to the next waiter.
	p.mu.Lock()
	if next := p.popWaiterLocked(); next != nil {
		next.ch <- nil
	}
	p.mu.Unlock()
}

// discard retires a connection that failed validation while leased for
// borrow. A freed slot wakes one waiter so capacity is never stranded.
func (p *defaultPool) discard(pc *poolConn) {
	var retire []*poolConn

	p.mu.Lock()
	if p.conns[pc.id] != nil {
		p.removeLocked(pc, &retire)
	}
	p.mu.Unlock()

	p.closeRetired(retire)
}

// removeLocked drops a connection from the tracked set and wakes one
// waiter to consume the freed slot. Must be called with mu held; the
// actual close happens later via closeRetired.
func (p *defaultPool) removeLocked(pc *poolConn, retire *[]*poolConn) {
	delete(p.conns, pc.id)
	pc.inUse = false
	if !pc.closed {
		pc.closed = true
		*retire = append(*retire, pc)
	}
	p.retired++

	if w := p.popWaiterLocked(); w != nil {
		w.ch <- nil
	}
}

// popWaiterLocked dequeues the next waiter according to the fairness mode.
// Must be called with mu held.
func (p *defaultPool) popWaiterLocked() *waiter {
	if len(p.waiters) == 0 {
		return nil
	}
	var w *waiter
	if p.opts.FIFO {
		w = p.waiters[0]
		p.waiters = p.waiters[1:]
	} else {
		w = p.waiters[len(p.waiters)-1]
		p.waiters = p.waiters[:len(p.waiters)-1]
	}
	return w
}

func (p *defaultPool) closeRetired(retire []*poolConn) {
	for _, pc := range retire {
		if err := p.factory.Close(pc.client); err != nil {
			p.log.Errorf("pool %s: closing connection %s: %v", p.opts.Name, pc.id, err)
		}
	}
}

func (p *defaultPool) Release(conn Conn, status error) error {
	pc, ok := conn.(*poolConn)
	if !ok || pc == nil || pc.pool != p {
		panic("go-pool: connection returned that was never leased")
	}

	p.mu.Lock()

	if p.closed || p.conns[pc.id] == nil {
		// the pool was closed or cleared while the connection was out;
		// no new work should begin, silently close and discard
		alreadyClosed := pc.closed
		pc.closed = true
		pc.inUse = false
		p.mu.Unlock()

		if !alreadyClosed {
			if err := p.factory.Close(pc.client); err != nil {
				p.log.Errorf("pool %s: closing connection %s: %v", p.opts.Name, pc.id, err)
				return err
			}
		}
		return nil
	}

	if !pc.inUse {
		p.mu.Unlock()
		panic("go-pool: connection returned that was never leased")
	}

	now := time.Now()

	if status != nil || pc.stale(now, p.opts) {
		return p.retire(pc)
	}
	p.mu.Unlock()

	if p.opts.TestOnReturn && !p.factory.Validate(pc.client) {
		p.log.Debugf("pool %s: discarding invalid connection %s on return", p.opts.Name, pc.id)
		p.mu.Lock()
		if p.conns[pc.id] == nil {
			// cleared while validating
			p.mu.Unlock()
			return nil
		}
		return p.retire(pc)
	}

	p.mu.Lock()
	if p.conns[pc.id] == nil {
		p.mu.Unlock()
		return nil
	}

	pc.lastUsed = now

	// hand straight over to the next waiter, keeping the lease
	if w := p.popWaiterLocked(); w != nil {
		w.ch <- pc
		p.mu.Unlock()
		return nil
	}

	pc.inUse = false
	p.idle = append(p.idle, pc)
	p.mu.Unlock()

	return nil
}

// retire removes and closes a connection being released. Must be called
// with mu held; it unlocks before closing.
func (p *defaultPool) retire(pc *poolConn) error {
	var retireList []*poolConn
	p.removeLocked(pc, &retireList)
	p.mu.Unlock()

	var err error
	for _, c := range retireList {
		if cerr := p.factory.Close(c.client); cerr != nil {
			p.log.Errorf("pool %s: closing connection %s: %v", p.opts.Name, c.id, cerr)
			err = cerr
		}
	}
	return err
}

func (p *defaultPool) Connection(ctx context.Context, fn func(Conn) error) error {
	conn, err := p.Get(ctx)
	if err != nil {
		return err
	}

	var ferr error
	defer func() {
		p.Release(conn, ferr) // nolint
	}()

	ferr = fn(conn)
	return ferr
}

func (p *defaultPool) HealthCheck(ctx context.Context) bool {
	conn, err := p.Get(ctx)
	if err != nil {
		return false
	}

	ok := p.factory.Validate(conn.Client())

	var status error
	if !ok {
		status = &errors.ConnectionFailure{Op: "validate"}
	}
	p.Release(conn, status) // nolint

	return ok
}

func (p *defaultPool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()

	stats := Stats{
		Name:     p.opts.Name,
		MinSize:  p.opts.MinSize,
		MaxSize:  p.opts.MaxSize,
		Total:    len(p.conns),
		Idle:     len(p.idle),
		InUse:    len(p.conns) - len(p.idle),
		Creating: p.creating,
		Waiters:  len(p.waiters),
		Created:  p.created,
		Retired:  p.retired,
		Timeouts: p.timeouts,
		Closed:   p.closed,
	}

	for _, pc := range p.conns {
		stats.Conns = append(stats.Conns, ConnStats{
			Id:       pc.id,
			Created:  pc.created,
			LastUsed: pc.lastUsed,
			IdleTime: now.Sub(pc.lastUsed),
			Lifetime: now.Sub(pc.created),
			InUse:    pc.inUse,
			Stale:    pc.stale(now, p.opts),
		})
	}

	return stats
}

func (p *defaultPool) CleanupStale(ctx context.Context) (int, error) {
	var retire []*poolConn

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return 0, &errors.PoolClosed{Pool: p.opts.Name}
	}

	now := time.Now()
	keep := p.idle[:0]
	for _, pc := range p.idle {
		if pc.stale(now, p.opts) {
			p.removeLocked(pc, &retire)
			continue
		}
		keep = append(keep, pc)
	}
	p.idle = keep
	p.mu.Unlock()

	p.closeRetired(retire)

	if len(retire) > 0 {
		p.log.Debugf("pool %s: cleaned up %d stale connections", p.opts.Name, len(retire))
	}

	// restore the floor
	for {
		p.mu.Lock()
		if p.closed || len(p.conns)+p.creating >= p.opts.MinSize {
			p.mu.Unlock()
			break
		}
		p.creating++
		p.mu.Unlock()

		client, err := p.factory.Create(ctx)

		p.mu.Lock()
		p.creating--
		if err != nil {
			p.mu.Unlock()
			return len(retire), &errors.ConnectionFailure{Op: "create", Err: err}
		}
		if p.closed {
			p.mu.Unlock()
			p.factory.Close(client) // nolint
			break
		}

		pc := newPoolConn(p, client)
		p.conns[pc.id] = pc
		p.created++

		if w := p.popWaiterLocked(); w != nil {
			pc.inUse = true
			w.ch <- pc
		} else {
			p.idle = append(p.idle, pc)
		}
		p.mu.Unlock()
	}

	return len(retire), nil
}

func (p *defaultPool) Clear() error {
	var retire []*poolConn

	p.mu.Lock()
	for _, pc := range p.conns {
		delete(p.conns, pc.id)
		if !pc.closed {
			pc.closed = true
			retire = append(retire, pc)
		}
		p.retired++
	}
	p.idle = nil

	// wake everyone; they retry and create fresh connections, or
	// observe the closed flag
	waiters := p.waiters
	p.waiters = nil
	for _, w := range waiters {
		w.ch <- nil
	}
	p.mu.Unlock()

	// best-effort teardown always completes; failures are aggregated
	var errs []error
	for _, pc := range retire {
		if err := p.factory.Close(pc.client); err != nil {
			p.log.Errorf("pool %s: closing connection %s: %v", p.opts.Name, pc.id, err)
			errs = append(errs, err)
		}
	}

	return stderrors.Join(errs...)
}

func (p *defaultPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.log.Debugf("pool %s: closed", p.opts.Name)

	return p.Clear()
}

func (p *defaultPool) Options() Options {
	return p.opts
}

func (p *defaultPool) String() string {
	return p.opts.Name
}
