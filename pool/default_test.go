package pool

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micro/go-pool/errors"
)

func newTestPool(t *testing.T, opts ...Option) (*defaultPool, *MemoryFactory) {
	t.Helper()

	factory := NewMemoryFactory()
	base := []Option{
		Name("test"),
		MaxSize(4),
		Timeout(time.Second),
	}
	p, err := newPool(factory, append(base, opts...)...)
	require.NoError(t, err)

	t.Cleanup(func() {
		p.Close() // nolint
	})

	return p, factory
}

func (p *defaultPool) requireInvariants(t *testing.T) {
	t.Helper()
	stats := p.Stats()
	require.GreaterOrEqual(t, stats.Idle, 0)
	require.LessOrEqual(t, stats.Idle, stats.Total)
	require.LessOrEqual(t, stats.Total, stats.MaxSize)
	require.LessOrEqual(t, stats.Total+stats.Creating, stats.MaxSize)
}

func TestGetCreatesBelowCapacity(t *testing.T) {
	p, factory := newTestPool(t)

	conn, err := p.Get(context.TODO())
	require.NoError(t, err)
	require.NotNil(t, conn.Client())
	assert.NotEmpty(t, conn.Id())
	assert.Equal(t, 1, factory.Created())

	// a second Get creates rather than waits while below max_size
	done := make(chan Conn, 1)
	go func() {
		c, gerr := p.Get(context.TODO())
		require.NoError(t, gerr)
		done <- c
	}()

	select {
	case c := <-done:
		require.NoError(t, p.Release(c, nil))
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected Get to create a new connection, not wait")
	}

	require.NoError(t, p.Release(conn, nil))
	p.requireInvariants(t)
}

func TestGetReusesIdle(t *testing.T) {
	p, factory := newTestPool(t)

	conn, err := p.Get(context.TODO())
	require.NoError(t, err)
	require.NoError(t, p.Release(conn, nil))

	again, err := p.Get(context.TODO())
	require.NoError(t, err)
	assert.Equal(t, conn.Id(), again.Id())
	assert.Equal(t, 1, factory.Created())
	require.NoError(t, p.Release(again, nil))
}

func TestWarmUp(t *testing.T) {
	p, factory := newTestPool(t, MinSize(3))

	stats := p.Stats()
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 3, stats.Idle)
	assert.Equal(t, 3, factory.Created())
}

func TestWarmUpFailure(t *testing.T) {
	factory := NewMemoryFactory()
	factory.FailCreate(fmt.Errorf("dial refused"))

	_, err := NewPool(factory, MinSize(1), MaxSize(2))
	require.Error(t, err)
	assert.True(t, errors.IsConnectionFailure(err))
}

func TestInvalidOptions(t *testing.T) {
	factory := NewMemoryFactory()

	for _, opts := range [][]Option{
		{MaxSize(0)},
		{MinSize(-1)},
		{MinSize(5), MaxSize(2)},
		{Timeout(-time.Second)},
	} {
		_, err := NewPool(factory, opts...)
		require.Error(t, err)
		assert.True(t, errors.IsConfiguration(err))
	}

	_, err := NewPool(nil)
	require.Error(t, err)
	assert.True(t, errors.IsConfiguration(err))
}

func TestExhaustedTimesOut(t *testing.T) {
	p, _ := newTestPool(t, MaxSize(2), Timeout(100*time.Millisecond))

	a, err := p.Get(context.TODO())
	require.NoError(t, err)
	b, err := p.Get(context.TODO())
	require.NoError(t, err)

	start := time.Now()
	_, err = p.Get(context.TODO())
	waited := time.Since(start)

	require.Error(t, err)
	assert.True(t, errors.IsPoolExhausted(err))
	assert.GreaterOrEqual(t, waited, 100*time.Millisecond)
	assert.Less(t, waited, time.Second)

	var exhausted *errors.PoolExhausted
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 2, exhausted.MaxSize)

	// no phantom slot leaked: releasing makes the pool usable again
	require.NoError(t, p.Release(a, nil))
	c, err := p.Get(context.TODO())
	require.NoError(t, err)

	require.NoError(t, p.Release(b, nil))
	require.NoError(t, p.Release(c, nil))
	p.requireInvariants(t)
	assert.Equal(t, 2, p.Stats().Total)
}

func TestReleaseWakesWaiter(t *testing.T) {
	p, _ := newTestPool(t, MinSize(2), MaxSize(2), Timeout(2*time.Second))

	a, err := p.Get(context.TODO())
	require.NoError(t, err)
	b, err := p.Get(context.TODO())
	require.NoError(t, err)

	got := make(chan Conn, 1)
	go func() {
		c, gerr := p.Get(context.TODO())
		require.NoError(t, gerr)
		got <- c
	}()

	// let the waiter park
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, p.Release(a, nil))

	select {
	case c := <-got:
		assert.Equal(t, a.Id(), c.Id())
		require.NoError(t, p.Release(c, nil))
	case <-time.After(time.Second):
		t.Fatal("waiter was not woken by release")
	}

	require.NoError(t, p.Release(b, nil))
}

func TestAbandonForwardsFreedSlot(t *testing.T) {
	p, _ := newTestPool(t, MaxSize(1), Timeout(10*time.Second))

	conn, err := p.Get(context.TODO())
	require.NoError(t, err)

	// two callers queue up behind the single leased connection
	w1 := &waiter{ch: make(chan *poolConn, 1)}
	w2 := &waiter{ch: make(chan *poolConn, 1)}
	p.mu.Lock()
	p.waiters = append(p.waiters, w1, w2)
	p.mu.Unlock()

	// retiring the lease frees the slot and wakes the first waiter
	require.NoError(t, p.Release(conn, fmt.Errorf("broken pipe")))

	// but the first waiter times out instead of consuming the wake;
	// the freed-slot signal must be handed on, not dropped
	p.abandon(w1)

	select {
	case pc := <-w2.ch:
		assert.Nil(t, pc)
	default:
		t.Fatal("freed-slot wake was lost when the woken waiter timed out")
	}

	// the slot really is available
	c, err := p.Get(context.TODO())
	require.NoError(t, err)
	require.NoError(t, p.Release(c, nil))
	p.requireInvariants(t)
}

func TestFIFOFairness(t *testing.T) {
	p, _ := newTestPool(t, MaxSize(1), Timeout(5*time.Second), FIFO(true))

	held, err := p.Get(context.TODO())
	require.NoError(t, err)

	var mu sync.Mutex
	var order []int

	ready := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ready <- struct{}{}
			c, gerr := p.Get(context.TODO())
			require.NoError(t, gerr)
			mu.Lock()
			order = append(order, n)
			mu.Unlock()
			time.Sleep(20 * time.Millisecond)
			require.NoError(t, p.Release(c, nil))
		}(i)
		// serialize enqueue order
		<-ready
		time.Sleep(50 * time.Millisecond)
	}

	require.NoError(t, p.Release(held, nil))
	wg.Wait()

	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestConcurrentExclusiveLease(t *testing.T) {
	p, _ := newTestPool(t, MaxSize(4), Timeout(5*time.Second))

	var mu sync.Mutex
	leased := make(map[string]bool)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				c, err := p.Get(context.TODO())
				require.NoError(t, err)

				mu.Lock()
				require.False(t, leased[c.Id()], "connection leased twice concurrently")
				leased[c.Id()] = true
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				leased[c.Id()] = false
				mu.Unlock()

				require.NoError(t, p.Release(c, nil))
			}
		}()
	}
	wg.Wait()

	p.requireInvariants(t)
	assert.LessOrEqual(t, p.Stats().Total, 4)
}

func TestContextCancelWhileWaiting(t *testing.T) {
	p, _ := newTestPool(t, MaxSize(1), Timeout(10*time.Second))

	held, err := p.Get(context.TODO())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err = p.Get(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	// the canceled waiter must not consume the slot
	require.NoError(t, p.Release(held, nil))
	c, err := p.Get(context.TODO())
	require.NoError(t, err)
	require.NoError(t, p.Release(c, nil))
}

func TestValidateOnBorrowDiscardsInvalid(t *testing.T) {
	p, factory := newTestPool(t, MaxSize(2), ValidateOnBorrow(true))

	conn, err := p.Get(context.TODO())
	require.NoError(t, err)
	require.NoError(t, p.Release(conn, nil))

	// the idle connection fails validation and is discarded; a fresh
	// one is created in its place
	factory.FailValidate(true)
	done := make(chan struct{})
	go func() {
		defer close(done)
		c, gerr := p.Get(context.TODO())
		require.NoError(t, gerr)
		assert.NotEqual(t, conn.Id(), c.Id())
		require.NoError(t, p.Release(c, nil))
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Get did not complete")
	}
}

func TestStaleIdleNeverHandedOut(t *testing.T) {
	p, _ := newTestPool(t, MaxSize(2), IdleTimeout(30*time.Millisecond))

	conn, err := p.Get(context.TODO())
	require.NoError(t, err)
	require.NoError(t, p.Release(conn, nil))

	time.Sleep(60 * time.Millisecond)

	fresh, err := p.Get(context.TODO())
	require.NoError(t, err)
	assert.NotEqual(t, conn.Id(), fresh.Id())
	require.NoError(t, p.Release(fresh, nil))
}

func TestTestOnReturnRetiresInvalid(t *testing.T) {
	p, factory := newTestPool(t, MaxSize(2), TestOnReturn(true))

	conn, err := p.Get(context.TODO())
	require.NoError(t, err)

	factory.FailValidate(true)
	require.NoError(t, p.Release(conn, nil))
	factory.FailValidate(false)

	stats := p.Stats()
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 1, factory.Destroyed())
}

func TestReleaseWithErrorRetires(t *testing.T) {
	p, factory := newTestPool(t)

	conn, err := p.Get(context.TODO())
	require.NoError(t, err)
	require.NoError(t, p.Release(conn, fmt.Errorf("broken pipe")))

	assert.Equal(t, 0, p.Stats().Total)
	assert.Equal(t, 1, factory.Destroyed())
}

func TestCleanupStaleRestoresFloor(t *testing.T) {
	p, factory := newTestPool(t, MinSize(2), MaxSize(4), IdleTimeout(30*time.Millisecond))

	time.Sleep(60 * time.Millisecond)

	removed, err := p.CleanupStale(context.TODO())
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	stats := p.Stats()
	assert.GreaterOrEqual(t, stats.Total, 2)
	assert.Equal(t, 4, factory.Created())
	p.requireInvariants(t)
}

func TestConnectionScoped(t *testing.T) {
	p, _ := newTestPool(t)

	require.NoError(t, p.Connection(context.TODO(), func(c Conn) error {
		assert.NotNil(t, c.Client())
		return nil
	}))

	// released on error too
	werr := fmt.Errorf("query failed")
	err := p.Connection(context.TODO(), func(c Conn) error {
		return werr
	})
	assert.Equal(t, werr, err)

	stats := p.Stats()
	assert.Equal(t, 0, stats.InUse)
}

func TestHealthCheck(t *testing.T) {
	p, factory := newTestPool(t)

	assert.True(t, p.HealthCheck(context.TODO()))

	factory.FailValidate(true)
	assert.False(t, p.HealthCheck(context.TODO()))
	factory.FailValidate(false)

	factory.FailCreate(fmt.Errorf("dial refused"))
	// nothing idle and creation fails
	assert.False(t, p.HealthCheck(context.TODO()))
}

func TestClear(t *testing.T) {
	p, factory := newTestPool(t, MinSize(3))

	require.NoError(t, p.Clear())

	stats := p.Stats()
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 3, factory.Destroyed())

	// the pool stays usable
	c, err := p.Get(context.TODO())
	require.NoError(t, err)
	require.NoError(t, p.Release(c, nil))
}

func TestClearAggregatesCloseFailures(t *testing.T) {
	p, factory := newTestPool(t, MinSize(2))

	factory.FailClose(fmt.Errorf("close timed out"))
	err := p.Clear()
	require.Error(t, err)

	// bookkeeping completed despite close failures
	assert.Equal(t, 0, p.Stats().Total)
	assert.Equal(t, 2, factory.Destroyed())
	factory.FailClose(nil)
}

func TestCloseThenGet(t *testing.T) {
	p, _ := newTestPool(t)

	require.NoError(t, p.Close())

	_, err := p.Get(context.TODO())
	require.Error(t, err)
	assert.True(t, errors.IsPoolClosed(err))

	stats := p.Stats()
	assert.True(t, stats.Closed)
	assert.Equal(t, 0, stats.Total)

	// Close is idempotent
	require.NoError(t, p.Close())
}

func TestCloseWakesWaiters(t *testing.T) {
	p, _ := newTestPool(t, MaxSize(1), Timeout(10*time.Second))

	held, err := p.Get(context.TODO())
	require.NoError(t, err)

	got := make(chan error, 1)
	go func() {
		_, gerr := p.Get(context.TODO())
		got <- gerr
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, p.Close())

	select {
	case gerr := <-got:
		assert.True(t, errors.IsPoolClosed(gerr))
	case <-time.After(time.Second):
		t.Fatal("waiter was not woken by close")
	}

	// release after close silently discards
	require.NoError(t, p.Release(held, nil))
	assert.Equal(t, 0, p.Stats().Total)
}

func TestReleaseUnknownPanics(t *testing.T) {
	p, _ := newTestPool(t)
	other, _ := newTestPool(t)

	conn, err := other.Get(context.TODO())
	require.NoError(t, err)

	assert.Panics(t, func() {
		p.Release(conn, nil) // nolint
	})

	require.NoError(t, other.Release(conn, nil))
}

func TestDoubleReleasePanics(t *testing.T) {
	p, _ := newTestPool(t)

	conn, err := p.Get(context.TODO())
	require.NoError(t, err)
	require.NoError(t, p.Release(conn, nil))

	assert.Panics(t, func() {
		p.Release(conn, nil) // nolint
	})
}

func TestEndToEnd(t *testing.T) {
	p, _ := newTestPool(t, MinSize(2), MaxSize(2), Timeout(100*time.Millisecond))

	a, err := p.Get(context.TODO())
	require.NoError(t, err)
	b, err := p.Get(context.TODO())
	require.NoError(t, err)

	start := time.Now()
	_, err = p.Get(context.TODO())
	require.Error(t, err)
	assert.True(t, errors.IsPoolExhausted(err))
	assert.InDelta(t, float64(100*time.Millisecond), float64(time.Since(start)), float64(80*time.Millisecond))

	got := make(chan Conn, 1)
	go func() {
		c, gerr := p.Get(context.TODO())
		require.NoError(t, gerr)
		got <- c
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, p.Release(a, nil))

	select {
	case c := <-got:
		require.NoError(t, p.Release(c, nil))
	case <-time.After(time.Second):
		t.Fatal("waiting Get was not satisfied by release")
	}

	require.NoError(t, p.Release(b, nil))
	p.requireInvariants(t)
}

func TestStatsSnapshot(t *testing.T) {
	p, _ := newTestPool(t, MinSize(2), MaxSize(4))

	conn, err := p.Get(context.TODO())
	require.NoError(t, err)

	stats := p.Stats()
	assert.Equal(t, "test", stats.Name)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Idle)
	assert.Equal(t, 1, stats.InUse)
	assert.Equal(t, uint64(2), stats.Created)
	assert.Len(t, stats.Conns, 2)

	var inUse int
	for _, cs := range stats.Conns {
		if cs.InUse {
			inUse++
		}
		assert.False(t, cs.Stale)
		assert.GreaterOrEqual(t, cs.Lifetime, time.Duration(0))
	}
	assert.Equal(t, 1, inUse)

	require.NoError(t, p.Release(conn, nil))
}
