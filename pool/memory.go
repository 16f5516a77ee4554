package pool

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryFactory is an in-memory Factory for tests and examples. Failure
// modes can be toggled at runtime to exercise pool error paths.
type MemoryFactory struct {
	mu        sync.Mutex
	seq       int
	created   int
	destroyed int

	createErr   error
	createDelay time.Duration
	invalid     bool
	closeErr    error
}

// MemoryClient is the backend handle produced by a MemoryFactory.
type MemoryClient struct {
	Id int
}

// NewMemoryFactory returns a factory whose connections always succeed
// until a failure mode is set.
func NewMemoryFactory() *MemoryFactory {
	return new(MemoryFactory)
}

func (f *MemoryFactory) Create(ctx context.Context) (interface{}, error) {
	f.mu.Lock()
	err := f.createErr
	delay := f.createDelay
	f.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.seq++
	f.created++
	client := &MemoryClient{Id: f.seq}
	f.mu.Unlock()

	return client, nil
}

func (f *MemoryFactory) Validate(client interface{}) bool {
	if _, ok := client.(*MemoryClient); !ok {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.invalid
}

func (f *MemoryFactory) Close(client interface{}) error {
	if _, ok := client.(*MemoryClient); !ok {
		return fmt.Errorf("memory: unknown client %T", client)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.destroyed++
	return f.closeErr
}

func (f *MemoryFactory) String() string {
	return "memory"
}

// FailCreate makes subsequent Creates fail with err. Pass nil to restore.
func (f *MemoryFactory) FailCreate(err error) {
	f.mu.Lock()
	f.createErr = err
	f.mu.Unlock()
}

// FailValidate makes subsequent Validates return false.
func (f *MemoryFactory) FailValidate(fail bool) {
	f.mu.Lock()
	f.invalid = fail
	f.mu.Unlock()
}

// FailClose makes subsequent Closes fail with err. Pass nil to restore.
func (f *MemoryFactory) FailClose(err error) {
	f.mu.Lock()
	f.closeErr = err
	f.mu.Unlock()
}

// CreateDelay makes Create block for d, honoring context cancellation.
func (f *MemoryFactory) CreateDelay(d time.Duration) {
	f.mu.Lock()
	f.createDelay = d
	f.mu.Unlock()
}

// Created returns the number of clients created.
func (f *MemoryFactory) Created() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created
}

// Destroyed returns the number of clients closed.
func (f *MemoryFactory) Destroyed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.destroyed
}
