package registry

import (
	stderrors "errors"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/micro/go-pool/pool"
)

type defaultRegistry struct {
	mu    sync.RWMutex
	pools map[string]pool.Pool
}

func newRegistry() *defaultRegistry {
	return &defaultRegistry{
		pools: make(map[string]pool.Pool),
	}
}

func (r *defaultRegistry) Register(name string, p pool.Pool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pools[name]; ok {
		return errors.Wrapf(ErrDuplicate, "pool %s", name)
	}
	r.pools[name] = p

	return nil
}

func (r *defaultRegistry) Get(name string) (pool.Pool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.pools[name]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "pool %s", name)
	}

	return p, nil
}

func (r *defaultRegistry) Deregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pools[name]; !ok {
		return errors.Wrapf(ErrNotFound, "pool %s", name)
	}
	delete(r.pools, name)

	return nil
}

func (r *defaultRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.pools))
	for name := range r.pools {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func (r *defaultRegistry) Close() error {
	r.mu.Lock()
	pools := r.pools
	r.pools = make(map[string]pool.Pool)
	r.mu.Unlock()

	var errs []error
	for name, p := range pools {
		if err := p.Close(); err != nil {
			errs = append(errs, errors.Wrapf(err, "pool %s", name))
		}
	}

	return stderrors.Join(errs...)
}

func (r *defaultRegistry) String() string {
	return "registry"
}
