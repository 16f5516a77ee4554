// Package jitter provides a random jitter
package jitter

import (
	"math/rand"
	"sync"
	"time"
)

var (
	mtx sync.Mutex
	r   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// Do returns a random time to jitter with max cap specified
func Do(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	mtx.Lock()
	v := r.Float64() * float64(d.Nanoseconds())
	mtx.Unlock()
	return time.Duration(v)
}
