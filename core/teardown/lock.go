package teardown

import (
	"context"
	"sync"
)

// Locker serializes teardown runs per root id: two concurrent closures of
// the same account must not interleave. Acquire returns
// ErrTeardownInProgress when the key is already held.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// memoryLocker is an in-process Locker for single-node dev and tests.
// Deployments use the Redis-backed locker in services/lock.
type memoryLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

var _ Locker = (*memoryLocker)(nil)

func NewMemoryLocker() Locker {
	return &memoryLocker{held: make(map[string]bool)}
}

func (l *memoryLocker) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, ErrTeardownInProgress
	}
	l.held[key] = true
	release := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
	}
	return release, nil
}
