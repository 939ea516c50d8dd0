// Package locking provides per-key mutual exclusion for account mutations.
package locking

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/cashify/ledger/internal/domain"
)

// KeyedLocker serializes operations per key. Multi-key acquisition always
// proceeds in sorted order, so two operations locking the same pair of keys
// in opposite directions cannot deadlock. Acquisition is bounded by a
// timeout; exceeding it returns domain.ErrBusy.
type KeyedLocker struct {
	mu      sync.Mutex
	locks   map[string]*keyLock
	timeout time.Duration
}

type keyLock struct {
	sem  *semaphore.Weighted
	refs int
}

// NewKeyedLocker creates a KeyedLocker with the given acquisition timeout.
func NewKeyedLocker(timeout time.Duration) *KeyedLocker {
	return &KeyedLocker{
		locks:   make(map[string]*keyLock),
		timeout: timeout,
	}
}

// Acquire takes the locks for all given keys, blocking up to the configured
// timeout. On success the returned release function frees all of them and
// must be called exactly once.
func (l *KeyedLocker) Acquire(ctx context.Context, keys ...string) (func(), error) {
	sorted := dedupeSorted(keys)

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	held := make([]*keyLock, 0, len(sorted))

	for _, key := range sorted {
		kl := l.retain(key)

		if err := kl.sem.Acquire(ctx, 1); err != nil {
			l.put(key, kl)
			l.releaseAll(sorted[:len(held)], held)

			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return nil, domain.ErrBusy
			}

			return nil, err
		}

		held = append(held, kl)
	}

	var once sync.Once

	release := func() {
		once.Do(func() {
			l.releaseAll(sorted, held)
		})
	}

	return release, nil
}

func (l *KeyedLocker) releaseAll(keys []string, held []*keyLock) {
	// Reverse order of acquisition.
	for i := len(held) - 1; i >= 0; i-- {
		held[i].sem.Release(1)
		l.put(keys[i], held[i])
	}
}

// retain returns the lock for key, creating it if absent, and bumps its
// refcount so it survives until every holder is done.
func (l *KeyedLocker) retain(key string) *keyLock {
	l.mu.Lock()
	defer l.mu.Unlock()

	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{sem: semaphore.NewWeighted(1)}
		l.locks[key] = kl
	}

	kl.refs++

	return kl
}

func (l *KeyedLocker) put(key string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

func dedupeSorted(keys []string) []string {
	sorted := make([]string, len(keys))
	copy(sorted, keys)
	sort.Strings(sorted)

	out := sorted[:0]
	for i, k := range sorted {
		if i == 0 || k != sorted[i-1] {
			out = append(out, k)
		}
	}

	return out
}
