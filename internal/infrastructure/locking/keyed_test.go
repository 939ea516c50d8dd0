package locking_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cashify/ledger/internal/domain"
	"github.com/cashify/ledger/internal/infrastructure/locking"
)

func TestKeyedLocker_SerializesSameKey(t *testing.T) {
	l := locking.NewKeyedLocker(2 * time.Second)

	var (
		mu      sync.Mutex
		current int
		max     int
	)

	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			release, err := l.Acquire(context.Background(), "acc-1")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			defer release()

			mu.Lock()
			current++
			if current > max {
				max = current
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			current--
			mu.Unlock()
		}()
	}

	wg.Wait()

	if max != 1 {
		t.Errorf("expected at most 1 concurrent holder, got %d", max)
	}
}

func TestKeyedLocker_DifferentKeysDoNotBlock(t *testing.T) {
	l := locking.NewKeyedLocker(100 * time.Millisecond)

	release1, err := l.Acquire(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer release1()

	release2, err := l.Acquire(context.Background(), "acc-2")
	if err != nil {
		t.Fatalf("acquiring a different key should not block: %v", err)
	}
	release2()
}

func TestKeyedLocker_TimeoutReturnsBusy(t *testing.T) {
	l := locking.NewKeyedLocker(50 * time.Millisecond)

	release, err := l.Acquire(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer release()

	_, err = l.Acquire(context.Background(), "acc-1")
	if !errors.Is(err, domain.ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
}

func TestKeyedLocker_OppositeOrderPairsDoNotDeadlock(t *testing.T) {
	l := locking.NewKeyedLocker(5 * time.Second)

	var wg sync.WaitGroup

	// Concurrent transfers A->B and B->A. Sorted acquisition means neither
	// can hold one lock while waiting on the other.
	for i := 0; i < 50; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()

			release, err := l.Acquire(context.Background(), "acc-a", "acc-b")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			release()
		}()

		go func() {
			defer wg.Done()

			release, err := l.Acquire(context.Background(), "acc-b", "acc-a")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			release()
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("deadlock: lock pairs never completed")
	}
}

func TestKeyedLocker_DuplicateKeys(t *testing.T) {
	l := locking.NewKeyedLocker(time.Second)

	release, err := l.Acquire(context.Background(), "acc-1", "acc-1")
	if err != nil {
		t.Fatalf("duplicate keys should collapse to one lock: %v", err)
	}
	release()

	// Double release is safe.
	release()
}
