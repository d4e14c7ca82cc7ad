package teardown

import (
	"context"
	"sync"
	"testing"
)

func TestMemoryLocker(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	release, err := l.Acquire(ctx, "user:1")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	if _, err = l.Acquire(ctx, "user:1"); err != ErrTeardownInProgress {
		t.Errorf("second Acquire() error = %v, want %v", err, ErrTeardownInProgress)
	}

	// a different key is independent
	release2, err := l.Acquire(ctx, "classroom:1")
	if err != nil {
		t.Errorf("Acquire() other key error = %v", err)
	}
	release2()

	release()
	release3, err := l.Acquire(ctx, "user:1")
	if err != nil {
		t.Errorf("Acquire() after release error = %v", err)
	}
	release3()
}

func TestMemoryLocker_contention(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		acquired int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if release, err := l.Acquire(ctx, "user:1"); err == nil {
				mu.Lock()
				acquired++
				mu.Unlock()
				release()
			}
		}()
	}
	wg.Wait()

	if acquired == 0 {
		t.Error("no goroutine ever acquired the lock")
	}
	// the key must be free again
	release, err := l.Acquire(ctx, "user:1")
	if err != nil {
		t.Fatalf("Acquire() after contention error = %v", err)
	}
	release()
}
