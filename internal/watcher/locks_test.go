package watcher

import (
	"sync"
	"testing"
)

func TestUserLocksMutualExclusion(t *testing.T) {
	locks := newUserLocks()

	if !locks.TryAcquire(1) {
		t.Fatal("first acquire should succeed")
	}
	if locks.TryAcquire(1) {
		t.Fatal("second acquire on held lock should fail")
	}
	if !locks.TryAcquire(2) {
		t.Fatal("different user should be independent")
	}

	locks.Release(1)
	if !locks.TryAcquire(1) {
		t.Fatal("acquire after release should succeed")
	}
}

func TestUserLocksReleaseUnheld(t *testing.T) {
	locks := newUserLocks()
	locks.Release(42)
	if !locks.TryAcquire(42) {
		t.Fatal("acquire after spurious release should succeed")
	}
}

func TestUserLocksConcurrentSingleWinner(t *testing.T) {
	locks := newUserLocks()

	const attempts = 32
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			if locks.TryAcquire(7) {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("wins = %d, want exactly 1", wins)
	}
}
