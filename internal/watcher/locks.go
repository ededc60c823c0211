package watcher

import "sync"

// userLocks serializes processing per user. A tick that finds a user's lock
// held skips that user instead of waiting, so a slow batch never queues work
// behind itself.
type userLocks struct {
	mu   sync.Mutex
	held map[int64]struct{}
}

func newUserLocks() *userLocks {
	return &userLocks{held: make(map[int64]struct{})}
}

// TryAcquire takes the user's lock if free, returning false when the user is
// already being processed.
func (l *userLocks) TryAcquire(userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[userID]; busy {
		return false
	}
	l.held[userID] = struct{}{}
	return true
}

// Release frees the user's lock. Releasing an unheld lock is a no-op.
func (l *userLocks) Release(userID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, userID)
}
