package service

import (
	"sync"

	"github.com/google/uuid"
)

// userLocks hands out one mutex per user ID. Holding a user's mutex
// serializes the fetch-compute-write cycle of summary aggregation for that
// user; mutations for different users proceed in parallel.
type userLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*userLock
}

type userLock struct {
	sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{
		locks: make(map[uuid.UUID]*userLock),
	}
}

// Lock acquires the mutex for the given user and returns the unlock func.
// The entry is released from the map once no goroutine holds or waits on it.
func (l *userLocks) Lock(userID uuid.UUID) func() {
	l.mu.Lock()
	entry, ok := l.locks[userID]
	if !ok {
		entry = &userLock{}
		l.locks[userID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.Lock()

	return func() {
		entry.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}
