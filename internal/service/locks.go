package service

import (
	"sync"

	"github.com/google/uuid"
)

// accountLocks is a lock registry with one mutex per account id. Every
// balance mutation runs under its account's lock; transfers take both locks
// in canonical order so opposite-direction transfers cannot deadlock.
type accountLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newAccountLocks() *accountLocks {
	return &accountLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (r *accountLocks) get(id uuid.UUID) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[id] = lock
	}
	return lock
}

// lock acquires the account's mutex and returns its unlock function.
func (r *accountLocks) lock(id uuid.UUID) func() {
	lock := r.get(id)
	lock.Lock()
	return lock.Unlock
}

// orderIDs returns the pair in canonical (lexicographic) order. Lock
// acquisition always follows this order regardless of transfer direction.
func orderIDs(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() <= b.String() {
		return a, b
	}
	return b, a
}
