package engine

import (
	"sync"

	"github.com/google/uuid"
)

// busySet tracks identities currently inside a resolution. It is a
// second guard orthogonal to the per-wager lock: a participant must
// not be pulled into two simultaneous acceptances that both touch the
// same ledger account. Acquisition is non-blocking: a conflict fails
// fast with Busy instead of risking deadlock between two wagers that
// share a participant.
type busySet struct {
	mu  sync.Mutex
	ids map[uuid.UUID]struct{}
}

func newBusySet() *busySet {
	return &busySet{ids: make(map[uuid.UUID]struct{})}
}

// tryAcquire claims both identities atomically. If either is already
// claimed nothing changes and the call returns false.
func (b *busySet) tryAcquire(a, c uuid.UUID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.ids[a]; ok {
		return false
	}
	if _, ok := b.ids[c]; ok {
		return false
	}
	b.ids[a] = struct{}{}
	b.ids[c] = struct{}{}
	return true
}

// release frees both identities. Always deferred by the acquirer so
// every exit path cleans up.
func (b *busySet) release(a, c uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.ids, a)
	delete(b.ids, c)
}

func (b *busySet) contains(id uuid.UUID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.ids[id]
	return ok
}
