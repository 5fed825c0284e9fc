package engine

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/center2055/CoinflipXD/internal/domain"
)

// registry owns the set of live wagers and the three lookup indices
// (by id, by creator, by private target). Insert and remove touch all
// indices inside one critical section, so no caller ever observes a
// wager present in one index and absent from another. Terminal wagers
// are removed, never retained.
type registry struct {
	mu        sync.RWMutex
	byID      map[uuid.UUID]*domain.Wager
	byCreator map[uuid.UUID]uuid.UUID
	byTarget  map[uuid.UUID]uuid.UUID
}

func newRegistry() *registry {
	return &registry{
		byID:      make(map[uuid.UUID]*domain.Wager),
		byCreator: make(map[uuid.UUID]uuid.UUID),
		byTarget:  make(map[uuid.UUID]uuid.UUID),
	}
}

// put inserts a wager and claims its index slots atomically. With
// enforceOneActive it fails with ErrAlreadyActive when the creator
// already holds a slot; a private target slot conflict always fails
// with ErrTargetBusy. Claiming inside the registry lock closes the
// check-then-act race between two concurrent creates.
func (r *registry) put(w *domain.Wager, enforceOneActive bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if enforceOneActive {
		if _, taken := r.byCreator[w.Creator]; taken {
			return domain.ErrAlreadyActive
		}
	}
	if w.Kind == domain.KindPrivate {
		if _, taken := r.byTarget[w.Target]; taken {
			return domain.ErrTargetBusy
		}
	}

	r.byID[w.ID] = w
	r.byCreator[w.Creator] = w.ID
	if w.Kind == domain.KindPrivate {
		r.byTarget[w.Target] = w.ID
	}
	return nil
}

// remove deletes the wager from every index. Returns false when the
// wager already left the registry, which makes cancellation idempotent.
func (r *registry) remove(w *domain.Wager) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[w.ID]; !ok {
		return false
	}
	delete(r.byID, w.ID)
	if id, ok := r.byCreator[w.Creator]; ok && id == w.ID {
		delete(r.byCreator, w.Creator)
	}
	if w.Kind == domain.KindPrivate {
		if id, ok := r.byTarget[w.Target]; ok && id == w.ID {
			delete(r.byTarget, w.Target)
		}
	}
	return true
}

func (r *registry) get(id uuid.UUID) *domain.Wager {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id]
}

func (r *registry) getByCreator(creator uuid.UUID) *domain.Wager {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byCreator[creator]
	if !ok {
		return nil
	}
	return r.byID[id]
}

func (r *registry) getByTarget(target uuid.UUID) *domain.Wager {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byTarget[target]
	if !ok {
		return nil
	}
	return r.byID[id]
}

// listPendingPublic returns PUBLIC wagers still PENDING, oldest first,
// for deterministic browsing pages.
func (r *registry) listPendingPublic() []*domain.Wager {
	r.mu.RLock()
	list := make([]*domain.Wager, 0, len(r.byID))
	for _, w := range r.byID {
		if w.Kind == domain.KindPublic && w.State() == domain.StatePending {
			list = append(list, w)
		}
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID.String() < list[j].ID.String()
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}

// snapshot copies the current wager set for sweeps and shutdown.
func (r *registry) snapshot() []*domain.Wager {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Wager, 0, len(r.byID))
	for _, w := range r.byID {
		list = append(list, w)
	}
	return list
}

func (r *registry) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
