package domain

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes open wagers from invitations to one participant.
type Kind string

const (
	KindPublic  Kind = "PUBLIC"
	KindPrivate Kind = "PRIVATE"
)

// State is the lifecycle state of a wager.
//
// PENDING → RESOLVING → COMPLETED is the happy path. RESOLVING falls
// back to CANCELED only when the winner's deposit fails; it never
// returns to PENDING. COMPLETED, CANCELED and EXPIRED are terminal.
type State int32

const (
	StatePending State = iota
	StateResolving
	StateCompleted
	StateCanceled
	StateExpired
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateResolving:
		return "RESOLVING"
	case StateCompleted:
		return "COMPLETED"
	case StateCanceled:
		return "CANCELED"
	case StateExpired:
		return "EXPIRED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether no further transitions are allowed from s.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCanceled || s == StateExpired
}

// Wager is one coinflip match between two participants staking equal
// amounts. Identity fields are immutable after construction; state is
// read lock-free (the expiry sweeper and public listing poll it) while
// acceptor and resolvedAt are guarded by the wager mutex.
type Wager struct {
	ID        uuid.UUID
	Creator   uuid.UUID
	Kind      Kind
	Target    uuid.UUID // uuid.Nil unless Kind is KindPrivate
	Amount    float64
	CreatedAt time.Time
	ExpiresAt time.Time

	mu         sync.Mutex
	state      atomic.Int32
	acceptor   uuid.UUID
	resolvedAt time.Time
}

// NewWager builds a PENDING wager. target must be uuid.Nil for public
// wagers and the invited participant for private ones.
func NewWager(creator uuid.UUID, kind Kind, target uuid.UUID, amount float64, createdAt, expiresAt time.Time) *Wager {
	w := &Wager{
		ID:        uuid.New(),
		Creator:   creator,
		Kind:      kind,
		Target:    target,
		Amount:    amount,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}
	w.state.Store(int32(StatePending))
	return w
}

// Lock acquires the wager's exclusive lock. Every mutating operation
// holds it for the full check-mutate-ledger sequence.
func (w *Wager) Lock() { w.mu.Lock() }

// Unlock releases the wager's exclusive lock.
func (w *Wager) Unlock() { w.mu.Unlock() }

// State returns the current lifecycle state. Safe without the lock.
func (w *Wager) State() State { return State(w.state.Load()) }

// SetState transitions the wager. Callers must hold the wager lock;
// the atomic store only makes the value visible to lock-free readers.
func (w *Wager) SetState(s State) { w.state.Store(int32(s)) }

// IsExpired reports whether the wager is PENDING and past its deadline.
func (w *Wager) IsExpired(now time.Time) bool {
	return w.State() == StatePending && !now.Before(w.ExpiresAt)
}

// Acceptor returns the second participant, or uuid.Nil before acceptance.
func (w *Wager) Acceptor() uuid.UUID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.acceptor
}

// SetAcceptor records the second participant. Set exactly once, during
// the PENDING→RESOLVING transition, under the wager lock.
func (w *Wager) SetAcceptor(id uuid.UUID) { w.acceptor = id }

// ResolvedAt returns the completion time, zero unless COMPLETED.
func (w *Wager) ResolvedAt() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.resolvedAt
}

// SetResolvedAt records the completion time, under the wager lock.
func (w *Wager) SetResolvedAt(t time.Time) { w.resolvedAt = t }
