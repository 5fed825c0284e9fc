package ports

import (
	"time"

	"github.com/google/uuid"
)

// Clock is the engine's time source. Injected so expiry behavior is
// testable without sleeping.
type Clock interface {
	Now() time.Time
}

// RandomSource draws the unbiased boolean that decides each coinflip.
// It must not be predictable or seedable by participants.
type RandomSource interface {
	Bool() bool
}

// Presence answers whether a participant is currently reachable. The
// presence tracker also calls Engine.OnParticipantDisconnect; this
// interface covers the synchronous check during acceptance.
type Presence interface {
	IsOnline(participant uuid.UUID) bool
}

// Exemptions marks participants allowed to bypass stake limits
// (min/max window and balance-percentage cap).
type Exemptions interface {
	IsExempt(participant uuid.UUID) bool
}
