package ports

import (
	"context"

	"github.com/google/uuid"
)

// StatsCollector records finalized wager results. Best-effort: it must
// never block or fail the resolution path.
type StatsCollector interface {
	RecordResult(ctx context.Context, winner, loser uuid.UUID, winnings, loss float64)
}

// Reconciler makes ledger inconsistencies observable. When a refund
// deposit fails the hold has already left the registry, so the engine
// records the debt here for external reconciliation instead of
// retrying or silently dropping it.
type Reconciler interface {
	RecordOwedRefund(ctx context.Context, participant uuid.UUID, amount float64, wagerID uuid.UUID, cause string)
}
