package ports

import (
	"context"

	"github.com/google/uuid"
)

// Ledger is the balance provider behind every fund movement. The engine
// treats it as authoritative and transactional per call: a Withdraw that
// returns nil has moved the funds, a Withdraw that returns an error has
// moved nothing.
type Ledger interface {
	Balance(ctx context.Context, participant uuid.UUID) (float64, error)
	HasBalance(ctx context.Context, participant uuid.UUID, amount float64) (bool, error)
	Withdraw(ctx context.Context, participant uuid.UUID, amount float64) error
	Deposit(ctx context.Context, participant uuid.UUID, amount float64) error
}
