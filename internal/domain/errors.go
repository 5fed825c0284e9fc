package domain

import "errors"

// Failure taxonomy for lifecycle operations. Validation errors never
// mutate the registry or the ledger; callers test with errors.Is.
var (
	// ErrInvalidAmount: non-numeric, non-positive, or failing the
	// whole-number or min/max policy.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientFunds: participant cannot cover the stake.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrLimitExceeded: stake above the balance-percentage cap.
	ErrLimitExceeded = errors.New("bet exceeds balance limit")

	// ErrAlreadyActive: creator already has a pending or resolving wager.
	ErrAlreadyActive = errors.New("participant already has an active wager")

	// ErrTargetBusy: target already has an incoming private wager.
	ErrTargetBusy = errors.New("target already has a pending private wager")

	// ErrNotFound: no wager matches the reference.
	ErrNotFound = errors.New("wager not found")

	// ErrSelfAccept: acceptor and creator are the same participant.
	ErrSelfAccept = errors.New("cannot accept own wager")

	// ErrBusy: participant is already inside another resolution.
	ErrBusy = errors.New("participant busy in another resolution")

	// ErrLedgerFailure: a withdraw or deposit call failed.
	ErrLedgerFailure = errors.New("ledger operation failed")
)
