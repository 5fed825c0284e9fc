package domain

import (
	"math"

	"github.com/google/uuid"
)

// TaxSettings configures the house cut on resolved wagers. Recipient
// is the participant the cut is deposited to; uuid.Nil means the house
// keeps it (the amount simply never re-enters the ledger).
type TaxSettings struct {
	Enabled   bool
	Percent   float64
	Recipient uuid.UUID
}

// Payout is the outcome math for one resolved wager.
type Payout struct {
	Pot      float64 // both stakes combined
	Winnings float64 // what the winner is paid
	Tax      float64 // what the house/recipient keeps
}

// CalculatePayout computes the pot split for a stake per participant.
// Percent is clamped to [0,100] and winnings round down, so the tax
// sink absorbs any fractional remainder and the winner payout stays
// whole when the ledger's unit is integral. Pure.
func CalculatePayout(stakePerParticipant float64, tax TaxSettings) Payout {
	pot := stakePerParticipant * 2
	if !tax.Enabled {
		return Payout{Pot: pot, Winnings: pot}
	}
	rate := clampPercent(tax.Percent) / 100
	winnings := math.Floor(pot * (1 - rate))
	return Payout{Pot: pot, Winnings: winnings, Tax: pot - winnings}
}

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
