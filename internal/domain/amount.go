package domain

import (
	"fmt"
	"math"
	"strconv"
)

// EconomySettings are the stake validation knobs.
type EconomySettings struct {
	MinBet              float64
	MaxBet              float64
	MaxBalancePercent   float64 // 0 disables the balance cap
	RequireWholeNumbers bool
}

// ParseAmount parses a stake typed by a participant and validates it
// against the economy policy. bypass skips the min/max window (admin
// permission), never the positivity or whole-number checks.
func ParseAmount(input string, eco EconomySettings, bypass bool) (float64, error) {
	amount, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, input)
	}
	if err := ValidateAmount(amount, eco, bypass); err != nil {
		return 0, err
	}
	return amount, nil
}

// ValidateAmount applies the stake policy to an already-numeric amount.
func ValidateAmount(amount float64, eco EconomySettings, bypass bool) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	if eco.RequireWholeNumbers && amount != math.Floor(amount) {
		return fmt.Errorf("%w: amount must be a whole number", ErrInvalidAmount)
	}
	if !bypass && (amount < eco.MinBet || amount > eco.MaxBet) {
		return fmt.Errorf("%w: amount outside %v..%v", ErrInvalidAmount, eco.MinBet, eco.MaxBet)
	}
	return nil
}

// MaxBalanceBet is the largest stake the balance-percentage cap allows
// for the given balance. A percent of 0 (or 100 and above) means the
// cap is disabled and the whole balance may be staked.
func MaxBalanceBet(balance float64, eco EconomySettings) float64 {
	pct := eco.MaxBalancePercent
	if pct <= 0 || pct >= 100 {
		return balance
	}
	return balance * pct / 100
}
