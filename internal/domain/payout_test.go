package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculatePayout_WithTax(t *testing.T) {
	payout := CalculatePayout(1000, TaxSettings{Enabled: true, Percent: 10})
	assert.Equal(t, 2000.0, payout.Pot)
	assert.Equal(t, 1800.0, payout.Winnings)
	assert.Equal(t, 200.0, payout.Tax)
}

func TestCalculatePayout_TaxDisabled(t *testing.T) {
	payout := CalculatePayout(500, TaxSettings{Enabled: false, Percent: 50})
	assert.Equal(t, 1000.0, payout.Pot)
	assert.Equal(t, 1000.0, payout.Winnings)
	assert.Equal(t, 0.0, payout.Tax)
}

func TestCalculatePayout_ClampsNegativePercent(t *testing.T) {
	payout := CalculatePayout(250, TaxSettings{Enabled: true, Percent: -5})
	assert.Equal(t, 500.0, payout.Pot)
	assert.Equal(t, 500.0, payout.Winnings)
	assert.Equal(t, 0.0, payout.Tax)
}

func TestCalculatePayout_ClampsPercentAboveHundred(t *testing.T) {
	payout := CalculatePayout(100, TaxSettings{Enabled: true, Percent: 150})
	assert.Equal(t, 200.0, payout.Pot)
	assert.Equal(t, 0.0, payout.Winnings)
	assert.Equal(t, 200.0, payout.Tax)
}

// Winnings and tax always reassemble the pot, and winnings round down.
func TestCalculatePayout_SplitsAreExact(t *testing.T) {
	stakes := []float64{1, 7, 99, 250, 1000, 33333}
	percents := []float64{0, 1, 2.5, 10, 33.3, 50, 99, 100}

	for _, s := range stakes {
		for _, p := range percents {
			payout := CalculatePayout(s, TaxSettings{Enabled: true, Percent: p})
			assert.Equal(t, 2*s, payout.Winnings+payout.Tax,
				"stake=%v percent=%v", s, p)
			assert.Equal(t, math.Floor(2*s*(1-p/100)), payout.Winnings,
				"stake=%v percent=%v", s, p)
			assert.GreaterOrEqual(t, payout.Tax, 0.0)
		}
	}
}
