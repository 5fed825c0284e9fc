package domain

import (
	"time"

	"github.com/google/uuid"
)

// PlayerStats is the per-participant running tally the stats store keeps.
type PlayerStats struct {
	Player    uuid.UUID
	Wins      int64
	Losses    int64
	TotalWon  float64
	TotalLost float64
	LastPlay  time.Time
}

// Games is the total number of resolved wagers the participant was in.
func (s PlayerStats) Games() int64 {
	return s.Wins + s.Losses
}

// Net is winnings minus losses over the participant's history.
func (s PlayerStats) Net() float64 {
	return s.TotalWon - s.TotalLost
}
