package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process ledger for the demo mode and tests. Each
// call is atomic under one mutex; a failed withdraw moves nothing.
type Memory struct {
	mu       sync.Mutex
	balances map[uuid.UUID]float64
}

// NewMemory creates an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{balances: make(map[uuid.UUID]float64)}
}

// SetBalance fixes a participant's balance, for seeding.
func (m *Memory) SetBalance(participant uuid.UUID, amount float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[participant] = amount
}

func (m *Memory) Balance(_ context.Context, participant uuid.UUID) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[participant], nil
}

func (m *Memory) HasBalance(_ context.Context, participant uuid.UUID, amount float64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[participant] >= amount, nil
}

func (m *Memory) Withdraw(_ context.Context, participant uuid.UUID, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("negative amount %v", amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances[participant] < amount {
		return fmt.Errorf("balance %v below %v", m.balances[participant], amount)
	}
	m.balances[participant] -= amount
	return nil
}

func (m *Memory) Deposit(_ context.Context, participant uuid.UUID, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("negative amount %v", amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[participant] += amount
	return nil
}
