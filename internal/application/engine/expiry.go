package engine

import (
	"context"
	"time"

	"github.com/center2055/CoinflipXD/internal/domain"
)

// Start launches the expiry sweeper. It runs until Shutdown, which
// stops it before the final registry sweep so no expiry races the
// shutdown refunds.
func (e *Engine) Start() {
	e.wg.Add(1)
	go e.sweepLoop()
}

func (e *Engine) sweepLoop() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.done:
			e.log.Debug("expiry sweeper stopped")
			return
		case <-ticker.C:
			e.sweepExpired(context.Background())
		}
	}
}

// sweepExpired cancels every pending wager past its deadline. It works
// on a snapshot: a wager accepted between snapshot and cancel attempt
// is fine, cancel is idempotent and skips anything no longer pending.
// A failed refund is logged and queued for reconciliation inside the
// cancel path; it never halts the sweeper.
func (e *Engine) sweepExpired(ctx context.Context) {
	now := e.clock.Now()
	for _, w := range e.reg.snapshot() {
		if w.IsExpired(now) {
			e.cancel(ctx, w, domain.ReasonExpired)
		}
	}
}
