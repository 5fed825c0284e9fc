package main

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/center2055/CoinflipXD/internal/adapters/ledger"
	"github.com/center2055/CoinflipXD/internal/adapters/notify"
	"github.com/center2055/CoinflipXD/internal/adapters/stats"
	"github.com/center2055/CoinflipXD/internal/application/engine"
)

// runDemo plays one public and one private match between two seeded
// participants, printing the browser table in between. Useful to smoke
// the whole wiring without a presentation layer.
func runDemo(ctx context.Context, e *engine.Engine, bank *ledger.Memory, console *notify.Console, store *stats.SQLite) {
	alice := uuid.New()
	bob := uuid.New()
	bank.SetBalance(alice, 10_000)
	bank.SetBalance(bob, 10_000)

	slog.Info("demo participants seeded", "alice", alice, "bob", bob, "balance", 10_000)

	w, err := e.CreatePublic(ctx, alice, 1000)
	if err != nil {
		slog.Error("demo create failed", "err", err)
		return
	}

	console.PrintPending(e.ListPendingPublic())

	if err := e.AcceptByID(ctx, bob, w.ID); err != nil {
		slog.Error("demo accept failed", "err", err)
		return
	}

	if _, err := e.CreatePrivate(ctx, alice, bob, 500); err != nil {
		slog.Error("demo private create failed", "err", err)
		return
	}
	if err := e.AcceptFromCreator(ctx, bob, alice); err != nil {
		slog.Error("demo private accept failed", "err", err)
		return
	}

	store.Flush()
	for _, id := range []uuid.UUID{alice, bob} {
		st, err := store.FetchStats(ctx, id)
		if err != nil {
			slog.Warn("demo stats fetch failed", "participant", id, "err", err)
			continue
		}
		balance, _ := bank.Balance(ctx, id)
		slog.Info("demo result",
			"participant", id, "wins", st.Wins, "losses", st.Losses,
			"won", st.TotalWon, "lost", st.TotalLost, "balance", balance)
	}
}
