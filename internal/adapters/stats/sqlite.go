package stats

// sqlite.go: result tallies and the refund reconciliation queue.
//
// Writes go through a single worker goroutine fed by a buffered
// channel, so recording a result never blocks the resolution path.
// When the queue is full the write is dropped and logged: the
// collector contract is best-effort. Reads query the database
// directly.

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/center2055/CoinflipXD/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS player_stats (
    player_uuid  TEXT PRIMARY KEY,
    wins         INTEGER NOT NULL DEFAULT 0,
    losses       INTEGER NOT NULL DEFAULT 0,
    total_won    REAL    NOT NULL DEFAULT 0,
    total_lost   REAL    NOT NULL DEFAULT 0,
    last_play_ts INTEGER NOT NULL DEFAULT 0
);

-- Refunds the engine could not deliver; cleared by external
-- reconciliation, never retried automatically.
CREATE TABLE IF NOT EXISTS owed_refunds (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    participant TEXT NOT NULL,
    wager_id    TEXT NOT NULL,
    amount      REAL NOT NULL,
    cause       TEXT NOT NULL,
    recorded_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_owed_participant ON owed_refunds(participant);
`

const queueSize = 256

// OwedRefund is one entry in the reconciliation queue.
type OwedRefund struct {
	ID          int64
	Participant uuid.UUID
	WagerID     uuid.UUID
	Amount      float64
	Cause       string
	RecordedAt  time.Time
}

// SQLite implements ports.StatsCollector and ports.Reconciler on a
// local SQLite file (pure Go driver, no CGo).
type SQLite struct {
	db   *sql.DB
	log  *slog.Logger
	jobs chan func()
	quit chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// New opens (or creates) the database at dsn and starts the writer.
// Use ":memory:" for tests.
func New(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("stats: open %q: %w", dsn, err)
	}
	db.SetMaxOpenConns(1) // SQLite is single-writer

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("stats: apply schema: %w", err)
	}

	s := &SQLite{
		db:   db,
		log:  slog.Default(),
		jobs: make(chan func(), queueSize),
		quit: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.worker()
	return s, nil
}

func (s *SQLite) worker() {
	defer s.wg.Done()
	for {
		select {
		case job := <-s.jobs:
			job()
		case <-s.quit:
			// Drain whatever is already queued before stopping.
			for {
				select {
				case job := <-s.jobs:
					job()
				default:
					return
				}
			}
		}
	}
}

func (s *SQLite) enqueue(job func()) {
	select {
	case s.jobs <- job:
	case <-s.quit:
	default:
		s.log.Warn("stats queue full, write dropped")
	}
}

// RecordResult tallies one resolved wager for both participants.
func (s *SQLite) RecordResult(_ context.Context, winner, loser uuid.UUID, winnings, loss float64) {
	now := time.Now().Unix()
	s.enqueue(func() {
		if err := s.bump(winner, 1, 0, winnings, 0, now); err != nil {
			s.log.Error("record win failed", "participant", winner, "err", err)
		}
		if err := s.bump(loser, 0, 1, 0, loss, now); err != nil {
			s.log.Error("record loss failed", "participant", loser, "err", err)
		}
	})
}

func (s *SQLite) bump(player uuid.UUID, wins, losses int64, won, lost float64, ts int64) error {
	_, err := s.db.Exec(`
		INSERT INTO player_stats (player_uuid, wins, losses, total_won, total_lost, last_play_ts)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(player_uuid) DO UPDATE SET
			wins         = wins + excluded.wins,
			losses       = losses + excluded.losses,
			total_won    = total_won + excluded.total_won,
			total_lost   = total_lost + excluded.total_lost,
			last_play_ts = excluded.last_play_ts`,
		player.String(), wins, losses, won, lost, ts)
	return err
}

// RecordOwedRefund queues a ledger debt for external reconciliation.
func (s *SQLite) RecordOwedRefund(_ context.Context, participant uuid.UUID, amount float64, wagerID uuid.UUID, cause string) {
	now := time.Now().Unix()
	s.enqueue(func() {
		_, err := s.db.Exec(`
			INSERT INTO owed_refunds (participant, wager_id, amount, cause, recorded_at)
			VALUES (?, ?, ?, ?, ?)`,
			participant.String(), wagerID.String(), amount, cause, now)
		if err != nil {
			s.log.Error("record owed refund failed",
				"participant", participant, "amount", amount, "err", err)
		}
	})
}

// FetchStats returns the participant's tally, zeroed when unseen.
func (s *SQLite) FetchStats(ctx context.Context, player uuid.UUID) (domain.PlayerStats, error) {
	stats := domain.PlayerStats{Player: player}
	var lastPlay int64
	err := s.db.QueryRowContext(ctx, `
		SELECT wins, losses, total_won, total_lost, last_play_ts
		FROM player_stats WHERE player_uuid = ?`, player.String()).
		Scan(&stats.Wins, &stats.Losses, &stats.TotalWon, &stats.TotalLost, &lastPlay)
	if err == sql.ErrNoRows {
		return stats, nil
	}
	if err != nil {
		return stats, fmt.Errorf("stats: fetch %s: %w", player, err)
	}
	stats.LastPlay = time.Unix(lastPlay, 0)
	return stats, nil
}

// PendingRefunds lists the reconciliation queue, oldest first.
func (s *SQLite) PendingRefunds(ctx context.Context) ([]OwedRefund, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, participant, wager_id, amount, cause, recorded_at
		FROM owed_refunds ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("stats: list refunds: %w", err)
	}
	defer rows.Close()

	var out []OwedRefund
	for rows.Next() {
		var (
			r                  OwedRefund
			participant, wager string
			recordedAt         int64
		)
		if err := rows.Scan(&r.ID, &participant, &wager, &r.Amount, &r.Cause, &recordedAt); err != nil {
			return nil, fmt.Errorf("stats: scan refund: %w", err)
		}
		r.Participant, _ = uuid.Parse(participant)
		r.WagerID, _ = uuid.Parse(wager)
		r.RecordedAt = time.Unix(recordedAt, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Flush blocks until every queued write has been applied.
func (s *SQLite) Flush() {
	done := make(chan struct{})
	select {
	case s.jobs <- func() { close(done) }:
		<-done
	case <-s.quit:
	}
}

// Close stops the writer, applies queued writes, and closes the db.
func (s *SQLite) Close() error {
	s.once.Do(func() { close(s.quit) })
	s.wg.Wait()
	return s.db.Close()
}
