package notify

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/center2055/CoinflipXD/internal/domain"
)

func TestConsole_NotifyLines(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf)
	c.now = func() time.Time { return time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC) }

	winner := uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000000")
	c.Notify(context.Background(), domain.Event{
		Kind: domain.EventResolvedWin, To: winner, Winnings: 1800, Tax: 200,
	})

	assert.Equal(t, "[12:30:00] aaaaaaaa WON $1800.00 (tax $200.00)\n", buf.String())

	buf.Reset()
	c.Notify(context.Background(), domain.Event{
		Kind: domain.EventExpired, To: winner, Amount: 1000,
	})
	assert.Equal(t, "[12:30:00] aaaaaaaa: coinflip expired, $1000.00 returned\n", buf.String())
}

func TestConsole_NotifyUnknownKindFallsBack(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf)

	c.Notify(context.Background(), domain.Event{Kind: domain.EventBusy, To: uuid.New()})
	assert.Contains(t, buf.String(), string(domain.EventBusy))
}

func TestConsole_PrintPendingEmpty(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf)

	c.PrintPending(nil)
	assert.Contains(t, buf.String(), "no open coinflips")
}

func TestConsole_PrintPendingTable(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf)

	now := time.Now()
	w := domain.NewWager(uuid.New(), domain.KindPublic, uuid.Nil, 2500, now, now.Add(5*time.Minute))
	c.PrintPending([]*domain.Wager{w})

	out := buf.String()
	assert.Contains(t, strings.ToUpper(out), "CREATOR")
	assert.Contains(t, out, short(w.ID))
	assert.Contains(t, out, "$2500.00")
}
