package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/center2055/CoinflipXD/internal/domain"
)

// Console implements ports.Notifier by writing one line per event.
// It is the default presentation when no richer layer is attached.
type Console struct {
	out io.Writer
	now func() time.Time
}

// NewConsole creates a notifier that writes to stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout, now: time.Now}
}

// NewConsoleWriter creates a notifier for tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w, now: time.Now}
}

// Notify renders the event. Never returns anything to the engine;
// writing to a broken pipe is not the lifecycle's problem.
func (c *Console) Notify(_ context.Context, ev domain.Event) {
	ts := c.now().Format("15:04:05")
	switch ev.Kind {
	case domain.EventCreated:
		fmt.Fprintf(c.out, "[%s] %s opened a coinflip for %s\n", ts, short(ev.To), money(ev.Amount))
	case domain.EventPrivateSent:
		fmt.Fprintf(c.out, "[%s] %s challenged %s for %s\n", ts, short(ev.To), short(ev.Other), money(ev.Amount))
	case domain.EventPrivateReceived:
		fmt.Fprintf(c.out, "[%s] %s: challenge from %s for %s\n", ts, short(ev.To), short(ev.Other), money(ev.Amount))
	case domain.EventAccepted:
		fmt.Fprintf(c.out, "[%s] %s vs %s, flipping for %s\n", ts, short(ev.To), short(ev.Other), money(ev.Amount))
	case domain.EventResolvedWin:
		fmt.Fprintf(c.out, "[%s] %s WON %s (tax %s)\n", ts, short(ev.To), money(ev.Winnings), money(ev.Tax))
	case domain.EventResolvedLose:
		fmt.Fprintf(c.out, "[%s] %s lost %s\n", ts, short(ev.To), money(ev.Amount))
	case domain.EventCanceled:
		fmt.Fprintf(c.out, "[%s] %s: coinflip canceled, %s returned\n", ts, short(ev.To), money(ev.Amount))
	case domain.EventExpired:
		fmt.Fprintf(c.out, "[%s] %s: coinflip expired, %s returned\n", ts, short(ev.To), money(ev.Amount))
	default:
		fmt.Fprintf(c.out, "[%s] %s: %s\n", ts, short(ev.To), ev.Kind)
	}
}

// PrintPending renders the public wager browser table.
func (c *Console) PrintPending(wagers []*domain.Wager) {
	if len(wagers) == 0 {
		fmt.Fprintf(c.out, "[%s] no open coinflips\n", c.now().Format("15:04:05"))
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "ID", "Creator", "Amount", "Expires in")

	now := c.now()
	for i, w := range wagers {
		table.Append(
			fmt.Sprintf("%d", i+1),
			short(w.ID),
			short(w.Creator),
			money(w.Amount),
			w.ExpiresAt.Sub(now).Truncate(time.Second).String(),
		)
	}

	table.Render()
}

func money(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

func short(id interface{ String() string }) string {
	s := id.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
