package notify

import (
	"context"

	"github.com/center2055/CoinflipXD/internal/domain"
	"github.com/center2055/CoinflipXD/internal/ports"
)

// Fanout delivers each event to every wrapped notifier in order.
type Fanout []ports.Notifier

func (f Fanout) Notify(ctx context.Context, ev domain.Event) {
	for _, n := range f {
		n.Notify(ctx, ev)
	}
}
