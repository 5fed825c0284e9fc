package ports

import (
	"context"

	"github.com/center2055/CoinflipXD/internal/domain"
)

// Notifier receives engine events for presentation layers to render.
// Fire-and-forget: implementations must not block the lifecycle path
// and deal with their own delivery failures.
type Notifier interface {
	Notify(ctx context.Context, ev domain.Event)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, ev domain.Event)

func (f NotifierFunc) Notify(ctx context.Context, ev domain.Event) { f(ctx, ev) }
