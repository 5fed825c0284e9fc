package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/center2055/CoinflipXD/internal/domain"
	"github.com/center2055/CoinflipXD/internal/ports"
)

// Recorder counts engine events and payout volume, then passes each
// event through to the wrapped notifier. Wrapping keeps metrics out of
// the engine itself.
type Recorder struct {
	next ports.Notifier

	events   *prometheus.CounterVec
	potTotal prometheus.Counter
	taxTotal prometheus.Counter
}

// NewRecorder registers the collectors on reg and wraps next.
func NewRecorder(next ports.Notifier, reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		next: next,
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "coinflip_events_total",
			Help: "Engine notifications by kind.",
		}, []string{"kind"}),
		potTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "coinflip_pot_volume_total",
			Help: "Sum of pots across resolved wagers.",
		}),
		taxTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "coinflip_tax_volume_total",
			Help: "Sum of tax collected across resolved wagers.",
		}),
	}
}

func (r *Recorder) Notify(ctx context.Context, ev domain.Event) {
	r.events.WithLabelValues(string(ev.Kind)).Inc()
	if ev.Kind == domain.EventResolvedWin {
		r.potTotal.Add(ev.Winnings + ev.Tax)
		r.taxTotal.Add(ev.Tax)
	}
	if r.next != nil {
		r.next.Notify(ctx, ev)
	}
}
