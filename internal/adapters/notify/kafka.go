package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/center2055/CoinflipXD/internal/domain"
)

const publishTimeout = 2 * time.Second

// Kafka publishes engine events as JSON messages, keyed by wager id so
// one wager's events stay in order within a partition. Downstream
// consumers (chat bridges, audit trails) render or archive them.
type Kafka struct {
	writer *kafka.Writer
	log    *slog.Logger
}

// NewKafka creates a publisher for the given brokers ("a:9092,b:9092")
// and topic.
func NewKafka(brokers, topic string) *Kafka {
	return &Kafka{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(strings.Split(brokers, ",")...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
		log: slog.Default(),
	}
}

type eventEnvelope struct {
	Kind     string  `json:"kind"`
	WagerID  string  `json:"wager_id,omitempty"`
	To       string  `json:"to"`
	Other    string  `json:"other,omitempty"`
	Amount   float64 `json:"amount"`
	Winnings float64 `json:"winnings,omitempty"`
	Tax      float64 `json:"tax,omitempty"`
	TsUnixMs int64   `json:"ts_unix_ms"`
}

// Notify publishes the event. Failures are logged and dropped; the
// engine's fire-and-forget contract means delivery is best-effort.
func (k *Kafka) Notify(ctx context.Context, ev domain.Event) {
	env := eventEnvelope{
		Kind:     string(ev.Kind),
		To:       ev.To.String(),
		Amount:   ev.Amount,
		Winnings: ev.Winnings,
		Tax:      ev.Tax,
		TsUnixMs: time.Now().UnixMilli(),
	}
	if ev.WagerID != uuid.Nil {
		env.WagerID = ev.WagerID.String()
	}
	if ev.Other != uuid.Nil {
		env.Other = ev.Other.String()
	}

	b, err := json.Marshal(env)
	if err != nil {
		k.log.Error("marshal event", "kind", ev.Kind, "err", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	msg := kafka.Message{Key: []byte(env.WagerID), Value: b, Time: time.Now()}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		k.log.Warn("publish event failed", "kind", ev.Kind, "err", err)
	}
}

// Close flushes and closes the underlying writer.
func (k *Kafka) Close() error {
	return k.writer.Close()
}
