package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/luyao-shop/storefront/internal/bus"
	"github.com/luyao-shop/storefront/internal/domain"
)

// Envelope is the wire form of a domain event on the Kafka topic.
type Envelope struct {
	Event     string          `json:"event"`
	Action    string          `json:"action"`
	Entity    json.RawMessage `json:"entity,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

type publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Relay forwards in-process bus events to Kafka. Bus delivery is synchronous,
// so the subscriber only enqueues; a separate goroutine does the actual
// writes. A full queue drops the event rather than stalling a domain
// operation.
type Relay struct {
	producer publisher
	logger   *slog.Logger
	queue    chan Envelope
}

func NewRelay(producer publisher, logger *slog.Logger) *Relay {
	return &Relay{
		producer: producer,
		logger:   logger,
		queue:    make(chan Envelope, 256),
	}
}

// Attach subscribes the relay to every domain event on the bus.
func (r *Relay) Attach(b *bus.Bus) {
	events := []string{
		domain.EventProductsUpdated,
		domain.EventUsersUpdated,
		domain.EventOrderCreated,
		domain.EventOrderUpdated,
		domain.EventPaymentProcessed,
		domain.EventUserLoggedIn,
		domain.EventUserLoggedOut,
		domain.EventApplicationSubmitted,
		domain.EventApplicationReviewed,
	}
	for _, event := range events {
		b.Subscribe(event, r.enqueue)
	}
}

func (r *Relay) enqueue(event string, payload any) {
	env := Envelope{Event: event, Timestamp: time.Now().UTC()}

	if change, ok := payload.(domain.Change); ok {
		env.Action = change.Action
		if change.Entity != nil {
			data, err := json.Marshal(change.Entity)
			if err != nil {
				r.logger.Error("failed to encode event entity", "event", event, "error", err)
				return
			}
			env.Entity = data
		}
	}

	select {
	case r.queue <- env:
	default:
		r.logger.Warn("event relay queue full, dropping event", "event", event)
	}
}

// Run drains the queue until the context is cancelled.
func (r *Relay) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-r.queue:
			if err := r.producer.Publish(ctx, env.Event, env); err != nil {
				r.logger.Error("failed to relay event to kafka", "event", env.Event, "error", err)
			}
		}
	}
}
