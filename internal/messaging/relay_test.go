package messaging

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/luyao-shop/storefront/internal/bus"
	"github.com/luyao-shop/storefront/internal/domain"
)

type capturingPublisher struct {
	mu     sync.Mutex
	events []Envelope
	done   chan struct{}
}

func (p *capturingPublisher) Publish(_ context.Context, key string, event any) error {
	env, ok := event.(Envelope)
	if !ok {
		return nil
	}
	p.mu.Lock()
	p.events = append(p.events, env)
	p.mu.Unlock()
	select {
	case p.done <- struct{}{}:
	default:
	}
	return nil
}

func TestRelay(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("forwards bus events as envelopes", func(t *testing.T) {
		pub := &capturingPublisher{done: make(chan struct{}, 1)}
		relay := NewRelay(pub, logger)

		b := bus.New(logger)
		relay.Attach(b)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go relay.Run(ctx)

		b.Publish(domain.EventOrderCreated, domain.Change{
			Action: domain.ActionAdd,
			Entity: domain.Order{TotalAmount: 200},
		})

		select {
		case <-pub.done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for the relay")
		}

		pub.mu.Lock()
		defer pub.mu.Unlock()
		if len(pub.events) != 1 {
			t.Fatalf("expected 1 envelope, got %d", len(pub.events))
		}
		env := pub.events[0]
		if env.Event != domain.EventOrderCreated || env.Action != domain.ActionAdd {
			t.Errorf("unexpected envelope: %+v", env)
		}

		var order domain.Order
		if err := json.Unmarshal(env.Entity, &order); err != nil {
			t.Fatalf("failed to decode entity: %v", err)
		}
		if order.TotalAmount != 200 {
			t.Errorf("expected total 200, got %d", order.TotalAmount)
		}
	})

	t.Run("publishing never blocks the bus", func(t *testing.T) {
		pub := &capturingPublisher{done: make(chan struct{}, 1)}
		relay := NewRelay(pub, logger)

		b := bus.New(logger)
		relay.Attach(b)

		// no Run loop draining; the queue fills and the bus must still return
		done := make(chan struct{})
		go func() {
			for i := 0; i < 1000; i++ {
				b.Publish(domain.EventProductsUpdated, domain.Change{Action: domain.ActionUpdate})
			}
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("bus publish blocked on a full relay queue")
		}
	})
}
