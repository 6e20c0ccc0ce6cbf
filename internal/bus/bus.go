// Package bus is the synchronous in-process publish/subscribe mechanism used
// for cross-manager notification. Delivery is same-call: every subscriber
// registered at publish time runs exactly once before Publish returns.
package bus

import "log/slog"

type Handler func(event string, payload any)

type Bus struct {
	logger   *slog.Logger
	handlers map[string][]Handler
}

func New(logger *slog.Logger) *Bus {
	return &Bus{
		logger:   logger,
		handlers: make(map[string][]Handler),
	}
}

// Subscribe registers a handler for an event name. Handlers run in
// subscription order.
func (b *Bus) Subscribe(event string, h Handler) {
	b.handlers[event] = append(b.handlers[event], h)
}

// Publish invokes all current subscribers for the event synchronously. A
// panicking subscriber is logged and must not stop the remaining subscribers
// or reach the publisher.
func (b *Bus) Publish(event string, payload any) {
	for _, h := range b.handlers[event] {
		b.invoke(event, payload, h)
	}
}

func (b *Bus) invoke(event string, payload any, h Handler) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event subscriber panicked", "event", event, "panic", r)
		}
	}()
	h(event, payload)
}
