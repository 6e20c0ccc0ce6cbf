// Package store implements the generic entity store: ordered in-memory
// collections that are the authoritative copy of the data, written through to
// a kv.Adapter and announced on the event bus.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/luyao-shop/storefront/internal/bus"
	"github.com/luyao-shop/storefront/internal/domain"
	"github.com/luyao-shop/storefront/internal/kv"
)

var meter = otel.Meter("store")

// Entity is satisfied by domain types embedding domain.Meta.
type Entity interface {
	EntityID() string
	SetEntityID(string)
	CreatedTime() time.Time
	StampNew(time.Time)
	Touch(time.Time)
}

type Config struct {
	// Key is the storage key the collection snapshot persists under.
	Key string
	// Kind names the entity in errors, e.g. "product".
	Kind string
	// Event is the bus event published on every change. Empty disables the
	// automatic notification; managers then publish their own events.
	Event string
	// IDPrefix feeds the default id generator.
	IDPrefix string
	// NewID overrides the default id generator.
	NewID func() string
	// Now overrides the clock.
	Now func() time.Time
}

// Collection owns the in-memory entities of one kind, in insertion order.
// All mutations write the full snapshot through to the persistence adapter;
// a failed write is logged and the in-memory state stays authoritative.
type Collection[T any, P interface {
	*T
	Entity
}] struct {
	cfg    Config
	kv     kv.Adapter
	bus    *bus.Bus
	logger *slog.Logger
	ops    metric.Int64Counter

	mu    sync.RWMutex
	items []T
	index map[string]int
}

func New[T any, P interface {
	*T
	Entity
}](ctx context.Context, cfg Config, adapter kv.Adapter, b *bus.Bus, logger *slog.Logger) (*Collection[T, P], error) {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		prefix := cfg.IDPrefix
		cfg.NewID = func() string { return DefaultID(prefix) }
	}

	ops, err := meter.Int64Counter("store.operations",
		metric.WithDescription("Entity store operations by collection and action"),
	)
	if err != nil {
		logger.Error("failed to create store metric", "error", err)
	}

	c := &Collection[T, P]{
		cfg:    cfg,
		kv:     adapter,
		bus:    b,
		logger: logger,
		ops:    ops,
		index:  make(map[string]int),
	}

	data, ok, err := adapter.Load(ctx, cfg.Key)
	if err != nil {
		return nil, fmt.Errorf("load collection %s: %w", cfg.Key, err)
	}
	if ok {
		if err := json.Unmarshal(data, &c.items); err != nil {
			return nil, fmt.Errorf("decode collection %s: %w", cfg.Key, err)
		}
		for i := range c.items {
			c.index[P(&c.items[i]).EntityID()] = i
		}
	}

	return c, nil
}

// DefaultID builds ids in the <prefix>_<unix-milli>_<random> form.
func DefaultID(prefix string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), suffix)
}

func (c *Collection[T, P]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// All returns a snapshot copy in insertion order.
func (c *Collection[T, P]) All() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]T(nil), c.items...)
}

// Get returns a copy of the entity, or false when the id is unknown.
func (c *Collection[T, P]) Get(id string) (*T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[id]
	if !ok {
		return nil, false
	}
	item := c.items[i]
	return &item, true
}

// Find returns copies of the entities matching the predicate, in order.
func (c *Collection[T, P]) Find(match func(*T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []T
	for i := range c.items {
		if match(&c.items[i]) {
			out = append(out, c.items[i])
		}
	}
	return out
}

// Add inserts the entity at the end of the collection. A fresh id and
// creation timestamps are assigned unless the entity already carries them
// (seed data does).
func (c *Collection[T, P]) Add(ctx context.Context, item T) (*T, error) {
	p := P(&item)
	if p.EntityID() == "" {
		p.SetEntityID(c.cfg.NewID())
	}
	if p.CreatedTime().IsZero() {
		p.StampNew(c.cfg.Now())
	}

	c.mu.Lock()
	if _, exists := c.index[p.EntityID()]; exists {
		c.mu.Unlock()
		return nil, &domain.ConflictError{Reason: fmt.Sprintf("%s id %s already exists", c.cfg.Kind, p.EntityID())}
	}
	c.items = append(c.items, item)
	c.index[p.EntityID()] = len(c.items) - 1
	c.persistLocked(ctx)
	c.mu.Unlock()

	c.record(ctx, domain.ActionAdd)
	c.emit(domain.ActionAdd, item)
	return &item, nil
}

// Update applies mutate to a copy of the stored entity and commits it as one
// atomic replacement, refreshing updatedAt. Unknown ids fail with a not-found
// error and no state change.
func (c *Collection[T, P]) Update(ctx context.Context, id string, mutate func(P)) (*T, error) {
	return c.UpdateErr(ctx, id, func(p P) error {
		mutate(p)
		return nil
	})
}

// UpdateErr is Update with a mutate that can refuse the change. A refused
// update leaves the entity untouched, including updatedAt.
func (c *Collection[T, P]) UpdateErr(ctx context.Context, id string, mutate func(P) error) (*T, error) {
	c.mu.Lock()
	i, ok := c.index[id]
	if !ok {
		c.mu.Unlock()
		return nil, &domain.NotFoundError{Kind: c.cfg.Kind, ID: id}
	}

	item := c.items[i]
	if err := mutate(P(&item)); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	P(&item).Touch(c.cfg.Now())
	c.items[i] = item
	c.persistLocked(ctx)
	c.mu.Unlock()

	c.record(ctx, domain.ActionUpdate)
	c.emit(domain.ActionUpdate, item)
	return &item, nil
}

// Remove deletes the entity, preserving the relative order of the rest.
func (c *Collection[T, P]) Remove(ctx context.Context, id string) error {
	c.mu.Lock()
	i, ok := c.index[id]
	if !ok {
		c.mu.Unlock()
		return &domain.NotFoundError{Kind: c.cfg.Kind, ID: id}
	}

	removed := c.items[i]
	c.items = append(c.items[:i], c.items[i+1:]...)
	delete(c.index, id)
	for j := i; j < len(c.items); j++ {
		c.index[P(&c.items[j]).EntityID()] = j
	}
	c.persistLocked(ctx)
	c.mu.Unlock()

	c.record(ctx, domain.ActionDelete)
	c.emit(domain.ActionDelete, removed)
	return nil
}

// persistLocked writes the snapshot through to the adapter. Durability is
// best-effort: failures are logged and never fail the logical operation.
func (c *Collection[T, P]) persistLocked(ctx context.Context) {
	data, err := json.Marshal(c.items)
	if err != nil {
		c.logger.Error("failed to encode collection", "key", c.cfg.Key, "error", err)
		return
	}
	if err := c.kv.Save(ctx, c.cfg.Key, data); err != nil {
		c.logger.Error("failed to persist collection", "key", c.cfg.Key, "error", err)
	}
}

func (c *Collection[T, P]) emit(action string, entity T) {
	if c.bus == nil || c.cfg.Event == "" {
		return
	}
	c.bus.Publish(c.cfg.Event, domain.Change{Action: action, Entity: entity})
}

func (c *Collection[T, P]) record(ctx context.Context, action string) {
	if c.ops == nil {
		return
	}
	c.ops.Add(ctx, 1, metric.WithAttributes(
		attribute.String("collection", c.cfg.Key),
		attribute.String("action", action),
	))
}
