package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/luyao-shop/storefront/internal/bus"
	"github.com/luyao-shop/storefront/internal/domain"
	"github.com/luyao-shop/storefront/internal/kv"
)

type memoryAdapter struct {
	data    map[string]json.RawMessage
	saveErr error
}

func newMemoryAdapter() *memoryAdapter {
	return &memoryAdapter{data: make(map[string]json.RawMessage)}
}

func (m *memoryAdapter) Load(_ context.Context, key string) (json.RawMessage, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryAdapter) Save(_ context.Context, key string, value json.RawMessage) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[key] = append(json.RawMessage(nil), value...)
	return nil
}

func (m *memoryAdapter) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newProducts(t *testing.T, adapter kv.Adapter, b *bus.Bus) *Collection[domain.Product, *domain.Product] {
	t.Helper()
	c, err := New[domain.Product](context.Background(), Config{
		Key:      "products",
		Kind:     "product",
		Event:    domain.EventProductsUpdated,
		IDPrefix: "prod",
	}, adapter, b, testLogger())
	if err != nil {
		t.Fatalf("failed to create collection: %v", err)
	}
	return c
}

func TestCollection_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns id and timestamps, appends in order", func(t *testing.T) {
		c := newProducts(t, newMemoryAdapter(), nil)

		first, err := c.Add(ctx, domain.Product{Name: "无线耳机", Price: 399, Stock: 25})
		if err != nil {
			t.Fatalf("add failed: %v", err)
		}
		second, err := c.Add(ctx, domain.Product{Name: "男士衬衫", Price: 199, Stock: 80})
		if err != nil {
			t.Fatalf("add failed: %v", err)
		}

		if first.ID == "" || second.ID == "" {
			t.Fatal("expected generated ids")
		}
		if first.ID == second.ID {
			t.Fatalf("expected unique ids, both were %s", first.ID)
		}
		if first.CreatedAt.IsZero() || first.UpdatedAt.IsZero() {
			t.Error("expected creation timestamps to be stamped")
		}

		all := c.All()
		if len(all) != 2 {
			t.Fatalf("expected 2 products, got %d", len(all))
		}
		if all[0].Name != "无线耳机" || all[1].Name != "男士衬衫" {
			t.Errorf("insertion order not preserved: %s, %s", all[0].Name, all[1].Name)
		}
	})

	t.Run("get returns the added entity", func(t *testing.T) {
		c := newProducts(t, newMemoryAdapter(), nil)

		added, err := c.Add(ctx, domain.Product{Name: "运动鞋", Price: 459})
		if err != nil {
			t.Fatalf("add failed: %v", err)
		}

		got, ok := c.Get(added.ID)
		if !ok {
			t.Fatal("expected entity to be found")
		}
		if got.Name != "运动鞋" || got.Price != 459 {
			t.Errorf("unexpected entity: %+v", got)
		}
	})

	t.Run("preserves pre-assigned id and timestamps for seed data", func(t *testing.T) {
		c := newProducts(t, newMemoryAdapter(), nil)

		created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		seeded := domain.Product{Name: "iPhone 14 Pro"}
		seeded.ID = "prod_1"
		seeded.CreatedAt = created
		seeded.UpdatedAt = created

		got, err := c.Add(ctx, seeded)
		if err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if got.ID != "prod_1" {
			t.Errorf("expected seed id preserved, got %s", got.ID)
		}
		if !got.CreatedAt.Equal(created) {
			t.Errorf("expected seed createdAt preserved, got %v", got.CreatedAt)
		}
	})

	t.Run("rejects duplicate id", func(t *testing.T) {
		c := newProducts(t, newMemoryAdapter(), nil)

		dup := domain.Product{Name: "a"}
		dup.ID = "prod_1"
		if _, err := c.Add(ctx, dup); err != nil {
			t.Fatalf("add failed: %v", err)
		}

		var conflict *domain.ConflictError
		if _, err := c.Add(ctx, dup); !errors.As(err, &conflict) {
			t.Errorf("expected conflict error, got %v", err)
		}
	})

	t.Run("round-trips through the adapter", func(t *testing.T) {
		adapter := newMemoryAdapter()
		c := newProducts(t, adapter, nil)

		added, err := c.Add(ctx, domain.Product{Name: "夏季连衣裙", Price: 299, Stock: 100})
		if err != nil {
			t.Fatalf("add failed: %v", err)
		}

		reloaded := newProducts(t, adapter, nil)
		got, ok := reloaded.Get(added.ID)
		if !ok {
			t.Fatal("expected entity to survive reload")
		}
		if got.Name != added.Name || got.Price != added.Price || got.Stock != added.Stock {
			t.Errorf("reloaded entity differs: %+v vs %+v", got, added)
		}
		if reloaded.Len() != c.Len() {
			t.Errorf("expected equal collection length after reload, got %d vs %d", reloaded.Len(), c.Len())
		}
	})
}

func TestCollection_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("applies mutation and refreshes updatedAt strictly", func(t *testing.T) {
		c := newProducts(t, newMemoryAdapter(), nil)

		added, err := c.Add(ctx, domain.Product{Name: "MacBook Pro", Price: 12999, Stock: 30})
		if err != nil {
			t.Fatalf("add failed: %v", err)
		}
		before := added.UpdatedAt

		updated, err := c.Update(ctx, added.ID, func(p *domain.Product) {
			p.Price = 11999
			p.Stock = 28
		})
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}

		if updated.Price != 11999 || updated.Stock != 28 {
			t.Errorf("mutation not applied: %+v", updated)
		}
		if updated.Name != "MacBook Pro" {
			t.Errorf("untouched field changed: %s", updated.Name)
		}
		if !updated.UpdatedAt.After(before) {
			t.Errorf("expected updatedAt strictly greater: %v vs %v", updated.UpdatedAt, before)
		}
	})

	t.Run("unknown id fails without state change", func(t *testing.T) {
		c := newProducts(t, newMemoryAdapter(), nil)
		if _, err := c.Add(ctx, domain.Product{Name: "a"}); err != nil {
			t.Fatalf("add failed: %v", err)
		}

		var notFound *domain.NotFoundError
		_, err := c.Update(ctx, "prod_missing", func(p *domain.Product) { p.Price = 1 })
		if !errors.As(err, &notFound) {
			t.Fatalf("expected not found error, got %v", err)
		}
		if c.Len() != 1 {
			t.Errorf("collection length changed: %d", c.Len())
		}
	})

	t.Run("mutating a snapshot does not affect the store", func(t *testing.T) {
		c := newProducts(t, newMemoryAdapter(), nil)

		added, err := c.Add(ctx, domain.Product{Name: "原名", Price: 100})
		if err != nil {
			t.Fatalf("add failed: %v", err)
		}

		snapshot := c.All()
		snapshot[0].Name = "改名"

		got, _ := c.Get(added.ID)
		if got.Name != "原名" {
			t.Errorf("store state mutated through snapshot: %s", got.Name)
		}
	})
}

func TestCollection_Remove(t *testing.T) {
	ctx := context.Background()

	t.Run("removes and preserves relative order", func(t *testing.T) {
		c := newProducts(t, newMemoryAdapter(), nil)

		a, _ := c.Add(ctx, domain.Product{Name: "a"})
		b, _ := c.Add(ctx, domain.Product{Name: "b"})
		d, _ := c.Add(ctx, domain.Product{Name: "d"})

		if err := c.Remove(ctx, b.ID); err != nil {
			t.Fatalf("remove failed: %v", err)
		}

		all := c.All()
		if len(all) != 2 || all[0].ID != a.ID || all[1].ID != d.ID {
			t.Errorf("unexpected collection after remove: %+v", all)
		}
		if _, ok := c.Get(b.ID); ok {
			t.Error("removed entity still retrievable")
		}
		if _, ok := c.Get(d.ID); !ok {
			t.Error("index broken for entity after removal point")
		}
	})

	t.Run("unknown id fails and leaves length unchanged", func(t *testing.T) {
		c := newProducts(t, newMemoryAdapter(), nil)
		if _, err := c.Add(ctx, domain.Product{Name: "a"}); err != nil {
			t.Fatalf("add failed: %v", err)
		}

		var notFound *domain.NotFoundError
		if err := c.Remove(ctx, "prod_missing"); !errors.As(err, &notFound) {
			t.Fatalf("expected not found error, got %v", err)
		}
		if c.Len() != 1 {
			t.Errorf("collection length changed: %d", c.Len())
		}
	})
}

func TestCollection_Events(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes change events with action kind", func(t *testing.T) {
		b := bus.New(testLogger())
		var changes []domain.Change
		b.Subscribe(domain.EventProductsUpdated, func(event string, payload any) {
			changes = append(changes, payload.(domain.Change))
		})

		c := newProducts(t, newMemoryAdapter(), b)

		added, _ := c.Add(ctx, domain.Product{Name: "a"})
		_, _ = c.Update(ctx, added.ID, func(p *domain.Product) { p.Price = 1 })
		_ = c.Remove(ctx, added.ID)

		if len(changes) != 3 {
			t.Fatalf("expected 3 events, got %d", len(changes))
		}
		if changes[0].Action != domain.ActionAdd ||
			changes[1].Action != domain.ActionUpdate ||
			changes[2].Action != domain.ActionDelete {
			t.Errorf("unexpected actions: %+v", changes)
		}
	})
}

func TestCollection_PersistenceFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("failed write keeps in-memory state authoritative", func(t *testing.T) {
		adapter := newMemoryAdapter()
		adapter.saveErr = errors.New("storage quota exceeded")

		c := newProducts(t, adapter, nil)

		added, err := c.Add(ctx, domain.Product{Name: "a", Price: 100})
		if err != nil {
			t.Fatalf("expected add to succeed despite write failure, got %v", err)
		}
		if _, ok := c.Get(added.ID); !ok {
			t.Error("expected entity in memory after failed write")
		}
		if _, ok := adapter.data["products"]; ok {
			t.Error("expected nothing persisted")
		}
	})
}
