package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/luyao-shop/storefront/internal/domain"
	"github.com/luyao-shop/storefront/internal/messaging"
)

func envelope(t *testing.T, event, action string, entity any) []byte {
	t.Helper()
	data, err := json.Marshal(entity)
	if err != nil {
		t.Fatalf("failed to encode entity: %v", err)
	}
	payload, err := json.Marshal(messaging.Envelope{
		Event:     event,
		Action:    action,
		Entity:    data,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("failed to encode envelope: %v", err)
	}
	return payload
}

func TestAlertHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("warns when an active product drops below the threshold", func(t *testing.T) {
		var buf bytes.Buffer
		h := NewAlertHandler(10, slog.New(slog.NewJSONHandler(&buf, nil)))

		p := domain.Product{Name: "无线耳机", Stock: 3, Status: domain.ProductStatusActive}
		if err := h.Handle(ctx, envelope(t, domain.EventProductsUpdated, domain.ActionUpdate, p)); err != nil {
			t.Fatalf("handle failed: %v", err)
		}

		if !bytes.Contains(buf.Bytes(), []byte("low stock alert")) {
			t.Errorf("expected a low stock alert, got %s", buf.String())
		}
	})

	t.Run("stays quiet above the threshold", func(t *testing.T) {
		var buf bytes.Buffer
		h := NewAlertHandler(10, slog.New(slog.NewJSONHandler(&buf, nil)))

		p := domain.Product{Name: "a", Stock: 50, Status: domain.ProductStatusActive}
		if err := h.Handle(ctx, envelope(t, domain.EventProductsUpdated, domain.ActionUpdate, p)); err != nil {
			t.Fatalf("handle failed: %v", err)
		}

		if buf.Len() != 0 {
			t.Errorf("expected no output, got %s", buf.String())
		}
	})

	t.Run("ignores inactive products and deletions", func(t *testing.T) {
		var buf bytes.Buffer
		h := NewAlertHandler(10, slog.New(slog.NewJSONHandler(&buf, nil)))

		inactive := domain.Product{Name: "a", Stock: 0, Status: domain.ProductStatusInactive}
		if err := h.Handle(ctx, envelope(t, domain.EventProductsUpdated, domain.ActionUpdate, inactive)); err != nil {
			t.Fatalf("handle failed: %v", err)
		}

		deleted := domain.Product{Name: "a", Stock: 0, Status: domain.ProductStatusActive}
		if err := h.Handle(ctx, envelope(t, domain.EventProductsUpdated, domain.ActionDelete, deleted)); err != nil {
			t.Fatalf("handle failed: %v", err)
		}

		if buf.Len() != 0 {
			t.Errorf("expected no output, got %s", buf.String())
		}
	})

	t.Run("ignores unrelated events", func(t *testing.T) {
		var buf bytes.Buffer
		h := NewAlertHandler(10, slog.New(slog.NewJSONHandler(&buf, nil)))

		if err := h.Handle(ctx, envelope(t, domain.EventOrderCreated, domain.ActionAdd, domain.Order{})); err != nil {
			t.Fatalf("handle failed: %v", err)
		}
		if buf.Len() != 0 {
			t.Errorf("expected no output, got %s", buf.String())
		}
	})

	t.Run("malformed payload is an error", func(t *testing.T) {
		h := NewAlertHandler(10, slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil)))

		if err := h.Handle(ctx, []byte("not json")); err == nil {
			t.Error("expected an error for a malformed payload")
		}
	})
}
