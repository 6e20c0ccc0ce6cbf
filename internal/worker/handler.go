// Package worker consumes relayed storefront events and raises low-stock
// alerts for products that fall below the configured threshold.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/luyao-shop/storefront/internal/domain"
	"github.com/luyao-shop/storefront/internal/messaging"
)

type AlertHandler struct {
	threshold int
	logger    *slog.Logger
}

func NewAlertHandler(threshold int, logger *slog.Logger) *AlertHandler {
	return &AlertHandler{threshold: threshold, logger: logger}
}

// Handle inspects one relayed event. Only product add/update events can
// trigger an alert; everything else passes through. Malformed payloads are
// an error so the consumer surfaces them instead of silently skipping.
func (h *AlertHandler) Handle(ctx context.Context, payload []byte) error {
	var env messaging.Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return fmt.Errorf("unmarshal event envelope: %w", err)
	}

	if env.Event != domain.EventProductsUpdated || env.Action == domain.ActionDelete {
		return nil
	}
	if len(env.Entity) == 0 {
		return nil
	}

	var p domain.Product
	if err := json.Unmarshal(env.Entity, &p); err != nil {
		return fmt.Errorf("unmarshal product entity: %w", err)
	}

	if p.Status == domain.ProductStatusActive && p.Stock <= h.threshold {
		h.logger.Warn("low stock alert",
			"product_id", p.ID, "name", p.Name, "stock", p.Stock, "threshold", h.threshold)
	}
	return nil
}
