// Package orders owns the order lifecycle: creation, payment, completion and
// cancellation. Cross-manager side effects (sale recording, user statistics)
// go through narrow interfaces wired in main instead of direct manager
// coupling.
package orders

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/luyao-shop/storefront/internal/bus"
	"github.com/luyao-shop/storefront/internal/domain"
	"github.com/luyao-shop/storefront/internal/kv"
	"github.com/luyao-shop/storefront/internal/store"
)

const storageKey = "orders"

// SaleRecorder books a completed sale against a product.
type SaleRecorder interface {
	RecordSale(ctx context.Context, productID string, quantity int) (*domain.Product, error)
}

// StatsUpdater rolls an order amount into a user's statistics.
type StatsUpdater interface {
	AddOrderStats(ctx context.Context, userID string, orderAmount int64) (*domain.User, error)
}

type Manager struct {
	orders *store.Collection[domain.Order, *domain.Order]
	sales  SaleRecorder
	stats  StatsUpdater
	bus    *bus.Bus
	logger *slog.Logger
}

func NewManager(ctx context.Context, adapter kv.Adapter, b *bus.Bus, sales SaleRecorder, stats StatsUpdater, logger *slog.Logger) (*Manager, error) {
	orders, err := store.New[domain.Order](ctx, store.Config{
		Key:   storageKey,
		Kind:  "order",
		NewID: NewOrderID,
	}, adapter, b, logger)
	if err != nil {
		return nil, err
	}
	return &Manager{
		orders: orders,
		sales:  sales,
		stats:  stats,
		bus:    b,
		logger: logger,
	}, nil
}

// NewOrderID builds ids in the ORD<timestamp><random> form.
func NewOrderID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:9])
	return fmt.Sprintf("ORD%d%s", time.Now().UnixMilli(), suffix)
}

type CreateInput struct {
	UserID          string
	Items           []domain.OrderItem
	PaymentMethod   string
	ShippingAddress domain.ShippingAddress
}

// Create validates the line items, fixes totalAmount as the sum of their
// subtotals and stores the order as pending/unpaid. The user statistics
// side effect is best-effort: the order stands even if it fails.
func (m *Manager) Create(ctx context.Context, in CreateInput) (*domain.Order, error) {
	if len(in.Items) == 0 {
		return nil, &domain.ValidationError{Field: "items", Reason: "must not be empty"}
	}

	var total int64
	for i, item := range in.Items {
		if item.ProductID == "" {
			return nil, &domain.ValidationError{Field: fmt.Sprintf("items[%d].productId", i), Reason: "must not be empty"}
		}
		if item.Quantity <= 0 {
			return nil, &domain.ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Reason: "must be positive"}
		}
		if item.Price < 0 {
			return nil, &domain.ValidationError{Field: fmt.Sprintf("items[%d].price", i), Reason: "must not be negative"}
		}
		total += item.Subtotal()
	}

	method := in.PaymentMethod
	if method == "" {
		method = "alipay"
	}

	order, err := m.orders.Add(ctx, domain.Order{
		UserID:          in.UserID,
		Items:           in.Items,
		TotalAmount:     total,
		Status:          domain.OrderStatusPending,
		PaymentStatus:   domain.PaymentStatusUnpaid,
		PaymentMethod:   method,
		ShippingAddress: in.ShippingAddress,
	})
	if err != nil {
		return nil, err
	}

	if order.UserID != "" {
		if _, err := m.stats.AddOrderStats(ctx, order.UserID, order.TotalAmount); err != nil {
			m.logger.Warn("failed to update user statistics for order",
				"order_id", order.ID, "user_id", order.UserID, "error", err)
		}
	}

	m.bus.Publish(domain.EventOrderCreated, domain.Change{Action: domain.ActionAdd, Entity: *order})
	return order, nil
}

func (m *Manager) All() []domain.Order { return m.orders.All() }

func (m *Manager) Len() int { return m.orders.Len() }

func (m *Manager) Get(id string) (*domain.Order, error) {
	o, ok := m.orders.Get(id)
	if !ok {
		return nil, &domain.NotFoundError{Kind: "order", ID: id}
	}
	return o, nil
}

func (m *Manager) ByUser(userID string) []domain.Order {
	return m.orders.Find(func(o *domain.Order) bool {
		return o.UserID == userID
	})
}

var validStatuses = map[domain.OrderStatus]bool{
	domain.OrderStatusPending:    true,
	domain.OrderStatusProcessing: true,
	domain.OrderStatusShipped:    true,
	domain.OrderStatusCompleted:  true,
	domain.OrderStatusCancelled:  true,
}

// UpdateStatus moves the order to the new status. The first transition into
// completed records one sale per line item; re-entering completed never
// double-counts. Sale recording is best-effort once the order itself has
// committed.
func (m *Manager) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if !validStatuses[status] {
		return nil, &domain.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", status)}
	}

	var prior domain.OrderStatus
	order, err := m.orders.Update(ctx, id, func(o *domain.Order) {
		prior = o.Status
		o.Status = status
		if status == domain.OrderStatusCompleted && prior != domain.OrderStatusCompleted {
			now := time.Now().UTC()
			o.CompletedAt = &now
		}
	})
	if err != nil {
		return nil, err
	}

	if status == domain.OrderStatusCompleted && prior != domain.OrderStatusCompleted {
		m.recordSales(ctx, order)
	}

	m.bus.Publish(domain.EventOrderUpdated, domain.Change{Action: domain.ActionUpdate, Entity: *order})
	return order, nil
}

func (m *Manager) recordSales(ctx context.Context, order *domain.Order) {
	for _, item := range order.Items {
		if _, err := m.sales.RecordSale(ctx, item.ProductID, item.Quantity); err != nil {
			m.logger.Warn("failed to record sale for completed order",
				"order_id", order.ID, "product_id", item.ProductID, "quantity", item.Quantity, "error", err)
		}
	}
}

// Cancel rejects orders that are already completed or shipped.
func (m *Manager) Cancel(ctx context.Context, id string, reason string) (*domain.Order, error) {
	order, err := m.orders.UpdateErr(ctx, id, func(o *domain.Order) error {
		if o.Status == domain.OrderStatusCompleted || o.Status == domain.OrderStatusShipped {
			return &domain.InvalidTransitionError{From: o.Status, To: domain.OrderStatusCancelled}
		}
		o.Status = domain.OrderStatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("order cancelled", "order_id", order.ID, "reason", reason)
	m.bus.Publish(domain.EventOrderUpdated, domain.Change{Action: domain.ActionUpdate, Entity: *order})
	return order, nil
}

type PaymentInput struct {
	Method string
}

// ProcessPayment marks the order paid and advances pending orders to
// processing. Paying twice is a conflict.
func (m *Manager) ProcessPayment(ctx context.Context, id string, in PaymentInput) (*domain.Order, error) {
	order, err := m.orders.UpdateErr(ctx, id, func(o *domain.Order) error {
		if o.PaymentStatus == domain.PaymentStatusPaid {
			return domain.ErrAlreadyPaid
		}
		now := time.Now().UTC()
		o.PaymentStatus = domain.PaymentStatusPaid
		o.PaidAt = &now
		if in.Method != "" {
			o.PaymentMethod = in.Method
		}
		if o.Status == domain.OrderStatusPending {
			o.Status = domain.OrderStatusProcessing
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.bus.Publish(domain.EventPaymentProcessed, domain.Change{Action: domain.ActionUpdate, Entity: *order})
	return order, nil
}

type Stats struct {
	Total        int   `json:"total"`
	Pending      int   `json:"pending"`
	Processing   int   `json:"processing"`
	Shipped      int   `json:"shipped"`
	Completed    int   `json:"completed"`
	Cancelled    int   `json:"cancelled"`
	Today        int   `json:"today"`
	TotalRevenue int64 `json:"totalRevenue"`
}

// Stats summarises the order book; revenue counts completed orders only.
func (m *Manager) Stats() Stats {
	var s Stats
	today := time.Now().UTC().Truncate(24 * time.Hour)

	for _, o := range m.orders.All() {
		s.Total++
		switch o.Status {
		case domain.OrderStatusPending:
			s.Pending++
		case domain.OrderStatusProcessing:
			s.Processing++
		case domain.OrderStatusShipped:
			s.Shipped++
		case domain.OrderStatusCompleted:
			s.Completed++
			s.TotalRevenue += o.TotalAmount
		case domain.OrderStatusCancelled:
			s.Cancelled++
		}
		if !o.CreatedAt.UTC().Before(today) {
			s.Today++
		}
	}
	return s
}
