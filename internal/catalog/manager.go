// Package catalog layers the product business rules on top of the generic
// entity store.
package catalog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/luyao-shop/storefront/internal/bus"
	"github.com/luyao-shop/storefront/internal/domain"
	"github.com/luyao-shop/storefront/internal/kv"
	"github.com/luyao-shop/storefront/internal/store"
)

const storageKey = "products"

type Manager struct {
	products *store.Collection[domain.Product, *domain.Product]
	logger   *slog.Logger
}

func NewManager(ctx context.Context, adapter kv.Adapter, b *bus.Bus, logger *slog.Logger) (*Manager, error) {
	products, err := store.New[domain.Product](ctx, store.Config{
		Key:      storageKey,
		Kind:     "product",
		Event:    domain.EventProductsUpdated,
		IDPrefix: "prod",
	}, adapter, b, logger)
	if err != nil {
		return nil, err
	}
	return &Manager{products: products, logger: logger}, nil
}

func (m *Manager) All() []domain.Product { return m.products.All() }

func (m *Manager) Len() int { return m.products.Len() }

func (m *Manager) Get(id string) (*domain.Product, error) {
	p, ok := m.products.Get(id)
	if !ok {
		return nil, &domain.NotFoundError{Kind: "product", ID: id}
	}
	return p, nil
}

// Active returns the products visible to shoppers.
func (m *Manager) Active() []domain.Product {
	return m.products.Find(func(p *domain.Product) bool {
		return p.Status == domain.ProductStatusActive
	})
}

func (m *Manager) ByCategory(category domain.ProductCategory) []domain.Product {
	return m.products.Find(func(p *domain.Product) bool {
		return p.Category == category
	})
}

// Search matches the keyword against name, description and category,
// case-insensitively.
func (m *Manager) Search(keyword string) []domain.Product {
	kw := strings.ToLower(keyword)
	return m.products.Find(func(p *domain.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), kw) ||
			strings.Contains(strings.ToLower(p.Description), kw) ||
			strings.Contains(strings.ToLower(string(p.Category)), kw)
	})
}

func (m *Manager) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if p.Name == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if p.Price < 0 {
		return nil, &domain.ValidationError{Field: "price", Reason: "must not be negative"}
	}
	if p.Stock < 0 {
		return nil, &domain.ValidationError{Field: "stock", Reason: "must not be negative"}
	}
	if p.Status == "" {
		p.Status = domain.ProductStatusActive
	}
	return m.products.Add(ctx, p)
}

func (m *Manager) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	if patch.Price != nil && *patch.Price < 0 {
		return nil, &domain.ValidationError{Field: "price", Reason: "must not be negative"}
	}
	if patch.Stock != nil && *patch.Stock < 0 {
		return nil, &domain.ValidationError{Field: "stock", Reason: "must not be negative"}
	}

	return m.products.Update(ctx, id, func(p *domain.Product) {
		if patch.Name != nil {
			p.Name = *patch.Name
		}
		if patch.Category != nil {
			p.Category = *patch.Category
		}
		if patch.Price != nil {
			p.Price = *patch.Price
		}
		if patch.OriginalPrice != nil {
			p.OriginalPrice = *patch.OriginalPrice
		}
		if patch.Stock != nil {
			p.Stock = *patch.Stock
		}
		if patch.Status != nil {
			p.Status = *patch.Status
		}
		if patch.Description != nil {
			p.Description = *patch.Description
		}
		if patch.Images != nil {
			p.Images = *patch.Images
		}
		if patch.Features != nil {
			p.Features = *patch.Features
		}
		if patch.Rating != nil {
			p.Rating = *patch.Rating
		}
		if patch.ReviewCount != nil {
			p.ReviewCount = *patch.ReviewCount
		}
	})
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.products.Remove(ctx, id)
}

// ToggleStatus flips a product between active and inactive. Draft products
// go active on their first toggle.
func (m *Manager) ToggleStatus(ctx context.Context, id string) (*domain.Product, error) {
	return m.products.Update(ctx, id, func(p *domain.Product) {
		if p.Status == domain.ProductStatusActive {
			p.Status = domain.ProductStatusInactive
		} else {
			p.Status = domain.ProductStatusActive
		}
	})
}

func (m *Manager) UpdateStock(ctx context.Context, id string, stock int) (*domain.Product, error) {
	if stock < 0 {
		return nil, &domain.ValidationError{Field: "stock", Reason: "must not be negative"}
	}
	return m.products.Update(ctx, id, func(p *domain.Product) {
		p.Stock = stock
	})
}

// RecordSale increments salesCount and decrements stock in one update, so
// both fields change together or not at all. Selling more than the stock on
// hand is rejected; stock never goes negative.
func (m *Manager) RecordSale(ctx context.Context, id string, quantity int) (*domain.Product, error) {
	if quantity <= 0 {
		return nil, &domain.ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	return m.products.UpdateErr(ctx, id, func(p *domain.Product) error {
		if p.Stock < quantity {
			return domain.ErrInsufficientStock
		}
		p.SalesCount += quantity
		p.Stock -= quantity
		return nil
	})
}
