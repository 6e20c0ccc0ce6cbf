// Package settings holds the flat site configuration, persisted as one
// document under its own storage key.
package settings

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/luyao-shop/storefront/internal/domain"
	"github.com/luyao-shop/storefront/internal/kv"
)

const storageKey = "settings"

type Manager struct {
	adapter kv.Adapter
	logger  *slog.Logger

	mu      sync.RWMutex
	current domain.Settings
}

// NewManager loads the persisted settings, falling back to (and persisting)
// the given defaults when nothing was stored yet.
func NewManager(ctx context.Context, adapter kv.Adapter, defaults domain.Settings, logger *slog.Logger) (*Manager, error) {
	m := &Manager{adapter: adapter, logger: logger, current: defaults}

	data, ok, err := adapter.Load(ctx, storageKey)
	if err != nil {
		return nil, err
	}
	if ok {
		if err := json.Unmarshal(data, &m.current); err != nil {
			return nil, err
		}
		return m, nil
	}

	m.persist(ctx)
	return m, nil
}

func (m *Manager) Get() domain.Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *Manager) Update(ctx context.Context, s domain.Settings) (domain.Settings, error) {
	if s.SiteName == "" {
		return domain.Settings{}, &domain.ValidationError{Field: "siteName", Reason: "must not be empty"}
	}
	if s.LowStockAlert < 0 {
		return domain.Settings{}, &domain.ValidationError{Field: "lowStockAlert", Reason: "must not be negative"}
	}
	if s.TaxRate < 0 {
		return domain.Settings{}, &domain.ValidationError{Field: "taxRate", Reason: "must not be negative"}
	}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()

	m.persist(ctx)
	return s, nil
}

func (m *Manager) persist(ctx context.Context) {
	m.mu.RLock()
	data, err := json.Marshal(m.current)
	m.mu.RUnlock()
	if err != nil {
		m.logger.Error("failed to encode settings", "error", err)
		return
	}
	if err := m.adapter.Save(ctx, storageKey, data); err != nil {
		m.logger.Error("failed to persist settings", "error", err)
	}
}
