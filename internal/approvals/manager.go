// Package approvals manages admin-approval requests: users apply for the
// admin role and an existing admin reviews the application.
package approvals

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/luyao-shop/storefront/internal/bus"
	"github.com/luyao-shop/storefront/internal/domain"
	"github.com/luyao-shop/storefront/internal/kv"
	"github.com/luyao-shop/storefront/internal/store"
)

const storageKey = "adminApplications"

// RolePromoter grants the admin role to a user.
type RolePromoter interface {
	PromoteToAdmin(ctx context.Context, userID string) (*domain.User, error)
}

type Manager struct {
	applications *store.Collection[domain.AdminApplication, *domain.AdminApplication]
	promoter     RolePromoter
	bus          *bus.Bus
	logger       *slog.Logger
}

func NewManager(ctx context.Context, adapter kv.Adapter, b *bus.Bus, promoter RolePromoter, logger *slog.Logger) (*Manager, error) {
	applications, err := store.New[domain.AdminApplication](ctx, store.Config{
		Key:      storageKey,
		Kind:     "application",
		IDPrefix: "app",
	}, adapter, b, logger)
	if err != nil {
		return nil, err
	}
	return &Manager{
		applications: applications,
		promoter:     promoter,
		bus:          b,
		logger:       logger,
	}, nil
}

type SubmitInput struct {
	UserID string
	Reason string
}

func (m *Manager) Submit(ctx context.Context, in SubmitInput) (*domain.AdminApplication, error) {
	if in.UserID == "" {
		return nil, &domain.ValidationError{Field: "userId", Reason: "must not be empty"}
	}

	app, err := m.applications.Add(ctx, domain.AdminApplication{
		UserID:      in.UserID,
		Reason:      in.Reason,
		Status:      domain.ApplicationStatusPending,
		SubmittedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	m.bus.Publish(domain.EventApplicationSubmitted, domain.Change{Action: domain.ActionAdd, Entity: *app})
	return app, nil
}

func (m *Manager) All() []domain.AdminApplication { return m.applications.All() }

func (m *Manager) Get(id string) (*domain.AdminApplication, error) {
	app, ok := m.applications.Get(id)
	if !ok {
		return nil, &domain.NotFoundError{Kind: "application", ID: id}
	}
	return app, nil
}

func (m *Manager) ByUser(userID string) []domain.AdminApplication {
	return m.applications.Find(func(a *domain.AdminApplication) bool {
		return a.UserID == userID
	})
}

// Review decides an application. Approval promotes the referenced user to
// admin first; if that user no longer exists the review fails and the
// application stays pending.
func (m *Manager) Review(ctx context.Context, id string, approve bool, reviewedBy, feedback string) (*domain.AdminApplication, error) {
	app, ok := m.applications.Get(id)
	if !ok {
		return nil, &domain.NotFoundError{Kind: "application", ID: id}
	}

	if approve {
		if _, err := m.promoter.PromoteToAdmin(ctx, app.UserID); err != nil {
			return nil, fmt.Errorf("promote user %s: %w", app.UserID, err)
		}
	}

	status := domain.ApplicationStatusRejected
	if approve {
		status = domain.ApplicationStatusApproved
	}

	updated, err := m.applications.Update(ctx, id, func(a *domain.AdminApplication) {
		now := time.Now().UTC()
		a.Status = status
		a.ReviewedAt = &now
		a.ReviewedBy = reviewedBy
		a.Feedback = feedback
	})
	if err != nil {
		return nil, err
	}

	m.bus.Publish(domain.EventApplicationReviewed, domain.Change{Action: domain.ActionUpdate, Entity: *updated})
	return updated, nil
}
