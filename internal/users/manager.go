// Package users layers registration, login and membership rules on top of
// the generic entity store.
package users

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/luyao-shop/storefront/internal/bus"
	"github.com/luyao-shop/storefront/internal/domain"
	"github.com/luyao-shop/storefront/internal/kv"
	"github.com/luyao-shop/storefront/internal/store"
)

const storageKey = "users"

type Manager struct {
	users  *store.Collection[domain.User, *domain.User]
	bus    *bus.Bus
	logger *slog.Logger
}

func NewManager(ctx context.Context, adapter kv.Adapter, b *bus.Bus, logger *slog.Logger) (*Manager, error) {
	users, err := store.New[domain.User](ctx, store.Config{
		Key:      storageKey,
		Kind:     "user",
		Event:    domain.EventUsersUpdated,
		IDPrefix: "user",
	}, adapter, b, logger)
	if err != nil {
		return nil, err
	}
	return &Manager{users: users, bus: b, logger: logger}, nil
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Avatar   string
}

func (m *Manager) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if in.Name == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, &domain.ValidationError{Field: "email", Reason: "must be a valid address"}
	}
	if in.Password == "" {
		return nil, &domain.ValidationError{Field: "password", Reason: "must not be empty"}
	}
	if _, ok := m.GetByEmail(in.Email); ok {
		return nil, &domain.ConflictError{Reason: "email already registered"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return m.users.Add(ctx, domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Phone:        in.Phone,
		Avatar:       in.Avatar,
		Status:       domain.UserStatusActive,
		Level:        domain.LevelRegular,
		Role:         domain.RoleUser,
	})
}

// Login authenticates against the stored bcrypt hash, stamps lastLogin and
// binds the user to the session. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (m *Manager) Login(ctx context.Context, sess *Session, email, password string) (*domain.User, error) {
	u, ok := m.GetByEmail(email)
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if u.Status != domain.UserStatusActive {
		return nil, domain.ErrAccountDisabled
	}

	now := time.Now().UTC()
	updated, err := m.users.Update(ctx, u.ID, func(p *domain.User) {
		p.LastLogin = &now
	})
	if err != nil {
		return nil, err
	}

	sess.set(ctx, updated)
	m.bus.Publish(domain.EventUserLoggedIn, domain.Change{Action: domain.ActionLogin, Entity: *updated})
	return updated, nil
}

func (m *Manager) Logout(ctx context.Context, sess *Session) {
	current := sess.Current()
	sess.clear(ctx)

	var entity any
	if current != nil {
		entity = *current
	}
	m.bus.Publish(domain.EventUserLoggedOut, domain.Change{Action: domain.ActionLogout, Entity: entity})
}

func (m *Manager) All() []domain.User { return m.users.All() }

func (m *Manager) Len() int { return m.users.Len() }

func (m *Manager) Get(id string) (*domain.User, error) {
	u, ok := m.users.Get(id)
	if !ok {
		return nil, &domain.NotFoundError{Kind: "user", ID: id}
	}
	return u, nil
}

func (m *Manager) GetByEmail(email string) (*domain.User, bool) {
	matches := m.users.Find(func(u *domain.User) bool {
		return u.Email == email
	})
	if len(matches) == 0 {
		return nil, false
	}
	return &matches[0], true
}

// Search matches the keyword against name, email and phone.
func (m *Manager) Search(keyword string) []domain.User {
	kw := strings.ToLower(keyword)
	return m.users.Find(func(u *domain.User) bool {
		return strings.Contains(strings.ToLower(u.Name), kw) ||
			strings.Contains(strings.ToLower(u.Email), kw) ||
			strings.Contains(u.Phone, keyword)
	})
}

func (m *Manager) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	return m.users.Update(ctx, id, func(u *domain.User) {
		if patch.Name != nil {
			u.Name = *patch.Name
		}
		if patch.Phone != nil {
			u.Phone = *patch.Phone
		}
		if patch.Avatar != nil {
			u.Avatar = *patch.Avatar
		}
		if patch.Status != nil {
			u.Status = *patch.Status
		}
	})
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.users.Remove(ctx, id)
}

// AddOrderStats records one more order against the user: totalOrders,
// totalSpent and the derived membership level change in a single patch.
func (m *Manager) AddOrderStats(ctx context.Context, id string, orderAmount int64) (*domain.User, error) {
	return m.users.Update(ctx, id, func(u *domain.User) {
		u.TotalOrders++
		u.TotalSpent += orderAmount
		u.Level = domain.LevelFor(u.TotalSpent)
	})
}

// PromoteToAdmin grants the admin role; used when an admin application is
// approved.
func (m *Manager) PromoteToAdmin(ctx context.Context, id string) (*domain.User, error) {
	return m.users.Update(ctx, id, func(u *domain.User) {
		u.Role = domain.RoleAdmin
	})
}
