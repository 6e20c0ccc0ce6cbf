package users

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/luyao-shop/storefront/internal/bus"
	"github.com/luyao-shop/storefront/internal/domain"
	"github.com/luyao-shop/storefront/internal/kv"
)

func newTestManager(t *testing.T) (*Manager, *Session, *bus.Bus, kv.Adapter) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	adapter := kv.NewMemory()
	b := bus.New(logger)

	m, err := NewManager(context.Background(), adapter, b, logger)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}
	sess, err := NewSession(context.Background(), adapter, logger)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return m, sess, b, adapter
}

func register(t *testing.T, m *Manager, email, password string) *domain.User {
	t.Helper()
	u, err := m.Register(context.Background(), RegisterInput{
		Name:     "张小明",
		Email:    email,
		Password: password,
		Phone:    "13800138001",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	return u
}

func TestManager_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns defaults and hashes the password", func(t *testing.T) {
		m, _, _, _ := newTestManager(t)

		u := register(t, m, "zhang@example.com", "123456")

		if u.Role != domain.RoleUser {
			t.Errorf("expected role user, got %s", u.Role)
		}
		if u.Level != domain.LevelRegular {
			t.Errorf("expected 普通会员, got %s", u.Level)
		}
		if u.Status != domain.UserStatusActive {
			t.Errorf("expected active status, got %s", u.Status)
		}
		if u.TotalOrders != 0 || u.TotalSpent != 0 {
			t.Errorf("expected zero totals, got %d/%d", u.TotalOrders, u.TotalSpent)
		}
		if u.PasswordHash == "123456" || u.PasswordHash == "" {
			t.Error("expected password to be stored as a hash")
		}
	})

	t.Run("duplicate email conflicts and leaves the collection unchanged", func(t *testing.T) {
		m, _, _, _ := newTestManager(t)
		register(t, m, "zhang@example.com", "123456")
		before := m.All()

		var conflict *domain.ConflictError
		_, err := m.Register(ctx, RegisterInput{Name: "李小红", Email: "zhang@example.com", Password: "abcdef"})
		if !errors.As(err, &conflict) {
			t.Fatalf("expected conflict error, got %v", err)
		}

		after := m.All()
		if len(after) != len(before) {
			t.Errorf("collection length changed: %d vs %d", len(after), len(before))
		}
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		m, _, _, _ := newTestManager(t)

		var ve *domain.ValidationError
		_, err := m.Register(ctx, RegisterInput{Name: "a", Email: "not-an-email", Password: "x"})
		if !errors.As(err, &ve) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestManager_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success stamps lastLogin and binds the session", func(t *testing.T) {
		m, sess, b, _ := newTestManager(t)
		register(t, m, "zhang@example.com", "123456")

		var loggedIn bool
		b.Subscribe(domain.EventUserLoggedIn, func(event string, payload any) {
			loggedIn = true
		})

		u, err := m.Login(ctx, sess, "zhang@example.com", "123456")
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if u.LastLogin == nil {
			t.Error("expected lastLogin to be set")
		}
		if current := sess.Current(); current == nil || current.ID != u.ID {
			t.Error("expected session to hold the logged-in user")
		}
		if !loggedIn {
			t.Error("expected userLoggedIn event")
		}
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		m, sess, _, _ := newTestManager(t)
		register(t, m, "zhang@example.com", "123456")

		_, errWrong := m.Login(ctx, sess, "zhang@example.com", "wrong")
		_, errUnknown := m.Login(ctx, sess, "nobody@example.com", "123456")

		if !errors.Is(errWrong, domain.ErrInvalidCredentials) {
			t.Errorf("expected invalid credentials, got %v", errWrong)
		}
		if !errors.Is(errUnknown, domain.ErrInvalidCredentials) {
			t.Errorf("expected invalid credentials, got %v", errUnknown)
		}
	})

	t.Run("disabled account is rejected", func(t *testing.T) {
		m, sess, _, _ := newTestManager(t)
		u := register(t, m, "zhang@example.com", "123456")

		disabled := domain.UserStatusDisabled
		if _, err := m.Update(ctx, u.ID, domain.UserPatch{Status: &disabled}); err != nil {
			t.Fatalf("update failed: %v", err)
		}

		if _, err := m.Login(ctx, sess, "zhang@example.com", "123456"); !errors.Is(err, domain.ErrAccountDisabled) {
			t.Errorf("expected account disabled, got %v", err)
		}
	})

	t.Run("last login wins the session", func(t *testing.T) {
		m, sess, _, _ := newTestManager(t)
		register(t, m, "zhang@example.com", "123456")
		second := register(t, m, "li@example.com", "abcdef")

		if _, err := m.Login(ctx, sess, "zhang@example.com", "123456"); err != nil {
			t.Fatalf("first login failed: %v", err)
		}
		if _, err := m.Login(ctx, sess, "li@example.com", "abcdef"); err != nil {
			t.Fatalf("second login failed: %v", err)
		}

		if current := sess.Current(); current == nil || current.ID != second.ID {
			t.Error("expected session to hold the most recent login")
		}
	})

	t.Run("session survives a restart", func(t *testing.T) {
		m, sess, _, adapter := newTestManager(t)
		u := register(t, m, "zhang@example.com", "123456")
		if _, err := m.Login(ctx, sess, "zhang@example.com", "123456"); err != nil {
			t.Fatalf("login failed: %v", err)
		}

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		restored, err := NewSession(ctx, adapter, logger)
		if err != nil {
			t.Fatalf("failed to restore session: %v", err)
		}
		if current := restored.Current(); current == nil || current.ID != u.ID {
			t.Error("expected restored session to hold the user")
		}
	})
}

func TestManager_Logout(t *testing.T) {
	ctx := context.Background()
	m, sess, b, adapter := newTestManager(t)
	register(t, m, "zhang@example.com", "123456")

	if _, err := m.Login(ctx, sess, "zhang@example.com", "123456"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	var loggedOut bool
	b.Subscribe(domain.EventUserLoggedOut, func(event string, payload any) {
		loggedOut = true
	})

	m.Logout(ctx, sess)

	if sess.Current() != nil {
		t.Error("expected session to be cleared")
	}
	if !loggedOut {
		t.Error("expected userLoggedOut event")
	}
	if _, ok, _ := adapter.Load(ctx, sessionKey); ok {
		t.Error("expected persisted session to be removed")
	}
}

func TestManager_AddOrderStats(t *testing.T) {
	ctx := context.Background()
	m, _, _, _ := newTestManager(t)
	u := register(t, m, "zhang@example.com", "123456")

	steps := []struct {
		amount int64
		level  domain.UserLevel
		orders int
		spent  int64
	}{
		{1200, domain.LevelSilver, 1, 1200},
		{4800, domain.LevelGold, 2, 6000},
		{5000, domain.LevelDiamond, 3, 11000},
	}

	for _, step := range steps {
		got, err := m.AddOrderStats(ctx, u.ID, step.amount)
		if err != nil {
			t.Fatalf("stats update failed: %v", err)
		}
		if got.Level != step.level {
			t.Errorf("after spending %d expected level %s, got %s", step.spent, step.level, got.Level)
		}
		if got.TotalOrders != step.orders || got.TotalSpent != step.spent {
			t.Errorf("unexpected totals: %d orders, %d spent", got.TotalOrders, got.TotalSpent)
		}
	}
}

func TestManager_PromoteToAdmin(t *testing.T) {
	ctx := context.Background()
	m, _, _, _ := newTestManager(t)
	u := register(t, m, "zhang@example.com", "123456")

	promoted, err := m.PromoteToAdmin(ctx, u.ID)
	if err != nil {
		t.Fatalf("promote failed: %v", err)
	}
	if promoted.Role != domain.RoleAdmin {
		t.Errorf("expected admin role, got %s", promoted.Role)
	}
}

func TestLevelFor(t *testing.T) {
	cases := []struct {
		spent int64
		want  domain.UserLevel
	}{
		{0, domain.LevelRegular},
		{999, domain.LevelRegular},
		{1000, domain.LevelSilver},
		{4999, domain.LevelSilver},
		{5000, domain.LevelGold},
		{9999, domain.LevelGold},
		{10000, domain.LevelDiamond},
		{50000, domain.LevelDiamond},
	}
	for _, c := range cases {
		if got := domain.LevelFor(c.spent); got != c.want {
			t.Errorf("LevelFor(%d) = %s, want %s", c.spent, got, c.want)
		}
	}
}
