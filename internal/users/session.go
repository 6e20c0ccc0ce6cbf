package users

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/luyao-shop/storefront/internal/domain"
	"github.com/luyao-shop/storefront/internal/kv"
)

const sessionKey = "currentUser"

// Session is the single logical login session, owned by the calling layer
// and passed explicitly to the operations that need it. Last login wins.
// The current user is persisted under its own storage key so a restart
// restores the session.
type Session struct {
	adapter kv.Adapter
	logger  *slog.Logger

	mu   sync.RWMutex
	user *domain.User
}

func NewSession(ctx context.Context, adapter kv.Adapter, logger *slog.Logger) (*Session, error) {
	s := &Session{adapter: adapter, logger: logger}

	data, ok, err := adapter.Load(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	if ok {
		var u domain.User
		if err := json.Unmarshal(data, &u); err != nil {
			return nil, err
		}
		s.user = &u
	}
	return s, nil
}

// Current returns a copy of the logged-in user, or nil.
func (s *Session) Current() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) set(ctx context.Context, u *domain.User) {
	s.mu.Lock()
	copied := *u
	s.user = &copied
	s.mu.Unlock()

	data, err := json.Marshal(u)
	if err != nil {
		s.logger.Error("failed to encode session user", "error", err)
		return
	}
	if err := s.adapter.Save(ctx, sessionKey, data); err != nil {
		s.logger.Error("failed to persist session", "error", err)
	}
}

func (s *Session) clear(ctx context.Context) {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	if err := s.adapter.Delete(ctx, sessionKey); err != nil {
		s.logger.Error("failed to clear persisted session", "error", err)
	}
}
