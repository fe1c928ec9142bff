package session

import (
	"context"
	"sync"
	"time"

	"uelco_jobs/internal/domain"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Manager hands out sessions by token. A session is created on first use of a
// token (loading the worksheet) and discarded after its expiration window, so
// an expired token simply starts a fresh session on the next request.
type Manager struct {
	store      domain.RecordStore
	logger     *zap.Logger
	cache      *gocache.Cache
	expiration time.Duration
	mu         sync.Mutex
}

func NewManager(store domain.RecordStore, expiration, cleanupInterval time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		store:      store,
		logger:     logger,
		cache:      gocache.New(expiration, cleanupInterval),
		expiration: expiration,
	}
}

// Get returns the session for the token, creating one if needed. Each use
// slides the expiration window forward.
func (m *Manager) Get(ctx context.Context, token string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.cache.Get(token); ok {
		sess := v.(*Session)
		m.cache.Set(token, sess, m.expiration)
		return sess, nil
	}

	sess, err := New(ctx, m.store, m.logger)
	if err != nil {
		return nil, err
	}
	m.cache.Set(token, sess, m.expiration)
	m.logger.Info("session started", zap.String("token", maskToken(token)))
	return sess, nil
}

// maskToken keeps tokens out of the logs in the clear.
func maskToken(token string) string {
	if len(token) <= 4 {
		return "****"
	}
	return token[:4] + "****"
}
