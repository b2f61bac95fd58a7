// Package sessionmemory keeps sessions in process memory. It suits local
// development and single-replica deployments; sessions do not survive restarts.
package sessionmemory

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/openkcm/login-gateway/internal/serviceerr"
	"github.com/openkcm/login-gateway/pkg/session"
)

type Repository struct {
	cache *cache.Cache
}

var _ session.Repository = (*Repository)(nil)

// NewRepository creates a repository whose expired entries are purged every cleanupInterval.
func NewRepository(cleanupInterval time.Duration) *Repository {
	return &Repository{
		cache: cache.New(cache.NoExpiration, cleanupInterval),
	}
}

func (r *Repository) LoadSession(_ context.Context, sessionID string) (session.Session, error) {
	v, ok := r.cache.Get(sessionID)
	if !ok {
		return session.Session{}, serviceerr.ErrNotFound
	}

	s, ok := v.(session.Session)
	if !ok {
		return session.Session{}, fmt.Errorf("unexpected value of type %T in session cache", v)
	}

	return s, nil
}

func (r *Repository) StoreSession(_ context.Context, s session.Session) error {
	ttl := time.Until(s.Expiry)
	if ttl <= 0 {
		return fmt.Errorf("session %q already expired", s.ID)
	}

	r.cache.Set(s.ID, s, ttl)

	return nil
}

func (r *Repository) DeleteSession(_ context.Context, sessionID string) error {
	r.cache.Delete(sessionID)
	return nil
}

func (r *Repository) DeleteExpired(context.Context) (int64, error) {
	before := r.cache.ItemCount()
	r.cache.DeleteExpired()

	return int64(before - r.cache.ItemCount()), nil
}
