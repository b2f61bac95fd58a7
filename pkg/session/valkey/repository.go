package sessionvalkey

import (
	"context"
	"errors"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/openkcm/login-gateway/pkg/session"
)

const objectTypeSession = "session"

var (
	ErrGetSession    = errors.New("getting session from store")
	ErrStoreSession  = errors.New("setting session into storage")
	ErrDeleteSession = errors.New("deleting session from storage")
)

// Repository keeps sessions in Valkey. Keys expire together with the session.
type Repository struct {
	store *store
}

var _ session.Repository = (*Repository)(nil)

func NewRepository(valkeyClient valkey.Client, prefix string) *Repository {
	return &Repository{
		store: newStore(valkeyClient, prefix),
	}
}

func (r *Repository) LoadSession(ctx context.Context, sessionID string) (session.Session, error) {
	var s session.Session
	if err := r.store.Get(ctx, objectTypeSession, sessionID, &s); err != nil {
		return session.Session{}, errors.Join(ErrGetSession, err)
	}

	return s, nil
}

func (r *Repository) StoreSession(ctx context.Context, s session.Session) error {
	if err := r.store.Set(ctx, objectTypeSession, s.ID, s, time.Until(s.Expiry)); err != nil {
		return errors.Join(ErrStoreSession, err)
	}

	return nil
}

func (r *Repository) DeleteSession(ctx context.Context, sessionID string) error {
	if err := r.store.Delete(ctx, objectTypeSession, sessionID); err != nil {
		return errors.Join(ErrDeleteSession, err)
	}

	return nil
}

// DeleteExpired is a no-op; Valkey evicts keys when their TTL runs out.
func (r *Repository) DeleteExpired(context.Context) (int64, error) {
	return 0, nil
}
