package sessionmock

import (
	"context"
	"sync"
	"time"

	"github.com/openkcm/login-gateway/internal/serviceerr"
	"github.com/openkcm/login-gateway/pkg/session"
)

type Repository struct {
	mu       sync.Mutex
	Sessions map[string]session.Session
	Stores   int
	Deletes  int

	loadSessionErr, storeSessionErr, deleteExpiredErr error
}

var _ session.Repository = (*Repository)(nil)

func NewInMemRepository(loadSessionErr, storeSessionErr, deleteExpiredErr error) *Repository {
	return &Repository{
		Sessions:         make(map[string]session.Session),
		loadSessionErr:   loadSessionErr,
		storeSessionErr:  storeSessionErr,
		deleteExpiredErr: deleteExpiredErr,
	}
}

func (r *Repository) Add(s session.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Sessions[s.ID] = s
}

func (r *Repository) Get(sessionID string) (session.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.Sessions[sessionID]
	return s, ok
}

func (r *Repository) LoadSession(_ context.Context, sessionID string) (session.Session, error) {
	if r.loadSessionErr != nil {
		return session.Session{}, r.loadSessionErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.Sessions[sessionID]; ok {
		return s, nil
	}

	return session.Session{}, serviceerr.ErrNotFound
}

func (r *Repository) StoreSession(_ context.Context, s session.Session) error {
	if r.storeSessionErr != nil {
		return r.storeSessionErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.Sessions[s.ID] = s
	r.Stores++

	return nil
}

func (r *Repository) DeleteSession(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.Sessions, sessionID)
	r.Deletes++

	return nil
}

func (r *Repository) DeleteExpired(_ context.Context) (int64, error) {
	if r.deleteExpiredErr != nil {
		return 0, r.deleteExpiredErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()

	var n int64
	for id, s := range r.Sessions {
		if s.Expired(now) {
			delete(r.Sessions, id)
			n++
		}
	}

	return n, nil
}
