package session

import "context"

type Repository interface {
	LoadSession(ctx context.Context, sessionID string) (Session, error)
	StoreSession(ctx context.Context, session Session) error
	// DeleteSession removes the session. Unknown IDs are not an error.
	DeleteSession(ctx context.Context, sessionID string) error
	// DeleteExpired removes expired sessions and returns how many were removed.
	// Stores with native expiry return zero.
	DeleteExpired(ctx context.Context) (int64, error)
}
