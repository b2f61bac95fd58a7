package sessionsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openkcm/login-gateway/internal/serviceerr"
	"github.com/openkcm/login-gateway/pkg/session"
)

// Repository keeps sessions in PostgreSQL. Expired rows are invisible to
// LoadSession and removed by DeleteExpired.
type Repository struct {
	db *pgxpool.Pool
}

var _ session.Repository = (*Repository)(nil)

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) LoadSession(ctx context.Context, sessionID string) (s session.Session, _ error) {
	if err := r.db.QueryRow(ctx, `SELECT id, access_token, refresh_token, expiry
FROM sessions
WHERE id = $1
	AND expiry > now();`,
		sessionID,
	).
		Scan(&s.ID, &s.AccessToken, &s.RefreshToken, &s.Expiry); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.Session{}, serviceerr.ErrNotFound
		}

		return session.Session{}, fmt.Errorf("selecting from sessions: %w", err)
	}

	return s, nil
}

func (r *Repository) StoreSession(ctx context.Context, s session.Session) error {
	if _, err := r.db.Exec(
		ctx, `INSERT INTO sessions (id, access_token, refresh_token, expiry)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (id)
	DO UPDATE SET (access_token, refresh_token, expiry) =
		(EXCLUDED.access_token, EXCLUDED.refresh_token, EXCLUDED.expiry);`,
		s.ID, s.AccessToken, s.RefreshToken, s.Expiry,
	); err != nil {
		return fmt.Errorf("inserting into sessions: %w", err)
	}

	return nil
}

func (r *Repository) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1;`, sessionID); err != nil {
		return fmt.Errorf("deleting from sessions: %w", err)
	}

	return nil
}

func (r *Repository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expiry <= now();`)
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}

	return tag.RowsAffected(), nil
}
