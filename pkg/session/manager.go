package session

import (
	"context"
	"crypto/sha512"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/login-gateway/internal/config"
	"github.com/openkcm/login-gateway/internal/serviceerr"
)

type Manager struct {
	sessions Repository
	codec    *securecookie.SecureCookie

	cookieTemplate  config.CookieTemplate
	sessionDuration time.Duration

	now func() time.Time
}

// NewManager creates a session manager. The secret signs the session ID cookie;
// it is stretched so that short secrets still yield a full-size HMAC key.
func NewManager(cfg *config.Session, secret []byte, sessions Repository) (*Manager, error) {
	if len(secret) == 0 {
		return nil, errors.New("session secret must not be empty")
	}

	if cfg.Duration <= 0 {
		return nil, fmt.Errorf("invalid session duration: %s", cfg.Duration)
	}

	hashKey := sha512.Sum512(secret)
	codec := securecookie.New(hashKey[:], nil)
	codec.MaxAge(int(cfg.Duration.Seconds()))

	return &Manager{
		sessions:        sessions,
		codec:           codec,
		cookieTemplate:  cfg.Cookie,
		sessionDuration: cfg.Duration,
		now:             time.Now,
	}, nil
}

// Load returns the session referenced by the request cookie. A missing, tampered
// or expired reference yields a fresh session that is not stored until Save.
func (m *Manager) Load(ctx context.Context, r *http.Request) *Session {
	cookie, err := r.Cookie(m.cookieTemplate.Name)
	if err != nil {
		return m.newSession()
	}

	var sessionID string
	if err := m.codec.Decode(m.cookieTemplate.Name, cookie.Value, &sessionID); err != nil {
		slogctx.Debug(ctx, "Discarding session cookie", "error", err)
		return m.newSession()
	}

	s, err := m.sessions.LoadSession(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, serviceerr.ErrNotFound) {
			slogctx.Warn(ctx, "Failed to load session; starting a new one", "error", err)
		}

		return m.newSession()
	}

	if s.Expired(m.now()) {
		if err := m.sessions.DeleteSession(ctx, s.ID); err != nil {
			slogctx.Warn(ctx, "Failed to delete expired session", "error", err)
		}

		return m.newSession()
	}

	return &s
}

// Current returns the session attached to the request context.
func (m *Manager) Current(ctx context.Context) (*Session, error) {
	s, ok := FromContext(ctx)
	if !ok {
		return nil, ErrNoSession
	}

	return s, nil
}

// Save stores the session, extends its expiry and sets the session cookie.
// It must be called before the response header is written.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	s.Expiry = m.now().Add(m.sessionDuration)

	if err := m.sessions.StoreSession(ctx, *s); err != nil {
		return errors.Join(serviceerr.ErrSessionStore, err)
	}

	cookie, err := m.MakeSessionCookie(ctx, s.ID)
	if err != nil {
		return fmt.Errorf("making session cookie: %w", err)
	}

	http.SetCookie(w, cookie)

	return nil
}

// MakeSessionCookie signs the session ID into a cookie built from the template.
func (m *Manager) MakeSessionCookie(ctx context.Context, sessionID string) (*http.Cookie, error) {
	value, err := m.codec.Encode(m.cookieTemplate.Name, sessionID)
	if err != nil {
		return nil, fmt.Errorf("encoding session id: %w", err)
	}

	sessionCookie := m.cookieTemplate.ToCookie(value)

	if err := sessionCookie.Valid(); err != nil {
		return nil, fmt.Errorf("invalid session cookie: %w", err)
	}

	if !sessionCookie.Secure {
		slogctx.Debug(ctx, "Session cookie is not marked as Secure; this is not recommended in production environments")
	}
	if !sessionCookie.HttpOnly {
		slogctx.Warn(ctx, "Session cookie is not marked as HttpOnly; this is not recommended in production environments")
	}

	return sessionCookie, nil
}

// Middleware attaches the request's session to the context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.Load(r.Context(), r)
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), s)))
	})
}

func (m *Manager) newSession() *Session {
	return &Session{ID: newSessionID()}
}
