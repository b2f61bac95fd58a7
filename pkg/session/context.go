package session

import (
	"context"
	"errors"
)

// Using an unexported type prevents key collisions from other packages.
type ctxKey string

const sessionKey ctxKey = "session"

var ErrNoSession = errors.New("session not found in context")

// NewContext returns a copy of ctx carrying the session.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext returns the session attached by the middleware.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok && s != nil
}
