// Package page provides the per-request context handed to the page renderer.
package page

import (
	"context"
	"encoding/json"
	"net/http"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/login-gateway/pkg/session"
)

// Context is what the renderer may know about the session.
type Context struct {
	User bool `json:"user"`
}

// Gate decides whether a session counts as logged in.
type Gate func(*session.Session) bool

// Using an unexported type prevents key collisions from other packages.
type contextKey string

const pageContextKey contextKey = "page-context"

// Middleware evaluates the gate against the session attached to the request
// and stores the result for the rendering handlers.
func Middleware(gate Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, _ := session.FromContext(r.Context())
			ctx := context.WithValue(r.Context(), pageContextKey, Context{User: gate(s)})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext returns the page context; requests that did not pass the middleware are anonymous.
func FromContext(ctx context.Context) Context {
	pc, _ := ctx.Value(pageContextKey).(Context)
	return pc
}

// Handler serves the page context as JSON for client-side hydration.
func Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	if err := json.NewEncoder(w).Encode(FromContext(r.Context())); err != nil {
		slogctx.Warn(r.Context(), "Failed to write the page context", "error", err)
	}
}
