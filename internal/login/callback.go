// Package login completes the authorization-code redirect flow on the
// server side and tells the rendering layer whether a session is logged in.
package login

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/login-gateway/internal/serviceerr"
	"github.com/openkcm/login-gateway/pkg/session"
)

const (
	ParamAccessToken  = "accessToken"
	ParamRefreshToken = "refreshToken"
	ParamState        = "state"
)

// Sessions is what the callback needs from the session layer: the session of
// the current request and a way to persist it before the response is written.
type Sessions interface {
	Current(ctx context.Context) (*session.Session, error)
	Save(ctx context.Context, w http.ResponseWriter, s *session.Session) error
}

// Complete writes the token material from the callback query into the session and
// returns the decoded destination. The session is left untouched when the state
// cannot be decoded.
func Complete(s *session.Session, query url.Values) (location string, _ error) {
	location, err := DecodeState(lastValue(query, ParamState))
	if err != nil {
		return "", err
	}

	s.SetTokens(lastValue(query, ParamAccessToken), lastValue(query, ParamRefreshToken))

	return location, nil
}

// Callback handles the identity provider's redirect back to the application.
type Callback struct {
	sessions Sessions
}

var _ http.Handler = (*Callback)(nil)

func NewCallback(sessions Sessions) *Callback {
	return &Callback{sessions: sessions}
}

func (c *Callback) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slogctx.Debug(ctx, "Callback() called")
	defer slogctx.Debug(ctx, "Callback() completed")

	s, err := c.sessions.Current(ctx)
	if err != nil {
		slogctx.Error(ctx, "Failed to get the session", "error", err)
		writeError(ctx, w, serviceerr.ErrUnknown)

		return
	}

	location, err := Complete(s, r.URL.Query())
	if err != nil {
		slogctx.Error(ctx, "Failed to decode the state", "error", err)
		writeError(ctx, w, err)

		return
	}

	if err := c.sessions.Save(ctx, w, s); err != nil {
		slogctx.Error(ctx, "Failed to save the session", "error", err)
		writeError(ctx, w, err)

		return
	}

	slogctx.Debug(ctx, "Redirecting user", "to", location)

	// http.Redirect would rewrite relative locations and add a body.
	w.Header().Set("Location", location)
	w.WriteHeader(http.StatusMovedPermanently)
}

type errorModel struct {
	Error            string  `json:"error"`
	ErrorDescription *string `json:"error_description,omitempty"`
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	serviceErr := serviceerr.From(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(serviceErr.HTTPStatus())

	if err := json.NewEncoder(w).Encode(errorModel{
		Error:            string(serviceErr.Err),
		ErrorDescription: &serviceErr.Description,
	}); err != nil {
		slogctx.Warn(ctx, "Failed to write the error response", "error", err)
	}
}

// lastValue returns the last value of a repeated query parameter, or "".
func lastValue(query url.Values, key string) string {
	values := query[key]
	if len(values) == 0 {
		return ""
	}

	return values[len(values)-1]
}
