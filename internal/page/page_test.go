package page_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openkcm/login-gateway/internal/login"
	"github.com/openkcm/login-gateway/internal/page"
	"github.com/openkcm/login-gateway/pkg/session"
)

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name    string
		session *session.Session
		want    page.Context
	}{
		{name: "No session", session: nil, want: page.Context{User: false}},
		{name: "Anonymous session", session: &session.Session{ID: "id"}, want: page.Context{User: false}},
		{name: "Logged in session", session: &session.Session{ID: "id", AccessToken: "abc123"}, want: page.Context{User: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got page.Context
			handler := page.Middleware(login.IsAuthenticated)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				got = page.FromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.session != nil {
				req = req.WithContext(session.NewContext(req.Context(), tt.session))
			}

			handler.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromContext_Default(t *testing.T) {
	assert.Equal(t, page.Context{}, page.FromContext(t.Context()))
}

func TestHandler(t *testing.T) {
	tests := []struct {
		name     string
		session  *session.Session
		wantBody string
	}{
		{name: "Anonymous", session: &session.Session{ID: "id"}, wantBody: `{"user":false}`},
		{name: "Logged in", session: &session.Session{ID: "id", AccessToken: "token"}, wantBody: `{"user":true}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := page.Middleware(login.IsAuthenticated)(http.HandlerFunc(page.Handler))

			req := httptest.NewRequest(http.MethodGet, "/session", nil)
			req = req.WithContext(session.NewContext(req.Context(), tt.session))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
