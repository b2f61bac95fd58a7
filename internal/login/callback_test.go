package login_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/login-gateway/internal/config"
	"github.com/openkcm/login-gateway/internal/login"
	"github.com/openkcm/login-gateway/internal/serviceerr"
	"github.com/openkcm/login-gateway/pkg/session"
	sessionmock "github.com/openkcm/login-gateway/pkg/session/mock"
)

const dashboardState = "aHR0cHM6Ly9leGFtcGxlLmNvbS9kYXNoYm9hcmQ="

// fakeSessions hands out one fixed session and records saves.
type fakeSessions struct {
	session    *session.Session
	currentErr error
	saveErr    error
	saved      []session.Session
}

func (f *fakeSessions) Current(context.Context) (*session.Session, error) {
	if f.currentErr != nil {
		return nil, f.currentErr
	}

	return f.session, nil
}

func (f *fakeSessions) Save(_ context.Context, _ http.ResponseWriter, s *session.Session) error {
	if f.saveErr != nil {
		return f.saveErr
	}

	f.saved = append(f.saved, *s)

	return nil
}

func serveCallback(t *testing.T, h http.Handler, rawQuery string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/login-callback?"+rawQuery, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestComplete(t *testing.T) {
	tests := []struct {
		name         string
		query        url.Values
		wantLocation string
		wantSession  session.Session
		assertErr    assert.ErrorAssertionFunc
	}{
		{
			name: "Tokens and state",
			query: url.Values{
				"accessToken":  {"abc123"},
				"refreshToken": {"xyz789"},
				"state":        {dashboardState},
			},
			wantLocation: "https://example.com/dashboard",
			wantSession:  session.Session{ID: "id", AccessToken: "abc123", RefreshToken: "xyz789"},
			assertErr:    assert.NoError,
		},
		{
			name: "Repeated parameters use the last value",
			query: url.Values{
				"accessToken":  {"first", "second"},
				"refreshToken": {"r1", "r2"},
				"state":        {"Lw==", dashboardState},
			},
			wantLocation: "https://example.com/dashboard",
			wantSession:  session.Session{ID: "id", AccessToken: "second", RefreshToken: "r2"},
			assertErr:    assert.NoError,
		},
		{
			name: "Tokens are stored verbatim",
			query: url.Values{
				"accessToken":  {"  eyJ.padded.token  "},
				"refreshToken": {"not-a-jwt"},
				"state":        {dashboardState},
			},
			wantLocation: "https://example.com/dashboard",
			wantSession:  session.Session{ID: "id", AccessToken: "  eyJ.padded.token  ", RefreshToken: "not-a-jwt"},
			assertErr:    assert.NoError,
		},
		{
			name: "Missing tokens overwrite with empty values",
			query: url.Values{
				"state": {dashboardState},
			},
			wantLocation: "https://example.com/dashboard",
			wantSession:  session.Session{ID: "id"},
			assertErr:    assert.NoError,
		},
		{
			name: "Error missing state leaves the session untouched",
			query: url.Values{
				"accessToken": {"abc123"},
			},
			wantSession: session.Session{ID: "id", AccessToken: "old", RefreshToken: "old"},
			assertErr: func(t assert.TestingT, err error, msgAndArgs ...any) bool {
				return assert.ErrorIs(t, err, serviceerr.ErrMissingState, msgAndArgs...)
			},
		},
		{
			name: "Error malformed state leaves the session untouched",
			query: url.Values{
				"accessToken": {"abc123"},
				"state":       {"%%%"},
			},
			wantSession: session.Session{ID: "id", AccessToken: "old", RefreshToken: "old"},
			assertErr: func(t assert.TestingT, err error, msgAndArgs ...any) bool {
				return assert.ErrorIs(t, err, serviceerr.ErrInvalidState, msgAndArgs...)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &session.Session{ID: "id", AccessToken: "old", RefreshToken: "old"}

			location, err := login.Complete(s, tt.query)
			tt.assertErr(t, err)

			assert.Equal(t, tt.wantLocation, location)
			assert.Equal(t, tt.wantSession, *s)
		})
	}
}

func TestCallback_Scenario(t *testing.T) {
	sessions := &fakeSessions{session: &session.Session{ID: "session-id"}}
	h := login.NewCallback(sessions)

	rec := serveCallback(t, h, "accessToken=abc123&refreshToken=xyz789&state="+dashboardState)

	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "https://example.com/dashboard", rec.Header().Get("Location"))
	assert.Empty(t, rec.Body.String())

	require.Len(t, sessions.saved, 1)
	assert.Equal(t, session.Session{ID: "session-id", AccessToken: "abc123", RefreshToken: "xyz789"}, sessions.saved[0])
}

func TestCallback_MissingAccessToken(t *testing.T) {
	sessions := &fakeSessions{session: &session.Session{ID: "session-id"}}
	h := login.NewCallback(sessions)

	rec := serveCallback(t, h, "refreshToken=xyz789&state="+dashboardState)

	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "https://example.com/dashboard", rec.Header().Get("Location"))

	require.Len(t, sessions.saved, 1)
	assert.Empty(t, sessions.saved[0].AccessToken)
	assert.False(t, login.IsAuthenticated(&sessions.saved[0]))
}

func TestCallback_LocationMatchesDecodedState(t *testing.T) {
	destinations := []string{
		"https://example.com/dashboard",
		"/",
		"/teams/42?tab=roster&sort=asc",
		"http://localhost:3000/players#top",
		"relative/path",
	}

	for _, destination := range destinations {
		t.Run(destination, func(t *testing.T) {
			h := login.NewCallback(&fakeSessions{session: &session.Session{ID: "id"}})

			q := url.Values{"accessToken": {"t"}, "state": {login.EncodeState(destination)}}
			rec := serveCallback(t, h, q.Encode())

			assert.Equal(t, http.StatusMovedPermanently, rec.Code)
			assert.Equal(t, destination, rec.Header().Get("Location"))
		})
	}
}

func TestCallback_Errors(t *testing.T) {
	tests := []struct {
		name      string
		sessions  *fakeSessions
		rawQuery  string
		wantError serviceerr.Code
	}{
		{
			name:      "Missing state",
			sessions:  &fakeSessions{session: &session.Session{ID: "id"}},
			rawQuery:  "accessToken=abc123",
			wantError: serviceerr.CodeMissingState,
		},
		{
			name:      "Malformed state",
			sessions:  &fakeSessions{session: &session.Session{ID: "id"}},
			rawQuery:  "accessToken=abc123&state=%21%21%21",
			wantError: serviceerr.CodeInvalidState,
		},
		{
			name:      "State decodes to a header injection",
			sessions:  &fakeSessions{session: &session.Session{ID: "id"}},
			rawQuery:  "accessToken=abc123&state=" + url.QueryEscape(login.EncodeState("/dashboard\r\nSet-Cookie: x=1")),
			wantError: serviceerr.CodeInvalidState,
		},
		{
			name:      "No session attached",
			sessions:  &fakeSessions{currentErr: session.ErrNoSession},
			rawQuery:  "state=" + dashboardState,
			wantError: serviceerr.CodeUnknown,
		},
		{
			name:      "Session cannot be saved",
			sessions:  &fakeSessions{session: &session.Session{ID: "id"}, saveErr: errors.Join(serviceerr.ErrSessionStore, errors.New("valkey down"))},
			rawQuery:  "state=" + dashboardState,
			wantError: serviceerr.CodeSessionStore,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := login.NewCallback(tt.sessions)

			rec := serveCallback(t, h, tt.rawQuery)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Empty(t, rec.Header().Get("Location"), "no redirect on failure")
			assert.Empty(t, tt.sessions.saved, "no session write on failure")

			var body struct {
				Error string `json:"error"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, string(tt.wantError), body.Error)
		})
	}
}

func TestCallback_WithSessionManager(t *testing.T) {
	repo := sessionmock.NewInMemRepository(nil, nil, nil)
	m, err := session.NewManager(&config.Session{
		Duration: time.Hour,
		Cookie:   config.CookieTemplate{Name: "connect.sid", Path: "/", HTTPOnly: true},
	}, []byte("secret"), repo)
	require.NoError(t, err)

	h := m.Middleware(login.NewCallback(m))
	rawQuery := "accessToken=abc123&refreshToken=xyz789&state=" + dashboardState

	first := serveCallback(t, h, rawQuery)
	require.Equal(t, http.StatusMovedPermanently, first.Code)

	cookies := first.Result().Cookies()
	require.Len(t, cookies, 1, "the session cookie is issued with the redirect")
	require.Len(t, repo.Sessions, 1)

	var sessionID string
	for id := range repo.Sessions {
		sessionID = id
	}
	once, _ := repo.Get(sessionID)

	// A second identical callback on the same session yields the same state.
	req := httptest.NewRequest(http.MethodGet, "/login-callback?"+rawQuery, nil)
	req.AddCookie(cookies[0])
	second := httptest.NewRecorder()
	h.ServeHTTP(second, req)

	require.Equal(t, http.StatusMovedPermanently, second.Code)
	require.Len(t, repo.Sessions, 1)

	twice, _ := repo.Get(sessionID)
	assert.Equal(t, once.ID, twice.ID)
	assert.Equal(t, once.AccessToken, twice.AccessToken)
	assert.Equal(t, once.RefreshToken, twice.RefreshToken)
	assert.Equal(t, "abc123", twice.AccessToken)
	assert.Equal(t, "xyz789", twice.RefreshToken)
}
