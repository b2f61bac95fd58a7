package session

import "time"

// Session represents the server-side state of one browser.
type Session struct {
	ID           string    // Session ID carried by the signed cookie
	AccessToken  string    // Access token from the identity provider, empty when logged out
	RefreshToken string    // Refresh token from the identity provider
	Expiry       time.Time // Expiry time of the session
}

// SetTokens stores the token material as received.
func (s *Session) SetTokens(accessToken, refreshToken string) {
	s.AccessToken = accessToken
	s.RefreshToken = refreshToken
}

// Expired reports whether the session is past its expiry at the given time.
// A session that was never stored has no expiry and is not expired.
func (s *Session) Expired(now time.Time) bool {
	return !s.Expiry.IsZero() && !now.Before(s.Expiry)
}
