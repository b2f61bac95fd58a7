package login

import "github.com/openkcm/login-gateway/pkg/session"

// IsAuthenticated reports whether the session holds a non-empty access token.
// The token is not validated; its presence is the signal.
func IsAuthenticated(s *session.Session) bool {
	return s != nil && s.AccessToken != ""
}
