package login

import (
	"fmt"
	"net/http"
	"net/url"

	slogctx "github.com/veqryn/slog-context"
)

const (
	ParamNext   = "next"
	defaultNext = "/"
)

// Redirect starts a login by sending the browser to the backend login endpoint.
// The destination travels as the base64 continuation value the callback decodes.
type Redirect struct {
	backendLoginURL *url.URL
}

var _ http.Handler = (*Redirect)(nil)

func NewRedirect(backendLoginURL string) (*Redirect, error) {
	u, err := url.Parse(backendLoginURL)
	if err != nil {
		return nil, fmt.Errorf("parsing backend login url: %w", err)
	}

	return &Redirect{backendLoginURL: u}, nil
}

func (h *Redirect) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	next := lastValue(r.URL.Query(), ParamNext)
	if next == "" {
		next = defaultNext
	}

	u := *h.backendLoginURL
	q := u.Query()
	q.Set(ParamNext, EncodeState(next))
	u.RawQuery = q.Encode()

	slogctx.Debug(r.Context(), "Starting login", "next", next)

	w.Header().Set("Location", u.String())
	w.WriteHeader(http.StatusFound)
}
