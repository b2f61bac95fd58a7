// Package devproxy forwards backend traffic during local development so the
// frontend and the backend can be served from one origin.
package devproxy

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/samber/oops"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/login-gateway/internal/config"
)

var ErrInvalidTarget = errors.New("invalid dev proxy target")

// New returns a middleware that forwards requests below the configured prefixes
// to the backend. Outside development mode it passes every request through.
func New(cfg config.DevProxy, development bool) (func(http.Handler) http.Handler, error) {
	if !development {
		return func(next http.Handler) http.Handler { return next }, nil
	}

	target, err := url.Parse(cfg.Target)
	if err != nil {
		return nil, errors.Join(ErrInvalidTarget, err)
	}

	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("%w: %q needs a scheme and a host", ErrInvalidTarget, cfg.Target)
	}

	proxy := &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(target)
			// The backend sees the browser's host, as if it was reached directly.
			r.Out.Host = r.In.Host
			r.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			err = oops.In("Dev Proxy").
				WithContext(r.Context()).
				With("target", cfg.Target).
				Wrapf(err, "forwarding %s %s", r.Method, r.URL.Path)
			slogctx.Error(r.Context(), "Backend is unreachable", "error", err)
			w.WriteHeader(http.StatusBadGateway)
		},
	}

	prefixes := cfg.Prefixes

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if matches(prefixes, r.URL.Path) {
				proxy.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

// matches reports whether the path equals a prefix or lies below it.
func matches(prefixes []string, path string) bool {
	for _, prefix := range prefixes {
		prefix = strings.TrimSuffix(prefix, "/")
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}

	return false
}
