// Package static serves the compiled frontend assets.
package static

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/openkcm/login-gateway/internal/config"
)

// Middleware serves regular files below the configured directory and hands
// every other request to next. Development mode disables client caching.
func Middleware(cfg config.Static, development bool) func(http.Handler) http.Handler {
	root := http.Dir(cfg.Dir)
	fileServer := http.FileServer(root)

	cacheControl := fmt.Sprintf("public, max-age=%d", int(cfg.MaxAge.Seconds()))
	if development {
		cacheControl = "no-store"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			if !isRegularFile(cfg.Dir, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Cache-Control", cacheControl)
			fileServer.ServeHTTP(w, r)
		})
	}
}

func isRegularFile(dir, urlPath string) bool {
	if dir == "" || strings.HasSuffix(urlPath, "/") {
		return false
	}

	name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+urlPath)))

	info, err := os.Stat(name)
	if err != nil {
		return false
	}

	return info.Mode().IsRegular()
}
