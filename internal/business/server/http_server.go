package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/klauspost/compress/gzhttp"
	"github.com/samber/oops"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/login-gateway/internal/config"
	"github.com/openkcm/login-gateway/internal/devproxy"
	"github.com/openkcm/login-gateway/internal/login"
	"github.com/openkcm/login-gateway/internal/page"
	"github.com/openkcm/login-gateway/internal/static"
	"github.com/openkcm/login-gateway/pkg/session"
)

// createHTTPServer creates the public http server using the given config.
//
// Requests pass the dev proxy first, then compression, static assets and the
// session layer before they reach the routes.
func createHTTPServer(ctx context.Context, cfg *config.Config, sManager *session.Manager) (*http.Server, error) {
	redirect, err := login.NewRedirect(cfg.Login.BackendLoginURL)
	if err != nil {
		return nil, oops.In("HTTP Server").
			WithContext(ctx).
			Wrapf(err, "creating login redirect")
	}

	mux := http.NewServeMux()
	mux.Handle("GET "+cfg.Login.CallbackPath, newTraceMiddleware(cfg, "LoginCallback")(login.NewCallback(sManager)))
	mux.Handle("GET /login", newTraceMiddleware(cfg, "Login")(redirect))
	mux.Handle("GET /session", newTraceMiddleware(cfg, "Session")(http.HandlerFunc(page.Handler)))

	var handler http.Handler = mux
	handler = page.Middleware(login.IsAuthenticated)(handler)
	handler = sManager.Middleware(handler)
	handler = static.Middleware(cfg.Static, cfg.Development)(handler)

	if cfg.Compression.Enabled {
		compress, err := gzhttp.NewWrapper(gzhttp.MinSize(0))
		if err != nil {
			return nil, oops.In("HTTP Server").
				WithContext(ctx).
				Wrapf(err, "creating compression wrapper")
		}

		handler = compress(handler)
	}

	forward, err := devproxy.New(cfg.DevProxy, cfg.Development)
	if err != nil {
		return nil, oops.In("HTTP Server").
			WithContext(ctx).
			Wrapf(err, "creating dev proxy")
	}

	if cfg.Development {
		slogctx.Info(ctx, "Forwarding backend traffic", "target", cfg.DevProxy.Target, "prefixes", cfg.DevProxy.Prefixes)
	}

	return &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: forward(handler),
	}, nil
}

// StartHTTPServer starts the HTTP server using the given config.
func StartHTTPServer(ctx context.Context, cfg *config.Config, sManager *session.Manager) error {
	if err := initMeters(ctx, cfg); err != nil {
		return err
	}

	server, err := createHTTPServer(ctx, cfg, sManager)
	if err != nil {
		return err
	}

	slogctx.Info(ctx, "Starting a listener", "address", server.Addr)

	// Parse network if the address if provided in the format of network://address.
	// Otherwise use tcp network by default. Some integration tests are easier to implement
	// by binding a listener to a unix socket rather than a TCP port.
	network := "tcp"
	if idx := strings.IndexRune(server.Addr, ':'); idx != -1 && len(server.Addr) > idx+3 && server.Addr[idx:idx+3] == "://" {
		network = server.Addr[:idx]
		server.Addr = server.Addr[idx+3:]
	}

	listener, err := new(net.ListenConfig).Listen(ctx, network, server.Addr)
	if err != nil {
		return oops.In("HTTP Server").
			WithContext(ctx).
			Wrapf(err, "Failed to create a listener")
	}

	slogctx.Info(ctx, "A listener started", "address", listener.Addr().String())

	go func() {
		slogctx.Info(ctx, "Serving an HTTP server", "address", listener.Addr().String())
		err := server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogctx.Error(ctx, "Failed to serve an HTTP server", "error", err)
		}

		slogctx.Info(ctx, "Stopped an HTTP server")
	}()

	<-ctx.Done()

	shutdownCtx, shutdownRelease := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
	defer shutdownRelease()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return oops.In("HTTP Server").
			WithContext(ctx).
			Wrapf(err, "Failed shutting down HTTP server")
	}

	slogctx.Info(ctx, "Completed graceful shutdown of HTTP server")

	return nil
}
