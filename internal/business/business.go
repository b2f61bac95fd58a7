package business

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/valkey-io/valkey-go"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/login-gateway/internal/business/server"
	"github.com/openkcm/login-gateway/internal/config"
	"github.com/openkcm/login-gateway/pkg/session"
	sessionmemory "github.com/openkcm/login-gateway/pkg/session/memory"
	sessionsql "github.com/openkcm/login-gateway/pkg/session/sql"
	sessionvalkey "github.com/openkcm/login-gateway/pkg/session/valkey"
)

var ErrUnknownSessionBackend = errors.New("unknown session backend")

// Main starts the public HTTP server.
func Main(ctx context.Context, cfg *config.Config) error {
	sessionManager, closeFn, err := initSessionManager(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialising the session manager: %w", err)
	}

	defer closeFn()

	return server.StartHTTPServer(ctx, cfg, sessionManager)
}

func initSessionManager(ctx context.Context, cfg *config.Config) (_ *session.Manager, closeFn func(), _ error) {
	secret, err := config.LoadSessionSecret(ctx, cfg.Session)
	if err != nil {
		return nil, nil, fmt.Errorf("loading session secret: %w", err)
	}

	sessionRepo, closeFn, err := initSessionRepository(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	sessManager, err := session.NewManager(&cfg.Session, secret, sessionRepo)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("creating session manager: %w", err)
	}

	return sessManager, closeFn, nil
}

// initSessionRepository connects the configured session backend.
func initSessionRepository(ctx context.Context, cfg *config.Config) (_ session.Repository, closeFn func(), _ error) {
	slogctx.Info(ctx, "Connecting the session store", "backend", cfg.Session.Backend)

	switch cfg.Session.Backend {
	case config.SessionBackendMemory:
		return sessionmemory.NewRepository(time.Minute), func() {}, nil
	case config.SessionBackendValKey:
		valkeyClient, err := valkeyClientFromConfig(cfg.ValKey)
		if err != nil {
			return nil, nil, err
		}

		return sessionvalkey.NewRepository(valkeyClient, cfg.ValKey.Prefix), valkeyClient.Close, nil
	case config.SessionBackendPostgres:
		db, err := pgxPoolFromConfig(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}

		return sessionsql.NewRepository(db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownSessionBackend, cfg.Session.Backend)
	}
}

func pgxPoolFromConfig(ctx context.Context, cfg config.Database) (*pgxpool.Pool, error) {
	connStr, err := config.MakeConnStr(cfg)
	if err != nil {
		return nil, fmt.Errorf("making dsn from config: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parsing pgxpool config: %w", err)
	}

	poolCfg.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("initialising pgxpool connection: %w", err)
	}

	return db, nil
}

func valkeyClientFromConfig(cfg config.ValKey) (valkey.Client, error) {
	valkeyHost, err := commoncfg.LoadValueFromSourceRef(cfg.Host)
	if err != nil {
		return nil, fmt.Errorf("loading valkey host: %w", err)
	}

	valkeyUsername, err := commoncfg.LoadValueFromSourceRef(cfg.User)
	if err != nil {
		return nil, fmt.Errorf("loading valkey username: %w", err)
	}

	valkeyPassword, err := commoncfg.LoadValueFromSourceRef(cfg.Password)
	if err != nil {
		return nil, fmt.Errorf("loading valkey password: %w", err)
	}

	valkeyOpts := valkey.ClientOption{
		InitAddress: []string{string(valkeyHost)},
		Username:    string(valkeyUsername),
		Password:    string(valkeyPassword),
	}

	if cfg.SecretRef.Type == commoncfg.MTLSSecretType {
		tlsConfig, err := commoncfg.LoadMTLSConfig(&cfg.SecretRef.MTLS)
		if err != nil {
			return nil, fmt.Errorf("loading valkey mTLS config from secret ref: %w", err)
		}

		valkeyOpts.TLSConfig = tlsConfig
	}

	valkeyClient, err := valkey.NewClient(valkeyOpts)
	if err != nil {
		return nil, fmt.Errorf("creating a new valkey client: %w", err)
	}

	return valkeyClient, nil
}
