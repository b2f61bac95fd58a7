package business

import (
	"context"
	"errors"
	"fmt"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/login-gateway/internal/config"
	"github.com/openkcm/login-gateway/pkg/session"
)

// ErrNoSharedStore is returned when the housekeeper cannot reach the sessions
// of the api server because they live in the api server's memory.
var ErrNoSharedStore = errors.New("session backend has no store shared with the api server")

// HousekeeperMain starts the house keeping jobs
func HousekeeperMain(ctx context.Context, cfg *config.Config) error {
	switch cfg.Session.Backend {
	case config.SessionBackendMemory:
		return fmt.Errorf("%w: %q", ErrNoSharedStore, cfg.Session.Backend)
	case config.SessionBackendValKey:
		slogctx.Info(ctx, "Skipping session housekeeping; valkey expires sessions on its own", "backend", cfg.Session.Backend)
		return nil
	}

	sessionRepo, closeFn, err := initSessionRepository(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialise the session store: %w", err)
	}
	defer closeFn()

	return runHousekeeper(ctx, sessionRepo, cfg.Housekeeper.TriggerInterval)
}

func runHousekeeper(ctx context.Context, sessions session.Repository, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("invalid housekeeper trigger interval: %s", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		n, err := sessions.DeleteExpired(ctx)
		if err != nil {
			slogctx.Error(ctx, "Error during session housekeeping", "error", err)
		} else {
			slogctx.Info(ctx, "Deleted expired sessions", "count", n)
		}

		select {
		case <-ticker.C:
			continue
		case <-ctx.Done():
			return nil
		}
	}
}
