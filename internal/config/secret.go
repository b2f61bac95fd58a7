package config

import (
	"context"
	"fmt"

	"github.com/openkcm/common-sdk/pkg/commoncfg"

	slogctx "github.com/veqryn/slog-context"
)

// LoadSessionSecret resolves the secret used to sign session cookies.
// A missing reference falls back to InsecureDefaultSecret with a warning.
func LoadSessionSecret(ctx context.Context, s Session) ([]byte, error) {
	if s.Secret.Source == "" {
		slogctx.Warn(ctx, "No session secret configured; falling back to the insecure default secret")
		return []byte(InsecureDefaultSecret), nil
	}

	secret, err := commoncfg.LoadValueFromSourceRef(s.Secret)
	if err != nil {
		return nil, fmt.Errorf("loading session secret: %w", err)
	}

	if len(secret) == 0 {
		return nil, fmt.Errorf("session secret is empty")
	}

	return secret, nil
}
