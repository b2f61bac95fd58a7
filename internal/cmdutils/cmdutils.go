// Package cmdutils turns business entry points into cobra commands and runs
// them with the process wide logging, telemetry and status server set up.
package cmdutils

import (
	"context"
	"fmt"
	"log/slog"
	"syscall"
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/openkcm/common-sdk/pkg/health"
	"github.com/openkcm/common-sdk/pkg/logger"
	"github.com/openkcm/common-sdk/pkg/otlp"
	"github.com/openkcm/common-sdk/pkg/status"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/login-gateway/internal/config"
)

const (
	healthStatusTimeout = 5 * time.Second
)

// BusinessFunc is the entry point of one command.
type BusinessFunc func(context.Context, *config.Config) error

// Runner prepares the process and calls the business function.
type Runner func(context.Context, BusinessFunc, *config.Config) error

// configPaths are searched in order for config.yaml.
var configPaths = []string{
	"/etc/login-gateway",
	"$HOME/.login-gateway",
	".",
}

// loadConfigFn is swapped in tests.
var loadConfigFn = loadConfig

func CobraCommand(use, short, long, buildInfo string, runner Runner, businessFunc BusinessFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfigFn(buildInfo)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if err := runner(cmd.Context(), businessFunc, cfg); err != nil {
				return fmt.Errorf("running the %s command: %w", use, err)
			}

			return nil
		},
	}
}

// RunAsService runs long lived processes with telemetry and a status server.
func RunAsService(ctx context.Context, fn BusinessFunc, cfg *config.Config) error {
	return run(ctx, fn, cfg, true)
}

// RunAsJob runs one-shot processes with logging only.
func RunAsJob(ctx context.Context, fn BusinessFunc, cfg *config.Config) error {
	return run(ctx, fn, cfg, false)
}

func run(ctx context.Context, fn BusinessFunc, cfg *config.Config, asService bool) error {
	if err := logger.InitAsDefault(cfg.Logger, cfg.Application); err != nil {
		return oops.In("main").
			Wrapf(err, "Failed to initialise the logger")
	}

	slogctx.Debug(ctx, "Starting the application", slog.Any("config", cfg), "service", asService)

	if asService {
		if err := otlp.Init(ctx, &cfg.Application, &cfg.Telemetry, &cfg.Logger); err != nil {
			return oops.In("main").Wrapf(err, "Failed to load the telemetry")
		}

		go func() {
			if err := startStatusServer(ctx, cfg); err != nil {
				slogctx.Error(ctx, "Failure on the status server", "error", err)
				_ = syscall.Kill(syscall.Getpid(), syscall.SIGTERM)
			}
		}()
	}

	if err := fn(ctx, cfg); err != nil {
		return oops.In("main").Wrapf(err, "Failed to start the main business application")
	}

	return nil
}

func loadConfig(buildInfo string) (*config.Config, error) {
	cfg := &config.Config{}

	if err := commoncfg.LoadConfig(cfg, map[string]any{}, configPaths...); err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	if err := commoncfg.UpdateConfigVersion(&cfg.BaseConfig, buildInfo); err != nil {
		return nil, fmt.Errorf("updating the version configuration: %w", err)
	}

	return cfg, nil
}

func startStatusServer(ctx context.Context, cfg *config.Config) error {
	liveness := status.WithLiveness(
		health.NewHandler(
			health.NewChecker(health.WithDisabledAutostart()),
		),
	)

	healthOptions, err := readinessOptions(cfg)
	if err != nil {
		return err
	}

	readiness := status.WithReadiness(
		health.NewHandler(
			health.NewChecker(healthOptions...),
		),
	)

	if err := status.Start(ctx, &cfg.BaseConfig, liveness, readiness); err != nil {
		return fmt.Errorf("starting status server: %w", err)
	}

	return nil
}

func readinessOptions(cfg *config.Config) ([]health.Option, error) {
	opts := []health.Option{
		health.WithDisabledAutostart(),
		health.WithTimeout(healthStatusTimeout),
		health.WithStatusListener(statusListener),
	}

	connStr, ok, err := readinessDatabase(cfg)
	if err != nil {
		return nil, err
	}

	if ok {
		opts = append(opts, health.WithDatabaseChecker("pgx", connStr))
	}

	return opts, nil
}

// readinessDatabase returns the database the api server cannot serve without.
// Only the postgres session backend has one.
func readinessDatabase(cfg *config.Config) (connStr string, ok bool, _ error) {
	if cfg.Session.Backend != config.SessionBackendPostgres {
		return "", false, nil
	}

	connStr, err := config.MakeConnStr(cfg.Database)
	if err != nil {
		return "", false, fmt.Errorf("making connection string from config: %w", err)
	}

	return connStr, true, nil
}

func statusListener(ctx context.Context, state health.State) {
	attrs := make([]any, 0, len(state.CheckState)+1)
	attrs = append(attrs, "status", state.Status)

	for name, check := range state.CheckState {
		attrs = append(attrs, slog.Group(name, "status", check.Status, "error", check.Result))
	}

	slogctx.Info(ctx, "readiness status changed", attrs...)
}
