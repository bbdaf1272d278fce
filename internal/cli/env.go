// Package cli holds the helpdeskctl subcommands and their shared setup.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/helpdesk-kit/helpdesk/internal/app"
	"github.com/helpdesk-kit/helpdesk/internal/config"
	"github.com/helpdesk-kit/helpdesk/internal/observability"
)

// ErrNoDatabase is returned when a command needs Postgres but POSTGRES_DSN is empty.
var ErrNoDatabase = errors.New("POSTGRES_DSN is not set; this command needs the ticket database")

// Bootstrap loads configuration and builds the service container against
// Postgres. Callers must Close the container and Sync its logger.
func Bootstrap(ctx context.Context) (*app.Container, error) {
	return bootstrap(ctx, false)
}

// BootstrapAllowMemory is Bootstrap for the API server, which may run on the
// in-memory store when no database is configured.
func BootstrapAllowMemory(ctx context.Context) (*app.Container, error) {
	return bootstrap(ctx, true)
}

func bootstrap(ctx context.Context, allowMemory bool) (*app.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if !allowMemory && cfg.Postgres.DSN == "" {
		return nil, ErrNoDatabase
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	container, err := app.New(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	return container, nil
}
