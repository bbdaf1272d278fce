// Package app assembles the services shared by the API server and the
// admin CLI.
package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/helpdesk-kit/helpdesk/internal/config"
	"github.com/helpdesk-kit/helpdesk/internal/events"
	"github.com/helpdesk-kit/helpdesk/internal/markdown"
	"github.com/helpdesk-kit/helpdesk/internal/observability"
	"github.com/helpdesk-kit/helpdesk/internal/persistence"
	"github.com/helpdesk-kit/helpdesk/internal/repository"
	"github.com/helpdesk-kit/helpdesk/internal/repository/memory"
	"github.com/helpdesk-kit/helpdesk/internal/service"
	"github.com/helpdesk-kit/helpdesk/internal/worker"
)

// Container holds connections, repositories and services.
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	Metrics  *observability.Metrics
	Postgres *persistence.Postgres
	Redis    *persistence.Redis

	Repos      repository.Set
	Dispatcher events.Dispatcher
	Renderer   markdown.Renderer

	Tickets    *service.TicketService
	KB         *service.KBService
	Dashboard  *service.DashboardService
	Auth       *service.AuthService
	Escalation *service.EscalationJob
	Activity   *service.ActivityService
}

// New connects to the configured stores and builds every service. Without a
// Postgres DSN an in-memory store is used.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			pg.Close()
			return nil, err
		}
	}

	var repos repository.Set
	if pool := pg.PoolHandle(); pool != nil {
		repos = repository.NewPostgresSet(pool)
	} else {
		repos = memory.NewStore().Set()
	}

	c := &Container{
		Config:     cfg,
		Logger:     logger,
		Metrics:    observability.NewMetrics(),
		Postgres:   pg,
		Redis:      persistence.NewRedis(cfg.Redis, logger),
		Repos:      repos,
		Dispatcher: events.NewInMemoryDispatcher(logger),
		Renderer:   markdown.NewRenderer(),
	}
	c.build()
	return c, nil
}

func (c *Container) build() {
	c.Activity = service.NewActivityService(c.Dispatcher, c.Logger, c.Metrics)
	worker.StartActivityWorker(c.Activity)

	c.Tickets = service.NewTicketService(service.TicketDependencies{
		TicketRepo:  c.Repos.Tickets,
		CommentRepo: c.Repos.Comments,
		Dispatcher:  c.Dispatcher,
		Logger:      c.Logger,
	})
	c.KB = service.NewKBService(service.KBDependencies{
		ArticleRepo:  c.Repos.Articles,
		CategoryRepo: c.Repos.Categories,
		Logger:       c.Logger,
	})
	c.Dashboard = service.NewDashboardService(c.Repos.Tickets)
	c.Auth = service.NewAuthService(c.Config.Auth, service.AuthDependencies{
		UserRepo: c.Repos.Users,
		Logger:   c.Logger,
	})

	deps := service.EscalationDependencies{
		TicketRepo: c.Repos.Tickets,
		Dispatcher: c.Dispatcher,
		LockKey:    c.Config.SLA.LockKey,
		LockTTL:    c.Config.SLA.LockTTL(),
		Logger:     c.Logger,
		Metrics:    c.Metrics,
	}
	if c.Redis.Enabled() {
		deps.Locker = c.Redis
	}
	c.Escalation = service.NewEscalationJob(deps)
}

// StartSLAWorker runs the escalation sweep in-process when an interval is
// configured.
func (c *Container) StartSLAWorker(ctx context.Context) <-chan struct{} {
	return worker.StartSLAWorker(ctx, c.Escalation, c.Config.SLA.CheckInterval(), c.Logger)
}

// Now is the clock used by handlers for breach flags.
func (c *Container) Now() time.Time {
	return time.Now().UTC()
}

// Close releases connections.
func (c *Container) Close() {
	c.Redis.Close()
	c.Postgres.Close()
}
