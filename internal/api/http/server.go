package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-kit/helpdesk/internal/api/http/handlers"
	"github.com/helpdesk-kit/helpdesk/internal/app"
	"github.com/helpdesk-kit/helpdesk/internal/auth"
)

// NewApp builds the fiber application with every middleware and route.
func NewApp(c *app.Container) *fiber.App {
	server := fiber.New(fiber.Config{
		AppName:      c.Config.App.Name,
		ErrorHandler: ErrorHandler(c.Logger, c.Metrics),
	})
	RegisterMiddlewares(server, c.Logger, c.Metrics, c.Config.App.RequestTimeout())

	RegisterRoutes(server, RouteConfig{
		Health:         handlers.NewHealthHandler(c.Config.App.Name, c.Config.App.Version, c.Postgres, c.Redis, c.Metrics),
		Users:          handlers.NewUsersHandler(c.Auth),
		Tickets:        handlers.NewTicketsHandler(c.Tickets, c.KB, c.Now),
		KB:             handlers.NewKBHandler(c.KB, c.Renderer, c.Logger),
		Dashboard:      handlers.NewDashboardHandler(c.Dashboard, c.Now),
		AuthMiddleware: auth.NewAuthMiddleware(c.Auth.TokenManager(), c.Repos.Users),
	})
	return server
}
