package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-kit/helpdesk/internal/api/http/handlers"
	"github.com/helpdesk-kit/helpdesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	KB             *handlers.KBHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Ticket and KB reads are open to
// anonymous callers; the bearer token, when present, only adds identity.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	api := app.Group("", cfg.AuthMiddleware.Handle)
	staff := auth.RequireStaff()

	api.Get("/metrics", staff, cfg.Health.Metrics)

	api.Get("/users/me", auth.RequireUser(), cfg.Users.Me)
	api.Delete("/users/:id", staff, cfg.Users.Delete)

	tickets := api.Group("/tickets")
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/suggest", cfg.Tickets.Suggest)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)

	api.Get("/dashboard", cfg.Dashboard.Get)

	kb := api.Group("/kb")
	kb.Get("/", cfg.KB.Search)
	kb.Get("/categories", cfg.KB.ListCategories)
	kb.Post("/categories", staff, cfg.KB.CreateCategory)
	kb.Post("/articles", staff, cfg.KB.CreateArticle)
	kb.Get("/articles/:slug", cfg.KB.GetArticle)
	kb.Patch("/articles/:id", staff, cfg.KB.UpdateArticle)
}
