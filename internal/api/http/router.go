package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/resale-admin/internal/api/http/handlers"
	"github.com/spec-kit/resale-admin/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Session        *handlers.SessionHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Session.Login)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle)
	admin.Get("/tickets", cfg.Tickets.ListTickets)
	admin.Post("/tickets/refresh", cfg.Tickets.Refresh)
	admin.Post("/tickets/:id/transition", cfg.Tickets.Transition)
	admin.Post("/tickets/:id/refund", cfg.Tickets.Refund)
	admin.Get("/tickets/:id/history", cfg.Tickets.History)
}
