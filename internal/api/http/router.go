package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bus-booking-service/internal/api/http/handlers"
	"github.com/spec-kit/bus-booking-service/internal/auth"
	"github.com/spec-kit/bus-booking-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Handler())
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("/book", cfg.Tickets.Book)
	tickets.Get("/all", cfg.Tickets.ListAll)
	tickets.Get("/byRoute", cfg.Tickets.ListByRoute)
	tickets.Get("/sortedByDate", cfg.Tickets.ListSortedByDate)
	tickets.Put("/cancel/:id", cfg.Tickets.Cancel)
	tickets.Get("/statistics", cfg.Tickets.Statistics)
}
