package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	AdminTickets   *handlers.AdminTicketsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/login", cfg.Auth.Login)
	app.Post("/admin/login", cfg.Auth.AdminLogin)

	authed := cfg.AuthMiddleware.Handle

	// User-facing routes; ownership is checked per handler so admins can
	// operate on any account.
	app.Post("/tickets", authed, auth.RequireAuthenticated(), cfg.Tickets.Create)
	app.Get("/tickets/:email/product/:productName", authed, auth.RequireAuthenticated(), cfg.Tickets.ProductHistory)
	app.Get("/tickets/:email", authed, auth.RequireAuthenticated(), cfg.Tickets.ListByUser)
	app.Get("/ticket/:id", authed, auth.RequireAuthenticated(), cfg.Tickets.GetByID)
	app.Put("/user/update-password", authed, auth.RequireAuthenticated(), cfg.Users.UpdatePassword)

	// Admin routes carry the guard per route: group-level middleware on the
	// /admin prefix would also intercept /admin/login.
	adminOnly := auth.RequireAdmin()
	app.Post("/admin/register", authed, adminOnly, cfg.Users.Register)
	app.Get("/admin/users", authed, adminOnly, cfg.Users.List)
	app.Delete("/admin/users/:email", authed, adminOnly, cfg.Users.Deregister)
	app.Get("/admin/tickets", authed, adminOnly, cfg.AdminTickets.ListAll)
	app.Get("/admin/tickets/product/:productName", authed, adminOnly, cfg.AdminTickets.ProductHistory)
	app.Put("/admin/tickets/:id", authed, adminOnly, cfg.AdminTickets.UpdateStatus)
	app.Post("/admin/tickets/:id/message", authed, adminOnly, cfg.AdminTickets.AddMessage)
}
