package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/helpdesk-kit/helpdesk-service/internal/auth"
	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Users         *handlers.UsersHandler
	Tickets       *handlers.TicketsHandler
	Notifications *handlers.NotificationsHandler
	Session       *auth.SessionMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	app.Post("/auth/login", cfg.Users.Login)
	app.Post("/auth/logout", cfg.Users.Logout)

	ticket := app.Group("/ticket", cfg.Session.Handle)
	ticket.Get("/get-ticket", cfg.Tickets.List)
	ticket.Get("/get-ticket/:id", cfg.Tickets.Get)
	ticket.Post("/create-ticket", cfg.Tickets.Create)
	ticket.Put("/update-ticket/:id", cfg.Tickets.Update)
	ticket.Get("/stats", cfg.Tickets.Stats)

	moderation := ticket.Group("", auth.RequireRole(domain.RoleReviewer, domain.RoleManager))
	moderation.Put("/:id/comments/:commentId/hide", cfg.Tickets.HideComment)
	moderation.Put("/:id/comments/:commentId/unhide", cfg.Tickets.UnhideComment)

	ticket.Post("/:id/intervene", auth.RequireRole(domain.RoleManager), cfg.Tickets.Intervene)

	user := app.Group("/user", cfg.Session.Handle)
	user.Get("/get-it-support", cfg.Users.ListITSupport)

	notifications := app.Group("/notifications", cfg.Session.Handle)
	notifications.Get("/", cfg.Notifications.List)
	notifications.Get("/unread-count", cfg.Notifications.UnreadCount)
	notifications.Put("/read-all", cfg.Notifications.MarkAllRead)
	notifications.Put("/:id/read", cfg.Notifications.MarkRead)
}
