package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/intake-service/internal/api/http/handlers"
	"github.com/spec-kit/intake-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Requests        *handlers.RequestsHandler
	Broadcasts      *handlers.BroadcastsHandler
	Admin           *handlers.AdminHandler
	AdminMiddleware *auth.AdminMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/requests", cfg.Requests.Submit)

	app.Get("/broadcasts", cfg.Broadcasts.ListActive)
	app.Post("/broadcasts/:id/dismiss", cfg.Broadcasts.Dismiss)

	adminGroup := app.Group("/admin")
	adminGroup.Post("/login", cfg.Admin.Login)
	adminGroup.Post("/unlock", cfg.Admin.Unlock)

	protected := adminGroup.Group("", cfg.AdminMiddleware.Handle)
	protected.Post("/logout", cfg.Admin.Logout)
	protected.Post("/extend", cfg.Admin.Extend)
	protected.Post("/broadcasts", cfg.Broadcasts.Create)
	protected.Delete("/broadcasts/:id", cfg.Broadcasts.Deactivate)

	protected.Put("/settings/webhook", cfg.Admin.SetWebhook)
	protected.Delete("/settings/webhook", cfg.Admin.RemoveWebhook)
	protected.Post("/settings/webhook/test", cfg.Admin.TestWebhook)
	protected.Put("/settings/remote", cfg.Admin.SetRemote)
	protected.Delete("/settings/remote", cfg.Admin.RemoveRemote)
	protected.Post("/settings/remote/test", cfg.Admin.TestRemote)

	requestsAdmin := app.Group("/requests", cfg.AdminMiddleware.Handle)
	requestsAdmin.Get("", cfg.Requests.List)
	requestsAdmin.Post("/:id/decision", cfg.Requests.Decide)
}
