package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/http/handlers"
	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health     *handlers.HealthHandler
	Auth       *handlers.AuthHandler
	Demo       *handlers.DemoHandler
	Authorizer *auth.RequestAuthorizer
	Metrics    *observability.Metrics
}

// RegisterRoutes wires HTTP routes. Every route sits behind the authorizer; the route
// policy decides which ones are anonymous.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.Authorizer.Handle)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/register", cfg.Auth.Register)

	demo := app.Group("/demo")
	demo.Get("/welcome", cfg.Demo.Welcome)
	demo.Get("/user-info", cfg.Demo.UserInfo)
	demo.Get("/info", cfg.Demo.Info)
	demo.Get("/admin", cfg.Demo.Admin)

	app.Get("/public/ping", cfg.Demo.Ping)

	trackRoutes(app, cfg.Metrics)
}

// trackRoutes gives every registered handler route its own metrics label.
func trackRoutes(app *fiber.App, metrics *observability.Metrics) {
	routes := app.GetRoutes(true)
	paths := make([]string, 0, len(routes))
	for _, r := range routes {
		paths = append(paths, r.Path)
	}
	metrics.TrackRoutes(paths...)
}
