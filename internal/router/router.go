package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/stackit-forum/stackit-api/internal/config"
	"github.com/stackit-forum/stackit-api/internal/handler"
	"github.com/stackit-forum/stackit-api/internal/middleware"
	"github.com/stackit-forum/stackit-api/internal/models"
	"github.com/stackit-forum/stackit-api/internal/observability"
	"github.com/stackit-forum/stackit-api/internal/service"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthService         service.AuthService
	AuthHandler         *handler.AuthHandler
	PostHandler         *handler.PostHandler
	CommentHandler      *handler.CommentHandler
	NotificationHandler *handler.NotificationHandler
	ReportHandler       *handler.ReportHandler
	AdminHandler        *handler.AdminHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Anonymous surface. OTP issuance carries its own burst limiter on top
	// of the service-level cooldown.
	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 10, time.Minute))
		deps.AuthHandler.Register(auth)
	}

	session := middleware.SessionProtected(deps.AuthService)

	if deps.PostHandler != nil {
		posts := api.Group("/posts", session)
		deps.PostHandler.Register(posts)
		if deps.CommentHandler != nil {
			deps.CommentHandler.Register(posts)
		}
	}

	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", session)
		deps.NotificationHandler.Register(notifications)
	}

	if deps.ReportHandler != nil {
		reports := api.Group("/reports", session, middleware.RateLimit("reports", 5, time.Minute))
		deps.ReportHandler.Register(reports)
	}

	if deps.AdminHandler != nil {
		admin := api.Group("/admin", session, middleware.RequireRole(models.RoleAdmin))
		deps.AdminHandler.Register(admin)
	}
}
