package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/storefront-labs/storefront-api/internal/api/http/handlers"
	"github.com/storefront-labs/storefront-api/internal/auth"
	"github.com/storefront-labs/storefront-api/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Profile        *handlers.ProfileHandler
	Admin          *handlers.AdminHandler
	Products       *handlers.ProductHandler
	Examples       *handlers.ExampleHandler
	Uploads        *handlers.UploadHandler
	Push           *handlers.PushHandler
	Chat           *handlers.ChatHandler
	AuthMiddleware *auth.AuthMiddleware
	RateLimiter    *RateLimiter
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	requireAuth := cfg.AuthMiddleware.Handle
	requireAdmin := auth.RequireAdmin()

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authGroup := app.Group("/auth")
	if cfg.RateLimiter != nil {
		authGroup.Use(cfg.RateLimiter.Handler("auth"))
	}
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/verify-otp", cfg.Auth.VerifyOTP)
	authGroup.Post("/resend-otp", cfg.Auth.ResendOTP)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/forgot-password", cfg.Auth.ForgotPassword)
	authGroup.Post("/reset-password", cfg.Auth.ResetPassword)
	authGroup.Post("/change-password", requireAuth, cfg.Auth.ChangePassword)
	authGroup.Put("/change-password", requireAuth, cfg.Auth.ChangePassword)
	authGroup.Get("/me", requireAuth, cfg.Auth.Me)
	authGroup.Delete("/account", requireAuth, cfg.Auth.DeleteAccount)

	profile := app.Group("/profile", requireAuth)
	profile.Get("/", cfg.Profile.Get)
	profile.Put("/", cfg.Profile.Update)
	profile.Delete("/", cfg.Auth.DeleteAccount)

	admin := app.Group("/admin", requireAuth, requireAdmin)
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Patch("/users/:id/status", cfg.Admin.SetStatus)

	products := app.Group("/products")
	products.Get("/", cfg.Products.List)
	products.Post("/import", requireAuth, requireAdmin, cfg.Products.Import)
	products.Get("/:id", cfg.Products.Get)
	products.Post("/", requireAuth, requireAdmin, cfg.Products.Create)
	products.Put("/:id", requireAuth, requireAdmin, cfg.Products.Update)
	products.Delete("/:id", requireAuth, requireAdmin, cfg.Products.Delete)

	examples := app.Group("/examples")
	examples.Get("/", cfg.Examples.List)
	examples.Get("/:id", cfg.Examples.Get)
	examples.Post("/", requireAuth, cfg.Examples.Create)
	examples.Put("/:id", requireAuth, cfg.Examples.Update)
	examples.Delete("/:id", requireAuth, cfg.Examples.Delete)

	uploads := app.Group("/upload", requireAuth)
	uploads.Get("/auth", cfg.Uploads.AuthParams)
	uploads.Post("/image", cfg.Uploads.UploadImage)
	uploads.Delete("/:fileId", cfg.Uploads.DeleteImage)

	push := app.Group("/push")
	push.Get("/vapid-key", cfg.Push.VAPIDKey)
	push.Post("/subscribe", cfg.Push.Subscribe)
	push.Post("/unsubscribe", cfg.Push.Unsubscribe)
	push.Post("/send-test", requireAuth, requireAdmin, cfg.Push.SendTest)

	app.Post("/ai/chat", cfg.Chat.Chat)
}
