package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	applog "chidi/internal/log"
)

// Routes mounts every endpoint on app. Global middleware is the caller's.
func Routes(app *fiber.App, d *Deps) {
	bearer := RequireBearer(d.Auth)
	owner := RequireOwner()

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	// Auth (login throttled)
	auth := app.Group("/api/auth")
	auth.Post("/register", d.AuthHandler.Register)
	auth.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many attempts. Please try again later."})
		},
	}), d.AuthHandler.Login)
	auth.Post("/refresh", d.AuthHandler.Refresh)
	auth.Post("/password-reset/request", d.AuthHandler.RequestReset)
	auth.Post("/password-reset/confirm", d.AuthHandler.ConfirmReset)
	auth.Post("/webhooks/clerk", d.AuthHandler.Webhook)

	auth.Get("/profile", bearer, d.AuthHandler.Profile)
	auth.Put("/profile", bearer, d.AuthHandler.UpdateProfile)
	auth.Post("/onboarding", bearer, d.AuthHandler.Onboarding)
	auth.Get("/onboarding/status", bearer, d.AuthHandler.OnboardingStatus)
	auth.Delete("/account", bearer, d.AuthHandler.DeleteAccount)

	// Shop API
	api := app.Group("/api/v1", bearer)

	api.Get("/products", d.ProductHandler.List)
	api.Post("/products", d.ProductHandler.Create)
	api.Post("/products/delete", owner, d.ProductHandler.Delete)
	api.Put("/products/:id", d.ProductHandler.Update)

	api.Get("/customers", d.CustomerHandler.List)
	api.Post("/customers", d.CustomerHandler.Create)
	api.Put("/customers/:id", d.CustomerHandler.Update)
	api.Put("/customers/:id/status", d.CustomerHandler.UpdateStatus)

	api.Get("/orders", d.OrderHandler.List)
	api.Post("/orders", d.OrderHandler.Place)
	api.Get("/orders/:id", d.OrderHandler.Get)
	api.Put("/orders/:id/status", d.OrderHandler.UpdateStatus)
	api.Put("/orders/:id/payment", d.OrderHandler.UpdatePayment)

	api.Get("/notifications", d.NotificationHandler.List)
	api.Post("/notifications/read-all", d.NotificationHandler.MarkAllRead)
	api.Post("/notifications/:id/read", d.NotificationHandler.MarkRead)
	api.Delete("/notifications/:id", d.NotificationHandler.Dismiss)
	api.Delete("/notifications", owner, d.NotificationHandler.Clear)

	// Pages
	app.Get("/dashboard", bearer, d.DashboardHandler.Show)

	// 404
	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Page not found")
	})
}
