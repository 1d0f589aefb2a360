package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/bookify/controllers"
	"github.com/meinhoongagan/bookify/middleware"
)

// SetupAuthRoutes configures all authentication related routes
func SetupAuthRoutes(app *fiber.App, h *controllers.AuthHandler, secret string) {
	auth := app.Group("/auth")

	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)

	auth.Get("/me", middleware.Protected(secret), h.Me)
}
