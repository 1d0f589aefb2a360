package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/bookify/controllers/service"
	"github.com/meinhoongagan/bookify/middleware"
	"github.com/meinhoongagan/bookify/models"
)

// SetupProviderRoutes configures the routes a service provider uses to run
// their business
func SetupProviderRoutes(app *fiber.App, h *service.Handler, secret string) {
	provider := app.Group("/provider", middleware.Protected(secret), middleware.RequireRole(models.RoleServiceProvider))

	provider.Get("/profile", h.GetProfile)
	provider.Patch("/profile", h.UpdateProfile)

	provider.Get("/services", h.GetServices)
	provider.Post("/services", h.CreateService)
	provider.Put("/services/:id", h.UpdateService)
	provider.Delete("/services/:id", h.DeleteService)

	provider.Get("/gallery", h.GetGallery)
	provider.Post("/gallery", h.AddGalleryImage)
	provider.Delete("/gallery/:id", h.DeleteGalleryImage)

	provider.Get("/appointments", h.GetAppointments)
	provider.Patch("/appointments/:id/status", h.UpdateAppointmentStatus)

	provider.Get("/dashboard", h.GetDashboardOverview)
}
