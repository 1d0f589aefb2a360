package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/bookify/controllers/admin"
	"github.com/meinhoongagan/bookify/middleware"
	"github.com/meinhoongagan/bookify/models"
)

// SetupAdminRoutes configures the moderation routes
func SetupAdminRoutes(app *fiber.App, h *admin.Handler, secret string) {
	group := app.Group("/admin", middleware.Protected(secret), middleware.RequireRole(models.RoleAdmin))

	group.Get("/providers", h.GetProviders)
	group.Delete("/providers/:id", h.DeleteProvider)

	group.Get("/appointments", h.GetAppointments)
	group.Patch("/appointments/:id/status", h.UpdateAppointmentStatus)
	group.Delete("/appointments/:id", h.DeleteAppointment)

	group.Get("/dashboard", h.GetDashboardOverview)
}
