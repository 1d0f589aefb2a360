package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/bookify/controllers/consumer"
	"github.com/meinhoongagan/bookify/middleware"
)

// SetupAppointmentRoutes configures the customer booking routes
func SetupAppointmentRoutes(app *fiber.App, h *consumer.Handler, secret string) {
	appointment := app.Group("/appointments", middleware.Protected(secret))
	appointment.Post("/", h.CreateAppointment)
	appointment.Get("/mine", h.GetMyAppointments)
	appointment.Get("/mine/:id", h.GetMyAppointment)
	appointment.Patch("/:id/cancel", h.CancelAppointment)
}
