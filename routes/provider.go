package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/bookify/controllers"
)

// SetupDirectoryRoutes configures the public provider directory
func SetupDirectoryRoutes(app *fiber.App, h *controllers.ProviderHandler) {
	app.Get("/categories", h.Categories)

	providers := app.Group("/providers")
	providers.Get("/", h.ListProviders)
	providers.Get("/:id", h.GetProvider)
	providers.Get("/:id/services", h.ListServices)
	providers.Get("/:id/gallery", h.ListGallery)
	providers.Get("/:id/slots", h.Slots)
	providers.Post("/:id/quote", h.Quote)
}
