package service

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/bookify/middleware"
	"github.com/meinhoongagan/bookify/search"
	"github.com/meinhoongagan/bookify/utils"
)

func (h *Handler) GetDashboardOverview(c *fiber.Ctx) error {
	ctx := c.UserContext()
	providerID := middleware.UserID(c)

	list, _, err := h.Store.ListAppointments(ctx, search.AppointmentFilter{ProviderID: providerID})
	if err != nil {
		return utils.StoreError(c, err, "Failed to fetch appointments")
	}
	services, err := h.Store.ListServices(ctx, providerID)
	if err != nil {
		return utils.StoreError(c, err, "Failed to fetch services")
	}

	var statistics struct {
		search.Summary
		TotalServices int `json:"total_services"`
	}
	statistics.Summary = search.Summarize(list, h.Now())
	statistics.TotalServices = len(services)
	return c.JSON(statistics)
}
