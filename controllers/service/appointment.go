package service

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/bookify/middleware"
	"github.com/meinhoongagan/bookify/models"
	"github.com/meinhoongagan/bookify/utils"
)

// GetAppointments lists bookings made with the caller's business.
func (h *Handler) GetAppointments(c *fiber.Ctx) error {
	f, err := utils.AppointmentFilter(c)
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid status filter", err)
	}
	f.ProviderID = middleware.UserID(c)
	list, total, err := h.Store.ListAppointments(c.UserContext(), f)
	if err != nil {
		return utils.StoreError(c, err, "Failed to fetch appointments")
	}
	return c.JSON(utils.NewPage(list, total, f.Page, f.Limit))
}

type statusInput struct {
	Status string `json:"status"`
}

// UpdateAppointmentStatus confirms or cancels one of the caller's bookings.
func (h *Handler) UpdateAppointmentStatus(c *fiber.Ctx) error {
	id, ok, err := utils.ParamID(c, "id")
	if !ok {
		return err
	}
	input := new(statusInput)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Cannot parse JSON", err)
	}
	to := models.AppointmentStatus(strings.ToLower(strings.TrimSpace(input.Status)))
	if to != models.StatusConfirmed && to != models.StatusCancelled {
		return utils.Fail(c, fiber.StatusBadRequest, "Status must be confirmed or cancelled", nil)
	}

	ctx := c.UserContext()
	a, err := h.Store.GetAppointment(ctx, id)
	if err != nil {
		return utils.StoreError(c, err, "Appointment not found")
	}
	if a.ProviderID != middleware.UserID(c) {
		return utils.Fail(c, fiber.StatusNotFound, "Appointment not found", nil)
	}
	updated, err := h.Store.UpdateAppointmentStatus(ctx, id, to)
	if err != nil {
		return utils.StoreError(c, err, "Failed to update appointment")
	}
	return c.JSON(updated)
}
