// Package admin serves platform-wide moderation routes.
package admin

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/bookify/models"
	"github.com/meinhoongagan/bookify/search"
	"github.com/meinhoongagan/bookify/store"
	"github.com/meinhoongagan/bookify/utils"
)

type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type Handler struct {
	Store store.Store
	Cache Invalidator // optional
	Now   func() time.Time
}

func NewHandler(s store.Store, cache Invalidator) *Handler {
	return &Handler{Store: s, Cache: cache, Now: time.Now}
}

func (h *Handler) GetProviders(c *fiber.Ctx) error {
	f := utils.ProviderFilter(c)
	list, total, err := h.Store.ListProviders(c.UserContext(), f)
	if err != nil {
		return utils.StoreError(c, err, "Failed to fetch providers")
	}
	return c.JSON(utils.NewPage(list, total, f.Page, f.Limit))
}

// DeleteProvider removes a provider with its catalog, gallery and login.
func (h *Handler) DeleteProvider(c *fiber.Ctx) error {
	id, ok, err := utils.ParamID(c, "id")
	if !ok {
		return err
	}
	ctx := c.UserContext()
	if err := h.Store.DeleteProvider(ctx, id); err != nil {
		return utils.StoreError(c, err, "Provider not found")
	}
	if h.Cache != nil {
		if err := h.Cache.Invalidate(ctx); err != nil {
			log.Printf("Failed to invalidate provider cache: %v", err)
		}
	}
	log.Printf("Deleted provider %s", id)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) GetAppointments(c *fiber.Ctx) error {
	f, err := utils.AppointmentFilter(c)
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid status filter", err)
	}
	list, total, err := h.Store.ListAppointments(c.UserContext(), f)
	if err != nil {
		return utils.StoreError(c, err, "Failed to fetch appointments")
	}
	return c.JSON(utils.NewPage(list, total, f.Page, f.Limit))
}

// UpdateAppointmentStatus applies any allowed transition.
func (h *Handler) UpdateAppointmentStatus(c *fiber.Ctx) error {
	id, ok, err := utils.ParamID(c, "id")
	if !ok {
		return err
	}
	var input struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Cannot parse JSON", err)
	}
	to := models.AppointmentStatus(strings.ToLower(strings.TrimSpace(input.Status)))
	if !to.Valid() {
		return utils.Fail(c, fiber.StatusBadRequest, "Unknown status", nil)
	}
	updated, err := h.Store.UpdateAppointmentStatus(c.UserContext(), id, to)
	if err != nil {
		return utils.StoreError(c, err, "Failed to update appointment")
	}
	return c.JSON(updated)
}

func (h *Handler) DeleteAppointment(c *fiber.Ctx) error {
	id, ok, err := utils.ParamID(c, "id")
	if !ok {
		return err
	}
	if err := h.Store.DeleteAppointment(c.UserContext(), id); err != nil {
		return utils.StoreError(c, err, "Appointment not found")
	}
	log.Printf("Deleted appointment %s", id)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) GetDashboardOverview(c *fiber.Ctx) error {
	ctx := c.UserContext()
	list, _, err := h.Store.ListAppointments(ctx, search.AppointmentFilter{})
	if err != nil {
		return utils.StoreError(c, err, "Failed to fetch appointments")
	}
	_, providers, err := h.Store.ListProviders(ctx, search.ProviderFilter{Limit: 1})
	if err != nil {
		return utils.StoreError(c, err, "Failed to fetch providers")
	}
	var statistics struct {
		search.Summary
		TotalProviders int64 `json:"total_providers"`
	}
	statistics.Summary = search.Summarize(list, h.Now())
	statistics.TotalProviders = providers
	return c.JSON(statistics)
}
