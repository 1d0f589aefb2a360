package service

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/bookify/middleware"
	"github.com/meinhoongagan/bookify/models"
	"github.com/meinhoongagan/bookify/utils"
)

type serviceInput struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Duration string `json:"duration"`
}

func (h *Handler) GetServices(c *fiber.Ctx) error {
	services, err := h.Store.ListServices(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return utils.StoreError(c, err, "Failed to fetch services")
	}
	return c.JSON(fiber.Map{"services": utils.NonNil(services)})
}

func (h *Handler) CreateService(c *fiber.Ctx) error {
	input := new(serviceInput)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Cannot parse JSON", err)
	}
	svc := &models.Service{
		ProviderID: middleware.UserID(c),
		Name:       strings.TrimSpace(input.Name),
		Price:      strings.TrimSpace(input.Price),
		Duration:   strings.TrimSpace(input.Duration),
	}
	ctx := c.UserContext()
	if err := h.Store.CreateService(ctx, svc); err != nil {
		return utils.StoreError(c, err, "Failed to create service")
	}
	h.invalidate(ctx)
	return c.Status(fiber.StatusCreated).JSON(svc)
}

func (h *Handler) UpdateService(c *fiber.Ctx) error {
	id, ok, err := utils.ParamID(c, "id")
	if !ok {
		return err
	}
	input := new(serviceInput)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Cannot parse JSON", err)
	}
	svc := &models.Service{
		ID:         id,
		ProviderID: middleware.UserID(c),
		Name:       strings.TrimSpace(input.Name),
		Price:      strings.TrimSpace(input.Price),
		Duration:   strings.TrimSpace(input.Duration),
	}
	ctx := c.UserContext()
	if err := h.Store.UpdateService(ctx, svc); err != nil {
		return utils.StoreError(c, err, "Failed to update service")
	}
	h.invalidate(ctx)
	return c.JSON(svc)
}

func (h *Handler) DeleteService(c *fiber.Ctx) error {
	id, ok, err := utils.ParamID(c, "id")
	if !ok {
		return err
	}
	ctx := c.UserContext()
	if err := h.Store.DeleteService(ctx, middleware.UserID(c), id); err != nil {
		return utils.StoreError(c, err, "Service not found")
	}
	h.invalidate(ctx)
	return c.SendStatus(fiber.StatusNoContent)
}
