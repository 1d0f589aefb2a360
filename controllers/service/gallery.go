package service

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/bookify/middleware"
	"github.com/meinhoongagan/bookify/models"
	"github.com/meinhoongagan/bookify/utils"
)

func (h *Handler) GetGallery(c *fiber.Ctx) error {
	images, err := h.Store.ListGalleryImages(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return utils.StoreError(c, err, "Failed to fetch gallery")
	}
	return c.JSON(fiber.Map{"images": utils.NonNil(images)})
}

// AddGalleryImage records an already hosted image URL.
func (h *Handler) AddGalleryImage(c *fiber.Ctx) error {
	var input struct {
		URL string `json:"url"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Cannot parse JSON", err)
	}
	img := &models.GalleryImage{
		ProviderID: middleware.UserID(c),
		URL:        strings.TrimSpace(input.URL),
		CreatedAt:  h.Now(),
	}
	if err := h.Store.AddGalleryImage(c.UserContext(), img); err != nil {
		return utils.StoreError(c, err, "Failed to add image")
	}
	return c.Status(fiber.StatusCreated).JSON(img)
}

func (h *Handler) DeleteGalleryImage(c *fiber.Ctx) error {
	id, ok, err := utils.ParamID(c, "id")
	if !ok {
		return err
	}
	if err := h.Store.DeleteGalleryImage(c.UserContext(), middleware.UserID(c), id); err != nil {
		return utils.StoreError(c, err, "Image not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
