package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/bookify/middleware"
	"github.com/meinhoongagan/bookify/store"
	"github.com/meinhoongagan/bookify/utils"
)

// Invalidator drops cached directory listings.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Handler serves the provider's own business: profile, catalog, gallery
// and bookings. Every route acts on the caller's provider record.
type Handler struct {
	Store store.Store
	Cache Invalidator // optional
	Now   func() time.Time
}

func NewHandler(s store.Store, cache Invalidator) *Handler {
	return &Handler{Store: s, Cache: cache, Now: time.Now}
}

func (h *Handler) invalidate(ctx context.Context) {
	if h.Cache == nil {
		return
	}
	if err := h.Cache.Invalidate(ctx); err != nil {
		log.Printf("Failed to invalidate provider cache: %v", err)
	}
}

func (h *Handler) GetProfile(c *fiber.Ctx) error {
	p, err := h.Store.GetProvider(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return utils.StoreError(c, err, "Provider profile not found")
	}
	return c.JSON(p)
}

type profileInput struct {
	BusinessName    *string `json:"business_name"`
	FullName        *string `json:"full_name"`
	ServiceCategory *string `json:"service_category"`
	Address         *string `json:"address"`
	PhoneNumber     *string `json:"phone_number"`
	ProfileImageURL *string `json:"profile_image_url"`
}

// UpdateProfile applies the fields present in the body.
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	p, err := h.Store.GetProvider(ctx, middleware.UserID(c))
	if err != nil {
		return utils.StoreError(c, err, "Provider profile not found")
	}
	input := new(profileInput)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Cannot parse JSON", err)
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&p.BusinessName, input.BusinessName)
	set(&p.FullName, input.FullName)
	set(&p.ServiceCategory, input.ServiceCategory)
	set(&p.Address, input.Address)
	set(&p.PhoneNumber, input.PhoneNumber)
	set(&p.ProfileImageURL, input.ProfileImageURL)

	if err := h.Store.SaveProvider(ctx, p); err != nil {
		return utils.StoreError(c, err, "Failed to update profile")
	}
	h.invalidate(ctx)
	return c.JSON(p)
}
