package controllers

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/meinhoongagan/bookify/booking"
	"github.com/meinhoongagan/bookify/redis"
	"github.com/meinhoongagan/bookify/search"
	"github.com/meinhoongagan/bookify/store"
	"github.com/meinhoongagan/bookify/utils"
)

// DirectoryCache caches provider listings. On a miss Get returns the page
// to fill and hand back to Set, or nil when the lookup itself failed.
type DirectoryCache interface {
	Get(ctx context.Context, f search.ProviderFilter) (*redis.ProviderPage, bool, error)
	Set(ctx context.Context, f search.ProviderFilter, page *redis.ProviderPage) error
	Invalidate(ctx context.Context) error
}

// ProviderHandler serves the public provider directory.
type ProviderHandler struct {
	Store  store.Store
	Booker *booking.Booker
	Cache  DirectoryCache // optional
}

func NewProviderHandler(s store.Store, b *booking.Booker, cache DirectoryCache) *ProviderHandler {
	return &ProviderHandler{Store: s, Booker: b, Cache: cache}
}

func (h *ProviderHandler) Categories(c *fiber.Ctx) error {
	providers, _, err := h.Store.ListProviders(c.UserContext(), search.ProviderFilter{})
	if err != nil {
		return utils.StoreError(c, err, "Failed to fetch categories")
	}
	return c.JSON(fiber.Map{"categories": search.Categories(providers)})
}

func (h *ProviderHandler) ListProviders(c *fiber.Ctx) error {
	ctx := c.UserContext()
	f := utils.ProviderFilter(c)

	var miss *redis.ProviderPage
	if h.Cache != nil {
		page, ok, err := h.Cache.Get(ctx, f)
		if err != nil {
			log.Printf("Provider cache read failed: %v", err)
		}
		if ok {
			return c.JSON(utils.NewPage(page.Providers, page.Total, f.Page, f.Limit))
		}
		miss = page
	}

	providers, total, err := h.Store.ListProviders(ctx, f)
	if err != nil {
		return utils.StoreError(c, err, "Failed to fetch providers")
	}
	if miss != nil {
		miss.Providers, miss.Total = providers, total
		if err := h.Cache.Set(ctx, f, miss); err != nil {
			log.Printf("Provider cache write failed: %v", err)
		}
	}
	return c.JSON(utils.NewPage(providers, total, f.Page, f.Limit))
}

func (h *ProviderHandler) GetProvider(c *fiber.Ctx) error {
	id, ok, err := utils.ParamID(c, "id")
	if !ok {
		return err
	}
	p, err := h.Store.GetProvider(c.UserContext(), id)
	if err != nil {
		return utils.StoreError(c, err, "Provider not found")
	}
	return c.JSON(p)
}

func (h *ProviderHandler) ListServices(c *fiber.Ctx) error {
	id, ok, err := utils.ParamID(c, "id")
	if !ok {
		return err
	}
	ctx := c.UserContext()
	if _, err := h.Store.GetProvider(ctx, id); err != nil {
		return utils.StoreError(c, err, "Provider not found")
	}
	services, err := h.Store.ListServices(ctx, id)
	if err != nil {
		return utils.StoreError(c, err, "Failed to fetch services")
	}
	return c.JSON(fiber.Map{"services": utils.NonNil(services)})
}

func (h *ProviderHandler) ListGallery(c *fiber.Ctx) error {
	id, ok, err := utils.ParamID(c, "id")
	if !ok {
		return err
	}
	images, err := h.Store.ListGalleryImages(c.UserContext(), id)
	if err != nil {
		return utils.StoreError(c, err, "Failed to fetch gallery")
	}
	return c.JSON(fiber.Map{"images": utils.NonNil(images)})
}

// Slots lists the bookable slots of ?date=YYYY-MM-DD.
func (h *ProviderHandler) Slots(c *fiber.Ctx) error {
	id, ok, err := utils.ParamID(c, "id")
	if !ok {
		return err
	}
	date := c.Query("date")
	slots, err := h.Booker.Availability(c.UserContext(), id, date)
	if err != nil {
		return utils.StoreError(c, err, "Failed to fetch slots")
	}
	return c.JSON(fiber.Map{"date": date, "slots": slots})
}

type quoteInput struct {
	ServiceIDs []uuid.UUID `json:"service_ids"`
}

// Quote prices a set of services before booking.
func (h *ProviderHandler) Quote(c *fiber.Ctx) error {
	id, ok, err := utils.ParamID(c, "id")
	if !ok {
		return err
	}
	input := new(quoteInput)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Cannot parse JSON", err)
	}
	q, err := h.Booker.Quote(c.UserContext(), id, input.ServiceIDs)
	if err != nil {
		return utils.StoreError(c, err, "Failed to price services")
	}
	return c.JSON(q)
}
