package utils

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/meinhoongagan/bookify/models"
	"github.com/meinhoongagan/bookify/search"
)

const defaultLimit = 20

var ErrInvalidStatus = errors.New("unknown appointment status")

// ParamID parses the named route parameter as a uuid, writing a 400 when
// it is not one.
func ParamID(c *fiber.Ctx, name string) (uuid.UUID, bool, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, false, Fail(c, fiber.StatusBadRequest, "Invalid "+name, err)
	}
	return id, true, nil
}

// AppointmentFilter reads q, status, sort (asc|desc), page and limit.
func AppointmentFilter(c *fiber.Ctx) (search.AppointmentFilter, error) {
	f := search.AppointmentFilter{
		Query:      c.Query("q"),
		Descending: strings.EqualFold(c.Query("sort"), "desc"),
		Page:       c.QueryInt("page", 1),
		Limit:      c.QueryInt("limit", defaultLimit),
	}
	if s := c.Query("status"); s != "" && !strings.EqualFold(s, "all") {
		f.Status = models.AppointmentStatus(strings.ToLower(s))
		if !f.Status.Valid() {
			return f, ErrInvalidStatus
		}
	}
	return f, nil
}

// ProviderFilter reads q, category, location, page and limit.
func ProviderFilter(c *fiber.Ctx) search.ProviderFilter {
	return search.ProviderFilter{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Location: c.Query("location"),
		Page:     c.QueryInt("page", 1),
		Limit:    c.QueryInt("limit", defaultLimit),
	}
}

// PageResponse wraps one page of a list endpoint.
type PageResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

func NewPage[T any](items []T, total int64, page, limit int) PageResponse[T] {
	items = NonNil(items)
	if page < 1 {
		page = 1
	}
	if limit > search.MaxLimit {
		limit = search.MaxLimit
	}
	return PageResponse[T]{Items: items, Total: total, Page: page, Limit: limit}
}

// NonNil makes an empty list encode as [] rather than null.
func NonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
