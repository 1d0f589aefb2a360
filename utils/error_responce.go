package utils

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/bookify/booking"
	"github.com/meinhoongagan/bookify/models"
	"github.com/meinhoongagan/bookify/store"
)

// ErrorResponse is a struct for error response
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func Fail(c *fiber.Ctx, status int, message string, err error) error {
	resp := ErrorResponse{Message: message}
	if err != nil {
		resp.Error = err.Error()
	}
	return c.Status(status).JSON(resp)
}

// StatusFor maps store and domain errors to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, store.ErrIndexBuilding), errors.Is(err, booking.ErrProviderBusy):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, store.ErrConflict), errors.Is(err, booking.ErrSlotTaken):
		return fiber.StatusConflict
	case errors.Is(err, models.ErrInvalidRecord),
		errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, booking.ErrInvalidSlot),
		errors.Is(err, booking.ErrInvalidDate),
		errors.Is(err, booking.ErrSlotInPast),
		errors.Is(err, booking.ErrNoServices),
		errors.Is(err, booking.ErrSpanTooLong),
		errors.Is(err, booking.ErrUnknownService):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// StoreError writes err with the status from StatusFor. Internal errors are
// logged and reported with msg only.
func StoreError(c *fiber.Ctx, err error, msg string) error {
	status := StatusFor(err)
	switch status {
	case fiber.StatusInternalServerError:
		log.Printf("%s %s: %s: %v", c.Method(), c.Path(), msg, err)
		return Fail(c, status, msg, nil)
	case fiber.StatusServiceUnavailable:
		c.Set(fiber.HeaderRetryAfter, "1")
		if errors.Is(err, store.ErrIndexBuilding) {
			return Fail(c, status, "The search index is still building, retry shortly", err)
		}
	}
	return Fail(c, status, msg, err)
}
