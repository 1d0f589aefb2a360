package consumer

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/meinhoongagan/bookify/booking"
	"github.com/meinhoongagan/bookify/middleware"
	"github.com/meinhoongagan/bookify/models"
	"github.com/meinhoongagan/bookify/store"
	"github.com/meinhoongagan/bookify/utils"
)

// Handler serves a customer's own bookings.
type Handler struct {
	Store  store.Store
	Booker *booking.Booker
}

func NewHandler(s store.Store, b *booking.Booker) *Handler {
	return &Handler{Store: s, Booker: b}
}

type bookInput struct {
	ProviderID uuid.UUID   `json:"provider_id"`
	ServiceIDs []uuid.UUID `json:"service_ids"`
	Date       string      `json:"date"`
	Slot       string      `json:"slot"`
}

// CreateAppointment books the selected services into one slot.
func (h *Handler) CreateAppointment(c *fiber.Ctx) error {
	input := new(bookInput)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Failed to parse request body", err)
	}
	if input.ProviderID == uuid.Nil {
		return utils.Fail(c, fiber.StatusBadRequest, "provider_id is required", nil)
	}

	res, err := h.Booker.Book(c.UserContext(), booking.Request{
		UserID:     middleware.UserID(c),
		ProviderID: input.ProviderID,
		ServiceIDs: input.ServiceIDs,
		Date:       input.Date,
		Slot:       input.Slot,
	})
	if err != nil {
		return utils.StoreError(c, err, "Booking failed")
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// GetMyAppointments lists the caller's bookings from their own copies.
func (h *Handler) GetMyAppointments(c *fiber.Ctx) error {
	f, err := utils.AppointmentFilter(c)
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid status filter", err)
	}
	list, total, err := h.Store.ListUserAppointments(c.UserContext(), middleware.UserID(c), f)
	if err != nil {
		return utils.StoreError(c, err, "Failed to fetch appointments")
	}
	return c.JSON(utils.NewPage(list, total, f.Page, f.Limit))
}

func (h *Handler) GetMyAppointment(c *fiber.Ctx) error {
	a, ok, err := h.ownAppointment(c)
	if !ok {
		return err
	}
	return c.JSON(a)
}

// CancelAppointment cancels one of the caller's bookings.
func (h *Handler) CancelAppointment(c *fiber.Ctx) error {
	a, ok, err := h.ownAppointment(c)
	if !ok {
		return err
	}
	updated, err := h.Store.UpdateAppointmentStatus(c.UserContext(), a.ID, models.StatusCancelled)
	if err != nil {
		return utils.StoreError(c, err, "Failed to cancel appointment")
	}
	return c.JSON(updated)
}

// ownAppointment loads :id and answers 404 unless it belongs to the caller.
func (h *Handler) ownAppointment(c *fiber.Ctx) (*models.Appointment, bool, error) {
	id, ok, err := utils.ParamID(c, "id")
	if !ok {
		return nil, false, err
	}
	a, err := h.Store.GetAppointment(c.UserContext(), id)
	if err != nil {
		return nil, false, utils.StoreError(c, err, "Appointment not found")
	}
	if a.UserID != middleware.UserID(c) {
		return nil, false, utils.Fail(c, fiber.StatusNotFound, "Appointment not found", nil)
	}
	return a, true, nil
}
