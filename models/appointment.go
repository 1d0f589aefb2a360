package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// MaxSpan is the longest time one appointment may occupy. Overlap lookups
// only need to scan back this far from the slot they check.
const MaxSpan = 24 * time.Hour

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// CanTransition checks a status change against
// pending -> confirmed -> cancelled (pending may also be cancelled directly).
func (s AppointmentStatus) CanTransition(to AppointmentStatus) error {
	switch s {
	case StatusPending:
		if to != StatusConfirmed && to != StatusCancelled {
			return fmt.Errorf("%w: from pending to %s", ErrInvalidTransition, to)
		}
	case StatusConfirmed:
		if to != StatusCancelled {
			return fmt.Errorf("%w: from confirmed to %s", ErrInvalidTransition, to)
		}
	case StatusCancelled:
		return fmt.Errorf("%w: no transitions allowed from cancelled", ErrInvalidTransition)
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, s)
	}
	return nil
}

// BookedService is the copy of a Service taken at booking time.
type BookedService struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Price    string    `json:"price"`
	Duration string    `json:"duration"`
}

type Appointment struct {
	ID           uuid.UUID                          `json:"id" gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID                          `json:"user_id" gorm:"type:uuid;not null;index"`
	UserName     string                             `json:"user_name"`
	UserEmail    string                             `json:"user_email,omitempty"`
	ProviderID   uuid.UUID                          `json:"provider_id" gorm:"type:uuid;not null;index"`
	ProviderName string                             `json:"provider_name"`
	Services     datatypes.JSONSlice[BookedService] `json:"services"`
	TotalPrice   float64                            `json:"total_price"`
	Date         time.Time                          `json:"date" gorm:"index"`
	EndsAt       time.Time                          `json:"ends_at"`
	Status       AppointmentStatus                  `json:"status" gorm:"type:varchar(20);not null;index"`
	CreatedAt    time.Time                          `json:"created_at"`
	UpdatedAt    time.Time                          `json:"updated_at"`
}

// UserAppointment is the per-user copy of an Appointment, kept under the
// same ID so a customer's bookings can be read without touching the
// global table.
type UserAppointment struct {
	Appointment
}

func (UserAppointment) TableName() string {
	return "user_appointments"
}

func (a *Appointment) Validate() error {
	if a.ID == uuid.Nil || a.UserID == uuid.Nil || a.ProviderID == uuid.Nil {
		return invalid("appointment is missing an id")
	}
	if len(a.Services) == 0 {
		return invalid("appointment has no services")
	}
	if a.Date.IsZero() {
		return invalid("appointment has no date")
	}
	if !a.EndsAt.IsZero() && (a.EndsAt.Before(a.Date) || a.EndsAt.Sub(a.Date) > MaxSpan) {
		return invalid("appointment span must be between 0 and 24 hours")
	}
	if !a.Status.Valid() {
		return invalid("unknown appointment status " + string(a.Status))
	}
	return nil
}

// ServiceNames lists the names of the booked services in booking order.
func (a *Appointment) ServiceNames() []string {
	names := make([]string, len(a.Services))
	for i, s := range a.Services {
		names[i] = s.Name
	}
	return names
}

// Overlaps reports whether the appointment occupies any part of [start, end).
func (a *Appointment) Overlaps(start, end time.Time) bool {
	ends := a.EndsAt
	if ends.IsZero() {
		ends = a.Date
	}
	return a.Date.Before(end) && ends.After(start)
}
