package search

import (
	"math"
	"time"

	"github.com/meinhoongagan/bookify/models"
)

type Summary struct {
	TotalAppointments int       `json:"total_appointments"`
	PendingCount      int       `json:"pending_count"`
	ConfirmedCount    int       `json:"confirmed_count"`
	CancelledCount    int       `json:"cancelled_count"`
	UpcomingCount     int       `json:"upcoming_count"`
	TotalRevenue      float64   `json:"total_revenue"`
	LastUpdated       time.Time `json:"last_updated"`
}

// Summarize counts appointments per status. Revenue only includes
// confirmed bookings.
func Summarize(list []models.Appointment, now time.Time) Summary {
	s := Summary{TotalAppointments: len(list), LastUpdated: now}
	for _, a := range list {
		switch a.Status {
		case models.StatusPending:
			s.PendingCount++
		case models.StatusConfirmed:
			s.ConfirmedCount++
			s.TotalRevenue += a.TotalPrice
		case models.StatusCancelled:
			s.CancelledCount++
		}
		if a.Status != models.StatusCancelled && a.Date.After(now) {
			s.UpcomingCount++
		}
	}
	s.TotalRevenue = math.Round(s.TotalRevenue*100) / 100
	return s
}
