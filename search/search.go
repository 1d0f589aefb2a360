// Package search filters, sorts and pages appointment and provider lists
// for the directory and the provider/admin dashboards.
package search

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meinhoongagan/bookify/models"
)

const MaxLimit = 100

type AppointmentFilter struct {
	Query      string
	Status     models.AppointmentStatus
	ProviderID uuid.UUID
	UserID     uuid.UUID
	From       time.Time // inclusive, zero means unbounded
	To         time.Time // exclusive, zero means unbounded
	Descending bool
	Page       int
	Limit      int // 0 returns every match
}

type ProviderFilter struct {
	Query    string
	Category string
	Location string
	Page     int
	Limit    int
}

// MatchAppointment reports whether a passes every set field of f. The text
// query is a case-insensitive substring match over the customer name, the
// provider name and the names of all booked services.
func MatchAppointment(a *models.Appointment, f AppointmentFilter) bool {
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.ProviderID != uuid.Nil && a.ProviderID != f.ProviderID {
		return false
	}
	if f.UserID != uuid.Nil && a.UserID != f.UserID {
		return false
	}
	if !f.From.IsZero() && a.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !a.Date.Before(f.To) {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	if contains(a.UserName, q) || contains(a.ProviderName, q) {
		return true
	}
	for _, s := range a.Services {
		if contains(s.Name, q) {
			return true
		}
	}
	return false
}

// Appointments returns the requested page of matches sorted by date, and
// the total number of matches.
func Appointments(list []models.Appointment, f AppointmentFilter) ([]models.Appointment, int) {
	out := make([]models.Appointment, 0, len(list))
	for i := range list {
		if MatchAppointment(&list[i], f) {
			out = append(out, list[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if f.Descending {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Date.Before(out[j].Date)
	})
	return Page(out, f.Page, f.Limit), len(out)
}

func MatchProvider(p *models.ServiceProvider, f ProviderFilter) bool {
	if f.Category != "" && p.ServiceCategory != f.Category {
		return false
	}
	if loc := strings.ToLower(strings.TrimSpace(f.Location)); loc != "" && !contains(p.Address, loc) {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	return contains(p.BusinessName, q) || contains(p.FullName, q) || contains(p.ServiceCategory, q)
}

// Providers returns the requested page of matching providers ordered by
// business name, and the total number of matches.
func Providers(list []models.ServiceProvider, f ProviderFilter) ([]models.ServiceProvider, int) {
	out := make([]models.ServiceProvider, 0, len(list))
	for i := range list {
		if MatchProvider(&list[i], f) {
			out = append(out, list[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].BusinessName), strings.ToLower(out[j].BusinessName)
		if a != b {
			return a < b
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return Page(out, f.Page, f.Limit), len(out)
}

// Categories lists the distinct service categories in alphabetical order.
func Categories(list []models.ServiceProvider) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range list {
		c := strings.TrimSpace(p.ServiceCategory)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Page slices out page (1-based) of size limit. A limit of 0 returns
// everything.
func Page[T any](list []T, page, limit int) []T {
	if limit <= 0 {
		return list
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(list) {
		return []T{}
	}
	end := start + limit
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}

// Offset converts a page and limit into a SQL offset, clamping like Page.
func Offset(page, limit int) (offset, clampedLimit int) {
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit, limit
}

func contains(field, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(field), lowerQuery)
}
