package booking

import (
	"errors"

	"github.com/google/uuid"
	"github.com/meinhoongagan/bookify/models"
)

var ErrAlreadySelected = errors.New("service already selected")

// Selection is the ordered set of services a customer has picked, unique
// by service ID.
type Selection struct {
	items []models.Service
	index map[uuid.UUID]int
}

func NewSelection() *Selection {
	return &Selection{index: make(map[uuid.UUID]int)}
}

// Add appends s. Adding a service that is already selected leaves the
// selection unchanged and returns ErrAlreadySelected.
func (sel *Selection) Add(s models.Service) error {
	if _, ok := sel.index[s.ID]; ok {
		return ErrAlreadySelected
	}
	sel.index[s.ID] = len(sel.items)
	sel.items = append(sel.items, s)
	return nil
}

// Remove drops the service with the given ID and reports whether it was
// selected.
func (sel *Selection) Remove(id uuid.UUID) bool {
	i, ok := sel.index[id]
	if !ok {
		return false
	}
	sel.items = append(sel.items[:i], sel.items[i+1:]...)
	delete(sel.index, id)
	for j := i; j < len(sel.items); j++ {
		sel.index[sel.items[j].ID] = j
	}
	return true
}

func (sel *Selection) Has(id uuid.UUID) bool {
	_, ok := sel.index[id]
	return ok
}

func (sel *Selection) Len() int { return len(sel.items) }

func (sel *Selection) Services() []models.Service {
	out := make([]models.Service, len(sel.items))
	copy(out, sel.items)
	return out
}

func (sel *Selection) BookedServices() []models.BookedService {
	out := make([]models.BookedService, len(sel.items))
	for i, s := range sel.items {
		out[i] = s.Booked()
	}
	return out
}

func (sel *Selection) TotalPrice() float64 {
	total := 0.0
	for _, s := range sel.items {
		total += ParsePrice(s.Price)
	}
	return roundCents(total)
}

func (sel *Selection) TotalMinutes() int {
	total := 0
	for _, s := range sel.items {
		total += ParseDurationMinutes(s.Duration)
	}
	return total
}

func (sel *Selection) TotalDuration() string {
	return FormatMinutes(sel.TotalMinutes())
}
