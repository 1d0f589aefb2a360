package models

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to AppointmentStatus
		ok       bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusConfirmed, StatusConfirmed, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusPending, false},
		{StatusPending, "done", false},
		{"", StatusConfirmed, false},
	}
	for _, tc := range tests {
		err := tc.from.CanTransition(tc.to)
		if tc.ok && err != nil {
			t.Errorf("%s -> %s: unexpected error %v", tc.from, tc.to, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("%s -> %s: got %v, want ErrInvalidTransition", tc.from, tc.to, err)
		}
	}
}

func TestAppointmentOverlaps(t *testing.T) {
	start := time.Date(2024, 7, 20, 14, 0, 0, 0, time.UTC)
	a := Appointment{Date: start, EndsAt: start.Add(time.Hour)}

	if !a.Overlaps(start.Add(30*time.Minute), start.Add(90*time.Minute)) {
		t.Errorf("Expected overlap with a window starting inside the appointment")
	}
	if a.Overlaps(start.Add(time.Hour), start.Add(2*time.Hour)) {
		t.Errorf("Back-to-back window must not overlap")
	}
	if a.Overlaps(start.Add(-time.Hour), start) {
		t.Errorf("Window ending at the start must not overlap")
	}
}

func TestValidateAppointmentSpan(t *testing.T) {
	start := time.Date(2024, 7, 20, 9, 0, 0, 0, time.UTC)
	a := Appointment{
		ID: uuid.New(), UserID: uuid.New(), ProviderID: uuid.New(),
		Services: []BookedService{{ID: uuid.New(), Name: "Haircut"}},
		Date:     start, EndsAt: start.Add(MaxSpan), Status: StatusConfirmed,
	}
	if err := a.Validate(); err != nil {
		t.Errorf("Appointment spanning exactly MaxSpan rejected: %v", err)
	}
	a.EndsAt = start.Add(MaxSpan + time.Minute)
	if err := a.Validate(); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("Appointment longer than MaxSpan: got %v, want ErrInvalidRecord", err)
	}
	a.EndsAt = start.Add(-time.Minute)
	if err := a.Validate(); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("Appointment ending before it starts: got %v, want ErrInvalidRecord", err)
	}
}

func TestValidate(t *testing.T) {
	p := ServiceProvider{ID: uuid.New(), BusinessName: "Glow Salon"}
	if err := p.Validate(); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("Provider without category: got %v, want ErrInvalidRecord", err)
	}
	p.ServiceCategory = "Salon"
	if err := p.Validate(); err != nil {
		t.Errorf("Valid provider rejected: %v", err)
	}

	g := GalleryImage{ID: uuid.New(), ProviderID: p.ID, URL: "ftp://example.com/a.png"}
	if err := g.Validate(); err == nil {
		t.Errorf("Expected non-http gallery url to be rejected")
	}
	g.URL = "https://cdn.example.com/a.png"
	if err := g.Validate(); err != nil {
		t.Errorf("Valid gallery image rejected: %v", err)
	}
}
