package firestoredb

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/meinhoongagan/bookify/models"
	"github.com/meinhoongagan/bookify/store"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestMapErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"not found", status.Error(codes.NotFound, "no such document"), store.ErrNotFound},
		{"already exists", status.Error(codes.AlreadyExists, "document exists"), store.ErrConflict},
		{"missing index", status.Error(codes.FailedPrecondition, "The query requires an index. You can create it here: https://console.firebase.google.com/..."), store.ErrIndexBuilding},
		{"building index", status.Error(codes.FailedPrecondition, "The query requires an index. That index is currently building and cannot be used yet."), store.ErrIndexBuilding},
		{"domain error passes through", fmt.Errorf("x: %w", models.ErrInvalidTransition), models.ErrInvalidTransition},
		{"conflict passes through", fmt.Errorf("%w: email", store.ErrConflict), store.ErrConflict},
	}
	for _, tt := range tests {
		if got := mapErr(tt.err, "thing"); !errors.Is(got, tt.want) {
			t.Errorf("%s: mapErr = %v, want %v", tt.name, got, tt.want)
		}
	}
	if mapErr(nil, "thing") != nil {
		t.Error("mapErr(nil) is not nil")
	}
	other := status.Error(codes.Unavailable, "try again")
	if got := mapErr(other, "thing"); got != other {
		t.Errorf("unavailable error rewritten to %v", got)
	}
}

func TestAppointmentDocKeepsEveryField(t *testing.T) {
	at := time.Date(2024, 7, 20, 14, 30, 0, 0, time.UTC)
	a := &models.Appointment{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		UserName:     "Asha Rao",
		UserEmail:    "asha@example.com",
		ProviderID:   uuid.New(),
		ProviderName: "Ravi's Salon",
		Services: []models.BookedService{
			{ID: uuid.New(), Name: "Haircut", Price: "500", Duration: "1 hr"},
			{ID: uuid.New(), Name: "Shave", Price: "299.99", Duration: "45 mins"},
		},
		TotalPrice: 799.99,
		Date:       at,
		EndsAt:     at.Add(105 * time.Minute),
		Status:     models.StatusConfirmed,
		CreatedAt:  at.Add(-time.Hour),
		UpdatedAt:  at.Add(-time.Hour),
	}
	got, err := fromAppointmentDoc(a.ID, toAppointmentDoc(a))
	if err != nil {
		t.Fatalf("fromAppointmentDoc: %v", err)
	}
	if diff := cmp.Diff(a, got); diff != "" {
		t.Errorf("appointment changed through its document (-want +got):\n%s", diff)
	}
}

func TestFromAppointmentDocValidates(t *testing.T) {
	good := appointmentDoc{
		UserID:     uuid.NewString(),
		ProviderID: uuid.NewString(),
		Services:   []bookedServiceDoc{{ID: uuid.NewString(), Name: "Haircut"}},
		Date:       time.Now(),
		Status:     "confirmed",
	}
	tests := []struct {
		name string
		edit func(*appointmentDoc)
	}{
		{"bad user id", func(d *appointmentDoc) { d.UserID = "42" }},
		{"bad provider id", func(d *appointmentDoc) { d.ProviderID = "" }},
		{"bad service id", func(d *appointmentDoc) { d.Services[0].ID = "x" }},
		{"no services", func(d *appointmentDoc) { d.Services = nil }},
		{"unknown status", func(d *appointmentDoc) { d.Status = "done" }},
		{"no date", func(d *appointmentDoc) { d.Date = time.Time{} }},
	}
	for _, tt := range tests {
		d := good
		d.Services = append([]bookedServiceDoc(nil), good.Services...)
		tt.edit(&d)
		if _, err := fromAppointmentDoc(uuid.New(), &d); !errors.Is(err, models.ErrInvalidRecord) {
			t.Errorf("%s: error = %v, want ErrInvalidRecord", tt.name, err)
		}
	}
}
