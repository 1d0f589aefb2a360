// Package store defines the persistence boundary shared by the SQL,
// Firestore and in-memory backends.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/meinhoongagan/bookify/models"
	"github.com/meinhoongagan/bookify/search"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
	// ErrIndexBuilding is returned while the backing store is still creating
	// an index a query needs. Retrying later succeeds.
	ErrIndexBuilding = errors.New("query index is still building")
)

type Store interface {
	// CreateUser stores u and, when p is not nil, its provider record in
	// the same write.
	CreateUser(ctx context.Context, u *models.User, p *models.ServiceProvider) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	SaveProvider(ctx context.Context, p *models.ServiceProvider) error
	GetProvider(ctx context.Context, id uuid.UUID) (*models.ServiceProvider, error)
	ListProviders(ctx context.Context, f search.ProviderFilter) ([]models.ServiceProvider, int64, error)
	// DeleteProvider hard deletes the provider with its services and gallery,
	// and the owning user record if there is one.
	DeleteProvider(ctx context.Context, id uuid.UUID) error

	CreateService(ctx context.Context, s *models.Service) error
	UpdateService(ctx context.Context, s *models.Service) error
	DeleteService(ctx context.Context, providerID, id uuid.UUID) error
	ListServices(ctx context.Context, providerID uuid.UUID) ([]models.Service, error)

	AddGalleryImage(ctx context.Context, g *models.GalleryImage) error
	ListGalleryImages(ctx context.Context, providerID uuid.UUID) ([]models.GalleryImage, error)
	DeleteGalleryImage(ctx context.Context, providerID, id uuid.UUID) error

	// CreateAppointment writes the global record and the per-user copy
	// atomically.
	CreateAppointment(ctx context.Context, a *models.Appointment) error
	GetAppointment(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
	ListAppointments(ctx context.Context, f search.AppointmentFilter) ([]models.Appointment, int64, error)
	// ListUserAppointments reads the per-user copies of userID.
	ListUserAppointments(ctx context.Context, userID uuid.UUID, f search.AppointmentFilter) ([]models.Appointment, int64, error)
	ListProviderAppointments(ctx context.Context, providerID uuid.UUID, from, to time.Time) ([]models.Appointment, error)
	// UpdateAppointmentStatus applies a status transition to both copies.
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, to models.AppointmentStatus) (*models.Appointment, error)
	// DeleteAppointment removes the global record and, if present, the
	// per-user copy.
	DeleteAppointment(ctx context.Context, id uuid.UUID) error
	// HasConflict reports whether a non-cancelled appointment of the
	// provider overlaps [start, end).
	HasConflict(ctx context.Context, providerID uuid.UUID, start, end time.Time) (bool, error)

	Close() error
}
