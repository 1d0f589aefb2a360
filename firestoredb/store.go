// Package firestoredb stores bookings in Cloud Firestore, using the
// collections of the original web app:
//
//	users/{id}
//	users/{id}/appointments/{appointmentID}
//	serviceProviders/{id}
//	serviceProviders/{id}/services/{serviceID}
//	serviceProviders/{id}/imageGallery/{imageID}
//	appointments/{appointmentID}
//
// Firestore has no substring search, so text filters run in memory over
// the fetched documents.
package firestoredb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/meinhoongagan/bookify/models"
	"github.com/meinhoongagan/bookify/search"
	"github.com/meinhoongagan/bookify/store"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	usersCollection        = "users"
	providersCollection    = "serviceProviders"
	servicesCollection     = "services"
	galleryCollection      = "imageGallery"
	appointmentsCollection = "appointments"
)

type Store struct {
	client *firestore.Client
}

var _ store.Store = (*Store)(nil)

func New(client *firestore.Client) *Store {
	return &Store{client: client}
}

// Open creates a client for projectID using the ambient credentials.
func Open(ctx context.Context, projectID string) (*Store, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("while creating firestore client: %w", err)
	}
	return New(client), nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) userRef(id uuid.UUID) *firestore.DocumentRef {
	return s.client.Collection(usersCollection).Doc(id.String())
}

func (s *Store) providerRef(id uuid.UUID) *firestore.DocumentRef {
	return s.client.Collection(providersCollection).Doc(id.String())
}

func (s *Store) services(providerID uuid.UUID) *firestore.CollectionRef {
	return s.providerRef(providerID).Collection(servicesCollection)
}

func (s *Store) gallery(providerID uuid.UUID) *firestore.CollectionRef {
	return s.providerRef(providerID).Collection(galleryCollection)
}

func (s *Store) appointmentRef(id uuid.UUID) *firestore.DocumentRef {
	return s.client.Collection(appointmentsCollection).Doc(id.String())
}

func (s *Store) userAppointmentRef(userID, id uuid.UUID) *firestore.DocumentRef {
	return s.userRef(userID).Collection(appointmentsCollection).Doc(id.String())
}

func (s *Store) CreateUser(ctx context.Context, u *models.User, p *models.ServiceProvider) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if err := u.Validate(); err != nil {
		return err
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	if p != nil {
		p.ID = u.ID
		p.CreatedAt, p.UpdatedAt = now, now
		if err := p.Validate(); err != nil {
			return err
		}
	}

	err := s.client.RunTransaction(ctx, func(ctx context.Context, txn *firestore.Transaction) error {
		q := s.client.Collection(usersCollection).Where("email", "==", u.Email).Limit(1)
		existing, err := txn.Documents(q).GetAll()
		if err != nil {
			return fmt.Errorf("while looking up user with email %q: %w", u.Email, err)
		}
		if len(existing) > 0 {
			return fmt.Errorf("%w: email %s", store.ErrConflict, u.Email)
		}
		if err := txn.Create(s.userRef(u.ID), toUserDoc(u)); err != nil {
			return err
		}
		if p != nil {
			return txn.Create(s.providerRef(p.ID), toProviderDoc(p))
		}
		return nil
	})
	return mapErr(err, "user "+u.Email)
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	snap, err := s.userRef(id).Get(ctx)
	if err != nil {
		return nil, mapErr(err, "user "+id.String())
	}
	return decodeUser(snap)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	snaps, err := s.client.Collection(usersCollection).Where("email", "==", email).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, mapErr(err, "user "+email)
	}
	if len(snaps) == 0 {
		return nil, fmt.Errorf("%w: user %s", store.ErrNotFound, email)
	}
	return decodeUser(snaps[0])
}

func (s *Store) SaveProvider(ctx context.Context, p *models.ServiceProvider) error {
	if err := p.Validate(); err != nil {
		return err
	}
	err := s.client.RunTransaction(ctx, func(ctx context.Context, txn *firestore.Transaction) error {
		now := time.Now()
		p.CreatedAt = now
		snap, err := txn.Get(s.providerRef(p.ID))
		if err == nil {
			existing, err := decodeProvider(snap)
			if err != nil {
				return err
			}
			p.CreatedAt = existing.CreatedAt
		} else if status.Code(err) != codes.NotFound {
			return err
		}
		p.UpdatedAt = now
		return txn.Set(s.providerRef(p.ID), toProviderDoc(p))
	})
	return mapErr(err, "provider "+p.ID.String())
}

func (s *Store) GetProvider(ctx context.Context, id uuid.UUID) (*models.ServiceProvider, error) {
	snap, err := s.providerRef(id).Get(ctx)
	if err != nil {
		return nil, mapErr(err, "provider "+id.String())
	}
	return decodeProvider(snap)
}

func (s *Store) ListProviders(ctx context.Context, f search.ProviderFilter) ([]models.ServiceProvider, int64, error) {
	q := s.client.Collection(providersCollection).Query
	if f.Category != "" {
		q = q.Where("serviceCategory", "==", f.Category)
	}
	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, mapErr(err, "providers")
	}
	all := make([]models.ServiceProvider, 0, len(snaps))
	for _, snap := range snaps {
		p, err := decodeProvider(snap)
		if err != nil {
			return nil, 0, err
		}
		all = append(all, *p)
	}
	page, total := search.Providers(all, f)
	return page, int64(total), nil
}

func (s *Store) DeleteProvider(ctx context.Context, id uuid.UUID) error {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, txn *firestore.Transaction) error {
		if _, err := txn.Get(s.providerRef(id)); err != nil {
			return err
		}
		services, err := txn.Documents(s.services(id)).GetAll()
		if err != nil {
			return fmt.Errorf("while listing services: %w", err)
		}
		images, err := txn.Documents(s.gallery(id)).GetAll()
		if err != nil {
			return fmt.Errorf("while listing gallery: %w", err)
		}
		for _, snap := range append(services, images...) {
			if err := txn.Delete(snap.Ref); err != nil {
				return err
			}
		}
		if err := txn.Delete(s.providerRef(id)); err != nil {
			return err
		}
		// No precondition, so a missing user document is not an error.
		return txn.Delete(s.userRef(id))
	})
	return mapErr(err, "provider "+id.String())
}

func (s *Store) CreateService(ctx context.Context, svc *models.Service) error {
	if svc.ID == uuid.Nil {
		svc.ID = uuid.New()
	}
	if err := svc.Validate(); err != nil {
		return err
	}
	now := time.Now()
	svc.CreatedAt, svc.UpdatedAt = now, now
	err := s.client.RunTransaction(ctx, func(ctx context.Context, txn *firestore.Transaction) error {
		if _, err := txn.Get(s.providerRef(svc.ProviderID)); err != nil {
			return err
		}
		return txn.Create(s.services(svc.ProviderID).Doc(svc.ID.String()), toServiceDoc(svc))
	})
	return mapErr(err, "service "+svc.ID.String())
}

func (s *Store) UpdateService(ctx context.Context, svc *models.Service) error {
	if err := svc.Validate(); err != nil {
		return err
	}
	ref := s.services(svc.ProviderID).Doc(svc.ID.String())
	err := s.client.RunTransaction(ctx, func(ctx context.Context, txn *firestore.Transaction) error {
		snap, err := txn.Get(ref)
		if err != nil {
			return err
		}
		existing, err := decodeService(svc.ProviderID, snap)
		if err != nil {
			return err
		}
		svc.CreatedAt = existing.CreatedAt
		svc.UpdatedAt = time.Now()
		return txn.Set(ref, toServiceDoc(svc))
	})
	return mapErr(err, "service "+svc.ID.String())
}

func (s *Store) DeleteService(ctx context.Context, providerID, id uuid.UUID) error {
	_, err := s.services(providerID).Doc(id.String()).Delete(ctx, firestore.Exists)
	return mapErr(err, "service "+id.String())
}

func (s *Store) ListServices(ctx context.Context, providerID uuid.UUID) ([]models.Service, error) {
	snaps, err := s.services(providerID).Documents(ctx).GetAll()
	if err != nil {
		return nil, mapErr(err, "services")
	}
	out := make([]models.Service, 0, len(snaps))
	for _, snap := range snaps {
		svc, err := decodeService(providerID, snap)
		if err != nil {
			return nil, err
		}
		out = append(out, *svc)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) AddGalleryImage(ctx context.Context, g *models.GalleryImage) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	if err := g.Validate(); err != nil {
		return err
	}
	err := s.client.RunTransaction(ctx, func(ctx context.Context, txn *firestore.Transaction) error {
		if _, err := txn.Get(s.providerRef(g.ProviderID)); err != nil {
			return err
		}
		return txn.Create(s.gallery(g.ProviderID).Doc(g.ID.String()), &galleryDoc{URL: g.URL, CreatedAt: g.CreatedAt})
	})
	return mapErr(err, "gallery image "+g.ID.String())
}

func (s *Store) ListGalleryImages(ctx context.Context, providerID uuid.UUID) ([]models.GalleryImage, error) {
	snaps, err := s.gallery(providerID).OrderBy("createdAt", firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		return nil, mapErr(err, "gallery")
	}
	out := make([]models.GalleryImage, 0, len(snaps))
	for _, snap := range snaps {
		g, err := decodeGalleryImage(providerID, snap)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, nil
}

func (s *Store) DeleteGalleryImage(ctx context.Context, providerID, id uuid.UUID) error {
	_, err := s.gallery(providerID).Doc(id.String()).Delete(ctx, firestore.Exists)
	return mapErr(err, "gallery image "+id.String())
}

func (s *Store) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	doc := toAppointmentDoc(a)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, txn *firestore.Transaction) error {
		if err := txn.Create(s.appointmentRef(a.ID), doc); err != nil {
			return err
		}
		return txn.Create(s.userAppointmentRef(a.UserID, a.ID), doc)
	})
	return mapErr(err, "appointment "+a.ID.String())
}

func (s *Store) GetAppointment(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	snap, err := s.appointmentRef(id).Get(ctx)
	if err != nil {
		return nil, mapErr(err, "appointment "+id.String())
	}
	return decodeAppointment(snap)
}

func decodeAppointments(snaps []*firestore.DocumentSnapshot) ([]models.Appointment, error) {
	out := make([]models.Appointment, 0, len(snaps))
	for _, snap := range snaps {
		a, err := decodeAppointment(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, nil
}

// appointmentQuery pushes the equality and date filters down to Firestore.
// Combinations of them need composite indexes.
func (s *Store) appointmentQuery(f search.AppointmentFilter) firestore.Query {
	q := s.client.Collection(appointmentsCollection).Query
	if f.ProviderID != uuid.Nil {
		q = q.Where("providerId", "==", f.ProviderID.String())
	}
	if f.UserID != uuid.Nil {
		q = q.Where("userId", "==", f.UserID.String())
	}
	if f.Status != "" {
		q = q.Where("status", "==", string(f.Status))
	}
	if !f.From.IsZero() {
		q = q.Where("date", ">=", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("date", "<", f.To)
	}
	return q
}

func (s *Store) ListAppointments(ctx context.Context, f search.AppointmentFilter) ([]models.Appointment, int64, error) {
	snaps, err := s.appointmentQuery(f).Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, mapErr(err, "appointments")
	}
	all, err := decodeAppointments(snaps)
	if err != nil {
		return nil, 0, err
	}
	page, total := search.Appointments(all, f)
	return page, int64(total), nil
}

func (s *Store) ListUserAppointments(ctx context.Context, userID uuid.UUID, f search.AppointmentFilter) ([]models.Appointment, int64, error) {
	snaps, err := s.userRef(userID).Collection(appointmentsCollection).Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, mapErr(err, "user appointments")
	}
	all, err := decodeAppointments(snaps)
	if err != nil {
		return nil, 0, err
	}
	page, total := search.Appointments(all, f)
	return page, int64(total), nil
}

func (s *Store) ListProviderAppointments(ctx context.Context, providerID uuid.UUID, from, to time.Time) ([]models.Appointment, error) {
	out, _, err := s.ListAppointments(ctx, search.AppointmentFilter{ProviderID: providerID, From: from, To: to})
	return out, err
}

func (s *Store) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, to models.AppointmentStatus) (*models.Appointment, error) {
	var updated *models.Appointment
	err := s.client.RunTransaction(ctx, func(ctx context.Context, txn *firestore.Transaction) error {
		snap, err := txn.Get(s.appointmentRef(id))
		if err != nil {
			return err
		}
		a, err := decodeAppointment(snap)
		if err != nil {
			return err
		}
		if err := a.Status.CanTransition(to); err != nil {
			return err
		}
		userRef := s.userAppointmentRef(a.UserID, id)
		_, err = txn.Get(userRef)
		copyMissing := status.Code(err) == codes.NotFound
		if err != nil && !copyMissing {
			return err
		}

		a.Status = to
		a.UpdatedAt = time.Now()
		changes := []firestore.Update{
			{Path: "status", Value: string(to)},
			{Path: "updatedAt", Value: a.UpdatedAt},
		}
		if err := txn.Update(snap.Ref, changes); err != nil {
			return err
		}
		if copyMissing {
			// Restore the per-user copy from the global record.
			if err := txn.Set(userRef, toAppointmentDoc(a)); err != nil {
				return err
			}
		} else if err := txn.Update(userRef, changes); err != nil {
			return err
		}
		updated = a
		return nil
	})
	if err != nil {
		return nil, mapErr(err, "appointment "+id.String())
	}
	return updated, nil
}

func (s *Store) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, txn *firestore.Transaction) error {
		snap, err := txn.Get(s.appointmentRef(id))
		if err != nil {
			return err
		}
		var d appointmentDoc
		if err := snap.DataTo(&d); err != nil {
			return fmt.Errorf("while decoding appointment %s: %w", id, err)
		}
		if err := txn.Delete(snap.Ref); err != nil {
			return err
		}
		userID, err := uuid.Parse(d.UserID)
		if err != nil {
			// Nothing to clean up without a valid owner.
			return nil
		}
		return txn.Delete(s.userAppointmentRef(userID, id))
	})
	return mapErr(err, "appointment "+id.String())
}

// HasConflict only reads appointments starting within models.MaxSpan
// before start, since none can run longer.
func (s *Store) HasConflict(ctx context.Context, providerID uuid.UUID, start, end time.Time) (bool, error) {
	snaps, err := s.client.Collection(appointmentsCollection).
		Where("providerId", "==", providerID.String()).
		Where("date", ">=", start.Add(-models.MaxSpan)).
		Where("date", "<", end).
		Documents(ctx).GetAll()
	if err != nil {
		return false, mapErr(err, "appointments")
	}
	list, err := decodeAppointments(snaps)
	if err != nil {
		return false, err
	}
	for i := range list {
		if list[i].Status != models.StatusCancelled && list[i].Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}

func mapErr(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrConflict) ||
		errors.Is(err, models.ErrInvalidRecord) || errors.Is(err, models.ErrInvalidTransition) {
		return err
	}
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %s", store.ErrNotFound, what)
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", store.ErrConflict, what)
	}
	if isIndexError(err) {
		return fmt.Errorf("%w: %s: %v", store.ErrIndexBuilding, what, err)
	}
	return err
}

// isIndexError spots the failed-precondition error Firestore returns while
// a composite index for the query is missing or still being built.
func isIndexError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "requires an index") || strings.Contains(msg, "index is currently building")
}
