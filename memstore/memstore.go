// Package memstore keeps every record in process memory. It backs
// STORE_BACKEND=memory and the tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meinhoongagan/bookify/models"
	"github.com/meinhoongagan/bookify/search"
	"github.com/meinhoongagan/bookify/store"
)

type Store struct {
	mu           sync.RWMutex
	users        map[uuid.UUID]models.User
	providers    map[uuid.UUID]models.ServiceProvider
	services     map[uuid.UUID]models.Service
	gallery      map[uuid.UUID]models.GalleryImage
	appointments map[uuid.UUID]models.Appointment
	userCopies   map[uuid.UUID]map[uuid.UUID]models.Appointment
	now          func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:        make(map[uuid.UUID]models.User),
		providers:    make(map[uuid.UUID]models.ServiceProvider),
		services:     make(map[uuid.UUID]models.Service),
		gallery:      make(map[uuid.UUID]models.GalleryImage),
		appointments: make(map[uuid.UUID]models.Appointment),
		userCopies:   make(map[uuid.UUID]map[uuid.UUID]models.Appointment),
		now:          time.Now,
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) CreateUser(ctx context.Context, u *models.User, p *models.ServiceProvider) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if err := u.Validate(); err != nil {
		return err
	}
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return fmt.Errorf("%w: email %s", store.ErrConflict, u.Email)
		}
	}
	if _, ok := s.users[u.ID]; ok {
		return fmt.Errorf("%w: user %s", store.ErrConflict, u.ID)
	}
	now := s.now()
	u.CreatedAt, u.UpdatedAt = now, now
	if p != nil {
		p.ID = u.ID
		p.CreatedAt, p.UpdatedAt = now, now
		if err := p.Validate(); err != nil {
			return err
		}
		s.providers[p.ID] = *p
	}
	s.users[u.ID] = *u
	return nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", store.ErrNotFound, id)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, fmt.Errorf("%w: user %s", store.ErrNotFound, email)
}

func (s *Store) SaveProvider(ctx context.Context, p *models.ServiceProvider) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if existing, ok := s.providers[p.ID]; ok {
		p.CreatedAt = existing.CreatedAt
	} else {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.providers[p.ID] = *p
	return nil
}

func (s *Store) GetProvider(ctx context.Context, id uuid.UUID) (*models.ServiceProvider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.providers[id]
	if !ok {
		return nil, fmt.Errorf("%w: provider %s", store.ErrNotFound, id)
	}
	return &p, nil
}

func (s *Store) ListProviders(ctx context.Context, f search.ProviderFilter) ([]models.ServiceProvider, int64, error) {
	s.mu.RLock()
	all := make([]models.ServiceProvider, 0, len(s.providers))
	for _, p := range s.providers {
		all = append(all, p)
	}
	s.mu.RUnlock()
	page, total := search.Providers(all, f)
	return page, int64(total), nil
}

func (s *Store) DeleteProvider(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.providers[id]; !ok {
		return fmt.Errorf("%w: provider %s", store.ErrNotFound, id)
	}
	delete(s.providers, id)
	for sid, svc := range s.services {
		if svc.ProviderID == id {
			delete(s.services, sid)
		}
	}
	for gid, img := range s.gallery {
		if img.ProviderID == id {
			delete(s.gallery, gid)
		}
	}
	// The user record may already be gone.
	delete(s.users, id)
	return nil
}

func (s *Store) CreateService(ctx context.Context, svc *models.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.providers[svc.ProviderID]; !ok {
		return fmt.Errorf("%w: provider %s", store.ErrNotFound, svc.ProviderID)
	}
	if svc.ID == uuid.Nil {
		svc.ID = uuid.New()
	}
	if err := svc.Validate(); err != nil {
		return err
	}
	now := s.now()
	svc.CreatedAt, svc.UpdatedAt = now, now
	s.services[svc.ID] = *svc
	return nil
}

func (s *Store) UpdateService(ctx context.Context, svc *models.Service) error {
	if err := svc.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.services[svc.ID]
	if !ok || existing.ProviderID != svc.ProviderID {
		return fmt.Errorf("%w: service %s", store.ErrNotFound, svc.ID)
	}
	svc.CreatedAt = existing.CreatedAt
	svc.UpdatedAt = s.now()
	s.services[svc.ID] = *svc
	return nil
}

func (s *Store) DeleteService(ctx context.Context, providerID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.services[id]
	if !ok || existing.ProviderID != providerID {
		return fmt.Errorf("%w: service %s", store.ErrNotFound, id)
	}
	delete(s.services, id)
	return nil
}

func (s *Store) ListServices(ctx context.Context, providerID uuid.UUID) ([]models.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Service
	for _, svc := range s.services {
		if svc.ProviderID == providerID {
			out = append(out, svc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *Store) AddGalleryImage(ctx context.Context, g *models.GalleryImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.providers[g.ProviderID]; !ok {
		return fmt.Errorf("%w: provider %s", store.ErrNotFound, g.ProviderID)
	}
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = s.now()
	}
	if err := g.Validate(); err != nil {
		return err
	}
	s.gallery[g.ID] = *g
	return nil
}

func (s *Store) ListGalleryImages(ctx context.Context, providerID uuid.UUID) ([]models.GalleryImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.GalleryImage
	for _, g := range s.gallery {
		if g.ProviderID == providerID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) DeleteGalleryImage(ctx context.Context, providerID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.gallery[id]
	if !ok || g.ProviderID != providerID {
		return fmt.Errorf("%w: gallery image %s", store.ErrNotFound, id)
	}
	delete(s.gallery, id)
	return nil
}

func (s *Store) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appointments[a.ID]; ok {
		return fmt.Errorf("%w: appointment %s", store.ErrConflict, a.ID)
	}
	s.appointments[a.ID] = clone(*a)
	copies, ok := s.userCopies[a.UserID]
	if !ok {
		copies = make(map[uuid.UUID]models.Appointment)
		s.userCopies[a.UserID] = copies
	}
	copies[a.ID] = clone(*a)
	return nil
}

func (s *Store) GetAppointment(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.appointments[id]
	if !ok {
		return nil, fmt.Errorf("%w: appointment %s", store.ErrNotFound, id)
	}
	a = clone(a)
	return &a, nil
}

// GetUserCopy returns the per-user copy of an appointment.
func (s *Store) GetUserCopy(userID, id uuid.UUID) (*models.Appointment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.userCopies[userID][id]
	if !ok {
		return nil, false
	}
	a = clone(a)
	return &a, true
}

func (s *Store) ListAppointments(ctx context.Context, f search.AppointmentFilter) ([]models.Appointment, int64, error) {
	s.mu.RLock()
	all := make([]models.Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		all = append(all, clone(a))
	}
	s.mu.RUnlock()
	page, total := search.Appointments(all, f)
	return page, int64(total), nil
}

func (s *Store) ListUserAppointments(ctx context.Context, userID uuid.UUID, f search.AppointmentFilter) ([]models.Appointment, int64, error) {
	s.mu.RLock()
	copies := s.userCopies[userID]
	all := make([]models.Appointment, 0, len(copies))
	for _, a := range copies {
		all = append(all, clone(a))
	}
	s.mu.RUnlock()
	page, total := search.Appointments(all, f)
	return page, int64(total), nil
}

func (s *Store) ListProviderAppointments(ctx context.Context, providerID uuid.UUID, from, to time.Time) ([]models.Appointment, error) {
	page, _, err := s.ListAppointments(ctx, search.AppointmentFilter{ProviderID: providerID, From: from, To: to})
	return page, err
}

func (s *Store) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, to models.AppointmentStatus) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return nil, fmt.Errorf("%w: appointment %s", store.ErrNotFound, id)
	}
	if err := a.Status.CanTransition(to); err != nil {
		return nil, err
	}
	a.Status = to
	a.UpdatedAt = s.now()
	s.appointments[id] = a
	copies, ok := s.userCopies[a.UserID]
	if !ok {
		copies = make(map[uuid.UUID]models.Appointment)
		s.userCopies[a.UserID] = copies
	}
	copies[id] = clone(a)
	out := clone(a)
	return &out, nil
}

func (s *Store) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return fmt.Errorf("%w: appointment %s", store.ErrNotFound, id)
	}
	delete(s.appointments, id)
	delete(s.userCopies[a.UserID], id)
	return nil
}

func (s *Store) HasConflict(ctx context.Context, providerID uuid.UUID, start, end time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.appointments {
		if a.ProviderID == providerID && a.Status != models.StatusCancelled && a.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}

// DropUserCopy removes only the per-user copy, leaving the stores out of
// step the way a partial write would.
func (s *Store) DropUserCopy(userID, id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.userCopies[userID], id)
}

func clone(a models.Appointment) models.Appointment {
	services := make([]models.BookedService, len(a.Services))
	copy(services, a.Services)
	a.Services = services
	return a
}
