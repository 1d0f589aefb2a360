package firestoredb

import (
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/meinhoongagan/bookify/models"
)

// Document shapes as stored in Firestore. IDs live in the document path.

type userDoc struct {
	FullName        string    `firestore:"fullName"`
	Email           string    `firestore:"email"`
	Password        string    `firestore:"password"`
	Role            string    `firestore:"role"`
	ProfileImageURL string    `firestore:"profileImageUrl,omitempty"`
	CreatedAt       time.Time `firestore:"createdAt"`
	UpdatedAt       time.Time `firestore:"updatedAt"`
}

type providerDoc struct {
	BusinessName    string    `firestore:"businessName"`
	FullName        string    `firestore:"fullName"`
	Email           string    `firestore:"email"`
	ServiceCategory string    `firestore:"serviceCategory"`
	Address         string    `firestore:"address,omitempty"`
	PhoneNumber     string    `firestore:"phoneNumber,omitempty"`
	ProfileImageURL string    `firestore:"profileImageUrl,omitempty"`
	Rating          float64   `firestore:"rating"`
	Reviews         int64     `firestore:"reviews"`
	CreatedAt       time.Time `firestore:"createdAt"`
	UpdatedAt       time.Time `firestore:"updatedAt"`
}

type serviceDoc struct {
	Name      string    `firestore:"name"`
	Price     string    `firestore:"price"`
	Duration  string    `firestore:"duration"`
	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

type galleryDoc struct {
	URL       string    `firestore:"url"`
	CreatedAt time.Time `firestore:"createdAt"`
}

type bookedServiceDoc struct {
	ID       string `firestore:"id"`
	Name     string `firestore:"name"`
	Price    string `firestore:"price"`
	Duration string `firestore:"duration"`
}

type appointmentDoc struct {
	UserID       string             `firestore:"userId"`
	UserName     string             `firestore:"userName"`
	UserEmail    string             `firestore:"userEmail,omitempty"`
	ProviderID   string             `firestore:"providerId"`
	ProviderName string             `firestore:"providerName"`
	Services     []bookedServiceDoc `firestore:"services"`
	TotalPrice   float64            `firestore:"totalPrice"`
	Date         time.Time          `firestore:"date"`
	EndsAt       time.Time          `firestore:"endsAt"`
	Status       string             `firestore:"status"`
	CreatedAt    time.Time          `firestore:"createdAt"`
	UpdatedAt    time.Time          `firestore:"updatedAt"`
}

func parseID(ref *firestore.DocumentRef) (uuid.UUID, error) {
	id, err := uuid.Parse(ref.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("document %s: %w", ref.Path, models.ErrInvalidRecord)
	}
	return id, nil
}

func toUserDoc(u *models.User) *userDoc {
	return &userDoc{
		FullName:        u.FullName,
		Email:           u.Email,
		Password:        u.Password,
		Role:            string(u.Role),
		ProfileImageURL: u.ProfileImageURL,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func decodeUser(snap *firestore.DocumentSnapshot) (*models.User, error) {
	var d userDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("while decoding user %s: %w", snap.Ref.ID, err)
	}
	id, err := parseID(snap.Ref)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		ID:              id,
		FullName:        d.FullName,
		Email:           d.Email,
		Password:        d.Password,
		Role:            models.Role(d.Role),
		ProfileImageURL: d.ProfileImageURL,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	if err := u.Validate(); err != nil {
		return nil, fmt.Errorf("user %s: %w", id, err)
	}
	return u, nil
}

func toProviderDoc(p *models.ServiceProvider) *providerDoc {
	return &providerDoc{
		BusinessName:    p.BusinessName,
		FullName:        p.FullName,
		Email:           p.Email,
		ServiceCategory: p.ServiceCategory,
		Address:         p.Address,
		PhoneNumber:     p.PhoneNumber,
		ProfileImageURL: p.ProfileImageURL,
		Rating:          p.Rating,
		Reviews:         int64(p.Reviews),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func decodeProvider(snap *firestore.DocumentSnapshot) (*models.ServiceProvider, error) {
	var d providerDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("while decoding provider %s: %w", snap.Ref.ID, err)
	}
	id, err := parseID(snap.Ref)
	if err != nil {
		return nil, err
	}
	p := &models.ServiceProvider{
		ID:              id,
		BusinessName:    d.BusinessName,
		FullName:        d.FullName,
		Email:           d.Email,
		ServiceCategory: d.ServiceCategory,
		Address:         d.Address,
		PhoneNumber:     d.PhoneNumber,
		ProfileImageURL: d.ProfileImageURL,
		Rating:          d.Rating,
		Reviews:         int(d.Reviews),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("provider %s: %w", id, err)
	}
	return p, nil
}

func toServiceDoc(s *models.Service) *serviceDoc {
	return &serviceDoc{Name: s.Name, Price: s.Price, Duration: s.Duration, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt}
}

func decodeService(providerID uuid.UUID, snap *firestore.DocumentSnapshot) (*models.Service, error) {
	var d serviceDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("while decoding service %s: %w", snap.Ref.ID, err)
	}
	id, err := parseID(snap.Ref)
	if err != nil {
		return nil, err
	}
	s := &models.Service{
		ID:         id,
		ProviderID: providerID,
		Name:       d.Name,
		Price:      d.Price,
		Duration:   d.Duration,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("service %s: %w", id, err)
	}
	return s, nil
}

func decodeGalleryImage(providerID uuid.UUID, snap *firestore.DocumentSnapshot) (*models.GalleryImage, error) {
	var d galleryDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("while decoding gallery image %s: %w", snap.Ref.ID, err)
	}
	id, err := parseID(snap.Ref)
	if err != nil {
		return nil, err
	}
	g := &models.GalleryImage{ID: id, ProviderID: providerID, URL: d.URL, CreatedAt: d.CreatedAt}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("gallery image %s: %w", id, err)
	}
	return g, nil
}

func toAppointmentDoc(a *models.Appointment) *appointmentDoc {
	services := make([]bookedServiceDoc, len(a.Services))
	for i, s := range a.Services {
		services[i] = bookedServiceDoc{ID: s.ID.String(), Name: s.Name, Price: s.Price, Duration: s.Duration}
	}
	return &appointmentDoc{
		UserID:       a.UserID.String(),
		UserName:     a.UserName,
		UserEmail:    a.UserEmail,
		ProviderID:   a.ProviderID.String(),
		ProviderName: a.ProviderName,
		Services:     services,
		TotalPrice:   a.TotalPrice,
		Date:         a.Date,
		EndsAt:       a.EndsAt,
		Status:       string(a.Status),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func fromAppointmentDoc(id uuid.UUID, d *appointmentDoc) (*models.Appointment, error) {
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, fmt.Errorf("appointment %s has a bad userId: %w", id, models.ErrInvalidRecord)
	}
	providerID, err := uuid.Parse(d.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("appointment %s has a bad providerId: %w", id, models.ErrInvalidRecord)
	}
	services := make([]models.BookedService, len(d.Services))
	for i, s := range d.Services {
		sid, err := uuid.Parse(s.ID)
		if err != nil {
			return nil, fmt.Errorf("appointment %s has a bad service id: %w", id, models.ErrInvalidRecord)
		}
		services[i] = models.BookedService{ID: sid, Name: s.Name, Price: s.Price, Duration: s.Duration}
	}
	a := &models.Appointment{
		ID:           id,
		UserID:       userID,
		UserName:     d.UserName,
		UserEmail:    d.UserEmail,
		ProviderID:   providerID,
		ProviderName: d.ProviderName,
		Services:     services,
		TotalPrice:   d.TotalPrice,
		Date:         d.Date,
		EndsAt:       d.EndsAt,
		Status:       models.AppointmentStatus(d.Status),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("appointment %s: %w", id, err)
	}
	return a, nil
}

func decodeAppointment(snap *firestore.DocumentSnapshot) (*models.Appointment, error) {
	var d appointmentDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("while decoding appointment %s: %w", snap.Ref.ID, err)
	}
	id, err := parseID(snap.Ref)
	if err != nil {
		return nil, err
	}
	return fromAppointmentDoc(id, &d)
}
