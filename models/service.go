package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is a bookable offering. Price and Duration are free text as
// entered by the provider ("₹500", "1 hr 30 mins").
type Service struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ProviderID uuid.UUID `json:"provider_id" gorm:"type:uuid;not null;index"`
	Name       string    `json:"name" gorm:"not null"`
	Price      string    `json:"price"`
	Duration   string    `json:"duration"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *Service) Validate() error {
	if s.ID == uuid.Nil {
		return invalid("service id is empty")
	}
	if s.ProviderID == uuid.Nil {
		return invalid("service has no provider")
	}
	if strings.TrimSpace(s.Name) == "" {
		return invalid("service name is required")
	}
	return nil
}

// Booked returns the denormalized copy stored inside an appointment.
func (s Service) Booked() BookedService {
	return BookedService{ID: s.ID, Name: s.Name, Price: s.Price, Duration: s.Duration}
}
