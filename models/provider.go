package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ServiceProvider holds the business details of a user with the
// serviceProvider role. ID is the owning user's ID.
type ServiceProvider struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	BusinessName    string    `json:"business_name" gorm:"not null"`
	FullName        string    `json:"full_name"`
	Email           string    `json:"email"`
	ServiceCategory string    `json:"service_category" gorm:"index;not null"`
	Address         string    `json:"address,omitempty"`
	PhoneNumber     string    `json:"phone_number,omitempty"`
	ProfileImageURL string    `json:"profile_image_url,omitempty"`
	Rating          float64   `json:"rating"`
	Reviews         int       `json:"reviews"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (p *ServiceProvider) Validate() error {
	if p.ID == uuid.Nil {
		return invalid("provider id is empty")
	}
	if strings.TrimSpace(p.BusinessName) == "" {
		return invalid("business name is required")
	}
	if strings.TrimSpace(p.ServiceCategory) == "" {
		return invalid("service category is required")
	}
	if p.Rating < 0 || p.Rating > 5 {
		return invalid("rating must be between 0 and 5")
	}
	return nil
}
