package models

import (
	"net/url"
	"time"

	"github.com/google/uuid"
)

type GalleryImage struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ProviderID uuid.UUID `json:"provider_id" gorm:"type:uuid;not null;index"`
	URL        string    `json:"url" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
}

func (g *GalleryImage) Validate() error {
	if g.ID == uuid.Nil || g.ProviderID == uuid.Nil {
		return invalid("gallery image has no id or provider")
	}
	u, err := url.Parse(g.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid("gallery image url must be an absolute http(s) url")
	}
	return nil
}
