package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrInvalidRecord = errors.New("invalid record")

type User struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	FullName        string    `json:"full_name"`
	Email           string    `json:"email" gorm:"uniqueIndex;not null"`
	Password        string    `json:"-"`
	Role            Role      `json:"role" gorm:"type:varchar(20);not null;index"`
	ProfileImageURL string    `json:"profile_image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return invalid("user id is empty")
	}
	if strings.TrimSpace(u.Email) == "" {
		return invalid("user email is empty")
	}
	if !u.Role.Valid() {
		return invalid("unknown role " + string(u.Role))
	}
	return nil
}

func invalid(msg string) error {
	return &recordError{msg: msg}
}

type recordError struct{ msg string }

func (e *recordError) Error() string { return e.msg }

func (e *recordError) Unwrap() error { return ErrInvalidRecord }
