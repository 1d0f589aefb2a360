package db

import (
	"fmt"
	"log"

	"github.com/meinhoongagan/bookify/models"
	"gorm.io/gorm"
)

// Migrate creates or updates every table the store uses.
func Migrate(gdb *gorm.DB) error {
	err := gdb.AutoMigrate(
		&models.User{},
		&models.ServiceProvider{},
		&models.Service{},
		&models.GalleryImage{},
		&models.Appointment{},
		&models.UserAppointment{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Println("✅ Migrations applied successfully!")
	return nil
}
