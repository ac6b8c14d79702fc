package db

import (
	"fmt"

	"github.com/formworks/formworks/internal/models"
	"gorm.io/gorm"
)

// Migrate runs database migrations for the domain schema.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	if errAutoMigrate := conn.AutoMigrate(
		&models.User{},
		&models.Form{},
		&models.Response{},
		&models.PrivateUser{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}
	return nil
}
