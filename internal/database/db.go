package database

import (
	"log"

	"standardops/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes the single process-wide connection pool using GORM.
// Handlers receive this handle via injection; nothing else opens connections.
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Role{},
		&model.Permission{},
		&model.UserRole{},
		&model.Organization{},
		&model.Facility{},
		&model.Department{},
		&model.Area{},
		&model.Standard{},
		&model.UomEntry{},
		&model.Observation{},
		&model.ObservationEntry{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}

// Close releases the underlying sql.DB pool on graceful shutdown
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
