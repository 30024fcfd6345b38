package db

import (
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"catalog/internal/models"
)

// Open connects to postgres using the DSN from the config.
func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("DB_DSN is empty (check your .env)")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}
	return db, nil
}

// Migrate creates or updates the tables owned by the catalog.
func Migrate(db *gorm.DB) error {
	return errors.Wrap(db.AutoMigrate(&models.Product{}), "auto migrate")
}
