package repositories

import (
	"github.com/anonto42/moments/backend/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the PostgreSQL tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Account{},
		&models.SavedPost{},
		&models.StorySeen{},
		&models.StoryReaction{},
		&models.Notification{},
	)
}
