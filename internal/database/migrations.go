package database

import (
	"gorm.io/gorm"

	"github.com/wollyshare/wollyshare/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Profile{},
		&models.CommunityLocation{},
		&models.Item{},
		&models.BorrowRequest{},
		&models.Invitation{},
		&models.NotificationLog{},
	)
}

// SeedData populates default community locations so fresh installs have
// something to attach profiles and items to.
func SeedData(db *gorm.DB) error {
	locations := []models.CommunityLocation{
		{
			BaseModel: models.BaseModel{ID: "community-hall"},
			Name:      "Community Hall",
			Address:   "1 Main Street",
		},
		{
			BaseModel: models.BaseModel{ID: "tool-shed"},
			Name:      "Tool Shed",
			Address:   "Behind the community garden",
		},
	}

	for _, location := range locations {
		if err := db.
			Where(models.CommunityLocation{BaseModel: models.BaseModel{ID: location.ID}}).
			Attrs(location).
			FirstOrCreate(&models.CommunityLocation{}).Error; err != nil {
			return err
		}
	}

	return nil
}
