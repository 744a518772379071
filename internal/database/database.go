package database

import (
	"log"

	"github.com/stridehq/challenge-api/internal/config"
	"github.com/stridehq/challenge-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func Connect(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto Migrate
	err = db.AutoMigrate(
		&models.User{},
		&models.Challenge{},
		&models.ActivityType{},
		&models.Activity{},
		&models.Participation{},
		&models.Achievement{},
		&models.UserAchievement{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}

	return db
}
