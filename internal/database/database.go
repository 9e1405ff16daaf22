package database

import (
	"fmt"
	"log"

	"reno-market/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect establishes a connection to the PostgreSQL database
func Connect(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Error),
		TranslateError: true,
	})

	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established successfully")
	return nil
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate() error {
	return Migrate(DB)
}

// Migrate runs automatic migrations on the given connection. Account and
// catalog tables go first so marketplace tables can reference them.
func Migrate(db *gorm.DB) error {
	accountModels := []interface{}{
		&models.User{},
		&models.RefreshToken{},
		&models.Pro{},
	}

	catalogModels := []interface{}{
		&models.Category{},
		&models.Skill{},
		&models.City{},
		&models.ProSkill{},
		&models.ProServiceArea{},
		&models.PortfolioItem{},
	}

	marketplaceModels := []interface{}{
		&models.Job{},
		&models.Proposal{},
		&models.Contract{},
		&models.AuditLog{},
		&models.Notification{},
	}

	for _, group := range [][]interface{}{accountModels, catalogModels, marketplaceModels} {
		for _, model := range group {
			if err := db.AutoMigrate(model); err != nil {
				return fmt.Errorf("migration failed for %T: %w", model, err)
			}
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
