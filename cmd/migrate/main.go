package main

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"reno-market/internal/config"
	"reno-market/internal/database"
	"reno-market/internal/models"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Running schema migration")
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}

	log.Println("Seeding catalog")
	if err := seedCatalog(db); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	log.Println("Migration complete")
}

// seedCatalog inserts the baseline categories and cities, skipping any
// that already exist.
func seedCatalog(db *gorm.DB) error {
	categories := []models.Category{
		{Name: "Plumbing", Slug: "plumbing", IsActive: true},
		{Name: "Electrical", Slug: "electrical", IsActive: true},
		{Name: "Painting", Slug: "painting", IsActive: true},
		{Name: "Carpentry", Slug: "carpentry", IsActive: true},
		{Name: "Masonry", Slug: "masonry", IsActive: true},
		{Name: "General Remodeling", Slug: "general-remodeling", IsActive: true},
	}
	for _, cat := range categories {
		if err := db.Where(models.Category{Slug: cat.Slug}).FirstOrCreate(&cat).Error; err != nil {
			return err
		}
	}

	cities := []models.City{
		{Name: "Bogota", Region: "Cundinamarca"},
		{Name: "Medellin", Region: "Antioquia"},
		{Name: "Cali", Region: "Valle del Cauca"},
		{Name: "Barranquilla", Region: "Atlantico"},
		{Name: "Cartagena", Region: "Bolivar"},
	}
	for _, city := range cities {
		if err := db.Where(models.City{Name: city.Name}).FirstOrCreate(&city).Error; err != nil {
			return err
		}
	}

	return nil
}
