package database

import (
	"log"

	"gorm.io/gorm"

	"melomap/internal/models"
)

// SeedDemoUser creates a demo account on first boot so the app is
// usable without a signup round-trip. No-op if any user exists.
func SeedDemoUser(db *gorm.DB) {
	var count int64
	db.Model(&models.User{}).Count(&count)
	if count > 0 {
		return
	}

	hash, err := models.HashPassword("melomap-demo")
	if err != nil {
		log.Printf("Warning: could not hash demo password: %v", err)
		return
	}

	demo := models.User{
		Email:        "demo@melomap.local",
		Username:     "demo",
		PasswordHash: hash,
		Name:         "Demo User",
	}
	if err := db.Create(&demo).Error; err != nil {
		log.Printf("Warning: demo user seed failed: %v", err)
		return
	}
	log.Println("Seeded demo user (demo / melomap-demo)")
}
