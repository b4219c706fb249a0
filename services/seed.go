package services

import (
	"errors"
	"log"
	"os"

	"crime_records_go/models"

	"gorm.io/gorm"
)

// SeedAdminFromEnv creates an admin user from environment variables.
// Only runs if SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD are set
// and no admin user exists yet.
func SeedAdminFromEnv(db *gorm.DB) error {
	email := os.Getenv("SEED_ADMIN_EMAIL")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	name := os.Getenv("SEED_ADMIN_NAME")

	// Skip if env vars not set
	if email == "" || password == "" {
		return nil
	}

	if name == "" {
		name = "Administrator"
	}

	// Check if an admin already exists
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("[SEED] Admin user already exists, skipping seed")
		return nil
	}

	// Check if a user with this email already exists
	var existing models.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		log.Printf("[SEED] User with email %s already exists, skipping admin seed", email)
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hashedPassword,
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		return err
	}

	log.Printf("[SEED] Created admin user: %s", email)
	return nil
}
