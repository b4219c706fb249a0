package main

import (
	"flag"
	"log"

	"crime_records_go/config"
	"crime_records_go/db"
	"crime_records_go/models"
	"crime_records_go/services"
)

// Imports a JSON-lines export of the legacy document store (one file per
// collection: users.json, sectors.json, subsectors.json, persons.json,
// vehicles.json) into the relational schema. Safe to re-run: existing rows
// are matched by natural key and left untouched.
func main() {
	dir := flag.String("dir", "legacy_export", "directory holding the legacy export files")
	flag.Parse()

	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(
		&models.User{}, &models.HierarchyNode{},
		&models.PersonRecord{}, &models.VehicleRecord{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	src, closeFiles, err := services.OpenLegacyExport(*dir)
	if err != nil {
		log.Fatalf("Failed to open legacy export: %v", err)
	}
	defer closeFiles()

	log.Printf("[MIGRATE] Starting legacy import from %s", *dir)

	report, err := services.NewMigrationMapper(db.DB).Run(src)
	if err != nil {
		log.Fatalf("Legacy import failed: %v", err)
	}

	log.Printf("[MIGRATE] Users:      %d migrated, %d existing, %d skipped",
		report.Users.Migrated, report.Users.Existing, report.Users.Skipped)
	log.Printf("[MIGRATE] Sectors:    %d migrated, %d existing, %d skipped",
		report.Sectors.Migrated, report.Sectors.Existing, report.Sectors.Skipped)
	log.Printf("[MIGRATE] Subsectors: %d migrated, %d existing, %d skipped",
		report.Subsectors.Migrated, report.Subsectors.Existing, report.Subsectors.Skipped)
	log.Printf("[MIGRATE] Persons:    %d migrated, %d existing, %d skipped",
		report.Persons.Migrated, report.Persons.Existing, report.Persons.Skipped)
	log.Printf("[MIGRATE] Vehicles:   %d migrated, %d existing, %d skipped",
		report.Vehicles.Migrated, report.Vehicles.Existing, report.Vehicles.Skipped)
	log.Println("[MIGRATE] Legacy import completed")
}
