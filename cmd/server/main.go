package main

import (
	"log"
	"time"

	"crime_records_go/config"
	"crime_records_go/db"
	"crime_records_go/handlers"
	"crime_records_go/middleware"
	"crime_records_go/models"
	"crime_records_go/services"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(
		&models.User{}, &models.Session{}, &models.Invitation{}, &models.AuditLog{},
		&models.Country{}, &models.Department{}, &models.City{},
		&models.HierarchyNode{}, &models.PersonRecord{}, &models.VehicleRecord{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed reference data and the bootstrap admin (both idempotent)
	if err := services.SeedGeography(db.DB); err != nil {
		log.Printf("[WARNING] Geography seed failed: %v", err)
	}
	if err := services.SeedAdminFromEnv(db.DB); err != nil {
		log.Printf("[WARNING] Admin seed failed: %v", err)
	}

	// Initialize photo storage (R2 with local fallback)
	services.InitializeStorage(cfg)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: true,
	}))

	// Public routes (no authentication required)
	e.POST("/api/auth/login", handlers.Login)
	e.POST("/api/invitations/accept", handlers.AcceptInvitation)

	// Protected routes: every read requires an authenticated actor, there is
	// no anonymous fallback
	api := e.Group("/api")
	api.Use(middleware.RequireAuth())
	api.Use(middleware.AuditContext())
	{
		api.POST("/auth/logout", handlers.Logout)
		api.GET("/auth/me", handlers.Me)

		// Hierarchy reads (all roles, global visibility)
		api.GET("/sectors", handlers.GetSectors)
		api.GET("/sectors/:id", handlers.GetSector)
		api.GET("/sectors/:id/hierarchy", handlers.GetSectorHierarchy)
		api.GET("/sectors/:id/export", handlers.ExportSector)

		// Case record reads
		api.GET("/case-records/person", handlers.GetPersonRecords)
		api.GET("/case-records/person/:id", handlers.GetPersonRecord)
		api.GET("/case-records/person/:id/dossier", handlers.GetPersonDossier)
		api.GET("/case-records/vehicle", handlers.GetVehicleRecords)
		api.GET("/case-records/vehicle/:id", handlers.GetVehicleRecord)

		// Geography lookups
		api.GET("/geography/countries", handlers.GetCountries)
		api.GET("/geography/departments", handlers.GetDepartments)
		api.GET("/geography/cities", handlers.GetCities)

		// User self-view (handler enforces admin-or-self)
		api.GET("/users/:id", handlers.GetUser)

		// Editor routes: structure and record writes
		editorRoutes := api.Group("")
		editorRoutes.Use(middleware.RequireRole(models.RoleEditor))
		{
			editorRoutes.POST("/sectors", handlers.CreateSector)
			editorRoutes.PUT("/sectors/:id", handlers.UpdateSector)
			editorRoutes.DELETE("/sectors/:id", handlers.DeleteSector)

			editorRoutes.POST("/subsectors", handlers.CreateSubsector)
			editorRoutes.PUT("/subsectors/:id", handlers.UpdateSubsector)

			editorRoutes.POST("/case-records/person", handlers.CreatePersonRecord)
			editorRoutes.PUT("/case-records/person/:id", handlers.UpdatePersonRecord)
			editorRoutes.DELETE("/case-records/person/:id", handlers.DeletePersonRecord)
			editorRoutes.POST("/case-records/person/:id/photo", handlers.UploadPersonPhoto)

			editorRoutes.POST("/case-records/vehicle", handlers.CreateVehicleRecord)
			editorRoutes.PUT("/case-records/vehicle/:id", handlers.UpdateVehicleRecord)
			editorRoutes.DELETE("/case-records/vehicle/:id", handlers.DeleteVehicleRecord)
			editorRoutes.POST("/case-records/vehicle/:id/photo", handlers.UploadVehiclePhoto)
		}

		// Admin routes: destructive deletes, user management, audit trail
		adminRoutes := api.Group("")
		adminRoutes.Use(middleware.RequireRole(models.RoleAdmin))
		{
			adminRoutes.DELETE("/subsectors/:id", handlers.DeleteSubsector)
			adminRoutes.DELETE("/case-records/person/:id/purge", handlers.PurgePersonRecord)
			adminRoutes.DELETE("/case-records/vehicle/:id/purge", handlers.PurgeVehicleRecord)

			adminRoutes.GET("/users", handlers.GetUsers)
			adminRoutes.PUT("/users/:id", handlers.UpdateUser)
			adminRoutes.POST("/invitations", handlers.CreateInvitation)
			adminRoutes.GET("/invitations", handlers.GetInvitations)

			adminRoutes.GET("/audit-logs", handlers.GetAuditLogs)
		}
	}

	// Start background cleanup jobs (runs every hour)
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			if err := services.CleanupExpiredSessions(db.DB); err != nil {
				log.Printf("Error cleaning up expired sessions: %v", err)
			}
			if err := services.CleanupExpiredInvitations(db.DB); err != nil {
				log.Printf("Error cleaning up expired invitations: %v", err)
			}
		}
	}()

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
