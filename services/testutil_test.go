package services

import (
	"testing"

	"crime_records_go/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Invitation{},
		&models.AuditLog{},
		&models.Country{},
		&models.Department{},
		&models.City{},
		&models.HierarchyNode{},
		&models.PersonRecord{},
		&models.VehicleRecord{},
	)
	assert.NoError(t, err)
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, role string) *models.User {
	user := &models.User{
		Name:     "Test User",
		Email:    uuid.New().String() + "@example.com",
		Password: "not-a-real-hash",
		Role:     role,
		IsActive: true,
	}
	assert.NoError(t, db.Create(user).Error)
	return user
}

func createTestSector(t *testing.T, db *gorm.DB, ownerID, name string) *models.HierarchyNode {
	node, err := CreateNode(db, CreateNodeInput{
		Kind:    models.NodeKindSector,
		Name:    name,
		OwnerID: ownerID,
	})
	assert.NoError(t, err)
	return node
}

func createTestSubsector(t *testing.T, db *gorm.DB, ownerID, parentID, name string) *models.HierarchyNode {
	node, err := CreateNode(db, CreateNodeInput{
		Kind:     models.NodeKindSubsector,
		Name:     name,
		ParentID: &parentID,
		OwnerID:  ownerID,
	})
	assert.NoError(t, err)
	return node
}

func stringPtr(s string) *string {
	return &s
}

func boolPtr(b bool) *bool {
	return &b
}
