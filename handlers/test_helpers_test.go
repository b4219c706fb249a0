package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"crime_records_go/db"
	"crime_records_go/middleware"
	"crime_records_go/models"
	"crime_records_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	testDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)

	err = testDB.AutoMigrate(
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

	// Photo uploads land on local disk during tests
	if services.Storage == nil {
		services.Storage = services.NewLocalStorage(t.TempDir())
	}

	db.DB = testDB
	return testDB
}

func setupEcho(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func createTestUser(t *testing.T, testDB *gorm.DB, role string) *models.User {
	user := &models.User{
		Name:     "Test User",
		Email:    uuid.New().String() + "@example.com",
		Password: "not-a-real-hash",
		Role:     role,
		IsActive: true,
	}
	assert.NoError(t, testDB.Create(user).Error)
	return user
}

// actAs attaches an authenticated user to the context, the way RequireAuth
// and AuditContext would on a live request
func actAs(c echo.Context, user *models.User) {
	c.Set(middleware.ContextKeyUser, user)
	c.Set(middleware.ContextKeyAuditContext, services.AuditContext{
		UserID:   user.ID,
		UserName: user.Name,
		UserRole: user.Role,
	})
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func createTestSector(t *testing.T, testDB *gorm.DB, ownerID, name string) *models.HierarchyNode {
	node, err := services.CreateNode(testDB, services.CreateNodeInput{
		Kind:    models.NodeKindSector,
		Name:    name,
		OwnerID: ownerID,
	})
	assert.NoError(t, err)
	return node
}

func createTestSubsector(t *testing.T, testDB *gorm.DB, ownerID, parentID, name string) *models.HierarchyNode {
	node, err := services.CreateNode(testDB, services.CreateNodeInput{
		Kind:     models.NodeKindSubsector,
		Name:     name,
		ParentID: &parentID,
		OwnerID:  ownerID,
	})
	assert.NoError(t, err)
	return node
}
