package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"crime_records_go/models"
	"crime_records_go/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestCreateSubsectorHandler(t *testing.T) {
	testDB := setupTestDB(t)
	editor := createTestUser(t, testDB, models.RoleEditor)
	sector := createTestSector(t, testDB, editor.ID, "Norte")

	body := fmt.Sprintf(`{"name": "Comuna 1", "parent_id": %q}`, sector.ID)
	c, rec := setupEcho(http.MethodPost, "/api/subsectors", body)
	actAs(c, editor)

	assert.NoError(t, CreateSubsector(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var node models.HierarchyNode
	decodeJSON(t, rec, &node)
	assert.Equal(t, models.NodeKindSubsector, node.Kind)
	assert.Equal(t, sector.ID, *node.ParentID)
}

func TestCreateSubsectorHandlerMissingParent(t *testing.T) {
	testDB := setupTestDB(t)
	editor := createTestUser(t, testDB, models.RoleEditor)

	c, _ := setupEcho(http.MethodPost, "/api/subsectors", `{"name": "Comuna 1"}`)
	actAs(c, editor)

	err := CreateSubsector(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestDeleteSubsectorHandlerCascades(t *testing.T) {
	testDB := setupTestDB(t)
	admin := createTestUser(t, testDB, models.RoleAdmin)
	sector := createTestSector(t, testDB, admin.ID, "Norte")
	sub := createTestSubsector(t, testDB, admin.ID, sector.ID, "Comuna 1")

	_, err := services.CreatePersonRecord(testDB, services.CreatePersonInput{
		SubsectorID:    sub.ID,
		FullName:       "Juan Perez",
		DocumentNumber: "1234567",
		OwnerID:        admin.ID,
	})
	assert.NoError(t, err)
	_, err = services.CreateVehicleRecord(testDB, services.CreateVehicleInput{
		SubsectorID: sub.ID,
		Plate:       "ABC123",
		OwnerID:     admin.ID,
	})
	assert.NoError(t, err)

	c, rec := setupEcho(http.MethodDelete, "/api/subsectors/"+sub.ID, "")
	c.SetParamNames("id")
	c.SetParamValues(sub.ID)
	actAs(c, admin)

	assert.NoError(t, DeleteSubsector(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Deleted services.CascadeResult `json:"deleted"`
	}
	decodeJSON(t, rec, &resp)
	assert.Equal(t, int64(1), resp.Deleted.Nodes)
	assert.Equal(t, int64(1), resp.Deleted.Persons)
	assert.Equal(t, int64(1), resp.Deleted.Vehicles)

	// Records are gone for real, not flagged inactive; the parent sector survives
	var persons, vehicles, nodes int64
	testDB.Unscoped().Model(&models.PersonRecord{}).Count(&persons)
	testDB.Unscoped().Model(&models.VehicleRecord{}).Count(&vehicles)
	testDB.Unscoped().Model(&models.HierarchyNode{}).Where("id = ?", sub.ID).Count(&nodes)
	assert.Equal(t, int64(0), persons)
	assert.Equal(t, int64(0), vehicles)
	assert.Equal(t, int64(0), nodes)

	_, err = services.GetNode(testDB, sector.ID)
	assert.NoError(t, err)
}

func TestDeleteSubsectorHandlerRejectsSector(t *testing.T) {
	testDB := setupTestDB(t)
	admin := createTestUser(t, testDB, models.RoleAdmin)
	sector := createTestSector(t, testDB, admin.ID, "Norte")

	c, _ := setupEcho(http.MethodDelete, "/api/subsectors/"+sector.ID, "")
	c.SetParamNames("id")
	c.SetParamValues(sector.ID)
	actAs(c, admin)

	err := DeleteSubsector(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestUpdateSubsectorHandlerDeactivates(t *testing.T) {
	testDB := setupTestDB(t)
	editor := createTestUser(t, testDB, models.RoleEditor)
	sector := createTestSector(t, testDB, editor.ID, "Norte")
	sub := createTestSubsector(t, testDB, editor.ID, sector.ID, "Comuna 1")

	c, rec := setupEcho(http.MethodPut, "/api/subsectors/"+sub.ID, `{"is_active": false}`)
	c.SetParamNames("id")
	c.SetParamValues(sub.ID)
	actAs(c, editor)

	assert.NoError(t, UpdateSubsector(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	node, err := services.GetNode(testDB, sub.ID)
	assert.NoError(t, err)
	assert.False(t, node.IsActive)
}
