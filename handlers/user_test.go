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

func TestGetUserSelfOrAdmin(t *testing.T) {
	testDB := setupTestDB(t)
	admin := createTestUser(t, testDB, models.RoleAdmin)
	viewer := createTestUser(t, testDB, models.RoleViewer)

	// Viewers can fetch themselves
	c, rec := setupEcho(http.MethodGet, "/api/users/"+viewer.ID, "")
	c.SetParamNames("id")
	c.SetParamValues(viewer.ID)
	actAs(c, viewer)
	assert.NoError(t, GetUser(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// But not each other
	c, _ = setupEcho(http.MethodGet, "/api/users/"+admin.ID, "")
	c.SetParamNames("id")
	c.SetParamValues(admin.ID)
	actAs(c, viewer)
	err := GetUser(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)

	// Admins can fetch anyone
	c, rec = setupEcho(http.MethodGet, "/api/users/"+viewer.ID, "")
	c.SetParamNames("id")
	c.SetParamValues(viewer.ID)
	actAs(c, admin)
	assert.NoError(t, GetUser(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateUserHandler(t *testing.T) {
	testDB := setupTestDB(t)
	admin := createTestUser(t, testDB, models.RoleAdmin)
	viewer := createTestUser(t, testDB, models.RoleViewer)

	c, rec := setupEcho(http.MethodPut, "/api/users/"+viewer.ID, `{"role": "editor"}`)
	c.SetParamNames("id")
	c.SetParamValues(viewer.ID)
	actAs(c, admin)

	assert.NoError(t, UpdateUser(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var updated models.User
	assert.NoError(t, testDB.First(&updated, "id = ?", viewer.ID).Error)
	assert.Equal(t, models.RoleEditor, updated.Role)
}

func TestUpdateUserHandlerSelfProtection(t *testing.T) {
	testDB := setupTestDB(t)
	admin := createTestUser(t, testDB, models.RoleAdmin)

	// Admins cannot demote themselves
	c, _ := setupEcho(http.MethodPut, "/api/users/"+admin.ID, `{"role": "viewer"}`)
	c.SetParamNames("id")
	c.SetParamValues(admin.ID)
	actAs(c, admin)
	err := UpdateUser(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)

	// Nor deactivate their own account
	c, _ = setupEcho(http.MethodPut, "/api/users/"+admin.ID, `{"is_active": false}`)
	c.SetParamNames("id")
	c.SetParamValues(admin.ID)
	actAs(c, admin)
	err = UpdateUser(c)
	httpErr, ok = err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestInvitationHandlers(t *testing.T) {
	testDB := setupTestDB(t)
	admin := createTestUser(t, testDB, models.RoleAdmin)

	c, rec := setupEcho(http.MethodPost, "/api/invitations",
		`{"email": "nuevo@example.com", "role": "editor"}`)
	actAs(c, admin)

	assert.NoError(t, CreateInvitation(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var invitation models.Invitation
	assert.NoError(t, testDB.First(&invitation, "email = ?", "nuevo@example.com").Error)
	assert.Equal(t, models.RoleEditor, invitation.Role)
	assert.Equal(t, admin.ID, invitation.InvitedByID)

	// Redeem it through the public endpoint
	body := fmt.Sprintf(`{"token": %q, "name": "Nuevo", "password": "a-strong-password"}`, invitation.Token)
	c, rec = setupEcho(http.MethodPost, "/api/invitations/accept", body)

	assert.NoError(t, AcceptInvitation(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	user, err := services.Authenticate(testDB, "nuevo@example.com", "a-strong-password")
	assert.NoError(t, err)
	assert.Equal(t, models.RoleEditor, user.Role)

	// A burned token is gone
	c, _ = setupEcho(http.MethodPost, "/api/invitations/accept", body)
	err = AcceptInvitation(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestAcceptInvitationHandlerShortPassword(t *testing.T) {
	setupTestDB(t)

	c, _ := setupEcho(http.MethodPost, "/api/invitations/accept",
		`{"token": "x", "name": "N", "password": "short"}`)
	err := AcceptInvitation(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}
