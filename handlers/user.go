package handlers

import (
	"log"
	"net/http"

	"crime_records_go/config"
	"crime_records_go/db"
	"crime_records_go/middleware"
	"crime_records_go/models"
	"crime_records_go/services"

	"github.com/labstack/echo/v4"
)

// GetUsers returns all users
// GET /api/users (admin only)
func GetUsers(c echo.Context) error {
	var users []models.User
	if err := db.DB.Order("created_at ASC").Find(&users).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch users")
	}
	return c.JSON(http.StatusOK, users)
}

// GetUser returns a single user by ID. Admins can view anyone, everyone else
// only themselves.
// GET /api/users/:id
func GetUser(c echo.Context) error {
	current := middleware.GetCurrentUser(c)
	id := c.Param("id")

	if !current.IsAdmin() && current.ID != id {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}

	var user models.User
	if err := db.DB.First(&user, "id = ?", id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	return c.JSON(http.StatusOK, user)
}

type userUpdateRequest struct {
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// UpdateUser changes a user's name, role or active flag
// PUT /api/users/:id (admin only)
func UpdateUser(c echo.Context) error {
	current := middleware.GetCurrentUser(c)

	var user models.User
	if err := db.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	var req userUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Name != nil && *req.Name != "" {
		updates["name"] = *req.Name
	}
	if req.Role != nil {
		if !models.IsValidRole(*req.Role) {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid role. Must be one of: viewer, editor, admin")
		}
		if user.ID == current.ID && *req.Role != models.RoleAdmin {
			return echo.NewHTTPError(http.StatusBadRequest, "Cannot demote your own account")
		}
		updates["role"] = *req.Role
	}
	if req.IsActive != nil {
		if user.ID == current.ID && !*req.IsActive {
			return echo.NewHTTPError(http.StatusBadRequest, "Cannot deactivate your own account")
		}
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update user")
		}
	}

	services.RecordAudit(db.DB, middleware.GetAuditContext(c),
		models.AuditActionUpdate, "user", user.ID, user.Email, "Updated user")

	return c.JSON(http.StatusOK, user)
}

type invitationRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// CreateInvitation issues a one-time invitation token and emails it
// POST /api/invitations (admin only)
func CreateInvitation(c echo.Context) error {
	current := middleware.GetCurrentUser(c)

	var req invitationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email is required")
	}
	if req.Role == "" {
		req.Role = models.RoleViewer
	}

	invitation, err := services.CreateInvitation(db.DB, req.Email, req.Role, current.ID)
	if err != nil {
		return serviceError(err, "Failed to create invitation")
	}

	cfg := config.Load()
	email, err := services.BuildInvitationEmail(cfg, invitation.Email, current.Name, invitation.Role, invitation.Token)
	if err != nil {
		log.Printf("[ERROR] Failed to build invitation email for %s: %v", invitation.Email, err)
	} else {
		go func() {
			if err := services.SendEmail(cfg, email); err != nil {
				log.Printf("[ERROR] Failed to send invitation email to %s: %v", invitation.Email, err)
			}
		}()
	}

	services.RecordAudit(db.DB, middleware.GetAuditContext(c),
		models.AuditActionCreate, "invitation", invitation.ID, invitation.Email, "Invited user as "+invitation.Role)

	return c.JSON(http.StatusCreated, invitation)
}

// GetInvitations lists pending invitations
// GET /api/invitations (admin only)
func GetInvitations(c echo.Context) error {
	var invitations []models.Invitation
	if err := db.DB.Where("accepted_at IS NULL").
		Order("created_at DESC").Find(&invitations).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch invitations")
	}
	return c.JSON(http.StatusOK, invitations)
}

type acceptInvitationRequest struct {
	Token    string `json:"token"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// AcceptInvitation redeems an invitation token and activates the account.
// Public endpoint: the token is the credential.
// POST /api/invitations/accept
func AcceptInvitation(c echo.Context) error {
	var req acceptInvitationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Token == "" || req.Name == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Token, name and password are required")
	}
	if len(req.Password) < 8 {
		return echo.NewHTTPError(http.StatusBadRequest, "Password must be at least 8 characters")
	}

	user, err := services.AcceptInvitation(db.DB, req.Token, req.Name, req.Password)
	if err != nil {
		return serviceError(err, "Failed to accept invitation")
	}

	services.LogSecurityEvent("INVITATION_ACCEPTED", user.ID, "Email: "+user.Email)
	return c.JSON(http.StatusCreated, user)
}
