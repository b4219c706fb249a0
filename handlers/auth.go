package handlers

import (
	"net/http"

	"crime_records_go/config"
	"crime_records_go/db"
	"crime_records_go/middleware"
	"crime_records_go/models"
	"crime_records_go/services"

	"github.com/labstack/echo/v4"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a user and opens a session
// POST /api/auth/login
func Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	user, err := services.Authenticate(db.DB, req.Email, req.Password)
	if err != nil {
		services.LogSecurityEvent("LOGIN_FAILED", "", "Email: "+req.Email)
		return serviceError(err, "Login failed")
	}

	session, err := services.CreateSession(db.DB, user.ID, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return serviceError(err, "Failed to create session")
	}

	cfg := config.Load()
	middleware.SetSessionCookie(c, session.Token, cfg.Environment == "production")

	services.RecordAudit(db.DB, services.AuditContext{
		UserID:    user.ID,
		UserName:  user.Name,
		UserRole:  user.Role,
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}, models.AuditActionLogin, "user", user.ID, user.Email, "User logged in")

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":       user,
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
	})
}

// Logout closes the current session
// POST /api/auth/logout
func Logout(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if err := middleware.Logout(c); err != nil {
		return serviceError(err, "Failed to close session")
	}

	if user != nil {
		services.RecordAudit(db.DB, middleware.GetAuditContext(c),
			models.AuditActionLogout, "user", user.ID, user.Email, "User logged out")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out"})
}

// Me returns the authenticated user together with their effective capabilities
// GET /api/auth/me
func Me(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":         user,
		"capabilities": services.RoleCapabilities(user.Role),
	})
}
