package handlers

import (
	"net/http"
	"strconv"

	"crime_records_go/db"
	"crime_records_go/services"

	"github.com/labstack/echo/v4"
)

// GetAuditLogs returns the most recent audit entries, newest first
// GET /api/audit-logs?limit=100 (admin only)
func GetAuditLogs(c echo.Context) error {
	limit := 100
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 1000 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be between 1 and 1000")
		}
		limit = parsed
	}

	logs, err := services.ListAuditLogs(db.DB, limit)
	if err != nil {
		return serviceError(err, "Failed to fetch audit logs")
	}
	return c.JSON(http.StatusOK, logs)
}
