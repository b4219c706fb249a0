package handlers

import (
	"fmt"
	"net/http"

	"crime_records_go/db"
	"crime_records_go/middleware"
	"crime_records_go/models"
	"crime_records_go/services"

	"github.com/labstack/echo/v4"
)

type subsectorRequest struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
	ParentID    string `json:"parent_id"`
}

// CreateSubsector creates a subsector under an existing active sector
// POST /api/subsectors (editor+)
func CreateSubsector(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	var req subsectorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.ParentID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "parent_id is required")
	}

	node, err := services.CreateNode(db.DB, services.CreateNodeInput{
		Kind:        models.NodeKindSubsector,
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		SortOrder:   req.SortOrder,
		ParentID:    &req.ParentID,
		OwnerID:     user.ID,
	})
	if err != nil {
		return serviceError(err, "Failed to create subsector")
	}

	services.RecordAudit(db.DB, middleware.GetAuditContext(c),
		models.AuditActionCreate, "subsector", node.ID, node.Name, "Created subsector")

	return c.JSON(http.StatusCreated, node)
}

type subsectorUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	SortOrder   *int    `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
}

// UpdateSubsector patches a subsector's name, description, order or state
// PUT /api/subsectors/:id (editor+)
func UpdateSubsector(c echo.Context) error {
	var req subsectorUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	node, err := services.UpdateNode(db.DB, c.Param("id"), services.UpdateNodeInput{
		Name:        req.Name,
		Description: req.Description,
		SortOrder:   req.SortOrder,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return serviceError(err, "Failed to update subsector")
	}

	services.RecordAudit(db.DB, middleware.GetAuditContext(c),
		models.AuditActionUpdate, "subsector", node.ID, node.Name, "Updated subsector")

	return c.JSON(http.StatusOK, node)
}

// DeleteSubsector permanently removes a subsector and every case record
// attached to it in a single transaction. Soft deactivation goes through
// PUT with is_active=false instead.
// DELETE /api/subsectors/:id (admin only)
func DeleteSubsector(c echo.Context) error {
	node, err := services.GetNode(db.DB, c.Param("id"))
	if err != nil {
		return serviceError(err, "Failed to fetch subsector")
	}
	if !node.IsSubsector() {
		return echo.NewHTTPError(http.StatusBadRequest, "Node is not a subsector")
	}

	result, err := services.HardDeleteNode(db.DB, node.ID)
	if err != nil {
		return serviceError(err, "Failed to delete subsector")
	}

	services.RecordAudit(db.DB, middleware.GetAuditContext(c),
		models.AuditActionCascadeDelete, "subsector", node.ID, node.Name,
		fmt.Sprintf("Purged %d nodes, %d persons, %d vehicles",
			result.Nodes, result.Persons, result.Vehicles))

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Subsector deleted",
		"deleted": result,
	})
}
