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

type sectorRequest struct {
	Name         string  `json:"name"`
	Code         string  `json:"code"`
	Description  string  `json:"description"`
	SortOrder    int     `json:"sort_order"`
	CountryID    *string `json:"country_id"`
	DepartmentID *string `json:"department_id"`
	CityID       *string `json:"city_id"`
}

// CreateSector creates a root-level sector
// POST /api/sectors (editor+)
func CreateSector(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	var req sectorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	node, err := services.CreateNode(db.DB, services.CreateNodeInput{
		Kind:         models.NodeKindSector,
		Name:         req.Name,
		Code:         req.Code,
		Description:  req.Description,
		SortOrder:    req.SortOrder,
		OwnerID:      user.ID,
		CountryID:    req.CountryID,
		DepartmentID: req.DepartmentID,
		CityID:       req.CityID,
	})
	if err != nil {
		return serviceError(err, "Failed to create sector")
	}

	services.RecordAudit(db.DB, middleware.GetAuditContext(c),
		models.AuditActionCreate, "sector", node.ID, node.Name, "Created sector")

	return c.JSON(http.StatusCreated, node)
}

// GetSectors returns the full nested hierarchy visible to every authenticated
// user, or a single sector's subtree when ?root_id is given
// GET /api/sectors
func GetSectors(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	opts := services.TreeOptions{RootID: c.QueryParam("root_id")}
	// Only admins may inspect inactive branches
	if c.QueryParam("include_inactive") == "true" && user.IsAdmin() {
		opts.IncludeInactive = true
	}

	tree, err := services.GetTree(db.DB, opts)
	if err != nil {
		return serviceError(err, "Failed to fetch hierarchy")
	}
	return c.JSON(http.StatusOK, tree)
}

// GetSector returns a single node (sector or subsector) by ID
// GET /api/sectors/:id
func GetSector(c echo.Context) error {
	node, err := services.GetNode(db.DB, c.Param("id"))
	if err != nil {
		return serviceError(err, "Failed to fetch sector")
	}
	return c.JSON(http.StatusOK, node)
}

// GetSectorHierarchy returns the nested subtree rooted at one sector:
// its subsectors with their person and vehicle records
// GET /api/sectors/:id/hierarchy
func GetSectorHierarchy(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	opts := services.TreeOptions{RootID: c.Param("id")}
	if c.QueryParam("include_inactive") == "true" && user.IsAdmin() {
		opts.IncludeInactive = true
	}

	tree, err := services.GetTree(db.DB, opts)
	if err != nil {
		return serviceError(err, "Failed to fetch hierarchy")
	}
	return c.JSON(http.StatusOK, tree)
}

type sectorUpdateRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	SortOrder    *int    `json:"sort_order"`
	IsActive     *bool   `json:"is_active"`
	CountryID    *string `json:"country_id"`
	DepartmentID *string `json:"department_id"`
	CityID       *string `json:"city_id"`
}

// UpdateSector updates a node's mutable fields. Kind and parent are immutable.
// PUT /api/sectors/:id (editor+)
func UpdateSector(c echo.Context) error {
	var req sectorUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	node, err := services.UpdateNode(db.DB, c.Param("id"), services.UpdateNodeInput{
		Name:         req.Name,
		Description:  req.Description,
		SortOrder:    req.SortOrder,
		IsActive:     req.IsActive,
		CountryID:    req.CountryID,
		DepartmentID: req.DepartmentID,
		CityID:       req.CityID,
	})
	if err != nil {
		return serviceError(err, "Failed to update sector")
	}

	services.RecordAudit(db.DB, middleware.GetAuditContext(c),
		models.AuditActionUpdate, "sector", node.ID, node.Name, "Updated sector")

	return c.JSON(http.StatusOK, node)
}

// DeleteSector deactivates a sector. Sectors with active subsectors are
// rejected with 409; any inactive leftovers underneath are purged.
// DELETE /api/sectors/:id (editor+)
func DeleteSector(c echo.Context) error {
	node, err := services.GetNode(db.DB, c.Param("id"))
	if err != nil {
		return serviceError(err, "Failed to fetch sector")
	}
	if !node.IsSector() {
		return echo.NewHTTPError(http.StatusBadRequest, "Node is not a sector")
	}

	result, err := services.SoftDeleteSector(db.DB, node.ID)
	if err != nil {
		return serviceError(err, "Failed to delete sector")
	}

	services.RecordAudit(db.DB, middleware.GetAuditContext(c),
		models.AuditActionSoftDelete, "sector", node.ID, node.Name,
		fmt.Sprintf("Deactivated sector (purged %d inactive nodes)", result.Nodes))

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Sector deactivated",
		"purged":  result,
	})
}

// ExportSector streams the sector's person and vehicle records as an xlsx
// workbook with one sheet per record type
// GET /api/sectors/:id/export
func ExportSector(c echo.Context) error {
	data, filename, err := services.ExportSectorRecords(db.DB, c.Param("id"))
	if err != nil {
		return serviceError(err, "Failed to export sector")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
