package handlers

import (
	"fmt"
	"log"
	"net/http"

	"crime_records_go/config"
	"crime_records_go/db"
	"crime_records_go/middleware"
	"crime_records_go/models"
	"crime_records_go/services"

	"github.com/labstack/echo/v4"
)

type personRequest struct {
	SubsectorID    string         `json:"subsector_id"`
	FullName       string         `json:"full_name"`
	Alias          string         `json:"alias"`
	DocumentType   string         `json:"document_type"`
	DocumentNumber string         `json:"document_number"`
	Observations   string         `json:"observations"`
	Details        models.JSONMap `json:"details"`
}

// CreatePersonRecord registers a person under a subsector
// POST /api/case-records/person (editor+)
func CreatePersonRecord(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	cfg := config.Load()

	var req personRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	record, err := services.CreatePersonRecord(db.DB, services.CreatePersonInput{
		SubsectorID:        req.SubsectorID,
		FullName:           req.FullName,
		Alias:              req.Alias,
		DocumentType:       req.DocumentType,
		DocumentNumber:     req.DocumentNumber,
		Observations:       req.Observations,
		Details:            req.Details,
		OwnerID:            user.ID,
		AllowAutoSubsector: cfg.AllowAutoSubsector,
	})
	if err != nil {
		return serviceError(err, "Failed to create person record")
	}

	services.RecordAudit(db.DB, middleware.GetAuditContext(c),
		models.AuditActionCreate, "person_record", record.ID, record.FullName, "Created person record")

	return c.JSON(http.StatusCreated, record)
}

// GetPersonRecord returns one person record with its subsector preloaded
// GET /api/case-records/person/:id
func GetPersonRecord(c echo.Context) error {
	record, err := services.GetPersonRecord(db.DB, c.Param("id"))
	if err != nil {
		return serviceError(err, "Failed to fetch person record")
	}
	return c.JSON(http.StatusOK, record)
}

// GetPersonRecords lists person records, optionally scoped to one subsector
// GET /api/case-records/person?subsector_id=xxx
func GetPersonRecords(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	opts := services.ListRecordsOptions{SubsectorID: c.QueryParam("subsector_id")}
	if c.QueryParam("include_inactive") == "true" && user.IsAdmin() {
		opts.IncludeInactive = true
	}

	records, err := services.ListPersonRecords(db.DB, opts)
	if err != nil {
		return serviceError(err, "Failed to fetch person records")
	}
	return c.JSON(http.StatusOK, records)
}

type personUpdateRequest struct {
	FullName       *string        `json:"full_name"`
	Alias          *string        `json:"alias"`
	DocumentType   *string        `json:"document_type"`
	DocumentNumber *string        `json:"document_number"`
	Observations   *string        `json:"observations"`
	Details        models.JSONMap `json:"details"`
	IsActive       *bool          `json:"is_active"`
}

// UpdatePersonRecord applies a partial update
// PUT /api/case-records/person/:id (editor+)
func UpdatePersonRecord(c echo.Context) error {
	var req personUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	record, err := services.UpdatePersonRecord(db.DB, c.Param("id"), services.UpdatePersonInput{
		FullName:       req.FullName,
		Alias:          req.Alias,
		DocumentType:   req.DocumentType,
		DocumentNumber: req.DocumentNumber,
		Observations:   req.Observations,
		Details:        req.Details,
		IsActive:       req.IsActive,
	})
	if err != nil {
		return serviceError(err, "Failed to update person record")
	}

	services.RecordAudit(db.DB, middleware.GetAuditContext(c),
		models.AuditActionUpdate, "person_record", record.ID, record.FullName, "Updated person record")

	return c.JSON(http.StatusOK, record)
}

// DeletePersonRecord soft-deletes a person record
// DELETE /api/case-records/person/:id (editor+)
func DeletePersonRecord(c echo.Context) error {
	record, err := services.GetPersonRecord(db.DB, c.Param("id"))
	if err != nil {
		return serviceError(err, "Failed to fetch person record")
	}

	if err := services.SoftDeletePersonRecord(db.DB, record.ID); err != nil {
		return serviceError(err, "Failed to delete person record")
	}

	services.RecordAudit(db.DB, middleware.GetAuditContext(c),
		models.AuditActionSoftDelete, "person_record", record.ID, record.FullName, "Deactivated person record")

	return c.JSON(http.StatusOK, map[string]string{"message": "Person record deactivated"})
}

// PurgePersonRecord permanently removes a person record and its stored photo
// DELETE /api/case-records/person/:id/purge (admin only)
func PurgePersonRecord(c echo.Context) error {
	record, err := services.GetPersonRecord(db.DB, c.Param("id"))
	if err != nil {
		return serviceError(err, "Failed to fetch person record")
	}

	if err := services.HardDeletePersonRecord(db.DB, record.ID); err != nil {
		return serviceError(err, "Failed to purge person record")
	}

	services.RecordAudit(db.DB, middleware.GetAuditContext(c),
		models.AuditActionCascadeDelete, "person_record", record.ID, record.FullName, "Purged person record")

	return c.JSON(http.StatusOK, map[string]string{"message": "Person record purged"})
}

// UploadPersonPhoto replaces the record's photo
// POST /api/case-records/person/:id/photo (editor+)
func UploadPersonPhoto(c echo.Context) error {
	record, err := services.GetPersonRecord(db.DB, c.Param("id"))
	if err != nil {
		return serviceError(err, "Failed to fetch person record")
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Photo file is required")
	}
	if err := services.ValidatePhotoUpload(file); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	key := services.GeneratePersonPhotoKey(record.ID, file.Filename)
	result, err := services.Storage.Upload(c.Request().Context(), file, key)
	if err != nil {
		log.Printf("[ERROR] Photo upload failed for person %s: %v", record.ID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store photo")
	}

	oldKey := record.PhotoKey
	updates := map[string]interface{}{"photo_key": result.Key, "photo_url": result.URL}
	if err := db.DB.Model(record).Updates(updates).Error; err != nil {
		return serviceError(err, "Failed to update person record")
	}
	if oldKey != "" && oldKey != result.Key {
		if err := services.Storage.Delete(c.Request().Context(), oldKey); err != nil {
			log.Printf("[WARNING] Failed to delete replaced photo %s: %v", oldKey, err)
		}
	}

	services.RecordAudit(db.DB, middleware.GetAuditContext(c),
		models.AuditActionUpdate, "person_record", record.ID, record.FullName, "Replaced photo")

	return c.JSON(http.StatusOK, map[string]string{
		"photo_key": result.Key,
		"photo_url": result.URL,
	})
}

// GetPersonDossier renders the person record as a printable PDF dossier
// GET /api/case-records/person/:id/dossier
func GetPersonDossier(c echo.Context) error {
	record, err := services.GetPersonRecord(db.DB, c.Param("id"))
	if err != nil {
		return serviceError(err, "Failed to fetch person record")
	}

	pdf, err := services.GeneratePersonDossierPDF(db.DB, record.ID)
	if err != nil {
		log.Printf("[ERROR] Dossier generation failed for person %s: %v", record.ID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate dossier")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="dossier_%s.pdf"`, record.DocumentNumber))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
