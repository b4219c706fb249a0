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

type vehicleRequest struct {
	SubsectorID   string         `json:"subsector_id"`
	Plate         string         `json:"plate"`
	ChassisNumber string         `json:"chassis_number"`
	Make          string         `json:"make"`
	Model         string         `json:"model"`
	Color         string         `json:"color"`
	Observations  string         `json:"observations"`
	Details       models.JSONMap `json:"details"`
}

// CreateVehicleRecord registers a vehicle under a subsector
// POST /api/case-records/vehicle (editor+)
func CreateVehicleRecord(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	cfg := config.Load()

	var req vehicleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	record, err := services.CreateVehicleRecord(db.DB, services.CreateVehicleInput{
		SubsectorID:        req.SubsectorID,
		Plate:              req.Plate,
		ChassisNumber:      req.ChassisNumber,
		Make:               req.Make,
		Model:              req.Model,
		Color:              req.Color,
		Observations:       req.Observations,
		Details:            req.Details,
		OwnerID:            user.ID,
		AllowAutoSubsector: cfg.AllowAutoSubsector,
	})
	if err != nil {
		return serviceError(err, "Failed to create vehicle record")
	}

	services.RecordAudit(db.DB, middleware.GetAuditContext(c),
		models.AuditActionCreate, "vehicle_record", record.ID, record.Plate, "Created vehicle record")

	return c.JSON(http.StatusCreated, record)
}

// GetVehicleRecord returns one vehicle record with its subsector preloaded
// GET /api/case-records/vehicle/:id
func GetVehicleRecord(c echo.Context) error {
	record, err := services.GetVehicleRecord(db.DB, c.Param("id"))
	if err != nil {
		return serviceError(err, "Failed to fetch vehicle record")
	}
	return c.JSON(http.StatusOK, record)
}

// GetVehicleRecords lists vehicle records, optionally scoped to one subsector
// GET /api/case-records/vehicle?subsector_id=xxx
func GetVehicleRecords(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	opts := services.ListRecordsOptions{SubsectorID: c.QueryParam("subsector_id")}
	if c.QueryParam("include_inactive") == "true" && user.IsAdmin() {
		opts.IncludeInactive = true
	}

	records, err := services.ListVehicleRecords(db.DB, opts)
	if err != nil {
		return serviceError(err, "Failed to fetch vehicle records")
	}
	return c.JSON(http.StatusOK, records)
}

type vehicleUpdateRequest struct {
	Plate         *string        `json:"plate"`
	ChassisNumber *string        `json:"chassis_number"`
	Make          *string        `json:"make"`
	Model         *string        `json:"model"`
	Color         *string        `json:"color"`
	Observations  *string        `json:"observations"`
	Details       models.JSONMap `json:"details"`
	IsActive      *bool          `json:"is_active"`
}

// UpdateVehicleRecord applies a partial update
// PUT /api/case-records/vehicle/:id (editor+)
func UpdateVehicleRecord(c echo.Context) error {
	var req vehicleUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	record, err := services.UpdateVehicleRecord(db.DB, c.Param("id"), services.UpdateVehicleInput{
		Plate:         req.Plate,
		ChassisNumber: req.ChassisNumber,
		Make:          req.Make,
		Model:         req.Model,
		Color:         req.Color,
		Observations:  req.Observations,
		Details:       req.Details,
		IsActive:      req.IsActive,
	})
	if err != nil {
		return serviceError(err, "Failed to update vehicle record")
	}

	services.RecordAudit(db.DB, middleware.GetAuditContext(c),
		models.AuditActionUpdate, "vehicle_record", record.ID, record.Plate, "Updated vehicle record")

	return c.JSON(http.StatusOK, record)
}

// DeleteVehicleRecord soft-deletes a vehicle record
// DELETE /api/case-records/vehicle/:id (editor+)
func DeleteVehicleRecord(c echo.Context) error {
	record, err := services.GetVehicleRecord(db.DB, c.Param("id"))
	if err != nil {
		return serviceError(err, "Failed to fetch vehicle record")
	}

	if err := services.SoftDeleteVehicleRecord(db.DB, record.ID); err != nil {
		return serviceError(err, "Failed to delete vehicle record")
	}

	services.RecordAudit(db.DB, middleware.GetAuditContext(c),
		models.AuditActionSoftDelete, "vehicle_record", record.ID, record.Plate, "Deactivated vehicle record")

	return c.JSON(http.StatusOK, map[string]string{"message": "Vehicle record deactivated"})
}

// PurgeVehicleRecord permanently removes a vehicle record and its stored photo
// DELETE /api/case-records/vehicle/:id/purge (admin only)
func PurgeVehicleRecord(c echo.Context) error {
	record, err := services.GetVehicleRecord(db.DB, c.Param("id"))
	if err != nil {
		return serviceError(err, "Failed to fetch vehicle record")
	}

	if err := services.HardDeleteVehicleRecord(db.DB, record.ID); err != nil {
		return serviceError(err, "Failed to purge vehicle record")
	}

	services.RecordAudit(db.DB, middleware.GetAuditContext(c),
		models.AuditActionCascadeDelete, "vehicle_record", record.ID, record.Plate, "Purged vehicle record")

	return c.JSON(http.StatusOK, map[string]string{"message": "Vehicle record purged"})
}

// UploadVehiclePhoto replaces the record's photo
// POST /api/case-records/vehicle/:id/photo (editor+)
func UploadVehiclePhoto(c echo.Context) error {
	record, err := services.GetVehicleRecord(db.DB, c.Param("id"))
	if err != nil {
		return serviceError(err, "Failed to fetch vehicle record")
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Photo file is required")
	}
	if err := services.ValidatePhotoUpload(file); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	key := services.GenerateVehiclePhotoKey(record.ID, file.Filename)
	result, err := services.Storage.Upload(c.Request().Context(), file, key)
	if err != nil {
		log.Printf("[ERROR] Photo upload failed for vehicle %s: %v", record.ID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store photo")
	}

	oldKey := record.PhotoKey
	updates := map[string]interface{}{"photo_key": result.Key, "photo_url": result.URL}
	if err := db.DB.Model(record).Updates(updates).Error; err != nil {
		return serviceError(err, "Failed to update vehicle record")
	}
	if oldKey != "" && oldKey != result.Key {
		if err := services.Storage.Delete(c.Request().Context(), oldKey); err != nil {
			log.Printf("[WARNING] Failed to delete replaced photo %s: %v", oldKey, err)
		}
	}

	services.RecordAudit(db.DB, middleware.GetAuditContext(c),
		models.AuditActionUpdate, "vehicle_record", record.ID, record.Plate, "Replaced photo")

	return c.JSON(http.StatusOK, map[string]string{
		"photo_key": result.Key,
		"photo_url": result.URL,
	})
}
