package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"crime_records_go/models"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

// Free-text fields come from back-office users but still pass through a strict
// sanitizer before persisting.
var textPolicy = bluemonday.StrictPolicy()

func sanitizeText(s string) string {
	return strings.TrimSpace(textPolicy.Sanitize(s))
}

// resolveAttachment validates that subsectorID references an existing, active
// subsector. When the id is empty and allowAuto is set, a "Temporal" subsector
// owned by the actor is created (once) and used instead; with allowAuto off an
// empty or dangling reference is a hard error.
func resolveAttachment(db *gorm.DB, subsectorID, ownerID string, allowAuto bool) (string, error) {
	if subsectorID == "" {
		if !allowAuto {
			return "", fmt.Errorf("%w: a case record requires a subsector", ErrInvalidHierarchy)
		}
		node, err := ensureTemporarySubsector(db, ownerID)
		if err != nil {
			return "", err
		}
		return node.ID, nil
	}

	var node models.HierarchyNode
	if err := db.First(&node, "id = ?", subsectorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: subsector does not exist", ErrInvalidHierarchy)
		}
		return "", fmt.Errorf("failed to resolve subsector: %w", err)
	}
	if !node.IsSubsector() {
		return "", fmt.Errorf("%w: case records attach to subsectors only", ErrInvalidHierarchy)
	}
	if !node.IsActive {
		return "", fmt.Errorf("%w: subsector is inactive", ErrInvalidHierarchy)
	}
	return node.ID, nil
}

// ensureTemporarySubsector finds or creates the actor's fallback subsector
// (and its parent sector). Opt-in behavior, see config.AllowAutoSubsector.
func ensureTemporarySubsector(db *gorm.DB, ownerID string) (*models.HierarchyNode, error) {
	if ownerID == "" {
		return nil, ErrUnauthorized
	}

	suffix := ownerID
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	code := "TMP-" + strings.ToUpper(suffix)

	var existing models.HierarchyNode
	err := db.Where("code = ? AND kind = ? AND is_active = ?", code, models.NodeKindSubsector, true).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up temporary subsector: %w", err)
	}

	sector, err := CreateNode(db, CreateNodeInput{
		Kind:        models.NodeKindSector,
		Name:        "Temporal " + suffix,
		Code:        "TMP-SEC-" + strings.ToUpper(suffix),
		Description: "Auto-created holding sector for unassigned case records",
		OwnerID:     ownerID,
	})
	if err != nil && !errors.Is(err, ErrDuplicateName) {
		return nil, err
	}
	if sector == nil {
		// Sector already existed; fetch it by code
		var s models.HierarchyNode
		if err := db.First(&s, "code = ?", "TMP-SEC-"+strings.ToUpper(suffix)).Error; err != nil {
			return nil, fmt.Errorf("failed to fetch temporary sector: %w", err)
		}
		sector = &s
	}

	node, err := CreateNode(db, CreateNodeInput{
		Kind:        models.NodeKindSubsector,
		Name:        "Temporal",
		Code:        code,
		Description: "Auto-created holding subsector for unassigned case records",
		ParentID:    &sector.ID,
		OwnerID:     ownerID,
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[WARNING] Auto-created temporary subsector %s for user %s", code, ownerID)
	return node, nil
}

// --- Person records ---

// CreatePersonInput carries the fields accepted when creating a person record
type CreatePersonInput struct {
	SubsectorID        string
	FullName           string
	Alias              string
	DocumentType       string
	DocumentNumber     string
	Observations       string
	Details            models.JSONMap
	OwnerID            string
	AllowAutoSubsector bool
}

// CreatePersonRecord validates attachment and identity uniqueness, then
// persists the record. The document number must be unique among active person
// records; a soft-deleted record's number may be reused.
func CreatePersonRecord(db *gorm.DB, input CreatePersonInput) (*models.PersonRecord, error) {
	if input.OwnerID == "" {
		return nil, ErrUnauthorized
	}
	if input.FullName == "" || input.DocumentNumber == "" {
		return nil, fmt.Errorf("%w: full name and document number are required", ErrInvalidInput)
	}
	if input.DocumentType == "" {
		input.DocumentType = models.DocTypeCC
	}
	if !models.IsValidDocumentType(input.DocumentType) {
		return nil, fmt.Errorf("%w: unknown document type %q", ErrInvalidInput, input.DocumentType)
	}

	subsectorID, err := resolveAttachment(db, input.SubsectorID, input.OwnerID, input.AllowAutoSubsector)
	if err != nil {
		return nil, err
	}

	taken, err := personIdentityTaken(db, input.DocumentNumber, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateIdentity
	}

	record := &models.PersonRecord{
		SubsectorID:    subsectorID,
		FullName:       sanitizeText(input.FullName),
		Alias:          sanitizeText(input.Alias),
		DocumentType:   input.DocumentType,
		DocumentNumber: strings.TrimSpace(input.DocumentNumber),
		Observations:   sanitizeText(input.Observations),
		Details:        input.Details,
		OwnerID:        input.OwnerID,
		IsActive:       true,
	}
	if err := db.Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to create person record: %w", err)
	}
	return record, nil
}

// personIdentityTaken checks the document number against active person records
func personIdentityTaken(db *gorm.DB, documentNumber, excludeID string) (bool, error) {
	query := db.Model(&models.PersonRecord{}).
		Where("document_number = ? AND is_active = ?", strings.TrimSpace(documentNumber), true)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check document uniqueness: %w", err)
	}
	return count > 0, nil
}

// GetPersonRecord fetches a single person record with its subsector
func GetPersonRecord(db *gorm.DB, id string) (*models.PersonRecord, error) {
	var record models.PersonRecord
	if err := db.Preload("Subsector").First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch person record: %w", err)
	}
	return &record, nil
}

// ListRecordsOptions filters record listings
type ListRecordsOptions struct {
	SubsectorID     string
	IncludeInactive bool
}

// ListPersonRecords lists person records, optionally scoped to one subsector
func ListPersonRecords(db *gorm.DB, opts ListRecordsOptions) ([]models.PersonRecord, error) {
	query := db.Model(&models.PersonRecord{})
	if opts.SubsectorID != "" {
		query = query.Where("subsector_id = ?", opts.SubsectorID)
	}
	if !opts.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	var records []models.PersonRecord
	if err := query.Order("full_name ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list person records: %w", err)
	}
	return records, nil
}

// UpdatePersonInput is a partial patch; nil fields are left untouched
type UpdatePersonInput struct {
	FullName       *string
	Alias          *string
	DocumentType   *string
	DocumentNumber *string
	Observations   *string
	Details        models.JSONMap
	IsActive       *bool
}

// UpdatePersonRecord applies a patch. A document-number change is rejected
// when it collides with another active person record.
func UpdatePersonRecord(db *gorm.DB, id string, patch UpdatePersonInput) (*models.PersonRecord, error) {
	record, err := GetPersonRecord(db, id)
	if err != nil {
		return nil, err
	}

	if patch.DocumentNumber != nil && *patch.DocumentNumber != record.DocumentNumber {
		taken, err := personIdentityTaken(db, *patch.DocumentNumber, record.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrDuplicateIdentity
		}
		record.DocumentNumber = strings.TrimSpace(*patch.DocumentNumber)
	}
	if patch.DocumentType != nil {
		if !models.IsValidDocumentType(*patch.DocumentType) {
			return nil, fmt.Errorf("%w: unknown document type %q", ErrInvalidInput, *patch.DocumentType)
		}
		record.DocumentType = *patch.DocumentType
	}
	if patch.FullName != nil {
		record.FullName = sanitizeText(*patch.FullName)
	}
	if patch.Alias != nil {
		record.Alias = sanitizeText(*patch.Alias)
	}
	if patch.Observations != nil {
		record.Observations = sanitizeText(*patch.Observations)
	}
	if patch.Details != nil {
		record.Details = patch.Details
	}
	if patch.IsActive != nil {
		// Re-activation re-enters the uniqueness pool
		if *patch.IsActive && !record.IsActive {
			taken, err := personIdentityTaken(db, record.DocumentNumber, record.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrDuplicateIdentity
			}
		}
		record.IsActive = *patch.IsActive
	}

	if err := db.Save(record).Error; err != nil {
		return nil, fmt.Errorf("failed to update person record: %w", err)
	}
	return record, nil
}

// SoftDeletePersonRecord marks the record inactive, freeing its identity value
func SoftDeletePersonRecord(db *gorm.DB, id string) error {
	record, err := GetPersonRecord(db, id)
	if err != nil {
		return err
	}
	if err := db.Model(record).Update("is_active", false).Error; err != nil {
		return fmt.Errorf("failed to soft-delete person record: %w", err)
	}
	return nil
}

// HardDeletePersonRecord permanently removes the record (admin path)
func HardDeletePersonRecord(db *gorm.DB, id string) error {
	result := db.Unscoped().Where("id = ?", id).Delete(&models.PersonRecord{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete person record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Vehicle records ---

// CreateVehicleInput carries the fields accepted when creating a vehicle record
type CreateVehicleInput struct {
	SubsectorID        string
	Plate              string
	ChassisNumber      string
	Make               string
	Model              string
	Color              string
	Observations       string
	Details            models.JSONMap
	OwnerID            string
	AllowAutoSubsector bool
}

// CreateVehicleRecord validates attachment and identity uniqueness, then
// persists the record. Plate and chassis number must each be unique among
// active vehicle records.
func CreateVehicleRecord(db *gorm.DB, input CreateVehicleInput) (*models.VehicleRecord, error) {
	if input.OwnerID == "" {
		return nil, ErrUnauthorized
	}
	if input.Plate == "" {
		return nil, fmt.Errorf("%w: plate is required", ErrInvalidInput)
	}

	subsectorID, err := resolveAttachment(db, input.SubsectorID, input.OwnerID, input.AllowAutoSubsector)
	if err != nil {
		return nil, err
	}

	taken, err := vehicleIdentityTaken(db, input.Plate, input.ChassisNumber, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateIdentity
	}

	record := &models.VehicleRecord{
		SubsectorID:   subsectorID,
		Plate:         normalizePlate(input.Plate),
		ChassisNumber: strings.ToUpper(strings.TrimSpace(input.ChassisNumber)),
		Make:          sanitizeText(input.Make),
		Model:         sanitizeText(input.Model),
		Color:         sanitizeText(input.Color),
		Observations:  sanitizeText(input.Observations),
		Details:       input.Details,
		OwnerID:       input.OwnerID,
		IsActive:      true,
	}
	if err := db.Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to create vehicle record: %w", err)
	}
	return record, nil
}

func normalizePlate(plate string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(plate), " ", ""))
}

// vehicleIdentityTaken checks plate and chassis against active vehicle records
func vehicleIdentityTaken(db *gorm.DB, plate, chassis, excludeID string) (bool, error) {
	query := db.Model(&models.VehicleRecord{}).Where("is_active = ?", true)
	chassis = strings.ToUpper(strings.TrimSpace(chassis))
	if chassis != "" {
		query = query.Where("plate = ? OR chassis_number = ?", normalizePlate(plate), chassis)
	} else {
		query = query.Where("plate = ?", normalizePlate(plate))
	}
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check vehicle identity uniqueness: %w", err)
	}
	return count > 0, nil
}

// GetVehicleRecord fetches a single vehicle record with its subsector
func GetVehicleRecord(db *gorm.DB, id string) (*models.VehicleRecord, error) {
	var record models.VehicleRecord
	if err := db.Preload("Subsector").First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch vehicle record: %w", err)
	}
	return &record, nil
}

// ListVehicleRecords lists vehicle records, optionally scoped to one subsector
func ListVehicleRecords(db *gorm.DB, opts ListRecordsOptions) ([]models.VehicleRecord, error) {
	query := db.Model(&models.VehicleRecord{})
	if opts.SubsectorID != "" {
		query = query.Where("subsector_id = ?", opts.SubsectorID)
	}
	if !opts.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	var records []models.VehicleRecord
	if err := query.Order("plate ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list vehicle records: %w", err)
	}
	return records, nil
}

// UpdateVehicleInput is a partial patch; nil fields are left untouched
type UpdateVehicleInput struct {
	Plate         *string
	ChassisNumber *string
	Make          *string
	Model         *string
	Color         *string
	Observations  *string
	Details       models.JSONMap
	IsActive      *bool
}

// UpdateVehicleRecord applies a patch. Plate/chassis changes are rejected when
// they collide with another active vehicle record.
func UpdateVehicleRecord(db *gorm.DB, id string, patch UpdateVehicleInput) (*models.VehicleRecord, error) {
	record, err := GetVehicleRecord(db, id)
	if err != nil {
		return nil, err
	}

	newPlate := record.Plate
	newChassis := record.ChassisNumber
	if patch.Plate != nil {
		newPlate = normalizePlate(*patch.Plate)
	}
	if patch.ChassisNumber != nil {
		newChassis = strings.ToUpper(strings.TrimSpace(*patch.ChassisNumber))
	}
	if newPlate != record.Plate || newChassis != record.ChassisNumber {
		taken, err := vehicleIdentityTaken(db, newPlate, newChassis, record.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrDuplicateIdentity
		}
		record.Plate = newPlate
		record.ChassisNumber = newChassis
	}

	if patch.Make != nil {
		record.Make = sanitizeText(*patch.Make)
	}
	if patch.Model != nil {
		record.Model = sanitizeText(*patch.Model)
	}
	if patch.Color != nil {
		record.Color = sanitizeText(*patch.Color)
	}
	if patch.Observations != nil {
		record.Observations = sanitizeText(*patch.Observations)
	}
	if patch.Details != nil {
		record.Details = patch.Details
	}
	if patch.IsActive != nil {
		if *patch.IsActive && !record.IsActive {
			taken, err := vehicleIdentityTaken(db, record.Plate, record.ChassisNumber, record.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrDuplicateIdentity
			}
		}
		record.IsActive = *patch.IsActive
	}

	if err := db.Save(record).Error; err != nil {
		return nil, fmt.Errorf("failed to update vehicle record: %w", err)
	}
	return record, nil
}

// SoftDeleteVehicleRecord marks the record inactive, freeing its identity values
func SoftDeleteVehicleRecord(db *gorm.DB, id string) error {
	record, err := GetVehicleRecord(db, id)
	if err != nil {
		return err
	}
	if err := db.Model(record).Update("is_active", false).Error; err != nil {
		return fmt.Errorf("failed to soft-delete vehicle record: %w", err)
	}
	return nil
}

// HardDeleteVehicleRecord permanently removes the record (admin path)
func HardDeleteVehicleRecord(db *gorm.DB, id string) error {
	result := db.Unscoped().Where("id = ?", id).Delete(&models.VehicleRecord{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete vehicle record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
