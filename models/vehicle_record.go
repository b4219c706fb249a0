package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VehicleRecord is a vehicle entry attached to exactly one subsector.
type VehicleRecord struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	SubsectorID string         `gorm:"type:uuid;not null;index" json:"subsector_id"`
	Subsector   *HierarchyNode `gorm:"foreignKey:SubsectorID" json:"subsector,omitempty"`

	// Plate and ChassisNumber are each unique among active vehicle records.
	Plate         string `gorm:"not null;index" json:"plate"`
	ChassisNumber string `gorm:"index" json:"chassis_number,omitempty"` // VIN
	Make          string `json:"make,omitempty"`
	Model         string `json:"model,omitempty"`
	Color         string `json:"color,omitempty"`

	Observations string `gorm:"type:text" json:"observations,omitempty"`
	PhotoKey     string `json:"photo_key,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`

	// Structured sub-objects stored as opaque blobs keyed by name.
	Details JSONMap `gorm:"type:text" json:"details,omitempty"`

	OwnerID string `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner   *User  `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`

	IsActive bool `gorm:"not null;default:true" json:"is_active"`
}

// BeforeCreate hook to generate UUID
func (v *VehicleRecord) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for VehicleRecord model
func (VehicleRecord) TableName() string {
	return "vehicle_records"
}
