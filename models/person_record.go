package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Identity document types accepted for person records
const (
	DocTypeCC       = "CC"       // Cedula de ciudadania
	DocTypeCE       = "CE"       // Cedula de extranjeria
	DocTypePassport = "PASSPORT"
)

// PersonRecord is a person-of-interest entry attached to exactly one subsector.
type PersonRecord struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	SubsectorID string         `gorm:"type:uuid;not null;index" json:"subsector_id"`
	Subsector   *HierarchyNode `gorm:"foreignKey:SubsectorID" json:"subsector,omitempty"`

	FullName string `gorm:"not null;index" json:"full_name"`
	Alias    string `json:"alias,omitempty"`

	// Identity document. DocumentNumber is unique among active person records.
	DocumentType   string `gorm:"not null;default:CC" json:"document_type"`
	DocumentNumber string `gorm:"not null;index" json:"document_number"`

	Observations string `gorm:"type:text" json:"observations,omitempty"`
	PhotoKey     string `json:"photo_key,omitempty"` // storage key of the mugshot
	PhotoURL     string `json:"photo_url,omitempty"`

	// Structured sub-objects stored as opaque blobs keyed by name
	// (e.g., "physical_description", "judicial_info").
	Details JSONMap `gorm:"type:text" json:"details,omitempty"`

	OwnerID string `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner   *User  `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`

	IsActive bool `gorm:"not null;default:true" json:"is_active"`
}

// BeforeCreate hook to generate UUID
func (p *PersonRecord) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// IsValidDocumentType checks if the document type is one of the known types
func IsValidDocumentType(docType string) bool {
	return docType == DocTypeCC || docType == DocTypeCE || docType == DocTypePassport
}

// TableName specifies the table name for PersonRecord model
func (PersonRecord) TableName() string {
	return "person_records"
}
