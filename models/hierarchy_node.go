package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Hierarchy node kinds. The only valid nesting is sector -> subsector; case
// records attach to subsectors only. Kind is immutable after creation.
const (
	NodeKindSector    = "sector"
	NodeKindSubsector = "subsector"
)

// HierarchyNode is one row of the sector/subsector adjacency-list tree. Sector
// nodes have no parent; subsector nodes reference a sector through ParentID.
type HierarchyNode struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Kind     string  `gorm:"not null;index:idx_node_parent_kind" json:"kind"` // sector, subsector
	ParentID *string `gorm:"type:uuid;index:idx_node_parent_kind" json:"parent_id,omitempty"`
	Parent   *HierarchyNode `gorm:"foreignKey:ParentID" json:"parent,omitempty"`

	Name        string `gorm:"not null;index" json:"name"`
	Code        string `gorm:"not null;uniqueIndex" json:"code"` // short unique code (e.g., "NORTE")
	Description string `gorm:"type:text" json:"description"`

	// Creator, retained for audit; does not gate visibility under the
	// global-access policy.
	OwnerID string `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner   *User  `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`

	IsActive  bool `gorm:"not null;default:true" json:"is_active"`
	SortOrder int  `gorm:"not null;default:0" json:"sort_order"`

	// Location pre-fill (sector only)
	CountryID    *string `gorm:"type:uuid" json:"country_id,omitempty"`
	DepartmentID *string `gorm:"type:uuid" json:"department_id,omitempty"`
	CityID       *string `gorm:"type:uuid" json:"city_id,omitempty"`

	City *City `gorm:"foreignKey:CityID" json:"city,omitempty"`

	// Relationships
	Children []HierarchyNode `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}

// BeforeCreate hook to generate UUID
func (n *HierarchyNode) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}

// IsSector checks if the node is a root-level sector
func (n *HierarchyNode) IsSector() bool {
	return n.Kind == NodeKindSector
}

// IsSubsector checks if the node is a second-level subsector
func (n *HierarchyNode) IsSubsector() bool {
	return n.Kind == NodeKindSubsector
}

// IsValidNodeKind checks if the kind string is one of the known kinds
func IsValidNodeKind(kind string) bool {
	return kind == NodeKindSector || kind == NodeKindSubsector
}

// TableName specifies the table name for HierarchyNode model
func (HierarchyNode) TableName() string {
	return "hierarchy_nodes"
}
